package model

// カートの明細。Productはカタログからの借用（コピーも変更もしない）。
// Quantityは常に1以上。0になる明細は保持せず削除する。
type CartEntry struct {
	Product  Product `json:"product"`
	Quantity int64   `json:"quantity"`
}

// カートの読み取りスナップショット。
// Totalは必ずEntriesからの再計算値（独立に更新しない）。
type CartSnapshot struct {
	Items  []CartEntry `json:"items"`
	IsOpen bool        `json:"is_open"`
	Total  int64       `json:"total"`
}

// intentリクエストに載せる明細スナップショット（バックエンド監査用）。
type CartLine struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// スナップショットをintent用の明細に変換する。
func (s CartSnapshot) Lines() []CartLine {
	lines := make([]CartLine, 0, len(s.Items))
	for _, e := range s.Items {
		lines = append(lines, CartLine{
			Name:     e.Product.Name,
			Quantity: e.Quantity,
			Price:    e.Product.Price,
		})
	}
	return lines
}
