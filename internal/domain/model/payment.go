package model

// intentサービスへのリクエスト。寿命は1チェックアウト試行のみ。
// amountは最小通貨単位のint64。
type IntentRequest struct {
	Amount   int64      `json:"amount"`
	Currency string     `json:"currency"`
	Items    []CartLine `json:"items"`
}

// intentサービスの応答。ClientSecretで支払い収集面を初期化する。
type IntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
