package cart

import (
	"sync"

	"shopfront/internal/domain/model"
)

// Storeはセッションごとのカートを持つ唯一の置き場。
// グローバル変数にはしない。必要なコンポーネントへ参照で渡す。
type Store struct {
	mu    sync.RWMutex
	carts map[string]*cartState
}

// 1セッション分のカート。entriesは挿入順を保つ。
// totalは必ず同じロックの中でentriesから再計算する。
type cartState struct {
	entries []model.CartEntry
	isOpen  bool
	total   int64
}

func NewStore() *Store {
	return &Store{carts: map[string]*cartState{}}
}

// Addは商品を1つ追加する。同一商品は数量加算（明細は増やさない）。
func (s *Store) Add(sessionID string, p model.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(sessionID)
	for i := range c.entries {
		if c.entries[i].Product.ID == p.ID {
			c.entries[i].Quantity++
			c.recompute()
			return
		}
	}

	c.entries = append(c.entries, model.CartEntry{Product: p, Quantity: 1})
	c.recompute()
}

// Removeは明細を削除する。無ければ何もしない（エラーにしない）。
func (s *Store) Remove(sessionID string, productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(sessionID)
	c.remove(productID)
	c.recompute()
}

// SetQuantityは数量を上書きする。0以下はRemoveと同じ。
// 明細が無ければ何もしない（新規作成はしない）。
func (s *Store) SetQuantity(sessionID string, productID string, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(sessionID)
	if quantity <= 0 {
		c.remove(productID)
		c.recompute()
		return
	}

	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries[i].Quantity = quantity
			break
		}
	}
	c.recompute()
}

// Clearは明細を空にする。開閉フラグは触らない。
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(sessionID)
	c.entries = nil
	c.recompute()
}

// ToggleVisibilityは開閉フラグだけを反転する。
func (s *Store) ToggleVisibility(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.cart(sessionID)
	c.isOpen = !c.isOpen
}

// Snapshotは一貫したコピーを返す。
// entriesとtotalが別々の変更から混ざって見えることはない。
func (s *Store) Snapshot(sessionID string) model.CartSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.carts[sessionID]
	if !ok {
		return model.CartSnapshot{Items: []model.CartEntry{}}
	}

	items := make([]model.CartEntry, len(c.entries))
	copy(items, c.entries)

	return model.CartSnapshot{
		Items:  items,
		IsOpen: c.isOpen,
		Total:  c.total,
	}
}

// ロック保持前提。無ければ空カートを作る。
func (s *Store) cart(sessionID string) *cartState {
	c, ok := s.carts[sessionID]
	if !ok {
		c = &cartState{}
		s.carts[sessionID] = c
	}
	return c
}

func (c *cartState) remove(productID string) {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// price × quantity の合計。
func (c *cartState) recompute() {
	var total int64 = 0
	for _, e := range c.entries {
		total += e.Product.Price * e.Quantity
	}
	c.total = total
}
