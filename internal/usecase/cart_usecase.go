package usecase

import (
	"context"
	"net/http"
	"strings"

	"shopfront/internal/cart"
	"shopfront/internal/domain/model"
	repo "shopfront/internal/repository"
)

// CartUsecase は /cart の業務ロジックです。
// カートの実体はインメモリのStoreで、ここではカタログ照合と
// 入力チェックだけを足す。
type CartUsecase struct {
	store       *cart.Store
	productRepo repo.ProductRepository
}

func NewCartUsecase(store *cart.Store, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		store:       store,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type CartResponse struct {
	Items  []CartItemResponse `json:"items"`
	IsOpen bool               `json:"is_open"`
	Total  int64              `json:"total"`
}

type AddCartInput struct {
	ProductID string
}

type UpdateCartItemInput struct {
	Quantity int64
}

// GetCart はカート取得（無ければ空を返す）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	return toCartResponse(u.store.Snapshot(sessionID)), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "catalog error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	u.store.Add(sessionID, p)
	return toCartResponse(u.store.Snapshot(sessionID)), nil
}

// 数量変更。0以下は削除と同じ。存在しない明細は黙って無視する。
func (u *CartUsecase) UpdateCartItem(ctx context.Context, sessionID string, productID string, in UpdateCartItemInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.store.SetQuantity(sessionID, productID, in.Quantity)
	return toCartResponse(u.store.Snapshot(sessionID)), nil
}

// 明細削除。存在しない明細はno-op。
func (u *CartUsecase) DeleteCartItem(ctx context.Context, sessionID string, productID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}
	if strings.TrimSpace(productID) == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	u.store.Remove(sessionID, productID)
	return toCartResponse(u.store.Snapshot(sessionID)), nil
}

// 開閉フラグの反転。
func (u *CartUsecase) ToggleCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "no session")
	}

	u.store.ToggleVisibility(sessionID)
	return toCartResponse(u.store.Snapshot(sessionID)), nil
}

func toCartResponse(s model.CartSnapshot) CartResponse {
	items := make([]CartItemResponse, 0, len(s.Items))
	for _, e := range s.Items {
		items = append(items, CartItemResponse{
			ProductID: e.Product.ID,
			Name:      e.Product.Name,
			Price:     e.Product.Price,
			Quantity:  e.Quantity,
		})
	}

	return CartResponse{Items: items, IsOpen: s.IsOpen, Total: s.Total}
}
