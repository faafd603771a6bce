package usecase

import (
	"context"
	"testing"

	"shopfront/internal/cart"
	"shopfront/internal/domain/model"
	repo "shopfront/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	panic("not used in CartUsecase tests")
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *CartProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	panic("not used in CartUsecase tests")
}

func TestCartUsecase_AddToCart_UnknownProduct(t *testing.T) {
	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "zzz").Return(model.Product{}, repo.ErrNotFound)

	uc := NewCartUsecase(cart.NewStore(), pRepo)

	_, err := uc.AddToCart(context.Background(), "s1", AddCartInput{ProductID: "zzz"})
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "a").
		Return(model.Product{ID: "a", Price: 2999, IsActive: false}, nil)

	uc := NewCartUsecase(cart.NewStore(), pRepo)

	_, err := uc.AddToCart(context.Background(), "s1", AddCartInput{ProductID: "a"})
	assertErrContains(t, err, "invalid")
}

func TestCartUsecase_AddToCart_Success(t *testing.T) {
	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "a").
		Return(model.Product{ID: "a", Name: "A", Price: 2999, IsActive: true}, nil)

	uc := NewCartUsecase(cart.NewStore(), pRepo)

	out, err := uc.AddToCart(context.Background(), "s1", AddCartInput{ProductID: "a"})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2999), out.Total)

	//同一商品は数量加算
	out, err = uc.AddToCart(context.Background(), "s1", AddCartInput{ProductID: "a"})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 1)
	assert.Equal(t, int64(2), out.Items[0].Quantity)
	assert.Equal(t, int64(5998), out.Total)
}

func TestCartUsecase_UpdateAndDelete(t *testing.T) {
	pRepo := new(CartProductRepoMock)
	pRepo.On("FindByID", mock.Anything, "a").
		Return(model.Product{ID: "a", Name: "A", Price: 2999, IsActive: true}, nil)

	uc := NewCartUsecase(cart.NewStore(), pRepo)

	_, err := uc.AddToCart(context.Background(), "s1", AddCartInput{ProductID: "a"})
	assert.NoError(t, err)

	out, err := uc.UpdateCartItem(context.Background(), "s1", "a", UpdateCartItemInput{Quantity: 3})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), out.Items[0].Quantity)
	assert.Equal(t, int64(8997), out.Total)

	//0は削除と同じ
	out, err = uc.UpdateCartItem(context.Background(), "s1", "a", UpdateCartItemInput{Quantity: 0})
	assert.NoError(t, err)
	assert.Len(t, out.Items, 0)
	assert.Equal(t, int64(0), out.Total)
}

func TestCartUsecase_ToggleCart(t *testing.T) {
	uc := NewCartUsecase(cart.NewStore(), new(CartProductRepoMock))

	out, err := uc.ToggleCart(context.Background(), "s1")
	assert.NoError(t, err)
	assert.True(t, out.IsOpen)

	out, err = uc.ToggleCart(context.Background(), "s1")
	assert.NoError(t, err)
	assert.False(t, out.IsOpen)
}

func TestCartUsecase_NoSession(t *testing.T) {
	uc := NewCartUsecase(cart.NewStore(), new(CartProductRepoMock))

	_, err := uc.GetCart(context.Background(), "")
	assertErrContains(t, err, "no session")
}
