package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shopfront/internal/domain/model"
	repo "shopfront/internal/repository"
)

// ProductMemoryRepositoryはデモ用のインメモリカタログ。
// gorm版と同じ約束を守る。
type ProductMemoryRepository struct {
	mu       sync.RWMutex
	products []model.Product
}

func NewProductMemoryRepository() *ProductMemoryRepository {
	return &ProductMemoryRepository{}
}

func (r *ProductMemoryRepository) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	filtered := make([]model.Product, 0, len(r.products))
	needle := strings.ToLower(strings.TrimSpace(q.Q))

	for _, p := range r.products {
		if !p.IsActive {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if q.Category != "" && p.Category != q.Category {
			continue
		}
		filtered = append(filtered, p)
	}

	switch q.Sort {
	case "price_asc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price < filtered[j].Price })
	case "price_desc":
		sort.SliceStable(filtered, func(i, j int) bool { return filtered[i].Price > filtered[j].Price })
	default:
		//登録順のまま
	}

	total := int64(len(filtered))

	//ページング
	offset := (q.Page - 1) * q.Limit
	if offset >= len(filtered) {
		return []model.Product{}, total, nil
	}
	end := offset + q.Limit
	if end > len(filtered) {
		end = len(filtered)
	}

	page := make([]model.Product, end-offset)
	copy(page, filtered[offset:end])
	return page, total, nil
}

func (r *ProductMemoryRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}

func (r *ProductMemoryRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append(r.products, p)
	return p, nil
}
