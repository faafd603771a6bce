package repository

import (
	"context"
	"time"

	"shopfront/internal/domain/model"
	repo "shopfront/internal/repository"
)

// デモカタログ。価格は最小通貨単位（セント）。
func SeedProducts() []model.Product {
	now := time.Now()

	return []model.Product{
		{
			ID:          "posture-corrector-pro",
			Name:        "Posture Corrector Pro",
			Description: "Adjustable back brace that trains your shoulders into a healthy position.",
			Price:       2999,
			Images: []string{
				"/images/posture-corrector-1.jpg",
				"/images/posture-corrector-2.jpg",
			},
			Benefits:  []string{"Relieves back pain", "Invisible under clothing", "Adjustable fit"},
			Category:  "posture",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "ergonomic-seat-cushion",
			Name:        "Ergonomic Seat Cushion",
			Description: "Memory foam cushion that keeps your pelvis aligned during long sitting sessions.",
			Price:       4999,
			Images: []string{
				"/images/seat-cushion-1.jpg",
			},
			Benefits:  []string{"Pressure relief", "Breathable cover", "Non-slip base"},
			Category:  "seating",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "neck-shoulder-stretcher",
			Name:        "Neck & Shoulder Stretcher",
			Description: "Cervical traction device for ten relaxing minutes a day.",
			Price:       2499,
			Images: []string{
				"/images/neck-stretcher-1.jpg",
			},
			Benefits:  []string{"Eases neck tension", "Lightweight", "No assembly"},
			Category:  "recovery",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "anti-fatigue-mat",
			Name:        "Anti-Fatigue Standing Mat",
			Description: "Cushioned mat for standing desks that keeps you moving.",
			Price:       3999,
			Images: []string{
				"/images/standing-mat-1.jpg",
			},
			Benefits:  []string{"Reduces leg fatigue", "Easy to clean", "Fits any desk"},
			Category:  "workspace",
			IsActive:  true,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
}

// EnsureSeededは空のカタログにデモ商品を入れる。
// 既に商品があれば何もしない（再起動安全）。
func EnsureSeeded(ctx context.Context, r repo.ProductRepository) error {
	existing, total, err := r.ListPublic(ctx, repo.ProductListQuery{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 || len(existing) > 0 {
		return nil
	}

	for _, p := range SeedProducts() {
		if _, err := r.Create(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
