package model

import (
	"time"
)

// カタログ商品。コアからは読み取り専用（カタログが所有する）。
// 価格は最小通貨単位（セント）で持つ。
type Product struct {
	ID          string   `gorm:"type:varchar(64);primaryKey" json:"id"`
	Name        string   `gorm:"type:varchar(255);not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	Price       int64    `gorm:"not null" json:"price"`
	Images      []string `gorm:"serializer:json;not null" json:"images"`
	Benefits    []string `gorm:"serializer:json" json:"benefits"`
	Category    string   `gorm:"type:varchar(100);not null;index" json:"category"`
	IsActive    bool     `gorm:"not null;default:false" json:"is_active"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
