package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultLowStockThreshold applies when a product is created without one.
const DefaultLowStockThreshold = 5

// Product is a catalog entry. Stock never goes below zero; every mutation
// path guards against it.
type Product struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name              string          `gorm:"column:name;not null" json:"name"`
	Description       string          `gorm:"column:description" json:"description"`
	Price             decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	Stock             int             `gorm:"column:stock;not null;default:0" json:"stock"`
	Category          string          `gorm:"column:category;not null" json:"category"`
	ImageURL          *string         `gorm:"column:image_url" json:"image_url,omitempty"`
	LowStockThreshold int             `gorm:"column:low_stock_threshold;not null;default:5" json:"low_stock_threshold"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Product) TableName() string { return "products" }

// BeforeCreate assigns the identity; SQLite has no server-side uuid default.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the product is at or below its threshold.
func (p Product) IsLowStock() bool {
	return p.Stock <= p.LowStockThreshold
}
