package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GuestCustomerName is recorded when checkout receives a blank customer name.
const GuestCustomerName = "Guest Customer"

// Sale is one committed checkout. Rows are append-only: nothing in the
// codebase updates or deletes them once written.
type Sale struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	CustomerName string          `gorm:"column:customer_name;not null" json:"customer_name"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null" json:"total"`
	Date         time.Time       `gorm:"column:date;not null" json:"date"`
	Items        []SaleItem      `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Sale) TableName() string { return "sales" }

func (s *Sale) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleItem snapshots one cart line at commit time. Later catalog edits do not
// touch it.
type SaleItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	SaleID      uuid.UUID       `gorm:"column:sale_id;type:uuid;not null;index" json:"sale_id"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName string          `gorm:"column:product_name;not null" json:"product_name"`
	Quantity    int             `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null" json:"unit_price"`
	Position    int             `gorm:"column:position;not null;default:0" json:"position"`
}

func (SaleItem) TableName() string { return "sale_items" }

func (i *SaleItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Subtotal is quantity times the captured unit price.
func (i SaleItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
