package migrate

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mvalderrama/tillpoint/pkg/db/models"
)

// SeedSampleProducts loads the starter catalog into an empty products table.
// A non-empty catalog is left untouched; the bool reports whether rows were
// written.
func SeedSampleProducts(ctx context.Context, conn *gorm.DB) (bool, error) {
	var count int64
	if err := conn.WithContext(ctx).Model(&models.Product{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	products := []models.Product{
		{
			Name:        "Ear Buds",
			Description: "Enjoy your music with uninterrupted and good quality music",
			Price:       decimal.NewFromFloat(100.0),
			Stock:       6,
			Category:    "Electronics",
		},
		{
			Name:        "Head Phones",
			Description: "A good sound quality head phones",
			Price:       decimal.NewFromFloat(40.0),
			Stock:       0,
			Category:    "Electronics",
		},
		{
			Name:        "Humidifier",
			Description: "Keep your air fresh and clean",
			Price:       decimal.NewFromFloat(20.0),
			Stock:       15,
			Category:    "Accessory",
		},
		{
			Name:        "Mouse",
			Description: "Gaming mouse with RGB lighting",
			Price:       decimal.NewFromFloat(45.0),
			Stock:       8,
			Category:    "Electronics",
		},
		{
			Name:        "Power Bank",
			Description: "A power bank to keep you online even in trips your number one choice",
			Price:       decimal.NewFromFloat(100.0),
			Stock:       12,
			Category:    "Accessory",
		},
	}

	for i := range products {
		products[i].LowStockThreshold = models.DefaultLowStockThreshold
	}

	if err := conn.WithContext(ctx).Create(&products).Error; err != nil {
		return false, err
	}
	return true, nil
}
