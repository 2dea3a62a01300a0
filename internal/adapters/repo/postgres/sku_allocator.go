package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// skuCounter is a single-row table backing SKU allocation. The row is
// bumped with UPDATE ... RETURNING, so two concurrent transactions can
// never observe the same value.
type skuCounter struct {
	ID   int   `gorm:"primaryKey"`
	Next int64 `gorm:"not null;default:1"`
}

func (skuCounter) TableName() string { return "sku_counters" }

type SKUAllocator struct {
	db     *gorm.DB
	prefix string
}

func NewSKUAllocator(db *gorm.DB, prefix string) *SKUAllocator {
	if prefix == "" {
		prefix = "NM"
	}
	return &SKUAllocator{db: db, prefix: prefix}
}

// Ensure creates the counter row when it does not exist yet.
func (a *SKUAllocator) Ensure() error {
	if err := a.db.AutoMigrate(&skuCounter{}); err != nil {
		return err
	}
	return a.db.Exec("INSERT INTO sku_counters (id, next) VALUES (1, 1) ON CONFLICT (id) DO NOTHING").Error
}

func (a *SKUAllocator) NextSKU(ctx context.Context) (string, error) {
	var next int64
	err := a.db.WithContext(ctx).
		Raw("UPDATE sku_counters SET next = next + 1 WHERE id = 1 RETURNING next - 1").
		Scan(&next).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%06d", a.prefix, next), nil
}
