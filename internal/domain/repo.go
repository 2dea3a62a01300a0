package domain

import (
	"context"

	"github.com/google/uuid"
)

// ProductFilter narrows product listings. Query matches name, brand and
// model case-insensitively.
type ProductFilter struct {
	Query           string
	Status          ProductStatus
	ProductTypeID   uuid.UUID
	ProductTypeSlug string
	Page            int
	PageSize        int
}

type ProductTypeRepo interface {
	Save(ctx context.Context, pt *ProductType) error
	FindByID(ctx context.Context, id uuid.UUID) (*ProductType, error)
	FindBySlug(ctx context.Context, slug string) (*ProductType, error)
	List(ctx context.Context, status ProductTypeStatus) ([]ProductType, error)
	// Delete refuses with a ReferentialError while any product references
	// the type.
	Delete(ctx context.Context, id uuid.UUID) error
	CountByName(ctx context.Context, nameLower string, excludeID uuid.UUID) (int64, error)
	CountProducts(ctx context.Context, typeID uuid.UUID) (int64, error)
}

type ProductRepo interface {
	// CreateAggregate persists the product and its variants as one
	// transaction: all visible or none.
	CreateAggregate(ctx context.Context, p *Product, variants []Variant) error
	// UpdateAggregate saves the product and, when replaceVariants is
	// non-nil, deletes every existing variant of the product and inserts
	// the new set, all in one transaction.
	UpdateAggregate(ctx context.Context, p *Product, replaceVariants []Variant) error
	// DeleteAggregate removes the product and all owned variants
	// atomically.
	DeleteAggregate(ctx context.Context, id uuid.UUID) error

	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, f ProductFilter) ([]Product, int64, error)
	// CountSlug counts products whose slug or base slug equals slug,
	// excluding excludeID. Both columns share one namespace.
	CountSlug(ctx context.Context, slug string, excludeID uuid.UUID) (int64, error)

	ListVariants(ctx context.Context, productID uuid.UUID) ([]Variant, error)
	FindVariantBySKU(ctx context.Context, sku string) (*Product, *Variant, error)
	FindVariantBySlug(ctx context.Context, slug string) (*Product, *Variant, error)
	// AdjustStock applies delta to the variant's stock and fails without
	// mutating when the result would go negative.
	AdjustStock(ctx context.Context, sku string, delta int) (*Variant, error)
	IncrementSales(ctx context.Context, sku string, qty int) error
	IncrementViews(ctx context.Context, sku string) error
}

// SKUAllocator hands out globally unique SKUs. Implementations must stay
// unique under concurrent callers.
type SKUAllocator interface {
	NextSKU(ctx context.Context) (string, error)
}
