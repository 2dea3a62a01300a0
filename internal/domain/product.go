package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductAvailable    ProductStatus = "AVAILABLE"
	ProductOutOfStock   ProductStatus = "OUT_OF_STOCK"
	ProductDiscontinued ProductStatus = "DISCONTINUED"
	ProductComingSoon   ProductStatus = "COMING_SOON"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductAvailable, ProductOutOfStock, ProductDiscontinued, ProductComingSoon:
		return true
	}
	return false
}

type ProductCondition string

const (
	ConditionNew         ProductCondition = "NEW"
	ConditionLikeNew     ProductCondition = "LIKE_NEW"
	ConditionUsed        ProductCondition = "USED"
	ConditionRefurbished ProductCondition = "REFURBISHED"
)

func (c ProductCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionUsed, ConditionRefurbished:
		return true
	}
	return false
}

type InstallmentBadge string

const (
	InstallmentNone       InstallmentBadge = "NONE"
	InstallmentZeroPct    InstallmentBadge = "ZERO_PERCENT"
	InstallmentLowDeposit InstallmentBadge = "LOW_DEPOSIT"
)

func (b InstallmentBadge) Valid() bool {
	switch b {
	case InstallmentNone, InstallmentZeroPct, InstallmentLowDeposit:
		return true
	}
	return false
}

// Product owns its Variants: no variant exists without exactly one owning
// product, and deleting the product cascades. Slug and BaseSlug share one
// uniqueness namespace across all products.
type Product struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	Slug             string           `gorm:"size:140;index" json:"slug"`
	BaseSlug         string           `gorm:"size:140;index" json:"baseSlug"`
	Name             string           `gorm:"size:180" json:"name"`
	Model            string           `gorm:"size:140" json:"model"`
	Description      string           `gorm:"type:text" json:"description"`
	Condition        ProductCondition `gorm:"type:varchar(15);default:'NEW'" json:"condition"`
	Brand            string           `gorm:"size:100" json:"brand"`
	Status           ProductStatus    `gorm:"type:varchar(15);default:'AVAILABLE';index" json:"status"`
	InstallmentBadge InstallmentBadge `gorm:"type:varchar(15);default:'NONE'" json:"installmentBadge"`
	FeaturedImages   []string         `gorm:"type:jsonb;serializer:json" json:"featuredImages"`
	VideoURL         string           `gorm:"size:255" json:"videoUrl"`
	ProductTypeID    uuid.UUID        `gorm:"type:uuid;index" json:"productTypeId"`
	Specifications   map[string]any   `gorm:"type:jsonb;serializer:json" json:"specifications"`
	Variants         []Variant        `json:"variants,omitempty"`
	CreatedBy        string           `gorm:"size:140" json:"createdBy"`
	UpdatedBy        string           `gorm:"size:140" json:"updatedBy"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Variant is one purchasable SKU of a product, identified by color and
// version name. Slug is {product.BaseSlug}-{slugified version name}.
type Variant struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;index" json:"productId"`
	SKU           string            `gorm:"size:100;index" json:"sku"`
	Slug          string            `gorm:"size:180;index" json:"slug"`
	Color         string            `gorm:"size:60" json:"color"`
	VersionName   string            `gorm:"size:140" json:"versionName"`
	OriginalPrice float64           `gorm:"type:decimal(14,2);default:0" json:"originalPrice"`
	Price         float64           `gorm:"type:decimal(14,2);default:0" json:"price"`
	Stock         int               `gorm:"default:0" json:"stock"`
	Images        []string          `gorm:"type:jsonb;serializer:json" json:"images"`
	SalesCount    int               `gorm:"default:0" json:"salesCount"`
	ViewCount     int               `gorm:"default:0" json:"viewCount"`
	LegacyFields  map[string]string `gorm:"type:jsonb;serializer:json" json:"legacyFields,omitempty"`
	FullName      string            `gorm:"-" json:"fullName"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// DisplayName is "{Color} {VersionName}", e.g. "Black 256GB".
func (v *Variant) DisplayName() string {
	return strings.TrimSpace(strings.TrimSpace(v.Color) + " " + strings.TrimSpace(v.VersionName))
}

// AfterFind keeps the serialized fullName in sync with color and version.
func (v *Variant) AfterFind(_ *gorm.DB) error {
	v.FullName = v.DisplayName()
	return nil
}

// VariantGroup is the nested create/update input: one color with its
// shared images and the version options sold in that color.
type VariantGroup struct {
	Color   string          `json:"color"`
	Images  []string        `json:"images"`
	Options []VariantOption `json:"options"`
}

type VariantOption struct {
	VersionName   string  `json:"versionName"`
	OriginalPrice float64 `json:"originalPrice"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock"`
}
