package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanngo/mobilestore/internal/domain"
)

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) CreateAggregate(ctx context.Context, p *domain.Product, variants []domain.Variant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Create(p).Error; err != nil {
			return translateConflict(err)
		}
		if len(variants) > 0 {
			if err := tx.Create(&variants).Error; err != nil {
				return translateConflict(err)
			}
		}
		return nil
	})
}

func (r *ProductRepo) UpdateAggregate(ctx context.Context, p *domain.Product, replaceVariants []domain.Variant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Variants").Save(p).Error; err != nil {
			return translateConflict(err)
		}
		if replaceVariants == nil {
			return nil
		}
		if err := tx.Where("product_id = ?", p.ID).Delete(&domain.Variant{}).Error; err != nil {
			return err
		}
		if len(replaceVariants) > 0 {
			if err := tx.Create(&replaceVariants).Error; err != nil {
				return translateConflict(err)
			}
		}
		return nil
	})
}

func (r *ProductRepo) DeleteAggregate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		if err := tx.First(&p, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.Variant{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Product{}, "id = ?", id).Error
	})
}

func (r *ProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		First(&p, "slug = ?", slug).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepo) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Product{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProductTypeID != uuid.Nil {
		q = q.Where("product_type_id = ?", f.ProductTypeID)
	}
	if f.ProductTypeSlug != "" {
		q = q.Where("product_type_id IN (?)",
			r.db.Model(&domain.ProductType{}).Select("id").Where("slug = ?", f.ProductTypeSlug))
	}
	if f.Query != "" {
		like := "%" + strings.TrimSpace(f.Query) + "%"
		q = q.Where("LOWER(name) LIKE LOWER(?) OR LOWER(brand) LIKE LOWER(?) OR LOWER(model) LIKE LOWER(?)", like, like, like)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = 20
	}
	var list []domain.Product
	err := q.Order("created_at desc").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("created_at asc") }).
		Find(&list).Error
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *ProductRepo) CountSlug(ctx context.Context, slug string, excludeID uuid.UUID) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.Product{}).Where("slug = ? OR base_slug = ?", slug, slug)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	return n, q.Count(&n).Error
}

// --- variants ---

func (r *ProductRepo) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	var list []domain.Variant
	if err := r.db.WithContext(ctx).Where("product_id = ?", productID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ProductRepo) FindVariantBySKU(ctx context.Context, sku string) (*domain.Product, *domain.Variant, error) {
	return r.findVariant(ctx, "sku = ?", sku)
}

func (r *ProductRepo) FindVariantBySlug(ctx context.Context, slug string) (*domain.Product, *domain.Variant, error) {
	return r.findVariant(ctx, "slug = ?", slug)
}

func (r *ProductRepo) findVariant(ctx context.Context, cond string, arg any) (*domain.Product, *domain.Variant, error) {
	var v domain.Variant
	if err := r.db.WithContext(ctx).First(&v, cond, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, domain.ErrNotFound
		}
		return nil, nil, err
	}
	var p domain.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", v.ProductID).Error; err != nil {
		return nil, nil, err
	}
	return &p, &v, nil
}

// AdjustStock is its own small transaction. The WHERE guard keeps stock
// from ever going negative; zero rows affected means either an unknown
// SKU or insufficient stock.
func (r *ProductRepo) AdjustStock(ctx context.Context, sku string, delta int) (*domain.Variant, error) {
	var out domain.Variant
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Variant{}).
			Where("sku = ? AND COALESCE(stock,0) + ? >= 0", sku, delta).
			UpdateColumn("stock", gorm.Expr("COALESCE(stock,0) + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&domain.Variant{}).Where("sku = ?", sku).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return domain.ErrNotFound
			}
			return domain.Validationf("insufficient stock for sku %s", sku)
		}
		return tx.First(&out, "sku = ?", sku).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ProductRepo) IncrementSales(ctx context.Context, sku string, qty int) error {
	res := r.db.WithContext(ctx).Model(&domain.Variant{}).
		Where("sku = ?", sku).
		UpdateColumn("sales_count", gorm.Expr("COALESCE(sales_count,0) + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepo) IncrementViews(ctx context.Context, sku string) error {
	res := r.db.WithContext(ctx).Model(&domain.Variant{}).
		Where("sku = ?", sku).
		UpdateColumn("view_count", gorm.Expr("COALESCE(view_count,0) + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// translateConflict maps unique-index violations onto the domain conflict
// type so handlers can name the offending field.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key") && !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	switch {
	case strings.Contains(msg, "sku"):
		return &domain.ConflictError{Field: "sku", Value: ""}
	case strings.Contains(msg, "slug"):
		return &domain.ConflictError{Field: "slug", Value: ""}
	case strings.Contains(msg, "name"):
		return &domain.ConflictError{Field: "name", Value: ""}
	}
	return &domain.ConflictError{Field: "unique", Value: ""}
}
