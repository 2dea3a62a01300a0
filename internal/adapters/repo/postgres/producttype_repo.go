package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tuanngo/mobilestore/internal/domain"
)

type ProductTypeRepo struct{ db *gorm.DB }

func NewProductTypeRepo(db *gorm.DB) *ProductTypeRepo { return &ProductTypeRepo{db: db} }

func (r *ProductTypeRepo) Save(ctx context.Context, pt *domain.ProductType) error {
	return translateConflict(r.db.WithContext(ctx).Save(pt).Error)
}

func (r *ProductTypeRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.ProductType, error) {
	var pt domain.ProductType
	if err := r.db.WithContext(ctx).First(&pt, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *ProductTypeRepo) FindBySlug(ctx context.Context, slug string) (*domain.ProductType, error) {
	var pt domain.ProductType
	if err := r.db.WithContext(ctx).First(&pt, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &pt, nil
}

func (r *ProductTypeRepo) List(ctx context.Context, status domain.ProductTypeStatus) ([]domain.ProductType, error) {
	q := r.db.WithContext(ctx).Model(&domain.ProductType{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var list []domain.ProductType
	if err := q.Order("display_order asc, name_lower asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Delete re-checks the referential guard inside the transaction so a
// product created between the usecase precheck and the delete still
// blocks it.
func (r *ProductTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var refs int64
		if err := tx.Model(&domain.Product{}).Where("product_type_id = ?", id).Count(&refs).Error; err != nil {
			return err
		}
		if refs > 0 {
			return &domain.ReferentialError{Msg: "product type is referenced by existing products"}
		}
		res := tx.Delete(&domain.ProductType{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *ProductTypeRepo) CountByName(ctx context.Context, nameLower string, excludeID uuid.UUID) (int64, error) {
	var n int64
	q := r.db.WithContext(ctx).Model(&domain.ProductType{}).Where("name_lower = ?", nameLower)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	return n, q.Count(&n).Error
}

func (r *ProductTypeRepo) CountProducts(ctx context.Context, typeID uuid.UUID) (int64, error) {
	var n int64
	return n, r.db.WithContext(ctx).Model(&domain.Product{}).Where("product_type_id = ?", typeID).Count(&n).Error
}
