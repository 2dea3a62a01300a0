package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/slug"
)

type ProductTypeInput struct {
	Name                *string
	Slug                *string
	Description         *string
	Icon                *string
	DisplayOrder        *int
	Status              *domain.ProductTypeStatus
	SpecificationFields []domain.SpecField
	Actor               string
}

type ProductTypeUC struct {
	Types domain.ProductTypeRepo
}

func (uc *ProductTypeUC) List(ctx context.Context, status domain.ProductTypeStatus) ([]domain.ProductType, error) {
	return uc.Types.List(ctx, status)
}

func (uc *ProductTypeUC) Get(ctx context.Context, id uuid.UUID) (*domain.ProductType, error) {
	return uc.Types.FindByID(ctx, id)
}

func (uc *ProductTypeUC) Create(ctx context.Context, in ProductTypeInput) (*domain.ProductType, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, domain.Validationf("name is required")
	}
	name := strings.TrimSpace(*in.Name)

	// name uniqueness is case-insensitive
	dup, err := uc.Types.CountByName(ctx, strings.ToLower(name), uuid.Nil)
	if err != nil {
		return nil, err
	}
	if dup > 0 {
		return nil, &domain.ConflictError{Field: "name", Value: name}
	}

	pt := &domain.ProductType{
		ID:                  uuid.New(),
		Name:                name,
		NameLower:           strings.ToLower(name),
		Slug:                slug.Make(name),
		Status:              domain.ProductTypeActive,
		SpecificationFields: in.SpecificationFields,
		CreatedBy:           in.Actor,
		UpdatedBy:           in.Actor,
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		pt.Slug = slug.Make(*in.Slug)
	}
	if pt.Slug == "" {
		return nil, domain.Validationf("name %q yields an empty slug", name)
	}
	applyTypeScalars(pt, in)
	if err := pt.NormalizeFields(); err != nil {
		return nil, err
	}
	if err := uc.Types.Save(ctx, pt); err != nil {
		return nil, err
	}
	log.Info().Str("slug", pt.Slug).Int("fields", len(pt.SpecificationFields)).Msg("product type created")
	return pt, nil
}

func (uc *ProductTypeUC) Update(ctx context.Context, id uuid.UUID, in ProductTypeInput) (*domain.ProductType, error) {
	pt, err := uc.Types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		name := strings.TrimSpace(*in.Name)
		if !strings.EqualFold(name, pt.Name) {
			dup, err := uc.Types.CountByName(ctx, strings.ToLower(name), pt.ID)
			if err != nil {
				return nil, err
			}
			if dup > 0 {
				return nil, &domain.ConflictError{Field: "name", Value: name}
			}
		}
		pt.Name = name
		pt.NameLower = strings.ToLower(name)
	}
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		pt.Slug = slug.Make(*in.Slug)
		if pt.Slug == "" {
			return nil, domain.Validationf("slug must not be empty")
		}
	}
	applyTypeScalars(pt, in)
	if in.SpecificationFields != nil {
		pt.SpecificationFields = in.SpecificationFields
	}
	if err := pt.NormalizeFields(); err != nil {
		return nil, err
	}
	pt.UpdatedBy = in.Actor
	return pt, uc.Types.Save(ctx, pt)
}

// Delete is guarded: it fails with a ReferentialError while any product
// references the type. The repo enforces the guard inside its
// transaction; the precheck here just produces a better message earlier.
func (uc *ProductTypeUC) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := uc.Types.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ReferentialError{Msg: "product type is referenced by existing products"}
	}
	return uc.Types.Delete(ctx, id)
}

// --- single-field sub-operations ---

func (uc *ProductTypeUC) AddField(ctx context.Context, id uuid.UUID, f domain.SpecField, actor string) (*domain.ProductType, error) {
	pt, err := uc.Types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pt.FieldByName(strings.TrimSpace(f.Name)) != nil {
		return nil, &domain.ConflictError{Field: "field", Value: f.Name}
	}
	pt.SpecificationFields = append(pt.SpecificationFields, f)
	if err := pt.NormalizeFields(); err != nil {
		return nil, err
	}
	pt.UpdatedBy = actor
	return pt, uc.Types.Save(ctx, pt)
}

func (uc *ProductTypeUC) UpdateField(ctx context.Context, id uuid.UUID, name string, f domain.SpecField, actor string) (*domain.ProductType, error) {
	pt, err := uc.Types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing := pt.FieldByName(name)
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if strings.TrimSpace(f.Name) != name && pt.FieldByName(strings.TrimSpace(f.Name)) != nil {
		return nil, &domain.ConflictError{Field: "field", Value: f.Name}
	}
	*existing = f
	if err := pt.NormalizeFields(); err != nil {
		return nil, err
	}
	pt.UpdatedBy = actor
	return pt, uc.Types.Save(ctx, pt)
}

func (uc *ProductTypeUC) RemoveField(ctx context.Context, id uuid.UUID, name string, actor string) (*domain.ProductType, error) {
	pt, err := uc.Types.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := pt.SpecificationFields[:0]
	found := false
	for _, f := range pt.SpecificationFields {
		if f.Name == name {
			found = true
			continue
		}
		kept = append(kept, f)
	}
	if !found {
		return nil, domain.ErrNotFound
	}
	pt.SpecificationFields = kept
	pt.UpdatedBy = actor
	return pt, uc.Types.Save(ctx, pt)
}

func applyTypeScalars(pt *domain.ProductType, in ProductTypeInput) {
	if in.Description != nil {
		pt.Description = *in.Description
	}
	if in.Icon != nil {
		pt.Icon = strings.TrimSpace(*in.Icon)
	}
	if in.DisplayOrder != nil {
		pt.DisplayOrder = *in.DisplayOrder
	}
	if in.Status != nil && (*in.Status == domain.ProductTypeActive || *in.Status == domain.ProductTypeInactive) {
		pt.Status = *in.Status
	}
}
