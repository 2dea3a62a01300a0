package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/slug"
)

// ProductInput carries a full create payload or a partial update payload.
// Pointer fields distinguish "absent" from "zero" on update.
type ProductInput struct {
	Name             *string
	Model            *string
	Slug             *string
	Description      *string
	Condition        *domain.ProductCondition
	Brand            *string
	Status           *domain.ProductStatus
	InstallmentBadge *domain.InstallmentBadge
	FeaturedImages   []string
	VideoURL         *string
	ProductTypeID    *uuid.UUID
	Specifications   map[string]any
	// VariantGroups nil means "leave variants alone"; non-nil replaces
	// the whole variant set.
	VariantGroups []domain.VariantGroup
	Actor         string
}

type ProductUC struct {
	Products domain.ProductRepo
	Types    domain.ProductTypeRepo
	SKUs     domain.SKUAllocator
}

func (uc *ProductUC) List(ctx context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	if f.PageSize == 0 {
		f.PageSize = 20
	}
	return uc.Products.List(ctx, f)
}

func (uc *ProductUC) Get(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return uc.Products.FindByID(ctx, id)
}

func (uc *ProductUC) GetBySlug(ctx context.Context, s string) (*domain.Product, error) {
	if s == "" {
		return nil, domain.ErrNotFound
	}
	return uc.Products.FindBySlug(ctx, s)
}

// Create validates the payload against the referenced product type,
// derives the base slug from the model, expands variant groups into SKU'd
// variants and persists the whole aggregate in one transaction.
func (uc *ProductUC) Create(ctx context.Context, in ProductInput) (*domain.Product, error) {
	var problems []string
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		problems = append(problems, "name is required")
	}
	if in.Model == nil || strings.TrimSpace(*in.Model) == "" {
		problems = append(problems, "model is required")
	}
	if in.ProductTypeID == nil || *in.ProductTypeID == uuid.Nil {
		problems = append(problems, "productTypeId is required")
	}
	if strings.TrimSpace(in.Actor) == "" {
		problems = append(problems, "actor identity is required")
	}
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	pt, err := uc.Types.FindByID(ctx, *in.ProductTypeID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, &domain.ReferentialError{Msg: "product type " + in.ProductTypeID.String() + " does not exist"}
		}
		return nil, err
	}
	if err := pt.ValidateSpecifications(in.Specifications); err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(*in.Name),
		Model:            strings.TrimSpace(*in.Model),
		Condition:        domain.ConditionNew,
		Status:           domain.ProductAvailable,
		InstallmentBadge: domain.InstallmentNone,
		ProductTypeID:    pt.ID,
		Specifications:   in.Specifications,
		FeaturedImages:   in.FeaturedImages,
		CreatedBy:        in.Actor,
		UpdatedBy:        in.Actor,
	}
	applyScalars(p, in)

	base := slug.Make(p.Model)
	if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
		base = slug.Make(*in.Slug)
	}
	if base == "" {
		return nil, domain.Validationf("model %q yields an empty slug", p.Model)
	}
	taken, err := uc.Products.CountSlug(ctx, base, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, &domain.ConflictError{Field: "slug", Value: base}
	}
	p.Slug = base
	p.BaseSlug = base

	variants, err := uc.expandGroups(ctx, p, in.VariantGroups)
	if err != nil {
		return nil, err
	}

	if err := uc.Products.CreateAggregate(ctx, p, variants); err != nil {
		return nil, err
	}
	p.Variants = variants
	log.Info().Str("slug", p.Slug).Int("variants", len(variants)).Str("actor", in.Actor).Msg("product created")
	return p, nil
}

// Update applies a partial payload. Spec validation reruns whenever
// specifications are supplied; a non-nil variant payload replaces the
// entire variant set. ProductTypeID is immutable.
func (uc *ProductUC) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*domain.Product, error) {
	if strings.TrimSpace(in.Actor) == "" {
		return nil, domain.Validationf("actor identity is required")
	}
	p, err := uc.Products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.ProductTypeID != nil && *in.ProductTypeID != p.ProductTypeID {
		return nil, domain.Validationf("productTypeId is immutable")
	}

	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	modelChanged := false
	if in.Model != nil && strings.TrimSpace(*in.Model) != p.Model {
		p.Model = strings.TrimSpace(*in.Model)
		modelChanged = true
	}
	applyScalars(p, in)
	if in.FeaturedImages != nil {
		p.FeaturedImages = in.FeaturedImages
	}

	if modelChanged || (in.Slug != nil && strings.TrimSpace(*in.Slug) != "") {
		base := slug.Make(p.Model)
		if in.Slug != nil && strings.TrimSpace(*in.Slug) != "" {
			base = slug.Make(*in.Slug)
		}
		if base == "" {
			return nil, domain.Validationf("model %q yields an empty slug", p.Model)
		}
		if base != p.Slug {
			taken, err := uc.Products.CountSlug(ctx, base, p.ID)
			if err != nil {
				return nil, err
			}
			if taken > 0 {
				return nil, &domain.ConflictError{Field: "slug", Value: base}
			}
		}
		// slug and baseSlug move together
		p.Slug = base
		p.BaseSlug = base
	}

	if in.Specifications != nil {
		pt, err := uc.Types.FindByID(ctx, p.ProductTypeID)
		if err != nil {
			return nil, err
		}
		if err := pt.ValidateSpecifications(in.Specifications); err != nil {
			return nil, err
		}
		p.Specifications = in.Specifications
	}

	var replacement []domain.Variant
	if in.VariantGroups != nil {
		replacement, err = uc.expandGroups(ctx, p, in.VariantGroups)
		if err != nil {
			return nil, err
		}
	}

	p.UpdatedBy = in.Actor
	if err := uc.Products.UpdateAggregate(ctx, p, replacement); err != nil {
		return nil, err
	}
	if replacement != nil {
		p.Variants = replacement
	}
	log.Info().Str("slug", p.Slug).Bool("variants_replaced", replacement != nil).Str("actor", in.Actor).Msg("product updated")
	return p, nil
}

func (uc *ProductUC) Delete(ctx context.Context, id uuid.UUID) error {
	return uc.Products.DeleteAggregate(ctx, id)
}

func (uc *ProductUC) ListVariants(ctx context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	if productID == uuid.Nil {
		return nil, domain.ErrNotFound
	}
	return uc.Products.ListVariants(ctx, productID)
}

// Resolution is the answer to "what does this slug point at". When the
// slug matched a variant rather than the product itself, Redirect carries
// the variant's canonical slug.
type Resolution struct {
	Product  *domain.Product `json:"product"`
	Variant  *domain.Variant `json:"variant,omitempty"`
	Redirect string          `json:"redirect,omitempty"`
}

// Resolve looks a slug up first as a product, then as a variant. The
// input is canonicalized before the variant lookup, so a non-canonical
// spelling still resolves and carries the redirect hint.
func (uc *ProductUC) Resolve(ctx context.Context, s string) (*Resolution, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, domain.ErrNotFound
	}
	if p, err := uc.Products.FindBySlug(ctx, s); err == nil {
		return &Resolution{Product: p}, nil
	} else if err != domain.ErrNotFound {
		return nil, err
	}
	canon := slug.Make(s)
	if canon == "" {
		return nil, domain.ErrNotFound
	}
	p, v, err := uc.Products.FindVariantBySlug(ctx, canon)
	if err != nil {
		return nil, err
	}
	res := &Resolution{Product: p, Variant: v}
	if v.Slug != s {
		res.Redirect = v.Slug
	}
	return res, nil
}

// --- variant counters, each its own small transaction ---

func (uc *ProductUC) AdjustStock(ctx context.Context, sku string, delta int) (*domain.Variant, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, domain.ErrNotFound
	}
	return uc.Products.AdjustStock(ctx, sku, delta)
}

func (uc *ProductUC) RecordSale(ctx context.Context, sku string, qty int) error {
	if qty <= 0 {
		return domain.Validationf("sale quantity must be positive")
	}
	if _, err := uc.Products.AdjustStock(ctx, sku, -qty); err != nil {
		return err
	}
	return uc.Products.IncrementSales(ctx, sku, qty)
}

func (uc *ProductUC) RecordView(ctx context.Context, sku string) error {
	return uc.Products.IncrementViews(ctx, sku)
}

// expandGroups flattens (color × version) groups into variant records in
// input order. Groups with a blank color or no options, and options with
// a blank version name, are skipped rather than rejected.
func (uc *ProductUC) expandGroups(ctx context.Context, p *domain.Product, groups []domain.VariantGroup) ([]domain.Variant, error) {
	variants := make([]domain.Variant, 0, len(groups))
	for _, g := range groups {
		color := strings.TrimSpace(g.Color)
		if color == "" || len(g.Options) == 0 {
			continue
		}
		for _, opt := range g.Options {
			version := strings.TrimSpace(opt.VersionName)
			if version == "" {
				continue
			}
			if opt.Price < 0 || opt.OriginalPrice < 0 || opt.Stock < 0 {
				return nil, domain.Validationf("variant %s %s: negative price or stock", color, version)
			}
			// an absent original price means "no discount": it becomes the
			// sale price, so price <= originalPrice holds on every variant
			original := opt.OriginalPrice
			if original == 0 {
				original = opt.Price
			}
			if opt.Price > original {
				return nil, domain.Validationf("variant %s %s: price %.0f exceeds original price %.0f", color, version, opt.Price, original)
			}
			sku, err := uc.SKUs.NextSKU(ctx)
			if err != nil {
				return nil, err
			}
			v := domain.Variant{
				ID:            uuid.New(),
				ProductID:     p.ID,
				SKU:           sku,
				Slug:          slug.ForVariant(p.BaseSlug, version),
				Color:         color,
				VersionName:   version,
				OriginalPrice: original,
				Price:         opt.Price,
				Stock:         opt.Stock,
				Images:        g.Images,
			}
			v.FullName = v.DisplayName()
			variants = append(variants, v)
		}
	}
	return variants, nil
}

func applyScalars(p *domain.Product, in ProductInput) {
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Condition != nil && in.Condition.Valid() {
		p.Condition = *in.Condition
	}
	if in.Brand != nil {
		p.Brand = strings.TrimSpace(*in.Brand)
	}
	if in.Status != nil && in.Status.Valid() {
		p.Status = *in.Status
	}
	if in.InstallmentBadge != nil && in.InstallmentBadge.Valid() {
		p.InstallmentBadge = *in.InstallmentBadge
	}
	if in.VideoURL != nil {
		p.VideoURL = strings.TrimSpace(*in.VideoURL)
	}
}
