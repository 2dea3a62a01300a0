package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanngo/mobilestore/internal/domain"
)

func strp(s string) *string { return &s }

func newFixture(t *testing.T) (*ProductUC, *fakeProductRepo, *fakeTypeRepo, uuid.UUID) {
	t.Helper()
	products := newFakeProductRepo()
	types := newFakeTypeRepo(products)
	pt := domain.ProductType{
		ID:        uuid.New(),
		Name:      "iphone",
		NameLower: "iphone",
		Slug:      "iphone",
		Status:    domain.ProductTypeActive,
		SpecificationFields: []domain.SpecField{
			{Name: "chip", Label: "Chip", Type: domain.FieldText, Required: true},
			{Name: "ram", Label: "RAM", Type: domain.FieldNumber, Required: true},
			{Name: "storage", Label: "Storage", Type: domain.FieldSelect, Options: []string{"128GB", "256GB", "512GB"}, Required: true},
		},
	}
	types.types[pt.ID] = pt
	uc := &ProductUC{Products: products, Types: types, SKUs: &fakeAllocator{}}
	return uc, products, types, pt.ID
}

func validCreate(typeID uuid.UUID) ProductInput {
	return ProductInput{
		Name:          strp("iPhone 15 Pro Max"),
		Model:         strp("iPhone 15 Pro Max"),
		ProductTypeID: &typeID,
		Specifications: map[string]any{
			"chip": "A17 Pro", "ram": float64(8), "storage": "256GB",
		},
		VariantGroups: []domain.VariantGroup{
			{Color: "Black", Images: []string{"/img/black.jpg"}, Options: []domain.VariantOption{
				{VersionName: "256GB", OriginalPrice: 34990000, Price: 33990000, Stock: 50},
			}},
		},
		Actor: "admin@store.vn",
	}
}

func TestCreateProductWithVariants(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	assert.Equal(t, "iphone-15-pro-max", p.BaseSlug)
	assert.Equal(t, p.BaseSlug, p.Slug)
	require.Len(t, p.Variants, 1)
	v := p.Variants[0]
	assert.NotEmpty(t, v.SKU)
	assert.Equal(t, p.BaseSlug+"-256gb", v.Slug)
	assert.Equal(t, "Black 256GB", v.FullName)
	assert.Equal(t, 50, v.Stock)

	stored, err := repo.FindBySlug(context.Background(), "iphone-15-pro-max")
	require.NoError(t, err)
	vars, _ := repo.ListVariants(context.Background(), stored.ID)
	assert.Len(t, vars, 1)
}

func TestCreateProductMissingRequiredFields(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	in := validCreate(typeID)
	in.Name = nil
	in.Actor = ""
	_, err := uc.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Problems, 2)
	assert.Empty(t, repo.products)
}

func TestCreateProductSpecValidationBlocksAllWrites(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	in := validCreate(typeID)
	delete(in.Specifications, "chip")
	_, err := uc.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	// nothing persisted: no orphaned product shell, no variants
	assert.Empty(t, repo.products)
	assert.Empty(t, repo.variants)
}

func TestCreateProductUnknownType(t *testing.T) {
	uc, _, _, _ := newFixture(t)
	in := validCreate(uuid.New())
	_, err := uc.Create(context.Background(), in)
	var re *domain.ReferentialError
	assert.ErrorAs(t, err, &re)
}

func TestCreateProductSlugConflict(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	_, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), validCreate(typeID))
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "slug", ce.Field)
	assert.Equal(t, "iphone-15-pro-max", ce.Value)
}

func TestCreateProductPriceExceedsOriginal(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	in := validCreate(typeID)
	in.VariantGroups[0].Options[0].Price = 35990000
	_, err := uc.Create(context.Background(), in)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, repo.products)
}

func TestCreateProductZeroOriginalPriceNormalized(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	in := validCreate(typeID)
	in.VariantGroups[0].Options[0].OriginalPrice = 0
	p, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, p.Variants, 1)
	// undiscounted option: original price takes the sale price
	assert.Equal(t, 33990000.0, p.Variants[0].OriginalPrice)
	assert.LessOrEqual(t, p.Variants[0].Price, p.Variants[0].OriginalPrice)

	_, v, err := repo.FindVariantBySKU(context.Background(), p.Variants[0].SKU)
	require.NoError(t, err)
	assert.LessOrEqual(t, v.Price, v.OriginalPrice)
}

func TestExpansionPermissiveSkips(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	in := validCreate(typeID)
	in.VariantGroups = []domain.VariantGroup{
		{Color: "", Options: []domain.VariantOption{{VersionName: "128GB", Price: 1, OriginalPrice: 1, Stock: 1}}},
		{Color: "Blue"}, // no options
		{Color: "Black", Options: []domain.VariantOption{
			{VersionName: "   ", Price: 1, OriginalPrice: 1, Stock: 1},
			{VersionName: "256GB", Price: 2, OriginalPrice: 2, Stock: 1},
			{VersionName: "512GB", Price: 3, OriginalPrice: 3, Stock: 1},
		}},
	}
	p, err := uc.Create(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, p.Variants, 2)
	// input order preserved: group order then option order
	assert.Equal(t, "256GB", p.Variants[0].VersionName)
	assert.Equal(t, "512GB", p.Variants[1].VersionName)
	assert.NotEqual(t, p.Variants[0].SKU, p.Variants[1].SKU)
}

func TestUpdateReplacesVariantSetWholesale(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)
	oldSKU := p.Variants[0].SKU

	updated, err := uc.Update(context.Background(), p.ID, ProductInput{
		Actor: "admin@store.vn",
		VariantGroups: []domain.VariantGroup{
			{Color: "Titanium", Options: []domain.VariantOption{
				{VersionName: "512GB", OriginalPrice: 40990000, Price: 39990000, Stock: 10},
				{VersionName: "1TB", OriginalPrice: 46990000, Price: 45990000, Stock: 5},
			}},
		},
	})
	require.NoError(t, err)
	require.Len(t, updated.Variants, 2)

	// old SKU no longer resolves, new ones do
	_, _, err = repo.FindVariantBySKU(context.Background(), oldSKU)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, v, err := repo.FindVariantBySKU(context.Background(), updated.Variants[0].SKU)
	require.NoError(t, err)
	assert.Equal(t, "Titanium 512GB", v.DisplayName())
}

func TestUpdateWithoutVariantPayloadKeepsVariants(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), p.ID, ProductInput{
		Actor: "admin@store.vn",
		Brand: strp("Apple"),
	})
	require.NoError(t, err)
	vars, _ := repo.ListVariants(context.Background(), p.ID)
	assert.Len(t, vars, 1)
}

func TestUpdateModelRegeneratesBothSlugs(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	updated, err := uc.Update(context.Background(), p.ID, ProductInput{
		Actor: "admin@store.vn",
		Model: strp("iPhone 16 Pro Max"),
	})
	require.NoError(t, err)
	assert.Equal(t, "iphone-16-pro-max", updated.Slug)
	assert.Equal(t, "iphone-16-pro-max", updated.BaseSlug)
}

func TestUpdateSlugConflictExcludesSelf(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	// re-submitting the same model must not conflict with itself
	_, err = uc.Update(context.Background(), p.ID, ProductInput{
		Actor: "admin@store.vn",
		Model: strp("iPhone 15 Pro Max "),
	})
	assert.NoError(t, err)
}

func TestUpdateProductTypeImmutable(t *testing.T) {
	uc, _, types, typeID := newFixture(t)

	other := domain.ProductType{ID: uuid.New(), Name: "macbook", NameLower: "macbook", Slug: "macbook"}
	types.types[other.ID] = other

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), p.ID, ProductInput{Actor: "a@b.c", ProductTypeID: &other.ID})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestUpdateRevalidatesSpecifications(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	_, err = uc.Update(context.Background(), p.ID, ProductInput{
		Actor:          "admin@store.vn",
		Specifications: map[string]any{"chip": "A18", "ram": 8},
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, err.Error(), `"storage"`)
}

func TestDeleteCascades(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), p.ID))
	assert.Empty(t, repo.products)
	assert.Empty(t, repo.variants)

	assert.ErrorIs(t, uc.Delete(context.Background(), p.ID), domain.ErrNotFound)
}

func TestAdjustStockGuardsNegative(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)
	sku := p.Variants[0].SKU

	_, err = uc.AdjustStock(context.Background(), sku, -60)
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	v, err := uc.AdjustStock(context.Background(), sku, -20)
	require.NoError(t, err)
	assert.Equal(t, 30, v.Stock)

	_, err = uc.AdjustStock(context.Background(), "NOPE", -1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordSaleDecrementsAndCounts(t *testing.T) {
	uc, repo, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)
	sku := p.Variants[0].SKU

	require.NoError(t, uc.RecordSale(context.Background(), sku, 2))
	_, v, err := repo.FindVariantBySKU(context.Background(), sku)
	require.NoError(t, err)
	assert.Equal(t, 48, v.Stock)
	assert.Equal(t, 2, v.SalesCount)

	assert.Error(t, uc.RecordSale(context.Background(), sku, 0))
}

func TestResolve(t *testing.T) {
	uc, _, _, typeID := newFixture(t)

	p, err := uc.Create(context.Background(), validCreate(typeID))
	require.NoError(t, err)

	res, err := uc.Resolve(context.Background(), p.Slug)
	require.NoError(t, err)
	assert.Nil(t, res.Variant)
	assert.Equal(t, p.ID, res.Product.ID)

	res, err = uc.Resolve(context.Background(), p.BaseSlug+"-256gb")
	require.NoError(t, err)
	require.NotNil(t, res.Variant)
	assert.Empty(t, res.Redirect)
	assert.Equal(t, "256GB", res.Variant.VersionName)

	// non-canonical spelling resolves and points at the canonical slug
	res, err = uc.Resolve(context.Background(), "iPhone-15-Pro-Max-256GB")
	require.NoError(t, err)
	require.NotNil(t, res.Variant)
	assert.Equal(t, p.BaseSlug+"-256gb", res.Redirect)

	_, err = uc.Resolve(context.Background(), "nothing-here")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
