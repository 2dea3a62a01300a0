package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tuanngo/mobilestore/internal/domain"
)

// fakeTypeRepo and fakeProductRepo are in-memory stand-ins exercising the
// same coarse aggregate API the postgres repos expose.

type fakeTypeRepo struct {
	mu    sync.Mutex
	types map[uuid.UUID]domain.ProductType
	// products the fake product repo shares, for the referential guard
	products *fakeProductRepo
}

func newFakeTypeRepo(products *fakeProductRepo) *fakeTypeRepo {
	return &fakeTypeRepo{types: map[uuid.UUID]domain.ProductType{}, products: products}
}

func (r *fakeTypeRepo) Save(_ context.Context, pt *domain.ProductType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[pt.ID] = *pt
	return nil
}

func (r *fakeTypeRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.ProductType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pt, ok := r.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := pt
	return &cp, nil
}

func (r *fakeTypeRepo) FindBySlug(_ context.Context, slug string) (*domain.ProductType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, pt := range r.types {
		if pt.Slug == slug {
			cp := pt
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTypeRepo) List(_ context.Context, status domain.ProductTypeStatus) ([]domain.ProductType, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProductType
	for _, pt := range r.types {
		if status == "" || pt.Status == status {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (r *fakeTypeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return &domain.ReferentialError{Msg: "product type is referenced by existing products"}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.types[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.types, id)
	return nil
}

func (r *fakeTypeRepo) CountByName(_ context.Context, nameLower string, excludeID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, pt := range r.types {
		if pt.NameLower == nameLower && pt.ID != excludeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeTypeRepo) CountProducts(_ context.Context, typeID uuid.UUID) (int64, error) {
	if r.products == nil {
		return 0, nil
	}
	r.products.mu.Lock()
	defer r.products.mu.Unlock()
	var n int64
	for _, p := range r.products.products {
		if p.ProductTypeID == typeID {
			n++
		}
	}
	return n, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]domain.Product
	variants map[uuid.UUID]domain.Variant
	failSave bool // simulates a write error inside the transaction
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products: map[uuid.UUID]domain.Product{},
		variants: map[uuid.UUID]domain.Variant{},
	}
}

func (r *fakeProductRepo) CreateAggregate(_ context.Context, p *domain.Product, variants []domain.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return fmt.Errorf("simulated write failure")
	}
	for _, v := range variants {
		for _, ex := range r.variants {
			if ex.SKU == v.SKU {
				return &domain.ConflictError{Field: "sku", Value: v.SKU}
			}
		}
	}
	r.products[p.ID] = *p
	for _, v := range variants {
		r.variants[v.ID] = v
	}
	return nil
}

func (r *fakeProductRepo) UpdateAggregate(_ context.Context, p *domain.Product, replace []domain.Variant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return fmt.Errorf("simulated write failure")
	}
	if _, ok := r.products[p.ID]; !ok {
		return domain.ErrNotFound
	}
	r.products[p.ID] = *p
	if replace == nil {
		return nil
	}
	for id, v := range r.variants {
		if v.ProductID == p.ID {
			delete(r.variants, id)
		}
	}
	for _, v := range replace {
		r.variants[v.ID] = v
	}
	return nil
}

func (r *fakeProductRepo) DeleteAggregate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.products, id)
	for vid, v := range r.variants {
		if v.ProductID == id {
			delete(r.variants, vid)
		}
	}
	return nil
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			cp := p
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Product
	for _, p := range r.products {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.ProductTypeID != uuid.Nil && p.ProductTypeID != f.ProductTypeID {
			continue
		}
		if f.Query != "" {
			q := strings.ToLower(f.Query)
			hay := strings.ToLower(p.Name + " " + p.Brand + " " + p.Model)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProductRepo) CountSlug(_ context.Context, slug string, excludeID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.ID == excludeID {
			continue
		}
		if p.Slug == slug || p.BaseSlug == slug {
			n++
		}
	}
	return n, nil
}

func (r *fakeProductRepo) ListVariants(_ context.Context, productID uuid.UUID) ([]domain.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Variant
	for _, v := range r.variants {
		if v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) FindVariantBySKU(_ context.Context, sku string) (*domain.Product, *domain.Variant, error) {
	return r.findVariant(func(v domain.Variant) bool { return v.SKU == sku })
}

func (r *fakeProductRepo) FindVariantBySlug(_ context.Context, slug string) (*domain.Product, *domain.Variant, error) {
	return r.findVariant(func(v domain.Variant) bool { return v.Slug == slug })
}

func (r *fakeProductRepo) findVariant(match func(domain.Variant) bool) (*domain.Product, *domain.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.variants {
		if match(v) {
			p, ok := r.products[v.ProductID]
			if !ok {
				return nil, nil, domain.ErrNotFound
			}
			cp, cv := p, v
			return &cp, &cv, nil
		}
	}
	return nil, nil, domain.ErrNotFound
}

func (r *fakeProductRepo) AdjustStock(_ context.Context, sku string, delta int) (*domain.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.variants {
		if v.SKU != sku {
			continue
		}
		if v.Stock+delta < 0 {
			return nil, domain.Validationf("insufficient stock for sku %s", sku)
		}
		v.Stock += delta
		r.variants[id] = v
		cp := v
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeProductRepo) IncrementSales(_ context.Context, sku string, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.variants {
		if v.SKU == sku {
			v.SalesCount += qty
			r.variants[id] = v
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *fakeProductRepo) IncrementViews(_ context.Context, sku string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.variants {
		if v.SKU == sku {
			v.ViewCount++
			r.variants[id] = v
			return nil
		}
	}
	return domain.ErrNotFound
}

type fakeAllocator struct {
	mu   sync.Mutex
	next int64
}

func (a *fakeAllocator) NextSKU(context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	return fmt.Sprintf("NM-%06d", a.next), nil
}
