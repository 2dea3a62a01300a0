package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/usecase"
)

type variantGroupRequest struct {
	Color   string          `json:"color"`
	Images  []string        `json:"images"`
	Options []variantOptReq `json:"options"`
}

type variantOptReq struct {
	VersionName   string  `json:"versionName"`
	OriginalPrice float64 `json:"originalPrice" validate:"gte=0"`
	Price         float64 `json:"price" validate:"gte=0"`
	Stock         int     `json:"stock" validate:"gte=0"`
}

type productRequest struct {
	Name             *string               `json:"name"`
	Model            *string               `json:"model"`
	Slug             *string               `json:"slug"`
	Description      *string               `json:"description"`
	Condition        *string               `json:"condition" validate:"omitempty,oneof=NEW LIKE_NEW USED REFURBISHED"`
	Brand            *string               `json:"brand"`
	Status           *string               `json:"status" validate:"omitempty,oneof=AVAILABLE OUT_OF_STOCK DISCONTINUED COMING_SOON"`
	InstallmentBadge *string               `json:"installmentBadge" validate:"omitempty,oneof=NONE ZERO_PERCENT LOW_DEPOSIT"`
	FeaturedImages   []string              `json:"featuredImages"`
	VideoURL         *string               `json:"videoUrl"`
	ProductTypeID    *string               `json:"productTypeId"`
	Specifications   map[string]any        `json:"specifications"`
	Variants         []variantGroupRequest `json:"variants"`
}

func (req productRequest) toInput(actor string) (usecase.ProductInput, error) {
	in := usecase.ProductInput{
		Name:           req.Name,
		Model:          req.Model,
		Slug:           req.Slug,
		Description:    req.Description,
		Brand:          req.Brand,
		FeaturedImages: req.FeaturedImages,
		VideoURL:       req.VideoURL,
		Specifications: req.Specifications,
		Actor:          actor,
	}
	if req.Condition != nil {
		c := domain.ProductCondition(*req.Condition)
		in.Condition = &c
	}
	if req.Status != nil {
		st := domain.ProductStatus(*req.Status)
		in.Status = &st
	}
	if req.InstallmentBadge != nil {
		b := domain.InstallmentBadge(*req.InstallmentBadge)
		in.InstallmentBadge = &b
	}
	if req.ProductTypeID != nil {
		id, err := uuid.Parse(*req.ProductTypeID)
		if err != nil {
			return in, domain.Validationf("productTypeId is not a valid id")
		}
		in.ProductTypeID = &id
	}
	if req.Variants != nil {
		groups := make([]domain.VariantGroup, 0, len(req.Variants))
		for _, g := range req.Variants {
			opts := make([]domain.VariantOption, 0, len(g.Options))
			for _, o := range g.Options {
				opts = append(opts, domain.VariantOption{
					VersionName:   o.VersionName,
					OriginalPrice: o.OriginalPrice,
					Price:         o.Price,
					Stock:         o.Stock,
				})
			}
			groups = append(groups, domain.VariantGroup{Color: g.Color, Images: g.Images, Options: opts})
		}
		in.VariantGroups = groups
	}
	return in, nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := domain.ProductFilter{
		Query:           q.Get("q"),
		Status:          domain.ProductStatus(q.Get("status")),
		ProductTypeSlug: q.Get("productTypeSlug"),
	}
	if raw := q.Get("productTypeId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid productTypeId"})
			return
		}
		f.ProductTypeID = id
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	list, total, err := s.products.List(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": total, "page": max(f.Page, 1)})
}

// getProduct accepts a uuid or a slug in {id}.
func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	var (
		p   *domain.Product
		err error
	)
	if id, perr := uuid.Parse(raw); perr == nil {
		p, err = s.products.Get(r.Context(), id)
	} else {
		p, err = s.products.GetBySlug(r.Context(), raw)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	in, err := req.toInput(Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.products.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	in, err := req.toInput(Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.products.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.products.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (s *Server) listProductVariants(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	list, err := s.products.ListVariants(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list})
}

func (s *Server) resolveSlug(w http.ResponseWriter, r *http.Request) {
	res, err := s.products.Resolve(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	v, err := s.products.AdjustStock(r.Context(), chi.URLParam(r, "sku"), req.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) recordSale(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Qty int `json:"qty"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Qty == 0 {
		req.Qty = 1
	}
	if err := s.products.RecordSale(r.Context(), chi.URLParam(r, "sku"), req.Qty); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) recordView(w http.ResponseWriter, r *http.Request) {
	if err := s.products.RecordView(r.Context(), chi.URLParam(r, "sku")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
