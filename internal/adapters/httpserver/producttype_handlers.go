package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/usecase"
)

type specFieldRequest struct {
	Name        string   `json:"name" validate:"required,max=80"`
	Label       string   `json:"label" validate:"required,max=140"`
	Type        string   `json:"type" validate:"required,oneof=TEXT NUMBER SELECT MULTISELECT TEXTAREA"`
	Options     []string `json:"options"`
	Required    bool     `json:"required"`
	Placeholder string   `json:"placeholder"`
	HelpText    string   `json:"helpText"`
	Order       int      `json:"order"`
}

func (f specFieldRequest) toDomain() domain.SpecField {
	return domain.SpecField{
		Name:        f.Name,
		Label:       f.Label,
		Type:        domain.FieldType(f.Type),
		Options:     f.Options,
		Required:    f.Required,
		Placeholder: f.Placeholder,
		HelpText:    f.HelpText,
		Order:       f.Order,
	}
}

type productTypeRequest struct {
	Name                *string            `json:"name"`
	Slug                *string            `json:"slug"`
	Description         *string            `json:"description"`
	Icon                *string            `json:"icon"`
	DisplayOrder        *int               `json:"displayOrder"`
	Status              *string            `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	SpecificationFields []specFieldRequest `json:"specificationFields"`
}

func (req productTypeRequest) toInput(actor string) usecase.ProductTypeInput {
	in := usecase.ProductTypeInput{
		Name:         req.Name,
		Slug:         req.Slug,
		Description:  req.Description,
		Icon:         req.Icon,
		DisplayOrder: req.DisplayOrder,
		Actor:        actor,
	}
	if req.Status != nil {
		st := domain.ProductTypeStatus(*req.Status)
		in.Status = &st
	}
	if req.SpecificationFields != nil {
		in.SpecificationFields = make([]domain.SpecField, 0, len(req.SpecificationFields))
		for _, f := range req.SpecificationFields {
			in.SpecificationFields = append(in.SpecificationFields, f.toDomain())
		}
	}
	return in
}

func (s *Server) listProductTypes(w http.ResponseWriter, r *http.Request) {
	status := domain.ProductTypeStatus(r.URL.Query().Get("status"))
	list, err := s.types.List(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": list, "total": len(list)})
}

func (s *Server) getProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	pt, err := s.types.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func (s *Server) createProductType(w http.ResponseWriter, r *http.Request) {
	var req productTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	pt, err := s.types.Create(r.Context(), req.toInput(Actor(r.Context())))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pt)
}

func (s *Server) updateProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req productTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	pt, err := s.types.Update(r.Context(), id, req.toInput(Actor(r.Context())))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func (s *Server) deleteProductType(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := s.types.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted"})
}

func (s *Server) addSpecField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req specFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	pt, err := s.types.AddField(r.Context(), id, req.toDomain(), Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func (s *Server) updateSpecField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req specFieldRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	pt, err := s.types.UpdateField(r.Context(), id, chi.URLParam(r, "name"), req.toDomain(), Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func (s *Server) removeSpecField(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	pt, err := s.types.RemoveField(r.Context(), id, chi.URLParam(r, "name"), Actor(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}
