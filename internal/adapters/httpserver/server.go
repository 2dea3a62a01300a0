package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/usecase"
)

type Server struct {
	router   chi.Router
	products *usecase.ProductUC
	types    *usecase.ProductTypeUC
	validate *validator.Validate

	adminAllowed map[string]struct{}
	adminSecret  []byte
	oauthCfg     *oauth2.Config
}

func New(p *usecase.ProductUC, t *usecase.ProductTypeUC, oauthCfg *oauth2.Config) http.Handler {
	s := &Server{
		products: p,
		types:    t,
		validate: validator.New(),
		oauthCfg: oauthCfg,
	}

	allowed := map[string]struct{}{}
	if raw := os.Getenv("ADMIN_ALLOWED_EMAILS"); raw != "" {
		for _, e := range strings.Split(raw, ",") {
			e = strings.ToLower(strings.TrimSpace(e))
			if e != "" {
				allowed[e] = struct{}{}
			}
		}
	}
	s.adminAllowed = allowed
	sec := os.Getenv("JWT_ADMIN_SECRET")
	if sec == "" {
		sec = os.Getenv("SECRET_KEY")
	}
	if sec == "" {
		sec = "dev-admin-secret"
	}
	s.adminSecret = []byte(sec)

	s.routes()
	return s.router
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})

	r.Post("/admin/login", s.handleAdminLogin)
	if s.oauthCfg != nil {
		r.Get("/auth/google/login", s.handleGoogleLogin)
		r.Get("/auth/google/callback", s.handleGoogleCallback)
	}

	r.Route("/api/product-types", func(r chi.Router) {
		r.Get("/", s.listProductTypes)
		r.Get("/{id}", s.getProductType)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/", s.createProductType)
			r.Put("/{id}", s.updateProductType)
			r.Delete("/{id}", s.deleteProductType)
			r.Post("/{id}/fields", s.addSpecField)
			r.Put("/{id}/fields/{name}", s.updateSpecField)
			r.Delete("/{id}/fields/{name}", s.removeSpecField)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", s.listProducts)
		r.Get("/{id}", s.getProduct)
		r.Get("/{id}/variants", s.listProductVariants)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/", s.createProduct)
			r.Put("/{id}", s.updateProduct)
			r.Delete("/{id}", s.deleteProduct)
		})
	})

	r.Get("/api/resolve/{slug}", s.resolveSlug)

	r.Route("/api/variants/{sku}", func(r chi.Router) {
		r.Post("/view", s.recordView)
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/stock", s.adjustStock)
			r.Post("/sale", s.recordSale)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/admin/export/xlsx", s.exportXLSX)
	})

	s.router = r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			log.Error().Err(err).Msg("encode response")
		}
	}
}

type errorBody struct {
	Error    string   `json:"error"`
	Problems []string `json:"problems,omitempty"`
	Field    string   `json:"field,omitempty"`
	Value    string   `json:"value,omitempty"`
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	var ce *domain.ConflictError
	var re *domain.ReferentialError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "validation failed", Problems: ve.Problems})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusConflict, errorBody{Error: ce.Error(), Field: ce.Field, Value: ce.Value})
	case errors.As(err, &re):
		writeJSON(w, http.StatusConflict, errorBody{Error: re.Error()})
	default:
		log.Error().Err(err).Msg("internal error")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid json: " + err.Error()})
		return false
	}
	return true
}
