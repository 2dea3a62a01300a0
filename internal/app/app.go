package app

import (
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/tuanngo/mobilestore/internal/adapters/httpserver"
	"github.com/tuanngo/mobilestore/internal/adapters/repo/postgres"
	"github.com/tuanngo/mobilestore/internal/config"
	"github.com/tuanngo/mobilestore/internal/domain"
	"github.com/tuanngo/mobilestore/internal/usecase"
)

type App struct {
	DB            *gorm.DB
	ProductUC     *usecase.ProductUC
	ProductTypeUC *usecase.ProductTypeUC
	SKUs          *postgres.SKUAllocator
	OAuthConfig   *oauth2.Config
}

func NewApp(db *gorm.DB, cfg *config.Config) (*App, error) {
	prodRepo := postgres.NewProductRepo(db)
	typeRepo := postgres.NewProductTypeRepo(db)
	skus := postgres.NewSKUAllocator(db, cfg.SKUPrefix)

	var oauthCfg *oauth2.Config
	googleID := os.Getenv("GOOGLE_CLIENT_ID")
	googleSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Port
	}
	if googleID != "" && googleSecret != "" {
		oauthCfg = &oauth2.Config{
			ClientID:     googleID,
			ClientSecret: googleSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}

	app := &App{DB: db, SKUs: skus, OAuthConfig: oauthCfg}
	app.ProductUC = &usecase.ProductUC{Products: prodRepo, Types: typeRepo, SKUs: skus}
	app.ProductTypeUC = &usecase.ProductTypeUC{Types: typeRepo}
	return app, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(a.ProductUC, a.ProductTypeUC, a.OAuthConfig)
}

func (a *App) Migrate() error {
	if err := a.DB.AutoMigrate(
		&domain.ProductType{}, &domain.Product{}, &domain.Variant{},
	); err != nil {
		return err
	}
	if err := a.SKUs.Ensure(); err != nil {
		return err
	}

	// slug and base_slug share one uniqueness namespace; sparse columns
	// keep their constraint as partial indexes like the sku one
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_products_slug_unique ON products (slug) WHERE slug IS NOT NULL AND slug <> ''").Error
	_ = a.DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku_unique ON variants (sku) WHERE sku IS NOT NULL AND sku <> ''").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_variants_slug ON variants (slug)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_base_slug ON products (base_slug)").Error
	_ = a.DB.Exec("CREATE INDEX IF NOT EXISTS idx_products_specifications_gin ON products USING gin (specifications)").Error

	return nil
}
