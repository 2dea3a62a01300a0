package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/tuanngo/mobilestore/internal/domain"
)

// exportXLSX streams the whole catalog as a workbook: one Products sheet,
// one Variants sheet. Specifications serialize as JSON in a single cell.
func (s *Server) exportXLSX(w http.ResponseWriter, r *http.Request) {
	list, _, err := s.products.List(r.Context(), domain.ProductFilter{Page: 1, PageSize: 10000})
	if err != nil {
		writeError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const prodSheet = "Products"
	f.SetSheetName("Sheet1", prodSheet)
	prodHeader := []any{"Slug", "Name", "Model", "Brand", "Condition", "Status", "ProductType", "Specifications", "Variants"}
	_ = f.SetSheetRow(prodSheet, "A1", &prodHeader)
	for i, p := range list {
		specs, _ := json.Marshal(p.Specifications)
		row := []any{p.Slug, p.Name, p.Model, p.Brand, string(p.Condition), string(p.Status), p.ProductTypeID.String(), string(specs), len(p.Variants)}
		_ = f.SetSheetRow(prodSheet, fmt.Sprintf("A%d", i+2), &row)
	}

	const varSheet = "Variants"
	_, err = f.NewSheet(varSheet)
	if err != nil {
		writeError(w, err)
		return
	}
	varHeader := []any{"SKU", "ProductSlug", "Slug", "Color", "Version", "OriginalPrice", "Price", "Stock", "Sales", "Views"}
	_ = f.SetSheetRow(varSheet, "A1", &varHeader)
	rowN := 2
	for _, p := range list {
		for _, v := range p.Variants {
			row := []any{v.SKU, p.Slug, v.Slug, v.Color, v.VersionName, v.OriginalPrice, v.Price, v.Stock, v.SalesCount, v.ViewCount}
			_ = f.SetSheetRow(varSheet, fmt.Sprintf("A%d", rowN), &row)
			rowN++
		}
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=catalog-%s.xlsx", time.Now().Format("20060102")))
	if err := f.Write(w); err != nil {
		log.Error().Err(err).Msg("xlsx export")
	}
}
