package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProductTypeStatus string

const (
	ProductTypeActive   ProductTypeStatus = "ACTIVE"
	ProductTypeInactive ProductTypeStatus = "INACTIVE"
)

// FieldType is the closed set of specification field kinds. Validation
// switches exhaustively over these; anything else is rejected at
// descriptor-write time.
type FieldType string

const (
	FieldText        FieldType = "TEXT"
	FieldNumber      FieldType = "NUMBER"
	FieldSelect      FieldType = "SELECT"
	FieldMultiSelect FieldType = "MULTISELECT"
	FieldTextArea    FieldType = "TEXTAREA"
)

func (t FieldType) Valid() bool {
	switch t {
	case FieldText, FieldNumber, FieldSelect, FieldMultiSelect, FieldTextArea:
		return true
	}
	return false
}

// SpecField describes one user-defined specification field of a
// ProductType. Options only carry meaning for SELECT and MULTISELECT.
type SpecField struct {
	Name        string    `json:"name"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Options     []string  `json:"options,omitempty"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	HelpText    string    `json:"helpText,omitempty"`
	Order       int       `json:"order"`
}

// ProductType is a product category with a dynamic specification schema.
type ProductType struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Name                string            `gorm:"size:120" json:"name"`
	NameLower           string            `gorm:"size:120;uniqueIndex" json:"-"`
	Slug                string            `gorm:"size:140;uniqueIndex" json:"slug"`
	Description         string            `gorm:"type:text" json:"description"`
	Icon                string            `gorm:"size:120" json:"icon"`
	DisplayOrder        int               `gorm:"default:0;index" json:"displayOrder"`
	Status              ProductTypeStatus `gorm:"type:varchar(10);default:'ACTIVE'" json:"status"`
	SpecificationFields []SpecField       `gorm:"type:jsonb;serializer:json" json:"specificationFields"`
	CreatedBy           string            `gorm:"size:140" json:"createdBy"`
	UpdatedBy           string            `gorm:"size:140" json:"updatedBy"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// FieldByName returns the descriptor named name, or nil.
func (pt *ProductType) FieldByName(name string) *SpecField {
	for i := range pt.SpecificationFields {
		if pt.SpecificationFields[i].Name == name {
			return &pt.SpecificationFields[i]
		}
	}
	return nil
}

// NormalizeFields sorts descriptors by Order and checks structural rules:
// non-empty unique names, known types, options present for select kinds.
func (pt *ProductType) NormalizeFields() error {
	seen := map[string]struct{}{}
	for i := range pt.SpecificationFields {
		f := &pt.SpecificationFields[i]
		f.Name = strings.TrimSpace(f.Name)
		if f.Name == "" {
			return &ValidationError{Problems: []string{fmt.Sprintf("specification field #%d: name is required", i+1)}}
		}
		if _, dup := seen[f.Name]; dup {
			return &ValidationError{Problems: []string{fmt.Sprintf("specification field %q: duplicate name", f.Name)}}
		}
		seen[f.Name] = struct{}{}
		if !f.Type.Valid() {
			return &ValidationError{Problems: []string{fmt.Sprintf("specification field %q: unknown type %q", f.Name, f.Type)}}
		}
		if (f.Type == FieldSelect || f.Type == FieldMultiSelect) && len(f.Options) == 0 {
			return &ValidationError{Problems: []string{fmt.Sprintf("specification field %q: %s requires options", f.Name, f.Type)}}
		}
	}
	sort.SliceStable(pt.SpecificationFields, func(i, j int) bool {
		return pt.SpecificationFields[i].Order < pt.SpecificationFields[j].Order
	})
	return nil
}

// ValidateSpecifications checks a candidate specifications map against the
// type's descriptors. It never fails fast: the returned ValidationError
// aggregates every violation so a caller can surface all of them at once.
// Keys not described by any descriptor are rejected (closed map).
func (pt *ProductType) ValidateSpecifications(specs map[string]any) error {
	var problems []string

	for _, f := range pt.SpecificationFields {
		if !f.Required {
			continue
		}
		v, ok := specs[f.Name]
		if !ok || isEmptyValue(v) {
			problems = append(problems, fmt.Sprintf("specification %q (%s) is required", f.Name, f.Label))
		}
	}

	for key, v := range specs {
		f := pt.FieldByName(key)
		if f == nil {
			problems = append(problems, fmt.Sprintf("specification %q is not defined for product type %q", key, pt.Name))
			continue
		}
		if isEmptyValue(v) {
			continue
		}
		switch f.Type {
		case FieldText, FieldTextArea:
			// any scalar renders as text
		case FieldNumber:
			if _, ok := NumberValue(v); !ok {
				problems = append(problems, fmt.Sprintf("specification %q must be a number, got %v", key, v))
			}
		case FieldSelect:
			s, ok := v.(string)
			if !ok || !contains(f.Options, s) {
				problems = append(problems, fmt.Sprintf("specification %q must be one of %v", key, f.Options))
			}
		case FieldMultiSelect:
			vals, ok := stringSlice(v)
			if !ok {
				problems = append(problems, fmt.Sprintf("specification %q must be a list of options", key))
				break
			}
			for _, s := range vals {
				if !contains(f.Options, s) {
					problems = append(problems, fmt.Sprintf("specification %q: %q is not one of %v", key, s, f.Options))
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

// NumberValue reports v as a float64 when it is a JSON number or a string
// that parses as one.
func NumberValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isEmptyValue(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case []string:
		return len(x) == 0
	}
	return false
}

func stringSlice(v any) ([]string, bool) {
	switch xs := v.(type) {
	case []string:
		return xs, true
	case []any:
		out := make([]string, 0, len(xs))
		for _, x := range xs {
			s, ok := x.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

func contains(opts []string, s string) bool {
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}
