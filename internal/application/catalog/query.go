package catalog

import (
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// Parámetros de /api/sweets/search.
const (
	ParamName     = "name"
	ParamCategory = "category"
	ParamMinPrice = "min_price"
	ParamMaxPrice = "max_price"
)

// BuildQuery traduce los criterios a parámetros: solo los campos informados.
// Los límites de precio deben ser decimales no negativos y min ≤ max.
func BuildQuery(c entity.FilterCriteria) (url.Values, error) {
	c = c.Normalized()
	q := url.Values{}
	if c.Name != "" {
		q.Set(ParamName, c.Name)
	}
	if c.Category != "" {
		q.Set(ParamCategory, c.Category)
	}

	minPrice, err := parsePrice(ParamMinPrice, "Minimum price", c.MinPrice)
	if err != nil {
		return nil, err
	}
	maxPrice, err := parsePrice(ParamMaxPrice, "Maximum price", c.MaxPrice)
	if err != nil {
		return nil, err
	}
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return nil, domain.NewValidationError(ParamMinPrice, "Minimum price cannot be greater than maximum price")
	}
	if minPrice != nil {
		q.Set(ParamMinPrice, c.MinPrice)
	}
	if maxPrice != nil {
		q.Set(ParamMaxPrice, c.MaxPrice)
	}
	return q, nil
}

func parsePrice(field, label, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, domain.NewValidationError(field, label+" must be a number")
	}
	if d.IsNegative() {
		return nil, domain.NewValidationError(field, label+" cannot be negative")
	}
	return &d, nil
}
