package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
)

// SweetRequest entrada para crear o editar un dulce. Price viaja como string decimal.
type SweetRequest struct {
	Name     string          `json:"name" validate:"required,max=100"`
	Category string          `json:"category" validate:"required,max=50"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity int             `json:"quantity" validate:"gte=0"`
}

// SweetResponse salida de un dulce.
type SweetResponse struct {
	ID              int64           `json:"id"`
	Name            string          `json:"name"`
	Category        string          `json:"category"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	CreatedByUserID *int64          `json:"created_by_user_id"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// QuantityRequest cuerpo de compra y reposición.
type QuantityRequest struct {
	Quantity int `json:"quantity" validate:"gte=1"`
}

// NewSweetRequest construye el cuerpo a partir de la entrada del puerto.
func NewSweetRequest(in repository.SweetInput) SweetRequest {
	return SweetRequest{Name: in.Name, Category: in.Category, Price: in.Price, Quantity: in.Quantity}
}

// ToInput convierte el cuerpo recibido en entrada del puerto.
func (r SweetRequest) ToInput() repository.SweetInput {
	return repository.SweetInput{Name: r.Name, Category: r.Category, Price: r.Price, Quantity: r.Quantity}
}

// NewSweetResponse mapea la entidad al cuerpo HTTP.
func NewSweetResponse(s entity.Sweet) SweetResponse {
	return SweetResponse{
		ID:              s.ID,
		Name:            s.Name,
		Category:        s.Category,
		Price:           s.Price,
		Quantity:        s.Quantity,
		CreatedByUserID: s.CreatedByUserID,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// ToEntity convierte el cuerpo recibido en entidad.
func (r SweetResponse) ToEntity() entity.Sweet {
	return entity.Sweet{
		ID:              r.ID,
		Name:            r.Name,
		Category:        r.Category,
		Price:           r.Price,
		Quantity:        r.Quantity,
		CreatedByUserID: r.CreatedByUserID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}
