package repository

import (
	"context"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/sweetshop/internal/domain/entity"
)

// SweetInput campos editables de un dulce (alta y edición).
type SweetInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

// SweetRepository define el puerto hacia el catálogo remoto.
// Todas las operaciones reciben la credencial de forma explícita.
type SweetRepository interface {
	List(ctx context.Context, creds entity.Credentials) ([]entity.Sweet, error)
	// Search recibe solo los parámetros informados (name, category, min_price, max_price).
	Search(ctx context.Context, creds entity.Credentials, query url.Values) ([]entity.Sweet, error)
	Create(ctx context.Context, creds entity.Credentials, in SweetInput) (*entity.Sweet, error)
	Update(ctx context.Context, creds entity.Credentials, id int64, in SweetInput) (*entity.Sweet, error)
	Delete(ctx context.Context, creds entity.Credentials, id int64) error
	Purchase(ctx context.Context, creds entity.Credentials, id int64, quantity int) (*entity.Sweet, error)
	Restock(ctx context.Context, creds entity.Credentials, id int64, quantity int) (*entity.Sweet, error)
}
