package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
)

const sweetsPath = "/api/sweets/"

// SweetRepository implementa repository.SweetRepository sobre /api/sweets.
type SweetRepository struct {
	client *Client
}

// NewSweetRepository construye el repositorio del catálogo.
func NewSweetRepository(client *Client) *SweetRepository {
	return &SweetRepository{client: client}
}

// List GET /api/sweets/: catálogo completo.
func (r *SweetRepository) List(ctx context.Context, creds entity.Credentials) ([]entity.Sweet, error) {
	var out []dto.SweetResponse
	if err := r.client.do(ctx, creds, http.MethodGet, sweetsPath, nil, nil, &out); err != nil {
		return nil, err
	}
	return toSweets(out), nil
}

// Search GET /api/sweets/search con los parámetros ya validados.
func (r *SweetRepository) Search(ctx context.Context, creds entity.Credentials, query url.Values) ([]entity.Sweet, error) {
	var out []dto.SweetResponse
	if err := r.client.do(ctx, creds, http.MethodGet, sweetsPath+"search", query, nil, &out); err != nil {
		return nil, err
	}
	return toSweets(out), nil
}

// Create POST /api/sweets/ (solo admins).
func (r *SweetRepository) Create(ctx context.Context, creds entity.Credentials, in repository.SweetInput) (*entity.Sweet, error) {
	b, err := jsonBody(dto.NewSweetRequest(in))
	if err != nil {
		return nil, err
	}
	return r.send(ctx, creds, http.MethodPost, sweetsPath, b)
}

// Update PUT /api/sweets/{id}/ con todos los campos del formulario.
func (r *SweetRepository) Update(ctx context.Context, creds entity.Credentials, id int64, in repository.SweetInput) (*entity.Sweet, error) {
	b, err := jsonBody(dto.NewSweetRequest(in))
	if err != nil {
		return nil, err
	}
	return r.send(ctx, creds, http.MethodPut, itemPath(id, ""), b)
}

// Delete DELETE /api/sweets/{id}/.
func (r *SweetRepository) Delete(ctx context.Context, creds entity.Credentials, id int64) error {
	return r.client.do(ctx, creds, http.MethodDelete, itemPath(id, ""), nil, nil, nil)
}

// Purchase POST /api/sweets/{id}/purchase; devuelve el dulce con el stock ya descontado.
func (r *SweetRepository) Purchase(ctx context.Context, creds entity.Credentials, id int64, quantity int) (*entity.Sweet, error) {
	b, err := jsonBody(dto.QuantityRequest{Quantity: quantity})
	if err != nil {
		return nil, err
	}
	return r.send(ctx, creds, http.MethodPost, itemPath(id, "purchase"), b)
}

// Restock POST /api/sweets/{id}/restock; devuelve el dulce repuesto.
func (r *SweetRepository) Restock(ctx context.Context, creds entity.Credentials, id int64, quantity int) (*entity.Sweet, error) {
	b, err := jsonBody(dto.QuantityRequest{Quantity: quantity})
	if err != nil {
		return nil, err
	}
	return r.send(ctx, creds, http.MethodPost, itemPath(id, "restock"), b)
}

func (r *SweetRepository) send(ctx context.Context, creds entity.Credentials, method, path string, b *body) (*entity.Sweet, error) {
	var out dto.SweetResponse
	if err := r.client.do(ctx, creds, method, path, nil, b, &out); err != nil {
		return nil, err
	}
	s := out.ToEntity()
	return &s, nil
}

// itemPath "/api/sweets/{id}/" o "/api/sweets/{id}/{action}".
func itemPath(id int64, action string) string {
	return fmt.Sprintf("%s%d/%s", sweetsPath, id, action)
}

func toSweets(in []dto.SweetResponse) []entity.Sweet {
	out := make([]entity.Sweet, 0, len(in))
	for _, s := range in {
		out = append(out, s.ToEntity())
	}
	return out
}
