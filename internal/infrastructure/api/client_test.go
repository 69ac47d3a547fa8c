package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/internal/domain/repository"
	"github.com/jhoicas/sweetshop/internal/infrastructure/api"
)

// recorder guarda la última petición recibida por el servidor de prueba.
type recorder struct {
	mu     sync.Mutex
	method string
	path   string
	query  url.Values
	header http.Header
	body   string
}

func (r *recorder) capture(req *http.Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, _ := io.ReadAll(req.Body)
	r.method = req.Method
	r.path = req.URL.Path
	r.query = req.URL.Query()
	r.header = req.Header.Clone()
	r.body = string(b)
}

func newServer(t *testing.T, status int, response string) (*api.Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec.capture(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return api.NewClient(api.ClientConfig{BaseURL: srv.URL + "/"}), rec
}

// ────────────────────────────────────────────────────────────────
// Cabeceras y credenciales
// ────────────────────────────────────────────────────────────────

func TestList_EnviaBearerYRequestID(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[{"id":3,"name":"Toffee","category":"Candy","price":"2.50","quantity":5,"created_by_user_id":7}]`)
	repo := api.NewSweetRepository(client)

	sweets, err := repo.List(context.Background(), entity.Credentials{Token: "tok-123"})
	require.NoError(t, err)
	require.Len(t, sweets, 1)

	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/sweets/", rec.path)
	assert.Equal(t, "Bearer tok-123", rec.header.Get("Authorization"))
	_, err = uuid.Parse(rec.header.Get(api.RequestIDHeader))
	assert.NoError(t, err, "cada petición lleva un X-Request-ID uuid")

	s := sweets[0]
	assert.Equal(t, int64(3), s.ID)
	assert.True(t, s.Price.Equal(decimal.RequireFromString("2.5")))
	require.NotNil(t, s.CreatedByUserID)
	assert.Equal(t, int64(7), *s.CreatedByUserID)
}

// Sin credencial la petición es indistinguible de una sesión nueva: no hay cabecera Authorization.
func TestList_SinCredencial_NoEnviaAuthorization(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[]`)
	repo := api.NewSweetRepository(client)

	_, err := repo.List(context.Background(), entity.Credentials{})
	require.NoError(t, err)
	_, present := rec.header["Authorization"]
	assert.False(t, present)
}

func TestSearch_SoloParametrosInformados(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `[]`)
	repo := api.NewSweetRepository(client)

	q := url.Values{}
	q.Set("name", "choc")
	q.Set("max_price", "5")
	_, err := repo.Search(context.Background(), entity.Credentials{Token: "t"}, q)
	require.NoError(t, err)

	assert.Equal(t, "/api/sweets/search", rec.path)
	assert.Equal(t, url.Values{"name": {"choc"}, "max_price": {"5"}}, rec.query)
}

func TestLogin_FormularioYSesion(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"access_token":"abc","token_type":"bearer","user":{"id":7,"username":"ana","email":"ana@shop.io","role":"admin"}}`)
	repo := api.NewAuthRepository(client)

	session, err := repo.Login(context.Background(), "ana", "secreto123")
	require.NoError(t, err)

	assert.Equal(t, "/api/auth/login", rec.path)
	assert.Equal(t, "application/x-www-form-urlencoded", rec.header.Get("Content-Type"))
	form, err := url.ParseQuery(rec.body)
	require.NoError(t, err)
	assert.Equal(t, "ana", form.Get("username"))
	assert.Equal(t, "secreto123", form.Get("password"))

	assert.Equal(t, "abc", session.Token)
	assert.Equal(t, int64(7), session.User.ID)
	assert.True(t, session.User.IsAdmin())
}

func TestPurchase_CuerpoYRuta(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"id":3,"name":"Toffee","category":"Candy","price":"2.50","quantity":2}`)
	repo := api.NewSweetRepository(client)

	s, err := repo.Purchase(context.Background(), entity.Credentials{Token: "t"}, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Quantity)
	assert.Equal(t, "/api/sweets/3/purchase", rec.path)

	var body map[string]int
	require.NoError(t, json.Unmarshal([]byte(rec.body), &body))
	assert.Equal(t, 3, body["quantity"])
}

func TestUpdate_RutaConBarraFinal(t *testing.T) {
	client, rec := newServer(t, http.StatusOK, `{"id":3,"name":"Fudge","category":"Candy","price":"3","quantity":1}`)
	repo := api.NewSweetRepository(client)

	_, err := repo.Update(context.Background(), entity.Credentials{Token: "t"}, 3, repository.SweetInput{
		Name: "Fudge", Category: "Candy", Price: decimal.NewFromInt(3), Quantity: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/sweets/3/", rec.path)
	assert.JSONEq(t, `{"name":"Fudge","category":"Candy","price":"3","quantity":1}`, rec.body)
}

func TestDelete_204(t *testing.T) {
	client, rec := newServer(t, http.StatusNoContent, ``)
	repo := api.NewSweetRepository(client)

	require.NoError(t, repo.Delete(context.Background(), entity.Credentials{Token: "t"}, 9))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/sweets/9/", rec.path)
}

// ────────────────────────────────────────────────────────────────
// Errores
// ────────────────────────────────────────────────────────────────

func TestErrores_DetalleTextualYSentinela(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   error
		detail string
	}{
		{"401", http.StatusUnauthorized, `{"detail":"Incorrect username or password"}`, domain.ErrUnauthorized, "Incorrect username or password"},
		{"403", http.StatusForbidden, `{"detail":"You can only edit sweets that you created"}`, domain.ErrForbidden, "You can only edit sweets that you created"},
		{"404", http.StatusNotFound, `{"detail":"Sweet not found"}`, domain.ErrNotFound, "Sweet not found"},
		{"409", http.StatusConflict, `{"detail":"Insufficient quantity available"}`, domain.ErrConflict, "Insufficient quantity available"},
		{"422 lista", http.StatusUnprocessableEntity, `{"detail":[{"loc":["body","email"],"msg":"Invalid email format"},{"msg":"Password must be at least 8 characters long"}]}`, domain.ErrInvalidInput, "Invalid email format; Password must be at least 8 characters long"},
		{"500 sin json", http.StatusInternalServerError, `<html>boom</html>`, domain.ErrServer, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newServer(t, tc.status, tc.body)
			_, err := api.NewSweetRepository(client).List(context.Background(), entity.Credentials{Token: "t"})
			require.Error(t, err)

			assert.True(t, errors.Is(err, tc.kind))
			var apiErr *domain.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.detail, apiErr.Detail)
			if tc.detail != "" {
				assert.Equal(t, tc.detail, err.Error(), "el detalle del servidor se muestra tal cual")
			}
		})
	}
}

func TestErrores_ServidorCaido_ErrTransport(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL})
	_, err := api.NewSweetRepository(client).List(context.Background(), entity.Credentials{})
	assert.ErrorIs(t, err, domain.ErrTransport)
}

func TestErrores_ContextoCancelado_NoEsTransport(t *testing.T) {
	client, _ := newServer(t, http.StatusOK, `[]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := api.NewSweetRepository(client).List(ctx, entity.Credentials{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrTransport)
}
