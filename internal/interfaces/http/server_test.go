package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/internal/application/dto"
	"github.com/jhoicas/sweetshop/internal/application/sandbox"
	"github.com/jhoicas/sweetshop/internal/sandboxtest"
)

type call struct {
	method string
	path   string
	token  string
	body   string
	form   url.Values
}

func send(t *testing.T, srv *sandboxtest.Server, c call) (int, []byte) {
	t.Helper()
	var req *http.Request
	switch {
	case c.form != nil:
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	case c.body != "":
		req = httptest.NewRequest(c.method, c.path, strings.NewReader(c.body))
		req.Header.Set("Content-Type", "application/json")
	default:
		req = httptest.NewRequest(c.method, c.path, nil)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := srv.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, raw
}

func login(t *testing.T, srv *sandboxtest.Server, username, password string) string {
	t.Helper()
	status, raw := send(t, srv, call{method: http.MethodPost, path: "/api/auth/login", form: url.Values{"username": {username}, "password": {password}}})
	require.Equal(t, http.StatusOK, status, string(raw))
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.AccessToken
}

func TestHealthYSwagger(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{})

	status, _ := send(t, srv, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, status)

	status, raw := send(t, srv, call{method: http.MethodGet, path: "/swagger.json"})
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(raw), "/api/sweets/search")
}

func TestRegister_ValidacionYConflicto(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})

	// Caso 1: password corta → 422 con lista de errores
	status, raw := send(t, srv, call{method: http.MethodPost, path: "/api/auth/register", body: `{"username":"bob","email":"bob@shop.io","password":"abc"}`})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	var verr dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(raw, &verr))
	require.NotEmpty(t, verr.Detail)
	assert.Equal(t, "Password must be at least 8 characters long", verr.Detail[0].Msg)

	// Caso 2: usuario existente → 409
	status, raw = send(t, srv, call{method: http.MethodPost, path: "/api/auth/register", body: `{"username":"admin","email":"x@shop.io","password":"password123"}`})
	assert.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"detail":"Username or email already exists"}`, string(raw))

	// Caso 3: alta correcta → 201
	status, _ = send(t, srv, call{method: http.MethodPost, path: "/api/auth/register", body: `{"username":"bob","email":"bob@shop.io","password":"password123"}`})
	assert.Equal(t, http.StatusCreated, status)
}

func TestSweets_RequierenToken(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	status, _ := send(t, srv, call{method: http.MethodGet, path: "/api/sweets/"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSweets_FlujoAdminYUsuario(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{Seed: true})
	admin := login(t, srv, sandbox.SeedAdminUsername, sandbox.SeedAdminPassword)
	user := login(t, srv, sandbox.SeedUserUsername, sandbox.SeedUserPassword)

	// Usuario regular no puede crear
	status, _ := send(t, srv, call{method: http.MethodPost, path: "/api/sweets/", token: user, body: `{"name":"Laddu","category":"Indian","price":"1.10","quantity":5}`})
	assert.Equal(t, http.StatusForbidden, status)

	// Admin crea
	status, raw := send(t, srv, call{method: http.MethodPost, path: "/api/sweets/", token: admin, body: `{"name":"Laddu","category":"Indian","price":"1.10","quantity":5}`})
	require.Equal(t, http.StatusCreated, status, string(raw))
	var created dto.SweetResponse
	require.NoError(t, json.Unmarshal(raw, &created))
	require.NotNil(t, created.CreatedByUserID)

	// Búsqueda con filtros
	status, raw = send(t, srv, call{method: http.MethodGet, path: "/api/sweets/search?category=indian&max_price=1", token: user})
	require.Equal(t, http.StatusOK, status)
	var found []dto.SweetResponse
	require.NoError(t, json.Unmarshal(raw, &found))
	require.Len(t, found, 1)
	assert.Equal(t, "Rasgulla", found[0].Name)

	// Precio no numérico → 422
	status, _ = send(t, srv, call{method: http.MethodGet, path: "/api/sweets/search?min_price=abc", token: user})
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	// Compra y stock insuficiente
	path := "/api/sweets/" + itoa(created.ID)
	status, raw = send(t, srv, call{method: http.MethodPost, path: path + "/purchase", token: user, body: `{"quantity":2}`})
	require.Equal(t, http.StatusOK, status, string(raw))
	status, raw = send(t, srv, call{method: http.MethodPost, path: path + "/purchase", token: user, body: `{"quantity":9}`})
	assert.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"detail":"Insufficient quantity available"}`, string(raw))

	// Reposición solo admin
	status, _ = send(t, srv, call{method: http.MethodPost, path: path + "/restock", token: user, body: `{"quantity":3}`})
	assert.Equal(t, http.StatusForbidden, status)
	status, raw = send(t, srv, call{method: http.MethodPost, path: path + "/restock", token: admin, body: `{"quantity":3}`})
	require.Equal(t, http.StatusOK, status)
	var restocked dto.SweetResponse
	require.NoError(t, json.Unmarshal(raw, &restocked))
	assert.Equal(t, 6, restocked.Quantity)

	// Libros de compras
	status, raw = send(t, srv, call{method: http.MethodGet, path: "/api/sweets/purchase-history", token: user})
	require.Equal(t, http.StatusOK, status)
	var mine []dto.PurchaseResponse
	require.NoError(t, json.Unmarshal(raw, &mine))
	require.Len(t, mine, 1)
	assert.Equal(t, "2.2", mine[0].TotalPrice.String())

	status, _ = send(t, srv, call{method: http.MethodGet, path: "/api/sweets/admin/purchase-history", token: user})
	assert.Equal(t, http.StatusForbidden, status)
	status, raw = send(t, srv, call{method: http.MethodGet, path: "/api/sweets/admin/purchase-history", token: admin})
	require.Equal(t, http.StatusOK, status)
	var sales []dto.AdminPurchaseResponse
	require.NoError(t, json.Unmarshal(raw, &sales))
	require.Len(t, sales, 1)
	assert.Equal(t, sandbox.SeedUserUsername, sales[0].Username)

	// Edición con barra final y borrado
	status, _ = send(t, srv, call{method: http.MethodPut, path: path + "/", token: admin, body: `{"name":"Laddu","category":"Indian","price":"1.25","quantity":6}`})
	assert.Equal(t, http.StatusOK, status)
	status, _ = send(t, srv, call{method: http.MethodDelete, path: path + "/", token: admin})
	assert.Equal(t, http.StatusNoContent, status)
	status, raw = send(t, srv, call{method: http.MethodDelete, path: path + "/", token: admin})
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"detail":"Sweet not found"}`, string(raw))
}

func TestRateLimit_429(t *testing.T) {
	srv := sandboxtest.New(t, sandboxtest.Options{RateLimit: 1})

	first, _ := send(t, srv, call{method: http.MethodGet, path: "/health"})
	second, raw := send(t, srv, call{method: http.MethodGet, path: "/health"})
	assert.Equal(t, http.StatusOK, first)
	assert.Equal(t, http.StatusTooManyRequests, second)
	assert.JSONEq(t, `{"detail":"Too many requests"}`, string(raw))
}

func itoa(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
