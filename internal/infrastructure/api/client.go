// Package api implementa los puertos del dominio contra la API REST de la tienda.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/jhoicas/sweetshop/internal/domain"
	"github.com/jhoicas/sweetshop/internal/domain/entity"
	"github.com/jhoicas/sweetshop/pkg/logger"
)

// RequestIDHeader cabecera de correlación enviada en cada petición.
const RequestIDHeader = "X-Request-ID"

const (
	maxResponseBytes = 8 << 20
	maxErrorBytes    = 64 << 10
)

// ClientConfig configura el cliente REST.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client // opcional; si viene, Timeout se ignora
	Logger     *logger.Logger
}

// Client cliente HTTP de la API. No guarda credenciales: cada llamada recibe la suya.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *logger.Logger
}

// NewClient construye el cliente.
func NewClient(cfg ClientConfig) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		httpClient: hc,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		log:        log.Component("api"),
	}
}

// body cuerpo ya serializado con su content type.
type body struct {
	reader      io.Reader
	contentType string
}

func jsonBody(v interface{}) (*body, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serializar cuerpo: %w", err)
	}
	return &body{reader: bytes.NewReader(b), contentType: "application/json"}, nil
}

func formBody(values url.Values) *body {
	return &body{reader: strings.NewReader(values.Encode()), contentType: "application/x-www-form-urlencoded"}
}

// do ejecuta la petición y decodifica la respuesta en out (nil = descartar).
func (c *Client) do(ctx context.Context, creds entity.Credentials, method, path string, query url.Values, in *body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if in != nil {
		reader = in.reader
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("crear petición: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", in.contentType)
	}
	req.Header.Set("Accept", "application/json")
	if !creds.Empty() {
		req.Header.Set("Authorization", creds.Header())
	}
	requestID := uuid.New().String()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn().Err(err).Str("request_id", requestID).Str("method", method).Str("path", path).Msg("petición sin respuesta")
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api")

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))
		return &domain.APIError{Kind: kindFor(resp.StatusCode), Status: resp.StatusCode, Detail: extractDetail(raw)}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: leer respuesta: %v", domain.ErrTransport, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decodificar respuesta de %s %s: %w", method, path, err)
	}
	return nil
}

// kindFor traduce el status HTTP al sentinela del dominio.
func kindFor(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.ErrInvalidInput
	default:
		return domain.ErrServer
	}
}

// extractDetail lee "detail" como string o como lista de {msg}; cuerpos no JSON se ignoran.
func extractDetail(raw []byte) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return ""
	}
	detail := gjson.GetBytes(raw, "detail")
	switch {
	case detail.Type == gjson.String:
		return detail.String()
	case detail.IsArray():
		var msgs []string
		detail.ForEach(func(_, item gjson.Result) bool {
			if msg := item.Get("msg").String(); msg != "" {
				msgs = append(msgs, msg)
			}
			return true
		})
		return strings.Join(msgs, "; ")
	}
	if msg := gjson.GetBytes(raw, "message"); msg.Type == gjson.String {
		return msg.String()
	}
	return ""
}

