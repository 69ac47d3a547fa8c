package logger_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/sweetshop/pkg/logger"
)

func TestNew_ProductionEscribeJSON(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "info", Output: &buf})

	log.Component("catalog").Info().Int("items", 3).Msg("catálogo cargado")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "la salida en production debe ser JSON")
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "catalog", entry["component"])
	assert.Equal(t, float64(3), entry["items"])
	assert.Equal(t, "catálogo cargado", entry["message"])
}

func TestNew_NivelFiltraEventos(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Config{Env: "production", Level: "warn", Output: &buf})

	log.Debug().Msg("no debe aparecer")
	log.Info().Msg("tampoco")
	assert.Zero(t, buf.Len(), "eventos por debajo de warn se descartan")

	log.Warn().Msg("sí aparece")
	assert.Contains(t, buf.String(), "sí aparece")
}

func TestNop_NoEscribe(t *testing.T) {
	log := logger.Nop()
	assert.NotPanics(t, func() { log.Error().Msg("silencio") })
}
