package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("WARN"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verbose"))
}

func TestNew_JSONConComponente(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf}).Component("ledger")

	l.Debug().Msg("no debe salir")
	l.Info().Str("product_id", "p1").Int("stock_after", 4).Msg("movimiento registrado")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "p1", entry["product_id"])
	assert.EqualValues(t, 4, entry["stock_after"])
	assert.Equal(t, "movimiento registrado", entry["message"])
}

func TestForStatus(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Out: &buf})

	tests := []struct {
		status int
		level  string
	}{
		{status: 200, level: "info"},
		{status: 201, level: "info"},
		{status: 409, level: "warn"},
		{status: 500, level: "error"},
	}
	for _, tt := range tests {
		buf.Reset()
		l.ForStatus(tt.status).Int("status", tt.status).Msg("request")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
		assert.Equal(t, tt.level, entry["level"], "status %d", tt.status)
	}
}

func TestWithRequestID_YContexto(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Env: "production", Level: "info", Service: "pui-pos-stock", Out: &buf})

	assert.Same(t, base, base.WithRequestID(""))

	ctx := base.WithRequestID("req-1").WithContext(context.Background())
	FromContext(ctx, NewNop()).Info().Msg("venta confirmada")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "pui-pos-stock", entry["service"])

	fallback := NewNop()
	assert.Same(t, fallback, FromContext(context.Background(), fallback))
}
