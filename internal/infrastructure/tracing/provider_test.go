package tracing_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/AstralMoonlight/torn/internal/infrastructure/tracing"
)

func TestNewProvider_RegistraSpansEnLog(t *testing.T) {
	var buf bytes.Buffer
	tp := tracing.NewProvider(zerolog.New(&buf).Level(zerolog.DebugLevel))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	tracer := tp.Tracer("test")
	_, ok := tracer.Start(context.Background(), "sales.CreateSale")
	ok.SetAttributes(attribute.String("cashier_id", "cajero-1"), attribute.Int("lines", 2))
	ok.End()

	_, bad := tracer.Start(context.Background(), "sales.CreateReturn")
	bad.RecordError(errors.New("sin stock"))
	bad.SetStatus(codes.Error, "sin stock")
	bad.End()

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first, second map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &first))
	require.NoError(t, json.Unmarshal(lines[1], &second))

	assert.Equal(t, "debug", first["level"])
	assert.Equal(t, "sales.CreateSale", first["span"])
	assert.Equal(t, "cajero-1", first["cashier_id"])
	assert.Equal(t, float64(2), first["lines"])
	assert.NotEmpty(t, first["trace_id"])

	assert.Equal(t, "warn", second["level"])
	assert.Equal(t, "sales.CreateReturn", second["span"])
	assert.Equal(t, "sin stock", second["error"])
}
