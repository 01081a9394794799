package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerAddsComponentAndRecipe(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRecipe(newLogger(&buf, "api", slog.LevelInfo), "r-1")
	logger.Info("created")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["component"])
	assert.Equal(t, "r-1", line["recipe_id"])
	assert.Equal(t, "created", line["msg"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "", slog.LevelWarn)
	logger.Info("hidden")
	assert.Empty(t, buf.String())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelError, ParseLevel("ERROR"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncOperation("create", OutcomeOK)
	m.IncOperation("create", OutcomeOK)
	m.IncOperation("create", OutcomeInvalid)
	m.SetStored(4)
	m.IncRateLimited("POST /recipes")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("create", OutcomeInvalid)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.stored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.limited.WithLabelValues("POST /recipes")))
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := NewMetrics(reg)
	second := NewMetrics(reg)

	first.IncOperation("list", OutcomeOK)
	second.IncOperation("list", OutcomeOK)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.operations.WithLabelValues("list", OutcomeOK)))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.IncOperation("list", OutcomeOK)
	m.SetStored(1)
	m.IncRateLimited("x")
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.IncOperation("delete", OutcomeOK)

	w := httptest.NewRecorder()
	MetricsHandler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `recipes_operations_total{operation="delete",outcome="ok"} 1`)
}
