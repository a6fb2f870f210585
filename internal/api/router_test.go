package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundmetrics/internal/api/handlers"
	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/config"
	"github.com/wonny/fundmetrics/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json", "development")
}

func testConfig() *config.Config {
	return &config.Config{RateLimit: 1000, RateLimitBurst: 1000}
}

// newTestServer 아티팩트를 미리 채운 테스트 서버
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := artifact.NewStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	dates := contracts.NewCalendar([]time.Time{
		time.Date(2023, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 2, 28, 0, 0, 0, 0, time.UTC),
	})

	metric := contracts.NewMetricTable(contracts.MetricReturn, 12, dates, []string{"F1"})
	metric.Values["F1"][0] = 0.043
	// metric.Values["F1"][1] 은 undefined → JSON null
	require.NoError(t, store.SaveMetricTable(metric))

	require.NoError(t, store.SaveRankTable(&contracts.RankTable{
		Metric: contracts.MetricReturn,
		Window: 12,
		Dates:  dates,
		IDs:    []string{"F1"},
		Ranks:  map[string][]float64{"F1": {50.0, 50.0}},
	}))

	require.NoError(t, store.SaveCorrelationTable(&contracts.CorrelationTable{
		Kind:         contracts.CorrAll,
		Window:       12,
		Dates:        dates,
		FundIDs:      []string{"F1"},
		BenchmarkIDs: []string{"MKT"},
		Values:       map[string]map[string][]float64{"F1": {"MKT": {0.9, contracts.Undefined()}}},
	}))

	require.NoError(t, store.SaveMetadata(&artifact.Metadata{
		Funds:      []contracts.FundMeta{{ID: "F1", Name: "Alpha Fund", PeerGroup: "Equity"}},
		Benchmarks: []contracts.BenchmarkMeta{{ID: "MKT", Name: "World Index", Kind: contracts.MarketBenchmark}},
	}))

	return NewRouter(testConfig(), handlers.NewTableHandler(store, testLogger()), testLogger())
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	rec := get(t, newTestServer(t), "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetFunds(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/funds")
	require.Equal(t, http.StatusOK, rec.Code)

	var funds []contracts.FundMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &funds))
	require.Len(t, funds, 1)
	assert.Equal(t, "F1", funds[0].ID)
}

func TestGetMetricTable(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics/Return/12M")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Metric string                `json:"metric"`
		Window string                `json:"window"`
		Dates  []string              `json:"dates"`
		Values map[string][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "Return", body.Metric)
	assert.Equal(t, "12M", body.Window)
	assert.Equal(t, []string{"2023-01-31", "2023-02-28"}, body.Dates)

	col := body.Values["F1"]
	require.Len(t, col, 2)
	require.NotNil(t, col[0])
	assert.InDelta(t, 0.043, *col[0], 1e-12)
	assert.Nil(t, col[1]) // undefined → null
}

func TestGetMetricTable_WindowWithoutSuffix(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics/Return/12")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetMetricTable_UnknownMetric(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics/Alpha/12M")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetricTable_NotComputed(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/metrics/Sharpe/60M")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRankTable(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/ranks/Return/12M")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Values map[string][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Values["F1"][0])
	assert.InDelta(t, 50.0, *body.Values["F1"][0], 1e-12)
}

func TestGetCorrelationTable(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/correlations/Corr/12M")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Kind       string                           `json:"kind"`
		Benchmarks []string                         `json:"benchmarks"`
		Values     map[string]map[string][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "Corr", body.Kind)
	assert.Equal(t, []string{"MKT"}, body.Benchmarks)

	col := body.Values["F1"]["MKT"]
	require.Len(t, col, 2)
	assert.InDelta(t, 0.9, *col[0], 1e-12)
	assert.Nil(t, col[1])
}

func TestGetCorrelationTable_UnknownKind(t *testing.T) {
	rec := get(t, newTestServer(t), "/api/correlations/SideCorr/12M")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	store, err := artifact.NewStore(t.TempDir(), testLogger())
	require.NoError(t, err)

	cfg := &config.Config{RateLimit: 1, RateLimitBurst: 1}
	router := NewRouter(cfg, handlers.NewTableHandler(store, testLogger()), testLogger())

	first := get(t, router, "/health")
	assert.Equal(t, http.StatusOK, first.Code)

	second := get(t, router, "/health")
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
