package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// TableHandler serves precomputed result tables from the artifact store
// ⭐ SSOT: 테이블 API 핸들러는 이 구조체에서만
//
// undefined 센티널(NaN)은 JSON 숫자로 표현할 수 없으므로 null로 내보냄
type TableHandler struct {
	store  *artifact.Store
	logger *logger.Logger
}

// NewTableHandler creates a table handler
func NewTableHandler(store *artifact.Store, log *logger.Logger) *TableHandler {
	return &TableHandler{store: store, logger: log}
}

// tableResponse is the JSON shape shared by metric and rank tables
type tableResponse struct {
	Metric string                `json:"metric"`
	Window string                `json:"window"`
	Dates  []string              `json:"dates"`
	Values map[string][]*float64 `json:"values"`
}

// GetFunds returns the fund metadata
// GET /api/funds
func (h *TableHandler) GetFunds(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.LoadMetadata()
	if err != nil {
		h.notFound(w, err)
		return
	}
	writeJSON(w, meta.Funds)
}

// GetBenchmarks returns the benchmark metadata
// GET /api/benchmarks
func (h *TableHandler) GetBenchmarks(w http.ResponseWriter, r *http.Request) {
	meta, err := h.store.LoadMetadata()
	if err != nil {
		h.notFound(w, err)
		return
	}
	writeJSON(w, meta.Benchmarks)
}

// GetMetricTable returns one rolling metric table
// GET /api/metrics/{metric}/{window}?scope=funds|benchmarks
func (h *TableHandler) GetMetricTable(w http.ResponseWriter, r *http.Request) {
	metric, window, ok := h.tableParams(w, r)
	if !ok {
		return
	}

	var (
		table *contracts.MetricTable
		err   error
	)
	if r.URL.Query().Get("scope") == "benchmarks" {
		table, err = h.store.LoadBenchmarkTable(metric, window)
	} else {
		table, err = h.store.LoadMetricTable(metric, window)
	}
	if err != nil {
		h.notFound(w, err)
		return
	}

	writeJSON(w, tableResponse{
		Metric: string(table.Metric),
		Window: table.Window.Label(),
		Dates:  formatDates(table.Dates),
		Values: nullable(table.Values),
	})
}

// GetRankTable returns one peer-group percentile rank table
// GET /api/ranks/{metric}/{window}
func (h *TableHandler) GetRankTable(w http.ResponseWriter, r *http.Request) {
	metric, window, ok := h.tableParams(w, r)
	if !ok {
		return
	}

	table, err := h.store.LoadRankTable(metric, window)
	if err != nil {
		h.notFound(w, err)
		return
	}

	writeJSON(w, tableResponse{
		Metric: string(table.Metric),
		Window: table.Window.Label(),
		Dates:  formatDates(table.Dates),
		Values: nullable(table.Ranks),
	})
}

// correlationResponse is the JSON shape of one correlation table
type correlationResponse struct {
	Kind       string                           `json:"kind"`
	Window     string                           `json:"window"`
	Dates      []string                         `json:"dates"`
	Benchmarks []string                         `json:"benchmarks"`
	Values     map[string]map[string][]*float64 `json:"values"`
}

// GetCorrelationTable returns one rolling correlation table
// GET /api/correlations/{kind}/{window}, kind ∈ Corr|UpCorr|DownCorr
func (h *TableHandler) GetCorrelationTable(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var kind contracts.CorrelationKind
	switch contracts.CorrelationKind(vars["kind"]) {
	case contracts.CorrAll, contracts.CorrUp, contracts.CorrDown:
		kind = contracts.CorrelationKind(vars["kind"])
	default:
		h.badRequest(w, "unknown correlation kind: "+vars["kind"])
		return
	}

	window, ok := parseWindow(vars["window"])
	if !ok {
		h.badRequest(w, "invalid window: "+vars["window"])
		return
	}

	table, err := h.store.LoadCorrelationTable(kind, window)
	if err != nil {
		h.notFound(w, err)
		return
	}

	values := make(map[string]map[string][]*float64, len(table.Values))
	for fundID, byBench := range table.Values {
		values[fundID] = nullable(byBench)
	}

	writeJSON(w, correlationResponse{
		Kind:       string(table.Kind),
		Window:     table.Window.Label(),
		Dates:      formatDates(table.Dates),
		Benchmarks: table.BenchmarkIDs,
		Values:     values,
	})
}

// tableParams parses the {metric}/{window} path variables
func (h *TableHandler) tableParams(w http.ResponseWriter, r *http.Request) (contracts.MetricKind, contracts.Window, bool) {
	vars := mux.Vars(r)

	metric, err := contracts.ParseMetricKind(vars["metric"])
	if err != nil {
		h.badRequest(w, err.Error())
		return "", 0, false
	}

	window, ok := parseWindow(vars["window"])
	if !ok {
		h.badRequest(w, "invalid window: "+vars["window"])
		return "", 0, false
	}

	return metric, window, true
}

func (h *TableHandler) badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *TableHandler) notFound(w http.ResponseWriter, err error) {
	h.logger.WithError(err).Warn("Artifact not available")

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "artifact not found; run the compute pipeline first"})
}

// parseWindow accepts "12" and "12M"
func parseWindow(s string) (contracts.Window, bool) {
	s = strings.TrimSuffix(strings.ToUpper(s), "M")
	n, err := strconv.Atoi(s)
	if err != nil || n < 2 {
		return 0, false
	}
	return contracts.Window(n), true
}

// nullable converts undefined sentinels to JSON null
func nullable(columns map[string][]float64) map[string][]*float64 {
	out := make(map[string][]*float64, len(columns))
	for id, col := range columns {
		converted := make([]*float64, len(col))
		for i, v := range col {
			if contracts.IsDefined(v) {
				value := v
				converted[i] = &value
			}
		}
		out[id] = converted
	}
	return out
}

// formatDates renders calendar dates as ISO day strings
func formatDates(dates contracts.Calendar) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	return out
}

// writeJSON writes one JSON response body
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
