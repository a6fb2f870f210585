package contracts

import (
	"fmt"
	"math"
)

// MetricKind identifies one computed metric
type MetricKind string

const (
	// 기본 지표 (펀드 단독)
	MetricReturn      MetricKind = "Return"      // 연환산 수익률 (기하)
	MetricVolatility  MetricKind = "Volatility"  // 연환산 변동성
	MetricMaxDrawdown MetricKind = "MaxDrawdown" // 최대 낙폭
	MetricWorstMonth  MetricKind = "WorstMonth"  // 최악 월수익률
	MetricOmega       MetricKind = "Omega"       // 오메가 비율
	MetricSharpe      MetricKind = "Sharpe"      // 샤프 비율

	// 벤치마크 fit 지표 (펀드 vs 피어그룹 벤치마크)
	MetricTrackingError MetricKind = "TrackingError"
	MetricBeta          MetricKind = "Beta"
	MetricRSquared      MetricKind = "RSquared"
	MetricCorrelation   MetricKind = "Correlation"
)

// BaseMetrics returns the metrics computed from a fund series alone
func BaseMetrics() []MetricKind {
	return []MetricKind{
		MetricReturn, MetricVolatility, MetricMaxDrawdown,
		MetricWorstMonth, MetricOmega, MetricSharpe,
	}
}

// FitMetrics returns the metrics computed against the peer-group benchmark
func FitMetrics() []MetricKind {
	return []MetricKind{
		MetricTrackingError, MetricBeta, MetricRSquared, MetricCorrelation,
	}
}

// IsBaseMetric reports whether the metric is computed from a fund series alone
func IsBaseMetric(m MetricKind) bool {
	for _, b := range BaseMetrics() {
		if b == m {
			return true
		}
	}
	return false
}

// ParseMetricKind validates a metric name from config or CLI input
func ParseMetricKind(s string) (MetricKind, error) {
	for _, m := range append(BaseMetrics(), FitMetrics()...) {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown metric kind: %q", s)
}

// Window is a rolling window length in periods (months)
type Window int

// Label returns the artifact/label form, e.g. "12M"
func (w Window) Label() string {
	return fmt.Sprintf("%dM", int(w))
}

// CorrelationKind distinguishes the three rolling correlation variants
type CorrelationKind string

const (
	CorrAll  CorrelationKind = "Corr"     // 전체 구간 상관
	CorrUp   CorrelationKind = "UpCorr"   // 벤치마크 상승 구간 상관
	CorrDown CorrelationKind = "DownCorr" // 벤치마크 하락 구간 상관
)

// CorrelationKinds returns all variants in output order
func CorrelationKinds() []CorrelationKind {
	return []CorrelationKind{CorrAll, CorrUp, CorrDown}
}

// MetricTable holds one rolling metric for many series
// ⭐ SSOT: (metric, window) 당 테이블 하나. 생성 후 불변
// Dates 는 윈도우 종료 날짜. Values[id][i] 는 Dates[i] 에 끝나는 윈도우의 값
type MetricTable struct {
	Metric MetricKind
	Window Window
	Dates  Calendar
	IDs    []string
	Values map[string][]float64
}

// NewMetricTable allocates a table with all values undefined
func NewMetricTable(metric MetricKind, window Window, dates Calendar, ids []string) *MetricTable {
	values := make(map[string][]float64, len(ids))
	for _, id := range ids {
		col := make([]float64, len(dates))
		for i := range col {
			col[i] = Undefined()
		}
		values[id] = col
	}
	return &MetricTable{Metric: metric, Window: window, Dates: dates, IDs: ids, Values: values}
}

// Value returns the metric value for one series at one date index
func (t *MetricTable) Value(id string, i int) float64 {
	col, ok := t.Values[id]
	if !ok || i < 0 || i >= len(col) {
		return Undefined()
	}
	return col[i]
}

// Equal reports deep equality including undefined sentinels
// 직렬화 왕복 검증용: NaN == NaN 으로 취급
func (t *MetricTable) Equal(other *MetricTable) bool {
	if t.Metric != other.Metric || t.Window != other.Window {
		return false
	}
	if !t.Dates.Equal(other.Dates) {
		return false
	}
	if len(t.IDs) != len(other.IDs) {
		return false
	}
	for i := range t.IDs {
		if t.IDs[i] != other.IDs[i] {
			return false
		}
	}
	for id, col := range t.Values {
		otherCol, ok := other.Values[id]
		if !ok || !floatsEqual(col, otherCol) {
			return false
		}
	}
	return len(t.Values) == len(other.Values)
}

// RankTable holds peer-group percentile ranks for one (metric, window)
// Ranks[fundID][i] ∈ [0,100], 피어 값이 없으면 undefined
type RankTable struct {
	Metric MetricKind
	Window Window
	Dates  Calendar
	IDs    []string
	Ranks  map[string][]float64
}

// Rank returns the percentile rank for one fund at one date index
func (t *RankTable) Rank(id string, i int) float64 {
	col, ok := t.Ranks[id]
	if !ok || i < 0 || i >= len(col) {
		return Undefined()
	}
	return col[i]
}

// CorrelationTable holds rolling correlations of funds against market benchmarks
// Values[fundID][benchmarkID][i] ∈ [-1,1] 또는 undefined
type CorrelationTable struct {
	Kind         CorrelationKind
	Window       Window
	Dates        Calendar
	FundIDs      []string
	BenchmarkIDs []string
	Values       map[string]map[string][]float64
}

// Value returns the correlation of one fund/benchmark pair at one date index
func (t *CorrelationTable) Value(fundID, benchmarkID string, i int) float64 {
	byBench, ok := t.Values[fundID]
	if !ok {
		return Undefined()
	}
	col, ok := byBench[benchmarkID]
	if !ok || i < 0 || i >= len(col) {
		return Undefined()
	}
	return col[i]
}

// floatsEqual compares two float slices treating NaN as equal to NaN
func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
