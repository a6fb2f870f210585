package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wonny/fundmetrics/internal/contracts"
)

// Analysis holds the analysis parameters of one computation run
// ⭐ SSOT: 윈도우 길이, 벤치마크 목록 등 분석 파라미터는 이 파일에서만
// 전역 가변 상태 금지, 명시적으로 로드해서 파이프라인에 주입함
type Analysis struct {
	// 롤링 윈도우 길이 (개월)
	Windows []int `yaml:"windows"`

	// 연간 기간 수 (월간 데이터 = 12)
	PeriodsPerYear int `yaml:"periods_per_year"`

	// 무위험 수익률: 시계열 id가 있으면 벤치마크 테이블에서 찾고,
	// 없으면 고정 월간 수익률(rate) 사용
	RiskFree RiskFreeConfig `yaml:"risk_free"`

	// 오메가 비율 임계값 (월간 수익률)
	OmegaThreshold float64 `yaml:"omega_threshold"`

	// 계산할 기본 지표 (비우면 전체)
	Metrics []string `yaml:"metrics"`

	// 일반 시장 벤치마크 id (비우면 메타데이터의 kind=market 전체)
	MarketBenchmarks []string `yaml:"market_benchmarks"`

	// 병렬 워커 수 (0 = GOMAXPROCS)
	Workers int `yaml:"workers"`
}

// RiskFreeConfig selects the risk-free input for Sharpe
type RiskFreeConfig struct {
	SeriesID string  `yaml:"series_id"`
	Rate     float64 `yaml:"rate"`
}

// LoadAnalysis reads and validates the analysis config file
func LoadAnalysis(path string) (*Analysis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read analysis config: %w", err)
	}

	a := DefaultAnalysis()
	if err := yaml.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("parse analysis config: %w", err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("analysis config validation failed: %w", err)
	}
	return a, nil
}

// DefaultAnalysis returns the conventions of the original spreadsheet workflow
// 윈도우 12/24/36/60개월, 월간 데이터
func DefaultAnalysis() *Analysis {
	return &Analysis{
		Windows:        []int{12, 24, 36, 60},
		PeriodsPerYear: 12,
		OmegaThreshold: 0,
	}
}

// Validate checks parameter sanity
func (a *Analysis) Validate() error {
	if len(a.Windows) == 0 {
		return fmt.Errorf("at least one window length is required")
	}
	for _, w := range a.Windows {
		if w < 2 {
			return fmt.Errorf("window length must be >= 2, got %d", w)
		}
	}

	if a.PeriodsPerYear <= 0 {
		return fmt.Errorf("periods_per_year must be positive, got %d", a.PeriodsPerYear)
	}

	for _, m := range a.Metrics {
		kind, err := contracts.ParseMetricKind(m)
		if err != nil {
			return err
		}
		// fit 지표는 피어 벤치마크 대상으로 항상 전부 계산됨. metrics 목록은 기본 지표 전용
		if !contracts.IsBaseMetric(kind) {
			return fmt.Errorf("metric %q is a benchmark-fit metric; metrics may list base metrics only", m)
		}
	}

	if a.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", a.Workers)
	}

	return nil
}

// WindowList converts the configured window lengths to typed windows
func (a *Analysis) WindowList() []contracts.Window {
	out := make([]contracts.Window, len(a.Windows))
	for i, w := range a.Windows {
		out[i] = contracts.Window(w)
	}
	return out
}

// MetricList resolves the configured base metric set
func (a *Analysis) MetricList() []contracts.MetricKind {
	if len(a.Metrics) == 0 {
		return contracts.BaseMetrics()
	}
	out := make([]contracts.MetricKind, 0, len(a.Metrics))
	for _, m := range a.Metrics {
		kind, err := contracts.ParseMetricKind(m)
		if err != nil {
			continue // Validate에서 이미 걸러짐
		}
		out = append(out, kind)
	}
	return out
}
