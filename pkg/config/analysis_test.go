package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundmetrics/internal/contracts"
)

func writeAnalysisFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAnalysis(t *testing.T) {
	path := writeAnalysisFile(t, `
windows: [12, 36]
periods_per_year: 12
risk_free:
  series_id: RF
omega_threshold: 0.001
metrics: [Return, Sharpe]
market_benchmarks: [MSCI_World]
workers: 4
`)

	a, err := LoadAnalysis(path)
	require.NoError(t, err)

	assert.Equal(t, []int{12, 36}, a.Windows)
	assert.Equal(t, 12, a.PeriodsPerYear)
	assert.Equal(t, "RF", a.RiskFree.SeriesID)
	assert.Equal(t, 0.001, a.OmegaThreshold)
	assert.Equal(t, []string{"MSCI_World"}, a.MarketBenchmarks)
	assert.Equal(t, 4, a.Workers)
}

func TestLoadAnalysis_PartialUsesDefaults(t *testing.T) {
	path := writeAnalysisFile(t, `
risk_free:
  rate: 0.002
`)

	a, err := LoadAnalysis(path)
	require.NoError(t, err)

	// 명시하지 않은 값은 기본 규약 유지
	assert.Equal(t, []int{12, 24, 36, 60}, a.Windows)
	assert.Equal(t, 12, a.PeriodsPerYear)
	assert.Equal(t, 0.002, a.RiskFree.Rate)
}

func TestLoadAnalysis_Missing(t *testing.T) {
	_, err := LoadAnalysis(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadAnalysis_InvalidYAML(t *testing.T) {
	path := writeAnalysisFile(t, "windows: [12,")
	_, err := LoadAnalysis(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Analysis)
		wantErr bool
	}{
		{"defaults ok", func(a *Analysis) {}, false},
		{"no windows", func(a *Analysis) { a.Windows = nil }, true},
		{"window too short", func(a *Analysis) { a.Windows = []int{1} }, true},
		{"bad periods", func(a *Analysis) { a.PeriodsPerYear = 0 }, true},
		{"unknown metric", func(a *Analysis) { a.Metrics = []string{"Alpha"} }, true},
		{"fit metric in base list", func(a *Analysis) { a.Metrics = []string{"Beta"} }, true},
		{"base metrics ok", func(a *Analysis) { a.Metrics = []string{"Return", "Sharpe"} }, false},
		{"negative workers", func(a *Analysis) { a.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DefaultAnalysis()
			tt.mutate(a)
			err := a.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWindowList(t *testing.T) {
	a := &Analysis{Windows: []int{12, 60}}
	assert.Equal(t, []contracts.Window{12, 60}, a.WindowList())
}

func TestMetricList(t *testing.T) {
	a := &Analysis{}
	assert.Equal(t, contracts.BaseMetrics(), a.MetricList())

	a.Metrics = []string{"Volatility", "Omega"}
	assert.Equal(t, []contracts.MetricKind{contracts.MetricVolatility, contracts.MetricOmega}, a.MetricList())
}
