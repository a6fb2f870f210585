package rolling

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/internal/formulas"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// Config holds the parameters of one rolling computation
// 전역 상태 없음. 모든 파라미터는 명시적으로 주입
type Config struct {
	Windows        []contracts.Window
	Metrics        []contracts.MetricKind
	PeriodsPerYear int
	OmegaThreshold float64

	// RiskFree 고정 월간 무위험 수익률 (RiskFreeSeries 없을 때)
	RiskFree float64

	// Workers 시리즈 단위 병렬 워커 수 (0 = GOMAXPROCS)
	Workers int
}

// Engine applies the formula library over sliding windows
// ⭐ SSOT: 롤링 지표 계산은 여기서만
// 결과는 실행 순서와 무관하게 결정적임 (시리즈별 독립 계산)
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

// NewEngine creates a rolling metrics engine
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if len(cfg.Metrics) == 0 {
		cfg.Metrics = contracts.BaseMetrics()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{cfg: cfg, logger: log}
}

// ComputeBase computes the base metrics for every series in the table.
// riskFree 가 nil이 아니면 테이블 달력에 정렬된 무위험 수익률 시계열로 사용.
// N < W 인 (시리즈, 윈도우) 조합은 빈 결과 (에러 아님).
func (e *Engine) ComputeBase(ctx context.Context, table *contracts.ReturnTable, riskFree []float64) ([]*contracts.MetricTable, error) {
	if riskFree != nil && len(riskFree) != table.Len() {
		return nil, fmt.Errorf("risk-free series has %d observations, table has %d", len(riskFree), table.Len())
	}

	tables := make([]*contracts.MetricTable, 0, len(e.cfg.Metrics)*len(e.cfg.Windows))
	for _, metric := range e.cfg.Metrics {
		for _, w := range e.cfg.Windows {
			tables = append(tables, contracts.NewMetricTable(metric, w, windowEndDates(table.Dates, w), table.IDs))
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, id := range table.IDs {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			series, _ := table.Series(id)
			for _, t := range tables {
				e.fillBase(t, id, series, riskFree)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"series":  len(table.IDs),
		"metrics": len(e.cfg.Metrics),
		"windows": len(e.cfg.Windows),
	}).Info("Base rolling metrics computed")

	return tables, nil
}

// fillBase fills one series column of one metric table
// 각 고루틴은 자기 시리즈의 컬럼에만 쓰므로 동기화 불필요
func (e *Engine) fillBase(t *contracts.MetricTable, id string, series, riskFree []float64) {
	w := int(t.Window)
	col := t.Values[id]

	for i := range col {
		window := series[i : i+w]

		var rf []float64
		if riskFree != nil {
			rf = riskFree[i : i+w]
		}

		col[i] = e.evalBase(t.Metric, window, rf)
	}
}

// evalBase dispatches one window to the formula library
func (e *Engine) evalBase(metric contracts.MetricKind, window, riskFree []float64) float64 {
	switch metric {
	case contracts.MetricReturn:
		return formulas.AnnualizedReturn(window, e.cfg.PeriodsPerYear)
	case contracts.MetricVolatility:
		return formulas.Volatility(window, e.cfg.PeriodsPerYear)
	case contracts.MetricMaxDrawdown:
		return formulas.MaxDrawdown(window)
	case contracts.MetricWorstMonth:
		return formulas.WorstMonth(window)
	case contracts.MetricOmega:
		return formulas.OmegaRatio(window, e.cfg.OmegaThreshold)
	case contracts.MetricSharpe:
		if riskFree != nil {
			return formulas.SharpeRatioSeries(window, riskFree, e.cfg.PeriodsPerYear)
		}
		return formulas.SharpeRatio(window, e.cfg.RiskFree, e.cfg.PeriodsPerYear)
	default:
		return contracts.Undefined()
	}
}

// ComputeFit computes the benchmark-fit metrics for every fund against its
// peer-group benchmark. benchmarkByFund: fund id → benchmark id.
// 두 테이블은 동일 달력이어야 함 (정렬은 로더 책임)
func (e *Engine) ComputeFit(ctx context.Context, funds, benchmarks *contracts.ReturnTable, benchmarkByFund map[string]string) ([]*contracts.MetricTable, error) {
	if !funds.Dates.Equal(benchmarks.Dates) {
		return nil, fmt.Errorf("fund and benchmark tables are not aligned (%d vs %d dates)", funds.Len(), benchmarks.Len())
	}

	tables := make([]*contracts.MetricTable, 0, len(contracts.FitMetrics())*len(e.cfg.Windows))
	for _, metric := range contracts.FitMetrics() {
		for _, w := range e.cfg.Windows {
			tables = append(tables, contracts.NewMetricTable(metric, w, windowEndDates(funds.Dates, w), funds.IDs))
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, id := range funds.IDs {
		id := id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			series, _ := funds.Series(id)
			bench, ok := benchmarks.Series(benchmarkByFund[id])
			if !ok {
				// 피어그룹 벤치마크가 없는 펀드는 fit 지표 전체 undefined
				return nil
			}

			for _, t := range tables {
				e.fillFit(t, id, series, bench)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"funds":   len(funds.IDs),
		"windows": len(e.cfg.Windows),
	}).Info("Benchmark-fit rolling metrics computed")

	return tables, nil
}

// fillFit fills one fund column of one fit metric table
func (e *Engine) fillFit(t *contracts.MetricTable, id string, series, bench []float64) {
	w := int(t.Window)
	col := t.Values[id]

	for i := range col {
		fundWin := series[i : i+w]
		benchWin := bench[i : i+w]
		col[i] = e.evalFit(t.Metric, fundWin, benchWin)
	}
}

// evalFit dispatches one aligned window pair to the formula library
func (e *Engine) evalFit(metric contracts.MetricKind, fund, bench []float64) float64 {
	switch metric {
	case contracts.MetricTrackingError:
		return formulas.TrackingError(fund, bench, e.cfg.PeriodsPerYear)
	case contracts.MetricBeta:
		return formulas.Beta(fund, bench)
	case contracts.MetricRSquared:
		return formulas.RSquared(fund, bench)
	case contracts.MetricCorrelation:
		return formulas.Correlation(fund, bench)
	default:
		return contracts.Undefined()
	}
}

// windowEndDates returns the window-end dates of a calendar.
// N < W 이면 빈 달력 (N−W+1 규약)
func windowEndDates(dates contracts.Calendar, w contracts.Window) contracts.Calendar {
	if len(dates) < int(w) {
		return contracts.Calendar{}
	}
	return dates[int(w)-1:]
}
