package correlation

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/internal/formulas"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// Config holds the parameters of one correlation run
type Config struct {
	Windows []contracts.Window

	// BenchmarkIDs 일반 시장 벤치마크 id 목록 (자산군별)
	BenchmarkIDs []string

	// Workers 펀드 단위 병렬 워커 수 (0 = GOMAXPROCS)
	Workers int
}

// Engine computes rolling correlations of funds against market benchmarks
// ⭐ SSOT: 일반 벤치마크 상관관계 계산은 여기서만
// 롤링 규약은 rolling 엔진과 동일: N−W+1 윈도우, 윈도우 종료 날짜 기준
type Engine struct {
	cfg    Config
	logger *logger.Logger
}

// NewEngine creates a correlation engine
func NewEngine(cfg Config, log *logger.Logger) *Engine {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{cfg: cfg, logger: log}
}

// Compute produces one CorrelationTable per (kind, window).
// 두 테이블은 동일 달력이어야 함. 윈도우당 유효 쌍 < 2 이면 undefined.
func (e *Engine) Compute(ctx context.Context, funds, benchmarks *contracts.ReturnTable) ([]*contracts.CorrelationTable, error) {
	if !funds.Dates.Equal(benchmarks.Dates) {
		return nil, fmt.Errorf("fund and benchmark tables are not aligned (%d vs %d dates)", funds.Len(), benchmarks.Len())
	}

	benchIDs := make([]string, 0, len(e.cfg.BenchmarkIDs))
	for _, id := range e.cfg.BenchmarkIDs {
		if _, ok := benchmarks.Series(id); ok {
			benchIDs = append(benchIDs, id)
		}
	}
	if len(benchIDs) == 0 {
		return nil, fmt.Errorf("none of the configured market benchmarks exist in the benchmark table")
	}

	tables := make([]*contracts.CorrelationTable, 0, len(contracts.CorrelationKinds())*len(e.cfg.Windows))
	for _, kind := range contracts.CorrelationKinds() {
		for _, w := range e.cfg.Windows {
			tables = append(tables, newTable(kind, w, funds, benchIDs))
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Workers)

	for _, fundID := range funds.IDs {
		fundID := fundID
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			series, _ := funds.Series(fundID)
			for _, benchID := range benchIDs {
				bench, _ := benchmarks.Series(benchID)
				for _, t := range tables {
					fillPair(t, fundID, benchID, series, bench)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.WithFields(map[string]interface{}{
		"funds":      len(funds.IDs),
		"benchmarks": len(benchIDs),
		"windows":    len(e.cfg.Windows),
	}).Info("Rolling benchmark correlations computed")

	return tables, nil
}

// newTable allocates one correlation table with all values undefined
func newTable(kind contracts.CorrelationKind, w contracts.Window, funds *contracts.ReturnTable, benchIDs []string) *contracts.CorrelationTable {
	dates := contracts.Calendar{}
	if funds.Len() >= int(w) {
		dates = funds.Dates[int(w)-1:]
	}

	values := make(map[string]map[string][]float64, len(funds.IDs))
	for _, fundID := range funds.IDs {
		byBench := make(map[string][]float64, len(benchIDs))
		for _, benchID := range benchIDs {
			col := make([]float64, len(dates))
			for i := range col {
				col[i] = contracts.Undefined()
			}
			byBench[benchID] = col
		}
		values[fundID] = byBench
	}

	return &contracts.CorrelationTable{
		Kind:         kind,
		Window:       w,
		Dates:        dates,
		FundIDs:      funds.IDs,
		BenchmarkIDs: benchIDs,
		Values:       values,
	}
}

// fillPair fills one fund/benchmark column of one table
// 고루틴은 자기 펀드의 컬럼에만 쓰므로 동기화 불필요
func fillPair(t *contracts.CorrelationTable, fundID, benchID string, series, bench []float64) {
	w := int(t.Window)
	col := t.Values[fundID][benchID]

	for i := range col {
		fundWin := series[i : i+w]
		benchWin := bench[i : i+w]

		switch t.Kind {
		case contracts.CorrAll:
			col[i] = formulas.Correlation(fundWin, benchWin)
		case contracts.CorrUp:
			col[i] = formulas.UpCorrelation(fundWin, benchWin)
		case contracts.CorrDown:
			col[i] = formulas.DownCorrelation(fundWin, benchWin)
		}
	}
}
