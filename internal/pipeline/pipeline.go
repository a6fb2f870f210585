package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/internal/correlation"
	"github.com/wonny/fundmetrics/internal/loader"
	"github.com/wonny/fundmetrics/internal/ranking"
	"github.com/wonny/fundmetrics/internal/rolling"
	"github.com/wonny/fundmetrics/pkg/config"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// Pipeline wires the full computation pass:
// load → rolling metrics → peer ranking → benchmark correlations → artifacts
// ⭐ SSOT: 전체 계산 파이프라인 실행은 여기서만
//
// 단일 패스 배치 변환: 입력 스냅샷을 읽어 불변 결과 테이블을 만들고
// 아티팩트로 저장한다. 증분 재계산 없음, 매 실행이 처음부터 다시 계산.
type Pipeline struct {
	cfg      *config.Config
	analysis *config.Analysis
	loader   *loader.Loader
	store    *artifact.Store
	logger   *logger.Logger
}

// Result summarizes one pipeline run
type Result struct {
	Funds             int
	Benchmarks        int
	Observations      int
	MetricTables      int
	RankTables        int
	CorrelationTables int
	Duration          time.Duration
	ExcelPath         string
}

// New creates a pipeline
func New(cfg *config.Config, analysis *config.Analysis, store *artifact.Store, log *logger.Logger) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		analysis: analysis,
		loader:   loader.New(log),
		store:    store,
		logger:   log,
	}
}

// Run executes one full computation pass
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now()

	// 1. 입력 로드 (boundary: 파일 I/O 에러는 여기서만 발생)
	funds, err := p.loader.LoadReturns(p.cfg.FundReturnsPath)
	if err != nil {
		return nil, fmt.Errorf("load fund returns: %w", err)
	}
	fundMeta, err := p.loader.LoadFundMeta(p.cfg.FundReturnsPath)
	if err != nil {
		return nil, fmt.Errorf("load fund metadata: %w", err)
	}

	benchmarks, err := p.loader.LoadReturns(p.cfg.BenchmarkReturnsPath)
	if err != nil {
		return nil, fmt.Errorf("load benchmark returns: %w", err)
	}
	benchMeta, err := p.loader.LoadBenchmarkMeta(p.cfg.BenchmarkReturnsPath)
	if err != nil {
		return nil, fmt.Errorf("load benchmark metadata: %w", err)
	}

	// 2. 날짜 정렬 (intersection). 이후 모든 계산은 동일 달력
	funds, benchmarks, err = contracts.AlignTables(funds, benchmarks)
	if err != nil {
		return nil, fmt.Errorf("align fund and benchmark tables: %w", err)
	}

	p.logger.WithFields(map[string]interface{}{
		"funds":        len(funds.IDs),
		"benchmarks":   len(benchmarks.IDs),
		"observations": funds.Len(),
	}).Info("Input snapshot loaded and aligned")

	// 3. 무위험 수익률 시계열 (설정된 경우)
	var riskFree []float64
	if id := p.analysis.RiskFree.SeriesID; id != "" {
		series, ok := benchmarks.Series(id)
		if !ok {
			return nil, fmt.Errorf("risk-free series %q not found in benchmark table", id)
		}
		riskFree = series
	}

	engine := rolling.NewEngine(rolling.Config{
		Windows:        p.analysis.WindowList(),
		Metrics:        p.analysis.MetricList(),
		PeriodsPerYear: p.analysis.PeriodsPerYear,
		OmegaThreshold: p.analysis.OmegaThreshold,
		RiskFree:       p.analysis.RiskFree.Rate,
		Workers:        p.analysis.Workers,
	}, p.logger)

	// 4. 펀드 기본 지표
	fundTables, err := engine.ComputeBase(ctx, funds, riskFree)
	if err != nil {
		return nil, fmt.Errorf("compute fund metrics: %w", err)
	}

	// 5. 피어 벤치마크 기본 지표 (대시보드 오버레이용)
	peerBench := peerBenchmarkIDs(benchMeta)
	benchTables, err := engine.ComputeBase(ctx, benchmarks.Select(peerBench), riskFree)
	if err != nil {
		return nil, fmt.Errorf("compute benchmark metrics: %w", err)
	}

	// 6. 벤치마크 fit 지표 (펀드 vs 피어그룹 벤치마크)
	benchmarkByFund := fitMapping(fundMeta, benchMeta)
	fitTables, err := engine.ComputeFit(ctx, funds, benchmarks, benchmarkByFund)
	if err != nil {
		return nil, fmt.Errorf("compute fit metrics: %w", err)
	}

	// 7. 피어그룹 백분위 랭킹 (기본 지표만)
	groups := contracts.PeerGroupsFromMeta(fundMeta)
	ranker := ranking.NewRanker(p.logger)
	rankTables := ranker.RankAll(fundTables, groups)

	// 8. 일반 시장 벤치마크 상관관계
	marketIDs := p.analysis.MarketBenchmarks
	if len(marketIDs) == 0 {
		marketIDs = contracts.MarketBenchmarkIDs(benchMeta)
	}
	corrEngine := correlation.NewEngine(correlation.Config{
		Windows:      p.analysis.WindowList(),
		BenchmarkIDs: marketIDs,
		Workers:      p.analysis.Workers,
	}, p.logger)
	corrTables, err := corrEngine.Compute(ctx, funds, benchmarks)
	if err != nil {
		return nil, fmt.Errorf("compute benchmark correlations: %w", err)
	}

	// 9. 아티팩트 저장
	for _, t := range append(fundTables, fitTables...) {
		if err := p.store.SaveMetricTable(t); err != nil {
			return nil, err
		}
	}
	for _, t := range benchTables {
		if err := p.store.SaveBenchmarkTable(t); err != nil {
			return nil, err
		}
	}
	for _, t := range rankTables {
		if err := p.store.SaveRankTable(t); err != nil {
			return nil, err
		}
	}
	for _, t := range corrTables {
		if err := p.store.SaveCorrelationTable(t); err != nil {
			return nil, err
		}
	}
	if err := p.store.SaveMetadata(&artifact.Metadata{Funds: fundMeta, Benchmarks: benchMeta}); err != nil {
		return nil, err
	}

	result := &Result{
		Funds:             len(funds.IDs),
		Benchmarks:        len(benchmarks.IDs),
		Observations:      funds.Len(),
		MetricTables:      len(fundTables) + len(fitTables) + len(benchTables),
		RankTables:        len(rankTables),
		CorrelationTables: len(corrTables),
	}

	// 10. Excel 내보내기 (옵션)
	if p.cfg.ExcelExport {
		path := filepath.Join(p.store.Dir(), "fundmetrics.xlsx")
		if err := p.store.ExportWorkbook(path, append(fundTables, fitTables...), rankTables); err != nil {
			return nil, fmt.Errorf("export workbook: %w", err)
		}
		result.ExcelPath = path
	}

	result.Duration = time.Since(started)

	p.logger.WithFields(map[string]interface{}{
		"metric_tables":      result.MetricTables,
		"rank_tables":        result.RankTables,
		"correlation_tables": result.CorrelationTables,
		"duration":           result.Duration.String(),
	}).Info("Pipeline run completed")

	return result, nil
}

// peerBenchmarkIDs returns the ids of all peer-group benchmarks
func peerBenchmarkIDs(benchmarks []contracts.BenchmarkMeta) []string {
	ids := make([]string, 0, len(benchmarks))
	for _, b := range benchmarks {
		if b.Kind == contracts.PeerBenchmark {
			ids = append(ids, b.ID)
		}
	}
	return ids
}

// fitMapping maps each fund to its peer group's benchmark
func fitMapping(funds []contracts.FundMeta, benchmarks []contracts.BenchmarkMeta) map[string]string {
	byGroup := contracts.PeerBenchmarkMap(benchmarks)

	out := make(map[string]string, len(funds))
	for _, f := range funds {
		if benchID, ok := byGroup[f.PeerGroup]; ok {
			out[f.ID] = benchID
		}
	}
	return out
}
