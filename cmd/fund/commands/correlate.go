package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/internal/correlation"
	"github.com/wonny/fundmetrics/internal/loader"
)

// correlateCmd represents the correlate command
var correlateCmd = &cobra.Command{
	Use:   "correlate",
	Short: "벤치마크 상관관계만 계산",
	Long: `펀드와 일반 시장 벤치마크 간 롤링 상관관계만 계산합니다.

각 (펀드, 벤치마크, 윈도우) 조합에 대해 Corr / UpCorr / DownCorr
세 가지 테이블을 생성. 윈도우당 유효 쌍이 2개 미만이면 undefined.

Example:
  go run ./cmd/fund correlate
  go run ./cmd/fund correlate --out results`,
	RunE: runCorrelate,
}

var correlateOut string

func init() {
	rootCmd.AddCommand(correlateCmd)

	correlateCmd.Flags().StringVar(&correlateOut, "out", "", "아티팩트 디렉터리 (기본: ARTIFACT_DIR)")
}

func runCorrelate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundmetrics Benchmark Correlations ===")

	cfg, analysis, log, err := setup()
	if err != nil {
		return err
	}
	if correlateOut != "" {
		cfg.ArtifactDir = correlateOut
	}

	ld := loader.New(log)

	funds, err := ld.LoadReturns(cfg.FundReturnsPath)
	if err != nil {
		return err
	}
	benchmarks, err := ld.LoadReturns(cfg.BenchmarkReturnsPath)
	if err != nil {
		return err
	}
	benchMeta, err := ld.LoadBenchmarkMeta(cfg.BenchmarkReturnsPath)
	if err != nil {
		return err
	}

	funds, benchmarks, err = contracts.AlignTables(funds, benchmarks)
	if err != nil {
		return err
	}

	marketIDs := analysis.MarketBenchmarks
	if len(marketIDs) == 0 {
		marketIDs = contracts.MarketBenchmarkIDs(benchMeta)
	}

	engine := correlation.NewEngine(correlation.Config{
		Windows:      analysis.WindowList(),
		BenchmarkIDs: marketIDs,
		Workers:      analysis.Workers,
	}, log)

	tables, err := engine.Compute(context.Background(), funds, benchmarks)
	if err != nil {
		PrintError(fmt.Sprintf("correlation failed: %v", err))
		return err
	}

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}
	for _, t := range tables {
		if err := store.SaveCorrelationTable(t); err != nil {
			return err
		}
	}

	PrintSuccess(fmt.Sprintf("%d correlation tables written (%d funds × %d benchmarks)",
		len(tables), len(funds.IDs), len(marketIDs)))
	return nil
}
