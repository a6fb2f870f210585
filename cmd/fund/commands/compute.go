package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/pipeline"
)

// computeCmd represents the compute command
var computeCmd = &cobra.Command{
	Use:   "compute",
	Short: "전체 파이프라인 실행",
	Long: `입력 스냅샷을 읽어 전체 계산 패스를 1회 실행합니다.

단계:
1. 펀드/벤치마크 수익률 + 메타데이터 로드, 날짜 정렬 (intersection)
2. 롤링 기본 지표 (펀드 + 피어 벤치마크)
3. 벤치마크 fit 지표 (펀드 vs 피어그룹 벤치마크)
4. 피어그룹 백분위 랭킹
5. 일반 시장 벤치마크 상관관계 (Corr/UpCorr/DownCorr)
6. 아티팩트 저장 (gob + xlsx)

Example:
  go run ./cmd/fund compute
  go run ./cmd/fund compute --funds data/funds.xlsx --out results
  go run ./cmd/fund compute --no-excel`,
	RunE: runCompute,
}

var (
	// Flags
	computeFunds      string
	computeBenchmarks string
	computeOut        string
	computeNoExcel    bool
)

func init() {
	rootCmd.AddCommand(computeCmd)

	// Flags
	computeCmd.Flags().StringVar(&computeFunds, "funds", "", "펀드 수익률 워크북 (기본: FUND_RETURNS_PATH)")
	computeCmd.Flags().StringVar(&computeBenchmarks, "benchmarks", "", "벤치마크 수익률 워크북 (기본: BENCHMARK_RETURNS_PATH)")
	computeCmd.Flags().StringVar(&computeOut, "out", "", "아티팩트 디렉터리 (기본: ARTIFACT_DIR)")
	computeCmd.Flags().BoolVar(&computeNoExcel, "no-excel", false, "Excel 내보내기 생략")
}

func runCompute(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundmetrics Compute Pipeline ===")

	cfg, analysis, log, err := setup()
	if err != nil {
		return err
	}

	if computeFunds != "" {
		cfg.FundReturnsPath = computeFunds
	}
	if computeBenchmarks != "" {
		cfg.BenchmarkReturnsPath = computeBenchmarks
	}
	if computeOut != "" {
		cfg.ArtifactDir = computeOut
	}
	if computeNoExcel {
		cfg.ExcelExport = false
	}

	fmt.Printf("\n📊 Funds      : %s\n", cfg.FundReturnsPath)
	fmt.Printf("📈 Benchmarks : %s\n", cfg.BenchmarkReturnsPath)
	fmt.Printf("🪟 Windows    : %v months\n", analysis.Windows)
	fmt.Printf("📁 Artifacts  : %s\n", cfg.ArtifactDir)
	PrintSeparator()

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}

	result, err := pipeline.New(cfg, analysis, store, log).Run(context.Background())
	if err != nil {
		PrintError(fmt.Sprintf("pipeline failed: %v", err))
		return err
	}

	fmt.Println()
	PrintKeyValue("Funds", fmt.Sprintf("%d", result.Funds), 18)
	PrintKeyValue("Benchmarks", fmt.Sprintf("%d", result.Benchmarks), 18)
	PrintKeyValue("Observations", fmt.Sprintf("%d", result.Observations), 18)
	PrintKeyValue("Metric tables", fmt.Sprintf("%d", result.MetricTables), 18)
	PrintKeyValue("Rank tables", fmt.Sprintf("%d", result.RankTables), 18)
	PrintKeyValue("Correlation tables", fmt.Sprintf("%d", result.CorrelationTables), 18)
	if result.ExcelPath != "" {
		PrintKeyValue("Excel export", result.ExcelPath, 18)
	}
	fmt.Println()
	PrintSuccess(fmt.Sprintf("Pipeline completed in %.2fs", result.Duration.Seconds()))

	return nil
}
