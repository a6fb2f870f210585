package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "아티팩트를 Excel로 내보내기",
	Long: `저장된 gob 아티팩트를 하나의 xlsx 워크북으로 내보냅니다.

시트당 테이블 하나 (<Metric>_<Window>, Pct_<Metric>_<Window>).
undefined 값은 빈 셀로 기록됨.

Example:
  go run ./cmd/fund export
  go run ./cmd/fund export --output results/report.xlsx`,
	RunE: runExport,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOutput, "output", "", "출력 워크북 경로 (기본: <ARTIFACT_DIR>/fundmetrics.xlsx)")
}

func runExport(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundmetrics Excel Export ===")

	cfg, analysis, log, err := setup()
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}

	var metrics []*contracts.MetricTable
	var ranks []*contracts.RankTable

	allMetrics := append(contracts.BaseMetrics(), contracts.FitMetrics()...)
	for _, metric := range allMetrics {
		for _, w := range analysis.WindowList() {
			if t, err := store.LoadMetricTable(metric, w); err == nil {
				metrics = append(metrics, t)
			}
			if t, err := store.LoadRankTable(metric, w); err == nil {
				ranks = append(ranks, t)
			}
		}
	}

	if len(metrics) == 0 && len(ranks) == 0 {
		PrintError("no artifacts found; run compute first")
		return fmt.Errorf("no artifacts in %s", cfg.ArtifactDir)
	}

	path := exportOutput
	if path == "" {
		path = filepath.Join(cfg.ArtifactDir, "fundmetrics.xlsx")
	}

	if err := store.ExportWorkbook(path, metrics, ranks); err != nil {
		PrintError(fmt.Sprintf("export failed: %v", err))
		return err
	}

	PrintSuccess(fmt.Sprintf("workbook written: %s (%d sheets)", path, len(metrics)+len(ranks)))
	return nil
}
