package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/artifact"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "아티팩트 상태 확인",
	Long: `아티팩트 디렉터리의 저장된 결과 테이블 목록을 보여줍니다.

Example:
  go run ./cmd/fund status
  go run ./cmd/fund status --out results`,
	RunE: runStatus,
}

var statusOut string

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVar(&statusOut, "out", "", "아티팩트 디렉터리 (기본: ARTIFACT_DIR)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, _, log, err := setup()
	if err != nil {
		return err
	}
	if statusOut != "" {
		cfg.ArtifactDir = statusOut
	}

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}

	artifacts, err := store.List()
	if err != nil {
		return err
	}

	fmt.Printf("=== Artifacts in %s ===\n\n", cfg.ArtifactDir)

	if len(artifacts) == 0 {
		PrintInfo("no artifacts yet; run compute first")
		return nil
	}

	widths := []int{40, 12, 20}
	PrintTableHeader([]string{"Name", "Size", "Modified"}, widths)
	for _, a := range artifacts {
		PrintTableRow([]string{
			a.Name,
			fmt.Sprintf("%d B", a.Size),
			a.ModTime.Format("2006-01-02 15:04:05"),
		}, widths)
	}

	fmt.Println()
	PrintSuccess(fmt.Sprintf("%d artifacts", len(artifacts)))
	return nil
}
