package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/internal/ranking"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "피어그룹 랭킹 재계산",
	Long: `저장된 롤링 지표 아티팩트에서 피어그룹 백분위 랭킹만 다시 계산합니다.

피어그룹 배정이 바뀌었을 때 지표 전체를 다시 계산할 필요 없이
랭킹 테이블만 갱신하는 용도. 규약: average-rank 동점 처리,
(rank − 0.5)/n × 100 백분위.

Example:
  go run ./cmd/fund rank
  go run ./cmd/fund rank --out results`,
	RunE: runRank,
}

var rankOut string

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringVar(&rankOut, "out", "", "아티팩트 디렉터리 (기본: ARTIFACT_DIR)")
}

func runRank(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundmetrics Peer Ranking ===")

	cfg, analysis, log, err := setup()
	if err != nil {
		return err
	}
	if rankOut != "" {
		cfg.ArtifactDir = rankOut
	}

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}

	meta, err := store.LoadMetadata()
	if err != nil {
		PrintError("metadata artifact not found; run compute first")
		return err
	}
	groups := contracts.PeerGroupsFromMeta(meta.Funds)

	ranker := ranking.NewRanker(log)
	count := 0

	for _, metric := range analysis.MetricList() {
		for _, w := range analysis.WindowList() {
			table, err := store.LoadMetricTable(metric, w)
			if err != nil {
				// 저장된 적 없는 (지표, 윈도우) 조합은 건너뜀
				continue
			}

			if err := store.SaveRankTable(ranker.Rank(table, groups)); err != nil {
				return err
			}
			count++
		}
	}

	if count == 0 {
		PrintError("no metric artifacts found; run compute first")
		return fmt.Errorf("no metric artifacts in %s", cfg.ArtifactDir)
	}

	PrintSuccess(fmt.Sprintf("%d rank tables written (%d peer groups)", count, len(groups)))
	return nil
}
