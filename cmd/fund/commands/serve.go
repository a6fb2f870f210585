package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/fundmetrics/internal/api"
	"github.com/wonny/fundmetrics/internal/api/handlers"
	"github.com/wonny/fundmetrics/internal/artifact"
	"github.com/wonny/fundmetrics/internal/pipeline"
	"github.com/wonny/fundmetrics/internal/scheduler"
	"github.com/wonny/fundmetrics/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "대시보드 API 서버 실행",
	Long: `계산된 아티팩트 테이블을 읽기 전용 JSON API로 제공합니다.

대시보드는 이 API만 소비하며, 수식은 절대 재실행되지 않음.
--refresh-cron 을 주면 해당 주기로 파이프라인을 재실행해
아티팩트를 갱신하는 스케줄러가 함께 뜸.

Endpoints:
  GET /health
  GET /api/funds
  GET /api/benchmarks
  GET /api/metrics/{metric}/{window}
  GET /api/ranks/{metric}/{window}
  GET /api/correlations/{kind}/{window}

Example:
  go run ./cmd/fund serve
  go run ./cmd/fund serve --refresh-cron "0 0 7 1 * *"`,
	RunE: runServe,
}

var serveRefreshCron string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveRefreshCron, "refresh-cron", "", "아티팩트 재계산 cron 표현식 (초 단위 포함, 비우면 비활성)")
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== fundmetrics Dashboard API ===")

	cfg, analysis, log, err := setup()
	if err != nil {
		return err
	}

	store, err := artifact.NewStore(cfg.ArtifactDir, log)
	if err != nil {
		return err
	}

	router := api.NewRouter(cfg, handlers.NewTableHandler(store, log), log)
	server := api.New(cfg, log, router)

	// 스케줄러 (옵션)
	var sched *scheduler.Scheduler
	if serveRefreshCron != "" {
		sched = scheduler.New(log)
		job := jobs.NewRefreshJob(pipeline.New(cfg, analysis, store, log), serveRefreshCron, log)
		if err := sched.AddJob(job); err != nil {
			return err
		}
		sched.Start()
		PrintInfo(fmt.Sprintf("artifact refresh scheduled: %s", serveRefreshCron))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n🚀 Listening on :%s (artifacts: %s)\n", cfg.Port, cfg.ArtifactDir)
	fmt.Println("   Ctrl+C to stop")

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		fmt.Printf("\n⏹  Signal received: %v\n", sig)
	}

	if sched != nil {
		sched.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return err
	}

	PrintSuccess("server stopped")
	return nil
}
