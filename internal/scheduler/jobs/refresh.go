package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/fundmetrics/internal/pipeline"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// RefreshJob recomputes all artifacts from the current input snapshot
// 매 실행이 처음부터 다시 계산, 증분 갱신 없음 (데이터 모델 규약)
type RefreshJob struct {
	pipeline *pipeline.Pipeline
	schedule string
	logger   *logger.Logger
}

// NewRefreshJob creates the artifact refresh job
func NewRefreshJob(p *pipeline.Pipeline, schedule string, log *logger.Logger) *RefreshJob {
	return &RefreshJob{pipeline: p, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *RefreshJob) Name() string {
	return "artifact-refresh"
}

// Schedule returns the cron schedule expression
func (j *RefreshJob) Schedule() string {
	return j.schedule
}

// Run executes one full pipeline pass
func (j *RefreshJob) Run(ctx context.Context) error {
	result, err := j.pipeline.Run(ctx)
	if err != nil {
		return fmt.Errorf("refresh pipeline: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"funds":         result.Funds,
		"metric_tables": result.MetricTables,
		"duration":      result.Duration.String(),
	}).Info("Artifacts refreshed")

	return nil
}
