package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundmetrics/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json", "development")
}

// fakeJob 테스트용 잡: 처음 failures 회는 실패
type fakeJob struct {
	name     string
	schedule string
	failures int32
	runs     int32
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	n := atomic.AddInt32(&j.runs, 1)
	if n <= atomic.LoadInt32(&j.failures) {
		return fmt.Errorf("simulated failure %d", n)
	}
	return nil
}

func newTestScheduler() *Scheduler {
	s := New(testLogger())
	s.retryDelay = time.Millisecond // 테스트에서는 재시도 대기 단축
	return s
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "refresh", schedule: "@monthly"}

	require.NoError(t, s.AddJob(job))
	assert.Error(t, s.AddJob(job), "duplicate name must be rejected")
}

func TestAddJob_BadSchedule(t *testing.T) {
	s := newTestScheduler()
	err := s.AddJob(&fakeJob{name: "bad", schedule: "not a cron expr"})
	assert.Error(t, err)
}

func TestRunJob_Unknown(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.RunJob("missing"))
}

func TestRunJob_Success(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "refresh", schedule: "@monthly"}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, ok := s.History("refresh")
	require.True(t, ok)

	latest, ok := history.Latest()
	require.True(t, ok)
	assert.True(t, latest.Success)
	assert.Equal(t, "refresh", latest.JobName)
	assert.Empty(t, latest.Error)
	assert.Equal(t, int32(1), atomic.LoadInt32(&job.runs))
}

func TestRunJob_RetriesThenSucceeds(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "refresh", schedule: "@monthly", failures: 2}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, _ := s.History("refresh")
	latest, ok := history.Latest()
	require.True(t, ok)
	assert.True(t, latest.Success)
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.runs)) // 실패 2회 + 성공 1회
}

func TestRunJob_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &fakeJob{name: "refresh", schedule: "@monthly", failures: 10}
	require.NoError(t, s.AddJob(job))

	s.runJob(job)

	history, _ := s.History("refresh")
	latest, ok := history.Latest()
	require.True(t, ok)
	assert.False(t, latest.Success)
	assert.Contains(t, latest.Error, "simulated failure")
	assert.Equal(t, int32(3), atomic.LoadInt32(&job.runs)) // 최초 1회 + 재시도 2회
}

func TestJobHistory_Cap(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 60; i++ {
		h.AddResult(JobResult{JobName: fmt.Sprintf("run-%d", i), Success: true})
	}

	assert.Len(t, h.Results, 50)
	latest, ok := h.Latest()
	require.True(t, ok)
	assert.Equal(t, "run-59", latest.JobName)
}

func TestJobHistory_Empty(t *testing.T) {
	h := &JobHistory{}
	_, ok := h.Latest()
	assert.False(t, ok)
}
