package rolling

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("error", "json", "development")
}

func makeTable(t *testing.T, n int, columns map[string][]float64) *contracts.ReturnTable {
	t.Helper()

	dates := make([]time.Time, n)
	start := time.Date(2020, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range dates {
		dates[i] = start.AddDate(0, i, 0)
	}

	table, err := contracts.NewReturnTable(contracts.NewCalendar(dates), columns)
	require.NoError(t, err)
	return table
}

func constant(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func newTestEngine(windows ...contracts.Window) *Engine {
	return NewEngine(Config{
		Windows:        windows,
		PeriodsPerYear: 12,
	}, testLogger())
}

func TestComputeBase_ShortSeriesYieldsEmptyResult(t *testing.T) {
	// N < W → 빈 결과, 에러 아님
	table := makeTable(t, 6, map[string][]float64{"F1": constant(0.01, 6)})

	tables, err := newTestEngine(12).ComputeBase(context.Background(), table, nil)
	require.NoError(t, err)
	require.NotEmpty(t, tables)

	for _, mt := range tables {
		assert.Empty(t, mt.Dates)
		assert.Empty(t, mt.Values["F1"])
	}
}

func TestComputeBase_WindowCount(t *testing.T) {
	// N=24, W=12 → 정확히 N−W+1 = 13개 값
	table := makeTable(t, 24, map[string][]float64{"F1": constant(0.01, 24)})

	tables, err := newTestEngine(12).ComputeBase(context.Background(), table, nil)
	require.NoError(t, err)

	for _, mt := range tables {
		assert.Len(t, mt.Dates, 13, "metric %s", mt.Metric)
		assert.Len(t, mt.Values["F1"], 13)
		// 첫 윈도우 종료 날짜 = 12번째 관측 날짜
		assert.Equal(t, table.Dates[11], mt.Dates[0])
	}
}

func TestComputeBase_ConstantReturnScenario(t *testing.T) {
	// 고정 1% 수익률 24개월, 12개월 윈도우:
	// 변동성은 모두 0(정의됨), 샤프는 분산 0이라 undefined,
	// 수익률은 모두 1.01^12 − 1
	table := makeTable(t, 24, map[string][]float64{"F1": constant(0.01, 24)})

	tables, err := newTestEngine(12).ComputeBase(context.Background(), table, nil)
	require.NoError(t, err)

	expected := math.Pow(1.01, 12) - 1
	for _, mt := range tables {
		for i := range mt.Dates {
			v := mt.Value("F1", i)
			switch mt.Metric {
			case contracts.MetricVolatility:
				require.True(t, contracts.IsDefined(v))
				assert.Equal(t, 0.0, v)
			case contracts.MetricSharpe:
				assert.False(t, contracts.IsDefined(v))
			case contracts.MetricReturn:
				assert.InDelta(t, expected, v, 1e-12)
			}
		}
	}
}

func TestComputeBase_Deterministic(t *testing.T) {
	columns := map[string][]float64{
		"F1": {0.02, -0.01, 0.03, 0.01, -0.02, 0.015, 0.005, -0.01, 0.02, 0.01, 0.0, 0.01, 0.02, -0.03},
		"F2": {0.01, 0.02, -0.01, 0.005, 0.01, -0.02, 0.03, 0.01, -0.005, 0.02, 0.01, -0.01, 0.0, 0.01},
	}
	table := makeTable(t, 14, columns)

	engine := newTestEngine(12)
	first, err := engine.ComputeBase(context.Background(), table, nil)
	require.NoError(t, err)
	second, err := engine.ComputeBase(context.Background(), table, nil)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]), "table %s_%s differs between runs", first[i].Metric, first[i].Window.Label())
	}
}

func TestComputeBase_RiskFreeLengthMismatch(t *testing.T) {
	table := makeTable(t, 14, map[string][]float64{"F1": constant(0.01, 14)})

	_, err := newTestEngine(12).ComputeBase(context.Background(), table, []float64{0.001})
	assert.Error(t, err)
}

func TestComputeFit(t *testing.T) {
	fundCols := map[string][]float64{
		"F1": {0.02, -0.01, 0.03, 0.01, -0.02, 0.015, 0.005, -0.01, 0.02, 0.01, 0.0, 0.01, 0.02, -0.03},
	}
	funds := makeTable(t, 14, fundCols)

	// 벤치마크 = 펀드와 동일 시계열 → corr 1, beta 1, TE 0
	benchmarks := makeTable(t, 14, map[string][]float64{"BM1": fundCols["F1"]})

	tables, err := newTestEngine(12).ComputeFit(context.Background(), funds, benchmarks, map[string]string{"F1": "BM1"})
	require.NoError(t, err)

	for _, mt := range tables {
		require.Len(t, mt.Dates, 3)
		for i := range mt.Dates {
			v := mt.Value("F1", i)
			switch mt.Metric {
			case contracts.MetricCorrelation, contracts.MetricBeta, contracts.MetricRSquared:
				assert.InDelta(t, 1.0, v, 1e-9)
			case contracts.MetricTrackingError:
				assert.Equal(t, 0.0, v)
			}
		}
	}
}

func TestComputeFit_MissingBenchmarkLeavesUndefined(t *testing.T) {
	funds := makeTable(t, 14, map[string][]float64{"F1": constant(0.01, 14)})
	benchmarks := makeTable(t, 14, map[string][]float64{"BM1": constant(0.01, 14)})

	// F1에 매핑된 벤치마크 없음
	tables, err := newTestEngine(12).ComputeFit(context.Background(), funds, benchmarks, map[string]string{})
	require.NoError(t, err)

	for _, mt := range tables {
		for i := range mt.Dates {
			assert.False(t, contracts.IsDefined(mt.Value("F1", i)))
		}
	}
}

func TestComputeFit_MisalignedTablesIsCallerError(t *testing.T) {
	funds := makeTable(t, 14, map[string][]float64{"F1": constant(0.01, 14)})
	benchmarks := makeTable(t, 10, map[string][]float64{"BM1": constant(0.01, 10)})

	_, err := newTestEngine(12).ComputeFit(context.Background(), funds, benchmarks, map[string]string{"F1": "BM1"})
	assert.Error(t, err)
}
