package ranking

import (
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

func singleDateTable(values map[string]float64) *contracts.MetricTable {
	cal := contracts.NewCalendar([]time.Time{time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)})

	ids := make([]string, 0, len(values))
	for id := range values {
		ids = append(ids, id)
	}

	table := contracts.NewMetricTable(contracts.MetricSharpe, 12, cal, ids)
	for id, v := range values {
		table.Values[id][0] = v
	}
	return table
}

func TestRank_ThreeFunds(t *testing.T) {
	// 샤프 {1.0, 2.0, 3.0} → 백분위 {16.67, 50, 83.33} (Hazen 규약)
	// {0, 50, 100}이 아님
	table := singleDateTable(map[string]float64{"F1": 1.0, "F2": 2.0, "F3": 3.0})
	groups := []contracts.PeerGroup{{Name: "G", FundIDs: []string{"F1", "F2", "F3"}}}

	ranks := NewRanker(testLogger()).Rank(table, groups)

	assert.InDelta(t, 16.67, ranks.Rank("F1", 0), 0.01)
	assert.InDelta(t, 50.0, ranks.Rank("F2", 0), 0.01)
	assert.InDelta(t, 83.33, ranks.Rank("F3", 0), 0.01)
}

func TestRank_TiesGetAverageRank(t *testing.T) {
	// 동점 {1.0, 1.0, 2.0}: 순위 1,2의 평균 1.5 → (1.5−0.5)/3×100 = 33.33
	table := singleDateTable(map[string]float64{"F1": 1.0, "F2": 1.0, "F3": 2.0})
	groups := []contracts.PeerGroup{{Name: "G", FundIDs: []string{"F1", "F2", "F3"}}}

	ranks := NewRanker(testLogger()).Rank(table, groups)

	assert.InDelta(t, 33.33, ranks.Rank("F1", 0), 0.01)
	assert.InDelta(t, 33.33, ranks.Rank("F2", 0), 0.01)
	assert.InDelta(t, 83.33, ranks.Rank("F3", 0), 0.01)
}

func TestRank_UndefinedValuesExcluded(t *testing.T) {
	// undefined 펀드는 랭킹 집합에서 제외 (0점 배정 아님)
	table := singleDateTable(map[string]float64{"F1": 1.0, "F3": 3.0})
	table.Values["F2"] = []float64{contracts.Undefined()}
	table.IDs = append(table.IDs, "F2")
	groups := []contracts.PeerGroup{{Name: "G", FundIDs: []string{"F1", "F2", "F3"}}}

	ranks := NewRanker(testLogger()).Rank(table, groups)

	// n=2 기준 백분위
	assert.InDelta(t, 25.0, ranks.Rank("F1", 0), 0.01)
	assert.InDelta(t, 75.0, ranks.Rank("F3", 0), 0.01)
	assert.False(t, contracts.IsDefined(ranks.Rank("F2", 0)))
}

func TestRank_SeparatePeerGroups(t *testing.T) {
	table := singleDateTable(map[string]float64{"F1": 1.0, "F2": 2.0, "G1": 5.0, "G2": 9.0})
	groups := []contracts.PeerGroup{
		{Name: "A", FundIDs: []string{"F1", "F2"}},
		{Name: "B", FundIDs: []string{"G1", "G2"}},
	}

	ranks := NewRanker(testLogger()).Rank(table, groups)

	// 각 그룹은 독립적으로 n=2 랭킹
	assert.InDelta(t, 25.0, ranks.Rank("F1", 0), 0.01)
	assert.InDelta(t, 75.0, ranks.Rank("F2", 0), 0.01)
	assert.InDelta(t, 25.0, ranks.Rank("G1", 0), 0.01)
	assert.InDelta(t, 75.0, ranks.Rank("G2", 0), 0.01)
}

func TestRank_UngroupedFundStaysUndefined(t *testing.T) {
	table := singleDateTable(map[string]float64{"F1": 1.0, "F2": 2.0, "X": 3.0})
	groups := []contracts.PeerGroup{{Name: "G", FundIDs: []string{"F1", "F2"}}}

	ranks := NewRanker(testLogger()).Rank(table, groups)
	assert.False(t, contracts.IsDefined(ranks.Rank("X", 0)))
}

func TestRank_BoundsAndDeterminism(t *testing.T) {
	table := singleDateTable(map[string]float64{
		"F1": -0.5, "F2": 0.0, "F3": 0.7, "F4": 0.7, "F5": 2.1,
	})
	groups := []contracts.PeerGroup{{Name: "G", FundIDs: []string{"F1", "F2", "F3", "F4", "F5"}}}

	ranker := NewRanker(testLogger())
	first := ranker.Rank(table, groups)
	second := ranker.Rank(table, groups)

	for _, id := range table.IDs {
		r := first.Rank(id, 0)
		require.True(t, contracts.IsDefined(r))
		assert.GreaterOrEqual(t, r, 0.0)
		assert.LessOrEqual(t, r, 100.0)

		// 동일 입력 → 비트 단위 동일 출력
		assert.Equal(t, r, second.Rank(id, 0))
	}

	// 동점 쌍은 같은 백분위
	assert.Equal(t, first.Rank("F3", 0), first.Rank("F4", 0))
}
