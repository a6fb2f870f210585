package ranking

import (
	"sort"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// Ranker computes percentile ranks within peer groups
// ⭐ SSOT: 피어그룹 백분위 랭킹은 여기서만
//
// 규약 (고정):
//   - 동점 처리: average rank (동점 구간의 순위 평균)
//   - 백분위: (rank − 0.5) / n × 100  (Hazen 규약, [0,100] 범위)
//   - 해당 날짜에 undefined 값을 가진 펀드는 랭킹 집합에서 제외 (0점 아님)
//   - 값 오름차순: {1.0, 2.0, 3.0} → {16.67, 50, 83.33}
type Ranker struct {
	logger *logger.Logger
}

// NewRanker creates a peer-group ranker
func NewRanker(log *logger.Logger) *Ranker {
	return &Ranker{logger: log}
}

// Rank computes the percentile rank table for one metric table.
// 각 펀드는 자신의 피어그룹 안에서만 비교됨. 그룹에 유효값이 하나도 없는
// 날짜는 undefined 유지.
func (r *Ranker) Rank(table *contracts.MetricTable, groups []contracts.PeerGroup) *contracts.RankTable {
	ranks := make(map[string][]float64, len(table.IDs))
	for _, id := range table.IDs {
		col := make([]float64, len(table.Dates))
		for i := range col {
			col[i] = contracts.Undefined()
		}
		ranks[id] = col
	}

	for _, group := range groups {
		for i := range table.Dates {
			rankGroupAt(table, group, i, ranks)
		}
	}

	return &contracts.RankTable{
		Metric: table.Metric,
		Window: table.Window,
		Dates:  table.Dates,
		IDs:    table.IDs,
		Ranks:  ranks,
	}
}

// RankAll ranks a set of metric tables against the same peer groups
func (r *Ranker) RankAll(tables []*contracts.MetricTable, groups []contracts.PeerGroup) []*contracts.RankTable {
	out := make([]*contracts.RankTable, 0, len(tables))
	for _, t := range tables {
		out = append(out, r.Rank(t, groups))
	}

	r.logger.WithFields(map[string]interface{}{
		"tables": len(tables),
		"groups": len(groups),
	}).Info("Peer-group percentile ranks computed")

	return out
}

// rankGroupAt ranks one peer group at one date index
func rankGroupAt(table *contracts.MetricTable, group contracts.PeerGroup, dateIdx int, ranks map[string][]float64) {
	type member struct {
		id    string
		value float64
	}

	// undefined 값은 랭킹 집합에서 제외
	members := make([]member, 0, len(group.FundIDs))
	for _, id := range group.FundIDs {
		if _, ok := table.Values[id]; !ok {
			continue
		}
		v := table.Value(id, dateIdx)
		if contracts.IsDefined(v) {
			members = append(members, member{id: id, value: v})
		}
	}

	if len(members) == 0 {
		return
	}

	// 값 오름차순, 동일 값은 id 순 (결정성)
	sort.Slice(members, func(i, j int) bool {
		if members[i].value != members[j].value {
			return members[i].value < members[j].value
		}
		return members[i].id < members[j].id
	})

	n := float64(len(members))

	// average-rank: 동점 구간 [i, j)에는 구간 순위의 평균을 부여
	i := 0
	for i < len(members) {
		j := i + 1
		for j < len(members) && members[j].value == members[i].value {
			j++
		}

		// 1-based 순위 i+1 .. j 의 평균
		avgRank := (float64(i+1) + float64(j)) / 2

		percentile := (avgRank - 0.5) / n * 100
		for k := i; k < j; k++ {
			ranks[members[k].id][dateIdx] = percentile
		}

		i = j
	}
}
