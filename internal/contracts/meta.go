package contracts

import "sort"

// FundMeta describes one fund in the analysis universe
type FundMeta struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ISIN      string `json:"isin"`
	PeerGroup string `json:"peer_group"`
}

// BenchmarkKind distinguishes peer-group benchmarks from general market benchmarks
type BenchmarkKind string

const (
	// PeerBenchmark 피어그룹 대표 벤치마크 (fit 지표 계산용)
	PeerBenchmark BenchmarkKind = "peer"
	// MarketBenchmark 자산군별 일반 시장 벤치마크 (상관관계 계산용)
	MarketBenchmark BenchmarkKind = "market"
)

// BenchmarkMeta describes one benchmark series
type BenchmarkMeta struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Kind      BenchmarkKind `json:"kind"`
	PeerGroup string        `json:"peer_group"` // Kind == peer 일 때만 의미 있음
}

// PeerGroup is a named, static set of fund ids
// 멤버십은 입력 데이터이며 이 시스템이 계산하지 않음
type PeerGroup struct {
	Name    string   `json:"name"`
	FundIDs []string `json:"fund_ids"`
}

// PeerGroupsFromMeta derives the peer group sets from fund metadata.
// 결과는 그룹명/펀드 id 순으로 정렬되어 결정적임
func PeerGroupsFromMeta(funds []FundMeta) []PeerGroup {
	byName := make(map[string][]string)
	for _, f := range funds {
		if f.PeerGroup == "" {
			continue
		}
		byName[f.PeerGroup] = append(byName[f.PeerGroup], f.ID)
	}

	groups := make([]PeerGroup, 0, len(byName))
	for name, ids := range byName {
		sort.Strings(ids)
		groups = append(groups, PeerGroup{Name: name, FundIDs: ids})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })

	return groups
}

// PeerBenchmarkMap maps peer group name → benchmark id
func PeerBenchmarkMap(benchmarks []BenchmarkMeta) map[string]string {
	out := make(map[string]string)
	for _, b := range benchmarks {
		if b.Kind == PeerBenchmark && b.PeerGroup != "" {
			out[b.PeerGroup] = b.ID
		}
	}
	return out
}

// MarketBenchmarkIDs returns the ids of all general market benchmarks, sorted
func MarketBenchmarkIDs(benchmarks []BenchmarkMeta) []string {
	ids := make([]string, 0, len(benchmarks))
	for _, b := range benchmarks {
		if b.Kind == MarketBenchmark {
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids
}
