package formulas

import (
	"math"

	"github.com/wonny/fundmetrics/internal/contracts"
)

// =============================================================================
// 벤치마크 fit 지표 (펀드 vs 벤치마크, 날짜 정렬된 동일 길이 배열)
// =============================================================================
//
// 모든 함수는 쌍 단위로 결측치를 제거(pairwise deletion)한 뒤 계산하며,
// 유효 쌍이 2개 미만이면 undefined 반환.

// TrackingError 트래킹 에러 (액티브 수익률의 연환산 표준편차)
func TrackingError(returns, benchmark []float64, periodsPerYear int) float64 {
	if len(returns) != len(benchmark) {
		return contracts.Undefined()
	}

	active := make([]float64, 0, len(returns))
	for i := range returns {
		if contracts.IsDefined(returns[i]) && contracts.IsDefined(benchmark[i]) {
			active = append(active, returns[i]-benchmark[i])
		}
	}

	if len(active) < 2 {
		return contracts.Undefined()
	}
	return sampleStdDev(active) * math.Sqrt(float64(periodsPerYear))
}

// Beta 베타 계수: cov(fund, benchmark) / var(benchmark)
// 벤치마크 분산이 0이면 undefined
func Beta(returns, benchmark []float64) float64 {
	fund, bench := pairwiseValid(returns, benchmark)
	if len(fund) < 2 {
		return contracts.Undefined()
	}

	cov := sampleCovariance(fund, bench)
	variance := sampleVariance(bench)
	if variance == 0 {
		return contracts.Undefined()
	}
	return cov / variance
}

// RSquared 결정계수 (상관계수의 제곱, [0,1])
func RSquared(returns, benchmark []float64) float64 {
	corr := Correlation(returns, benchmark)
	if !contracts.IsDefined(corr) {
		return contracts.Undefined()
	}
	return corr * corr
}

// Correlation 피어슨 상관계수 ([-1,1])
// 어느 한쪽의 분산이 0이면 undefined
func Correlation(returns, benchmark []float64) float64 {
	fund, bench := pairwiseValid(returns, benchmark)
	return pearson(fund, bench)
}

// UpCorrelation 벤치마크 상승 구간(> 0)으로 제한한 상관계수
func UpCorrelation(returns, benchmark []float64) float64 {
	fund, bench := pairwiseValidWhere(returns, benchmark, func(b float64) bool { return b > 0 })
	return pearson(fund, bench)
}

// DownCorrelation 벤치마크 하락 구간(< 0)으로 제한한 상관계수
func DownCorrelation(returns, benchmark []float64) float64 {
	fund, bench := pairwiseValidWhere(returns, benchmark, func(b float64) bool { return b < 0 })
	return pearson(fund, bench)
}

// pairwiseValid drops observations where either side is undefined
func pairwiseValid(a, b []float64) ([]float64, []float64) {
	return pairwiseValidWhere(a, b, func(float64) bool { return true })
}

// pairwiseValidWhere additionally filters on the benchmark value
func pairwiseValidWhere(a, b []float64, keep func(bench float64) bool) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	outA := make([]float64, 0, n)
	outB := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if contracts.IsDefined(a[i]) && contracts.IsDefined(b[i]) && keep(b[i]) {
			outA = append(outA, a[i])
			outB = append(outB, b[i])
		}
	}
	return outA, outB
}

// sampleCovariance 표본 공분산 (ddof=1), 동일 길이 가정
func sampleCovariance(a, b []float64) float64 {
	if len(a) < 2 {
		return 0
	}
	meanA := mean(a)
	meanB := mean(b)

	var sum float64
	for i := range a {
		sum += (a[i] - meanA) * (b[i] - meanB)
	}
	return sum / float64(len(a)-1)
}

// pearson 피어슨 상관계수, 유효 쌍 < 2 또는 분산 0이면 undefined
// 부동소수점 오차로 [-1,1]을 벗어나지 않도록 클램프
func pearson(a, b []float64) float64 {
	if len(a) < 2 {
		return contracts.Undefined()
	}

	stdA := sampleStdDev(a)
	stdB := sampleStdDev(b)
	if stdA == 0 || stdB == 0 {
		return contracts.Undefined()
	}

	corr := sampleCovariance(a, b) / (stdA * stdB)
	if corr > 1 {
		corr = 1
	}
	if corr < -1 {
		corr = -1
	}
	return corr
}
