package formulas

import (
	"math"

	"github.com/wonny/fundmetrics/internal/contracts"
)

// =============================================================================
// 기본 지표 (펀드 수익률 시계열 단독)
// =============================================================================
//
// 모든 함수는 순수 함수. 입력은 월간 수익률(소수), 결측치는 NaN.
// 퇴화 입력(관측치 부족, 분산 0)은 panic 하지 않고 undefined 센티널 반환.
// 연환산 규약: 수익률은 기하(geometric), 변동성은 σ·√(연간 기간수). 고정.

// omegaCap 손실이 0일 때 무한대 대신 반환하는 상한
// 랭킹 계산이 가능하도록 유한값 유지
const omegaCap = 1000.0

// AnnualizedReturn 연환산 수익률 (기하)
// prod(1+r)^(periodsPerYear/n) - 1, 유효 관측치 기준
// 전손(-100% 월 포함, 누적 0)은 -1. 누적이 음수면 기하 연환산 불가 = undefined
func AnnualizedReturn(returns []float64, periodsPerYear int) float64 {
	cum := 1.0
	n := 0
	for _, r := range returns {
		if contracts.IsDefined(r) {
			cum *= 1 + r
			n++
		}
	}
	if n == 0 || cum < 0 {
		return contracts.Undefined()
	}
	return math.Pow(cum, float64(periodsPerYear)/float64(n)) - 1
}

// Volatility 연환산 변동성 (표본 표준편차, ddof=1)
func Volatility(returns []float64, periodsPerYear int) float64 {
	valid := dropUndefined(returns)
	if len(valid) < 2 {
		return contracts.Undefined()
	}
	return sampleStdDev(valid) * math.Sqrt(float64(periodsPerYear))
}

// MaxDrawdown 최대 낙폭 (양수로 표현)
// 결측 구간은 수익률 0으로 취급하여 누적 곡선을 이어감
func MaxDrawdown(returns []float64) float64 {
	anyDefined := false
	cum := 1.0
	runningMax := 1.0
	maxDD := 0.0

	for _, r := range returns {
		if contracts.IsDefined(r) {
			anyDefined = true
			cum *= 1 + r
		}
		if cum > runningMax {
			runningMax = cum
		}
		dd := 1 - cum/runningMax
		if dd > maxDD {
			maxDD = dd
		}
	}

	if !anyDefined {
		return contracts.Undefined()
	}
	return maxDD
}

// WorstMonth 최악 월수익률
func WorstMonth(returns []float64) float64 {
	worst := contracts.Undefined()
	for _, r := range returns {
		if !contracts.IsDefined(r) {
			continue
		}
		if !contracts.IsDefined(worst) || r < worst {
			worst = r
		}
	}
	return worst
}

// OmegaRatio 오메가 비율: 임계값 대비 가중 이익 / 가중 손실
// 손실이 0이면 omegaCap 반환 (무한대 방지)
func OmegaRatio(returns []float64, threshold float64) float64 {
	gains := 0.0
	losses := 0.0
	n := 0

	for _, r := range returns {
		if !contracts.IsDefined(r) {
			continue
		}
		n++
		if r > threshold {
			gains += r - threshold
		} else {
			losses += threshold - r
		}
	}

	if n == 0 {
		return contracts.Undefined()
	}
	if losses == 0 {
		return omegaCap
	}
	return gains / losses
}

// SharpeRatio 샤프 비율 (연환산 초과수익률 / 연환산 변동성)
// riskFree 는 기간(월간) 무위험 수익률 스칼라
// 변동성이 0이거나 undefined 면 undefined. 분모 0은 값으로 표현하지 않음
func SharpeRatio(returns []float64, riskFree float64, periodsPerYear int) float64 {
	annReturn := AnnualizedReturn(returns, periodsPerYear)
	vol := Volatility(returns, periodsPerYear)

	if !contracts.IsDefined(annReturn) || !contracts.IsDefined(vol) || vol == 0 {
		return contracts.Undefined()
	}

	annRiskFree := math.Pow(1+riskFree, float64(periodsPerYear)) - 1
	return (annReturn - annRiskFree) / vol
}

// SharpeRatioSeries 샤프 비율, 무위험 수익률이 시계열로 주어지는 변형
// returns 와 riskFree 는 같은 달력에 정렬된 동일 길이 배열이어야 함
func SharpeRatioSeries(returns, riskFree []float64, periodsPerYear int) float64 {
	if len(returns) != len(riskFree) {
		return contracts.Undefined()
	}

	excess := make([]float64, len(returns))
	for i := range returns {
		if contracts.IsDefined(returns[i]) && contracts.IsDefined(riskFree[i]) {
			excess[i] = returns[i] - riskFree[i]
		} else {
			excess[i] = contracts.Undefined()
		}
	}

	annExcess := AnnualizedReturn(excess, periodsPerYear)
	vol := Volatility(excess, periodsPerYear)

	if !contracts.IsDefined(annExcess) || !contracts.IsDefined(vol) || vol == 0 {
		return contracts.Undefined()
	}
	return annExcess / vol
}

// =============================================================================
// 통계 유틸리티
// =============================================================================

// dropUndefined returns only the defined observations
func dropUndefined(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if contracts.IsDefined(v) {
			out = append(out, v)
		}
	}
	return out
}

// mean 평균 계산
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev 표본 표준편차 (ddof=1)
// 상수 시계열은 정확히 0. 평균의 부동소수점 오차가 분산에 섞이면
// "분산 0" 가드(샤프, 베타, 피어슨)가 깨지므로 먼저 검사함
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	constant := true
	for _, v := range values[1:] {
		if v != values[0] {
			constant = false
			break
		}
	}
	if constant {
		return 0
	}

	m := mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// sampleVariance 표본 분산 (ddof=1)
func sampleVariance(values []float64) float64 {
	s := sampleStdDev(values)
	return s * s
}
