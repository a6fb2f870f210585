package contracts

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Undefined 미정의값 센티널 반환 (quiet NaN)
// ⭐ SSOT: "계산 불가"는 반드시 이 값으로만 표현
func Undefined() float64 {
	return math.NaN()
}

// IsDefined 값이 유효한 계산 결과인지 확인
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}

// Calendar represents the shared observation calendar of one run
// 정렬 + 중복 제거된 월말 날짜 목록. 모든 시계열이 이 달력을 공유함
type Calendar []time.Time

// NewCalendar creates a sorted, deduplicated calendar
func NewCalendar(dates []time.Time) Calendar {
	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		normalized = append(normalized, normalize(d))
	}

	sort.Slice(normalized, func(i, j int) bool {
		return normalized[i].Before(normalized[j])
	})

	// 중복 제거
	out := normalized[:0]
	for i, d := range normalized {
		if i == 0 || !d.Equal(normalized[i-1]) {
			out = append(out, d)
		}
	}

	return Calendar(out)
}

// normalize truncates a date to UTC midnight
func normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// Index returns the position of a date, or -1 if not present
func (c Calendar) Index(d time.Time) int {
	d = normalize(d)
	i := sort.Search(len(c), func(i int) bool { return !c[i].Before(d) })
	if i < len(c) && c[i].Equal(d) {
		return i
	}
	return -1
}

// Intersect returns the dates present in both calendars, in order
func (c Calendar) Intersect(other Calendar) Calendar {
	out := make(Calendar, 0, len(c))
	for _, d := range c {
		if other.Index(d) >= 0 {
			out = append(out, d)
		}
	}
	return out
}

// Equal reports whether both calendars contain the same dates
func (c Calendar) Equal(other Calendar) bool {
	if len(c) != len(other) {
		return false
	}
	for i := range c {
		if !c[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// ReturnTable holds aligned return series on a shared calendar
// ⭐ SSOT: 수익률 입력 데이터는 이 구조체로만 전달 (로드 후 불변)
// 결측 관측치는 NaN. 보간은 어디에서도 하지 않음
type ReturnTable struct {
	Dates   Calendar
	IDs     []string
	Columns map[string][]float64
}

// NewReturnTable validates column shapes and builds a table
func NewReturnTable(dates Calendar, columns map[string][]float64) (*ReturnTable, error) {
	ids := make([]string, 0, len(columns))
	for id, col := range columns {
		if len(col) != len(dates) {
			return nil, fmt.Errorf("series %s: %d observations, calendar has %d dates", id, len(col), len(dates))
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &ReturnTable{
		Dates:   dates,
		IDs:     ids,
		Columns: columns,
	}, nil
}

// Series returns one return series by id
func (t *ReturnTable) Series(id string) ([]float64, bool) {
	col, ok := t.Columns[id]
	return col, ok
}

// Len returns the number of observation dates
func (t *ReturnTable) Len() int {
	return len(t.Dates)
}

// Select returns a new table restricted to the given ids (missing ids are skipped)
func (t *ReturnTable) Select(ids []string) *ReturnTable {
	columns := make(map[string][]float64, len(ids))
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		if col, ok := t.Columns[id]; ok {
			columns[id] = col
			kept = append(kept, id)
		}
	}
	sort.Strings(kept)

	return &ReturnTable{Dates: t.Dates, IDs: kept, Columns: columns}
}

// Restrict returns a new table containing only the given calendar dates.
// 달력에 없는 날짜는 무시됨
func (t *ReturnTable) Restrict(cal Calendar) *ReturnTable {
	shared := t.Dates.Intersect(cal)

	columns := make(map[string][]float64, len(t.Columns))
	for id, col := range t.Columns {
		out := make([]float64, len(shared))
		for i, d := range shared {
			out[i] = col[t.Dates.Index(d)]
		}
		columns[id] = out
	}

	ids := make([]string, len(t.IDs))
	copy(ids, t.IDs)

	return &ReturnTable{Dates: shared, IDs: ids, Columns: columns}
}

// AlignTables intersects two tables on their shared calendar
// ⭐ 날짜 정렬(intersection)은 여기서만 수행. 이후 모든 계산은 동일 달력 가정
func AlignTables(a, b *ReturnTable) (*ReturnTable, *ReturnTable, error) {
	shared := a.Dates.Intersect(b.Dates)
	if len(shared) == 0 {
		return nil, nil, fmt.Errorf("no overlapping dates between tables (%d vs %d observations)", a.Len(), b.Len())
	}
	return a.Restrict(shared), b.Restrict(shared), nil
}
