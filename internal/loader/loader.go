package loader

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/fundmetrics/internal/contracts"
	"github.com/wonny/fundmetrics/pkg/logger"
)

// 입력 워크북 시트 이름 (고정 규약)
const (
	SheetReturns  = "Returns"
	SheetMetadata = "Metadata"
)

// dateLayouts 허용하는 날짜 표기 (월간 데이터)
var dateLayouts = []string{
	"2006-01-02",
	"2006-01",
	"02.01.2006",
	"01/2006",
	"2006/01/02",
}

// Loader reads fund/benchmark workbooks into typed return tables
// ⭐ SSOT: 파일 I/O는 이 패키지에서만. 코어는 파일을 절대 만지지 않음
//
// Returns 시트 규약: 1행 = 헤더 ("Date", 시리즈 id...), 이후 행 = 날짜 + 수익률.
// 빈 셀 = 결측치(NaN). 보간 없음.
type Loader struct {
	logger *logger.Logger
}

// New creates a workbook loader
func New(log *logger.Logger) *Loader {
	return &Loader{logger: log}
}

// LoadReturns reads the return series table from a workbook
func (l *Loader) LoadReturns(path string) (*contracts.ReturnTable, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetReturns)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", SheetReturns, path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: sheet %s has no data rows", path, SheetReturns)
	}

	header := rows[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("%s: header must contain a date column and at least one series", path)
	}
	ids := header[1:]

	dates := make([]time.Time, 0, len(rows)-1)
	raw := make(map[string][]float64, len(ids))
	for _, id := range ids {
		raw[id] = make([]float64, 0, len(rows)-1)
	}

	for rowIdx, row := range rows[1:] {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		date, err := parseDate(row[0])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", path, rowIdx+2, err)
		}
		dates = append(dates, date)

		for colIdx, id := range ids {
			cell := ""
			if colIdx+1 < len(row) {
				cell = strings.TrimSpace(row[colIdx+1])
			}
			raw[id] = append(raw[id], parseReturn(cell))
		}
	}

	if len(dates) == 0 {
		return nil, fmt.Errorf("%s: sheet %s contains no observations", path, SheetReturns)
	}

	// 달력 정렬/중복 제거 후 원본 행을 재배치
	cal := contracts.NewCalendar(dates)
	columns := make(map[string][]float64, len(ids))
	for _, id := range ids {
		col := make([]float64, len(cal))
		for i := range col {
			col[i] = contracts.Undefined()
		}
		columns[id] = col
	}
	for i, d := range dates {
		idx := cal.Index(d)
		for _, id := range ids {
			columns[id][idx] = raw[id][i]
		}
	}

	table, err := contracts.NewReturnTable(cal, columns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	l.logger.WithFields(map[string]interface{}{
		"path":   path,
		"series": len(table.IDs),
		"dates":  table.Len(),
	}).Info("Return table loaded")

	return table, nil
}

// LoadFundMeta reads fund metadata: ID | Name | ISIN | PeerGroup
func (l *Loader) LoadFundMeta(path string) ([]contracts.FundMeta, error) {
	rows, err := metadataRows(path)
	if err != nil {
		return nil, err
	}

	funds := make([]contracts.FundMeta, 0, len(rows))
	for _, row := range rows {
		if len(row) < 4 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		funds = append(funds, contracts.FundMeta{
			ID:        strings.TrimSpace(row[0]),
			Name:      strings.TrimSpace(row[1]),
			ISIN:      strings.TrimSpace(row[2]),
			PeerGroup: strings.TrimSpace(row[3]),
		})
	}

	if len(funds) == 0 {
		return nil, fmt.Errorf("%s: sheet %s contains no fund metadata", path, SheetMetadata)
	}
	return funds, nil
}

// LoadBenchmarkMeta reads benchmark metadata: ID | Name | Kind | PeerGroup
// Kind: "peer" (피어그룹 벤치마크) | "market" (일반 시장 벤치마크)
func (l *Loader) LoadBenchmarkMeta(path string) ([]contracts.BenchmarkMeta, error) {
	rows, err := metadataRows(path)
	if err != nil {
		return nil, err
	}

	benchmarks := make([]contracts.BenchmarkMeta, 0, len(rows))
	for rowIdx, row := range rows {
		if len(row) < 3 || strings.TrimSpace(row[0]) == "" {
			continue
		}

		kind := contracts.BenchmarkKind(strings.ToLower(strings.TrimSpace(row[2])))
		if kind != contracts.PeerBenchmark && kind != contracts.MarketBenchmark {
			return nil, fmt.Errorf("%s row %d: unknown benchmark kind %q", path, rowIdx+2, row[2])
		}

		meta := contracts.BenchmarkMeta{
			ID:   strings.TrimSpace(row[0]),
			Name: strings.TrimSpace(row[1]),
			Kind: kind,
		}
		if len(row) > 3 {
			meta.PeerGroup = strings.TrimSpace(row[3])
		}
		benchmarks = append(benchmarks, meta)
	}

	if len(benchmarks) == 0 {
		return nil, fmt.Errorf("%s: sheet %s contains no benchmark metadata", path, SheetMetadata)
	}
	return benchmarks, nil
}

// metadataRows reads the metadata sheet minus its header row
func metadataRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetMetadata)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s of %s: %w", SheetMetadata, path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s: sheet %s has no data rows", path, SheetMetadata)
	}
	return rows[1:], nil
}

// parseDate tries the allowed date layouts
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// parseReturn parses one return cell; empty or invalid = 결측치
func parseReturn(cell string) float64 {
	if cell == "" {
		return contracts.Undefined()
	}
	// 독일식 소수점 표기 허용
	cell = strings.ReplaceAll(cell, ",", ".")
	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return contracts.Undefined()
	}
	return v
}
