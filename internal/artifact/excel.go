package artifact

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/wonny/fundmetrics/internal/contracts"
)

// =============================================================================
// Excel 내보내기
// =============================================================================
//
// 스프레드시트 기반 기존 워크플로우와의 호환용: 지표/랭크 테이블을
// 시트당 하나씩 담은 워크북을 쓴다. undefined 값은 빈 셀로 기록.

// ExportWorkbook writes metric and rank tables to one xlsx workbook.
// 시트명: "<Metric>_<Window>" / "Percentile_<Metric>_<Window>"
func (s *Store) ExportWorkbook(path string, metrics []*contracts.MetricTable, ranks []*contracts.RankTable) error {
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for _, t := range metrics {
		name := sheetName(fmt.Sprintf("%s_%s", t.Metric, t.Window.Label()))
		if err := writeSheet(f, name, first, t.Dates, t.IDs, t.Values); err != nil {
			return err
		}
		first = false
	}

	for _, t := range ranks {
		name := sheetName(fmt.Sprintf("Pct_%s_%s", t.Metric, t.Window.Label()))
		if err := writeSheet(f, name, first, t.Dates, t.IDs, t.Ranks); err != nil {
			return err
		}
		first = false
	}

	if first {
		return fmt.Errorf("no tables to export")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}

	s.logger.WithFields(map[string]interface{}{
		"path":   path,
		"sheets": len(metrics) + len(ranks),
	}).Info("Excel workbook exported")

	return nil
}

// writeSheet writes one table to one sheet
// first == true 면 기본 시트(Sheet1)의 이름을 바꿔서 사용
func writeSheet(f *excelize.File, name string, first bool, dates contracts.Calendar, ids []string, values map[string][]float64) error {
	if first {
		if err := f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header := make([]interface{}, 0, len(ids)+1)
	header = append(header, "Date")
	for _, id := range ids {
		header = append(header, id)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", name, err)
	}

	for i, d := range dates {
		row := make([]interface{}, 0, len(ids)+1)
		row = append(row, d.Format("2006-01-02"))
		for _, id := range ids {
			v := values[id][i]
			if contracts.IsDefined(v) {
				row = append(row, v)
			} else {
				row = append(row, nil) // undefined → 빈 셀
			}
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell coordinates of %s: %w", name, err)
		}
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("write row %d of %s: %w", i+2, name, err)
		}
	}

	return nil
}

// sheetName clips to the Excel sheet name limit (31 chars)
func sheetName(s string) string {
	if len(s) > 31 {
		return s[:31]
	}
	return s
}
