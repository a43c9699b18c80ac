// Package export renders a module collection and its workflow log as xlsx.
package export

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/garyjia/asset-console/internal/application/port"
	"github.com/garyjia/asset-console/internal/domain/entity"
)

const (
	RecordsSheet  = "Records"
	WorkflowSheet = "Workflow"
)

const headerWidth = 18

var workflowHeaders = []string{"Record ID", "Step", "Resulting Status", "Actor", "Date", "Comment"}

// Workbook builds the export of one module. Record columns are the record's
// JSON fields with id first; the workflow log goes to its own sheet.
func Workbook(code string, repo port.RecordRepository, now time.Time) (*excelize.File, string, error) {
	rows, columns, err := flatten(repo.List())
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	if err := fill(f, repo, rows, columns); err != nil {
		_ = f.Close()
		return nil, "", err
	}

	filename := fmt.Sprintf("%s_%s.xlsx", code, now.Format(entity.DateLayout))
	return f, filename, nil
}

func fill(f *excelize.File, repo port.RecordRepository, rows []map[string]interface{}, columns []string) error {
	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(WorkflowSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := writeRow(f, RecordsSheet, 1, toCells(columns)); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(columns))
		for j, col := range columns {
			cells[j] = row[col]
		}
		if err := writeRow(f, RecordsSheet, i+2, cells); err != nil {
			return err
		}
	}
	if err := styleHeader(f, RecordsSheet, len(columns), header); err != nil {
		return err
	}

	if err := writeRow(f, WorkflowSheet, 1, toCells(workflowHeaders)); err != nil {
		return err
	}
	n := 2
	for _, st := range repo.States() {
		for _, e := range st.Workflow {
			if err := writeRow(f, WorkflowSheet, n, []interface{}{st.ID, e.Step, e.ResultingStatus, e.Actor, e.Date, e.Comment}); err != nil {
				return err
			}
			n++
		}
	}
	return styleHeader(f, WorkflowSheet, len(workflowHeaders), header)
}

// flatten turns records into column maps. Nested values stay JSON text.
func flatten(records []any) ([]map[string]interface{}, []string, error) {
	rows := make([]map[string]interface{}, 0, len(records))
	seen := map[string]bool{}
	for _, r := range records {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, nil, fmt.Errorf("encode record: %w", err)
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, nil, fmt.Errorf("decode record: %w", err)
		}

		row := make(map[string]interface{}, len(fields))
		for k, v := range fields {
			if k == "workflow" {
				continue
			}
			seen[k] = true
			row[k] = cellValue(v)
		}
		rows = append(rows, row)
	}

	columns := make([]string, 0, len(seen))
	for k := range seen {
		if k != "id" {
			columns = append(columns, k)
		}
	}
	sort.Strings(columns)
	if seen["id"] || len(records) == 0 {
		columns = append([]string{"id"}, columns...)
	}
	return rows, columns, nil
}

func cellValue(v json.RawMessage) interface{} {
	var scalar interface{}
	if err := json.Unmarshal(v, &scalar); err != nil {
		return string(v)
	}
	switch scalar.(type) {
	case map[string]interface{}, []interface{}:
		return string(v)
	default:
		return scalar
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, cols, style int) error {
	if cols == 0 {
		return nil
	}
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last+"1", style); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", last, headerWidth); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
