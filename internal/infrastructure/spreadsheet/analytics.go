// Package spreadsheet reads and writes xlsx workbooks for analytics exports and catalog exchange.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	sheetUrgency     = "Urgency"
	sheetDepartments = "Departments"
	sheetCategories  = "Categories"
)

var (
	urgencyHeader    = []any{"Urgency", "Petitions", "Share"}
	departmentHeader = []any{"Department ID", "Department", "Total", "Resolved", "Pending", "Resolution rate"}
)

// Renderer writes analytics reports as xlsx workbooks.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (Renderer) RenderAnalytics(report domain.AnalyticsReport, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetUrgency); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetDepartments); err != nil {
		return fmt.Errorf("add departments sheet: %w", err)
	}
	percent, err := f.NewStyle(&excelize.Style{NumFmt: 10})
	if err != nil {
		return fmt.Errorf("percent style: %w", err)
	}

	total := 0
	for _, row := range report.Urgency {
		total += row.Count
	}
	urgencyRows := make([][]any, 0, len(report.Urgency))
	for _, row := range report.Urgency {
		urgencyRows = append(urgencyRows, []any{string(row.Urgency), row.Count, ratio(row.Count, total)})
	}
	if err := writeTable(f, sheetUrgency, urgencyHeader, urgencyRows); err != nil {
		return err
	}
	if err := styleColumn(f, sheetUrgency, "C", len(urgencyRows), percent); err != nil {
		return err
	}

	deptRows := make([][]any, 0, len(report.Departments))
	for _, stat := range report.Departments {
		deptRows = append(deptRows, []any{
			stat.DepartmentID, stat.Department, stat.Total, stat.Resolved, stat.Pending, ratio(stat.Resolved, stat.Total),
		})
	}
	if err := writeTable(f, sheetDepartments, departmentHeader, deptRows); err != nil {
		return err
	}
	if err := styleColumn(f, sheetDepartments, "F", len(deptRows), percent); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write analytics workbook: %w", err)
	}
	return nil
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func styleColumn(f *excelize.File, sheet, column string, rows, style int) error {
	if rows == 0 {
		return nil
	}
	if err := f.SetCellStyle(sheet, column+"2", fmt.Sprintf("%s%d", column, rows+1), style); err != nil {
		return fmt.Errorf("style %s column %s: %w", sheet, column, err)
	}
	return nil
}
