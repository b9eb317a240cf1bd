package spreadsheet

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grievease/petition-triage/internal/core/classification"
	"github.com/grievease/petition-triage/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const keywordSeparator = ";"

var (
	catalogDepartmentHeader = []any{"id", "name", "description"}
	catalogCategoryHeader   = []any{"id", "department_id", "code", "name", "description", "keywords", "priority_weight", "active"}
)

// ExportCatalog writes departments and categories on two sheets. Keywords are ";"-joined.
func ExportCatalog(snapshot domain.CatalogSnapshot, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetDepartments); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(sheetCategories); err != nil {
		return fmt.Errorf("add categories sheet: %w", err)
	}

	depRows := make([][]any, 0, len(snapshot.Departments))
	for _, dep := range snapshot.Departments {
		depRows = append(depRows, []any{dep.ID, dep.Name, dep.Description})
	}
	if err := writeTable(f, sheetDepartments, catalogDepartmentHeader, depRows); err != nil {
		return err
	}

	catRows := make([][]any, 0, len(snapshot.Categories))
	for _, cat := range snapshot.Categories {
		catRows = append(catRows, []any{
			cat.ID, cat.DepartmentID, cat.Code, cat.Name, cat.Description,
			strings.Join(cat.Keywords, keywordSeparator+" "), cat.PriorityWeight, cat.Active,
		})
	}
	if err := writeTable(f, sheetCategories, catalogCategoryHeader, catRows); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetCategories, "F", "F", 60); err != nil {
		return fmt.Errorf("size keywords column: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write catalog workbook: %w", err)
	}
	return nil
}

// ImportCatalog reads a workbook produced by ExportCatalog (or edited by an operator).
// Blank rows are skipped; the result is validated like any other catalog snapshot.
func ImportCatalog(r io.Reader) (domain.CatalogSnapshot, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrInvalidInput, "open catalog workbook", err)
	}
	defer f.Close()

	depRows, err := f.GetRows(sheetDepartments)
	if err != nil {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrInvalidInput, "read departments sheet", err)
	}
	catRows, err := f.GetRows(sheetCategories)
	if err != nil {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrInvalidInput, "read categories sheet", err)
	}

	var snapshot domain.CatalogSnapshot
	var problems []error
	eachDataRow(depRows, func(n int, row []string) {
		dep, err := parseDepartment(row)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s row %d: %w", sheetDepartments, n, err))
			return
		}
		snapshot.Departments = append(snapshot.Departments, dep)
	})
	eachDataRow(catRows, func(n int, row []string) {
		cat, err := parseCategory(row)
		if err != nil {
			problems = append(problems, fmt.Errorf("%s row %d: %w", sheetCategories, n, err))
			return
		}
		snapshot.Categories = append(snapshot.Categories, cat)
	})
	if len(problems) > 0 {
		return domain.CatalogSnapshot{}, domain.WrapError(domain.ErrInvalidInput, "import catalog", errors.Join(problems...))
	}
	if _, err := classification.NewCatalog(snapshot.Departments, snapshot.Categories); err != nil {
		return domain.CatalogSnapshot{}, err
	}
	return snapshot, nil
}

// eachDataRow skips the header and blank rows. n is the 1-based sheet row number.
func eachDataRow(rows [][]string, fn func(n int, row []string)) {
	for i, row := range rows {
		if i == 0 || isBlank(row) {
			continue
		}
		fn(i+1, row)
	}
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func parseDepartment(row []string) (domain.Department, error) {
	id, err := strconv.ParseInt(cell(row, 0), 10, 64)
	if err != nil {
		return domain.Department{}, fmt.Errorf("id: %w", err)
	}
	name := cell(row, 1)
	if name == "" {
		return domain.Department{}, errors.New("name is required")
	}
	return domain.Department{ID: id, Name: name, Description: cell(row, 2)}, nil
}

func parseCategory(row []string) (domain.Category, error) {
	id, err := strconv.ParseInt(cell(row, 0), 10, 64)
	if err != nil {
		return domain.Category{}, fmt.Errorf("id: %w", err)
	}
	deptID, err := strconv.ParseInt(cell(row, 1), 10, 64)
	if err != nil {
		return domain.Category{}, fmt.Errorf("department_id: %w", err)
	}
	cat := domain.Category{
		ID:             id,
		DepartmentID:   deptID,
		Code:           cell(row, 2),
		Name:           cell(row, 3),
		Description:    cell(row, 4),
		PriorityWeight: 1,
		Active:         true,
	}
	if cat.Name == "" || cat.Code == "" {
		return domain.Category{}, errors.New("name and code are required")
	}
	for _, kw := range strings.Split(cell(row, 5), keywordSeparator) {
		if kw = strings.TrimSpace(kw); kw != "" {
			cat.Keywords = append(cat.Keywords, kw)
		}
	}
	if raw := cell(row, 6); raw != "" {
		if cat.PriorityWeight, err = strconv.Atoi(raw); err != nil {
			return domain.Category{}, fmt.Errorf("priority_weight: %w", err)
		}
	}
	if raw := cell(row, 7); raw != "" {
		if cat.Active, err = strconv.ParseBool(strings.ToLower(raw)); err != nil {
			return domain.Category{}, fmt.Errorf("active: %w", err)
		}
	}
	return cat, nil
}
