package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"hacplanner/domain/core"
	"hacplanner/ports"
)

// RosterReader reads concern rosters from Excel or CSV files. A roster is a
// sheet with one concern token per row; the concern column is auto-detected
// from the header.
type RosterReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewRosterReader creates a reader that handles both Excel and CSV files.
func NewRosterReader(filePath string) *RosterReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &RosterReader{filePath: filePath, fileType: fileType}
}

// concernHeaders are the header names recognized as the concern column, in
// preference order.
var concernHeaders = []string{"concern", "hac", "metric", "metric_id", "condition"}

// ListConcerns reads the roster and returns normalized concern tokens.
// Duplicates and blank rows are dropped; order is preserved.
func (r *RosterReader) ListConcerns(_ context.Context) ([]string, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("roster file not found: %s", r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	default:
		rows, err = r.readExcelRows()
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("roster must have a header row and at least one data row")
	}

	col, err := detectConcernColumn(rows[0])
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var concerns []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		id, err := core.ParseConcernID(row[col])
		if err != nil {
			continue
		}
		token := id.String()
		if seen[token] {
			continue
		}
		seen[token] = true
		concerns = append(concerns, token)
	}
	if len(concerns) == 0 {
		return nil, fmt.Errorf("roster contains no usable concern tokens")
	}
	return concerns, nil
}

func (r *RosterReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (r *RosterReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

// detectConcernColumn finds the concern column by header name, falling back
// to the first column.
func detectConcernColumn(header []string) (int, error) {
	if len(header) == 0 {
		return 0, fmt.Errorf("roster header row is empty")
	}
	for _, want := range concernHeaders {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), want) {
				return i, nil
			}
		}
	}
	return 0, nil
}

var _ ports.ConcernRoster = (*RosterReader)(nil)
