package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cruzverde/attendance/internal/apperr"
)

// Format is a downloadable report encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const sheetName = "Report"

var exportHeader = []string{"Name", "Email", "Attendances", "Total Hours", "Status"}

// ParseFormat accepts csv or xlsx, defaulting to csv when empty.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", apperr.Validation("format must be csv or xlsx")
	}
}

// ContentType returns the MIME type of the encoding.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename names an export; label identifies the period, e.g. "2025-03".
func (f Format) Filename(label string) string {
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("attendance-report-%s.%s", label, f)
}

// Export writes reports to w in format f.
func Export(w io.Writer, f Format, reports []UserReport) error {
	switch f {
	case FormatXLSX:
		return WriteXLSX(w, reports)
	case FormatCSV:
		return WriteCSV(w, reports)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

func exportRow(r UserReport) []string {
	status := "Inactive"
	if r.User.Active {
		status = "Active"
	}
	return []string{r.User.Name, r.User.Email, strconv.Itoa(r.AttendanceCount), r.TotalHours, status}
}

// WriteCSV writes a header row followed by one row per report.
func WriteCSV(w io.Writer, reports []UserReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, r := range reports {
		if err := cw.Write(exportRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with a styled header.
func WriteXLSX(w io.Writer, reports []UserReport) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	widths := []float64{28, 32, 14, 14, 12}
	for i, width := range widths {
		col := colName(i)
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return err
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#2E7D32"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}

	for i, title := range exportHeader {
		if err := f.SetCellValue(sheetName, cell(i, 1), title); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheetName, cell(0, 1), cell(len(exportHeader)-1, 1), headerStyle); err != nil {
		return err
	}

	for n, r := range reports {
		row := n + 2
		hours, _ := strconv.ParseFloat(r.TotalHours, 64)
		values := []any{r.User.Name, r.User.Email, r.AttendanceCount, hours, exportRow(r)[4]}
		for i, v := range values {
			if err := f.SetCellValue(sheetName, cell(i, row), v); err != nil {
				return err
			}
		}
	}

	return f.Write(w)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}
