package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/cruzverde/attendance/internal/account"
	"github.com/cruzverde/attendance/internal/apperr"
)

var sample = []UserReport{
	{User: account.Owner{ID: "1", Name: "Ana Pérez", Email: "ana@example.com", Active: true}, AttendanceCount: 3, TotalMinutes: 150, TotalHours: "2.50"},
	{User: account.Owner{ID: "2", Name: "Luis, Jr.", Email: "luis@example.com", Active: false}, AttendanceCount: 1, TotalMinutes: 20, TotalHours: "0.33"},
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" XLSX ", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			if apperr.KindOf(err) != apperr.KindValidation {
				t.Errorf("ParseFormat(%q) err = %v", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatCSV, sample); err != nil {
		t.Fatalf("Export: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0][0] != "Name" || rows[0][4] != "Status" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][0] != "Luis, Jr." || rows[2][3] != "0.33" || rows[2][4] != "Inactive" {
		t.Fatalf("row = %v", rows[2])
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := Export(&buf, FormatXLSX, sample); err != nil {
		t.Fatalf("Export: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != "Ana Pérez" || rows[1][2] != "3" || rows[1][4] != "Active" {
		t.Fatalf("row = %v", rows[1])
	}
}

func TestFilename(t *testing.T) {
	if got := FormatXLSX.Filename("2025-03"); got != "attendance-report-2025-03.xlsx" {
		t.Fatalf("Filename = %q", got)
	}
	if got := FormatCSV.Filename(""); got != "attendance-report-all.csv" {
		t.Fatalf("Filename = %q", got)
	}
}
