package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"economat/internal/config"
	"economat/internal/service/excel"
)

func writeSample(t *testing.T) string {
	t.Helper()
	f, err := excel.SampleWorkbook()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	path := filepath.Join(t.TempDir(), excel.SampleFileName)
	if err := excel.SaveAs(f, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunExport(t *testing.T) {
	cfg := config.DefaultConfig()
	src := writeSample(t)
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "tableau_pilotage.xlsx")
	if err := runExport(cfg, src, xlsxPath); err != nil {
		t.Fatalf("xlsx export failed: %v", err)
	}
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows(excel.SheetPilotage)
	if err != nil || len(rows) != 4 {
		t.Fatalf("unexpected pilotage rows: %d %v", len(rows), err)
	}

	csvPath := filepath.Join(dir, "tableau_pilotage.csv")
	if err := runExport(cfg, src, csvPath); err != nil {
		t.Fatalf("csv export failed: %v", err)
	}
	data, err := os.ReadFile(csvPath)
	if err != nil || !strings.Contains(string(data), "Tajine poulet") {
		t.Fatalf("unexpected csv: %v", err)
	}
}

func TestRunExportErrors(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := runExport(cfg, "", "out.xlsx"); err == nil {
		t.Fatalf("missing workbook should fail")
	}
	if err := runExport(cfg, writeSample(t), filepath.Join(t.TempDir(), "out.pdf")); err == nil {
		t.Fatalf("unsupported format should fail")
	}
}
