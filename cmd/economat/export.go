package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"economat/internal/config"
	"economat/internal/service/calculator"
	"economat/internal/service/excel"
)

// runExport 批处理模式：加载工作簿、计算、导出
func runExport(cfg *config.AppConfig, workbookPath, output string) error {
	if workbookPath == "" {
		return errors.New("no workbook: use -file or [data] workbook_path")
	}

	wb, _, err := excel.NewLoader(cfg.ColumnConfig()).LoadFile(workbookPath)
	if err != nil {
		return err
	}
	report := calculator.Run(wb)

	switch strings.ToLower(filepath.Ext(output)) {
	case ".csv":
		out, err := os.Create(output)
		if err != nil {
			return err
		}
		if err := excel.WritePilotageCSV(out, report.Pilotage); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	case ".xlsx":
		f, err := excel.NewExporter().Export(report)
		if err != nil {
			return err
		}
		defer f.Close()
		return excel.SaveAs(f, output)
	default:
		return fmt.Errorf("unsupported export format: %s", output)
	}
}
