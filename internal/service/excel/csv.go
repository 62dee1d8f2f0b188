package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"economat/internal/model"
	"economat/internal/parser"
	"economat/internal/util"
)

// WritePilotageCSV 导出盈利分析表为 CSV（UTF-8 带 BOM，Excel 可直接打开）
func WritePilotageCSV(w io.Writer, rows []model.PilotageRow) error {
	if _, err := w.Write([]byte("\xEF\xBB\xBF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(PilotageHeaders); err != nil {
		return err
	}
	for _, r := range rows {
		rec := PilotageRecord(r)
		out := make([]string, len(rec))
		for i, v := range rec {
			switch x := v.(type) {
			case float64:
				out[i] = util.FormatFloat(x, 4)
			default:
				out[i] = fmt.Sprint(x)
			}
		}
		if err := cw.Write(out); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSVTable 读取 CSV 为原始表
// 支持 UTF-8（可带 BOM）与 Windows-1252；分隔符按首行自动判断（; 或 ,）
func ReadCSVTable(name string, r io.Reader) (*parser.Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	raw = bytes.TrimPrefix(raw, []byte("\xEF\xBB\xBF"))

	var text io.Reader = bytes.NewReader(raw)
	if !utf8.Valid(raw) {
		text = transform.NewReader(bytes.NewReader(raw), charmap.Windows1252.NewDecoder())
	}

	cr := csv.NewReader(text)
	cr.Comma = detectDelimiter(raw)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}
	return parser.NewTable(name, records), nil
}

func detectDelimiter(raw []byte) rune {
	firstLine := string(raw)
	if i := strings.IndexByte(firstLine, '\n'); i >= 0 {
		firstLine = firstLine[:i]
	}
	best, bestCount := ',', strings.Count(firstLine, ",")
	for _, d := range []rune{';', '\t'} {
		if n := strings.Count(firstLine, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
