package extractor

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX flattens every sheet into tab separated rows, one line per
// row, with the sheet name as a header line.
func (e *Extractor) extractXLSX(content []byte) (string, string) {
	book, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		e.logger.Warn("xlsx_read_failed", "error", err)
		return "", fmt.Sprintf("Invalid or corrupted XLSX file: %v", err)
	}
	defer book.Close()

	var sb strings.Builder
	for _, sheet := range book.GetSheetList() {
		rows, err := book.GetRows(sheet)
		if err != nil {
			e.logger.Warn("xlsx_sheet_failed", "sheet", sheet, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		sb.WriteString(sheet)
		sb.WriteByte('\n')
		for _, row := range rows {
			line := strings.Join(row, "\t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	if strings.TrimSpace(sb.String()) == "" {
		return "", msgXLSXNoText
	}
	return sb.String(), ""
}
