package extractor

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const docxBody = "word/document.xml"

func (e *Extractor) extractDOCX(content []byte) (string, string) {
	text, err := readDOCX(content)
	if err != nil {
		e.logger.Warn("docx_read_failed", "error", err)
		return "", fmt.Sprintf("Invalid or corrupted DOCX file: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", msgDOCXNoText
	}
	return text, ""
}

// readDOCX returns every body paragraph followed by a newline, then the
// text of all top-level tables: cells end with a space, rows with a newline.
func readDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open container: %w", err)
	}

	var body *zip.File
	for _, f := range zr.File {
		if f.Name == docxBody {
			body = f
			break
		}
	}
	if body == nil {
		return "", fmt.Errorf("%s not found in archive", docxBody)
	}

	rc, err := body.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", docxBody, err)
	}
	defer rc.Close()

	var (
		out       strings.Builder
		tables    strings.Builder
		para      strings.Builder
		cellParas []string
		tblDepth  int
		inRun     bool
		inText    bool
	)

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse %s: %w", docxBody, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tblDepth++
			case "tc":
				if tblDepth == 1 {
					cellParas = cellParas[:0]
				}
			case "p":
				para.Reset()
			case "r":
				inRun = true
			case "t":
				inText = inRun
			case "tab":
				if inRun {
					para.WriteByte('\t')
				}
			case "br", "cr":
				if inRun {
					para.WriteByte('\n')
				}
			}

		case xml.CharData:
			if inText {
				para.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "r":
				inRun = false
			case "p":
				if tblDepth == 0 {
					out.WriteString(para.String())
					out.WriteByte('\n')
				} else {
					cellParas = append(cellParas, para.String())
				}
				para.Reset()
			case "tc":
				if tblDepth == 1 {
					tables.WriteString(strings.Join(cellParas, "\n"))
					tables.WriteByte(' ')
				}
			case "tr":
				if tblDepth == 1 {
					tables.WriteByte('\n')
				}
			case "tbl":
				tblDepth--
			}
		}
	}

	out.WriteString(tables.String())
	return out.String(), nil
}
