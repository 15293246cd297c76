package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	pdfMagic      = []byte("%PDF-")
	encryptMarker = []byte("/Encrypt")
	printableRun  = regexp.MustCompile(`[a-zA-Z0-9 .,;:!?'"\-+=/\\()\[\]{}]{4,}`)
)

// pdfOutcome is the result of one recovery strategy. A terminal outcome
// ends the chain even without text; a non-terminal failure hands over to
// the next strategy.
type pdfOutcome struct {
	text     string
	reason   string
	terminal bool
}

func succeeded(text string) pdfOutcome { return pdfOutcome{text: text} }
func failed(reason string) pdfOutcome  { return pdfOutcome{reason: reason, terminal: true} }
func skipped(reason string) pdfOutcome { return pdfOutcome{reason: reason} }
func (o pdfOutcome) ok() bool          { return strings.TrimSpace(o.text) != "" }

type pdfStrategy struct {
	name string
	run  func(content []byte) pdfOutcome
}

// extractPDF walks the strategy chain: structured parse with per-page
// tolerance, then pdfcpu content streams, then a raw printable-byte scrape.
func (e *Extractor) extractPDF(content []byte, filename string) (text, reason, strategy string) {
	reason = msgPDFCorrupted
	for _, s := range e.pdfChain {
		out := s.run(content)
		if out.ok() {
			return out.text, "", s.name
		}
		if out.terminal {
			return "", out.reason, s.name
		}
		e.logger.Info("pdf_strategy_skipped",
			"filename", filename,
			"strategy", s.name,
			"reason", out.reason,
		)
	}
	return "", reason, ""
}

func (e *Extractor) extractPDFStructured(content []byte) (out pdfOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = skipped(fmt.Sprintf("structured parse panic: %v", r))
		}
	}()

	reader, err := openPDF(content)
	if err != nil {
		if isEncryptionError(err, content) {
			return failed(msgPDFEncrypted)
		}
		return skipped(fmt.Sprintf("structured parse: %v", err))
	}
	if isEncrypted(reader) {
		return failed(msgPDFEncrypted)
	}

	pages := reader.NumPage()
	if pages <= 0 {
		return failed(msgPDFNoPages)
	}

	var sb strings.Builder
	for n := 1; n <= pages; n++ {
		pageText, err := readPageText(reader, n)
		if err != nil {
			e.logger.Warn("pdf_page_extract_failed", "page", n, "pages", pages, "error", err)
			continue
		}
		if strings.TrimSpace(pageText) == "" {
			e.logger.Debug("pdf_page_empty", "page", n, "pages", pages)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteByte('\n')
	}

	if strings.TrimSpace(sb.String()) == "" {
		return failed(msgPDFNoText)
	}
	return succeeded(sb.String())
}

func (e *Extractor) extractPDFContentStreams(content []byte) (out pdfOutcome) {
	defer func() {
		if r := recover(); r != nil {
			out = skipped(fmt.Sprintf("content stream panic: %v", r))
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(content), conf)
	if err != nil {
		if bytes.Contains(content, encryptMarker) {
			return failed(msgPDFEncrypted)
		}
		return skipped(fmt.Sprintf("pdfcpu read: %v", err))
	}
	if ctx.PageCount <= 0 {
		return failed(msgPDFNoPages)
	}

	var sb strings.Builder
	for n := 1; n <= ctx.PageCount; n++ {
		r, err := pdfcpu.ExtractPageContent(ctx, n)
		if err != nil || r == nil {
			e.logger.Warn("pdf_content_stream_failed", "page", n, "error", err)
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			continue
		}
		if pageText := decodeContentStream(data); pageText != "" {
			sb.WriteString(pageText)
			sb.WriteByte('\n')
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return skipped("content streams held no text operators")
	}
	return succeeded(sb.String())
}

// scrapePDFText is the last resort for containers no parser accepts: keep
// printable ASCII runs if the bytes still look like a PDF.
func (e *Extractor) scrapePDFText(content []byte) pdfOutcome {
	if !bytes.HasPrefix(content, pdfMagic) {
		return failed(msgPDFNoHeader)
	}
	runs := printableRun.FindAll(content, -1)
	if len(runs) == 0 {
		return failed(msgPDFCorrupted)
	}
	text := string(bytes.Join(runs, []byte{'\n'}))
	if len(text) <= e.minScraped {
		return failed(msgPDFCorrupted)
	}
	e.logger.Info("pdf_raw_scrape_recovered", "runs", len(runs), "chars", len(text))
	return succeeded(text)
}

func openPDF(content []byte) (*pdf.Reader, error) {
	if len(content) == 0 {
		return nil, errors.New("empty file")
	}
	return pdf.NewReader(bytes.NewReader(content), int64(len(content)))
}

func isEncrypted(reader *pdf.Reader) bool {
	return !reader.Trailer().Key("Encrypt").IsNull()
}

func isEncryptionError(err error, content []byte) bool {
	return errors.Is(err, pdf.ErrInvalidPassword) || bytes.Contains(content, encryptMarker)
}

func readPageText(reader *pdf.Reader, n int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", n, r)
		}
	}()
	page := reader.Page(n)
	if page.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", n)
	}
	return page.GetPlainText(nil)
}
