package extractor

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// buildPDF assembles a classic xref-table PDF with correct byte offsets.
func buildPDF(objects []string, trailerExtra string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R %s>>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, trailerExtra, xref)
	return buf.Bytes()
}

func zeroPagePDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	}, "")
}

func encryptedPDF() []byte {
	pad := strings.Repeat("A", 32)
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
		fmt.Sprintf("<< /Filter /Standard /V 1 /R 2 /O (%s) /U (%s) /P -4 >>", pad, pad),
	}, "/Encrypt 3 0 R /ID [<0123456789abcdef0123456789abcdef> <0123456789abcdef0123456789abcdef>] ")
}

func pdfStream(data string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(data), data)
}

const (
	helveticaFont = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"
	pageResources = "/MediaBox [0 0 612 792] /Resources << /Font << /F1 6 0 R >> >>"
)

// reportPDF has a text page followed by a page whose content stream
// references an object that does not exist.
func reportPDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>",
		"<< /Type /Page /Parent 2 0 R " + pageResources + " /Contents 4 0 R >>",
		pdfStream("BT /F1 12 Tf 72 712 Td (Quarterly revenue report) Tj ET"),
		"<< /Type /Page /Parent 2 0 R " + pageResources + " /Contents 9 0 R >>",
		helveticaFont,
	}, "")
}

func blankPagePDF() []byte {
	return buildPDF([]string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>",
	}, "")
}

func TestExtractPDFStructuredText(t *testing.T) {
	e := newTestExtractor()
	got := e.Extract(reportPDF(), domain.ContentTypePDF, "report.pdf")
	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
	if got.Strategy != "structured" {
		t.Fatalf("expected structured strategy, got %q", got.Strategy)
	}
	if !strings.Contains(got.Text, "Quarterly revenue report") {
		t.Fatalf("missing page text: %q", got.Text)
	}
}

func TestExtractPDFSkipsBrokenPage(t *testing.T) {
	e := newTestExtractor()
	out := e.extractPDFStructured(reportPDF())
	if !out.ok() || out.terminal {
		t.Fatalf("expected success despite the broken page, got %+v", out)
	}
	if strings.Count(out.text, "Quarterly revenue report") != 1 {
		t.Fatalf("unexpected text: %q", out.text)
	}
}

func TestExtractPDFWithoutText(t *testing.T) {
	e := newTestExtractor()
	got := e.Extract(blankPagePDF(), domain.ContentTypePDF, "scan.pdf")
	if got.Text != "" {
		t.Fatalf("expected no text, got %q", got.Text)
	}
	if got.Error != msgPDFNoText {
		t.Fatalf("unexpected error: %q", got.Error)
	}
	if got.Strategy != "structured" {
		t.Fatalf("expected the structured strategy to decide, got %q", got.Strategy)
	}
}

func TestExtractPDFWithoutPages(t *testing.T) {
	e := newTestExtractor()
	got := e.Extract(zeroPagePDF(), domain.ContentTypePDF, "empty.pdf")
	if got.Text != "" {
		t.Fatalf("expected no text, got %q", got.Text)
	}
	if got.Error != msgPDFNoPages {
		t.Fatalf("unexpected error: %q", got.Error)
	}
}

func TestExtractEncryptedPDF(t *testing.T) {
	e := newTestExtractor()
	got := e.Extract(encryptedPDF(), domain.ContentTypePDF, "locked.pdf")
	if got.Error != msgPDFEncrypted {
		t.Fatalf("unexpected error: %q", got.Error)
	}
}

func TestExtractPDFMissingHeader(t *testing.T) {
	e := newTestExtractor()
	got := e.Extract([]byte("this is plainly not a pdf document at all"), domain.ContentTypePDF, "fake.pdf")
	if got.Error != msgPDFNoHeader {
		t.Fatalf("unexpected error: %q", got.Error)
	}
}

func TestExtractPDFFallsBackToRawScrape(t *testing.T) {
	content := []byte("%PDF-1.4\n" + strings.Repeat("Quarterly revenue grew strongly. ", 8) + "\x00\x01\x02")
	e := newTestExtractor()
	got := e.Extract(content, domain.ContentTypePDF, "damaged.pdf")
	if got.Error != "" {
		t.Fatalf("unexpected error: %s", got.Error)
	}
	if got.Strategy != "raw-scrape" {
		t.Fatalf("expected raw-scrape strategy, got %q", got.Strategy)
	}
	if !strings.Contains(got.Text, "Quarterly revenue grew strongly.") {
		t.Fatalf("scraped text lost content: %q", got.Text)
	}
}

func TestRawScrapeRequiresEnoughText(t *testing.T) {
	e := newTestExtractor()
	out := e.scrapePDFText([]byte("%PDF-1.4\nshort run\x00\x01"))
	if out.ok() {
		t.Fatalf("expected short scrape to be rejected, got %q", out.text)
	}
	if out.reason != msgPDFCorrupted || !out.terminal {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestDecodeContentStreamTextOperators(t *testing.T) {
	stream := []byte("BT /F1 12 Tf 72 712 Td (Hello \\(world\\)) Tj T* [(Multi) -120 (ple)] TJ <4869> Tj ET\n" +
		"% comment (ignored) Tj\nBT (caf\\351) Tj ET")
	got := decodeContentStream(stream)
	want := "Hello (world)\nMultipleHi\ncafé"
	if got != want {
		t.Fatalf("unexpected text: got %q want %q", got, want)
	}
}

func TestDecodeContentStreamUTF16(t *testing.T) {
	got := decodeContentStream([]byte("BT <FEFF004F004B> Tj ET"))
	if got != "OK" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestDiagnosePDFZeroPages(t *testing.T) {
	e := newTestExtractor()
	diag := e.DiagnosePDF(zeroPagePDF(), "empty.pdf")
	if !diag.Checks.HasPDFHeader || diag.Checks.PDFVersion != "1.4" {
		t.Fatalf("unexpected header checks: %+v", diag.Checks)
	}
	if diag.Checks.Read != "success" {
		t.Fatalf("unexpected read result: %q", diag.Checks.Read)
	}
	if diag.Checks.PageCount == nil || *diag.Checks.PageCount != 0 {
		t.Fatalf("expected page_count 0, got %v", diag.Checks.PageCount)
	}
	if diag.Checks.IsEncrypted == nil || *diag.Checks.IsEncrypted {
		t.Fatalf("expected is_encrypted false, got %v", diag.Checks.IsEncrypted)
	}
	if diag.Checks.FirstPageHasText != nil {
		t.Fatalf("first page checks must be absent without pages")
	}
	if diag.FileSize != len(zeroPagePDF()) {
		t.Fatalf("unexpected file size %d", diag.FileSize)
	}
}

func TestDiagnosePDFNotAPDF(t *testing.T) {
	e := newTestExtractor()
	diag := e.DiagnosePDF([]byte("hello"), "notes.pdf")
	if diag.Checks.HasPDFHeader {
		t.Fatalf("expected missing header")
	}
	if diag.Checks.PDFVersion != "" {
		t.Fatalf("version must be empty without header, got %q", diag.Checks.PDFVersion)
	}
	if !strings.HasPrefix(diag.Checks.Read, "failed:") {
		t.Fatalf("unexpected read result: %q", diag.Checks.Read)
	}
	if diag.Checks.PageCount != nil {
		t.Fatalf("page count must be absent when the parser fails")
	}
}
