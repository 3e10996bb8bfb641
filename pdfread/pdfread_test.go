package pdfread_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/jung-kurt/gofpdf"

	"github.com/helioprint/offerdoc/pdfread"
)

// buildPDF creates a simple PDF with one page per text using gofpdf.
func buildPDF(t *testing.T, texts ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range texts {
		pdf.AddPage()
		pdf.Text(10, 20, text)
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating test PDF: %v", err)
	}
	return buf.Bytes()
}

func TestParseRoundTrip(t *testing.T) {
	data := buildPDF(t, "First", "Second", "Third")

	doc, err := pdfread.Parse(data)
	if err != nil {
		t.Fatalf("parsing PDF: %v", err)
	}
	if doc.NumPages() != 3 {
		t.Errorf("NumPages = %d, want 3", doc.NumPages())
	}
	if doc.Version == "" {
		t.Error("expected a version from the %PDF- header")
	}
	if doc.Encrypted() {
		t.Error("plain PDF reported as encrypted")
	}
}

func TestReadFrom(t *testing.T) {
	data := buildPDF(t, "only page")
	doc, err := pdfread.ReadFrom(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if doc.NumPages() != 1 {
		t.Errorf("NumPages = %d, want 1", doc.NumPages())
	}
}

func TestManyPages(t *testing.T) {
	texts := make([]string, 12)
	for i := range texts {
		texts[i] = fmt.Sprintf("Page %d", i+1)
	}
	doc, err := pdfread.Parse(buildPDF(t, texts...))
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if doc.NumPages() != 12 {
		t.Errorf("NumPages = %d, want 12", doc.NumPages())
	}
}

func TestGarbageInput(t *testing.T) {
	if _, err := pdfread.Parse([]byte("not a pdf at all")); err == nil {
		t.Error("expected an error for non-PDF input")
	}
	if _, err := pdfread.Parse(nil); err == nil {
		t.Error("expected an error for empty input")
	}
}

func TestInfoMetadata(t *testing.T) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Inverter Datasheet", false)
	pdf.SetAuthor("Helioprint", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPage()
	pdf.Text(10, 20, "specs")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("generating: %v", err)
	}

	doc, err := pdfread.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	info := doc.Info()
	if info["Title"] != "Inverter Datasheet" {
		t.Errorf("Title = %q, want 'Inverter Datasheet'", info["Title"])
	}
	if info["Author"] != "Helioprint" {
		t.Errorf("Author = %q, want 'Helioprint'", info["Author"])
	}
}
