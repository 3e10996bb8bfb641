// Package attach appends external PDF files such as product datasheets and
// company documents to an offer being assembled. Every file is handled
// independently: an id that resolves to nothing, a missing file, a locked
// file, or a corrupt file is logged and skipped, and the append pass always
// completes. Pages are imported as templates the way the merge operation in
// gofpdf-based tooling does it.
package attach

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/jung-kurt/gofpdf/contrib/gofpdi"

	"github.com/helioprint/offerdoc/pdfread"
)

// Resolver maps an opaque asset id to a file path on disk. Implementations
// come from the persistence layer outside this engine.
type Resolver interface {
	Resolve(id string) (string, bool)
}

// PathResolver is a map-backed Resolver, handy for configuration files and
// tests.
type PathResolver map[string]string

// Resolve implements Resolver.
func (r PathResolver) Resolve(id string) (string, bool) {
	p, ok := r[id]
	return p, ok
}

// Logger receives per-file progress notes. It is borrowed for the duration
// of one append pass and never stored.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
}

// ptToMM converts PDF points to millimeters, the unit of the offer document.
const ptToMM = 25.4 / 72.0

// AppendAll resolves each id in order and appends every page of its file
// to pdf. The function is total over its input: it returns the number of
// pages appended and never fails the surrounding document.
func AppendAll(pdf *gofpdf.Fpdf, r Resolver, ids []string, log Logger) int {
	var appended int
	for _, id := range ids {
		path, ok := r.Resolve(id)
		if !ok || path == "" {
			log.Warnf("id %s: not found, skipped", id)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			log.Warnf("id %s: file %s missing, skipped", id, path)
			continue
		}

		n, title, err := appendFile(pdf, path)
		if err != nil {
			if n > 0 {
				log.Warnf("id %s: %v, %d of its pages kept", id, err, n)
				appended += n
			} else {
				log.Warnf("id %s: %v, skipped", id, err)
			}
			continue
		}
		appended += n
		if title != "" {
			log.Infof("id %s: appended %d pages from %s (%q)", id, n, path, title)
		} else {
			log.Infof("id %s: appended %d pages from %s", id, n, path)
		}
	}
	return appended
}

// appendFile imports all pages of one PDF file into the target document
// and reports the source's title when it declares one. Files that opened
// with a blank password are re-emitted without their encryption first,
// since the page-import library cannot read encrypted bytes. The import is
// validated against a scratch document before any page touches the target,
// so a file the importer chokes on mid-way is rejected whole. On the rare
// failure of the second pass the returned count reflects the pages that
// made it in.
func appendFile(pdf *gofpdf.Fpdf, path string) (pages int, title string, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, "", fmt.Errorf("attach: reading %s: %w", path, err)
	}
	doc, err := pdfread.Parse(raw)
	if err != nil {
		return 0, "", fmt.Errorf("attach: reading %s: %w", path, err)
	}
	title = doc.Info()["Title"]

	data := raw
	if doc.Encrypted() {
		if data, err = doc.Decrypted(); err != nil {
			return 0, "", fmt.Errorf("attach: unlocking %s: %w", path, err)
		}
	}

	scratch := gofpdf.New("P", "mm", "A4", "")
	if _, err := importPages(scratch, data, doc.NumPages()); err != nil {
		return 0, title, fmt.Errorf("attach: validating %s: %w", path, err)
	}

	pages, err = importPages(pdf, data, doc.NumPages())
	if err != nil {
		return pages, title, fmt.Errorf("attach: importing %s: %w", path, err)
	}
	return pages, title, nil
}

// importPages imports every page of the document in data into pdf,
// returning the number of pages appended. The page-import library aborts
// with a panic on input it cannot handle, which is converted into an error
// here.
func importPages(pdf *gofpdf.Fpdf, data []byte, numPages int) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("import failed: %v", r)
		}
	}()

	imp := gofpdi.NewImporter()
	var rs io.ReadSeeker = bytes.NewReader(data)
	for i := 1; i <= numPages; i++ {
		tpl := imp.ImportPageFromStream(pdf, &rs, i, "/MediaBox")

		w, h := pageSizeMM(imp, i)
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: w, Ht: h})
		imp.UseImportedTemplate(pdf, tpl, 0, 0, w, h)
		pages++
	}

	if pdf.Err() {
		return pages, pdf.Error()
	}
	return pages, nil
}

// pageSizeMM returns the imported page's media box in millimeters, falling
// back to A4 when the source does not report a usable size.
func pageSizeMM(imp *gofpdi.Importer, pageNum int) (w, h float64) {
	sizes := imp.GetPageSizes()
	if dims, ok := sizes[pageNum]; ok {
		if mb, ok := dims["/MediaBox"]; ok {
			w = mb["w"] * ptToMM
			h = mb["h"] * ptToMM
		}
	}
	if w <= 0 || h <= 0 {
		w, h = 210.0, 297.0
	}
	return w, h
}
