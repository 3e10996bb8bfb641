// Package pdfread parses existing PDF files far enough to answer the
// questions the offer assembly pipeline asks about them: how many pages a
// file has, whether it is encrypted, and whether it opens with a blank
// password. It understands classic cross-reference tables, cross-reference
// streams, flate-compressed streams, and the standard RC4 security handler.
package pdfread

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Document is a parsed PDF file.
type Document struct {
	Version string // from the %PDF- header, e.g. "1.4"

	data    []byte
	xref    xrefTable
	trailer Dict
	crypt   *stdSecurity // non-nil once an encrypted file is unlocked
	pages   int
}

// Open parses a PDF file from disk, attempting a blank-password unlock if
// the file is encrypted.
func Open(filename string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("pdfread: opening %s: %w", filename, err)
	}
	return Parse(data)
}

// OpenWithPassword parses an encrypted PDF file using the given password.
func OpenWithPassword(filename, password string) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("pdfread: opening %s: %w", filename, err)
	}
	return ParseWithPassword(data, password)
}

// ReadFrom parses a PDF from a reader. The content is read fully into
// memory for random access.
func ReadFrom(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pdfread: reading input: %w", err)
	}
	return Parse(data)
}

// Parse builds a Document from raw PDF bytes, trying a blank password for
// encrypted files.
func Parse(data []byte) (*Document, error) {
	return ParseWithPassword(data, "")
}

// ParseWithPassword builds a Document, unlocking encrypted files with the
// given password.
func ParseWithPassword(data []byte, password string) (*Document, error) {
	d := &Document{data: data, Version: headerVersion(data)}

	start, err := findStartXref(data)
	if err != nil {
		return nil, err
	}
	if d.xref, d.trailer, err = parseXref(data, start); err != nil {
		return nil, err
	}

	if _, encrypted := d.trailer["Encrypt"]; encrypted {
		if err := d.unlock(password); err != nil {
			return nil, fmt.Errorf("pdfread: %w", err)
		}
	}

	if err := d.countPages(); err != nil {
		return nil, err
	}
	return d, nil
}

// NumPages returns the number of pages in the document.
func (d *Document) NumPages() int { return d.pages }

// Encrypted reports whether the file carried an /Encrypt dictionary.
func (d *Document) Encrypted() bool { return d.crypt != nil }

// Info returns entries from the document information dictionary, used when
// logging which attachment was appended.
func (d *Document) Info() map[string]string {
	out := make(map[string]string)
	obj, err := d.deref(d.trailer["Info"])
	if err != nil {
		return out
	}
	info, ok := obj.(Dict)
	if !ok {
		return out
	}
	for _, key := range []Name{"Title", "Author", "Producer", "Creator"} {
		if s, ok := info[key].(String); ok {
			out[string(key)] = printable(s.Value)
		}
	}
	return out
}

// countPages walks the page tree and counts leaf /Page nodes.
func (d *Document) countPages() error {
	root, err := d.deref(d.trailer["Root"])
	if err != nil {
		return fmt.Errorf("pdfread: resolving /Root: %w", err)
	}
	catalog, ok := root.(Dict)
	if !ok {
		return fmt.Errorf("pdfread: /Root is not a dictionary")
	}

	pagesObj, err := d.deref(catalog["Pages"])
	if err != nil {
		return fmt.Errorf("pdfread: resolving /Pages: %w", err)
	}
	tree, ok := pagesObj.(Dict)
	if !ok {
		return fmt.Errorf("pdfread: /Pages is not a dictionary")
	}

	d.pages = 0
	seen := make(map[int]bool)
	return d.walkPageTree(tree, seen)
}

func (d *Document) walkPageTree(node Dict, seen map[int]bool) error {
	if node.name("Type") == "Page" {
		d.pages++
		return nil
	}

	kidsObj, err := d.deref(node["Kids"])
	if err != nil {
		return fmt.Errorf("pdfread: resolving /Kids: %w", err)
	}
	kids, _ := kidsObj.(Array)
	for _, kid := range kids {
		if ref, ok := kid.(Ref); ok {
			// Guard against cyclic page trees in corrupt files.
			if seen[ref.Num] {
				continue
			}
			seen[ref.Num] = true
		}
		obj, err := d.deref(kid)
		if err != nil {
			return err
		}
		if child, ok := obj.(Dict); ok {
			if err := d.walkPageTree(child, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// deref resolves indirect references; direct objects pass through.
func (d *Document) deref(obj Object) (Object, error) {
	ref, ok := obj.(Ref)
	if !ok {
		return obj, nil
	}
	entry, ok := d.xref[ref.Num]
	if !ok || !entry.inUse {
		return Null{}, nil
	}
	return d.loadObject(ref.Num, ref.Gen, entry)
}

// loadObject parses the indirect object stored at entry, decrypting its
// strings and streams when the document is protected.
func (d *Document) loadObject(num, gen int, entry xrefEntry) (Object, error) {
	if entry.offset < 0 || int(entry.offset) >= len(d.data) {
		return nil, fmt.Errorf("pdfread: object %d offset out of bounds", num)
	}

	lx := newLexer(d.data[entry.offset:])
	if d.crypt != nil {
		lx.key = d.crypt.objectKey(num, gen)
	}
	ind, err := lx.indirectObject()
	if err != nil {
		return nil, fmt.Errorf("pdfread: object %d: %w", num, err)
	}
	return ind, nil
}

// headerVersion extracts the version from the %PDF- header.
func headerVersion(data []byte) string {
	n := len(data)
	if n > 16 {
		n = 16
	}
	head := string(data[:n])
	if i := strings.Index(head, "%PDF-"); i >= 0 {
		rest := head[i+5:]
		if j := strings.IndexAny(rest, "\r\n"); j >= 0 {
			rest = rest[:j]
		}
		return rest
	}
	return ""
}

// printable strips non-text bytes from metadata strings.
func printable(b []byte) string {
	var sb strings.Builder
	for _, c := range b {
		if c >= 0x20 && c < 0x7f {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
