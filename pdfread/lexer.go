package pdfread

import (
	"bytes"
	"crypto/rc4"
	"fmt"
	"io"
	"strconv"
)

// Object is implemented by every PDF object type.
type Object interface{ pdfObject() }

// Null is the PDF null object.
type Null struct{}

// Bool is a PDF boolean.
type Bool bool

// Int is a PDF integer.
type Int int64

// Real is a PDF floating-point number.
type Real float64

// Name is a PDF name such as /Type or /Pages.
type Name string

// String is a PDF string, literal or hex.
type String struct {
	Value []byte
}

// Array is a PDF array.
type Array []Object

// Dict is a PDF dictionary.
type Dict map[Name]Object

// Stream is a stream object: its dictionary plus raw (possibly compressed) data.
type Stream struct {
	Dict Dict
	Data []byte
}

// Ref is an indirect object reference ("12 0 R").
type Ref struct {
	Num, Gen int
}

func (Null) pdfObject()   {}
func (Bool) pdfObject()   {}
func (Int) pdfObject()    {}
func (Real) pdfObject()   {}
func (Name) pdfObject()   {}
func (String) pdfObject() {}
func (Array) pdfObject()  {}
func (Dict) pdfObject()   {}
func (Stream) pdfObject() {}
func (Ref) pdfObject()    {}

func (d Dict) name(key Name) Name {
	n, _ := d[key].(Name)
	return n
}

func (d Dict) integer(key Name) (int64, bool) {
	switch v := d[key].(type) {
	case Int:
		return int64(v), true
	case Real:
		return int64(v), true
	}
	return 0, false
}

func (d Dict) array(key Name) Array {
	a, _ := d[key].(Array)
	return a
}

// lexer is a recursive descent reader over raw PDF syntax. When key is
// set, string and stream payloads are decrypted with a fresh RC4 cipher
// each, which is what the standard security handler requires.
type lexer struct {
	data []byte
	pos  int
	key  []byte
}

func (l *lexer) decrypt(b []byte) {
	if l.key == nil {
		return
	}
	c, _ := rc4.NewCipher(l.key)
	c.XORKeyStream(b, b)
}

func newLexer(data []byte) *lexer { return &lexer{data: data} }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		switch b := l.data[l.pos]; {
		case isSpace(b):
			l.pos++
		case b == '%':
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
		default:
			return
		}
	}
}

// token reads the next run of regular characters.
func (l *lexer) token() string {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// object parses the next PDF object.
func (l *lexer) object() (Object, error) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return nil, io.ErrUnexpectedEOF
	}

	switch b := l.data[l.pos]; {
	case b == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			return l.dict()
		}
		return l.hexString()
	case b == '(':
		return l.literalString()
	case b == '/':
		return l.name()
	case b == '[':
		return l.arrays()
	case b == 't', b == 'f':
		return l.boolean()
	case b == 'n':
		if tok := l.token(); tok != "null" {
			return nil, fmt.Errorf("pdfread: expected null, got %q", tok)
		}
		return Null{}, nil
	case b >= '0' && b <= '9', b == '+', b == '-', b == '.':
		return l.numberOrRef()
	default:
		return nil, fmt.Errorf("pdfread: unexpected byte %q at %d", b, l.pos)
	}
}

func (l *lexer) name() (Name, error) {
	if l.data[l.pos] != '/' {
		return "", fmt.Errorf("pdfread: expected '/' at %d", l.pos)
	}
	l.pos++

	var buf bytes.Buffer
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isSpace(b) || isDelim(b) {
			break
		}
		if b == '#' && l.pos+2 < len(l.data) {
			hi, lo := unhex(l.data[l.pos+1]), unhex(l.data[l.pos+2])
			if hi >= 0 && lo >= 0 {
				buf.WriteByte(byte(hi<<4 | lo))
				l.pos += 3
				continue
			}
		}
		buf.WriteByte(b)
		l.pos++
	}
	return Name(buf.String()), nil
}

func (l *lexer) boolean() (Bool, error) {
	switch tok := l.token(); tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("pdfread: expected boolean, got %q", tok)
	}
}

// numberOrRef parses an integer, a real, or an indirect reference "N G R".
func (l *lexer) numberOrRef() (Object, error) {
	start := l.pos
	tok := l.token()

	n, err := strconv.ParseInt(tok, 10, 64)
	if err == nil {
		after := l.pos
		l.skipSpace()
		if l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '9' {
			genTok := l.token()
			if gen, err2 := strconv.ParseInt(genTok, 10, 64); err2 == nil {
				l.skipSpace()
				if l.pos < len(l.data) && l.data[l.pos] == 'R' {
					l.pos++
					return Ref{Num: int(n), Gen: int(gen)}, nil
				}
			}
		}
		l.pos = after
		return Int(n), nil
	}

	l.pos = start
	tok = l.token()
	f, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		return nil, fmt.Errorf("pdfread: invalid number %q at %d", tok, start)
	}
	return Real(f), nil
}

func (l *lexer) literalString() (String, error) {
	l.pos++ // '('
	var buf bytes.Buffer
	depth := 1

	for l.pos < len(l.data) && depth > 0 {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			if l.pos >= len(l.data) {
				return String{}, fmt.Errorf("pdfread: truncated string escape")
			}
			esc := l.data[l.pos]
			l.pos++
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			default:
				if esc >= '0' && esc <= '7' {
					oct := int(esc - '0')
					for i := 0; i < 2 && l.pos < len(l.data) && l.data[l.pos] >= '0' && l.data[l.pos] <= '7'; i++ {
						oct = oct*8 + int(l.data[l.pos]-'0')
						l.pos++
					}
					buf.WriteByte(byte(oct))
				} else {
					buf.WriteByte(esc)
				}
			}
		default:
			buf.WriteByte(b)
		}
	}
	if depth != 0 {
		return String{}, fmt.Errorf("pdfread: unterminated string")
	}

	out := buf.Bytes()
	l.decrypt(out)
	return String{Value: out}, nil
}

func (l *lexer) hexString() (String, error) {
	l.pos++ // '<'
	var buf bytes.Buffer
	hi := -1

	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			if hi >= 0 {
				buf.WriteByte(byte(hi << 4))
			}
			out := buf.Bytes()
			l.decrypt(out)
			return String{Value: out}, nil
		}
		if isSpace(b) {
			continue
		}
		v := unhex(b)
		if v < 0 {
			return String{}, fmt.Errorf("pdfread: bad hex digit %q", b)
		}
		if hi < 0 {
			hi = v
		} else {
			buf.WriteByte(byte(hi<<4 | v))
			hi = -1
		}
	}
	return String{}, fmt.Errorf("pdfread: unterminated hex string")
}

func (l *lexer) arrays() (Array, error) {
	l.pos++ // '['
	var arr Array
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("pdfread: unterminated array")
		}
		if l.data[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		obj, err := l.object()
		if err != nil {
			return nil, fmt.Errorf("pdfread: in array: %w", err)
		}
		arr = append(arr, obj)
	}
}

func (l *lexer) dict() (Dict, error) {
	l.pos += 2 // '<<'
	d := make(Dict)
	for {
		l.skipSpace()
		if l.pos >= len(l.data) {
			return nil, fmt.Errorf("pdfread: unterminated dictionary")
		}
		if l.pos+1 < len(l.data) && l.data[l.pos] == '>' && l.data[l.pos+1] == '>' {
			l.pos += 2
			return d, nil
		}
		key, err := l.name()
		if err != nil {
			return nil, fmt.Errorf("pdfread: dict key: %w", err)
		}
		val, err := l.object()
		if err != nil {
			return nil, fmt.Errorf("pdfread: dict value for /%s: %w", key, err)
		}
		d[key] = val
	}
}

// indirectObject parses "N G obj ... endobj", including stream payloads.
// It returns the contained value rather than a wrapper.
func (l *lexer) indirectObject() (Object, error) {
	numTok := l.token()
	if _, err := strconv.Atoi(numTok); err != nil {
		return nil, fmt.Errorf("pdfread: expected object number, got %q", numTok)
	}
	genTok := l.token()
	if _, err := strconv.Atoi(genTok); err != nil {
		return nil, fmt.Errorf("pdfread: expected generation, got %q", genTok)
	}
	if tok := l.token(); tok != "obj" {
		return nil, fmt.Errorf("pdfread: expected 'obj', got %q", tok)
	}

	val, err := l.object()
	if err != nil {
		return nil, err
	}

	l.skipSpace()
	if bytes.HasPrefix(l.data[l.pos:], []byte("stream")) {
		dict, ok := val.(Dict)
		if !ok {
			return nil, fmt.Errorf("pdfread: stream without dictionary header")
		}
		l.pos += len("stream")
		if l.pos < len(l.data) && l.data[l.pos] == '\r' {
			l.pos++
		}
		if l.pos < len(l.data) && l.data[l.pos] == '\n' {
			l.pos++
		}

		length := 0
		if n, ok := dict.integer("Length"); ok {
			length = int(n)
		}
		if l.pos+length > len(l.data) {
			return nil, fmt.Errorf("pdfread: stream length %d exceeds file", length)
		}

		payload := make([]byte, length)
		copy(payload, l.data[l.pos:l.pos+length])
		l.pos += length
		l.decrypt(payload)
		val = Stream{Dict: dict, Data: payload}
	}
	return val, nil
}

func unhex(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	}
	return -1
}
