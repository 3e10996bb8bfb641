package pdfread

import (
	"bytes"
	"compress/zlib"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
)

type xrefEntry struct {
	offset int64
	gen    int
	inUse  bool
}

// xrefTable maps object numbers to file offsets.
type xrefTable map[int]xrefEntry

// findStartXref locates the startxref offset near the end of the file.
func findStartXref(data []byte) (int64, error) {
	n := len(data)
	window := 1024
	if n < window {
		window = n
	}
	tail := data[n-window:]

	i := bytes.LastIndex(tail, []byte("startxref"))
	if i < 0 {
		return 0, fmt.Errorf("pdfread: startxref not found")
	}
	lx := newLexer(tail[i+len("startxref"):])
	off, err := strconv.ParseInt(lx.token(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("pdfread: invalid startxref offset: %w", err)
	}
	return off, nil
}

// parseXref parses the cross-reference section at the given offset,
// following /Prev links for incrementally updated files. Earlier entries
// never override later ones.
func parseXref(data []byte, offset int64) (xrefTable, Dict, error) {
	if offset < 0 || int(offset) >= len(data) {
		return nil, nil, fmt.Errorf("pdfread: xref offset %d out of bounds", offset)
	}

	lx := newLexer(data[offset:])
	if tok := lx.token(); tok != "xref" {
		// PDF 1.5+ cross-reference stream.
		return parseXrefStream(data, offset)
	}

	table := make(xrefTable)
	for {
		lx.skipSpace()
		if lx.pos >= len(lx.data) {
			break
		}
		saved := lx.pos
		if lx.token() == "trailer" {
			break
		}
		lx.pos = saved

		first, err := strconv.Atoi(lx.token())
		if err != nil {
			return nil, nil, fmt.Errorf("pdfread: xref subsection start: %w", err)
		}
		count, err := strconv.Atoi(lx.token())
		if err != nil {
			return nil, nil, fmt.Errorf("pdfread: xref subsection count: %w", err)
		}

		for i := 0; i < count; i++ {
			off, err := strconv.ParseInt(lx.token(), 10, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("pdfread: xref entry offset: %w", err)
			}
			gen, err := strconv.Atoi(lx.token())
			if err != nil {
				return nil, nil, fmt.Errorf("pdfread: xref entry generation: %w", err)
			}
			kind := lx.token()

			num := first + i
			if _, exists := table[num]; !exists {
				table[num] = xrefEntry{offset: off, gen: gen, inUse: kind == "n"}
			}
		}
	}

	obj, err := lx.object()
	if err != nil {
		return nil, nil, fmt.Errorf("pdfread: trailer: %w", err)
	}
	trailer, ok := obj.(Dict)
	if !ok {
		return nil, nil, fmt.Errorf("pdfread: trailer is not a dictionary")
	}

	if prev, ok := trailer.integer("Prev"); ok {
		prevTable, _, err := parseXref(data, prev)
		if err != nil {
			return nil, nil, fmt.Errorf("pdfread: previous xref: %w", err)
		}
		for num, e := range prevTable {
			if _, exists := table[num]; !exists {
				table[num] = e
			}
		}
	}
	return table, trailer, nil
}

// parseXrefStream parses a cross-reference stream object.
func parseXrefStream(data []byte, offset int64) (xrefTable, Dict, error) {
	lx := newLexer(data[offset:])
	obj, err := lx.indirectObject()
	if err != nil {
		return nil, nil, fmt.Errorf("pdfread: xref stream: %w", err)
	}
	stream, ok := obj.(Stream)
	if !ok {
		return nil, nil, fmt.Errorf("pdfread: xref stream object is not a stream")
	}

	decoded, err := decodeStream(stream)
	if err != nil {
		return nil, nil, fmt.Errorf("pdfread: decoding xref stream: %w", err)
	}

	wArr := stream.Dict.array("W")
	if len(wArr) != 3 {
		return nil, nil, fmt.Errorf("pdfread: xref stream /W must have 3 entries")
	}
	var w [3]int
	for i, v := range wArr {
		if n, ok := v.(Int); ok {
			w[i] = int(n)
		}
	}
	entrySize := w[0] + w[1] + w[2]

	var index []int
	if arr := stream.Dict.array("Index"); arr != nil {
		for _, v := range arr {
			if n, ok := v.(Int); ok {
				index = append(index, int(n))
			}
		}
	} else {
		size, _ := stream.Dict.integer("Size")
		index = []int{0, int(size)}
	}

	table := make(xrefTable)
	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		first, count := index[s], index[s+1]
		for i := 0; i < count; i++ {
			if pos+entrySize > len(decoded) {
				break
			}
			var f [3]int64
			for j := 0; j < 3; j++ {
				for k := 0; k < w[j]; k++ {
					f[j] = f[j]<<8 | int64(decoded[pos])
					pos++
				}
			}

			kind := f[0]
			if w[0] == 0 {
				kind = 1
			}
			num := first + i
			switch kind {
			case 1:
				table[num] = xrefEntry{offset: f[1], gen: int(f[2]), inUse: true}
			default:
				// Free entries, and objects packed in object streams,
				// which this parser does not unpack.
				table[num] = xrefEntry{inUse: false}
			}
		}
	}
	return table, stream.Dict, nil
}

// decodeStream applies the stream's filter chain.
func decodeStream(s Stream) ([]byte, error) {
	filterObj := s.Dict["Filter"]
	if filterObj == nil {
		return s.Data, nil
	}

	var filters []Name
	switch f := filterObj.(type) {
	case Name:
		filters = []Name{f}
	case Array:
		for _, item := range f {
			n, ok := item.(Name)
			if !ok {
				return nil, fmt.Errorf("pdfread: non-name filter entry %T", item)
			}
			filters = append(filters, n)
		}
	default:
		return nil, fmt.Errorf("pdfread: unexpected filter type %T", filterObj)
	}

	data := s.Data
	var err error
	for _, f := range filters {
		switch f {
		case "FlateDecode":
			data, err = flateDecode(data)
		case "ASCIIHexDecode":
			data, err = asciiHexDecode(data)
		default:
			err = fmt.Errorf("unsupported filter /%s", f)
		}
		if err != nil {
			return nil, fmt.Errorf("pdfread: filter /%s: %w", f, err)
		}
	}

	// Apply PNG-style predictors if requested by /DecodeParms.
	if parms, ok := s.Dict["DecodeParms"].(Dict); ok {
		if pred, _ := parms.integer("Predictor"); pred >= 10 {
			cols, _ := parms.integer("Columns")
			if cols <= 0 {
				cols = 1
			}
			data, err = unpredictPNG(data, int(cols))
			if err != nil {
				return nil, err
			}
		}
	}
	return data, nil
}

func flateDecode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func asciiHexDecode(data []byte) ([]byte, error) {
	var clean bytes.Buffer
	for _, b := range data {
		if b == '>' {
			break
		}
		if !isSpace(b) {
			clean.WriteByte(b)
		}
	}
	src := clean.Bytes()
	if len(src)%2 != 0 {
		src = append(src, '0')
	}
	dst := make([]byte, hex.DecodedLen(len(src)))
	if _, err := hex.Decode(dst, src); err != nil {
		return nil, err
	}
	return dst, nil
}

// unpredictPNG reverses the PNG Up/Sub/Paeth predictors used by xref streams.
func unpredictPNG(data []byte, cols int) ([]byte, error) {
	rowLen := cols + 1
	if len(data)%rowLen != 0 {
		return nil, fmt.Errorf("pdfread: predictor data not a whole number of rows")
	}
	out := make([]byte, 0, len(data)/rowLen*cols)
	prev := make([]byte, cols)

	for i := 0; i < len(data); i += rowLen {
		tag := data[i]
		row := make([]byte, cols)
		copy(row, data[i+1:i+rowLen])
		switch tag {
		case 0:
		case 1: // Sub
			for j := 1; j < cols; j++ {
				row[j] += row[j-1]
			}
		case 2: // Up
			for j := 0; j < cols; j++ {
				row[j] += prev[j]
			}
		default:
			return nil, fmt.Errorf("pdfread: unsupported predictor tag %d", tag)
		}
		out = append(out, row...)
		prev = row
	}
	return out, nil
}
