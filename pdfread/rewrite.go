package pdfread

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
)

// Decrypted re-emits the document with the standard security handler
// stripped: every string and stream is stored in the clear and the trailer
// loses its /Encrypt entry, so import tooling that cannot handle encrypted
// files can consume the result. Unencrypted documents come back unchanged.
// Objects held in compressed object streams are not rewritten; RC4
// protection predates those.
func (d *Document) Decrypted() ([]byte, error) {
	if d.crypt == nil {
		return d.data, nil
	}

	encryptNum := -1
	if ref, ok := d.trailer["Encrypt"].(Ref); ok {
		encryptNum = ref.Num
	}

	nums := make([]int, 0, len(d.xref))
	for num, entry := range d.xref {
		if num <= 0 || !entry.inUse || num == encryptNum {
			continue
		}
		nums = append(nums, num)
	}
	sort.Ints(nums)
	if len(nums) == 0 {
		return nil, fmt.Errorf("pdfread: no objects to rewrite")
	}
	maxNum := nums[len(nums)-1]

	version := d.Version
	if version == "" {
		version = "1.4"
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%%PDF-%s\n", version)
	buf.WriteString("%\xe2\xe3\xcf\xd3\n")

	offsets := make(map[int]int64, len(nums))
	for _, num := range nums {
		entry := d.xref[num]
		obj, err := d.loadObject(num, entry.gen, entry)
		if err != nil {
			return nil, err
		}
		offsets[num] = int64(buf.Len())
		fmt.Fprintf(&buf, "%d %d obj\n", num, entry.gen)
		writeObject(&buf, obj)
		buf.WriteString("\nendobj\n")
	}

	xrefOff := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", maxNum+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= maxNum; num++ {
		if off, ok := offsets[num]; ok {
			fmt.Fprintf(&buf, "%010d %05d n \n", off, d.xref[num].gen)
		} else {
			buf.WriteString("0000000000 65535 f \n")
		}
	}

	trailer := Dict{"Size": Int(maxNum + 1)}
	for _, key := range []Name{"Root", "Info", "ID"} {
		if v, ok := d.trailer[key]; ok {
			trailer[key] = v
		}
	}
	buf.WriteString("trailer\n")
	writeObject(&buf, trailer)
	fmt.Fprintf(&buf, "\nstartxref\n%d\n%%%%EOF\n", xrefOff)
	return buf.Bytes(), nil
}

// writeObject serializes an object in PDF syntax. Strings come out
// hex-encoded, which sidesteps literal-string escaping, and stream
// dictionaries get their /Length replaced with the payload length.
func writeObject(buf *bytes.Buffer, obj Object) {
	switch v := obj.(type) {
	case nil, Null:
		buf.WriteString("null")
	case Bool:
		if v {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case Int:
		buf.WriteString(strconv.FormatInt(int64(v), 10))
	case Real:
		buf.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 64))
	case Name:
		writeName(buf, v)
	case String:
		buf.WriteByte('<')
		buf.WriteString(hex.EncodeToString(v.Value))
		buf.WriteByte('>')
	case Array:
		buf.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeObject(buf, item)
		}
		buf.WriteByte(']')
	case Dict:
		writeDict(buf, v)
	case Stream:
		dict := make(Dict, len(v.Dict))
		for k, val := range v.Dict {
			dict[k] = val
		}
		dict["Length"] = Int(len(v.Data))
		writeDict(buf, dict)
		buf.WriteString("\nstream\n")
		buf.Write(v.Data)
		buf.WriteString("\nendstream")
	case Ref:
		fmt.Fprintf(buf, "%d %d R", v.Num, v.Gen)
	}
}

func writeDict(buf *bytes.Buffer, d Dict) {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	buf.WriteString("<<")
	for _, k := range keys {
		buf.WriteByte(' ')
		writeName(buf, Name(k))
		buf.WriteByte(' ')
		writeObject(buf, d[Name(k)])
	}
	buf.WriteString(" >>")
}

func writeName(buf *bytes.Buffer, n Name) {
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		b := n[i]
		if b <= ' ' || b > '~' || b == '#' || isDelim(b) {
			fmt.Fprintf(buf, "#%02X", b)
		} else {
			buf.WriteByte(b)
		}
	}
}
