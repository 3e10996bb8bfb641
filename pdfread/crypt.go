package pdfread

import (
	"crypto/md5"
	"crypto/rc4"
	"encoding/binary"
	"fmt"
)

// ErrBadPassword is wrapped into unlock failures so callers can tell a
// locked attachment from a corrupt one.
var ErrBadPassword = fmt.Errorf("pdfread: invalid password")

// Password padding string from the PDF specification (ISO 32000-1, 7.6.3.3).
var passwordPad = []byte{
	0x28, 0xBF, 0x4E, 0x5E, 0x4E, 0x75, 0x8A, 0x41,
	0x64, 0x00, 0x4E, 0x56, 0xFF, 0xFA, 0x01, 0x08,
	0x2E, 0x2E, 0x00, 0xB6, 0xD0, 0x68, 0x3E, 0x80,
	0x2F, 0x0C, 0xA9, 0xFE, 0x64, 0x53, 0x69, 0x7A,
}

// stdSecurity holds the parameters of the standard security handler
// (RC4, /V 1 and 2) plus the computed file key.
type stdSecurity struct {
	revision  int
	keyLength int // bytes
	ownerHash []byte
	userHash  []byte
	perms     int32
	fileID    []byte
	key       []byte
}

// unlock parses the /Encrypt dictionary and derives the file key from the
// password, trying it both as user and owner password.
func (d *Document) unlock(password string) error {
	encObj, err := d.deref(d.trailer["Encrypt"])
	if err != nil {
		return fmt.Errorf("resolving /Encrypt: %w", err)
	}
	enc, ok := encObj.(Dict)
	if !ok {
		return fmt.Errorf("/Encrypt is not a dictionary")
	}

	sec := &stdSecurity{revision: 2, keyLength: 5}
	version := int64(1)
	if v, ok := enc.integer("V"); ok {
		version = v
	}
	if version > 2 {
		return fmt.Errorf("unsupported encryption version V=%d", version)
	}
	if r, ok := enc.integer("R"); ok {
		sec.revision = int(r)
	}
	if n, ok := enc.integer("Length"); ok {
		sec.keyLength = int(n) / 8
	}
	if p, ok := enc.integer("P"); ok {
		sec.perms = int32(p)
	}
	if s, ok := enc["O"].(String); ok {
		sec.ownerHash = s.Value
	}
	if s, ok := enc["U"].(String); ok {
		sec.userHash = s.Value
	}
	if ids := d.trailer.array("ID"); len(ids) > 0 {
		if s, ok := ids[0].(String); ok {
			sec.fileID = s.Value
		}
	}

	// Try as user password, then as owner password.
	key := sec.fileKey([]byte(password))
	if !sec.checkUserKey(key) {
		userPass := sec.userPassFromOwner([]byte(password))
		key = sec.fileKey(userPass)
		if !sec.checkUserKey(key) {
			return ErrBadPassword
		}
	}

	sec.key = key
	d.crypt = sec
	return nil
}

// fileKey derives the encryption key from a user password (Algorithm 2).
func (s *stdSecurity) fileKey(password []byte) []byte {
	padded := padPassword(password)

	h := md5.New()
	h.Write(padded)
	h.Write(s.ownerHash)
	var p [4]byte
	binary.LittleEndian.PutUint32(p[:], uint32(s.perms))
	h.Write(p[:])
	h.Write(s.fileID)
	digest := h.Sum(nil)

	if s.revision >= 3 {
		for i := 0; i < 50; i++ {
			sum := md5.Sum(digest[:s.keyLength])
			digest = sum[:]
		}
	}
	return digest[:s.keyLength]
}

// checkUserKey validates a candidate key against /U (Algorithms 4 and 5).
func (s *stdSecurity) checkUserKey(key []byte) bool {
	if s.revision == 2 {
		c, err := rc4.NewCipher(key)
		if err != nil {
			return false
		}
		got := make([]byte, 32)
		c.XORKeyStream(got, passwordPad)
		return equalPrefix(got, s.userHash, 32)
	}

	h := md5.New()
	h.Write(passwordPad)
	h.Write(s.fileID)
	digest := h.Sum(nil)

	c, err := rc4.NewCipher(key)
	if err != nil {
		return false
	}
	c.XORKeyStream(digest, digest)
	for i := 1; i <= 19; i++ {
		iterKey := make([]byte, len(key))
		for j := range key {
			iterKey[j] = key[j] ^ byte(i)
		}
		c, err = rc4.NewCipher(iterKey)
		if err != nil {
			return false
		}
		c.XORKeyStream(digest, digest)
	}
	return equalPrefix(digest, s.userHash, 16)
}

// userPassFromOwner recovers the user password when the supplied password
// turns out to be the owner password (Algorithm 7).
func (s *stdSecurity) userPassFromOwner(ownerPass []byte) []byte {
	digest := md5.Sum(padPassword(ownerPass))
	if s.revision >= 3 {
		for i := 0; i < 50; i++ {
			digest = md5.Sum(digest[:])
		}
	}
	key := digest[:s.keyLength]

	out := make([]byte, len(s.ownerHash))
	copy(out, s.ownerHash)

	if s.revision == 2 {
		c, _ := rc4.NewCipher(key)
		c.XORKeyStream(out, out)
		return out
	}
	for i := 19; i >= 0; i-- {
		iterKey := make([]byte, len(key))
		for j := range key {
			iterKey[j] = key[j] ^ byte(i)
		}
		c, _ := rc4.NewCipher(iterKey)
		c.XORKeyStream(out, out)
	}
	return out
}

// objectKey derives the per-object RC4 key. Every string and stream of an
// object is enciphered independently with this key, each with a fresh
// keystream.
func (s *stdSecurity) objectKey(num, gen int) []byte {
	if s.key == nil {
		return nil
	}
	buf := make([]byte, 0, len(s.key)+5)
	buf = append(buf, s.key...)

	var nb, gb [4]byte
	binary.LittleEndian.PutUint32(nb[:], uint32(num))
	binary.LittleEndian.PutUint32(gb[:], uint32(gen))
	buf = append(buf, nb[0], nb[1], nb[2], gb[0], gb[1])

	sum := md5.Sum(buf)
	n := len(s.key) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

func padPassword(password []byte) []byte {
	padded := make([]byte, 32)
	n := copy(padded, password)
	copy(padded[n:], passwordPad)
	return padded
}

func equalPrefix(a, b []byte, n int) bool {
	if len(a) < n || len(b) < n {
		return false
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
