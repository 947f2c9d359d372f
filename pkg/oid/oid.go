// Package oid implements the object identifier used throughout the
// reference database: an opaque 20-byte SHA-1 digest with a canonical
// 40-character lowercase hex encoding.
package oid

import (
	"crypto/sha1" //nolint:gosec // Git's object id format, not a security boundary here
	"encoding/hex"
	"errors"
)

// Size is the length of an ID in raw bytes.
const Size = 20

// HexSize is the length of an ID's canonical hex encoding.
const HexSize = Size * 2

// ErrInvalid is returned when a string or byte slice cannot be parsed
// into an ID.
var ErrInvalid = errors.New("oid: invalid object id")

// ID is a 20-byte object identifier. The zero value is the null id.
// Equality is bytewise and ID is safe to use as a map key.
type ID [Size]byte

// Zero is the null object id.
var Zero ID

// Sum returns the id of data, hashed the way Git hashes loose objects:
// sha1("<type> <len>\x00<data>").
func Sum(objType string, data []byte) ID {
	h := sha1.New() //nolint:gosec
	h.Write([]byte(objType))
	h.Write([]byte{' '})
	h.Write([]byte(lenDecimal(len(data))))
	h.Write([]byte{0})
	h.Write(data)
	var out ID
	copy(out[:], h.Sum(nil))
	return out
}

func lenDecimal(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// FromHex parses the 40-character hex encoding of an id.
func FromHex(s string) (ID, error) {
	if len(s) != HexSize {
		return Zero, ErrInvalid
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Zero, ErrInvalid
	}
	return FromBytes(raw)
}

// FromBytes casts a 20-byte slice into an ID.
func FromBytes(b []byte) (ID, error) {
	if len(b) != Size {
		return Zero, ErrInvalid
	}
	var out ID
	copy(out[:], b)
	return out, nil
}

// String returns the canonical lowercase 40-character hex encoding.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the null object id.
func (id ID) IsZero() bool {
	return id == Zero
}

// Bytes returns the raw 20-byte id.
func (id ID) Bytes() []byte {
	return id[:]
}
