package account

import (
	"bytes"
	"errors"
)

// The game server stores account ids and passwords as binary(13), right
// padded with NUL bytes. Twelve bytes is the longest value the client allows.
const (
	FieldWidth = 13
	MaxLength  = 12
)

var ErrTooLong = errors.New("value exceeds 12 bytes")

// Encode converts a username or password to its stored binary form.
func Encode(s string) ([]byte, error) {
	if len(s) > MaxLength {
		return nil, ErrTooLong
	}
	b := make([]byte, FieldWidth)
	copy(b, s)
	return b, nil
}

// Decode strips the NUL padding from a stored binary value.
func Decode(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimRight(b, " "))
}
