// Package jobid encodes integer identifiers as short base-63 strings and
// decodes them back, using the alphabet A-Z, a-z, 0-9, then '_'. No other
// package of this module calls it.
package jobid

import (
	"errors"
	"strings"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_"

const base = uint64(len(alphabet))

var ErrInvalidChar = errors.New("jobid: invalid base63 character")

var charValue = func() map[byte]uint64 {
	m := make(map[byte]uint64, len(alphabet))
	for i := 0; i < len(alphabet); i++ {
		m[alphabet[i]] = uint64(i)
	}
	return m
}()

// Encode renders value in base63, "A" for zero.
func Encode(value uint64) string {
	if value == 0 {
		return string(alphabet[0])
	}
	var b strings.Builder
	digits := make([]byte, 0, 12)
	for value > 0 {
		digits = append(digits, alphabet[value%base])
		value /= base
	}
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
	}
	return b.String()
}

// Decode parses a base63-encoded string back to its value.
func Decode(encoded string) (uint64, error) {
	if encoded == "" {
		return 0, ErrInvalidChar
	}
	var value uint64
	for i := 0; i < len(encoded); i++ {
		v, ok := charValue[encoded[i]]
		if !ok {
			return 0, ErrInvalidChar
		}
		value = value*base + v
	}
	return value, nil
}
