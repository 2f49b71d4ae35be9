// Package handid generates ledger hand identifiers: UUIDv7 values encoded as
// 26-character Crockford base32 strings, so IDs sort by creation time.
package handid

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the size of an encoded ID.
const Length = 26

// Generate creates a new hand ID.
func Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails when the random source does; fall back to v4.
		id = uuid.New()
	}
	return Encode(id)
}

// Encode renders a UUID as 26 base32 characters. The 128 bits are prefixed
// with two zero bits, so the first character is always 0-7.
func Encode(id uuid.UUID) string {
	out := make([]byte, Length)
	var acc uint32
	bits := 2 // zero padding
	pos := 0
	for _, b := range id {
		acc = acc<<8 | uint32(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1f]
			pos++
		}
	}
	return string(out)
}

// Validate checks that id looks like an encoded hand ID.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("hand ID must be exactly %d characters, got %d", Length, len(id))
	}

	if id[0] > '7' {
		return fmt.Errorf("hand ID first character must be 0-7, got %c", id[0])
	}

	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}

	return nil
}
