// Package id generates lexicographically sortable request and token
// identifiers.
package id

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// Crockford base32 alphabet; I, L, O, and U are excluded so IDs stay
// unambiguous when read aloud or retyped.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	timestampChars = 10
	randomChars    = 16
	ulidLen        = timestampChars + randomChars
)

// NewULID returns a 26-character ULID: a 48-bit millisecond timestamp
// followed by 80 bits of randomness, base32-encoded. IDs generated
// later sort lexicographically after earlier ones, which keeps log
// correlation and key scans ordered by creation time.
func NewULID() string {
	var out [ulidLen]byte

	ms := uint64(time.Now().UnixMilli())
	for i := timestampChars - 1; i >= 0; i-- {
		out[i] = alphabet[ms&0x1F]
		ms >>= 5
	}

	var entropy [10]byte
	if _, err := rand.Read(entropy[:]); err != nil {
		// crypto/rand failing is effectively fatal for the process;
		// degrade to clock-derived bits rather than panic in a request
		// path.
		binary.BigEndian.PutUint64(entropy[:8], uint64(time.Now().UnixNano()))
	}

	// 10 bytes is exactly 16 base32 characters; consume the entropy as
	// one rolling accumulator, five bits at a time.
	var acc uint64
	bits := 0
	pos := timestampChars
	for _, b := range entropy {
		acc = acc<<8 | uint64(b)
		bits += 8
		for bits >= 5 {
			bits -= 5
			out[pos] = alphabet[(acc>>bits)&0x1F]
			pos++
		}
	}

	return string(out[:])
}
