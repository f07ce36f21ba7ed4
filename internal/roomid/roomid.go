// Package roomid generates room identifiers: UUIDv7 values encoded as
// 26-character Crockford base32 strings. Identifiers sort by creation
// time and avoid the ambiguous characters i, l, o and u.
package roomid

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

// Base32 alphabet used by TypeID (Crockford's base32)
const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

// Length is the encoded length of a room id.
const Length = 26

// RandSource interface for dependency injection of randomness
type RandSource interface {
	Intn(n int) int
}

// Generator produces room ids with configurable randomness
type Generator struct {
	randSource RandSource
}

// NewGenerator creates a new generator. A nil RandSource falls back to
// crypto/rand.
func NewGenerator(randSource RandSource) *Generator {
	return &Generator{randSource: randSource}
}

// Generate creates a new room id from a UUIDv7
func Generate() string {
	return NewGenerator(nil).Generate()
}

// GenerateWithRandSource creates a new room id using the provided RandSource
func GenerateWithRandSource(randSource RandSource) string {
	return NewGenerator(randSource).Generate()
}

// Generate creates a new room id using the generator's RandSource
func (g *Generator) Generate() string {
	return encodeBase32(g.uuidv7())
}

// uuidv7 builds a 128-bit UUIDv7: a 48-bit millisecond timestamp
// followed by random bits, with the version and variant bits set.
func (g *Generator) uuidv7() [16]byte {
	var uuid [16]byte

	now := time.Now().UnixMilli()
	uuid[0] = byte(now >> 40)
	uuid[1] = byte(now >> 32)
	uuid[2] = byte(now >> 24)
	uuid[3] = byte(now >> 16)
	uuid[4] = byte(now >> 8)
	uuid[5] = byte(now)

	if g.randSource != nil {
		for i := 6; i < 16; i++ {
			uuid[i] = byte(g.randSource.Intn(256))
		}
	} else {
		if _, err := rand.Read(uuid[6:]); err != nil {
			panic("failed to generate random bytes: " + err.Error())
		}
	}

	// Version 7, variant 10
	uuid[6] = (uuid[6] & 0x0f) | 0x70
	uuid[8] = (uuid[8] & 0x3f) | 0x80

	return uuid
}

// encodeBase32 encodes 128 bits as 26 characters, most significant
// bits first. The value is left-padded with two zero bits so 130 bits
// divide evenly into 5-bit groups, which also keeps the first
// character in the range 0-7.
func encodeBase32(data [16]byte) string {
	var out [Length]byte
	acc := uint32(0)
	nbits := 2
	j := 0
	for i := 0; i < len(data); i++ {
		acc = acc<<8 | uint32(data[i])
		nbits += 8
		for nbits >= 5 {
			out[j] = alphabet[(acc>>(nbits-5))&0x1f]
			nbits -= 5
			j++
		}
	}
	return string(out[:])
}

// Validate checks that a room id is 26 characters of valid base32 with
// an in-range leading character.
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("room id must be exactly %d characters, got %d", Length, len(id))
	}
	if id[0] > '7' {
		return fmt.Errorf("room id first character must be 0-7, got %c", id[0])
	}
	for i := 0; i < len(id); i++ {
		if strings.IndexByte(alphabet, id[i]) < 0 {
			return fmt.Errorf("invalid character %c at position %d", id[i], i)
		}
	}
	return nil
}
