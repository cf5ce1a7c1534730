// Package token generates opaque identifiers and credentials from
// crypto/rand. Length is fixed per generator so entropy is auditable
// at the call site.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

type Generator struct {
	length int
}

// New returns a generator producing hex strings of the given length.
// Length must be even and positive, one byte of entropy per two chars.
func New(length int) (*Generator, error) {
	if length <= 0 || length%2 != 0 {
		return nil, fmt.Errorf("token - New - invalid length %d", length)
	}

	return &Generator{length: length}, nil
}

func (g *Generator) Generate() (string, error) {
	b := make([]byte, g.length/2)

	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("token - Generate - rand.Read: %w", err)
	}

	return hex.EncodeToString(b), nil
}

func (g *Generator) Length() int {
	return g.length
}
