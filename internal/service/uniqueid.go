package service

import (
	"math/rand/v2"
	"strings"

	"github.com/Gopher0727/Himo/internal/store"
)

const (
	UniqueIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	UniqueIDLength   = 7

	maxUniqueIDAttempts = 32
)

// UniqueIDFunc produces a candidate friend code.
type UniqueIDFunc func() string

// RandomUniqueID samples UniqueIDLength symbols uniformly from UniqueIDAlphabet.
func RandomUniqueID() string {
	var b strings.Builder
	b.Grow(UniqueIDLength)
	for range UniqueIDLength {
		b.WriteByte(UniqueIDAlphabet[rand.IntN(len(UniqueIDAlphabet))])
	}
	return b.String()
}

// ValidUniqueID reports whether s has the shape of a friend code.
func ValidUniqueID(s string) bool {
	if len(s) != UniqueIDLength {
		return false
	}
	for i := range len(s) {
		if strings.IndexByte(UniqueIDAlphabet, s[i]) < 0 {
			return false
		}
	}
	return true
}

// allocateUniqueID draws candidates until one is not taken.
func allocateUniqueID(c *store.Collections, gen UniqueIDFunc) (string, error) {
	for range maxUniqueIDAttempts {
		id := gen()
		if c.UserByUniqueID(id) == nil {
			return id, nil
		}
	}
	return "", ErrUniqueIDExhausted
}
