// Package crypto provides cryptographic utilities.
package crypto

import (
	"crypto/rand"
	"fmt"
)

// MustRandomBytes returns n cryptographically secure random bytes.
// A failing entropy source leaves the process unable to produce salts or
// secrets at all, so it panics instead of returning an error.
func MustRandomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto: reading %d random bytes: %v", n, err))
	}
	return b
}

// WipeBytes overwrites b with zeros. A nil slice is a no-op.
func WipeBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
