package util

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomString returns n characters of hex from a cryptographic source.
// Used for throwaway credentials and one-off keys.
func RandomString(n int) string {
	bytes := make([]byte, (n+1)/2)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return hex.EncodeToString(bytes)[:n]
}
