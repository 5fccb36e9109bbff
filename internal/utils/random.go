package utils

import (
	"crypto/rand"
	"encoding/hex"
	"math/big"
)

// NewRefreshTokenValue returns a cryptographically random, unguessable
// token value. 48 random bytes hex-encoded gives 96 characters, which the
// refresh ledger stores verbatim under a unique key.
func NewRefreshTokenValue() (string, error) {
	buf := make([]byte, 48)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// NumericCode returns a string of n decimal digits drawn from a
// cryptographically strong source. Used for one-time passcodes.
func NumericCode(n int) (string, error) {
	digits := make([]byte, n)
	for i := range digits {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + d.Int64())
	}
	return string(digits), nil
}
