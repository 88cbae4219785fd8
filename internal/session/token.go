package session

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TokenAlphabet is part of the cookie contract: tokens are plain
// alphanumeric so they survive any cookie or query-string encoding.
const TokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

const tokenLength = 32

// GenerateToken generates a cryptographically secure session token of
// tokenLength characters drawn from TokenAlphabet.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenLength)
	max := big.NewInt(int64(len(TokenAlphabet)))

	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("session: failed to generate token: %w", err)
		}
		buf[i] = TokenAlphabet[n.Int64()]
	}

	return string(buf), nil
}
