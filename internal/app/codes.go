package app

import (
	"crypto/rand"
	"math/big"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeSource yields candidate session codes. Uniqueness among live sessions is
// checked by the registry.
type CodeSource func() (string, error)

// RandomCodes draws n characters from A-Z0-9.
func RandomCodes(n int) CodeSource {
	max := big.NewInt(int64(len(codeAlphabet)))
	return func() (string, error) {
		b := make([]byte, n)
		for i := range b {
			idx, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", err
			}
			b[i] = codeAlphabet[idx.Int64()]
		}
		return string(b), nil
	}
}

// FixedCodes returns codes in order, then repeats the last one.
func FixedCodes(codes ...string) CodeSource {
	i := 0
	return func() (string, error) {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c, nil
	}
}
