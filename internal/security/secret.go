package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// SecretKeyLength is the length of generated session-signing keys,
// comfortably above the minimum the server accepts.
const SecretKeyLength = 48

const secretKeyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// GenerateSecretKey returns a fresh random value suitable for the
// SECRET_KEY setting.
func GenerateSecretKey() (string, error) {
	return randomString(SecretKeyLength, secretKeyAlphabet)
}

// randomString draws each character with rand.Int so no alphabet
// position is favored by modulo bias.
func randomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}
