package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateRecoveryCode produces a six-digit numeric code for password resets.
func GenerateRecoveryCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generating recovery code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
