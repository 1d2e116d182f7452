package infra

import (
	"crypto/rand"
	"encoding/hex"

	"auth-gateway/middleware/authgate/domain"
)

// DefaultKeyBytes gera keys de 16 caracteres hexadecimais.
const DefaultKeyBytes = 8

// KeyGenerator produz uma nova API key aleatória.
type KeyGenerator func() (domain.Key, error)

// HexKeys retorna um gerador com n bytes de crypto/rand, renderizados em hex minúsculo.
func HexKeys(n int) KeyGenerator {
	if n <= 0 {
		n = DefaultKeyBytes
	}
	return func() (domain.Key, error) {
		b := make([]byte, n)
		if _, err := rand.Read(b); err != nil {
			return "", err
		}
		return domain.Key(hex.EncodeToString(b)), nil
	}
}
