package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Source yields uniform random integers for shuffling decks, picking reel
// symbols and spinning the wheel. Implementations must be safe for concurrent
// use. The production implementation is backed by crypto/rand; tests inject a
// scripted source.
type Source interface {
	// Intn returns a uniform integer in [0, n). n must be > 0.
	Intn(n int) (int, error)
}

// CryptoSource draws from crypto/rand. rand.Int rejection-samples internally,
// so results carry no modulo bias for any n.
type CryptoSource struct{}

func NewCryptoSource() CryptoSource {
	return CryptoSource{}
}

func (CryptoSource) Intn(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("random: invalid bound %d", n)
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random: entropy source unavailable: %w", err)
	}
	return int(v.Int64()), nil
}
