// Package entropy supplies the random rolls combat resolution depends on.
// Battles that should replay identically use a seeded source; everything
// else gets crypto-backed randomness.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields uniform floats in [0, 1). Implementations are safe for use
// from a single goroutine; the battle loop owns its source.
type Source interface {
	Float() float64
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() float64

// Float calls f.
func (f SourceFunc) Float() float64 { return f() }

// Seeded returns a deterministic source. The same seed replays the same
// roll sequence, which keeps saved battles and tests reproducible.
func Seeded(seed int64) Source {
	rng := mrand.New(mrand.NewSource(seed))
	return SourceFunc(rng.Float64)
}

type cryptoSource struct {
	mu sync.Mutex
}

// Crypto returns a source backed by crypto/rand, for live play where
// reproducibility does not matter.
func Crypto() Source {
	return &cryptoSource{}
}

func (c *cryptoSource) Float() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cryptoFloat()
}

// cryptoFloat draws 53 bits so the result is uniform in [0, 1).
func cryptoFloat() float64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms; a midpoint
		// keeps a roll from becoming an automatic success or failure.
		return 0.5
	}
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}
