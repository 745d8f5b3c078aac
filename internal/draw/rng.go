package draw

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the randomness behind a draw so tests can run
// reproducible Monte Carlo simulations with a seeded source.
type RandomSource interface {
	Float64() float64 // [0, 1)
	IntN(n int) int   // [0, n)
}

// cryptoRNG is the production source, backed by crypto/rand.
type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits -> [0, 1)
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

func (c cryptoRNG) IntN(n int) int {
	return int(c.Float64() * float64(n))
}

// DefaultRNG returns the crypto-backed random source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

// seededRNG is a reproducible source for simulations and tests.
type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a deterministic RandomSource for the given seed.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
func (s *seededRNG) IntN(n int) int   { return s.r.IntN(n) }
