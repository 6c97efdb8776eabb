// Package random provides the seeded random stream every generator draws from.
//
// A Source is a mulberry32 generator. It carries its own state and is threaded
// explicitly through generation calls; there is no package-level generator.
// The order of calls fixes the dataset, so callers must not reorder draws.
package random

import (
	"math"
	"math/big"
)

const (
	mulberryIncrement = 0x6D2B79F5
	twoPow32          = 4294967296.0
	normalDraws       = 6
)

// Source is a deterministic stream of floats in [0,1).
// It is not safe for concurrent use.
type Source struct {
	state uint32
}

// New returns a Source seeded with seed. Any 32-bit value is valid.
func New(seed uint32) *Source {
	return &Source{state: seed}
}

// FromInt64 seeds a Source from a configured integer, wrapping to 32 bits.
func FromInt64(seed int64) *Source {
	return New(WrapSeed(seed))
}

// WrapSeed reduces a configured seed to the 32-bit state a Source starts from.
func WrapSeed(seed int64) uint32 {
	return uint32(seed) //nolint:gosec // wrap-around is the intended conversion
}

// Next returns the next value in [0,1).
func (s *Source) Next() float64 {
	s.state += mulberryIncrement
	a := s.state
	t := (a ^ (a >> 15)) * (1 | a)
	t = (t + (t^(t>>7))*(61|t)) ^ t
	return float64(t^(t>>14)) / twoPow32
}

// UniformInt returns an integer in [lo, hi], both inclusive.
func (s *Source) UniformInt(lo, hi int) int {
	return int(math.Floor(s.Next()*float64(hi-lo+1))) + lo
}

// UniformFloat returns a float in [lo, hi).
func (s *Source) UniformFloat(lo, hi float64) float64 {
	return s.Next()*(hi-lo) + lo
}

// ApproxNormal returns symmetric noise around mean: the sum of six uniform
// draws, centered and scaled by stdev. Tails are truncated at ±3 stdev.
func (s *Source) ApproxNormal(mean, stdev float64) float64 {
	sum := 0.0
	for i := 0; i < normalDraws; i++ {
		sum += s.Next()
	}
	return mean + (sum-3)*stdev
}

// Clamp bounds x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// RoundHalfUp rounds to the nearest integer with halves going toward +Inf.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTo rounds x to the given number of decimal places using the exact
// binary value of x. Exact ties round away from zero, so RoundTo(0.125, 2)
// is 0.13 while RoundTo(1.005, 2) is 1.0 (1.005 is stored slightly below).
func RoundTo(x float64, places int) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || places < 0 {
		return x
	}

	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(places)), nil)
	r := new(big.Rat).SetFloat64(math.Abs(x))
	r.Mul(r, new(big.Rat).SetInt(scale))
	r.Add(r, big.NewRat(1, 2))
	n := new(big.Int).Quo(r.Num(), r.Denom())

	v, _ := new(big.Rat).SetFrac(n, scale).Float64()
	if x < 0 {
		return -v
	}
	return v
}
