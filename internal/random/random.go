package random

import (
	"math/rand"
	"time"
)

// Source is the entropy the generator draws from.
type Source interface {
	IntN(n int) int
	Float64() float64
}

type runtimeSource struct{}

func (runtimeSource) IntN(n int) int   { return rand.Intn(n) }
func (runtimeSource) Float64() float64 { return rand.Float64() }

// Generator produces bounded random values for counts, amounts and pauses.
type Generator struct {
	src Source
}

// New returns a generator backed by the runtime's auto-seeded source.
func New() *Generator {
	return &Generator{src: runtimeSource{}}
}

func NewWithSource(src Source) *Generator {
	return &Generator{src: src}
}

// Int returns a uniform integer in [min, max].
func (g *Generator) Int(min, max int) int {
	if max < min {
		min, max = max, min
	}
	return min + g.src.IntN(max-min+1)
}

// Float returns a uniform value in [min, max).
func (g *Generator) Float(min, max float64) float64 {
	if max < min {
		min, max = max, min
	}
	return min + g.src.Float64()*(max-min)
}

// Percent draws a value in [0, 100).
func (g *Generator) Percent() float64 {
	return g.src.Float64() * 100
}

// Chance reports whether a percentage draw lands at or under pct.
// A non-positive pct never hits.
func (g *Generator) Chance(pct float64) bool {
	if pct <= 0 {
		return false
	}
	return g.Percent() <= pct
}

func (g *Generator) Index(n int) int {
	return g.src.IntN(n)
}

// Coin is a fair flip.
func (g *Generator) Coin() bool {
	return g.src.Float64() > 0.5
}

// Seconds draws a fractional number of seconds in [min, max).
func (g *Generator) Seconds(min, max float64) time.Duration {
	return time.Duration(g.Float(min, max) * float64(time.Second))
}

// WholeSeconds draws an integer number of seconds in [min, max].
func (g *Generator) WholeSeconds(min, max int) time.Duration {
	return time.Duration(g.Int(min, max)) * time.Second
}
