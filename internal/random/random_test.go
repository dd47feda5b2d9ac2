package random

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntWithinBounds(t *testing.T) {
	g := New()
	ranges := [][2]int{{1, 3}, {5, 10}, {100, 100}, {0, 0}}
	for _, r := range ranges {
		seen := map[int]bool{}
		for i := 0; i < 2000; i++ {
			v := g.Int(r[0], r[1])
			if v < r[0] || v > r[1] {
				t.Fatalf("Int(%d, %d) = %d out of range", r[0], r[1], v)
			}
			seen[v] = true
		}
		// every value of a small range shows up across this many draws
		assert.Len(t, seen, r[1]-r[0]+1)
	}
}

func TestFloatWithinBounds(t *testing.T) {
	g := New()
	for i := 0; i < 2000; i++ {
		v := g.Float(0.0001, 0.0009)
		if v < 0.0001 || v > 0.0009 {
			t.Fatalf("Float = %v out of range", v)
		}
	}
	assert.Equal(t, 0.001, g.Float(0.001, 0.001))
}

func TestSecondsWithinBounds(t *testing.T) {
	g := New()
	for i := 0; i < 500; i++ {
		d := g.Seconds(2, 5)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 5*time.Second)

		w := g.WholeSeconds(5, 10)
		assert.GreaterOrEqual(t, w, 5*time.Second)
		assert.LessOrEqual(t, w, 10*time.Second)
		assert.Zero(t, w%time.Second)
	}
}

func TestChance(t *testing.T) {
	g := NewWithSource(NewScripted(nil, []float64{0.1, 0.5, 0.0}))
	assert.True(t, g.Chance(20))  // 10 <= 20
	assert.False(t, g.Chance(20)) // 50 > 20
	assert.False(t, g.Chance(0))  // zero chance never hits, even on a zero draw

	always := New()
	for i := 0; i < 100; i++ {
		assert.True(t, always.Chance(100))
	}
}

func TestScriptedClampsToRange(t *testing.T) {
	g := NewWithSource(NewScripted([]int{7, 1}, nil))
	assert.Equal(t, 3, g.Int(1, 3)) // 7 clamps to the top of the range
	assert.Equal(t, 2, g.Int(1, 3))
	assert.Equal(t, 1, g.Int(1, 3)) // exhausted queue draws zero
}
