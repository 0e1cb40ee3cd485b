package bitmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorrelationScoreIdenticalAligned(t *testing.T) {
	b := fromRows(
		".#.",
		"###",
		".#.",
	)
	area := b.CountForeground()
	score := CorrelationScore(b, b, area, area, 0, 0, 0, 0)
	assert.Equal(t, 1.0, score)
}

// A misalignment within the search tolerance must still find the perfect
// overlap.
func TestCorrelationScoreRecoversOffsetWithinTolerance(t *testing.T) {
	a := New(8, 8)
	for y := 2; y < 6; y++ {
		for x := 2; x < 6; x++ {
			a.Set(x, y)
		}
	}
	b := New(8, 8)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			b.Set(x, y)
		}
	}

	score := CorrelationScore(a, b, 16, 16, 0, 0, 2, 2)
	assert.Equal(t, 1.0, score)

	// The same pair with no tolerance cannot reach full overlap.
	tight := CorrelationScore(a, b, 16, 16, 0, 0, 0, 0)
	assert.Less(t, tight, 1.0)
}

func TestCorrelationScoreDisjointTemplatesIsZero(t *testing.T) {
	a := fromRows(
		"#...",
		"....",
	)
	b := fromRows(
		"...#",
		"....",
	)
	score := CorrelationScore(a, b, 1, 1, 0, 0, 0, 0)
	assert.Equal(t, 0.0, score)
}

func TestCorrelationScoreZeroAreaIsZero(t *testing.T) {
	b := New(3, 3)
	assert.Equal(t, 0.0, CorrelationScore(b, b, 0, 0, 0, 0, 1, 1))
}

func TestCorrelationScorePartialOverlap(t *testing.T) {
	a := fromRows("####")
	b := fromRows("##..")
	// Overlap 2 of areas 4 and 2: score = 4 / 8.
	score := CorrelationScore(a, b, 4, 2, 0, 0, 0, 0)
	assert.InDelta(t, 0.5, score, 1e-9)
}
