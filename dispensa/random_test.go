package dispensa

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChanceIsDeterministicPerSeed(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		first := Chance(seed, 0.5)
		second := Chance(seed, 0.5)
		assert.Equal(t, first, second, "seed %d", seed)
	}
}

func TestChanceExtremes(t *testing.T) {
	for seed := uint64(0); seed < 100; seed++ {
		assert.False(t, Chance(seed, 0), "seed %d", seed)
		assert.True(t, Chance(seed, 1), "seed %d", seed)
	}
}
