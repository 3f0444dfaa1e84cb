package randengine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/odrmap/utils/randengine"
)

func TestDiscreteDistributionSafe(t *testing.T) {
	e := randengine.New(42)
	counts := make([]int, 3)
	for i := 0; i < 3000; i++ {
		idx := e.DiscreteDistributionSafe([]float64{1, 0, 2})
		assert.NotEqual(t, int32(1), idx)
		counts[idx]++
	}
	assert.Greater(t, counts[0], 0)
	assert.Equal(t, 0, counts[1])
	assert.Greater(t, counts[2], counts[0])
}

func TestDiscreteDistributionSafeEmpty(t *testing.T) {
	e := randengine.New(1)
	assert.Equal(t, int32(-1), e.DiscreteDistributionSafe(nil))
	assert.Equal(t, int32(-1), e.DiscreteDistributionSafe([]float64{0, -1}))
}

func TestSameSeedSameSequence(t *testing.T) {
	a := randengine.New(7)
	b := randengine.New(7)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.IntnSafe(100), b.IntnSafe(100))
	}
	a.Reseed(7)
	c := randengine.New(7)
	assert.Equal(t, c.Float64Safe(), a.Float64Safe())
}
