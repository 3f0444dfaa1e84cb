package poly3_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

func TestRecordsLookup(t *testing.T) {
	var rs poly3.Records
	rs.Add(poly3.Record{S: 10, A: 2, B: 1})
	rs.Add(poly3.Record{S: 0, A: 1})
	rs.Add(poly3.Record{S: 20, A: 5})

	assert.Equal(t, []float64{0, 10, 20}, []float64{rs[0].S, rs[1].S, rs[2].S})
	assert.Equal(t, -1, rs.IndexAt(-1))
	assert.Equal(t, 0, rs.IndexAt(9.99))
	assert.Equal(t, 1, rs.IndexAt(10))
	assert.Equal(t, 2, rs.IndexAt(100))

	assert.InDelta(t, 1, rs.ValueAt(5), 1e-12)
	assert.InDelta(t, 4, rs.ValueAt(12), 1e-12)
	assert.InDelta(t, 1, rs.SlopeAt(12), 1e-12)
	assert.InDelta(t, 5, rs.ValueAt(30), 1e-12)
}

func TestRecordsEmpty(t *testing.T) {
	var rs poly3.Records
	assert.Equal(t, 0.0, rs.ValueAt(3))
	assert.Equal(t, 0.0, rs.SlopeAt(3))
	_, ok := rs.At(0)
	assert.False(t, ok)
}

func TestRecordsAddReplacesEqualS(t *testing.T) {
	var rs poly3.Records
	rs.Add(poly3.Record{S: 0, A: 1})
	rs.Add(poly3.Record{S: 0, A: 3})
	assert.Len(t, rs, 1)
	assert.Equal(t, 3.0, rs[0].A)
	assert.True(t, rs.Remove(0))
	assert.False(t, rs.Remove(0))
	assert.Empty(t, rs)
}

func TestRecordsShift(t *testing.T) {
	rs := poly3.Records{
		{S: 0, A: 1, B: 1, C: 0.5, D: 0.1},
		{S: 10, A: 3},
	}
	shifted := rs.Shift(-4)
	assert.Len(t, shifted, 2)
	assert.Equal(t, 0.0, shifted[0].S)
	assert.Equal(t, 6.0, shifted[1].S)
	for _, s := range []float64{0, 1, 3.5, 5.9} {
		assert.InDelta(t, rs.ValueAt(s+4), shifted.ValueAt(s), 1e-9)
	}
	assert.InDelta(t, rs.ValueAt(12), shifted.ValueAt(8), 1e-9)
}

func TestComputeCoefficientsValueOnly(t *testing.T) {
	rs := poly3.Records{{S: 0, A: 3}, {S: 10, A: 5}, {S: 30, A: 1}}
	poly3.ComputeCoefficients(rs, 50, poly3.ModeValueOnly)
	assert.InDelta(t, 3, rs.ValueAt(0), 1e-9)
	assert.InDelta(t, 4, rs.ValueAt(5), 1e-9)
	assert.InDelta(t, 5, rs.ValueAt(10-1e-9), 1e-6)
	assert.InDelta(t, 3, rs.ValueAt(20), 1e-9)
	assert.InDelta(t, 1, rs.ValueAt(45), 1e-9)
	assert.InDelta(t, 0, rs[0].C, 1e-9)
	assert.InDelta(t, 0, rs[0].D, 1e-9)
}

func TestComputeCoefficientsValueAndSlope(t *testing.T) {
	rs := poly3.Records{{S: 0, A: 0, B: 0}, {S: 20, A: 4, B: 0}}
	poly3.ComputeCoefficients(rs, 40, poly3.ModeValueAndSlope)
	assert.InDelta(t, 0, rs.SlopeAt(0), 1e-9)
	assert.InDelta(t, 4, rs[0].Value(20), 1e-9)
	assert.InDelta(t, 0, rs[0].Slope(20), 1e-9)
	assert.InDelta(t, 2, rs.ValueAt(10), 1e-9)

	again := poly3.Records{{S: 0, A: 0, B: 0}, {S: 20, A: 4, B: 0}}
	poly3.ComputeCoefficients(again, 40, poly3.ModeValueAndSlope)
	assert.Equal(t, rs, again)
}
