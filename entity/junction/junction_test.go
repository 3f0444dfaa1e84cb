package junction_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/junction"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
)

type testMap struct {
	junctions *junction.JunctionManager
	rc        *config.RuntimeConfig
}

func (m *testMap) RoadManager() entity.IRoadManager         { return nil }
func (m *testMap) JunctionManager() entity.IJunctionManager { return m.junctions }
func (m *testMap) RuntimeConfig() *config.RuntimeConfig     { return m.rc }

func newManager() *junction.JunctionManager {
	m := &testMap{rc: config.DefaultRuntimeConfig()}
	m.junctions = junction.NewManager(m)
	return m.junctions
}

// threeWay 路口1：道路10可以进入20、21、22，道路11只能进入23
func threeWay(t *testing.T, m *junction.JunctionManager) *junction.Junction {
	t.Helper()
	j, err := m.CreateJunction(1, "three-way")
	require.NoError(t, err)
	for _, c := range []int32{20, 21, 22} {
		j.AddConnection(10, c, entity.ContactPointStart)
	}
	j.AddConnection(11, 23, entity.ContactPointStart)
	return j
}

func TestRandomConnectionCoversAll(t *testing.T) {
	j := threeWay(t, newManager())
	hits := make(map[int32]int)
	for i := 0; i < 1000; i++ {
		c, err := j.GetRandomConnectionFor(10)
		require.NoError(t, err)
		assert.Equal(t, int32(10), c.IncomingRoad)
		hits[c.ConnectingRoad]++
	}
	assert.Len(t, hits, 3)
	for road, n := range hits {
		assert.Greater(t, n, 200, "road %d", road)
	}
}

func TestRandomConnectionWeights(t *testing.T) {
	j := threeWay(t, newManager())
	for _, c := range j.ConnectionsFor(10) {
		if c.ConnectingRoad != 21 {
			c.Weight = 0.0001
		} else {
			c.Weight = 100
		}
	}
	hits := 0
	for i := 0; i < 100; i++ {
		c, err := j.GetRandomConnectionFor(10)
		require.NoError(t, err)
		if c.ConnectingRoad == 21 {
			hits++
		}
	}
	assert.Greater(t, hits, 95)
}

func TestRandomConnectionReproducible(t *testing.T) {
	draw := func(j *junction.Junction) []int32 {
		out := make([]int32, 0, 20)
		for i := 0; i < 20; i++ {
			c, err := j.GetRandomConnectionFor(10)
			require.NoError(t, err)
			out = append(out, c.ConnectingRoad)
		}
		return out
	}
	a := draw(threeWay(t, newManager()))
	j := threeWay(t, newManager())
	assert.Equal(t, a, draw(j))
	j.Reseed()
	assert.Equal(t, a, draw(j))
}

func TestNoConnection(t *testing.T) {
	j := threeWay(t, newManager())
	_, err := j.GetRandomConnectionFor(99)
	assert.True(t, errors.Is(err, entity.ErrNoConnection))
	_, err = j.FirstConnectionFor(99)
	assert.True(t, errors.Is(err, entity.ErrNoConnection))

	c, err := j.FirstConnectionFor(10)
	require.NoError(t, err)
	assert.Equal(t, int32(20), c.ConnectingRoad)
}

func TestConnectionEditing(t *testing.T) {
	j := threeWay(t, newManager())
	require.Len(t, j.Connections(), 4)
	assert.Equal(t, int32(3), j.Connections()[3].ID)

	err := j.AddConnectionInstance(&entity.JunctionConnection{ID: 2, IncomingRoad: 12, ConnectingRoad: 24})
	assert.True(t, errors.Is(err, entity.ErrDuplicateID))

	require.NoError(t, j.AddLaneLink(0, -1, -1))
	c, ok := j.Connection(0)
	require.True(t, ok)
	assert.Equal(t, []entity.LaneLink{{From: -1, To: -1}}, c.LaneLinks)
	assert.Error(t, j.AddLaneLink(42, -1, -1))

	assert.Equal(t, 3, j.RemoveConnectionsForRoad(10))
	assert.Equal(t, 1, j.RemoveConnectionsForRoad(23))
	assert.Empty(t, j.Connections())
	assert.False(t, j.RemoveConnection(0))
}

func TestManager(t *testing.T) {
	m := newManager()
	threeWay(t, m)
	_, err := m.CreateJunction(1, "")
	assert.True(t, errors.Is(err, entity.ErrDuplicateID))
	_, err = m.CreateJunction(5, "")
	require.NoError(t, err)
	assert.Equal(t, int32(6), m.NextID())

	_, err = m.GetOrError(2)
	assert.True(t, errors.Is(err, entity.ErrJunctionNotFound))
	assert.Panics(t, func() { m.Get(2) })
	assert.Equal(t, int32(1), m.Get(1).ID())

	assert.Equal(t, 1, m.RemoveConnectionsForRoad(21))
	_, err = m.Remove(5)
	require.NoError(t, err)
	assert.Len(t, m.All(), 1)
	m.Clear()
	assert.Equal(t, 0, m.Len())
}
