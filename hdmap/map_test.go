package hdmap_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
	"github.com/tsinghua-fib-lab/odrmap/hdmap"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
	"github.com/tsinghua-fib-lab/odrmap/utils/input"
)

const fixture = "../utils/input/testdata/simple.yaml"

// loadMap 加载T形路口：道路1经路口100左转(2)到道路3，或直行(4)到道路5
func loadMap(t *testing.T, rc *config.RuntimeConfig) (*hdmap.Map, *input.Document) {
	t.Helper()
	doc, err := input.LoadFile(fixture)
	require.NoError(t, err)
	m := hdmap.New(rc)
	require.NoError(t, m.Load(doc))
	return m, doc
}

func mustRoad(t *testing.T, m *hdmap.Map, id int32) *road.Road {
	t.Helper()
	r, err := m.Roads().Road(id)
	require.NoError(t, err)
	return r
}

func roadIDs(roads []entity.IRoad) []int32 {
	out := make([]int32, len(roads))
	for i, r := range roads {
		out[i] = r.ID()
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func TestLoad(t *testing.T) {
	m, _ := loadMap(t, nil)
	assert.Equal(t, 5, m.Roads().Len())
	assert.Equal(t, 1, m.Junctions().Len())
	assert.Equal(t, "t-junction", m.Header().Name)

	r1 := mustRoad(t, m, 1)
	assert.InDelta(t, 100, r1.Length(), 1e-12)
	assert.Equal(t, []int32{2, 4}, roadIDs(r1.SuccessorRoads()))
	assert.Equal(t, []int32{3}, roadIDs(mustRoad(t, m, 2).SuccessorRoads()))

	pos, err := r1.GetRoadCoordAt(50, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, pos.Z, 1e-9)

	end, err := mustRoad(t, m, 2).GetEndCoord()
	require.NoError(t, err)
	assert.InDelta(t, 110, end.X, 1e-6)
	assert.InDelta(t, 10, end.Y, 1e-6)

	assert.InDelta(t, 30, r1.MaxSpeedAt(10, laneID(-1)), 1e-9)
	assert.InDelta(t, 50, r1.MaxSpeedAt(10, nil), 1e-9)
}

func laneID(id int32) *int32 { return &id }

func TestLoadErrors(t *testing.T) {
	doc, err := input.LoadFile(fixture)
	require.NoError(t, err)
	doc.Roads = append(doc.Roads, doc.Roads[0])
	assert.True(t, errors.Is(hdmap.New(nil).Load(doc), entity.ErrDuplicateID))

	doc, err = input.LoadFile(fixture)
	require.NoError(t, err)
	doc.Roads[0].PlanView[0].Length = 0
	assert.True(t, errors.Is(hdmap.New(nil).Load(doc), entity.ErrDegenerateGeometry))

	doc, err = input.LoadFile(fixture)
	require.NoError(t, err)
	doc.Roads[0].Successor.ElementType = "bridge"
	assert.Error(t, hdmap.New(nil).Load(doc))
}

func TestLoadFailureKeepsMap(t *testing.T) {
	broken := []struct {
		name   string
		mutate func(doc *input.Document)
	}{
		{"duplicate road", func(doc *input.Document) {
			doc.Roads = append(doc.Roads, doc.Roads[len(doc.Roads)-1])
		}},
		{"degenerate geometry", func(doc *input.Document) { doc.Roads[3].PlanView[0].Length = 0 }},
		{"unknown link type", func(doc *input.Document) { doc.Roads[4].Successor = &input.Link{ElementType: "bridge", ElementID: 1} }},
		{"duplicate junction", func(doc *input.Document) { doc.Junctions = append(doc.Junctions, doc.Junctions[0]) }},
	}
	for _, tc := range broken {
		t.Run(tc.name, func(t *testing.T) {
			m, _ := loadMap(t, nil)
			r1 := mustRoad(t, m, 1)
			before := m.Document()

			doc, err := input.LoadFile(fixture)
			require.NoError(t, err)
			doc.Header.Name = "replacement"
			tc.mutate(doc)
			require.Error(t, m.Load(doc))

			assert.Equal(t, 5, m.Roads().Len())
			assert.Equal(t, 1, m.Junctions().Len())
			assert.Equal(t, "t-junction", m.Header().Name)
			assert.Same(t, r1, mustRoad(t, m, 1))
			assert.Equal(t, before, m.Document())
			route, _, err := m.ShortestRoute(1, 3)
			require.NoError(t, err)
			assert.Equal(t, []int32{1, 2, 3}, route)
		})
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	m, doc := loadMap(t, nil)
	out := m.Document()

	sort.Slice(doc.Roads, func(i, j int) bool { return doc.Roads[i].ID < doc.Roads[j].ID })
	require.Len(t, out.Roads, len(doc.Roads))
	for i := range doc.Roads {
		assert.InDelta(t, mustRoad(t, m, doc.Roads[i].ID).Length(), out.Roads[i].Length, 1e-12)
		doc.Roads[i].Length = out.Roads[i].Length
	}
	assert.Equal(t, doc, out)

	again := hdmap.New(nil)
	require.NoError(t, again.Load(out))
	assert.Equal(t, out, again.Document())
}

func TestFindJunction(t *testing.T) {
	m, _ := loadMap(t, nil)
	j, ok := m.FindJunction(1, 3)
	require.True(t, ok)
	assert.Equal(t, int32(100), j.ID())

	// 只通过连接道路的后继匹配
	j, ok = m.FindJunction(3, 5)
	require.True(t, ok)
	assert.Equal(t, int32(100), j.ID())

	_, ok = m.FindJunction(42, 43)
	assert.False(t, ok)
}

func TestFindJunctionIgnoresJunctionLinks(t *testing.T) {
	m := hdmap.New(nil)
	j, err := m.CreateJunction(7, "")
	require.NoError(t, err)
	connecting, err := m.CreateRoad(2, "", 7)
	require.NoError(t, err)
	j.AddConnection(1, 2, entity.ContactPointStart)

	// 连接道路的前驱/后继是ID为9、10的路口，不是道路
	connecting.SetPredecessor(entity.ElementTypeJunction, 9, entity.ContactPointUnspecified)
	connecting.SetSuccessor(entity.ElementTypeJunction, 10, entity.ContactPointUnspecified)
	_, ok := m.FindJunction(9, 10)
	assert.False(t, ok)

	connecting.SetPredecessor(entity.ElementTypeRoad, 9, entity.ContactPointEnd)
	found, ok := m.FindJunction(9, 10)
	require.True(t, ok)
	assert.Equal(t, int32(7), found.ID())
}

func TestGetNextRoad(t *testing.T) {
	rc := config.DefaultRuntimeConfig()
	rc.C.Junction.Deterministic = true
	m, _ := loadMap(t, rc)
	r1 := mustRoad(t, m, 1)
	for i := 0; i < 10; i++ {
		next, err := m.GetNextRoad(r1, r1.Successor())
		require.NoError(t, err)
		assert.Equal(t, int32(2), next.ID())
	}

	r2 := mustRoad(t, m, 2)
	next, err := m.GetNextRoad(r2, r2.Successor())
	require.NoError(t, err)
	assert.Equal(t, int32(3), next.ID())

	_, err = m.GetNextRoad(r2, mustRoad(t, m, 3).Successor())
	assert.True(t, errors.Is(err, entity.ErrNoConnection))

	// 道路3不是路口100的incoming road
	r3 := mustRoad(t, m, 3)
	_, err = m.GetNextRoad(r3, r3.Predecessor())
	assert.True(t, errors.Is(err, entity.ErrNoConnection))
}

func TestGetNextRoadRandom(t *testing.T) {
	m, _ := loadMap(t, nil)
	r1 := mustRoad(t, m, 1)
	hits := make(map[int32]int)
	for i := 0; i < 300; i++ {
		next, err := m.GetNextRoad(r1, r1.Successor())
		require.NoError(t, err)
		hits[next.ID()]++
	}
	assert.Len(t, hits, 2)
	// 连接1的权重为2
	assert.Greater(t, hits[4], hits[2])
}

func TestShortestRoute(t *testing.T) {
	m, _ := loadMap(t, nil)
	route, length, err := m.ShortestRoute(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3}, route)
	assert.InDelta(t, 100+5*math.Pi+50, length, 1e-9)

	route, length, err = m.ShortestRoute(4, 4)
	require.NoError(t, err)
	assert.Equal(t, []int32{4}, route)
	assert.InDelta(t, 20, length, 1e-12)

	_, _, err = m.ShortestRoute(3, 1)
	assert.True(t, errors.Is(err, entity.ErrNoConnection))
	_, _, err = m.ShortestRoute(1, 42)
	assert.True(t, errors.Is(err, entity.ErrRoadNotFound))

	g := m.RoadGraph()
	assert.Equal(t, 5, g.Nodes().Len())
	assert.True(t, g.HasEdgeFromTo(1, 4))
	assert.False(t, g.HasEdgeFromTo(4, 1))
}

func TestNearestRoad(t *testing.T) {
	m, _ := loadMap(t, nil)
	cases := []struct {
		x, y float64
		road int32
		s, t float64
	}{
		{50, -2, 1, 50, -2},
		{150, 1, 5, 30, 1},
		{111, 40, 3, 30, -1},
	}
	for _, c := range cases {
		r, pos, err := m.NearestRoad(c.x, c.y)
		require.NoError(t, err)
		assert.Equal(t, c.road, r.ID(), "(%v, %v)", c.x, c.y)
		assert.InDelta(t, c.s, pos.S, 1e-4)
		assert.InDelta(t, c.t, pos.T, 1e-4)
	}

	_, _, err := hdmap.New(nil).NearestRoad(0, 0)
	assert.True(t, errors.Is(err, entity.ErrRoadNotFound))
}

func TestRemoveRoad(t *testing.T) {
	m, _ := loadMap(t, nil)
	require.NoError(t, m.RemoveRoad(1))
	assert.Nil(t, mustRoad(t, m, 2).Predecessor())
	assert.Nil(t, mustRoad(t, m, 4).Predecessor())
	j, err := m.Junctions().Junction(100)
	require.NoError(t, err)
	assert.Empty(t, j.Connections())
	assert.True(t, errors.Is(m.RemoveRoad(1), entity.ErrRoadNotFound))

	// 删除后空间索引不再返回该道路
	r, _, err := m.NearestRoad(50, 0)
	require.NoError(t, err)
	assert.NotEqual(t, int32(1), r.ID())
}

func TestRemoveJunction(t *testing.T) {
	m, _ := loadMap(t, nil)
	require.NoError(t, m.RemoveJunction(100))
	assert.Nil(t, mustRoad(t, m, 1).Successor())
	assert.Nil(t, mustRoad(t, m, 3).Predecessor())
	assert.False(t, mustRoad(t, m, 2).IsJunction())
	assert.NotNil(t, mustRoad(t, m, 2).Predecessor())
	assert.True(t, errors.Is(m.RemoveJunction(100), entity.ErrJunctionNotFound))

	m.Clear()
	assert.Equal(t, 0, m.Roads().Len())
	assert.Equal(t, 0, m.Junctions().Len())
}

func TestCutRoadThroughJunction(t *testing.T) {
	m, _ := loadMap(t, nil)
	tail, err := m.CutRoad(1, 40)
	require.NoError(t, err)
	assert.Equal(t, int32(6), tail.ID())
	assert.Equal(t, &entity.RoadLink{ElementType: entity.ElementTypeJunction, ElementID: 100}, tail.Successor())
	assert.Equal(t, int32(6), mustRoad(t, m, 2).Predecessor().ElementID)
	require.Len(t, tail.Signals(), 1)
	assert.InDelta(t, 55, tail.Signals()[0].S, 1e-12)

	route, length, err := m.ShortestRoute(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 6, 2, 3}, route)
	assert.InDelta(t, 100+5*math.Pi+50, length, 1e-9)

	j, ok := m.FindJunction(6, 3)
	require.True(t, ok)
	assert.Equal(t, int32(100), j.ID())

	r, pos, err := m.NearestRoad(70, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(6), r.ID())
	assert.InDelta(t, 30, pos.S, 1e-4)
}

func TestGeoJSON(t *testing.T) {
	m, _ := loadMap(t, nil)
	fc := m.GeoJSON(0)
	kinds := make(map[string]int)
	for _, f := range fc.Features {
		kinds[f.Properties["kind"].(string)]++
	}
	assert.Equal(t, 5, kinds[hdmap.FeatureReferenceLine])
	assert.Equal(t, 6, kinds[hdmap.FeatureLaneBoundary])

	data, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FeatureCollection"`)
}
