package road_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
)

func TestManager(t *testing.T) {
	m := newTestMap()
	straightRoad(t, m, 3, 0, 10)
	straightRoad(t, m, 1, 0, 10)

	_, err := m.roads.CreateRoad(1, "", -1)
	assert.True(t, errors.Is(err, entity.ErrDuplicateID))

	assert.Equal(t, 2, m.roads.Len())
	assert.Equal(t, int32(1), m.roads.Roads()[0].ID())
	assert.Equal(t, int32(4), m.roads.NextID())

	_, err = m.roads.GetOrError(2)
	assert.True(t, errors.Is(err, entity.ErrRoadNotFound))
	assert.Panics(t, func() { m.roads.Get(2) })

	found, failed := m.roads.Find([]int32{1, 2})
	assert.Len(t, found, 1)
	assert.Equal(t, []int32{2}, failed)

	_, err = m.roads.Remove(3)
	require.NoError(t, err)
	assert.Len(t, m.roads.All(), 1)
	_, err = m.roads.Remove(3)
	assert.True(t, errors.Is(err, entity.ErrRoadNotFound))
}

func TestCut(t *testing.T) {
	m := newTestMap()
	a := straightRoad(t, m, 1, 0, 100)
	next := straightRoad(t, m, 3, 100, 20)
	addLanes(t, a.AddLaneSection(60, false))
	a.AddElevation(0, 1, 0.1, 0, 0)
	require.NoError(t, a.AddSignal(entity.Signal{ID: 1, S: 10}))
	require.NoError(t, a.AddSignal(entity.Signal{ID: 2, S: 80}))
	require.NoError(t, a.AddSuccessor(entity.RoadLink{ElementType: entity.ElementTypeRoad, ElementID: 3, ContactPoint: entity.ContactPointStart}))

	tail, err := m.roads.Cut(1, 50, 2)
	require.NoError(t, err)

	assert.InDelta(t, 50, a.Length(), 1e-9)
	assert.InDelta(t, 50, tail.Length(), 1e-9)
	require.Len(t, a.LaneSections(), 1)
	assert.InDelta(t, 50, a.LaneSections()[0].Length(), 1e-9)
	require.Len(t, tail.LaneSections(), 2)
	assert.InDelta(t, 0, tail.LaneSections()[0].S(), 1e-12)
	assert.InDelta(t, 10, tail.LaneSections()[0].Length(), 1e-9)
	assert.InDelta(t, 10, tail.LaneSections()[1].S(), 1e-12)
	assert.InDelta(t, 40, tail.LaneSections()[1].Length(), 1e-9)

	// 几何与高程在切分点连续
	end, err := a.GetEndCoord()
	require.NoError(t, err)
	start, err := tail.GetStartCoord()
	require.NoError(t, err)
	assert.InDelta(t, end.X, start.X, 1e-9)
	assert.InDelta(t, end.Z, start.Z, 1e-9)
	assert.InDelta(t, 6, start.Z, 1e-9)

	require.Len(t, a.Signals(), 1)
	require.Len(t, tail.Signals(), 1)
	assert.InDelta(t, 30, tail.Signals()[0].S, 1e-12)

	// 连接：1 -> 2 -> 3
	assert.Equal(t, &entity.RoadLink{ElementType: entity.ElementTypeRoad, ElementID: 2, ContactPoint: entity.ContactPointStart}, a.Successor())
	assert.Equal(t, &entity.RoadLink{ElementType: entity.ElementTypeRoad, ElementID: 1, ContactPoint: entity.ContactPointEnd}, tail.Predecessor())
	assert.Equal(t, &entity.RoadLink{ElementType: entity.ElementTypeRoad, ElementID: 3, ContactPoint: entity.ContactPointStart}, tail.Successor())
	assert.Equal(t, int32(2), next.Predecessor().ElementID)

	got, err := m.roads.GetOrError(2)
	require.NoError(t, err)
	assert.Same(t, tail, got.(*road.Road))

	_, err = m.roads.Cut(1, 10, 3)
	assert.True(t, errors.Is(err, entity.ErrDuplicateID))
	_, err = m.roads.Cut(1, 80, 9)
	assert.Error(t, err)
	assert.Equal(t, 3, m.roads.Len())
}

func TestCutKeepsLaneLinks(t *testing.T) {
	cases := []struct {
		name    string
		extra   []float64 // 额外车道段起点
		contact entity.ContactPoint
		want    map[int32]int32 // 新道路最后车道段的车道后继
	}{
		{"single section forward", nil, entity.ContactPointStart, map[int32]int32{1: 1, -1: -1}},
		{"single section reversed", nil, entity.ContactPointEnd, map[int32]int32{1: -1, -1: 1}},
		{"cut before last section", []float64{60}, entity.ContactPointEnd, map[int32]int32{1: -1, -1: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMap()
			a := straightRoad(t, m, 1, 0, 100)
			next := straightRoad(t, m, 3, 100, 20)
			for _, s := range tc.extra {
				addLanes(t, a.AddLaneSection(s, false))
			}
			require.NoError(t, a.AddSuccessor(entity.RoadLink{ElementType: entity.ElementTypeRoad, ElementID: 3, ContactPoint: tc.contact}))

			tail, err := m.roads.Cut(1, 30, 2)
			require.NoError(t, err)

			last := tail.LastLaneSection()
			for id, want := range tc.want {
				got, ok := mustLane(t, last, id).Successor()
				require.True(t, ok, "lane %d", id)
				assert.Equal(t, want, got, "lane %d", id)
			}
			for _, id := range []int32{1, -1} {
				pred, ok := mustLane(t, tail.FirstLaneSection(), id).Predecessor()
				require.True(t, ok)
				assert.Equal(t, id, pred)
				succ, ok := mustLane(t, a.LastLaneSection(), id).Successor()
				require.True(t, ok)
				assert.Equal(t, id, succ)
			}
			link := next.Predecessor()
			if tc.contact == entity.ContactPointEnd {
				link = next.Successor()
			}
			require.NotNil(t, link)
			assert.Equal(t, int32(2), link.ElementID)
		})
	}
}
