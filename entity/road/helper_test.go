package road_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
)

// fakeJunctions 只包含连接表的路口管理器
type fakeJunctions struct {
	data map[int32]*fakeJunction
}

func (m *fakeJunctions) Get(id int32) entity.IJunction {
	j, err := m.GetOrError(id)
	if err != nil {
		panic(err)
	}
	return j
}

func (m *fakeJunctions) GetOrError(id int32) (entity.IJunction, error) {
	if j, ok := m.data[id]; ok {
		return j, nil
	}
	return nil, fmt.Errorf("junction %d: %w", id, entity.ErrJunctionNotFound)
}

func (m *fakeJunctions) All() []entity.IJunction {
	out := make([]entity.IJunction, 0, len(m.data))
	for _, j := range m.data {
		out = append(out, j)
	}
	return out
}

type fakeJunction struct {
	id    int32
	conns []*entity.JunctionConnection
}

func (j *fakeJunction) ID() int32                                { return j.id }
func (j *fakeJunction) Name() string                             { return "" }
func (j *fakeJunction) Connections() []*entity.JunctionConnection { return j.conns }
func (j *fakeJunction) RemoveConnectionsForRoad(int32) int       { return 0 }
func (j *fakeJunction) GetRandomConnectionFor(roadID int32) (*entity.JunctionConnection, error) {
	for _, c := range j.conns {
		if c.IncomingRoad == roadID {
			return c, nil
		}
	}
	return nil, entity.ErrNoConnection
}

// testMap 道路测试用的路网上下文
type testMap struct {
	roads     *road.RoadManager
	junctions *fakeJunctions
	rc        *config.RuntimeConfig
}

func (m *testMap) RoadManager() entity.IRoadManager         { return m.roads }
func (m *testMap) JunctionManager() entity.IJunctionManager { return m.junctions }
func (m *testMap) RuntimeConfig() *config.RuntimeConfig     { return m.rc }

func newTestMap() *testMap {
	m := &testMap{
		junctions: &fakeJunctions{data: make(map[int32]*fakeJunction)},
		rc:        config.DefaultRuntimeConfig(),
	}
	m.roads = road.NewManager(m)
	return m
}

// straightRoad 沿x轴方向、从(x0, 0)开始的直线道路，两侧各一条3.5m车道
func straightRoad(t *testing.T, m *testMap, id int32, x0, length float64) *road.Road {
	t.Helper()
	r, err := m.roads.CreateRoad(id, fmt.Sprintf("road-%d", id), -1)
	require.NoError(t, err)
	_, err = r.AddGeometryLine(0, x0, 0, 0, length)
	require.NoError(t, err)
	addLanes(t, r.AddLaneSection(0, false))
	return r
}

func addLanes(t *testing.T, sec *lane.Section) {
	t.Helper()
	_, err := sec.AddLane(entity.LaneSideCenter, 0, entity.LaneTypeNone, false, true)
	require.NoError(t, err)
	for _, id := range []int32{1, -1} {
		l, err := sec.AddLane(entity.SideOf(id), id, entity.LaneTypeDriving, false, true)
		require.NoError(t, err)
		l.AddWidthRecord(0, 3.5, 0, 0, 0)
	}
}

func mustLane(t *testing.T, sec *lane.Section, id int32) *lane.Lane {
	t.Helper()
	l, err := sec.Lane(id)
	require.NoError(t, err)
	return l
}
