package hdmap

import (
	"fmt"

	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/junction"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// FindJunction 找到连接incoming与outgoing的路口
// 功能：按ID顺序扫描路口的连接，返回第一个满足以下任一条件的路口
// 1. 连接的incoming road是incoming或outgoing
// 2. 连接道路的前驱是incoming
// 3. 连接道路的后继是outgoing
// 返回：路口；没有匹配时返回false
func (m *Map) FindJunction(incoming, outgoing int32) (*junction.Junction, bool) {
	for _, j := range m.junctionManager.Junctions() {
		for _, c := range j.Connections() {
			if c.IncomingRoad == incoming || c.IncomingRoad == outgoing {
				return j, true
			}
			connecting, err := m.roadManager.Road(c.ConnectingRoad)
			if err != nil {
				continue
			}
			if isLinkTo(connecting.Predecessor(), entity.ElementTypeRoad, incoming) {
				return j, true
			}
			if isLinkTo(connecting.Successor(), entity.ElementTypeRoad, outgoing) {
				return j, true
			}
		}
	}
	return nil, false
}

// GetNextRoad 沿link离开道路r后进入的道路
// 功能：道路类型的link直接返回对方道路；路口类型在以r为incoming road的连接中选择一个，返回其连接道路
// 参数：r-当前道路，link-r的前驱或后继
// 返回：下一条道路；link为空、对象不存在或路口中没有可用连接时返回error
// 说明：配置Junction.Deterministic为true时总是选择第一个连接，否则按权重随机选择
func (m *Map) GetNextRoad(r *road.Road, link *entity.RoadLink) (*road.Road, error) {
	if link == nil {
		return nil, fmt.Errorf("next road of %v: %w", r, entity.ErrNoConnection)
	}
	if link.ElementType == entity.ElementTypeRoad {
		return m.roadManager.Road(link.ElementID)
	}
	j, err := m.junctionManager.Junction(link.ElementID)
	if err != nil {
		return nil, err
	}
	var c *entity.JunctionConnection
	if m.runtimeConfig.C.Junction.Deterministic {
		c, err = j.FirstConnectionFor(r.ID())
	} else {
		c, err = j.GetRandomConnectionFor(r.ID())
	}
	if err != nil {
		return nil, err
	}
	return m.roadManager.Road(c.ConnectingRoad)
}

// RoadGraph 道路连通图
// 功能：以道路ID为节点，道路到其每条后继道路（含经路口的连接道路）为有向边，边权为出发道路长度
func (m *Map) RoadGraph() *simple.WeightedDirectedGraph {
	g := simple.NewWeightedDirectedGraph(0, 0)
	for _, r := range m.roadManager.Roads() {
		g.AddNode(simple.Node(r.ID()))
	}
	for _, r := range m.roadManager.Roads() {
		for _, next := range r.SuccessorRoads() {
			if next.ID() == r.ID() {
				continue
			}
			g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(r.ID()), simple.Node(next.ID()), r.Length()))
		}
	}
	return g
}

// ShortestRoute 沿后继方向从from到to的最短道路序列
// 返回：道路ID序列（含首尾）与总长度（含首尾道路全长）；不可达时返回ErrNoConnection
// 算法说明：在RoadGraph上运行Dijkstra
func (m *Map) ShortestRoute(from, to int32) ([]int32, float64, error) {
	src, err := m.roadManager.Road(from)
	if err != nil {
		return nil, 0, err
	}
	dst, err := m.roadManager.Road(to)
	if err != nil {
		return nil, 0, err
	}
	if from == to {
		return []int32{from}, src.Length(), nil
	}
	g := m.RoadGraph()
	nodes, weight := path.DijkstraFrom(simple.Node(from), g).To(int64(to))
	if len(nodes) == 0 {
		return nil, 0, fmt.Errorf("route from road %d to %d: %w", from, to, entity.ErrNoConnection)
	}
	route := make([]int32, len(nodes))
	for i, n := range nodes {
		route[i] = int32(n.ID())
	}
	return route, weight + dst.Length(), nil
}
