package road

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/utils"
)

// RoadManager Road管理器
// 功能：管理所有Road实体，提供创建、查找、删除、切分等功能
type RoadManager struct {
	ctx entity.IMapContext

	data  map[int32]*Road
	roads []*Road // 按ID升序
}

// NewManager 创建Road管理器实例
func NewManager(ctx entity.IMapContext) *RoadManager {
	return &RoadManager{
		ctx:   ctx,
		data:  make(map[int32]*Road),
		roads: make([]*Road, 0),
	}
}

// CreateRoad 创建并注册道路
// 参数：id-道路ID，name-名称，junctionID-所属路口，-1表示不在路口内
// 返回：ID重复时返回error
func (m *RoadManager) CreateRoad(id int32, name string, junctionID int32) (*Road, error) {
	if _, ok := m.data[id]; ok {
		return nil, fmt.Errorf("create road %d: %w", id, entity.ErrDuplicateID)
	}
	r := newRoad(m.ctx, id, name, junctionID)
	m.add(r)
	return r, nil
}

func (m *RoadManager) add(r *Road) {
	m.data[r.id] = r
	m.roads = utils.InsertSorted(m.roads, r)
}

// NextID 比现有最大ID大1的ID
func (m *RoadManager) NextID() int32 {
	return utils.NextID(m.roads)
}

// Get 根据ID获取Road实例，如果不存在则panic
func (m *RoadManager) Get(id int32) entity.IRoad {
	if road, ok := m.data[id]; !ok {
		log.Panicf("no id %d in road data", id)
		return nil
	} else {
		return road
	}
}

// GetOrError 根据ID获取Road实例，如果不存在则返回错误
func (m *RoadManager) GetOrError(id int32) (entity.IRoad, error) {
	if road, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in road data: %w", id, entity.ErrRoadNotFound)
	} else {
		return road, nil
	}
}

// Road 根据ID获取具体类型的Road
func (m *RoadManager) Road(id int32) (*Road, error) {
	if road, ok := m.data[id]; ok {
		return road, nil
	}
	return nil, fmt.Errorf("no id %d in road data: %w", id, entity.ErrRoadNotFound)
}

// All 全部道路，按ID升序
func (m *RoadManager) All() []entity.IRoad {
	return lo.Map(m.roads, func(r *Road, _ int) entity.IRoad { return r })
}

// Roads 全部道路，按ID升序（只读）
func (m *RoadManager) Roads() []*Road {
	return m.roads
}

// Len 道路数量
func (m *RoadManager) Len() int {
	return len(m.roads)
}

// Find 找出ID对应的道路，ids为空时返回全部道路
func (m *RoadManager) Find(ids []int32) ([]*Road, []int32) {
	return utils.Find(m.data, m.roads, ids)
}

// Remove 注销道路
// 说明：只从管理器中删除，清理连接由hdmap.Map.RemoveRoad负责
func (m *RoadManager) Remove(id int32) (*Road, error) {
	r, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("remove road %d: %w", id, entity.ErrRoadNotFound)
	}
	delete(m.data, id)
	m.roads = lo.Without(m.roads, r)
	return r, nil
}

// Clear 注销全部道路
func (m *RoadManager) Clear() {
	m.data = make(map[int32]*Road)
	m.roads = m.roads[:0]
}

// Cut 在s处切分道路并注册后半段
// 功能：调用Road.CutAt，原后继连接转移到新道路，两段之间以 END->START 相接
// 参数：id-被切分道路，s-切分位置，newID-新道路ID
// 返回：新道路；ID重复、道路不存在或s不在道路内部时返回error，此时不做任何修改
// 说明：原后继为道路时，对方指向原道路的连接改为指向新道路；为路口时，
// 以原道路为incoming road且连接道路与原道路终点相接的连接改为新道路
func (m *RoadManager) Cut(id int32, s float64, newID int32) (*Road, error) {
	if _, ok := m.data[newID]; ok {
		return nil, fmt.Errorf("cut road %d: new road %d: %w", id, newID, entity.ErrDuplicateID)
	}
	r, err := m.Road(id)
	if err != nil {
		return nil, err
	}
	successors := laneSuccessors(r.LastLaneSection())
	out, err := r.CutAt(s, newID)
	if err != nil {
		return nil, err
	}
	m.add(out)
	// 新道路的最后一个车道段复制自原最后一个车道段，沿用其车道后继
	if last := out.LastLaneSection(); last != nil {
		for _, l := range last.Lanes() {
			if succ, ok := successors[l.ID()]; ok {
				l.SetSuccessor(succ)
			}
		}
	}

	if succ := r.successor; succ != nil {
		out.successor = succ.Clone()
		switch succ.ElementType {
		case entity.ElementTypeRoad:
			if other, ok := m.data[succ.ElementID]; ok {
				m.repointLink(other, id, newID, entity.ContactPointEnd)
			}
		case entity.ElementTypeJunction:
			m.repointJunction(succ.ElementID, id, newID)
		}
		r.successor = nil
	}
	if err := r.AddSuccessor(entity.RoadLink{
		ElementType:  entity.ElementTypeRoad,
		ElementID:    newID,
		ContactPoint: entity.ContactPointStart,
	}); err != nil {
		return nil, err
	}
	return out, nil
}

// laneSuccessors 车道段中各车道的后继车道ID
func laneSuccessors(sec *lane.Section) map[int32]int32 {
	out := make(map[int32]int32)
	if sec == nil {
		return out
	}
	for _, l := range sec.Lanes() {
		if succ, ok := l.Successor(); ok {
			out[l.ID()] = succ
		}
	}
	return out
}

// repointLink other中指向oldID的道路连接改为指向newID
func (m *RoadManager) repointLink(other *Road, oldID, newID int32, contactPoint entity.ContactPoint) {
	for _, link := range []*entity.RoadLink{other.predecessor, other.successor} {
		if isRoadLinkTo(link, oldID) && link.ContactPoint == contactPoint {
			link.ElementID = newID
		}
	}
}

// repointJunction 路口中与oldID终点相接的连接改为使用newID
func (m *RoadManager) repointJunction(junctionID, oldID, newID int32) {
	j, err := m.ctx.JunctionManager().GetOrError(junctionID)
	if err != nil {
		log.Warnf("cut road %d: %v", oldID, err)
		return
	}
	for _, conn := range j.Connections() {
		connecting, ok := m.data[conn.ConnectingRoad]
		if !ok {
			continue
		}
		touched := false
		for _, link := range []*entity.RoadLink{connecting.predecessor, connecting.successor} {
			if isRoadLinkTo(link, oldID) && link.ContactPoint == entity.ContactPointEnd {
				link.ElementID = newID
				touched = true
			}
		}
		if touched && conn.IncomingRoad == oldID {
			conn.IncomingRoad = newID
		}
	}
}
