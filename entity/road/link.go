package road

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
)

// Predecessor 前驱连接，没有时为nil
func (r *Road) Predecessor() *entity.RoadLink {
	return r.predecessor
}

// Successor 后继连接，没有时为nil
func (r *Road) Successor() *entity.RoadLink {
	return r.successor
}

// SetPredecessor 只修改前驱连接，不涉及对方道路与车道
func (r *Road) SetPredecessor(elementType entity.ElementType, elementID int32, contactPoint entity.ContactPoint) {
	r.predecessor = &entity.RoadLink{ElementType: elementType, ElementID: elementID, ContactPoint: contactPoint}
}

// SetSuccessor 只修改后继连接，不涉及对方道路与车道
func (r *Road) SetSuccessor(elementType entity.ElementType, elementID int32, contactPoint entity.ContactPoint) {
	r.successor = &entity.RoadLink{ElementType: elementType, ElementID: elementID, ContactPoint: contactPoint}
}

func (r *Road) ClearPredecessor() {
	r.predecessor = nil
}

func (r *Road) ClearSuccessor() {
	r.successor = nil
}

// neighborRoad 查找link指向的道路
func (r *Road) neighborRoad(id int32) (*Road, error) {
	other, err := r.ctx.RoadManager().GetOrError(id)
	if err != nil {
		return nil, err
	}
	return other.(*Road), nil
}

// setLaneLinks 设置车道段中非参考线车道的前驱/后继为 id*direction
func setLaneLinks(sec entity.ILaneSection, direction int32, successor bool) {
	if sec == nil {
		return
	}
	for _, l := range sec.LaneList() {
		if l.Side() == entity.LaneSideCenter {
			continue
		}
		if successor {
			l.SetSuccessor(l.ID() * direction)
		} else {
			l.SetPredecessor(l.ID() * direction)
		}
	}
}

// boundarySectionOrNil 连接点处的车道段，没有车道段时为nil
func boundarySectionOrNil(r *Road, contactPoint entity.ContactPoint) entity.ILaneSection {
	sec, err := r.BoundaryLaneSection(contactPoint)
	if err != nil {
		return nil
	}
	return sec
}

// AddPredecessor 建立前驱连接
// 功能：设置本道路前驱，同时设置对方道路的反向连接及两侧边界车道段的车道连接
// 参数：link-前驱；junction类型只设置连接本身
// 返回：对方道路不存在或连接点未指定时返回error，此时不做任何修改
// 算法说明：
// 1. 方向：对方终点相接（->->）为+1，对方起点相接（<-->）为-1
// 2. 对方起点相接：对方前驱设为本道路(START)，对方第一个车道段车道前驱设为id*方向
// 3. 对方终点相接：对方后继设为本道路(START)，对方最后一个车道段车道后继设为id*方向
// 4. 本道路第一个车道段车道前驱设为id*方向
func (r *Road) AddPredecessor(link entity.RoadLink) error {
	if link.ElementType == entity.ElementTypeJunction {
		r.SetPredecessor(link.ElementType, link.ElementID, link.ContactPoint)
		return nil
	}
	if link.ContactPoint != entity.ContactPointStart && link.ContactPoint != entity.ContactPointEnd {
		return fmt.Errorf("add predecessor %v to %v: unspecified contact point", &link, r)
	}
	neighbor, err := r.neighborRoad(link.ElementID)
	if err != nil {
		return fmt.Errorf("add predecessor to %v: %w", r, err)
	}
	direction := int32(-1)
	if link.ContactPoint == entity.ContactPointEnd {
		direction = 1
	}
	r.SetPredecessor(link.ElementType, link.ElementID, link.ContactPoint)
	switch link.ContactPoint {
	case entity.ContactPointStart:
		neighbor.SetPredecessor(entity.ElementTypeRoad, r.id, entity.ContactPointStart)
		setLaneLinks(boundarySectionOrNil(neighbor, entity.ContactPointStart), direction, false)
	case entity.ContactPointEnd:
		neighbor.SetSuccessor(entity.ElementTypeRoad, r.id, entity.ContactPointStart)
		setLaneLinks(boundarySectionOrNil(neighbor, entity.ContactPointEnd), direction, true)
	}
	setLaneLinks(boundarySectionOrNil(r, entity.ContactPointStart), direction, false)
	return nil
}

// AddSuccessor 建立后继连接
// 功能：与AddPredecessor对称
// 算法说明：
// 1. 方向：对方起点相接（->->）为+1，对方终点相接（-><-）为-1
// 2. 对方起点相接：对方前驱设为本道路(END)，对方第一个车道段车道前驱设为id*方向
// 3. 对方终点相接：对方后继设为本道路(END)，对方最后一个车道段车道后继设为id*方向
// 4. 本道路最后一个车道段车道后继设为id*方向
func (r *Road) AddSuccessor(link entity.RoadLink) error {
	if link.ElementType == entity.ElementTypeJunction {
		r.SetSuccessor(link.ElementType, link.ElementID, link.ContactPoint)
		return nil
	}
	if link.ContactPoint != entity.ContactPointStart && link.ContactPoint != entity.ContactPointEnd {
		return fmt.Errorf("add successor %v to %v: unspecified contact point", &link, r)
	}
	neighbor, err := r.neighborRoad(link.ElementID)
	if err != nil {
		return fmt.Errorf("add successor to %v: %w", r, err)
	}
	direction := int32(-1)
	if link.ContactPoint == entity.ContactPointStart {
		direction = 1
	}
	r.SetSuccessor(link.ElementType, link.ElementID, link.ContactPoint)
	switch link.ContactPoint {
	case entity.ContactPointStart:
		neighbor.SetPredecessor(entity.ElementTypeRoad, r.id, entity.ContactPointEnd)
		setLaneLinks(boundarySectionOrNil(neighbor, entity.ContactPointStart), direction, false)
	case entity.ContactPointEnd:
		neighbor.SetSuccessor(entity.ElementTypeRoad, r.id, entity.ContactPointEnd)
		setLaneLinks(boundarySectionOrNil(neighbor, entity.ContactPointEnd), direction, true)
	}
	setLaneLinks(boundarySectionOrNil(r, entity.ContactPointEnd), direction, true)
	return nil
}

// IsPredecessor other是否为本道路的前驱道路
func (r *Road) IsPredecessor(other entity.IRoad) bool {
	return isRoadLinkTo(r.predecessor, other.ID())
}

// IsSuccessor other是否为本道路的后继道路
func (r *Road) IsSuccessor(other entity.IRoad) bool {
	return isRoadLinkTo(r.successor, other.ID())
}

func isRoadLinkTo(link *entity.RoadLink, id int32) bool {
	return link != nil && link.ElementType == entity.ElementTypeRoad && link.ElementID == id
}

// RemoveConnection 删除本道路与other之间的连接（双向，只修改link）
func (r *Road) RemoveConnection(other *Road) {
	if r.IsPredecessor(other) {
		r.predecessor = nil
	} else if r.IsSuccessor(other) {
		r.successor = nil
	}
	if other.IsPredecessor(r) {
		other.predecessor = nil
	} else if other.IsSuccessor(r) {
		other.successor = nil
	}
}

// RemovePredecessor 删除前驱连接，对方道路指向本道路的连接一并删除
// 说明：junction类型的前驱保持不变
func (r *Road) RemovePredecessor() {
	r.removeLink(&r.predecessor)
}

// RemoveSuccessor 删除后继连接，对方道路指向本道路的连接一并删除
func (r *Road) RemoveSuccessor() {
	r.removeLink(&r.successor)
}

func (r *Road) removeLink(link **entity.RoadLink) {
	cur := *link
	if cur == nil || cur.ElementType == entity.ElementTypeJunction {
		return
	}
	*link = nil
	neighbor, err := r.neighborRoad(cur.ElementID)
	if err != nil {
		log.Warnf("remove link of %v: %v", r, err)
		return
	}
	switch cur.ContactPoint {
	case entity.ContactPointStart:
		if isRoadLinkTo(neighbor.predecessor, r.id) {
			neighbor.predecessor = nil
		}
	default:
		if isRoadLinkTo(neighbor.successor, r.id) {
			neighbor.successor = nil
		}
	}
}

// roadsByIncoming 路口中以本道路为incoming road的连接道路
func (r *Road) roadsByIncoming(junctionID int32) []entity.IRoad {
	j, err := r.ctx.JunctionManager().GetOrError(junctionID)
	if err != nil {
		log.Warnf("%v: %v", r, err)
		return nil
	}
	conns := lo.Filter(j.Connections(), func(c *entity.JunctionConnection, _ int) bool {
		return c.IncomingRoad == r.id
	})
	return lo.FilterMap(conns, func(c *entity.JunctionConnection, _ int) (entity.IRoad, bool) {
		road, err := r.ctx.RoadManager().GetOrError(c.ConnectingRoad)
		return road, err == nil
	})
}

// linkedRoads link指向的道路：道路类型为该道路，路口类型为路口中以本道路为incoming的连接道路
func (r *Road) linkedRoads(link *entity.RoadLink) []entity.IRoad {
	switch {
	case link == nil:
		return nil
	case link.ElementType == entity.ElementTypeJunction:
		return r.roadsByIncoming(link.ElementID)
	default:
		other, err := r.ctx.RoadManager().GetOrError(link.ElementID)
		if err != nil {
			log.Warnf("%v: %v", r, err)
			return nil
		}
		return []entity.IRoad{other}
	}
}

// SuccessorRoads 后继道路
func (r *Road) SuccessorRoads() []entity.IRoad {
	return r.linkedRoads(r.successor)
}

// PredecessorRoads 前驱道路
func (r *Road) PredecessorRoads() []entity.IRoad {
	return r.linkedRoads(r.predecessor)
}
