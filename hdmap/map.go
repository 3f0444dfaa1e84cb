// 路网容器：持有道路与路口管理器，实现跨实体的路口解析、删除、导入导出、空间索引与路网图
package hdmap

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/junction"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
	"github.com/tsinghua-fib-lab/odrmap/utils/config"
	"github.com/tsinghua-fib-lab/odrmap/utils/input"
)

// Map 路网
// 功能：道路与路口的唯一所有者，为实体提供IMapContext
// 说明：道路与路口只能通过Map或其管理器创建
type Map struct {
	header input.Header

	roadManager     *road.RoadManager
	junctionManager *junction.JunctionManager

	runtimeConfig *config.RuntimeConfig

	index *rtreego.Rtree // 基元包围盒索引，为nil时在查询前重建
}

// New 创建空路网
// 参数：rc-运行时配置，为nil时使用默认配置
func New(rc *config.RuntimeConfig) *Map {
	if rc == nil {
		rc = config.DefaultRuntimeConfig()
	}
	m := &Map{runtimeConfig: rc}
	m.roadManager = road.NewManager(m)
	m.junctionManager = junction.NewManager(m)
	return m
}

// 实现entity.IMapContext

func (m *Map) RoadManager() entity.IRoadManager {
	return m.roadManager
}

func (m *Map) JunctionManager() entity.IJunctionManager {
	return m.junctionManager
}

func (m *Map) RuntimeConfig() *config.RuntimeConfig {
	return m.runtimeConfig
}

// Roads 具体类型的道路管理器
func (m *Map) Roads() *road.RoadManager {
	return m.roadManager
}

// Junctions 具体类型的路口管理器
func (m *Map) Junctions() *junction.JunctionManager {
	return m.junctionManager
}

func (m *Map) Header() input.Header {
	return m.header
}

func (m *Map) SetHeader(h input.Header) {
	m.header = h
}

// CreateRoad 创建道路，参考线重新生成后空间索引自动失效
func (m *Map) CreateRoad(id int32, name string, junctionID int32) (*road.Road, error) {
	r, err := m.roadManager.CreateRoad(id, name, junctionID)
	if err != nil {
		return nil, err
	}
	m.watch(r)
	return r, nil
}

func (m *Map) watch(r *road.Road) {
	r.OnUpdated(func(*road.Road) { m.index = nil })
	m.index = nil
}

// CreateJunction 创建路口
func (m *Map) CreateJunction(id int32, name string) (*junction.Junction, error) {
	return m.junctionManager.CreateJunction(id, name)
}

// CutRoad 在s处切分道路，后半段使用新分配的ID
func (m *Map) CutRoad(id int32, s float64) (*road.Road, error) {
	out, err := m.roadManager.Cut(id, s, m.roadManager.NextID())
	if err != nil {
		return nil, err
	}
	m.watch(out)
	return out, nil
}

// RemoveRoad 删除道路
// 功能：删除路口中涉及该道路的连接，清除其他道路指向该道路的前驱/后继，最后注销道路
// 返回：道路不存在时返回ErrRoadNotFound
func (m *Map) RemoveRoad(id int32) error {
	if _, err := m.roadManager.Road(id); err != nil {
		return err
	}
	if n := m.junctionManager.RemoveConnectionsForRoad(id); n > 0 {
		log.Debugf("remove road %d: removed %d junction connections", id, n)
	}
	for _, other := range m.roadManager.Roads() {
		if other.ID() == id {
			continue
		}
		if isLinkTo(other.Predecessor(), entity.ElementTypeRoad, id) {
			other.ClearPredecessor()
		}
		if isLinkTo(other.Successor(), entity.ElementTypeRoad, id) {
			other.ClearSuccessor()
		}
	}
	if _, err := m.roadManager.Remove(id); err != nil {
		return err
	}
	m.index = nil
	return nil
}

// RemoveJunction 删除路口
// 功能：清除道路指向该路口的连接，路口内的连接道路变为普通道路
func (m *Map) RemoveJunction(id int32) error {
	if _, err := m.junctionManager.Remove(id); err != nil {
		return err
	}
	for _, r := range m.roadManager.Roads() {
		if isLinkTo(r.Predecessor(), entity.ElementTypeJunction, id) {
			r.ClearPredecessor()
		}
		if isLinkTo(r.Successor(), entity.ElementTypeJunction, id) {
			r.ClearSuccessor()
		}
		if r.JunctionID() == id {
			r.SetJunctionID(-1)
		}
	}
	return nil
}

// Clear 清空路网
func (m *Map) Clear() {
	m.header = input.Header{}
	m.roadManager.Clear()
	m.junctionManager.Clear()
	m.index = nil
}

func (m *Map) String() string {
	return fmt.Sprintf("Map{name=%q roads=%d junctions=%d}", m.header.Name, m.roadManager.Len(), m.junctionManager.Len())
}

func isLinkTo(link *entity.RoadLink, typ entity.ElementType, id int32) bool {
	return link != nil && link.ElementType == typ && link.ElementID == id
}
