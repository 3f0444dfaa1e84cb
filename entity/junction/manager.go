package junction

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/utils"
)

// Junction管理器
type JunctionManager struct {
	ctx entity.IMapContext

	data      map[int32]*Junction
	junctions []*Junction // 按ID升序
}

// NewManager 创建Junction管理器实例
// 功能：初始化Junction管理器，创建内部数据结构
// 参数：ctx-路网上下文
// 返回：新创建的Junction管理器实例
func NewManager(ctx entity.IMapContext) *JunctionManager {
	return &JunctionManager{
		ctx:       ctx,
		data:      make(map[int32]*Junction),
		junctions: make([]*Junction, 0),
	}
}

// CreateJunction 创建并注册路口，ID重复时返回error
func (m *JunctionManager) CreateJunction(id int32, name string) (*Junction, error) {
	if _, ok := m.data[id]; ok {
		return nil, fmt.Errorf("create junction %d: %w", id, entity.ErrDuplicateID)
	}
	j := newJunction(m.ctx, id, name)
	m.junctions = utils.InsertSorted(m.junctions, j)
	m.data = lo.SliceToMap(m.junctions, func(j *Junction) (int32, *Junction) {
		return j.id, j
	})
	return j, nil
}

// NextID 比现有最大ID大1的ID
func (m *JunctionManager) NextID() int32 {
	return utils.NextID(m.junctions)
}

// Get 根据ID获取Junction实例
// 功能：通过Junction ID查找对应的Junction对象，如果不存在则panic
// 参数：id-Junction的唯一标识符
// 返回：对应的Junction实例，如果不存在则panic
func (m *JunctionManager) Get(id int32) entity.IJunction {
	if junction, ok := m.data[id]; !ok {
		log.Panicf("no id %d in junction data", id)
		return nil
	} else {
		return junction
	}
}

// GetOrError 根据ID获取Junction实例（带错误处理）
// 功能：通过Junction ID查找对应的Junction对象，如果不存在则返回错误
// 参数：id-Junction的唯一标识符
// 返回：Junction实例和错误信息，如果不存在则返回nil和错误
func (m *JunctionManager) GetOrError(id int32) (entity.IJunction, error) {
	if junction, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in junction data: %w", id, entity.ErrJunctionNotFound)
	} else {
		return junction, nil
	}
}

// Junction 根据ID获取具体类型的Junction
func (m *JunctionManager) Junction(id int32) (*Junction, error) {
	if junction, ok := m.data[id]; ok {
		return junction, nil
	}
	return nil, fmt.Errorf("no id %d in junction data: %w", id, entity.ErrJunctionNotFound)
}

// All 全部路口，按ID升序
func (m *JunctionManager) All() []entity.IJunction {
	return lo.Map(m.junctions, func(j *Junction, _ int) entity.IJunction { return j })
}

// Junctions 全部路口，按ID升序（只读）
func (m *JunctionManager) Junctions() []*Junction {
	return m.junctions
}

func (m *JunctionManager) Len() int {
	return len(m.junctions)
}

// Find 找出ID对应的路口，ids为空时返回全部路口
func (m *JunctionManager) Find(ids []int32) ([]*Junction, []int32) {
	return utils.Find(m.data, m.junctions, ids)
}

// Remove 注销路口
func (m *JunctionManager) Remove(id int32) (*Junction, error) {
	j, ok := m.data[id]
	if !ok {
		return nil, fmt.Errorf("remove junction %d: %w", id, entity.ErrJunctionNotFound)
	}
	delete(m.data, id)
	m.junctions = lo.Without(m.junctions, j)
	return j, nil
}

// Clear 注销全部路口
func (m *JunctionManager) Clear() {
	m.data = make(map[int32]*Junction)
	m.junctions = m.junctions[:0]
}

// RemoveConnectionsForRoad 在所有路口中删除涉及roadID的连接，返回删除数量
func (m *JunctionManager) RemoveConnectionsForRoad(roadID int32) int {
	return lo.SumBy(m.junctions, func(j *Junction) int { return j.RemoveConnectionsForRoad(roadID) })
}

// Reseed 全部路口的随机数引擎回到初始状态
func (m *JunctionManager) Reseed() {
	for _, j := range m.junctions {
		j.Reseed()
	}
}
