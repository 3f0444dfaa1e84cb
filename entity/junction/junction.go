package junction

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/utils/randengine"
)

// Junction 路口
// 功能：保存incoming road到connecting road的连接表，并在多个可选连接中做随机选择
// 说明：随机数引擎以路口ID加配置中的种子偏移为种子，同一路网上的选择序列可复现
type Junction struct {
	ctx entity.IMapContext

	id          int32
	name        string
	connections []*entity.JunctionConnection // 按ID升序

	generator *randengine.Engine
}

// newJunction 创建空路口，由JunctionManager调用
func newJunction(ctx entity.IMapContext, id int32, name string) *Junction {
	return &Junction{
		ctx:         ctx,
		id:          id,
		name:        name,
		connections: make([]*entity.JunctionConnection, 0),
		generator:   randengine.New(seedOf(ctx, id)),
	}
}

func seedOf(ctx entity.IMapContext, id int32) uint64 {
	return uint64(id) + ctx.RuntimeConfig().C.Junction.SeedOffset
}

func (j *Junction) String() string {
	return fmt.Sprintf("Junction{id=%d name=%q connections=%d}", j.id, j.name, len(j.connections))
}

// ID 获取Junction的唯一标识符
// 返回：Junction的ID，如果Junction为nil则返回-1
func (j *Junction) ID() int32 {
	if j == nil {
		return -1
	}
	return j.id
}

func (j *Junction) Name() string {
	return j.name
}

func (j *Junction) SetName(name string) {
	j.name = name
}

// Connections 全部连接，按ID升序（只读）
func (j *Junction) Connections() []*entity.JunctionConnection {
	return j.connections
}

// Connection 根据ID获取连接
func (j *Junction) Connection(id int32) (*entity.JunctionConnection, bool) {
	return lo.Find(j.connections, func(c *entity.JunctionConnection) bool { return c.ID == id })
}

// AddConnection 添加连接
// 功能：以当前最大ID+1创建incoming road -> connecting road的连接
// 参数：incoming-进入路口的道路，connecting-路口内的连接道路，contactPoint-连接道路被进入的一端
func (j *Junction) AddConnection(incoming, connecting int32, contactPoint entity.ContactPoint) *entity.JunctionConnection {
	id := int32(0)
	if n := len(j.connections); n > 0 {
		id = j.connections[n-1].ID + 1
	}
	c := &entity.JunctionConnection{
		ID:             id,
		IncomingRoad:   incoming,
		ConnectingRoad: connecting,
		ContactPoint:   contactPoint,
		LaneLinks:      make([]entity.LaneLink, 0),
	}
	j.connections = append(j.connections, c)
	return c
}

// AddConnectionInstance 原样添加连接（导入路径），ID重复时返回error
func (j *Junction) AddConnectionInstance(c *entity.JunctionConnection) error {
	if _, ok := j.Connection(c.ID); ok {
		return fmt.Errorf("connection %d of %v: %w", c.ID, j, entity.ErrDuplicateID)
	}
	j.connections = append(j.connections, c)
	j.SortConnections()
	return nil
}

// AddLaneLink 为连接添加车道映射
func (j *Junction) AddLaneLink(connectionID, from, to int32) error {
	c, ok := j.Connection(connectionID)
	if !ok {
		return fmt.Errorf("connection %d of %v: %w", connectionID, j, entity.ErrNoConnection)
	}
	c.LaneLinks = append(c.LaneLinks, entity.LaneLink{From: from, To: to})
	return nil
}

// RemoveConnection 根据ID删除连接
func (j *Junction) RemoveConnection(id int32) bool {
	n := len(j.connections)
	j.connections = lo.Reject(j.connections, func(c *entity.JunctionConnection, _ int) bool { return c.ID == id })
	return len(j.connections) != n
}

// RemoveConnectionsForRoad 删除incoming road或connecting road为roadID的连接
// 返回：删除的连接数量
func (j *Junction) RemoveConnectionsForRoad(roadID int32) int {
	n := len(j.connections)
	j.connections = lo.Reject(j.connections, func(c *entity.JunctionConnection, _ int) bool {
		return c.IncomingRoad == roadID || c.ConnectingRoad == roadID
	})
	if removed := n - len(j.connections); removed > 0 {
		log.Debugf("%v: removed %d connections of road %d", j, removed, roadID)
		return removed
	}
	return 0
}

// SortConnections 按ID升序排列连接
func (j *Junction) SortConnections() {
	sort.SliceStable(j.connections, func(a, b int) bool { return j.connections[a].ID < j.connections[b].ID })
}

// ConnectionsFor incoming road为roadID的全部连接，保持连接顺序
func (j *Junction) ConnectionsFor(roadID int32) []*entity.JunctionConnection {
	return lo.Filter(j.connections, func(c *entity.JunctionConnection, _ int) bool { return c.IncomingRoad == roadID })
}

// FirstConnectionFor incoming road为roadID的第一个连接
// 返回：没有匹配连接时返回ErrNoConnection
func (j *Junction) FirstConnectionFor(roadID int32) (*entity.JunctionConnection, error) {
	conns := j.ConnectionsFor(roadID)
	if len(conns) == 0 {
		return nil, fmt.Errorf("road %d in %v: %w", roadID, j, entity.ErrNoConnection)
	}
	return conns[0], nil
}

// GetRandomConnectionFor 在incoming road为roadID的连接中按权重随机选择一个
// 功能：离开roadID进入路口时决定走哪条连接道路
// 返回：没有匹配连接时返回ErrNoConnection
// 算法说明：
// 1. 筛选incoming road为roadID的连接
// 2. 权重<=0的连接按1处理，因此未设置权重时为等概率
// 3. 用路口自身的随机数引擎按离散分布抽样
func (j *Junction) GetRandomConnectionFor(roadID int32) (*entity.JunctionConnection, error) {
	conns := j.ConnectionsFor(roadID)
	if len(conns) == 0 {
		return nil, fmt.Errorf("road %d in %v: %w", roadID, j, entity.ErrNoConnection)
	}
	weights := lo.Map(conns, func(c *entity.JunctionConnection, _ int) float64 {
		if c.Weight <= 0 {
			return 1
		}
		return c.Weight
	})
	return conns[j.generator.DiscreteDistributionSafe(weights)], nil
}

// Reseed 随机数引擎回到初始状态，之后的随机选择序列与新建路口时相同
func (j *Junction) Reseed() {
	j.generator.Reseed(seedOf(j.ctx, j.id))
}
