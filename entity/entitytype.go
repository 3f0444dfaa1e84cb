package entity

import (
	"fmt"
	"math"
)

// ContactPoint 连接点，表示link连接到对方道路的起点还是终点
type ContactPoint int32

const (
	ContactPointUnspecified ContactPoint = iota
	ContactPointStart                    // 道路起点(s=0)
	ContactPointEnd                      // 道路终点(s=length)
)

func (c ContactPoint) String() string {
	switch c {
	case ContactPointStart:
		return "start"
	case ContactPointEnd:
		return "end"
	default:
		return ""
	}
}

// ParseContactPoint 将OpenDRIVE文本转换为ContactPoint，未知文本返回Unspecified
func ParseContactPoint(s string) ContactPoint {
	switch s {
	case "start":
		return ContactPointStart
	case "end":
		return ContactPointEnd
	default:
		return ContactPointUnspecified
	}
}

// ElementType link指向的对象类型
type ElementType int32

const (
	ElementTypeRoad ElementType = iota + 1
	ElementTypeJunction
)

func (t ElementType) String() string {
	switch t {
	case ElementTypeRoad:
		return "road"
	case ElementTypeJunction:
		return "junction"
	default:
		return ""
	}
}

// ParseElementType 将OpenDRIVE文本转换为ElementType
func ParseElementType(s string) (ElementType, error) {
	switch s {
	case "road":
		return ElementTypeRoad, nil
	case "junction":
		return ElementTypeJunction, nil
	default:
		return 0, fmt.Errorf("unknown element type %q", s)
	}
}

// LaneSide 车道所在侧，由车道ID的符号决定
type LaneSide int32

const (
	LaneSideLeft   LaneSide = 1  // 左侧，id > 0
	LaneSideCenter LaneSide = 0  // 参考线，id == 0
	LaneSideRight  LaneSide = -1 // 右侧，id < 0
)

func (s LaneSide) String() string {
	switch s {
	case LaneSideLeft:
		return "left"
	case LaneSideRight:
		return "right"
	default:
		return "center"
	}
}

// SideOf 根据车道ID返回所在侧
func SideOf(id int32) LaneSide {
	switch {
	case id > 0:
		return LaneSideLeft
	case id < 0:
		return LaneSideRight
	default:
		return LaneSideCenter
	}
}

// LaneType OpenDRIVE车道类型
type LaneType string

const (
	LaneTypeNone         LaneType = "none"
	LaneTypeDriving      LaneType = "driving"
	LaneTypeStop         LaneType = "stop"
	LaneTypeShoulder     LaneType = "shoulder"
	LaneTypeBiking       LaneType = "biking"
	LaneTypeSidewalk     LaneType = "sidewalk"
	LaneTypeBorder       LaneType = "border"
	LaneTypeRestricted   LaneType = "restricted"
	LaneTypeParking      LaneType = "parking"
	LaneTypeBidirection  LaneType = "bidirectional"
	LaneTypeMedian       LaneType = "median"
	LaneTypeEntry        LaneType = "entry"
	LaneTypeExit         LaneType = "exit"
	LaneTypeOnRamp       LaneType = "onRamp"
	LaneTypeOffRamp      LaneType = "offRamp"
	LaneTypeConnectRamp  LaneType = "connectingRamp"
	LaneTypeCurb         LaneType = "curb"
	LaneTypeRail         LaneType = "rail"
	LaneTypeTram         LaneType = "tram"
	LaneTypeSpecialRoute LaneType = "special1"
)

// WidthLocation 横向累计宽度的参考位置
type WidthLocation int32

const (
	WidthLocationStart  WidthLocation = iota // 靠近参考线的边缘
	WidthLocationCenter                      // 车道中心
	WidthLocationEnd                         // 远离参考线的边缘
)

// TrafficRule 通行规则
type TrafficRule string

const (
	TrafficRuleRHT TrafficRule = "RHT" // 右侧通行
	TrafficRuleLHT TrafficRule = "LHT" // 左侧通行
)

// Pos 道路坐标与世界坐标的组合
// 功能：同时记录(s,t)与(x,y,z,hdg)，GetRoadCoordAt等查询的返回值
type Pos struct {
	S   float64 // 沿参考线的弧长
	T   float64 // 横向偏移，左正右负
	X   float64
	Y   float64
	Z   float64
	Hdg float64 // 航向角(rad)
}

// AddLateralOffset 沿航向的法向(左侧为正)平移t
func (p *Pos) AddLateralOffset(t float64) *Pos {
	p.X += t * math.Cos(p.Hdg+math.Pi/2)
	p.Y += t * math.Sin(p.Hdg+math.Pi/2)
	p.T += t
	return p
}

func (p Pos) String() string {
	return fmt.Sprintf("Pos{s=%.3f t=%.3f x=%.3f y=%.3f z=%.3f hdg=%.4f}", p.S, p.T, p.X, p.Y, p.Z, p.Hdg)
}

// RoadLink 道路的前驱/后继连接
type RoadLink struct {
	ElementType  ElementType  // 连接对象类型（road/junction）
	ElementID    int32        // 连接对象ID
	ContactPoint ContactPoint // 连接到对方道路的哪一端，junction时可为空
}

func (l *RoadLink) String() string {
	if l == nil {
		return "RoadLink{nil}"
	}
	return fmt.Sprintf("RoadLink{%v %d %v}", l.ElementType, l.ElementID, l.ContactPoint)
}

// Clone 复制link
func (l *RoadLink) Clone() *RoadLink {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// LaneLink 路口连接中的车道映射
type LaneLink struct {
	From int32 // incoming road上的车道ID
	To   int32 // connecting road上的车道ID
}

// JunctionConnection 路口连接：incoming road -> connecting road
type JunctionConnection struct {
	ID             int32
	IncomingRoad   int32
	ConnectingRoad int32
	ContactPoint   ContactPoint // connecting road被进入的一端
	Weight         float64      // 随机选择的权重，<=0视为1
	LaneLinks      []LaneLink
}

// Signal 道路信号，核心模块不解释其含义
type Signal struct {
	ID          int32
	Name        string
	S           float64
	T           float64
	ZOffset     float64
	Dynamic     bool
	Orientation string
	Country     string
	Type        string
	Subtype     string
	Value       float64
	Unit        string
	Height      float64
	Width       float64
	Text        string
}

// Object 道路静态物体，核心模块不解释其含义
type Object struct {
	ID          int32
	Type        string
	Name        string
	S           float64
	T           float64
	ZOffset     float64
	Orientation string
	Length      float64
	Width       float64
	Height      float64
	Radius      float64
	Hdg         float64
}

// RoadWidth 道路某一位置的横向宽度
type RoadWidth struct {
	Total float64
	Left  float64
	Right float64
}

// entity/lane/lane.go的依赖倒置（跨道路连接时只需要的部分）
type ILane interface {
	ID() int32
	Side() LaneSide
	SetPredecessor(id int32) // 设置前驱车道ID（相对相邻道路）
	SetSuccessor(id int32)   // 设置后继车道ID（相对相邻道路）
}

// entity/lane/section.go的依赖倒置
type ILaneSection interface {
	ID() int32
	S() float64
	Length() float64
	LaneList() []ILane // 按ID降序排列的车道
}

// entity/road/road.go的依赖倒置
type IRoad interface {
	String() string

	ID() int32           // 获取Road ID
	Name() string        // 获取Road名称
	Length() float64     // 获取Road长度（几何长度之和）
	JunctionID() int32   // 所属路口ID，非路口内道路为-1
	Predecessor() *RoadLink
	Successor() *RoadLink

	SetPredecessor(elementType ElementType, elementID int32, contactPoint ContactPoint) // 仅修改link
	SetSuccessor(elementType ElementType, elementID int32, contactPoint ContactPoint)   // 仅修改link
	ClearPredecessor()
	ClearSuccessor()

	// 根据连接点返回边界车道段：START->第一个，END->最后一个
	BoundaryLaneSection(contactPoint ContactPoint) (ILaneSection, error)
	GetRoadCoordAt(s, t float64) (Pos, error)
}

// entity/junction/junction.go的依赖倒置
type IJunction interface {
	ID() int32
	Name() string
	Connections() []*JunctionConnection
	RemoveConnectionsForRoad(roadID int32) int // 删除涉及该道路的连接，返回删除数量
	GetRandomConnectionFor(roadID int32) (*JunctionConnection, error)
}
