package lane

import (
	"fmt"

	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// Lane 车道实体
// 功能：表示车道段中的一条车道，包含宽度、标线、高度、限速、通行限制、路面材料等记录
// 说明：ID的符号决定所在侧（>0左侧，<0右侧，0为参考线），记录的S均相对所在车道段起点
type Lane struct {
	id        int32
	side      entity.LaneSide
	typ       entity.LaneType
	level     bool  // 为true时不参与超高/横坡
	roadID    int32 // 所在道路ID
	sectionID int32 // 所在车道段ID

	predecessor *int32 // 前驱车道ID（相对相邻道路/车道段）
	successor   *int32 // 后继车道ID

	widths    poly3.Records
	roadMarks []RoadMark
	heights   []Height
	speeds    []Speed
	accesses  []Access
	materials []Material
}

// New 创建车道
// 说明：一般通过Section.AddLane创建，直接调用时不会建立与车道段的关系
func New(side entity.LaneSide, id int32, typ entity.LaneType, level bool, roadID, sectionID int32) *Lane {
	return &Lane{
		id:        id,
		side:      side,
		typ:       typ,
		level:     level,
		roadID:    roadID,
		sectionID: sectionID,
	}
}

func (l *Lane) String() string {
	return fmt.Sprintf("Lane{id=%d side=%v type=%v road=%d section=%d}", l.id, l.side, l.typ, l.roadID, l.sectionID)
}

// 获取Lane ID
func (l *Lane) ID() int32 {
	return l.id
}

// 获取所在侧
func (l *Lane) Side() entity.LaneSide {
	return l.side
}

// 获取车道类型
func (l *Lane) Type() entity.LaneType {
	return l.typ
}

// SetType 修改车道类型
func (l *Lane) SetType(typ entity.LaneType) {
	l.typ = typ
}

// Level 是否保持水平
func (l *Lane) Level() bool {
	return l.level
}

// RoadID 所在道路ID
func (l *Lane) RoadID() int32 {
	return l.roadID
}

// SectionID 所在车道段ID
func (l *Lane) SectionID() int32 {
	return l.sectionID
}

// Predecessor 前驱车道ID
func (l *Lane) Predecessor() (int32, bool) {
	if l.predecessor == nil {
		return 0, false
	}
	return *l.predecessor, true
}

// Successor 后继车道ID
func (l *Lane) Successor() (int32, bool) {
	if l.successor == nil {
		return 0, false
	}
	return *l.successor, true
}

func (l *Lane) SetPredecessor(id int32) {
	l.predecessor = &id
}

func (l *Lane) SetSuccessor(id int32) {
	l.successor = &id
}

func (l *Lane) ClearPredecessor() {
	l.predecessor = nil
}

func (l *Lane) ClearSuccessor() {
	l.successor = nil
}

// Widths 宽度记录（只读）
func (l *Lane) Widths() poly3.Records {
	return l.widths
}

// AddWidthRecord 添加宽度记录，不重新拟合系数
// 说明：导入路径使用，保留文件中的系数
func (l *Lane) AddWidthRecord(sOffset, a, b, c, d float64) int {
	return l.widths.Add(poly3.Record{S: sOffset, A: a, B: b, C: c, D: d})
}

// RemoveWidthRecord 删除sOffset处的宽度记录
func (l *Lane) RemoveWidthRecord(sOffset float64) bool {
	return l.widths.Remove(sOffset)
}

// ClearWidths 删除全部宽度记录
func (l *Lane) ClearWidths() {
	l.widths = l.widths[:0]
}

// WidthAt 计算车道段内ds处的宽度
// 功能：取SOffset<=ds的最后一条宽度记录并计算多项式，没有记录时为0
// 说明：结果为负说明数据有误，记录警告后原样返回
func (l *Lane) WidthAt(ds float64) float64 {
	w := l.widths.ValueAt(ds)
	if w < 0 {
		log.Warnf("%v: negative width %v at ds=%v", l, w, ds)
	}
	return w
}

// RoadMarks 标线记录（只读）
func (l *Lane) RoadMarks() []RoadMark {
	return l.roadMarks
}

func (l *Lane) AddRoadMark(r RoadMark) {
	l.roadMarks = insertRecord(l.roadMarks, r)
}

func (l *Lane) RemoveRoadMark(sOffset float64) bool {
	var ok bool
	l.roadMarks, ok = removeRecord(l.roadMarks, sOffset)
	return ok
}

// RoadMarkAt ds处生效的标线
func (l *Lane) RoadMarkAt(ds float64) (RoadMark, bool) {
	return recordAt(l.roadMarks, ds)
}

func (l *Lane) Heights() []Height {
	return l.heights
}

func (l *Lane) AddHeight(r Height) {
	l.heights = insertRecord(l.heights, r)
}

func (l *Lane) HeightAt(ds float64) (Height, bool) {
	return recordAt(l.heights, ds)
}

func (l *Lane) Speeds() []Speed {
	return l.speeds
}

func (l *Lane) AddSpeed(r Speed) {
	l.speeds = insertRecord(l.speeds, r)
}

// SpeedAt ds处的限速
func (l *Lane) SpeedAt(ds float64) (Speed, bool) {
	return recordAt(l.speeds, ds)
}

func (l *Lane) Accesses() []Access {
	return l.accesses
}

func (l *Lane) AddAccess(r Access) {
	l.accesses = insertRecord(l.accesses, r)
}

func (l *Lane) AccessAt(ds float64) (Access, bool) {
	return recordAt(l.accesses, ds)
}

func (l *Lane) Materials() []Material {
	return l.materials
}

func (l *Lane) AddMaterial(r Material) {
	l.materials = insertRecord(l.materials, r)
}

func (l *Lane) MaterialAt(ds float64) (Material, bool) {
	return recordAt(l.materials, ds)
}

// CloneAtS 复制车道，记录以ds为新起点
// 功能：深拷贝车道，ds处生效的记录移到SOffset=0，之前的记录丢弃，前驱/后继被清空
// 参数：id-新车道ID，ds-相对原车道段起点的偏移
func (l *Lane) CloneAtS(id int32, ds float64) *Lane {
	if ds < 0 {
		ds = 0
	}
	return &Lane{
		id:        id,
		side:      entity.SideOf(id),
		typ:       l.typ,
		level:     l.level,
		roadID:    l.roadID,
		sectionID: l.sectionID,
		widths:    l.widths.Shift(-ds),
		roadMarks: rebaseRecords(l.roadMarks, ds, func(r *RoadMark, s float64) { r.SOffset = s }),
		heights:   rebaseRecords(l.heights, ds, func(r *Height, s float64) { r.SOffset = s }),
		speeds:    rebaseRecords(l.speeds, ds, func(r *Speed, s float64) { r.SOffset = s }),
		accesses:  rebaseRecords(l.accesses, ds, func(r *Access, s float64) { r.SOffset = s }),
		materials: rebaseRecords(l.materials, ds, func(r *Material, s float64) { r.SOffset = s }),
	}
}

// renumber 修改车道ID，所在侧随之更新
func (l *Lane) renumber(id int32) {
	l.id = id
	l.side = entity.SideOf(id)
}
