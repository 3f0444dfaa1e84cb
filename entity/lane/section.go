package lane

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

const (
	nearestLaneThreshold = 0.5  // FindNearestLane允许的最大横向误差(m)
	intervalTolerance    = 1e-9 // CheckInterval的容差
)

// Section 车道段
// 功能：管理从S开始的一组车道，车道按ID唯一，lanes按ID降序排列（左侧最外到右侧最外）
// 说明：两侧车道ID从0开始连续，Length由道路根据下一车道段的S或道路长度计算
type Section struct {
	id         int32
	s          float64
	length     float64
	singleSide bool
	roadID     int32

	data  map[int32]*Lane
	lanes []*Lane
}

// NewSection 创建空车道段
func NewSection(id int32, s float64, singleSide bool, roadID int32) *Section {
	return &Section{
		id:         id,
		s:          s,
		singleSide: singleSide,
		roadID:     roadID,
		data:       make(map[int32]*Lane),
		lanes:      make([]*Lane, 0),
	}
}

func (sec *Section) String() string {
	return fmt.Sprintf("Section{id=%d s=%.3f length=%.3f road=%d lanes=%d}", sec.id, sec.s, sec.length, sec.roadID, len(sec.lanes))
}

func (sec *Section) ID() int32 {
	return sec.id
}

func (sec *Section) SetID(id int32) {
	sec.id = id
	for _, l := range sec.lanes {
		l.sectionID = id
	}
}

// S 车道段起点（道路s）
func (sec *Section) S() float64 {
	return sec.s
}

func (sec *Section) SetS(s float64) {
	sec.s = s
}

// Length 车道段长度
func (sec *Section) Length() float64 {
	return sec.length
}

func (sec *Section) SetLength(length float64) {
	sec.length = length
}

// End 车道段终点（道路s）
func (sec *Section) End() float64 {
	return sec.s + sec.length
}

func (sec *Section) SingleSide() bool {
	return sec.singleSide
}

func (sec *Section) RoadID() int32 {
	return sec.roadID
}

// SetRoadID 修改所属道路，车道的反向引用一并更新
func (sec *Section) SetRoadID(id int32) {
	sec.roadID = id
	for _, l := range sec.lanes {
		l.roadID = id
	}
}

// Lanes 全部车道，ID降序（只读）
func (sec *Section) Lanes() []*Lane {
	return sec.lanes
}

// LaneList 全部车道，ID降序
func (sec *Section) LaneList() []entity.ILane {
	return lo.Map(sec.lanes, func(l *Lane, _ int) entity.ILane { return l })
}

// Lane 根据ID获取车道
func (sec *Section) Lane(id int32) (*Lane, error) {
	if l, ok := sec.data[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("lane %d in %v: %w", id, sec, entity.ErrLaneNotFound)
}

// HasLane 是否存在该ID的车道
func (sec *Section) HasLane(id int32) bool {
	_, ok := sec.data[id]
	return ok
}

// LeftLanes 左侧车道，ID降序（最外侧在前）
func (sec *Section) LeftLanes() []*Lane {
	return lo.Filter(sec.lanes, func(l *Lane, _ int) bool { return l.id > 0 })
}

// RightLanes 右侧车道，ID降序（最内侧在前）
func (sec *Section) RightLanes() []*Lane {
	return lo.Filter(sec.lanes, func(l *Lane, _ int) bool { return l.id < 0 })
}

// CenterLane 参考线车道（ID为0），不存在时返回nil
func (sec *Section) CenterLane() *Lane {
	return sec.data[0]
}

func (sec *Section) LeftLaneCount() int {
	return lo.CountBy(sec.lanes, func(l *Lane) bool { return l.id > 0 })
}

func (sec *Section) RightLaneCount() int {
	return lo.CountBy(sec.lanes, func(l *Lane) bool { return l.id < 0 })
}

func (sec *Section) LaneCount() int {
	return len(sec.lanes)
}

// outwardLanes 从参考线向外排列的同侧车道：右侧-1,-2,...；左侧+1,+2,...
func (sec *Section) outwardLanes(side entity.LaneSide) []*Lane {
	switch side {
	case entity.LaneSideRight:
		return sec.RightLanes()
	case entity.LaneSideLeft:
		return lo.Reverse(sec.LeftLanes())
	default:
		return nil
	}
}

// localS 道路s转换为车道段内的偏移
func (sec *Section) localS(s float64) float64 {
	return s - sec.s
}

// WidthUpToStart 参考线到车道近侧边缘的横向距离
// 功能：由内向外累加同侧车道宽度，遇到目标车道时在累加前停止
// 参数：l-目标车道，s-道路s
// 说明：参考线车道返回0
func (sec *Section) WidthUpToStart(l *Lane, s float64) float64 {
	ds := sec.localS(s)
	width := 0.
	for _, cur := range sec.outwardLanes(l.side) {
		if cur.id == l.id {
			break
		}
		width += cur.WidthAt(ds)
	}
	return width
}

// WidthUpToEnd 参考线到车道远侧边缘的横向距离
// 说明：与WidthUpToStart不同，目标车道自身的宽度先累加再停止
func (sec *Section) WidthUpToEnd(l *Lane, s float64) float64 {
	ds := sec.localS(s)
	width := 0.
	for _, cur := range sec.outwardLanes(l.side) {
		width += cur.WidthAt(ds)
		if cur.id == l.id {
			break
		}
	}
	return width
}

// WidthUpToCenter 参考线到车道中心线的横向距离
func (sec *Section) WidthUpToCenter(l *Lane, s float64) float64 {
	ds := sec.localS(s)
	width := 0.
	for _, cur := range sec.outwardLanes(l.side) {
		w := cur.WidthAt(ds)
		width += w
		if cur.id == l.id {
			width -= w / 2
			break
		}
	}
	return width
}

// WidthUpTo 按位置选择WidthUpToStart/Center/End
func (sec *Section) WidthUpTo(l *Lane, s float64, location entity.WidthLocation) float64 {
	switch location {
	case entity.WidthLocationStart:
		return sec.WidthUpToStart(l, s)
	case entity.WidthLocationCenter:
		return sec.WidthUpToCenter(l, s)
	case entity.WidthLocationEnd:
		return sec.WidthUpToEnd(l, s)
	default:
		log.Panicf("WidthUpTo: unknown location %v", location)
		return 0
	}
}

// LeftSideWidth 左侧车道宽度之和
func (sec *Section) LeftSideWidth(s float64) float64 {
	ds := sec.localS(s)
	return lo.SumBy(sec.LeftLanes(), func(l *Lane) float64 { return l.WidthAt(ds) })
}

// RightSideWidth 右侧车道宽度之和
func (sec *Section) RightSideWidth(s float64) float64 {
	ds := sec.localS(s)
	return lo.SumBy(sec.RightLanes(), func(l *Lane) float64 { return l.WidthAt(ds) })
}

// Width 车道段总宽度
func (sec *Section) Width(s float64) float64 {
	return sec.LeftSideWidth(s) + sec.RightSideWidth(s)
}

// AddLane 添加车道
// 功能：在车道段中创建车道，ID已存在时把同侧更外侧的车道向外挪一位
// 参数：side-所在侧，id-车道ID，typ-车道类型，level-是否水平，sort-是否校验
// 返回：新车道；sort为true且ID的符号与side不符或不连续时返回error，此时车道段不变
// 算法说明：
// 1. 校验（sort为true时）：ID符号与side一致，左侧ID不超过左侧车道数+1，右侧同理
// 2. ID冲突：左侧ID>=id的车道ID加1，右侧ID<=id的车道ID减1，参考线车道冲突返回error
// 3. 插入车道并保持ID降序
// 说明：sort为false为原始导入路径，只处理冲突，不校验连续性
func (sec *Section) AddLane(side entity.LaneSide, id int32, typ entity.LaneType, level bool, sort bool) (*Lane, error) {
	if sort {
		if entity.SideOf(id) != side {
			return nil, fmt.Errorf("add lane %d on %v side of %v: %w", id, side, sec, entity.ErrLaneSideMismatch)
		}
		switch {
		case id > 0 && int(id) > sec.LeftLaneCount()+1,
			id < 0 && int(-id) > sec.RightLaneCount()+1:
			return nil, fmt.Errorf("add lane %d to %v: %w", id, sec, entity.ErrNonContiguousLaneID)
		}
	}
	if _, exists := sec.data[id]; exists {
		if id == 0 {
			return nil, fmt.Errorf("add center lane to %v: %w", sec, entity.ErrDuplicateID)
		}
		for _, l := range sec.lanes {
			switch {
			case id > 0 && l.id >= id:
				l.renumber(l.id + 1)
			case id < 0 && l.id <= id:
				l.renumber(l.id - 1)
			}
		}
	}
	l := New(side, id, typ, level, sec.roadID, sec.id)
	sec.lanes = append(sec.lanes, l)
	sec.SortLanes()
	return l, nil
}

// AddLaneInstance 挂载已有车道（如CloneAtS的结果），冲突处理同AddLane
func (sec *Section) AddLaneInstance(l *Lane) error {
	if l.id == 0 && sec.HasLane(0) {
		return fmt.Errorf("add center lane to %v: %w", sec, entity.ErrDuplicateID)
	}
	if sec.HasLane(l.id) {
		for _, cur := range sec.lanes {
			switch {
			case l.id > 0 && cur.id >= l.id:
				cur.renumber(cur.id + 1)
			case l.id < 0 && cur.id <= l.id:
				cur.renumber(cur.id - 1)
			}
		}
	}
	l.roadID, l.sectionID = sec.roadID, sec.id
	sec.lanes = append(sec.lanes, l)
	sec.SortLanes()
	return nil
}

// RemoveLane 删除车道
// 功能：删除车道后把同侧更外侧车道的ID向参考线方向挪一位，保持连续
// 返回：车道不属于该车道段时返回error
func (sec *Section) RemoveLane(l *Lane) error {
	if cur, ok := sec.data[l.id]; !ok || cur != l {
		return fmt.Errorf("remove %v from %v: %w", l, sec, entity.ErrLaneNotFound)
	}
	removed := l.id
	sec.lanes = lo.Filter(sec.lanes, func(cur *Lane, _ int) bool { return cur != l })
	for _, cur := range sec.lanes {
		switch {
		case removed > 0 && cur.id > removed:
			cur.renumber(cur.id - 1)
		case removed < 0 && cur.id < removed:
			cur.renumber(cur.id + 1)
		}
	}
	sec.SortLanes()
	return nil
}

// SortLanes 按ID降序重排并重建索引
func (sec *Section) SortLanes() {
	sort.SliceStable(sec.lanes, func(i, j int) bool { return sec.lanes[i].id > sec.lanes[j].id })
	sec.data = lo.SliceToMap(sec.lanes, func(l *Lane) (int32, *Lane) {
		return l.id, l
	})
}

// ValidateLaneIDs 检查ID与所在侧一致、两侧从参考线开始连续
func (sec *Section) ValidateLaneIDs() error {
	for _, l := range sec.lanes {
		if entity.SideOf(l.id) != l.side {
			return fmt.Errorf("%v: %w", l, entity.ErrLaneSideMismatch)
		}
	}
	for i, l := range sec.outwardLanes(entity.LaneSideLeft) {
		if l.id != int32(i+1) {
			return fmt.Errorf("left lane %d at position %d of %v: %w", l.id, i+1, sec, entity.ErrNonContiguousLaneID)
		}
	}
	for i, l := range sec.outwardLanes(entity.LaneSideRight) {
		if l.id != -int32(i+1) {
			return fmt.Errorf("right lane %d at position %d of %v: %w", l.id, i+1, sec, entity.ErrNonContiguousLaneID)
		}
	}
	return nil
}

// CheckInterval s是否位于该车道段起点之后
func (sec *Section) CheckInterval(s float64) bool {
	return s >= sec.s-intervalTolerance
}

// Contains s是否位于[S, S+Length]内
func (sec *Section) Contains(s float64) bool {
	return s >= sec.s-intervalTolerance && s <= sec.End()+intervalTolerance
}

// FindNearestLane 找到横向位置t最接近的车道
// 功能：在t所在一侧（t>0左侧，否则右侧）及参考线车道中，找到指定位置与|t|之差最小的车道
// 参数：s-道路s，t-横向偏移，location-比较车道的近侧边缘/中心/远侧边缘
// 返回：车道；所有候选的误差都不小于0.5m时返回false
func (sec *Section) FindNearestLane(s, t float64, location entity.WidthLocation) (*Lane, bool) {
	var candidates []*Lane
	if t > 0 {
		candidates = sec.LeftLanes()
	} else {
		candidates = sec.RightLanes()
	}
	if center := sec.CenterLane(); center != nil {
		candidates = append(candidates, center)
	}
	var target *Lane
	minDistance := math.Inf(1)
	for _, l := range candidates {
		laneT := sec.WidthUpTo(l, s, location)
		if d := math.Abs(laneT - math.Abs(t)); d < minDistance && d < nearestLaneThreshold {
			minDistance, target = d, l
		}
	}
	return target, target != nil
}

// LaneAt 横向位置t所在的车道，t落在车道近侧与远侧边缘之间
func (sec *Section) LaneAt(s, t float64) (*Lane, bool) {
	side := entity.SideOf(int32(math.Copysign(1, t)))
	for _, l := range sec.outwardLanes(side) {
		if math.Abs(t) <= sec.WidthUpToEnd(l, s) {
			return l, true
		}
	}
	return nil, false
}

// UpdateLaneWidthValues 编辑宽度节点后重新拟合车道宽度系数
func (sec *Section) UpdateLaneWidthValues(l *Lane) {
	poly3.ComputeCoefficients(l.widths, sec.length, poly3.ModeValueOnly)
}

// CloneAtS 复制车道段
// 功能：深拷贝全部车道，车道记录以s处为新起点，前驱/后继被清空
// 参数：id-新车道段ID，s-新车道段起点（道路s），singleSide、roadID-新车道段属性
func (sec *Section) CloneAtS(id int32, s float64, singleSide bool, roadID int32) *Section {
	out := NewSection(id, s, singleSide, roadID)
	ds := math.Max(0, sec.localS(s))
	for _, l := range sec.lanes {
		c := l.CloneAtS(l.id, ds)
		c.roadID, c.sectionID = roadID, id
		out.lanes = append(out.lanes, c)
	}
	out.SortLanes()
	return out
}
