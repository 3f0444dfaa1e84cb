package road

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// LaneSections 全部车道段，按S升序（只读）
func (r *Road) LaneSections() []*lane.Section {
	return r.sections
}

// AddLaneSection 在s处创建空车道段
// 说明：ID为现有最大车道段ID+1，添加后重算所有车道段长度
func (r *Road) AddLaneSection(s float64, singleSide bool) *lane.Section {
	sec := lane.NewSection(r.nextSectionID(), s, singleSide, r.id)
	r.insertSection(sec)
	return sec
}

// AddLaneSectionInstance 挂载已有车道段（如CloneAtS的结果）
func (r *Road) AddLaneSectionInstance(sec *lane.Section) {
	sec.SetRoadID(r.id)
	r.insertSection(sec)
}

// nextSectionID 比现有最大车道段ID大1的ID，删除车道段后也不会重复
func (r *Road) nextSectionID() int32 {
	return lo.Max(lo.Map(r.sections, func(sec *lane.Section, _ int) int32 { return sec.ID() })) + 1
}

func (r *Road) insertSection(sec *lane.Section) {
	r.sections = append(r.sections, sec)
	sort.SliceStable(r.sections, func(i, j int) bool { return r.sections[i].S() < r.sections[j].S() })
	r.ComputeLaneSectionLength()
}

// RemoveLaneSection 删除车道段并重算长度
func (r *Road) RemoveLaneSection(sec *lane.Section) error {
	if !lo.Contains(r.sections, sec) {
		return fmt.Errorf("remove %v from %v: %w", sec, r, entity.ErrLaneSectionNotFound)
	}
	r.sections = lo.Without(r.sections, sec)
	r.ComputeLaneSectionLength()
	return nil
}

// ClearLaneSections 删除全部车道段
func (r *Road) ClearLaneSections() {
	r.sections = nil
}

// LaneSectionAt s处的车道段
// 功能：返回S<=s的最后一个车道段，s在第一个车道段之前时返回第一个
// 返回：没有车道段时返回ErrLaneSectionNotFound
func (r *Road) LaneSectionAt(s float64) (*lane.Section, error) {
	if len(r.sections) == 0 {
		return nil, fmt.Errorf("s=%v on %v: %w", s, r, entity.ErrLaneSectionNotFound)
	}
	out := r.sections[0]
	for _, sec := range r.sections {
		if !sec.CheckInterval(s) {
			break
		}
		out = sec
	}
	return out, nil
}

// LaneSectionByID 根据ID获取车道段
func (r *Road) LaneSectionByID(id int32) (*lane.Section, error) {
	if sec, ok := lo.Find(r.sections, func(sec *lane.Section) bool { return sec.ID() == id }); ok {
		return sec, nil
	}
	return nil, fmt.Errorf("section %d on %v: %w", id, r, entity.ErrLaneSectionNotFound)
}

// FirstLaneSection 第一个车道段，不存在时为nil
func (r *Road) FirstLaneSection() *lane.Section {
	if len(r.sections) == 0 {
		return nil
	}
	return r.sections[0]
}

// LastLaneSection 最后一个车道段，不存在时为nil
func (r *Road) LastLaneSection() *lane.Section {
	if len(r.sections) == 0 {
		return nil
	}
	return r.sections[len(r.sections)-1]
}

// BoundaryLaneSection 连接点处的车道段：起点为第一个，终点为最后一个
func (r *Road) BoundaryLaneSection(contactPoint entity.ContactPoint) (entity.ILaneSection, error) {
	var sec *lane.Section
	switch contactPoint {
	case entity.ContactPointStart:
		sec = r.FirstLaneSection()
	case entity.ContactPointEnd:
		sec = r.LastLaneSection()
	default:
		return nil, fmt.Errorf("boundary section of %v: unspecified contact point", r)
	}
	if sec == nil {
		return nil, fmt.Errorf("boundary section of %v: %w", r, entity.ErrLaneSectionNotFound)
	}
	return sec, nil
}

// ComputeLaneSectionLength 重新计算全部车道段长度
// 说明：每个车道段长度为下一车道段的S减去自身S，最后一个延伸到道路终点
func (r *Road) ComputeLaneSectionLength() {
	for i, sec := range r.sections {
		end := r.length
		if i+1 < len(r.sections) {
			end = r.sections[i+1].S()
		}
		sec.SetLength(end - sec.S())
	}
}

// SplitLaneSection 在s处把所在车道段一分为二
// 功能：复制所在车道段在s处的状态作为新车道段，车道与记录保持连续
// 返回：新车道段；s不在道路内部或与已有车道段起点重合时返回error
func (r *Road) SplitLaneSection(s float64) (*lane.Section, error) {
	if s <= 0 || s >= r.length {
		return nil, fmt.Errorf("split %v at s=%v: outside road", r, s)
	}
	cur, err := r.LaneSectionAt(s)
	if err != nil {
		return nil, err
	}
	if cur.S() == s {
		return nil, fmt.Errorf("split %v at s=%v: %w", r, s, entity.ErrDuplicateID)
	}
	sec := cur.CloneAtS(r.nextSectionID(), s, cur.SingleSide(), r.id)
	r.insertSection(sec)
	return sec, nil
}

// ApplyLaneTemplate 用模板替换全部车道段与车道偏移
// 功能：清空车道段，复制车道偏移，并把模板车道段复制到s=0
func (r *Road) ApplyLaneTemplate(template *lane.Section, laneOffsets poly3.Records) {
	r.ClearLaneSections()
	r.laneOffsets = laneOffsets.Clone()
	r.AddLaneSectionInstance(template.CloneAtS(1, 0, template.SingleSide(), r.id))
}

// Lane 按s与车道ID查找车道
func (r *Road) Lane(s float64, id int32) (*lane.Lane, error) {
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return nil, err
	}
	return sec.Lane(id)
}

// FindNearestLane 在s处找到横向位置t最接近的车道
func (r *Road) FindNearestLane(s, t float64, location entity.WidthLocation) (*lane.Lane, bool) {
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return nil, false
	}
	return sec.FindNearestLane(s, t, location)
}
