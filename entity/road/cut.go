package road

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// CutAt 在s处把道路切分为两段
// 功能：本道路保留[0, s]，返回的新道路为[s, Length]，新道路的S从0开始
// 参数：s-切分位置，newID-新道路ID
// 返回：未注册到RoadManager、未建立连接的新道路；s不在道路内部时返回error
// 说明：几何、车道段、高程/超高/车道偏移、道路类型、信号与物体都按s切分；两段的控制点被清空，
// 连接关系由RoadManager.Cut负责
func (r *Road) CutAt(s float64, newID int32) (*Road, error) {
	if err := r.ensureGeometry(); err != nil {
		return nil, err
	}
	if s <= 0 || s >= r.length {
		return nil, fmt.Errorf("cut %v at s=%v: outside road", r, s)
	}
	tail, err := r.planView.CloneFrom(s)
	if err != nil {
		return nil, fmt.Errorf("cut %v at s=%v: %w", r, s, err)
	}

	out := newRoad(r.ctx, newID, r.name, r.junctionID)
	out.trafficRule = r.trafficRule
	for _, g := range tail.Geometries() {
		out.AddGeometry(g)
	}
	out.elevations = r.elevations.Shift(-s)
	out.superElevations = r.superElevations.Shift(-s)
	out.laneOffsets = r.laneOffsets.Shift(-s)

	// 道路类型：s处生效的类型移到0
	start := -1
	for i, t := range r.types {
		if t.S <= s {
			start = i
		}
	}
	for i, t := range r.types {
		switch {
		case i < start:
			continue
		case i == start:
			t.S = 0
		default:
			t.S -= s
		}
		out.types = append(out.types, t)
	}

	// 车道段：s所在车道段在s处复制，之后的车道段平移
	cur, err := r.LaneSectionAt(s)
	if err == nil {
		first := cur.CloneAtS(1, s, cur.SingleSide(), newID)
		first.SetS(0)
		out.AddLaneSectionInstance(first)
		for _, sec := range r.sections {
			if sec.S() <= s {
				continue
			}
			moved := sec.CloneAtS(out.nextSectionID(), sec.S(), sec.SingleSide(), newID)
			moved.SetS(sec.S() - s)
			out.AddLaneSectionInstance(moved)
		}
	}

	for _, sig := range r.signals {
		if sig.S >= s {
			moved := *sig
			moved.S -= s
			out.signals = append(out.signals, &moved)
		}
	}
	for _, obj := range r.objects {
		if obj.S >= s {
			moved := *obj
			moved.S -= s
			out.objects = append(out.objects, &moved)
		}
	}

	// 截断本道路
	r.planView.Truncate(s)
	r.length = r.planView.Length()
	r.spline.Clear()
	r.sections = lo.Filter(r.sections, func(sec *lane.Section, i int) bool { return i == 0 || sec.S() < s })
	r.ComputeLaneSectionLength()
	r.elevations = lo.Filter(r.elevations, func(rec poly3.Record, i int) bool { return i == 0 || rec.S < s })
	r.superElevations = lo.Filter(r.superElevations, func(rec poly3.Record, i int) bool { return i == 0 || rec.S < s })
	r.laneOffsets = lo.Filter(r.laneOffsets, func(rec poly3.Record, i int) bool { return i == 0 || rec.S < s })
	r.types = lo.Filter(r.types, func(t TypeRecord, i int) bool { return i == 0 || t.S < s })
	r.signals = lo.Filter(r.signals, func(sig *entity.Signal, _ int) bool { return sig.S < s })
	r.objects = lo.Filter(r.objects, func(obj *entity.Object, _ int) bool { return obj.S < s })
	return out, nil
}
