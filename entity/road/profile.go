package road

import (
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// 高程、超高与车道偏移
// 说明：Add*为导入路径，原样保存系数；*Instance与Remove*会按拟合方式重算系数

// Elevations 高程记录（只读）
func (r *Road) Elevations() poly3.Records {
	return r.elevations
}

// AddElevation 原样添加高程记录
func (r *Road) AddElevation(s, a, b, c, d float64) {
	r.elevations.Add(poly3.Record{S: s, A: a, B: b, C: c, D: d})
}

// AddElevationInstance 添加高程节点(s, 高度, 坡度)并重算系数，保证值与坡度连续
func (r *Road) AddElevationInstance(s, height, slope float64) {
	r.elevations.Add(poly3.Record{S: s, A: height, B: slope})
	poly3.ComputeCoefficients(r.elevations, r.length, poly3.ModeValueAndSlope)
}

// RemoveElevation 删除s处的高程节点并重算系数
func (r *Road) RemoveElevation(s float64) bool {
	if !r.elevations.Remove(s) {
		return false
	}
	poly3.ComputeCoefficients(r.elevations, r.length, poly3.ModeValueAndSlope)
	return true
}

// ElevationAt s处高程，没有记录时为0
func (r *Road) ElevationAt(s float64) float64 {
	return r.elevations.ValueAt(s)
}

// ElevationSlopeAt s处纵坡
func (r *Road) ElevationSlopeAt(s float64) float64 {
	return r.elevations.SlopeAt(s)
}

func (r *Road) SuperElevations() poly3.Records {
	return r.superElevations
}

// AddSuperElevation 原样添加超高记录
func (r *Road) AddSuperElevation(s, a, b, c, d float64) {
	r.superElevations.Add(poly3.Record{S: s, A: a, B: b, C: c, D: d})
}

// SuperElevationAt s处超高(rad)
func (r *Road) SuperElevationAt(s float64) float64 {
	return r.superElevations.ValueAt(s)
}

// LaneOffsets 车道偏移记录（只读）
func (r *Road) LaneOffsets() poly3.Records {
	return r.laneOffsets
}

// AddLaneOffset 原样添加车道偏移记录
func (r *Road) AddLaneOffset(s, a, b, c, d float64) {
	r.laneOffsets.Add(poly3.Record{S: s, A: a, B: b, C: c, D: d})
}

// AddLaneOffsetInstance 添加车道偏移节点并重算系数
func (r *Road) AddLaneOffsetInstance(s, offset float64) {
	r.laneOffsets.Add(poly3.Record{S: s, A: offset})
	r.UpdateLaneOffsetValues()
}

// RemoveLaneOffset 删除s处的车道偏移节点并重算系数
func (r *Road) RemoveLaneOffset(s float64) bool {
	if !r.laneOffsets.Remove(s) {
		return false
	}
	r.UpdateLaneOffsetValues()
	return true
}

// UpdateLaneOffsetValues 节点编辑后重算车道偏移系数
func (r *Road) UpdateLaneOffsetValues() {
	poly3.ComputeCoefficients(r.laneOffsets, r.length, poly3.ModeValueAndSlope)
}

// LaneOffsetAt s处车道偏移，没有记录时为0
func (r *Road) LaneOffsetAt(s float64) float64 {
	return r.laneOffsets.ValueAt(s)
}
