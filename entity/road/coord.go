package road

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/geometry"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// PlanView 参考线
func (r *Road) PlanView() *geometry.PlanView {
	return r.planView
}

// Geometries 参考线几何基元（只读）
func (r *Road) Geometries() []*geometry.Geometry {
	return r.planView.Geometries()
}

// AddGeometry 追加几何基元，道路长度随之增加
func (r *Road) AddGeometry(g *geometry.Geometry) {
	r.planView.Add(g)
	r.length += g.Length
}

// AddGeometryLine 在参考线末尾追加直线
func (r *Road) AddGeometryLine(s, x, y, hdg, length float64) (*geometry.Geometry, error) {
	g, err := geometry.NewLine(s, x, y, hdg, length)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", r, err)
	}
	r.AddGeometry(g)
	return g, nil
}

// AddGeometryArc 在参考线末尾追加圆弧
func (r *Road) AddGeometryArc(s, x, y, hdg, length, curvature float64) (*geometry.Geometry, error) {
	g, err := geometry.NewArc(s, x, y, hdg, length, curvature)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", r, err)
	}
	r.AddGeometry(g)
	return g, nil
}

// AddGeometryPoly3 在参考线末尾追加三次多项式
func (r *Road) AddGeometryPoly3(s, x, y, hdg, length, a, b, c, d float64) (*geometry.Geometry, error) {
	g, err := geometry.NewPoly3(s, x, y, hdg, length, a, b, c, d)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", r, err)
	}
	r.AddGeometry(g)
	return g, nil
}

// AddGeometryParamPoly3 在参考线末尾追加参数三次多项式
func (r *Road) AddGeometryParamPoly3(s, x, y, hdg, length float64, u, v poly3.Record, pRange geometry.PRange) (*geometry.Geometry, error) {
	g, err := geometry.NewParamPoly3(s, x, y, hdg, length, u, v, pRange)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", r, err)
	}
	r.AddGeometry(g)
	return g, nil
}

// RemoveGeometry 删除下标i的几何基元，后续基元顺接
func (r *Road) RemoveGeometry(i int) error {
	if !r.planView.Remove(i) {
		return fmt.Errorf("remove geometry %d of %v: index out of range", i, r)
	}
	r.length = r.planView.Length()
	r.ComputeLaneSectionLength()
	return nil
}

// ClearGeometries 清空参考线，长度归零
func (r *Road) ClearGeometries() {
	r.planView.Clear()
	r.length = 0
}

// Spline 道路控制点
func (r *Road) Spline() *geometry.Spline {
	return r.spline
}

// AddControlPoint 追加控制点，update为true时重新生成参考线
func (r *Road) AddControlPoint(p r2.Point, update bool) {
	r.spline.Add(p)
	if update {
		r.UpdateGeometryFromSpline()
	}
}

// RemoveControlPoint 删除控制点并重新生成参考线
func (r *Road) RemoveControlPoint(i int) bool {
	if !r.spline.Remove(i) {
		return false
	}
	r.UpdateGeometryFromSpline()
	return true
}

// UpdateGeometryFromSpline 由控制点重新生成参考线
// 功能：清空参考线，导出控制点折线为基元，重算车道段长度，并通知回调
// 说明：每次完整重算只通知一次
func (r *Road) UpdateGeometryFromSpline() {
	r.ClearGeometries()
	for _, g := range r.spline.ExportGeometries() {
		r.AddGeometry(g)
	}
	r.ComputeLaneSectionLength()
	r.notifyUpdated()
}

// ensureGeometry 参考线为空时尝试由控制点生成
func (r *Road) ensureGeometry() error {
	if r.planView.Len() > 0 {
		return nil
	}
	if r.spline.Len() > 1 {
		r.UpdateGeometryFromSpline()
		if r.planView.Len() > 0 {
			return nil
		}
	}
	return fmt.Errorf("%v: %w", r, entity.ErrNoGeometry)
}

// clampS 越界的s记录后截断到[0, Length]
func (r *Road) clampS(s float64, op string) float64 {
	if s < 0 || s > r.length {
		log.Warnf("%s: s=%v out of range [0, %v] of %v", op, s, r.length, r)
		return lo.Clamp(s, 0, r.length)
	}
	return s
}

// ReferencePosAt 参考线上s处的位姿，不含车道偏移与高程
func (r *Road) ReferencePosAt(s float64) (entity.Pos, error) {
	if err := r.ensureGeometry(); err != nil {
		return entity.Pos{}, err
	}
	s = r.clampS(s, "ReferencePosAt")
	g, ds, _ := r.planView.Resolve(s)
	return g.Evaluate(ds), nil
}

// GetRoadCoordAt 道路坐标(s, t)对应的世界坐标
// 功能：计算参考线上s处的位姿，叠加车道偏移与横向偏移t，z取高程
// 参数：s-道路s，t-相对车道偏移后参考线的横向偏移（左正右负）
// 返回：位姿；道路没有几何且控制点不足两个时返回ErrNoGeometry
// 算法说明：
// 1. 参考线为空时由控制点重新生成
// 2. s越界时记录警告并截断
// 3. 找到s所在的基元，计算局部位姿
// 4. 沿法向平移laneOffset(s)，再平移t
// 5. z = elevation(s)
func (r *Road) GetRoadCoordAt(s, t float64) (entity.Pos, error) {
	pos, err := r.ReferencePosAt(s)
	if err != nil {
		return entity.Pos{}, err
	}
	pos.AddLateralOffset(r.laneOffsets.ValueAt(pos.S))
	pos.AddLateralOffset(t)
	pos.Z = r.elevations.ValueAt(pos.S)
	return pos, nil
}

// GetStartCoord 道路起点的参考线位姿
func (r *Road) GetStartCoord() (entity.Pos, error) {
	return r.GetRoadCoordAt(0, 0)
}

// GetEndCoord 道路终点的参考线位姿
func (r *Road) GetEndCoord() (entity.Pos, error) {
	return r.GetRoadCoordAt(r.length, 0)
}

// GetLanePosAt 车道指定位置（近侧边缘/中心/远侧边缘）在s处的世界坐标
func (r *Road) GetLanePosAt(l *lane.Lane, s float64, location entity.WidthLocation) (entity.Pos, error) {
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return entity.Pos{}, err
	}
	t := sec.WidthUpTo(l, s, location)
	if l.Side() == entity.LaneSideRight {
		t = -t
	}
	return r.GetRoadCoordAt(s, t)
}

// GetCoordAt 世界坐标(x, y)对应的道路坐标
// 功能：在所有基元上求最近点，返回s与相对车道偏移后参考线的t
// 说明：GetRoadCoordAt的逆运算，Pos.X/Pos.Y为参考线上的最近点
func (r *Road) GetCoordAt(x, y float64) (entity.Pos, error) {
	if err := r.ensureGeometry(); err != nil {
		return entity.Pos{}, err
	}
	pos, _, err := r.planView.Nearest(x, y, r.ctx.RuntimeConfig().C.Geometry.NearestSamples)
	if err != nil {
		return entity.Pos{}, err
	}
	pos.T -= r.laneOffsets.ValueAt(pos.S)
	pos.Z = r.elevations.ValueAt(pos.S)
	return pos, nil
}

// GetReferenceLinePoints 以step为间隔采样参考线（含车道偏移与高程），包含终点
// 参数：step-采样步长，<=0时使用配置中的默认值
func (r *Road) GetReferenceLinePoints(step float64) ([]entity.Pos, error) {
	if err := r.ensureGeometry(); err != nil {
		return nil, err
	}
	if step <= 0 {
		step = r.ctx.RuntimeConfig().C.Geometry.SampleStep
	}
	n := int(math.Ceil(r.length / step))
	points := make([]entity.Pos, 0, n+1)
	for i := 0; i < n; i++ {
		p, err := r.GetRoadCoordAt(float64(i)*step, 0)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	end, err := r.GetRoadCoordAt(r.length, 0)
	if err != nil {
		return nil, err
	}
	return append(points, end), nil
}

// LeftSideWidth s处左侧车道宽度之和
func (r *Road) LeftSideWidth(s float64) float64 {
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return 0
	}
	return sec.LeftSideWidth(s)
}

// RightSideWidth s处右侧车道宽度之和
func (r *Road) RightSideWidth(s float64) float64 {
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return 0
	}
	return sec.RightSideWidth(s)
}

// RoadWidthAt s处道路宽度，没有车道段时为0
func (r *Road) RoadWidthAt(s float64) entity.RoadWidth {
	left, right := r.LeftSideWidth(s), r.RightSideWidth(s)
	return entity.RoadWidth{Total: left + right, Left: left, Right: right}
}
