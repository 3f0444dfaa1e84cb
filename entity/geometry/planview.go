package geometry

import (
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
)

const contiguityTolerance = 1e-6

// PlanView 道路参考线，按S升序排列的几何基元
// 说明：相邻基元满足S[i+1] == S[i] + Length[i]（容差1e-6）
type PlanView struct {
	geometries []*Geometry
}

// NewPlanView 创建参考线
func NewPlanView(geometries ...*Geometry) *PlanView {
	pv := &PlanView{}
	for _, g := range geometries {
		pv.Add(g)
	}
	return pv
}

// Geometries 全部基元（只读）
func (pv *PlanView) Geometries() []*Geometry {
	return pv.geometries
}

// Len 基元数量
func (pv *PlanView) Len() int {
	return len(pv.geometries)
}

// Length 参考线总长（基元长度之和）
func (pv *PlanView) Length() float64 {
	return lo.SumBy(pv.geometries, func(g *Geometry) float64 { return g.Length })
}

// Add 追加基元，与上一基元不连续时记录警告
func (pv *PlanView) Add(g *Geometry) {
	if n := len(pv.geometries); n > 0 {
		if end := pv.geometries[n-1].End(); math.Abs(end-g.S) > contiguityTolerance {
			log.Warnf("PlanView.Add: %v does not start at previous end %v", g, end)
		}
	}
	pv.geometries = append(pv.geometries, g)
}

// Remove 删除下标i的基元，后续基元的S依次顺接
func (pv *PlanView) Remove(i int) bool {
	if i < 0 || i >= len(pv.geometries) {
		return false
	}
	pv.geometries = append(pv.geometries[:i], pv.geometries[i+1:]...)
	pv.rechain(i)
	return true
}

// rechain 从下标i开始重新计算S
func (pv *PlanView) rechain(i int) {
	for ; i < len(pv.geometries); i++ {
		if i == 0 {
			pv.geometries[i].S = 0
		} else {
			pv.geometries[i].S = pv.geometries[i-1].End()
		}
	}
}

// Clear 清空
func (pv *PlanView) Clear() {
	pv.geometries = pv.geometries[:0]
}

// Resolve 找到s所在的基元
// 功能：返回S<=s的最后一个基元及局部弧长
// 返回：基元、局部弧长、s是否在[0, Length]内；没有基元时返回nil
// 说明：越界的s落到最近的端点基元上，局部弧长被截断到该基元范围
func (pv *PlanView) Resolve(s float64) (*Geometry, float64, bool) {
	if len(pv.geometries) == 0 {
		return nil, 0, false
	}
	first := pv.geometries[0]
	last := pv.geometries[len(pv.geometries)-1]
	inRange := s >= first.S-contiguityTolerance && s <= last.End()+contiguityTolerance
	g := first
	for _, cur := range pv.geometries {
		if cur.S > s {
			break
		}
		g = cur
	}
	return g, lo.Clamp(s-g.S, 0, g.Length), inRange
}

// Evaluate 参考线上s处的位姿
func (pv *PlanView) Evaluate(s float64) (entity.Pos, error) {
	g, ds, _ := pv.Resolve(s)
	if g == nil {
		return entity.Pos{}, entity.ErrNoGeometry
	}
	return g.Evaluate(ds), nil
}

// Nearest 参考线上离(x, y)最近的点
func (pv *PlanView) Nearest(x, y float64, samples int) (entity.Pos, float64, error) {
	if len(pv.geometries) == 0 {
		return entity.Pos{}, 0, entity.ErrNoGeometry
	}
	var best entity.Pos
	bestDist := math.Inf(1)
	for _, g := range pv.geometries {
		if p, d := g.NearestPoint(x, y, samples); d < bestDist {
			best, bestDist = p, d
		}
	}
	return best, bestDist, nil
}

// Clone 深拷贝
func (pv *PlanView) Clone() *PlanView {
	return &PlanView{geometries: lo.Map(pv.geometries, func(g *Geometry, _ int) *Geometry { return g.Clone() })}
}

// CloneFrom 从s处截取后半段参考线，新参考线从S=0开始
func (pv *PlanView) CloneFrom(s float64) (*PlanView, error) {
	out := &PlanView{}
	for _, g := range pv.geometries {
		if g.End() <= s {
			continue
		}
		if g.S >= s {
			c := g.Clone()
			c.S = g.S - s
			out.geometries = append(out.geometries, c)
			continue
		}
		c, err := g.CloneFrom(s)
		if err != nil {
			return nil, err
		}
		out.geometries = append(out.geometries, c)
	}
	if len(out.geometries) == 0 {
		return nil, entity.ErrNoGeometry
	}
	return out, nil
}

// Truncate 截断到[0, s]，s之后的基元被删除，跨越s的基元长度被缩短
func (pv *PlanView) Truncate(s float64) {
	kept := pv.geometries[:0]
	for _, g := range pv.geometries {
		if g.S >= s {
			break
		}
		if g.End() > s {
			g.shorten(s - g.S)
		}
		kept = append(kept, g)
	}
	pv.geometries = kept
}
