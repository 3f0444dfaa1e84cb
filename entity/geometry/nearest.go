package geometry

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/tsinghua-fib-lab/odrmap/entity"
)

const (
	goldenRatio     = 0.6180339887498949
	goldenMaxIter   = 60
	goldenTolerance = 1e-9
)

// NearestPoint 求基元上离(x, y)最近的点
// 功能：粗采样后用黄金分割法在最优采样点的相邻区间内细化
// 参数：x、y-世界坐标，samples-粗采样数（<2时取2）
// 返回：最近点位姿（Pos.T为(x, y)相对参考线的有符号横向距离，左正右负），欧氏距离
func (g *Geometry) NearestPoint(x, y float64, samples int) (entity.Pos, float64) {
	if samples < 2 {
		samples = 2
	}
	target := r2.Point{X: x, Y: y}
	dist := func(ds float64) float64 {
		p := g.Evaluate(ds)
		return r2.Point{X: p.X, Y: p.Y}.Sub(target).Norm()
	}
	step := g.Length / float64(samples)
	best, bestDist := 0., math.Inf(1)
	for i := 0; i <= samples; i++ {
		ds := math.Min(float64(i)*step, g.Length)
		if d := dist(ds); d < bestDist {
			best, bestDist = ds, d
		}
	}
	lo, hi := math.Max(0, best-step), math.Min(g.Length, best+step)
	a := hi - goldenRatio*(hi-lo)
	b := lo + goldenRatio*(hi-lo)
	da, db := dist(a), dist(b)
	for i := 0; i < goldenMaxIter && hi-lo > goldenTolerance; i++ {
		if da < db {
			hi, b, db = b, a, da
			a = hi - goldenRatio*(hi-lo)
			da = dist(a)
		} else {
			lo, a, da = a, b, db
			b = lo + goldenRatio*(hi-lo)
			db = dist(b)
		}
	}
	if d := dist((lo + hi) / 2); d < bestDist {
		best, bestDist = (lo+hi)/2, d
	}
	pos := g.Evaluate(best)
	dir := r2.Point{X: math.Cos(pos.Hdg), Y: math.Sin(pos.Hdg)}
	pos.T = dir.Cross(target.Sub(r2.Point{X: pos.X, Y: pos.Y}))
	return pos, bestDist
}

// Sample 以step为间隔采样基元，包含两个端点
func (g *Geometry) Sample(step float64) []entity.Pos {
	if step <= 0 {
		step = g.Length
	}
	n := int(math.Ceil(g.Length / step))
	out := make([]entity.Pos, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, g.Evaluate(float64(i)*step))
	}
	return append(out, g.Evaluate(g.Length))
}

// Bounds 基元采样点的轴对齐包围盒
func (g *Geometry) Bounds() r2.Rect {
	rect := r2.EmptyRect()
	for _, p := range g.Sample(g.Length / arcTableSamples * 4) {
		rect = rect.AddPoint(r2.Point{X: p.X, Y: p.Y})
	}
	return rect
}
