package geometry

import (
	"math"

	"github.com/golang/geo/r2"
)

// Spline 道路控制点
// 功能：由有序控制点生成首尾相接的直线基元
// 说明：相邻重合的控制点被忽略
type Spline struct {
	points []r2.Point
}

// NewSpline 创建控制点序列
func NewSpline(points ...r2.Point) *Spline {
	return &Spline{points: append([]r2.Point(nil), points...)}
}

// Points 全部控制点（只读）
func (sp *Spline) Points() []r2.Point {
	return sp.points
}

// Len 控制点数量
func (sp *Spline) Len() int {
	return len(sp.points)
}

// Add 在末尾追加控制点
func (sp *Spline) Add(p r2.Point) {
	sp.points = append(sp.points, p)
}

// Insert 在下标i处插入控制点，i越界时追加到末尾
func (sp *Spline) Insert(i int, p r2.Point) {
	if i < 0 || i >= len(sp.points) {
		sp.Add(p)
		return
	}
	sp.points = append(sp.points[:i+1], sp.points[i:]...)
	sp.points[i] = p
}

// Remove 删除下标i的控制点
func (sp *Spline) Remove(i int) bool {
	if i < 0 || i >= len(sp.points) {
		return false
	}
	sp.points = append(sp.points[:i], sp.points[i+1:]...)
	return true
}

// Clear 清空控制点
func (sp *Spline) Clear() {
	sp.points = sp.points[:0]
}

// ExportGeometries 将控制点折线导出为直线基元，S从0开始连续
func (sp *Spline) ExportGeometries() []*Geometry {
	out := make([]*Geometry, 0, len(sp.points))
	s := 0.
	for i := 1; i < len(sp.points); i++ {
		d := sp.points[i].Sub(sp.points[i-1])
		length := d.Norm()
		if length <= contiguityTolerance {
			continue
		}
		g, err := NewLine(s, sp.points[i-1].X, sp.points[i-1].Y, math.Atan2(d.Y, d.X), length)
		if err != nil {
			log.Warnf("ExportGeometries: %v", err)
			continue
		}
		out = append(out, g)
		s += length
	}
	return out
}
