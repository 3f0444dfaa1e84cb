package hdmap

import (
	"fmt"
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/geometry"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50
	boundsPadding    = 0.5 // 包围盒外扩(m)，覆盖采样包围盒对曲线的低估
)

// geometryItem 空间索引中的一个基元
type geometryItem struct {
	road     *road.Road
	geometry *geometry.Geometry
	rect     rtreego.Rect
}

func (it *geometryItem) Bounds() rtreego.Rect {
	return it.rect
}

func paddedRect(minX, minY, maxX, maxY, pad float64) (rtreego.Rect, error) {
	return rtreego.NewRectFromPoints(
		rtreego.Point{minX - pad, minY - pad},
		rtreego.Point{maxX + pad, maxY + pad},
	)
}

// BuildSpatialIndex 为全部道路的参考线基元建立R树
// 说明：参考线重新生成或道路增删后索引失效，下次查询前自动重建
func (m *Map) BuildSpatialIndex() {
	items := make([]rtreego.Spatial, 0)
	for _, r := range m.roadManager.Roads() {
		for _, g := range r.Geometries() {
			b := g.Bounds()
			rect, err := paddedRect(b.X.Lo, b.Y.Lo, b.X.Hi, b.Y.Hi, boundsPadding)
			if err != nil {
				log.Warnf("BuildSpatialIndex: %v at s=%v: %v", r, g.S, err)
				continue
			}
			items = append(items, &geometryItem{road: r, geometry: g, rect: rect})
		}
	}
	m.index = rtreego.NewTree(2, rtreeMinChildren, rtreeMaxChildren, items...)
	log.Debugf("BuildSpatialIndex: %d geometries", len(items))
}

// NearestRoad 离世界坐标(x, y)最近的道路
// 返回：道路及(x, y)在该道路上的道路坐标；路网中没有几何时返回ErrRoadNotFound
// 算法说明：
// 1. R树最近邻给出一个候选基元，计算其精确距离d
// 2. 查询与以(x, y)为中心、半边长为d的方框相交的全部基元
// 3. 在这些基元上求精确最近点，取距离最小者
func (m *Map) NearestRoad(x, y float64) (*road.Road, entity.Pos, error) {
	if m.index == nil {
		m.BuildSpatialIndex()
	}
	if m.index.Size() == 0 {
		return nil, entity.Pos{}, fmt.Errorf("nearest road to (%v, %v): %w", x, y, entity.ErrRoadNotFound)
	}
	samples := m.runtimeConfig.C.Geometry.NearestSamples
	first := m.index.NearestNeighbor(rtreego.Point{x, y}).(*geometryItem)
	_, d := first.geometry.NearestPoint(x, y, samples)
	box, err := paddedRect(x, y, x, y, math.Max(d, 1e-6))
	if err != nil {
		return nil, entity.Pos{}, err
	}
	best, bestDist := first, d
	for _, sp := range m.index.SearchIntersect(box) {
		it := sp.(*geometryItem)
		if _, d := it.geometry.NearestPoint(x, y, samples); d < bestDist {
			best, bestDist = it, d
		}
	}
	pos, err := best.road.GetCoordAt(x, y)
	if err != nil {
		return nil, entity.Pos{}, err
	}
	return best.road, pos, nil
}
