package hdmap

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
)

// GeoJSON要素的kind属性
const (
	FeatureReferenceLine = "reference_line"
	FeatureLaneBoundary  = "lane_boundary"
)

// GeoJSON 导出参考线与车道外侧边界
// 功能：每条道路导出一条参考线（含车道偏移），每个车道段的每条非参考线车道导出一条远离参考线一侧的边界
// 参数：step-采样步长，<=0时使用配置中的默认值
// 返回：要素集合；坐标为路网平面坐标(x, y)，不做投影
// 说明：没有几何的道路记录警告后跳过
func (m *Map) GeoJSON(step float64) *geojson.FeatureCollection {
	if step <= 0 {
		step = m.runtimeConfig.C.Geometry.SampleStep
	}
	fc := geojson.NewFeatureCollection()
	for _, r := range m.roadManager.Roads() {
		points, err := r.GetReferenceLinePoints(step)
		if err != nil {
			log.Warnf("GeoJSON: skip %v: %v", r, err)
			continue
		}
		f := geojson.NewFeature(toLineString(points))
		f.Properties["kind"] = FeatureReferenceLine
		f.Properties["road"] = r.ID()
		f.Properties["name"] = r.Name()
		f.Properties["junction"] = r.JunctionID()
		f.Properties["length"] = r.Length()
		fc.Append(f)

		for _, sec := range r.LaneSections() {
			for _, l := range sec.Lanes() {
				if l.Side() == entity.LaneSideCenter {
					continue
				}
				line, err := laneBoundary(r, sec, l, step)
				if err != nil {
					log.Warnf("GeoJSON: skip %v: %v", l, err)
					continue
				}
				f := geojson.NewFeature(line)
				f.Properties["kind"] = FeatureLaneBoundary
				f.Properties["road"] = r.ID()
				f.Properties["section"] = sec.ID()
				f.Properties["lane"] = l.ID()
				f.Properties["type"] = string(l.Type())
				fc.Append(f)
			}
		}
	}
	return fc
}

// laneBoundary 车道段范围内车道远侧边缘的折线
func laneBoundary(r *road.Road, sec *lane.Section, l *lane.Lane, step float64) (orb.LineString, error) {
	n := int(math.Ceil(sec.Length() / step))
	points := make([]entity.Pos, 0, n+1)
	for i := 0; i <= n; i++ {
		s := math.Min(sec.S()+float64(i)*step, sec.End())
		t := sec.WidthUpToEnd(l, s)
		if l.Side() == entity.LaneSideRight {
			t = -t
		}
		p, err := r.GetRoadCoordAt(s, t)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return toLineString(points), nil
}

func toLineString(points []entity.Pos) orb.LineString {
	line := make(orb.LineString, len(points))
	for i, p := range points {
		line[i] = orb.Point{p.X, p.Y}
	}
	return line
}
