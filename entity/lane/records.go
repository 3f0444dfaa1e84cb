package lane

import (
	"sort"
)

// 车道属性记录，SOffset为相对车道段起点的偏移

// RoadMark 车道标线
type RoadMark struct {
	SOffset    float64 `yaml:"s_offset" bson:"s_offset"`
	Type       string  `yaml:"type" bson:"type"`                         // solid, broken, solid solid...
	Weight     string  `yaml:"weight,omitempty" bson:"weight"`           // standard, bold
	Color      string  `yaml:"color,omitempty" bson:"color"`             // standard, white, yellow...
	Material   string  `yaml:"material,omitempty" bson:"material"`       // 标线材料
	Width      float64 `yaml:"width,omitempty" bson:"width"`             // 标线宽度
	LaneChange string  `yaml:"lane_change,omitempty" bson:"lane_change"` // increase, decrease, both, none
	Height     float64 `yaml:"height,omitempty" bson:"height"`
}

// Height 车道相对参考面的高度（内侧/外侧）
type Height struct {
	SOffset float64 `yaml:"s_offset" bson:"s_offset"`
	Inner   float64 `yaml:"inner" bson:"inner"`
	Outer   float64 `yaml:"outer" bson:"outer"`
}

// Speed 车道限速
type Speed struct {
	SOffset float64 `yaml:"s_offset" bson:"s_offset"`
	Max     float64 `yaml:"max" bson:"max"`
	Unit    string  `yaml:"unit,omitempty" bson:"unit"` // m/s, km/h, mph
}

// Access 车道通行限制
type Access struct {
	SOffset     float64 `yaml:"s_offset" bson:"s_offset"`
	Restriction string  `yaml:"restriction" bson:"restriction"`
}

// Material 车道路面材料
type Material struct {
	SOffset   float64 `yaml:"s_offset" bson:"s_offset"`
	Surface   string  `yaml:"surface,omitempty" bson:"surface"`
	Friction  float64 `yaml:"friction" bson:"friction"`
	Roughness float64 `yaml:"roughness,omitempty" bson:"roughness"`
}

func (r RoadMark) sOffset() float64 { return r.SOffset }
func (r Height) sOffset() float64   { return r.SOffset }
func (r Speed) sOffset() float64    { return r.SOffset }
func (r Access) sOffset() float64   { return r.SOffset }
func (r Material) sOffset() float64 { return r.SOffset }

type offsetRecord interface {
	RoadMark | Height | Speed | Access | Material
	sOffset() float64
}

// recordAt 返回SOffset<=ds的最后一条记录
func recordAt[T offsetRecord](items []T, ds float64) (T, bool) {
	var out T
	found := false
	for _, item := range items {
		if item.sOffset() > ds {
			break
		}
		out, found = item, true
	}
	return out, found
}

// insertRecord 按SOffset升序插入，SOffset相同的记录被替换
func insertRecord[T offsetRecord](items []T, r T) []T {
	i := sort.Search(len(items), func(i int) bool { return items[i].sOffset() >= r.sOffset() })
	if i < len(items) && items[i].sOffset() == r.sOffset() {
		items[i] = r
		return items
	}
	var zero T
	items = append(items, zero)
	copy(items[i+1:], items[i:])
	items[i] = r
	return items
}

// removeRecord 删除SOffset等于ds的记录
func removeRecord[T offsetRecord](items []T, ds float64) ([]T, bool) {
	for i, item := range items {
		if item.sOffset() == ds {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}

// rebaseRecords 以ds为新起点重排记录：ds处生效的记录移到0，此前的记录丢弃
func rebaseRecords[T offsetRecord](items []T, ds float64, set func(*T, float64)) []T {
	out := make([]T, 0, len(items))
	start := -1
	for i, item := range items {
		if item.sOffset() <= ds {
			start = i
		}
	}
	for i, item := range items {
		if i < start {
			continue
		}
		if i == start {
			set(&item, 0)
		} else {
			set(&item, item.sOffset()-ds)
		}
		out = append(out, item)
	}
	return out
}
