package road

import (
	"math"
	"sort"
)

const (
	defaultRoadType     = "town"
	defaultMaxSpeed     = 40
	defaultMaxSpeedUnit = "mph"
)

// TypeRecord 道路类型记录，从S开始生效
type TypeRecord struct {
	S        float64
	Type     string  // motorway, rural, town...
	Country  string  // 国家代码，可为空
	MaxSpeed float64 // 限速，<=0表示无限制
	Unit     string  // m/s, km/h, mph
}

// SetType 添加道路类型记录，S相同的记录被替换
func (r *Road) SetType(s float64, typ string, maxSpeed float64, unit string) {
	rec := TypeRecord{S: s, Type: typ, MaxSpeed: maxSpeed, Unit: unit}
	i := sort.Search(len(r.types), func(i int) bool { return r.types[i].S >= s })
	if i < len(r.types) && r.types[i].S == s {
		rec.Country = r.types[i].Country
		r.types[i] = rec
		return
	}
	r.types = append(r.types, TypeRecord{})
	copy(r.types[i+1:], r.types[i:])
	r.types[i] = rec
}

// AddTypeRecord 原样添加道路类型记录（导入路径）
func (r *Road) AddTypeRecord(rec TypeRecord) {
	r.SetType(rec.S, rec.Type, rec.MaxSpeed, rec.Unit)
	i := sort.Search(len(r.types), func(i int) bool { return r.types[i].S >= rec.S })
	r.types[i].Country = rec.Country
}

// Types 全部道路类型记录（只读）
func (r *Road) Types() []TypeRecord {
	return r.types
}

// RoadTypeAt s处生效的道路类型
// 说明：没有任何记录时先添加默认类型（town，40mph）
func (r *Road) RoadTypeAt(s float64) TypeRecord {
	if len(r.types) == 0 {
		r.SetType(0, defaultRoadType, defaultMaxSpeed, defaultMaxSpeedUnit)
	}
	out := r.types[0]
	for _, t := range r.types {
		if t.S > s {
			break
		}
		out = t
	}
	return out
}

// MaxSpeedAt s处道路限速(km/h)，无限制时返回+Inf
// 参数：laneID-非nil时再与该车道的限速记录取较小值
func (r *Road) MaxSpeedAt(s float64, laneID *int32) float64 {
	limit := toKmph(r.RoadTypeAt(s).MaxSpeed, r.RoadTypeAt(s).Unit)
	if laneID == nil {
		return limit
	}
	sec, err := r.LaneSectionAt(s)
	if err != nil {
		return limit
	}
	l, err := sec.Lane(*laneID)
	if err != nil {
		return limit
	}
	if sp, ok := l.SpeedAt(s - sec.S()); ok {
		if v := toKmph(sp.Max, sp.Unit); v < limit {
			return v
		}
	}
	return limit
}

// toKmph 限速换算为km/h，<=0视为无限制
func toKmph(v float64, unit string) float64 {
	if v <= 0 {
		return math.Inf(1)
	}
	switch unit {
	case "m/s", "ms":
		return v * 3.6
	case "mph":
		return v * 1.609344
	default:
		return v
	}
}
