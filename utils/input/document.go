package input

import (
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// 路网文档：YAML文件与MongoDB共用的持久化结构
// 说明：枚举以OpenDRIVE文本保存（road/junction、start/end、line/arc/...），
// 数值与系数原样保存，导入后再导出得到相同的文档

// Document 路网文档
type Document struct {
	Header    Header     `yaml:"header" bson:"header"`
	Roads     []Road     `yaml:"roads" bson:"roads"`
	Junctions []Junction `yaml:"junctions,omitempty" bson:"junctions"`
}

// Header 路网头信息
type Header struct {
	Name     string  `yaml:"name,omitempty" bson:"name"`
	Version  string  `yaml:"version,omitempty" bson:"version"`
	RevMajor int32   `yaml:"rev_major" bson:"rev_major"`
	RevMinor int32   `yaml:"rev_minor" bson:"rev_minor"`
	Date     string  `yaml:"date,omitempty" bson:"date"`
	North    float64 `yaml:"north,omitempty" bson:"north"`
	South    float64 `yaml:"south,omitempty" bson:"south"`
	East     float64 `yaml:"east,omitempty" bson:"east"`
	West     float64 `yaml:"west,omitempty" bson:"west"`
}

// Link 道路前驱/后继
type Link struct {
	ElementType  string `yaml:"element_type" bson:"element_type"`             // road, junction
	ElementID    int32  `yaml:"element_id" bson:"element_id"`
	ContactPoint string `yaml:"contact_point,omitempty" bson:"contact_point"` // start, end
}

// Geometry 参考线几何基元
type Geometry struct {
	Kind      string        `yaml:"kind" bson:"kind"` // line, arc, poly3, paramPoly3
	S         float64       `yaml:"s" bson:"s"`
	X         float64       `yaml:"x" bson:"x"`
	Y         float64       `yaml:"y" bson:"y"`
	Hdg       float64       `yaml:"hdg" bson:"hdg"`
	Length    float64       `yaml:"length" bson:"length"`
	Curvature float64       `yaml:"curvature,omitempty" bson:"curvature"`
	Poly3     *poly3.Record `yaml:"poly3,omitempty" bson:"poly3,omitempty"`
	U         *poly3.Record `yaml:"u,omitempty" bson:"u,omitempty"`
	V         *poly3.Record `yaml:"v,omitempty" bson:"v,omitempty"`
	PRange    string        `yaml:"p_range,omitempty" bson:"p_range"` // arcLength, normalized
}

// Point 控制点
type Point struct {
	X float64 `yaml:"x" bson:"x"`
	Y float64 `yaml:"y" bson:"y"`
}

// RoadType 道路类型记录
type RoadType struct {
	S        float64 `yaml:"s" bson:"s"`
	Type     string  `yaml:"type" bson:"type"`
	Country  string  `yaml:"country,omitempty" bson:"country"`
	MaxSpeed float64 `yaml:"max_speed,omitempty" bson:"max_speed"`
	Unit     string  `yaml:"unit,omitempty" bson:"unit"`
}

// Lane 车道，宽度记录的S为sOffset
type Lane struct {
	ID          int32           `yaml:"id" bson:"id"`
	Type        string          `yaml:"type" bson:"type"`
	Level       bool            `yaml:"level,omitempty" bson:"level"`
	Predecessor *int32          `yaml:"predecessor,omitempty" bson:"predecessor,omitempty"`
	Successor   *int32          `yaml:"successor,omitempty" bson:"successor,omitempty"`
	Widths      []poly3.Record  `yaml:"widths,omitempty" bson:"widths"`
	RoadMarks   []lane.RoadMark `yaml:"road_marks,omitempty" bson:"road_marks"`
	Heights     []lane.Height   `yaml:"heights,omitempty" bson:"heights"`
	Speeds      []lane.Speed    `yaml:"speeds,omitempty" bson:"speeds"`
	Accesses    []lane.Access   `yaml:"accesses,omitempty" bson:"accesses"`
	Materials   []lane.Material `yaml:"materials,omitempty" bson:"materials"`
}

// LaneSection 车道段
type LaneSection struct {
	S          float64 `yaml:"s" bson:"s"`
	SingleSide bool    `yaml:"single_side,omitempty" bson:"single_side"`
	Lanes      []Lane  `yaml:"lanes" bson:"lanes"`
}

// Road 道路
type Road struct {
	ID              int32           `yaml:"id" bson:"id"`
	Name            string          `yaml:"name,omitempty" bson:"name"`
	Junction        int32           `yaml:"junction" bson:"junction"` // -1表示不在路口内
	Length          float64         `yaml:"length,omitempty" bson:"length"`
	TrafficRule     string          `yaml:"traffic_rule,omitempty" bson:"traffic_rule"`
	Predecessor     *Link           `yaml:"predecessor,omitempty" bson:"predecessor,omitempty"`
	Successor       *Link           `yaml:"successor,omitempty" bson:"successor,omitempty"`
	Types           []RoadType      `yaml:"types,omitempty" bson:"types"`
	PlanView        []Geometry      `yaml:"plan_view" bson:"plan_view"`
	ControlPoints   []Point         `yaml:"control_points,omitempty" bson:"control_points"`
	Elevations      []poly3.Record  `yaml:"elevations,omitempty" bson:"elevations"`
	SuperElevations []poly3.Record  `yaml:"super_elevations,omitempty" bson:"super_elevations"`
	LaneOffsets     []poly3.Record  `yaml:"lane_offsets,omitempty" bson:"lane_offsets"`
	LaneSections    []LaneSection   `yaml:"lane_sections" bson:"lane_sections"`
	Signals         []entity.Signal `yaml:"signals,omitempty" bson:"signals"`
	Objects         []entity.Object `yaml:"objects,omitempty" bson:"objects"`
}

// Connection 路口连接
type Connection struct {
	ID             int32             `yaml:"id" bson:"id"`
	IncomingRoad   int32             `yaml:"incoming_road" bson:"incoming_road"`
	ConnectingRoad int32             `yaml:"connecting_road" bson:"connecting_road"`
	ContactPoint   string            `yaml:"contact_point" bson:"contact_point"`
	Weight         float64           `yaml:"weight,omitempty" bson:"weight"`
	LaneLinks      []entity.LaneLink `yaml:"lane_links,omitempty" bson:"lane_links"`
}

// Junction 路口
type Junction struct {
	ID          int32        `yaml:"id" bson:"id"`
	Name        string       `yaml:"name,omitempty" bson:"name"`
	Connections []Connection `yaml:"connections" bson:"connections"`
}
