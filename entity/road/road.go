package road

import (
	"fmt"
	"sort"

	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/geometry"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

// Road 道路实体
// 功能：表示路网中的一条道路，包含参考线、高程/超高/车道偏移、车道段、道路连接、信号与物体
// 说明：长度为参考线几何基元长度之和；非路口内道路的junctionID为-1
type Road struct {
	ctx entity.IMapContext

	id          int32
	name        string
	junctionID  int32
	length      float64
	trafficRule entity.TrafficRule

	planView        *geometry.PlanView
	spline          *geometry.Spline // 控制点，参考线为空时用于重新生成
	elevations      poly3.Records
	superElevations poly3.Records
	laneOffsets     poly3.Records
	sections        []*lane.Section // 按S升序
	types           []TypeRecord    // 按S升序

	predecessor *entity.RoadLink
	successor   *entity.RoadLink

	signals []*entity.Signal
	objects []*entity.Object

	listeners []func(*Road) // 参考线重新生成后的回调
}

// newRoad 创建空道路，由RoadManager调用
func newRoad(ctx entity.IMapContext, id int32, name string, junctionID int32) *Road {
	return &Road{
		ctx:         ctx,
		id:          id,
		name:        name,
		junctionID:  junctionID,
		trafficRule: entity.TrafficRuleRHT,
		planView:    geometry.NewPlanView(),
		spline:      geometry.NewSpline(),
		sections:    make([]*lane.Section, 0),
	}
}

func (r *Road) String() string {
	return fmt.Sprintf("Road{id=%d name=%q length=%.3f junction=%d}", r.id, r.name, r.length, r.junctionID)
}

// 获取Road ID
func (r *Road) ID() int32 {
	return r.id
}

// 获取Road名称
func (r *Road) Name() string {
	return r.name
}

func (r *Road) SetName(name string) {
	r.name = name
}

// 获取Road长度
func (r *Road) Length() float64 {
	return r.length
}

// JunctionID 所属路口ID，-1表示不在路口内
func (r *Road) JunctionID() int32 {
	return r.junctionID
}

// IsJunction 是否为路口内的连接道路
func (r *Road) IsJunction() bool {
	return r.junctionID >= 0
}

func (r *Road) SetJunctionID(id int32) {
	r.junctionID = id
}

func (r *Road) TrafficRule() entity.TrafficRule {
	return r.trafficRule
}

func (r *Road) SetTrafficRule(rule entity.TrafficRule) {
	r.trafficRule = rule
}

// OnUpdated 注册参考线重新生成后的回调
func (r *Road) OnUpdated(fn func(*Road)) {
	r.listeners = append(r.listeners, fn)
}

func (r *Road) notifyUpdated() {
	for _, fn := range r.listeners {
		fn(r)
	}
}

// 信号与物体

// AddSignal 添加信号，ID重复时返回error
func (r *Road) AddSignal(sig entity.Signal) error {
	for _, cur := range r.signals {
		if cur.ID == sig.ID {
			return fmt.Errorf("signal %d on %v: %w", sig.ID, r, entity.ErrDuplicateID)
		}
	}
	r.signals = append(r.signals, &sig)
	sort.SliceStable(r.signals, func(i, j int) bool { return r.signals[i].S < r.signals[j].S })
	return nil
}

func (r *Road) RemoveSignal(id int32) bool {
	for i, cur := range r.signals {
		if cur.ID == id {
			r.signals = append(r.signals[:i], r.signals[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Road) Signal(id int32) (*entity.Signal, bool) {
	for _, cur := range r.signals {
		if cur.ID == id {
			return cur, true
		}
	}
	return nil, false
}

// Signals 按S升序的信号（只读）
func (r *Road) Signals() []*entity.Signal {
	return r.signals
}

// AddObject 添加物体，ID重复时返回error
func (r *Road) AddObject(obj entity.Object) error {
	for _, cur := range r.objects {
		if cur.ID == obj.ID {
			return fmt.Errorf("object %d on %v: %w", obj.ID, r, entity.ErrDuplicateID)
		}
	}
	r.objects = append(r.objects, &obj)
	sort.SliceStable(r.objects, func(i, j int) bool { return r.objects[i].S < r.objects[j].S })
	return nil
}

func (r *Road) RemoveObject(id int32) bool {
	for i, cur := range r.objects {
		if cur.ID == id {
			r.objects = append(r.objects[:i], r.objects[i+1:]...)
			return true
		}
	}
	return false
}

func (r *Road) Object(id int32) (*entity.Object, bool) {
	for _, cur := range r.objects {
		if cur.ID == id {
			return cur, true
		}
	}
	return nil, false
}

func (r *Road) Objects() []*entity.Object {
	return r.objects
}
