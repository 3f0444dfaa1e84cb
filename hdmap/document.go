package hdmap

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/geometry"
	"github.com/tsinghua-fib-lab/odrmap/entity/junction"
	"github.com/tsinghua-fib-lab/odrmap/entity/lane"
	"github.com/tsinghua-fib-lab/odrmap/entity/road"
	"github.com/tsinghua-fib-lab/odrmap/utils/input"
)

// lengthTolerance 文档中的道路长度与几何长度之和的允许误差
const lengthTolerance = 1e-3

// Load 由路网文档重建路网
// 功能：在新的管理器中依次创建路口、道路（几何、剖面、车道段、车道、信号与物体），最后设置道路连接，
// 全部成功后替换当前路网
// 参数：doc-路网文档
// 返回：ID重复、枚举文本无法识别或几何退化时返回error，此时路网保持不变
// 说明：系数与车道前驱/后继原样导入，不重新拟合也不按方向规则推导
func (m *Map) Load(doc *input.Document) error {
	roads, junctions := road.NewManager(m), junction.NewManager(m)
	for _, jd := range doc.Junctions {
		if err := loadJunction(junctions, jd); err != nil {
			return err
		}
	}
	created := make([]*road.Road, 0, len(doc.Roads))
	for _, rd := range doc.Roads {
		r, err := loadRoad(roads, rd)
		if err != nil {
			return err
		}
		created = append(created, r)
	}
	// 道路全部创建后再设置连接
	for i, rd := range doc.Roads {
		r := created[i]
		if rd.Predecessor != nil {
			link, err := parseLink(*rd.Predecessor)
			if err != nil {
				return fmt.Errorf("road %d predecessor: %w", rd.ID, err)
			}
			r.SetPredecessor(link.ElementType, link.ElementID, link.ContactPoint)
		}
		if rd.Successor != nil {
			link, err := parseLink(*rd.Successor)
			if err != nil {
				return fmt.Errorf("road %d successor: %w", rd.ID, err)
			}
			r.SetSuccessor(link.ElementType, link.ElementID, link.ContactPoint)
		}
	}

	m.header = doc.Header
	m.roadManager, m.junctionManager = roads, junctions
	for _, r := range created {
		m.watch(r)
	}
	log.Infof("loaded %v", m)
	return nil
}

func loadJunction(junctions *junction.JunctionManager, jd input.Junction) error {
	j, err := junctions.CreateJunction(jd.ID, jd.Name)
	if err != nil {
		return err
	}
	for _, cd := range jd.Connections {
		c := &entity.JunctionConnection{
			ID:             cd.ID,
			IncomingRoad:   cd.IncomingRoad,
			ConnectingRoad: cd.ConnectingRoad,
			ContactPoint:   entity.ParseContactPoint(cd.ContactPoint),
			Weight:         cd.Weight,
			LaneLinks:      append([]entity.LaneLink(nil), cd.LaneLinks...),
		}
		if err := j.AddConnectionInstance(c); err != nil {
			return err
		}
	}
	return nil
}

func loadRoad(roads *road.RoadManager, rd input.Road) (*road.Road, error) {
	r, err := roads.CreateRoad(rd.ID, rd.Name, rd.Junction)
	if err != nil {
		return nil, err
	}
	if rd.TrafficRule != "" {
		r.SetTrafficRule(entity.TrafficRule(rd.TrafficRule))
	}
	for _, t := range rd.Types {
		r.AddTypeRecord(road.TypeRecord{S: t.S, Type: t.Type, Country: t.Country, MaxSpeed: t.MaxSpeed, Unit: t.Unit})
	}
	for _, gd := range rd.PlanView {
		g, err := newGeometry(gd)
		if err != nil {
			return nil, fmt.Errorf("road %d: %w", rd.ID, err)
		}
		r.AddGeometry(g)
	}
	if rd.Length > 0 && math.Abs(rd.Length-r.Length()) > lengthTolerance {
		log.Warnf("%v: declared length %v differs from geometry length", r, rd.Length)
	}
	for _, p := range rd.ControlPoints {
		r.AddControlPoint(r2.Point{X: p.X, Y: p.Y}, false)
	}
	for _, rec := range rd.Elevations {
		r.AddElevation(rec.S, rec.A, rec.B, rec.C, rec.D)
	}
	for _, rec := range rd.SuperElevations {
		r.AddSuperElevation(rec.S, rec.A, rec.B, rec.C, rec.D)
	}
	for _, rec := range rd.LaneOffsets {
		r.AddLaneOffset(rec.S, rec.A, rec.B, rec.C, rec.D)
	}
	for _, sd := range rd.LaneSections {
		sec := r.AddLaneSection(sd.S, sd.SingleSide)
		for _, ld := range sd.Lanes {
			if err := loadLane(sec, ld); err != nil {
				return nil, err
			}
		}
	}
	for _, sig := range rd.Signals {
		if err := r.AddSignal(sig); err != nil {
			return nil, err
		}
	}
	for _, obj := range rd.Objects {
		if err := r.AddObject(obj); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func loadLane(sec *lane.Section, ld input.Lane) error {
	if sec.HasLane(ld.ID) {
		return fmt.Errorf("lane %d in %v: %w", ld.ID, sec, entity.ErrDuplicateID)
	}
	l, err := sec.AddLane(entity.SideOf(ld.ID), ld.ID, entity.LaneType(ld.Type), ld.Level, false)
	if err != nil {
		return err
	}
	if ld.Predecessor != nil {
		l.SetPredecessor(*ld.Predecessor)
	}
	if ld.Successor != nil {
		l.SetSuccessor(*ld.Successor)
	}
	for _, w := range ld.Widths {
		l.AddWidthRecord(w.S, w.A, w.B, w.C, w.D)
	}
	for _, rec := range ld.RoadMarks {
		l.AddRoadMark(rec)
	}
	for _, rec := range ld.Heights {
		l.AddHeight(rec)
	}
	for _, rec := range ld.Speeds {
		l.AddSpeed(rec)
	}
	for _, rec := range ld.Accesses {
		l.AddAccess(rec)
	}
	for _, rec := range ld.Materials {
		l.AddMaterial(rec)
	}
	return nil
}

func newGeometry(gd input.Geometry) (*geometry.Geometry, error) {
	kind, err := geometry.ParseKind(gd.Kind)
	if err != nil {
		return nil, err
	}
	switch kind {
	case geometry.KindLine:
		return geometry.NewLine(gd.S, gd.X, gd.Y, gd.Hdg, gd.Length)
	case geometry.KindArc:
		return geometry.NewArc(gd.S, gd.X, gd.Y, gd.Hdg, gd.Length, gd.Curvature)
	case geometry.KindPoly3:
		c := lo.FromPtr(gd.Poly3)
		return geometry.NewPoly3(gd.S, gd.X, gd.Y, gd.Hdg, gd.Length, c.A, c.B, c.C, c.D)
	default:
		pRange, err := geometry.ParsePRange(gd.PRange)
		if err != nil {
			return nil, err
		}
		return geometry.NewParamPoly3(gd.S, gd.X, gd.Y, gd.Hdg, gd.Length, lo.FromPtr(gd.U), lo.FromPtr(gd.V), pRange)
	}
}

func parseLink(ld input.Link) (entity.RoadLink, error) {
	typ, err := entity.ParseElementType(ld.ElementType)
	if err != nil {
		return entity.RoadLink{}, err
	}
	return entity.RoadLink{
		ElementType:  typ,
		ElementID:    ld.ElementID,
		ContactPoint: entity.ParseContactPoint(ld.ContactPoint),
	}, nil
}

// Document 导出路网文档
// 功能：Load的逆操作，道路与路口按ID升序
// 说明：ID、偏移与多项式系数原样导出；默认的右侧通行不写出
func (m *Map) Document() *input.Document {
	doc := &input.Document{
		Header: m.header,
		Roads:  lo.Map(m.roadManager.Roads(), func(r *road.Road, _ int) input.Road { return exportRoad(r) }),
	}
	for _, j := range m.junctionManager.Junctions() {
		doc.Junctions = append(doc.Junctions, input.Junction{
			ID:   j.ID(),
			Name: j.Name(),
			Connections: lo.Map(j.Connections(), func(c *entity.JunctionConnection, _ int) input.Connection {
				return input.Connection{
					ID:             c.ID,
					IncomingRoad:   c.IncomingRoad,
					ConnectingRoad: c.ConnectingRoad,
					ContactPoint:   c.ContactPoint.String(),
					Weight:         c.Weight,
					LaneLinks:      nilIfEmpty(c.LaneLinks),
				}
			}),
		})
	}
	return doc
}

func exportRoad(r *road.Road) input.Road {
	rd := input.Road{
		ID:              r.ID(),
		Name:            r.Name(),
		Junction:        r.JunctionID(),
		Length:          r.Length(),
		Predecessor:     exportLink(r.Predecessor()),
		Successor:       exportLink(r.Successor()),
		Elevations:      nilIfEmpty(r.Elevations()),
		SuperElevations: nilIfEmpty(r.SuperElevations()),
		LaneOffsets:     nilIfEmpty(r.LaneOffsets()),
	}
	if r.TrafficRule() != entity.TrafficRuleRHT {
		rd.TrafficRule = string(r.TrafficRule())
	}
	for _, t := range r.Types() {
		rd.Types = append(rd.Types, input.RoadType{S: t.S, Type: t.Type, Country: t.Country, MaxSpeed: t.MaxSpeed, Unit: t.Unit})
	}
	rd.PlanView = lo.Map(r.Geometries(), func(g *geometry.Geometry, _ int) input.Geometry { return exportGeometry(g) })
	for _, p := range r.Spline().Points() {
		rd.ControlPoints = append(rd.ControlPoints, input.Point{X: p.X, Y: p.Y})
	}
	for _, sec := range r.LaneSections() {
		rd.LaneSections = append(rd.LaneSections, input.LaneSection{
			S:          sec.S(),
			SingleSide: sec.SingleSide(),
			Lanes:      lo.Map(sec.Lanes(), func(l *lane.Lane, _ int) input.Lane { return exportLane(l) }),
		})
	}
	for _, sig := range r.Signals() {
		rd.Signals = append(rd.Signals, *sig)
	}
	for _, obj := range r.Objects() {
		rd.Objects = append(rd.Objects, *obj)
	}
	return rd
}

func exportGeometry(g *geometry.Geometry) input.Geometry {
	gd := input.Geometry{Kind: g.Kind.String(), S: g.S, X: g.X, Y: g.Y, Hdg: g.Hdg, Length: g.Length}
	switch g.Kind {
	case geometry.KindArc:
		gd.Curvature = g.Curvature
	case geometry.KindPoly3:
		c := g.Poly3
		gd.Poly3 = &c
	case geometry.KindParamPoly3:
		u, v := g.U, g.V
		gd.U, gd.V = &u, &v
		gd.PRange = g.PRange.String()
	}
	return gd
}

func exportLane(l *lane.Lane) input.Lane {
	ld := input.Lane{
		ID:        l.ID(),
		Type:      string(l.Type()),
		Level:     l.Level(),
		Widths:    nilIfEmpty(l.Widths()),
		RoadMarks: nilIfEmpty(l.RoadMarks()),
		Heights:   nilIfEmpty(l.Heights()),
		Speeds:    nilIfEmpty(l.Speeds()),
		Accesses:  nilIfEmpty(l.Accesses()),
		Materials: nilIfEmpty(l.Materials()),
	}
	if id, ok := l.Predecessor(); ok {
		ld.Predecessor = lo.ToPtr(id)
	}
	if id, ok := l.Successor(); ok {
		ld.Successor = lo.ToPtr(id)
	}
	return ld
}

func exportLink(link *entity.RoadLink) *input.Link {
	if link == nil {
		return nil
	}
	return &input.Link{
		ElementType:  link.ElementType.String(),
		ElementID:    link.ElementID,
		ContactPoint: link.ContactPoint.String(),
	}
}

// nilIfEmpty 复制切片，空切片返回nil
func nilIfEmpty[S ~[]T, T any](s S) []T {
	if len(s) == 0 {
		return nil
	}
	return append([]T(nil), s...)
}
