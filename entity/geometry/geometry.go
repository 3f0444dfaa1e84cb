// 参考线几何基元：直线、圆弧、三次多项式、参数三次多项式
package geometry

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
	"github.com/tsinghua-fib-lab/odrmap/entity"
	"github.com/tsinghua-fib-lab/odrmap/entity/poly3"
)

const (
	straightCurvature = 1e-12 // 曲率绝对值小于该值的圆弧按直线计算
	arcTableSamples   = 256   // poly3弧长表采样数
)

// Kind 几何基元类型
type Kind int32

const (
	KindLine Kind = iota
	KindArc
	KindPoly3
	KindParamPoly3
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindArc:
		return "arc"
	case KindPoly3:
		return "poly3"
	case KindParamPoly3:
		return "paramPoly3"
	default:
		return fmt.Sprintf("Kind(%d)", int32(k))
	}
}

// ParseKind 将OpenDRIVE文本转换为Kind
func ParseKind(s string) (Kind, error) {
	switch s {
	case "line":
		return KindLine, nil
	case "arc":
		return KindArc, nil
	case "poly3":
		return KindPoly3, nil
	case "paramPoly3":
		return KindParamPoly3, nil
	default:
		return 0, fmt.Errorf("unknown geometry kind %q", s)
	}
}

// PRange paramPoly3的参数范围
type PRange int32

const (
	PRangeArcLength  PRange = iota // p ∈ [0, length]
	PRangeNormalized               // p ∈ [0, 1]
)

func (p PRange) String() string {
	if p == PRangeNormalized {
		return "normalized"
	}
	return "arcLength"
}

// ParsePRange 将OpenDRIVE文本转换为PRange，空文本为arcLength
func ParsePRange(s string) (PRange, error) {
	switch s {
	case "", "arcLength":
		return PRangeArcLength, nil
	case "normalized":
		return PRangeNormalized, nil
	default:
		return 0, fmt.Errorf("unknown pRange %q", s)
	}
}

// arcSample poly3弧长表中的一个采样点
type arcSample struct {
	u float64 // 局部横坐标
	s float64 // 从起点到u的累计弧长
}

// Geometry 参考线几何基元
// 功能：按Kind区分的封闭变体，给出从局部弧长到(x, y, hdg)的映射
// 说明：S为基元在道路参考线上的起点，X/Y/Hdg为起点位姿，Length>0
type Geometry struct {
	Kind   Kind
	S      float64
	X      float64
	Y      float64
	Hdg    float64
	Length float64

	Curvature float64      // arc
	Poly3     poly3.Record // poly3，S字段不使用
	U         poly3.Record // paramPoly3 u(p)
	V         poly3.Record // paramPoly3 v(p)
	PRange    PRange       // paramPoly3

	table []arcSample // poly3弧长表
}

func newGeometry(kind Kind, s, x, y, hdg, length float64) (*Geometry, error) {
	if !(length > 0) {
		return nil, fmt.Errorf("%v at s=%v with length %v: %w", kind, s, length, entity.ErrDegenerateGeometry)
	}
	return &Geometry{Kind: kind, S: s, X: x, Y: y, Hdg: hdg, Length: length}, nil
}

// NewLine 创建直线
func NewLine(s, x, y, hdg, length float64) (*Geometry, error) {
	return newGeometry(KindLine, s, x, y, hdg, length)
}

// NewArc 创建圆弧，curvature>0左转，<0右转
func NewArc(s, x, y, hdg, length, curvature float64) (*Geometry, error) {
	g, err := newGeometry(KindArc, s, x, y, hdg, length)
	if err != nil {
		return nil, err
	}
	g.Curvature = curvature
	return g, nil
}

// NewPoly3 创建三次多项式 v = a + b*u + c*u^2 + d*u^3（局部坐标）
// 说明：构造时建立弧长表，弧长到u的映射用线性插值
func NewPoly3(s, x, y, hdg, length, a, b, c, d float64) (*Geometry, error) {
	g, err := newGeometry(KindPoly3, s, x, y, hdg, length)
	if err != nil {
		return nil, err
	}
	g.Poly3 = poly3.Record{A: a, B: b, C: c, D: d}
	g.buildArcTable()
	return g, nil
}

// NewParamPoly3 创建参数三次多项式
func NewParamPoly3(s, x, y, hdg, length float64, u, v poly3.Record, pRange PRange) (*Geometry, error) {
	g, err := newGeometry(KindParamPoly3, s, x, y, hdg, length)
	if err != nil {
		return nil, err
	}
	u.S, v.S = 0, 0
	g.U, g.V, g.PRange = u, v, pRange
	return g, nil
}

// buildArcTable 对sqrt(1+v'(u)^2)做梯形积分，直到累计弧长覆盖Length
// 说明：弧长不小于u，因此u不超过Length，循环最多arcTableSamples步
func (g *Geometry) buildArcTable() {
	du := g.Length / arcTableSamples
	g.table = make([]arcSample, 1, arcTableSamples+1)
	speed := func(u float64) float64 {
		k := g.Poly3.Slope(u)
		return math.Sqrt(1 + k*k)
	}
	u, s := 0., 0.
	for s < g.Length && len(g.table) <= arcTableSamples {
		s += (speed(u) + speed(u+du)) * du / 2
		u += du
		g.table = append(g.table, arcSample{u: u, s: s})
	}
}

// uAt 弧长到局部u的映射
func (g *Geometry) uAt(ds float64) float64 {
	t := g.table
	i := sort.Search(len(t), func(i int) bool { return t[i].s >= ds })
	if i == 0 {
		return 0
	}
	if i >= len(t) {
		return t[len(t)-1].u
	}
	a, b := t[i-1], t[i]
	return a.u + (b.u-a.u)*(ds-a.s)/(b.s-a.s)
}

// End 基元终点的道路s
func (g *Geometry) End() float64 {
	return g.S + g.Length
}

func (g *Geometry) String() string {
	return fmt.Sprintf("Geometry{%v s=%.3f x=%.3f y=%.3f hdg=%.4f len=%.3f}", g.Kind, g.S, g.X, g.Y, g.Hdg, g.Length)
}

// Evaluate 计算局部弧长ds处的位姿
// 功能：返回参考线上的点，Pos.S为道路s，Pos.T为0
// 参数：ds-相对基元起点的弧长，超出[0, Length]时记录警告并截断
func (g *Geometry) Evaluate(ds float64) entity.Pos {
	if ds < 0 || ds > g.Length {
		log.Warnf("Evaluate: local s %v out of [0, %v] for %v", ds, g.Length, g)
		ds = math.Max(0, math.Min(ds, g.Length))
	}
	var p r2.Point
	var hdg float64
	switch g.Kind {
	case KindLine:
		p, hdg = g.evalLine(ds)
	case KindArc:
		if math.Abs(g.Curvature) < straightCurvature {
			p, hdg = g.evalLine(ds)
		} else {
			k := g.Curvature
			p = r2.Point{
				X: g.X + (math.Sin(g.Hdg+k*ds)-math.Sin(g.Hdg))/k,
				Y: g.Y + (math.Cos(g.Hdg)-math.Cos(g.Hdg+k*ds))/k,
			}
			hdg = g.Hdg + k*ds
		}
	case KindPoly3:
		u := g.uAt(ds)
		local := r2.Point{X: u, Y: g.Poly3.Value(u)}
		p = g.toWorld(local)
		hdg = g.Hdg + math.Atan(g.Poly3.Slope(u))
	case KindParamPoly3:
		param := ds
		if g.PRange == PRangeNormalized {
			param = ds / g.Length
		}
		local := r2.Point{X: g.U.Value(param), Y: g.V.Value(param)}
		p = g.toWorld(local)
		du, dv := g.U.Slope(param), g.V.Slope(param)
		hdg = g.Hdg
		if du != 0 || dv != 0 {
			hdg += math.Atan2(dv, du)
		}
	default:
		log.Panicf("Evaluate: unknown geometry kind %v", g.Kind)
	}
	return entity.Pos{S: g.S + ds, X: p.X, Y: p.Y, Hdg: hdg}
}

func (g *Geometry) evalLine(ds float64) (r2.Point, float64) {
	return r2.Point{X: g.X + ds*math.Cos(g.Hdg), Y: g.Y + ds*math.Sin(g.Hdg)}, g.Hdg
}

// toWorld 局部(u, v)坐标旋转到起点航向并平移到起点
func (g *Geometry) toWorld(local r2.Point) r2.Point {
	sin, cos := math.Sincos(g.Hdg)
	return r2.Point{
		X: g.X + local.X*cos - local.Y*sin,
		Y: g.Y + local.X*sin + local.Y*cos,
	}
}

// Clone 深拷贝
func (g *Geometry) Clone() *Geometry {
	c := *g
	c.table = append([]arcSample(nil), g.table...)
	return &c
}

// CloneFrom 从道路s处截取基元的后半段，新基元的S为0
// 返回：截取后的基元，s不在基元内部时返回error
// 说明：直线和圆弧精确截取；paramPoly3在截断点重新展开多项式；poly3的后半段转为paramPoly3
func (g *Geometry) CloneFrom(s float64) (*Geometry, error) {
	ds := s - g.S
	if ds < 0 || ds >= g.Length {
		return nil, fmt.Errorf("CloneFrom: s=%v not inside %v: %w", s, g, entity.ErrDegenerateGeometry)
	}
	start := g.Evaluate(ds)
	rest := g.Length - ds
	switch g.Kind {
	case KindLine:
		return NewLine(0, start.X, start.Y, start.Hdg, rest)
	case KindArc:
		return NewArc(0, start.X, start.Y, start.Hdg, rest, g.Curvature)
	case KindPoly3:
		return g.poly3Tail(ds, start, rest)
	case KindParamPoly3:
		p0 := ds
		scale := 1.0
		if g.PRange == PRangeNormalized {
			p0 = ds / g.Length
			scale = rest / g.Length
		}
		shift := func(r poly3.Record) poly3.Record {
			return poly3.Record{
				A: 0,
				B: r.Slope(p0) * scale,
				C: (r.C + 3*r.D*p0) * scale * scale,
				D: r.D * scale * scale * scale,
			}
		}
		u, v := rotateRecords(shift(g.U), shift(g.V), start.Hdg-g.Hdg)
		return NewParamPoly3(0, start.X, start.Y, start.Hdg, rest, u, v, g.PRange)
	default:
		log.Panicf("CloneFrom: unknown geometry kind %v", g.Kind)
		return nil, nil
	}
}

// shorten 保留基元的前length部分
func (g *Geometry) shorten(length float64) {
	switch g.Kind {
	case KindPoly3:
		g.Length = length
		g.buildArcTable()
	case KindParamPoly3:
		if g.PRange == PRangeNormalized {
			r := length / g.Length
			scale := func(c poly3.Record) poly3.Record {
				return poly3.Record{A: c.A, B: c.B * r, C: c.C * r * r, D: c.D * r * r * r}
			}
			g.U, g.V = scale(g.U), scale(g.V)
		}
		g.Length = length
	default:
		g.Length = length
	}
}

// poly3Tail 以paramPoly3精确表示poly3在局部弧长ds之后的部分
// 算法说明：设h=Δu*p，p∈[0, 1]，截断点相对原局部坐标系的曲线为
// U(p)=h，V(p)=f(u0+h)-f(u0)=f'(u0)h+(c+3du0)h^2+dh^3，再旋转到截断点航向下
func (g *Geometry) poly3Tail(ds float64, start entity.Pos, rest float64) (*Geometry, error) {
	u0 := g.uAt(ds)
	du := g.uAt(g.Length) - u0
	f := g.Poly3
	u := poly3.Record{B: du}
	v := poly3.Record{
		B: f.Slope(u0) * du,
		C: (f.C + 3*f.D*u0) * du * du,
		D: f.D * du * du * du,
	}
	u, v = rotateRecords(u, v, start.Hdg-g.Hdg)
	return NewParamPoly3(0, start.X, start.Y, start.Hdg, rest, u, v, PRangeNormalized)
}

// rotateRecords 将局部曲线(u, v)旋转到相对航向为theta的坐标系下
func rotateRecords(u, v poly3.Record, theta float64) (poly3.Record, poly3.Record) {
	sin, cos := math.Sincos(theta)
	return poly3.Record{
			A: u.A*cos + v.A*sin, B: u.B*cos + v.B*sin, C: u.C*cos + v.C*sin, D: u.D*cos + v.D*sin,
		}, poly3.Record{
			A: -u.A*sin + v.A*cos, B: -u.B*sin + v.B*cos, C: -u.C*sin + v.C*cos, D: -u.D*sin + v.D*cos,
		}
}
