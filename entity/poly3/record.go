// 三次多项式记录(s, a, b, c, d)，用于高程、车道偏移、超高与车道宽度
package poly3

import (
	"fmt"
	"sort"
)

// Record 三次多项式记录
// 功能：表示从S开始生效的三次多项式 f(ds) = A + B*ds + C*ds^2 + D*ds^3，ds = s - S
// 说明：车道宽度记录的S为相对车道段起点的偏移(sOffset)，其余为相对道路起点
type Record struct {
	S float64 `yaml:"s" bson:"s"`
	A float64 `yaml:"a" bson:"a"`
	B float64 `yaml:"b" bson:"b"`
	C float64 `yaml:"c" bson:"c"`
	D float64 `yaml:"d" bson:"d"`
}

// Value 计算ds处的值
func (r Record) Value(ds float64) float64 {
	return r.A + r.B*ds + r.C*ds*ds + r.D*ds*ds*ds
}

// Slope 计算ds处的一阶导数
func (r Record) Slope(ds float64) float64 {
	return r.B + 2*r.C*ds + 3*r.D*ds*ds
}

// ValueAt 计算s（与S同一坐标系）处的值
func (r Record) ValueAt(s float64) float64 {
	return r.Value(s - r.S)
}

func (r Record) String() string {
	return fmt.Sprintf("Record{s=%.3f a=%.4f b=%.4f c=%.4f d=%.4f}", r.S, r.A, r.B, r.C, r.D)
}

// Records 按S严格递增排列的多项式记录
type Records []Record

// IndexAt 返回S<=s的最后一条记录的下标，不存在时返回-1
// 说明：按升序线性扫描，首条记录之前的s返回-1
func (rs Records) IndexAt(s float64) int {
	idx := -1
	for i, r := range rs {
		if r.S > s {
			break
		}
		idx = i
	}
	return idx
}

// At 返回s处生效的记录
func (rs Records) At(s float64) (Record, bool) {
	i := rs.IndexAt(s)
	if i < 0 {
		return Record{}, false
	}
	return rs[i], true
}

// ValueAt 计算s处的值，没有生效记录时为0
func (rs Records) ValueAt(s float64) float64 {
	r, ok := rs.At(s)
	if !ok {
		return 0
	}
	return r.Value(s - r.S)
}

// SlopeAt 计算s处的一阶导数，没有生效记录时为0
func (rs Records) SlopeAt(s float64) float64 {
	r, ok := rs.At(s)
	if !ok {
		return 0
	}
	return r.Slope(s - r.S)
}

// Add 插入一条记录并保持按S升序，S相同的记录被替换
// 返回：记录插入后的下标
func (rs *Records) Add(r Record) int {
	items := *rs
	i := sort.Search(len(items), func(i int) bool { return items[i].S >= r.S })
	if i < len(items) && items[i].S == r.S {
		items[i] = r
		return i
	}
	items = append(items, Record{})
	copy(items[i+1:], items[i:])
	items[i] = r
	*rs = items
	return i
}

// RemoveAt 删除下标i的记录，越界时返回false
func (rs *Records) RemoveAt(i int) bool {
	if i < 0 || i >= len(*rs) {
		return false
	}
	*rs = append((*rs)[:i], (*rs)[i+1:]...)
	return true
}

// Remove 删除S等于s的记录
func (rs *Records) Remove(s float64) bool {
	for i, r := range *rs {
		if r.S == s {
			return rs.RemoveAt(i)
		}
	}
	return false
}

// Clone 深拷贝
func (rs Records) Clone() Records {
	if rs == nil {
		return nil
	}
	return append(Records(nil), rs...)
}

// Sort 按S升序重排，供原始导入后使用
func (rs Records) Sort() {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].S < rs[j].S })
}

// Shift 所有记录的S平移ds，S小于0的记录被丢弃（S恰好落到0之前的最后一条记录除外）
// 说明：用于道路切分时把后半段记录重新定位到新道路的起点
func (rs Records) Shift(ds float64) Records {
	out := make(Records, 0, len(rs))
	start := rs.IndexAt(-ds)
	for i, r := range rs {
		if i < start {
			continue
		}
		if i == start && r.S+ds < 0 {
			// 截断点落在该记录内部，以截断点处的多项式重新展开
			off := -ds - r.S
			r = Record{
				S: 0,
				A: r.Value(off),
				B: r.Slope(off),
				C: r.C + 3*r.D*off,
				D: r.D,
			}
		} else {
			r.S += ds
		}
		out = append(out, r)
	}
	return out
}
