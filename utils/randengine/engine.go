// 随机数引擎，包装了golang.org/x/exp/rand，供路口连接选择等需要可复现随机性的场景使用
package randengine

import (
	"sync"

	"golang.org/x/exp/rand"
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成功能，Safe后缀的方法可并发调用
// 说明：同一种子产生同一序列，路口以自身ID（加配置偏移）作为种子
type Engine struct {
	*rand.Rand            // 底层随机数生成器
	mtx        sync.Mutex // 互斥锁，用于线程安全操作
}

// New 创建随机数引擎
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed))}
}

// Reseed 重置种子，之后的序列与New(seed)相同
func (e *Engine) Reseed(seed uint64) {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	e.Seed(seed)
}

// IntnSafe 随机生成[0, n)范围内的整数（线程安全）
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}

// Float64Safe 随机生成[0.0, 1.0)范围内的浮点数（线程安全）
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// DiscreteDistributionSafe 按给定权重生成随机索引（线程安全）
// 功能：根据权重数组生成离散分布的随机数，支持多线程安全访问
// 参数：weight-权重数组，每个元素表示对应索引的概率权重，负值按0处理
// 返回：随机生成的索引值（0到len(weight)-1），权重全为0或数组为空时返回-1
// 算法说明：
// 1. 计算总权重
// 2. 在[0, 总权重)范围内生成随机数
// 3. 累积权重直到超过随机数，返回该索引
// 说明：浮点误差导致未命中时返回最后一个正权重的索引
func (e *Engine) DiscreteDistributionSafe(weight []float64) int32 {
	total := .0
	last := int32(-1)
	for i, w := range weight {
		if w > 0 {
			total += w
			last = int32(i)
		}
	}
	if last < 0 {
		return -1
	}
	random := total * e.Float64Safe()
	sum := 0.
	for i, w := range weight {
		if w <= 0 {
			continue
		}
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	return last
}
