package poly3

import (
	"gonum.org/v1/gonum/mat"
)

// Mode 系数拟合方式
type Mode int

const (
	// ModeValueOnly 仅保证相邻记录的值连续，区间内为弦线（C=D=0）
	ModeValueOnly Mode = iota
	// ModeValueAndSlope 值与斜率都与下一条记录连续（三次Hermite插值）
	ModeValueAndSlope
)

// ComputeCoefficients 根据每条记录的起点值（与斜率）重新计算B、C、D
// 功能：编辑节点后重新拟合多项式，使曲线在记录间连续
// 参数：rs-按S升序的记录，length-最后一条记录延伸到的终点，mode-拟合方式
// 算法说明：
// 1. 对每条记录与下一条记录建立4元线性方程组
//    f(0)=a0, f'(0)=k0, f(ds)=a1, f'(ds)=k1
// 2. ValueOnly时k0=k1=(a1-a0)/ds，ValueAndSlope时k0、k1取两条记录自身的B
// 3. 用gonum/mat求解，得到(a,b,c,d)
// 4. 最后一条记录延伸到length，保持常值（ValueAndSlope时保留B）
// 说明：原地修改；ds<=0的区间无法求解，按常值处理并记录警告
func ComputeCoefficients(rs Records, length float64, mode Mode) {
	for i := range rs {
		cur := &rs[i]
		if i == len(rs)-1 {
			if length < cur.S {
				log.Warnf("ComputeCoefficients: last record s=%v is beyond length %v", cur.S, length)
			}
			if mode == ModeValueOnly {
				cur.B = 0
			}
			cur.C, cur.D = 0, 0
			continue
		}
		next := rs[i+1]
		ds := next.S - cur.S
		if ds <= 0 {
			log.Warnf("ComputeCoefficients: zero-length interval at s=%v", cur.S)
			cur.B, cur.C, cur.D = 0, 0, 0
			continue
		}
		k0, k1 := cur.B, next.B
		if mode == ModeValueOnly {
			k0 = (next.A - cur.A) / ds
			k1 = k0
		}
		coef, err := solveHermite(ds, cur.A, k0, next.A, k1)
		if err != nil {
			log.Warnf("ComputeCoefficients: s=%v: %v", cur.S, err)
			continue
		}
		cur.A, cur.B, cur.C, cur.D = coef[0], coef[1], coef[2], coef[3]
	}
}

// solveHermite 求解端点值与斜率约束下的三次多项式系数
func solveHermite(ds, v0, k0, v1, k1 float64) ([4]float64, error) {
	a := mat.NewDense(4, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
		1, ds, ds * ds, ds * ds * ds,
		0, 1, 2 * ds, 3 * ds * ds,
	})
	b := mat.NewVecDense(4, []float64{v0, k0, v1, k1})
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return [4]float64{}, err
	}
	return [4]float64{x.AtVec(0), x.AtVec(1), x.AtVec(2), x.AtVec(3)}, nil
}
