// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// kktChange tells the KKT operator which data blocks were rewritten by
// an update so the numerical blocks can refresh without touching the
// symbolic structure.
type kktChange uint8

const (
	kktChangeP kktChange = 1 << iota
	kktChangeA
	kktChangeG

	kktChangeNone kktChange = 0
)

// kktSystem solves the augmented regularized Newton system of the
// log-barrier KKT conditions
//
//	⎡ 𝐏+𝛒𝐈  𝐀ᵀ    𝐆ᵀ      -𝐄ₗᵀ       𝐄ᵤᵀ      ⎤⎡𝚫𝐱 ⎤   ⎡𝐫ₓ ⎤
//	⎢ 𝐀    -𝛅𝐈                                ⎥⎢𝚫𝐲 ⎥   ⎢𝐫ᵧ ⎥
//	⎢ 𝐆          -𝐙⁻¹𝐒-𝛅𝐈                     ⎥⎢𝚫𝐳 ⎥ = ⎢𝐫ᵤ…⎥
//	⎢-𝐄ₗ                 -𝐙ₗ⁻¹𝐒ₗ-𝛅𝐈           ⎥⎢𝚫𝐳ₗ⎥
//	⎣ 𝐄ᵤ                            -𝐙ᵤ⁻¹𝐒ᵤ-𝛅𝐈 ⎦⎣𝚫𝐳ᵤ⎦
//
// where 𝐄ₗ, 𝐄ᵤ select the lower/upper bounded variables, with the slack
// directions 𝚫𝐬 recovered from the complementarity right-hand sides by
// back-substitution. The diagonal scalings change on every iteration;
// the symbolic structure is fixed at setup.
//
// A false factorize is a first-class recoverable signal: the driver
// inflates 𝛒, 𝛅 and retries. solve may only run after a successful
// factorize and must not alias its inputs with its outputs.
type kktSystem interface {
	init(rho, delta float64)
	updateScalings(rho, delta float64, s, slb, sub, z, zlb, zub []float64)
	updateData(change kktChange)
	factorize() bool
	solve(rx, ry, rz, rzlb, rzub, rs, rslb, rsub,
		dx, dy, dz, dzlb, dzub, ds, dslb, dsub []float64)
}

// factorize rejects condition estimates beyond this limit so that a
// successful factorization can always be solved against.
const kktCondLimit = 1e15

// denseKKT eliminates the dual and slack blocks and factors the
// condensed positive definite matrix
//
//	𝐂 = 𝐏 + 𝛒𝐈 + 𝛅⁻¹𝐀ᵀ𝐀 + 𝐆ᵀ𝐖𝐆 + 𝐄ₗᵀ𝐖ₗ𝐄ₗ + 𝐄ᵤᵀ𝐖ᵤ𝐄ᵤ
//
// with 𝐖 = (𝛅𝐈 + 𝐙⁻¹𝐒)⁻¹ per inequality piece, by Cholesky.
type denseKKT struct {
	data       *qpData
	rho, delta float64

	// staged barrier scalings
	s, zinv     []float64
	slb, zlbinv []float64
	sub, zubinv []float64
	w, wlb, wub []float64
	sqw         []float64
	kkt, outer  *mat.SymDense
	scaledGT    *mat.Dense
	chol        mat.Cholesky
	rhs, sol    *mat.VecDense
	tm          []float64
}

func newDenseKKT(d *qpData) *denseKKT {
	k := &denseKKT{data: d}
	k.s = make([]float64, d.m)
	k.zinv = make([]float64, d.m)
	k.slb = make([]float64, d.n)
	k.zlbinv = make([]float64, d.n)
	k.sub = make([]float64, d.n)
	k.zubinv = make([]float64, d.n)
	k.w = make([]float64, d.m)
	k.wlb = make([]float64, d.n)
	k.wub = make([]float64, d.n)
	k.sqw = make([]float64, d.m)
	k.kkt = mat.NewSymDense(d.n, nil)
	if d.p > 0 || d.m > 0 {
		k.outer = mat.NewSymDense(d.n, nil)
	}
	if d.m > 0 {
		k.scaledGT = mat.NewDense(d.n, d.m, nil)
	}
	k.rhs = mat.NewVecDense(d.n, nil)
	k.sol = mat.NewVecDense(d.n, nil)
	k.tm = make([]float64, d.m)
	return k
}

// init stages unit slack scalings, before any iterate exists.
func (k *denseKKT) init(rho, delta float64) {
	fill(k.s, one)
	fill(k.zinv, one)
	fill(k.slb, one)
	fill(k.zlbinv, one)
	fill(k.sub, one)
	fill(k.zubinv, one)
	k.stage(rho, delta)
}

// stage recomputes the condensed diagonal weights from the staged
// slack copies.
func (k *denseKKT) stage(rho, delta float64) {
	d := k.data
	k.rho, k.delta = rho, delta
	for j := 0; j < d.m; j++ {
		k.w[j] = one / (delta + k.s[j]*k.zinv[j])
		k.sqw[j] = math.Sqrt(k.w[j])
	}
	for i := 0; i < d.nlb; i++ {
		k.wlb[i] = one / (delta + k.slb[i]*k.zlbinv[i])
	}
	for i := 0; i < d.nub; i++ {
		k.wub[i] = one / (delta + k.sub[i]*k.zubinv[i])
	}
}

func (k *denseKKT) updateScalings(rho, delta float64, s, slb, sub, z, zlb, zub []float64) {
	d := k.data
	for j := 0; j < d.m; j++ {
		k.s[j] = s[j]
		k.zinv[j] = one / z[j]
	}
	for i := 0; i < d.nlb; i++ {
		k.slb[i] = slb[i]
		k.zlbinv[i] = one / zlb[i]
	}
	for i := 0; i < d.nub; i++ {
		k.sub[i] = sub[i]
		k.zubinv[i] = one / zub[i]
	}
	k.stage(rho, delta)
}

// updateData is a no-op for the dense backend: factorize reassembles
// the condensed matrix from the store on every call.
func (k *denseKKT) updateData(kktChange) {}

func (k *denseKKT) factorize() bool {
	d := k.data
	k.kkt.CopySym(d.P)
	for i := 0; i < d.n; i++ {
		k.kkt.SetSym(i, i, k.kkt.At(i, i)+k.rho)
	}
	if d.p > 0 {
		k.outer.SymOuterK(one/k.delta, d.AT)
		k.kkt.AddSym(k.kkt, k.outer)
	}
	if d.m > 0 {
		g := d.GT.RawMatrix()
		sg := k.scaledGT.RawMatrix()
		for i := 0; i < d.n; i++ {
			row := g.Data[i*g.Stride : i*g.Stride+d.m : i*g.Stride+d.m]
			out := sg.Data[i*sg.Stride : i*sg.Stride+d.m : i*sg.Stride+d.m]
			for j, v := range row {
				out[j] = v * k.sqw[j]
			}
		}
		k.outer.SymOuterK(one, k.scaledGT)
		k.kkt.AddSym(k.kkt, k.outer)
	}
	for i := 0; i < d.nlb; i++ {
		j := d.lbIdx[i]
		k.kkt.SetSym(j, j, k.kkt.At(j, j)+k.wlb[i])
	}
	for i := 0; i < d.nub; i++ {
		j := d.ubIdx[i]
		k.kkt.SetSym(j, j, k.kkt.At(j, j)+k.wub[i])
	}
	if !k.chol.Factorize(k.kkt) {
		return false
	}
	return k.chol.Cond() <= kktCondLimit
}

func (k *denseKKT) solve(rx, ry, rz, rzlb, rzub, rs, rslb, rsub,
	dx, dy, dz, dzlb, dzub, ds, dslb, dsub []float64) {

	d := k.data
	rhs := k.rhs.RawVector().Data
	copy(rhs, rx[:d.n])
	if d.p > 0 {
		a := d.AT.RawMatrix()
		for i := 0; i < d.n; i++ {
			row := a.Data[i*a.Stride : i*a.Stride+d.p : i*a.Stride+d.p]
			sum := zero
			for j, v := range row {
				sum += v * ry[j]
			}
			rhs[i] += sum / k.delta
		}
	}
	if d.m > 0 {
		for j := 0; j < d.m; j++ {
			k.tm[j] = k.w[j] * (rz[j] - k.zinv[j]*rs[j])
		}
		g := d.GT.RawMatrix()
		for i := 0; i < d.n; i++ {
			row := g.Data[i*g.Stride : i*g.Stride+d.m : i*g.Stride+d.m]
			sum := zero
			for j, v := range row {
				sum += v * k.tm[j]
			}
			rhs[i] += sum
		}
	}
	for i := 0; i < d.nlb; i++ {
		rhs[d.lbIdx[i]] -= k.wlb[i] * (rzlb[i] - k.zlbinv[i]*rslb[i])
	}
	for i := 0; i < d.nub; i++ {
		rhs[d.ubIdx[i]] += k.wub[i] * (rzub[i] - k.zubinv[i]*rsub[i])
	}

	// the condition gate in factorize keeps the factor solvable
	_ = k.chol.SolveVecTo(k.sol, k.rhs)
	copy(dx[:d.n], k.sol.RawVector().Data)

	if d.p > 0 {
		a := d.AT.RawMatrix()
		for j := 0; j < d.p; j++ {
			dy[j] = -ry[j]
		}
		for i := 0; i < d.n; i++ {
			row := a.Data[i*a.Stride : i*a.Stride+d.p : i*a.Stride+d.p]
			if xi := dx[i]; xi != zero {
				for j, v := range row {
					dy[j] += v * xi
				}
			}
		}
		for j := 0; j < d.p; j++ {
			dy[j] /= k.delta
		}
	}
	if d.m > 0 {
		g := d.GT.RawMatrix()
		for j := 0; j < d.m; j++ {
			dz[j] = -rz[j] + k.zinv[j]*rs[j]
		}
		for i := 0; i < d.n; i++ {
			row := g.Data[i*g.Stride : i*g.Stride+d.m : i*g.Stride+d.m]
			if xi := dx[i]; xi != zero {
				for j, v := range row {
					dz[j] += v * xi
				}
			}
		}
		for j := 0; j < d.m; j++ {
			dz[j] *= k.w[j]
			ds[j] = k.zinv[j] * (rs[j] - k.s[j]*dz[j])
		}
	}
	for i := 0; i < d.nlb; i++ {
		dzlb[i] = k.wlb[i] * (-dx[d.lbIdx[i]] - rzlb[i] + k.zlbinv[i]*rslb[i])
		dslb[i] = k.zlbinv[i] * (rslb[i] - k.slb[i]*dzlb[i])
	}
	for i := 0; i < d.nub; i++ {
		dzub[i] = k.wub[i] * (dx[d.ubIdx[i]] - rzub[i] + k.zubinv[i]*rsub[i])
		dsub[i] = k.zubinv[i] * (rsub[i] - k.sub[i]*dzub[i])
	}
}
