// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"math"
)

// ruiz equilibrates the stacked constraint data
//
//	⎡ 𝐏  𝐀ᵀ 𝐆ᵀ ⎤
//	⎢ 𝐀        ⎥
//	⎣ 𝐆        ⎦
//
// with diagonal scalings 𝐃ₓ, 𝐃ᵧ, 𝐃ᵤ so that every row and column of the
// scaled data approaches unit ∞-norm, plus a scalar cost normalization γ.
// The bound rows are unit selection rows in the scaled system: their row
// scaling is pinned to 1/𝐝ₓ at the bound index, which keeps the ±1
// coefficients intact and fixes the transforms of the bound duals and
// slacks.
//
// The scaled quantities relate to the user quantities by
//
//	𝐱߮ = 𝐃ₓ⁻¹𝐱   𝐲߮ = γ𝐃ᵧ⁻¹𝐲   𝐳߮ = γ𝐃ᵤ⁻¹𝐳   𝐬߮ = 𝐃ᵤ𝐬
//	𝐏߮ = γ𝐃ₓ𝐏𝐃ₓ  𝐜߮ = γ𝐃ₓ𝐜  𝐀߮ = 𝐃ᵧ𝐀𝐃ₓ  𝐛߮ = 𝐃ᵧ𝐛  𝐆߮ = 𝐃ᵤ𝐆𝐃ₓ  𝐡߮ = 𝐃ᵤ𝐡
//
// and every quantity the driver reports or compares against user
// tolerances goes through the matching unscale transform.
//
// D. Ruiz, 'A scaling algorithm to equilibrate both rows and columns
// norms in matrices', 2001.
type ruiz struct {
	data       *qpData
	dx, dy, dz []float64
	cs         float64
	ex, ey, ez []float64
}

func (r *ruiz) init(d *qpData) {
	r.data = d
	r.dx = make([]float64, d.n)
	r.dy = make([]float64, d.p)
	r.dz = make([]float64, d.m)
	r.ex = make([]float64, d.n)
	r.ey = make([]float64, d.p)
	r.ez = make([]float64, d.m)
	r.reset()
}

func (r *ruiz) reset() {
	fill(r.dx, one)
	fill(r.dy, one)
	fill(r.dz, one)
	r.cs = one
}

// scaleData equilibrates the stored problem, which must be in unscaled
// form. With reuse the previously computed scalings are re-applied
// as-is; otherwise up to sweeps Ruiz iterations recompute them from
// scratch. The scalings are accumulated first and applied to the data
// in a single pass, so identical input data always produces identical
// scaled data.
func (r *ruiz) scaleData(reuse bool, sweeps int) {
	if !reuse {
		r.reset()
		for it := 0; it < sweeps; it++ {
			r.sweep()
		}
		r.normalizeCost()
	}
	r.apply()
}

// sweep accumulates one Ruiz iteration into dx, dy, dz, reading the
// unscaled data through the scalings gathered so far.
func (r *ruiz) sweep() {
	d := r.data
	for j := 0; j < d.n; j++ {
		r.ex[j] = r.colNorm(j)
	}
	// bound rows contribute a unit coefficient to their column
	for i := 0; i < d.nlb; i++ {
		if j := d.lbIdx[i]; r.ex[j] < one {
			r.ex[j] = one
		}
	}
	for i := 0; i < d.nub; i++ {
		if j := d.ubIdx[i]; r.ex[j] < one {
			r.ex[j] = one
		}
	}
	for j := 0; j < d.n; j++ {
		r.ex[j] = invSqrt(r.ex[j])
	}
	for k := 0; k < d.p; k++ {
		nrm := zero
		for j := 0; j < d.n; j++ {
			nrm = math.Max(nrm, math.Abs(d.AT.At(j, k))*r.dx[j]*r.dy[k])
		}
		r.ey[k] = invSqrt(nrm)
	}
	for k := 0; k < d.m; k++ {
		nrm := zero
		for j := 0; j < d.n; j++ {
			nrm = math.Max(nrm, math.Abs(d.GT.At(j, k))*r.dx[j]*r.dz[k])
		}
		r.ez[k] = invSqrt(nrm)
	}
	for j := 0; j < d.n; j++ {
		r.dx[j] *= r.ex[j]
	}
	for k := 0; k < d.p; k++ {
		r.dy[k] *= r.ey[k]
	}
	for k := 0; k < d.m; k++ {
		r.dz[k] *= r.ez[k]
	}
}

// colNorm is the ∞-norm of the stacked column of variable j under the
// accumulated scalings.
func (r *ruiz) colNorm(j int) float64 {
	d := r.data
	nrm := zero
	for i := 0; i < d.n; i++ {
		nrm = math.Max(nrm, math.Abs(d.P.At(i, j))*r.dx[i])
	}
	nrm *= r.dx[j]
	for k := 0; k < d.p; k++ {
		nrm = math.Max(nrm, math.Abs(d.AT.At(j, k))*r.dx[j]*r.dy[k])
	}
	for k := 0; k < d.m; k++ {
		nrm = math.Max(nrm, math.Abs(d.GT.At(j, k))*r.dx[j]*r.dz[k])
	}
	return nrm
}

// normalizeCost folds the cost scalar γ = 1/max(mean column norm of
// 𝐃ₓ𝐏𝐃ₓ, ‖𝐃ₓ𝐜‖∞) into the accumulated scaling.
func (r *ruiz) normalizeCost() {
	d := r.data
	mean := zero
	for j := 0; j < d.n; j++ {
		nrm := zero
		for i := 0; i < d.n; i++ {
			nrm = math.Max(nrm, math.Abs(d.P.At(i, j))*r.dx[i])
		}
		mean += nrm * r.dx[j]
	}
	mean /= float64(d.n)
	cn := zero
	for j, c := range d.c {
		cn = math.Max(cn, math.Abs(c)*r.dx[j])
	}
	if den := math.Max(mean, cn); den > zero {
		r.cs = one / den
	} else {
		r.cs = one
	}
}

// apply writes the accumulated scalings onto the stored unscaled data.
func (r *ruiz) apply() {
	d := r.data
	for i := 0; i < d.n; i++ {
		for j := i; j < d.n; j++ {
			d.P.SetSym(i, j, d.P.At(i, j)*r.cs*r.dx[i]*r.dx[j])
		}
		d.c[i] *= r.cs * r.dx[i]
	}
	for k := 0; k < d.p; k++ {
		for j := 0; j < d.n; j++ {
			d.AT.Set(j, k, d.AT.At(j, k)*r.dx[j]*r.dy[k])
		}
		d.b[k] *= r.dy[k]
	}
	for k := 0; k < d.m; k++ {
		for j := 0; j < d.n; j++ {
			d.GT.Set(j, k, d.GT.At(j, k)*r.dx[j]*r.dz[k])
		}
		d.h[k] *= r.dz[k]
	}
	for i := 0; i < d.nlb; i++ {
		d.lbNeg[i] /= r.dx[d.lbIdx[i]]
	}
	for i := 0; i < d.nub; i++ {
		d.ub[i] /= r.dx[d.ubIdx[i]]
	}
}

// unscaleData restores the stored data to user form. Mandatory before
// any in-place data rewrite.
func (r *ruiz) unscaleData() {
	d := r.data
	for i := 0; i < d.n; i++ {
		for j := i; j < d.n; j++ {
			d.P.SetSym(i, j, d.P.At(i, j)/(r.cs*r.dx[i]*r.dx[j]))
		}
		d.c[i] /= r.cs * r.dx[i]
	}
	for k := 0; k < d.p; k++ {
		for j := 0; j < d.n; j++ {
			d.AT.Set(j, k, d.AT.At(j, k)/(r.dx[j]*r.dy[k]))
		}
		d.b[k] /= r.dy[k]
	}
	for k := 0; k < d.m; k++ {
		for j := 0; j < d.n; j++ {
			d.GT.Set(j, k, d.GT.At(j, k)/(r.dx[j]*r.dz[k]))
		}
		d.h[k] /= r.dz[k]
	}
	for i := 0; i < d.nlb; i++ {
		d.lbNeg[i] *= r.dx[d.lbIdx[i]]
	}
	for i := 0; i < d.nub; i++ {
		d.ub[i] *= r.dx[d.ubIdx[i]]
	}
}

// In-place unscale transforms for every quantity that leaves the core.

func (r *ruiz) unscalePrimal(x []float64) {
	for j := range x {
		x[j] *= r.dx[j]
	}
}

func (r *ruiz) unscaleDualEq(y []float64) {
	for k := range y {
		y[k] *= r.dy[k] / r.cs
	}
}

func (r *ruiz) unscaleDualIneq(z []float64) {
	for k := range z {
		z[k] *= r.dz[k] / r.cs
	}
}

func (r *ruiz) unscaleDualLb(zlb []float64) {
	for i := range zlb {
		zlb[i] /= r.cs * r.dx[r.data.lbIdx[i]]
	}
}

func (r *ruiz) unscaleDualUb(zub []float64) {
	for i := range zub {
		zub[i] /= r.cs * r.dx[r.data.ubIdx[i]]
	}
}

func (r *ruiz) unscaleSlackIneq(s []float64) {
	for k := range s {
		s[k] /= r.dz[k]
	}
}

func (r *ruiz) unscaleSlackLb(slb []float64) {
	for i := range slb {
		slb[i] *= r.dx[r.data.lbIdx[i]]
	}
}

func (r *ruiz) unscaleSlackUb(sub []float64) {
	for i := range sub {
		sub[i] *= r.dx[r.data.ubIdx[i]]
	}
}

func (r *ruiz) unscaleCost(f float64) float64 {
	return f / r.cs
}

// Allocation-free ∞-norms of unscaled quantities. All convergence and
// infeasibility tests run on these, never on the scaled vectors.

func (r *ruiz) infPrimal(v []float64) float64 {
	nrm := zero
	for j, x := range v {
		nrm = math.Max(nrm, math.Abs(x)*r.dx[j])
	}
	return nrm
}

func (r *ruiz) infDualEq(v []float64) float64 {
	nrm := zero
	for k, x := range v {
		nrm = math.Max(nrm, math.Abs(x)*r.dy[k])
	}
	return nrm / r.cs
}

func (r *ruiz) infDualIneq(v []float64) float64 {
	nrm := zero
	for k, x := range v {
		nrm = math.Max(nrm, math.Abs(x)*r.dz[k])
	}
	return nrm / r.cs
}

func (r *ruiz) infDualLb(v []float64) float64 {
	nrm := zero
	for i, x := range v {
		nrm = math.Max(nrm, math.Abs(x)/r.dx[r.data.lbIdx[i]])
	}
	return nrm / r.cs
}

func (r *ruiz) infDualUb(v []float64) float64 {
	nrm := zero
	for i, x := range v {
		nrm = math.Max(nrm, math.Abs(x)/r.dx[r.data.ubIdx[i]])
	}
	return nrm / r.cs
}

func (r *ruiz) infPrimalResEq(v []float64) float64 {
	nrm := zero
	for k, x := range v {
		nrm = math.Max(nrm, math.Abs(x)/r.dy[k])
	}
	return nrm
}

func (r *ruiz) infPrimalResIneq(v []float64) float64 {
	nrm := zero
	for k, x := range v {
		nrm = math.Max(nrm, math.Abs(x)/r.dz[k])
	}
	return nrm
}

func (r *ruiz) infPrimalResLb(v []float64) float64 {
	nrm := zero
	for i, x := range v {
		nrm = math.Max(nrm, math.Abs(x)*r.dx[r.data.lbIdx[i]])
	}
	return nrm
}

func (r *ruiz) infPrimalResUb(v []float64) float64 {
	nrm := zero
	for i, x := range v {
		nrm = math.Max(nrm, math.Abs(x)*r.dx[r.data.ubIdx[i]])
	}
	return nrm
}

func (r *ruiz) infDualRes(v []float64) float64 {
	nrm := zero
	for j, x := range v {
		nrm = math.Max(nrm, math.Abs(x)/r.dx[j])
	}
	return nrm / r.cs
}

func invSqrt(v float64) float64 {
	if v == zero {
		return one
	}
	return one / math.Sqrt(v)
}

func fill(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}
