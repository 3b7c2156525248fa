// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"math"
	"testing"
)

// newtonData is a small problem exercising every block of the Newton
// system: equalities, inequalities and both bound sides.
func newtonData() *qpData {
	d := new(qpData)
	d.alloc(4, 2, 3)

	d.P.SetSym(0, 0, 4)
	d.P.SetSym(0, 1, 1)
	d.P.SetSym(1, 1, 3)
	d.P.SetSym(1, 2, 0.5)
	d.P.SetSym(2, 2, 2)
	d.P.SetSym(3, 3, 1.5)

	a := [][2]float64{{1, 0.3}, {2, 0}, {0, 1}, {-1, 0.7}}
	g := [][3]float64{{1, 0, 2}, {0, 1, -1}, {3, 0.2, 0}, {0, -2, 1}}
	for j := 0; j < 4; j++ {
		for k := 0; k < 2; k++ {
			d.AT.Set(j, k, a[j][k])
		}
		for k := 0; k < 3; k++ {
			d.GT.Set(j, k, g[j][k])
		}
	}

	d.setLowerBounds([]float64{0, -Inf, -1, -Inf})
	d.setUpperBounds([]float64{Inf, 2, Inf, 5})
	return d
}

func TestDenseKKTSolve(t *testing.T) {

	d := newtonData()
	kkt := newDenseKKT(d)

	const rho, delta = 1e-3, 1e-2
	kkt.init(rho, delta)

	s := []float64{0.7, 1.2, 0.4}
	z := []float64{1.1, 0.5, 2.0}
	slb := []float64{0.9, 0.2}
	zlb := []float64{0.3, 1.5}
	sub := []float64{1.4, 0.8}
	zub := []float64{0.6, 0.25}
	kkt.updateScalings(rho, delta, s, slb, sub, z, zlb, zub)

	if !kkt.factorize() {
		t.Fatal("TestDenseKKTSolve: factorization must succeed")
	}

	rx := []float64{1, -2, 0.5, 3}
	ry := []float64{0.25, -1}
	rz := []float64{2, 0.5, -0.75}
	rzlb := []float64{0.1, -0.4}
	rzub := []float64{-0.2, 1.3}
	rs := []float64{0.3, -0.6, 0.9}
	rslb := []float64{-0.05, 0.15}
	rsub := []float64{0.45, -0.35}

	dx := make([]float64, 4)
	dy := make([]float64, 2)
	dz := make([]float64, 3)
	dzlb := make([]float64, 2)
	dzub := make([]float64, 2)
	ds := make([]float64, 3)
	dslb := make([]float64, 2)
	dsub := make([]float64, 2)

	kkt.solve(rx, ry, rz, rzlb, rzub, rs, rslb, rsub,
		dx, dy, dz, dzlb, dzub, ds, dslb, dsub)

	const tol = 1e-9

	// (𝐏+𝛒𝐈)𝚫𝐱 + 𝐀ᵀ𝚫𝐲 + 𝐆ᵀ𝚫𝐳 - 𝐄ₗᵀ𝚫𝐳ₗ + 𝐄ᵤᵀ𝚫𝐳ᵤ = 𝐫ₓ
	for i := 0; i < d.n; i++ {
		sum := rho * dx[i]
		for j := 0; j < d.n; j++ {
			sum += d.P.At(i, j) * dx[j]
		}
		for k := 0; k < d.p; k++ {
			sum += d.AT.At(i, k) * dy[k]
		}
		for k := 0; k < d.m; k++ {
			sum += d.GT.At(i, k) * dz[k]
		}
		for k := 0; k < d.nlb; k++ {
			if d.lbIdx[k] == i {
				sum -= dzlb[k]
			}
		}
		for k := 0; k < d.nub; k++ {
			if d.ubIdx[k] == i {
				sum += dzub[k]
			}
		}
		if !almostEqual(sum, rx[i], tol) {
			t.Fatalf("TestDenseKKTSolve: stationarity row %d: %v != %v", i, sum, rx[i])
		}
	}

	// 𝐀𝚫𝐱 - 𝛅𝚫𝐲 = 𝐫ᵧ
	for k := 0; k < d.p; k++ {
		sum := -delta * dy[k]
		for i := 0; i < d.n; i++ {
			sum += d.AT.At(i, k) * dx[i]
		}
		if !almostEqual(sum, ry[k], tol) {
			t.Fatalf("TestDenseKKTSolve: equality row %d", k)
		}
	}

	// 𝐆𝚫𝐱 + 𝚫𝐬 - 𝛅𝚫𝐳 = 𝐫ᵤ
	for k := 0; k < d.m; k++ {
		sum := ds[k] - delta*dz[k]
		for i := 0; i < d.n; i++ {
			sum += d.GT.At(i, k) * dx[i]
		}
		if !almostEqual(sum, rz[k], tol) {
			t.Fatalf("TestDenseKKTSolve: inequality row %d", k)
		}
	}

	// -𝚫𝐱ᵢ + 𝚫𝐬ₗ - 𝛅𝚫𝐳ₗ = 𝐫ₗ and 𝚫𝐱ᵢ + 𝚫𝐬ᵤ - 𝛅𝚫𝐳ᵤ = 𝐫ᵤ
	for k := 0; k < d.nlb; k++ {
		sum := -dx[d.lbIdx[k]] + dslb[k] - delta*dzlb[k]
		if !almostEqual(sum, rzlb[k], tol) {
			t.Fatalf("TestDenseKKTSolve: lower bound row %d", k)
		}
	}
	for k := 0; k < d.nub; k++ {
		sum := dx[d.ubIdx[k]] + dsub[k] - delta*dzub[k]
		if !almostEqual(sum, rzub[k], tol) {
			t.Fatalf("TestDenseKKTSolve: upper bound row %d", k)
		}
	}

	// 𝐒𝚫𝐳 + 𝐙𝚫𝐬 = 𝐫ₛ per piece
	for k := 0; k < d.m; k++ {
		if !almostEqual(s[k]*dz[k]+z[k]*ds[k], rs[k], tol) {
			t.Fatalf("TestDenseKKTSolve: complementarity row %d", k)
		}
	}
	for k := 0; k < d.nlb; k++ {
		if !almostEqual(slb[k]*dzlb[k]+zlb[k]*dslb[k], rslb[k], tol) {
			t.Fatalf("TestDenseKKTSolve: lower complementarity row %d", k)
		}
	}
	for k := 0; k < d.nub; k++ {
		if !almostEqual(sub[k]*dzub[k]+zub[k]*dsub[k], rsub[k], tol) {
			t.Fatalf("TestDenseKKTSolve: upper complementarity row %d", k)
		}
	}
}

func TestDenseKKTBreakdown(t *testing.T) {

	d := new(qpData)
	d.alloc(2, 0, 0)
	d.P.SetSym(0, 0, 1)
	d.P.SetSym(1, 1, -10)
	d.setLowerBounds(nil)
	d.setUpperBounds(nil)

	k := newDenseKKT(d)
	k.init(1e-6, 1e-6)
	if k.factorize() {
		t.Fatal("TestDenseKKTBreakdown: indefinite system must not factorize")
	}

	// enough regularization makes the condensed system definite again
	k.updateScalings(100, 1e-6, nil, nil, nil, nil, nil, nil)
	if !k.factorize() {
		t.Fatal("TestDenseKKTBreakdown: regularized system must factorize")
	}

	// NaN data must report breakdown instead of panicking
	d.P.SetSym(1, 1, math.NaN())
	k.updateScalings(1e-6, 1e-6, nil, nil, nil, nil, nil, nil)
	if k.factorize() {
		t.Fatal("TestDenseKKTBreakdown: NaN data must not factorize")
	}
}
