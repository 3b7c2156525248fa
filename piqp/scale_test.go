// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"math"
	"slices"
	"testing"
)

// badly scaled data touching every block: P, A, G and both bound sides
func equilibrationData() *qpData {
	d := new(qpData)
	d.alloc(3, 2, 2)

	d.P.SetSym(0, 0, 4)
	d.P.SetSym(0, 1, 0.01)
	d.P.SetSym(1, 1, 200)
	d.P.SetSym(2, 2, 0.5)

	// A = ⎡10  0    1⎤  G = ⎡0.1 5 0  ⎤
	//     ⎣ 0  0.02 3⎦      ⎣2   0 0.3⎦
	a := [][2]float64{{10, 0}, {0, 0.02}, {1, 3}}
	g := [][2]float64{{0.1, 2}, {5, 0}, {0, 0.3}}
	for j := 0; j < 3; j++ {
		d.AT.Set(j, 0, a[j][0])
		d.AT.Set(j, 1, a[j][1])
		d.GT.Set(j, 0, g[j][0])
		d.GT.Set(j, 1, g[j][1])
	}

	copy(d.c, []float64{1, 0.001, 50})
	copy(d.b, []float64{2, 3})
	copy(d.h, []float64{1, 1})

	d.setLowerBounds([]float64{0, -Inf, -1})
	d.setUpperBounds([]float64{Inf, 2, Inf})
	return d
}

func snapshot(d *qpData) (p, at, gt, c, b, h, lb, ub []float64) {
	for i := 0; i < d.n; i++ {
		for j := i; j < d.n; j++ {
			p = append(p, d.P.At(i, j))
		}
		for k := 0; k < d.p; k++ {
			at = append(at, d.AT.At(i, k))
		}
		for k := 0; k < d.m; k++ {
			gt = append(gt, d.GT.At(i, k))
		}
	}
	c = slices.Clone(d.c)
	b = slices.Clone(d.b)
	h = slices.Clone(d.h)
	lb = slices.Clone(d.lbNeg[:d.nlb])
	ub = slices.Clone(d.ub[:d.nub])
	return
}

func TestRuizRoundTrip(t *testing.T) {

	d := equilibrationData()
	p0, at0, gt0, c0, b0, h0, lb0, ub0 := snapshot(d)

	var r ruiz
	r.init(d)
	r.scaleData(false, 10)
	r.unscaleData()

	p1, at1, gt1, c1, b1, h1, lb1, ub1 := snapshot(d)
	const tol = 1e-10
	switch {
	case !almostEqual(p0, p1, tol):
		t.Fatal("TestRuizRoundTrip: P not restored")
	case !almostEqual(at0, at1, tol):
		t.Fatal("TestRuizRoundTrip: AT not restored")
	case !almostEqual(gt0, gt1, tol):
		t.Fatal("TestRuizRoundTrip: GT not restored")
	case !almostEqual(c0, c1, tol) || !almostEqual(b0, b1, tol) || !almostEqual(h0, h1, tol):
		t.Fatal("TestRuizRoundTrip: vectors not restored")
	case !almostEqual(lb0, lb1, tol) || !almostEqual(ub0, ub1, tol):
		t.Fatal("TestRuizRoundTrip: bounds not restored")
	}
}

func TestRuizVectorRoundTrip(t *testing.T) {

	d := equilibrationData()
	var r ruiz
	r.init(d)
	r.scaleData(false, 10)

	// primal: 𝐱߮ = 𝐃ₓ⁻¹𝐱
	x := []float64{1.5, -2, 3}
	w := slices.Clone(x)
	for j := range w {
		w[j] /= r.dx[j]
	}
	r.unscalePrimal(w)
	if !almostEqual(w, x, 1e-12) {
		t.Fatal("TestRuizVectorRoundTrip: primal")
	}

	// equality dual: 𝐲߮ = γ𝐃ᵧ⁻¹𝐲
	y := []float64{-4, 0.25}
	w = slices.Clone(y)
	for k := range w {
		w[k] *= r.cs / r.dy[k]
	}
	r.unscaleDualEq(w)
	if !almostEqual(w, y, 1e-12) {
		t.Fatal("TestRuizVectorRoundTrip: equality dual")
	}

	// inequality slack: 𝐬߮ = 𝐃ᵤ𝐬
	s := []float64{0.5, 8}
	w = slices.Clone(s)
	for k := range w {
		w[k] *= r.dz[k]
	}
	r.unscaleSlackIneq(w)
	if !almostEqual(w, s, 1e-12) {
		t.Fatal("TestRuizVectorRoundTrip: inequality slack")
	}

	// cost: 𝒇߮ = γ𝒇
	if f := 12.75; !almostEqual(r.unscaleCost(r.cs*f), f, 1e-12) {
		t.Fatal("TestRuizVectorRoundTrip: cost")
	}
}

func TestRuizEquilibrates(t *testing.T) {

	d := equilibrationData()
	var r ruiz
	r.init(d)
	r.scaleData(false, 10)

	// constraint rows of the scaled data approach unit ∞-norm
	for k := 0; k < d.p; k++ {
		nrm := zero
		for j := 0; j < d.n; j++ {
			nrm = math.Max(nrm, math.Abs(d.AT.At(j, k)))
		}
		if nrm < 0.5 || nrm > 2 {
			t.Fatalf("TestRuizEquilibrates: equality row %d norm %v", k, nrm)
		}
	}
	for k := 0; k < d.m; k++ {
		nrm := zero
		for j := 0; j < d.n; j++ {
			nrm = math.Max(nrm, math.Abs(d.GT.At(j, k)))
		}
		if nrm < 0.5 || nrm > 2 {
			t.Fatalf("TestRuizEquilibrates: inequality row %d norm %v", k, nrm)
		}
	}

	// variable columns of the stacked data, cost scaling removed from P
	for j := 0; j < d.n; j++ {
		nrm := zero
		for i := 0; i < d.n; i++ {
			nrm = math.Max(nrm, math.Abs(d.P.At(i, j))/r.cs)
		}
		for k := 0; k < d.p; k++ {
			nrm = math.Max(nrm, math.Abs(d.AT.At(j, k)))
		}
		for k := 0; k < d.m; k++ {
			nrm = math.Max(nrm, math.Abs(d.GT.At(j, k)))
		}
		for i := 0; i < d.nlb; i++ {
			if d.lbIdx[i] == j {
				nrm = math.Max(nrm, one)
			}
		}
		for i := 0; i < d.nub; i++ {
			if d.ubIdx[i] == j {
				nrm = math.Max(nrm, one)
			}
		}
		if nrm < 0.5 || nrm > 2 {
			t.Fatalf("TestRuizEquilibrates: variable column %d norm %v", j, nrm)
		}
	}
}
