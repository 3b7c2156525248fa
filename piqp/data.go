// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"gonum.org/v1/gonum/mat"
)

// qpData owns the canonical (possibly equilibrated) problem data:
//
//   - 𝐏 as a symmetric matrix with upper storage
//   - the transposes 𝐀ᵀ (n×p) and 𝐆ᵀ (n×m), nil when p = 0 / m = 0
//   - the vectors 𝐜, 𝐛, 𝐡
//   - the box bounds as compressed packed arrays plus index maps
//
// Only the finite bounds are kept: lbNeg[0..nlb] holds the negated
// finite lower bounds and lbIdx the variable index each entry refers
// to, in increasing variable order. The arrays are allocated with
// capacity n and only the prefix is meaningful. The negation turns
// 𝐱 ≥ 𝒍 into the generic row -𝐱ᵢ ≤ -𝒍ᵢ so the bound blocks share the
// inequality convention of 𝐆𝐱 ≤ 𝐡.
//
// The store is a plain value: all side effects live in the
// preconditioner and the solver driver.
type qpData struct {
	n, p, m  int
	nlb, nub int

	P      *mat.SymDense
	AT, GT *mat.Dense
	c      []float64
	b      []float64
	h      []float64

	lbNeg, ub    []float64
	lbIdx, ubIdx []int
}

func (d *qpData) alloc(n, p, m int) {
	d.n, d.p, d.m = n, p, m
	d.P = mat.NewSymDense(n, nil)
	if p > 0 {
		d.AT = mat.NewDense(n, p, nil)
	}
	if m > 0 {
		d.GT = mat.NewDense(n, m, nil)
	}
	d.c = make([]float64, n)
	d.b = make([]float64, p)
	d.h = make([]float64, m)
	d.lbNeg = make([]float64, n)
	d.ub = make([]float64, n)
	d.lbIdx = make([]int, n)
	d.ubIdx = make([]int, n)
}

// setLowerBounds rebuilds the compressed lower-bound list from a dense
// bound vector. A nil vector deactivates every lower bound.
func (d *qpData) setLowerBounds(xl []float64) {
	nlb := 0
	for i, l := range xl {
		if l > -Inf {
			d.lbNeg[nlb] = -l
			d.lbIdx[nlb] = i
			nlb++
		}
	}
	d.nlb = nlb
}

// setUpperBounds rebuilds the compressed upper-bound list from a dense
// bound vector. A nil vector deactivates every upper bound.
func (d *qpData) setUpperBounds(xu []float64) {
	nub := 0
	for i, u := range xu {
		if u < Inf {
			d.ub[nub] = u
			d.ubIdx[nub] = i
			nub++
		}
	}
	d.nub = nub
}
