// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"gonum.org/v1/gonum/mat"
)

// Strided kernels over the gonum raw storage. The main loop must not
// allocate, so the hot mat-vec products run on the backing slices
// directly; factorization and matrix storage stay on gonum.

// symv computes y = Ax for a symmetric matrix with upper storage.
func symv(a *mat.SymDense, x, y []float64) {
	r := a.RawSymmetric()
	n := r.N
	if n > len(x) || n > len(y) {
		panic("bound check error")
	}
	for i := 0; i < n; i++ {
		y[i] = zero
	}
	for i := 0; i < n; i++ {
		row := r.Data[i*r.Stride : i*r.Stride+n : i*r.Stride+n]
		xi := x[i]
		sum := row[i] * xi
		for j := i + 1; j < n; j++ {
			v := row[j]
			sum += v * x[j]
			y[j] += v * xi
		}
		y[i] += sum
	}
}

// gemv computes y = Ax, or y = Aᵀx when trans is set.
func gemv(a *mat.Dense, trans bool, x, y []float64) {
	r := a.RawMatrix()
	if !trans {
		if r.Cols > len(x) || r.Rows > len(y) {
			panic("bound check error")
		}
		for i := 0; i < r.Rows; i++ {
			row := r.Data[i*r.Stride : i*r.Stride+r.Cols : i*r.Stride+r.Cols]
			sum := zero
			for j, v := range row {
				sum += v * x[j]
			}
			y[i] = sum
		}
	} else {
		if r.Rows > len(x) || r.Cols > len(y) {
			panic("bound check error")
		}
		for j := 0; j < r.Cols; j++ {
			y[j] = zero
		}
		for i := 0; i < r.Rows; i++ {
			row := r.Data[i*r.Stride : i*r.Stride+r.Cols : i*r.Stride+r.Cols]
			if xi := x[i]; xi != zero {
				for j, v := range row {
					y[j] += v * xi
				}
			}
		}
	}
}

// stepRatio shrinks alpha so that v + αd stays in the non-negative
// orthant for the components with d < 0.
func stepRatio(alpha float64, v, d []float64) float64 {
	for i, di := range d {
		if di < zero {
			if a := -v[i] / di; a < alpha {
				alpha = a
			}
		}
	}
	return alpha
}
