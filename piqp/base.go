// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package piqp solves convex QP (Quadratic Programming) problems
//
//	minimize ½ 𝐱ᵀ𝐏𝐱 + 𝐜ᵀ𝐱 subject to
//	  - equality constraints: 𝐀𝐱 = 𝐛
//	  - inequality constraints: 𝐆𝐱 ≤ 𝐡
//	  - boundaries: 𝒍ᵢ ≤ 𝐱ᵢ ≤ 𝒖ᵢ (i = 1 ··· n)
//
// with a regularized primal-dual interior-point method wrapped in a
// proximal outer iteration. The inner iteration is a Mehrotra style
// predictor-corrector step on the log-barrier KKT conditions, and the
// proximal penalties 𝛒, 𝛅 keep the Newton systems quasi-definite even
// when 𝐏 is only semidefinite or the constraints are degenerate.
//
// R. Schwan, Y. Jiang, D. Kuhn, C.N. Jones,
// 'PIQP: A Proximal Interior-Point Quadratic Programming Solver', 2023.
package piqp

import (
	"fmt"
	"io"
)

const (
	zero = 0.0
	one  = 1.0
	half = 0.5
	eps  = float64(7)/3 - float64(4)/3 - 1.
)

// Inf is the sentinel for absent box bounds:
//   - lower bounds are considered not exist when 𝒍ᵢ ≤ -Inf
//   - upper bounds are considered not exist when 𝒖ᵢ ≥ +Inf
const Inf = 1e30

// Status is the terminal verdict of a solve.
type Status int

const (
	// Unsolved solver was not run or was entered before setup.
	Unsolved Status = iota
	// Solved primal, dual and duality-gap tolerances are satisfied.
	Solved
	// MaxIterReached iteration limit hit before convergence.
	MaxIterReached
	// PrimalInfeasible a primal infeasibility certificate was detected.
	PrimalInfeasible
	// DualInfeasible a dual infeasibility certificate was detected.
	DualInfeasible
	// NumericError KKT factorization failed beyond the retry budget.
	NumericError
	// InvalidSettings settings rejected by Settings.Verify.
	InvalidSettings
)

func (s Status) String() string {
	switch s {
	case Unsolved:
		return "unsolved"
	case Solved:
		return "solved"
	case MaxIterReached:
		return "max iterations reached"
	case PrimalInfeasible:
		return "primal infeasible"
	case DualInfeasible:
		return "dual infeasible"
	case NumericError:
		return "numeric error"
	case InvalidSettings:
		return "invalid settings"
	}
	return "unknown"
}

// Logger handles progress output for the solver.
// Note the writer must be thread-safe.
type Logger struct {
	Msg io.Writer // Writer to output log messages.
}

func (l *Logger) log(format string, a ...any) {
	if l == nil || l.Msg == nil {
		return
	}
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}
