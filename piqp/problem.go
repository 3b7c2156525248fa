// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"
)

// Settings holds the solver options.
type Settings struct {
	// The initial primal proximal penalty 𝛒₀.
	RhoInit float64
	// The initial dual proximal penalty 𝛅₀.
	DeltaInit float64
	// The cap on outer iterations.
	MaxIter int
	// The number of KKT refactorization retries per attempt.
	MaxFactorRetries int
	// The initial lower floor for 𝛒 and 𝛅,
	// relaxed to 1e-13 under stagnation.
	RegLowerLimit float64
	// The absolute feasibility tolerance.
	FeasTolAbs float64
	// The relative feasibility tolerance.
	FeasTolRel float64
	// The tolerance on the complementarity measure 𝛍.
	DualTol float64
	// The fraction-to-boundary factor 𝛕 ∈ (0,1) which keeps the
	// slack and dual iterates strictly positive.
	Tau float64
	// The number of Ruiz equilibration sweeps.
	PreconditionerIter int
	// Print a per-iteration progress table.
	Verbose bool
	// Measure the wall-clock of the setup/update/solve phases.
	ComputeTimings bool
}

// DefaultSettings returns the recommended solver options.
func DefaultSettings() Settings {
	return Settings{
		RhoInit:            1e-6,
		DeltaInit:          1e-4,
		MaxIter:            250,
		MaxFactorRetries:   10,
		RegLowerLimit:      1e-10,
		FeasTolAbs:         1e-8,
		FeasTolRel:         1e-9,
		DualTol:            1e-8,
		Tau:                0.99,
		PreconditionerIter: 10,
	}
}

// Verify reports whether every option is inside its admissible range.
func (s *Settings) Verify() error {
	switch {
	case s.RhoInit <= zero:
		return errors.New("initial rho must greater than 0")
	case s.DeltaInit <= zero:
		return errors.New("initial delta must greater than 0")
	case s.MaxIter <= 0:
		return errors.New("max iteration must greater than 0")
	case s.MaxFactorRetries < 0:
		return errors.New("max factorization retries must not less than 0")
	case s.RegLowerLimit <= zero:
		return errors.New("regularization lower limit must greater than 0")
	case s.FeasTolAbs <= zero:
		return errors.New("absolute feasibility tolerance must greater than 0")
	case s.FeasTolRel < zero:
		return errors.New("relative feasibility tolerance must not less than 0")
	case s.DualTol <= zero:
		return errors.New("duality tolerance must greater than 0")
	case s.Tau <= zero || s.Tau >= one:
		return errors.New("fraction-to-boundary factor must lie in (0,1)")
	case s.PreconditionerIter < 0:
		return errors.New("preconditioner iteration must not less than 0")
	}
	return nil
}

// Info summarizes the state of the algorithm at return.
type Info struct {
	Status         Status
	Iter           int
	Rho, Delta     float64
	Mu, Sigma      float64
	PrimalStep     float64
	DualStep       float64
	PrimalInf      float64
	DualInf        float64
	RegLimit       float64
	FactorRetries  int
	NoPrimalUpdate int
	NoDualUpdate   int

	SetupTime  time.Duration
	UpdateTime time.Duration
	SolveTime  time.Duration
	RunTime    time.Duration
}

// Result carries the iterates of the last solve in user space.
// The bound duals and slacks are dense length-n vectors in natural
// variable order; slack entries of inactive bounds are +∞ and dual
// entries are 0.
type Result struct {
	X []float64 // primal solution
	Y []float64 // equality multipliers
	Z []float64 // inequality multipliers

	ZLb, ZUb []float64 // bound multipliers
	S        []float64 // inequality slacks
	SLb, SUb []float64 // bound slacks

	// proximal centres of the outer iteration
	Zeta, Lambda, Nu []float64
	NuLb, NuUb       []float64

	Info Info
}

// Problem specifies a convex QP.
type Problem struct {
	P *mat.SymDense // quadratic cost (n×n, positive semidefinite)
	C []float64     // linear cost (n)
	A *mat.Dense    // equality constraint matrix (p×n), optional
	B []float64     // equality right-hand side (p)
	G *mat.Dense    // inequality constraint matrix (m×n), optional
	H []float64     // inequality right-hand side (m)

	// Optional box bounds (n). Entries at or beyond the ±Inf sentinel
	// are deactivated; a nil vector deactivates the whole side.
	XLower, XUpper []float64

	// Optional solver options, nil for DefaultSettings.
	Settings *Settings
}

// Update carries an in-place data refresh for Solver.Update.
// Nil fields keep the stored data; dimensions must not change.
type Update struct {
	P *mat.SymDense
	C []float64
	A *mat.Dense
	B []float64
	G *mat.Dense
	H []float64

	XLower, XUpper []float64
}

// New validates the problem, copies its data into the solver store,
// equilibrates it and prepares the KKT operator. A nil logger is
// silent; the logger only speaks when Settings.Verbose is set.
func (p *Problem) New(logger *Logger) (solver *Solver, err error) {

	set := DefaultSettings()
	if p.Settings != nil {
		set = *p.Settings
	}

	var n, np, nm int
	if p.P != nil {
		n = p.P.SymmetricDim()
	}
	if p.A != nil {
		np, _ = p.A.Dims()
	}
	if p.G != nil {
		nm, _ = p.G.Dims()
	}

	switch {
	case p.P == nil || n <= 0:
		err = errors.New("cost matrix P is required")
	case len(p.C) != n:
		err = errors.New("cost vector c size must equal to n")
	case p.A == nil && len(p.B) != 0:
		err = errors.New("equality rhs b given without matrix A")
	case p.G == nil && len(p.H) != 0:
		err = errors.New("inequality rhs h given without matrix G")
	case p.XLower != nil && len(p.XLower) != n:
		err = errors.New("lower bound size must equal to n")
	case p.XUpper != nil && len(p.XUpper) != n:
		err = errors.New("upper bound size must equal to n")
	}
	if err == nil && p.A != nil {
		if _, cols := p.A.Dims(); cols != n {
			err = errors.New("equality matrix A column must equal to n")
		} else if len(p.B) != np {
			err = errors.New("equality rhs b size must equal to A rows")
		}
	}
	if err == nil && p.G != nil {
		if _, cols := p.G.Dims(); cols != n {
			err = errors.New("inequality matrix G column must equal to n")
		} else if len(p.H) != nm {
			err = errors.New("inequality rhs h size must equal to G rows")
		}
	}
	if err == nil {
		for i := range p.XLower {
			if p.XUpper != nil && p.XLower[i] > p.XUpper[i] {
				err = errors.New(fmt.Sprintf("bound range at %d has no feasible solution", i))
				break
			}
		}
	}
	if err != nil {
		return
	}

	var start time.Time
	if set.ComputeTimings {
		start = time.Now()
	}

	s := &Solver{set: set}
	if logger != nil {
		s.logger = *logger
		if s.logger.Msg == nil {
			s.logger.Msg = os.Stdout
		}
	}

	s.data.alloc(n, np, nm)
	s.data.P.CopySym(p.P)
	copy(s.data.c, p.C)
	for k := 0; k < np; k++ {
		for i := 0; i < n; i++ {
			s.data.AT.Set(i, k, p.A.At(k, i))
		}
	}
	copy(s.data.b, p.B)
	for k := 0; k < nm; k++ {
		for i := 0; i < n; i++ {
			s.data.GT.Set(i, k, p.G.At(k, i))
		}
	}
	copy(s.data.h, p.H)
	s.data.setLowerBounds(p.XLower)
	s.data.setUpperBounds(p.XUpper)

	s.initWorkspace()

	s.pre.init(&s.data)
	s.pre.scaleData(false, set.PreconditionerIter)

	s.kkt = newDenseKKT(&s.data)
	s.kkt.init(s.res.Info.Rho, s.res.Info.Delta)
	s.kktFresh = true
	s.ready = true

	if set.ComputeTimings {
		d := time.Since(start)
		s.res.Info.SetupTime = d
		s.res.Info.RunTime += d
	}

	solver = s
	return
}

// initWorkspace sizes every iterate, residual and direction vector and
// seeds the penalties. No further heap allocation happens inside solve.
func (s *Solver) initWorkspace() {
	n, np, nm := s.data.n, s.data.p, s.data.m

	r := &s.res
	r.X = make([]float64, n)
	r.Y = make([]float64, np)
	r.Z = make([]float64, nm)
	r.ZLb = make([]float64, n)
	r.ZUb = make([]float64, n)
	r.S = make([]float64, nm)
	r.SLb = make([]float64, n)
	r.SUb = make([]float64, n)
	r.Zeta = make([]float64, n)
	r.Lambda = make([]float64, np)
	r.Nu = make([]float64, nm)
	r.NuLb = make([]float64, n)
	r.NuUb = make([]float64, n)

	// the first factorization runs on unit slack scalings
	fill(r.S, one)
	fill(r.SLb, one)
	fill(r.SUb, one)
	fill(r.Z, one)
	fill(r.ZLb, one)
	fill(r.ZUb, one)

	r.Info.Rho = s.set.RhoInit
	r.Info.Delta = s.set.DeltaInit

	s.ws.init(n, np, nm)
}

// Settings exposes the mutable options block. Changes apply to the
// next Solve.
func (s *Solver) Settings() *Settings { return &s.set }

// Result returns the outcome of the last Solve. The slices stay owned
// by the solver and are overwritten by the next Solve.
func (s *Solver) Result() *Result { return &s.res }

// Update rewrites the stored problem data in place. Only non-nil
// fields are replaced; the problem dimensions are fixed at setup. With
// reusePreconditioner the previous equilibration is composed onto the
// new data instead of being recomputed.
func (s *Solver) Update(u Update, reusePreconditioner bool) error {
	if !s.ready {
		return errors.New("solver not setup yet")
	}

	d := &s.data
	switch {
	case u.P != nil && u.P.SymmetricDim() != d.n:
		return errors.New("cost matrix P dimension must not change")
	case u.C != nil && len(u.C) != d.n:
		return errors.New("cost vector c size must equal to n")
	case u.B != nil && len(u.B) != d.p:
		return errors.New("equality rhs b size must equal to p")
	case u.H != nil && len(u.H) != d.m:
		return errors.New("inequality rhs h size must equal to m")
	case u.XLower != nil && len(u.XLower) != d.n:
		return errors.New("lower bound size must equal to n")
	case u.XUpper != nil && len(u.XUpper) != d.n:
		return errors.New("upper bound size must equal to n")
	}
	if u.A != nil {
		if rows, cols := u.A.Dims(); rows != d.p || cols != d.n {
			return errors.New("equality matrix A dimension must not change")
		}
	}
	if u.G != nil {
		if rows, cols := u.G.Dims(); rows != d.m || cols != d.n {
			return errors.New("inequality matrix G dimension must not change")
		}
	}

	var start time.Time
	if s.set.ComputeTimings {
		start = time.Now()
	}

	s.pre.unscaleData()

	change := kktChangeNone
	if u.P != nil {
		d.P.CopySym(u.P)
		change |= kktChangeP
	}
	if u.A != nil {
		for k := 0; k < d.p; k++ {
			for i := 0; i < d.n; i++ {
				d.AT.Set(i, k, u.A.At(k, i))
			}
		}
		change |= kktChangeA
	}
	if u.G != nil {
		for k := 0; k < d.m; k++ {
			for i := 0; i < d.n; i++ {
				d.GT.Set(i, k, u.G.At(k, i))
			}
		}
		change |= kktChangeG
	}
	if u.C != nil {
		copy(d.c, u.C)
	}
	if u.B != nil {
		copy(d.b, u.B)
	}
	if u.H != nil {
		copy(d.h, u.H)
	}
	if u.XLower != nil {
		d.setLowerBounds(u.XLower)
	}
	if u.XUpper != nil {
		d.setUpperBounds(u.XUpper)
	}

	s.pre.scaleData(reusePreconditioner, s.set.PreconditionerIter)
	s.kkt.updateData(change)

	if s.set.ComputeTimings {
		t := time.Since(start)
		s.res.Info.UpdateTime = t
		s.res.Info.RunTime += t
	}
	return nil
}
