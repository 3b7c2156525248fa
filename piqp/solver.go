// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
)

// Solver is a self-contained proximal interior-point QP solver.
// Two instances are independent and may run in parallel; a single
// instance must not be entered concurrently. Every vector is sized at
// setup and the main loop performs no heap allocation.
type Solver struct {
	set    Settings
	logger Logger
	data   qpData
	pre    ruiz
	kkt    kktSystem
	ws     workspace
	res    Result

	// running maxima of the unscaled residual pieces, feeding the
	// relative feasibility tolerance
	primalRelInf, dualRelInf float64

	// kktFresh marks that the KKT scalings still hold the unit
	// slack state staged at setup
	kktFresh bool
	ready    bool
}

// workspace carries the residual and direction vectors of the inner
// iteration. The bound pieces are length-n arrays of which only the
// head is live.
type workspace struct {
	// regularized residuals
	rx, ry, rz, rzlb, rzub []float64
	rs, rslb, rsub         []float64

	// non-regularized residuals
	rxNR, ryNR, rzNR, rzlbNR, rzubNR []float64

	// Newton directions
	dx, dy, dz, dzlb, dzub []float64
	ds, dslb, dsub         []float64
}

func (w *workspace) init(n, p, m int) {
	w.rx = make([]float64, n)
	w.ry = make([]float64, p)
	w.rz = make([]float64, m)
	w.rzlb = make([]float64, n)
	w.rzub = make([]float64, n)
	w.rs = make([]float64, m)
	w.rslb = make([]float64, n)
	w.rsub = make([]float64, n)

	w.rxNR = make([]float64, n)
	w.ryNR = make([]float64, p)
	w.rzNR = make([]float64, m)
	w.rzlbNR = make([]float64, n)
	w.rzubNR = make([]float64, n)

	w.dx = make([]float64, n)
	w.dy = make([]float64, p)
	w.dz = make([]float64, m)
	w.dzlb = make([]float64, n)
	w.dzub = make([]float64, n)
	w.ds = make([]float64, m)
	w.dslb = make([]float64, n)
	w.dsub = make([]float64, n)
}

// Solve runs the interior-point iteration on the stored problem and
// reports the terminal status. The Result vectors are overwritten,
// unscaled to user space and the bound duals expanded back to dense
// natural variable order.
func (s *Solver) Solve() Status {
	info := &s.res.Info
	if !s.ready {
		info.Status = Unsolved
		return info.Status
	}
	if err := s.set.Verify(); err != nil {
		info.Status = InvalidSettings
		return info.Status
	}

	var start time.Time
	if s.set.ComputeTimings {
		start = time.Now()
	}
	if s.set.Verbose {
		s.printHeader()
	}

	status := s.solveLoop()

	s.unscaleResults()
	s.restoreBoxDual()

	if s.set.ComputeTimings {
		t := time.Since(start)
		info.SolveTime = t
		info.RunTime += t
	}
	if s.set.Verbose {
		s.printExit()
	}
	return status
}

func (s *Solver) solveLoop() Status {
	d, ws, res, set, pre := &s.data, &s.ws, &s.res, &s.set, &s.pre
	info := &res.Info

	nlb, nub := d.nlb, d.nub
	slb, sub := res.SLb[:nlb], res.SUb[:nub]
	zlb, zub := res.ZLb[:nlb], res.ZUb[:nub]
	nulb, nuub := res.NuLb[:nlb], res.NuUb[:nub]
	nc := d.m + nlb + nub

	info.Status = Unsolved
	info.Iter = 0
	info.RegLimit = set.RegLowerLimit
	info.FactorRetries = 0
	info.NoPrimalUpdate = 0
	info.NoDualUpdate = 0
	info.Mu = zero
	info.PrimalStep = zero
	info.DualStep = zero

	if !s.kktFresh || info.Rho != set.RhoInit || info.Delta != set.DeltaInit {
		info.Rho = set.RhoInit
		info.Delta = set.DeltaInit
		fill(res.S, one)
		fill(slb, one)
		fill(sub, one)
		fill(res.Z, one)
		fill(zlb, one)
		fill(zub, one)
		s.kkt.updateScalings(info.Rho, info.Delta,
			res.S, res.SLb, res.SUb, res.Z, res.ZLb, res.ZUb)
	}

	for !s.kkt.factorize() {
		if info.FactorRetries >= set.MaxFactorRetries {
			info.Status = NumericError
			return info.Status
		}
		info.Delta *= 100
		info.Rho *= 100
		info.FactorRetries++
		info.RegLimit = math.Min(10*info.RegLimit, set.FeasTolAbs)
		s.kkt.updateScalings(info.Rho, info.Delta,
			res.S, res.SLb, res.SUb, res.Z, res.ZLb, res.ZUb)
	}
	info.FactorRetries = 0

	// starting point from one Newton solve against the raw data
	for i := range ws.rx {
		ws.rx[i] = -d.c[i]
	}
	fill(ws.rs, zero)
	fill(ws.rslb, zero)
	fill(ws.rsub, zero)
	s.kkt.solve(ws.rx, d.b, d.h, d.lbNeg, d.ub, ws.rs, ws.rslb, ws.rsub,
		res.X, res.Y, res.Z, res.ZLb, res.ZUb, res.S, res.SLb, res.SUb)

	if nc > 0 {
		sNorm := zero
		if d.m > 0 {
			sNorm = floats.Norm(res.S, math.Inf(1))
		}
		if nlb > 0 {
			sNorm = math.Max(sNorm, floats.Norm(slb, math.Inf(1)))
		}
		if nub > 0 {
			sNorm = math.Max(sNorm, floats.Norm(sub, math.Inf(1)))
		}
		if sNorm <= 1e-4 {
			// 0.1 is arbitrary
			fill(res.S, 0.1)
			fill(slb, 0.1)
			fill(sub, 0.1)
			fill(res.Z, 0.1)
			fill(zlb, 0.1)
			fill(zub, 0.1)
		}

		// shift (s,z) into the positive orthant, biased so that the
		// initial complementarity products stay balanced
		deltaS, deltaZ := zero, zero
		if d.m > 0 {
			deltaS = math.Max(deltaS, -1.5*floats.Min(res.S))
			deltaZ = math.Max(deltaZ, -1.5*floats.Min(res.Z))
		}
		if nlb > 0 {
			deltaS = math.Max(deltaS, -1.5*floats.Min(slb))
			deltaZ = math.Max(deltaZ, -1.5*floats.Min(zlb))
		}
		if nub > 0 {
			deltaS = math.Max(deltaS, -1.5*floats.Min(sub))
			deltaZ = math.Max(deltaZ, -1.5*floats.Min(zub))
		}
		prod := shiftDot(res.S, res.Z, deltaS, deltaZ)
		prod += shiftDot(slb, zlb, deltaS, deltaZ)
		prod += shiftDot(sub, zub, deltaS, deltaZ)
		den := floats.Sum(res.Z) + floats.Sum(zlb) + floats.Sum(zub) + float64(nc)*deltaZ
		deltaSBar := deltaS + half*prod/den
		den = floats.Sum(res.S) + floats.Sum(slb) + floats.Sum(sub) + float64(nc)*deltaS
		deltaZBar := deltaZ + half*prod/den

		floats.AddConst(deltaSBar, res.S)
		floats.AddConst(deltaSBar, slb)
		floats.AddConst(deltaSBar, sub)
		floats.AddConst(deltaZBar, res.Z)
		floats.AddConst(deltaZBar, zlb)
		floats.AddConst(deltaZBar, zub)

		info.Mu = (floats.Dot(res.S, res.Z) + floats.Dot(slb, zlb) + floats.Dot(sub, zub)) / float64(nc)
	}

	copy(res.Zeta, res.X)
	copy(res.Lambda, res.Y)
	copy(res.Nu, res.Z)
	copy(nulb, zlb)
	copy(nuub, zub)

	for info.Iter < set.MaxIter {
		if info.Iter == 0 {
			s.updateResiduals()
		}

		info.PrimalInf = pre.infPrimalResEq(ws.ryNR)
		info.PrimalInf = math.Max(info.PrimalInf, pre.infPrimalResIneq(ws.rzNR))
		info.PrimalInf = math.Max(info.PrimalInf, pre.infPrimalResLb(ws.rzlbNR[:nlb]))
		info.PrimalInf = math.Max(info.PrimalInf, pre.infPrimalResUb(ws.rzubNR[:nub]))
		info.DualInf = pre.infDualRes(ws.rxNR)

		if set.Verbose {
			s.printIter()
		}

		if info.PrimalInf < set.FeasTolAbs+set.FeasTolRel*s.primalRelInf &&
			info.DualInf < set.FeasTolAbs+set.FeasTolRel*s.dualRelInf &&
			info.Mu < set.DualTol {
			info.Status = Solved
			return info.Status
		}

		rho, delta := info.Rho, info.Delta
		for i := range ws.rx {
			ws.rx[i] = ws.rxNR[i] - rho*(res.X[i]-res.Zeta[i])
		}
		for k := range ws.ry {
			ws.ry[k] = ws.ryNR[k] - delta*(res.Lambda[k]-res.Y[k])
		}
		for k := range ws.rz {
			ws.rz[k] = ws.rzNR[k] - delta*(res.Nu[k]-res.Z[k])
		}
		for i := 0; i < nlb; i++ {
			ws.rzlb[i] = ws.rzlbNR[i] - delta*(nulb[i]-zlb[i])
		}
		for i := 0; i < nub; i++ {
			ws.rzub[i] = ws.rzubNR[i] - delta*(nuub[i]-zub[i])
		}

		// infeasibility certificates from the proximal drift
		for k := range ws.dy {
			ws.dy[k] = res.Lambda[k] - res.Y[k]
		}
		dualProx := pre.infDualEq(ws.dy)
		for k := range ws.dz {
			ws.dz[k] = res.Nu[k] - res.Z[k]
		}
		dualProx = math.Max(dualProx, pre.infDualIneq(ws.dz))
		for i := 0; i < nlb; i++ {
			ws.dzlb[i] = nulb[i] - zlb[i]
		}
		dualProx = math.Max(dualProx, pre.infDualLb(ws.dzlb[:nlb]))
		for i := 0; i < nub; i++ {
			ws.dzub[i] = nuub[i] - zub[i]
		}
		dualProx = math.Max(dualProx, pre.infDualUb(ws.dzub[:nub]))

		dualRes := pre.infPrimalResEq(ws.ry)
		dualRes = math.Max(dualRes, pre.infPrimalResIneq(ws.rz))
		dualRes = math.Max(dualRes, pre.infPrimalResLb(ws.rzlb[:nlb]))
		dualRes = math.Max(dualRes, pre.infPrimalResUb(ws.rzub[:nub]))

		if info.NoDualUpdate > 5 && dualProx > 1e10 && dualRes < set.FeasTolAbs {
			info.Status = PrimalInfeasible
			return info.Status
		}

		for i := range ws.dx {
			ws.dx[i] = res.X[i] - res.Zeta[i]
		}
		if info.NoPrimalUpdate > 5 && pre.infPrimal(ws.dx) > 1e10 &&
			pre.infDualRes(ws.rx) < set.FeasTolAbs {
			info.Status = DualInfeasible
			return info.Status
		}

		info.Iter++

		// avoid settling on a stalled proximal point,
		// decrease the minimum regularization once
		if (info.NoPrimalUpdate > 5 && info.Rho == info.RegLimit && info.RegLimit != 1e-13) ||
			(info.NoDualUpdate > 5 && info.Delta == info.RegLimit && info.RegLimit != 1e-13) {
			info.RegLimit = 1e-13
			info.NoPrimalUpdate = 0
			info.NoDualUpdate = 0
		}

		s.kkt.updateScalings(info.Rho, info.Delta,
			res.S, res.SLb, res.SUb, res.Z, res.ZLb, res.ZUb)
		s.kktFresh = false
		if !s.kkt.factorize() {
			if info.FactorRetries < set.MaxFactorRetries {
				info.Delta *= 100
				info.Rho *= 100
				info.Iter--
				info.FactorRetries++
				info.RegLimit = math.Min(10*info.RegLimit, set.FeasTolAbs)
				continue
			}
			info.Status = NumericError
			return info.Status
		}
		info.FactorRetries = 0

		if nc > 0 {
			// ------------------ predictor step ------------------
			for j := range ws.rs {
				ws.rs[j] = -res.S[j] * res.Z[j]
			}
			for i := 0; i < nlb; i++ {
				ws.rslb[i] = -slb[i] * zlb[i]
			}
			for i := 0; i < nub; i++ {
				ws.rsub[i] = -sub[i] * zub[i]
			}

			s.kkt.solve(ws.rx, ws.ry, ws.rz, ws.rzlb, ws.rzub, ws.rs, ws.rslb, ws.rsub,
				ws.dx, ws.dy, ws.dz, ws.dzlb, ws.dzub, ws.ds, ws.dslb, ws.dsub)

			// step in the non-negative orthant
			alphaS := stepRatio(one, res.S, ws.ds)
			alphaS = stepRatio(alphaS, slb, ws.dslb[:nlb])
			alphaS = stepRatio(alphaS, sub, ws.dsub[:nub])
			alphaZ := stepRatio(one, res.Z, ws.dz)
			alphaZ = stepRatio(alphaZ, zlb, ws.dzlb[:nlb])
			alphaZ = stepRatio(alphaZ, zub, ws.dzub[:nub])
			// avoid getting too close to the boundary
			alphaS *= set.Tau
			alphaZ *= set.Tau

			sigma := stepDot(res.S, ws.ds, alphaS, res.Z, ws.dz, alphaZ)
			sigma += stepDot(slb, ws.dslb[:nlb], alphaS, zlb, ws.dzlb[:nlb], alphaZ)
			sigma += stepDot(sub, ws.dsub[:nub], alphaS, zub, ws.dzub[:nub], alphaZ)
			sigma /= info.Mu * float64(nc)
			sigma = sigma * sigma * sigma
			info.Sigma = sigma

			// ------------------ corrector step ------------------
			sm := sigma * info.Mu
			for j := range ws.rs {
				ws.rs[j] += -ws.ds[j]*ws.dz[j] + sm
			}
			for i := 0; i < nlb; i++ {
				ws.rslb[i] += -ws.dslb[i]*ws.dzlb[i] + sm
			}
			for i := 0; i < nub; i++ {
				ws.rsub[i] += -ws.dsub[i]*ws.dzub[i] + sm
			}

			s.kkt.solve(ws.rx, ws.ry, ws.rz, ws.rzlb, ws.rzub, ws.rs, ws.rslb, ws.rsub,
				ws.dx, ws.dy, ws.dz, ws.dzlb, ws.dzub, ws.ds, ws.dslb, ws.dsub)

			alphaS = stepRatio(one, res.S, ws.ds)
			alphaS = stepRatio(alphaS, slb, ws.dslb[:nlb])
			alphaS = stepRatio(alphaS, sub, ws.dsub[:nub])
			alphaZ = stepRatio(one, res.Z, ws.dz)
			alphaZ = stepRatio(alphaZ, zlb, ws.dzlb[:nlb])
			alphaZ = stepRatio(alphaZ, zub, ws.dzub[:nub])
			info.PrimalStep = alphaS * set.Tau
			info.DualStep = alphaZ * set.Tau

			// ------------------ update ------------------
			floats.AddScaled(res.X, info.PrimalStep, ws.dx)
			floats.AddScaled(res.Y, info.DualStep, ws.dy)
			floats.AddScaled(res.Z, info.DualStep, ws.dz)
			floats.AddScaled(zlb, info.DualStep, ws.dzlb[:nlb])
			floats.AddScaled(zub, info.DualStep, ws.dzub[:nub])
			floats.AddScaled(res.S, info.PrimalStep, ws.ds)
			floats.AddScaled(slb, info.PrimalStep, ws.dslb[:nlb])
			floats.AddScaled(sub, info.PrimalStep, ws.dsub[:nub])

			muPrev := info.Mu
			info.Mu = (floats.Dot(res.S, res.Z) + floats.Dot(slb, zlb) + floats.Dot(sub, zub)) / float64(nc)
			muRate := math.Abs(muPrev-info.Mu) / muPrev

			// ------------------ update regularization ------------------
			s.updateResiduals()

			if pre.infDualRes(ws.rxNR) < 0.95*info.DualInf {
				copy(res.Zeta, res.X)
				info.Rho = math.Max(info.RegLimit, (one-muRate)*info.Rho)
			} else {
				info.NoPrimalUpdate++
				info.Rho = math.Max(info.RegLimit, (one-0.666*muRate)*info.Rho)
			}

			primalNR := pre.infPrimalResEq(ws.ryNR)
			primalNR = math.Max(primalNR, pre.infPrimalResIneq(ws.rzNR))
			primalNR = math.Max(primalNR, pre.infPrimalResLb(ws.rzlbNR[:nlb]))
			primalNR = math.Max(primalNR, pre.infPrimalResUb(ws.rzubNR[:nub]))
			if primalNR < 0.95*info.PrimalInf {
				copy(res.Lambda, res.Y)
				copy(res.Nu, res.Z)
				copy(nulb, zlb)
				copy(nuub, zub)
				info.Delta = math.Max(info.RegLimit, (one-muRate)*info.Delta)
			} else {
				info.NoDualUpdate++
				info.Delta = math.Max(info.RegLimit, (one-0.666*muRate)*info.Delta)
			}
		} else {
			// no inequalities, take the full Newton step
			s.kkt.solve(ws.rx, ws.ry, ws.rz, ws.rzlb, ws.rzub, ws.rs, ws.rslb, ws.rsub,
				ws.dx, ws.dy, ws.dz, ws.dzlb, ws.dzub, ws.ds, ws.dslb, ws.dsub)

			info.PrimalStep = one
			info.DualStep = one
			floats.AddScaled(res.X, info.PrimalStep, ws.dx)
			floats.AddScaled(res.Y, info.DualStep, ws.dy)

			// ------------------ update regularization ------------------
			s.updateResiduals()

			if pre.infDualRes(ws.rxNR) < 0.95*info.DualInf {
				copy(res.Zeta, res.X)
				info.Rho = math.Max(info.RegLimit, 0.1*info.Rho)
			} else {
				info.NoPrimalUpdate++
				info.Rho = math.Max(info.RegLimit, half*info.Rho)
			}
			if pre.infPrimalResEq(ws.ryNR) < 0.95*info.PrimalInf {
				copy(res.Lambda, res.Y)
				info.Delta = math.Max(info.RegLimit, 0.1*info.Delta)
			} else {
				info.NoDualUpdate++
				info.Delta = math.Max(info.RegLimit, half*info.Delta)
			}
		}
	}

	info.Status = MaxIterReached
	return info.Status
}

// updateResiduals assembles the non-regularized KKT residuals
//
//	𝐫ₓ = -𝐏𝐱 - 𝐜 - 𝐀ᵀ𝐲 - 𝐆ᵀ𝐳 + 𝐄ₗᵀ𝐳ₗ - 𝐄ᵤᵀ𝐳ᵤ
//	𝐫ᵧ = 𝐛 - 𝐀𝐱
//	𝐫ᵤ = 𝐡 - 𝐆𝐱 - 𝐬
//
// with the bound residuals 𝐱ᵢ - 𝒍ᵢ - 𝐬ₗ and 𝒖ᵢ - 𝐱ᵢ - 𝐬ᵤ gathered
// through the bound index maps, while tracking the running maxima of
// the unscaled norms of every additive piece for the relative
// tolerance. 𝚫𝐱 doubles as a scratch vector here; it is dead between
// iterations.
func (s *Solver) updateResiduals() {
	d, ws, res, pre := &s.data, &s.ws, &s.res, &s.pre
	nlb, nub := d.nlb, d.nub

	symv(d.P, res.X, ws.rxNR)
	for i := range ws.rxNR {
		ws.rxNR[i] = -ws.rxNR[i]
	}
	s.dualRelInf = pre.infDualRes(ws.rxNR)
	for i := range ws.rxNR {
		ws.rxNR[i] -= d.c[i]
	}
	if d.p > 0 {
		gemv(d.AT, false, res.Y, ws.dx)
		s.dualRelInf = math.Max(s.dualRelInf, pre.infDualRes(ws.dx))
		for i := range ws.rxNR {
			ws.rxNR[i] -= ws.dx[i]
		}
	}
	if d.m > 0 {
		gemv(d.GT, false, res.Z, ws.dx)
		s.dualRelInf = math.Max(s.dualRelInf, pre.infDualRes(ws.dx))
		for i := range ws.rxNR {
			ws.rxNR[i] -= ws.dx[i]
		}
	}
	if nlb > 0 {
		fill(ws.dx, zero)
		for i := 0; i < nlb; i++ {
			ws.dx[d.lbIdx[i]] = -res.ZLb[i]
		}
		s.dualRelInf = math.Max(s.dualRelInf, pre.infDualRes(ws.dx))
		for i := range ws.rxNR {
			ws.rxNR[i] -= ws.dx[i]
		}
	}
	if nub > 0 {
		fill(ws.dx, zero)
		for i := 0; i < nub; i++ {
			ws.dx[d.ubIdx[i]] = res.ZUb[i]
		}
		s.dualRelInf = math.Max(s.dualRelInf, pre.infDualRes(ws.dx))
		for i := range ws.rxNR {
			ws.rxNR[i] -= ws.dx[i]
		}
	}

	if d.p > 0 {
		gemv(d.AT, true, res.X, ws.ryNR)
		for k := range ws.ryNR {
			ws.ryNR[k] = -ws.ryNR[k]
		}
	}
	s.primalRelInf = pre.infPrimalResEq(ws.ryNR)
	for k := range ws.ryNR {
		ws.ryNR[k] += d.b[k]
	}
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResEq(d.b))

	if d.m > 0 {
		gemv(d.GT, true, res.X, ws.rzNR)
		for k := range ws.rzNR {
			ws.rzNR[k] = -ws.rzNR[k]
		}
	}
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResIneq(ws.rzNR))
	for k := range ws.rzNR {
		ws.rzNR[k] += d.h[k] - res.S[k]
	}
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResIneq(d.h))

	for i := 0; i < nlb; i++ {
		ws.rzlbNR[i] = res.X[d.lbIdx[i]] + d.lbNeg[i] - res.SLb[i]
	}
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResLb(ws.rzlbNR[:nlb]))
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResLb(d.lbNeg[:nlb]))

	for i := 0; i < nub; i++ {
		ws.rzubNR[i] = -res.X[d.ubIdx[i]] + d.ub[i] - res.SUb[i]
	}
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResUb(ws.rzubNR[:nub]))
	s.primalRelInf = math.Max(s.primalRelInf, pre.infPrimalResUb(d.ub[:nub]))
}

// unscaleResults maps every returned vector back to user space.
func (s *Solver) unscaleResults() {
	d, res, pre := &s.data, &s.res, &s.pre
	nlb, nub := d.nlb, d.nub
	pre.unscalePrimal(res.X)
	pre.unscaleDualEq(res.Y)
	pre.unscaleDualIneq(res.Z)
	pre.unscaleDualLb(res.ZLb[:nlb])
	pre.unscaleDualUb(res.ZUb[:nub])
	pre.unscaleSlackIneq(res.S)
	pre.unscaleSlackLb(res.SLb[:nlb])
	pre.unscaleSlackUb(res.SUb[:nub])
	pre.unscalePrimal(res.Zeta)
	pre.unscaleDualEq(res.Lambda)
	pre.unscaleDualIneq(res.Nu)
	pre.unscaleDualLb(res.NuLb[:nlb])
	pre.unscaleDualUb(res.NuUb[:nub])
}

// restoreBoxDual expands the compressed bound duals and slacks back to
// dense length-n vectors in natural variable order: the tails are 0
// (duals) or +∞ (slacks) and the live head entries are swapped into
// their variable positions through the index maps in reverse.
func (s *Solver) restoreBoxDual() {
	d, res := &s.data, &s.res
	for i := d.nlb; i < d.n; i++ {
		res.ZLb[i] = zero
		res.NuLb[i] = zero
		res.SLb[i] = math.Inf(1)
	}
	for i := d.nub; i < d.n; i++ {
		res.ZUb[i] = zero
		res.NuUb[i] = zero
		res.SUb[i] = math.Inf(1)
	}
	for i := d.nlb - 1; i >= 0; i-- {
		j := d.lbIdx[i]
		res.ZLb[i], res.ZLb[j] = res.ZLb[j], res.ZLb[i]
		res.SLb[i], res.SLb[j] = res.SLb[j], res.SLb[i]
		res.NuLb[i], res.NuLb[j] = res.NuLb[j], res.NuLb[i]
	}
	for i := d.nub - 1; i >= 0; i-- {
		j := d.ubIdx[i]
		res.ZUb[i], res.ZUb[j] = res.ZUb[j], res.ZUb[i]
		res.SUb[i], res.SUb[j] = res.SUb[j], res.SUb[i]
		res.NuUb[i], res.NuUb[j] = res.NuUb[j], res.NuUb[i]
	}
}

func (s *Solver) printHeader() {
	log := &s.logger
	log.log("----------------------------------------------------------\n")
	log.log("             proximal interior-point QP solver            \n")
	log.log("----------------------------------------------------------\n")
	log.log("variables n = %d\n", s.data.n)
	log.log("equality constraints p = %d\n", s.data.p)
	log.log("inequality constraints m = %d\n", s.data.m)
	log.log("variable lower bounds n_lb = %d\n", s.data.nlb)
	log.log("variable upper bounds n_ub = %d\n", s.data.nub)
	log.log("\n")
	log.log("iter  prim_cost      dual_cost      prim_inf      dual_inf      rho         delta       mu          prim_step   dual_step\n")
}

func (s *Solver) printIter() {
	d, ws, res, pre := &s.data, &s.ws, &s.res, &s.pre
	info := &res.Info

	// 𝐫ₓ doubles as a scratch vector for the printed cost,
	// it is rebuilt right after
	symv(d.P, res.X, ws.rx)
	xPx := half * floats.Dot(res.X, ws.rx)
	primalCost := xPx + floats.Dot(d.c, res.X)
	dualCost := -xPx - floats.Dot(d.b, res.Y) - floats.Dot(d.h, res.Z)
	dualCost -= floats.Dot(d.lbNeg[:d.nlb], res.ZLb[:d.nlb])
	dualCost -= floats.Dot(d.ub[:d.nub], res.ZUb[:d.nub])

	s.logger.log("%3d   % .5e   % .5e   %.5e   %.5e   %.3e   %.3e   %.3e   %.3e   %.3e\n",
		info.Iter,
		pre.unscaleCost(primalCost),
		pre.unscaleCost(dualCost),
		info.PrimalInf, info.DualInf,
		info.Rho, info.Delta, info.Mu,
		info.PrimalStep, info.DualStep)
}

func (s *Solver) printExit() {
	log := &s.logger
	info := &s.res.Info
	log.log("\n")
	log.log("status:               %s\n", info.Status)
	log.log("number of iterations: %d\n", info.Iter)
	if s.set.ComputeTimings {
		log.log("total run time:       %v\n", info.RunTime)
		log.log("  setup time:         %v\n", info.SetupTime)
		log.log("  update time:        %v\n", info.UpdateTime)
		log.log("  solve time:         %v\n", info.SolveTime)
	}
}

// shiftDot computes ⟨𝐬+𝛔𝟏, 𝐳+𝛕𝟏⟩.
func shiftDot(sv, zv []float64, ds, dz float64) float64 {
	sum := zero
	for i, si := range sv {
		sum += (si + ds) * (zv[i] + dz)
	}
	return sum
}

// stepDot computes ⟨𝐬+𝛂𝚫𝐬, 𝐳+𝛃𝚫𝐳⟩.
func stepDot(sv, dsv []float64, alphaS float64, zv, dzv []float64, alphaZ float64) float64 {
	sum := zero
	for i, si := range sv {
		sum += (si + alphaS*dsv[i]) * (zv[i] + alphaZ*dzv[i])
	}
	return sum
}
