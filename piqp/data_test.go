// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package piqp

import (
	"testing"
)

func TestBoxIndex(t *testing.T) {

	var d qpData
	d.alloc(4, 0, 0)

	d.setLowerBounds([]float64{-Inf, 0, -2.5, -Inf})
	d.setUpperBounds([]float64{Inf, 10, Inf, 3})

	switch {
	case d.nlb != 2:
		t.Fatalf("TestBoxIndex: n_lb = %d", d.nlb)
	case d.nub != 2:
		t.Fatalf("TestBoxIndex: n_ub = %d", d.nub)
	case d.lbIdx[0] != 1 || d.lbIdx[1] != 2:
		t.Fatalf("TestBoxIndex: bad lb index map %v", d.lbIdx[:d.nlb])
	case d.ubIdx[0] != 1 || d.ubIdx[1] != 3:
		t.Fatalf("TestBoxIndex: bad ub index map %v", d.ubIdx[:d.nub])
	case d.lbNeg[0] != 0 || d.lbNeg[1] != 2.5:
		t.Fatalf("TestBoxIndex: lower bounds not negated %v", d.lbNeg[:d.nlb])
	case d.ub[0] != 10 || d.ub[1] != 3:
		t.Fatalf("TestBoxIndex: bad ub values %v", d.ub[:d.nub])
	}

	// sentinel magnitudes deactivate a bound
	d.setLowerBounds([]float64{-1e30, 0, -1e31, 7})
	if d.nlb != 2 || d.lbIdx[0] != 1 || d.lbIdx[1] != 3 {
		t.Fatalf("TestBoxIndex: sentinel bounds not skipped (n_lb = %d)", d.nlb)
	}

	// nil bound vectors deactivate the whole side
	d.setLowerBounds(nil)
	d.setUpperBounds(nil)
	if d.nlb != 0 || d.nub != 0 {
		t.Fatal("TestBoxIndex: nil bounds must deactivate all")
	}
}
