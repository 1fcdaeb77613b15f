package sketch

// relink rebuilds the dense solver-side view of the sketch: the live
// constraint and parameter vectors in slot order, each constraint's
// expanded equation, and the matrix of symbolic partials. It runs at the
// start of Solve whenever the set of live parameters or constraints has
// changed since the last link.
//
// The slot-order scan fixes a stable mapping from matrix rows/columns to
// constraints/parameters for the duration of a solve. Between solves the
// mapping is stable only if nothing was added or destroyed.
func (sk *Sketch) relink() {
	if !sk.linkOutdated {
		return
	}
	sk.releaseScratch()

	m := sk.constraints.aliveCount
	n := sk.params.aliveCount

	sk.liveParams = make([]*Parameter, 0, n)
	sk.liveParamHs = make([]ParamHandle, 0, n)
	for i := range sk.params.slots {
		s := &sk.params.slots[i]
		if !s.alive {
			continue
		}
		sk.liveParams = append(sk.liveParams, &s.payload)
		sk.liveParamHs = append(sk.liveParamHs, ParamHandle{idx: uint16(i), gen: s.gen})
	}

	sk.liveCons = make([]*Constraint, 0, m)
	for i := range sk.constraints.slots {
		s := &sk.constraints.slots[i]
		if !s.alive {
			continue
		}
		sk.liveCons = append(sk.liveCons, &s.payload)
	}

	for _, c := range sk.liveCons {
		c.linkedEq = sk.expandExpr(c, c.Eq)
		c.dervs = make([]*Expr, n)
		c.dervsY = make([]float64, n)
		for j, ph := range sk.liveParamHs {
			c.dervs[j] = derivative(c.linkedEq, ph, true)
		}
	}

	sk.normalMtr = make([]float64, m*m)
	sk.itrmSol = make([]float64, m)
	sk.rhs = make([]float64, m)
	sk.cachedParams = make([]float64, n)

	sk.linkOutdated = false
}

// releaseScratch drops all solver-owned state. Derivative rows borrow from
// the expanded equations, so they go first.
func (sk *Sketch) releaseScratch() {
	for _, c := range sk.liveCons {
		c.dervs = nil
		c.dervsY = nil
		c.linkedEq = nil
	}
	sk.liveCons = nil
	sk.liveParams = nil
	sk.liveParamHs = nil
	sk.normalMtr = nil
	sk.itrmSol = nil
	sk.rhs = nil
	sk.cachedParams = nil
}

// expandExpr rewrites e with every indexed leaf resolved through c's slot
// arrays to a direct-parameter leaf. Expansion happens before
// differentiation so that the symbolic partials see through the
// indirection; a raw indexed leaf would differentiate to 0 even with
// respect to the parameter it points at.
//
// A leaf that cannot be resolved — slot out of range, stale handle, or an
// entity of the wrong kind — expands to the constant 0, matching what
// scoped evaluation would have produced. Leaves that need no expansion are
// shared, not copied; trees are immutable.
func (sk *Sketch) expandExpr(c *Constraint, e *Expr) *Expr {
	switch e.op {
	case opConst, opParam:
		return e
	case opParamIdx:
		if int(e.slot) >= c.ParCount {
			return Const(0)
		}
		return Param(c.Pars[e.slot])
	case opPointX:
		if ent := slotEntity(sk, c, e.slot, Point); ent != nil {
			return Param(ent.X)
		}
		return Const(0)
	case opPointY:
		if ent := slotEntity(sk, c, e.slot, Point); ent != nil {
			return Param(ent.Y)
		}
		return Const(0)
	case opCircleR:
		if ent := slotEntity(sk, c, e.slot, Circle); ent != nil {
			return Param(ent.R)
		}
		return Const(0)
	case opBorrow:
		return sk.expandExpr(c, e.a)
	}
	out := &Expr{op: e.op, a: sk.expandExpr(c, e.a)}
	if e.b != nil {
		out.b = sk.expandExpr(c, e.b)
	}
	return out
}
