package sketch

// Named constraint builders. Each builder assembles a general-equation
// constraint from the expression factories: the equation tree uses indexed
// leaves, and the builder fills the entity/parameter slot arrays the
// indices resolve against. Builders that take a line dereference it to its
// endpoint points at build time, so every entity slot holds a point (or,
// for radius access, a circle).
//
// All builders return the invalid handle when a referenced entity is stale
// or of the wrong kind.

func (sk *Sketch) lineEnds(h EntityHandle) (p1, p2 EntityHandle, ok bool) {
	ent := sk.entities.get(handle(h))
	if ent == nil || ent.Kind != Line {
		return NoEntity, NoEntity, false
	}
	return ent.P1, ent.P2, true
}

func (sk *Sketch) circleParts(h EntityHandle) (center EntityHandle, ok bool) {
	ent := sk.entities.get(handle(h))
	if ent == nil || ent.Kind != Circle {
		return NoEntity, false
	}
	return ent.C, true
}

// pointSlots builds a constraint shell with the given points in its entity
// slots.
func pointSlots(pts ...EntityHandle) Constraint {
	var c Constraint
	c.Kind = General
	for i, p := range pts {
		c.Ents[i] = p
	}
	c.EntCount = len(pts)
	return c
}

// Coincident constrains two points to the same location. It adds two
// constraints, one per coordinate.
func (sk *Sketch) Coincident(p1, p2 EntityHandle) (ConstraintHandle, ConstraintHandle) {
	if !sk.isPoint(p1) || !sk.isPoint(p2) {
		return NoConstraint, NoConstraint
	}
	cx := pointSlots(p1, p2)
	cx.Eq = Sub(PointXAt(0), PointXAt(1))
	cy := pointSlots(p1, p2)
	cy.Eq = Sub(PointYAt(0), PointYAt(1))
	return sk.AddConstraint(cx), sk.AddConstraint(cy)
}

// Horizontal constrains two points to the same y coordinate.
func (sk *Sketch) Horizontal(p1, p2 EntityHandle) ConstraintHandle {
	if !sk.isPoint(p1) || !sk.isPoint(p2) {
		return NoConstraint
	}
	c := pointSlots(p1, p2)
	c.Eq = Sub(PointYAt(0), PointYAt(1))
	return sk.AddConstraint(c)
}

// Vertical constrains two points to the same x coordinate.
func (sk *Sketch) Vertical(p1, p2 EntityHandle) ConstraintHandle {
	if !sk.isPoint(p1) || !sk.isPoint(p2) {
		return NoConstraint
	}
	c := pointSlots(p1, p2)
	c.Eq = Sub(PointXAt(0), PointXAt(1))
	return sk.AddConstraint(c)
}

// PointOnLine constrains a point to lie on the infinite line through l's
// endpoints. The residual is the cross product of the line direction with
// the endpoint-to-point vector.
func (sk *Sketch) PointOnLine(p, l EntityHandle) ConstraintHandle {
	l1, l2, ok := sk.lineEnds(l)
	if !ok || !sk.isPoint(p) {
		return NoConstraint
	}
	c := pointSlots(p, l1, l2)
	c.Eq = Sub(
		Mul(
			Sub(PointXAt(2), PointXAt(1)),
			Sub(PointYAt(0), PointYAt(1)),
		),
		Mul(
			Sub(PointYAt(2), PointYAt(1)),
			Sub(PointXAt(0), PointXAt(1)),
		),
	)
	return sk.AddConstraint(c)
}

// PointOnCircle constrains a point to lie on the circle's perimeter:
// (px−cx)² + (py−cy)² − r² = 0.
func (sk *Sketch) PointOnCircle(p, circle EntityHandle) ConstraintHandle {
	center, ok := sk.circleParts(circle)
	if !ok || !sk.isPoint(p) {
		return NoConstraint
	}
	c := pointSlots(p, center, circle)
	c.Eq = Sub(
		Add(
			Sqr(Sub(PointXAt(0), PointXAt(1))),
			Sqr(Sub(PointYAt(0), PointYAt(1))),
		),
		Sqr(CircleRAt(2)),
	)
	return sk.AddConstraint(c)
}

// LineTangentToCircle constrains the infinite line through l's endpoints
// to be tangent to the circle: the squared cross product of the line
// direction with the endpoint-to-centre vector equals r² times the
// squared line length.
func (sk *Sketch) LineTangentToCircle(l, circle EntityHandle) ConstraintHandle {
	l1, l2, ok := sk.lineEnds(l)
	if !ok {
		return NoConstraint
	}
	center, ok := sk.circleParts(circle)
	if !ok {
		return NoConstraint
	}
	c := pointSlots(l1, l2, center, circle)
	dx := Sub(PointXAt(1), PointXAt(0))
	dy := Sub(PointYAt(1), PointYAt(0))
	cross := Sub(
		Mul(Sub(PointXAt(1), PointXAt(0)), Sub(PointYAt(2), PointYAt(0))),
		Mul(Sub(PointYAt(1), PointYAt(0)), Sub(PointXAt(2), PointXAt(0))),
	)
	c.Eq = Sub(
		Sqr(cross),
		Mul(Sqr(CircleRAt(3)), Add(Sqr(dx), Sqr(dy))),
	)
	return sk.AddConstraint(c)
}

// Parallel constrains two lines to the same slope: the cross product of
// their directions is zero.
func (sk *Sketch) Parallel(la, lb EntityHandle) ConstraintHandle {
	a1, a2, ok := sk.lineEnds(la)
	if !ok {
		return NoConstraint
	}
	b1, b2, ok := sk.lineEnds(lb)
	if !ok {
		return NoConstraint
	}
	c := pointSlots(a1, a2, b1, b2)
	c.Eq = Sub(
		Mul(
			Sub(PointYAt(1), PointYAt(0)),
			Sub(PointXAt(3), PointXAt(2)),
		),
		Mul(
			Sub(PointYAt(3), PointYAt(2)),
			Sub(PointXAt(1), PointXAt(0)),
		),
	)
	return sk.AddConstraint(c)
}

// Perpendicular constrains two lines to meet at a right angle: the dot
// product of their directions is zero.
func (sk *Sketch) Perpendicular(la, lb EntityHandle) ConstraintHandle {
	a1, a2, ok := sk.lineEnds(la)
	if !ok {
		return NoConstraint
	}
	b1, b2, ok := sk.lineEnds(lb)
	if !ok {
		return NoConstraint
	}
	c := pointSlots(a1, a2, b1, b2)
	c.Eq = Add(
		Mul(
			Sub(PointYAt(1), PointYAt(0)),
			Sub(PointYAt(3), PointYAt(2)),
		),
		Mul(
			Sub(PointXAt(1), PointXAt(0)),
			Sub(PointXAt(3), PointXAt(2)),
		),
	)
	return sk.AddConstraint(c)
}

// Midpoint constrains m to the midpoint of a and b. It adds two
// constraints, one per coordinate.
func (sk *Sketch) Midpoint(a, m, b EntityHandle) (ConstraintHandle, ConstraintHandle) {
	if !sk.isPoint(a) || !sk.isPoint(m) || !sk.isPoint(b) {
		return NoConstraint, NoConstraint
	}
	cx := pointSlots(a, m, b)
	cx.Eq = Sub(
		PointXAt(1),
		Div(Add(PointXAt(0), PointXAt(2)), Const(2)),
	)
	cy := pointSlots(a, m, b)
	cy.Eq = Sub(
		PointYAt(1),
		Div(Add(PointYAt(0), PointYAt(2)), Const(2)),
	)
	return sk.AddConstraint(cx), sk.AddConstraint(cy)
}

// Angle constrains the angle between two lines to the value of the theta
// parameter, in radians: acos(d1·d2 / (|d1|·|d2|)) − θ = 0.
func (sk *Sketch) Angle(la, lb EntityHandle, theta ParamHandle) ConstraintHandle {
	a1, a2, ok := sk.lineEnds(la)
	if !ok {
		return NoConstraint
	}
	b1, b2, ok := sk.lineEnds(lb)
	if !ok {
		return NoConstraint
	}
	if !sk.params.alive(handle(theta)) {
		return NoConstraint
	}
	c := pointSlots(a1, a2, b1, b2)
	c.Pars[0] = theta
	c.ParCount = 1

	adx := Sub(PointXAt(1), PointXAt(0))
	ady := Sub(PointYAt(1), PointYAt(0))
	bdx := Sub(PointXAt(3), PointXAt(2))
	bdy := Sub(PointYAt(3), PointYAt(2))
	dot := Add(
		Mul(Sub(PointXAt(1), PointXAt(0)), Sub(PointXAt(3), PointXAt(2))),
		Mul(Sub(PointYAt(1), PointYAt(0)), Sub(PointYAt(3), PointYAt(2))),
	)
	c.Eq = Sub(
		Acos(Div(
			dot,
			Mul(
				Sqrt(Add(Sqr(adx), Sqr(ady))),
				Sqrt(Add(Sqr(bdx), Sqr(bdy))),
			),
		)),
		ParamAt(0),
	)
	return sk.AddConstraint(c)
}

// Distance constrains the distance between two points to the value of the
// dist parameter: (x2−x1)² + (y2−y1)² − d² = 0.
func (sk *Sketch) Distance(p1, p2 EntityHandle, dist ParamHandle) ConstraintHandle {
	if !sk.isPoint(p1) || !sk.isPoint(p2) {
		return NoConstraint
	}
	if !sk.params.alive(handle(dist)) {
		return NoConstraint
	}
	c := pointSlots(p1, p2)
	c.Pars[0] = dist
	c.ParCount = 1
	c.Eq = Sub(
		Add(
			Sqr(Sub(PointXAt(1), PointXAt(0))),
			Sqr(Sub(PointYAt(1), PointYAt(0))),
		),
		Sqr(ParamAt(0)),
	)
	return sk.AddConstraint(c)
}
