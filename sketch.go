package sketch

import (
	"io"
	"os"
)

// Sketch is a self-contained collection of parameters, entities, and
// constraints, together with the solver state derived from them. It is not
// safe for concurrent use; two sketches on two goroutines are independent.
type Sketch struct {
	params      table[Parameter]
	entities    table[Entity]
	constraints table[Constraint]

	// linkOutdated is set by any add or delete. While set, none of the
	// solver scratch below may be trusted; Solve relinks first.
	linkOutdated bool

	liveCons     []*Constraint
	liveParams   []*Parameter
	liveParamHs  []ParamHandle
	normalMtr    []float64
	itrmSol      []float64
	rhs          []float64
	cachedParams []float64

	// RestoreOnFail makes Solve put every live parameter back to its
	// pre-solve value when the solve does not converge. Off by default:
	// a failed solve then leaves parameters at the last iterate.
	RestoreOnFail bool

	// Diag receives solver diagnostics (small pivots, degenerate rows).
	// Defaults to os.Stderr; set to io.Discard to silence.
	Diag io.Writer
}

// New returns an empty sketch with the given initial table capacities.
// Tables grow on demand, so the capacities are hints, not limits.
func New(paramCap, entityCap, constraintCap uint16) *Sketch {
	return &Sketch{
		params:       newTable[Parameter](paramCap),
		entities:     newTable[Entity](entityCap),
		constraints:  newTable[Constraint](constraintCap),
		linkOutdated: true,
		Diag:         os.Stderr,
	}
}

func (sk *Sketch) diag() io.Writer {
	if sk.Diag != nil {
		return sk.Diag
	}
	return io.Discard
}

// AddParam creates a parameter with the given initial value.
func (sk *Sketch) AddParam(v float64) ParamHandle {
	h := sk.params.create(Parameter{V: v})
	if h.idx == invalidIndex {
		return NoParam
	}
	sk.linkOutdated = true
	return ParamHandle(h)
}

// DeleteParam destroys a parameter. Constraints that still reference it
// keep working; the dangling subtrees evaluate to 0.
func (sk *Sketch) DeleteParam(h ParamHandle) bool {
	if !sk.params.destroy(handle(h)) {
		return false
	}
	sk.linkOutdated = true
	return true
}

// ParamAlive reports whether h refers to a live parameter.
func (sk *Sketch) ParamAlive(h ParamHandle) bool {
	return sk.params.alive(handle(h))
}

// Param returns the parameter's current value.
func (sk *Sketch) Param(h ParamHandle) (float64, bool) {
	if p := sk.params.get(handle(h)); p != nil {
		return p.V, true
	}
	return 0, false
}

// SetParam overwrites the parameter's value. Changing a value does not
// outdate the link; only changing the set of live parameters does.
func (sk *Sketch) SetParam(h ParamHandle, v float64) bool {
	p := sk.params.get(handle(h))
	if p == nil {
		return false
	}
	p.V = v
	return true
}

// ParamCount returns the number of live parameters.
func (sk *Sketch) ParamCount() int { return sk.params.aliveCount }

// AddEntity validates the definition and creates the entity. A definition
// is valid when every reference resolves to a live object of the required
// kind: points need live coordinate parameters, lines need two point
// entities, circles a point centre and a live radius parameter, arcs three
// point entities.
func (sk *Sketch) AddEntity(e Entity) EntityHandle {
	if !sk.entityValid(&e) {
		return NoEntity
	}
	h := sk.entities.create(e)
	if h.idx == invalidIndex {
		return NoEntity
	}
	sk.linkOutdated = true
	return EntityHandle(h)
}

func (sk *Sketch) entityValid(e *Entity) bool {
	switch e.Kind {
	case Point:
		return sk.params.alive(handle(e.X)) && sk.params.alive(handle(e.Y))
	case Line:
		return sk.isPoint(e.P1) && sk.isPoint(e.P2)
	case Circle:
		return sk.isPoint(e.C) && sk.params.alive(handle(e.R))
	case Arc:
		return sk.isPoint(e.P1) && sk.isPoint(e.P2) && sk.isPoint(e.P3)
	}
	return false
}

func (sk *Sketch) isPoint(h EntityHandle) bool {
	ent := sk.entities.get(handle(h))
	return ent != nil && ent.Kind == Point
}

// DeleteEntity destroys an entity. Deletion does not cascade to the
// parameters or entities it referenced.
func (sk *Sketch) DeleteEntity(h EntityHandle) bool {
	if !sk.entities.destroy(handle(h)) {
		return false
	}
	sk.linkOutdated = true
	return true
}

// EntityAlive reports whether h refers to a live entity.
func (sk *Sketch) EntityAlive(h EntityHandle) bool {
	return sk.entities.alive(handle(h))
}

// Entity returns a copy of the entity record.
func (sk *Sketch) Entity(h EntityHandle) (Entity, bool) {
	if e := sk.entities.get(handle(h)); e != nil {
		return *e, true
	}
	return Entity{}, false
}

// EntityCount returns the number of live entities.
func (sk *Sketch) EntityCount() int { return sk.entities.aliveCount }

// AddConstraint validates the definition and creates the constraint,
// taking ownership of its equation tree. Validation covers only the
// record itself (non-nil equation, kind in range, slot counts in range);
// whether the tree's indexed leaves and the slot arrays agree is the
// builder's responsibility.
func (sk *Sketch) AddConstraint(c Constraint) ConstraintHandle {
	c.err = 0
	c.linkedEq = nil
	c.dervs = nil
	c.dervsY = nil
	if !c.valid() {
		return NoConstraint
	}
	h := sk.constraints.create(c)
	if h.idx == invalidIndex {
		return NoConstraint
	}
	sk.linkOutdated = true
	return ConstraintHandle(h)
}

// DeleteConstraint destroys a constraint along with its equation and
// derivative rows.
func (sk *Sketch) DeleteConstraint(h ConstraintHandle) bool {
	if c := sk.constraints.get(handle(h)); c != nil {
		// Derivative rows borrow from the linked equation; drop them
		// first, then the equations.
		c.dervs = nil
		c.dervsY = nil
		c.linkedEq = nil
		c.Eq = nil
	}
	if !sk.constraints.destroy(handle(h)) {
		return false
	}
	sk.linkOutdated = true
	return true
}

// ConstraintAlive reports whether h refers to a live constraint.
func (sk *Sketch) ConstraintAlive(h ConstraintHandle) bool {
	return sk.constraints.alive(handle(h))
}

// Constraint returns a copy of the constraint record. The equation tree is
// shared, not cloned; treat it as read-only.
func (sk *Sketch) Constraint(h ConstraintHandle) (Constraint, bool) {
	if c := sk.constraints.get(handle(h)); c != nil {
		cp := *c
		cp.err = 0
		cp.linkedEq = nil
		cp.dervs = nil
		cp.dervsY = nil
		return cp, true
	}
	return Constraint{}, false
}

// ConstraintCount returns the number of live constraints.
func (sk *Sketch) ConstraintCount() int { return sk.constraints.aliveCount }

// Residual evaluates the constraint's equation in its own scope and
// returns the current residual. It works whether or not the sketch is
// linked.
func (sk *Sketch) Residual(h ConstraintHandle) (float64, bool) {
	c := sk.constraints.get(handle(h))
	if c == nil {
		return 0, false
	}
	return c.Eq.eval(sk, c), true
}

// AddPoint creates the two coordinate parameters and a point entity at the
// given position.
func (sk *Sketch) AddPoint(x, y float64) EntityHandle {
	px := sk.AddParam(x)
	py := sk.AddParam(y)
	if px == NoParam || py == NoParam {
		return NoEntity
	}
	return sk.AddEntity(PointEntity(px, py))
}

// AddLine creates a line over two existing point entities.
func (sk *Sketch) AddLine(p1, p2 EntityHandle) EntityHandle {
	return sk.AddEntity(LineEntity(p1, p2))
}

// AddCircle creates the radius parameter and a circle entity around an
// existing centre point.
func (sk *Sketch) AddCircle(center EntityHandle, radius float64) EntityHandle {
	r := sk.AddParam(radius)
	if r == NoParam {
		return NoEntity
	}
	return sk.AddEntity(CircleEntity(center, r))
}

// AddArc creates an arc over three existing point entities.
func (sk *Sketch) AddArc(p1, p2, p3 EntityHandle) EntityHandle {
	return sk.AddEntity(ArcEntity(p1, p2, p3))
}

// Pos returns the position of a point entity.
func (sk *Sketch) Pos(h EntityHandle) (Vec2, bool) {
	ent := sk.entities.get(handle(h))
	if ent == nil || ent.Kind != Point {
		return Vec2{}, false
	}
	x, okx := sk.Param(ent.X)
	y, oky := sk.Param(ent.Y)
	if !okx || !oky {
		return Vec2{}, false
	}
	return Vec(x, y), true
}

// SetPos moves a point entity by writing its coordinate parameters.
func (sk *Sketch) SetPos(h EntityHandle, pos Vec2) bool {
	ent := sk.entities.get(handle(h))
	if ent == nil || ent.Kind != Point {
		return false
	}
	return sk.SetParam(ent.X, pos.X) && sk.SetParam(ent.Y, pos.Y)
}

// Radius returns the radius of a circle entity.
func (sk *Sketch) Radius(h EntityHandle) (float64, bool) {
	ent := sk.entities.get(handle(h))
	if ent == nil || ent.Kind != Circle {
		return 0, false
	}
	return sk.Param(ent.R)
}
