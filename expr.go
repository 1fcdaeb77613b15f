package sketch

import "math"

type opKind uint8

const (
	opConst opKind = iota
	opParam
	opParamIdx
	opPointX
	opPointY
	opCircleR
	opBorrow
	opAdd
	opSub
	opMul
	opDiv
	opSin
	opCos
	opAsin
	opAcos
	opSqrt
	opSqr
)

// Expr is a node in an immutable expression tree over sketch parameters.
// Leaves either name a parameter directly by handle, or index into the
// entity/parameter slot arrays of the constraint the tree is attached to.
// The indexed leaves let one tree shape be shared across many constraint
// instances; they resolve only during constraint-scoped evaluation.
//
// Trees are built with the package-level factory functions and never
// mutated afterwards, so subtrees may be shared freely.
type Expr struct {
	op    opKind
	a, b  *Expr
	value float64
	param ParamHandle
	slot  uint16
}

// Const returns a constant-valued leaf.
func Const(v float64) *Expr {
	return &Expr{op: opConst, value: v}
}

// Param returns a leaf that reads the parameter named by h. A stale handle
// evaluates to 0.
func Param(h ParamHandle) *Expr {
	return &Expr{op: opParam, param: h}
}

// ParamAt returns a leaf that reads the i'th parameter slot of the
// enclosing constraint. Outside a constraint it evaluates to 0.
func ParamAt(i uint16) *Expr {
	return &Expr{op: opParamIdx, slot: i}
}

// PointXAt returns a leaf that reads the x coordinate of the point entity
// in the i'th entity slot of the enclosing constraint.
func PointXAt(i uint16) *Expr {
	return &Expr{op: opPointX, slot: i}
}

// PointYAt returns a leaf that reads the y coordinate of the point entity
// in the i'th entity slot of the enclosing constraint.
func PointYAt(i uint16) *Expr {
	return &Expr{op: opPointY, slot: i}
}

// CircleRAt returns a leaf that reads the radius of the circle entity in
// the i'th entity slot of the enclosing constraint.
func CircleRAt(i uint16) *Expr {
	return &Expr{op: opCircleR, slot: i}
}

// Add returns the sum a+b.
func Add(a, b *Expr) *Expr { return &Expr{op: opAdd, a: a, b: b} }

// Sub returns the difference a−b.
func Sub(a, b *Expr) *Expr { return &Expr{op: opSub, a: a, b: b} }

// Mul returns the product a·b.
func Mul(a, b *Expr) *Expr { return &Expr{op: opMul, a: a, b: b} }

// Div returns the quotient a/b. Division by zero is not guarded; the
// solver pivots around the resulting non-finite values.
func Div(a, b *Expr) *Expr { return &Expr{op: opDiv, a: a, b: b} }

// Sin returns sin(a).
func Sin(a *Expr) *Expr { return &Expr{op: opSin, a: a} }

// Cos returns cos(a).
func Cos(a *Expr) *Expr { return &Expr{op: opCos, a: a} }

// Asin returns asin(a).
func Asin(a *Expr) *Expr { return &Expr{op: opAsin, a: a} }

// Acos returns acos(a).
func Acos(a *Expr) *Expr { return &Expr{op: opAcos, a: a} }

// Sqrt returns √a.
func Sqrt(a *Expr) *Expr { return &Expr{op: opSqrt, a: a} }

// Sqr returns a².
func Sqr(a *Expr) *Expr { return &Expr{op: opSqr, a: a} }

// borrowed wraps an operand that the derivative tree reuses from the tree
// it was derived from. The wrapper is transparent under evaluation and
// differentiation; it exists so a derivative tree is structurally honest
// about which subtrees it does not own.
func borrowed(e *Expr) *Expr {
	return &Expr{op: opBorrow, a: e}
}

// Eval evaluates the expression against sk's parameter table. Only
// constant and direct-parameter leaves resolve; indexed leaves evaluate to
// 0, as do stale parameter handles. Evaluation never fails: a broken
// reference contributes 0 to its subtree.
func (e *Expr) Eval(sk *Sketch) float64 {
	return e.eval(sk, nil)
}

// eval is the shared evaluation core. With a non-nil constraint, indexed
// leaves resolve against the constraint's slot arrays; a slot out of
// range, a stale handle, or an entity of the wrong kind evaluates to 0.
func (e *Expr) eval(sk *Sketch, c *Constraint) float64 {
	switch e.op {
	case opConst:
		return e.value
	case opParam:
		return evalParam(sk, e.param)
	case opParamIdx:
		if c == nil || int(e.slot) >= c.ParCount {
			return 0
		}
		return evalParam(sk, c.Pars[e.slot])
	case opPointX:
		if ent := slotEntity(sk, c, e.slot, Point); ent != nil {
			return evalParam(sk, ent.X)
		}
		return 0
	case opPointY:
		if ent := slotEntity(sk, c, e.slot, Point); ent != nil {
			return evalParam(sk, ent.Y)
		}
		return 0
	case opCircleR:
		if ent := slotEntity(sk, c, e.slot, Circle); ent != nil {
			return evalParam(sk, ent.R)
		}
		return 0
	case opBorrow:
		return e.a.eval(sk, c)
	case opAdd:
		return e.a.eval(sk, c) + e.b.eval(sk, c)
	case opSub:
		return e.a.eval(sk, c) - e.b.eval(sk, c)
	case opMul:
		return e.a.eval(sk, c) * e.b.eval(sk, c)
	case opDiv:
		return e.a.eval(sk, c) / e.b.eval(sk, c)
	case opSin:
		return math.Sin(e.a.eval(sk, c))
	case opCos:
		return math.Cos(e.a.eval(sk, c))
	case opAsin:
		return math.Asin(e.a.eval(sk, c))
	case opAcos:
		return math.Acos(e.a.eval(sk, c))
	case opSqrt:
		return math.Sqrt(e.a.eval(sk, c))
	case opSqr:
		v := e.a.eval(sk, c)
		return v * v
	}
	panic("sketch: unknown operator in evaluation")
}

func evalParam(sk *Sketch, h ParamHandle) float64 {
	if sk == nil {
		return 0
	}
	if p := sk.params.get(handle(h)); p != nil {
		return p.V
	}
	return 0
}

func slotEntity(sk *Sketch, c *Constraint, slot uint16, kind EntityKind) *Entity {
	if sk == nil || c == nil || int(slot) >= c.EntCount {
		return nil
	}
	ent := sk.entities.get(handle(c.Ents[slot]))
	if ent == nil || ent.Kind != kind {
		return nil
	}
	return ent
}

// Derivative returns a new expression tree for ∂e/∂wrt. Indexed leaves
// differentiate to 0: their target cannot be identified without a
// constraint scope. The solver avoids that pitfall by expanding indexed
// leaves to direct-parameter leaves before differentiating.
func Derivative(e *Expr, wrt ParamHandle) *Expr {
	return derivative(e, wrt, false)
}

// derivative applies the standard differentiation rules. With protect set,
// operands reused verbatim in the result are wrapped as borrowed, marking
// the subtrees the derivative shares with e.
func derivative(e *Expr, wrt ParamHandle, protect bool) *Expr {
	reuse := func(x *Expr) *Expr {
		if protect {
			return borrowed(x)
		}
		return x
	}
	switch e.op {
	case opConst, opParamIdx, opPointX, opPointY, opCircleR:
		return Const(0)
	case opParam:
		if e.param == wrt {
			return Const(1)
		}
		return Const(0)
	case opBorrow:
		return derivative(e.a, wrt, protect)
	case opAdd:
		return Add(derivative(e.a, wrt, protect), derivative(e.b, wrt, protect))
	case opSub:
		return Sub(derivative(e.a, wrt, protect), derivative(e.b, wrt, protect))
	case opMul:
		return Add(
			Mul(derivative(e.a, wrt, protect), reuse(e.b)),
			Mul(reuse(e.a), derivative(e.b, wrt, protect)),
		)
	case opDiv:
		return Div(
			Sub(
				Mul(derivative(e.a, wrt, protect), reuse(e.b)),
				Mul(reuse(e.a), derivative(e.b, wrt, protect)),
			),
			Mul(reuse(e.b), reuse(e.b)),
		)
	case opSin:
		return Mul(derivative(e.a, wrt, protect), Cos(reuse(e.a)))
	case opCos:
		return Mul(
			Mul(Const(-1), Sin(reuse(e.a))),
			derivative(e.a, wrt, protect),
		)
	case opAsin:
		return Div(
			derivative(e.a, wrt, protect),
			Sqrt(Sub(Const(1), Sqr(reuse(e.a)))),
		)
	case opAcos:
		return Div(
			Mul(Const(-1), derivative(e.a, wrt, protect)),
			Sqrt(Sub(Const(1), Sqr(reuse(e.a)))),
		)
	case opSqrt:
		return Div(
			derivative(e.a, wrt, protect),
			Mul(Const(2), Sqrt(reuse(e.a))),
		)
	case opSqr:
		return Mul(Const(2), Mul(reuse(e.a), derivative(e.a, wrt, protect)))
	}
	panic("sketch: unknown operator in differentiation")
}
