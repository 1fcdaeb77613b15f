package sketch

import (
	"math"
	"testing"
)

func residualOrFail(t *testing.T, sk *Sketch, h ConstraintHandle) float64 {
	t.Helper()
	r, ok := sk.Residual(h)
	if !ok {
		t.Fatal("constraint handle went stale")
	}
	return r
}

func TestCoincidentBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	p1 := sk.AddPoint(0, 0)
	p2 := sk.AddPoint(10, 4)

	cx, cy := sk.Coincident(p1, p2)
	if cx == NoConstraint || cy == NoConstraint {
		t.Fatal("Coincident rejected two valid points")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}

	g1, _ := sk.Pos(p1)
	g2, _ := sk.Pos(p2)
	if math.Abs(g1.X-g2.X) > solveTolerance || math.Abs(g1.Y-g2.Y) > solveTolerance {
		t.Fatalf("points did not coincide: %v vs %v", g1, g2)
	}
}

func TestHorizontalVerticalBuilders(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	p1 := sk.AddPoint(0, 0)
	p2 := sk.AddPoint(10, 3)

	if h := sk.Horizontal(p1, p2); h == NoConstraint {
		t.Fatal("Horizontal rejected two valid points")
	}
	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	g1, _ := sk.Pos(p1)
	g2, _ := sk.Pos(p2)
	if math.Abs(g1.Y-g2.Y) > solveTolerance {
		t.Fatalf("got y values %v and %v, expected them equal", g1.Y, g2.Y)
	}

	sk2 := newQuiet(16, 16, 16)
	q1 := sk2.AddPoint(0, 0)
	q2 := sk2.AddPoint(3, 10)
	if h := sk2.Vertical(q1, q2); h == NoConstraint {
		t.Fatal("Vertical rejected two valid points")
	}
	if !sk2.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	g1, _ = sk2.Pos(q1)
	g2, _ = sk2.Pos(q2)
	if math.Abs(g1.X-g2.X) > solveTolerance {
		t.Fatalf("got x values %v and %v, expected them equal", g1.X, g2.X)
	}
}

func TestPointOnLineBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	l1 := sk.AddPoint(0, 0)
	l2 := sk.AddPoint(10, 0)
	line := sk.AddLine(l1, l2)
	p := sk.AddPoint(5, 2)

	h := sk.PointOnLine(p, line)
	if h == NoConstraint {
		t.Fatal("PointOnLine rejected a valid definition")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}

func TestPointOnCircleBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	center := sk.AddPoint(0, 0)
	circle := sk.AddCircle(center, 1)
	p := sk.AddPoint(3, 4)

	h := sk.PointOnCircle(p, circle)
	if h == NoConstraint {
		t.Fatal("PointOnCircle rejected a valid definition")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}

func TestLineTangentToCircleBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	l1 := sk.AddPoint(-5, 2)
	l2 := sk.AddPoint(5, 2)
	line := sk.AddLine(l1, l2)
	center := sk.AddPoint(0, 0)
	circle := sk.AddCircle(center, 1.9)

	h := sk.LineTangentToCircle(line, circle)
	if h == NoConstraint {
		t.Fatal("LineTangentToCircle rejected a valid definition")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}

func TestParallelPerpendicularBuilders(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	la := sk.AddLine(sk.AddPoint(0, 0), sk.AddPoint(10, 0))
	lb := sk.AddLine(sk.AddPoint(0, 5), sk.AddPoint(10, 6))

	h := sk.Parallel(la, lb)
	if h == NoConstraint {
		t.Fatal("Parallel rejected two valid lines")
	}
	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}

	sk2 := newQuiet(16, 16, 16)
	ma := sk2.AddLine(sk2.AddPoint(0, 0), sk2.AddPoint(10, 0))
	mb := sk2.AddLine(sk2.AddPoint(0, 5), sk2.AddPoint(10, 6))
	h2 := sk2.Perpendicular(ma, mb)
	if h2 == NoConstraint {
		t.Fatal("Perpendicular rejected two valid lines")
	}
	if !sk2.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk2, h2); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}

func TestMidpointBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	a := sk.AddPoint(0, 0)
	m := sk.AddPoint(3, 3)
	b := sk.AddPoint(10, 0)

	hx, hy := sk.Midpoint(a, m, b)
	if hx == NoConstraint || hy == NoConstraint {
		t.Fatal("Midpoint rejected three valid points")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	ga, _ := sk.Pos(a)
	gm, _ := sk.Pos(m)
	gb, _ := sk.Pos(b)
	want := ga.Lerp(gb, 0.5)
	if math.Abs(gm.X-want.X) > 1e-5 || math.Abs(gm.Y-want.Y) > 1e-5 {
		t.Fatalf("got midpoint %v, expected %v", gm, want)
	}
}

func TestAngleBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	la := sk.AddLine(sk.AddPoint(0, 0), sk.AddPoint(10, 0))
	lb := sk.AddLine(sk.AddPoint(0, 5), sk.AddPoint(10, 15))
	theta := sk.AddParam(math.Pi / 2)

	h := sk.Angle(la, lb, theta)
	if h == NoConstraint {
		t.Fatal("Angle rejected a valid definition")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}

func TestDistanceBuilder(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	p1 := sk.AddPoint(0, 0)
	p2 := sk.AddPoint(1, 0)
	d := sk.AddParam(5)

	h := sk.Distance(p1, p2, d)
	if h == NoConstraint {
		t.Fatal("Distance rejected a valid definition")
	}

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("solve did not converge")
	}

	g1, _ := sk.Pos(p1)
	g2, _ := sk.Pos(p2)
	dv, _ := sk.Param(d)
	if got := g1.DistanceSquared(g2) - dv*dv; math.Abs(got) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", got)
	}
}

func TestBuilderRejectsWrongKinds(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	p1 := sk.AddPoint(0, 0)
	p2 := sk.AddPoint(1, 1)
	line := sk.AddLine(p1, p2)
	center := sk.AddPoint(5, 5)
	circle := sk.AddCircle(center, 1)

	if h := sk.Horizontal(p1, line); h != NoConstraint {
		t.Error("Horizontal accepted a line")
	}
	if h := sk.PointOnLine(p1, circle); h != NoConstraint {
		t.Error("PointOnLine accepted a circle as line")
	}
	if h := sk.PointOnCircle(p1, line); h != NoConstraint {
		t.Error("PointOnCircle accepted a line as circle")
	}
	if h := sk.Parallel(line, p1); h != NoConstraint {
		t.Error("Parallel accepted a point as line")
	}
	if h := sk.Distance(p1, p2, NoParam); h != NoConstraint {
		t.Error("Distance accepted a stale parameter")
	}
	if hx, hy := sk.Coincident(line, p1); hx != NoConstraint || hy != NoConstraint {
		t.Error("Coincident accepted a line")
	}

	// No constraint was added, so the sketch stays trivially solvable.
	if got := sk.ConstraintCount(); got != 0 {
		t.Fatalf("got %d constraints, expected 0", got)
	}
}

// Templates with indexed leaves keep resolving correctly after the slot
// ordering changes under them.
func TestBuilderSurvivesRelinkAfterDeletion(t *testing.T) {
	sk := newQuiet(16, 16, 16)
	scratch := sk.AddParam(99)

	p1 := sk.AddPoint(0, 0)
	p2 := sk.AddPoint(10, 3)
	h := sk.Horizontal(p1, p2)

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("first solve did not converge")
	}

	// Deleting an unrelated parameter reshuffles the live-parameter
	// vector and forces a relink.
	sk.DeleteParam(scratch)
	sk.SetPos(p2, Vec(10, 8))

	if !sk.Solve(solveTolerance, solveMaxSteps) {
		t.Fatal("second solve did not converge")
	}
	if r := residualOrFail(t, sk, h); math.Abs(r) > solveTolerance {
		t.Fatalf("got residual %v, expected ≈0", r)
	}
}
