package sketch

import "math"

// Editor-side queries over entity geometry. These read the sketch but
// never touch solver state.

// DistanceTo returns the distance from pos to the entity: to the location
// of a point, to the closest point of a line segment, to the perimeter of
// a circle, or to the nearest of an arc's defining points. It reports
// false when the entity is stale or, for a point, line or circle, when one
// of its references is stale. An arc ignores stale defining points and
// reports false only when all three are stale.
func (sk *Sketch) DistanceTo(h EntityHandle, pos Vec2) (float64, bool) {
	ent := sk.entities.get(handle(h))
	if ent == nil {
		return 0, false
	}
	switch ent.Kind {
	case Point:
		p, ok := sk.Pos(h)
		if !ok {
			return 0, false
		}
		return p.Distance(pos), true
	case Line:
		a, oka := sk.Pos(ent.P1)
		b, okb := sk.Pos(ent.P2)
		if !oka || !okb {
			return 0, false
		}
		return segmentDistance(a, b, pos), true
	case Circle:
		c, ok := sk.Pos(ent.C)
		if !ok {
			return 0, false
		}
		r, ok := sk.Param(ent.R)
		if !ok {
			return 0, false
		}
		return math.Abs(c.Distance(pos) - r), true
	case Arc:
		best := math.MaxFloat64
		any := false
		for _, ph := range [...]EntityHandle{ent.P1, ent.P2, ent.P3} {
			if p, ok := sk.Pos(ph); ok {
				any = true
				best = min(best, p.Distance(pos))
			}
		}
		return best, any
	}
	return 0, false
}

// segmentDistance returns the distance from p to the segment ab.
func segmentDistance(a, b, p Vec2) float64 {
	ab := b.Sub(a)
	len2 := ab.Hypot2()
	if len2 == 0 {
		return a.Distance(p)
	}
	t := p.Sub(a).Dot(ab) / len2
	if t <= 0 {
		return a.Distance(p)
	}
	if t >= 1 {
		return b.Distance(p)
	}
	return a.Add(ab.Mul(t)).Distance(p)
}

// Closest returns the live entity nearest to pos and its distance.
// pointBias is subtracted from point distances before comparison, so
// points win over the shapes they define when the cursor is close to
// both. The returned distance is the real one, without the bias. It
// reports false when the sketch has no measurable entity.
func (sk *Sketch) Closest(pos Vec2, pointBias float64) (EntityHandle, float64, bool) {
	return sk.ClosestExcept(pos, pointBias, NoEntity)
}

// ClosestExcept is Closest, skipping one entity. Useful while dragging:
// the entity under the cursor should not capture its own search.
func (sk *Sketch) ClosestExcept(pos Vec2, pointBias float64, exclude EntityHandle) (EntityHandle, float64, bool) {
	best := NoEntity
	bestDist := 0.0
	bestScore := math.MaxFloat64

	for i := range sk.entities.slots {
		s := &sk.entities.slots[i]
		if !s.alive {
			continue
		}
		h := EntityHandle{idx: uint16(i), gen: s.gen}
		if h == exclude {
			continue
		}
		d, ok := sk.DistanceTo(h, pos)
		if !ok {
			continue
		}
		score := d
		if s.payload.Kind == Point {
			score -= pointBias
		}
		if score < bestScore {
			best = h
			bestDist = d
			bestScore = score
		}
	}
	if best == NoEntity {
		return NoEntity, 0, false
	}
	return best, bestDist, true
}
