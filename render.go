package sketch

// Renderer is the host-facing drawing contract. The core contains no
// drawing code; Render resolves entity geometry and hands it to the
// callbacks.
type Renderer interface {
	DrawPoint(pos Vec2)
	DrawLine(p1, p2 Vec2)
	DrawCircle(center Vec2, radius float64)
	DrawArc(p1, p2, p3 Vec2)
}

// Render walks the live entities in slot order and invokes the matching
// callback for each. Entities whose references have gone stale are
// skipped.
func (sk *Sketch) Render(r Renderer) {
	for i := range sk.entities.slots {
		s := &sk.entities.slots[i]
		if !s.alive {
			continue
		}
		h := EntityHandle{idx: uint16(i), gen: s.gen}
		ent := &s.payload
		switch ent.Kind {
		case Point:
			if p, ok := sk.Pos(h); ok {
				r.DrawPoint(p)
			}
		case Line:
			p1, ok1 := sk.Pos(ent.P1)
			p2, ok2 := sk.Pos(ent.P2)
			if ok1 && ok2 {
				r.DrawLine(p1, p2)
			}
		case Circle:
			c, okc := sk.Pos(ent.C)
			rad, okr := sk.Param(ent.R)
			if okc && okr {
				r.DrawCircle(c, rad)
			}
		case Arc:
			p1, ok1 := sk.Pos(ent.P1)
			p2, ok2 := sk.Pos(ent.P2)
			p3, ok3 := sk.Pos(ent.P3)
			if ok1 && ok2 && ok3 {
				r.DrawArc(p1, p2, p3)
			}
		}
	}
}
