package components

import "github.com/pthm-cable/affinity/genome"

// Clone returns a deep copy of e sharing no slices, maps or pointers with it.
func Clone(e Entity) Entity {
	out := e
	out.ParentID = copyID(e.ParentID)
	out.DNA = genome.Clone(e.DNA)

	if e.Engrams != nil {
		out.Engrams = make([]Engram, len(e.Engrams))
		for i, g := range e.Engrams {
			g.Subject.ParentID = copyID(g.Subject.ParentID)
			out.Engrams[i] = g
		}
	}
	if e.Actions != nil {
		out.Actions = append([]Action(nil), e.Actions...)
	}
	return out
}

// CloneAll deep-copies a population.
func CloneAll(pop []Entity) []Entity {
	out := make([]Entity, len(pop))
	for i := range pop {
		out[i] = Clone(pop[i])
	}
	return out
}
