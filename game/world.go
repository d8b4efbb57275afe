package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/affinity/components"
	"github.com/pthm-cable/affinity/traits"
)

// workingSet is the live population of the tick being computed, held in an
// ECS world. Processed entities are written back as they finish, so bites
// and births are visible to everything processed after them.
type workingSet struct {
	world *ecs.World
	tick  int64

	// post-physics population, read-only during behavior
	snapshot []components.Entity

	entityMapper *ecs.Map7[
		components.Identity,
		components.Motion,
		components.Vitals,
		components.Appearance,
		components.Genome,
		components.Memory,
		components.Journal,
	]
	entityFilter *ecs.Filter7[
		components.Identity,
		components.Motion,
		components.Vitals,
		components.Appearance,
		components.Genome,
		components.Memory,
		components.Journal,
	]
	vitalsMap *ecs.Map1[components.Vitals]

	byID   map[uint64]ecs.Entity
	order  []uint64 // emission order: survivors in input order, each followed by its child
	counts [2]int
}

func newWorkingSet(tick int64, snapshot []components.Entity) *workingSet {
	world := ecs.NewWorld()
	ws := &workingSet{
		world:    world,
		tick:     tick,
		snapshot: snapshot,
		entityMapper: ecs.NewMap7[
			components.Identity,
			components.Motion,
			components.Vitals,
			components.Appearance,
			components.Genome,
			components.Memory,
			components.Journal,
		](world),
		entityFilter: ecs.NewFilter7[
			components.Identity,
			components.Motion,
			components.Vitals,
			components.Appearance,
			components.Genome,
			components.Memory,
			components.Journal,
		](world),
		vitalsMap: ecs.NewMap1[components.Vitals](world),
		byID:      make(map[uint64]ecs.Entity, len(snapshot)),
	}
	for i := range snapshot {
		ws.add(components.Clone(snapshot[i]))
	}
	return ws
}

// add inserts an entity. The entity must not be in the set already.
func (ws *workingSet) add(e components.Entity) {
	ws.byID[e.ID] = ws.entityMapper.NewEntity(
		&e.Identity, &e.Motion, &e.Vitals, &e.Appearance, &e.Genome, &e.Memory, &e.Journal,
	)
	if int(e.Kind) < len(ws.counts) {
		ws.counts[e.Kind]++
	}
}

// get returns a copy of the live state of an entity.
func (ws *workingSet) get(id uint64) (components.Entity, bool) {
	h, ok := ws.byID[id]
	if !ok || !ws.world.Alive(h) {
		return components.Entity{}, false
	}
	ident, motion, vitals, look, genes, memory, journal := ws.entityMapper.Get(h)
	return components.Entity{
		Identity:   *ident,
		Motion:     *motion,
		Vitals:     *vitals,
		Appearance: *look,
		Genome:     *genes,
		Memory:     *memory,
		Journal:    *journal,
	}, true
}

// set overwrites the live state of an entity already in the set.
func (ws *workingSet) set(e components.Entity) {
	h, ok := ws.byID[e.ID]
	if !ok {
		return
	}
	ident, motion, vitals, look, genes, memory, journal := ws.entityMapper.Get(h)
	*ident, *motion, *vitals, *look = e.Identity, e.Motion, e.Vitals, e.Appearance
	*genes, *memory, *journal = e.Genome, e.Memory, e.Journal
}

// remove deletes an entity. Later lookups and bites no longer find it.
func (ws *workingSet) remove(id uint64) {
	h, ok := ws.byID[id]
	if !ok {
		return
	}
	ident, _, _, _, _, _, _ := ws.entityMapper.Get(h)
	if k := ident.Kind; int(k) < len(ws.counts) {
		ws.counts[k]--
	}
	ws.world.RemoveEntity(h)
	delete(ws.byID, id)
}

// emit appends id to the output order.
func (ws *workingSet) emit(id uint64) {
	ws.order = append(ws.order, id)
}

// export collects the emitted entities from the world in emission order.
func (ws *workingSet) export() []components.Entity {
	live := make(map[ecs.Entity]components.Entity, len(ws.byID))
	query := ws.entityFilter.Query()
	for query.Next() {
		ident, motion, vitals, look, genes, memory, journal := query.Get()
		live[query.Entity()] = components.Entity{
			Identity:   *ident,
			Motion:     *motion,
			Vitals:     *vitals,
			Appearance: *look,
			Genome:     *genes,
			Memory:     *memory,
			Journal:    *journal,
		}
	}

	out := make([]components.Entity, 0, len(ws.order))
	for _, id := range ws.order {
		h, ok := ws.byID[id]
		if !ok {
			continue
		}
		if e, ok := live[h]; ok {
			out = append(out, e)
		}
	}
	return out
}

// systems.Neighborhood

func (ws *workingSet) Tick() int64                   { return ws.tick }
func (ws *workingSet) Snapshot() []components.Entity { return ws.snapshot }

func (ws *workingSet) Count(kind traits.Kind) int {
	if int(kind) >= len(ws.counts) {
		return 0
	}
	return ws.counts[kind]
}

func (ws *workingSet) Energy(id uint64) (float64, bool) {
	h, ok := ws.byID[id]
	if !ok || !ws.world.Alive(h) {
		return 0, false
	}
	return ws.vitalsMap.Get(h).Energy, true
}

func (ws *workingSet) Take(id uint64, amount float64) float64 {
	h, ok := ws.byID[id]
	if !ok || !ws.world.Alive(h) || amount <= 0 {
		return 0
	}
	v := ws.vitalsMap.Get(h)
	taken := min(max(v.Energy, 0), amount)
	v.Energy -= taken
	return taken
}
