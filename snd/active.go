// SPDX-License-Identifier: GPL-2.0-or-later

package snd

type allocRequest struct {
	world     bool
	important bool
	dist      float32
	sfx       SampleID
}

// pool is the fixed arena of sound event slots. It is owned by the audio
// context.
type pool struct {
	events []soundEvent
	// number of audible slots; zero means the mixer can skip summing
	useCount int
}

func newPool(n int) *pool {
	return &pool{
		events: make([]soundEvent, n),
	}
}

func (p *pool) free(i SlotIndex) {
	if p.events[i].audible() {
		p.useCount--
	}
	p.events[i] = soundEvent{}
}

func (p *pool) clear() {
	clear(p.events)
	p.useCount = 0
}

func (p *pool) busy() int {
	n := 0
	for i := range p.events {
		if p.events[i].busy {
			n++
		}
	}
	return n
}

// allocate returns a free slot, evicting a less valuable sound if the pool
// is full. The returned slot is zeroed.
func (p *pool) allocate(req allocRequest) (SlotIndex, bool) {
	for i := range p.events {
		if !p.events[i].busy {
			return SlotIndex(i), true
		}
	}
	keep := p.closest(req)
	if v := p.farthestIgnoring(keep, false); v != NoSlot {
		return p.evict(v, req)
	}
	if v := p.farthestIgnoring(NoSlot, true); v != NoSlot {
		return p.evict(v, req)
	}
	if !req.world {
		if v := p.closestToFinish(); v != NoSlot {
			p.free(v)
			return v, true
		}
	}
	return NoSlot, false
}

// evict frees v for req unless req is a world sound at least as far away,
// in which case the newcomer is the least valuable and gets dropped. An
// important newcomer always wins over an unimportant victim.
func (p *pool) evict(v SlotIndex, req allocRequest) (SlotIndex, bool) {
	victim := &p.events[v]
	if req.world && req.dist >= victim.dist && (!req.important || victim.is(flagImportant)) {
		return NoSlot, false
	}
	p.free(v)
	return v, true
}

// farthestIgnoring returns the farthest ignoring world event of the given
// importance, skipping keep.
func (p *pool) farthestIgnoring(keep SlotIndex, important bool) SlotIndex {
	best := NoSlot
	for i := range p.events {
		e := &p.events[i]
		if !e.busy || !e.is(flagWorld) || !e.is(flagIgnoring) || SlotIndex(i) == keep {
			continue
		}
		if e.is(flagImportant) != important {
			continue
		}
		if best == NoSlot || e.dist > p.events[best].dist {
			best = SlotIndex(i)
		}
	}
	return best
}

// closest returns the world event nearest to the listener if it is the
// only one at that distance, counting a world request. That event is
// never evicted in favor of a farther unimportant one.
func (p *pool) closest(req allocRequest) SlotIndex {
	best, tie := NoSlot, false
	for i := range p.events {
		e := &p.events[i]
		if !e.busy || !e.is(flagWorld) {
			continue
		}
		switch {
		case best == NoSlot || e.dist < p.events[best].dist:
			best, tie = SlotIndex(i), false
		case e.dist == p.events[best].dist:
			tie = true
		}
	}
	if best == NoSlot || tie || (req.world && req.dist <= p.events[best].dist) {
		return NoSlot
	}
	return best
}

func (p *pool) closestToFinish() SlotIndex {
	best := NoSlot
	for i := range p.events {
		e := &p.events[i]
		if !e.busy || e.is(flagWorld) {
			continue
		}
		if best == NoSlot || e.remaining() < p.events[best].remaining() {
			best = SlotIndex(i)
		}
	}
	return best
}
