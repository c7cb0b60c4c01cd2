// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"testing"
)

type slotSpec struct {
	world     bool
	important bool
	ignoring  bool
	dist      float32
	sfx       SampleID
	left      int // remaining frames of local sounds
}

func fillPool(specs ...slotSpec) *pool {
	p := newPool(len(specs))
	for i, s := range specs {
		ev := &p.events[i]
		ev.busy = true
		ev.sfx = s.sfx
		ev.dist = s.dist
		ev.set(flagWorld, s.world)
		ev.set(flagImportant, s.important)
		ev.set(flagIgnoring, s.world && s.ignoring)
		if !s.world {
			ev.sample = &AudioSample{frames: s.left}
		}
		if ev.audible() {
			p.useCount++
		}
	}
	return p
}

func far(dist float32) slotSpec {
	return slotSpec{world: true, ignoring: true, dist: dist, sfx: 1}
}

func TestAllocate(t *testing.T) {
	important := func(s slotSpec) slotSpec {
		s.important = true
		return s
	}
	audible := func(s slotSpec) slotSpec {
		s.ignoring = false
		return s
	}
	local := func(left int) slotSpec {
		return slotSpec{left: left}
	}
	world := func(dist float32) allocRequest {
		return allocRequest{world: true, dist: dist, sfx: 1}
	}
	for _, tc := range []struct {
		name string
		pool []slotSpec
		req  allocRequest
		want SlotIndex
	}{
		{"10 50 then 90", []slotSpec{far(10), far(50)}, world(90), NoSlot},
		{"90 50 then 10", []slotSpec{far(90), far(50)}, world(10), 0},
		{"50 90 then 10", []slotSpec{far(50), far(90)}, world(10), 1},
		{"farthest", []slotSpec{far(10), far(30), far(20)}, world(15), 1},
		{"closer newcomer replaces", []slotSpec{far(10)}, world(5), 0},
		{"distinct samples farthest", []slotSpec{far(10), {world: true, ignoring: true, dist: 90, sfx: 2}}, world(5), 1},
		{"distinct samples closer newcomer", []slotSpec{
			{world: true, ignoring: true, dist: 90, sfx: 0},
			{world: true, ignoring: true, dist: 50, sfx: 1},
		}, allocRequest{world: true, dist: 10, sfx: 2}, 0},
		{"closest kept", []slotSpec{far(10), important(far(90))}, world(20), 1},
		{"lone closest kept from local", []slotSpec{far(10), local(5)}, allocRequest{}, 1},
		{"tied closest not kept", []slotSpec{far(10), far(10)}, allocRequest{}, 0},
		{"important newcomer wins", []slotSpec{far(10), far(50)}, allocRequest{world: true, important: true, dist: 90, sfx: 1}, 1},
		{"important newcomer vs important", []slotSpec{important(far(10)), important(far(50))}, allocRequest{world: true, important: true, dist: 90, sfx: 1}, NoSlot},
		{"unimportant first", []slotSpec{important(far(90)), far(10), far(50)}, world(20), 2},
		{"important last", []slotSpec{important(far(90)), important(far(50))}, world(10), 0},
		{"audible kept", []slotSpec{audible(far(90)), audible(far(95))}, world(10), NoSlot},
		{"local closest to finish", []slotSpec{local(100), local(10), local(50)}, allocRequest{}, 1},
		{"world never evicts local", []slotSpec{local(100), local(10)}, world(1), NoSlot},
		{"local evicts world first", []slotSpec{local(10), far(10), far(80)}, allocRequest{}, 2},
		{"local evicts ignoring important", []slotSpec{local(10), important(far(80))}, allocRequest{}, 1},
	} {
		p := fillPool(tc.pool...)
		got, ok := p.allocate(tc.req)
		if got != tc.want || ok != (tc.want != NoSlot) {
			t.Errorf("%s: allocate = %v, %v, want %v", tc.name, got, ok, tc.want)
			continue
		}
		if ok && p.events[got].busy {
			t.Errorf("%s: allocated slot %v is busy", tc.name, got)
		}
	}
}

func TestAllocateFree(t *testing.T) {
	p := newPool(2)
	for i := 0; i < 2; i++ {
		got, ok := p.allocate(allocRequest{})
		if !ok || got != SlotIndex(i) {
			t.Fatalf("allocate = %v, %v, want %v", got, ok, i)
		}
		p.events[got].busy = true
	}
}

func TestEvictionOccupancy(t *testing.T) {
	const n = 4
	out := &fakeOutput{limit: 1}
	cfg := DefaultConfig()
	cfg.Events = n
	e, q := testEngine(cfg, out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	dists := []float32{500, 300, 900, 700, 400}
	for _, d := range dists {
		q <- command{kind: cmdWorld, sfx: 0, pos: vecX(d)}
	}
	e.cycle(q)
	if b := e.pool.busy(); b != n {
		t.Fatalf("busy = %v, want %v", b, n)
	}
	for i := range e.pool.events {
		if e.pool.events[i].dist == 900 {
			t.Errorf("farthest sound still in slot %d", i)
		}
	}
}

func TestImportantProtected(t *testing.T) {
	out := &fakeOutput{limit: 1}
	cfg := DefaultConfig()
	cfg.Events = 3
	e, q := testEngine(cfg, out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(900), flag: true}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(100)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(500)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(200)}
	e.cycle(q)
	if !e.pool.events[0].is(flagImportant) || e.pool.events[0].dist != 900 {
		t.Errorf("important sound evicted")
	}
	if d := e.pool.events[2].dist; d != 200 {
		t.Errorf("slot 2 dist = %v, want 200", d)
	}
	if st := e.stats.snapshot(); st.PoolDrops != 0 {
		t.Errorf("pool drops = %v, want 0", st.PoolDrops)
	}
}

func TestEvictionDistinctSamples(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events = 2
	e, q := testEngine(cfg, &fakeOutput{limit: 1})
	for sfx := SampleID(0); sfx < 3; sfx++ {
		q <- command{kind: cmdRegister, sfx: sfx, sample: dcSample(t, 100)}
	}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(90)}
	q <- command{kind: cmdWorld, sfx: 1, pos: vecX(50)}
	q <- command{kind: cmdWorld, sfx: 2, pos: vecX(10)}
	e.cycle(q)
	for i, want := range []struct {
		dist float32
		sfx  SampleID
	}{{10, 2}, {50, 1}} {
		ev := &e.pool.events[i]
		if ev.dist != want.dist || ev.sfx != want.sfx {
			t.Errorf("slot %d = dist %v sfx %v, want dist %v sfx %v", i, ev.dist, ev.sfx, want.dist, want.sfx)
		}
	}
	if st := e.stats.snapshot(); st.PoolDrops != 0 {
		t.Errorf("pool drops = %v, want 0", st.PoolDrops)
	}
}

func TestImportantNewcomer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events = 2
	e, q := testEngine(cfg, &fakeOutput{limit: 1})
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(10)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(50)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(90), flag: true}
	e.cycle(q)
	ev := &e.pool.events[1]
	if !ev.is(flagImportant) || ev.dist != 90 {
		t.Errorf("slot 1 = dist %v important %v, want the important sound at 90", ev.dist, ev.is(flagImportant))
	}
	if d := e.pool.events[0].dist; d != 10 {
		t.Errorf("slot 0 dist = %v, want 10", d)
	}
}

func TestWorldDroppedWhenFullOfLocals(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Events = 2
	e, q := testEngine(cfg, &fakeOutput{limit: 1})
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdLocal, sfx: 0}
	q <- command{kind: cmdLocal, sfx: 0}
	q <- command{kind: cmdWorld, sfx: 0, pos: vecX(10)}
	e.cycle(q)
	for i := range e.pool.events {
		if e.pool.events[i].is(flagWorld) {
			t.Errorf("slot %d holds a world sound", i)
		}
	}
	if st := e.stats.snapshot(); st.PoolDrops != 1 {
		t.Errorf("pool drops = %v, want 1", st.PoolDrops)
	}
}

func TestFreeUseCount(t *testing.T) {
	p := fillPool(slotSpec{world: true, dist: 1}, far(2), slotSpec{left: 5})
	if p.useCount != 2 {
		t.Fatalf("useCount = %v, want 2", p.useCount)
	}
	p.free(1)
	if p.useCount != 2 {
		t.Errorf("useCount after freeing ignoring = %v, want 2", p.useCount)
	}
	p.free(0)
	p.free(2)
	if p.useCount != 0 {
		t.Errorf("useCount = %v, want 0", p.useCount)
	}
	if p.busy() != 0 {
		t.Errorf("busy = %v, want 0", p.busy())
	}
}
