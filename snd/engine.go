// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"log"
	"time"

	"github.com/google/uuid"

	"spatialsnd/math"
	"spatialsnd/math/vec"
)

// Engine is the audio context state: sample store, event pool, listener
// and mix buffers. Everything in here is touched by exactly one goroutine
// at a time, the one running cycle.
type Engine struct {
	id        uuid.UUID
	out       Output
	available bool
	rate      int
	frames    int
	period    time.Duration

	earSpacing float32
	phys       physics
	store      store
	pool       *pool
	listener   listener

	// mixer clock in seconds, advanced by written frames
	now    float64
	volume float32
	muted  bool
	quit   bool

	mix    []float32
	outBuf []float32

	stats *stats
}

func newEngine(id uuid.UUID, cfg Config, out Output, available bool, rate, frames int, st *stats) *Engine {
	e := &Engine{
		id:         id,
		out:        out,
		available:  available,
		rate:       rate,
		frames:     frames,
		period:     bufferPeriod(frames, rate),
		earSpacing: cfg.InterauralDistance,
		phys:       newPhysics(cfg, rate),
		pool:       newPool(cfg.Events),
		listener:   newListener(cfg.InterauralDistance),
		volume:     1,
		mix:        make([]float32, frames*2),
		outBuf:     make([]float32, frames*2),
		stats:      st,
	}
	st.available.Store(available)
	return e
}

// drain applies every command pending at call time, in order.
func (e *Engine) drain(q <-chan command) {
	for n := len(q); n > 0; n-- {
		e.apply(<-q)
	}
}

func (e *Engine) apply(c command) {
	switch c.kind {
	case cmdListener:
		e.listener.place(c.pos, c.yaw, e.earSpacing)
		if c.flag {
			e.listener.jumped = true
		}
	case cmdVelocity:
		e.listener.velocity = c.pos
	case cmdVolume:
		v := math.Clamp(0, c.value, 10)
		e.volume = math.Square(v / 10)
	case cmdMute:
		e.muted = c.flag
	case cmdLocal:
		e.startLocal(c.sfx)
	case cmdWorld:
		e.startWorld(c.sfx, c.pos, c.flag, false)
	case cmdFixed:
		e.startWorld(c.sfx, c.pos, false, true)
	case cmdRegister:
		e.store.set(c.sfx, c.sample)
	case cmdClear:
		e.pool.clear()
	case cmdQuit:
		e.quit = true
	case cmdNone:
	default:
		log.Printf("snd %v: unknown command %v", e.id, c.kind)
	}
}

func (e *Engine) startLocal(sfx SampleID) {
	s := e.store.get(sfx)
	if s == nil {
		return
	}
	i, ok := e.pool.allocate(allocRequest{sfx: sfx})
	if !ok {
		e.stats.poolDrops.Add(1)
		return
	}
	e.pool.events[i] = soundEvent{
		sample:    s,
		sfx:       sfx,
		busy:      true,
		startTime: e.now,
	}
	e.pool.useCount++
}

func (e *Engine) startWorld(sfx SampleID, origin vec.Vec3, important, fixed bool) {
	s := e.store.get(sfx)
	if s == nil {
		return
	}
	i, ok := e.pool.allocate(allocRequest{
		world:     true,
		important: important,
		dist:      vec.Distance(origin, e.listener.origin),
		sfx:       sfx,
	})
	if !ok {
		e.stats.poolDrops.Add(1)
		return
	}
	ev := &e.pool.events[i]
	*ev = soundEvent{
		sample:    s,
		sfx:       sfx,
		busy:      true,
		flags:     flagWorld | flagIgnoring,
		origin:    origin,
		startTime: e.now,
	}
	ev.set(flagImportant, important)
	ev.set(flagFixed, fixed)
	e.phys.recalcDistance(ev, &e.listener)
}

// update recomputes the geometry of every world event and frees the ones
// that can no longer be heard.
func (e *Engine) update() {
	lookahead := float64(e.frames) / float64(e.rate)
	for i := range e.pool.events {
		ev := &e.pool.events[i]
		if !ev.busy || !ev.is(flagWorld) {
			continue
		}
		if e.phys.expired(ev, e.now) {
			e.pool.free(SlotIndex(i))
			continue
		}
		e.phys.recalcDistance(ev, &e.listener)
		e.pool.useCount += e.phys.recalcIgnoring(ev, &e.listener, e.now, lookahead)
	}
	e.listener.jumped = false
}

// cycle is one iteration of the audio context: drain all commands, then
// render and write one buffer if the device asks for it. It returns how
// long the caller may sleep and whether a Quit was seen.
func (e *Engine) cycle(q <-chan command) (wrote bool, timeout time.Duration, quit bool) {
	e.drain(q)
	if e.quit {
		return false, 0, true
	}
	if !e.available || !e.out.IsTooEmpty() {
		e.stats.publish(e.pool, e.now)
		return false, e.nextWake(), false
	}
	e.update()
	e.render()
	if err := e.out.WriteFrames(e.outBuf, e.frames); err != nil {
		log.Printf("snd %v: write failed, audio unavailable: %v", e.id, err)
		e.available = false
		e.stats.available.Store(false)
	}
	e.now += float64(e.frames) / float64(e.rate)
	e.stats.buffers.Add(1)
	e.stats.publish(e.pool, e.now)
	return true, e.nextWake(), false
}

// nextWake bounds the sleep by the next wavefront arrival.
func (e *Engine) nextWake() time.Duration {
	t, ok := e.phys.nextArrival(e.pool.events, e.now)
	if !ok {
		return e.period
	}
	return min(e.period, time.Duration(t*float64(time.Second)))
}

// wait is the only blocking point of the audio context.
func (e *Engine) wait(timeout time.Duration) {
	if !e.available {
		time.Sleep(timeout)
		return
	}
	e.out.SleepUntil(timeout)
}

func (e *Engine) close() {
	e.pool.clear()
	e.stats.publish(e.pool, e.now)
	if e.available {
		if err := e.out.Close(); err != nil {
			log.Printf("snd %v: close: %v", e.id, err)
		}
	}
	e.available = false
	e.stats.available.Store(false)
}
