// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"spatialsnd/math/vec"
)

// physics carries the constants of the propagation model.
type physics struct {
	speedOfSound float32
	minDistance  float32
	rate         float64
	// time for a wavefront to cross the whole world
	diagonalTime float64
}

func newPhysics(cfg Config, rate int) physics {
	return physics{
		speedOfSound: cfg.SpeedOfSound,
		minDistance:  cfg.MinEventDistance,
		rate:         float64(rate),
		diagonalTime: float64(cfg.WorldDiagonal / cfg.SpeedOfSound),
	}
}

// recalcDistance updates direction, distances and amplitude of a world
// event relative to the listener.
func (ph physics) recalcDistance(e *soundEvent, l *listener) {
	v := vec.Sub(e.origin, l.origin)
	d := v.Length()
	e.dist = d
	e.distLeft = vec.Distance(e.origin, l.leftEar)
	e.distRight = vec.Distance(e.origin, l.rightEar)
	if d < 1 {
		e.dir = vec.Vec3{}
		e.amplitude = 1
		return
	}
	e.dir = v.Scale(1 / d)
	e.amplitude = min(1, ph.minDistance/d)
}

// arrivals returns the time of flight to the left and right ear.
func (ph physics) arrivals(e *soundEvent) (left, right float64) {
	return float64(e.distLeft / ph.speedOfSound), float64(e.distRight / ph.speedOfSound)
}

// recalcIgnoring decides whether the wavefront of e currently covers the
// listener. lookahead extends the audible window to the end of the
// buffer about to be rendered so arrivals are sample accurate. It returns
// the change of the pool's useCount.
func (ph physics) recalcIgnoring(e *soundEvent, l *listener, now, lookahead float64) int {
	elapsed := now - e.startTime
	al, ar := ph.arrivals(e)
	first, last := min(al, ar), max(al, ar)

	ignoring := elapsed+lookahead < first
	if !e.is(flagFixed) && elapsed > last+e.sample.duration {
		ignoring = true
	}

	was := e.is(flagIgnoring)
	e.set(flagIgnoring, ignoring)
	if ignoring {
		e.prevLeft, e.prevRight = 0, 0
		if !was {
			return -1
		}
		return 0
	}
	if was || l.jumped {
		// the cursor follows from the time since the wavefront reached
		// each ear, never from an accumulated position
		e.ptrFracLeft = (elapsed - al) * ph.rate
		e.ptrFracRight = (elapsed - ar) * ph.rate
	}
	if was {
		return 1
	}
	return 0
}

// expired reports whether a world sound can no longer be audible anywhere.
// Fixed sounds never expire.
func (ph physics) expired(e *soundEvent, now float64) bool {
	if e.is(flagFixed) {
		return false
	}
	return now-e.startTime > e.sample.duration+ph.diagonalTime
}

// worldStuff returns per ear gains from the two lobe directional model and
// the Doppler step of the read cursor. A step <= 0 means the listener
// outruns the wavefront and the event is finished.
func (ph physics) worldStuff(e *soundEvent, l *listener) (left, right float32, step float64) {
	forwardFactor := (2 + vec.Dot(l.forward, e.dir)) / 3
	leftFactor := (2 + vec.Dot(l.left, e.dir)) / 3
	left = forwardFactor * leftFactor * e.amplitude
	right = forwardFactor * (4.0/3 - leftFactor) * e.amplitude
	step = 1 + float64(vec.Dot(l.velocity, e.dir)/ph.speedOfSound)
	return left, right, step
}

// nextArrival returns the time until the earliest not yet arrived
// wavefront, or ok false if there is none.
func (ph physics) nextArrival(events []soundEvent, now float64) (float64, bool) {
	best, ok := 0.0, false
	for i := range events {
		e := &events[i]
		if !e.busy || !e.is(flagWorld) || !e.is(flagIgnoring) {
			continue
		}
		al, ar := ph.arrivals(e)
		t := e.startTime + min(al, ar) - now
		if t < 0 {
			continue
		}
		if !ok || t < best {
			best, ok = t, true
		}
	}
	return best, ok
}
