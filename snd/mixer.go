// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"math"

	cmath "spatialsnd/math"
)

var (
	fadeIn  [fadeLen]float32
	fadeOut [fadeLen]float32
)

func init() {
	for i := range fadeIn {
		fadeIn[i] = float32(i+1) / float32(fadeLen+1)
		fadeOut[i] = 1 - fadeIn[i]
	}
}

// gainAt is the gain of frame i of a buffer moving from prev to cur.
func gainAt(prev, cur float32, i int) float32 {
	if prev == cur || i >= fadeLen {
		return cur
	}
	return prev*fadeOut[i] + cur*fadeIn[i]
}

// render fills outBuf with the next buffer.
func (e *Engine) render() {
	clear(e.mix)
	if e.pool.useCount > 0 {
		for i := range e.pool.events {
			ev := &e.pool.events[i]
			switch {
			case !ev.busy:
			case !ev.is(flagWorld):
				e.mixLocal(SlotIndex(i))
			case !ev.is(flagIgnoring):
				e.mixWorld(SlotIndex(i))
			}
		}
	}
	if e.muted || e.volume <= 0 {
		clear(e.outBuf)
		return
	}
	for i, v := range e.mix {
		e.outBuf[i] = cmath.Clamp(-1, v*e.volume, 1)
	}
}

func (e *Engine) mixLocal(i SlotIndex) {
	ev := &e.pool.events[i]
	data := ev.sample.data
	n := min(e.frames, ev.remaining())
	for j := 0; j < n; j++ {
		gl := gainAt(ev.prevLeft, 1, j)
		gr := gainAt(ev.prevRight, 1, j)
		k := 2 * (ev.ptr + j)
		e.mix[2*j] += data[k] * gl
		e.mix[2*j+1] += data[k+1] * gr
	}
	ev.prevLeft, ev.prevRight = 1, 1
	ev.ptr += n
	if ev.ptr >= ev.sample.frames {
		e.pool.free(i)
	}
}

func (e *Engine) mixWorld(i SlotIndex) {
	ev := &e.pool.events[i]
	gl, gr, step := e.phys.worldStuff(ev, &e.listener)
	if step <= 0 {
		if !ev.is(flagFixed) {
			e.pool.free(i)
			return
		}
		// a loop stays silent while the listener outruns it
		ev.prevLeft, ev.prevRight = 0, 0
		return
	}
	read := ev.sample.monoAt
	if ev.is(flagFixed) {
		read = ev.sample.loopAt
	}
	ev.ptrFracLeft, ev.prevLeft = e.mixEar(0, read, ev.ptrFracLeft, step, ev.prevLeft, gl)
	ev.ptrFracRight, ev.prevRight = e.mixEar(1, read, ev.ptrFracRight, step, ev.prevRight, gr)

	if ev.is(flagFixed) {
		frames := float64(ev.sample.frames)
		if lo := min(ev.ptrFracLeft, ev.ptrFracRight); lo >= frames {
			k := math.Floor(lo/frames) * frames
			ev.ptrFracLeft -= k
			ev.ptrFracRight -= k
		}
	}
}

// mixEar sums one channel of a world event and returns the advanced cursor
// and the gain the next buffer fades from. Frames before the wavefront
// reaches the ear stay silent and the crossfade starts at the first frame
// inside the sample.
func (e *Engine) mixEar(ch int, read func(float64) float32, pos, step float64, prev, cur float32) (float64, float32) {
	k := 0
	for j := 0; j < e.frames; j++ {
		if pos >= 0 {
			e.mix[2*j+ch] += read(pos) * gainAt(prev, cur, k)
			k++
		}
		pos += step
	}
	if k == 0 {
		return pos, prev
	}
	return pos, cur
}
