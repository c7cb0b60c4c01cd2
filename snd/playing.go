// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"spatialsnd/math/vec"
)

// SlotIndex addresses one entry of the event pool.
type SlotIndex int

const NoSlot SlotIndex = -1

type eventFlags uint8

const (
	flagWorld eventFlags = 1 << iota
	flagFixed
	flagIgnoring
	flagImportant
)

// soundEvent is one slot of the pool. The zero value is a free slot.
type soundEvent struct {
	sample *AudioSample
	sfx    SampleID
	busy   bool
	flags  eventFlags

	// local playback cursor in frames
	ptr int
	// world playback cursors in fractional frames, one per ear
	ptrFracLeft  float64
	ptrFracRight float64

	origin    vec.Vec3
	startTime float64

	dir       vec.Vec3
	dist      float32
	distLeft  float32
	distRight float32
	amplitude float32

	// gains used at the end of the previous buffer
	prevLeft  float32
	prevRight float32
}

func (e *soundEvent) is(f eventFlags) bool {
	return e.flags&f != 0
}

func (e *soundEvent) set(f eventFlags, on bool) {
	if on {
		e.flags |= f
	} else {
		e.flags &^= f
	}
}

// audible events count towards the pool's useCount.
func (e *soundEvent) audible() bool {
	return e.busy && !e.is(flagIgnoring)
}

func (e *soundEvent) remaining() int {
	if e.sample == nil {
		return 0
	}
	return e.sample.frames - e.ptr
}
