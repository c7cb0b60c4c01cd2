// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"math"
	"sync/atomic"
)

// SlotState is the published state of one pool slot.
type SlotState uint8

const (
	SlotFree SlotState = iota
	SlotLocal
	SlotWorldIgnoring
	SlotWorldAudible
	SlotFixedIgnoring
	SlotFixedAudible
)

func (s SlotState) Rune() rune {
	switch s {
	case SlotLocal:
		return 'L'
	case SlotWorldIgnoring:
		return 'w'
	case SlotWorldAudible:
		return 'W'
	case SlotFixedIgnoring:
		return 'f'
	case SlotFixedAudible:
		return 'F'
	}
	return '.'
}

// Stats is a snapshot of engine counters. It is telemetry only; the
// control context never reads engine state directly.
type Stats struct {
	Available bool
	Busy      int
	Audible   int
	Buffers   uint64
	// Time is the mixer clock in seconds, advanced by written frames.
	Time float64
	// QueueDrops counts commands lost to a full queue, PoolDrops
	// triggers lost to a full pool.
	QueueDrops uint64
	PoolDrops  uint64
	Slots      []SlotState
}

type stats struct {
	available  atomic.Bool
	busy       atomic.Int32
	audible    atomic.Int32
	buffers    atomic.Uint64
	now        atomic.Uint64
	queueDrops atomic.Uint64
	poolDrops  atomic.Uint64
	slots      []atomic.Uint32
}

func newStats(events int) *stats {
	return &stats{
		slots: make([]atomic.Uint32, events),
	}
}

func (s *stats) publish(p *pool, now float64) {
	s.busy.Store(int32(p.busy()))
	s.audible.Store(int32(p.useCount))
	s.now.Store(math.Float64bits(now))
	for i := range p.events {
		s.slots[i].Store(uint32(slotState(&p.events[i])))
	}
}

func slotState(e *soundEvent) SlotState {
	switch {
	case !e.busy:
		return SlotFree
	case !e.is(flagWorld):
		return SlotLocal
	case e.is(flagFixed) && e.is(flagIgnoring):
		return SlotFixedIgnoring
	case e.is(flagFixed):
		return SlotFixedAudible
	case e.is(flagIgnoring):
		return SlotWorldIgnoring
	}
	return SlotWorldAudible
}

func (s *stats) snapshot() Stats {
	st := Stats{
		Available:  s.available.Load(),
		Busy:       int(s.busy.Load()),
		Audible:    int(s.audible.Load()),
		Buffers:    s.buffers.Load(),
		Time:       math.Float64frombits(s.now.Load()),
		QueueDrops: s.queueDrops.Load(),
		PoolDrops:  s.poolDrops.Load(),
		Slots:      make([]SlotState, len(s.slots)),
	}
	for i := range s.slots {
		st.Slots[i] = SlotState(s.slots[i].Load())
	}
	return st
}
