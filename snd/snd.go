// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"log"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"spatialsnd/conlog"
	"spatialsnd/math/vec"
)

// System is the control context handle of one audio engine. All methods
// are safe to call on a nil *System and do nothing in that case. Methods
// must be called from a single goroutine, the game loop.
type System struct {
	id     uuid.UUID
	cfg    Config
	format sampleFormat
	dec    Decoder
	queue  chan command
	stats  *stats
	run    runner

	mu    sync.Mutex
	names map[string]SampleID
	next  SampleID

	stopped atomic.Bool
}

func (s *System) send(c command) bool {
	if s.stopped.Load() {
		return false
	}
	select {
	case s.queue <- c:
		return true
	default:
		s.stats.queueDrops.Add(1)
		return false
	}
}

// load decodes a sound on the control side. A nil result marks the name
// as empty.
func (s *System) load(name string) *AudioSample {
	if s.dec == nil {
		return nil
	}
	pcm, frames, rate, err := s.dec.Decode(name)
	if err != nil {
		log.Printf("snd: %v", err)
		return nil
	}
	sample, err := s.format.resample(name, pcm, frames, rate)
	if err != nil {
		log.Printf("snd: %v", err)
		return nil
	}
	return sample
}

func (s *System) precache(name string) SampleID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.names[name]; ok {
		return id
	}
	id := s.next
	s.next++
	if !s.send(command{kind: cmdRegister, sfx: id, sample: s.load(name)}) {
		// not registered, a later Precache retries under a new id
		return NoSample
	}
	s.names[name] = id
	return id
}

func (s *System) move(pos vec.Vec3, yaw float32, jump bool) {
	s.send(command{kind: cmdListener, pos: pos, yaw: yaw, flag: jump})
}

func (s *System) shutdown() {
	if s.stopped.Swap(true) {
		return
	}
	s.run.stop(s.queue)
}

// The API

// Init opens out and starts the audio context. If out is nil or fails to
// open the System is inert: every call is accepted and nothing is heard.
// Names in cfg.Preload are decoded with dec before the audio context
// starts and get the SampleIDs 0..len(Preload)-1.
func Init(cfg Config, out Output, dec Decoder) *System {
	cfg.sanitize()
	id := uuid.Must(uuid.NewV7())

	available := false
	if out != nil {
		if err := out.Open(); err != nil {
			log.Printf("snd %v: %v", id, err)
		} else {
			available = true
		}
	}
	if !available {
		conlog.Printf("audio unavailable\n")
	}

	rate, frames := cfg.Rate, cfg.BufferFrames
	if available {
		if r := out.OutputRate(); r > 0 {
			rate = r
		}
		if f := out.BufferFrameCount(); f > 0 {
			frames = f
		}
	}

	s := &System{
		id:     id,
		cfg:    cfg,
		format: newSampleFormat(cfg, rate),
		dec:    dec,
		queue:  make(chan command, cfg.QueueSize),
		stats:  newStats(cfg.Events),
		names:  make(map[string]SampleID),
	}
	e := newEngine(id, cfg, out, available, rate, frames, s.stats)
	for _, name := range cfg.Preload {
		if _, ok := s.names[name]; ok {
			continue
		}
		e.store.set(s.next, s.load(name))
		s.names[name] = s.next
		s.next++
	}

	if cfg.Threaded {
		s.run = newThreadedRunner(e, s.queue)
	} else {
		s.run = newCooperativeRunner(e, s.queue)
	}
	s.run.start()
	log.Printf("snd %v: started, rate %d, buffer %d, events %d", id, rate, frames, cfg.Events)
	return s
}

func (s *System) ID() uuid.UUID {
	if s == nil {
		return uuid.Nil
	}
	return s.id
}

// Available reports whether an output device is attached. Muted systems
// are still available.
func (s *System) Available() bool {
	if s == nil {
		return false
	}
	return s.stats.available.Load()
}

func (s *System) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return s.stats.snapshot()
}

// Precache returns the SampleID of name, decoding it on first use.
func (s *System) Precache(name string) SampleID {
	if s == nil {
		return NoSample
	}
	return s.precache(name)
}

func (s *System) Move(pos vec.Vec3, yaw float32) {
	if s == nil {
		return
	}
	s.move(pos, yaw, false)
}

// Jump is Move for a discontinuous change, e.g. a teleport.
func (s *System) Jump(pos vec.Vec3, yaw float32) {
	if s == nil {
		return
	}
	s.move(pos, yaw, true)
}

func (s *System) SetVelocity(v vec.Vec3) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdVelocity, pos: v})
}

// SetVolume sets the master volume in the range 0..10.
func (s *System) SetVolume(v float32) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdVolume, value: v})
}

func (s *System) SetMute(m bool) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdMute, flag: m})
}

func (s *System) PlayLocal(sfx SampleID) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdLocal, sfx: sfx})
}

func (s *System) PlayWorld(sfx SampleID, pos vec.Vec3, important bool) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdWorld, sfx: sfx, pos: pos, flag: important})
}

// PlayFixed starts a looping sound at pos that plays until Clear.
func (s *System) PlayFixed(sfx SampleID, pos vec.Vec3) {
	if s == nil {
		return
	}
	s.send(command{kind: cmdFixed, sfx: sfx, pos: pos})
}

func (s *System) Clear() {
	if s == nil {
		return
	}
	s.send(command{kind: cmdClear})
}

// Update runs the mixer in cooperative mode. It is a no-op for a
// threaded System.
func (s *System) Update() {
	if s == nil || s.stopped.Load() {
		return
	}
	s.run.update()
}

// Shutdown stops the audio context after it processed every queued
// command and closes the device. It blocks until the context exited.
func (s *System) Shutdown() {
	if s == nil {
		return
	}
	s.shutdown()
}
