// SPDX-License-Identifier: GPL-2.0-or-later

package device

import (
	"sync"
	"time"
)

// pacer models a device draining at rate frames per second of wall
// clock time.
type pacer struct {
	mu       sync.Mutex
	rate     int
	lowWater int
	start    time.Time
	written  int64
	now      func() time.Time
}

func newPacer(rate, lowWater int) pacer {
	return pacer{
		rate:     rate,
		lowWater: lowWater,
		now:      time.Now,
	}
}

func (p *pacer) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.start = p.now()
	p.written = 0
}

// queued returns the frames written but not yet played. An underrun
// restarts the clock so silence is not made up for later.
func (p *pacer) queued() int64 {
	played := int64(p.now().Sub(p.start).Seconds() * float64(p.rate))
	if played > p.written {
		p.start = p.now().Add(-time.Duration(p.written) * time.Second / time.Duration(p.rate))
		return 0
	}
	return p.written - played
}

func (p *pacer) tooEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queued() < int64(p.lowWater)
}

func (p *pacer) add(frames int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queued()
	p.written += int64(frames)
}

// untilHungry is the wall clock time until the queue drops below the
// low-water mark.
func (p *pacer) untilHungry() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	q := p.queued() - int64(p.lowWater) + 1
	if q <= 0 {
		return 0
	}
	return time.Duration(q) * time.Second / time.Duration(p.rate)
}

func (p *pacer) sleep(timeout time.Duration) {
	if d := min(timeout, p.untilHungry()); d > 0 {
		time.Sleep(d)
	}
}

// Headless discards everything it gets at the pace of a real device.
// It keeps the peak level of the output for inspection.
type Headless struct {
	rate   int
	frames int
	pacer  pacer

	mu    sync.Mutex
	total int64
	peak  float32
}

func NewHeadless(rate, frames int) *Headless {
	return &Headless{
		rate:   rate,
		frames: frames,
		pacer:  newPacer(rate, lowWaterBuffers*frames),
	}
}

func (h *Headless) Open() error {
	h.pacer.reset()
	return nil
}

func (h *Headless) Close() error          { return nil }
func (h *Headless) OutputRate() int       { return h.rate }
func (h *Headless) BufferFrameCount() int { return h.frames }
func (h *Headless) IsTooEmpty() bool      { return h.pacer.tooEmpty() }

func (h *Headless) WriteFrames(samples []float32, count int) error {
	h.mu.Lock()
	for _, v := range samples[:2*count] {
		h.peak = max(h.peak, v, -v)
	}
	h.total += int64(count)
	h.mu.Unlock()
	h.pacer.add(count)
	return nil
}

func (h *Headless) SleepUntil(timeout time.Duration) {
	h.pacer.sleep(timeout)
}

// Frames returns the number of frames written since Open.
func (h *Headless) Frames() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// Peak returns the largest absolute sample value written so far.
func (h *Headless) Peak() float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.peak
}
