// SPDX-License-Identifier: GPL-2.0-or-later

package device

import (
	"sync"
	"time"
)

// ring is the frame queue between the mixer and a pulling device
// callback. Underruns read silence.
type ring struct {
	mu       sync.Mutex
	buf      []float32 // interleaved stereo
	r        int       // read position in frames
	n        int       // buffered frames
	lowWater int
	wake     chan struct{}
}

func newRing(capacity, lowWater int) *ring {
	return &ring{
		buf:      make([]float32, 2*capacity),
		lowWater: lowWater,
		wake:     make(chan struct{}, 1),
	}
}

func (q *ring) capacity() int {
	return len(q.buf) / 2
}

// write queues count frames and returns how many fit.
func (q *ring) write(samples []float32, count int) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	c := q.capacity()
	count = min(count, c-q.n, len(samples)/2)
	w := (q.r + q.n) % c
	for i := 0; i < count; i++ {
		q.buf[2*w] = samples[2*i]
		q.buf[2*w+1] = samples[2*i+1]
		w++
		if w == c {
			w = 0
		}
	}
	q.n += count
	return count
}

// read fills dst with interleaved frames and reports how many were real.
func (q *ring) read(dst []float32) int {
	q.mu.Lock()
	c := q.capacity()
	frames := len(dst) / 2
	n := min(frames, q.n)
	for i := 0; i < n; i++ {
		dst[2*i] = q.buf[2*q.r]
		dst[2*i+1] = q.buf[2*q.r+1]
		q.r++
		if q.r == c {
			q.r = 0
		}
	}
	q.n -= n
	hungry := q.n < q.lowWater
	q.mu.Unlock()

	clear(dst[2*n:])
	if hungry {
		select {
		case q.wake <- struct{}{}:
		default:
		}
	}
	return n
}

func (q *ring) buffered() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

func (q *ring) tooEmpty() bool {
	return q.buffered() < q.lowWater
}

func (q *ring) wait(timeout time.Duration) {
	if q.tooEmpty() {
		return
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-q.wake:
	case <-t.C:
	}
}

func (q *ring) reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.r, q.n = 0, 0
}
