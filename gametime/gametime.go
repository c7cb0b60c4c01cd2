// SPDX-License-Identifier: GPL-2.0-or-later

package gametime

import (
	"time"

	"spatialsnd/math"
)

// GameTime is the frame clock of a control loop. Times are in seconds
// since the clock was created.
type GameTime struct {
	now        func() time.Duration
	time       float64
	oldTime    float64
	frameTime  float64
	frameCount int
}

func New() *GameTime {
	start := time.Now()
	return NewWithClock(func() time.Duration { return time.Since(start) })
}

func NewWithClock(now func() time.Duration) *GameTime {
	return &GameTime{now: now, frameTime: 0.1}
}

func (h *GameTime) Time() float64      { return h.time }
func (h *GameTime) OldTime() float64   { return h.oldTime }
func (h *GameTime) FrameTime() float64 { return h.frameTime }
func (h *GameTime) FrameCount() int    { return h.frameCount }

func clampFPS(maxFPS float64) float64 {
	return math.Clamp(10.0, maxFPS, 1000.0)
}

// UpdateTime starts a new frame.
// Returns false if it would exceed maxFPS
func (h *GameTime) UpdateTime(maxFPS float64) bool {
	h.time = h.now().Seconds()
	if h.time-h.oldTime < 1/clampFPS(maxFPS) {
		return false
	}
	h.frameTime = math.Clamp(0.001, h.time-h.oldTime, 0.1)
	h.oldTime = h.time
	h.frameCount++
	return true
}

// UntilNext is the time left before UpdateTime accepts another frame.
func (h *GameTime) UntilNext(maxFPS float64) time.Duration {
	left := h.oldTime + 1/clampFPS(maxFPS) - h.now().Seconds()
	if left <= 0 {
		return 0
	}
	return time.Duration(left * float64(time.Second))
}
