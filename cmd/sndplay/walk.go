// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"math"
	"time"

	"github.com/gopxl/mainthread/v2"

	"spatialsnd/host"
	"spatialsnd/math/vec"
	"spatialsnd/rand"
)

const (
	walkRadius = 20
	// degrees per second
	walkTurn   = 18
)

// walk circles the listener around a fixed hum while clicks and bursts
// of noise go off nearby. Volume and mute follow the cvars.
func walk(h *host.Host, d time.Duration) {
	s := h.Sound()
	g := rand.New(uint32(time.Now().Unix()))
	s.PlayFixed(host.SfxHum, vec.Vec3{})

	nextClick, nextNoise, nextBeep := 0.0, 1.0, 2.0
	for {
		var ran bool
		mainthread.Call(func() {
			ran = h.Frame()
		})
		if !ran {
			sleep(time.Millisecond)
			continue
		}
		now := h.Time()
		if now >= d.Seconds() || h.Quit() {
			return
		}

		angle := float32(now * walkTurn)
		forward, left := vec.YawVectors(angle)
		pos := left.Scale(-walkRadius)
		h.Move(pos, angle)
		s.SetVelocity(forward.Scale(walkRadius * walkTurn * math.Pi / 180))

		if now >= nextClick {
			s.PlayWorld(host.SfxClick, g.Around(pos, 30), false)
			nextClick = now + float64(g.Range(0.1, 0.6))
		}
		if now >= nextNoise {
			s.PlayWorld(host.SfxNoise, g.Around(pos, 60), true)
			nextNoise = now + float64(g.Range(1, 3))
		}
		if now >= nextBeep {
			s.PlayLocal(host.SfxBeep)
			nextBeep = now + 4
		}
		h.Wait()
	}
}
