// SPDX-License-Identifier: GPL-2.0-or-later

// Package rand is a seeded noise-hash generator. The same seed always
// yields the same sequence, which keeps demo runs reproducible.
package rand

import (
	"spatialsnd/math/vec"
)

const (
	noise1 = 0xB5297A4D
	noise2 = 0x68E31DA4
	noise3 = 0x1B56C4E9
)

type Generator struct {
	idx  uint32
	seed uint32
}

func New(seed uint32) *Generator {
	return &Generator{seed: seed}
}

func noise(p uint32, s uint32) uint32 {
	m := p * noise1
	m += s
	m ^= m >> 8
	m *= noise2
	m ^= m << 8
	m *= noise3
	m ^= m >> 8
	return m
}

func (g *Generator) next() uint32 {
	g.idx++
	return noise(g.idx, g.seed)
}

func (g *Generator) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.next() % uint32(n))
}

// Float32 is in [0,1).
func (g *Generator) Float32() float32 {
	return float32(g.next()%(1<<24)) / (1 << 24)
}

// Range is in [lo,hi).
func (g *Generator) Range(lo, hi float32) float32 {
	return lo + (hi-lo)*g.Float32()
}

// Around returns a point on the horizontal plane within radius of c.
func (g *Generator) Around(c vec.Vec3, radius float32) vec.Vec3 {
	return vec.Add(c, vec.Vec3{
		X: g.Range(-radius, radius),
		Y: g.Range(-radius, radius),
	})
}
