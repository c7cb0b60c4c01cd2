// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"spatialsnd/math/vec"
)

type listener struct {
	origin   vec.Vec3
	yaw      float32
	forward  vec.Vec3
	left     vec.Vec3
	leftEar  vec.Vec3
	rightEar vec.Vec3
	velocity vec.Vec3
	// jumped is set by a teleport and cleared after the next geometry
	// update. Cursors are resynchronized instead of continued across it.
	jumped bool
}

func newListener(earSpacing float32) listener {
	var l listener
	l.place(vec.Vec3{}, 0, earSpacing)
	return l
}

func (l *listener) place(origin vec.Vec3, yaw float32, earSpacing float32) {
	l.origin = origin
	l.yaw = yaw
	l.forward, l.left = vec.YawVectors(yaw)
	half := l.left.Scale(earSpacing / 2)
	l.leftEar = vec.Add(origin, half)
	l.rightEar = vec.Sub(origin, half)
}
