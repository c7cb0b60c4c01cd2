// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"fmt"

	"spatialsnd/math/vec"
)

type commandKind uint8

const (
	cmdNone commandKind = iota
	cmdListener
	cmdVelocity
	cmdVolume
	cmdMute
	cmdLocal
	cmdWorld
	cmdFixed
	cmdRegister
	cmdClear
	cmdQuit
)

var commandNames = [...]string{
	cmdNone:     "none",
	cmdListener: "listener",
	cmdVelocity: "velocity",
	cmdVolume:   "volume",
	cmdMute:     "mute",
	cmdLocal:    "local",
	cmdWorld:    "world",
	cmdFixed:    "fixed",
	cmdRegister: "register",
	cmdClear:    "clear",
	cmdQuit:     "quit",
}

func (k commandKind) String() string {
	if int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("commandKind(%d)", k)
}

// command is the fixed size record sent from the control context to the
// audio context. Which fields are meaningful depends on kind:
//
//	listener: pos, yaw, flag (jump)
//	velocity: pos
//	volume:   value
//	mute:     flag
//	local:    sfx
//	world:    sfx, pos, flag (important)
//	fixed:    sfx, pos
//	register: sfx, sample
type command struct {
	kind   commandKind
	sfx    SampleID
	pos    vec.Vec3
	yaw    float32
	value  float32
	flag   bool
	sample *AudioSample
}
