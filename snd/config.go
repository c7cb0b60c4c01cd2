// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"time"
)

const (
	desiredSampleRate = 44100
	desiredBufferSize = 512
	defaultEvents     = 32
	defaultQueueSize  = 256

	// crossfade window in output frames
	fadeLen = 16
)

// Config holds the startup parameters of a System. The physical constants
// are in world units; one unit is what the game considers a meter.
type Config struct {
	// Rate and BufferFrames are used when the device cannot report its
	// own values, i.e. in inert mode.
	Rate         int
	BufferFrames int

	Events    int
	QueueSize int

	SpeedOfSound       float32
	InterauralDistance float32
	MinEventDistance   float32
	// WorldDiagonal bounds how long a world sound can possibly stay
	// audible anywhere in the playable area.
	WorldDiagonal float32
	// Attenuation is applied to every sample at load time to leave
	// headroom for summing many sounds.
	Attenuation float32

	// Threaded runs the mixer on a dedicated OS thread. Otherwise the game
	// loop has to call System.Update once per iteration.
	Threaded bool

	// Preload lists the standard effects decoded before the audio context
	// starts. Their SampleIDs are their indices.
	Preload []string
}

func DefaultConfig() Config {
	return Config{
		Rate:               desiredSampleRate,
		BufferFrames:       desiredBufferSize,
		Events:             defaultEvents,
		QueueSize:          defaultQueueSize,
		SpeedOfSound:       343,
		InterauralDistance: 0.2,
		MinEventDistance:   1,
		WorldDiagonal:      4096,
		Attenuation:        0.5,
		Threaded:           true,
	}
}

func (c *Config) sanitize() {
	d := DefaultConfig()
	if c.Rate <= 0 {
		c.Rate = d.Rate
	}
	if c.BufferFrames <= 0 {
		c.BufferFrames = d.BufferFrames
	}
	if c.Events <= 0 {
		c.Events = d.Events
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.SpeedOfSound <= 0 {
		c.SpeedOfSound = d.SpeedOfSound
	}
	if c.InterauralDistance < 0 {
		c.InterauralDistance = d.InterauralDistance
	}
	if c.MinEventDistance <= 0 {
		c.MinEventDistance = d.MinEventDistance
	}
	if c.WorldDiagonal <= 0 {
		c.WorldDiagonal = d.WorldDiagonal
	}
	if c.Attenuation <= 0 {
		c.Attenuation = d.Attenuation
	}
}

func bufferPeriod(frames, rate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(rate)
}
