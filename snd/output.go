// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"time"
)

// Output is the audio device the mixer writes to. Samples are interleaved
// stereo float32 in [-1,1]. Only the audio context calls into an Output
// after Open returned.
type Output interface {
	Open() error
	Close() error
	OutputRate() int
	BufferFrameCount() int
	// IsTooEmpty reports whether the device buffer fell below its
	// low-water mark and needs another buffer.
	IsTooEmpty() bool
	WriteFrames(samples []float32, count int) error
	// SleepUntil blocks until the low-water mark is reached or timeout
	// elapsed, whichever comes first.
	SleepUntil(timeout time.Duration)
}

// Decoder turns a sound name into interleaved stereo float PCM.
type Decoder interface {
	Decode(name string) (pcm []float32, frames int, rate int, err error)
}
