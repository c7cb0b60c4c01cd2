// SPDX-License-Identifier: GPL-2.0-or-later

//go:build sdl

package device

import (
	"encoding/binary"
	"time"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"spatialsnd/snd"
)

func init() {
	Register("sdl", func(rate, frames int) snd.Output { return NewSDL(rate, frames) })
}

// SDL queues buffers on an SDL audio device.
type SDL struct {
	rate   int
	frames int
	dev    sdl.AudioDeviceID
	bytes  []byte
}

func NewSDL(rate, frames int) *SDL {
	return &SDL{
		rate:   rate,
		frames: frames,
		bytes:  make([]byte, 4*frames),
	}
}

func (s *SDL) Open() error {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return errors.Wrap(err, "sdl audio")
	}
	spec := sdl.AudioSpec{
		Freq:     int32(s.rate),
		Format:   sdl.AUDIO_S16SYS,
		Channels: 2,
		Samples:  uint16(s.frames),
	}
	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		sdl.QuitSubSystem(sdl.INIT_AUDIO)
		return errors.Wrap(err, "sdl audio")
	}
	s.dev = dev
	sdl.ClearQueuedAudio(s.dev)
	sdl.PauseAudioDevice(s.dev, false)
	return nil
}

func (s *SDL) Close() error {
	if s.dev == 0 {
		return nil
	}
	sdl.ClearQueuedAudio(s.dev)
	sdl.CloseAudioDevice(s.dev)
	sdl.QuitSubSystem(sdl.INIT_AUDIO)
	s.dev = 0
	return nil
}

func (s *SDL) OutputRate() int       { return s.rate }
func (s *SDL) BufferFrameCount() int { return s.frames }

func (s *SDL) queued() int {
	return int(sdl.GetQueuedAudioSize(s.dev)) / 4
}

func (s *SDL) IsTooEmpty() bool {
	return s.queued() < lowWaterBuffers*s.frames
}

func (s *SDL) WriteFrames(samples []float32, count int) error {
	if len(s.bytes) < 4*count {
		s.bytes = make([]byte, 4*count)
	}
	b := s.bytes[:4*count]
	for i, v := range samples[:2*count] {
		binary.NativeEndian.PutUint16(b[2*i:], uint16(toS16(v)))
	}
	return errors.Wrap(sdl.QueueAudio(s.dev, b), "sdl audio")
}

// SleepUntil polls the queue, SDL has no low-water notification.
func (s *SDL) SleepUntil(timeout time.Duration) {
	step := period(s.frames, s.rate) / 4
	deadline := time.Now().Add(timeout)
	for !s.IsTooEmpty() {
		left := time.Until(deadline)
		if left <= 0 {
			return
		}
		time.Sleep(min(step, left))
	}
}
