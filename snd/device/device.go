// SPDX-License-Identifier: GPL-2.0-or-later

// Package device holds the audio outputs the mixer can write to.
package device

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"spatialsnd/snd"
)

// A device wants data while it holds less than lowWaterBuffers buffers.
const lowWaterBuffers = 2

var ErrNoDevice = errors.New("no audio device")

type Factory func(rate, frames int) snd.Output

var (
	mutex     sync.Mutex
	factories = map[string]Factory{
		"oto":      func(rate, frames int) snd.Output { return NewOto(rate, frames) },
		"speaker":  func(rate, frames int) snd.Output { return NewSpeaker(rate, frames) },
		"headless": func(rate, frames int) snd.Output { return NewHeadless(rate, frames) },
		"null":     func(rate, frames int) snd.Output { return Null{} },
	}
)

// Register makes an output available to New under name.
func Register(name string, f Factory) {
	mutex.Lock()
	defer mutex.Unlock()
	factories[name] = f
}

// New creates the output called name. "wav:path" records to path.
func New(name string, rate, frames int) (snd.Output, error) {
	if path, ok := strings.CutPrefix(name, "wav:"); ok {
		return NewWav(path, rate, frames), nil
	}
	mutex.Lock()
	f, ok := factories[name]
	mutex.Unlock()
	if !ok {
		return nil, errors.Errorf("unknown sound device %q", name)
	}
	return f(rate, frames), nil
}

func Names() []string {
	mutex.Lock()
	defer mutex.Unlock()
	names := make([]string, 0, len(factories))
	for n := range factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func period(frames, rate int) time.Duration {
	return time.Duration(frames) * time.Second / time.Duration(rate)
}

func toS16(v float32) int16 {
	if v > 1 {
		v = 1
	} else if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}

// Null is an output that never opens.
type Null struct{}

func (Null) Open() error                      { return ErrNoDevice }
func (Null) Close() error                     { return nil }
func (Null) OutputRate() int                  { return 0 }
func (Null) BufferFrameCount() int            { return 0 }
func (Null) IsTooEmpty() bool                 { return false }
func (Null) WriteFrames([]float32, int) error { return ErrNoDevice }
func (Null) SleepUntil(time.Duration)         {}
