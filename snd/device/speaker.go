// SPDX-License-Identifier: GPL-2.0-or-later

package device

import (
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/pkg/errors"
)

// Speaker plays through the beep speaker. The speaker is process global,
// only one Speaker may be open at a time.
type Speaker struct {
	rate    int
	frames  int
	ring    *ring
	scratch []float32
}

func NewSpeaker(rate, frames int) *Speaker {
	return &Speaker{
		rate:   rate,
		frames: frames,
		ring:   newRing(4*frames, lowWaterBuffers*frames),
	}
}

func (s *Speaker) Open() error {
	if err := speaker.Init(beep.SampleRate(s.rate), s.frames); err != nil {
		return errors.Wrap(err, "speaker")
	}
	speaker.Play(beep.StreamerFunc(s.stream))
	return nil
}

func (s *Speaker) stream(samples [][2]float64) (int, bool) {
	if len(s.scratch) < 2*len(samples) {
		s.scratch = make([]float32, 2*len(samples))
	}
	buf := s.scratch[:2*len(samples)]
	s.ring.read(buf)
	for i := range samples {
		samples[i][0] = float64(buf[2*i])
		samples[i][1] = float64(buf[2*i+1])
	}
	return len(samples), true
}

func (s *Speaker) Close() error {
	speaker.Clear()
	speaker.Close()
	s.ring.reset()
	return nil
}

func (s *Speaker) OutputRate() int       { return s.rate }
func (s *Speaker) BufferFrameCount() int { return s.frames }
func (s *Speaker) IsTooEmpty() bool      { return s.ring.tooEmpty() }

func (s *Speaker) WriteFrames(samples []float32, count int) error {
	s.ring.write(samples, count)
	return nil
}

func (s *Speaker) SleepUntil(timeout time.Duration) {
	s.ring.wait(timeout)
}
