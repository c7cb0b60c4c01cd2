// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/pkg/errors"
)

const resampleQuality = 4

var (
	ErrNoData = errors.New("no sample data")
)

// AudioSample is a decoded sound at the output rate. It is never mutated
// after creation and may be shared by any number of events.
type AudioSample struct {
	name string
	// interleaved stereo, used by local sounds
	data []float32
	// mono average with margin silent frames on both ends, used by world
	// sounds
	monoRaw  []float32
	margin   int
	frames   int
	duration float64 // seconds
}

func (s *AudioSample) Name() string {
	return s.name
}

func (s *AudioSample) Frames() int {
	return s.frames
}

func (s *AudioSample) Duration() float64 {
	return s.duration
}

// monoAt reads the mono buffer at a fractional frame position with linear
// interpolation. Positions outside the buffer read silence.
func (s *AudioSample) monoAt(pos float64) float32 {
	p := pos + float64(s.margin)
	fi := math.Floor(p)
	i := int(fi)
	if i < 0 || i+1 >= len(s.monoRaw) {
		return 0
	}
	f := float32(p - fi)
	return s.monoRaw[i]*(1-f) + s.monoRaw[i+1]*f
}

// loopAt is monoAt for looping playback. Negative positions are before the
// first wavefront and read silence.
func (s *AudioSample) loopAt(pos float64) float32 {
	if pos < 0 || s.frames == 0 {
		return 0
	}
	pos = math.Mod(pos, float64(s.frames))
	i := int(pos)
	f := float32(pos - float64(i))
	j := i + 1
	if j >= s.frames {
		j = 0
	}
	mono := s.monoRaw[s.margin:]
	return mono[i]*(1-f) + mono[j]*f
}

// sampleFormat is everything the store needs to know about the output to
// prepare samples for it.
type sampleFormat struct {
	rate         int
	attenuation  float32
	earSpacing   float32
	speedOfSound float32
}

func newSampleFormat(cfg Config, rate int) sampleFormat {
	return sampleFormat{
		rate:         rate,
		attenuation:  cfg.Attenuation,
		earSpacing:   cfg.InterauralDistance,
		speedOfSound: cfg.SpeedOfSound,
	}
}

// safetyMargin is the number of silent frames around the mono buffer. It
// covers the largest left/right delay plus the interpolation neighbour.
func (f sampleFormat) safetyMargin() int {
	return int(math.Ceil(1.5 + float64(f.earSpacing/f.speedOfSound)*float64(f.rate)))
}

// resample converts raw interleaved stereo PCM at sourceRate into an
// AudioSample at the output rate.
func (f sampleFormat) resample(name string, raw []float32, frames, sourceRate int) (*AudioSample, error) {
	if raw == nil {
		return nil, errors.Wrap(ErrNoData, name)
	}
	if frames*2 > len(raw) {
		frames = len(raw) / 2
	}
	if frames <= 0 {
		return nil, errors.Wrap(ErrNoData, name)
	}
	raw = raw[:frames*2]
	if sourceRate > 0 && sourceRate != f.rate {
		raw = convertRate(raw, sourceRate, f.rate)
		frames = len(raw) / 2
		if frames == 0 {
			return nil, errors.Wrap(ErrNoData, name)
		}
	}

	margin := f.safetyMargin()
	s := &AudioSample{
		name:     name,
		data:     make([]float32, frames*2),
		monoRaw:  make([]float32, frames+2*margin),
		margin:   margin,
		frames:   frames,
		duration: float64(frames) / float64(f.rate),
	}
	for i := 0; i < frames; i++ {
		l := raw[2*i] * f.attenuation
		r := raw[2*i+1] * f.attenuation
		s.data[2*i] = l
		s.data[2*i+1] = r
		s.monoRaw[margin+i] = (l + r) / 2
	}
	return s, nil
}

type pcmStreamer struct {
	data []float32
	pos  int
}

func (p *pcmStreamer) Stream(samples [][2]float64) (int, bool) {
	frames := len(p.data) / 2
	if p.pos >= frames {
		return 0, false
	}
	n := 0
	for ; n < len(samples) && p.pos < frames; n, p.pos = n+1, p.pos+1 {
		samples[n][0] = float64(p.data[2*p.pos])
		samples[n][1] = float64(p.data[2*p.pos+1])
	}
	return n, true
}

func (p *pcmStreamer) Err() error {
	return nil
}

// convertRate runs a one-time sample rate conversion at load time.
func convertRate(raw []float32, from, to int) []float32 {
	r := beep.Resample(resampleQuality, beep.SampleRate(from), beep.SampleRate(to), &pcmStreamer{data: raw})
	frames := len(raw) / 2
	out := make([]float32, 0, (int(int64(frames)*int64(to)/int64(from))+1)*2)
	buf := make([][2]float64, 512)
	for {
		n, ok := r.Stream(buf)
		for _, s := range buf[:n] {
			out = append(out, float32(s[0]), float32(s[1]))
		}
		if !ok || n == 0 {
			break
		}
	}
	return out
}
