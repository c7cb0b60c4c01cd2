// SPDX-License-Identifier: GPL-2.0-or-later

package decode

import (
	"strconv"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/pkg/errors"

	"spatialsnd/rand"
)

const SynthPrefix = "synth/"

// Synth generates built-in effects for names of the form
//
//	synth/<wave>[/<hz>[/<ms>]]
//
// with wave one of sine, square, triangle, saw, noise or silence.
type Synth struct {
	Rate int
}

// envelope ramps a finite streamer in and out to avoid clicks.
type envelope struct {
	s    beep.Streamer
	pos  int
	n    int
	ramp int
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	n, ok := e.s.Stream(samples)
	for i := range samples[:n] {
		g := min(1, float64(e.pos)/float64(e.ramp), float64(e.n-e.pos)/float64(e.ramp))
		samples[i][0] *= g
		samples[i][1] *= g
		e.pos++
	}
	return n, ok
}

func (e *envelope) Err() error {
	return e.s.Err()
}

func noise(seed uint32) beep.Streamer {
	r := rand.New(seed)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			v := float64(r.Range(-1, 1))
			samples[i][0] = v
			samples[i][1] = v
		}
		return len(samples), true
	})
}

func (s Synth) tone(wave string, sr beep.SampleRate, freq float64) (beep.Streamer, error) {
	switch wave {
	case "sine":
		return generators.SineTone(sr, freq)
	case "square":
		return generators.SquareTone(sr, freq)
	case "triangle":
		return generators.TriangleTone(sr, freq)
	case "saw":
		return generators.SawtoothTone(sr, freq)
	case "noise":
		return noise(uint32(freq)), nil
	case "silence":
		return beep.Silence(-1), nil
	}
	return nil, errors.Errorf("unknown wave %q", wave)
}

func (s Synth) Decode(name string) ([]float32, int, int, error) {
	spec, ok := strings.CutPrefix(name, SynthPrefix)
	if !ok {
		return nil, 0, 0, errors.Wrap(ErrUnknownFormat, name)
	}
	rate := s.Rate
	if rate <= 0 {
		rate = 44100
	}
	parts := strings.Split(spec, "/")
	freq, length := 440.0, 500*time.Millisecond
	if len(parts) > 1 {
		f, err := strconv.ParseFloat(parts[1], 64)
		if err != nil || f <= 0 {
			return nil, 0, 0, errors.Errorf("%s: bad frequency", name)
		}
		freq = f
	}
	if len(parts) > 2 {
		ms, err := strconv.Atoi(parts[2])
		if err != nil || ms <= 0 {
			return nil, 0, 0, errors.Errorf("%s: bad length", name)
		}
		length = time.Duration(ms) * time.Millisecond
	}

	sr := beep.SampleRate(rate)
	tone, err := s.tone(parts[0], sr, freq)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, name)
	}
	n := sr.N(length)
	st := &envelope{
		s:    beep.Take(n, &effects.Gain{Streamer: tone, Gain: -0.5}),
		n:    n,
		ramp: max(1, sr.N(5*time.Millisecond)),
	}

	pcm := make([]float32, 0, 2*n)
	buf := make([][2]float64, 512)
	for {
		k, ok := st.Stream(buf)
		for _, v := range buf[:k] {
			pcm = append(pcm, float32(v[0]), float32(v[1]))
		}
		if !ok {
			break
		}
	}
	if len(pcm) == 0 {
		return nil, 0, 0, errors.Wrap(ErrEmpty, name)
	}
	return pcm, len(pcm) / 2, rate, nil
}
