// SPDX-License-Identifier: GPL-2.0-or-later

package device

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/pkg/errors"
)

// Oto plays through an oto context. oto pulls from Read on its own
// goroutine, the mixer pushes into the ring.
type Oto struct {
	rate    int
	frames  int
	ctx     *oto.Context
	player  *oto.Player
	ring    *ring
	scratch []float32
}

func NewOto(rate, frames int) *Oto {
	return &Oto{
		rate:   rate,
		frames: frames,
		ring:   newRing(4*frames, lowWaterBuffers*frames),
	}
}

func (o *Oto) Open() error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   o.rate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   period(o.frames, o.rate),
	})
	if err != nil {
		return errors.Wrap(err, "oto")
	}
	<-ready
	o.ctx = ctx
	o.player = ctx.NewPlayer(o)
	o.player.SetBufferSize(o.frames * 8)
	o.player.Play()
	return nil
}

// Read implements io.Reader for the oto player.
func (o *Oto) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if len(o.scratch) < 2*frames {
		o.scratch = make([]float32, 2*frames)
	}
	s := o.scratch[:2*frames]
	o.ring.read(s)
	for i, v := range s {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
	return 8 * frames, nil
}

func (o *Oto) Close() error {
	if o.player != nil {
		o.player.Pause()
		o.player.Close()
		o.player = nil
	}
	if o.ctx != nil {
		if err := o.ctx.Suspend(); err != nil {
			return errors.Wrap(err, "oto")
		}
	}
	o.ring.reset()
	return nil
}

func (o *Oto) OutputRate() int       { return o.rate }
func (o *Oto) BufferFrameCount() int { return o.frames }
func (o *Oto) IsTooEmpty() bool      { return o.ring.tooEmpty() }

func (o *Oto) WriteFrames(samples []float32, count int) error {
	o.ring.write(samples, count)
	return nil
}

func (o *Oto) SleepUntil(timeout time.Duration) {
	o.ring.wait(timeout)
}
