// SPDX-License-Identifier: GPL-2.0-or-later

package device

import (
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"
)

// Wav records the output to a 16 bit stereo WAV file. It is paced like a
// real device so a session is captured as it was heard.
type Wav struct {
	path   string
	rate   int
	frames int
	pacer  pacer

	file *os.File
	enc  *wav.Encoder
	buf  *audio.IntBuffer
}

func NewWav(path string, rate, frames int) *Wav {
	return &Wav{
		path:   path,
		rate:   rate,
		frames: frames,
		pacer:  newPacer(rate, lowWaterBuffers*frames),
	}
}

func (w *Wav) Open() error {
	f, err := os.Create(w.path)
	if err != nil {
		return errors.Wrap(err, "wav capture")
	}
	w.file = f
	w.enc = wav.NewEncoder(f, w.rate, 16, 2, 1)
	w.buf = &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: w.rate},
		SourceBitDepth: 16,
	}
	w.pacer.reset()
	return nil
}

func (w *Wav) Close() error {
	if w.enc == nil {
		return nil
	}
	err := w.enc.Close()
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.enc, w.file = nil, nil
	return errors.Wrapf(err, "wav capture %s", w.path)
}

func (w *Wav) OutputRate() int       { return w.rate }
func (w *Wav) BufferFrameCount() int { return w.frames }
func (w *Wav) IsTooEmpty() bool      { return w.pacer.tooEmpty() }

func (w *Wav) WriteFrames(samples []float32, count int) error {
	if w.enc == nil {
		return ErrNoDevice
	}
	data := w.buf.Data[:0]
	for _, v := range samples[:2*count] {
		data = append(data, int(toS16(v)))
	}
	w.buf.Data = data
	if err := w.enc.Write(w.buf); err != nil {
		return errors.Wrapf(err, "wav capture %s", w.path)
	}
	w.pacer.add(count)
	return nil
}

func (w *Wav) SleepUntil(timeout time.Duration) {
	w.pacer.sleep(timeout)
}
