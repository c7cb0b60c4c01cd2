// SPDX-License-Identifier: GPL-2.0-or-later

// Package decode turns sound assets into the interleaved stereo float
// PCM the mixer loads.
package decode

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"spatialsnd/filesystem"
)

var (
	ErrUnknownFormat = errors.New("unknown sound format")
	ErrEmpty         = errors.New("sound has no frames")
)

// PCM is decoded audio before channel conversion.
type PCM struct {
	Data     []float32 // interleaved
	Channels int
	Rate     int
}

// Codec decodes one file format.
type Codec func(r io.ReadSeeker) (PCM, error)

var (
	mutex  sync.RWMutex
	codecs = map[string]Codec{
		".wav":  Wav,
		".aif":  Aiff,
		".aiff": Aiff,
		".ogg":  Ogg,
		".mp3":  Mp3,
		".flac": Flac,
	}
	// tried in order for names without extension
	defaultExts = []string{".wav", ".ogg", ".flac", ".mp3"}
)

// Register binds a codec to a file extension including the dot.
func Register(ext string, c Codec) {
	mutex.Lock()
	defer mutex.Unlock()
	codecs[strings.ToLower(ext)] = c
}

func codec(ext string) (Codec, bool) {
	mutex.RLock()
	defer mutex.RUnlock()
	c, ok := codecs[strings.ToLower(ext)]
	return c, ok
}

// Stereo converts p to interleaved stereo. Mono is duplicated, channels
// beyond the second are dropped.
func Stereo(p PCM) ([]float32, int) {
	if p.Channels <= 0 {
		return nil, 0
	}
	frames := len(p.Data) / p.Channels
	if p.Channels == 2 {
		return p.Data[:2*frames], frames
	}
	out := make([]float32, 2*frames)
	for i := 0; i < frames; i++ {
		l := p.Data[i*p.Channels]
		r := l
		if p.Channels > 1 {
			r = p.Data[i*p.Channels+1]
		}
		out[2*i] = l
		out[2*i+1] = r
	}
	return out, frames
}

// Bytes decodes an in-memory file of the format given by ext.
func Bytes(ext string, data []byte) ([]float32, int, int, error) {
	c, ok := codec(ext)
	if !ok {
		return nil, 0, 0, errors.Wrap(ErrUnknownFormat, ext)
	}
	p, err := c(bytes.NewReader(data))
	if err != nil {
		return nil, 0, 0, err
	}
	pcm, frames := Stereo(p)
	if frames == 0 {
		return nil, 0, 0, ErrEmpty
	}
	return pcm, frames, p.Rate, nil
}

// Reader is a file source, usually a *filesystem.SearchPath.
type Reader interface {
	ReadFile(name string) ([]byte, error)
}

type defaultReader struct{}

func (defaultReader) ReadFile(name string) ([]byte, error) {
	return filesystem.ReadFile(name)
}

// Files decodes sound files found through a Reader. Names are looked up
// below Prefix. A name without extension is tried with every default
// extension.
type Files struct {
	FS     Reader
	Prefix string
}

func NewFiles(fs Reader, prefix string) *Files {
	if fs == nil {
		fs = defaultReader{}
	}
	return &Files{FS: fs, Prefix: prefix}
}

func (f *Files) Decode(name string) ([]float32, int, int, error) {
	path := f.Prefix + name
	ext := filesystem.Ext(path)
	if ext != "" {
		return f.decode(path, ext)
	}
	for _, ext := range defaultExts {
		pcm, frames, rate, err := f.decode(path+ext, ext)
		if err == nil {
			return pcm, frames, rate, nil
		}
	}
	return nil, 0, 0, errors.Wrapf(ErrUnknownFormat, "%s: no file found", path)
}

func (f *Files) decode(path, ext string) ([]float32, int, int, error) {
	data, err := f.FS.ReadFile(path)
	if err != nil {
		return nil, 0, 0, err
	}
	pcm, frames, rate, err := Bytes(ext, data)
	if err != nil {
		return nil, 0, 0, errors.Wrap(err, path)
	}
	return pcm, frames, rate, nil
}

// Decoder is the snd.Decoder contract.
type Decoder interface {
	Decode(name string) ([]float32, int, int, error)
}

// Chain tries each decoder in turn and returns the first success.
type Chain []Decoder

func (c Chain) Decode(name string) ([]float32, int, int, error) {
	err := errors.Wrap(ErrUnknownFormat, name)
	for _, d := range c {
		pcm, frames, rate, derr := d.Decode(name)
		if derr == nil {
			return pcm, frames, rate, nil
		}
		err = derr
	}
	return nil, 0, 0, err
}
