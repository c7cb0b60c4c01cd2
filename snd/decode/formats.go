// SPDX-License-Identifier: GPL-2.0-or-later

package decode

import (
	"encoding/binary"
	"io"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	"github.com/mewkiz/flac"
	"github.com/pkg/errors"
)

func fromInts(buf *audio.IntBuffer, depth int, unsigned8 bool) PCM {
	if depth <= 0 {
		depth = 16
	}
	scale := float32(int64(1) << (depth - 1))
	out := make([]float32, len(buf.Data))
	for i, v := range buf.Data {
		if depth == 8 && unsigned8 {
			v -= 128
		}
		out[i] = float32(v) / scale
	}
	return PCM{Data: out, Channels: buf.Format.NumChannels, Rate: buf.Format.SampleRate}
}

// Wav decodes integer PCM WAV files.
func Wav(r io.ReadSeeker) (PCM, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return PCM{}, errors.New("wav: invalid file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCM{}, errors.Wrap(err, "wav")
	}
	return fromInts(buf, int(d.BitDepth), true), nil
}

func Aiff(r io.ReadSeeker) (PCM, error) {
	d := aiff.NewDecoder(r)
	if !d.IsValidFile() {
		return PCM{}, errors.New("aiff: invalid file")
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return PCM{}, errors.Wrap(err, "aiff")
	}
	return fromInts(buf, int(d.BitDepth), false), nil
}

func Ogg(r io.ReadSeeker) (PCM, error) {
	data, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return PCM{}, errors.Wrap(err, "ogg")
	}
	return PCM{Data: data, Channels: format.Channels, Rate: format.SampleRate}, nil
}

// Mp3 decodes through go-mp3 which always yields 16 bit stereo.
func Mp3(r io.ReadSeeker) (PCM, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return PCM{}, errors.Wrap(err, "mp3")
	}
	raw, err := io.ReadAll(d)
	if err != nil {
		return PCM{}, errors.Wrap(err, "mp3")
	}
	out := make([]float32, len(raw)/2)
	for i := range out {
		out[i] = float32(int16(binary.LittleEndian.Uint16(raw[2*i:]))) / 32768
	}
	return PCM{Data: out, Channels: 2, Rate: d.SampleRate()}, nil
}

func Flac(r io.ReadSeeker) (PCM, error) {
	stream, err := flac.New(r)
	if err != nil {
		return PCM{}, errors.Wrap(err, "flac")
	}
	defer stream.Close()
	channels := int(stream.Info.NChannels)
	scale := float32(int64(1) << (stream.Info.BitsPerSample - 1))
	var out []float32
	for {
		frame, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return PCM{}, errors.Wrap(err, "flac")
		}
		n := frame.Subframes[0].NSamples
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out = append(out, float32(frame.Subframes[ch].Samples[i])/scale)
			}
		}
	}
	return PCM{Data: out, Channels: channels, Rate: int(stream.Info.SampleRate)}, nil
}
