// SPDX-License-Identifier: GPL-2.0-or-later

package snd

// SampleID names a sample in the store. IDs are handed out by the control
// context and are stable for the lifetime of a System.
type SampleID int

const NoSample SampleID = -1

// store is the audio context side of the sample cache. A nil entry is a
// sample that failed to load; triggers for it are ignored.
type store []*AudioSample

func (c *store) get(i SampleID) *AudioSample {
	if i < 0 || int(i) >= len(*c) {
		return nil
	}
	return (*c)[i]
}

func (c *store) set(i SampleID, s *AudioSample) {
	if i < 0 {
		return
	}
	for int(i) >= len(*c) {
		*c = append(*c, nil)
	}
	(*c)[i] = s
}
