// SPDX-License-Identifier: GPL-2.0-or-later

package cvars

import (
	"spatialsnd/cvar"
)

var (
	HostMaxFps            *cvar.Cvar
	NoSound               *cvar.Cvar
	SoundEvents           *cvar.Cvar
	SoundInterauralDist   *cvar.Cvar
	SoundMinEventDistance *cvar.Cvar
	SoundMute             *cvar.Cvar
	SoundSpeedOfSound     *cvar.Cvar
	SoundWorldDiagonal    *cvar.Cvar
	Volume                *cvar.Cvar
)

func init() {
	HostMaxFps = cvar.MustRegister("host_maxfps", "100", cvar.ARCHIVE)
	NoSound = cvar.MustRegister("nosound", "0", cvar.NONE)
	SoundEvents = cvar.MustRegister("snd_events", "32", cvar.ARCHIVE)
	SoundInterauralDist = cvar.MustRegister("snd_earspacing", "0.2", cvar.NONE)
	SoundMinEventDistance = cvar.MustRegister("snd_mindistance", "1", cvar.NONE)
	SoundMute = cvar.MustRegister("snd_mute", "0", cvar.ARCHIVE)
	SoundSpeedOfSound = cvar.MustRegister("snd_speedofsound", "343", cvar.NONE)
	SoundWorldDiagonal = cvar.MustRegister("snd_worlddiagonal", "4096", cvar.NONE)
	Volume = cvar.MustRegister("volume", "7", cvar.ARCHIVE) // 0..10
}
