// SPDX-License-Identifier: GPL-2.0-or-later

// Package host runs a sound system the way a game would: it owns the
// configuration, the console and the frame loop of the command line tools.
package host

import (
	"log"
	"os"
	"time"

	"github.com/pkg/errors"

	"spatialsnd/alias"
	"spatialsnd/cmd"
	"spatialsnd/commandline"
	"spatialsnd/conlog"
	"spatialsnd/cvar"
	"spatialsnd/cvars"
	"spatialsnd/gametime"
	"spatialsnd/math/vec"
	"spatialsnd/snd"
	"spatialsnd/snd/decode"
	"spatialsnd/snd/device"
)

// Standard effects, preloaded in this order so their SampleIDs are fixed.
const (
	SfxBeep snd.SampleID = iota
	SfxClick
	SfxHum
	SfxNoise
)

var standardSounds = []string{
	SfxBeep:  "synth/sine/660/250",
	SfxClick: "synth/square/1200/30",
	SfxHum:   "synth/saw/110/2000",
	SfxNoise: "synth/noise/1/400",
}

type Host struct {
	snd  *snd.System
	cmds *cmd.Commands
	buf  *cmd.Buffer
	time *gametime.GameTime

	origin vec.Vec3
	yaw    float32
	quit   bool
}

// LoadConfig executes a cfg file. An empty path is a no-op.
func LoadConfig(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "config")
	}
	defer f.Close()
	return cvar.LoadConfig(f)
}

// SoundConfig builds the engine parameters from cvars and flags.
func SoundConfig() snd.Config {
	cfg := snd.DefaultConfig()
	cfg.Rate = commandline.SoundSpeed()
	cfg.BufferFrames = commandline.SoundBuffer()
	cfg.Events = int(cvars.SoundEvents.Value())
	if n := commandline.SoundEvents(); n > 0 {
		cfg.Events = n
	}
	cfg.SpeedOfSound = cvars.SoundSpeedOfSound.Value()
	cfg.InterauralDistance = cvars.SoundInterauralDist.Value()
	cfg.MinEventDistance = cvars.SoundMinEventDistance.Value()
	cfg.WorldDiagonal = cvars.SoundWorldDiagonal.Value()
	cfg.Threaded = !commandline.Cooperative()
	cfg.Preload = standardSounds
	return cfg
}

// OpenDevice returns the output selected by -snddevice, or nil if sound
// is disabled or the name is unknown.
func OpenDevice(cfg snd.Config) snd.Output {
	if !commandline.Sound() || cvars.NoSound.Bool() {
		return nil
	}
	out, err := device.New(commandline.SoundDevice(), cfg.Rate, cfg.BufferFrames)
	if err != nil {
		log.Printf("sound device: %v", err)
		conlog.Printf("%v, known devices: %v\n", err, device.Names())
		return nil
	}
	return out
}

// New starts a sound system on out. A nil out gives an inert system.
func New(cfg snd.Config, out snd.Output) *Host {
	dec := decode.Chain{
		decode.Synth{Rate: cfg.Rate},
		decode.NewFiles(nil, "sound/"),
	}
	h := &Host{
		snd:  snd.Init(cfg, out, dec),
		cmds: cmd.New(),
		time: gametime.New(),
	}
	h.buf = cmd.NewBuffer(h.cmds)
	cmd.Must(alias.New(h.buf).Register(h.cmds))
	h.addCommands()
	cvars.Volume.SetCallback(h.onVolumeChange)
	cvars.SoundMute.SetCallback(h.onMuteChange)
	h.onVolumeChange(cvars.Volume)
	h.onMuteChange(cvars.SoundMute)
	return h
}

func (h *Host) onVolumeChange(cv *cvar.Cvar) {
	v := cv.Value()
	if v > 10 {
		cv.SetByString("10")
		// recursion so exit early
		return
	}
	if v < 0 {
		cv.SetByString("0")
		// recursion so exit early
		return
	}
	h.snd.SetVolume(v)
}

func (h *Host) onMuteChange(cv *cvar.Cvar) {
	h.snd.SetMute(cv.Bool())
}

func (h *Host) Sound() *snd.System {
	return h.snd
}

func (h *Host) Origin() (vec.Vec3, float32) {
	return h.origin, h.yaw
}

// Move places the listener. The host remembers the position for the
// console commands.
func (h *Host) Move(pos vec.Vec3, yaw float32) {
	h.origin, h.yaw = pos, yaw
	h.snd.Move(pos, yaw)
}

func (h *Host) Jump(pos vec.Vec3, yaw float32) {
	h.origin, h.yaw = pos, yaw
	h.snd.Jump(pos, yaw)
}

// AddText queues console text for the next frames.
func (h *Host) AddText(text string) {
	h.buf.AddText(text)
}

// Execute runs one console line immediately.
func (h *Host) Execute(line string) error {
	_, err := h.cmds.Execute(line)
	return err
}

// Quit reports whether the quit command was given.
func (h *Host) Quit() bool {
	return h.quit
}

// Frame runs the queued console text and, in cooperative mode, the mixer.
// It reports false if the frame was skipped to honor host_maxfps.
func (h *Host) Frame() bool {
	if !h.time.UpdateTime(float64(cvars.HostMaxFps.Value())) {
		return false
	}
	h.buf.Execute()
	h.snd.Update()
	return true
}

// Wait sleeps until the next frame is due.
func (h *Host) Wait() {
	time.Sleep(h.time.UntilNext(float64(cvars.HostMaxFps.Value())))
}

// Time is the host clock in seconds.
func (h *Host) Time() float64 {
	return h.time.Time()
}

func (h *Host) Shutdown() {
	cvars.Volume.SetCallback(nil)
	cvars.SoundMute.SetCallback(nil)
	h.snd.Shutdown()
}
