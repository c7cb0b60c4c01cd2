// SPDX-License-Identifier: GPL-2.0-or-later

package host

import (
	"os"

	"github.com/pkg/errors"

	"spatialsnd/cmd"
	"spatialsnd/conlog"
	"spatialsnd/cvar"
	"spatialsnd/math/vec"
)

var errUsage = errors.New("usage")

func (h *Host) addCommands() {
	for name, f := range map[string]cmd.Func{
		"play":        h.playCmd,
		"playat":      h.playAtCmd,
		"playfixed":   h.playFixedCmd,
		"stopsound":   h.stopSoundCmd,
		"move":        h.moveCmd,
		"jump":        h.moveCmd,
		"velocity":    h.velocityCmd,
		"soundinfo":   h.soundInfoCmd,
		"echo":        h.echoCmd,
		"writeconfig": h.writeConfigCmd,
		"quit":        h.quitCmd,
	} {
		cmd.Must(h.cmds.Add(name, f))
	}
}

func argVec(a cmd.Arguments, first int) (vec.Vec3, error) {
	if len(a.Args()) < first+3 {
		return vec.Vec3{}, errors.Wrapf(errUsage, "%s needs x y z", a.Argv(0))
	}
	return vec.Vec3{
		X: a.Argv(first).Float32(),
		Y: a.Argv(first + 1).Float32(),
		Z: a.Argv(first + 2).Float32(),
	}, nil
}

// play name...
func (h *Host) playCmd(a cmd.Arguments) error {
	if len(a.Args()) < 2 {
		conlog.Printf("play <soundfile>\n")
		return nil
	}
	for _, arg := range a.Args()[1:] {
		h.snd.PlayLocal(h.snd.Precache(arg.String()))
	}
	return nil
}

// playat name x y z [important]
func (h *Host) playAtCmd(a cmd.Arguments) error {
	pos, err := argVec(a, 2)
	if err != nil {
		return err
	}
	h.snd.PlayWorld(h.snd.Precache(a.Argv(1).String()), pos, a.Argv(5).Bool())
	return nil
}

// playfixed name x y z
func (h *Host) playFixedCmd(a cmd.Arguments) error {
	pos, err := argVec(a, 2)
	if err != nil {
		return err
	}
	h.snd.PlayFixed(h.snd.Precache(a.Argv(1).String()), pos)
	return nil
}

func (h *Host) stopSoundCmd(cmd.Arguments) error {
	h.snd.Clear()
	return nil
}

// move|jump x y z [yaw]
func (h *Host) moveCmd(a cmd.Arguments) error {
	pos, err := argVec(a, 1)
	if err != nil {
		return err
	}
	yaw := h.yaw
	if len(a.Args()) > 4 {
		yaw = a.Argv(4).Float32()
	}
	if a.Argv(0).String() == "jump" {
		h.Jump(pos, yaw)
	} else {
		h.Move(pos, yaw)
	}
	return nil
}

func (h *Host) velocityCmd(a cmd.Arguments) error {
	v, err := argVec(a, 1)
	if err != nil {
		return err
	}
	h.snd.SetVelocity(v)
	return nil
}

func (h *Host) soundInfoCmd(cmd.Arguments) error {
	st := h.snd.Stats()
	if !st.Available {
		conlog.Printf("sound system not started\n")
		return nil
	}
	slots := make([]rune, len(st.Slots))
	for i, s := range st.Slots {
		slots[i] = s.Rune()
	}
	conlog.Printf("%v: t=%.3f buffers %d\n", h.snd.ID(), st.Time, st.Buffers)
	conlog.Printf("%d busy, %d audible [%s]\n", st.Busy, st.Audible, string(slots))
	conlog.Printf("dropped: %d queue, %d pool\n", st.QueueDrops, st.PoolDrops)
	return nil
}

func (h *Host) echoCmd(a cmd.Arguments) error {
	args := a.Args()
	s := ""
	for i, arg := range args[1:] {
		if i > 0 {
			s += " "
		}
		s += arg.String()
	}
	conlog.Printf("%s\n", s)
	return nil
}

// writeconfig [file]
func (h *Host) writeConfigCmd(a cmd.Arguments) error {
	name := "config.cfg"
	if len(a.Args()) > 1 {
		name = a.Argv(1).String()
	}
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "writeconfig")
	}
	if err := cvar.WriteArchive(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "writeconfig")
	}
	conlog.Printf("wrote %s\n", name)
	return nil
}

func (h *Host) quitCmd(cmd.Arguments) error {
	h.quit = true
	return nil
}
