// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"spatialsnd/cvars"
	"spatialsnd/host"
	"spatialsnd/math/vec"
	"spatialsnd/snd"
)

const (
	frameInterval = 20 * time.Millisecond
	stepSize      = 2
	turnStep      = 15
	consoleLines  = 4
)

type frameMsg time.Time

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// console keeps the last few lines printed through conlog.
type console struct {
	mu    sync.Mutex
	lines []string
}

func (c *console) printf(format string, v ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, strings.TrimRight(fmt.Sprintf(format, v...), "\n"))
	if len(c.lines) > consoleLines {
		c.lines = c.lines[len(c.lines)-consoleLines:]
	}
}

func (c *console) text() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "\n")
}

type model struct {
	host    *host.Host
	console *console
	stats   snd.Stats
}

func newModel() *model {
	return &model{console: &console{}}
}

func (m *model) Init() tea.Cmd {
	return frame()
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case frameMsg:
		m.host.Frame()
		m.stats = m.host.Sound().Stats()
		if m.host.Quit() {
			return m, tea.Quit
		}
		return m, frame()
	}
	return m, nil
}

// ahead is a point dist units in front of the listener.
func (m *model) ahead(dist float32) vec.Vec3 {
	pos, yaw := m.host.Origin()
	forward, _ := vec.YawVectors(yaw)
	return vec.Add(pos, forward.Scale(dist))
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.host.Sound()
	pos, yaw := m.host.Origin()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up":
		m.host.Move(m.ahead(stepSize), yaw)
	case "down":
		m.host.Move(m.ahead(-stepSize), yaw)
	case "left":
		m.host.Move(pos, yaw+turnStep)
	case "right":
		m.host.Move(pos, yaw-turnStep)
	case "home":
		m.host.Jump(vec.Vec3{}, 0)
	case "1":
		s.PlayLocal(host.SfxBeep)
	case "2":
		s.PlayWorld(host.SfxClick, m.ahead(10), false)
	case "3":
		s.PlayWorld(host.SfxNoise, m.ahead(-40), true)
	case "4":
		s.PlayFixed(host.SfxHum, m.ahead(5))
	case "c":
		s.Clear()
	case "+", "=":
		cvars.Volume.SetValue(cvars.Volume.Value() + 1)
	case "-":
		cvars.Volume.SetValue(cvars.Volume.Value() - 1)
	case "m":
		cvars.SoundMute.Toggle()
	case "i":
		if err := m.host.Execute("soundinfo"); err != nil {
			m.console.printf("%v", err)
		}
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	pos, yaw := m.host.Origin()

	status := "no device"
	if m.stats.Available {
		status = "playing"
	}
	if cvars.SoundMute.Bool() {
		status += " (muted)"
	}
	fmt.Fprintf(&b, "spatialsnd %v  %s\n\n", m.host.Sound().ID(), status)
	fmt.Fprintf(&b, "Listener: %6.1f %6.1f %6.1f  yaw %4.0f\n", pos.X, pos.Y, pos.Z, yaw)
	fmt.Fprintf(&b, "Volume:   [%s] %v\n", bar(int(cvars.Volume.Value()), 10), cvars.Volume.Value())
	fmt.Fprintf(&b, "Clock:    %.2fs  %d buffers\n\n", m.stats.Time, m.stats.Buffers)

	b.WriteString("Slots:    ")
	for _, st := range m.stats.Slots {
		b.WriteRune(st.Rune())
	}
	fmt.Fprintf(&b, "\n          %d busy, %d audible, dropped %d queue / %d pool\n\n",
		m.stats.Busy, m.stats.Audible, m.stats.QueueDrops, m.stats.PoolDrops)

	if t := m.console.text(); t != "" {
		b.WriteString(t)
		b.WriteString("\n\n")
	}
	b.WriteString("↑/↓:walk ←/→:turn home:origin  1:beep 2:click 3:noise 4:hum  c:clear\n")
	b.WriteString("+/-:volume m:mute i:info q:quit\n")
	return b.String()
}

func bar(n, width int) string {
	n = max(0, min(n, width))
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}
