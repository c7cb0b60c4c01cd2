// SPDX-License-Identifier: GPL-2.0-or-later

// sndview is a terminal front end to the mixer. Walk the listener around
// with the arrow keys, trigger sounds and watch the event pool.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"spatialsnd/commandline"
	"spatialsnd/conlog"
	"spatialsnd/filesystem"
	"spatialsnd/host"
)

func main() {
	flag.Parse()
	if err := host.LoadConfig(commandline.Config()); err != nil {
		log.Printf("%v", err)
	}
	filesystem.UseBaseDir(commandline.BaseDirectory(), commandline.Game())

	m := newModel()
	// console output would tear the screen
	conlog.SetPrintf(m.console.printf)
	defer conlog.SetPrintf(nil)

	cfg := host.SoundConfig()
	m.host = host.New(cfg, host.OpenDevice(cfg))
	defer m.host.Shutdown()

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
