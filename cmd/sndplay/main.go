// SPDX-License-Identifier: GPL-2.0-or-later

// sndplay runs the mixer from a simulated game loop: a built-in walk
// through a field of sound sources, a Lua scenario (-script) or console
// commands read from stdin (-console).
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"time"

	"github.com/gopxl/mainthread/v2"

	"spatialsnd/commandline"
	"spatialsnd/filesystem"
	"spatialsnd/host"
	"spatialsnd/scenario"
)

func main() {
	flag.Parse()
	mainthread.Run(run)
}

func run() {
	if err := host.LoadConfig(commandline.Config()); err != nil {
		log.Printf("%v", err)
	}
	filesystem.UseBaseDir(commandline.BaseDirectory(), commandline.Game())

	cfg := host.SoundConfig()
	var h *host.Host
	// Some backends insist on being opened from the main thread.
	mainthread.Call(func() {
		h = host.New(cfg, host.OpenDevice(cfg))
	})
	defer h.Shutdown()

	if commandline.Console() {
		go readConsole(h)
	}

	if path := commandline.Script(); path != "" {
		r := scenario.New(h.Sound())
		defer r.Close()
		if err := r.RunFile(path); err != nil {
			log.Printf("%v", err)
		}
		return
	}
	walk(h, commandline.Duration())
}

func readConsole(h *host.Host) {
	lines := make(chan string)
	go func() {
		s := bufio.NewScanner(os.Stdin)
		for s.Scan() {
			lines <- s.Text()
		}
		close(lines)
	}()
	for line := range lines {
		mainthread.CallNonBlock(func() {
			h.AddText(line + "\n")
		})
	}
}

func sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}
