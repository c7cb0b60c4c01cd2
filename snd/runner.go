// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"runtime"
)

// maxCoopCycles bounds the work done by a single cooperative Update so a
// device that is always hungry cannot stall the game loop.
const maxCoopCycles = 8

// runner is the concurrency strategy of the audio context. Both variants
// only ever call into the engine from one goroutine.
type runner interface {
	start()
	update()
	stop(q chan<- command)
}

type threadedRunner struct {
	e    *Engine
	q    <-chan command
	done chan struct{}
}

func newThreadedRunner(e *Engine, q <-chan command) *threadedRunner {
	return &threadedRunner{
		e:    e,
		q:    q,
		done: make(chan struct{}),
	}
}

func (r *threadedRunner) start() {
	go r.loop()
}

func (r *threadedRunner) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)
	for {
		_, timeout, quit := r.e.cycle(r.q)
		if quit {
			r.e.close()
			return
		}
		r.e.wait(timeout)
	}
}

func (r *threadedRunner) update() {}

func (r *threadedRunner) stop(q chan<- command) {
	select {
	case q <- command{kind: cmdQuit}:
	case <-r.done:
	}
	<-r.done
}

// cooperativeRunner runs the audio context on the caller's goroutine from
// inside Update.
type cooperativeRunner struct {
	e    *Engine
	q    <-chan command
	done bool
}

func newCooperativeRunner(e *Engine, q <-chan command) *cooperativeRunner {
	return &cooperativeRunner{e: e, q: q}
}

func (r *cooperativeRunner) start() {}

func (r *cooperativeRunner) update() {
	if r.done {
		return
	}
	for i := 0; i < maxCoopCycles; i++ {
		wrote, _, quit := r.e.cycle(r.q)
		if quit {
			r.e.close()
			r.done = true
			return
		}
		if !wrote {
			return
		}
	}
}

func (r *cooperativeRunner) stop(q chan<- command) {
	for !r.done {
		select {
		case q <- command{kind: cmdQuit}:
			for !r.done {
				r.update()
			}
		default:
			r.update()
		}
	}
}
