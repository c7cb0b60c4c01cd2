// SPDX-License-Identifier: GPL-2.0-or-later

// Package scenario drives a sound system from a Lua script. Scripts play
// the role of the game loop: they move the listener, trigger sounds and
// let time pass with wait.
//
//	listener(x, y, z, yaw [, jump])
//	velocity(x, y, z)
//	glide(x, y, z, seconds)
//	play(name)
//	playat(name, x, y, z [, important])
//	fixed(name, x, y, z)
//	volume(v)
//	mute(on)
//	clear()
//	wait(seconds)
//	time() -> seconds
//	log(msg)
package scenario

import (
	"time"

	"github.com/pkg/errors"
	lua "github.com/yuin/gopher-lua"

	"spatialsnd/conlog"
	"spatialsnd/math/vec"
	"spatialsnd/snd"
)

const defaultTick = 10 * time.Millisecond

// Player is the control side of a sound system.
type Player interface {
	Precache(name string) snd.SampleID
	Move(pos vec.Vec3, yaw float32)
	Jump(pos vec.Vec3, yaw float32)
	SetVelocity(v vec.Vec3)
	SetVolume(v float32)
	SetMute(m bool)
	PlayLocal(sfx snd.SampleID)
	PlayWorld(sfx snd.SampleID, pos vec.Vec3, important bool)
	PlayFixed(sfx snd.SampleID, pos vec.Vec3)
	Clear()
	Update()
}

type Runner struct {
	p       Player
	state   *lua.LState
	tick    time.Duration
	sleep   func(time.Duration)
	elapsed time.Duration

	origin vec.Vec3
	yaw    float32
}

func New(p Player) *Runner {
	r := &Runner{
		p:     p,
		state: lua.NewState(),
		tick:  defaultTick,
		sleep: time.Sleep,
	}
	for name, f := range map[string]lua.LGFunction{
		"listener": r.listener,
		"velocity": r.velocity,
		"glide":    r.glide,
		"play":     r.play,
		"playat":   r.playAt,
		"fixed":    r.fixed,
		"volume":   r.volume,
		"mute":     r.mute,
		"clear":    r.clear,
		"wait":     r.wait,
		"time":     r.time,
		"log":      r.log,
	} {
		r.state.SetGlobal(name, r.state.NewFunction(f))
	}
	return r
}

// SetClock replaces the wall clock. sleep is called once per tick of
// simulated time, after which the player gets an Update.
func (r *Runner) SetClock(tick time.Duration, sleep func(time.Duration)) {
	if tick > 0 {
		r.tick = tick
	}
	if sleep != nil {
		r.sleep = sleep
	}
}

// Elapsed is the simulated time spent in wait and glide.
func (r *Runner) Elapsed() time.Duration {
	return r.elapsed
}

func (r *Runner) RunString(src string) error {
	return errors.Wrap(r.state.DoString(src), "scenario")
}

func (r *Runner) RunFile(path string) error {
	return errors.Wrapf(r.state.DoFile(path), "scenario %s", path)
}

func (r *Runner) Close() {
	r.state.Close()
}

func checkVec(L *lua.LState, n int) vec.Vec3 {
	return vec.Vec3{
		X: float32(L.CheckNumber(n)),
		Y: float32(L.CheckNumber(n + 1)),
		Z: float32(L.CheckNumber(n + 2)),
	}
}

// advance lets d of simulated time pass, calling step before every tick.
func (r *Runner) advance(d time.Duration, step func(frac float64)) {
	total := d
	for d > 0 {
		t := min(r.tick, d)
		r.sleep(t)
		d -= t
		r.elapsed += t
		if step != nil {
			step(1 - float64(d)/float64(total))
		}
		r.p.Update()
	}
}

func seconds(L *lua.LState, n int) time.Duration {
	s := float64(L.CheckNumber(n))
	if s < 0 {
		L.ArgError(n, "negative time")
	}
	return time.Duration(s * float64(time.Second))
}

func (r *Runner) listener(L *lua.LState) int {
	r.origin = checkVec(L, 1)
	r.yaw = float32(L.OptNumber(4, 0))
	if L.OptBool(5, false) {
		r.p.Jump(r.origin, r.yaw)
	} else {
		r.p.Move(r.origin, r.yaw)
	}
	return 0
}

func (r *Runner) velocity(L *lua.LState) int {
	r.p.SetVelocity(checkVec(L, 1))
	return 0
}

// glide moves the listener in a straight line and keeps the velocity in
// sync so moving past a source is heard with Doppler shift.
func (r *Runner) glide(L *lua.LState) int {
	from, to := r.origin, checkVec(L, 1)
	d := seconds(L, 4)
	if d == 0 {
		r.origin = to
		r.p.Jump(to, r.yaw)
		return 0
	}
	r.p.SetVelocity(vec.Sub(to, from).Scale(float32(1 / d.Seconds())))
	r.advance(d, func(frac float64) {
		r.origin = vec.Lerp(from, to, float32(frac))
		r.p.Move(r.origin, r.yaw)
	})
	r.p.SetVelocity(vec.Vec3{})
	return 0
}

func (r *Runner) play(L *lua.LState) int {
	r.p.PlayLocal(r.p.Precache(L.CheckString(1)))
	return 0
}

func (r *Runner) playAt(L *lua.LState) int {
	sfx := r.p.Precache(L.CheckString(1))
	r.p.PlayWorld(sfx, checkVec(L, 2), L.OptBool(5, false))
	return 0
}

func (r *Runner) fixed(L *lua.LState) int {
	sfx := r.p.Precache(L.CheckString(1))
	r.p.PlayFixed(sfx, checkVec(L, 2))
	return 0
}

func (r *Runner) volume(L *lua.LState) int {
	r.p.SetVolume(float32(L.CheckNumber(1)))
	return 0
}

func (r *Runner) mute(L *lua.LState) int {
	r.p.SetMute(L.CheckBool(1))
	return 0
}

func (r *Runner) clear(L *lua.LState) int {
	r.p.Clear()
	return 0
}

func (r *Runner) wait(L *lua.LState) int {
	r.advance(seconds(L, 1), nil)
	return 0
}

func (r *Runner) time(L *lua.LState) int {
	L.Push(lua.LNumber(r.elapsed.Seconds()))
	return 1
}

func (r *Runner) log(L *lua.LState) int {
	conlog.Printf("%s\n", L.CheckString(1))
	return 0
}
