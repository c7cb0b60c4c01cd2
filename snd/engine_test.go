// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"spatialsnd/math/vec"
)

const (
	testRate   = 44100
	testFrames = 512
)

// fakeOutput records every written buffer. It wants data until limit
// buffers were written, limit 0 means forever.
type fakeOutput struct {
	mu       sync.Mutex
	openErr  error
	writeErr error
	limit    int
	writes   int
	closed   bool
	written  []float32
}

func (f *fakeOutput) Open() error { return f.openErr }
func (f *fakeOutput) OutputRate() int { return testRate }
func (f *fakeOutput) BufferFrameCount() int { return testFrames }

func (f *fakeOutput) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeOutput) IsTooEmpty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.limit == 0 || f.writes < f.limit
}

func (f *fakeOutput) WriteFrames(samples []float32, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes++
	if f.writeErr != nil {
		return f.writeErr
	}
	f.written = append(f.written, samples[:2*count]...)
	return nil
}

func (f *fakeOutput) SleepUntil(timeout time.Duration) {
	time.Sleep(min(timeout, time.Millisecond))
}

func (f *fakeOutput) samples() []float32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float32(nil), f.written...)
}

func dcPCM(frames int, v float32) []float32 {
	pcm := make([]float32, 2*frames)
	for i := range pcm {
		pcm[i] = v
	}
	return pcm
}

func dcSample(t *testing.T, frames int) *AudioSample {
	t.Helper()
	s, err := newSampleFormat(DefaultConfig(), testRate).resample("dc", dcPCM(frames, 1), frames, testRate)
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	return s
}

func testEngine(cfg Config, out *fakeOutput) (*Engine, chan command) {
	cfg.sanitize()
	e := newEngine(uuid.Nil, cfg, out, true, testRate, testFrames, newStats(cfg.Events))
	return e, make(chan command, cfg.QueueSize)
}

func runCycles(e *Engine, q chan command, n int) {
	for i := 0; i < n; i++ {
		e.cycle(q)
	}
}

func nonzeroFrames(s []float32) int {
	n := 0
	for i := 0; i+1 < len(s); i += 2 {
		if s[i] != 0 || s[i+1] != 0 {
			n++
		}
	}
	return n
}

func near(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

func TestLocalFramesExact(t *testing.T) {
	for _, frames := range []int{1, 100, 512, 1000, 2048} {
		out := &fakeOutput{}
		e, q := testEngine(DefaultConfig(), out)
		q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, frames)}
		q <- command{kind: cmdLocal, sfx: 0}
		runCycles(e, q, frames/testFrames+3)
		if got := nonzeroFrames(out.samples()); got != frames {
			t.Errorf("frames %d: nonzero output frames = %v, want %v", frames, got, frames)
		}
		if b := e.pool.busy(); b != 0 {
			t.Errorf("frames %d: busy = %v, want 0", frames, b)
		}
		if e.pool.useCount != 0 {
			t.Errorf("frames %d: useCount = %v, want 0", frames, e.pool.useCount)
		}
	}
}

func TestLocalFadeIn(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 1000)}
	q <- command{kind: cmdLocal, sfx: 0}
	runCycles(e, q, 1)
	s := out.samples()
	if want := float32(0.5) / (fadeLen + 1); !near(s[0], want, 1e-6) {
		t.Errorf("first sample = %v, want %v", s[0], want)
	}
	if !near(s[2*fadeLen], 0.5, 1e-6) {
		t.Errorf("sample after fade = %v, want 0.5", s[2*fadeLen])
	}
	for k := 0; k+2 < len(s); k += 2 {
		if d := s[k+2] - s[k]; d < 0 || d > 0.5/(fadeLen+1)+1e-6 {
			t.Fatalf("step at frame %d = %v", k/2, d)
		}
	}
}

func TestWorldArrival(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 100}}
	runCycles(e, q, 10)
	if st := e.stats.snapshot(); st.Slots[0] != SlotWorldIgnoring {
		t.Errorf("slot state at %v = %c, want w", st.Time, st.Slots[0].Rune())
	}
	runCycles(e, q, 30)
	if st := e.stats.snapshot(); st.Slots[0] != SlotWorldAudible {
		t.Errorf("slot state at %v = %c, want W", st.Time, st.Slots[0].Rune())
	}

	s := out.samples()
	first := -1
	for i := 0; i < len(s); i += 2 {
		if s[i] != 0 {
			first = i / 2
			break
		}
	}
	// 100/343 s at 44100 Hz
	if first < 12855 || first > 12859 {
		t.Errorf("first audible frame = %v, want ~12857", first)
	}
	l, r := s[2*15000], s[2*15000+1]
	if !near(l, r, 1e-6) {
		t.Errorf("gains differ: left %v right %v", l, r)
	}
	if want := float32(0.5 * 0.01 * 2 / 3); !near(l, want, 1e-6) {
		t.Errorf("left = %v, want %v", l, want)
	}
}

func TestWorldExpires(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldDiagonal = 20
	out := &fakeOutput{}
	e, q := testEngine(cfg, out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 10}}
	runCycles(e, q, 1)
	if b := e.pool.busy(); b != 1 {
		t.Fatalf("busy = %v, want 1", b)
	}
	runCycles(e, q, 10)
	if b := e.pool.busy(); b != 0 {
		t.Errorf("busy after expiry = %v, want 0", b)
	}
	if e.pool.useCount != 0 {
		t.Errorf("useCount = %v, want 0", e.pool.useCount)
	}
	if n := nonzeroFrames(out.samples()); n == 0 {
		t.Errorf("world sound never audible")
	}
}

func TestFixedLoops(t *testing.T) {
	cfg := DefaultConfig()
	cfg.WorldDiagonal = 1
	out := &fakeOutput{}
	e, q := testEngine(cfg, out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdFixed, sfx: 0}
	runCycles(e, q, 50)
	if b := e.pool.busy(); b != 1 {
		t.Fatalf("busy = %v, want 1", b)
	}
	ev := &e.pool.events[0]
	if ev.ptrFracLeft >= 200 || ev.ptrFracRight >= 200 {
		t.Errorf("cursors not wrapped: %v %v", ev.ptrFracLeft, ev.ptrFracRight)
	}
	s := out.samples()
	tail := s[len(s)-2*testFrames:]
	want := float32(0.5 * 4 / 9)
	for i, v := range tail {
		if !near(v, want, 1e-5) {
			t.Fatalf("tail[%d] = %v, want %v", i, v, want)
		}
	}
}

func TestDopplerFinished(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdVelocity, pos: vec.Vec3{X: -400}}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 2}}
	runCycles(e, q, 2)
	if b := e.pool.busy(); b != 0 {
		t.Errorf("busy = %v, want 0", b)
	}
	if n := nonzeroFrames(out.samples()); n != 0 {
		t.Errorf("nonzero frames = %v, want 0", n)
	}
}

func TestFixedOutrun(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdFixed, sfx: 0, pos: vec.Vec3{X: 2}}
	runCycles(e, q, 2)
	q <- command{kind: cmdVelocity, pos: vec.Vec3{X: -400}}
	runCycles(e, q, 2)
	if b := e.pool.busy(); b != 1 {
		t.Fatalf("busy = %v, want 1", b)
	}
	before := len(out.samples())
	q <- command{kind: cmdVelocity}
	runCycles(e, q, 2)
	s := out.samples()
	if n := nonzeroFrames(s[before-2*testFrames : before]); n != 0 {
		t.Errorf("nonzero frames while outrun = %v, want 0", n)
	}
	if n := nonzeroFrames(s[before:]); n != 2*testFrames {
		t.Errorf("nonzero frames after stopping = %v, want %v", n, 2*testFrames)
	}
}

func TestWorldOnsetFade(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 1.5}}
	runCycles(e, q, 2)
	s := out.samples()
	steady := s[2*(testFrames+100)]
	if steady <= 0 {
		t.Fatalf("steady level = %v, want > 0", steady)
	}
	// one fade step plus the interpolated first frame
	bound := 2 * steady / (fadeLen + 1)
	for ch := 0; ch < 2; ch++ {
		for j := 0; j+1 < len(s)/2; j++ {
			if d := s[2*(j+1)+ch] - s[2*j+ch]; d > bound || d < -bound {
				t.Fatalf("channel %d step %v at frame %d, bound %v", ch, d, j, bound)
			}
		}
	}
}

func TestWorldLateEar(t *testing.T) {
	e, _ := testEngine(DefaultConfig(), &fakeOutput{})
	one := func(float64) float32 { return 1 }
	pos, g := e.mixEar(0, one, -testFrames-10, 1, 0, 0.8)
	if pos != -10 || g != 0 {
		t.Fatalf("silent buffer = %v, %v, want -10, 0", pos, g)
	}
	if n := nonzeroFrames(e.mix); n != 0 {
		t.Fatalf("silent buffer mixed %v frames", n)
	}
	_, g = e.mixEar(0, one, pos, 1, g, 0.8)
	if g != 0.8 {
		t.Errorf("gain after onset = %v, want 0.8", g)
	}
	if e.mix[2*9] != 0 {
		t.Errorf("frame 9 = %v, want 0", e.mix[2*9])
	}
	if got, want := e.mix[2*10], gainAt(0, 0.8, 0); got != want {
		t.Errorf("onset frame = %v, want faded %v", got, want)
	}
}

func TestDopplerStep(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 2}}
	runCycles(e, q, 2)
	ev := &e.pool.events[0]
	before := ev.ptrFracLeft
	q <- command{kind: cmdVelocity, pos: vec.Vec3{X: 34.3}}
	runCycles(e, q, 1)
	if d, want := ev.ptrFracLeft-before, 1.1*testFrames; math.Abs(d-want) > 1e-3 {
		t.Errorf("cursor advance = %v, want %v", d, want)
	}
}

func TestJumpResync(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 10*testRate)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 100}}
	runCycles(e, q, 40)
	ev := &e.pool.events[0]

	before := ev.ptrFracLeft
	q <- command{kind: cmdListener, pos: vec.Vec3{X: 50}}
	runCycles(e, q, 1)
	if d := ev.ptrFracLeft - before; math.Abs(d-testFrames) > 1e-6 {
		t.Errorf("move: cursor advance = %v, want %v", d, testFrames)
	}

	q <- command{kind: cmdListener, pos: vec.Vec3{X: 60}, flag: true}
	start := e.now
	runCycles(e, q, 1)
	al, _ := e.phys.arrivals(ev)
	want := (start-ev.startTime-al)*testRate + testFrames
	if math.Abs(ev.ptrFracLeft-want) > 1e-3 {
		t.Errorf("jump: cursor = %v, want %v", ev.ptrFracLeft, want)
	}
	if e.listener.jumped {
		t.Errorf("jumped still set after update")
	}
}

func TestCrossfadeOnTurn(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 10*testRate)}
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{Y: 1.5}}
	runCycles(e, q, 4)
	q <- command{kind: cmdListener, yaw: 180}
	runCycles(e, q, 1)
	s := out.samples()
	buf := s[len(s)-2*testFrames:]
	for ch := 0; ch < 2; ch++ {
		for k := ch; k+2 < len(buf); k += 2 {
			if d := math.Abs(float64(buf[k+2] - buf[k])); d > 0.5/(fadeLen+1)+1e-6 {
				t.Fatalf("channel %d: step at frame %d = %v", ch, k/2, d)
			}
		}
	}
	if near(buf[0], buf[2*fadeLen], 1e-6) {
		t.Errorf("no gain change across turn: %v", buf[0])
	}
}

func TestVolumeIdempotent(t *testing.T) {
	render := func(times int) []float32 {
		out := &fakeOutput{}
		e, q := testEngine(DefaultConfig(), out)
		q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 2000)}
		for i := 0; i < times; i++ {
			q <- command{kind: cmdVolume, value: 5}
		}
		q <- command{kind: cmdLocal, sfx: 0}
		runCycles(e, q, 3)
		return out.samples()
	}
	once, twice := render(1), render(2)
	if len(once) != len(twice) {
		t.Fatalf("len = %v, want %v", len(twice), len(once))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("sample %d = %v, want %v", i, twice[i], once[i])
		}
	}
	if !near(once[2*100], 0.5*0.25, 1e-6) {
		t.Errorf("volume 5 sample = %v, want %v", once[2*100], 0.5*0.25)
	}
}

func TestVolumeScale(t *testing.T) {
	for _, tc := range []struct {
		v    float32
		want float32
	}{
		{-1, 0},
		{0, 0},
		{5, 0.25},
		{10, 1},
		{20, 1},
	} {
		e, q := testEngine(DefaultConfig(), &fakeOutput{})
		q <- command{kind: cmdVolume, value: tc.v}
		runCycles(e, q, 1)
		if e.volume != tc.want {
			t.Errorf("SetVolume(%v): scale = %v, want %v", tc.v, e.volume, tc.want)
		}
	}
}

func TestClearSilence(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdLocal, sfx: 0}
	q <- command{kind: cmdFixed, sfx: 0}
	runCycles(e, q, 2)
	q <- command{kind: cmdClear}
	n := len(out.samples())
	runCycles(e, q, 5)
	if got := nonzeroFrames(out.samples()[n:]); got != 0 {
		t.Errorf("nonzero frames after clear = %v, want 0", got)
	}
	if e.pool.busy() != 0 || e.pool.useCount != 0 {
		t.Errorf("pool after clear: busy %v useCount %v", e.pool.busy(), e.pool.useCount)
	}
}

func TestMute(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, testRate)}
	q <- command{kind: cmdMute, flag: true}
	q <- command{kind: cmdLocal, sfx: 0}
	runCycles(e, q, 3)
	if got := nonzeroFrames(out.samples()); got != 0 {
		t.Errorf("nonzero frames while muted = %v, want 0", got)
	}
	if out.writes != 3 {
		t.Errorf("writes = %v, want 3", out.writes)
	}
	if !e.available {
		t.Errorf("muted engine is not available")
	}
	q <- command{kind: cmdMute, flag: false}
	runCycles(e, q, 1)
	if got := nonzeroFrames(out.samples()); got != testFrames {
		t.Errorf("nonzero frames after unmute = %v, want %v", got, testFrames)
	}
}

func TestWithheldWhileFull(t *testing.T) {
	out := &fakeOutput{limit: 2}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdLocal, sfx: 0}
	runCycles(e, q, 5)
	if out.writes != 2 {
		t.Errorf("writes = %v, want 2", out.writes)
	}
	if e.now != 2*float64(testFrames)/testRate {
		t.Errorf("clock = %v, want two buffers", e.now)
	}
	if len(q) != 0 {
		t.Errorf("queue not drained: %v", len(q))
	}
}

func TestInert(t *testing.T) {
	out := &fakeOutput{}
	cfg := DefaultConfig()
	cfg.sanitize()
	e := newEngine(uuid.Nil, cfg, out, false, testRate, testFrames, newStats(cfg.Events))
	q := make(chan command, 8)
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	q <- command{kind: cmdLocal, sfx: 0}
	wrote, timeout, quit := e.cycle(q)
	if wrote || quit {
		t.Errorf("cycle = %v, %v, want false, false", wrote, quit)
	}
	if timeout != bufferPeriod(testFrames, testRate) {
		t.Errorf("timeout = %v, want one buffer period", timeout)
	}
	if len(q) != 0 {
		t.Errorf("queue not drained: %v", len(q))
	}
	if out.writes != 0 {
		t.Errorf("writes = %v, want 0", out.writes)
	}
	if e.stats.snapshot().Available {
		t.Errorf("stats report available")
	}
}

func TestWriteFailure(t *testing.T) {
	out := &fakeOutput{writeErr: errors.New("device lost")}
	e, q := testEngine(DefaultConfig(), out)
	runCycles(e, q, 3)
	if out.writes != 1 {
		t.Errorf("writes = %v, want 1", out.writes)
	}
	if e.available || e.stats.snapshot().Available {
		t.Errorf("engine still available after write failure")
	}
}

func TestNextWake(t *testing.T) {
	e, q := testEngine(DefaultConfig(), &fakeOutput{limit: 1})
	q <- command{kind: cmdRegister, sfx: 0, sample: dcSample(t, 100)}
	runCycles(e, q, 1)
	q <- command{kind: cmdWorld, sfx: 0, pos: vec.Vec3{X: 3.43}}
	_, timeout, _ := e.cycle(q)
	if want := 10 * time.Millisecond; timeout > want+time.Millisecond || timeout < want-time.Millisecond {
		t.Errorf("timeout = %v, want ~%v", timeout, want)
	}
	q <- command{kind: cmdClear}
	if _, timeout, _ := e.cycle(q); timeout != e.period {
		t.Errorf("idle timeout = %v, want %v", timeout, e.period)
	}
}

func TestUnknownSample(t *testing.T) {
	out := &fakeOutput{}
	e, q := testEngine(DefaultConfig(), out)
	q <- command{kind: cmdRegister, sfx: 0, sample: nil}
	q <- command{kind: cmdLocal, sfx: 0}
	q <- command{kind: cmdWorld, sfx: 0}
	q <- command{kind: cmdFixed, sfx: 7}
	runCycles(e, q, 1)
	if b := e.pool.busy(); b != 0 {
		t.Errorf("busy = %v, want 0", b)
	}
}

func TestQuit(t *testing.T) {
	e, q := testEngine(DefaultConfig(), &fakeOutput{})
	q <- command{kind: cmdQuit}
	if _, _, quit := e.cycle(q); !quit {
		t.Errorf("quit not reported")
	}
}

func vecX(x float32) vec.Vec3 {
	return vec.Vec3{X: x}
}
