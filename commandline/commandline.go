package commandline

import (
	"flag"
	"time"
)

var (
	noSound  bool
	sndCoop  bool
	sndSpeed int
	sndBuf   int
	sndDev   string
	events   int
	duration time.Duration

	basedir string
	game    string
	script  string
	config  string
	console bool
)

func init() {
	flag.BoolVar(&noSound, "nosound", false, "Disable sound output")
	flag.BoolVar(&sndCoop, "sndcoop", false, "Mix from the game loop instead of a dedicated audio thread")

	flag.IntVar(&sndSpeed, "sndspeed", 44100, "output sample rate")
	flag.IntVar(&sndBuf, "sndbuffer", 512, "output buffer size in frames")
	flag.IntVar(&events, "sndevents", 0, "number of sound event slots, 0 uses snd_events")
	flag.StringVar(&sndDev, "snddevice", "oto", "output device: oto, speaker, sdl, headless, null")
	flag.DurationVar(&duration, "duration", 10*time.Second, "how long to run the demo loop")

	flag.StringVar(&basedir, "basedir", ".", "directory holding sound/ and pak files")
	flag.StringVar(&game, "game", "", "mod directory searched before the base directory")
	flag.StringVar(&script, "script", "", "lua scenario to run instead of the built-in walk")
	flag.StringVar(&config, "config", "", "cfg file executed at startup")
	flag.BoolVar(&console, "console", false, "read console commands from stdin")
}

func Sound() bool {
	return !noSound
}

func Cooperative() bool {
	return sndCoop
}

func SoundSpeed() int {
	return sndSpeed
}

func SoundBuffer() int {
	return sndBuf
}

func SoundDevice() string {
	return sndDev
}

func SoundEvents() int {
	return events
}

func Duration() time.Duration {
	return duration
}

func BaseDirectory() string {
	return basedir
}

func Game() string {
	return game
}

func Script() string {
	return script
}

func Config() string {
	return config
}

func Console() bool {
	return console
}
