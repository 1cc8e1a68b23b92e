package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// WaveType defines oscillator wave shapes.
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveNoise
)

// oscillator generates a fixed-length tone.
type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator creates a tone generator that ends after duration.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		rng:      rand.New(rand.NewSource(int64(freq*1000) + 1)),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// decay multiplies a stream by an exponential fade.
type decay struct {
	streamer beep.Streamer
	rate     beep.SampleRate
	speed    float64 // Fade constant per second
	position int
}

// NewDecay fades s out exponentially with the given speed.
func NewDecay(s beep.Streamer, speed float64, rate beep.SampleRate) beep.Streamer {
	return &decay{streamer: s, rate: rate, speed: speed}
}

func (d *decay) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = d.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := math.Exp(-d.speed * float64(d.position) / float64(d.rate))
		samples[i][0] *= vol
		samples[i][1] *= vol
		d.position++
	}
	return n, ok
}

func (d *decay) Err() error { return d.streamer.Err() }

// newVolume wraps s with a linear volume. Zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CreateDestroySound is a short noise burst over a falling square blip.
func CreateDestroySound(rate beep.SampleRate, vol float64) beep.Streamer {
	const length = 120 * time.Millisecond

	noise := NewDecay(NewOscillator(0, length, WaveNoise, rate), 30, rate)
	blip := beep.Seq(
		NewOscillator(440, length/3, WaveSquare, rate),
		NewOscillator(220, 2*length/3, WaveSquare, rate),
	)
	return newVolume(beep.Mix(newVolume(noise, 0.6), newVolume(NewDecay(blip, 12, rate), 0.25)), vol)
}

// CreateFanfareSound is a rising major arpeggio ending on a held note.
func CreateFanfareSound(rate beep.SampleRate, vol float64) beep.Streamer {
	notes := []struct {
		freq float64
		dur  time.Duration
	}{
		{523.25, 120 * time.Millisecond}, // C5
		{659.25, 120 * time.Millisecond}, // E5
		{783.99, 120 * time.Millisecond}, // G5
		{1046.5, 600 * time.Millisecond}, // C6
	}

	parts := make([]beep.Streamer, 0, len(notes))
	for _, n := range notes {
		tone := beep.Mix(
			newVolume(NewOscillator(n.freq, n.dur, WaveSquare, rate), 0.3),
			newVolume(NewOscillator(n.freq*2, n.dur, WaveSine, rate), 0.2),
		)
		parts = append(parts, NewDecay(tone, 3, rate))
	}
	return newVolume(beep.Seq(parts...), vol)
}

// BasslineGenerator plays an endless four-note bass riff with a kick on
// every beat. It never ends; stop it through its beep.Ctrl.
type BasslineGenerator struct {
	rate    beep.SampleRate
	pos     int
	beatLen int
	phase   float64
}

// bassNotes is the riff, one note per beat (A2 A2 C3 G2).
var bassNotes = [...]float64{110, 110, 130.81, 98}

// NewBasslineGenerator creates the background track generator at 140 BPM.
func NewBasslineGenerator(rate beep.SampleRate) *BasslineGenerator {
	return &BasslineGenerator{
		rate:    rate,
		beatLen: rate.N(time.Minute / 140),
	}
}

func (g *BasslineGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	kickLen := g.rate.N(80 * time.Millisecond)
	for i := range samples {
		beat := g.pos / g.beatLen
		beatPos := g.pos % g.beatLen
		freq := bassNotes[beat%len(bassNotes)]

		g.phase += freq / float64(g.rate)
		g.phase -= math.Floor(g.phase)
		bass := 0.2 * math.Sin(2*math.Pi*g.phase)

		kick := 0.0
		if beatPos < kickLen {
			env := 1 - float64(beatPos)/float64(kickLen)
			t := float64(beatPos) / float64(g.rate)
			kick = 0.35 * env * math.Sin(2*math.Pi*60*(1+2*env)*t)
		}

		sample := bass + kick
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BasslineGenerator) Err() error { return nil }
