package main

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate    = beep.SampleRate(44100)
	chimeMinHz    = 800.0
	chimeSpanHz   = 400.0
	chimeDuration = 300 * time.Millisecond
	chimeGain     = 0.3
	chimeFloor    = 0.01 // gain left at the end of the decay
)

// chime is a sine tone with an exponential decay from chimeGain to
// chimeFloor over its duration.
type chime struct {
	freq     float64
	rate     beep.SampleRate
	position int
	total    int
	decay    float64 // per second
}

func newChime(freq float64, rate beep.SampleRate) *chime {
	return &chime{
		freq:  freq,
		rate:  rate,
		total: rate.N(chimeDuration),
		decay: math.Log(chimeGain/chimeFloor) / chimeDuration.Seconds(),
	}
}

// randomChime picks a pitch in [800, 1200) Hz.
func randomChime(rng *rand.Rand, rate beep.SampleRate) *chime {
	return newChime(chimeMinHz+rng.Float64()*chimeSpanHz, rate)
}

func (c *chime) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if c.position >= c.total {
			return i, i > 0
		}
		t := float64(c.position) / float64(c.rate)
		v := chimeGain * math.Exp(-c.decay*t) * math.Sin(2*math.Pi*c.freq*t)
		samples[i][0] = v
		samples[i][1] = v
		c.position++
	}
	return len(samples), true
}

func (c *chime) Err() error { return nil }

// sound plays chimes on the default output. A failed speaker init leaves
// it muted.
type sound struct {
	enabled bool
	rng     *rand.Rand
}

func newSound(mute bool) (*sound, error) {
	s := &sound{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	if mute {
		return s, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return s, err
	}
	s.enabled = true
	return s, nil
}

func (s *sound) collect() {
	if !s.enabled {
		return
	}
	speaker.Play(randomChime(s.rng, sampleRate))
}

func (s *sound) close() {
	if s.enabled {
		speaker.Close()
	}
}
