package main

import (
	"math"
	"math/rand"
	"testing"
)

func TestChimeLength(t *testing.T) {
	c := newChime(1000, sampleRate)
	want := sampleRate.N(chimeDuration)

	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := c.Stream(buf)
		total += n
		if !ok {
			break
		}
		if total > want*2 {
			t.Fatalf("chime never ends")
		}
	}
	if total != want {
		t.Fatalf("streamed %d samples, want %d", total, want)
	}
	if n, ok := c.Stream(buf); n != 0 || ok {
		t.Fatalf("drained chime streamed %d, %v", n, ok)
	}
	if c.Err() != nil {
		t.Fatalf("Err = %v", c.Err())
	}
}

func TestChimeDecays(t *testing.T) {
	c := newChime(1000, sampleRate)
	buf := make([][2]float64, sampleRate.N(chimeDuration))
	n, _ := c.Stream(buf)

	peak := func(from, to int) float64 {
		m := 0.0
		for _, s := range buf[from:to] {
			m = math.Max(m, math.Abs(s[0]))
			if s[0] != s[1] {
				t.Fatalf("channels differ: %v", s)
			}
		}
		return m
	}
	window := n / 10
	head := peak(0, window)
	tail := peak(n-window, n)
	if head > chimeGain+1e-9 {
		t.Fatalf("head peak %f above gain %f", head, chimeGain)
	}
	if tail >= head/5 {
		t.Fatalf("tail peak %f not well below head peak %f", tail, head)
	}
	if tail > chimeFloor*2 {
		t.Fatalf("tail peak %f above floor", tail)
	}
}

func TestRandomChimePitchRange(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 500; i++ {
		c := randomChime(rng, sampleRate)
		if c.freq < chimeMinHz || c.freq >= chimeMinHz+chimeSpanHz {
			t.Fatalf("pitch %f outside [800, 1200)", c.freq)
		}
	}
}

func TestMutedSoundIsSilent(t *testing.T) {
	s, err := newSound(true)
	if err != nil || s.enabled {
		t.Fatalf("newSound(mute) = %+v, %v", s, err)
	}
	s.collect()
	s.close()
}
