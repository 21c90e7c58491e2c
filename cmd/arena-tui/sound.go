package main

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/playmatatu/arcade/internal/physics"
)

const sampleRate = beep.SampleRate(44100)

// sounder plays short tones for destruction and pocket events.
type sounder struct {
	mu      sync.Mutex
	enabled bool
}

func newSounder(mute bool) *sounder {
	s := &sounder{}
	if mute {
		return s
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		// Non-fatal, the viewer runs without sound
		log.Printf("Audio initialization failed: %v", err)
		return s
	}
	s.enabled = true
	return s
}

func toneFor(ev physics.Event) (freq float64, d time.Duration, ok bool) {
	switch ev.Type {
	case physics.EventDestroyed:
		if ev.Tag.Kind == "pig" {
			return 330, 180 * time.Millisecond, true
		}
		return 180, 80 * time.Millisecond, true
	case physics.EventPocketed:
		return 660, 60 * time.Millisecond, true
	}
	return 0, 0, false
}

func (s *sounder) play(events []physics.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return
	}
	for _, ev := range events {
		freq, d, ok := toneFor(ev)
		if !ok {
			continue
		}
		sine, err := generators.SineTone(sampleRate, freq)
		if err != nil {
			continue
		}
		speaker.Play(beep.Take(sampleRate.N(d), sine))
	}
}

func (s *sounder) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enabled {
		speaker.Close()
		s.enabled = false
	}
}
