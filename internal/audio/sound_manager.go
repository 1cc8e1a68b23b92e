// Package audio plays the game's sound cues and background track.
package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/tomz197/danmaku/internal/loop"
)

const sampleRate = beep.SampleRate(48000)

// SoundManager mixes the sound cues into the system speaker.
type SoundManager struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	music       *beep.Ctrl
	volume      float64
	initialized bool
}

var _ loop.Audio = (*SoundManager)(nil)

// NewSoundManager creates a sound manager with a master volume in [0, 1].
func NewSoundManager(volume float64) *SoundManager {
	return &SoundManager{
		mixer:  &beep.Mixer{},
		volume: volume,
	}
}

// Initialize opens the speaker. Until it succeeds every cue is a no-op.
func (sm *SoundManager) Initialize() error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	speaker.Play(sm.mixer)
	sm.initialized = true
	return nil
}

// Cleanup stops all sounds and closes the speaker.
func (sm *SoundManager) Cleanup() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}

	speaker.Lock()
	sm.mixer.Clear()
	speaker.Unlock()
	sm.music = nil

	speaker.Close()
	sm.initialized = false
}

// play adds a one-shot streamer to the mixer.
func (sm *SoundManager) play(s beep.Streamer) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized {
		return
	}
	speaker.Lock()
	sm.mixer.Add(s)
	speaker.Unlock()
}

// PlayDestroy plays the enemy destruction cue.
func (sm *SoundManager) PlayDestroy() {
	sm.play(CreateDestroySound(sampleRate, sm.volume))
}

// PlayFanfare plays the boss clear fanfare.
func (sm *SoundManager) PlayFanfare() {
	sm.play(CreateFanfareSound(sampleRate, sm.volume))
}

// StartMusic starts the background track unless it is already playing.
func (sm *SoundManager) StartMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.initialized || sm.music != nil {
		return
	}

	ctrl := &beep.Ctrl{Streamer: newVolume(NewBasslineGenerator(sampleRate), sm.volume*0.5)}
	speaker.Lock()
	sm.mixer.Add(ctrl)
	speaker.Unlock()
	sm.music = ctrl
}

// StopMusic stops the background track. The mixer drops the emptied control.
func (sm *SoundManager) StopMusic() {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.music == nil {
		return
	}
	speaker.Lock()
	sm.music.Streamer = nil
	speaker.Unlock()
	sm.music = nil
}
