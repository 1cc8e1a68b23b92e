package client

import (
	"time"

	"github.com/tomz197/danmaku/internal/input"
	"github.com/tomz197/danmaku/internal/loop"
)

// Screen identifies what the client currently shows.
type Screen int

const (
	ScreenHome     Screen = iota // Title screen
	ScreenPlaying                // Active run
	ScreenResult                 // Run cleared or failed
	ScreenShutdown               // Server is shutting down
)

// runResult is the last finished run, as reported to the presenter.
type runResult struct {
	outcome      loop.Phase
	score        int
	highScore    int
	newHighScore bool
}

// ClientState holds per-connection state around the session.
type ClientState struct {
	Input       input.Input
	Running     bool          // Client loop running
	delta       time.Duration // Frame delta time
	accumulator time.Duration // Unsimulated time carried to the next frame

	result      *runResult // Last finished run
	resultDelay float64    // Seconds before the result screen accepts input

	notice      string  // Transient message, e.g. another player's record
	noticeTimer float64 // Seconds the notice stays visible

	shutdown      bool
	shutdownTimer float64 // Countdown before auto-disconnect on shutdown

	isInactive  bool // Whether the client is in inactive warning state
	wasInactive bool
	prevScreen  Screen
	forceClear  bool // Clear the terminal on the next frame
}

// NewClientState creates a new initialized client state.
func NewClientState() *ClientState {
	return &ClientState{
		Running:    true,
		prevScreen: -1,
	}
}
