package audio

import (
	"io"
	"sync"
	"time"

	"github.com/tomz197/danmaku/internal/draw"
	"github.com/tomz197/danmaku/internal/loop"
)

// bellGap throttles destroy bells so a burst of kills rings once.
const bellGap = 250 * time.Millisecond

// Bell rings the terminal bell for sound cues. Used where no speaker is
// available, e.g. remote sessions. It has no background track.
type Bell struct {
	mu   sync.Mutex
	w    io.Writer
	last time.Time
	now  func() time.Time
}

var _ loop.Audio = (*Bell)(nil)

// NewBell creates a bell that writes to w.
func NewBell(w io.Writer) *Bell {
	return &Bell{w: w, now: time.Now}
}

// PlayDestroy rings at most once per bellGap.
func (b *Bell) PlayDestroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.last) < bellGap {
		return
	}
	b.last = now
	draw.Bell(b.w)
}

// PlayFanfare always rings.
func (b *Bell) PlayFanfare() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.last = b.now()
	draw.Bell(b.w)
}

func (b *Bell) StartMusic() {}
func (b *Bell) StopMusic()  {}

// Nop discards every cue.
type Nop struct{}

var _ loop.Audio = Nop{}

func (Nop) PlayDestroy() {}
func (Nop) PlayFanfare() {}
func (Nop) StartMusic()  {}
func (Nop) StopMusic()   {}
