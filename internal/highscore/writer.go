package highscore

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tomz197/danmaku/internal/loop"
)

// saveTimeout bounds a single background save.
const saveTimeout = 5 * time.Second

// Writer saves high scores in the background so the frame loop never waits
// on the store. Only the highest pending score is kept between saves.
type Writer struct {
	store  Store
	logger *log.Logger

	mu      sync.Mutex
	pending int
	closed  bool

	wake chan struct{}
	done chan struct{}
}

var _ loop.ScoreSink = (*Writer)(nil)

// NewWriter starts the background writer for store.
func NewWriter(store Store, logger *log.Logger) *Writer {
	if logger == nil {
		logger = log.Default()
	}
	w := &Writer{
		store:  store,
		logger: logger,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit queues score for saving. Never blocks.
func (w *Writer) Submit(score int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || score <= w.pending {
		return
	}
	w.pending = score

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *Writer) run() {
	defer close(w.done)

	saved := 0
	for range w.wake {
		w.mu.Lock()
		score := w.pending
		w.mu.Unlock()

		if score <= saved {
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := w.store.Save(ctx, score)
		cancel()
		if err != nil {
			w.logger.Error("failed to save high score", "score", score, "err", err)
			continue
		}
		saved = score
		w.logger.Debug("high score saved", "score", score)
	}
}

// Close saves the last pending score and stops the writer. The store itself
// is left open.
func (w *Writer) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	// A queued wake-up is still received before the loop sees the close.
	close(w.wake)
	w.mu.Unlock()

	<-w.done
}
