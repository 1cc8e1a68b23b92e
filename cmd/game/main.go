package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/tomz197/danmaku/internal/audio"
	"github.com/tomz197/danmaku/internal/config"
	"github.com/tomz197/danmaku/internal/highscore"
	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/client"
	"github.com/tomz197/danmaku/internal/loop/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	// Stdout is the game screen, so logs only go to a file.
	logger, logCloser, err := config.NewLogger(cfg.Log, io.Discard)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	ctx := context.Background()
	store, err := highscore.Open(ctx, cfg.Store)
	if err != nil {
		return fmt.Errorf("open high score store: %w", err)
	}
	defer store.Close()

	best, err := store.Load(ctx)
	if err != nil {
		logger.Warn("failed to load high score", "err", err)
	}

	writer := highscore.NewWriter(store, logger)
	defer writer.Close()

	hub := server.NewServer(server.Options{HighScore: best, Sink: writer, Logger: logger})

	sound, cleanup := newAudio(cfg.Audio, logger)
	defer cleanup()

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enable raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	c, err := client.NewClient(hub, bufio.NewReader(os.Stdin), os.Stdout, client.ClientOptions{
		Username: os.Getenv("USER"),
		Params:   cfg.Game,
		Audio:    sound,
		Renderer: lipgloss.DefaultRenderer(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	return c.Run()
}

// newAudio opens the speaker. Without one the client falls back to the
// terminal bell.
func newAudio(cfg config.AudioConfig, logger *log.Logger) (loop.Audio, func()) {
	if !cfg.Enabled {
		return audio.Nop{}, func() {}
	}

	sm := audio.NewSoundManager(cfg.Volume)
	if err := sm.Initialize(); err != nil {
		logger.Warn("audio unavailable, using terminal bell", "err", err)
		return nil, func() {}
	}
	return sm, func() {
		// Let the last cue finish.
		time.Sleep(100 * time.Millisecond)
		sm.Cleanup()
	}
}
