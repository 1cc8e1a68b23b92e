package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/tomz197/danmaku/internal/audio"
	"github.com/tomz197/danmaku/internal/config"
	"github.com/tomz197/danmaku/internal/desktop"
	"github.com/tomz197/danmaku/internal/desktop/control"
	"github.com/tomz197/danmaku/internal/highscore"
	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/object"
)

const (
	windowWidth  = 480
	windowHeight = 720
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

	logger, logCloser, err := config.NewLogger(cfg.Log, os.Stderr)
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

	var sound loop.Audio = audio.Nop{}
	if cfg.Audio.Enabled {
		sm := audio.NewSoundManager(cfg.Audio.Volume)
		if err := sm.Initialize(); err != nil {
			logger.Warn("audio unavailable", "err", err)
		} else {
			defer sm.Cleanup()
			sound = sm
		}
	}

	ctrl, err := control.New(control.Options{
		Params:    cfg.Game,
		Field:     object.Playfield{Width: windowWidth, Height: windowHeight},
		HighScore: best,
		Audio:     sound,
		Scores:    writer,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle("DANMAKU!")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.Game.TickRate)

	if err := ebiten.RunGame(desktop.NewGame(ctrl)); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
