package loop

import (
	"github.com/charmbracelet/log"
)

// Audio plays the game's sound cues. Calls must not block.
type Audio interface {
	PlayDestroy()
	PlayFanfare()
	StartMusic()
	StopMusic()
}

// ScoreSink persists a new high score. Calls must not block.
type ScoreSink interface {
	Submit(score int)
}

// Presenter shows the result of a finished run.
type Presenter interface {
	ShowResult(outcome Phase, score, highScore int, newHighScore bool)
}

// Effects maps session events to external collaborators. Any collaborator
// may be nil; the simulation never depends on them.
type Effects struct {
	Audio     Audio
	Scores    ScoreSink
	Presenter Presenter
	Logger    *log.Logger
}

// Dispatch consumes the events drained from a session after a tick.
func (fx *Effects) Dispatch(events []Event) {
	for _, e := range events {
		fx.dispatch(e)
	}
}

func (fx *Effects) dispatch(e Event) {
	switch e.Type {
	case EventRunStarted:
		fx.logInfo("run started", "run", e.RunID)
		if fx.Audio != nil {
			fx.Audio.StartMusic()
		}

	case EventEnemyDestroyed:
		if fx.Audio != nil {
			fx.Audio.PlayDestroy()
		}

	case EventBossAppeared:
		fx.logDebug("boss appeared", "run", e.RunID, "hp", e.MaxHP)

	case EventBossDefeated:
		if fx.Audio != nil {
			fx.Audio.PlayFanfare()
		}

	case EventRunEnded:
		fx.logInfo("run ended",
			"run", e.RunID,
			"outcome", e.Outcome,
			"score", e.Score,
			"high_score", e.HighScore,
			"new_high_score", e.NewHighScore,
		)
		if fx.Audio != nil {
			fx.Audio.StopMusic()
		}
		if e.NewHighScore && fx.Scores != nil {
			fx.Scores.Submit(e.HighScore)
		}
		if fx.Presenter != nil {
			fx.Presenter.ShowResult(e.Outcome, e.Score, e.HighScore, e.NewHighScore)
		}

	case EventRunStopped:
		fx.logInfo("run stopped", "run", e.RunID)
		if fx.Audio != nil {
			fx.Audio.StopMusic()
		}
	}
}

func (fx *Effects) logInfo(msg string, keyvals ...any) {
	if fx.Logger != nil {
		fx.Logger.Info(msg, keyvals...)
	}
}

func (fx *Effects) logDebug(msg string, keyvals ...any) {
	if fx.Logger != nil {
		fx.Logger.Debug(msg, keyvals...)
	}
}
