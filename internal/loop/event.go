package loop

import (
	"github.com/google/uuid"
)

// EventType identifies the kind of side-effect intent emitted by a Session.
type EventType int

const (
	EventRunStarted     EventType = iota // Run began; start the background track
	EventEnemyDestroyed                  // Bullet destroyed an enemy at X, Y
	EventBossAppeared                    // Boss activated with MaxHP
	EventBossHit                         // Boss took damage, HP remaining
	EventBossDefeated                    // Boss HP reached zero at X, Y
	EventRunEnded                        // Run reached Cleared or Failed
	EventRunStopped                      // Run abandoned without a result
)

// String returns the event name for logging.
func (t EventType) String() string {
	switch t {
	case EventRunStarted:
		return "run_started"
	case EventEnemyDestroyed:
		return "enemy_destroyed"
	case EventBossAppeared:
		return "boss_appeared"
	case EventBossHit:
		return "boss_hit"
	case EventBossDefeated:
		return "boss_defeated"
	case EventRunEnded:
		return "run_ended"
	case EventRunStopped:
		return "run_stopped"
	default:
		return "unknown"
	}
}

// Event is a side-effect intent. Only the fields relevant to Type are set.
type Event struct {
	Type  EventType
	RunID uuid.UUID

	X, Y float64 // EventEnemyDestroyed, EventBossDefeated

	HP    int // EventBossHit
	MaxHP int // EventBossAppeared, EventBossHit

	Outcome      Phase // EventRunEnded
	Score        int   // EventRunEnded
	HighScore    int   // EventRunEnded, after the update
	NewHighScore bool  // EventRunEnded
}
