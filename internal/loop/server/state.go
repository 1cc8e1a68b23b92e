package server

import (
	"sort"
)

// TopScoreEntry represents a single entry on the leaderboard.
type TopScoreEntry struct {
	Username string
	Score    int
	seq      int // Used for deterministic tie-break: earlier runs rank first
}

// leaderboard keeps the best finished runs seen by this server, highest first.
type leaderboard struct {
	entries []TopScoreEntry
	size    int
	nextSeq int
}

func newLeaderboard(size int) *leaderboard {
	return &leaderboard{size: size}
}

// record inserts a finished run. Returns true if it made the board.
func (b *leaderboard) record(username string, score int) bool {
	if b.size <= 0 {
		return false
	}
	entry := TopScoreEntry{Username: username, Score: score, seq: b.nextSeq}
	b.nextSeq++

	b.entries = append(b.entries, entry)
	sort.SliceStable(b.entries, func(i, j int) bool {
		if b.entries[i].Score != b.entries[j].Score {
			return b.entries[i].Score > b.entries[j].Score
		}
		return b.entries[i].seq < b.entries[j].seq
	})

	if len(b.entries) > b.size {
		dropped := b.entries[b.size]
		b.entries = b.entries[:b.size]
		return dropped.seq != entry.seq
	}
	return true
}

// top returns a copy of the current entries.
func (b *leaderboard) top() []TopScoreEntry {
	out := make([]TopScoreEntry, len(b.entries))
	copy(out, b.entries)
	return out
}
