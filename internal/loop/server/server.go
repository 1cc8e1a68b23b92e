package server

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/tomz197/danmaku/internal/loop"
	"github.com/tomz197/danmaku/internal/loop/config"
)

// GameServer is the interface clients use to communicate with the hub.
// Every client simulates its own Session; the hub only shares the high score,
// the leaderboard and shutdown notifications.
type GameServer interface {
	RegisterClient(username string) *ClientHandle
	UnregisterClient(clientID uuid.UUID)
	HighScore() int
	TopScores() []TopScoreEntry
	SubmitScore(clientID uuid.UUID, score int)
	RecordRun(clientID uuid.UUID, score int)
}

// Server tracks connected clients and the shared high score.
type Server struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*ClientHandle
	highScore int
	board     *leaderboard
	sink      loop.ScoreSink // Persists new high scores; may be nil
	logger    *log.Logger
}

// Compile-time check that Server implements GameServer.
var _ GameServer = (*Server)(nil)

// Options configures a Server.
type Options struct {
	HighScore int            // Persisted best score, loaded by the caller
	Sink      loop.ScoreSink // Receives every new high score
	Logger    *log.Logger
}

// ClientHandle represents a client's connection to the server.
type ClientHandle struct {
	ID       uuid.UUID
	Username string           // Display name for this client
	EventsCh chan ClientEvent // Events sent to client (shutdown, high score)
	server   *Server
}

// Submit forwards a new personal best to the server. Implements loop.ScoreSink.
func (h *ClientHandle) Submit(score int) {
	h.server.SubmitScore(h.ID, score)
}

// ClientEvent represents an event sent from server to client.
type ClientEvent struct {
	Type     ClientEventType
	Score    int    // For high score events
	Username string // Who set the high score
}

// ClientEventType identifies the type of client event.
type ClientEventType int

const (
	EventServerShutdown ClientEventType = iota
	EventHighScore
)

// NewServer creates a new hub.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		clients:   make(map[uuid.UUID]*ClientHandle),
		highScore: opts.HighScore,
		board:     newLeaderboard(config.LeaderboardSize),
		sink:      opts.Sink,
		logger:    logger,
	}
}

// Shutdown gracefully shuts down the server by notifying all connected clients
// and waiting for them to disconnect (up to the given timeout).
func (s *Server) Shutdown(timeout time.Duration) {
	// Notify all connected clients about the shutdown
	s.mu.RLock()
	for _, handle := range s.clients {
		select {
		case handle.EventsCh <- ClientEvent{Type: EventServerShutdown}:
		default:
		}
	}
	s.mu.RUnlock()

	// Wait for all clients to disconnect, or timeout
	deadline := time.After(timeout)
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-deadline:
			return
		case <-ticker.C:
			if s.Count() == 0 {
				return
			}
		}
	}
}

// RegisterClient registers a new client with the given username and returns its handle.
func (s *Server) RegisterClient(username string) *ClientHandle {
	handle := &ClientHandle{
		ID:       uuid.New(),
		Username: username,
		EventsCh: make(chan ClientEvent, 16),
		server:   s,
	}

	s.mu.Lock()
	s.clients[handle.ID] = handle
	s.mu.Unlock()

	s.logger.Debug("client registered", "client", handle.ID, "user", username)
	return handle
}

// UnregisterClient removes a client and closes its event channel.
func (s *Server) UnregisterClient(clientID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	handle, ok := s.clients[clientID]
	if !ok {
		return
	}
	close(handle.EventsCh)
	delete(s.clients, clientID)
}

// Count returns the number of connected clients.
func (s *Server) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// HighScore returns the best score across all clients.
func (s *Server) HighScore() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.highScore
}

// TopScores returns the leaderboard, highest first.
func (s *Server) TopScores() []TopScoreEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.board.top()
}

// RecordRun adds a finished run to the leaderboard.
func (s *Server) RecordRun(clientID uuid.UUID, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	username := ""
	if handle, ok := s.clients[clientID]; ok {
		username = handle.Username
	}
	s.board.record(username, score)
}

// SubmitScore raises the shared high score, persists it and notifies the
// other clients. Scores that do not beat the current best are ignored.
func (s *Server) SubmitScore(clientID uuid.UUID, score int) {
	s.mu.Lock()
	if score <= s.highScore {
		s.mu.Unlock()
		return
	}
	s.highScore = score

	username := ""
	if handle, ok := s.clients[clientID]; ok {
		username = handle.Username
	}
	for id, handle := range s.clients {
		if id == clientID {
			continue
		}
		select {
		case handle.EventsCh <- ClientEvent{Type: EventHighScore, Score: score, Username: username}:
		default:
		}
	}
	sink := s.sink
	s.mu.Unlock()

	s.logger.Info("new high score", "user", username, "score", score)
	if sink != nil {
		sink.Submit(score)
	}
}
