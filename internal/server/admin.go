package server

import (
	"encoding/json"
	"net/http"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/game"
	"github.com/google/uuid"
)

// PlayerView is one row of GET /players.
type PlayerView struct {
	ID        uuid.UUID `json:"id"`
	X         float32   `json:"x"`
	Y         float32   `json:"y"`
	Z         float32   `json:"z"`
	Direction string    `json:"direction"`
	State     string    `json:"state"`
}

// StatsView is the body of GET /stats.
type StatsView struct {
	Sessions        int    `json:"sessions"`
	Entities        int    `json:"entities"`
	MessagesIn      uint64 `json:"messages_in"`
	MessagesDropped uint64 `json:"messages_dropped"`
	FramesDropped   uint64 `json:"frames_dropped"`
}

func (s *Server) adminHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /players", s.handlePlayers)
	mux.HandleFunc("GET /stats", s.handleStats)
	return mux
}

// Players lists every player in the world, ordered by entity.
func (s *Server) Players() []PlayerView {
	s.worldMu.Lock()
	defer s.worldMu.Unlock()

	players := make([]PlayerView, 0, ecs.Count[game.NetworkIdentity](s.world))
	for e, identity := range ecs.Each[game.NetworkIdentity](s.world) {
		t, ok := ecs.Get[game.Transform](s.world, e)
		if !ok {
			continue
		}
		players = append(players, PlayerView{
			ID:        identity.SessionID,
			X:         t.Position.X(),
			Y:         t.Position.Y(),
			Z:         t.Position.Z(),
			Direction: identity.Direction.String(),
			State:     identity.State.String(),
		})
	}
	return players
}

func (s *Server) Stats() StatsView {
	s.worldMu.Lock()
	entities := ecs.Count[game.NetworkIdentity](s.world)
	s.worldMu.Unlock()

	return StatsView{
		Sessions:        s.directory.Len(),
		Entities:        entities,
		MessagesIn:      s.stats.MessagesIn.Load(),
		MessagesDropped: s.stats.MessagesDropped.Load(),
		FramesDropped:   s.stats.FramesDropped.Load(),
	}
}

func (s *Server) handlePlayers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.Players())
}

func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, s.Stats())
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to write admin response", log.Error(err))
	}
}
