package client

import (
	"errors"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/events/bus"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/game"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Handlers apply server messages to the client world.
type Handlers struct {
	world  *ecs.World
	logger log.Log
}

func NewHandlers(world *ecs.World, logger log.Log) *Handlers {
	ecs.Register[game.Session](world)
	ecs.Register[game.Transform](world)
	ecs.Register[game.RemotePlayer](world)
	ecs.Register[game.Animation](world)
	return &Handlers{world: world, logger: logger.With(log.String("component", "handlers"))}
}

// Subscribe registers one handler per server action on b.
func (h *Handlers) Subscribe(b bus.EventBus[Event]) error {
	routes := map[string]func(protocol.Message) error{
		protocol.ActionConnected:          h.Connected,
		protocol.ActionNewDistantPlayer:   h.NewDistantPlayer,
		protocol.ActionPlayerMoved:        h.PlayerMoved,
		protocol.ActionPlayerDisconnected: h.PlayerDisconnected,
	}
	var errs []error
	for action, handle := range routes {
		_, err := b.Subscribe(action, func(ev Event) error { return handle(ev.Message) })
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Connected records the session id and spawns every player already in the world.
func (h *Handlers) Connected(msg protocol.Message) error {
	c, err := protocol.ParseConnected(msg)
	if err != nil {
		return err
	}

	session := h.session()
	session.PlayerID = c.PlayerID
	session.Connected = true

	for _, p := range c.ExistingPlayers {
		if p.ID == c.PlayerID {
			continue
		}
		h.upsertRemote(p.ID, mgl32.Vec3{p.X, p.Y, p.Z}, protocol.DefaultSpeed)
	}
	h.logger.Info("Connected",
		log.Stringer("player_id", c.PlayerID),
		log.Int("existing_players", len(c.ExistingPlayers)))
	return nil
}

func (h *Handlers) NewDistantPlayer(msg protocol.Message) error {
	n, err := protocol.ParseNewDistantPlayer(msg)
	if err != nil {
		return err
	}
	if h.isSelf(n.PlayerID) {
		return nil
	}
	h.upsertRemote(n.PlayerID, n.Position, n.Speed)
	h.logger.Debug("Player joined", log.Stringer("player_id", n.PlayerID))
	return nil
}

// PlayerMoved retargets a remote player. Players never seen before are spawned
// at the reported position.
func (h *Handlers) PlayerMoved(msg protocol.Message) error {
	m, err := protocol.ParsePlayerMoved(msg)
	if err != nil {
		return err
	}
	if h.isSelf(m.PlayerID) {
		return nil
	}

	e, ok := h.findRemote(m.PlayerID)
	if !ok {
		e = h.spawnRemote(m.PlayerID, m.Position, protocol.DefaultSpeed)
	}
	remote, _ := ecs.Get[game.RemotePlayer](h.world, e)
	target := m.Position
	remote.Target = &target

	changed := false
	if m.Direction != "" && m.Direction != remote.Direction {
		remote.Direction = m.Direction
		changed = true
	}
	if m.State != "" && m.State != remote.State {
		remote.State = m.State
		changed = true
	}
	if changed {
		if anim, ok := ecs.Get[game.Animation](h.world, e); ok {
			anim.Play(protocol.AnimationName(remote.State, remote.Direction))
		}
	}
	return nil
}

func (h *Handlers) PlayerDisconnected(msg protocol.Message) error {
	d, err := protocol.ParsePlayerDisconnected(msg)
	if err != nil {
		return err
	}
	if e, ok := h.findRemote(d.PlayerID); ok {
		h.world.RemoveEntity(e)
		h.logger.Debug("Player left", log.Stringer("player_id", d.PlayerID))
	}
	return nil
}

// session returns the world's Session, creating it on first use.
func (h *Handlers) session() *game.Session {
	if _, s, ok := ecs.Find(h.world, func(ecs.Entity, *game.Session) bool { return true }); ok {
		return s
	}
	e := h.world.NewEntity()
	ecs.Add(h.world, e, game.Session{})
	s, _ := ecs.Get[game.Session](h.world, e)
	return s
}

func (h *Handlers) isSelf(id uuid.UUID) bool {
	_, s, ok := ecs.Find(h.world, func(ecs.Entity, *game.Session) bool { return true })
	return ok && s.PlayerID == id
}

func (h *Handlers) findRemote(id uuid.UUID) (ecs.Entity, bool) {
	e, _, ok := ecs.Find(h.world, func(_ ecs.Entity, r *game.RemotePlayer) bool {
		return r.PlayerID == id
	})
	return e, ok
}

func (h *Handlers) upsertRemote(id uuid.UUID, pos mgl32.Vec3, speed float32) ecs.Entity {
	if e, ok := h.findRemote(id); ok {
		if t, ok := ecs.Get[game.Transform](h.world, e); ok {
			t.Position = pos
		}
		return e
	}
	return h.spawnRemote(id, pos, speed)
}

func (h *Handlers) spawnRemote(id uuid.UUID, pos mgl32.Vec3, speed float32) ecs.Entity {
	e := h.world.NewEntity()
	remote := game.NewRemotePlayer(id, speed)
	ecs.Add(h.world, e, game.NewTransform(pos))
	ecs.Add(h.world, e, remote)
	ecs.Add(h.world, e, game.Animation{
		Current: protocol.AnimationName(remote.State, remote.Direction),
		Playing: true,
	})
	return e
}

// RemoteCount returns how many remote players the world holds.
func (h *Handlers) RemoteCount() int {
	return ecs.Count[game.RemotePlayer](h.world)
}
