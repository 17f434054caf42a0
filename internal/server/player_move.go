package server

import (
	"fmt"

	"github.com/elyria/elyria/internal/core/ecs"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/game"
	"github.com/google/uuid"
)

// PlayerMoveHandler applies a client's reported position to its own entity
// and relays it to everyone else as player_moved.
type PlayerMoveHandler struct{}

func (PlayerMoveHandler) Handle(ctx *HandlerContext) error {
	move, err := protocol.ParsePlayerMove(ctx.Message)
	if err != nil {
		return err
	}
	if move.PlayerID != uuid.Nil && move.PlayerID != ctx.SessionID {
		return protocol.NewProtocolError(protocol.ErrorCodeInvalidField,
			fmt.Sprintf("player_id %s does not belong to this session", move.PlayerID), nil)
	}

	entity, identity, ok := ecs.Find(ctx.World, func(_ ecs.Entity, id *game.NetworkIdentity) bool {
		return id.SessionID == ctx.SessionID
	})
	if !ok {
		return fmt.Errorf("%w: session %s", ErrPlayerNotFound, ctx.SessionID)
	}
	transform, ok := ecs.Get[game.Transform](ctx.World, entity)
	if !ok {
		return fmt.Errorf("%w: session %s has no transform", ErrPlayerNotFound, ctx.SessionID)
	}

	transform.Position = move.Position
	if move.Direction != "" {
		identity.Direction = move.Direction
	}
	if move.State != "" {
		identity.State = move.State
	}

	frame, err := protocol.Frame(protocol.PlayerMoved{
		PlayerID:  ctx.SessionID,
		Position:  transform.Position,
		Direction: identity.Direction,
		State:     identity.State,
	}.Message())
	if err != nil {
		return err
	}
	delivered := ctx.Directory.Broadcast(frame, ctx.SessionID)
	ctx.Logger.Debug("Player moved",
		log.Float32("x", transform.Position.X()),
		log.Float32("y", transform.Position.Y()),
		log.Int("delivered", delivered))
	return nil
}
