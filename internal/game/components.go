// Package game holds the simulation shared by server and clients: the
// components stored in the ecs world and the systems that update them each frame.
package game

import (
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Transform places an entity in the world.
type Transform struct {
	Position mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform(position mgl32.Vec3) Transform {
	return Transform{Position: position, Scale: mgl32.Vec3{1, 1, 1}}
}

// NetworkIdentity ties a server-side entity to the session controlling it.
type NetworkIdentity struct {
	SessionID uuid.UUID
	Direction protocol.Direction
	State     protocol.State
}

// LocalPlayer marks the entity driven by this client's input.
type LocalPlayer struct {
	Speed     float32
	Direction protocol.Direction
	State     protocol.State
}

// RemotePlayer is a player controlled by another client. Target is the last
// authoritative position not yet reached; nil once the entity has arrived.
type RemotePlayer struct {
	PlayerID  uuid.UUID
	Target    *mgl32.Vec3
	Speed     float32
	Direction protocol.Direction
	State     protocol.State
}

// NewRemotePlayer returns an idle, down-facing remote player.
func NewRemotePlayer(id uuid.UUID, speed float32) RemotePlayer {
	if speed <= 0 {
		speed = protocol.DefaultSpeed
	}
	return RemotePlayer{
		PlayerID:  id,
		Speed:     speed,
		Direction: protocol.DirectionDown,
		State:     protocol.StateIdle,
	}
}

// Session is the client's own connection state. A world holds at most one.
type Session struct {
	PlayerID  uuid.UUID
	Connected bool
}

// Animation is the interface to the sprite animator: systems only say which
// animation should play, frame selection happens elsewhere.
type Animation struct {
	Current string
	Playing bool
	// Changes counts switches to a different animation.
	Changes int
}

// Play starts name, restarting nothing if it is already current.
func (a *Animation) Play(name string) {
	if a.Current != name {
		a.Current = name
		a.Changes++
	}
	a.Playing = true
}

func (a *Animation) Stop() {
	a.Playing = false
}
