package protocol

import (
	"fmt"

	"github.com/google/uuid"
)

// Actions exchanged between server and clients.
const (
	ActionConnected          = "connected"
	ActionNewDistantPlayer   = "new_distant_player"
	ActionPlayerMove         = "player_move"
	ActionPlayerMoved        = "player_moved"
	ActionPlayerDisconnected = "player_disconnected"
)

// Field keys.
const (
	KeyPlayerID        = "player_id"
	KeyExistingPlayers = "existing_players"
	KeyDirection       = "direction"
	KeyState           = "state"
	KeySpeed           = "speed"
)

// DefaultSpeed is assumed for a remote player announced without a speed.
const DefaultSpeed float32 = 100

// Direction is the facing of a player sprite.
type Direction string

const (
	DirectionDown  Direction = "down"
	DirectionUp    Direction = "up"
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
)

func (d Direction) String() string { return string(d) }

func (d Direction) Valid() bool {
	switch d {
	case DirectionDown, DirectionUp, DirectionRight, DirectionLeft:
		return true
	}
	return false
}

// ParseDirection accepts the four lowercase facings.
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// State is the activity of a player.
type State string

const (
	StateIdle State = "idle"
	StateWalk State = "walk"
)

func (s State) String() string { return string(s) }

func (s State) Valid() bool {
	return s == StateIdle || s == StateWalk
}

// ParseState accepts idle and walk.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown state %q", s)
	}
	return st, nil
}

// AnimationName composes the sprite animation played for a state and facing.
func AnimationName(s State, d Direction) string {
	return string(s) + "_" + string(d)
}

// PlayerInfo is one record of the connected snapshot.
type PlayerInfo struct {
	ID uuid.UUID `json:"id"`
	X  float32   `json:"x"`
	Y  float32   `json:"y"`
	Z  float32   `json:"z"`
}
