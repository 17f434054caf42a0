package protocol

import (
	"encoding/json"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Typed views over the string records. Every struct converts to a Message for
// the wire and back through its Parse function.

// Connected is sent once to a joining client.
type Connected struct {
	PlayerID        uuid.UUID
	ExistingPlayers []PlayerInfo
}

func (c Connected) Message() (Message, error) {
	players := c.ExistingPlayers
	if players == nil {
		players = []PlayerInfo{}
	}
	snapshot, err := json.Marshal(players)
	if err != nil {
		return nil, malformed("failed to encode player snapshot", err)
	}
	return NewMessage(ActionConnected).
		Add(KeyPlayerID, c.PlayerID.String()).
		Add(KeyExistingPlayers, string(snapshot)), nil
}

// ParseConnected requires player_id. A missing existing_players means an empty
// world; an unparseable one is an invalid field.
func ParseConnected(m Message) (Connected, error) {
	id, err := m.PlayerID()
	if err != nil {
		return Connected{}, err
	}
	c := Connected{PlayerID: id}
	raw, ok := m[KeyExistingPlayers]
	if !ok || raw == "" {
		return c, nil
	}
	if err := json.Unmarshal([]byte(raw), &c.ExistingPlayers); err != nil {
		return Connected{}, invalidField(KeyExistingPlayers, err)
	}
	return c, nil
}

// NewDistantPlayer announces a joining player to everybody else.
type NewDistantPlayer struct {
	PlayerID uuid.UUID
	Position mgl32.Vec3
	Speed    float32
}

func (n NewDistantPlayer) Message() Message {
	return NewMessage(ActionNewDistantPlayer).
		Add(KeyPlayerID, n.PlayerID.String()).
		AddPosition(n.Position).
		AddFloat(KeySpeed, n.Speed)
}

// ParseNewDistantPlayer defaults a missing speed to DefaultSpeed.
func ParseNewDistantPlayer(m Message) (NewDistantPlayer, error) {
	id, err := m.PlayerID()
	if err != nil {
		return NewDistantPlayer{}, err
	}
	pos, err := m.Position()
	if err != nil {
		return NewDistantPlayer{}, err
	}
	n := NewDistantPlayer{PlayerID: id, Position: pos, Speed: DefaultSpeed}
	if _, ok := m[KeySpeed]; ok {
		if n.Speed, err = m.Float(KeySpeed); err != nil {
			return NewDistantPlayer{}, err
		}
	}
	return n, nil
}

// PlayerMove is the client's periodic position report.
type PlayerMove struct {
	// PlayerID is uuid.Nil when the client omitted it.
	PlayerID  uuid.UUID
	Position  mgl32.Vec3
	Direction Direction
	State     State
}

func (p PlayerMove) Message() Message {
	m := NewMessage(ActionPlayerMove)
	if p.PlayerID != uuid.Nil {
		m.Add(KeyPlayerID, p.PlayerID.String())
	}
	return addFacing(m.AddPosition(p.Position), p.Direction, p.State)
}

// ParsePlayerMove requires the coordinates. The id, direction and state are
// optional but must be valid when present.
func ParsePlayerMove(m Message) (PlayerMove, error) {
	var p PlayerMove
	if _, ok := m[KeyPlayerID]; ok {
		id, err := m.PlayerID()
		if err != nil {
			return PlayerMove{}, err
		}
		p.PlayerID = id
	}
	pos, err := m.Position()
	if err != nil {
		return PlayerMove{}, err
	}
	p.Position = pos
	if p.Direction, p.State, err = parseFacing(m); err != nil {
		return PlayerMove{}, err
	}
	return p, nil
}

// PlayerMoved relays a move to every other client.
type PlayerMoved struct {
	PlayerID  uuid.UUID
	Position  mgl32.Vec3
	Direction Direction
	State     State
}

func (p PlayerMoved) Message() Message {
	m := NewMessage(ActionPlayerMoved).
		Add(KeyPlayerID, p.PlayerID.String()).
		AddPosition(p.Position)
	return addFacing(m, p.Direction, p.State)
}

// ParsePlayerMoved requires the id and coordinates; direction and state may be
// absent, leaving them empty.
func ParsePlayerMoved(m Message) (PlayerMoved, error) {
	id, err := m.PlayerID()
	if err != nil {
		return PlayerMoved{}, err
	}
	pos, err := m.Position()
	if err != nil {
		return PlayerMoved{}, err
	}
	p := PlayerMoved{PlayerID: id, Position: pos}
	if p.Direction, p.State, err = parseFacing(m); err != nil {
		return PlayerMoved{}, err
	}
	return p, nil
}

// PlayerDisconnected tells clients to drop a remote player.
type PlayerDisconnected struct {
	PlayerID uuid.UUID
}

func (p PlayerDisconnected) Message() Message {
	return NewMessage(ActionPlayerDisconnected).Add(KeyPlayerID, p.PlayerID.String())
}

func ParsePlayerDisconnected(m Message) (PlayerDisconnected, error) {
	id, err := m.PlayerID()
	if err != nil {
		return PlayerDisconnected{}, err
	}
	return PlayerDisconnected{PlayerID: id}, nil
}

func addFacing(m Message, d Direction, s State) Message {
	if d != "" {
		m.Add(KeyDirection, d.String())
	}
	if s != "" {
		m.Add(KeyState, s.String())
	}
	return m
}

func parseFacing(m Message) (Direction, State, error) {
	var (
		d   Direction
		s   State
		err error
	)
	if v, ok := m[KeyDirection]; ok {
		if d, err = ParseDirection(v); err != nil {
			return "", "", invalidField(KeyDirection, err)
		}
	}
	if v, ok := m[KeyState]; ok {
		if s, err = ParseState(v); err != nil {
			return "", "", invalidField(KeyState, err)
		}
	}
	return d, s, nil
}
