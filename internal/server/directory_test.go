package server

import (
	"net"
	"testing"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pipePeer(t *testing.T) *Peer {
	t.Helper()
	local, remote := net.Pipe()
	t.Cleanup(func() { _ = remote.Close(); _ = local.Close() })
	return newPeer(uuid.New(), local, 4, log.Nop(), nil)
}

func TestDirectory_BroadcastSkipsSender(t *testing.T) {
	d := NewDirectory()
	a, b, c := pipePeer(t), pipePeer(t), pipePeer(t)
	for _, p := range []*Peer{a, b, c} {
		require.NoError(t, d.Add(p))
	}

	assert.Equal(t, 2, d.Broadcast([]byte("frame"), a.ID()))
	assert.Empty(t, a.queue)
	assert.Len(t, b.queue, 1)
	assert.Len(t, c.queue, 1)

	got, ok := d.Get(b.ID())
	require.True(t, ok)
	assert.Same(t, b, got)
}

func TestDirectory_CloseRefusesNewPeers(t *testing.T) {
	d := NewDirectory()
	a := pipePeer(t)
	require.NoError(t, d.Add(a))

	swept := d.Close()
	require.Len(t, swept, 1)
	assert.Same(t, a, swept[0])

	late := pipePeer(t)
	assert.ErrorIs(t, d.Add(late), ErrServerClosed)
	_, ok := d.Get(late.ID())
	assert.False(t, ok)
	assert.Equal(t, 1, d.Len())
}
