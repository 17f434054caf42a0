package transport

import (
	"context"
	"testing"
	"time"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransports_CarryFramesBothWays(t *testing.T) {
	for _, typ := range []Type{TypeTCP, TypeQUIC, TypeWebSocket} {
		t.Run(string(typ), func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			tr, err := New(typ, log.Nop())
			require.NoError(t, err)
			assert.Equal(t, typ, tr.Type())

			ln, err := tr.Listen(ctx, "127.0.0.1:0")
			require.NoError(t, err)
			defer ln.Close()

			type result struct {
				msg protocol.Message
				err error
			}
			serverGot := make(chan result, 1)
			go func() {
				s, err := ln.Accept(ctx)
				if err != nil {
					serverGot <- result{err: err}
					return
				}
				defer s.Close()
				// server speaks first
				if err := protocol.NewEncoder(s).Encode(protocol.NewMessage("hello")); err != nil {
					serverGot <- result{err: err}
					return
				}
				m, err := protocol.NewDecoder(s).Decode()
				serverGot <- result{msg: m, err: err}
			}()

			client, err := tr.Dial(ctx, ln.Addr().String())
			require.NoError(t, err)
			defer client.Close()

			dec := protocol.NewDecoder(client)
			hello, err := dec.Decode()
			require.NoError(t, err)
			assert.Equal(t, "hello", hello.Action())

			reply := protocol.NewMessage(protocol.ActionPlayerMove).Add("x", "1").Add("y", "2").Add("z", "3")
			require.NoError(t, protocol.NewEncoder(client).Encode(reply))

			select {
			case r := <-serverGot:
				require.NoError(t, r.err)
				assert.Equal(t, reply, r.msg)
			case <-ctx.Done():
				t.Fatal("server never received the reply")
			}
		})
	}
}

func TestTCPListener_AcceptHonoursContext(t *testing.T) {
	ln, err := NewTCP(log.Nop()).Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := ln.Accept(ctx)
		done <- err
	}()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return after cancel")
	}
}

func TestWebSocketListener_CloseUnblocksAccept(t *testing.T) {
	ln, err := NewWebSocket(DefaultWebSocketConfig(), log.Nop()).Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ln.Accept(context.Background())
		done <- err
	}()
	require.NoError(t, ln.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrListenerClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("accept did not return after close")
	}
}

func TestWebSocketListener_CloseDropsUnacceptedConnections(t *testing.T) {
	tr := NewWebSocket(DefaultWebSocketConfig(), log.Nop())
	ln, err := tr.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	client, err := tr.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	// upgraded and queued, but never accepted
	require.NoError(t, ln.Close())

	readErr := make(chan error, 1)
	go func() {
		_, err := client.Read(make([]byte, 1))
		readErr <- err
	}()
	select {
	case err := <-readErr:
		assert.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("queued connection stayed open after listener close")
	}
}

func TestWebSocketStream_CloseWithStalledWriter(t *testing.T) {
	tr := NewWebSocket(DefaultWebSocketConfig(), log.Nop())
	ln, err := tr.Listen(context.Background(), "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	accepted := make(chan Stream, 1)
	go func() {
		s, err := ln.Accept(ctx)
		if err == nil {
			accepted <- s
		}
	}()
	client, err := tr.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	var server Stream
	select {
	case server = <-accepted:
	case <-ctx.Done():
		t.Fatal("no connection accepted")
	}

	// the client never reads, so this writer eventually blocks
	payload := make([]byte, 1<<20)
	go func() {
		for {
			if _, err := server.Write(payload); err != nil {
				return
			}
		}
	}()
	time.Sleep(200 * time.Millisecond)

	closed := make(chan struct{})
	go func() {
		_ = server.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(3 * time.Second):
		t.Fatal("Close blocked behind a stalled writer")
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("carrier-pigeon", log.Nop())
	assert.ErrorIs(t, err, ErrTransportNotSupported)

	var typ Type
	assert.Error(t, typ.UnmarshalText([]byte("udp")))
	require.NoError(t, typ.UnmarshalText([]byte("quic")))
	assert.Equal(t, TypeQUIC, typ)
}
