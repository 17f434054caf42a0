package injector

import (
	"testing"

	"github.com/elyria/elyria/internal/client"
	"github.com/elyria/elyria/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeServer(t *testing.T) {
	cfg := server.DefaultServerConfig()
	cfg.ListenAddr = "127.0.0.1:0"
	srv, cleanup, err := InitializeServer(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, srv)
	assert.Nil(t, srv.Addr(), "not bound before Serve")
}

func TestInitializeServer_BadConfig(t *testing.T) {
	cfg := server.DefaultServerConfig()
	cfg.Log.Encoding = "xml"
	_, _, err := InitializeServer(cfg)
	assert.Error(t, err)
}

func TestInitializeClient(t *testing.T) {
	c, cleanup, err := InitializeClient(client.DefaultClientConfig())
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, c.World())
}
