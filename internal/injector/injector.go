//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/elyria/elyria/internal/client"
	"github.com/elyria/elyria/internal/server"
	"github.com/google/wire"
)

func InitializeServer(cfg server.Config) (*server.Server, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}

func InitializeClient(cfg client.Config) (*client.Client, func(), error) {
	wire.Build(ClientSet)
	return nil, nil, nil
}
