package injector

import (
	"github.com/elyria/elyria/internal/client"
	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/transport"
	"github.com/elyria/elyria/internal/server"
	"github.com/google/wire"
)

var ServerSet = wire.NewSet(ProvideServerLogger, ProvideServerTransport, server.New)

var ClientSet = wire.NewSet(ProvideClientLogger, ProvideClientTransport, client.New)

func ProvideServerLogger(cfg server.Config) (log.Log, func(), error) {
	return provideLogger(cfg.Log)
}

func ProvideClientLogger(cfg client.Config) (log.Log, func(), error) {
	return provideLogger(cfg.Log)
}

func ProvideServerTransport(cfg server.Config, logger log.Log) (transport.Transport, error) {
	return transport.New(cfg.Transport, logger)
}

func ProvideClientTransport(cfg client.Config, logger log.Log) (transport.Transport, error) {
	return transport.New(cfg.Transport, logger)
}

func provideLogger(cfg log.Config) (log.Log, func(), error) {
	logger, err := log.NewWithConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}
