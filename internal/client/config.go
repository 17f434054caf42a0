package client

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
	"github.com/elyria/elyria/internal/game"
	"gopkg.in/yaml.v3"
)

// Config holds client configuration
type Config struct {
	ServerAddr string         `yaml:"server_addr"`
	Transport  transport.Type `yaml:"transport"`

	OutgoingQueueSize int `yaml:"outgoing_queue_size"`
	IncomingQueueSize int `yaml:"incoming_queue_size"`
	MaxMessageSize    int `yaml:"max_message_size"`

	TickRate    int     `yaml:"tick_rate"`
	FrameRate   int     `yaml:"frame_rate"`
	PlayerSpeed float32 `yaml:"player_speed"`

	Log log.Config `yaml:"log"`
}

// DefaultClientConfig returns default client configuration
func DefaultClientConfig() Config {
	return Config{
		ServerAddr:        "127.0.0.1:8080",
		Transport:         transport.TypeTCP,
		OutgoingQueueSize: 64,
		IncomingQueueSize: 256,
		MaxMessageSize:    protocol.MaxMessageSize,
		TickRate:          game.DefaultTickRate,
		FrameRate:         game.DefaultFrameRate,
		PlayerSpeed:       protocol.DefaultSpeed,
		Log:               log.DefaultConfig(),
	}
}

// LoadConfig reads a YAML file on top of the defaults.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = f.Close() }()
	return DecodeConfig(f)
}

// DecodeConfig decodes YAML from r, keeping defaults for omitted fields.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultClientConfig()
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.ServerAddr == "":
		return fmt.Errorf("%w: server_addr is required", ErrInvalidConfig)
	case c.OutgoingQueueSize <= 0 || c.IncomingQueueSize <= 0:
		return fmt.Errorf("%w: queue sizes must be positive", ErrInvalidConfig)
	case c.TickRate <= 0 || c.FrameRate <= 0:
		return fmt.Errorf("%w: tick_rate and frame_rate must be positive", ErrInvalidConfig)
	case c.PlayerSpeed <= 0:
		return fmt.Errorf("%w: player_speed must be positive", ErrInvalidConfig)
	}
	return nil
}
