package server

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/elyria/elyria/internal/core/observability/log"
	"github.com/elyria/elyria/internal/core/protocol"
	"github.com/elyria/elyria/internal/core/transport"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration
type Config struct {
	// Network settings
	ListenAddr string         `yaml:"listen_addr"`
	Transport  transport.Type `yaml:"transport"`
	// AdminAddr enables the admin HTTP endpoints when set.
	AdminAddr string `yaml:"admin_addr"`

	// Message settings
	MaxMessageSize    int `yaml:"max_message_size"`
	OutboundQueueSize int `yaml:"outbound_queue_size"`

	// PlayerSpeed is announced to other clients in new_distant_player.
	PlayerSpeed float32 `yaml:"player_speed"`

	// Inbound rate limit per session. Zero disables it.
	MessagesPerSecond float64 `yaml:"messages_per_second"`
	Burst             int     `yaml:"burst"`

	Log log.Config `yaml:"log"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() Config {
	return Config{
		ListenAddr:        "127.0.0.1:8080",
		Transport:         transport.TypeTCP,
		MaxMessageSize:    protocol.MaxMessageSize,
		OutboundQueueSize: 256,
		PlayerSpeed:       protocol.DefaultSpeed,
		MessagesPerSecond: 60,
		Burst:             120,
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

// DecodeConfig decodes YAML from r. Fields the document leaves out keep their
// default values. An empty document yields the defaults.
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultServerConfig()
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
	case c.ListenAddr == "":
		return fmt.Errorf("%w: listen_addr is required", ErrInvalidConfig)
	case c.MaxMessageSize < 0:
		return fmt.Errorf("%w: max_message_size must not be negative", ErrInvalidConfig)
	case c.OutboundQueueSize <= 0:
		return fmt.Errorf("%w: outbound_queue_size must be positive", ErrInvalidConfig)
	case c.PlayerSpeed <= 0:
		return fmt.Errorf("%w: player_speed must be positive", ErrInvalidConfig)
	case c.MessagesPerSecond < 0:
		return fmt.Errorf("%w: messages_per_second must not be negative", ErrInvalidConfig)
	case c.MessagesPerSecond > 0 && c.Burst <= 0:
		return fmt.Errorf("%w: burst must be positive when rate limiting", ErrInvalidConfig)
	}
	return nil
}
