package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// ClientConfig covers the table connection itself: endpoint, heartbeat and
// the reconnect backoff schedule. The ephemeral display windows are part of
// the sync contract, so they are configurable mostly for tests.
type ClientConfig struct {
	Endpoint         string        `env:"TABLE_WS_URL" envDefault:"ws://localhost:8080/ws"`
	Heartbeat        time.Duration `env:"TABLE_HEARTBEAT" envDefault:"25s"`
	DialTimeout      time.Duration `env:"TABLE_DIAL_TIMEOUT" envDefault:"10s"`
	ChatLogSize      int           `env:"TABLE_CHAT_LOG_SIZE" envDefault:"50"`
	LastActionWindow time.Duration `env:"TABLE_LAST_ACTION_WINDOW" envDefault:"2s"`
	ShowdownWindow   time.Duration `env:"TABLE_SHOWDOWN_WINDOW" envDefault:"5s"`
	ErrorWindow      time.Duration `env:"TABLE_ERROR_WINDOW" envDefault:"5s"`
}

func LoadClient() (ClientConfig, error) {
	var cfg ClientConfig
	err := env.Parse(&cfg)
	return cfg, err
}
