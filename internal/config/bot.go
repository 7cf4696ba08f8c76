package config

import "github.com/caarlos0/env/v11"

type BotConfig struct {
	TableID    string `env:"TABLE_ID" envDefault:"T1"`
	PlayerID   string `env:"PLAYER_ID" envDefault:"bot"`
	PlayerName string `env:"PLAYER_NAME" envDefault:"Bot"`
	Seat       int    `env:"SEAT" envDefault:"1"`
	BuyIn      int64  `env:"BUY_IN" envDefault:"1000"`
}

func LoadBot() (BotConfig, error) {
	var cfg BotConfig
	err := env.Parse(&cfg)
	return cfg, err
}
