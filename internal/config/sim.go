package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type SimConfig struct {
	HTTPAddr      string        `env:"SIM_HTTP_ADDR" envDefault:":8080"`
	SmallBlind    int64         `env:"SIM_SMALL_BLIND" envDefault:"10"`
	BigBlind      int64         `env:"SIM_BIG_BLIND" envDefault:"20"`
	ActionTimeout time.Duration `env:"SIM_ACTION_TIMEOUT" envDefault:"30s"`
}

func LoadSim() (SimConfig, error) {
	var cfg SimConfig
	err := env.Parse(&cfg)
	return cfg, err
}
