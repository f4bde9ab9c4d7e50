package config

import (
	"errors"
	"log/slog"

	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Bun        BunConfig
	LoggerMode LoggerMode
	Discover   Discover
}

type Server struct {
	Port        string
	Environment string
}

type BunConfig struct {
	DSN string
}

type LoggerMode struct {
	Development bool
	Prod        bool
	Level       string
}

// Discover holds the defaults applied to a fresh profile's matching preferences.
type Discover struct {
	DefaultMaxDistance int
	DefaultMinAge      int
	DefaultMaxAge      int
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()

	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	err := v.Unmarshal(&c)
	if err != nil {
		slog.Error("Unable to unmarshal config", "err", err)
		return nil, err
	}

	if c.Discover.DefaultMaxDistance == 0 {
		c.Discover.DefaultMaxDistance = 50
	}
	if c.Discover.DefaultMinAge == 0 {
		c.Discover.DefaultMinAge = 18
	}
	if c.Discover.DefaultMaxAge == 0 {
		c.Discover.DefaultMaxAge = 99
	}
	return &c, nil
}
