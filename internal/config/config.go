package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Session struct {
		TTL       string `yaml:"ttl"`       // inactivity window before expiry
		Retention string `yaml:"retention"` // how long terminal sessions stay fetchable
		Sweep     string `yaml:"sweep"`     // eviction sweep interval
	} `yaml:"session"`
	Questions struct {
		TTL string `yaml:"ttl"` // pool cache TTL
	} `yaml:"questions"`
	Rewards struct {
		CoinsPerCorrect int `yaml:"coinsPerCorrect"`
		PerfectBonus    int `yaml:"perfectBonus"`
	} `yaml:"rewards"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// IntOrDefault returns fallback when v is zero.
func IntOrDefault(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}
