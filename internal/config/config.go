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
	Quiz struct {
		TTL                 string `yaml:"ttl"`
		QuestionsPerAttempt int    `yaml:"questionsPerAttempt"`
		Shuffle             bool   `yaml:"shuffle"`
	} `yaml:"quiz"`
	Jokers struct {
		TTL string `yaml:"ttl"`
	} `yaml:"jokers"`
	Auth struct {
		JWTSecret string `yaml:"jwtSecret"`
		TokenTTL  string `yaml:"tokenTTL"`
	} `yaml:"auth"`
	Player struct {
		BaseURL     string `yaml:"baseURL"`
		Token       string `yaml:"token"`
		TimeBudget  int    `yaml:"timeBudget"`
		Tick        string `yaml:"tick"`
		LeadIn      string `yaml:"leadIn"`
		RevealDelay string `yaml:"revealDelay"`
		ErrorDelay  string `yaml:"errorDelay"`
	} `yaml:"player"`
}

// Load reads YAML config from path. A missing file yields the zero config so
// every command can run on defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
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
