package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/mcdev12/chartdrill/go/internal/session"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	NATS struct {
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`
	Session struct {
		DurationSec        int `yaml:"duration_sec"`
		FeedbackDelayMs    int `yaml:"feedback_delay_ms"`
		RevealDelayMs      int `yaml:"reveal_delay_ms"`
		DeckFetchTimeoutMs int `yaml:"deck_fetch_timeout_ms"`
	} `yaml:"session"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &config, nil
}

// sessionConfig maps the file config onto engine tunables, falling
// back to engine defaults for anything unset.
func (c *Config) sessionConfig() session.Config {
	cfg := session.DefaultConfig()
	if c.Session.DurationSec > 0 {
		cfg.DurationSec = c.Session.DurationSec
	}
	if c.Session.FeedbackDelayMs > 0 {
		cfg.FeedbackDelay = time.Duration(c.Session.FeedbackDelayMs) * time.Millisecond
	}
	if c.Session.RevealDelayMs > 0 {
		cfg.RevealDelay = time.Duration(c.Session.RevealDelayMs) * time.Millisecond
	}
	return cfg
}

func (c *Config) deckFetchTimeout() time.Duration {
	if c.Session.DeckFetchTimeoutMs > 0 {
		return time.Duration(c.Session.DeckFetchTimeoutMs) * time.Millisecond
	}
	return 5 * time.Second
}

func (c *Config) natsURL() string {
	if c.NATS.URL != "" {
		return c.NATS.URL
	}
	return getEnv("NATS_URL", "nats://localhost:4222")
}

func (c *Config) subjectPrefix() string {
	if c.NATS.SubjectPrefix != "" {
		return c.NATS.SubjectPrefix
	}
	return "drill.events"
}

func (c *Config) port() string {
	if c.Server.Port != "" {
		return c.Server.Port
	}
	return getEnv("PORT", "8080")
}
