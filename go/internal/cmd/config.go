package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tuning knobs that are not secrets. Connection settings
// come from the environment; everything here has a sensible default so the
// file is optional.
type Config struct {
	Outbox struct {
		PollIntervalSec int   `yaml:"poll_interval_sec"`
		BatchSize       int32 `yaml:"batch_size"`
		MaxRetries      int   `yaml:"max_retries"`
	} `yaml:"outbox"`
	Scheduler struct {
		BatchSize int32 `yaml:"batch_size"`
	} `yaml:"scheduler"`
	Gateway struct {
		PingIntervalSec int `yaml:"ping_interval_sec"`
	} `yaml:"gateway"`
}

func defaultConfig() *Config {
	var config Config
	config.Outbox.PollIntervalSec = 5
	config.Outbox.BatchSize = 100
	config.Outbox.MaxRetries = 3
	config.Scheduler.BatchSize = 50
	config.Gateway.PingIntervalSec = 30
	return &config
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

func (c *Config) outboxPollInterval() time.Duration {
	return time.Duration(c.Outbox.PollIntervalSec) * time.Second
}

func (c *Config) gatewayPingInterval() time.Duration {
	return time.Duration(c.Gateway.PingIntervalSec) * time.Second
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
