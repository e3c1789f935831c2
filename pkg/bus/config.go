// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

// Package bus runs the cooperative task that owns the RS-485 transceiver:
// it drives the framer, applies received messages to the pool state, relays
// them to the integration layer, and forwards queued commands during the
// transmit opportunity that follows each controller broadcast.
package bus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the bridge settings. Zero values are replaced by defaults.
type Config struct {
	Port string `yaml:"port"` // serial device path
	URL  string `yaml:"url"`  // serial-over-WebSocket endpoint (alternative to Port)
	Baud int    `yaml:"baud"`

	TickMs         int `yaml:"tick_ms"`
	PollIntervalMs int `yaml:"poll_interval_ms"`

	ToBusCapacity         int `yaml:"to_bus_capacity"`
	ToIntegrationCapacity int `yaml:"to_integration_capacity"`
	TxQueueCapacity       int `yaml:"tx_queue_capacity"`
}

// DefaultConfig returns the stock configuration.
func DefaultConfig() Config {
	return Config{
		Baud:                  9600,
		TickMs:                100,
		PollIntervalMs:        30000,
		ToBusCapacity:         6,
		ToIntegrationCapacity: 10,
		TxQueueCapacity:       5,
	}
}

// LoadConfig reads a YAML configuration file, filling in defaults for any
// unset field.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Baud <= 0 {
		c.Baud = def.Baud
	}
	if c.TickMs <= 0 {
		c.TickMs = def.TickMs
	}
	if c.PollIntervalMs <= 0 {
		c.PollIntervalMs = def.PollIntervalMs
	}
	if c.ToBusCapacity <= 0 {
		c.ToBusCapacity = def.ToBusCapacity
	}
	if c.ToIntegrationCapacity <= 0 {
		c.ToIntegrationCapacity = def.ToIntegrationCapacity
	}
	if c.TxQueueCapacity <= 0 {
		c.TxQueueCapacity = def.TxQueueCapacity
	}
}
