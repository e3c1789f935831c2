// SPDX-License-Identifier: GPL-3.0-or-later
// Copyright (c) 2014, 2019, 2022, 2026 Coert Vonk

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/cvonk/OPNpool-sub000/pkg/bus"
	"github.com/cvonk/OPNpool-sub000/pkg/rs485"
)

// loadConfig merges the optional YAML config file with the command line
// flags; flags win.
func loadConfig() (bus.Config, error) {
	cfg := bus.DefaultConfig()
	if configPath != "" {
		var err error
		cfg, err = bus.LoadConfig(configPath)
		if err != nil {
			return cfg, err
		}
	}
	if portName != "" {
		cfg.Port = portName
	}
	if wsURL != "" {
		cfg.URL = wsURL
	}
	if rootCmd.PersistentFlags().Changed("baud") {
		cfg.Baud = baudRate
	}
	return cfg, nil
}

// OpenTransceiver opens either a serial or WebSocket transceiver based on
// the configuration. The returned string describes the connection.
func OpenTransceiver(cfg bus.Config) (rs485.Transceiver, string, error) {
	if cfg.URL != "" {
		password := ""
		if wsUsername != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		conn, err := rs485.DialWS(cfg.URL, wsUsername, password, wsNoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return conn, fmt.Sprintf("WebSocket: %s", cfg.URL), nil
	}

	if cfg.Port != "" {
		port, err := rs485.OpenSerial(cfg.Port, cfg.Baud)
		if err != nil {
			return nil, "", err
		}
		return port, fmt.Sprintf("Serial: %s @ %d baud", cfg.Port, cfg.Baud), nil
	}

	return nil, "", fmt.Errorf("either --port or --url must be specified")
}

// GetPassword retrieves the WebSocket password from the environment or
// prompts the user without echo.
func GetPassword() (string, error) {
	if pw := os.Getenv("OPNPOOL_PASSWORD"); pw != "" {
		return pw, nil
	}

	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// fall back to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}
