/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"
)

func TestConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("EBE_PORT", "")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 3000 {
		t.Errorf("expected default port 3000, got %d", cfg.port)
	}
	if cfg.catchRadius != 0 {
		t.Errorf("expected clients to be trusted by default, got radius %v", cfg.catchRadius)
	}
	if err := cfg.validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("EBE_PORT", "4100")
	t.Setenv("EBE_CATCH_RADIUS", "42.5")
	t.Setenv("EBE_VERBOSE", "true")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 4100 {
		t.Errorf("expected port 4100, got %d", cfg.port)
	}
	if cfg.catchRadius != 42.5 {
		t.Errorf("expected radius 42.5, got %v", cfg.catchRadius)
	}
	if !cfg.verbose {
		t.Error("expected verbose from env")
	}
}

func TestConfigBarePort(t *testing.T) {
	t.Setenv("PORT", "5200")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 5200 {
		t.Errorf("expected port 5200 from PORT, got %d", cfg.port)
	}
}

func TestConfigPrefixedPortWins(t *testing.T) {
	t.Setenv("PORT", "5200")
	t.Setenv("EBE_PORT", "4100")

	cfg := &Config{}
	newCmd(cfg)

	if cfg.port != 4100 {
		t.Errorf("expected EBE_PORT to win, got %d", cfg.port)
	}
}

func TestConfigFlagsBeatEnv(t *testing.T) {
	t.Setenv("EBE_PORT", "4100")

	cfg := &Config{}
	cmd := newCmd(cfg)
	if err := cmd.Flags().Parse([]string{"--port", "6000"}); err != nil {
		t.Fatal(err)
	}

	if cfg.port != 6000 {
		t.Errorf("expected flag to win, got %d", cfg.port)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{port: 3000, pingInterval: 30 * time.Second, sendBuffer: 16}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.port = 0 }},
		{"port too high", func(c *Config) { c.port = 70000 }},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }},
		{"negative radius", func(c *Config) { c.catchRadius = -1 }},
		{"ping too fast", func(c *Config) { c.pingInterval = time.Millisecond }},
		{"no send buffer", func(c *Config) { c.sendBuffer = 0 }},
	}

	if err := valid().validate(); err != nil {
		t.Fatalf("baseline config invalid: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestPongWaitExceedsPing(t *testing.T) {
	cfg := &Config{pingInterval: 9 * time.Second}

	if cfg.pongWait() != 10*time.Second {
		t.Errorf("unexpected pong wait %s", cfg.pongWait())
	}
}
