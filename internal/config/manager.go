package config

import (
	"fmt"
	"sync/atomic"

	"github.com/joho/godotenv"
)

// Manager holds the active configuration and supports runtime reloads.
// Readers always see a complete, validated Config; Reload swaps the whole
// snapshot in one atomic store so a half-applied configuration can never
// be observed.
type Manager struct {
	current atomic.Pointer[Config]
}

// NewManager loads the initial configuration from .env and the environment
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewManagerFromConfig wraps an already-built configuration, bypassing the
// environment. Used by tests and the dev entrypoint.
func NewManagerFromConfig(cfg *Config) *Manager {
	m := &Manager{}
	m.current.Store(cfg)
	return m
}

// Current returns the active configuration snapshot
func (m *Manager) Current() *Config {
	return m.current.Load()
}

// Reload re-reads .env and the environment, validates the result and swaps
// it in. On validation failure the previous configuration stays active.
func (m *Manager) Reload() error {
	// Overload so edits to .env are picked up even for variables already set
	_ = godotenv.Overload()

	cfg, err := LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Database settings are applied at startup only; keep the old values so a
	// reload cannot silently point the running app at a different database.
	if prev := m.current.Load(); prev != nil {
		cfg.ClickHouseHost = prev.ClickHouseHost
		cfg.ClickHousePort = prev.ClickHousePort
		cfg.ClickHouseDatabase = prev.ClickHouseDatabase
		cfg.ClickHouseUser = prev.ClickHouseUser
		cfg.ClickHousePassword = prev.ClickHousePassword
		cfg.ClickHouseUseTLS = prev.ClickHouseUseTLS
		cfg.UseMockDB = prev.UseMockDB
	}

	m.current.Store(cfg)
	return nil
}
