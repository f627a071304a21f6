package database

import (
	"fmt"
	"os"
	"path/filepath"

	"agentpack/internal/config"
	"agentpack/internal/pack"
)

// NewHistoryFromConfig creates a History implementation based on the database
// config type. agentID names the per-agent database file.
func NewHistoryFromConfig(cfg config.DatabaseConfig, agentID string) (pack.History, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		return NewSQLiteHistory(filepath.Join(cfg.DataDir, agentID+".db"))
	case "memory":
		return NewSQLiteHistory(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
