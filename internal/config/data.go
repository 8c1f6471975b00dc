package config

import (
	"os"
	"path/filepath"
)

// DefaultDBPath returns the default location of the ledger database.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "expenditure.db"
	}
	return filepath.Join(home, ".local", "share", "expenditure", "expenditure.db")
}
