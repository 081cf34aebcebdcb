package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/sitegen/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env files from the working directory. Variables already
// set in the process environment win.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment file", logfields.Path(name))
	}
}
