package config

import (
	"path/filepath"

	"github.com/joho/godotenv"
)

// LoadEnv loads the project's .env file into the process environment. A
// missing file is fine; already-set variables win either way.
func LoadEnv(projectPath string) {
	_ = godotenv.Load(filepath.Join(projectPath, ".env"))
}
