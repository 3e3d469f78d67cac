// Package config loads driver configuration from, in increasing order of
// precedence: an optional ember.yaml project file, an optional .env-style
// local override file, process environment variables, and finally CLI
// flags (applied by the caller after Load returns).
package config

import (
	"os"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the settings internal/drivercmd's flags may override.
type Config struct {
	Arch     string `yaml:"arch" env:"EMBERC_ARCH"`
	OptLevel int    `yaml:"optLevel" env:"EMBERC_OPT_LEVEL"`
	Output   string `yaml:"output" env:"EMBERC_OUTPUT"`
	Format   string `yaml:"format" env:"EMBERC_FORMAT"`
}

// ProjectFile and DotEnvFile are the conventional file names Load looks
// for in the working directory.
const (
	ProjectFile = "ember.yaml"
	DotEnvFile  = ".env"
)

// Load builds a Config by layering, in order: ember.yaml (if present),
// .env (if present, loaded into the process environment before env
// parsing), then the process environment itself. A missing project or
// dotenv file is not an error; a malformed one is.
func Load(dir string) (*Config, error) {
	cfg := &Config{Format: "ascii"}

	projectPath := dir + string(os.PathSeparator) + ProjectFile
	if data, err := os.ReadFile(projectPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	dotenvPath := dir + string(os.PathSeparator) + DotEnvFile
	if _, err := os.Stat(dotenvPath); err == nil {
		if err := godotenv.Load(dotenvPath); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
