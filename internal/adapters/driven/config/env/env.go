// Package env overlays environment variables onto the settings.
// A .env file, when present, is loaded first without overriding variables
// that are already set.
package env

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/custodia-labs/deskref/internal/core/domain"
)

// DefaultEnvFile is read from the working directory when no file is given.
const DefaultEnvFile = ".env"

// LoadDotEnv loads variables from path into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Apply overlays variables such as CHUNK_SIZE or RAG_TOP_K onto s.
// Unset variables leave fields untouched; malformed values are configuration errors.
func Apply(s *domain.Settings) error {
	if err := envconfig.Process("", s); err != nil {
		var perr *envconfig.ParseError
		if errors.As(err, &perr) {
			return domain.NewConfigurationError(perr.KeyName, "cannot parse %q as %s", perr.Value, perr.TypeName)
		}
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfig, err)
	}
	return nil
}
