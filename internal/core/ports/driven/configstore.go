package driven

import "github.com/custodia-labs/deskref/internal/core/domain"

// ConfigStore persists application settings.
// Implementations handle the file format (e.g., TOML) and type conversion.
type ConfigStore interface {
	// Apply overlays the stored values onto s.
	// Keys missing from storage leave the corresponding fields untouched.
	// A missing file is not an error.
	Apply(s *domain.Settings) error

	// Save writes s to storage, replacing previous contents.
	Save(s domain.Settings) error

	// Path returns the configuration file path.
	Path() string
}
