package memory

import (
	"sync"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore is an in-memory implementation of driven.ConfigStore for testing.
// Nothing is stored until Save is called; Apply is then a full overwrite.
type ConfigStore struct {
	mu       sync.RWMutex
	settings *domain.Settings
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{}
}

// Apply overlays the saved settings onto s.
func (c *ConfigStore) Apply(s *domain.Settings) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.settings != nil {
		*s = *c.settings
		s.FallbackEncodings = append([]string(nil), c.settings.FallbackEncodings...)
	}
	return nil
}

// Save stores a copy of s.
func (c *ConfigStore) Save(s domain.Settings) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.FallbackEncodings = append([]string(nil), s.FallbackEncodings...)
	c.settings = &s
	return nil
}

// Path returns an empty path; nothing is written to disk.
func (c *ConfigStore) Path() string {
	return ""
}
