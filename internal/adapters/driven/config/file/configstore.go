package file

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/deskref/internal/core/domain"
	"github.com/custodia-labs/deskref/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// FileName is the configuration file name inside the config directory.
const FileName = "config.toml"

// ConfigStore is a file-based implementation of driven.ConfigStore using TOML.
type ConfigStore struct {
	mu       sync.RWMutex
	filePath string
}

// NewConfigStore creates a new TOML-based config store.
// If configDir is empty, defaults to ~/.deskref.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".deskref")
	}
	return &ConfigStore{filePath: filepath.Join(configDir, FileName)}, nil
}

// NewConfigStoreAt creates a store for an explicit file path.
func NewConfigStoreAt(path string) *ConfigStore {
	return &ConfigStore{filePath: path}
}

// Apply overlays the file's values onto s. Keys missing from the file leave
// fields untouched; unknown keys are an error. A missing file is not an error.
func (s *ConfigStore) Apply(settings *domain.Settings) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", s.filePath, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(settings); err != nil {
		return fmt.Errorf("parsing %s: %w", s.filePath, err)
	}
	return nil
}

// Save writes settings to the file, replacing previous contents.
func (s *ConfigStore) Save(settings domain.Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return err
	}
	return s.write(data)
}

// Values returns the raw key/value pairs stored in the file.
func (s *ConfigStore) Values() (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load()
}

// Keys returns the stored keys in sorted order.
func (s *ConfigStore) Keys() ([]string, error) {
	values, err := s.Values()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

// Set stores one value, parsed from its command-line form, and persists immediately.
// The resulting file must still apply to a valid configuration.
func (s *ConfigStore) Set(key, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.load()
	if err != nil {
		return err
	}
	values[key] = parseValue(raw)

	data, err := toml.Marshal(values)
	if err != nil {
		return err
	}

	candidate := domain.DefaultSettings()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&candidate); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidConfig, key, err)
	}
	if err := candidate.Validate(); err != nil {
		return err
	}

	return s.writeLocked(data)
}

// Path returns the configuration file path.
func (s *ConfigStore) Path() string {
	return s.filePath
}

// load reads the raw map (caller must hold lock).
func (s *ConfigStore) load() (map[string]any, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, err
	}
	var values map[string]any
	if err := toml.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	if values == nil {
		values = make(map[string]any)
	}
	return values, nil
}

func (s *ConfigStore) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeLocked(data)
}

// writeLocked writes the file with restricted permissions (caller must hold lock).
func (s *ConfigStore) writeLocked(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return err
	}
	return os.WriteFile(s.filePath, data, 0600)
}

// parseValue converts a command-line value into the TOML type it most likely is.
// Comma-separated values become string arrays.
func parseValue(raw string) any {
	raw = strings.TrimSpace(raw)
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return raw
}
