package anvil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Load reads and validates a manifest. A parse failure or a contradictory
// manifest is a ConfigError; nothing has been mutated at that point.
func Load(path string) (*Manifest, error) {
	m := &Manifest{path: path}
	if _, err := toml.DecodeFile(path, m); err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("parse TOML: %w", err)}
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Lint parses and validates without keeping the result.
func Lint(path string) error {
	_, err := Load(path)
	return err
}

// Save writes the manifest back atomically: encode to a temp file in the
// same directory, then rename over the original. A crash mid-write leaves
// the previous manifest intact, never a truncated one.
func (m *Manifest) Save() error {
	if m.path == "" {
		return fmt.Errorf("manifest has no backing path")
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	dir := filepath.Dir(m.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(m.path)+"-*")
	if err != nil {
		return fmt.Errorf("create manifest temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close manifest temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod manifest: %w", err)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace manifest: %w", err)
	}
	return nil
}

// WriteNew creates a fresh manifest at path. Used by project scaffolding.
func WriteNew(path string, m *Manifest) error {
	m.path = path
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	return m.Save()
}
