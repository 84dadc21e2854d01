package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config stores repository-local settings: project identity, the
// default branch, the storage backend, and per-branch metadata.
type Config struct {
	Project  ProjectConfig           `toml:"project"`
	Branches map[string]BranchConfig `toml:"branches,omitempty"`
}

// ProjectConfig identifies the project this repository tracks.
type ProjectConfig struct {
	ID            string `toml:"id"`
	DefaultBranch string `toml:"default_branch"`
	Storage       string `toml:"storage"` // "file" or "sqlite"
}

// BranchConfig is the mutable metadata attached to a branch ref.
type BranchConfig struct {
	Protected   bool   `toml:"protected,omitempty"`
	Description string `toml:"description,omitempty"`
	CreatedBy   string `toml:"created_by,omitempty"`
}

func (r *Repository) configPath() string {
	return filepath.Join(r.QuillDir, "config.toml")
}

// ReadConfig reads .quill/config.toml. A missing file returns an empty
// config with defaults filled in.
func (r *Repository) ReadConfig() (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	if cfg.Branches == nil {
		cfg.Branches = make(map[string]BranchConfig)
	}
	if cfg.Project.DefaultBranch == "" {
		cfg.Project.DefaultBranch = DefaultBranchName
	}
	if cfg.Project.Storage == "" {
		cfg.Project.Storage = StorageFile
	}
	return &cfg, nil
}

// WriteConfig atomically writes .quill/config.toml.
func (r *Repository) WriteConfig(cfg *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.QuillDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
