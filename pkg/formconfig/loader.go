package formconfig

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes a FormConfig from JSON or YAML and normalises it. source is
// only used in error messages.
func Parse(data []byte, source string) (*FormConfig, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDocument, source)
	}

	var cfg FormConfig
	jsonErr := json.Unmarshal(data, &cfg)
	if jsonErr != nil {
		cfg = FormConfig{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("formconfig: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}

	if err := Normalize(&cfg); err != nil {
		return nil, fmt.Errorf("formconfig: %s: %w", source, err)
	}
	return &cfg, nil
}

// LoadFile reads and parses a config file from disk.
func LoadFile(path string) (*FormConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("formconfig: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// LoadFS walks fsys and parses every JSON/YAML config file, keyed by config
// id. Duplicate ids are rejected.
func LoadFS(fsys fs.FS) (map[string]*FormConfig, error) {
	out := make(map[string]*FormConfig)
	if fsys == nil {
		return out, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isConfigFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("formconfig: read %s: %w", path, err)
		}
		cfg, err := Parse(data, path)
		if err != nil {
			return err
		}

		id := strings.TrimSpace(cfg.ID)
		if id == "" {
			id = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			cfg.ID = id
		}
		if _, exists := out[id]; exists {
			return fmt.Errorf("formconfig: duplicate config %q (file %s)", id, path)
		}
		out[id] = cfg
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
