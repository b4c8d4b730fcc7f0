package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	// ManifestName is the project configuration file.
	ManifestName = "orn.toml"
	// DefaultTable is the constant table looked up when none is configured.
	DefaultTable = "const_values.toml"
)

// ErrTableMissing is returned when no constant table can be located.
var ErrTableMissing = errors.New("constant table not found")

// Manifest is a loaded orn.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the sections of orn.toml.
type Config struct {
	Table  TableConfig  `toml:"table"`
	Update UpdateConfig `toml:"update"`
	Notify NotifyConfig `toml:"notify"`
}

type TableConfig struct {
	Path string `toml:"path"`
}

type UpdateConfig struct {
	Paths  []string `toml:"paths"`
	Jobs   int      `toml:"jobs"`
	Strict bool     `toml:"strict"`
	Cache  bool     `toml:"cache"`
}

type NotifyConfig struct {
	Enabled  bool   `toml:"enabled"`
	Registry string `toml:"registry"`
}

// DefaultConfig is what a project without orn.toml runs with.
func DefaultConfig() Config {
	return Config{
		Table:  TableConfig{Path: DefaultTable},
		Update: UpdateConfig{Paths: []string{"."}},
		Notify: NotifyConfig{Enabled: true},
	}
}

// LoadManifest finds and loads orn.toml above startDir. ok is false when
// there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes path on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("table", "path") && strings.TrimSpace(cfg.Table.Path) == "" {
		return Config{}, fmt.Errorf("%s: [table].path is empty", path)
	}
	if meta.IsDefined("update", "paths") && len(cfg.Update.Paths) == 0 {
		return Config{}, fmt.Errorf("%s: [update].paths is empty", path)
	}
	if cfg.Update.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [update].jobs must not be negative", path)
	}
	return cfg, nil
}

// TablePath returns the configured table resolved against the project root.
func (m *Manifest) TablePath() string {
	return m.resolve(m.Config.Table.Path)
}

// UpdatePaths returns the configured patterns resolved against the project
// root.
func (m *Manifest) UpdatePaths() []string {
	out := make([]string, len(m.Config.Update.Paths))
	for i, p := range m.Config.Update.Paths {
		out[i] = m.resolve(p)
	}
	return out
}

func (m *Manifest) resolve(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, p)
}

// LocateTable picks the constant table: an explicit path wins, then the
// manifest's [table].path, then const_values.toml found above startDir.
func LocateTable(explicit string, m *Manifest, startDir string) (string, error) {
	candidate := explicit
	if candidate == "" && m != nil {
		candidate = m.TablePath()
	}
	if candidate != "" {
		info, err := os.Stat(candidate)
		switch {
		case errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("%w: %s", ErrTableMissing, candidate)
		case err != nil:
			return "", fmt.Errorf("failed to stat %q: %w", candidate, err)
		case info.IsDir():
			return "", fmt.Errorf("%s: is a directory", candidate)
		}
		return candidate, nil
	}
	found, ok, err := FindUp(startDir, DefaultTable)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("%w: no %s above %s", ErrTableMissing, DefaultTable, startDir)
	}
	return found, nil
}
