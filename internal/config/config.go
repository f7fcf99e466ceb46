package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Action names how a resolved file reaches its target path.
type Action string

const (
	// ActionCopy copies bytes and verifies them.
	ActionCopy Action = "copy"
	// ActionSymlink creates a symbolic link to the absolute source path.
	ActionSymlink Action = "symlink"
	// ActionMove copies, verifies, then removes the source file.
	ActionMove Action = "move"
)

// Sort contains the placement options.
type Sort struct {
	DefaultPattern string `toml:"default_pattern"`
	Action         Action `toml:"action"`
	DeleteSource   bool   `toml:"delete_source"`
	ForceDelete    bool   `toml:"force_delete"`
	KeepGoing      bool   `toml:"keep_going"`
	Unsafe         bool   `toml:"unsafe"`
	TruncateTime   bool   `toml:"truncate_time"`
	Compress       bool   `toml:"compress"`
}

// Archive contains configuration for compress mode.
type Archive struct {
	// Path overrides the default "<target root>.zip".
	Path string `toml:"path"`
	// KeepLoose also writes the loose files next to the archive.
	KeepLoose bool `toml:"keep_loose"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// SelfTest contains configuration for the network self-test.
type SelfTest struct {
	DataURL string `toml:"data_url"`
	Pattern string `toml:"pattern"`
	// WorkDir holds the downloaded sample data and is reused across runs.
	WorkDir string `toml:"work_dir"`
}

// Config encapsulates all configuration values for dicomsort.
type Config struct {
	Sort     Sort     `toml:"sort"`
	Archive  Archive  `toml:"archive"`
	Logging  Logging  `toml:"logging"`
	SelfTest SelfTest `toml:"self_test"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigRelPath)
}

// Load locates and parses a configuration file and normalizes the result.
// Validation is left to the caller so command-line overrides can be applied
// first. A missing file yields defaults with exists=false.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// ArchivePath returns the archive file used in compress mode for targetRoot.
func (c *Config) ArchivePath(targetRoot string) string {
	if c.Archive.Path != "" {
		return c.Archive.Path
	}
	root := filepath.Clean(targetRoot)
	if root == "." || root == string(filepath.Separator) {
		return filepath.Join(root, "dicomsort"+ArchiveExtension)
	}
	return root + ArchiveExtension
}

// WritesLoose reports whether placed files land on disk as loose files.
func (c *Config) WritesLoose() bool {
	return !c.Sort.Compress || c.Archive.KeepLoose
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
// An existing file is left untouched and reported as an error.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	if _, err := file.WriteString(sampleConfig); err != nil {
		file.Close()
		return fmt.Errorf("write sample config: %w", err)
	}
	return file.Close()
}
