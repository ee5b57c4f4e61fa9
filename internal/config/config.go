package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpungsan/orbit/internal/contact"
)

// FileName is the config file inside the base directory.
const FileName = "config.json"

// HomeEnv overrides the base directory.
const HomeEnv = "ORBIT_HOME"

// Config holds application configuration.
type Config struct {
	// CadenceDays is the expected contact interval in days for orbits 0..4.
	CadenceDays []int `json:"cadence_days,omitempty"`

	// DefaultOrbit is assigned to contacts created without an explicit orbit.
	// A pointer so an explicit 0 survives merging.
	DefaultOrbit *int `json:"default_orbit,omitempty"`

	// NameMaxChars caps contact and constellation names.
	NameMaxChars int `json:"name_max_chars,omitempty"`

	// ArtifactMaxChars caps a single artifact value (one list entry, or a scalar).
	ArtifactMaxChars int `json:"artifact_max_chars,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// If set to 1, all database access is serialized (reduces "database is locked" errors).
	// 0 means use sql.DB default (unlimited).
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	// 0 means use sql.DB default. Typically set equal to DBMaxOpenConns.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// DisabledTypes is a list of type names to disable entirely.
	// Known types: "command", "contact", "constellation", "tag", "interaction".
	DisabledTypes []string `json:"disabled_types,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogJSON switches the stderr logger to JSON output.
	LogJSON bool `json:"log_json,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	orbit := 2
	return &Config{
		CadenceDays:      append([]int(nil), contact.DefaultCadenceDays...),
		DefaultOrbit:     &orbit,
		NameMaxChars:     100,
		ArtifactMaxChars: 2000,
		LogLevel:         "warn",
	}
}

// BaseDir returns $ORBIT_HOME, or ~/.orbit when unset.
func BaseDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(HomeEnv)); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".orbit"), nil
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.orbit.
func Load(baseDir string) (*Config, error) {
	return LoadWithOverlay(baseDir, "")
}

// LoadWithOverlay loads baseDir/config.json and then an optional overlay file
// (e.g. from --config). The overlay takes precedence for scalar values;
// arrays are merged (deduplicated). Either file may be missing.
func LoadWithOverlay(baseDir, overlayPath string) (*Config, error) {
	base, err := loadFileRaw(filepath.Join(baseDir, FileName))
	if err != nil {
		return nil, err
	}

	overlay := &Config{}
	if overlayPath != "" {
		overlay, err = loadFileRaw(overlayPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := Merge(Merge(DefaultConfig(), base), overlay)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if len(c.CadenceDays) != contact.MaxOrbit+1 {
		return fmt.Errorf("cadence_days must have %d entries (one per orbit), got %d", contact.MaxOrbit+1, len(c.CadenceDays))
	}
	for i, d := range c.CadenceDays {
		if d <= 0 {
			return fmt.Errorf("cadence_days[%d] must be positive, got %d", i, d)
		}
	}
	if c.DefaultOrbit != nil && !contact.ValidOrbit(*c.DefaultOrbit) {
		return fmt.Errorf("default_orbit must be between %d and %d, got %d", contact.MinOrbit, contact.MaxOrbit, *c.DefaultOrbit)
	}
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

// Orbit returns the default orbit, falling back to 2.
func (c *Config) Orbit() int {
	if c == nil || c.DefaultOrbit == nil {
		return 2
	}
	return *c.DefaultOrbit
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
// CadenceDays is positional, so a non-empty overlay replaces it whole.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.CadenceDays = append([]int(nil), base.CadenceDays...)
	if len(overlay.CadenceDays) > 0 {
		result.CadenceDays = append([]int(nil), overlay.CadenceDays...)
	}

	result.DefaultOrbit = base.DefaultOrbit
	if overlay.DefaultOrbit != nil {
		result.DefaultOrbit = overlay.DefaultOrbit
	}

	// Scalars: overlay wins if non-zero, else base
	result.NameMaxChars = overlay.NameMaxChars
	if result.NameMaxChars == 0 {
		result.NameMaxChars = base.NameMaxChars
	}

	result.ArtifactMaxChars = overlay.ArtifactMaxChars
	if result.ArtifactMaxChars == 0 {
		result.ArtifactMaxChars = base.ArtifactMaxChars
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.LogLevel = overlay.LogLevel
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	// Booleans: overlay wins if true, else base
	result.LogJSON = base.LogJSON || overlay.LogJSON

	// Arrays: merge and deduplicate
	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)
	result.DisabledTypes = mergeStringSlice(base.DisabledTypes, overlay.DisabledTypes)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string(nil), a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
