package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/KaziBadrul/Acadex-sub000/internal/routine"
)

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username"`
	Password string `yaml:"password" json:"password"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API and embedded UI.
	Listen string `yaml:"listen" json:"listen"`

	// Timezone is the IANA timezone used as the display zone for
	// projection, the ICS feed and upcoming-occurrence expansion
	// (e.g. "Asia/Dhaka").
	Timezone string `yaml:"timezone" json:"timezone"`

	// RefreshCron re-anchors the cached week projection (and preview
	// snapshot, if configured) so the view rolls over with the week.
	RefreshCron string `yaml:"refresh" json:"refresh"`

	// HorizonDays bounds /api/upcoming and ICS expansion sanity checks.
	HorizonDays int `yaml:"horizon_days" json:"horizon_days"`

	// ClassStart / ClassEnd are the "HH:MM" defaults assigned to every
	// parsed slot. The parser extracts no time-of-day from OCR text;
	// these are the placeholder pair users adjust afterwards.
	ClassStart string `yaml:"class_start" json:"class_start"`
	ClassEnd   string `yaml:"class_end" json:"class_end"`

	// DBPath is the sqlite file holding the current routine snapshot.
	DBPath string `yaml:"db_path" json:"db_path"`

	// PreviewPath is where calendar snapshots are written. Empty
	// disables capture.
	PreviewPath string `yaml:"preview_path" json:"preview_path"`

	// LogLevel is one of debug/info/warn/error.
	LogLevel string `yaml:"log_level" json:"log_level"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:      "127.0.0.1:8080",
		Timezone:    "Asia/Dhaka",
		RefreshCron: "*/15 * * * *",
		HorizonDays: 28,
		ClassStart:  routine.DefaultClassStart,
		ClassEnd:    routine.DefaultClassEnd,
		DBPath:      "./routinecal.db",
		PreviewPath: "",
		LogLevel:    "info",
		BasicAuth:   nil,
	}
}

// Normalize fills in missing/zero values with defaults so that
// partially-filled configs still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:8080"
	}
	if c.Timezone == "" {
		c.Timezone = "Asia/Dhaka"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "*/15 * * * *"
	}
	if c.HorizonDays <= 0 {
		c.HorizonDays = 28
	}
	// Malformed class times silently fall back; the pair is a
	// placeholder policy, not user data worth failing startup over.
	if !routine.IsClockTime(c.ClassStart) {
		c.ClassStart = routine.DefaultClassStart
	}
	if !routine.IsClockTime(c.ClassEnd) {
		c.ClassEnd = routine.DefaultClassEnd
	}
	if c.DBPath == "" {
		c.DBPath = "./routinecal.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist: create parent directory if needed,
//     write a default config with 0600 perms, return the defaults.
//   - If the file exists: read YAML, unmarshal, normalize defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with the error so the
				// caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the given configuration to the specified path.
//
// The write is atomic (temp file + rename in the same directory) and
// the final file ends up with 0600 permissions.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".routinecal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}

// Save is a convenience method that delegates to the package-level
// Save function.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
