package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for ft.
type Config struct {
	ProjectsRoot string         `toml:"projects_root"`
	BaseDir      string         `toml:"base_dir"`
	LogDir       string         `toml:"log_dir"`
	Database     DatabaseConfig `toml:"database"`
	Filing       FilingConfig   `toml:"filing"`
	Email        EmailConfig    `toml:"email"`
	Watch        WatchConfig    `toml:"watch"`
}

// DatabaseConfig represents configuration for the record store.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// FilingConfig holds the tunables of the filing engine. Zero values
// fall back to the built-in defaults.
type FilingConfig struct {
	JobPattern          string   `toml:"job_pattern,omitempty"`
	StageOrder          []string `toml:"stage_order,omitempty"`
	DatedFolderRoot     string   `toml:"dated_folder_root,omitempty"`
	DatedFolderTemplate string   `toml:"dated_folder_template,omitempty"`
	MonthGrouping       *bool    `toml:"month_grouping,omitempty"`
	DestinationCap      int      `toml:"destination_cap,omitempty"`
	AutoApplyScore      float64  `toml:"auto_apply_score,omitempty"`
	PreferMapping       bool     `toml:"prefer_mapping,omitempty"`
}

// EmailConfig holds email ingestion settings.
type EmailConfig struct {
	OwnAddresses         []string `toml:"own_addresses,omitempty"`
	MinAttachmentSize    int64    `toml:"min_attachment_size,omitempty"`
	MinEmbeddedImageSize int64    `toml:"min_embedded_image_size,omitempty"`
}

// WatchConfig holds intake-folder watcher settings.
type WatchConfig struct {
	Dir           string `toml:"dir,omitempty"`
	SettleSeconds int    `toml:"settle_seconds,omitempty"` // quiet period before a dropped file is picked up
}

// NewConfig creates a new Config with the provided values and default locations.
func NewConfig(projectsRoot, baseDir string) *Config {
	return &Config{
		ProjectsRoot: projectsRoot,
		BaseDir:      baseDir,
		LogDir:       filepath.Join(baseDir, "log"),
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
