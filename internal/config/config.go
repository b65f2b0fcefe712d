package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for nymedit.
type Config struct {
	RemoteURL string         `toml:"remote_url"`
	UsersDir  string         `toml:"users_dir"`
	LogDir    string         `toml:"log_dir"`
	Users     []UserConfig   `toml:"users"`
	Kinds     KindsConfig    `toml:"kinds"`
	Timeouts  TimeoutsConfig `toml:"timeouts"`
	Journal   JournalConfig  `toml:"journal"`
}

// UserConfig describes one contributor. Realname and Email become the git
// commit identity for that contributor's working copy.
type UserConfig struct {
	Username string `toml:"username"`
	Realname string `toml:"realname"`
	Email    string `toml:"email"`
}

// KindConfig holds the repository layout for one record kind.
// Schema is empty for kinds that are not schema-validated (bibliography).
type KindConfig struct {
	Dir    string `toml:"dir"`
	Depth  int    `toml:"depth"`
	Schema string `toml:"schema,omitempty"`
}

// KindsConfig holds the layouts for all three record kinds.
type KindsConfig struct {
	Concept      KindConfig `toml:"cnf"`
	Variant      KindConfig `toml:"vnf"`
	Bibliography KindConfig `toml:"bib"`
}

// TimeoutsConfig bounds external git/grep invocations, in seconds.
// Zero values fall back to 60s for mutating commands and 30s for queries.
type TimeoutsConfig struct {
	MutateSeconds int `toml:"mutate_seconds"`
	QuerySeconds  int `toml:"query_seconds"`
}

// Mutate returns the timeout for commands that change repository state.
func (t TimeoutsConfig) Mutate() time.Duration {
	if t.MutateSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(t.MutateSeconds) * time.Second
}

// Query returns the timeout for read-only commands.
func (t TimeoutsConfig) Query() time.Duration {
	if t.QuerySeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(t.QuerySeconds) * time.Second
}

// JournalConfig represents configuration for the session journal database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type JournalConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NewConfig creates a new Config with the provided remote URL and default
// layout rooted at baseDir.
func NewConfig(remoteURL, baseDir string) *Config {
	schemaDir := filepath.Join(baseDir, "schemata")
	return &Config{
		RemoteURL: remoteURL,
		UsersDir:  filepath.Join(baseDir, "users"),
		LogDir:    filepath.Join(baseDir, "log"),
		Kinds: KindsConfig{
			Concept:      KindConfig{Dir: "CNFs", Depth: 3, Schema: filepath.Join(schemaDir, "cnf.xsd")},
			Variant:      KindConfig{Dir: "VNFs", Depth: 6, Schema: filepath.Join(schemaDir, "vnf.xsd")},
			Bibliography: KindConfig{Dir: "bib", Depth: 0},
		},
		Journal: JournalConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "journal"),
		},
	}
}

// FindUser returns the config entry for a username, or nil if unknown.
func (c *Config) FindUser(username string) *UserConfig {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
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
