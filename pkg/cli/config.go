package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig is the profile file at ~/.iolib/config.yaml. Each profile holds
// defaults for the Google credentials, the project override, the output
// format and the FTP endpoint; flags and environment variables win over it.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one named set of defaults. The FTP password is never stored; it
// comes from --password or FTP_PASSWORD only.
type Profile struct {
	KeyFile string `yaml:"key-file,omitempty"`
	Project string `yaml:"project,omitempty"`
	Output  string `yaml:"output,omitempty"`
	FTPHost string `yaml:"ftp-host,omitempty"`
	FTPUser string `yaml:"ftp-user,omitempty"`
}

func newUserConfig() *UserConfig {
	return &UserConfig{CurrentProfile: "default", Profiles: map[string]Profile{}}
}

// ActiveProfile returns the override profile, else the current one. Unknown
// names yield an empty profile.
func (c *UserConfig) ActiveProfile(override string) Profile {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	return c.Profiles[name]
}

// Profile returns the named profile or an error when it does not exist.
func (c *UserConfig) Profile(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}
	return p, nil
}

func (c *UserConfig) validate() error {
	for name, p := range c.Profiles {
		if err := validateOutputFormat(p.Output); err != nil {
			return fmt.Errorf("profile %q: %w", name, err)
		}
	}
	return nil
}

// ConfigDir returns ~/.iolib, or "" when the home directory is unknown.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".iolib")
}

// ConfigPath returns the profile file path.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads and validates the profile file. A profile with an
// unknown output format makes the whole file invalid.
func LoadUserConfig() (*UserConfig, error) {
	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", ConfigPath(), err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", ConfigPath(), err)
	}
	return &cfg, nil
}

// loadUserConfigOrDefault is LoadUserConfig with a missing file treated as an
// empty config holding only the "default" profile name.
func loadUserConfigOrDefault() (*UserConfig, error) {
	cfg, err := LoadUserConfig()
	if errors.Is(err, fs.ErrNotExist) {
		return newUserConfig(), nil
	}
	return cfg, err
}

// SaveUserConfig writes the profile file, readable by the owner only.
func SaveUserConfig(cfg *UserConfig) error {
	if err := os.MkdirAll(ConfigDir(), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}
