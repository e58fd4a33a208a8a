package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {Project: "dev-proj", Output: "table"},
			"prod":    {Project: "prod-proj", KeyFile: "/keys/prod.json", Output: "json"},
		},
	}

	tests := []struct {
		name     string
		override string
		want     string
	}{
		{name: "uses_current_profile", want: "dev-proj"},
		{name: "override", override: "prod", want: "prod-proj"},
		{name: "unknown_profile_is_empty", override: "nope", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.ActiveProfile(tt.override).Project)
		})
	}
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	home := isolate(t)

	_, err := LoadUserConfig()
	require.Error(t, err)

	cfg := &UserConfig{
		CurrentProfile: "work",
		Profiles:       map[string]Profile{"work": {Project: "p", FTPHost: "ftp.example.com"}},
	}
	require.NoError(t, SaveUserConfig(cfg))

	info, err := os.Stat(filepath.Join(home, ".iolib", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadUserConfig_EmptyProfiles(t *testing.T) {
	home := isolate(t)
	writeUserConfig(t, home, "current-profile: default\n")

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.NotNil(t, cfg.Profiles)
}

func TestUserConfig_Profile(t *testing.T) {
	cfg := &UserConfig{Profiles: map[string]Profile{"prod": {Project: "prod-proj"}}}

	p, err := cfg.Profile("prod")
	require.NoError(t, err)
	assert.Equal(t, "prod-proj", p.Project)

	_, err = cfg.Profile("nope")
	require.EqualError(t, err, `profile "nope" not found`)
}

func TestLoadUserConfig_Invalid(t *testing.T) {
	t.Run("bad_output_format", func(t *testing.T) {
		home := isolate(t)
		writeUserConfig(t, home, "profiles:\n  work:\n    output: xml\n")

		_, err := LoadUserConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `profile "work"`)
	})

	t.Run("malformed_yaml", func(t *testing.T) {
		home := isolate(t)
		writeUserConfig(t, home, "profiles: [\n")

		_, err := LoadUserConfig()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("missing_file_falls_back_to_default", func(t *testing.T) {
		isolate(t)

		cfg, err := loadUserConfigOrDefault()
		require.NoError(t, err)
		assert.Equal(t, "default", cfg.CurrentProfile)
		assert.Empty(t, cfg.Profiles)
	})
}

func TestRoot_BrokenUserConfig(t *testing.T) {
	home := isolate(t)
	writeUserConfig(t, home, "profiles: [\n")
	f := newFakes()

	_, _, err := f.run(t, "", "bq", "read", "--query", "SELECT 1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
	assert.Zero(t, f.warehouse.CallCount("Query"))
}

func TestConfigCommands(t *testing.T) {
	isolate(t)
	f := newFakes()

	out, _, err := f.run(t, "", "config", "set-profile", "--name", "work", "--default-project", "work-proj", "--ftp-host", "ftp.example.com")
	require.NoError(t, err)
	assert.Contains(t, out, `Profile "work" saved`)

	_, _, err = f.run(t, "", "config", "use-profile", "work")
	require.NoError(t, err)

	out, _, err = f.run(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "current-profile: work")
	assert.Contains(t, out, "project: work-proj")
	assert.Contains(t, out, "ftp-host: ftp.example.com")

	_, _, err = f.run(t, "", "config", "use-profile", "missing")
	require.EqualError(t, err, `profile "missing" not found`)

	_, _, err = f.run(t, "", "config", "set-profile", "--name", "bad", "--default-output", "xml")
	require.Error(t, err)
}

func TestConfigCommands_IgnoreBrokenEnv(t *testing.T) {
	isolate(t)
	t.Setenv("IOLIB_BATCH_SIZE", "not-a-number")
	f := newFakes()

	_, _, err := f.run(t, "", "config", "set-profile", "--name", "work")
	require.NoError(t, err)
}
