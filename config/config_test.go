package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/BurntSushi/toml"
)

func setConfigPathForTest(t *testing.T, configPath string) {
	t.Helper()

	old := resolveConfigPath
	resolveConfigPath = func() (string, error) { return configPath, nil }
	t.Cleanup(func() { resolveConfigPath = old })
}

func TestLoadOrCreateConfigMissingCreatesDefault(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config", "config.toml")
	setConfigPathForTest(t, configPath)

	// Ensure missing
	if _, err := os.Stat(configPath); err == nil {
		t.Fatalf("expected config file to be missing")
	}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if !created {
		t.Fatalf("LoadOrCreateConfig() created=false, want true")
	}

	if _, err := os.Stat(configPath); err != nil {
		t.Fatalf("expected config file to be created: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if got.Server.Host != "127.0.0.1" {
		t.Fatalf("default server host = %q, want %q", got.Server.Host, "127.0.0.1")
	}
	if got.Server.Port != 8888 {
		t.Fatalf("default server port = %d, want %d", got.Server.Port, 8888)
	}
	if got.Policy.MaxSourceDurationSeconds != 600 {
		t.Fatalf("default max source duration = %d, want %d", got.Policy.MaxSourceDurationSeconds, 600)
	}
	if got.Policy.MaxClipSeconds != 8 {
		t.Fatalf("default max clip seconds = %d, want %d", got.Policy.MaxClipSeconds, 8)
	}
	if got.Cleanup.UploadMaxAgeMinutes != 60 {
		t.Fatalf("default upload max age = %d, want %d", got.Cleanup.UploadMaxAgeMinutes, 60)
	}
}

func TestLoadOrCreateConfigLoadsExisting(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "config.toml")
	setConfigPathForTest(t, configPath)

	Conf = defaultConfig()
	Conf.Server.Host = "0.0.0.0"
	Conf.Server.Port = 9999
	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	Conf = Config{}

	created, err := LoadOrCreateConfig()
	if err != nil {
		t.Fatalf("LoadOrCreateConfig() error: %v", err)
	}
	if created {
		t.Fatal("LoadOrCreateConfig() created=true, want false for existing file")
	}

	if Conf.Server.Host != "0.0.0.0" {
		t.Fatalf("loaded server host = %q, want %q", Conf.Server.Host, "0.0.0.0")
	}
	if Conf.Server.Port != 9999 {
		t.Fatalf("loaded server port = %d, want %d", Conf.Server.Port, 9999)
	}
}

func TestSaveConfigCreatesParentDirs(t *testing.T) {
	tmp := t.TempDir()

	configPath := filepath.Join(tmp, "deep", "nest", "config.toml")
	setConfigPathForTest(t, configPath)

	Conf = defaultConfig()
	Conf.Server.Port = 9999

	if err := SaveConfig(); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	if _, err := os.Stat(filepath.Dir(configPath)); err != nil {
		t.Fatalf("expected parent directories to exist: %v", err)
	}

	var got Config
	if _, err := toml.DecodeFile(configPath, &got); err != nil {
		t.Fatalf("decode saved config: %v", err)
	}
	if got.Server.Port != 9999 {
		t.Fatalf("saved server port = %d, want %d", got.Server.Port, 9999)
	}
}

func TestPolicyDurations(t *testing.T) {
	p := Policy{ProbeTimeoutSeconds: 15, RenderTimeoutSeconds: 300}

	if got, want := p.ProbeTimeout().Seconds(), 15.0; got != want {
		t.Fatalf("ProbeTimeout() = %vs, want %vs", got, want)
	}
	if got, want := p.RenderTimeout().Seconds(), 300.0; got != want {
		t.Fatalf("RenderTimeout() = %vs, want %vs", got, want)
	}
}
