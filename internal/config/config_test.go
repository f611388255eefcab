package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Playback.Volume != 70 {
		t.Errorf("default volume = %d, want 70", cfg.Playback.Volume)
	}
	if !cfg.Playback.Scrobble {
		t.Error("scrobbling should default to on")
	}
}

func TestLoadFrom_ParsesAndClamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"server": {"url": "https://music.example.com", "username": "alice", "password": "pw"},
		"playback": {"volume": 150, "shuffle": true, "scrobble": false}
	}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Server.URL != "https://music.example.com" {
		t.Errorf("url = %q", cfg.Server.URL)
	}
	if cfg.Playback.Volume != 100 {
		t.Errorf("volume = %d, want clamped 100", cfg.Playback.Volume)
	}
	if !cfg.Playback.Shuffle || cfg.Playback.Scrobble {
		t.Errorf("playback = %+v", cfg.Playback)
	}
}

func TestLoadFrom_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{nope"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Error("empty server config should not validate")
	}

	cfg.Server.URL = "https://music.example.com"
	if err := cfg.Validate(); err == nil {
		t.Error("missing username should not validate")
	}

	cfg.Server.Username = "alice"
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}
