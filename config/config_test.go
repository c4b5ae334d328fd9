package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	config, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Server.Port != 8000 {
		t.Fatalf("expected default port 8000, got %d", config.Server.Port)
	}
	if config.Training.Seed != 42 || config.Training.TestRatio != 0.2 {
		t.Fatalf("unexpected training defaults: %+v", config.Training)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9001
  timeout: 5s
training:
  seed: 7
datasets:
  heart: heart.csv
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDICARE_DB_PATH", "/tmp/audit.db")
	t.Setenv("MEDICARE_PORT", "9100")

	config, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Server.Port != 9100 {
		t.Fatalf("expected env port to win, got %d", config.Server.Port)
	}
	if config.Server.Timeout != 5*time.Second {
		t.Fatalf("expected 5s timeout, got %v", config.Server.Timeout)
	}
	if config.Training.Seed != 7 {
		t.Fatalf("expected seed 7, got %d", config.Training.Seed)
	}
	if config.Training.KNNNeighbors != 5 {
		t.Fatalf("expected default neighbors to survive partial file, got %d", config.Training.KNNNeighbors)
	}
	if config.Datasets.Heart != "heart.csv" {
		t.Fatalf("unexpected heart dataset: %s", config.Datasets.Heart)
	}
	if config.Database.Path != "/tmp/audit.db" {
		t.Fatalf("unexpected db path: %s", config.Database.Path)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MEDICARE_LOG_LEVEL", "")
	os.Unsetenv("MEDICARE_LOG_LEVEL")

	if err := os.WriteFile(".env", []byte("MEDICARE_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	config, err := Load("config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Log.Level != "debug" {
		t.Fatalf("expected level from .env, got %s", config.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}, wantErr: false},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: true},
		{name: "ratio too large", mutate: func(c *Config) { c.Training.TestRatio = 1 }, wantErr: true},
		{name: "no neighbors", mutate: func(c *Config) { c.Training.KNNNeighbors = 0 }, wantErr: true},
		{name: "negative cache", mutate: func(c *Config) { c.Cache.Size = -1 }, wantErr: true},
		{name: "cache disabled", mutate: func(c *Config) { c.Cache.Size = 0 }, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDatasetPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.DatasetsDir = "/data"

	got, ok := cfg.DatasetPath("heart")
	if !ok || got != filepath.Join("/data", "Heart_Disease_Prediction.csv") {
		t.Errorf("heart path = %q, %v", got, ok)
	}
	if _, ok := cfg.DatasetPath("lungs"); ok {
		t.Error("unknown disease resolved")
	}
}
