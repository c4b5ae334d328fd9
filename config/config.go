// Package config loads the service configuration from a YAML file, an optional
// .env file and environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Paths     PathsConfig     `yaml:"paths"`
	Datasets  DatasetsConfig  `yaml:"datasets"`
	Training  TrainingConfig  `yaml:"training"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	Notebooks NotebooksConfig `yaml:"notebooks"`
}

type ServerConfig struct {
	Port           int           `yaml:"port"`
	Timeout        time.Duration `yaml:"timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

type PathsConfig struct {
	DatasetsDir        string `yaml:"datasets_dir"`
	NotebooksSourceDir string `yaml:"notebooks_source_dir"`
	NotebooksDir       string `yaml:"notebooks_dir"`
}

// DatasetsConfig holds dataset file names relative to Paths.DatasetsDir.
type DatasetsConfig struct {
	Heart    string `yaml:"heart"`
	Diabetes string `yaml:"diabetes"`
}

// DatasetPath joins the datasets directory with the file configured for a
// disease key ("heart" or "diabetes").
func (c *Config) DatasetPath(disease string) (string, bool) {
	var name string
	switch disease {
	case "heart":
		name = c.Datasets.Heart
	case "diabetes":
		name = c.Datasets.Diabetes
	default:
		return "", false
	}
	return filepath.Join(c.Paths.DatasetsDir, name), true
}

type TrainingConfig struct {
	TestRatio       float64 `yaml:"test_ratio"`
	Seed            int64   `yaml:"seed"`
	KNNNeighbors    int     `yaml:"knn_neighbors"`
	MaxTreeDepth    int     `yaml:"max_tree_depth"`
	LogisticC       float64 `yaml:"logistic_c"`
	LogisticMaxIter int     `yaml:"logistic_max_iter"`
}

type DatabaseConfig struct {
	Path              string `yaml:"path"`
	RecordPredictions bool   `yaml:"record_predictions"`
}

type CacheConfig struct {
	Size int `yaml:"size"`
}

type NotebooksConfig struct {
	Watch bool `yaml:"watch"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           8000,
			Timeout:        30 * time.Second,
			AllowedOrigins: []string{"*"},
			MaxBodyBytes:   1 << 20,
		},
		Log: LogConfig{
			Level:      "info",
			Format:     "json",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Paths: PathsConfig{
			DatasetsDir:        "../datasets",
			NotebooksSourceDir: "..",
			NotebooksDir:       "./notebooks",
		},
		Datasets: DatasetsConfig{
			Heart:    "Heart_Disease_Prediction.csv",
			Diabetes: "Dataset 1 _ Pima Indians diabetes dataset (PIDD).csv",
		},
		Training: TrainingConfig{
			TestRatio:       0.2,
			Seed:            42,
			KNNNeighbors:    5,
			MaxTreeDepth:    0,
			LogisticC:       1.0,
			LogisticMaxIter: 100,
		},
		Database: DatabaseConfig{
			Path:              "./data/medicare.db",
			RecordPredictions: true,
		},
		Cache: CacheConfig{
			Size: 1024,
		},
		Notebooks: NotebooksConfig{
			Watch: true,
		},
	}
}

// Load reads path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(config); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("MEDICARE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MEDICARE_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("MEDICARE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("MEDICARE_DATASETS_DIR"); v != "" {
		c.Paths.DatasetsDir = v
	}
	if v := os.Getenv("MEDICARE_NOTEBOOKS_SOURCE_DIR"); v != "" {
		c.Paths.NotebooksSourceDir = v
	}
	if v := os.Getenv("MEDICARE_NOTEBOOKS_DIR"); v != "" {
		c.Paths.NotebooksDir = v
	}
	if v := os.Getenv("MEDICARE_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	return nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return errors.New("server.timeout must be positive")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New("server.max_body_bytes must be positive")
	}
	if c.Training.TestRatio <= 0 || c.Training.TestRatio >= 1 {
		return fmt.Errorf("training.test_ratio must be in (0,1): %v", c.Training.TestRatio)
	}
	if c.Training.KNNNeighbors <= 0 {
		return errors.New("training.knn_neighbors must be positive")
	}
	if c.Training.LogisticC <= 0 {
		return errors.New("training.logistic_c must be positive")
	}
	if c.Training.LogisticMaxIter <= 0 {
		return errors.New("training.logistic_max_iter must be positive")
	}
	if c.Cache.Size < 0 {
		return errors.New("cache.size must not be negative")
	}
	return nil
}
