// Package config loads engine settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "HRAGENT_CONFIG"
	databaseDSNEnv = "HRAGENT_DATABASE_DSN"
	aiAPIKeyEnv    = "HRAGENT_AI_API_KEY"
	aiModelEnv     = "HRAGENT_AI_MODEL"
	aiEndpointEnv  = "HRAGENT_AI_ENDPOINT"
	logLevelEnv    = "HRAGENT_LOG_LEVEL"
	workerCountEnv = "HRAGENT_WORKER_COUNT"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Screening ScreeningConfig `yaml:"screening"`
	AI        AIConfig        `yaml:"ai"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Export    ExportConfig    `yaml:"export"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes the store connection.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// ScreeningConfig drives the lifecycle engine.
type ScreeningConfig struct {
	ClaimBatchLimit  int      `yaml:"claimBatchLimit"`
	ChunkSize        int      `yaml:"chunkSize"`
	WorkerCount      int      `yaml:"workerCount"`
	StallTimeout     Duration `yaml:"stallTimeout"`
	SweepInterval    Duration `yaml:"sweepInterval"`
	SweepCron        string   `yaml:"sweepCron"`
	CycleInterval    Duration `yaml:"cycleInterval"`
	ChunkTimeout     Duration `yaml:"chunkTimeout"`
	MaxRetryAttempts int      `yaml:"maxRetryAttempts"`
	BaseTimeout      Duration `yaml:"baseTimeout"`
}

// AIConfig defines how to contact the scoring service.
type AIConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// IngestConfig drives the source-to-store ingestion loop.
type IngestConfig struct {
	Interval   Duration `yaml:"interval"`
	FetchLimit int      `yaml:"fetchLimit"`
}

// ExportConfig drives the result sync loop.
type ExportConfig struct {
	Interval  Duration `yaml:"interval"`
	BatchSize int      `yaml:"batchSize"`
}

// LoggingConfig selects the log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. Missing or unparseable files fall back to defaults.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv(aiAPIKeyEnv); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv(aiModelEnv); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv(aiEndpointEnv); v != "" {
		c.AI.Endpoint = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(workerCountEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Screening.WorkerCount = n
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	s := &base.Screening
	o := override.Screening
	if o.ClaimBatchLimit > 0 {
		s.ClaimBatchLimit = o.ClaimBatchLimit
	}
	if o.ChunkSize > 0 {
		s.ChunkSize = o.ChunkSize
	}
	if o.WorkerCount > 0 {
		s.WorkerCount = o.WorkerCount
	}
	if o.StallTimeout > 0 {
		s.StallTimeout = o.StallTimeout
	}
	if o.SweepInterval > 0 {
		s.SweepInterval = o.SweepInterval
	}
	if o.SweepCron != "" {
		s.SweepCron = o.SweepCron
	}
	if o.CycleInterval > 0 {
		s.CycleInterval = o.CycleInterval
	}
	if o.ChunkTimeout > 0 {
		s.ChunkTimeout = o.ChunkTimeout
	}
	if o.MaxRetryAttempts > 0 {
		s.MaxRetryAttempts = o.MaxRetryAttempts
	}
	if o.BaseTimeout > 0 {
		s.BaseTimeout = o.BaseTimeout
	}

	if override.AI.Endpoint != "" {
		base.AI.Endpoint = override.AI.Endpoint
	}
	if override.AI.Model != "" {
		base.AI.Model = override.AI.Model
	}
	if override.AI.APIKey != "" {
		base.AI.APIKey = override.AI.APIKey
	}

	if override.Ingest.Interval > 0 {
		base.Ingest.Interval = override.Ingest.Interval
	}
	if override.Ingest.FetchLimit > 0 {
		base.Ingest.FetchLimit = override.Ingest.FetchLimit
	}

	if override.Export.Interval > 0 {
		base.Export.Interval = override.Export.Interval
	}
	if override.Export.BatchSize > 0 {
		base.Export.BatchSize = override.Export.BatchSize
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{DSN: "hragent.db"},
		Screening: ScreeningConfig{
			ClaimBatchLimit:  50,
			ChunkSize:        10,
			WorkerCount:      5,
			StallTimeout:     Duration(30 * time.Minute),
			SweepInterval:    Duration(5 * time.Minute),
			CycleInterval:    Duration(60 * time.Second),
			ChunkTimeout:     Duration(5 * time.Minute),
			MaxRetryAttempts: 5,
			BaseTimeout:      Duration(60 * time.Second),
		},
		AI: AIConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
			APIKey:   "",
		},
		Ingest: IngestConfig{
			Interval:   Duration(5 * time.Minute),
			FetchLimit: 200,
		},
		Export: ExportConfig{
			Interval:  Duration(5 * time.Minute),
			BatchSize: 100,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
