package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store" mapstructure:"store"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	PDF     PDFConfig     `yaml:"pdf" mapstructure:"pdf"`
	Chunk   ChunkConfig   `yaml:"chunk" mapstructure:"chunk"`
	Embed   EmbedConfig   `yaml:"embed" mapstructure:"embed"`
	Ingest  IngestConfig  `yaml:"ingest" mapstructure:"ingest"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string     `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string     `yaml:"database_url" mapstructure:"database_url"`
	SQLitePath  string     `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	Pool        PoolConfig `yaml:"pool" mapstructure:"pool"`
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// FetchConfig configures URL text extraction.
type FetchConfig struct {
	TimeoutSecs    int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxChars       int     `yaml:"max_chars" mapstructure:"max_chars"`
	RatePerSecond  float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	UserAgent      string  `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes   int64   `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	MaxConcurrency int     `yaml:"max_concurrency" mapstructure:"max_concurrency"`
}

// PDFConfig configures PDF text extraction.
type PDFConfig struct {
	Provider      string `yaml:"provider" mapstructure:"provider"`
	PdfToTextPath string `yaml:"pdftotext_path" mapstructure:"pdftotext_path"`
}

// StorageConfig locates stored PDF blobs by storage key.
type StorageConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// ChunkConfig configures the evidence chunker.
type ChunkConfig struct {
	MaxChunkSize int `yaml:"max_chunk_size" mapstructure:"max_chunk_size"`
	OverlapSize  int `yaml:"overlap_size" mapstructure:"overlap_size"`
}

// EmbedConfig configures embedding generation.
type EmbedConfig struct {
	Provider   string `yaml:"provider" mapstructure:"provider"`
	Model      string `yaml:"model" mapstructure:"model"`
	Dimensions int    `yaml:"dimensions" mapstructure:"dimensions"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
	BatchSize  int    `yaml:"batch_size" mapstructure:"batch_size"`
}

// IngestConfig configures the workflow orchestrator and worker.
type IngestConfig struct {
	QueueSize int `yaml:"queue_size" mapstructure:"queue_size"`
	Workers   int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("VESTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.sqlite_path", "ingest.db")
	v.SetDefault("store.pool.max_conns", 10)
	v.SetDefault("store.pool.min_conns", 2)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_chars", 150_000)
	v.SetDefault("fetch.rate_per_second", 4)
	v.SetDefault("fetch.user_agent", "vestor-ingest/1.0 (Investor Profile Bot)")
	v.SetDefault("fetch.max_body_bytes", 2*1024*1024)
	v.SetDefault("fetch.max_concurrency", 4)
	v.SetDefault("pdf.provider", "stub")
	v.SetDefault("pdf.pdftotext_path", "pdftotext")
	v.SetDefault("storage.root", "storage")
	v.SetDefault("chunk.max_chunk_size", 1500)
	v.SetDefault("chunk.overlap_size", 200)
	v.SetDefault("embed.provider", "hash")
	v.SetDefault("embed.model", "text-embedding-stub")
	v.SetDefault("embed.dimensions", 1536)
	v.SetDefault("embed.base_url", "http://localhost:11434")
	v.SetDefault("embed.batch_size", 100)
	v.SetDefault("ingest.queue_size", 64)
	v.SetDefault("ingest.workers", 1)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
