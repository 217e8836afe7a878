package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yourorg/crawl-storage/internal/dataset"
	"github.com/yourorg/crawl-storage/internal/storage"
)

// Config holds everything the api and worker binaries read from the environment.
type Config struct {
	Backend     storage.Backend
	Project     string
	Bucket      string
	Token       string
	FileRoot    string
	TablePath   string
	BlobPath    string
	NameCache   string // badger dir; empty keeps the name cache in memory only
	Parquet     []dataset.Option
	MaxBlob     int64
	MaxTable    int64 // Arrow IPC request body limit
	Port        string
	LogLevel    string
	MetricsAddr string

	TemporalAddr string
	Namespace    string
	TaskQueue    string

	AllowOrigins []string
}

// FromEnv loads configuration from environment variables, after merging a
// .env file from the working directory if one exists.
func FromEnv() (Config, error) {
	_ = godotenv.Load()

	backend, err := storage.ParseBackend(getEnv("STORAGE_BACKEND", "gs"))
	if err != nil {
		return Config{}, err
	}
	codec, err := dataset.ParseCompression(os.Getenv("PARQUET_COMPRESSION"))
	if err != nil {
		return Config{}, err
	}
	maxBlob, err := getEnvInt64("MAX_BLOB_BYTES", 64<<20)
	if err != nil {
		return Config{}, err
	}
	maxTable, err := getEnvInt64("MAX_TABLE_BYTES", 256<<20)
	if err != nil {
		return Config{}, err
	}
	rowGroup, err := getEnvInt64("PARQUET_ROW_GROUP", dataset.DefaultRowGroupSize)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Backend:      backend,
		Project:      os.Getenv("STORAGE_PROJECT"),
		Bucket:       os.Getenv("STORAGE_BUCKET"),
		Token:        os.Getenv("STORAGE_TOKEN"),
		FileRoot:     getEnv("STORAGE_FILE_ROOT", "/var/crawl-storage"),
		TablePath:    getEnv("TABLE_BASE_PATH", "crawl-data"),
		BlobPath:     getEnv("BLOB_BASE_PATH", "crawl-data/content"),
		NameCache:    os.Getenv("NAME_CACHE_DIR"),
		MaxBlob:      maxBlob,
		MaxTable:     maxTable,
		Port:         getEnv("PORT", "8080"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MetricsAddr:  getEnv("METRICS_ADDR", ":9090"),
		TemporalAddr: getEnv("TEMPORAL_TARGET_HOST", getEnv("TEMPORAL_ADDRESS", "localhost:7233")),
		Namespace:    getEnv("TEMPORAL_NAMESPACE", "default"),
		TaskQueue:    getEnv("TEMPORAL_TASK_QUEUE", "crawl-storage"),
		AllowOrigins: splitList(getEnv("ALLOW_ORIGINS", "*")),
	}
	cfg.Parquet = []dataset.Option{
		dataset.WithCompression(codec),
		dataset.WithRowGroupSize(rowGroup),
	}
	if cfg.Bucket == "" {
		return Config{}, errors.New("STORAGE_BUCKET is required")
	}
	return cfg, nil
}

// TableTarget is where the structured sink writes.
func (c Config) TableTarget() storage.Target { return c.target(c.TablePath) }

// BlobTarget is where the unstructured sink writes.
func (c Config) BlobTarget() storage.Target { return c.target(c.BlobPath) }

func (c Config) target(base string) storage.Target {
	return storage.Target{
		Backend:  c.Backend,
		Project:  c.Project,
		Bucket:   c.Bucket,
		BasePath: base,
		Token:    c.Token,
		Root:     c.FileRoot,
	}
}

// Logger builds a production zap logger at the configured level.
func (c Config) Logger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt64 returns def when key is unset and an error when it is set to
// anything but a positive integer.
func getEnvInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %d", key, n)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
