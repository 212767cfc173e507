package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string
	ProxyURL    string

	// Backup
	BackupDir   string
	Concurrency int
	GitBinary   string

	// Metadata storage
	StorageType  string // "jsonfile" or "sqlite"
	MetadataPath string
	SQLitePath   string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	backupDir := getEnv("BACKUP_DIR", defaultBackupDir())

	concurrency := 3
	if v := os.Getenv("BACKUP_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			concurrency = n
		}
	}

	return &Config{
		GitHubToken:  getEnv("GITHUB_TOKEN", ""),
		ProxyURL:     getEnv("PROXY_URL", ""),
		BackupDir:    backupDir,
		Concurrency:  concurrency,
		GitBinary:    getEnv("GIT_BINARY", "git"),
		StorageType:  getEnv("STORAGE_TYPE", "jsonfile"),
		MetadataPath: getEnv("METADATA_PATH", filepath.Join(backupDir, "backup_metadata.json")),
		SQLitePath:   getEnv("SQLITE_PATH", filepath.Join(backupDir, "backup_metadata.db")),
	}, nil
}

func defaultBackupDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./gitnav-backups"
	}
	return filepath.Join(home, "gitnav-backups")
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BackupDir == "" {
		return &ConfigError{Field: "BACKUP_DIR", Message: "backup directory is required"}
	}
	if c.Concurrency < 1 {
		return &ConfigError{Field: "BACKUP_CONCURRENCY", Message: "must be at least 1"}
	}
	if c.StorageType != "jsonfile" && c.StorageType != "sqlite" {
		return &ConfigError{Field: "STORAGE_TYPE", Message: "must be 'jsonfile' or 'sqlite'"}
	}
	if c.GitBinary == "" {
		return &ConfigError{Field: "GIT_BINARY", Message: "git binary path is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
