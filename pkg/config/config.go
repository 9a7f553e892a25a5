package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Download strategies
const (
	StrategyPreserve = "preserve"
	StrategyJPEG     = "jpeg"
)

// Config holds all configuration options for the image downloader
type Config struct {
	// Custom Search API credentials and filters
	Search SearchConfig `yaml:"search" json:"search"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`
}

// SearchConfig holds Custom Search API configuration
type SearchConfig struct {
	APIKey   string        `yaml:"api_key" json:"api_key"`
	EngineID string        `yaml:"engine_id" json:"engine_id"`
	BaseURL  string        `yaml:"base_url" json:"base_url"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout"`
	Safe     string        `yaml:"safe" json:"safe"`
	ImgSize  string        `yaml:"img_size" json:"img_size"`
	ImgType  string        `yaml:"img_type" json:"img_type"`
	FileType string        `yaml:"file_type" json:"file_type"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	OutputDirectory string        `yaml:"output_directory" json:"output_directory"`
	Target          int           `yaml:"target" json:"target"`
	Strategy        string        `yaml:"strategy" json:"strategy"`
	JPEGQuality     int           `yaml:"jpeg_quality" json:"jpeg_quality"`
	Timeout         time.Duration `yaml:"timeout" json:"timeout"`
	MaxFileSize     int64         `yaml:"max_file_size" json:"max_file_size"`
	MinWidth        int           `yaml:"min_width" json:"min_width"`
	MinHeight       int           `yaml:"min_height" json:"min_height"`
	MaxPages        int           `yaml:"max_pages" json:"max_pages"`
	SaveMetadata    bool          `yaml:"save_metadata" json:"save_metadata"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" json:"level"`
	File       string `yaml:"file" json:"file"`
	MaxSize    int    `yaml:"max_size" json:"max_size"`
	MaxBackups int    `yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `yaml:"max_age" json:"max_age"`
	Compress   bool   `yaml:"compress" json:"compress"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" json:"textfile_path"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			BaseURL: "https://www.googleapis.com/customsearch/v1",
			Timeout: 30 * time.Second,
		},
		Download: DownloadConfig{
			OutputDirectory: "images",
			Target:          500,
			Strategy:        StrategyPreserve,
			JPEGQuality:     90,
			Timeout:         60 * time.Second,
			MaxFileSize:     64 << 20,
			MinWidth:        0,
			MinHeight:       0,
			MaxPages:        0, // 0 means no limit
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   false,
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if apiKey := os.Getenv("GIMGDL_API_KEY"); apiKey != "" {
		c.Search.APIKey = apiKey
	}
	if engineID := os.Getenv("GIMGDL_ENGINE_ID"); engineID != "" {
		c.Search.EngineID = engineID
	}
	if baseURL := os.Getenv("GIMGDL_BASE_URL"); baseURL != "" {
		c.Search.BaseURL = baseURL
	}

	if outputDir := os.Getenv("GIMGDL_OUTPUT_DIR"); outputDir != "" {
		c.Download.OutputDirectory = outputDir
	}
	if target := os.Getenv("GIMGDL_TARGET"); target != "" {
		val, err := strconv.Atoi(target)
		if err != nil {
			return fmt.Errorf("invalid GIMGDL_TARGET %q: %w", target, err)
		}
		c.Download.Target = val
	}
	if strategy := os.Getenv("GIMGDL_STRATEGY"); strategy != "" {
		c.Download.Strategy = strategy
	}

	if logLevel := os.Getenv("GIMGDL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFile := os.Getenv("GIMGDL_LOG_FILE"); logFile != "" {
		c.Logging.File = logFile
	}

	if metricsFile := os.Getenv("GIMGDL_METRICS_FILE"); metricsFile != "" {
		c.Metrics.TextfilePath = metricsFile
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".gimgdl.yaml",
		".gimgdl.yml",
		filepath.Join(home, ".config", "gimgdl", "config.yaml"),
		filepath.Join(home, ".config", "gimgdl", "config.yml"),
		filepath.Join(home, ".gimgdl.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Search.APIKey == "" {
		errs = append(errs, errors.New("API key is required"))
	}
	if c.Search.EngineID == "" {
		errs = append(errs, errors.New("search engine ID is required"))
	}
	if c.Search.BaseURL == "" {
		errs = append(errs, errors.New("search base URL is required"))
	}
	if c.Search.Timeout <= 0 {
		errs = append(errs, errors.New("search timeout must be positive"))
	}

	if c.Download.OutputDirectory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Download.Target <= 0 {
		errs = append(errs, errors.New("target image count must be positive"))
	}
	switch strings.ToLower(c.Download.Strategy) {
	case StrategyPreserve, StrategyJPEG:
	default:
		errs = append(errs, fmt.Errorf("invalid download strategy %q", c.Download.Strategy))
	}
	if c.Download.JPEGQuality < 1 || c.Download.JPEGQuality > 100 {
		errs = append(errs, errors.New("jpeg quality must be between 1 and 100"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.MaxFileSize < 0 {
		errs = append(errs, errors.New("max file size cannot be negative"))
	}
	if c.Download.MinWidth < 0 || c.Download.MinHeight < 0 {
		errs = append(errs, errors.New("minimum dimensions cannot be negative"))
	}
	if c.Download.MaxPages < 0 {
		errs = append(errs, errors.New("max pages cannot be negative"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// The file may hold an API key
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if v, ok := flags["api-key"].(string); ok && v != "" {
		c.Search.APIKey = v
	}
	if v, ok := flags["engine-id"].(string); ok && v != "" {
		c.Search.EngineID = v
	}
	if v, ok := flags["safe"].(string); ok && v != "" {
		c.Search.Safe = v
	}
	if v, ok := flags["img-size"].(string); ok && v != "" {
		c.Search.ImgSize = v
	}
	if v, ok := flags["img-type"].(string); ok && v != "" {
		c.Search.ImgType = v
	}
	if v, ok := flags["file-type"].(string); ok && v != "" {
		c.Search.FileType = v
	}
	if v, ok := flags["timeout"].(time.Duration); ok && v > 0 {
		c.Search.Timeout = v
		c.Download.Timeout = v
	}
	if v, ok := flags["output"].(string); ok && v != "" {
		c.Download.OutputDirectory = v
	}
	if v, ok := flags["target"].(int); ok {
		c.Download.Target = v
	}
	if v, ok := flags["strategy"].(string); ok && v != "" {
		c.Download.Strategy = v
	}
	if v, ok := flags["min-width"].(int); ok {
		c.Download.MinWidth = v
	}
	if v, ok := flags["min-height"].(int); ok {
		c.Download.MinHeight = v
	}
	if v, ok := flags["max-pages"].(int); ok {
		c.Download.MaxPages = v
	}
	if v, ok := flags["save-metadata"].(bool); ok {
		c.Download.SaveMetadata = v
	}
	if v, ok := flags["log-level"].(string); ok && v != "" {
		c.Logging.Level = v
	}
	if v, ok := flags["metrics-file"].(string); ok && v != "" {
		c.Metrics.TextfilePath = v
	}
}

// Resolve builds the configuration from all sources without validating it.
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Resolve(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".gimgdl.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	return config, nil
}

// Load resolves the configuration and validates the result
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	config, err := Resolve(configPath, flags)
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// MaskSecret hides all but the last four characters of a credential
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}
