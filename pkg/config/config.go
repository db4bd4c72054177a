package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PagePlaceholder is replaced by the page index in SiteConfig.PageURLTemplate
const PagePlaceholder = "{page}"

// Config holds all configuration options for the flip-book downloader
type Config struct {
	// Target site
	Site SiteConfig `yaml:"site" json:"site"`

	// Page range
	Pages PagesConfig `yaml:"pages" json:"pages"`

	// Output settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Browser settings
	Browser BrowserConfig `yaml:"browser" json:"browser"`

	// Download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Metrics export
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SiteConfig describes the web application the pages are read from
type SiteConfig struct {
	Origin          string `yaml:"origin" json:"origin"`
	EntryURL        string `yaml:"entry_url" json:"entry_url"`
	PageURLTemplate string `yaml:"page_url_template" json:"page_url_template"`
	ImagePathPrefix string `yaml:"image_path_prefix" json:"image_path_prefix"`
}

// PagesConfig holds the page range to retrieve
type PagesConfig struct {
	Total int `yaml:"total" json:"total"`
	First int `yaml:"first" json:"first"`
}

// OutputConfig holds output directory configuration
type OutputConfig struct {
	Directory      string `yaml:"directory" json:"directory"`
	Extension      string `yaml:"extension" json:"extension"`
	DebugDirectory string `yaml:"debug_directory" json:"debug_directory"`
}

// BrowserConfig holds the Chrome session configuration
type BrowserConfig struct {
	Headless          bool          `yaml:"headless" json:"headless"`
	ExecPath          string        `yaml:"exec_path" json:"exec_path"`
	UserDataDir       string        `yaml:"user_data_dir" json:"user_data_dir"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent"`
	WindowWidth       int           `yaml:"window_width" json:"window_width"`
	WindowHeight      int           `yaml:"window_height" json:"window_height"`
	LookupTimeout     time.Duration `yaml:"lookup_timeout" json:"lookup_timeout"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout" json:"navigation_timeout"`
}

// DownloadConfig holds download-specific configuration
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
	ChunkSize int           `yaml:"chunk_size" json:"chunk_size"`
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
	// Headers are added to every image request, e.g. Referer
	Headers map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	// Textfile is a node_exporter textfile collector path; empty disables export
	Textfile string `yaml:"textfile" json:"textfile"`
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

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Origin:          "https://eduka.lt",
			EntryURL:        "https://eduka.lt/auth",
			PageURLTemplate: "https://eduka.lt/publisher/material/open/theory/49429/601?teachingPackageId=601&teachingGroupCreation=0&lesson=52845&subtype=tasks&pageFlip={page}",
			ImagePathPrefix: "/teaching-tool-page-image/",
		},
		Pages: PagesConfig{
			Total: 226,
			First: 1,
		},
		Output: OutputConfig{
			Directory:      "matematika9",
			Extension:      "png",
			DebugDirectory: ".",
		},
		Browser: BrowserConfig{
			Headless:          false,
			WindowWidth:       1280,
			WindowHeight:      900,
			LookupTimeout:     5 * time.Second,
			NavigationTimeout: 60 * time.Second,
		},
		Download: DownloadConfig{
			Timeout:   60 * time.Second,
			ChunkSize: 1024,
			PageDelay: 500 * time.Millisecond,
		},
		Notifications: NotificationConfig{
			Enabled: true,
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

// PageURL returns the browser URL for the given page index
func (c *Config) PageURL(index int) string {
	return strings.ReplaceAll(c.Site.PageURLTemplate, PagePlaceholder, strconv.Itoa(index))
}

// ImageURL returns the absolute image URL for a path extracted from page markup
func (c *Config) ImageURL(path string) string {
	return strings.TrimRight(c.Site.Origin, "/") + path
}

// LastPage returns the final page index of the configured range
func (c *Config) LastPage() int {
	return c.Pages.First + c.Pages.Total - 1
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	var errs []error

	if origin := os.Getenv("FLIPDL_ORIGIN"); origin != "" {
		c.Site.Origin = origin
	}
	if entry := os.Getenv("FLIPDL_ENTRY_URL"); entry != "" {
		c.Site.EntryURL = entry
	}
	if tmpl := os.Getenv("FLIPDL_PAGE_URL_TEMPLATE"); tmpl != "" {
		c.Site.PageURLTemplate = tmpl
	}

	if total := os.Getenv("FLIPDL_TOTAL_PAGES"); total != "" {
		val, err := strconv.Atoi(total)
		if err != nil {
			errs = append(errs, fmt.Errorf("FLIPDL_TOTAL_PAGES: %w", err))
		} else {
			c.Pages.Total = val
		}
	}

	if outputDir := os.Getenv("FLIPDL_OUTPUT_DIR"); outputDir != "" {
		c.Output.Directory = outputDir
	}
	if debugDir := os.Getenv("FLIPDL_DEBUG_DIR"); debugDir != "" {
		c.Output.DebugDirectory = debugDir
	}

	if headless := os.Getenv("FLIPDL_HEADLESS"); headless != "" {
		c.Browser.Headless = strings.ToLower(headless) == "true"
	}
	if execPath := os.Getenv("FLIPDL_CHROME_PATH"); execPath != "" {
		c.Browser.ExecPath = execPath
	}
	if profile := os.Getenv("FLIPDL_USER_DATA_DIR"); profile != "" {
		c.Browser.UserDataDir = profile
	}

	if timeout := os.Getenv("FLIPDL_LOOKUP_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			errs = append(errs, fmt.Errorf("FLIPDL_LOOKUP_TIMEOUT: %w", err))
		} else {
			c.Browser.LookupTimeout = d
		}
	}
	if delay := os.Getenv("FLIPDL_PAGE_DELAY"); delay != "" {
		d, err := time.ParseDuration(delay)
		if err != nil {
			errs = append(errs, fmt.Errorf("FLIPDL_PAGE_DELAY: %w", err))
		} else {
			c.Download.PageDelay = d
		}
	}

	if notifEnabled := os.Getenv("FLIPDL_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}
	if textfile := os.Getenv("FLIPDL_METRICS_TEXTFILE"); textfile != "" {
		c.Metrics.Textfile = textfile
	}
	if logLevel := os.Getenv("FLIPDL_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return errors.Join(errs...)
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
		"flipdl.yaml",
		".flipdl.yaml",
		".flipdl.yml",
		filepath.Join(home, ".config", "flipdl", "config.yaml"),
		filepath.Join(home, ".config", "flipdl", "config.yml"),
		filepath.Join(home, ".flipdl.yaml"),
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

	// Site
	if u, err := url.Parse(c.Site.Origin); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, errors.New("site origin must be an absolute URL"))
	}
	if c.Site.EntryURL == "" {
		errs = append(errs, errors.New("site entry URL is required"))
	}
	if !strings.Contains(c.Site.PageURLTemplate, PagePlaceholder) {
		errs = append(errs, fmt.Errorf("page URL template must contain %s", PagePlaceholder))
	}
	if c.Site.ImagePathPrefix == "" {
		errs = append(errs, errors.New("image path prefix is required"))
	}
	if strings.ContainsAny(c.Site.ImagePathPrefix, `"'`) {
		errs = append(errs, errors.New("image path prefix cannot contain quotes"))
	}

	// Pages
	if c.Pages.Total <= 0 {
		errs = append(errs, errors.New("total pages must be positive"))
	}
	if c.Pages.First <= 0 {
		errs = append(errs, errors.New("first page must be positive"))
	}

	// Output
	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	if c.Output.Extension == "" || strings.Contains(c.Output.Extension, ".") {
		errs = append(errs, errors.New("output extension must be non-empty and without a dot"))
	}

	// Browser
	if c.Browser.LookupTimeout <= 0 {
		errs = append(errs, errors.New("lookup timeout must be positive"))
	}
	if c.Browser.NavigationTimeout < 0 {
		errs = append(errs, errors.New("navigation timeout cannot be negative"))
	}

	// Download
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Download.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk size must be positive"))
	}
	if c.Download.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}

	// Validate logging
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

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if total, ok := flags["pages"].(int); ok && total > 0 {
		c.Pages.Total = total
	}
	if first, ok := flags["first"].(int); ok && first > 0 {
		c.Pages.First = first
	}
	if outputDir, ok := flags["output"].(string); ok && outputDir != "" {
		c.Output.Directory = outputDir
	}
	if debugDir, ok := flags["debug-dir"].(string); ok && debugDir != "" {
		c.Output.DebugDirectory = debugDir
	}
	if tmpl, ok := flags["url-template"].(string); ok && tmpl != "" {
		c.Site.PageURLTemplate = tmpl
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Browser.Headless = headless
	}
	if profile, ok := flags["profile"].(string); ok && profile != "" {
		c.Browser.UserDataDir = profile
	}
	if timeout, ok := flags["lookup-timeout"].(time.Duration); ok && timeout > 0 {
		c.Browser.LookupTimeout = timeout
	}
	if delay, ok := flags["page-delay"].(time.Duration); ok && delay >= 0 {
		c.Download.PageDelay = delay
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if textfile, ok := flags["metrics-textfile"].(string); ok && textfile != "" {
		c.Metrics.Textfile = textfile
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".flipdl.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
