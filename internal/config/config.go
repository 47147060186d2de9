package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Coordinate modes a dataset can declare.
const (
	CoordsPercent = "percent"
	CoordsPixel   = "pixel"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Sheets   SheetsConfig
	Cache    CacheConfig
	Assets   AssetsConfig
	CORS     CORSConfig
	Datasets []DatasetConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// SheetsConfig holds remote spreadsheet fetch configuration.
type SheetsConfig struct {
	// BaseURL is the spreadsheet document URL without the /export suffix.
	BaseURL string
	// Timeout bounds a single export request.
	Timeout time.Duration
	// Retries is the total number of fetch attempts per load.
	Retries int
}

// CacheConfig holds normalized-dataset cache configuration.
type CacheConfig struct {
	// TTL is how long a loaded dataset is reused before re-fetching.
	TTL time.Duration
	// MaxEntries bounds the cache; one entry per dataset is plenty.
	MaxEntries int
}

// AssetsConfig holds background image configuration.
type AssetsConfig struct {
	// ImageDir is the directory containing the layout images.
	ImageDir string
}

// CORSConfig holds CORS configuration.
type CORSConfig struct {
	Origins []string
}

// OwnerColor is one palette entry. Entries are a list, not a map, so
// the legend and summary preserve the configured owner order.
type OwnerColor struct {
	Owner string `mapstructure:"owner"`
	Color string `mapstructure:"color"`
}

// DatasetConfig describes one site section (one dashboard tab): where
// its sheet lives, which layout image and coordinate mode it uses, and
// its owner palette.
type DatasetConfig struct {
	ID          string       `mapstructure:"id"`
	Title       string       `mapstructure:"title"`
	SheetGID    string       `mapstructure:"sheet_gid"`
	Image       string       `mapstructure:"image"`
	Coordinates string       `mapstructure:"coordinates"`
	Palette     []OwnerColor `mapstructure:"palette"`

	// Percent-mode parameters; zero values fall back to the geo
	// package defaults.
	WidthScale float64 `mapstructure:"width_scale"`
	Stretch    float64 `mapstructure:"stretch"`
}

// ColorMap returns the palette as an owner -> color lookup.
func (d DatasetConfig) ColorMap() map[string]string {
	m := make(map[string]string, len(d.Palette))
	for _, oc := range d.Palette {
		m[oc.Owner] = oc.Color
	}
	return m
}

// Roster returns the palette owners in configured order. This is the
// default owner selection when a request names none.
func (d DatasetConfig) Roster() []string {
	owners := make([]string, len(d.Palette))
	for i, oc := range d.Palette {
		owners[i] = oc.Owner
	}
	return owners
}

// Load reads configuration from environment variables and the dataset
// file. It uses viper for both and provides development defaults for
// everything except the spreadsheet URL and dataset list.
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults for development
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("FETCH_TIMEOUT", "30s")
	v.SetDefault("FETCH_RETRIES", 3)
	v.SetDefault("CACHE_TTL", "30m")
	v.SetDefault("CACHE_MAX_ENTRIES", 16)
	v.SetDefault("IMAGE_DIR", "./images")
	v.SetDefault("DATASETS_FILE", "./datasets.yaml")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000,http://localhost:3001")

	// Bind environment variables
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Sheets: SheetsConfig{
			BaseURL: v.GetString("SHEET_BASE_URL"),
			Timeout: v.GetDuration("FETCH_TIMEOUT"),
			Retries: v.GetInt("FETCH_RETRIES"),
		},
		Cache: CacheConfig{
			TTL:        v.GetDuration("CACHE_TTL"),
			MaxEntries: v.GetInt("CACHE_MAX_ENTRIES"),
		},
		Assets: AssetsConfig{
			ImageDir: v.GetString("IMAGE_DIR"),
		},
		CORS: CORSConfig{
			Origins: parseOrigins(v.GetString("CORS_ORIGINS")),
		},
	}

	datasets, err := loadDatasets(v.GetString("DATASETS_FILE"))
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset config: %w", err)
	}
	cfg.Datasets = datasets

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadDatasets reads the dataset list from the given YAML file.
func loadDatasets(path string) ([]DatasetConfig, error) {
	dv := viper.New()
	dv.SetConfigFile(path)

	if err := dv.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var datasets []DatasetConfig
	if err := dv.UnmarshalKey("datasets", &datasets); err != nil {
		return nil, fmt.Errorf("failed to parse datasets: %w", err)
	}
	return datasets, nil
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Sheets.BaseURL == "" {
		return fmt.Errorf("SHEET_BASE_URL is required")
	}
	if c.Sheets.Timeout <= 0 {
		return fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.Sheets.Retries < 1 {
		return fmt.Errorf("FETCH_RETRIES must be at least 1")
	}

	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1")
	}

	if len(c.CORS.Origins) == 0 {
		return fmt.Errorf("CORS_ORIGINS is required")
	}

	if len(c.Datasets) == 0 {
		return fmt.Errorf("at least one dataset must be configured")
	}
	seen := make(map[string]bool, len(c.Datasets))
	for _, ds := range c.Datasets {
		if err := ds.Validate(); err != nil {
			return fmt.Errorf("dataset %q: %w", ds.ID, err)
		}
		if seen[ds.ID] {
			return fmt.Errorf("duplicate dataset id %q", ds.ID)
		}
		seen[ds.ID] = true
	}

	return nil
}

// Validate checks one dataset entry.
func (d DatasetConfig) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("id is required")
	}
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.Coordinates != CoordsPercent && d.Coordinates != CoordsPixel {
		return fmt.Errorf("coordinates must be %q or %q, got %q",
			CoordsPercent, CoordsPixel, d.Coordinates)
	}
	if d.Coordinates == CoordsPixel && d.Image == "" {
		return fmt.Errorf("image is required for pixel coordinates")
	}
	if len(d.Palette) == 0 {
		return fmt.Errorf("palette must name at least one owner")
	}
	for _, oc := range d.Palette {
		if oc.Owner == "" || oc.Color == "" {
			return fmt.Errorf("palette entries need both owner and color")
		}
	}
	return nil
}

// parseOrigins splits a comma-separated string of origins into a slice.
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
