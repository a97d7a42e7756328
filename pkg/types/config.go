package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// PageTimeout bounds listing and detail page requests (default 30s).
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout"`

	// PDFTimeout bounds PDF body downloads (default 60s).
	PDFTimeout time.Duration `json:"pdf_timeout" yaml:"pdf_timeout"`

	// ErrorPause is how long a failed request waits before giving up its
	// result (default 5s).
	ErrorPause time.Duration `json:"error_pause" yaml:"error_pause"`

	// MaxRetries is the number of backoff retries beneath each fetch (default 4,
	// so five attempts in total).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Concurrency is the size of the process-wide request pool (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ScrapeConfig holds settings for phase 1: listing, resolution and download.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the proceedings site root (default "https://papers.nips.cc").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// ListingPath is the year listing path format (default "/paper/%d").
	ListingPath string `json:"listing_path" yaml:"listing_path"`

	// WorkDir holds checkpoint files and pdf_<year>/ directories.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Years lists the proceedings years to scrape.
	Years []int `json:"years" yaml:"years"`
}

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.0-flash").
	Model string `json:"model" yaml:"model"`

	// APIKey is the bearer credential for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for failed API calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// Timeout bounds a single model call (default 120s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// ClassifyConfig holds settings for phase 2: text extraction and classification.
type ClassifyConfig struct {
	AIConfig `yaml:",inline"`

	// WorkDir holds checkpoint files and pdf_<year>/ directories.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Years lists the proceedings years to classify, one run per year.
	Years []int `json:"years" yaml:"years"`

	// Canonicalize maps near-miss labels onto the discovered vocabulary.
	Canonicalize bool `json:"canonicalize" yaml:"canonicalize"`

	// ReuseCategories skips discovery when categories_<year>.yaml exists.
	ReuseCategories bool `json:"reuse_categories" yaml:"reuse_categories"`
}

// CatalogConfig holds settings for the SQLite catalog.
type CatalogConfig struct {
	// Path is the database file (default "<work_dir>/catalog.db").
	Path string `json:"path" yaml:"path"`
}

// LogConfig selects the logger output.
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Scrape   ScrapeConfig   `json:"scrape" yaml:"scrape"`
	Classify ClassifyConfig `json:"classify" yaml:"classify"`
	Catalog  CatalogConfig  `json:"catalog" yaml:"catalog"`
	Log      LogConfig      `json:"log" yaml:"log"`
}
