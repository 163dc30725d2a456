package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when the config file and environment omit a setting.
const (
	DefaultConfigPath    = "lawfetch.yml"
	DefaultBaseURL       = "https://luatvietnam.vn"
	DefaultOutputDir     = "downloads"
	DefaultWorklistPath  = "documents.xlsx"
	DefaultProgressPath  = "download_progress.txt"
	DefaultFailuresPath  = "failed_downloads.json"
	DefaultUserAgent     = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	DefaultProgressEvery = 10
	DefaultMaxWorkers    = 4
)

// Default timeouts and pacing.
const (
	DefaultPageTimeout     = 60 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
	DefaultIndicatorWait   = 10 * time.Second
	DefaultItemPause       = 3 * time.Second
)

// Size floors for artifact verification, in bytes.
const (
	DefaultMinArtifactSize = 1024
	DefaultMinPDFSize      = 2048
	DefaultSmallPDFWarn    = 10240
)

// Environment variable names recognized by Load. Each overrides the
// corresponding config-file field when set.
const (
	EnvBaseURL         = "LAWFETCH_BASE_URL"
	EnvOutputDir       = "LAWFETCH_OUTPUT_DIR"
	EnvWorklistPath    = "LAWFETCH_WORKLIST"
	EnvProgressPath    = "LAWFETCH_PROGRESS_FILE"
	EnvFailuresPath    = "LAWFETCH_FAILURES_FILE"
	EnvUserAgent       = "LAWFETCH_USER_AGENT"
	EnvPageTimeout     = "LAWFETCH_PAGE_TIMEOUT_SECONDS"
	EnvDownloadTimeout = "LAWFETCH_DOWNLOAD_TIMEOUT_SECONDS"
	EnvItemPause       = "LAWFETCH_ITEM_PAUSE_SECONDS"
	EnvMaxWorkers      = "LAWFETCH_MAX_WORKERS"
	EnvStrictPDF       = "LAWFETCH_STRICT_PDF"
)

// Settings holds the full runtime configuration. Values come from the
// optional YAML config file, then environment overrides, then defaults.
type Settings struct {
	// BaseURL is the site root all relative document URLs resolve against.
	BaseURL string `yaml:"base_url"`
	// OutputDir is where verified artifacts are stored.
	OutputDir string `yaml:"output_dir"`
	// WorklistPath is the .xlsx or .csv file listing documents to retrieve.
	WorklistPath string `yaml:"worklist"`
	// ProgressPath is the append-only log of completed source URLs.
	ProgressPath string `yaml:"progress_file"`
	// FailuresPath is the JSON store of failed attempts.
	FailuresPath string `yaml:"failures_file"`
	// UserAgent is sent on every request.
	UserAgent string `yaml:"user_agent"`

	// PageTimeout bounds a single source-page load.
	PageTimeout time.Duration `yaml:"page_timeout"`
	// DownloadTimeout bounds a single artifact retrieval.
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	// IndicatorWait bounds the post-login indicator poll.
	IndicatorWait time.Duration `yaml:"indicator_wait"`
	// ItemPause is the fixed pause between work items.
	ItemPause time.Duration `yaml:"item_pause"`

	// ProgressEvery controls how often aggregate progress is logged,
	// in processed items.
	ProgressEvery int `yaml:"progress_every"`
	// MaxWorkers bounds discovery-phase concurrency. The retrieval phase
	// is always sequential.
	MaxWorkers int `yaml:"max_workers"`

	// MinArtifactSize is the generic minimum size for a verified artifact.
	MinArtifactSize int64 `yaml:"min_artifact_size"`
	// MinPDFSize is the hard floor below which a PDF is rejected.
	MinPDFSize int64 `yaml:"min_pdf_size"`
	// SmallPDFWarn is the size under which a PDF is kept but flagged.
	SmallPDFWarn int64 `yaml:"small_pdf_warn"`

	// StrictPDF enables full-structure PDF validation after the magic-byte
	// check. Slower, off by default.
	StrictPDF bool `yaml:"strict_pdf"`
}

// Default returns a Settings populated entirely from defaults.
func Default() Settings {
	return Settings{
		BaseURL:         DefaultBaseURL,
		OutputDir:       DefaultOutputDir,
		WorklistPath:    DefaultWorklistPath,
		ProgressPath:    DefaultProgressPath,
		FailuresPath:    DefaultFailuresPath,
		UserAgent:       DefaultUserAgent,
		PageTimeout:     DefaultPageTimeout,
		DownloadTimeout: DefaultDownloadTimeout,
		IndicatorWait:   DefaultIndicatorWait,
		ItemPause:       DefaultItemPause,
		ProgressEvery:   DefaultProgressEvery,
		MaxWorkers:      DefaultMaxWorkers,
		MinArtifactSize: DefaultMinArtifactSize,
		MinPDFSize:      DefaultMinPDFSize,
		SmallPDFWarn:    DefaultSmallPDFWarn,
	}
}

// Load reads the YAML config file at path (missing file is not an error),
// applies environment overrides, fills gaps with defaults, and validates.
func Load(path string) (Settings, error) {
	s := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &s); err != nil {
				return Settings{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return Settings{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	s.applyEnv()
	s.fillDefaults()

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	s.BaseURL = getenv(EnvBaseURL, s.BaseURL)
	s.OutputDir = getenv(EnvOutputDir, s.OutputDir)
	s.WorklistPath = getenv(EnvWorklistPath, s.WorklistPath)
	s.ProgressPath = getenv(EnvProgressPath, s.ProgressPath)
	s.FailuresPath = getenv(EnvFailuresPath, s.FailuresPath)
	s.UserAgent = getenv(EnvUserAgent, s.UserAgent)
	s.PageTimeout = getenvSeconds(EnvPageTimeout, s.PageTimeout)
	s.DownloadTimeout = getenvSeconds(EnvDownloadTimeout, s.DownloadTimeout)
	s.ItemPause = getenvSeconds(EnvItemPause, s.ItemPause)
	s.MaxWorkers = getenvInt(EnvMaxWorkers, s.MaxWorkers)
	s.StrictPDF = getenvBool(EnvStrictPDF, s.StrictPDF)
}

// fillDefaults restores defaults for fields the config file explicitly
// zeroed or never set.
func (s *Settings) fillDefaults() {
	if s.BaseURL == "" {
		s.BaseURL = DefaultBaseURL
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	if s.WorklistPath == "" {
		s.WorklistPath = DefaultWorklistPath
	}
	if s.ProgressPath == "" {
		s.ProgressPath = DefaultProgressPath
	}
	if s.FailuresPath == "" {
		s.FailuresPath = DefaultFailuresPath
	}
	if s.UserAgent == "" {
		s.UserAgent = DefaultUserAgent
	}
	if s.PageTimeout <= 0 {
		s.PageTimeout = DefaultPageTimeout
	}
	if s.DownloadTimeout <= 0 {
		s.DownloadTimeout = DefaultDownloadTimeout
	}
	if s.IndicatorWait <= 0 {
		s.IndicatorWait = DefaultIndicatorWait
	}
	if s.ItemPause < 0 {
		s.ItemPause = DefaultItemPause
	}
	if s.ProgressEvery <= 0 {
		s.ProgressEvery = DefaultProgressEvery
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = DefaultMaxWorkers
	}
	if s.MinArtifactSize <= 0 {
		s.MinArtifactSize = DefaultMinArtifactSize
	}
	if s.MinPDFSize <= 0 {
		s.MinPDFSize = DefaultMinPDFSize
	}
	if s.SmallPDFWarn <= 0 {
		s.SmallPDFWarn = DefaultSmallPDFWarn
	}
}

// Validate reports configuration combinations that cannot work.
func (s Settings) Validate() error {
	if s.MinPDFSize < s.MinArtifactSize {
		return fmt.Errorf("min_pdf_size (%d) must be at least min_artifact_size (%d)", s.MinPDFSize, s.MinArtifactSize)
	}
	if s.SmallPDFWarn < s.MinPDFSize {
		return fmt.Errorf("small_pdf_warn (%d) must be at least min_pdf_size (%d)", s.SmallPDFWarn, s.MinPDFSize)
	}
	if s.MaxWorkers > 16 {
		return fmt.Errorf("max_workers (%d) exceeds limit 16", s.MaxWorkers)
	}
	return nil
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvSeconds(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	switch v {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}
