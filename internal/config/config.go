package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	LogLevel     string            `yaml:"log_level"`
	Schedule     ScheduleConfig    `yaml:"schedule"`
	Storage      StorageConfig     `yaml:"storage"`
	Output       OutputConfig      `yaml:"output"`
	Gemini       GeminiConfig      `yaml:"gemini"`
	Summarizer   SummarizerConfig  `yaml:"summarizer"`
	Drive        DriveConfig       `yaml:"drive"`
	GitHub       GitHubConfig      `yaml:"github"`
	LocalFolders LocalFolderConfig `yaml:"local_folders"`
}

// ScheduleConfig defines the scan schedule
type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// StorageConfig defines where pipeline state is persisted
type StorageConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig defines the summary output file
type OutputConfig struct {
	Path string `yaml:"path"`
	// TextColumn overrides the name of the text column. When empty the
	// column follows the summarizer mode (summary_text / agent_response).
	TextColumn string `yaml:"text_column"`
}

// GeminiConfig defines Gemini API settings
type GeminiConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	APIKey      string        `yaml:"api_key"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SummarizerConfig defines how summaries are produced
type SummarizerConfig struct {
	// Mode is "direct" (single generateContent call) or "agent"
	// (bounded tool loop over the CSV analysis helpers).
	Mode          string        `yaml:"mode"`
	Workers       int           `yaml:"workers"`
	TaskTimeout   time.Duration `yaml:"task_timeout"`
	MaxIterations int           `yaml:"max_iterations"`
}

// DriveConfig defines the Google Drive source settings
type DriveConfig struct {
	Enabled         bool   `yaml:"enabled"`
	FolderID        string `yaml:"folder_id"`
	CredentialsFile string `yaml:"credentials_file"`
	PageSize        int64  `yaml:"page_size"`
	ExportDocs      bool   `yaml:"export_docs"`
}

// GitHubConfig defines the GitHub source settings
type GitHubConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Token        string   `yaml:"token"`
	Repositories []string `yaml:"repositories"`
}

// LocalFolderConfig defines the local folder source settings
type LocalFolderConfig struct {
	Enabled bool     `yaml:"enabled"`
	Paths   []string `yaml:"paths"`
}

// Summarizer modes
const (
	ModeDirect = "direct"
	ModeAgent  = "agent"
)

// Load loads configuration from file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogLevel: "info",
		Schedule: ScheduleConfig{
			Interval: 5 * time.Minute,
		},
		Storage: StorageConfig{
			Path: "/data",
		},
		Output: OutputConfig{
			Path: "gemini_summary.csv",
		},
		Gemini: GeminiConfig{
			Endpoint:    "https://generativelanguage.googleapis.com",
			Model:       "gemini-2.5-flash",
			APIKey:      getEnv("GEMINI_API_KEY", ""),
			Temperature: 0.7,
			Timeout:     5 * time.Minute,
		},
		Summarizer: SummarizerConfig{
			Mode:          ModeDirect,
			Workers:       2,
			TaskTimeout:   50 * time.Minute,
			MaxIterations: 5,
		},
		Drive: DriveConfig{
			Enabled:         false,
			FolderID:        getEnv("GDRIVE_FOLDER_ID", ""),
			CredentialsFile: getEnv("GDRIVE_CREDENTIALS_FILE", "credentials.json"),
			PageSize:        100,
			ExportDocs:      true,
		},
		GitHub: GitHubConfig{
			Enabled:      false,
			Token:        getEnv("GITHUB_TOKEN", ""),
			Repositories: []string{},
		},
		LocalFolders: LocalFolderConfig{
			Enabled: false,
			Paths:   []string{},
		},
	}

	// Load from file if it exists
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.Gemini.APIKey = getEnv("GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Drive.FolderID = getEnv("GDRIVE_FOLDER_ID", cfg.Drive.FolderID)
	cfg.Drive.CredentialsFile = getEnv("GDRIVE_CREDENTIALS_FILE", cfg.Drive.CredentialsFile)
	cfg.GitHub.Token = getEnv("GITHUB_TOKEN", cfg.GitHub.Token)
	cfg.Storage.Path = getEnv("STORAGE_PATH", cfg.Storage.Path)
	cfg.Output.Path = getEnv("OUTPUT_PATH", cfg.Output.Path)

	if cfg.Summarizer.Mode != ModeDirect && cfg.Summarizer.Mode != ModeAgent {
		return nil, fmt.Errorf("invalid summarizer mode: %s", cfg.Summarizer.Mode)
	}
	if cfg.Summarizer.Workers < 1 {
		return nil, fmt.Errorf("summarizer workers must be at least 1, got %d", cfg.Summarizer.Workers)
	}

	return cfg, nil
}

// TextColumn returns the configured text column name, falling back to a
// mode-dependent default.
func (c *Config) TextColumn() string {
	if c.Output.TextColumn != "" {
		return c.Output.TextColumn
	}
	if c.Summarizer.Mode == ModeAgent {
		return "agent_response"
	}
	return "summary_text"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
