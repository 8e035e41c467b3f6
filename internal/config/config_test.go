package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultConfig(t *testing.T) {
	// Test loading with non-existent file (should use defaults)
	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	// Check default values
	if cfg.LogLevel != "info" {
		t.Errorf("Expected log level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Schedule.Interval != 5*time.Minute {
		t.Errorf("Expected schedule interval 5m, got %v", cfg.Schedule.Interval)
	}
	if cfg.Storage.Path != "/data" {
		t.Errorf("Expected storage path '/data', got '%s'", cfg.Storage.Path)
	}
	if cfg.Output.Path != "gemini_summary.csv" {
		t.Errorf("Expected output path 'gemini_summary.csv', got '%s'", cfg.Output.Path)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Expected model 'gemini-2.5-flash', got '%s'", cfg.Gemini.Model)
	}
	if cfg.Gemini.Endpoint != "https://generativelanguage.googleapis.com" {
		t.Errorf("Unexpected Gemini endpoint '%s'", cfg.Gemini.Endpoint)
	}
	if cfg.Summarizer.Mode != ModeDirect {
		t.Errorf("Expected summarizer mode 'direct', got '%s'", cfg.Summarizer.Mode)
	}
	if cfg.Summarizer.Workers != 2 {
		t.Errorf("Expected 2 workers, got %d", cfg.Summarizer.Workers)
	}
	if cfg.Drive.Enabled != false {
		t.Errorf("Expected Drive enabled false, got %v", cfg.Drive.Enabled)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
log_level: debug
schedule:
  interval: 2m
storage:
  path: /custom/data
output:
  path: /custom/out.csv
  text_column: custom_text
gemini:
  model: "gemini-2.0-flash"
  api_key: "file-api-key"
  temperature: 0.2
summarizer:
  mode: agent
  workers: 4
  max_iterations: 3
drive:
  enabled: true
  folder_id: "folder-123"
  credentials_file: "/secrets/sa.json"
github:
  enabled: true
  token: "file-token"
  repositories:
    - "owner/repo1"
    - "owner/repo2"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config from file: %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.LogLevel)
	}
	if cfg.Schedule.Interval != 2*time.Minute {
		t.Errorf("Expected schedule interval 2m, got %v", cfg.Schedule.Interval)
	}
	if cfg.Output.Path != "/custom/out.csv" {
		t.Errorf("Expected output path '/custom/out.csv', got '%s'", cfg.Output.Path)
	}
	if cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Errorf("Expected model 'gemini-2.0-flash', got '%s'", cfg.Gemini.Model)
	}
	if cfg.Gemini.APIKey != "file-api-key" {
		t.Errorf("Expected Gemini API key 'file-api-key', got '%s'", cfg.Gemini.APIKey)
	}
	if cfg.Summarizer.Mode != ModeAgent {
		t.Errorf("Expected summarizer mode 'agent', got '%s'", cfg.Summarizer.Mode)
	}
	if cfg.Summarizer.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", cfg.Summarizer.Workers)
	}
	if cfg.Drive.FolderID != "folder-123" {
		t.Errorf("Expected folder ID 'folder-123', got '%s'", cfg.Drive.FolderID)
	}
	if len(cfg.GitHub.Repositories) != 2 {
		t.Errorf("Expected 2 repositories, got %d", len(cfg.GitHub.Repositories))
	}
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	os.Setenv("GEMINI_API_KEY", "env-api-key")
	os.Setenv("GDRIVE_FOLDER_ID", "env-folder-id")
	os.Setenv("GDRIVE_CREDENTIALS_FILE", "/env/creds.json")
	os.Setenv("STORAGE_PATH", "/env/storage")
	os.Setenv("OUTPUT_PATH", "/env/out.csv")
	defer func() {
		os.Unsetenv("GEMINI_API_KEY")
		os.Unsetenv("GDRIVE_FOLDER_ID")
		os.Unsetenv("GDRIVE_CREDENTIALS_FILE")
		os.Unsetenv("STORAGE_PATH")
		os.Unsetenv("OUTPUT_PATH")
	}()

	cfg, err := Load("non-existent-config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Gemini.APIKey != "env-api-key" {
		t.Errorf("Expected Gemini API key 'env-api-key', got '%s'", cfg.Gemini.APIKey)
	}
	if cfg.Drive.FolderID != "env-folder-id" {
		t.Errorf("Expected folder ID 'env-folder-id', got '%s'", cfg.Drive.FolderID)
	}
	if cfg.Drive.CredentialsFile != "/env/creds.json" {
		t.Errorf("Expected credentials file '/env/creds.json', got '%s'", cfg.Drive.CredentialsFile)
	}
	if cfg.Storage.Path != "/env/storage" {
		t.Errorf("Expected storage path '/env/storage', got '%s'", cfg.Storage.Path)
	}
	if cfg.Output.Path != "/env/out.csv" {
		t.Errorf("Expected output path '/env/out.csv', got '%s'", cfg.Output.Path)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
gemini:
  api_key: "file-api-key"
drive:
  folder_id: "file-folder-id"
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	os.Setenv("GEMINI_API_KEY", "env-api-key")
	defer os.Unsetenv("GEMINI_API_KEY")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	// Environment should override file values
	if cfg.Gemini.APIKey != "env-api-key" {
		t.Errorf("Expected environment to override file value, got '%s'", cfg.Gemini.APIKey)
	}

	// File values should be used where environment is not set
	if cfg.Drive.FolderID != "file-folder-id" {
		t.Errorf("Expected file value to be used, got '%s'", cfg.Drive.FolderID)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "invalid-config.yaml")

	invalidYAML := `
log_level: debug
schedule:
  interval: 2m
  invalid: [unclosed list
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	if err != nil {
		t.Fatalf("Failed to write invalid config file: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Errorf("Expected error for invalid YAML, got none")
	}
}

func TestLoad_InvalidSummarizerMode(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `
summarizer:
  mode: turbo
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	_, err = Load(configPath)
	if err == nil {
		t.Errorf("Expected error for invalid summarizer mode, got none")
	}
}

func TestConfig_TextColumn(t *testing.T) {
	cfg := &Config{Summarizer: SummarizerConfig{Mode: ModeDirect}}
	if got := cfg.TextColumn(); got != "summary_text" {
		t.Errorf("Expected 'summary_text', got '%s'", got)
	}

	cfg.Summarizer.Mode = ModeAgent
	if got := cfg.TextColumn(); got != "agent_response" {
		t.Errorf("Expected 'agent_response', got '%s'", got)
	}

	cfg.Output.TextColumn = "custom"
	if got := cfg.TextColumn(); got != "custom" {
		t.Errorf("Expected 'custom', got '%s'", got)
	}
}

func TestGetEnv(t *testing.T) {
	os.Setenv("TEST_VAR", "test-value")
	defer os.Unsetenv("TEST_VAR")

	result := getEnv("TEST_VAR", "default")
	if result != "test-value" {
		t.Errorf("Expected 'test-value', got '%s'", result)
	}

	result = getEnv("NON_EXISTING_VAR", "default")
	if result != "default" {
		t.Errorf("Expected 'default', got '%s'", result)
	}

	os.Setenv("EMPTY_VAR", "")
	defer os.Unsetenv("EMPTY_VAR")

	result = getEnv("EMPTY_VAR", "default")
	if result != "default" {
		t.Errorf("Expected 'default' for empty env var, got '%s'", result)
	}
}
