// Package config provides XML-based configuration management for deployment
// without external tooling: the file is auto-generated next to the binary on
// first run and can be edited in place.
package config

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// AppConfig represents the root XML configuration structure
type AppConfig struct {
	XMLName xml.Name `xml:"RiceGuard"`

	// Server configuration
	Server ServerConfig `xml:"Server"`

	// Remote inference configuration
	Inference InferenceConfig `xml:"Inference"`

	// Analysis history configuration
	History HistoryConfig `xml:"History"`

	// Advanced options
	Advanced AdvancedConfig `xml:"Advanced"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int    `xml:"Port"`
	BindAddress  string `xml:"BindAddress"`
	EnableCORS   bool   `xml:"EnableCORS"`
	AllowOrigins string `xml:"AllowOrigins"`
	ReadTimeout  int    `xml:"ReadTimeoutSeconds"`
	WriteTimeout int    `xml:"WriteTimeoutSeconds"`
	IdleTimeout  int    `xml:"IdleTimeoutSeconds"`
	BodyLimit    string `xml:"BodyLimit"`
}

// InferenceConfig contains the Roboflow workflow settings. The API key is
// deliberately not stored here; it comes from the environment only.
type InferenceConfig struct {
	Workspace        string `xml:"Workspace"`
	ModelID          string `xml:"ModelID"`
	ServerlessURL    string `xml:"ServerlessURL"`
	TimeoutSeconds   int    `xml:"TimeoutSeconds"`
	MaxImageLongSide int    `xml:"MaxImageLongSide"`
	ProfilePath      string `xml:"ProfilePath"`
}

// HistoryConfig contains in-memory analysis history settings
type HistoryConfig struct {
	MaxRecords             int `xml:"MaxRecords"`
	MaxAgeHours            int `xml:"MaxAgeHours"`
	CleanupIntervalMinutes int `xml:"CleanupIntervalMinutes"`
}

// AdvancedConfig contains advanced/tuning options
type AdvancedConfig struct {
	LogLevel             string `xml:"LogLevel"`
	EnableRequestLogging bool   `xml:"EnableRequestLogging"`
}

// APIKey is read from the environment on every call so rotated keys take
// effect without a config rewrite.
func (c *AppConfig) APIKey() string {
	return os.Getenv("ROBOFLOW_API_KEY")
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "32M",
		},
		Inference: InferenceConfig{
			Workspace:        "your-workspace",
			ModelID:          "detect-and-classify",
			ServerlessURL:    "https://serverless.roboflow.com",
			TimeoutSeconds:   90,
			MaxImageLongSide: 1280,
			ProfilePath:      "./data/defaults/profile.yaml",
		},
		History: HistoryConfig{
			MaxRecords:             100,
			MaxAgeHours:            24,
			CleanupIntervalMinutes: 15,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig loads configuration from XML file
func LoadConfig(configPath string) (*AppConfig, error) {
	// .env first so the overrides below see it (ignore a missing file)
	_ = godotenv.Load()

	// If file doesn't exist, create default
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		config := DefaultConfig()
		config.applyEnvironmentOverrides()
		if err := config.Save(configPath); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &AppConfig{}
	if err := xml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyEnvironmentOverrides()

	return config, nil
}

// Save saves the configuration to XML file
func (c *AppConfig) Save(configPath string) error {
	output, err := xml.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(xml.Header + "\n<!-- RiceGuard Configuration -->\n<!-- This file is auto-generated on first run -->\n\n")
	content := append(header, output...)

	if err := os.WriteFile(configPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnvironmentOverrides allows environment variables to override config values
func (c *AppConfig) applyEnvironmentOverrides() {
	// PORT override
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}

	// Roboflow workflow overrides
	if workspace := os.Getenv("ROBOFLOW_WORKSPACE"); workspace != "" {
		c.Inference.Workspace = workspace
	}
	if modelID := os.Getenv("ROBOFLOW_MODEL_ID"); modelID != "" {
		c.Inference.ModelID = modelID
	}
	if url := os.Getenv("ROBOFLOW_SERVERLESS_URL"); url != "" {
		c.Inference.ServerlessURL = url
	}
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}
