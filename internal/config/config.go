package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds application configuration.
type Config struct {
	// GeminiModel is the model used for email drafting, chat, memory
	// extraction, and resume parsing.
	GeminiModel string `json:"gemini_model,omitempty"`

	// LookupModel is the model used for search-grounded professor lookup.
	LookupModel string `json:"lookup_model,omitempty"`

	// MaxDocumentBytes caps stored document payloads. 0 means the default.
	MaxDocumentBytes int64 `json:"max_document_bytes,omitempty"`

	// WebBind and WebPort configure the `serve` web API.
	WebBind string `json:"web_bind,omitempty"`
	WebPort int    `json:"web_port,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from
	// registration. Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		GeminiModel:      "gemini-2.0-flash",
		LookupModel:      "gemini-2.0-flash",
		MaxDocumentBytes: 10 * 1024 * 1024,
		WebBind:          "127.0.0.1",
		WebPort:          8787,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.profreach.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.GeminiModel = overlay.GeminiModel
	if result.GeminiModel == "" {
		result.GeminiModel = base.GeminiModel
	}

	result.LookupModel = overlay.LookupModel
	if result.LookupModel == "" {
		result.LookupModel = base.LookupModel
	}

	result.MaxDocumentBytes = overlay.MaxDocumentBytes
	if result.MaxDocumentBytes == 0 {
		result.MaxDocumentBytes = base.MaxDocumentBytes
	}

	result.WebBind = overlay.WebBind
	if result.WebBind == "" {
		result.WebBind = base.WebBind
	}

	result.WebPort = overlay.WebPort
	if result.WebPort == 0 {
		result.WebPort = base.WebPort
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
