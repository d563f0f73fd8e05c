/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads and saves the user configuration as a YAML file in the
// user scope with environment variables acting as read-only overrides.
// Secrets (the AI API key and the gallery token) are never written to disk;
// they live in the OS keyring.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// AIConfig configures the generation service client.
type AIConfig struct {
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// The API key is not stored on disk; it lives in the OS keychain.
}

// GalleryConfig configures the optional shared gallery.
type GalleryConfig struct {
	BaseURL     string `yaml:"base_url"`
	PostgresDSN string `yaml:"postgres_dsn"`
	TimeoutMs   int    `yaml:"timeout_ms"`
}

// EditorConfig holds tunables of the editing engine.
type EditorConfig struct {
	HistoryMaxDepth int  `yaml:"history_max_depth"`
	TelemetryOptIn  bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// AppConfig is the user-editable configuration.
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	AI            AIConfig      `yaml:"ai"`
	Gallery       GalleryConfig `yaml:"gallery"`
	Editor        EditorConfig  `yaml:"editor"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		AI:            AIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", TimeoutMs: 60000},
		Gallery:       GalleryConfig{BaseURL: "", PostgresDSN: "", TimeoutMs: 10000},
		Editor:        EditorConfig{HistoryMaxDepth: 200, TelemetryOptIn: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvAIBaseURL      = "SVS_AI_BASE_URL"
	EnvAIModel        = "SVS_AI_MODEL"
	EnvAITimeoutMs    = "SVS_AI_TIMEOUT_MS"
	EnvAIAPIKey       = "SVS_AI_API_KEY" // override, bypasses the keyring
	EnvGalleryURL     = "SVS_GALLERY_URL"
	EnvDataDir        = "SVS_DATA_DIR"
	EnvGalleryPG      = "SVS_GALLERY_PG_DSN"
	EnvTelemetryOptIn = "SVS_TELEMETRY_OPT_IN"
	EnvLogLevel       = "SVS_LOG_LEVEL"
	EnvLogFormat      = "SVS_LOG_FORMAT"
	EnvLogSource      = "SVS_LOG_SOURCE"
	EnvLogFile        = "SVS_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService      = "SVGStudio"
	keyringAIKey        = "ai_api_key"
	keyringGalleryToken = "gallery_token"
)

// TokenStore abstracts the keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keyring implementation (tests only).
func SetTokenStore(ts TokenStore) { tokenStore = ts }

// Path returns the per-user config file path.
func Path() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SVGStudio")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SVGStudio")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "svgstudio")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// DataDir returns the per-user data directory (sketch library, autosaves).
// SVS_DATA_DIR overrides the platform default.
func DataDir() (string, error) {
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		return dir, nil
	}
	p, err := Path()
	if err != nil {
		return "", err
	}
	return filepath.Dir(p), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The AI API key is returned separately; it comes from
// the SVS_AI_API_KEY override or the OS keyring.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := Path()
	if err != nil {
		return cfg, "", err
	}
	if data, rerr := os.ReadFile(path); rerr == nil {
		var fileCfg AppConfig
		if uerr := yaml.Unmarshal(data, &fileCfg); uerr == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	key := strings.TrimSpace(os.Getenv(EnvAIAPIKey))
	if key == "" {
		key, _ = tokenStore.Get(keyringService, keyringAIKey)
	}
	return cfg, key, nil
}

// Save writes the user config YAML and persists the API key into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, apiKey string) error {
	path, err := Path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if apiKey != "" {
		return tokenStore.Set(keyringService, keyringAIKey, apiKey)
	}
	return nil
}

// GalleryToken returns the stored gallery bearer token, if any.
func GalleryToken() string {
	tok, _ := tokenStore.Get(keyringService, keyringGalleryToken)
	return tok
}

// SetGalleryToken stores or clears the gallery bearer token.
func SetGalleryToken(tok string) error {
	if strings.TrimSpace(tok) == "" {
		return tokenStore.Delete(keyringService, keyringGalleryToken)
	}
	return tokenStore.Set(keyringService, keyringGalleryToken, tok)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.AI.BaseURL) != "" {
		dst.AI.BaseURL = strings.TrimSpace(src.AI.BaseURL)
	}
	if strings.TrimSpace(src.AI.Model) != "" {
		dst.AI.Model = strings.TrimSpace(src.AI.Model)
	}
	if src.AI.TimeoutMs != 0 {
		dst.AI.TimeoutMs = src.AI.TimeoutMs
	}
	if strings.TrimSpace(src.Gallery.BaseURL) != "" {
		dst.Gallery.BaseURL = strings.TrimSpace(src.Gallery.BaseURL)
	}
	if strings.TrimSpace(src.Gallery.PostgresDSN) != "" {
		dst.Gallery.PostgresDSN = strings.TrimSpace(src.Gallery.PostgresDSN)
	}
	if src.Gallery.TimeoutMs != 0 {
		dst.Gallery.TimeoutMs = src.Gallery.TimeoutMs
	}
	if src.Editor.HistoryMaxDepth != 0 {
		dst.Editor.HistoryMaxDepth = src.Editor.HistoryMaxDepth
	}
	dst.Editor.TelemetryOptIn = src.Editor.TelemetryOptIn
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAIBaseURL)); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAIModel)); v != "" {
		cfg.AI.Model = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvAITimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.AI.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvGalleryURL)); v != "" {
		cfg.Gallery.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvGalleryPG)); v != "" {
		cfg.Gallery.PostgresDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.Editor.TelemetryOptIn = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "on" || s == "yes"
}
