/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"testing"
)

type memStore struct{ m map[string]string }

func (s *memStore) Get(service, key string) (string, error) {
	v, ok := s.m[service+"/"+key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}
func (s *memStore) Set(service, key, value string) error {
	s.m[service+"/"+key] = value
	return nil
}
func (s *memStore) Delete(service, key string) error {
	delete(s.m, service+"/"+key)
	return nil
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.AI.BaseURL == "" || cfg.AI.Model == "" {
		t.Fatalf("expected AI defaults, got %+v", cfg.AI)
	}
	if cfg.Editor.HistoryMaxDepth <= 0 {
		t.Fatalf("expected positive history depth")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAIModel, "test-model")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvTelemetryOptIn, "yes")
	cfg := Defaults()
	applyEnvOverrides(&cfg)
	if cfg.AI.Model != "test-model" {
		t.Fatalf("env override not applied: %+v", cfg.AI)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level not lowered: %q", cfg.Logging.Level)
	}
	if !cfg.Editor.TelemetryOptIn {
		t.Fatalf("telemetry opt-in not applied")
	}
}

func TestMergeInto(t *testing.T) {
	dst := Defaults()
	src := AppConfig{AI: AIConfig{Model: " custom "}, Editor: EditorConfig{HistoryMaxDepth: 17}}
	mergeInto(&dst, &src)
	if dst.AI.Model != "custom" {
		t.Fatalf("model not merged: %q", dst.AI.Model)
	}
	if dst.Editor.HistoryMaxDepth != 17 {
		t.Fatalf("history depth not merged: %d", dst.Editor.HistoryMaxDepth)
	}
	if dst.AI.BaseURL != Defaults().AI.BaseURL {
		t.Fatalf("empty src field must not clobber default")
	}
}

func TestAPIKeyFromEnvBeatsKeyring(t *testing.T) {
	store := &memStore{m: map[string]string{keyringService + "/" + keyringAIKey: "from-keyring"}}
	SetTokenStore(store)
	defer SetTokenStore(osKeyring{})

	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvAIAPIKey, "from-env")
	_, key, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if key != "from-env" {
		t.Fatalf("expected env key to win, got %q", key)
	}

	os.Unsetenv(EnvAIAPIKey)
	_, key, err = Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if key != "from-keyring" {
		t.Fatalf("expected keyring key, got %q", key)
	}
}

func TestGalleryTokenRoundTrip(t *testing.T) {
	store := &memStore{m: map[string]string{}}
	SetTokenStore(store)
	defer SetTokenStore(osKeyring{})

	if err := SetGalleryToken("tok123"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := GalleryToken(); got != "tok123" {
		t.Fatalf("expected tok123, got %q", got)
	}
	if err := SetGalleryToken(""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := GalleryToken(); got != "" {
		t.Fatalf("expected cleared token, got %q", got)
	}
}
