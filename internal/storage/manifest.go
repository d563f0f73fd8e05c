/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

// Manifest is the portable JSON form of a sketch, used to move sketches
// between machines without copying the whole library database.
type Manifest struct {
	ManifestVersion int    `json:"manifest_version"`
	Name            string `json:"name"`
	Prompt          string `json:"prompt,omitempty"`
	Markup          string `json:"markup"`
	ExportedAt      string `json:"exported_at"`
}

const manifestVersion = 1

// manifestSchema validates incoming manifests before anything touches the
// database.
const manifestSchema = `{
	"type": "object",
	"required": ["manifest_version", "name", "markup"],
	"properties": {
		"manifest_version": {"type": "integer", "minimum": 1},
		"name": {"type": "string", "minLength": 1},
		"prompt": {"type": "string"},
		"markup": {"type": "string", "minLength": 1},
		"exported_at": {"type": "string"}
	},
	"additionalProperties": false
}`

// ExportManifest writes the sketch with the given id to path as JSON.
func (lib *Library) ExportManifest(ctx context.Context, id int64, path string) error {
	s, err := lib.GetSketch(ctx, id)
	if err != nil {
		return err
	}
	m := Manifest{
		ManifestVersion: manifestVersion,
		Name:            s.Name,
		Prompt:          s.Prompt,
		Markup:          s.Markup,
		ExportedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ImportManifest validates the manifest file and inserts it as a new sketch,
// returning the new id.
func (lib *Library) ImportManifest(ctx context.Context, path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read manifest: %w", err)
	}
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(manifestSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return 0, fmt.Errorf("validate manifest: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return 0, fmt.Errorf("manifest is invalid: %s", strings.Join(msgs, "; "))
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return 0, fmt.Errorf("decode manifest: %w", err)
	}
	return lib.SaveSketch(ctx, m.Name, m.Prompt, m.Markup)
}
