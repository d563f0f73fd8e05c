/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export writes the live document out as SVG, PDF or PNG files.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"svgstudio/internal/document"
)

// TimestampedName builds the download file name for an export: the base name
// plus the moment of export, e.g. "sketch-20250114-093041.svg".
func TimestampedName(base, ext string, t time.Time) string {
	return fmt.Sprintf("%s-%s.%s", base, t.Format("20060102-150405"), ext)
}

// WriteSVG serializes the document into outDir under a timestamped name and
// returns the full path of the written file.
func WriteSVG(doc *document.Document, outDir string) (string, error) {
	if doc == nil {
		return "", fmt.Errorf("document is nil")
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure out dir: %w", err)
	}
	path := filepath.Join(outDir, TimestampedName("sketch", "svg", time.Now()))
	if err := os.WriteFile(path, []byte(doc.Serialize()+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("write svg: %w", err)
	}
	return path, nil
}

// WriteSVGFile serializes the document to an explicit path, used when the
// caller names the file.
func WriteSVGFile(doc *document.Document, path string) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	return os.WriteFile(path, []byte(doc.Serialize()+"\n"), 0o644)
}
