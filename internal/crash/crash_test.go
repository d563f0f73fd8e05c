/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"svgstudio/internal/document"
	"svgstudio/internal/shape"
)

func TestRecoverWritesReportAndAutosave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SVS_DATA_DIR", dir)

	exited := -1
	oldExit := exitFn
	exitFn = func(code int) { exited = code }
	defer func() { exitFn = oldExit }()

	doc := document.New(200, 200)
	doc.Append(&shape.Line{X1: 0, Y1: 0, X2: 100, Y2: 100})

	func() {
		defer Recover(doc)
		panic("boom")
	}()

	if exited != 2 {
		t.Fatalf("expected exit code 2, got %d", exited)
	}

	crashDir := filepath.Join(dir, "crashes")
	entries, err := os.ReadDir(crashDir)
	if err != nil {
		t.Fatalf("read crash dir: %v", err)
	}
	var gotReport, gotAutosave bool
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasPrefix(name, "crash-") && strings.HasSuffix(name, ".log"):
			gotReport = true
			data, err := os.ReadFile(filepath.Join(crashDir, name))
			if err != nil {
				t.Fatalf("read report: %v", err)
			}
			if !strings.Contains(string(data), "SVG Studio Crash Report") {
				t.Fatalf("report missing header")
			}
			if !strings.Contains(string(data), "Panic: boom") {
				t.Fatalf("report missing panic value")
			}
		case strings.HasPrefix(name, "autosave-") && strings.HasSuffix(name, ".svg"):
			gotAutosave = true
			data, err := os.ReadFile(filepath.Join(crashDir, name))
			if err != nil {
				t.Fatalf("read autosave: %v", err)
			}
			if !strings.Contains(string(data), "<line") {
				t.Fatalf("autosave missing document content: %s", data)
			}
		}
	}
	if !gotReport {
		t.Fatalf("no crash report written in %s", crashDir)
	}
	if !gotAutosave {
		t.Fatalf("no autosave written in %s", crashDir)
	}
}

func TestRecoverNilDocumentSkipsAutosave(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SVS_DATA_DIR", dir)

	oldExit := exitFn
	exitFn = func(int) {}
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
		panic("no document open")
	}()

	entries, err := os.ReadDir(filepath.Join(dir, "crashes"))
	if err != nil {
		t.Fatalf("read crash dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "autosave-") {
			t.Fatalf("autosave written without a document")
		}
	}
}

func TestRecoverWithoutPanicIsNoOp(t *testing.T) {
	oldExit := exitFn
	called := false
	exitFn = func(int) { called = true }
	defer func() { exitFn = oldExit }()

	func() {
		defer Recover(nil)
	}()

	if called {
		t.Fatalf("Recover must not exit when there is no panic")
	}
}
