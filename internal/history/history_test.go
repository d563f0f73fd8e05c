/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package history

import (
	"fmt"
	"testing"
)

func TestUndoRedoWalk(t *testing.T) {
	m := NewManager(Config{})
	m.Reset("v0")
	m.Commit("v1")
	m.Commit("v2")
	if s, ok := m.Undo(); !ok || s != "v1" {
		t.Fatalf("undo: got %q ok=%v", s, ok)
	}
	if s, ok := m.Undo(); !ok || s != "v0" {
		t.Fatalf("undo to baseline: got %q ok=%v", s, ok)
	}
	if _, ok := m.Undo(); ok {
		t.Fatalf("undo past baseline must be a no-op")
	}
	if s, ok := m.Redo(); !ok || s != "v1" {
		t.Fatalf("redo: got %q ok=%v", s, ok)
	}
	if s, ok := m.Redo(); !ok || s != "v2" {
		t.Fatalf("redo: got %q ok=%v", s, ok)
	}
	if _, ok := m.Redo(); ok {
		t.Fatalf("redo at newest must be a no-op")
	}
}

func TestUndoRedoIdempotence(t *testing.T) {
	m := NewManager(Config{})
	m.Reset("v0")
	const n = 5
	for i := 1; i <= n; i++ {
		m.Commit(fmt.Sprintf("v%d", i))
	}
	for i := 0; i < n; i++ {
		if _, ok := m.Undo(); !ok {
			t.Fatalf("undo %d failed", i)
		}
	}
	var last string
	for i := 0; i < n; i++ {
		s, ok := m.Redo()
		if !ok {
			t.Fatalf("redo %d failed", i)
		}
		last = s
	}
	if last != fmt.Sprintf("v%d", n) {
		t.Fatalf("redo x N must restore the newest state, got %q", last)
	}
}

func TestCommitTruncatesRedoBranch(t *testing.T) {
	m := NewManager(Config{})
	m.Reset("v0")
	m.Commit("v1")
	m.Commit("v2")
	m.Undo()
	m.Undo()
	m.Commit("v1b")
	if _, ok := m.Redo(); ok {
		t.Fatalf("redo after a fresh commit must be a no-op")
	}
	if s, ok := m.Undo(); !ok || s != "v0" {
		t.Fatalf("undo after truncation: got %q ok=%v", s, ok)
	}
}

func TestEmptyManagerIsInert(t *testing.T) {
	m := NewManager(Config{})
	if _, ok := m.Undo(); ok {
		t.Fatalf("undo on empty manager")
	}
	if _, ok := m.Redo(); ok {
		t.Fatalf("redo on empty manager")
	}
	if m.CanUndo() || m.CanRedo() {
		t.Fatalf("empty manager must report no undo/redo")
	}
}

func TestMaxDepthDropsOldest(t *testing.T) {
	m := NewManager(Config{MaxDepth: 3})
	m.Reset("v0")
	for i := 1; i <= 5; i++ {
		m.Commit(fmt.Sprintf("v%d", i))
	}
	if m.Len() != 3 {
		t.Fatalf("depth cap not enforced: len=%d", m.Len())
	}
	// Only the two most recent predecessors remain reachable.
	if s, ok := m.Undo(); !ok || s != "v4" {
		t.Fatalf("undo: got %q ok=%v", s, ok)
	}
	if s, ok := m.Undo(); !ok || s != "v3" {
		t.Fatalf("undo: got %q ok=%v", s, ok)
	}
	if _, ok := m.Undo(); ok {
		t.Fatalf("pruned snapshots must not be reachable")
	}
}

func TestResetSeedsBaseline(t *testing.T) {
	m := NewManager(Config{})
	m.Reset("a")
	m.Commit("b")
	m.Reset("c")
	if m.Len() != 1 || m.CanUndo() || m.CanRedo() {
		t.Fatalf("reset must leave only the baseline")
	}
}
