/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package history keeps a linear undo/redo sequence of whole-document
// snapshots. Snapshots are opaque serialized strings; the manager never
// inspects them. It is safe for concurrent use.
package history

import "sync"

// Config controls depth caps and coalescing of the snapshot sequence.
type Config struct {
	// MaxDepth limits the number of snapshots kept (0 means unlimited).
	// When exceeded, the oldest snapshots are dropped.
	MaxDepth int
}

// Manager holds an ordered sequence of snapshots plus the index of the
// snapshot matching the current live document. Committing while the index is
// not at the end discards the snapshots beyond it.
type Manager struct {
	cfg   Config
	mu    sync.Mutex
	snaps []string
	index int // position of the current state; -1 while empty
}

func NewManager(cfg Config) *Manager {
	return &Manager{cfg: cfg, index: -1}
}

// Commit records a new snapshot as the current state. Any redo branch beyond
// the current index becomes unreachable and is discarded.
func (m *Manager) Commit(snapshot string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps[:m.index+1], snapshot)
	m.index = len(m.snaps) - 1
	m.enforceDepthLocked()
}

// Undo steps back one snapshot and returns it. The second result is false when
// there is no earlier state to return to.
func (m *Manager) Undo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index <= 0 {
		return "", false
	}
	m.index--
	return m.snaps[m.index], true
}

// Redo steps forward one snapshot and returns it. The second result is false
// when the index is already at the newest snapshot.
func (m *Manager) Redo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index < 0 || m.index >= len(m.snaps)-1 {
		return "", false
	}
	m.index++
	return m.snaps[m.index], true
}

// CanUndo reports whether Undo would return a snapshot.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index > 0
}

// CanRedo reports whether Redo would return a snapshot.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.index >= 0 && m.index < len(m.snaps)-1
}

// Len returns the number of snapshots currently held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.snaps)
}

// Reset drops all snapshots and seeds the sequence with the given baseline,
// used when a new document is loaded.
func (m *Manager) Reset(baseline string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = []string{baseline}
	m.index = 0
}

func (m *Manager) enforceDepthLocked() {
	if m.cfg.MaxDepth <= 0 {
		return
	}
	for len(m.snaps) > m.cfg.MaxDepth {
		m.snaps = m.snaps[1:]
		m.index--
	}
	if m.index < 0 {
		m.index = 0
	}
}
