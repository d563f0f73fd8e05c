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
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a sketch id does not exist.
var ErrNotFound = errors.New("sketch not found")

// Sketch is a saved document plus the prompt that produced it.
type Sketch struct {
	ID        int64
	Name      string
	Prompt    string
	Markup    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromptRecord is one generation attempt.
type PromptRecord struct {
	ID        int64
	Prompt    string
	ColorName string
	WidthName string
	Succeeded bool
	CreatedAt time.Time
}

// SaveSketch inserts a new sketch and returns its id.
func (lib *Library) SaveSketch(ctx context.Context, name, prompt, markup string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("sketch name is required")
	}
	if strings.TrimSpace(markup) == "" {
		return 0, errors.New("sketch markup is empty")
	}
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := lib.db.ExecContext(ctx,
		`INSERT INTO sketches (name, prompt, markup, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		name, prompt, markup, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert sketch: %w", err)
	}
	return res.LastInsertId()
}

// UpdateSketch replaces the markup of an existing sketch.
func (lib *Library) UpdateSketch(ctx context.Context, id int64, markup string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := lib.db.ExecContext(ctx,
		`UPDATE sketches SET markup=?, updated_at=? WHERE id=?`, markup, now, id)
	if err != nil {
		return fmt.Errorf("update sketch: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetSketch loads one sketch by id.
func (lib *Library) GetSketch(ctx context.Context, id int64) (*Sketch, error) {
	row := lib.db.QueryRowContext(ctx,
		`SELECT id, name, prompt, markup, created_at, updated_at FROM sketches WHERE id=?`, id)
	return scanSketch(row)
}

// ListSketches returns all sketches, newest first, without markup bodies.
func (lib *Library) ListSketches(ctx context.Context) ([]Sketch, error) {
	rows, err := lib.db.QueryContext(ctx,
		`SELECT id, name, prompt, '', created_at, updated_at FROM sketches ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sketches: %w", err)
	}
	defer rows.Close()
	var out []Sketch
	for rows.Next() {
		s, err := scanSketch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// SearchSketches matches the query against sketch names and prompts,
// case-insensitively.
func (lib *Library) SearchSketches(ctx context.Context, query string) ([]Sketch, error) {
	q := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	rows, err := lib.db.QueryContext(ctx,
		`SELECT id, name, prompt, '', created_at, updated_at FROM sketches
		 WHERE lower(name) LIKE ? OR lower(prompt) LIKE ? ORDER BY updated_at DESC`, q, q)
	if err != nil {
		return nil, fmt.Errorf("search sketches: %w", err)
	}
	defer rows.Close()
	var out []Sketch
	for rows.Next() {
		s, err := scanSketch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// DeleteSketch removes a sketch by id.
func (lib *Library) DeleteSketch(ctx context.Context, id int64) error {
	res, err := lib.db.ExecContext(ctx, `DELETE FROM sketches WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete sketch: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordPrompt appends one generation attempt to the history.
func (lib *Library) RecordPrompt(ctx context.Context, prompt, colorName, widthName string, succeeded bool) error {
	ok := 0
	if succeeded {
		ok = 1
	}
	_, err := lib.db.ExecContext(ctx,
		`INSERT INTO prompt_history (prompt, color_name, width_name, succeeded, created_at) VALUES (?, ?, ?, ?, ?)`,
		prompt, colorName, widthName, ok, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("record prompt: %w", err)
	}
	return nil
}

// RecentPrompts returns the newest history entries, most recent first.
func (lib *Library) RecentPrompts(ctx context.Context, limit int) ([]PromptRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := lib.db.QueryContext(ctx,
		`SELECT id, prompt, color_name, width_name, succeeded, created_at
		 FROM prompt_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent prompts: %w", err)
	}
	defer rows.Close()
	var out []PromptRecord
	for rows.Next() {
		var r PromptRecord
		var ok int
		var created string
		if err := rows.Scan(&r.ID, &r.Prompt, &r.ColorName, &r.WidthName, &ok, &created); err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		r.Succeeded = ok != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSketch(row rowScanner) (*Sketch, error) {
	var s Sketch
	var created, updated string
	err := row.Scan(&s.ID, &s.Name, &s.Prompt, &s.Markup, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan sketch: %w", err)
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, created)
	s.UpdatedAt, _ = time.Parse(time.RFC3339, updated)
	return &s, nil
}
