/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// OpenDB connects to a self-hosted gallery database and verifies the
// connection.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

// SearchQuery narrows a gallery search.
type SearchQuery struct {
	Text   string // full-text match over name and prompt
	Author string // exact author filter
	Limit  int
	Offset int
}

// SearchEntries searches the sketches table directly, bypassing the HTTP API.
// Used by the CLI against self-hosted galleries where the operator has a DSN.
func SearchEntries(ctx context.Context, db *sql.DB, q SearchQuery) ([]Entry, error) {
	var (
		args []any
		b    strings.Builder
	)
	place := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	b.WriteString("SELECT s.id, s.name, COALESCE(s.prompt,''), COALESCE(s.author,''), s.created_at FROM sketches s WHERE TRUE ")
	if t := strings.TrimSpace(q.Text); t != "" {
		b.WriteString(" AND s.search_vector @@ plainto_tsquery('simple', " + place(t) + ") ")
	}
	if a := strings.TrimSpace(q.Author); a != "" {
		b.WriteString(" AND lower(COALESCE(s.author,'')) = " + place(strings.ToLower(a)) + " ")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	b.WriteString(" ORDER BY s.created_at DESC, s.id DESC ")
	b.WriteString(" LIMIT " + place(limit) + " OFFSET " + place(offset))

	rows, err := db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("gallery search: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.Prompt, &e.Author, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
