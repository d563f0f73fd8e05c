/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package backend talks to the optional sketch gallery service: a thin HTTP
// API for sharing sketches, plus direct Postgres search for self-hosted
// galleries. The editor works fully without it.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal HTTP client for the gallery API.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a gallery client. baseURL may include a trailing slash;
// it will be normalized.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("gallery %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Entry is a published sketch as the gallery lists it.
type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// ListEntries returns the gallery listing, newest first.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	var list []Entry
	if err := c.doJSON(ctx, http.MethodGet, "/api/sketches", nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// EntryMarkup fetches the full markup of one gallery entry.
func (c *Client) EntryMarkup(ctx context.Context, id int64) (string, error) {
	var env struct {
		Markup string `json:"markup"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/sketches/%d", id), nil, &env); err != nil {
		return "", err
	}
	return env.Markup, nil
}

// PublishRequest is the payload for sharing a sketch.
type PublishRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt,omitempty"`
	Markup string `json:"markup"`
}

// Publish uploads a sketch and returns its gallery id.
func (c *Client) Publish(ctx context.Context, req PublishRequest) (int64, error) {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Markup) == "" {
		return 0, fmt.Errorf("publish requires a name and markup")
	}
	var env struct {
		ID int64 `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/sketches", req, &env); err != nil {
		return 0, err
	}
	return env.ID, nil
}
