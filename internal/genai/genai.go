/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package genai turns a natural-language geometry description into SVG markup
// via a chat-completion service. The rest of the application consumes it as an
// opaque prompt-to-markup function; all service details stay in here.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"
)

var (
	// ErrNoAPIKey means no credential is configured; the caller should
	// surface this before attempting any generation.
	ErrNoAPIKey = errors.New("no API key configured")
	// ErrEmptyPrompt rejects blank descriptions locally.
	ErrEmptyPrompt = errors.New("prompt is empty")
	// ErrMalformedReply means the service answered but the reply could not
	// be coerced into a markup fragment bounded by svg tags.
	ErrMalformedReply = errors.New("reply contains no svg markup")
)

// StyleOptions narrow the generation output. Names are drawn from closed
// enumerations; anything else is rejected before the request is sent.
type StyleOptions struct {
	StrokeColorName string // black|blue|red|green|orange, "" for default
	StrokeWidthName string // thin|medium|thick, "" for default
	Annotations     string // free-form extra instructions
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient normalizes the base URL and applies the request timeout.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

const systemPrompt = "You generate SVG diagrams from geometry descriptions. " +
	"Reply with a single <svg> element and nothing else. Use only these elements: " +
	"line, rect, circle, ellipse, polygon, polyline, path (M/L/Z commands only), text. " +
	"Set a width, height and viewBox on the root. Shapes use stroke with fill=\"none\" unless asked otherwise."

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate produces SVG markup for the description. The result is the
// extracted <svg>...</svg> substring, ready for document ingestion.
func (c *Client) Generate(ctx context.Context, prompt string, opts StyleOptions) (string, error) {
	if strings.TrimSpace(c.APIKey) == "" {
		return "", ErrNoAPIKey
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	user, err := buildUserPrompt(prompt, opts)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("generation request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("read generation reply: %w", err)
	}
	applog.WithComponent("genai").Debug("generation call finished",
		"status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// error bodies are not always JSON (proxies return HTML)
		var failed chatResponse
		if err := json.Unmarshal(data, &failed); err == nil && failed.Error != nil && failed.Error.Message != "" {
			return "", fmt.Errorf("generation service: %s", failed.Error.Message)
		}
		return "", fmt.Errorf("generation service: %s", resp.Status)
	}
	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", fmt.Errorf("decode generation reply: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", ErrMalformedReply
	}
	return ExtractMarkup(parsed.Choices[0].Message.Content)
}

// buildUserPrompt folds the style options into the description, validating
// the enum names first.
func buildUserPrompt(prompt string, opts StyleOptions) (string, error) {
	var b strings.Builder
	b.WriteString(prompt)
	if opts.StrokeColorName != "" {
		hex, ok := shape.StrokeColors[opts.StrokeColorName]
		if !ok {
			return "", fmt.Errorf("unknown stroke color %q", opts.StrokeColorName)
		}
		fmt.Fprintf(&b, "\nUse stroke color %s (%s).", opts.StrokeColorName, hex)
	}
	if opts.StrokeWidthName != "" {
		w, ok := shape.StrokeWidths[opts.StrokeWidthName]
		if !ok {
			return "", fmt.Errorf("unknown stroke width %q", opts.StrokeWidthName)
		}
		fmt.Fprintf(&b, "\nUse stroke width %g.", w)
	}
	if a := strings.TrimSpace(opts.Annotations); a != "" {
		b.WriteString("\n")
		b.WriteString(a)
	}
	return b.String(), nil
}

// ExtractMarkup strips incidental code fences and returns the substring
// between the first opening and last closing svg tag.
func ExtractMarkup(reply string) (string, error) {
	s := strings.TrimSpace(reply)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.Index(s, "<svg")
	end := strings.LastIndex(s, "</svg>")
	if start < 0 || end < 0 || end < start {
		return "", ErrMalformedReply
	}
	return s[start : end+len("</svg>")], nil
}
