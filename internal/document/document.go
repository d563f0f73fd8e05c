/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package document owns the live shape tree. It parses generated markup into
// shapes, and serializes the tree back to a canonical markup string used for
// export and history snapshots.
package document

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"svgstudio/internal/geom"
	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"

	"github.com/JoshVarga/svgparser"
)

// SVGNamespace is declared on the root element when serializing.
const SVGNamespace = "http://www.w3.org/2000/svg"

// ParseError describes why ingestion of a markup string was rejected. The
// previous document is left untouched when parsing fails.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse document: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse document: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// Document is the live shape tree plus the root dimensions.
type Document struct {
	Width   float64
	Height  float64
	ViewBox geom.Rect
	Shapes  []shape.Shape
}

// New returns an empty document with the given canvas size.
func New(width, height float64) *Document {
	return &Document{Width: width, Height: height, ViewBox: geom.R(0, 0, width, height)}
}

// Parse builds a document from a markup string. The markup must be a single
// well-formed svg root element; anything else yields a *ParseError.
func Parse(markup string) (*Document, error) {
	root, err := svgparser.Parse(strings.NewReader(markup), false)
	if err != nil {
		return nil, &ParseError{Reason: "markup is not well-formed", Err: err}
	}
	if root == nil || root.Name != "svg" {
		name := "(none)"
		if root != nil {
			name = root.Name
		}
		return nil, &ParseError{Reason: fmt.Sprintf("root element is %s, expected svg", name)}
	}

	doc := &Document{}
	doc.Width = dimension(root.Attributes["width"])
	doc.Height = dimension(root.Attributes["height"])
	if vb, ok := parseViewBox(root.Attributes["viewBox"]); ok {
		doc.ViewBox = vb
	} else {
		doc.ViewBox = geom.R(0, 0, doc.Width, doc.Height)
	}
	if doc.Width == 0 {
		doc.Width = doc.ViewBox.W
	}
	if doc.Height == 0 {
		doc.Height = doc.ViewBox.H
	}

	l := applog.WithComponent("document")
	if err := collectShapes(doc, root, l); err != nil {
		return nil, err
	}
	return doc, nil
}

// collectShapes walks the element tree depth-first. Group elements are
// flattened; their children join the document in order. Unknown elements are
// skipped with a log entry rather than failing the whole ingestion.
func collectShapes(doc *Document, parent *svgparser.Element, l *slog.Logger) error {
	for _, child := range parent.Children {
		switch child.Name {
		case "g":
			if strings.TrimSpace(child.Attributes["transform"]) != "" {
				l.Warn("group transform ignored", slog.String("transform", child.Attributes["transform"]))
			}
			if err := collectShapes(doc, child, l); err != nil {
				return err
			}
		case "defs", "title", "desc", "style", "metadata":
			continue
		default:
			s, err := shape.FromElement(child)
			if err != nil {
				return &ParseError{Reason: fmt.Sprintf("invalid %s element", child.Name), Err: err}
			}
			if s == nil {
				l.Debug("skipping unsupported element", slog.String("name", child.Name))
				continue
			}
			doc.Shapes = append(doc.Shapes, s)
		}
	}
	return nil
}

// Serialize renders the document as canonical markup. The root element always
// declares the default SVG namespace, so exported files open standalone.
// Serialization is deterministic: parsing the output and serializing again
// yields the identical string.
func (d *Document) Serialize() string {
	var b strings.Builder
	b.WriteString(`<svg xmlns="`)
	b.WriteString(SVGNamespace)
	b.WriteString(`" width="`)
	b.WriteString(strconv.FormatFloat(geom.FloatRound(d.Width, 3), 'f', -1, 64))
	b.WriteString(`" height="`)
	b.WriteString(strconv.FormatFloat(geom.FloatRound(d.Height, 3), 'f', -1, 64))
	b.WriteString(`" viewBox="`)
	b.WriteString(formatViewBox(d.ViewBox))
	b.WriteString("\">\n")
	for _, s := range d.Shapes {
		b.WriteString("  ")
		s.AppendSVG(&b)
		b.WriteString("\n")
	}
	b.WriteString("</svg>")
	return b.String()
}

// Clone deep-copies the document, used for autosaves.
func (d *Document) Clone() *Document {
	c := &Document{Width: d.Width, Height: d.Height, ViewBox: d.ViewBox}
	c.Shapes = make([]shape.Shape, len(d.Shapes))
	for i, s := range d.Shapes {
		c.Shapes[i] = s.Clone()
	}
	return c
}

// Remove deletes the given shapes from the tree, preserving order of the rest.
func (d *Document) Remove(victims ...shape.Shape) {
	if len(victims) == 0 {
		return
	}
	drop := make(map[shape.Shape]bool, len(victims))
	for _, v := range victims {
		drop[v] = true
	}
	kept := d.Shapes[:0]
	for _, s := range d.Shapes {
		if !drop[s] {
			kept = append(kept, s)
		}
	}
	d.Shapes = kept
}

// Append adds a shape on top of the tree (last in paint order).
func (d *Document) Append(s shape.Shape) { d.Shapes = append(d.Shapes, s) }

// dimension parses a width/height attribute, tolerating a px suffix.
func dimension(raw string) float64 {
	v := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "px"))
	if v == "" {
		return 0
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f < 0 {
		return 0
	}
	return f
}

func parseViewBox(raw string) (geom.Rect, bool) {
	fields := strings.Fields(strings.ReplaceAll(raw, ",", " "))
	if len(fields) != 4 {
		return geom.Rect{}, false
	}
	var vals [4]float64
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geom.Rect{}, false
		}
		vals[i] = v
	}
	if vals[2] <= 0 || vals[3] <= 0 {
		return geom.Rect{}, false
	}
	return geom.R(vals[0], vals[1], vals[2], vals[3]), true
}

func formatViewBox(r geom.Rect) string {
	f := func(v float64) string { return strconv.FormatFloat(geom.FloatRound(v, 3), 'f', -1, 64) }
	return f(r.X) + " " + f(r.Y) + " " + f(r.W) + " " + f(r.H)
}
