/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"fmt"
	"strconv"
	"strings"

	"svgstudio/internal/geom"

	"github.com/JoshVarga/svgparser"
)

// FromElement constructs a shape from a parsed SVG element. It returns
// (nil, nil) for element names outside the closed kind set so callers can skip
// decorative markup the generator may emit.
func FromElement(e *svgparser.Element) (Shape, error) {
	st := styleFromAttrs(e.Attributes)
	xf := readTransform(e.Attributes)

	var s Shape
	switch e.Name {
	case "line":
		v, err := floats(e.Attributes, "x1", "y1", "x2", "y2")
		if err != nil {
			return nil, err
		}
		s = NewLine(v[0], v[1], v[2], v[3], st)
	case "rect":
		v, err := floats(e.Attributes, "x", "y", "width", "height")
		if err != nil {
			return nil, err
		}
		s = NewRect(v[0], v[1], v[2], v[3], st)
	case "circle":
		v, err := floats(e.Attributes, "cx", "cy", "r")
		if err != nil {
			return nil, err
		}
		s = NewCircle(v[0], v[1], v[2], st)
	case "ellipse":
		v, err := floats(e.Attributes, "cx", "cy", "rx", "ry")
		if err != nil {
			return nil, err
		}
		s = NewEllipse(v[0], v[1], v[2], v[3], st)
	case "polygon", "polyline":
		pts, err := parsePoints(e.Attributes["points"])
		if err != nil {
			return nil, fmt.Errorf("%s points: %w", e.Name, err)
		}
		if e.Name == "polygon" {
			s = NewPolygon(pts, st)
		} else {
			s = NewPolyline(pts, st)
		}
	case "path":
		d := strings.TrimSpace(e.Attributes["d"])
		if d == "" {
			return nil, fmt.Errorf("path without data")
		}
		if cmds, closed, ok := parsePathData(d); ok {
			s = NewPath(cmds, closed, st)
		} else {
			s = newRawPath(d, st)
		}
	case "text":
		v, err := floats(e.Attributes, "x", "y")
		if err != nil {
			return nil, err
		}
		t := NewText(v[0], v[1], strings.TrimSpace(e.Content), st)
		if fs, ferr := strconv.ParseFloat(strings.TrimSpace(e.Attributes["font-size"]), 64); ferr == nil && fs > 0 {
			t.FontSize = fs
		}
		s = t
	default:
		return nil, nil
	}
	s.SetTransform(xf)
	return s, nil
}

func styleFromAttrs(attrs map[string]string) Style {
	st := DefaultStyle()
	if v := strings.TrimSpace(attrs["stroke"]); v != "" {
		st.Stroke = v
	}
	if v := strings.TrimSpace(attrs["stroke-width"]); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil && w > 0 {
			st.StrokeWidth = w
		}
	}
	if v := strings.TrimSpace(attrs["stroke-dasharray"]); v != "" && v != "none" {
		st.Dashed = true
	}
	if v := strings.TrimSpace(attrs["fill"]); v != "" {
		st.Fill = v
	}
	return st
}

func floats(attrs map[string]string, names ...string) ([]float64, error) {
	out := make([]float64, len(names))
	for i, n := range names {
		raw, ok := attrs[n]
		if !ok {
			// Missing numeric attributes default to zero, matching how
			// browsers treat them.
			out[i] = 0
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("attribute %s=%q: %w", n, raw, err)
		}
		out[i] = v
	}
	return out, nil
}

func parsePoints(raw string) ([]geom.Pt, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t' || r == '\n' || r == '\r'
	})
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, fmt.Errorf("expected coordinate pairs, got %d values", len(fields))
	}
	pts := make([]geom.Pt, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		x, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return nil, err
		}
		pts = append(pts, geom.Pt{X: x, Y: y})
	}
	return pts, nil
}
