/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"
	"strconv"
	"strings"

	"svgstudio/internal/geom"
)

// PathCmd is one absolute move or line command of an editable path.
type PathCmd struct {
	Op byte // 'M' or 'L'
	P  geom.Pt
}

// Path is an SVG path restricted to absolute move/line segments plus an
// optional trailing close. Paths using other commands (curves, arcs) keep
// their raw data and are selectable, movable and rotatable, but expose no
// control points.
type Path struct {
	base
	Cmds   []PathCmd
	Closed bool
	// raw holds the original path data for non-editable paths.
	raw string
}

// NewPath builds an editable path from move/line commands.
func NewPath(cmds []PathCmd, closed bool, st Style) *Path {
	return &Path{base: base{style: st}, Cmds: cmds, Closed: closed}
}

// newRawPath wraps path data with unsupported commands.
func newRawPath(d string, st Style) *Path {
	return &Path{base: base{style: st}, raw: d}
}

func (p *Path) Kind() Kind { return KindPath }

// Editable reports whether the path exposes vertex handles.
func (p *Path) Editable() bool { return p.raw == "" }

// ControlPoints exposes one point per move/line command, in command order.
func (p *Path) ControlPoints() []ControlPoint {
	if !p.Editable() {
		return nil
	}
	cps := make([]ControlPoint, len(p.Cmds))
	for i, c := range p.Cmds {
		cps[i] = ControlPoint{X: c.P.X, Y: c.P.Y, Index: i, Kind: CPVertex}
	}
	return cps
}

// SetControlPoint replaces one command's endpoint. The path data is rebuilt on
// serialization, preserving the trailing close flag.
func (p *Path) SetControlPoint(i int, pt geom.Pt) bool {
	if !p.Editable() || i < 0 || i >= len(p.Cmds) {
		return false
	}
	p.Cmds[i].P = pt
	return true
}

func (p *Path) LocalBounds() geom.Rect {
	if !p.Editable() {
		return rawPathBounds(p.raw)
	}
	if len(p.Cmds) == 0 {
		return geom.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range p.Cmds {
		minX = math.Min(minX, c.P.X)
		minY = math.Min(minY, c.P.Y)
		maxX = math.Max(maxX, c.P.X)
		maxY = math.Max(maxY, c.P.Y)
	}
	return geom.R(minX, minY, maxX-minX, maxY-minY)
}

func (p *Path) HitLocal(pt geom.Pt, tol float64) bool {
	if !p.Editable() {
		return p.LocalBounds().Inset(-tol, -tol).Contains(pt)
	}
	limit := tol + p.style.StrokeWidth/2
	var start, cur geom.Pt
	started := false
	for _, c := range p.Cmds {
		if c.Op == 'M' {
			start, cur = c.P, c.P
			started = true
			continue
		}
		if !started {
			continue
		}
		if segmentDist(pt, cur, c.P) <= limit {
			return true
		}
		cur = c.P
	}
	if p.Closed && started && segmentDist(pt, cur, start) <= limit {
		return true
	}
	return false
}

func (p *Path) Clone() Shape {
	c := *p
	c.Cmds = append([]PathCmd(nil), p.Cmds...)
	return &c
}

// Data rebuilds the path data string.
func (p *Path) Data() string {
	if !p.Editable() {
		return p.raw
	}
	var b strings.Builder
	for i, c := range p.Cmds {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteByte(c.Op)
		b.WriteString(" ")
		b.WriteString(fnum(c.P.X))
		b.WriteString(" ")
		b.WriteString(fnum(c.P.Y))
	}
	if p.Closed {
		b.WriteString(" Z")
	}
	return b.String()
}

func (p *Path) AppendSVG(b *strings.Builder) {
	b.WriteString("<path")
	attr(b, "d", p.Data())
	p.writeCommonAttrs(b)
	b.WriteString("/>")
}

// parsePathData parses absolute move/line path data. It returns ok=false when
// the data uses any other command, in which case the caller keeps the raw
// string and treats the path as non-editable at the vertex level.
func parsePathData(d string) (cmds []PathCmd, closed, ok bool) {
	fields := tokenizePath(d)
	op := byte(0)
	var nums []float64
	flush := func() bool {
		if op == 0 {
			return len(nums) == 0
		}
		if len(nums)%2 != 0 || (op != 'M' && op != 'L') {
			return false
		}
		cur := op
		for i := 0; i+1 < len(nums); i += 2 {
			cmds = append(cmds, PathCmd{Op: cur, P: geom.Pt{X: nums[i], Y: nums[i+1]}})
			// Subsequent pairs after an M are implicit line-tos.
			cur = 'L'
		}
		nums = nums[:0]
		return true
	}
	for _, f := range fields {
		switch f {
		case "M", "L":
			if !flush() {
				return nil, false, false
			}
			op = f[0]
		case "Z", "z":
			if !flush() {
				return nil, false, false
			}
			closed = true
			op = 0
		default:
			v, err := strconv.ParseFloat(f, 64)
			if err != nil || op == 0 {
				return nil, false, false
			}
			nums = append(nums, v)
		}
	}
	if !flush() {
		return nil, false, false
	}
	return cmds, closed, len(cmds) > 0
}

// tokenizePath splits path data on whitespace and commas, keeping single
// command letters as their own tokens.
func tokenizePath(d string) []string {
	var out []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}
	for _, r := range d {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ',':
			flush()
		case (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z'):
			flush()
			out = append(out, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}

// rawPathBounds approximates bounds of unsupported path data by scanning all
// numbers as coordinate pairs. Good enough for selection rectangles.
func rawPathBounds(d string) geom.Rect {
	var nums []float64
	for _, f := range tokenizePath(d) {
		if v, err := strconv.ParseFloat(f, 64); err == nil {
			nums = append(nums, v)
		}
	}
	if len(nums) < 2 {
		return geom.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i+1 < len(nums); i += 2 {
		minX = math.Min(minX, nums[i])
		minY = math.Min(minY, nums[i+1])
		maxX = math.Max(maxX, nums[i])
		maxY = math.Max(maxY, nums[i+1])
	}
	return geom.R(minX, minY, maxX-minX, maxY-minY)
}
