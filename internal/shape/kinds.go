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
	"strings"

	"svgstudio/internal/geom"
)

// minExtent is the smallest width/height a resize edit may leave on a
// rectangle. Resize edits are clamped here so continuous dragging can never
// invert the shape.
const minExtent = 0.01

// Line is a straight segment between two endpoints.
type Line struct {
	base
	X1, Y1, X2, Y2 float64
}

func NewLine(x1, y1, x2, y2 float64, st Style) *Line {
	return &Line{base: base{style: st}, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

func (l *Line) Kind() Kind { return KindLine }

func (l *Line) ControlPoints() []ControlPoint {
	return []ControlPoint{
		{X: l.X1, Y: l.Y1, Index: 0, Kind: CPVertex},
		{X: l.X2, Y: l.Y2, Index: 1, Kind: CPVertex},
	}
}

func (l *Line) SetControlPoint(i int, p geom.Pt) bool {
	switch i {
	case 0:
		l.X1, l.Y1 = p.X, p.Y
	case 1:
		l.X2, l.Y2 = p.X, p.Y
	default:
		return false
	}
	return true
}

func (l *Line) LocalBounds() geom.Rect {
	x := math.Min(l.X1, l.X2)
	y := math.Min(l.Y1, l.Y2)
	return geom.R(x, y, math.Abs(l.X2-l.X1), math.Abs(l.Y2-l.Y1))
}

func (l *Line) HitLocal(p geom.Pt, tol float64) bool {
	return segmentDist(p, geom.Pt{X: l.X1, Y: l.Y1}, geom.Pt{X: l.X2, Y: l.Y2}) <= tol+l.style.StrokeWidth/2
}

func (l *Line) Clone() Shape {
	c := *l
	return &c
}

func (l *Line) AppendSVG(b *strings.Builder) {
	b.WriteString("<line")
	attr(b, "x1", fnum(l.X1))
	attr(b, "y1", fnum(l.Y1))
	attr(b, "x2", fnum(l.X2))
	attr(b, "y2", fnum(l.Y2))
	l.writeCommonAttrs(b)
	b.WriteString("/>")
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	base
	X, Y, W, H float64
}

func NewRect(x, y, w, h float64, st Style) *Rect {
	return &Rect{base: base{style: st}, X: x, Y: y, W: w, H: h}
}

func (r *Rect) Kind() Kind { return KindRect }

// ControlPoints exposes the top-left and bottom-right resize handles.
func (r *Rect) ControlPoints() []ControlPoint {
	return []ControlPoint{
		{X: r.X, Y: r.Y, Index: 0, Kind: CPResize},
		{X: r.X + r.W, Y: r.Y + r.H, Index: 1, Kind: CPResize},
	}
}

// SetControlPoint resizes the rectangle keeping the opposite corner fixed.
// Edits are clamped so width and height stay positive.
func (r *Rect) SetControlPoint(i int, p geom.Pt) bool {
	switch i {
	case 0:
		right := r.X + r.W
		bottom := r.Y + r.H
		nx := math.Min(p.X, right-minExtent)
		ny := math.Min(p.Y, bottom-minExtent)
		r.X, r.Y = nx, ny
		r.W, r.H = right-nx, bottom-ny
	case 1:
		r.W = math.Max(p.X-r.X, minExtent)
		r.H = math.Max(p.Y-r.Y, minExtent)
	default:
		return false
	}
	return true
}

func (r *Rect) LocalBounds() geom.Rect { return geom.R(r.X, r.Y, r.W, r.H) }

func (r *Rect) HitLocal(p geom.Pt, tol float64) bool {
	return geom.R(r.X, r.Y, r.W, r.H).Inset(-tol, -tol).Contains(p)
}

func (r *Rect) Clone() Shape {
	c := *r
	return &c
}

func (r *Rect) AppendSVG(b *strings.Builder) {
	b.WriteString("<rect")
	attr(b, "x", fnum(r.X))
	attr(b, "y", fnum(r.Y))
	attr(b, "width", fnum(r.W))
	attr(b, "height", fnum(r.H))
	r.writeCommonAttrs(b)
	b.WriteString("/>")
}

// Circle is a circle defined by center and radius.
type Circle struct {
	base
	CX, CY, R float64
}

func NewCircle(cx, cy, radius float64, st Style) *Circle {
	return &Circle{base: base{style: st}, CX: cx, CY: cy, R: radius}
}

func (c *Circle) Kind() Kind { return KindCircle }

// ControlPoints exposes the center and one radius handle at (cx+r, cy).
func (c *Circle) ControlPoints() []ControlPoint {
	return []ControlPoint{
		{X: c.CX, Y: c.CY, Index: 0, Kind: CPCenter},
		{X: c.CX + c.R, Y: c.CY, Index: 1, Kind: CPRadius},
	}
}

func (c *Circle) SetControlPoint(i int, p geom.Pt) bool {
	switch i {
	case 0:
		c.CX, c.CY = p.X, p.Y
	case 1:
		c.R = geom.Dist(p, geom.Pt{X: c.CX, Y: c.CY})
	default:
		return false
	}
	return true
}

func (c *Circle) LocalBounds() geom.Rect {
	return geom.R(c.CX-c.R, c.CY-c.R, 2*c.R, 2*c.R)
}

func (c *Circle) HitLocal(p geom.Pt, tol float64) bool {
	return geom.Dist(p, geom.Pt{X: c.CX, Y: c.CY}) <= c.R+tol
}

func (c *Circle) Clone() Shape {
	cp := *c
	return &cp
}

func (c *Circle) AppendSVG(b *strings.Builder) {
	b.WriteString("<circle")
	attr(b, "cx", fnum(c.CX))
	attr(b, "cy", fnum(c.CY))
	attr(b, "r", fnum(c.R))
	c.writeCommonAttrs(b)
	b.WriteString("/>")
}

// Ellipse is an axis-aligned ellipse defined by center and two radii.
type Ellipse struct {
	base
	CX, CY, RX, RY float64
}

func NewEllipse(cx, cy, rx, ry float64, st Style) *Ellipse {
	return &Ellipse{base: base{style: st}, CX: cx, CY: cy, RX: rx, RY: ry}
}

func (e *Ellipse) Kind() Kind { return KindEllipse }

// ControlPoints exposes the center plus independent handles for each radius.
func (e *Ellipse) ControlPoints() []ControlPoint {
	return []ControlPoint{
		{X: e.CX, Y: e.CY, Index: 0, Kind: CPCenter},
		{X: e.CX + e.RX, Y: e.CY, Index: 1, Kind: CPRadiusX},
		{X: e.CX, Y: e.CY + e.RY, Index: 2, Kind: CPRadiusY},
	}
}

func (e *Ellipse) SetControlPoint(i int, p geom.Pt) bool {
	switch i {
	case 0:
		e.CX, e.CY = p.X, p.Y
	case 1:
		e.RX = math.Abs(p.X - e.CX)
	case 2:
		e.RY = math.Abs(p.Y - e.CY)
	default:
		return false
	}
	return true
}

func (e *Ellipse) LocalBounds() geom.Rect {
	return geom.R(e.CX-e.RX, e.CY-e.RY, 2*e.RX, 2*e.RY)
}

func (e *Ellipse) HitLocal(p geom.Pt, tol float64) bool {
	rx := e.RX + tol
	ry := e.RY + tol
	if rx <= 0 || ry <= 0 {
		return false
	}
	dx := (p.X - e.CX) / rx
	dy := (p.Y - e.CY) / ry
	return dx*dx+dy*dy <= 1
}

func (e *Ellipse) Clone() Shape {
	c := *e
	return &c
}

func (e *Ellipse) AppendSVG(b *strings.Builder) {
	b.WriteString("<ellipse")
	attr(b, "cx", fnum(e.CX))
	attr(b, "cy", fnum(e.CY))
	attr(b, "rx", fnum(e.RX))
	attr(b, "ry", fnum(e.RY))
	e.writeCommonAttrs(b)
	b.WriteString("/>")
}

// Poly is the shared implementation of polygon (closed) and polyline (open).
type Poly struct {
	base
	Points []geom.Pt
	Closed bool
}

func NewPolygon(pts []geom.Pt, st Style) *Poly {
	return &Poly{base: base{style: st}, Points: pts, Closed: true}
}

func NewPolyline(pts []geom.Pt, st Style) *Poly {
	return &Poly{base: base{style: st}, Points: pts, Closed: false}
}

func (p *Poly) Kind() Kind {
	if p.Closed {
		return KindPolygon
	}
	return KindPolyline
}

// ControlPoints exposes one vertex per coordinate pair, in listed order.
func (p *Poly) ControlPoints() []ControlPoint {
	cps := make([]ControlPoint, len(p.Points))
	for i, pt := range p.Points {
		cps[i] = ControlPoint{X: pt.X, Y: pt.Y, Index: i, Kind: CPVertex}
	}
	return cps
}

func (p *Poly) SetControlPoint(i int, pt geom.Pt) bool {
	if i < 0 || i >= len(p.Points) {
		return false
	}
	p.Points[i] = pt
	return true
}

// AppendPoint grows the polyline while freehand drawing.
func (p *Poly) AppendPoint(pt geom.Pt) { p.Points = append(p.Points, pt) }

func (p *Poly) LocalBounds() geom.Rect {
	if len(p.Points) == 0 {
		return geom.Rect{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pt := range p.Points {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}
	return geom.R(minX, minY, maxX-minX, maxY-minY)
}

func (p *Poly) HitLocal(pt geom.Pt, tol float64) bool {
	n := len(p.Points)
	if n == 0 {
		return false
	}
	if n == 1 {
		return geom.Dist(pt, p.Points[0]) <= tol
	}
	limit := tol + p.style.StrokeWidth/2
	for i := 0; i < n-1; i++ {
		if segmentDist(pt, p.Points[i], p.Points[i+1]) <= limit {
			return true
		}
	}
	if p.Closed && segmentDist(pt, p.Points[n-1], p.Points[0]) <= limit {
		return true
	}
	return false
}

func (p *Poly) Clone() Shape {
	c := *p
	c.Points = append([]geom.Pt(nil), p.Points...)
	return &c
}

func (p *Poly) AppendSVG(b *strings.Builder) {
	if p.Closed {
		b.WriteString("<polygon")
	} else {
		b.WriteString("<polyline")
	}
	var pts strings.Builder
	for i, pt := range p.Points {
		if i > 0 {
			pts.WriteString(" ")
		}
		pts.WriteString(fnum(pt.X))
		pts.WriteString(",")
		pts.WriteString(fnum(pt.Y))
	}
	attr(b, "points", pts.String())
	p.writeCommonAttrs(b)
	b.WriteString("/>")
}
