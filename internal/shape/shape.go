/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape implements the polymorphic shape model of the editor: a closed
// set of shape kinds, each with intrinsic geometry in its own local space, an
// applied transform, a style, and kind-specific control points for vertex
// editing. Kind dispatch is bound once at construction; operations never
// re-inspect tags.
package shape

import (
	"strings"

	"svgstudio/internal/geom"
)

// Kind identifies one of the closed set of shape kinds.
type Kind string

const (
	KindLine     Kind = "line"
	KindRect     Kind = "rect"
	KindCircle   Kind = "circle"
	KindEllipse  Kind = "ellipse"
	KindPolygon  Kind = "polygon"
	KindPolyline Kind = "polyline"
	KindPath     Kind = "path"
	KindText     Kind = "text"
)

// ControlPointKind describes the editing semantics of a handle.
type ControlPointKind uint8

const (
	CPVertex ControlPointKind = iota
	CPCenter
	CPRadius
	CPRadiusX
	CPRadiusY
	CPResize
)

// ControlPoint is a transient, derived marker for one editable coordinate of a
// shape's intrinsic geometry. Coordinates are in the shape's local space; the
// render layer maps them through the shape's applied transform.
type ControlPoint struct {
	X, Y  float64
	Index int
	Kind  ControlPointKind
}

// Shape is a node in the live document tree. Intrinsic geometry and the
// applied transform are edited independently: SetControlPoint mutates local
// geometry only, SetTransform mutates the applied transform only.
type Shape interface {
	Kind() Kind

	Transform() Transform
	SetTransform(Transform)
	Style() Style
	SetStyle(Style)

	// ControlPoints derives the current handles from intrinsic geometry.
	// Shapes that cannot be vertex-edited (paths with unsupported commands)
	// return nil.
	ControlPoints() []ControlPoint

	// SetControlPoint moves handle i to the given local-space position and
	// reports whether the edit was applied. Edits that would make the shape
	// invalid are clamped or rejected, never escalated.
	SetControlPoint(i int, p geom.Pt) bool

	// LocalBounds returns the intrinsic (pre-transform) bounding box.
	LocalBounds() geom.Rect

	// HitLocal tests a local-space point against the shape with the given
	// tolerance in document units.
	HitLocal(p geom.Pt, tol float64) bool

	Clone() Shape

	// AppendSVG writes the shape's markup, including persisted transform and
	// style attributes, to b.
	AppendSVG(b *strings.Builder)
}

// base carries the state shared by every shape kind.
type base struct {
	xf    Transform
	style Style
}

func (b *base) Transform() Transform     { return b.xf }
func (b *base) SetTransform(t Transform) { b.xf = t }
func (b *base) Style() Style             { return b.style }
func (b *base) SetStyle(s Style)         { b.style = s }

// Bounds returns the shape's document-space bounding box: its intrinsic
// bounds pushed through the applied transform.
func Bounds(s Shape) geom.Rect {
	return s.Transform().Matrix().ApplyRect(s.LocalBounds())
}

// Hit tests a document-space point against the shape by inverting the
// shape's applied transform. tol is in document units.
func Hit(s Shape, doc geom.Pt, tol float64) bool {
	local := s.Transform().Matrix().Invert().Apply(doc)
	return s.HitLocal(local, tol)
}

// ToLocal maps a document-space point into the shape's local coordinate
// space. Vertex dragging on moved or rotated shapes depends on this inverse
// mapping; without it, edits drift.
func ToLocal(s Shape, doc geom.Pt) geom.Pt {
	return s.Transform().Matrix().Invert().Apply(doc)
}

// writeCommonAttrs emits style and transform attributes shared by all kinds.
func (b *base) writeCommonAttrs(sb *strings.Builder) {
	st := b.style
	attr(sb, "stroke", st.Stroke)
	attr(sb, "stroke-width", fnum(st.StrokeWidth))
	if st.Dashed {
		attr(sb, "stroke-dasharray", DashPattern)
	}
	attr(sb, "fill", st.Fill)
	for _, kv := range transformAttrs(b.xf) {
		attr(sb, kv[0], kv[1])
	}
}

func attr(sb *strings.Builder, name, value string) {
	sb.WriteString(" ")
	sb.WriteString(name)
	sb.WriteString("=\"")
	sb.WriteString(escAttr(value))
	sb.WriteString("\"")
}

func escAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")
	return r.Replace(s)
}

func escText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

// segmentDist returns the distance from p to the segment a-b.
func segmentDist(p, a, b geom.Pt) float64 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	l2 := abx*abx + aby*aby
	if l2 == 0 {
		return geom.Dist(p, a)
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return geom.Dist(p, geom.Pt{X: a.X + t*abx, Y: a.Y + t*aby})
}
