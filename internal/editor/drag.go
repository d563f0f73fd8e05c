/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"strings"

	"svgstudio/internal/geom"
	"svgstudio/internal/shape"
)

const (
	// Pointer tolerances in screen pixels; converted to document units via
	// the viewport so hit targets stay a constant size on screen.
	hitTolerancePx    = 6
	handleRadiusPx    = 6
	rotateHandleGapPx = 24

	// minDrawExtent is the minimum final size, in document units, below
	// which a freshly drawn shape is discarded on release.
	minDrawExtent = 2.0
)

// Modifiers carry the keyboard state accompanying a pointer event.
type Modifiers struct {
	// Additive augments the selection instead of replacing it.
	Additive bool
	// Constrain snaps line angles to 45 degree steps and forces equal
	// extents while drawing rectangles and ellipses.
	Constrain bool
}

// dragSession is the transient per-gesture state. Zeroed when the gesture
// ends; only one gesture is active at a time.
type dragSession struct {
	start      geom.Pt                         // pointer-down position in document space
	startXf    map[shape.Shape]shape.Transform // pre-drag transforms for move/rotate
	cpIndex    int                             // control point being dragged
	pivot      geom.Pt                         // frozen rotation pivot
	pending    shape.Shape                     // shape under construction while drawing
	backup     shape.Shape                     // pre-drag clone for vertex rollback
	collapseTo shape.Shape                     // collapse target decided on pointer-up
	changed    bool                            // whether the gesture mutated anything
}

// RotateHandle returns the rotate handle position in document space: above
// the top edge of the bounding box, centered. The second result is false when
// no box is showing.
func (e *Editor) RotateHandle() (geom.Pt, bool) {
	if e.bbox == nil {
		return geom.Pt{}, false
	}
	gap := e.view.DocUnits(rotateHandleGapPx)
	return geom.Pt{X: e.bbox.CenterX, Y: e.bbox.Y - gap}, true
}

// PointerDown starts a gesture. Coordinates are screen pixels; the editor maps
// them through the viewport. A pointer-down while a gesture or text prompt is
// active is ignored (single-pointer assumption).
func (e *Editor) PointerDown(x, y float64, mods Modifiers) {
	if e.mode != ModeIdle {
		return
	}
	p := e.view.ToDocument(geom.Pt{X: x, Y: y})

	if e.tool != ToolSelect {
		if e.tool == ToolText {
			e.textTarget = nil
			e.textAnchor = p
			e.mode = ModeAwaitingText
			return
		}
		pending := e.newPendingShape(p)
		e.doc.Append(pending)
		e.drag = dragSession{start: p, pending: pending}
		e.mode = ModeDrawing
		return
	}

	tol := e.view.DocUnits(hitTolerancePx)

	// Vertex handles take precedence, and exist only for a sole selection.
	if len(e.selection) == 1 {
		if idx, ok := e.hitControlPoint(p); ok {
			e.drag = dragSession{start: p, cpIndex: idx, backup: e.selection[0].Clone()}
			e.mode = ModeDraggingVertex
			return
		}
	}

	if h, ok := e.RotateHandle(); ok && geom.Dist(p, h) <= e.view.DocUnits(handleRadiusPx)*2 {
		e.drag = dragSession{start: p, startXf: e.captureTransforms(), pivot: geom.Pt{X: e.bbox.CenterX, Y: e.bbox.CenterY}}
		e.mode = ModeDraggingRotate
		return
	}

	if hit := e.hitShape(p, tol); hit != nil {
		var collapse shape.Shape
		if e.isSelected(hit) && !mods.Additive && len(e.selection) > 1 {
			// Collapsing a multi-selection to the clicked shape is decided
			// here but performed on release, and only if no drag follows,
			// so a move can still start from the full selection.
			collapse = hit
		} else {
			e.Select(hit, mods.Additive)
		}
		e.drag = dragSession{start: p, startXf: e.captureTransforms(), collapseTo: collapse}
		e.mode = ModeDraggingMove
		return
	}

	e.DeselectAll()
}

// PointerMove advances the active gesture. No-op while idle.
func (e *Editor) PointerMove(x, y float64, mods Modifiers) {
	p := e.view.ToDocument(geom.Pt{X: x, Y: y})
	switch e.mode {
	case ModeDrawing:
		e.growPending(p, mods.Constrain)
		e.drag.changed = true
	case ModeDraggingVertex:
		s := e.selection[0]
		if s.SetControlPoint(e.drag.cpIndex, shape.ToLocal(s, p)) {
			e.drag.changed = true
			e.refreshDerived()
		}
	case ModeDraggingMove:
		dx := p.X - e.drag.start.X
		dy := p.Y - e.drag.start.Y
		for s, xf0 := range e.drag.startXf {
			xf := xf0
			xf.Tx = xf0.Tx + dx
			xf.Ty = xf0.Ty + dy
			// The pivot rides along so a rotated shape still moves in the
			// pointer's direction and keeps rotating about its own center.
			xf.PivotX = xf0.PivotX + dx
			xf.PivotY = xf0.PivotY + dy
			s.SetTransform(xf)
		}
		e.drag.changed = true
		e.refreshDerived()
	case ModeDraggingRotate:
		delta := geom.AngleDeltaDegrees(e.drag.pivot, e.drag.start, p)
		for s, xf0 := range e.drag.startXf {
			xf := xf0
			xf.Rotation = normalizeDegrees(xf0.Rotation + delta)
			xf.PivotX = e.drag.pivot.X
			xf.PivotY = e.drag.pivot.Y
			s.SetTransform(xf)
		}
		e.drag.changed = true
		e.refreshDerived()
	}
}

// PointerUp finalizes the active gesture: commits to history when something
// changed, discards drawings below the minimum visible size, and returns the
// editor to idle.
func (e *Editor) PointerUp(x, y float64, mods Modifiers) {
	switch e.mode {
	case ModeDrawing:
		e.finishDrawing()
	case ModeDraggingVertex, ModeDraggingMove, ModeDraggingRotate:
		if e.drag.changed {
			e.refreshDerived()
			e.commit()
		} else if e.drag.collapseTo != nil {
			e.Select(e.drag.collapseTo, false)
		}
	}
	e.drag = dragSession{}
	if e.mode != ModeAwaitingText {
		e.mode = ModeIdle
	}
}

// CancelDrag aborts the active gesture and rolls the document back to its
// pre-drag state. Nothing is committed.
func (e *Editor) CancelDrag() {
	switch e.mode {
	case ModeDrawing:
		if e.drag.pending != nil {
			e.doc.Remove(e.drag.pending)
		}
	case ModeDraggingVertex:
		if e.drag.backup != nil {
			e.replaceShape(e.selection[0], e.drag.backup)
		}
	case ModeDraggingMove, ModeDraggingRotate:
		for s, xf0 := range e.drag.startXf {
			s.SetTransform(xf0)
		}
		e.refreshDerived()
	default:
		return
	}
	e.drag = dragSession{}
	e.mode = ModeIdle
}

// DoubleClick opens the text prompt for a text shape under the pointer while
// the select tool is active. Returns true when a prompt was opened.
func (e *Editor) DoubleClick(x, y float64) bool {
	if e.tool != ToolSelect || e.mode != ModeIdle {
		return false
	}
	p := e.view.ToDocument(geom.Pt{X: x, Y: y})
	hit := e.hitShape(p, e.view.DocUnits(hitTolerancePx))
	t, ok := hit.(*shape.Text)
	if !ok {
		return false
	}
	e.textTarget = t
	e.mode = ModeAwaitingText
	return true
}

// PendingText returns the current content of the shape being edited, or ""
// when the prompt is for a new text shape. Valid only in ModeAwaitingText.
func (e *Editor) PendingText() string {
	if e.textTarget != nil {
		return e.textTarget.Content
	}
	return ""
}

// ProvideText resolves the pending text prompt. For a new shape an empty or
// blank input aborts the insertion; for an edit an unchanged input commits
// nothing.
func (e *Editor) ProvideText(content string) {
	if e.mode != ModeAwaitingText {
		return
	}
	content = strings.TrimSpace(content)
	if e.textTarget != nil {
		t := e.textTarget
		e.textTarget = nil
		e.mode = ModeIdle
		if content == "" || content == t.Content {
			return
		}
		t.Content = content
		if len(e.selection) == 1 && e.selection[0] == t {
			e.refreshDerived()
		}
		e.commit()
		return
	}
	e.mode = ModeIdle
	if content == "" {
		return
	}
	t := shape.NewText(e.textAnchor.X, e.textAnchor.Y, content, shape.DefaultStyle())
	e.doc.Append(t)
	e.tool = ToolSelect
	e.Select(t, false)
	e.commit()
}

// CancelText dismisses the pending text prompt without mutating anything.
func (e *Editor) CancelText() {
	if e.mode != ModeAwaitingText {
		return
	}
	e.textTarget = nil
	e.mode = ModeIdle
}

func (e *Editor) captureTransforms() map[shape.Shape]shape.Transform {
	m := make(map[shape.Shape]shape.Transform, len(e.selection))
	for _, s := range e.selection {
		m[s] = s.Transform()
	}
	return m
}

func (e *Editor) hitControlPoint(p geom.Pt) (int, bool) {
	r := e.view.DocUnits(handleRadiusPx)
	for i, cp := range e.points {
		if geom.Dist(p, geom.Pt{X: cp.X, Y: cp.Y}) <= r {
			return i, true
		}
	}
	return 0, false
}

// replaceShape swaps a live shape for its backup clone in both the document
// and the selection, used for vertex rollback.
func (e *Editor) replaceShape(old, repl shape.Shape) {
	for i, s := range e.doc.Shapes {
		if s == old {
			e.doc.Shapes[i] = repl
			break
		}
	}
	for i, s := range e.selection {
		if s == old {
			e.selection[i] = repl
			break
		}
	}
	e.refreshDerived()
}

// newPendingShape creates a zero-extent shape of the active tool's kind,
// anchored at the down-point.
func (e *Editor) newPendingShape(p geom.Pt) shape.Shape {
	st := shape.DefaultStyle()
	switch e.tool {
	case ToolLine:
		return shape.NewLine(p.X, p.Y, p.X, p.Y, st)
	case ToolRect:
		return shape.NewRect(p.X, p.Y, 0, 0, st)
	case ToolCircle:
		return shape.NewCircle(p.X, p.Y, 0, st)
	case ToolEllipse:
		return shape.NewEllipse(p.X, p.Y, 0, 0, st)
	case ToolFreehand:
		return shape.NewPolyline([]geom.Pt{p}, st)
	}
	return shape.NewLine(p.X, p.Y, p.X, p.Y, st)
}

// growPending stretches the pending shape from its anchor to the current
// point. Negative extents are corrected so the anchor can be any corner.
func (e *Editor) growPending(p geom.Pt, constrain bool) {
	a := e.drag.start
	switch s := e.drag.pending.(type) {
	case *shape.Line:
		if constrain {
			p = geom.SnapAngle45(a, p)
		}
		s.X2, s.Y2 = p.X, p.Y
	case *shape.Rect:
		w := math.Abs(p.X - a.X)
		h := math.Abs(p.Y - a.Y)
		if constrain {
			w = math.Max(w, h)
			h = w
		}
		s.X = math.Min(a.X, p.X)
		s.Y = math.Min(a.Y, p.Y)
		if constrain {
			if p.X < a.X {
				s.X = a.X - w
			}
			if p.Y < a.Y {
				s.Y = a.Y - h
			}
		}
		s.W, s.H = w, h
	case *shape.Circle:
		s.R = geom.Dist(a, p)
	case *shape.Ellipse:
		rx := math.Abs(p.X - a.X)
		ry := math.Abs(p.Y - a.Y)
		if constrain {
			rx = math.Max(rx, ry)
			ry = rx
		}
		s.RX, s.RY = rx, ry
	case *shape.Poly:
		s.AppendPoint(p)
	}
}

// finishDrawing keeps or discards the pending shape based on its final size.
func (e *Editor) finishDrawing() {
	pending := e.drag.pending
	if pending == nil {
		return
	}
	if tooSmall(pending) {
		e.doc.Remove(pending)
		return
	}
	e.tool = ToolSelect
	e.Select(pending, false)
	e.commit()
}

// tooSmall applies the kind-specific minimum-visible threshold.
func tooSmall(s shape.Shape) bool {
	switch v := s.(type) {
	case *shape.Line:
		return geom.Dist(geom.Pt{X: v.X1, Y: v.Y1}, geom.Pt{X: v.X2, Y: v.Y2}) < minDrawExtent
	case *shape.Rect:
		return v.W < minDrawExtent || v.H < minDrawExtent
	case *shape.Circle:
		return v.R < minDrawExtent/2
	case *shape.Ellipse:
		return v.RX < minDrawExtent/2 || v.RY < minDrawExtent/2
	case *shape.Poly:
		b := v.LocalBounds()
		return len(v.Points) < 2 || (b.W < minDrawExtent && b.H < minDrawExtent)
	}
	b := s.LocalBounds()
	return b.W < minDrawExtent && b.H < minDrawExtent
}

// normalizeDegrees wraps an angle into (-180, 180] to keep serialized values
// small across repeated rotations.
func normalizeDegrees(deg float64) float64 {
	for deg > 180 {
		deg -= 360
	}
	for deg <= -180 {
		deg += 360
	}
	return deg
}
