/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor is the direct-manipulation engine: it owns the live document,
// the selection, the undo/redo history and the pointer-driven drag state
// machine. All mutation happens synchronously on the event that triggers it;
// the editor is single-goroutine by design and carries no locking.
package editor

import (
	"log/slog"

	"svgstudio/internal/document"
	"svgstudio/internal/geom"
	"svgstudio/internal/history"
	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"
)

// Tool selects what a pointer-down on empty canvas does.
type Tool int

const (
	ToolSelect Tool = iota
	ToolLine
	ToolRect
	ToolCircle
	ToolEllipse
	ToolFreehand
	ToolText
)

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolLine:
		return "line"
	case ToolRect:
		return "rect"
	case ToolCircle:
		return "circle"
	case ToolEllipse:
		return "ellipse"
	case ToolFreehand:
		return "freehand"
	case ToolText:
		return "text"
	}
	return "unknown"
}

// Mode is the current interaction state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeDraggingMove
	ModeDraggingRotate
	ModeDraggingVertex
	// ModeAwaitingText blocks pointer input until ProvideText or CancelText
	// resolves the pending text prompt.
	ModeAwaitingText
)

// BoundingBox is the aggregate post-transform extent of the selection in
// document space. Derived, never persisted.
type BoundingBox struct {
	geom.Rect
	CenterX, CenterY float64
}

// Editor holds all editing state. Construct with New, drive with pointer
// events plus the command methods, read the derived state for rendering.
type Editor struct {
	doc  *document.Document
	hist *history.Manager
	view geom.Viewport
	tool Tool

	selection []shape.Shape
	points    []shape.ControlPoint
	bbox      *BoundingBox

	mode Mode
	drag dragSession

	// Pending text prompt state, valid while mode == ModeAwaitingText.
	textTarget *shape.Text // non-nil when editing existing content
	textAnchor geom.Pt     // insertion anchor when creating

	log *slog.Logger
}

// Options tune the editor independent of the document.
type Options struct {
	// HistoryMaxDepth caps the snapshot count (0 means unlimited).
	HistoryMaxDepth int
}

func New(doc *document.Document, opts Options) *Editor {
	e := &Editor{
		doc:  doc,
		hist: history.NewManager(history.Config{MaxDepth: opts.HistoryMaxDepth}),
		view: geom.NewViewport(),
		log:  applog.WithComponent("editor"),
	}
	e.hist.Reset(doc.Serialize())
	return e
}

func (e *Editor) Document() *document.Document { return e.doc }
func (e *Editor) Mode() Mode                   { return e.mode }
func (e *Editor) Tool() Tool                   { return e.tool }

// SetTool switches the active tool. Switching away from select drops the
// selection so the drawing overlay is unambiguous.
func (e *Editor) SetTool(t Tool) {
	e.tool = t
	if t != ToolSelect {
		e.DeselectAll()
	}
}

func (e *Editor) Viewport() geom.Viewport     { return e.view }
func (e *Editor) SetViewport(v geom.Viewport) { e.view = v }

// Selection returns the selected shapes in insertion order. The returned
// slice is the editor's own; callers must not mutate it.
func (e *Editor) Selection() []shape.Shape { return e.selection }

// ControlPoints returns the handles of the sole selected shape in document
// space, or nil when zero or several shapes are selected.
func (e *Editor) ControlPoints() []shape.ControlPoint { return e.points }

// BoundingBox returns the aggregate selection box, or nil when the selection
// is empty or a shape measured non-finite.
func (e *Editor) BoundingBox() *BoundingBox { return e.bbox }

// Select replaces the selection with the given shape, or appends it when
// additive is true. Selecting an already-selected shape additively is a no-op
// (the selection holds no duplicates).
func (e *Editor) Select(s shape.Shape, additive bool) {
	if s == nil {
		return
	}
	if !additive {
		e.selection = e.selection[:0]
	}
	if !e.isSelected(s) {
		e.selection = append(e.selection, s)
	}
	e.refreshDerived()
}

// DeselectAll clears selection, control points and bounding box.
func (e *Editor) DeselectAll() {
	e.selection = nil
	e.points = nil
	e.bbox = nil
}

func (e *Editor) isSelected(s shape.Shape) bool {
	for _, sel := range e.selection {
		if sel == s {
			return true
		}
	}
	return false
}

// refreshDerived recomputes control points and the bounding box from the
// current selection. Control points are exposed only for a single-shape
// selection; a multi-selection shows just the aggregate box.
func (e *Editor) refreshDerived() {
	e.points = nil
	if len(e.selection) == 1 {
		s := e.selection[0]
		m := s.Transform().Matrix()
		for _, cp := range s.ControlPoints() {
			p := m.Apply(geom.Pt{X: cp.X, Y: cp.Y})
			cp.X, cp.Y = p.X, p.Y
			e.points = append(e.points, cp)
		}
	}
	e.bbox = computeBoundingBox(e.selection)
}

// computeBoundingBox unions the post-transform extents of the given shapes in
// document space. A non-finite measurement degrades to no box rather than
// propagating NaN into the render layer.
func computeBoundingBox(shapes []shape.Shape) *BoundingBox {
	if len(shapes) == 0 {
		return nil
	}
	var acc geom.Rect
	for i, s := range shapes {
		b := shape.Bounds(s)
		if !b.Finite() {
			return nil
		}
		if i == 0 {
			acc = b
		} else {
			acc = acc.Union(b)
		}
	}
	c := acc.Center()
	return &BoundingBox{Rect: acc, CenterX: c.X, CenterY: c.Y}
}

// hitShape returns the topmost shape under the document-space point, honoring
// paint order (last drawn wins).
func (e *Editor) hitShape(p geom.Pt, tol float64) shape.Shape {
	for i := len(e.doc.Shapes) - 1; i >= 0; i-- {
		if shape.Hit(e.doc.Shapes[i], p, tol) {
			return e.doc.Shapes[i]
		}
	}
	return nil
}

// commit snapshots the live document. Exactly one call per discrete
// user-visible edit.
func (e *Editor) commit() {
	e.hist.Commit(e.doc.Serialize())
}

// CanUndo reports whether an earlier snapshot exists.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports whether a later snapshot exists.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Undo restores the previous snapshot. Selection does not survive the jump:
// the restored tree consists of new shape values.
func (e *Editor) Undo() bool {
	snap, ok := e.hist.Undo()
	if !ok {
		return false
	}
	return e.restore(snap)
}

// Redo restores the next snapshot, with the same selection-clearing behavior
// as Undo.
func (e *Editor) Redo() bool {
	snap, ok := e.hist.Redo()
	if !ok {
		return false
	}
	return e.restore(snap)
}

func (e *Editor) restore(snapshot string) bool {
	doc, err := document.Parse(snapshot)
	if err != nil {
		// Snapshots come from our own serializer, so this indicates a bug.
		e.log.Error("history snapshot failed to parse", slog.String("error", err.Error()))
		return false
	}
	e.doc = doc
	e.DeselectAll()
	e.mode = ModeIdle
	e.drag = dragSession{}
	return true
}

// LoadMarkup replaces the document with freshly ingested markup and reseeds
// history with it as the baseline. On parse failure the previous document and
// history are left untouched.
func (e *Editor) LoadMarkup(markup string) error {
	doc, err := document.Parse(markup)
	if err != nil {
		return err
	}
	e.doc = doc
	e.DeselectAll()
	e.mode = ModeIdle
	e.drag = dragSession{}
	e.hist.Reset(doc.Serialize())
	return nil
}

// Serialize renders the live document as markup, for export and previews.
func (e *Editor) Serialize() string { return e.doc.Serialize() }

// ToggleDashed flips the dash pattern on every selected shape. One history
// commit regardless of how many shapes are affected.
func (e *Editor) ToggleDashed() {
	if len(e.selection) == 0 {
		return
	}
	for _, s := range e.selection {
		st := s.Style()
		st.Dashed = !st.Dashed
		s.SetStyle(st)
	}
	e.commit()
}

// SetStrokeWidth applies the width to every selected shape; one commit.
func (e *Editor) SetStrokeWidth(w float64) {
	if len(e.selection) == 0 || w <= 0 {
		return
	}
	for _, s := range e.selection {
		st := s.Style()
		st.StrokeWidth = w
		s.SetStyle(st)
	}
	e.commit()
}

// SetStrokeColor applies the stroke color to every selected shape; one commit.
func (e *Editor) SetStrokeColor(color string) {
	if len(e.selection) == 0 || color == "" {
		return
	}
	for _, s := range e.selection {
		st := s.Style()
		st.Stroke = color
		s.SetStyle(st)
	}
	e.commit()
}

// DeleteSelection removes every selected shape from the tree and commits.
func (e *Editor) DeleteSelection() {
	if len(e.selection) == 0 {
		return
	}
	e.doc.Remove(e.selection...)
	e.DeselectAll()
	e.commit()
}
