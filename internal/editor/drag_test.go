/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"svgstudio/internal/shape"
)

// The default viewport maps screen 1:1 onto document space, so tests drive
// gestures with document coordinates directly.

func TestDrawLineGesture(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolLine)
	e.PointerDown(10, 10, Modifiers{})
	if e.Mode() != ModeDrawing {
		t.Fatalf("expected drawing mode, got %v", e.Mode())
	}
	e.PointerMove(80, 60, Modifiers{})
	e.PointerUp(80, 60, Modifiers{})
	if len(e.Document().Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(e.Document().Shapes))
	}
	l := e.Document().Shapes[0].(*shape.Line)
	if l.X2 != 80 || l.Y2 != 60 {
		t.Fatalf("line end not grown: %+v", l)
	}
	if e.Tool() != ToolSelect {
		t.Fatalf("tool must auto-switch back to select")
	}
	if len(e.Selection()) != 1 || e.Selection()[0] != l {
		t.Fatalf("drawn shape must be selected")
	}
	if !e.CanUndo() {
		t.Fatalf("drawing must commit one snapshot")
	}
}

func TestTinyShapeRejected(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolLine)
	e.PointerDown(10, 10, Modifiers{})
	e.PointerMove(10.5, 10.3, Modifiers{})
	e.PointerUp(10.5, 10.3, Modifiers{})
	if len(e.Document().Shapes) != 0 {
		t.Fatalf("near-zero line must be discarded")
	}
	if e.CanUndo() {
		t.Fatalf("a discarded drawing must not commit")
	}
}

func TestDrawRectNegativeExtent(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolRect)
	e.PointerDown(100, 100, Modifiers{})
	e.PointerMove(40, 60, Modifiers{})
	e.PointerUp(40, 60, Modifiers{})
	r := e.Document().Shapes[0].(*shape.Rect)
	if r.X != 40 || r.Y != 60 || r.W != 60 || r.H != 40 {
		t.Fatalf("negative extent not corrected: %+v", r)
	}
}

func TestConstrainForcesSquare(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolRect)
	e.PointerDown(0, 0, Modifiers{})
	e.PointerMove(30, 10, Modifiers{Constrain: true})
	e.PointerUp(30, 10, Modifiers{Constrain: true})
	r := e.Document().Shapes[0].(*shape.Rect)
	if r.W != r.H {
		t.Fatalf("constrain must force equal extents: %+v", r)
	}
}

func TestConstrainSnapsLineAngle(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolLine)
	e.PointerDown(0, 0, Modifiers{})
	e.PointerMove(50, 8, Modifiers{Constrain: true})
	e.PointerUp(50, 8, Modifiers{Constrain: true})
	l := e.Document().Shapes[0].(*shape.Line)
	// Nearest 45-degree direction from (0,0) toward (50,8) is horizontal.
	if !approx(l.Y2, 0) {
		t.Fatalf("line angle not snapped: %+v", l)
	}
}

func TestClickSelectsTopmost(t *testing.T) {
	e := newTestEditor()
	bottom := shape.NewRect(0, 0, 100, 100, shape.DefaultStyle())
	top := shape.NewRect(40, 40, 100, 100, shape.DefaultStyle())
	e.Document().Append(bottom)
	e.Document().Append(top)
	e.PointerDown(50, 50, Modifiers{})
	e.PointerUp(50, 50, Modifiers{})
	if len(e.Selection()) != 1 || e.Selection()[0] != top {
		t.Fatalf("click must select the topmost shape")
	}
	if e.CanUndo() {
		t.Fatalf("a plain click must not commit")
	}
}

func TestClickEmptyCanvasClearsSelection(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	e.PointerDown(300, 250, Modifiers{})
	e.PointerUp(300, 250, Modifiers{})
	if len(e.Selection()) != 0 {
		t.Fatalf("empty-canvas click must clear the selection")
	}
}

func TestMultiSelectUniformMove(t *testing.T) {
	e := newTestEditor()
	a := shape.NewRect(0, 0, 20, 20, shape.DefaultStyle())
	b := shape.NewCircle(100, 100, 10, shape.DefaultStyle())
	e.Document().Append(a)
	e.Document().Append(b)
	e.Select(a, false)
	e.Select(b, true)
	e.PointerDown(10, 10, Modifiers{})
	e.PointerMove(25, 40, Modifiers{})
	e.PointerUp(25, 40, Modifiers{})
	for _, s := range []shape.Shape{a, b} {
		xf := s.Transform()
		if xf.Tx != 15 || xf.Ty != 30 {
			t.Fatalf("translate must equal the pointer delta exactly: %+v", xf)
		}
	}
	if a.X != 0 || a.W != 20 || b.CX != 100 || b.R != 10 {
		t.Fatalf("move must not touch intrinsic geometry")
	}
	// Both selected shapes keep their selection through the drag.
	if len(e.Selection()) != 2 {
		t.Fatalf("drag from a multi-selection must keep it")
	}
	if !e.CanUndo() {
		t.Fatalf("a completed move must commit")
	}
}

func TestClickCollapsesMultiSelectionOnlyWithoutDrag(t *testing.T) {
	e := newTestEditor()
	a := shape.NewRect(0, 0, 20, 20, shape.DefaultStyle())
	b := shape.NewRect(100, 0, 20, 20, shape.DefaultStyle())
	e.Document().Append(a)
	e.Document().Append(b)
	e.Select(a, false)
	e.Select(b, true)
	// Click on a without moving: collapse to a.
	e.PointerDown(10, 10, Modifiers{})
	e.PointerUp(10, 10, Modifiers{})
	if len(e.Selection()) != 1 || e.Selection()[0] != a {
		t.Fatalf("no-drag click must collapse to the clicked shape")
	}
	// Rebuild the multi-selection, then drag: no collapse.
	e.Select(a, false)
	e.Select(b, true)
	e.PointerDown(10, 10, Modifiers{})
	e.PointerMove(30, 10, Modifiers{})
	e.PointerUp(30, 10, Modifiers{})
	if len(e.Selection()) != 2 {
		t.Fatalf("a drag must not collapse the multi-selection")
	}
}

func TestRotationPivotStability(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 100, 100, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	h, ok := e.RotateHandle()
	if !ok {
		t.Fatalf("rotate handle missing")
	}
	e.PointerDown(h.X, h.Y, Modifiers{})
	if e.Mode() != ModeDraggingRotate {
		t.Fatalf("expected rotate mode, got %v", e.Mode())
	}
	// Sweep 90 degrees around the frozen pivot (50,50).
	e.PointerMove(50+(50-h.Y), 50, Modifiers{})
	e.PointerUp(50+(50-h.Y), 50, Modifiers{})
	xf := r.Transform()
	if !approx(xf.Rotation, 90) || !approx(xf.PivotX, 50) || !approx(xf.PivotY, 50) {
		t.Fatalf("unexpected transform after rotation: %+v", xf)
	}
	c := shape.Bounds(r).Center()
	if !approx(c.X, 50) || !approx(c.Y, 50) {
		t.Fatalf("center must not move while rotating about it: %+v", c)
	}
	if r.X != 0 || r.W != 100 {
		t.Fatalf("rotation must not touch intrinsic geometry")
	}
}

func TestVertexDragOnRotatedShape(t *testing.T) {
	e := newTestEditor()
	l := shape.NewLine(0, 0, 100, 0, shape.DefaultStyle())
	l.SetTransform(shape.Transform{Rotation: 90, PivotX: 0, PivotY: 0})
	e.Document().Append(l)
	e.Select(l, false)
	before := l.Transform()
	// The second endpoint renders at (0,100) in document space.
	cps := e.ControlPoints()
	if !approx(cps[1].X, 0) || !approx(cps[1].Y, 100) {
		t.Fatalf("unexpected handle position: %+v", cps[1])
	}
	e.PointerDown(cps[1].X, cps[1].Y, Modifiers{})
	if e.Mode() != ModeDraggingVertex {
		t.Fatalf("expected vertex mode, got %v", e.Mode())
	}
	e.PointerMove(0, 150, Modifiers{})
	e.PointerUp(0, 150, Modifiers{})
	// Document (0,150) maps back to local (150,0).
	if !approx(l.X2, 150) || !approx(l.Y2, 0) {
		t.Fatalf("vertex edit must apply in local space: %+v", l)
	}
	if l.Transform() != before {
		t.Fatalf("vertex edit must not touch the transform")
	}
}

func TestCancelDragRollsBackMove(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 20, 20, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	e.PointerDown(10, 10, Modifiers{})
	e.PointerMove(60, 60, Modifiers{})
	e.CancelDrag()
	if !r.Transform().IsIdentity() {
		t.Fatalf("cancel must restore the pre-drag transform: %+v", r.Transform())
	}
	if e.Mode() != ModeIdle || e.CanUndo() {
		t.Fatalf("cancel must not commit")
	}
}

func TestCancelDragRollsBackVertex(t *testing.T) {
	e := newTestEditor()
	l := shape.NewLine(0, 0, 100, 0, shape.DefaultStyle())
	e.Document().Append(l)
	e.Select(l, false)
	cps := e.ControlPoints()
	e.PointerDown(cps[1].X, cps[1].Y, Modifiers{})
	e.PointerMove(100, 80, Modifiers{})
	e.CancelDrag()
	restored := e.Document().Shapes[0].(*shape.Line)
	if restored.X2 != 100 || restored.Y2 != 0 {
		t.Fatalf("cancel must restore the pre-drag geometry: %+v", restored)
	}
}

func TestCancelDragDiscardsPendingShape(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolRect)
	e.PointerDown(0, 0, Modifiers{})
	e.PointerMove(50, 50, Modifiers{})
	e.CancelDrag()
	if len(e.Document().Shapes) != 0 {
		t.Fatalf("cancel must discard the pending shape")
	}
}

func TestTextToolPromptsBeforeInserting(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolText)
	e.PointerDown(30, 40, Modifiers{})
	if e.Mode() != ModeAwaitingText {
		t.Fatalf("text tool must await input, got %v", e.Mode())
	}
	// Pointer events are blocked while the prompt is pending.
	e.PointerDown(100, 100, Modifiers{})
	if e.Mode() != ModeAwaitingText {
		t.Fatalf("pointer input must be ignored mid-prompt")
	}
	e.ProvideText("hello")
	if len(e.Document().Shapes) != 1 {
		t.Fatalf("expected inserted text shape")
	}
	tx := e.Document().Shapes[0].(*shape.Text)
	if tx.X != 30 || tx.Y != 40 || tx.Content != "hello" {
		t.Fatalf("unexpected text shape: %+v", tx)
	}
	if e.Tool() != ToolSelect || len(e.Selection()) != 1 {
		t.Fatalf("inserted text must be selected with the select tool active")
	}
	if !e.CanUndo() {
		t.Fatalf("text insertion must commit")
	}
}

func TestTextToolEmptyInputAborts(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolText)
	e.PointerDown(30, 40, Modifiers{})
	e.ProvideText("   ")
	if len(e.Document().Shapes) != 0 || e.CanUndo() {
		t.Fatalf("blank input must insert nothing")
	}
	if e.Mode() != ModeIdle {
		t.Fatalf("prompt must resolve to idle")
	}
}

func TestDoubleClickEditsText(t *testing.T) {
	e := newTestEditor()
	tx := shape.NewText(20, 20, "old", shape.DefaultStyle())
	e.Document().Append(tx)
	if !e.DoubleClick(25, 18) {
		t.Fatalf("double-click on text must open the prompt")
	}
	if got := e.PendingText(); got != "old" {
		t.Fatalf("prompt must carry the current content, got %q", got)
	}
	e.ProvideText("new")
	if tx.Content != "new" {
		t.Fatalf("content not replaced: %+v", tx)
	}
	if !e.CanUndo() {
		t.Fatalf("text edit must commit")
	}
}

func TestDoubleClickUnchangedTextCommitsNothing(t *testing.T) {
	e := newTestEditor()
	tx := shape.NewText(20, 20, "same", shape.DefaultStyle())
	e.Document().Append(tx)
	e.DoubleClick(25, 18)
	e.ProvideText("same")
	if e.CanUndo() {
		t.Fatalf("unchanged content must not commit")
	}
}

func TestCancelTextKeepsDocument(t *testing.T) {
	e := newTestEditor()
	tx := shape.NewText(20, 20, "keep", shape.DefaultStyle())
	e.Document().Append(tx)
	e.DoubleClick(25, 18)
	e.CancelText()
	if tx.Content != "keep" || e.Mode() != ModeIdle {
		t.Fatalf("cancel must leave the shape untouched")
	}
}

func TestFreehandDrawing(t *testing.T) {
	e := newTestEditor()
	e.SetTool(ToolFreehand)
	e.PointerDown(0, 0, Modifiers{})
	e.PointerMove(10, 5, Modifiers{})
	e.PointerMove(20, 0, Modifiers{})
	e.PointerUp(20, 0, Modifiers{})
	p := e.Document().Shapes[0].(*shape.Poly)
	if len(p.Points) != 3 {
		t.Fatalf("expected 3 sampled points, got %d", len(p.Points))
	}
	if p.Kind() != shape.KindPolyline {
		t.Fatalf("freehand must produce a polyline")
	}
}
