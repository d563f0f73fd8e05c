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
	"testing"

	"svgstudio/internal/document"
	"svgstudio/internal/shape"
)

func newTestEditor() *Editor {
	doc := document.New(400, 300)
	return New(doc, Options{})
}

// newEditorWith seeds the document before constructing the editor so the
// shapes are part of the history baseline.
func newEditorWith(shapes ...shape.Shape) *Editor {
	doc := document.New(400, 300)
	for _, s := range shapes {
		doc.Append(s)
	}
	return New(doc, Options{})
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestSelectSingleShowsControlPoints(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(10, 10, 50, 50, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	if len(e.ControlPoints()) != 2 {
		t.Fatalf("expected 2 rect handles, got %d", len(e.ControlPoints()))
	}
	if e.BoundingBox() == nil {
		t.Fatalf("bounding box missing")
	}
}

func TestMultiSelectHidesControlPoints(t *testing.T) {
	e := newTestEditor()
	a := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	b := shape.NewCircle(50, 50, 5, shape.DefaultStyle())
	e.Document().Append(a)
	e.Document().Append(b)
	e.Select(a, false)
	e.Select(b, true)
	if len(e.Selection()) != 2 {
		t.Fatalf("expected 2 selected, got %d", len(e.Selection()))
	}
	if e.ControlPoints() != nil {
		t.Fatalf("multi-selection must not expose control points")
	}
	bb := e.BoundingBox()
	if bb == nil || bb.X != 0 || bb.Y != 0 || !approx(bb.W, 55) || !approx(bb.H, 55) {
		t.Fatalf("unexpected aggregate box: %+v", bb)
	}
}

func TestSelectNoDuplicates(t *testing.T) {
	e := newTestEditor()
	a := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(a)
	e.Select(a, false)
	e.Select(a, true)
	if len(e.Selection()) != 1 {
		t.Fatalf("duplicate selection entry")
	}
}

func TestControlPointsFollowTransform(t *testing.T) {
	e := newTestEditor()
	l := shape.NewLine(0, 0, 10, 0, shape.DefaultStyle())
	l.SetTransform(shape.Transform{Tx: 100, Ty: 50})
	e.Document().Append(l)
	e.Select(l, false)
	cps := e.ControlPoints()
	if !approx(cps[0].X, 100) || !approx(cps[0].Y, 50) {
		t.Fatalf("control points must be reported in document space: %+v", cps[0])
	}
}

func TestBoundingBoxDegradesOnNonFinite(t *testing.T) {
	e := newTestEditor()
	l := shape.NewLine(0, 0, math.NaN(), 0, shape.DefaultStyle())
	e.Document().Append(l)
	e.Select(l, false)
	if e.BoundingBox() != nil {
		t.Fatalf("non-finite measurement must yield no bounding box")
	}
	if len(e.Selection()) != 1 {
		t.Fatalf("selection must remain active without a box")
	}
}

func TestUndoRedoRestoresSerialization(t *testing.T) {
	e := newTestEditor()
	const n = 4
	var after [n]string
	for i := 0; i < n; i++ {
		r := shape.NewRect(float64(i*20), 0, 10, 10, shape.DefaultStyle())
		e.Document().Append(r)
		e.Select(r, false)
		e.SetStrokeWidth(float64(i + 1))
		after[i] = e.Serialize()
	}
	for i := 0; i < n; i++ {
		if !e.Undo() {
			t.Fatalf("undo %d failed", i)
		}
	}
	for i := 0; i < n; i++ {
		if !e.Redo() {
			t.Fatalf("redo %d failed", i)
		}
	}
	if got := e.Serialize(); got != after[n-1] {
		t.Fatalf("undo xN redo xN must restore the final state:\n%s\n---\n%s", got, after[n-1])
	}
}

func TestUndoClearsSelection(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	e.ToggleDashed()
	if !e.Undo() {
		t.Fatalf("undo failed")
	}
	if len(e.Selection()) != 0 || e.ControlPoints() != nil || e.BoundingBox() != nil {
		t.Fatalf("selection must not survive a history jump")
	}
}

func TestHistoryTruncationAfterNewEdit(t *testing.T) {
	e := newEditorWith(shape.NewRect(0, 0, 10, 10, shape.DefaultStyle()))
	e.Select(e.Document().Shapes[0], false)
	e.SetStrokeWidth(3)
	e.SetStrokeWidth(4)
	e.Undo()
	e.Undo()
	// A fresh edit discards the redo branch.
	e.Select(e.Document().Shapes[0], false)
	e.ToggleDashed()
	if e.Redo() {
		t.Fatalf("redo after a new commit must be a no-op")
	}
}

func TestStyleFanOutSingleCommit(t *testing.T) {
	e := newEditorWith(
		shape.NewCircle(0, 0, 10, shape.DefaultStyle()),
		shape.NewCircle(30, 0, 10, shape.DefaultStyle()),
		shape.NewCircle(60, 0, 10, shape.DefaultStyle()),
	)
	for i, s := range e.Document().Shapes {
		e.Select(s, i > 0)
	}
	e.ToggleDashed()
	for _, s := range e.Selection() {
		if !s.Style().Dashed {
			t.Fatalf("dash must apply to every selected shape")
		}
	}
	// Exactly one snapshot: a single undo reverts all three.
	if !e.Undo() {
		t.Fatalf("undo failed")
	}
	for _, s := range e.Document().Shapes {
		if s.Style().Dashed {
			t.Fatalf("one undo must revert the whole fan-out")
		}
	}
	if e.Undo() {
		t.Fatalf("fan-out must be exactly one commit")
	}
}

func TestDeleteSelectionCommitsOnce(t *testing.T) {
	e := newEditorWith(
		shape.NewRect(0, 0, 10, 10, shape.DefaultStyle()),
		shape.NewRect(20, 0, 10, 10, shape.DefaultStyle()),
	)
	e.Select(e.Document().Shapes[0], false)
	e.Select(e.Document().Shapes[1], true)
	e.DeleteSelection()
	if len(e.Document().Shapes) != 0 || len(e.Selection()) != 0 {
		t.Fatalf("deletion must remove all selected shapes and clear selection")
	}
	if !e.Undo() {
		t.Fatalf("undo failed")
	}
	if len(e.Document().Shapes) != 2 {
		t.Fatalf("one undo must restore both shapes")
	}
}

func TestLoadMarkupReplacesDocumentAndHistory(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	e.ToggleDashed()
	if err := e.LoadMarkup(`<svg width="100" height="100"><circle cx="50" cy="50" r="10"/></svg>`); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(e.Document().Shapes) != 1 || e.Document().Shapes[0].Kind() != shape.KindCircle {
		t.Fatalf("document not replaced")
	}
	if e.CanUndo() || e.CanRedo() {
		t.Fatalf("loading must reseed history")
	}
}

func TestLoadMarkupFailureKeepsDocument(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(r)
	before := e.Serialize()
	if err := e.LoadMarkup(`<div>nope</div>`); err == nil {
		t.Fatalf("expected parse error")
	}
	if e.Serialize() != before {
		t.Fatalf("failed ingestion must leave the previous document untouched")
	}
}

func TestSetToolDropsSelection(t *testing.T) {
	e := newTestEditor()
	r := shape.NewRect(0, 0, 10, 10, shape.DefaultStyle())
	e.Document().Append(r)
	e.Select(r, false)
	e.SetTool(ToolLine)
	if len(e.Selection()) != 0 {
		t.Fatalf("switching to a drawing tool must clear the selection")
	}
}
