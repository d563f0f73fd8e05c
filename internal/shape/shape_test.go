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
	"testing"

	"svgstudio/internal/geom"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLineControlPoints(t *testing.T) {
	l := NewLine(0, 0, 10, 20, DefaultStyle())
	cps := l.ControlPoints()
	if len(cps) != 2 || cps[0].Kind != CPVertex || cps[1].X != 10 || cps[1].Y != 20 {
		t.Fatalf("unexpected control points: %+v", cps)
	}
	if !l.SetControlPoint(1, geom.Pt{X: 5, Y: 5}) || l.X2 != 5 || l.Y2 != 5 {
		t.Fatalf("endpoint edit failed: %+v", l)
	}
	if l.SetControlPoint(2, geom.Pt{}) {
		t.Fatalf("out-of-range index must be rejected")
	}
}

func TestCircleRadiusHandle(t *testing.T) {
	c := NewCircle(50, 50, 10, DefaultStyle())
	cps := c.ControlPoints()
	if len(cps) != 2 || cps[0].Kind != CPCenter || cps[1].Kind != CPRadius {
		t.Fatalf("unexpected control points: %+v", cps)
	}
	if cps[1].X != 60 || cps[1].Y != 50 {
		t.Fatalf("radius handle should sit at center+radius on x axis: %+v", cps[1])
	}
	c.SetControlPoint(1, geom.Pt{X: 50, Y: 80})
	if !approx(c.R, 30) {
		t.Fatalf("radius should be distance to center, got %g", c.R)
	}
	c.SetControlPoint(0, geom.Pt{X: 0, Y: 0})
	if c.CX != 0 || c.CY != 0 || !approx(c.R, 30) {
		t.Fatalf("moving center must not change radius: %+v", c)
	}
}

func TestEllipseIndependentRadii(t *testing.T) {
	e := NewEllipse(10, 10, 5, 8, DefaultStyle())
	if n := len(e.ControlPoints()); n != 3 {
		t.Fatalf("expected 3 control points, got %d", n)
	}
	e.SetControlPoint(1, geom.Pt{X: 22, Y: 10})
	if !approx(e.RX, 12) || !approx(e.RY, 8) {
		t.Fatalf("rx edit must leave ry alone: %+v", e)
	}
	e.SetControlPoint(2, geom.Pt{X: 10, Y: 7})
	if !approx(e.RY, 3) {
		t.Fatalf("ry should be absolute offset from center: %+v", e)
	}
}

func TestRectResizeKeepsOppositeCorner(t *testing.T) {
	r := NewRect(10, 10, 50, 50, DefaultStyle())
	r.SetControlPoint(0, geom.Pt{X: 20, Y: 30})
	if r.X != 20 || r.Y != 30 || r.W != 40 || r.H != 30 {
		t.Fatalf("top-left edit wrong: %+v", r)
	}
	if r.X+r.W != 60 || r.Y+r.H != 60 {
		t.Fatalf("opposite corner must stay fixed: %+v", r)
	}
}

func TestRectNeverInverts(t *testing.T) {
	r := NewRect(10, 10, 50, 50, DefaultStyle())
	// Drag the top-left handle past the opposite corner.
	r.SetControlPoint(0, geom.Pt{X: 80, Y: 10})
	if r.W <= 0 || r.H <= 0 {
		t.Fatalf("rectangle inverted: %+v", r)
	}
	r = NewRect(10, 10, 50, 50, DefaultStyle())
	r.SetControlPoint(1, geom.Pt{X: 5, Y: 5})
	if r.W <= 0 || r.H <= 0 {
		t.Fatalf("rectangle inverted via bottom-right: %+v", r)
	}
}

func TestPolygonVertexEdit(t *testing.T) {
	p := NewPolygon([]geom.Pt{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}}, DefaultStyle())
	cps := p.ControlPoints()
	if len(cps) != 3 || cps[2].Index != 2 {
		t.Fatalf("unexpected control points: %+v", cps)
	}
	p.SetControlPoint(2, geom.Pt{X: 5, Y: 20})
	var b strings.Builder
	p.AppendSVG(&b)
	if !strings.Contains(b.String(), `points="0,0 10,0 5,20"`) {
		t.Fatalf("points not re-serialized: %s", b.String())
	}
}

func TestPathRebuildPreservesClose(t *testing.T) {
	cmds, closed, ok := parsePathData("M 0 0 L 10 0 L 10 10 Z")
	if !ok || !closed || len(cmds) != 3 {
		t.Fatalf("parse failed: ok=%v closed=%v cmds=%v", ok, closed, cmds)
	}
	p := NewPath(cmds, closed, DefaultStyle())
	p.SetControlPoint(1, geom.Pt{X: 12, Y: 1})
	if d := p.Data(); d != "M 0 0 L 12 1 L 10 10 Z" {
		t.Fatalf("unexpected rebuilt data: %q", d)
	}
}

func TestPathImplicitLineTo(t *testing.T) {
	cmds, _, ok := parsePathData("M 0 0 10 10 20 0")
	if !ok || len(cmds) != 3 {
		t.Fatalf("implicit line-tos not parsed: %v", cmds)
	}
	if cmds[1].Op != 'L' || cmds[2].Op != 'L' {
		t.Fatalf("pairs after M must become line-tos: %v", cmds)
	}
}

func TestUnsupportedPathNotEditable(t *testing.T) {
	_, _, ok := parsePathData("M 0 0 C 1 1 2 2 3 3")
	if ok {
		t.Fatalf("curve command must not parse as editable")
	}
	p := newRawPath("M 0 0 C 10 0 10 10 0 10", DefaultStyle())
	if p.Editable() || p.ControlPoints() != nil {
		t.Fatalf("raw path must not expose control points")
	}
	b := p.LocalBounds()
	if b.W == 0 && b.H == 0 {
		t.Fatalf("raw path should still have approximate bounds")
	}
}

func TestTextAnchorEdit(t *testing.T) {
	tx := NewText(5, 5, "hello", DefaultStyle())
	cps := tx.ControlPoints()
	if len(cps) != 1 || cps[0].Kind != CPVertex {
		t.Fatalf("unexpected control points: %+v", cps)
	}
	tx.SetControlPoint(0, geom.Pt{X: 9, Y: 12})
	if tx.X != 9 || tx.Y != 12 {
		t.Fatalf("anchor edit failed: %+v", tx)
	}
	if b := tx.LocalBounds(); b.W <= 0 || b.H <= 0 {
		t.Fatalf("text bounds should be non-empty: %+v", b)
	}
}

func TestTransformIndependence(t *testing.T) {
	r := NewRect(0, 0, 100, 100, DefaultStyle())
	r.SetTransform(Transform{Tx: 5, Ty: 5, Rotation: 45, PivotX: 50, PivotY: 50})
	before := r.Transform()
	r.SetControlPoint(1, geom.Pt{X: 80, Y: 90})
	if r.Transform() != before {
		t.Fatalf("vertex edit must not touch the transform")
	}
	geomBefore := *r
	r.SetTransform(Transform{Tx: 9, Ty: 9})
	if r.X != geomBefore.X || r.W != geomBefore.W {
		t.Fatalf("transform edit must not touch intrinsic geometry")
	}
}

func TestBoundsWithTransform(t *testing.T) {
	r := NewRect(0, 0, 100, 50, DefaultStyle())
	r.SetTransform(Transform{Tx: 10, Ty: 20})
	b := Bounds(r)
	if b.X != 10 || b.Y != 20 || b.W != 100 || b.H != 50 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
}

func TestHitOnRotatedShape(t *testing.T) {
	r := NewRect(0, 0, 100, 10, DefaultStyle())
	r.SetTransform(Transform{Rotation: 90, PivotX: 0, PivotY: 0})
	// Local (50, 5) maps to approximately (-5, 50) in document space.
	if !Hit(r, geom.Pt{X: -5, Y: 50}, 1) {
		t.Fatalf("expected hit through inverse transform")
	}
	if Hit(r, geom.Pt{X: 50, Y: 5}, 1) {
		t.Fatalf("pre-rotation position must miss")
	}
}

func TestToLocalRoundTrip(t *testing.T) {
	c := NewCircle(10, 10, 5, DefaultStyle())
	c.SetTransform(Transform{Tx: 30, Ty: -4, Rotation: 30, PivotX: 40, PivotY: 6})
	doc := c.Transform().Matrix().Apply(geom.Pt{X: 12, Y: 9})
	local := ToLocal(c, doc)
	if !approx(local.X, 12) || !approx(local.Y, 9) {
		t.Fatalf("local round trip failed: %+v", local)
	}
}
