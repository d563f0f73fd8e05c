/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"strconv"
	"strings"

	"svgstudio/internal/geom"
)

// Transform is the applied transform of a shape: a translation plus a rotation
// around a pivot in document coordinates. It is edited independently of the
// shape's intrinsic geometry and persisted as attributes on the node so it
// survives serialization and undo/redo.
type Transform struct {
	Tx, Ty   float64
	Rotation float64 // degrees
	PivotX   float64
	PivotY   float64
}

// IsIdentity reports whether the transform has no effect.
func (t Transform) IsIdentity() bool {
	return t.Tx == 0 && t.Ty == 0 && t.Rotation == 0
}

// Pivot returns the rotation pivot as a point.
func (t Transform) Pivot() geom.Pt { return geom.Pt{X: t.PivotX, Y: t.PivotY} }

// Matrix composes the transform: translate first, then rotate about the pivot.
// The pivot is in document space; with this order a rotation gesture keeps the
// frozen pivot fixed on screen regardless of the shape's translation.
func (t Transform) Matrix() geom.Affine {
	m := geom.Translate(t.Tx, t.Ty)
	if t.Rotation != 0 {
		m = geom.RotateAbout(t.Rotation, t.Pivot()).Mul(m)
	}
	return m
}

// Attribute names used to persist the transform on a node. The rendered
// "transform" attribute is re-derived from these on every write.
const (
	attrTx    = "data-tx"
	attrTy    = "data-ty"
	attrRot   = "data-rot"
	attrPx    = "data-px"
	attrPy    = "data-py"
	attrXform = "transform"
)

// readTransform builds a Transform from node attributes, defaulting every
// missing field to zero.
func readTransform(attrs map[string]string) Transform {
	f := func(key string) float64 {
		v, err := strconv.ParseFloat(strings.TrimSpace(attrs[key]), 64)
		if err != nil {
			return 0
		}
		return v
	}
	return Transform{Tx: f(attrTx), Ty: f(attrTy), Rotation: f(attrRot), PivotX: f(attrPx), PivotY: f(attrPy)}
}

// transformAttrs returns the persisted attribute pairs for t, including the
// derived SVG "transform" string. An identity transform yields no attributes;
// a zero rotation omits the rotate() term to keep round-trips minimal.
func transformAttrs(t Transform) [][2]string {
	if t.IsIdentity() {
		return nil
	}
	out := [][2]string{
		{attrTx, fnum(t.Tx)},
		{attrTy, fnum(t.Ty)},
		{attrRot, fnum(t.Rotation)},
		{attrPx, fnum(t.PivotX)},
		{attrPy, fnum(t.PivotY)},
	}
	return append(out, [2]string{attrXform, svgTransform(t)})
}

// svgTransform renders the SVG transform list. The attribute applies its terms
// left-to-right to the coordinate system, so "translate(...) rotate(...)"
// applies the translation to the shape first. The rotate pivot is shifted into
// the post-translate frame so it matches the document-space pivot.
func svgTransform(t Transform) string {
	var parts []string
	if t.Tx != 0 || t.Ty != 0 {
		parts = append(parts, "translate("+fnum(t.Tx)+" "+fnum(t.Ty)+")")
	}
	if t.Rotation != 0 {
		parts = append(parts, "rotate("+fnum(t.Rotation)+" "+fnum(t.PivotX-t.Tx)+" "+fnum(t.PivotY-t.Ty)+")")
	}
	return strings.Join(parts, " ")
}

// fnum formats a float for attribute output: rounded to 3 decimals, trailing
// zeros dropped, so serialization is deterministic across round-trips.
func fnum(v float64) string {
	return strconv.FormatFloat(geom.FloatRound(v, 3), 'f', -1, 64)
}
