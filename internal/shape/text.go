/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"strings"

	"svgstudio/internal/geom"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// DefaultFontSize is used for newly created text shapes.
const DefaultFontSize = 16

// Text is a single-line text label anchored at its baseline start point.
type Text struct {
	base
	X, Y     float64
	Content  string
	FontSize float64
}

func NewText(x, y float64, content string, st Style) *Text {
	return &Text{base: base{style: st}, X: x, Y: y, Content: content, FontSize: DefaultFontSize}
}

func (t *Text) Kind() Kind { return KindText }

// ControlPoints exposes the single anchor point.
func (t *Text) ControlPoints() []ControlPoint {
	return []ControlPoint{{X: t.X, Y: t.Y, Index: 0, Kind: CPVertex}}
}

func (t *Text) SetControlPoint(i int, p geom.Pt) bool {
	if i != 0 {
		return false
	}
	t.X, t.Y = p.X, p.Y
	return true
}

func (t *Text) fontSize() float64 {
	if t.FontSize <= 0 {
		return DefaultFontSize
	}
	return t.FontSize
}

// LocalBounds estimates the rendered extent from the basicfont metrics scaled
// to the font size. The anchor sits on the baseline, so the box extends
// upwards from (X, Y).
func (t *Text) LocalBounds() geom.Rect {
	size := t.fontSize()
	adv := font.MeasureString(basicfont.Face7x13, t.Content)
	w := float64(adv) / 64 * size / 13
	return geom.R(t.X, t.Y-size, w, size*1.2)
}

func (t *Text) HitLocal(p geom.Pt, tol float64) bool {
	return t.LocalBounds().Inset(-tol, -tol).Contains(p)
}

func (t *Text) Clone() Shape {
	c := *t
	return &c
}

func (t *Text) AppendSVG(b *strings.Builder) {
	b.WriteString("<text")
	attr(b, "x", fnum(t.X))
	attr(b, "y", fnum(t.Y))
	attr(b, "font-size", fnum(t.fontSize()))
	t.writeCommonAttrs(b)
	b.WriteString(">")
	b.WriteString(escText(t.Content))
	b.WriteString("</text>")
}
