/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides 2D points, rectangles and affine transforms for the
// editing engine. All values are in document units (float64).
package geom

import "math"

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

// Center returns the midpoint of the rectangle.
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Finite reports whether all fields are finite and the size is non-negative.
// Used as a sanity guard before trusting measured extents.
func (r Rect) Finite() bool {
	for _, v := range [4]float64{r.X, r.Y, r.W, r.H} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return r.W >= 0 && r.H >= 0
}

// Dist returns the Euclidean distance between two points.
func Dist(a, b Pt) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Affine represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine struct{ A, B, C, D, E, F float64 }

var Identity = Affine{A: 1, D: 1}

func (m Affine) Mul(n Affine) Affine {
	return Affine{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyRect transforms all four corners and returns the axis-aligned box of the result.
func (m Affine) ApplyRect(r Rect) Rect {
	corners := [4]Pt{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X, r.Y + r.H},
		{r.X + r.W, r.Y + r.H},
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		p := m.Apply(c)
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func Translate(tx, ty float64) Affine { return Affine{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine     { return Affine{A: sx, D: sy} }

func Rotate(rad float64) Affine {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine{A: c, B: s, C: -s, D: c}
}

// RotateDegrees returns a rotation matrix for an angle in degrees.
func RotateDegrees(deg float64) Affine { return Rotate(deg * math.Pi / 180) }

// RotateAbout rotates by deg degrees around the pivot p.
func RotateAbout(deg float64, p Pt) Affine {
	return Translate(p.X, p.Y).Mul(RotateDegrees(deg)).Mul(Translate(-p.X, -p.Y))
}

// Invert computes the inverse of an affine matrix. A singular matrix inverts
// to Identity so callers never divide by zero mid-gesture.
func (m Affine) Invert() Affine {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	invDet := 1 / det
	return Affine{
		A: m.D * invDet,
		B: -m.B * invDet,
		C: -m.C * invDet,
		D: m.A * invDet,
		E: (m.C*m.F - m.D*m.E) * invDet,
		F: (m.B*m.E - m.A*m.F) * invDet,
	}
}

// AngleDeltaDegrees returns the signed angle in degrees swept at pivot when
// moving from the gesture start point to the current point. The baseline is
// recaptured at the start of every drag, which avoids cumulative drift.
func AngleDeltaDegrees(pivot, start, cur Pt) float64 {
	a0 := math.Atan2(start.Y-pivot.Y, start.X-pivot.X)
	a1 := math.Atan2(cur.Y-pivot.Y, cur.X-pivot.X)
	return (a1 - a0) * 180 / math.Pi
}

// SnapAngle45 snaps the segment from anchor to p onto the nearest 45-degree
// direction, preserving its length. Used by the constrain modifier while
// drawing lines.
func SnapAngle45(anchor, p Pt) Pt {
	dx := p.X - anchor.X
	dy := p.Y - anchor.Y
	if dx == 0 && dy == 0 {
		return p
	}
	ang := math.Atan2(dy, dx)
	step := math.Pi / 4
	snapped := math.Round(ang/step) * step
	length := math.Hypot(dx, dy)
	return Pt{X: anchor.X + length*math.Cos(snapped), Y: anchor.Y + length*math.Sin(snapped)}
}

// FloatRound rounds v to n decimal places deterministically. Serialization
// uses it so that round-tripped documents compare byte-equal.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
