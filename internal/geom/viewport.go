/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Viewport maps between screen (pointer) coordinates and document coordinates.
// Zoom scales document units to screen pixels; Offset is the screen position
// of the viewBox origin. ViewBoxMin shifts documents whose viewBox does not
// start at 0 0.
type Viewport struct {
	Zoom       float64
	OffsetX    float64
	OffsetY    float64
	ViewBoxMin Pt
}

// NewViewport returns an identity viewport (zoom 1, no pan).
func NewViewport() Viewport { return Viewport{Zoom: 1} }

func (v Viewport) zoom() float64 {
	if v.Zoom <= 0 {
		return 1
	}
	return v.Zoom
}

// ToDocument maps a pointer position into document space.
func (v Viewport) ToDocument(screen Pt) Pt {
	z := v.zoom()
	return Pt{
		X: (screen.X-v.OffsetX)/z + v.ViewBoxMin.X,
		Y: (screen.Y-v.OffsetY)/z + v.ViewBoxMin.Y,
	}
}

// ToScreen maps a document point onto the screen.
func (v Viewport) ToScreen(doc Pt) Pt {
	z := v.zoom()
	return Pt{
		X: (doc.X-v.ViewBoxMin.X)*z + v.OffsetX,
		Y: (doc.Y-v.ViewBoxMin.Y)*z + v.OffsetY,
	}
}

// DocUnits converts a screen-space length (e.g. a hit tolerance in pixels)
// into document units at the current zoom.
func (v Viewport) DocUnits(screenLen float64) float64 { return screenLen / v.zoom() }
