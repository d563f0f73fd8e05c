/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

// Styles shared by every shape kind.

// DashPattern is the stroke-dasharray emitted for dashed strokes.
const DashPattern = "8 4"

// Style carries the presentational attributes of a shape. Stroke and Fill are
// SVG paint strings (color keyword or #rrggbb, "none" for no fill).
type Style struct {
	Stroke      string
	StrokeWidth float64
	Dashed      bool
	Fill        string
}

// DefaultStyle is applied to shapes whose markup omits style attributes.
func DefaultStyle() Style {
	return Style{Stroke: "black", StrokeWidth: 2, Fill: "none"}
}

// StrokeWidths maps the closed width names accepted by the generation
// interface to stroke widths in document units.
var StrokeWidths = map[string]float64{
	"thin":   1,
	"medium": 2,
	"thick":  4,
}

// StrokeColors is the closed set of stroke color names accepted by the
// generation interface.
var StrokeColors = map[string]string{
	"black":  "#000000",
	"blue":   "#1d4ed8",
	"red":    "#dc2626",
	"green":  "#16a34a",
	"orange": "#ea580c",
}
