/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"strconv"
	"strings"

	"svgstudio/internal/shape"
)

// keyword colors beyond the stroke palette that generated markup commonly uses
var extraColors = map[string]string{
	"white":  "#ffffff",
	"gray":   "#808080",
	"grey":   "#808080",
	"yellow": "#eab308",
	"purple": "#9333ea",
}

// parseColor resolves an SVG paint string to RGB. The second result is false
// for "none", the empty string and anything unparseable.
func parseColor(paint string) (r, g, b uint8, ok bool) {
	p := strings.ToLower(strings.TrimSpace(paint))
	if p == "" || p == "none" {
		return 0, 0, 0, false
	}
	if hex, found := shape.StrokeColors[p]; found {
		p = hex
	} else if hex, found := extraColors[p]; found {
		p = hex
	}
	if !strings.HasPrefix(p, "#") {
		return 0, 0, 0, false
	}
	p = p[1:]
	if len(p) == 3 {
		p = string([]byte{p[0], p[0], p[1], p[1], p[2], p[2]})
	}
	if len(p) != 6 {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(p, 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return uint8(v >> 16), uint8(v >> 8), uint8(v), true
}
