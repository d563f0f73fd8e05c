/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"svgstudio/internal/document"
	"svgstudio/internal/geom"
	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"
)

// ellipseSegments controls how finely curved outlines are flattened.
const ellipseSegments = 64

// ExportPNG rasterizes the document at the given scale (1.0 means one pixel
// per document unit) and writes it to outPath. Strokes are rendered solid;
// dash patterns are a vector-only affordance.
func ExportPNG(doc *document.Document, outPath string, scale float64) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if scale <= 0 {
		scale = 1
	}
	w := int(math.Round(doc.Width * scale))
	h := int(math.Round(doc.Height * scale))
	if w <= 0 || h <= 0 {
		return fmt.Errorf("document has no size")
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	l := applog.WithComponent("export")
	for _, s := range doc.Shapes {
		drawShapePNG(img, s, scale, l)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func drawShapePNG(img *image.RGBA, s shape.Shape, scale float64, l *slog.Logger) {
	st := s.Style()
	r, g, b, ok := parseColor(st.Stroke)
	if !ok {
		r, g, b = 0, 0, 0
	}
	col := color.RGBA{R: r, G: g, B: b, A: 255}
	width := math.Max(1, st.StrokeWidth*scale)
	m := s.Transform().Matrix()

	if t, isText := s.(*shape.Text); isText {
		anchor := m.Apply(geom.Pt{X: t.X, Y: t.Y})
		drawText(img, t.Content, anchor, scale, col)
		return
	}

	for _, line := range outline(s, l) {
		for i := 0; i+1 < len(line); i++ {
			a := m.Apply(line[i])
			bp := m.Apply(line[i+1])
			drawSegment(img, a, bp, scale, width, col)
		}
	}
}

// outline flattens a shape's intrinsic geometry into polylines in local space.
func outline(s shape.Shape, l *slog.Logger) [][]geom.Pt {
	switch v := s.(type) {
	case *shape.Line:
		return [][]geom.Pt{{{X: v.X1, Y: v.Y1}, {X: v.X2, Y: v.Y2}}}
	case *shape.Rect:
		return [][]geom.Pt{{
			{X: v.X, Y: v.Y}, {X: v.X + v.W, Y: v.Y},
			{X: v.X + v.W, Y: v.Y + v.H}, {X: v.X, Y: v.Y + v.H},
			{X: v.X, Y: v.Y},
		}}
	case *shape.Circle:
		return [][]geom.Pt{ellipsePoints(v.CX, v.CY, v.R, v.R)}
	case *shape.Ellipse:
		return [][]geom.Pt{ellipsePoints(v.CX, v.CY, v.RX, v.RY)}
	case *shape.Poly:
		pts := append([]geom.Pt(nil), v.Points...)
		if v.Closed && len(pts) > 2 {
			pts = append(pts, pts[0])
		}
		return [][]geom.Pt{pts}
	case *shape.Path:
		if !v.Editable() {
			l.Warn("skipping path with unsupported commands in PNG export")
			return nil
		}
		var out [][]geom.Pt
		var cur []geom.Pt
		for _, c := range v.Cmds {
			if c.Op == 'M' && len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			cur = append(cur, c.P)
		}
		if v.Closed && len(cur) > 2 {
			cur = append(cur, cur[0])
		}
		if len(cur) > 0 {
			out = append(out, cur)
		}
		return out
	}
	return nil
}

func ellipsePoints(cx, cy, rx, ry float64) []geom.Pt {
	pts := make([]geom.Pt, 0, ellipseSegments+1)
	for i := 0; i <= ellipseSegments; i++ {
		a := 2 * math.Pi * float64(i) / ellipseSegments
		pts = append(pts, geom.Pt{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return pts
}

// drawSegment stamps a thick line between two document-space points.
func drawSegment(img *image.RGBA, a, b geom.Pt, scale, width float64, col color.RGBA) {
	ax, ay := a.X*scale, a.Y*scale
	bx, by := b.X*scale, b.Y*scale
	steps := int(math.Hypot(bx-ax, by-ay)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		stampDot(img, ax+(bx-ax)*t, ay+(by-ay)*t, width/2, col)
	}
}

func stampDot(img *image.RGBA, x, y, r float64, col color.RGBA) {
	minX := int(math.Floor(x - r))
	maxX := int(math.Ceil(x + r))
	minY := int(math.Floor(y - r))
	maxY := int(math.Ceil(y + r))
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			dx := float64(px) - x
			dy := float64(py) - y
			if dx*dx+dy*dy <= r*r {
				if image.Pt(px, py).In(img.Bounds()) {
					img.SetRGBA(px, py, col)
				}
			}
		}
	}
}

// drawText renders text with the built-in bitmap face. The face has a fixed
// size, so raster text is approximate compared to the vector exporters.
func drawText(img *image.RGBA, content string, anchor geom.Pt, scale float64, col color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot: fixed.Point26_6{
			X: fixed.I(int(math.Round(anchor.X * scale))),
			Y: fixed.I(int(math.Round(anchor.Y * scale))),
		},
	}
	d.DrawString(content)
}
