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
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"svgstudio/internal/document"
	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"
)

// ExportPDF writes the document as a single-page vector PDF at outPath.
// Document units map 1:1 onto PDF points.
func ExportPDF(doc *document.Document, outPath string) error {
	if doc == nil {
		return fmt.Errorf("document is nil")
	}
	if doc.Width <= 0 || doc.Height <= 0 {
		return fmt.Errorf("document has no size")
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: doc.Width, Ht: doc.Height},
	})
	pdf.SetTitle("SVG Studio sketch", false)
	// Built-in Helvetica keeps text vector without embedding.
	pdf.SetFont("Helvetica", "", shape.DefaultFontSize)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: doc.Width, Ht: doc.Height})

	l := applog.WithComponent("export")
	for _, s := range doc.Shapes {
		drawShapePDF(pdf, s, l)
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func drawShapePDF(pdf *gofpdf.Fpdf, s shape.Shape, l *slog.Logger) {
	st := s.Style()
	if r, g, b, ok := parseColor(st.Stroke); ok {
		pdf.SetDrawColor(int(r), int(g), int(b))
	} else {
		pdf.SetDrawColor(0, 0, 0)
	}
	fillR, fillG, fillB, hasFill := parseColor(st.Fill)
	if hasFill {
		pdf.SetFillColor(int(fillR), int(fillG), int(fillB))
	}
	pdf.SetLineWidth(st.StrokeWidth)
	if st.Dashed {
		pdf.SetDashPattern([]float64{8, 4}, 0)
	} else {
		pdf.SetDashPattern([]float64{}, 0)
	}
	style := "D"
	if hasFill {
		style = "FD"
	}

	xf := s.Transform()
	if !xf.IsIdentity() {
		pdf.TransformBegin()
		if xf.Rotation != 0 {
			// gofpdf rotates counter-clockwise; document rotation is
			// clockwise with y pointing down.
			pdf.TransformRotate(-xf.Rotation, xf.PivotX, xf.PivotY)
		}
		if xf.Tx != 0 || xf.Ty != 0 {
			pdf.TransformTranslate(xf.Tx, xf.Ty)
		}
		defer pdf.TransformEnd()
	}

	switch v := s.(type) {
	case *shape.Line:
		pdf.Line(v.X1, v.Y1, v.X2, v.Y2)
	case *shape.Rect:
		pdf.Rect(v.X, v.Y, v.W, v.H, style)
	case *shape.Circle:
		pdf.Circle(v.CX, v.CY, v.R, style)
	case *shape.Ellipse:
		pdf.Ellipse(v.CX, v.CY, v.RX, v.RY, 0, style)
	case *shape.Poly:
		if len(v.Points) < 2 {
			return
		}
		pdf.MoveTo(v.Points[0].X, v.Points[0].Y)
		for _, p := range v.Points[1:] {
			pdf.LineTo(p.X, p.Y)
		}
		if v.Closed {
			pdf.ClosePath()
		}
		pdf.DrawPath(style)
	case *shape.Path:
		if !v.Editable() {
			l.Warn("skipping path with unsupported commands in PDF export")
			return
		}
		for _, c := range v.Cmds {
			if c.Op == 'M' {
				pdf.MoveTo(c.P.X, c.P.Y)
			} else {
				pdf.LineTo(c.P.X, c.P.Y)
			}
		}
		if v.Closed {
			pdf.ClosePath()
		}
		pdf.DrawPath(style)
	case *shape.Text:
		if r, g, b, ok := parseColor(st.Stroke); ok {
			pdf.SetTextColor(int(r), int(g), int(b))
		} else {
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.SetFontSize(v.FontSize)
		pdf.Text(v.X, v.Y, v.Content)
	}
}
