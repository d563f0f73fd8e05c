//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"svgstudio/internal/config"
	"svgstudio/internal/crash"
	"svgstudio/internal/document"
	"svgstudio/internal/editor"
	"svgstudio/internal/export"
	"svgstudio/internal/genai"
	"svgstudio/internal/geom"
	applog "svgstudio/internal/log"
	"svgstudio/internal/shape"
	"svgstudio/internal/telemetry"
)

// Run starts the Fyne-based desktop UI. An optional SVG file path is opened
// into the canvas; otherwise a blank document is created.
func Run(path string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	doc := document.New(800, 600)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("open %s: %w", path, err)
		}
		doc, err = document.Parse(string(data))
		if err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}
	defer crash.Recover(doc)

	cfg, apiKey, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", "err", err)
		cfg = config.Defaults()
	}
	telemetry.InitDefault()

	ed := editor.New(doc, editor.Options{HistoryMaxDepth: cfg.Editor.HistoryMaxDepth})

	fyneApp := app.NewWithID("svgstudio")
	w := fyneApp.NewWindow("SVG Studio")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 760)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	setStatus := func(format string, args ...any) { status.SetText(fmt.Sprintf(format, args...)) }

	ec := NewEditorCanvas(ed)
	ec.OnChange = func() {
		n := len(ed.Selection())
		switch {
		case n == 0:
			setStatus("%s tool", ed.Tool())
		case n == 1:
			setStatus("%s tool — 1 shape selected", ed.Tool())
		default:
			setStatus("%s tool — %d shapes selected", ed.Tool(), n)
		}
	}
	ec.OnTextPrompt = func() {
		entry := widget.NewEntry()
		entry.SetText(ec.ed.PendingText())
		dialog.ShowForm("Text", "OK", "Cancel",
			[]*widget.FormItem{widget.NewFormItem("Content", entry)},
			func(ok bool) {
				if ok {
					ed.ProvideText(entry.Text)
				} else {
					ed.CancelText()
				}
				ec.Refresh()
			}, w)
	}

	toolButtons := makeToolbar(ed, ec, w)

	// Style controls operate on the current selection.
	widthNames := sortedKeys(shape.StrokeWidths)
	widthSel := widget.NewSelect(widthNames, func(name string) {
		if v, ok := shape.StrokeWidths[name]; ok {
			ed.SetStrokeWidth(v)
			ec.Refresh()
		}
	})
	widthSel.PlaceHolder = "Width"
	colorNames := sortedKeys(shape.StrokeColors)
	colorSel := widget.NewSelect(colorNames, func(name string) {
		ed.SetStrokeColor(name)
		ec.Refresh()
	})
	colorSel.PlaceHolder = "Color"
	dashedBtn := widget.NewButton("Dashed", func() {
		ed.ToggleDashed()
		ec.Refresh()
	})

	top := container.NewHBox(append(toolButtons, widget.NewSeparator(), widthSel, colorSel, dashedBtn)...)
	w.SetContent(container.NewBorder(top, status, nil, nil, ec))

	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File",
			fyne.NewMenuItem("Open…", func() { openDialog(w, ed, ec, setStatus) }),
			fyne.NewMenuItem("Save As…", func() { saveDialog(w, ed, setStatus) }),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Export PDF…", func() { exportDialog(w, ed, "pdf", setStatus) }),
			fyne.NewMenuItem("Export PNG…", func() { exportDialog(w, ed, "png", setStatus) }),
		),
		fyne.NewMenu("Edit",
			fyne.NewMenuItem("Undo", func() {
				if ed.Undo() {
					ec.Refresh()
				}
			}),
			fyne.NewMenuItem("Redo", func() {
				if ed.Redo() {
					ec.Refresh()
				}
			}),
			fyne.NewMenuItemSeparator(),
			fyne.NewMenuItem("Delete Selection", func() {
				ed.DeleteSelection()
				ec.Refresh()
			}),
		),
		fyne.NewMenu("AI",
			fyne.NewMenuItem("Generate Sketch…", func() {
				generateDialog(w, ed, ec, cfg, apiKey, setStatus)
			}),
		),
	))

	// Shift constrains draw proportions, Ctrl adds to the selection.
	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(e *fyne.KeyEvent) { ec.setModifier(e.Name, true) })
		deskCanvas.SetOnKeyUp(func(e *fyne.KeyEvent) { ec.setModifier(e.Name, false) })
	}
	w.Canvas().SetOnTypedKey(func(e *fyne.KeyEvent) {
		switch e.Name {
		case fyne.KeyDelete, fyne.KeyBackspace:
			ed.DeleteSelection()
			ec.Refresh()
		case fyne.KeyEscape:
			ed.CancelDrag()
			ec.Refresh()
		}
	})

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		telemetry.Event("session_closed", nil)
	})

	w.ShowAndRun()
	return nil
}

func makeToolbar(ed *editor.Editor, ec *EditorCanvas, w fyne.Window) []fyne.CanvasObject {
	tools := []struct {
		label string
		tool  editor.Tool
	}{
		{"Select", editor.ToolSelect},
		{"Line", editor.ToolLine},
		{"Rect", editor.ToolRect},
		{"Circle", editor.ToolCircle},
		{"Ellipse", editor.ToolEllipse},
		{"Freehand", editor.ToolFreehand},
		{"Text", editor.ToolText},
	}
	var btns []fyne.CanvasObject
	for _, t := range tools {
		tool := t.tool
		btns = append(btns, widget.NewButton(t.label, func() {
			ed.SetTool(tool)
			ec.Refresh()
		}))
	}
	btns = append(btns, widget.NewSeparator(),
		widget.NewButton("Undo", func() {
			if ed.Undo() {
				ec.Refresh()
			}
		}),
		widget.NewButton("Redo", func() {
			if ed.Redo() {
				ec.Refresh()
			}
		}))
	return btns
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func openDialog(w fyne.Window, ed *editor.Editor, ec *EditorCanvas, setStatus func(string, ...any)) {
	fd := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer func() { _ = rc.Close() }()
		buf, rerr := io.ReadAll(rc)
		if rerr != nil {
			dialog.ShowError(rerr, w)
			return
		}
		if lerr := ed.LoadMarkup(string(buf)); lerr != nil {
			dialog.ShowError(lerr, w)
			return
		}
		ec.Refresh()
		setStatus("Opened %s", rc.URI().Name())
	}, w)
	fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".svg"}))
	fd.Show()
}

func saveDialog(w fyne.Window, ed *editor.Editor, setStatus func(string, ...any)) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer func() { _ = wc.Close() }()
		if _, werr := wc.Write([]byte(ed.Serialize())); werr != nil {
			dialog.ShowError(werr, w)
			return
		}
		setStatus("Saved %s", wc.URI().Name())
		telemetry.Event("sketch_saved", nil)
	}, w)
	fd.SetFileName(export.TimestampedName("sketch", "svg", time.Now()))
	fd.Show()
}

func exportDialog(w fyne.Window, ed *editor.Editor, format string, setStatus func(string, ...any)) {
	fd := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		path := wc.URI().Path()
		_ = wc.Close()
		var xerr error
		switch format {
		case "pdf":
			xerr = export.ExportPDF(ed.Document(), path)
		case "png":
			xerr = export.ExportPNG(ed.Document(), path, 2)
		}
		if xerr != nil {
			dialog.ShowError(xerr, w)
			return
		}
		setStatus("Exported %s", filepath.Base(path))
		telemetry.Event("sketch_exported", map[string]any{"format": format})
	}, w)
	fd.SetFileName(export.TimestampedName("sketch", format, time.Now()))
	fd.Show()
}

func generateDialog(w fyne.Window, ed *editor.Editor, ec *EditorCanvas, cfg config.AppConfig, apiKey string, setStatus func(string, ...any)) {
	prompt := widget.NewMultiLineEntry()
	prompt.SetPlaceHolder("Describe the sketch, e.g. \"a house with a tree\"")
	colorSel := widget.NewSelect(sortedKeys(shape.StrokeColors), nil)
	widthSel := widget.NewSelect(sortedKeys(shape.StrokeWidths), nil)
	annotations := widget.NewEntry()
	annotations.SetPlaceHolder("Optional extra instructions, e.g. \"label the roof\"")
	dialog.ShowForm("Generate Sketch", "Generate", "Cancel",
		[]*widget.FormItem{
			widget.NewFormItem("Prompt", prompt),
			widget.NewFormItem("Stroke color", colorSel),
			widget.NewFormItem("Stroke width", widthSel),
			widget.NewFormItem("Annotations", annotations),
		},
		func(ok bool) {
			if !ok {
				return
			}
			setStatus("Generating…")
			client := genai.NewClient(cfg.AI.BaseURL, apiKey, cfg.AI.Model, time.Duration(cfg.AI.TimeoutMs)*time.Millisecond)
			opts := genai.StyleOptions{
				StrokeColorName: colorSel.Selected,
				StrokeWidthName: widthSel.Selected,
				Annotations:     annotations.Text,
			}
			go func(text string) {
				ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.AI.TimeoutMs)*time.Millisecond)
				defer cancel()
				markup, err := client.Generate(ctx, text, opts)
				fyne.Do(func() {
					if err != nil {
						dialog.ShowError(err, w)
						setStatus("Generation failed")
						return
					}
					if lerr := ed.LoadMarkup(markup); lerr != nil {
						dialog.ShowError(lerr, w)
						setStatus("Generated markup was not usable")
						return
					}
					ec.Refresh()
					setStatus("Sketch generated")
					telemetry.Event("sketch_generated", nil)
				})
			}(prompt.Text)
		}, w)
}

// EditorCanvas renders the live document and forwards pointer gestures to the
// editing engine. Coordinates travel screen -> document through the editor's
// viewport; all editing logic stays in the engine.
type EditorCanvas struct {
	widget.BaseWidget

	ed           *editor.Editor
	OnChange     func()
	OnTextPrompt func()

	dragging bool
	lastDrag geom.Pt
	mods     editor.Modifiers
}

func NewEditorCanvas(ed *editor.Editor) *EditorCanvas {
	ec := &EditorCanvas{ed: ed}
	ec.ExtendBaseWidget(ec)
	return ec
}

func (ec *EditorCanvas) setModifier(key fyne.KeyName, down bool) {
	switch key {
	case desktop.KeyShiftLeft, desktop.KeyShiftRight:
		ec.mods.Constrain = down
	case desktop.KeyControlLeft, desktop.KeyControlRight:
		ec.mods.Additive = down
	}
}

func (ec *EditorCanvas) toDoc(pos fyne.Position) geom.Pt {
	return ec.ed.Viewport().ToDocument(geom.Pt{X: float64(pos.X), Y: float64(pos.Y)})
}

func (ec *EditorCanvas) notify() {
	if ec.OnChange != nil {
		ec.OnChange()
	}
	if ec.ed.Mode() == editor.ModeAwaitingText && ec.OnTextPrompt != nil {
		ec.OnTextPrompt()
	}
}

func (ec *EditorCanvas) Tapped(e *fyne.PointEvent) {
	p := ec.toDoc(e.Position)
	ec.ed.PointerDown(p.X, p.Y, ec.mods)
	ec.ed.PointerUp(p.X, p.Y, ec.mods)
	ec.Refresh()
	ec.notify()
}

func (ec *EditorCanvas) DoubleTapped(e *fyne.PointEvent) {
	p := ec.toDoc(e.Position)
	if ec.ed.DoubleClick(p.X, p.Y) {
		ec.notify()
	}
	ec.Refresh()
}

func (ec *EditorCanvas) Dragged(e *fyne.DragEvent) {
	cur := ec.toDoc(e.Position)
	if !ec.dragging {
		start := ec.toDoc(fyne.NewPos(e.Position.X-e.Dragged.DX, e.Position.Y-e.Dragged.DY))
		ec.ed.PointerDown(start.X, start.Y, ec.mods)
		ec.dragging = true
	}
	ec.ed.PointerMove(cur.X, cur.Y, ec.mods)
	ec.lastDrag = cur
	ec.Refresh()
}

func (ec *EditorCanvas) DragEnd() {
	if !ec.dragging {
		return
	}
	ec.dragging = false
	ec.ed.PointerUp(ec.lastDrag.X, ec.lastDrag.Y, ec.mods)
	ec.Refresh()
	ec.notify()
}

// Scrolled zooms around the current viewport center.
func (ec *EditorCanvas) Scrolled(e *fyne.ScrollEvent) {
	v := ec.ed.Viewport()
	v.Zoom += float64(e.Scrolled.DY) * 0.002
	if v.Zoom < 0.1 {
		v.Zoom = 0.1
	}
	if v.Zoom > 8 {
		v.Zoom = 8
	}
	ec.ed.SetViewport(v)
	ec.Refresh()
}

func (ec *EditorCanvas) MinSize() fyne.Size { return fyne.NewSize(640, 480) }

func (ec *EditorCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 245, G: 245, B: 245, A: 255})
	return &editorCanvasRenderer{ec: ec, bg: bg}
}

type editorCanvasRenderer struct {
	ec      *EditorCanvas
	bg      *canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *editorCanvasRenderer) Destroy() {}

func (r *editorCanvasRenderer) MinSize() fyne.Size { return r.ec.MinSize() }

func (r *editorCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *editorCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.rebuild()
}

func (r *editorCanvasRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.ec)
}

// rebuild regenerates the draw list from the document. Shapes are flattened
// to screen-space segments so rotation works uniformly across kinds.
func (r *editorCanvasRenderer) rebuild() {
	ed := r.ec.ed
	view := ed.Viewport()
	objs := []fyne.CanvasObject{r.bg}

	for _, s := range ed.Document().Shapes {
		objs = append(objs, shapeObjects(s, view)...)
	}

	if bb := ed.BoundingBox(); bb != nil {
		objs = append(objs, selectionObjects(ed, view, bb)...)
	}
	r.objects = objs
}

func shapeObjects(s shape.Shape, view geom.Viewport) []fyne.CanvasObject {
	st := s.Style()
	col := strokeColor(st.Stroke)
	width := float32(st.StrokeWidth)
	m := s.Transform().Matrix()

	if t, ok := s.(*shape.Text); ok {
		anchor := view.ToScreen(m.Apply(geom.Pt{X: t.X, Y: t.Y}))
		txt := canvas.NewText(t.Content, col)
		txt.TextSize = float32(t.FontSize * view.Zoom)
		txt.Move(fyne.NewPos(float32(anchor.X), float32(anchor.Y-float64(txt.TextSize))))
		return []fyne.CanvasObject{txt}
	}

	var objs []fyne.CanvasObject
	for _, ring := range outlineRings(s) {
		for i := 0; i+1 < len(ring); i++ {
			a := view.ToScreen(m.Apply(ring[i]))
			b := view.ToScreen(m.Apply(ring[i+1]))
			ln := canvas.NewLine(col)
			ln.StrokeWidth = width
			ln.Position1 = fyne.NewPos(float32(a.X), float32(a.Y))
			ln.Position2 = fyne.NewPos(float32(b.X), float32(b.Y))
			objs = append(objs, ln)
		}
	}
	return objs
}

func selectionObjects(ed *editor.Editor, view geom.Viewport, bb *editor.BoundingBox) []fyne.CanvasObject {
	accent := color.RGBA{R: 0, G: 120, B: 215, A: 255}
	p0 := view.ToScreen(geom.Pt{X: bb.X, Y: bb.Y})
	p1 := view.ToScreen(geom.Pt{X: bb.X + bb.W, Y: bb.Y + bb.H})

	box := canvas.NewRectangle(color.RGBA{})
	box.StrokeColor = accent
	box.StrokeWidth = 1
	box.Move(fyne.NewPos(float32(p0.X), float32(p0.Y)))
	box.Resize(fyne.NewSize(float32(p1.X-p0.X), float32(p1.Y-p0.Y)))
	objs := []fyne.CanvasObject{box}

	const handle = float32(8)
	for _, cp := range ed.ControlPoints() {
		sp := view.ToScreen(geom.Pt{X: cp.X, Y: cp.Y})
		h := canvas.NewRectangle(color.White)
		h.StrokeColor = accent
		h.StrokeWidth = 1
		h.Move(fyne.NewPos(float32(sp.X)-handle/2, float32(sp.Y)-handle/2))
		h.Resize(fyne.NewSize(handle, handle))
		objs = append(objs, h)
	}

	if rh, ok := ed.RotateHandle(); ok {
		sp := view.ToScreen(rh)
		c := canvas.NewCircle(accent)
		c.Move(fyne.NewPos(float32(sp.X)-handle/2, float32(sp.Y)-handle/2))
		c.Resize(fyne.NewSize(handle, handle))
		objs = append(objs, c)
	}
	return objs
}

// outlineRings flattens a shape's local geometry to polyline rings. Curved
// kinds are approximated; raw paths fall back to their bounding box so they
// remain visible and selectable.
func outlineRings(s shape.Shape) [][]geom.Pt {
	const segments = 64
	switch v := s.(type) {
	case *shape.Line:
		return [][]geom.Pt{{{X: v.X1, Y: v.Y1}, {X: v.X2, Y: v.Y2}}}
	case *shape.Rect:
		return [][]geom.Pt{rectRing(geom.Rect{X: v.X, Y: v.Y, W: v.W, H: v.H})}
	case *shape.Circle:
		return [][]geom.Pt{arcRing(v.CX, v.CY, v.R, v.R, segments)}
	case *shape.Ellipse:
		return [][]geom.Pt{arcRing(v.CX, v.CY, v.RX, v.RY, segments)}
	case *shape.Poly:
		ring := append([]geom.Pt(nil), v.Points...)
		if v.Closed && len(ring) > 1 {
			ring = append(ring, ring[0])
		}
		return [][]geom.Pt{ring}
	case *shape.Path:
		if !v.Editable() {
			return [][]geom.Pt{rectRing(v.LocalBounds())}
		}
		var rings [][]geom.Pt
		var cur []geom.Pt
		for _, c := range v.Cmds {
			if c.Op == 'M' && len(cur) > 0 {
				rings = append(rings, cur)
				cur = nil
			}
			cur = append(cur, c.P)
		}
		if v.Closed && len(cur) > 1 {
			cur = append(cur, cur[0])
		}
		if len(cur) > 0 {
			rings = append(rings, cur)
		}
		return rings
	default:
		return [][]geom.Pt{rectRing(s.LocalBounds())}
	}
}

func rectRing(r geom.Rect) []geom.Pt {
	return []geom.Pt{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
		{X: r.X, Y: r.Y},
	}
}

func arcRing(cx, cy, rx, ry float64, segments int) []geom.Pt {
	ring := make([]geom.Pt, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		ring = append(ring, geom.Pt{X: cx + rx*math.Cos(a), Y: cy + ry*math.Sin(a)})
	}
	return ring
}

func strokeColor(name string) color.Color {
	switch name {
	case "blue":
		return color.RGBA{R: 0, G: 0, B: 255, A: 255}
	case "red":
		return color.RGBA{R: 255, G: 0, B: 0, A: 255}
	case "green":
		return color.RGBA{R: 0, G: 128, B: 0, A: 255}
	case "orange":
		return color.RGBA{R: 255, G: 165, B: 0, A: 255}
	default:
		return color.Black
	}
}
