/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"svgstudio/internal/backend"
	"svgstudio/internal/config"
	"svgstudio/internal/crash"
	"svgstudio/internal/document"
	"svgstudio/internal/export"
	"svgstudio/internal/genai"
	applog "svgstudio/internal/log"
	"svgstudio/internal/storage"
	"svgstudio/internal/ui"
	"svgstudio/internal/version"
)

func usage() {
	fmt.Println("SVG Studio — AI-assisted vector sketching")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  svgstudio version|-v|--version               Show version")
	fmt.Println("  svgstudio open <file.svg>                    Parse a sketch and print a summary")
	fmt.Println("  svgstudio generate <prompt...>               Generate a sketch with AI and save it to the current directory")
	fmt.Println("  svgstudio export <file.svg> <out.pdf|out.png>  Export a sketch to PDF or PNG")
	fmt.Println("  svgstudio library list|search <text>|save <file.svg> <name>|get <id>|rm <id>")
	fmt.Println("  svgstudio library export-manifest <id> <out.json>|import-manifest <in.json>")
	fmt.Println("  svgstudio gallery list|get <id>|publish <file.svg> <name>|search <text>")
	fmt.Println("  svgstudio ui [<file.svg>]                    Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var doc *document.Document
	defer func() { crash.Recover(doc) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("SVG Studio — AI-assisted vector sketching")
			fmt.Println(version.String())
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <file.svg>")
				usage()
				os.Exit(2)
			}
			doc = mustOpen(l, args[2])
			fmt.Printf("Document: %s\n", args[2])
			fmt.Printf("ViewBox: %.6g %.6g %.6g %.6g\n", doc.ViewBox.X, doc.ViewBox.Y, doc.ViewBox.W, doc.ViewBox.H)
			fmt.Printf("Shapes: %d\n", len(doc.Shapes))
			for _, s := range doc.Shapes {
				fmt.Printf("  %s\n", s.Kind())
			}
			return
		case "generate":
			if len(args) < 3 {
				fmt.Println("generate requires a prompt")
				usage()
				os.Exit(2)
			}
			runGenerate(l, strings.Join(args[2:], " "))
			return
		case "export":
			if len(args) < 4 {
				fmt.Println("export requires <file.svg> and <out.pdf|out.png>")
				usage()
				os.Exit(2)
			}
			doc = mustOpen(l, args[2])
			runExport(l, doc, args[3])
			return
		case "library":
			runLibrary(l, args[2:])
			return
		case "gallery":
			runGallery(l, args[2:])
			return
		case "ui":
			var file string
			if len(args) >= 3 {
				file = args[2]
			}
			if err := ui.Run(file); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func mustOpen(l *slog.Logger, path string) *document.Document {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(l, "read sketch failed", err)
	}
	doc, err := document.Parse(string(data))
	if err != nil {
		fail(l, "parse sketch failed", err)
	}
	return doc
}

func runGenerate(l *slog.Logger, prompt string) {
	cfg, apiKey, err := config.Load()
	if err != nil {
		fail(l, "config load failed", err)
	}
	timeout := time.Duration(cfg.AI.TimeoutMs) * time.Millisecond
	client := genai.NewClient(cfg.AI.BaseURL, apiKey, cfg.AI.Model, timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	l.Info("generating sketch", slog.String("model", cfg.AI.Model))
	markup, err := client.Generate(ctx, prompt, genai.StyleOptions{})
	if err != nil {
		fail(l, "generation failed", err)
	}
	doc, err := document.Parse(markup)
	if err != nil {
		fail(l, "generated markup rejected", err)
	}

	path, err := export.WriteSVG(doc, ".")
	if err != nil {
		fail(l, "write sketch failed", err)
	}
	fmt.Println("Saved", path)

	// keep the prompt in the local library history, best effort
	if dataDir, derr := config.DataDir(); derr == nil {
		if lib, lerr := storage.Open(dataDir); lerr == nil {
			defer func() { _ = lib.Close() }()
			_ = lib.RecordPrompt(ctx, prompt, "", "", true)
		}
	}
}

func runExport(l *slog.Logger, doc *document.Document, out string) {
	var err error
	switch strings.ToLower(filepath.Ext(out)) {
	case ".pdf":
		err = export.ExportPDF(doc, out)
	case ".png":
		err = export.ExportPNG(doc, out, 2)
	case ".svg":
		err = export.WriteSVGFile(doc, out)
	default:
		fmt.Println("export target must end in .pdf, .png or .svg")
		os.Exit(2)
	}
	if err != nil {
		fail(l, "export failed", err)
	}
	fmt.Println("Exported", out)
}

func openLibrary(l *slog.Logger) *storage.Library {
	dataDir, err := config.DataDir()
	if err != nil {
		fail(l, "resolve data dir failed", err)
	}
	lib, err := storage.Open(dataDir)
	if err != nil {
		fail(l, "open library failed", err)
	}
	return lib
}

func runLibrary(l *slog.Logger, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	lib := openLibrary(l)
	defer func() { _ = lib.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "list":
		sketches, err := lib.ListSketches(ctx)
		if err != nil {
			fail(l, "list failed", err)
		}
		for _, s := range sketches {
			fmt.Printf("%6d %-24s %s\n", s.ID, s.Name, s.CreatedAt.Format(time.RFC3339))
		}
	case "search":
		if len(args) < 2 {
			fmt.Println("library search requires <text>")
			os.Exit(2)
		}
		sketches, err := lib.SearchSketches(ctx, args[1])
		if err != nil {
			fail(l, "search failed", err)
		}
		for _, s := range sketches {
			fmt.Printf("%6d %-24s %s\n", s.ID, s.Name, s.CreatedAt.Format(time.RFC3339))
		}
	case "save":
		if len(args) < 3 {
			fmt.Println("library save requires <file.svg> and <name>")
			os.Exit(2)
		}
		doc := mustOpen(l, args[1])
		id, err := lib.SaveSketch(ctx, args[2], "", doc.Serialize())
		if err != nil {
			fail(l, "save failed", err)
		}
		fmt.Printf("Saved %s as sketch %d\n", args[2], id)
	case "get":
		id := mustID(l, args, "library get requires <id>")
		s, err := lib.GetSketch(ctx, id)
		if err != nil {
			fail(l, "get failed", err)
		}
		fmt.Print(s.Markup)
	case "rm":
		id := mustID(l, args, "library rm requires <id>")
		if err := lib.DeleteSketch(ctx, id); err != nil {
			fail(l, "delete failed", err)
		}
		fmt.Println("Deleted sketch", id)
	case "export-manifest":
		if len(args) < 3 {
			fmt.Println("library export-manifest requires <id> and <out.json>")
			os.Exit(2)
		}
		id := mustID(l, args, "library export-manifest requires <id>")
		if err := lib.ExportManifest(ctx, id, args[2]); err != nil {
			fail(l, "export manifest failed", err)
		}
		fmt.Println("Wrote", args[2])
	case "import-manifest":
		if len(args) < 2 {
			fmt.Println("library import-manifest requires <in.json>")
			os.Exit(2)
		}
		id, err := lib.ImportManifest(ctx, args[1])
		if err != nil {
			fail(l, "import manifest failed", err)
		}
		fmt.Println("Imported as sketch", id)
	default:
		usage()
		os.Exit(2)
	}
}

func mustID(l *slog.Logger, args []string, msg string) int64 {
	if len(args) < 2 {
		fmt.Println(msg)
		os.Exit(2)
	}
	var id int64
	if _, err := fmt.Sscanf(args[1], "%d", &id); err != nil {
		fail(l, "bad sketch id", err)
	}
	return id
}

func runGallery(l *slog.Logger, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	cfg, _, err := config.Load()
	if err != nil {
		fail(l, "config load failed", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Gallery.TimeoutMs)*time.Millisecond)
	defer cancel()

	if args[0] == "search" {
		// direct Postgres search against a self-hosted gallery
		if len(args) < 2 {
			fmt.Println("gallery search requires <text>")
			os.Exit(2)
		}
		if cfg.Gallery.PostgresDSN == "" {
			fmt.Println("No gallery database configured. Set gallery.postgres_dsn or SVS_GALLERY_PG_DSN.")
			os.Exit(2)
		}
		db, derr := backend.OpenDB(ctx, cfg.Gallery.PostgresDSN)
		if derr != nil {
			fail(l, "gallery db open failed", derr)
		}
		defer func() { _ = db.Close() }()
		entries, serr := backend.SearchEntries(ctx, db, backend.SearchQuery{Text: args[1]})
		if serr != nil {
			fail(l, "gallery search failed", serr)
		}
		for _, e := range entries {
			fmt.Printf("%6d %-24s %s\n", e.ID, e.Name, e.Author)
		}
		return
	}
	if cfg.Gallery.BaseURL == "" {
		fmt.Println("No gallery configured. Set gallery.base_url in the config file or SVS_GALLERY_URL.")
		os.Exit(2)
	}
	client := backend.NewClient(cfg.Gallery.BaseURL, config.GalleryToken())

	switch args[0] {
	case "list":
		entries, err := client.ListEntries(ctx)
		if err != nil {
			fail(l, "gallery list failed", err)
		}
		for _, e := range entries {
			fmt.Printf("%6d %-24s %s\n", e.ID, e.Name, e.Author)
		}
	case "get":
		if len(args) < 2 {
			fmt.Println("gallery get requires <id>")
			os.Exit(2)
		}
		var id int64
		if _, err := fmt.Sscanf(args[1], "%d", &id); err != nil {
			fail(l, "bad gallery id", err)
		}
		markup, err := client.EntryMarkup(ctx, id)
		if err != nil {
			fail(l, "gallery get failed", err)
		}
		fmt.Print(markup)
	case "publish":
		if len(args) < 3 {
			fmt.Println("gallery publish requires <file.svg> and <name>")
			os.Exit(2)
		}
		doc := mustOpen(l, args[1])
		id, err := client.Publish(ctx, backend.PublishRequest{Name: args[2], Markup: doc.Serialize()})
		if err != nil {
			fail(l, "publish failed", err)
		}
		fmt.Println("Published as entry", id)
	default:
		usage()
		os.Exit(2)
	}
}
