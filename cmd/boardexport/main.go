// Command boardexport loads a stored board and writes each document as a
// flattened PNG: the raster canvas with its text and image annotations
// stamped on top.
package main

import (
	"context"
	"flag"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"drawboard/internal/document"
	"drawboard/internal/persist"
	"drawboard/internal/raster"

	"github.com/joho/godotenv"
)

func main() {
	outDir := flag.String("o", ".", "Output directory for exported PNGs")
	only := flag.String("d", "", "Export only the document with this id or name")
	flag.Parse()

	// Storage backend selection follows the same environment variables as
	// the application (STORAGE_TYPE and friends).
	_ = godotenv.Load()

	gw := persist.GetGateway()
	bf, err := gw.Load(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load board: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	exported := 0
	for _, doc := range bf.Documents {
		if *only != "" && doc.ID != *only && doc.Name != *only {
			continue
		}
		path := filepath.Join(*outDir, exportName(doc))
		if err := export(doc, path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to export %q: %v\n", doc.Name, err)
			os.Exit(1)
		}
		fmt.Printf("Exported %q -> %s\n", doc.Name, path)
		exported++
	}

	if exported == 0 {
		fmt.Fprintln(os.Stderr, "No matching documents found")
		os.Exit(1)
	}
}

// export flattens one document into a PNG file.
func export(doc *document.Document, path string) error {
	engine := raster.NewEngine()
	// Run the decode inline so the snapshot is installed before compositing.
	engine.SetExecutors(func(fn func()) { fn() }, func(fn func()) { fn() })

	var loadErr error
	engine.LoadSnapshot(doc.Snapshot, func(err error) { loadErr = err })
	if loadErr != nil {
		return fmt.Errorf("decode snapshot: %w", loadErr)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return png.Encode(f, engine.Composite(doc.Objects))
}

// exportName derives a filesystem-safe file name from the document name,
// falling back to the id for unnamed documents.
func exportName(doc *document.Document) string {
	name := strings.TrimSpace(doc.Name)
	if name == "" {
		name = doc.ID
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
	return name + ".png"
}
