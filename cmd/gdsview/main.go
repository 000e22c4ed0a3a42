// Command gdsview loads a GDSII or DXF file, builds an Engine around it,
// fits the viewport to the document, and prints load statistics and the
// first frame's render metrics. It stands in for the teacher's windowed
// demos (cmd/sample, cmd/demo2) now that there is no platform window
// binding in scope; a real UI host wires the same engine.Load/New/Render
// sequence behind its own event loop.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/kelseyhightower/envconfig"

	"github.com/foldscope/gdsview/engine"
	"github.com/foldscope/gdsview/viewport"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file.gds|file.dxf>\n", os.Args[0])
		os.Exit(2)
	}
	path := os.Args[1]

	var cfg engine.Config
	if err := envconfig.Process("GDSVIEW", &cfg); err != nil {
		log.Fatalf("load config: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}

	ctx := context.Background()
	on := func(percent int, message string) {
		fmt.Printf("[%3d%%] %s\n", percent, message)
	}

	doc, stats, warnings, err := engine.Load(ctx, data, path, cfg, on)
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
	}
	fmt.Printf("loaded %s: %d cells, %d top-level, %d polygons, %d layers\n",
		path, stats.CellCount, len(doc.TopCells), stats.PolygonCount, stats.LayerCount)
	fmt.Printf("bounds: (%.0f, %.0f) - (%.0f, %.0f) DBU\n",
		stats.Bounds.MinX, stats.Bounds.MinY, stats.Bounds.MaxX, stats.Bounds.MaxY)

	eng := engine.New(doc, cfg, on)
	vp := viewport.New(1280, 800)
	eng.FitToView(vp)
	eng.Render(ctx, vp, eng.Visibility(), nil)

	m := eng.Metrics()
	fmt.Printf("frame 1: depth=%d visible=%d/%d polygons, budget utilization=%.1f%%, fps=%.1f\n",
		m.Depth, m.VisiblePolygons, m.TotalPolygons, m.BudgetUtilization*100, m.FPS)
}
