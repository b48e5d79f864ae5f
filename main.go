package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TFMV/canvasgraph/graph"
	"github.com/TFMV/canvasgraph/physics"
	"github.com/TFMV/canvasgraph/render"
	"github.com/TFMV/canvasgraph/server"
)

// Configuration holds all command-line settings.
type Configuration struct {
	Mode       string
	OutputFile string
	Port       int
	Width      float64
	Height     float64
	Seed       int64
	DebugMode  bool
}

func main() {
	// Create a context that is canceled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	config := parseConfig()

	level := slog.LevelInfo
	if config.DebugMode {
		level = slog.LevelDebug
	}
	log := server.NewLogger(os.Stderr, level)
	slog.SetDefault(log)

	if config.Mode == "serve" {
		err := server.Start(ctx, server.Config{
			Addr:   fmt.Sprintf(":%d", config.Port),
			Width:  config.Width,
			Height: config.Height,
			Seed:   config.Seed,
			Logger: log,
		})
		if err != nil {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
		return
	}

	g, err := demoGraph(config.Width, config.Height)
	if err != nil {
		log.Error("failed to build demo graph", "err", err)
		os.Exit(1)
	}
	settle(g)

	if err := renderOutput(g, config); err != nil {
		log.Error("rendering failed", "err", err)
		os.Exit(1)
	}
	log.Info("processing complete", "output", config.OutputFile)
}

// parseConfig parses command-line flags.
func parseConfig() *Configuration {
	config := &Configuration{}

	flag.StringVar(&config.Mode, "mode", "svg", "Mode: svg, dot, json, echarts, serve")
	flag.StringVar(&config.OutputFile, "output", "", "Path to output file (defaults to 'output.[format]')")
	flag.IntVar(&config.Port, "port", 8080, "Port for serve mode")
	flag.Float64Var(&config.Width, "width", 800.0, "Canvas width")
	flag.Float64Var(&config.Height, "height", 600.0, "Canvas height")
	flag.Int64Var(&config.Seed, "seed", 0, "Seed for random vertex placement")
	flag.BoolVar(&config.DebugMode, "debug", false, "Enable debug logging")

	flag.Parse()

	if config.OutputFile == "" {
		switch config.Mode {
		case "svg":
			config.OutputFile = "output.svg"
		case "dot":
			config.OutputFile = "output.dot"
		case "json":
			config.OutputFile = "output.json"
		case "echarts", "html":
			config.OutputFile = "output.html"
		}
	}

	return config
}

// demoGraph builds a small sample graph scattered across the canvas.
func demoGraph(width, height float64) (*graph.Graph, error) {
	g := graph.New(width, height)

	labels := []string{"Dreams", "Illusions", "Memories", "Reality", "Surrealism"}
	scatter := physics.NewScatter(42)
	vertices := make([]*graph.Vertex, 0, len(labels))
	for _, label := range labels {
		x, y := scatter.Next(width, height)
		v, err := g.AddVertex(x, y, label)
		if err != nil {
			return nil, err
		}
		vertices = append(vertices, v)
	}

	pairs := [][2]int{{0, 1}, {0, 2}, {1, 2}, {1, 3}, {2, 3}, {3, 4}, {0, 4}}
	for _, p := range pairs {
		if _, err := g.AddEdge(vertices[p[0]].ID, vertices[p[1]].ID, ""); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// settle runs the force-directed relaxation and writes the resulting
// positions back into the graph.
func settle(g *graph.Graph) {
	bodies := make(map[int64]physics.Body)
	ids := make(map[int64]graph.ID)
	for _, v := range g.Vertices() {
		bodies[v.Seq] = physics.Body{X: v.X, Y: v.Y, Radius: v.Radius}
		ids[v.Seq] = v.ID
	}
	springs := make([]physics.Spring, 0, g.Size())
	for _, e := range g.Edges() {
		from, _ := g.Vertex(e.From)
		to, _ := g.Vertex(e.To)
		springs = append(springs, physics.Spring{A: from.Seq, B: to.Seq})
	}

	w, h := g.Bounds()
	positions := physics.Relax(bodies, springs, physics.Options{
		Bounds: &physics.Rect{MaxX: w, MaxY: h},
	})
	for seq, p := range positions {
		_ = g.MoveVertex(ids[seq], p.X, p.Y)
	}
}

// renderOutput renders the graph with the selected backend and writes the
// result to the output file.
func renderOutput(g *graph.Graph, config *Configuration) error {
	renderer, err := render.For(config.Mode)
	if err != nil {
		return err
	}

	options := render.NewDefaultOptions()
	options.Width = config.Width
	options.Height = config.Height

	output, err := renderer.Render(g, options)
	if err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	if err := os.WriteFile(config.OutputFile, output, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
