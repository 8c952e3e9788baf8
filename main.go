package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/renderer"
	"github.com/itarato/pathtracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneName string
	scenesDir string
	width     int
	height    int
	samples   int
	depth     int
	bits      int
	workers   int
	seed      int64
	out       string
	list      bool
	help      bool
}

func parseFlags(args []string) (options, *flag.FlagSet, error) {
	var opts options
	fs := flag.NewFlagSet("pathtracer", flag.ContinueOnError)
	fs.StringVar(&opts.sceneName, "scene", "default", "Built-in scene name, scene file name in -scenes, or path to a .json scene")
	fs.StringVar(&opts.scenesDir, "scenes", "scenes", "Directory searched for .json scene files")
	fs.IntVar(&opts.width, "width", 0, "Image width (0 = scene default)")
	fs.IntVar(&opts.height, "height", 0, "Image height (0 = scene default)")
	fs.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	fs.IntVar(&opts.depth, "depth", 0, "Maximum bounce depth (0 = scene default)")
	fs.IntVar(&opts.bits, "bits", 8, "Bits per PNG channel: 8 or 16")
	fs.IntVar(&opts.workers, "workers", 0, "Parallel workers (0 = CPU count, 1 = single-threaded reference renderer)")
	fs.Int64Var(&opts.seed, "seed", renderer.DefaultSeed, "Random seed")
	fs.StringVar(&opts.out, "out", "", "Output PNG path (default output/<scene>/render_<timestamp>_<run>.png)")
	fs.BoolVar(&opts.list, "list", false, "List available scenes and exit")
	fs.BoolVar(&opts.help, "help", false, "Show help information")

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	if opts.workers < 0 {
		return opts, fs, fmt.Errorf("workers must not be negative, got %d", opts.workers)
	}
	if err := renderer.BitDepth(opts.bits).Validate(); err != nil {
		return opts, fs, err
	}
	return opts, fs, nil
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, fs, err := parseFlags(args)
	if err != nil {
		return err
	}

	if opts.help {
		printHelp(fs, opts.scenesDir)
		return nil
	}
	if opts.list {
		return printScenes(opts.scenesDir)
	}

	runID := uuid.NewString()
	fmt.Printf("Starting Path Tracer (run %s)...\n", runID)

	selectedScene, err := createScene(opts.sceneName, opts.scenesDir)
	if err != nil {
		return err
	}
	if err := applyOverrides(selectedScene, opts); err != nil {
		return err
	}

	config := selectedScene.GetSamplingConfig()
	fmt.Printf("Scene %q: %dx%d, %d samples per pixel, max depth %d, %d spheres\n",
		opts.sceneName, config.Width, config.Height, config.SamplesPerPixel, config.MaxDepth,
		selectedScene.GetPrimitiveCount())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fb, stats, err := render(ctx, selectedScene, opts, renderer.NewDefaultLogger())
	if err != nil {
		return err
	}

	writeSummary(os.Stdout, fb, stats)

	filename, err := createOutputPath(opts.out, opts.sceneName, time.Now(), runID)
	if err != nil {
		return err
	}
	if err := savePNG(filename, fb, renderer.BitDepth(opts.bits)); err != nil {
		return err
	}

	fmt.Printf("Render saved as %s\n", filename)
	return nil
}

// writeSummary prints timing, sampling and the mean luminance of the 8-bit image
func writeSummary(w io.Writer, fb *renderer.Framebuffer, stats renderer.RenderStats) {
	fmt.Fprintf(w, "Render completed in %v\n", stats.Elapsed)
	fmt.Fprintf(w, "Samples per pixel: %.1f (%d total)\n", stats.AverageSamples, stats.TotalSamples)
	fmt.Fprintf(w, "Average luminance: %.3f\n", renderer.CalculateAverageLuminance(fb.RGBA()))
}

func printHelp(fs *flag.FlagSet, scenesDir string) {
	fmt.Println("Path Tracer")
	fmt.Println("Usage: pathtracer [options]")
	fmt.Println()
	fmt.Println("Options:")
	fs.SetOutput(os.Stdout)
	fs.PrintDefaults()
	fmt.Println()
	if err := printScenes(scenesDir); err != nil {
		fmt.Printf("Error listing scenes: %v\n", err)
	}
	fmt.Println()
	fmt.Println("Output will be saved to output/<scene>/render_<timestamp>_<run>.png unless -out is given")
}

func printScenes(scenesDir string) error {
	scenes, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	fmt.Println("Available scenes:")
	for _, info := range scenes {
		description := info.Description
		if description == "" {
			description = info.DisplayName
		}
		fmt.Printf("  %-16s %-8s %s\n", info.ID, info.Type, description)
	}
	return nil
}

// createScene resolves a built-in scene name or a JSON scene file
func createScene(name, scenesDir string) (*scene.Scene, error) {
	s, err := scene.Load(name, scenesDir)
	if err != nil {
		return nil, fmt.Errorf("load scene: %w", err)
	}
	return s, nil
}

// applyOverrides replaces any scene sampling setting given on the command line
func applyOverrides(s *scene.Scene, opts options) error {
	config := s.GetSamplingConfig()
	if opts.width > 0 {
		config.Width = opts.width
	}
	if opts.height > 0 {
		config.Height = opts.height
	}
	if opts.samples > 0 {
		config.SamplesPerPixel = opts.samples
	}
	if opts.depth > 0 {
		config.MaxDepth = opts.depth
	}
	if config == s.GetSamplingConfig() {
		return nil
	}
	if err := s.SetSamplingConfig(config); err != nil {
		return fmt.Errorf("apply overrides: %w", err)
	}
	return nil
}

// render runs the single-threaded reference renderer for one worker, the tiled renderer otherwise
func render(ctx context.Context, s *scene.Scene, opts options, logger core.Logger) (*renderer.Framebuffer, renderer.RenderStats, error) {
	if opts.workers == 1 {
		logger.Printf("Rendering with the single-threaded renderer...\n")
		raytracer := renderer.NewRaytracer(s)
		raytracer.SetSampler(core.NewSeededSampler(opts.seed))
		fb, stats := raytracer.RenderPass()
		return fb, stats, nil
	}

	config := renderer.DefaultParallelConfig()
	config.NumWorkers = opts.workers
	config.Seed = opts.seed
	return renderer.NewParallelRenderer(s, config, logger).Render(ctx)
}

// sceneDirName turns a scene name or file path into an output directory name
func sceneDirName(sceneName string) string {
	base := filepath.Base(sceneName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// createOutputPath returns the file to write, creating its directory.
// Default names carry the first block of the run ID so renders finishing in the same second do not collide.
func createOutputPath(out, sceneName string, now time.Time, runID string) (string, error) {
	filename := out
	if filename == "" {
		timestamp := now.Format("20060102_150405")
		shortID, _, _ := strings.Cut(runID, "-")
		filename = filepath.Join("output", sceneDirName(sceneName), fmt.Sprintf("render_%s_%s.png", timestamp, shortID))
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	return filename, nil
}

func savePNG(filename string, fb *renderer.Framebuffer, bits renderer.BitDepth) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer file.Close()

	if err := fb.WritePNG(file, bits); err != nil {
		return err
	}
	return file.Close()
}
