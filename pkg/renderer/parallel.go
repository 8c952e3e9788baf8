package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/integrator"
	"github.com/itarato/pathtracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ParallelConfig contains configuration for tiled parallel rendering
type ParallelConfig struct {
	TileSize   int   // Size of each square tile (64x64 recommended)
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; tile N draws from seed + N
}

// DefaultParallelConfig returns sensible default values
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		TileSize:   64,
		NumWorkers: 0, // Auto-detect CPU count
		Seed:       DefaultSeed,
	}
}

// ParallelRenderer splits the image into tiles and renders them on a worker pool.
// Output depends only on the scene, tile size and seed, never on the worker count.
type ParallelRenderer struct {
	scene      *scene.Scene
	config     ParallelConfig
	integrator integrator.Integrator
	logger     core.Logger
}

// NewParallelRenderer creates a new parallel renderer
func NewParallelRenderer(s *scene.Scene, config ParallelConfig, logger core.Logger) *ParallelRenderer {
	if config.TileSize <= 0 {
		config.TileSize = DefaultParallelConfig().TileSize
	}
	if logger == nil {
		logger = core.NopLogger{}
	}
	return &ParallelRenderer{
		scene:      s,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(s.GetSamplingConfig()),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (pr *ParallelRenderer) SetIntegrator(integratorInst integrator.Integrator) {
	pr.integrator = integratorInst
}

// Render renders every tile and returns the finished framebuffer.
// Cancelling ctx stops work between tiles; the partial framebuffer is returned with ctx's error.
func (pr *ParallelRenderer) Render(ctx context.Context) (*Framebuffer, RenderStats, error) {
	startTime := time.Now()
	samplingConfig := pr.scene.GetSamplingConfig()
	width, height := samplingConfig.Width, samplingConfig.Height

	fb := NewFramebuffer(width, height)
	tiles := NewTileGrid(width, height, pr.config.TileSize, pr.config.Seed)

	workerPool := NewWorkerPool(NewTileRenderer(pr.scene, pr.integrator), pr.config.NumWorkers, len(tiles))
	workerPool.Start(ctx)
	defer workerPool.Stop()

	pr.logger.Printf("Rendering %dx%d at %d samples per pixel: %d tiles on %d workers...\n",
		width, height, samplingConfig.SamplesPerPixel, len(tiles), workerPool.GetNumWorkers())

	for i, tile := range tiles {
		workerPool.SubmitTask(TileTask{
			Tile:   tile,
			TaskID: i,
			Target: fb,
		})
	}

	stats := newRenderStats(width*height, samplingConfig.SamplesPerPixel)
	progressStep := max(1, len(tiles)/10)
	var renderErr error

	// Every task yields exactly one result, rendered or cancelled
	for i := 0; i < len(tiles); i++ {
		result, ok := workerPool.GetResult()
		if !ok {
			return nil, RenderStats{}, fmt.Errorf("worker pool closed unexpectedly")
		}
		if result.Error != nil {
			if renderErr == nil {
				renderErr = result.Error
			}
			continue
		}

		stats.merge(result.Stats)
		stats.TilesRendered++
		if stats.TilesRendered%progressStep == 0 || stats.TilesRendered == len(tiles) {
			pr.logger.Printf("  %d/%d tiles (%.0f%%)\n",
				stats.TilesRendered, len(tiles), 100*float64(stats.TilesRendered)/float64(len(tiles)))
		}
	}

	stats.finalize()
	stats.Elapsed = time.Since(startTime)

	if renderErr != nil {
		pr.logger.Printf("Rendering cancelled after %d of %d tiles\n", stats.TilesRendered, len(tiles))
		return fb, stats, renderErr
	}

	pr.logger.Printf("Render completed in %v\n", stats.Elapsed)
	return fb, stats, nil
}
