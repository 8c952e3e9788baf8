package renderer

import (
	"image"

	"github.com/itarato/pathtracer/pkg/core"
	"github.com/itarato/pathtracer/pkg/integrator"
	"github.com/itarato/pathtracer/pkg/scene"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID      int             // Unique tile identifier
	Bounds  image.Rectangle // Pixel bounds in image coordinates, row 0 at the top
	Sampler core.Sampler    // Tile-specific random stream for deterministic results
}

// NewTile creates a tile whose random stream is seeded with seed + id
func NewTile(id int, bounds image.Rectangle, seed int64) *Tile {
	return &Tile{
		ID:      id,
		Bounds:  bounds,
		Sampler: core.NewSeededSampler(seed + int64(id)),
	}
}

// NewTileGrid creates a grid of tiles covering the entire image, in row-major order
func NewTileGrid(width, height, tileSize int, seed int64) []*Tile {
	var tiles []*Tile
	tileID := 0

	// Calculate number of tiles in each dimension
	tilesX := (width + tileSize - 1) / tileSize // Ceiling division
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width) // Don't exceed image bounds
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, NewTile(tileID, image.Rect(x0, y0, x1, y1), seed))
			tileID++
		}
	}

	return tiles
}

// TileRenderer handles the actual rendering of individual tiles using an integrator
type TileRenderer struct {
	scene      *scene.Scene
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given scene and integrator
func NewTileRenderer(s *scene.Scene, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		scene:      s,
		integrator: integratorInst,
	}
}

// RenderTileBounds renders pixels within bounds into fb.
// Rows are visited top to bottom, matching the reference renderer's order.
// Concurrent calls are safe as long as their bounds do not overlap.
func (tr *TileRenderer) RenderTileBounds(bounds image.Rectangle, fb *Framebuffer, sampler core.Sampler) RenderStats {
	config := tr.scene.GetSamplingConfig()
	camera := tr.scene.Camera
	stats := newRenderStats(bounds.Dx()*bounds.Dy(), config.SamplesPerPixel)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		j := fb.Height - 1 - y
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			pixelColor := samplePixel(camera, tr.integrator, tr.scene, sampler, x, j, fb.Width, fb.Height, config.SamplesPerPixel)
			fb.Set(x, y, pixelColor)
			stats.addPixel(config.SamplesPerPixel)
		}
	}

	stats.finalize()
	return stats
}
