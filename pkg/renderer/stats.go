package renderer

import (
	"image"
	"time"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per pixel
	MaxSamples     int           // Samples requested per pixel
	TilesRendered  int           // Tiles completed (parallel renderer only)
	Elapsed        time.Duration // Wall-clock render time
}

// newRenderStats initializes statistics for pixelCount pixels
func newRenderStats(pixelCount, maxSamples int) RenderStats {
	return RenderStats{
		TotalPixels: pixelCount,
		MaxSamples:  maxSamples,
	}
}

// addPixel records the samples spent on one pixel
func (s *RenderStats) addPixel(samplesUsed int) {
	s.TotalSamples += samplesUsed
}

// merge folds the statistics of a disjoint region into s
func (s *RenderStats) merge(other RenderStats) {
	s.TotalSamples += other.TotalSamples
}

// finalize calculates derived statistics after all pixels are rendered
func (s *RenderStats) finalize() {
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// CalculateAverageLuminance returns the mean Rec. 709 luminance of an image, in [0, 1]
func CalculateAverageLuminance(img image.Image) float64 {
	bounds := img.Bounds()
	pixelCount := bounds.Dx() * bounds.Dy()
	if pixelCount == 0 {
		return 0
	}

	total := 0.0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			total += (0.2126*float64(r) + 0.7152*float64(g) + 0.0722*float64(b)) / 0xffff
		}
	}
	return total / float64(pixelCount)
}
