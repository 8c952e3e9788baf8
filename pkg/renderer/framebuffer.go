package renderer

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/itarato/pathtracer/pkg/core"
)

// ErrUnsupportedBitDepth is returned for channel depths other than 8 and 16
var ErrUnsupportedBitDepth = errors.New("unsupported bit depth")

// BitDepth is the number of bits per output channel
type BitDepth int

const (
	Depth8  BitDepth = 8
	Depth16 BitDepth = 16
)

// Validate reports whether the depth can be encoded
func (b BitDepth) Validate() error {
	if b != Depth8 && b != Depth16 {
		return fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, int(b))
	}
	return nil
}

// MaxValue returns the largest channel value, 2^bits - 1
func (b BitDepth) MaxValue() uint16 {
	return uint16(1<<uint(b) - 1)
}

// QuantizeChannel gamma-corrects a linear channel with sqrt and maps it to
// floor(sqrt(value) * (2^bits - 1 + 0.99)), clamped to the channel range.
// NaN and negative values map to 0.
func QuantizeChannel(value float64, bits BitDepth) uint16 {
	maxValue := bits.MaxValue()
	scaled := math.Sqrt(value) * (float64(maxValue) + 0.99)
	if !(scaled > 0) {
		return 0
	}
	if scaled >= float64(maxValue) {
		return maxValue
	}
	return uint16(scaled)
}

// Framebuffer holds averaged linear colors in row-major order, row 0 at the top of the image
type Framebuffer struct {
	Width  int
	Height int
	Pixels []core.Vec3
}

// NewFramebuffer creates a black framebuffer
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]core.Vec3, width*height),
	}
}

// Set stores the color of pixel (x, y)
func (fb *Framebuffer) Set(x, y int, c core.Vec3) {
	fb.Pixels[y*fb.Width+x] = c
}

// At returns the color of pixel (x, y)
func (fb *Framebuffer) At(x, y int) core.Vec3 {
	return fb.Pixels[y*fb.Width+x]
}

// Bounds returns the image rectangle covered by the framebuffer
func (fb *Framebuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, fb.Width, fb.Height)
}

// RGBA converts the framebuffer to an 8-bit image
func (fb *Framebuffer) RGBA() *image.RGBA {
	img := image.NewRGBA(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.At(x, y)
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(QuantizeChannel(c.X, Depth8)),
				G: uint8(QuantizeChannel(c.Y, Depth8)),
				B: uint8(QuantizeChannel(c.Z, Depth8)),
				A: 255,
			})
		}
	}
	return img
}

// RGBA64 converts the framebuffer to a 16-bit image
func (fb *Framebuffer) RGBA64() *image.RGBA64 {
	img := image.NewRGBA64(fb.Bounds())
	for y := 0; y < fb.Height; y++ {
		for x := 0; x < fb.Width; x++ {
			c := fb.At(x, y)
			img.SetRGBA64(x, y, color.RGBA64{
				R: QuantizeChannel(c.X, Depth16),
				G: QuantizeChannel(c.Y, Depth16),
				B: QuantizeChannel(c.Z, Depth16),
				A: 0xffff,
			})
		}
	}
	return img
}

// Image converts the framebuffer at the requested channel depth
func (fb *Framebuffer) Image(bits BitDepth) (image.Image, error) {
	switch bits {
	case Depth8:
		return fb.RGBA(), nil
	case Depth16:
		return fb.RGBA64(), nil
	default:
		return nil, bits.Validate()
	}
}

// PackRGB returns the quantized pixels as a raw RGB stream, top row first.
// 16-bit channels are written big-endian.
func (fb *Framebuffer) PackRGB(bits BitDepth) ([]byte, error) {
	if err := bits.Validate(); err != nil {
		return nil, err
	}

	bytesPerChannel := int(bits) / 8
	buf := make([]byte, 0, len(fb.Pixels)*3*bytesPerChannel)
	for _, c := range fb.Pixels {
		for _, channel := range [3]float64{c.X, c.Y, c.Z} {
			v := QuantizeChannel(channel, bits)
			if bits == Depth8 {
				buf = append(buf, uint8(v))
			} else {
				buf = binary.BigEndian.AppendUint16(buf, v)
			}
		}
	}
	return buf, nil
}

// WritePNG encodes the framebuffer as a PNG at the requested channel depth
func (fb *Framebuffer) WritePNG(w io.Writer, bits BitDepth) error {
	img, err := fb.Image(bits)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
