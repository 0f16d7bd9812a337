// Package preview renders a small 8-bit PPM proof sheet from a
// converted float image, so a batch can be eyeballed without an HDR
// viewer.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/lmittmann/ppm"
	"github.com/nfnt/resize"

	"github.com/petermercell/3RF-2-EXR/contracts"
	"github.com/petermercell/3RF-2-EXR/transfer"
)

// DefaultMaxEdge bounds the longest side of a preview.
const DefaultMaxEdge = 1024

// Write tone-maps img down to display range, scales its longest edge
// to at most maxEdge pixels and writes the result as binary PPM.
func Write(w io.Writer, img *contracts.FloatImage, maxEdge int) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("preview: empty image")
	}
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}

	rgba := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, _ := img.RGBA(x, y)
			rgba.SetRGBA(x, y, color.RGBA{
				R: displayByte(r),
				G: displayByte(g),
				B: displayByte(b),
				A: 255,
			})
		}
	}

	var scaled image.Image = rgba
	if img.Width > maxEdge || img.Height > maxEdge {
		if img.Width >= img.Height {
			scaled = resize.Resize(uint(maxEdge), 0, rgba, resize.Lanczos3)
		} else {
			scaled = resize.Resize(0, uint(maxEdge), rgba, resize.Lanczos3)
		}
	}
	return ppm.Encode(w, scaled)
}

// displayByte maps a linear sample to an 8-bit gamma-encoded value.
func displayByte(v float32) uint8 {
	encoded := transfer.Encode(transfer.Clamp(float64(v), 0, 1))
	return uint8(encoded*255 + 0.5)
}
