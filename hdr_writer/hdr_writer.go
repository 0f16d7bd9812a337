// Package hdr_writer emits Radiance RGBE (.hdr) files, the secondary
// output container next to OpenEXR.
package hdr_writer

import (
	"fmt"
	"image"
	"io"

	"github.com/mdouchement/hdr"
	"github.com/mdouchement/hdr/codec/rgbe"
	"github.com/mdouchement/hdr/hdrcolor"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

// Writer encodes FloatImages as Radiance RGBE. The format has no alpha
// channel; alpha is dropped, which loses nothing since conversions
// always produce opaque pixels.
type Writer struct{}

var _ contracts.Encoder = Writer{}

func (Writer) Extension() string { return ".hdr" }

func (Writer) Encode(w io.Writer, img *contracts.FloatImage) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("hdr: empty image")
	}
	if len(img.Pix) < img.Width*img.Height*4 {
		return fmt.Errorf("hdr: pixel buffer too short for %dx%d", img.Width, img.Height)
	}

	m := hdr.NewRGB(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			r, g, b, _ := img.RGBA(x, y)
			m.SetRGB(x, y, hdrcolor.RGB{R: float64(r), G: float64(g), B: float64(b)})
		}
	}
	return rgbe.Encode(w, m)
}
