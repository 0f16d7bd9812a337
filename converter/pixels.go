package converter

import (
	"github.com/petermercell/3RF-2-EXR/contracts"
	"github.com/petermercell/3RF-2-EXR/transfer"
)

// buildFloatImage normalizes the decoded integer samples to [0,1],
// optionally linearizes the camera's sRGB encoding and optionally
// applies exposure-scaled tone compression. Grayscale input is
// replicated across R, G and B; alpha is always 1.
func buildFloatImage(d *contracts.DecodedImage, opts contracts.Options) *contracts.FloatImage {
	out := contracts.NewFloatImage(d.Width, d.Height)
	maxVal := d.MaxValue()
	linearize := !opts.Linear
	toneMap := opts.Exposure != 1.0

	for y := 0; y < d.Height; y++ {
		for x := 0; x < d.Width; x++ {
			var r, g, b float64
			idx := (y*d.Width + x) * d.Channels
			if d.Channels >= 3 {
				r = float64(d.Samples[idx]) / maxVal
				g = float64(d.Samples[idx+1]) / maxVal
				b = float64(d.Samples[idx+2]) / maxVal
			} else {
				gray := float64(d.Samples[idx]) / maxVal
				r, g, b = gray, gray, gray
			}

			if linearize {
				r = transfer.Linearize(r)
				g = transfer.Linearize(g)
				b = transfer.Linearize(b)
			}
			if toneMap {
				r = transfer.Compress(r, opts.Exposure)
				g = transfer.Compress(g, opts.Exposure)
				b = transfer.Compress(b, opts.Exposure)
			}

			o := (y*out.Width + x) * 4
			out.Pix[o] = float32(r)
			out.Pix[o+1] = float32(g)
			out.Pix[o+2] = float32(b)
			out.Pix[o+3] = 1.0
		}
	}
	return out
}
