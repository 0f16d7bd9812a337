package contracts

import "io"

// Converter turns one RAW input file into one HDR output file.
type Converter interface {
	Convert(inputPath, outputPath string, opts Options) ConversionResult
}

// ConversionResult is the per-file outcome consumed by the batch loop.
// File-scoped failures travel as values, never as panics.
type ConversionResult struct {
	OK      bool
	Input   string
	Output  string
	Message string
}

// Decoder opens RAW files. The processing parameters are fixed at open
// time so a session can never inherit state from a previous file.
type Decoder interface {
	Open(path string, params ProcessingParams) (Session, error)
}

// Session is one opened RAW input. Geometry may only be changed between
// Open and Unpack; the decoder snapshots it at unpack time.
type Session interface {
	Geometry() Geometry
	SetGeometry(Geometry)
	Unpack() error
	Process() error
	Image() (*DecodedImage, error)
	Close()
}

// Encoder serializes a float image into an HDR container.
type Encoder interface {
	Extension() string
	Encode(w io.Writer, img *FloatImage) error
}

// DecodedImage is the decoder's processed output. Samples are addressed
// as (row*Width+col)*Channels+channel. Bits is 8 or 16; 8-bit samples
// occupy the low byte of the uint16.
type DecodedImage struct {
	Width    int
	Height   int
	Channels int
	Bits     int
	Samples  []uint16

	release func()
}

// NewDecodedImage wraps a sample buffer together with its release hook.
// release may be nil for buffers owned by the Go runtime.
func NewDecodedImage(w, h, channels, bits int, samples []uint16, release func()) *DecodedImage {
	return &DecodedImage{
		Width:    w,
		Height:   h,
		Channels: channels,
		Bits:     bits,
		Samples:  samples,
		release:  release,
	}
}

// MaxValue returns the largest sample value for the image's bit depth.
func (d *DecodedImage) MaxValue() float64 {
	if d.Bits == 8 {
		return 255.0
	}
	return 65535.0
}

// Close releases the buffer. Safe to call more than once.
func (d *DecodedImage) Close() {
	if d.release != nil {
		d.release()
		d.release = nil
	}
	d.Samples = nil
}

// FloatImage holds RGBA float32 channels, 4 per pixel, alpha always 1.
type FloatImage struct {
	Width  int
	Height int
	Pix    []float32
}

func NewFloatImage(w, h int) *FloatImage {
	return &FloatImage{Width: w, Height: h, Pix: make([]float32, w*h*4)}
}

// RGBA returns the channels of the pixel at (x, y).
func (f *FloatImage) RGBA(x, y int) (r, g, b, a float32) {
	i := (y*f.Width + x) * 4
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3]
}
