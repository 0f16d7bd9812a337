package exr_writer

import (
	"bytes"
	"math"
	"testing"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

func TestHalfConversionExactValues(t *testing.T) {
	// values exactly representable in binary16 must survive unchanged
	for _, v := range []float32{0, 0.25, 0.5, 1, 1.5, 2, 4, 255, -1, -0.5} {
		if got := halfToFloat32(float32ToHalf(v)); got != v {
			t.Errorf("half round trip of %v = %v", v, got)
		}
	}
}

func TestHalfConversionSpecials(t *testing.T) {
	if got := halfToFloat32(float32ToHalf(float32(math.Inf(1)))); !math.IsInf(float64(got), 1) {
		t.Errorf("+inf became %v", got)
	}
	if got := halfToFloat32(float32ToHalf(1e30)); !math.IsInf(float64(got), 1) {
		t.Errorf("overflow should saturate to +inf, got %v", got)
	}
	if got := halfToFloat32(float32ToHalf(float32(math.NaN()))); !math.IsNaN(float64(got)) {
		t.Errorf("NaN became %v", got)
	}
}

func makeTestImage(w, h int) *contracts.FloatImage {
	img := contracts.NewFloatImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			img.Pix[i] = float32(x) / float32(w)
			img.Pix[i+1] = float32(y) / float32(h)
			// exceed 1.0 to exercise the HDR range
			img.Pix[i+2] = 2.5 * float32(x+y) / float32(w+h)
			img.Pix[i+3] = 1.0
		}
	}
	return img
}

func assertClose(t *testing.T, x, y int, g, w float32) {
	t.Helper()
	diff := math.Abs(float64(g - w))
	// binary16 carries ~11 significant bits
	tol := 2e-3 * math.Max(1, math.Abs(float64(w)))
	if diff > tol {
		t.Fatalf("pixel (%d,%d) channel mismatch: got %v want %v", x, y, g, w)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name   string
		writer Writer
		w, h   int
	}{
		{"zip", Writer{}, 33, 37},
		{"zip multiple blocks", Writer{}, 8, 40},
		{"uncompressed", Writer{Uncompressed: true}, 16, 5},
		{"single pixel", Writer{}, 1, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			img := makeTestImage(tc.w, tc.h)

			var buf bytes.Buffer
			if err := tc.writer.Encode(&buf, img); err != nil {
				t.Fatalf("encode failed: %v", err)
			}

			back, err := Decode(buf.Bytes())
			if err != nil {
				t.Fatalf("decode failed: %v", err)
			}
			if back.Width != tc.w || back.Height != tc.h {
				t.Fatalf("size = %dx%d, want %dx%d", back.Width, back.Height, tc.w, tc.h)
			}

			for y := 0; y < tc.h; y++ {
				for x := 0; x < tc.w; x++ {
					gr, gg, gb, ga := back.RGBA(x, y)
					wr, wg, wb, wa := img.RGBA(x, y)
					assertClose(t, x, y, gr, wr)
					assertClose(t, x, y, gg, wg)
					assertClose(t, x, y, gb, wb)
					if ga != wa {
						t.Fatalf("alpha at (%d,%d) = %v, want %v", x, y, ga, wa)
					}
				}
			}
		})
	}
}

func TestEncodeRejectsBadInput(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{}).Encode(&buf, nil); err == nil {
		t.Error("nil image accepted")
	}
	if err := (Writer{}).Encode(&buf, &contracts.FloatImage{Width: 4, Height: 4}); err == nil {
		t.Error("short pixel buffer accepted")
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("not an exr file at all")); err == nil {
		t.Error("garbage accepted")
	}
	if _, err := Decode(nil); err == nil {
		t.Error("empty input accepted")
	}
}

func TestExtension(t *testing.T) {
	if got := (Writer{}).Extension(); got != ".exr" {
		t.Errorf("Extension() = %q", got)
	}
}
