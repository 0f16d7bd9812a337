package transfer

import (
	"math"
	"testing"
)

func TestLinearizeEncodeRoundTrip(t *testing.T) {
	const tol = 1e-4
	for i := 0; i <= 1000; i++ {
		x := float64(i) / 1000.0
		back := Encode(Linearize(x))
		if math.Abs(back-x) > tol {
			t.Fatalf("round trip diverged at %.4f: got %.6f", x, back)
		}
	}
}

func TestLinearizeSaturates(t *testing.T) {
	t.Run("below zero", func(t *testing.T) {
		if got := Linearize(-0.5); got != 0 {
			t.Errorf("Linearize(-0.5) = %v, want 0", got)
		}
	})
	t.Run("above one", func(t *testing.T) {
		if got := Linearize(1.5); math.Abs(got-1.0) > 1e-9 {
			t.Errorf("Linearize(1.5) = %v, want 1", got)
		}
	})
	t.Run("linear segment", func(t *testing.T) {
		// Below the encode threshold the curve is a straight division.
		x := 0.02
		want := x / 12.92
		if got := Linearize(x); math.Abs(got-want) > 1e-12 {
			t.Errorf("Linearize(%v) = %v, want %v", x, got, want)
		}
	})
}

func TestEncodeKnownValues(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{0, 0},
		{1, 1},
		{0.0031308, 12.92 * 0.0031308},
		{0.5, 1.055*math.Pow(0.5, 1.0/2.4) - 0.055},
	}
	for _, c := range cases {
		if got := Encode(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("Encode(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestCompress(t *testing.T) {
	t.Run("neutral exposure maps x to x/(1+x)", func(t *testing.T) {
		for _, x := range []float64{0, 0.25, 0.5, 1, 4} {
			want := x / (1 + x)
			if got := Compress(x, 1.0); math.Abs(got-want) > 1e-12 {
				t.Errorf("Compress(%v, 1) = %v, want %v", x, got, want)
			}
		}
	})
	t.Run("stays below one", func(t *testing.T) {
		for _, m := range []float64{1, 2, 8, 100} {
			if got := Compress(1.0, m); got >= 1.0 {
				t.Errorf("Compress(1, %v) = %v, want < 1", m, got)
			}
		}
	})
	t.Run("higher exposure raises output", func(t *testing.T) {
		lo := Compress(0.3, 1.0)
		hi := Compress(0.3, 2.0)
		if hi <= lo {
			t.Errorf("exposure 2.0 did not increase output: %v <= %v", hi, lo)
		}
	})
	t.Run("monotonic", func(t *testing.T) {
		prev := -1.0
		for i := 0; i <= 100; i++ {
			x := float64(i) / 10.0
			got := Compress(x, 1.5)
			if got <= prev {
				t.Fatalf("not strictly increasing at %v: %v <= %v", x, got, prev)
			}
			prev = got
		}
	})
}
