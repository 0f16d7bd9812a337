package librawdec

import (
	"testing"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

func TestFullSensor(t *testing.T) {
	in := contracts.Geometry{
		RawWidth:   8374,
		RawHeight:  6304,
		Width:      8272,
		Height:     6200,
		TopMargin:  52,
		LeftMargin: 51,
	}

	got := FullSensor(in)

	if got.Width != in.RawWidth || got.Height != in.RawHeight {
		t.Errorf("working size = %dx%d, want raw size %dx%d",
			got.Width, got.Height, in.RawWidth, in.RawHeight)
	}
	if got.TopMargin != 0 || got.LeftMargin != 0 {
		t.Errorf("margins = (%d,%d), want (0,0)", got.TopMargin, got.LeftMargin)
	}
	if got.RawWidth != in.RawWidth || got.RawHeight != in.RawHeight {
		t.Errorf("raw size changed: %dx%d", got.RawWidth, got.RawHeight)
	}

	t.Run("idempotent", func(t *testing.T) {
		if again := FullSensor(got); again != got {
			t.Errorf("second application changed geometry: %+v", again)
		}
	})

	t.Run("input untouched", func(t *testing.T) {
		if in.TopMargin != 52 || in.Width != 8272 {
			t.Errorf("input geometry mutated: %+v", in)
		}
	})
}
