//go:build !cgo

// Package librawdec decodes camera RAW files through the system LibRaw
// library. This stub keeps the module compiling without CGO; every
// open fails with ErrNoCGO.
package librawdec

import (
	"errors"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

// ErrNoCGO is returned when the binary was built without the LibRaw
// binding.
var ErrNoCGO = errors.New("librawdec: built without cgo, LibRaw unavailable")

// Decoder opens RAW files with LibRaw. Stub for builds without CGO.
type Decoder struct{}

var _ contracts.Decoder = Decoder{}

func (Decoder) Open(path string, _ contracts.ProcessingParams) (contracts.Session, error) {
	return nil, ErrNoCGO
}
