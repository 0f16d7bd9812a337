//go:build cgo
// +build cgo

// Package librawdec decodes camera RAW files through the system LibRaw
// library. Each opened file gets its own libraw handle; nothing is
// shared or reused between sessions.
package librawdec

/*
#cgo LDFLAGS: -lraw
#include <libraw/libraw.h>
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

// Decoder opens RAW files with LibRaw.
type Decoder struct{}

var _ contracts.Decoder = Decoder{}

func goResult(code C.int) error {
	if int(code) == 0 {
		return nil
	}
	return fmt.Errorf("libraw: %s", C.GoString(C.libraw_strerror(code)))
}

// Open opens path and applies params to the fresh handle. The returned
// session must be closed by the caller on every path.
func (Decoder) Open(path string, params contracts.ProcessingParams) (contracts.Session, error) {
	proc := C.libraw_init(0)
	if proc == nil {
		return nil, fmt.Errorf("libraw: init failed")
	}

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	if err := goResult(C.libraw_open_file(proc, cPath)); err != nil {
		C.libraw_close(proc)
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	s := &session{proc: proc, path: path}
	s.applyParams(params)
	return s, nil
}

type session struct {
	proc *C.libraw_data_t
	path string
}

func cBool(b bool) C.int {
	if b {
		return 1
	}
	return 0
}

func (s *session) applyParams(p contracts.ProcessingParams) {
	par := &s.proc.params
	par.use_camera_wb = cBool(p.UseCameraWB)
	par.use_auto_wb = cBool(p.UseAutoWB)
	par.no_auto_bright = cBool(p.NoAutoBright)
	par.output_color = C.int(p.OutputColor)
	par.output_bps = C.int(p.OutputBPS)
	par.user_qual = C.int(p.DemosaicQual)
	par.user_flip = C.int(p.Flip)
	par.four_color_rgb = cBool(p.FourColorRGB)
	par.highlight = C.int(p.Highlight)
	par.use_fuji_rotate = cBool(p.UseFujiRotate)
	if p.GammaPower > 0 {
		par.gamm[0] = C.double(1.0 / p.GammaPower)
		par.gamm[1] = C.double(p.GammaSlope)
	}
}

func (s *session) Geometry() contracts.Geometry {
	sz := &s.proc.sizes
	return contracts.Geometry{
		RawWidth:   int(sz.raw_width),
		RawHeight:  int(sz.raw_height),
		Width:      int(sz.width),
		Height:     int(sz.height),
		TopMargin:  int(sz.top_margin),
		LeftMargin: int(sz.left_margin),
	}
}

func (s *session) SetGeometry(g contracts.Geometry) {
	sz := &s.proc.sizes
	sz.raw_width = C.ushort(g.RawWidth)
	sz.raw_height = C.ushort(g.RawHeight)
	sz.width = C.ushort(g.Width)
	sz.height = C.ushort(g.Height)
	sz.iwidth = C.ushort(g.Width)
	sz.iheight = C.ushort(g.Height)
	sz.top_margin = C.ushort(g.TopMargin)
	sz.left_margin = C.ushort(g.LeftMargin)
}

func (s *session) Unpack() error {
	if err := goResult(C.libraw_unpack(s.proc)); err != nil {
		return fmt.Errorf("unpack %s: %w", s.path, err)
	}
	return nil
}

func (s *session) Process() error {
	if err := goResult(C.libraw_dcraw_process(s.proc)); err != nil {
		return fmt.Errorf("process %s: %w", s.path, err)
	}
	return nil
}

// Image copies the processed buffer into Go memory and frees the
// LibRaw-side allocation before returning, so the C resource never
// outlives this call regardless of what the caller does.
func (s *session) Image() (*contracts.DecodedImage, error) {
	var ret C.int
	img := C.libraw_dcraw_make_mem_image(s.proc, &ret)
	if img == nil {
		return nil, fmt.Errorf("mem image %s: %w", s.path, goResult(ret))
	}
	defer C.libraw_dcraw_clear_mem(img)

	width := int(img.width)
	height := int(img.height)
	colors := int(img.colors)
	bits := int(img.bits)

	n := width * height * colors
	samples := make([]uint16, n)
	base := unsafe.Pointer(&img.data[0])
	if bits == 16 {
		src := unsafe.Slice((*uint16)(base), n)
		copy(samples, src)
	} else {
		src := unsafe.Slice((*uint8)(base), n)
		for i, v := range src {
			samples[i] = uint16(v)
		}
	}

	return contracts.NewDecodedImage(width, height, colors, bits, samples, nil), nil
}

func (s *session) Close() {
	if s.proc != nil {
		C.libraw_close(s.proc)
		s.proc = nil
	}
}
