// Package exr_writer reads and writes scanline OpenEXR images. The
// writer emits half-precision RGBA with ZIP compression; the reader
// exists so conversions can be verified end to end.
package exr_writer

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

const exrMagic = 20000630

const (
	compressionNone = 0
	compressionZips = 2
	compressionZip  = 3
)

const (
	pixelUint  = 0
	pixelHalf  = 1
	pixelFloat = 2
)

// Channel storage order in the file. OpenEXR requires the channel list
// sorted by name, which for RGBA is A, B, G, R.
var channelNames = [4]string{"A", "B", "G", "R"}

// pixOffset maps file channel order back to the RGBA layout of
// contracts.FloatImage.
var pixOffset = [4]int{3, 2, 1, 0}

// Writer encodes FloatImages as scanline OpenEXR files.
type Writer struct {
	// Uncompressed disables ZIP compression of pixel blocks.
	Uncompressed bool
}

var _ contracts.Encoder = Writer{}

func (Writer) Extension() string { return ".exr" }

// Encode writes img to w as a single-part scanline EXR with four HALF
// channels. The full stream is assembled in memory first; chunk
// offsets are absolute file positions and cannot be known sooner.
func (e Writer) Encode(w io.Writer, img *contracts.FloatImage) error {
	if img == nil || img.Width <= 0 || img.Height <= 0 {
		return fmt.Errorf("exr: empty image")
	}
	if len(img.Pix) < img.Width*img.Height*4 {
		return fmt.Errorf("exr: pixel buffer too short for %dx%d", img.Width, img.Height)
	}

	compression := byte(compressionZip)
	linesPerBlock := 16
	if e.Uncompressed {
		compression = compressionNone
		linesPerBlock = 1
	}

	blocks, err := packBlocks(img, linesPerBlock, compression)
	if err != nil {
		return err
	}

	var header bytes.Buffer
	writeAttr(&header, "channels", "chlist", chlistBytes())
	writeAttr(&header, "compression", "compression", []byte{compression})
	box := boxBytes(img.Width, img.Height)
	writeAttr(&header, "dataWindow", "box2i", box)
	writeAttr(&header, "displayWindow", "box2i", box)
	writeAttr(&header, "lineOrder", "lineOrder", []byte{0})
	writeAttr(&header, "pixelAspectRatio", "float", floatBytes(1.0))
	writeAttr(&header, "screenWindowCenter", "v2f", append(floatBytes(0), floatBytes(0)...))
	writeAttr(&header, "screenWindowWidth", "float", floatBytes(1.0))
	header.WriteByte(0) // end of header

	// magic + version + header + offset table, then the chunks
	offset := uint64(8 + header.Len() + 8*len(blocks))
	var out bytes.Buffer
	writeU32(&out, exrMagic)
	writeU32(&out, 2)
	out.Write(header.Bytes())
	for _, b := range blocks {
		writeU64(&out, offset)
		offset += uint64(len(b))
	}
	for _, b := range blocks {
		out.Write(b)
	}

	_, err = w.Write(out.Bytes())
	return err
}

// packBlocks converts the float pixels into per-block channel-planar
// half data and compresses each block.
func packBlocks(img *contracts.FloatImage, linesPerBlock int, compression byte) ([][]byte, error) {
	width, height := img.Width, img.Height
	blockCount := (height + linesPerBlock - 1) / linesPerBlock
	blocks := make([][]byte, 0, blockCount)

	for block := 0; block < blockCount; block++ {
		startY := block * linesPerBlock
		lines := linesPerBlock
		if startY+lines > height {
			lines = height - startY
		}

		raw := make([]byte, lines*width*4*2)
		pos := 0
		for row := 0; row < lines; row++ {
			y := startY + row
			for c := 0; c < 4; c++ {
				ch := pixOffset[c]
				for x := 0; x < width; x++ {
					v := img.Pix[(y*width+x)*4+ch]
					binary.LittleEndian.PutUint16(raw[pos:pos+2], float32ToHalf(v))
					pos += 2
				}
			}
		}

		payload := raw
		if compression == compressionZip {
			compressed, err := deflateBlock(raw)
			if err != nil {
				return nil, err
			}
			// the format stores the raw bytes when deflate does not
			// actually shrink the block
			if len(compressed) < len(raw) {
				payload = compressed
			}
		}

		var chunk bytes.Buffer
		writeU32(&chunk, uint32(int32(startY)))
		writeU32(&chunk, uint32(len(payload)))
		chunk.Write(payload)
		blocks = append(blocks, chunk.Bytes())
	}
	return blocks, nil
}

// deflateBlock applies the EXR ZIP pre-pass (byte shuffle, then delta
// predictor) and zlib-compresses the result.
func deflateBlock(data []byte) ([]byte, error) {
	prepared := shuffleBytes(data)
	applyPredictor(prepared)

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(prepared); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shuffleBytes splits the stream into even and odd bytes; the inverse
// of unshuffleBytes.
func shuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[i] = data[2*i]
		out[i+n] = data[2*i+1]
	}
	return out
}

func applyPredictor(data []byte) {
	for i := len(data) - 1; i >= 1; i-- {
		data[i] = byte(int(data[i]) - int(data[i-1]) + 128)
	}
}

func undoPredictor(data []byte) {
	for i := 1; i < len(data); i++ {
		data[i] = byte(int(data[i]) + int(data[i-1]) - 128)
	}
}

func unshuffleBytes(data []byte) []byte {
	n := len(data) / 2
	out := make([]byte, len(data))
	for i := 0; i < n; i++ {
		out[2*i] = data[i]
		out[2*i+1] = data[i+n]
	}
	return out
}

func chlistBytes() []byte {
	var buf bytes.Buffer
	for _, name := range channelNames {
		buf.WriteString(name)
		buf.WriteByte(0)
		writeU32(&buf, pixelHalf)
		buf.Write([]byte{0, 0, 0, 0}) // pLinear + reserved
		writeU32(&buf, 1)             // xSampling
		writeU32(&buf, 1)             // ySampling
	}
	buf.WriteByte(0)
	return buf.Bytes()
}

func boxBytes(w, h int) []byte {
	var buf bytes.Buffer
	writeU32(&buf, 0)
	writeU32(&buf, 0)
	writeU32(&buf, uint32(int32(w-1)))
	writeU32(&buf, uint32(int32(h-1)))
	return buf.Bytes()
}

func floatBytes(f float32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(f))
	return b[:]
}

func writeAttr(buf *bytes.Buffer, name, typ string, payload []byte) {
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.WriteString(typ)
	buf.WriteByte(0)
	writeU32(buf, uint32(len(payload)))
	buf.Write(payload)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
