package exr_writer

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

const (
	chanOther = -2
	chanY     = -1
	chanR     = 0
	chanG     = 1
	chanB     = 2
	chanA     = 3
)

type channel struct {
	name      string
	pixelType int32
	xSampling int32
	ySampling int32
	role      int
}

// Decode parses a single-part scanline EXR into an RGBA float image.
// Luminance-only files are expanded to gray RGB; a missing alpha
// channel decodes as fully opaque.
func Decode(data []byte) (*contracts.FloatImage, error) {
	r := bytes.NewReader(data)
	magic, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if magic != exrMagic {
		return nil, errors.New("exr: bad magic")
	}
	version, err := readU32(r)
	if err != nil {
		return nil, err
	}
	if version&0x00000200 != 0 {
		return nil, errors.New("exr: tiled files not supported")
	}
	if version&0x00000C00 != 0 {
		return nil, errors.New("exr: deep/multipart files not supported")
	}

	var channels []channel
	var dataWindow [4]int32
	var hasDataWindow bool
	var compression byte = compressionNone

	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		typ, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		size, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if size < 0 {
			return nil, errors.New("exr: negative attribute size")
		}
		payload := make([]byte, size)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, err
		}

		switch name {
		case "channels":
			if typ != "chlist" {
				return nil, errors.New("exr: channels attribute is not a chlist")
			}
			channels, err = parseChannels(payload)
			if err != nil {
				return nil, err
			}
		case "dataWindow":
			if typ != "box2i" || len(payload) != 16 {
				return nil, errors.New("exr: malformed dataWindow")
			}
			for i := range dataWindow {
				dataWindow[i] = int32(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
			}
			hasDataWindow = true
		case "compression":
			if typ != "compression" || len(payload) < 1 {
				return nil, errors.New("exr: malformed compression")
			}
			compression = payload[0]
		case "tiles":
			return nil, errors.New("exr: tiled files not supported")
		}
	}

	if len(channels) == 0 {
		return nil, errors.New("exr: no channels")
	}
	if !hasDataWindow {
		return nil, errors.New("exr: no dataWindow")
	}
	for _, ch := range channels {
		if ch.xSampling != 1 || ch.ySampling != 1 {
			return nil, errors.New("exr: subsampled channels not supported")
		}
	}
	if compression != compressionNone && compression != compressionZips && compression != compressionZip {
		return nil, fmt.Errorf("exr: unsupported compression %d", compression)
	}

	width := int(dataWindow[2]-dataWindow[0]) + 1
	height := int(dataWindow[3]-dataWindow[1]) + 1
	if width <= 0 || height <= 0 {
		return nil, errors.New("exr: invalid dimensions")
	}

	blockLines := 1
	if compression == compressionZip {
		blockLines = 16
	}
	blockCount := (height + blockLines - 1) / blockLines
	offsets := make([]uint64, blockCount)
	for i := range offsets {
		if offsets[i], err = readU64(r); err != nil {
			return nil, err
		}
	}

	img := contracts.NewFloatImage(width, height)
	// alpha defaults to opaque when the file has no A channel
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 1.0
	}

	baseY := int(dataWindow[1])
	for block := 0; block < blockCount; block++ {
		if offsets[block] == 0 {
			continue
		}
		if _, err := r.Seek(int64(offsets[block]), io.SeekStart); err != nil {
			return nil, err
		}
		y, err := readI32(r)
		if err != nil {
			return nil, err
		}
		dataSize, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if dataSize < 0 {
			return nil, errors.New("exr: negative block size")
		}
		raw := make([]byte, dataSize)
		if _, err := io.ReadFull(r, raw); err != nil {
			return nil, err
		}

		startY := int(y) - baseY
		if startY < 0 || startY >= height {
			return nil, errors.New("exr: scanline out of bounds")
		}
		lines := blockLines
		if startY+lines > height {
			lines = height - startY
		}

		expected := expectedBlockBytes(width, lines, channels)
		unpacked, err := inflateBlock(compression, raw, expected)
		if err != nil {
			return nil, err
		}
		if err := decodeBlock(img, channels, startY, width, lines, unpacked); err != nil {
			return nil, err
		}
	}

	if !hasColor(channels) {
		return nil, errors.New("exr: no R/G/B or Y channels")
	}
	return img, nil
}

func parseChannels(data []byte) ([]channel, error) {
	r := bytes.NewReader(data)
	var channels []channel
	for {
		name, err := readNullString(r)
		if err != nil {
			return nil, err
		}
		if name == "" {
			break
		}
		pixelType, err := readI32(r)
		if err != nil {
			return nil, err
		}
		if pixelType != pixelHalf && pixelType != pixelFloat && pixelType != pixelUint {
			return nil, fmt.Errorf("exr: unsupported pixel type %d", pixelType)
		}
		// pLinear byte plus three reserved bytes
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return nil, err
		}
		xSampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		ySampling, err := readI32(r)
		if err != nil {
			return nil, err
		}
		role := chanOther
		switch strings.ToUpper(name) {
		case "R":
			role = chanR
		case "G":
			role = chanG
		case "B":
			role = chanB
		case "A":
			role = chanA
		case "Y":
			role = chanY
		}
		channels = append(channels, channel{
			name:      name,
			pixelType: pixelType,
			xSampling: xSampling,
			ySampling: ySampling,
			role:      role,
		})
	}
	return channels, nil
}

func expectedBlockBytes(width, lines int, channels []channel) int {
	total := 0
	for _, ch := range channels {
		total += width * lines * bytesPerPixel(ch.pixelType)
	}
	return total
}

func bytesPerPixel(pixelType int32) int {
	if pixelType == pixelHalf {
		return 2
	}
	return 4
}

func inflateBlock(compression byte, data []byte, expected int) ([]byte, error) {
	switch compression {
	case compressionNone:
		if expected > 0 && len(data) != expected {
			return nil, errors.New("exr: unexpected block size")
		}
		return data, nil
	case compressionZips, compressionZip:
		// blocks that did not shrink are stored raw
		if len(data) == expected {
			return data, nil
		}
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		uncompressed, err := io.ReadAll(zr)
		if err != nil {
			return nil, err
		}
		if expected > 0 && len(uncompressed) != expected {
			return nil, errors.New("exr: unexpected decompressed size")
		}
		undoPredictor(uncompressed)
		return unshuffleBytes(uncompressed), nil
	default:
		return nil, errors.New("exr: unsupported compression")
	}
}

func decodeBlock(dst *contracts.FloatImage, channels []channel, startY, width, lines int, data []byte) error {
	offset := 0
	for row := 0; row < lines; row++ {
		y := startY + row
		for _, ch := range channels {
			lineBytes := width * bytesPerPixel(ch.pixelType)
			if offset+lineBytes > len(data) {
				return errors.New("exr: truncated block")
			}
			line := data[offset : offset+lineBytes]
			offset += lineBytes
			if ch.role == chanOther {
				continue
			}
			applyLine(dst, ch.role, y, width, ch.pixelType, line)
		}
	}
	return nil
}

func applyLine(dst *contracts.FloatImage, role, y, width int, pixelType int32, line []byte) {
	for x := 0; x < width; x++ {
		var v float32
		switch pixelType {
		case pixelHalf:
			v = halfToFloat32(binary.LittleEndian.Uint16(line[x*2 : x*2+2]))
		case pixelFloat:
			v = math.Float32frombits(binary.LittleEndian.Uint32(line[x*4 : x*4+4]))
		case pixelUint:
			v = float32(binary.LittleEndian.Uint32(line[x*4 : x*4+4]))
		}
		idx := (y*dst.Width + x) * 4
		switch role {
		case chanR:
			dst.Pix[idx] = v
		case chanG:
			dst.Pix[idx+1] = v
		case chanB:
			dst.Pix[idx+2] = v
		case chanA:
			dst.Pix[idx+3] = v
		case chanY:
			dst.Pix[idx] = v
			dst.Pix[idx+1] = v
			dst.Pix[idx+2] = v
		}
	}
}

func hasColor(channels []channel) bool {
	for _, ch := range channels {
		switch ch.role {
		case chanR, chanG, chanB, chanY:
			return true
		}
	}
	return false
}

func readNullString(r *bytes.Reader) (string, error) {
	var buf []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return "", err
		}
		if b == 0 {
			break
		}
		buf = append(buf, b)
	}
	return string(buf), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readU64(r *bytes.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func readI32(r *bytes.Reader) (int32, error) {
	v, err := readU32(r)
	return int32(v), err
}
