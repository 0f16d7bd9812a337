// Package converter turns one opened RAW file into one HDR output
// file: configure, decode, transform, write. Every failure is scoped
// to the file and reported as a ConversionResult value.
package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/petermercell/3RF-2-EXR/contracts"
	"github.com/petermercell/3RF-2-EXR/librawdec"
	"github.com/petermercell/3RF-2-EXR/preview"
	"github.com/petermercell/3RF-2-EXR/utils"
)

type Converter struct {
	Dec contracts.Decoder
	Enc contracts.Encoder
}

var _ contracts.Converter = (*Converter)(nil)

func New(dec contracts.Decoder, enc contracts.Encoder) *Converter {
	return &Converter{Dec: dec, Enc: enc}
}

// Convert runs the whole single-file pipeline. On success exactly one
// output file exists at outputPath; on any failure none does. The
// session and the decoded buffer are released on every exit path.
func (c *Converter) Convert(inputPath, outputPath string, opts contracts.Options) contracts.ConversionResult {
	fail := func(err error) contracts.ConversionResult {
		return contracts.ConversionResult{
			Input:   inputPath,
			Output:  outputPath,
			Message: err.Error(),
		}
	}

	params := contracts.DefaultParams()
	if opts.FullSensor {
		params = contracts.FullSensorParams()
	}

	sess, err := c.Dec.Open(inputPath, params)
	if err != nil {
		return fail(err)
	}
	defer sess.Close()

	geo := sess.Geometry()
	fmt.Printf("Processing: %s\n", inputPath)
	fmt.Printf("  visible area: %dx%d, raw sensor: %dx%d\n",
		geo.Width, geo.Height, geo.RawWidth, geo.RawHeight)
	if info, err := utils.GetCameraInfo(inputPath); err == nil {
		fmt.Printf("  camera: %s\n", info)
	}

	// the output always covers the whole photosite array, masked
	// borders included; the decoder's default crop to the visible area
	// is undone before unpack
	full := librawdec.FullSensor(geo)
	sess.SetGeometry(full)
	expectW, expectH := full.Width, full.Height

	if err := sess.Unpack(); err != nil {
		return fail(err)
	}
	if err := sess.Process(); err != nil {
		return fail(err)
	}

	img, err := sess.Image()
	if err != nil {
		return fail(err)
	}
	defer img.Close()

	if img.Width != expectW || img.Height != expectH {
		return fail(fmt.Errorf("decode of %s produced %dx%d, expected full sensor %dx%d",
			inputPath, img.Width, img.Height, expectW, expectH))
	}

	floatImg := buildFloatImage(img, opts)

	if err := c.writeAtomic(outputPath, floatImg); err != nil {
		return fail(err)
	}

	if opts.Preview {
		// the output is already complete; a broken preview is only
		// worth a warning
		if err := writePreview(outputPath, floatImg); err != nil {
			fmt.Fprintf(os.Stderr, "[WARN]: preview for %s: %v\n", inputPath, err)
		}
	}

	return contracts.ConversionResult{OK: true, Input: inputPath, Output: outputPath}
}

// writeAtomic encodes into <path>.tmp and renames into place only
// after the encoder and the filesystem both report success, so a
// failed conversion can never leave a truncated output behind.
func (c *Converter) writeAtomic(path string, img *contracts.FloatImage) error {
	tmpPath := path + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmpPath, err)
	}

	if err := c.Enc.Encode(f, img); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync %s: %w", tmpPath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close %s: %w", tmpPath, err)
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("stat %s: %w", tmpPath, err)
	}
	if info.Size() == 0 {
		os.Remove(tmpPath)
		return fmt.Errorf("file is empty: %s", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}

func writePreview(outputPath string, img *contracts.FloatImage) error {
	base := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	previewPath := base + "_preview.ppm"

	f, err := os.Create(previewPath)
	if err != nil {
		return err
	}
	if err := preview.Write(f, img, preview.DefaultMaxEdge); err != nil {
		f.Close()
		os.Remove(previewPath)
		return err
	}
	return f.Close()
}
