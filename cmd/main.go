package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/petermercell/3RF-2-EXR/contracts"
	"github.com/petermercell/3RF-2-EXR/converter"
	"github.com/petermercell/3RF-2-EXR/exr_writer"
	"github.com/petermercell/3RF-2-EXR/files_manager"
	"github.com/petermercell/3RF-2-EXR/hdr_writer"
	"github.com/petermercell/3RF-2-EXR/librawdec"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <input_directory> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Options:")
	fmt.Fprintln(os.Stderr, "  -linear          keep camera samples as-is, skip the sRGB linearization stage")
	fmt.Fprintln(os.Stderr, "  -exposure N      exposure multiplier; any value other than 1.0 enables tone compression")
	fmt.Fprintln(os.Stderr, "  -full-sensor     decode with raw colorimetry and unity gamma (implies -linear)")
	fmt.Fprintln(os.Stderr, "  -format exr|hdr  output container (default exr)")
	fmt.Fprintln(os.Stderr, "  -preview         write a downscaled PPM preview next to each output")
	fmt.Fprintf(os.Stderr, "Example: %s ./captures -exposure 1.5\n", os.Args[0])
}

// parseArgs resolves the command line: positional input directory
// first, options after. Any error is a usage error.
func parseArgs(args []string) (string, contracts.Options, error) {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		return "", contracts.Options{}, fmt.Errorf("input directory required")
	}
	inputDir := args[0]

	fs := flag.NewFlagSet("3fr2exr", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	linear := fs.Bool("linear", false, "skip the sRGB linearization stage")
	exposure := fs.Float64("exposure", 1.0, "exposure multiplier")
	fullSensor := fs.Bool("full-sensor", false, "raw colorimetry and unity gamma")
	format := fs.String("format", contracts.FormatEXR, "output container: exr or hdr")
	previewFlag := fs.Bool("preview", false, "write a PPM preview per output")
	if err := fs.Parse(args[1:]); err != nil {
		return "", contracts.Options{}, err
	}

	// the raw-colorimetry profile already emits linear samples, so it
	// turns -linear on unless the flag was given explicitly
	linearSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "linear" {
			linearSet = true
		}
	})
	if *fullSensor && !linearSet {
		*linear = true
	}

	if *format != contracts.FormatEXR && *format != contracts.FormatHDR {
		return "", contracts.Options{}, fmt.Errorf("unknown format %q (want exr or hdr)", *format)
	}

	return inputDir, contracts.Options{
		Linear:     *linear,
		Exposure:   *exposure,
		FullSensor: *fullSensor,
		Format:     *format,
		Preview:    *previewFlag,
	}, nil
}

func main() {
	inputDir, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		usage()
		os.Exit(1)
	}

	var enc contracts.Encoder
	switch opts.Format {
	case contracts.FormatHDR:
		enc = &hdr_writer.Writer{}
	default:
		enc = &exr_writer.Writer{}
	}

	if err := files_manager.CheckInputDir(inputDir); err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		os.Exit(1)
	}

	files, err := files_manager.GetRawPaths(inputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: reading input directory: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No %s files found in %s\n", files_manager.RawExt, inputDir)
		os.Exit(0)
	}
	fmt.Printf("Found %d %s files in %s\n", len(files), files_manager.RawExt, inputDir)

	outputDir, err := files_manager.EnsureOutputDir(inputDir, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR]: %v\n", err)
		os.Exit(1)
	}

	job := contracts.BatchJob{
		InputDir:  inputDir,
		OutputDir: outputDir,
		Files:     files,
		Opts:      opts,
	}

	conv := converter.New(&librawdec.Decoder{}, enc)

	startTime := time.Now()
	succeeded, failed := files_manager.Run(job, conv, enc.Extension())
	fmt.Printf("Converted %d of %d files in %s\n", succeeded, len(files), time.Since(startTime))

	if failed > 0 {
		os.Exit(1)
	}
}
