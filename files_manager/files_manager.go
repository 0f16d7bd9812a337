package files_manager

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/petermercell/3RF-2-EXR/contracts"
)

// RawExt is the Hasselblad RAW extension, matched case-insensitively.
const RawExt = ".3fr"

func CheckInputDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("input directory required")
	}
	stat, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("input directory does not exist: %s", dir)
	}
	if !stat.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}
	return nil
}

// EnsureOutputDir creates <inputDir>/EXR (or /HDR) if it is missing and
// returns its path.
func EnsureOutputDir(inputDir, format string) (string, error) {
	outDir := filepath.Join(inputDir, strings.ToUpper(format))
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outDir, err)
	}
	return outDir, nil
}

// GetRawPaths lists the RAW candidates directly inside dir, sorted by
// name so a batch always processes in the same order. Subdirectories
// and macOS "._" metadata forks are skipped; anything else with a .3fr
// extension is kept and left for the decoder to reject.
func GetRawPaths(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	rawFiles := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), "._") {
			continue
		}
		if strings.ToLower(filepath.Ext(entry.Name())) == RawExt {
			rawFiles = append(rawFiles, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(rawFiles)
	return rawFiles, nil
}

// OutputPath maps an input RAW path to its output path inside outDir,
// swapping the extension.
func OutputPath(outDir, inputPath, ext string) string {
	base := filepath.Base(inputPath)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(outDir, name+ext)
}

// Run converts every file of the job in order. A file that fails is
// reported and skipped; the batch always runs to the end. Returns the
// success and failure counts.
func Run(job contracts.BatchJob, conv contracts.Converter, ext string) (succeeded, failed int) {
	for _, inputPath := range job.Files {
		outputPath := OutputPath(job.OutputDir, inputPath, ext)
		result := conv.Convert(inputPath, outputPath, job.Opts)
		if result.OK {
			fmt.Printf("Saved: %s\n", result.Output)
			succeeded++
		} else {
			fmt.Fprintf(os.Stderr, "[ERROR]: %s: %s\n", result.Input, result.Message)
			failed++
		}
	}
	return succeeded, failed
}
