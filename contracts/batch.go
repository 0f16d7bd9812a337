package contracts

// Output container formats.
const (
	FormatEXR = "exr"
	FormatHDR = "hdr"
)

// Options are the conversion settings shared by every file of a run.
// Immutable once the command line has been parsed.
type Options struct {
	Linear     bool    // keep decoder samples as-is, skip the inverse sRGB stage
	Exposure   float64 // 1.0 is neutral and disables the compression stage
	FullSensor bool    // raw colorimetry and unity gamma instead of the sRGB decode profile
	Format     string  // FormatEXR or FormatHDR
	Preview    bool    // write a downscaled PPM proof sheet per output
}

// BatchJob is one run over a directory: the resolved paths, the
// discovered inputs in processing order, and the shared options.
// Immutable after discovery.
type BatchJob struct {
	InputDir  string
	OutputDir string
	Files     []string
	Opts      Options
}
