package contracts

// Geometry describes the sensor area a session will decode. Raw
// dimensions cover the whole photosite array including the border
// pixels; Width/Height are the area the decoder actually processes.
type Geometry struct {
	RawWidth   int
	RawHeight  int
	Width      int
	Height     int
	TopMargin  int
	LeftMargin int
}

// ProcessingParams is the decoder configuration for one file. It is a
// plain value: built once, passed into Decoder.Open, never mutated
// afterwards, so no setting can leak from one file into the next.
type ProcessingParams struct {
	UseCameraWB   bool
	UseAutoWB     bool
	NoAutoBright  bool
	OutputColor   int // 0 raw, 1 sRGB
	OutputBPS     int // 8 or 16
	DemosaicQual  int // 3 = AHD
	Flip          int // 0 = no rotation
	FourColorRGB  bool
	Highlight     int // 0 = no highlight recovery
	UseFujiRotate bool
	GammaPower    float64 // gamm[0] = 1/GammaPower
	GammaSlope    float64 // gamm[1], linear toe slope
}

// DefaultParams is the general conversion profile: camera white
// balance, native exposure, gamma-encoded sRGB at 16 bits.
func DefaultParams() ProcessingParams {
	return ProcessingParams{
		UseCameraWB:  true,
		NoAutoBright: true,
		OutputColor:  1,
		OutputBPS:    16,
		DemosaicQual: 3,
		GammaPower:   2.4,
		GammaSlope:   12.92,
	}
}

// FullSensorParams is the full-sensor profile: same exposure handling
// but raw color and unity gamma, so the decoded samples are linear by
// construction.
func FullSensorParams() ProcessingParams {
	p := DefaultParams()
	p.OutputColor = 0
	p.GammaPower = 1.0
	p.GammaSlope = 1.0
	return p
}
