package librawdec

import "github.com/petermercell/3RF-2-EXR/contracts"

// FullSensor rewrites a session geometry so the decoder processes the
// entire photosite array: working size becomes the raw size and the
// margins collapse to zero. Pure value transform; it must be written
// back with Session.SetGeometry after open and before Unpack, because
// the decoder snapshots geometry when it unpacks.
func FullSensor(g contracts.Geometry) contracts.Geometry {
	g.Width = g.RawWidth
	g.Height = g.RawHeight
	g.TopMargin = 0
	g.LeftMargin = 0
	return g
}
