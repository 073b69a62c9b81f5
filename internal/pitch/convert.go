// Package pitch converts player and ball positions from the metric
// tracking coordinate system (origin at the pitch centre, axes in
// metres) to the canonical system used by the event feed (0-100 per
// axis, origin at a corner). The conversion is one-directional and
// applied once at ingestion, never at read time.
package pitch

import "math"

const (
	// Canonical axis extent and midpoint.
	canonicalMax = 100.0
	canonicalMid = 50.0

	// Regulation pitch dimensions, used when metadata carries none.
	DefaultLengthMetres = 105.0
	DefaultWidthMetres  = 68.0
)

// Breakpoint tables mapping pitch landmarks between the two
// conventions, expressed in the half-pitch 0-50 range of the
// normalized-real frame. Sources are the landmark positions on a
// regulation pitch (six-yard line 5.5 m, penalty spot 11 m, box edge
// 16.5 m from the goal line; box edges 13.84 m and 24.84 m from the
// touchline); targets are the fixed values the event convention
// assigns to the same landmarks. Between landmarks the mapping is
// linear; outside the table it clamps to the nearest entry.
var (
	xBreaksSrc = []float64{0, 100 * 5.5 / 105, 100 * 11.0 / 105, 100 * 16.5 / 105, 50}
	xBreaksDst = []float64{0, 5.8, 11.5, 17, 50}

	yBreaksSrc = []float64{0, 100 * 13.84 / 68, 100 * 24.84 / 68, 50}
	yBreaksDst = []float64{0, 21.1, 36.8, 50}
)

// Converter maps tracking positions onto the canonical pitch. The zero
// value is not useful; construct with NewConverter.
type Converter struct {
	length float64
	width  float64
}

// NewConverter builds a converter for a pitch of the given dimensions
// in metres. Non-positive dimensions fall back to the regulation
// 105x68 pitch.
func NewConverter(lengthMetres, widthMetres float64) Converter {
	if lengthMetres <= 0 {
		lengthMetres = DefaultLengthMetres
	}
	if widthMetres <= 0 {
		widthMetres = DefaultWidthMetres
	}
	return Converter{length: lengthMetres, width: widthMetres}
}

// ToCanonical converts a centre-origin metric position to canonical
// 0-100 coordinates. Results are rounded to hundredths so repeated
// conversions of equal inputs are byte-identical after serialization.
func (c Converter) ToCanonical(x, y float64) (cx, cy float64) {
	nx := (x + c.length/2) * (canonicalMid / (c.length / 2))
	ny := (y + c.width/2) * (canonicalMid / (c.width / 2))
	cx = round2(mirrorInterp(nx, xBreaksSrc, xBreaksDst))
	cy = round2(mirrorInterp(ny, yBreaksSrc, yBreaksDst))
	return cx, cy
}

// mirrorInterp applies the piecewise-linear landmark mapping on the
// lower half of the axis and reflects inputs past the midpoint about
// it, so the transform is symmetric by construction.
func mirrorInterp(v float64, src, dst []float64) float64 {
	if v > canonicalMid {
		return canonicalMax - interpolate(canonicalMax-v, src, dst)
	}
	return interpolate(v, src, dst)
}

// interpolate evaluates the piecewise-linear map defined by src/dst at
// v, clamping to the end entries rather than extrapolating.
func interpolate(v float64, src, dst []float64) float64 {
	last := len(src) - 1
	if v <= src[0] {
		return dst[0]
	}
	if v >= src[last] {
		return dst[last]
	}
	for i := 1; i <= last; i++ {
		if v <= src[i] {
			t := (v - src[i-1]) / (src[i] - src[i-1])
			return dst[i-1] + t*(dst[i]-dst[i-1])
		}
	}
	return dst[last]
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
