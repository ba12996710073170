package convert

import "image/color"

// Depth is the per-channel sample width the encoder is fed.
type Depth int

const (
	DepthUnsupported Depth = iota
	Depth8
	Depth16
)

func (d Depth) String() string {
	switch d {
	case Depth8:
		return "8-bit"
	case Depth16:
		return "16-bit"
	default:
		return "unsupported"
	}
}

// Classify maps a decoded color model to the encoder input depth. Alpha
// channels are accepted and later dropped. Palettes, CMYK and any custom
// model are unsupported and must be passed through untouched.
func Classify(m color.Model) Depth {
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.YCbCrModel, color.NYCbCrAModel,
		color.GrayModel, color.AlphaModel:
		return Depth8
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model, color.Alpha16Model:
		return Depth16
	default:
		return DepthUnsupported
	}
}
