// Package pngopt losslessly recompresses PNG files. Higher presets try more
// pixel-format reductions and stronger deflate settings, and the smallest
// candidate wins. The result is never larger than the input.
package pngopt

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"github.com/spf13/afero"
)

const (
	MinPreset = 0
	MaxPreset = 6
)

type Optimizer struct{}

func New() Optimizer {
	return Optimizer{}
}

// Optimize reads the PNG at src and writes the smallest lossless encoding it
// finds to dst. src and dst may be the same path.
func (Optimizer) Optimize(fsys afero.Fs, src, dst string, preset int) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return err
	}
	best, err := Recompress(data, preset)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, dst, best, 0o644)
}

// reduction selects which pixel-format reductions a preset tries.
// reduceFirst takes gray, or palette when gray does not apply.
type reduction int

const (
	reduceNone reduction = iota
	reduceFirst
	reduceAll
)

type plan struct {
	levels []png.CompressionLevel
	reduce reduction
}

// planFor maps a preset to its search space. Presets 1 to 3 widen the
// reductions, 4 to 6 widen the deflate levels.
func planFor(preset int) plan {
	switch max(MinPreset, min(MaxPreset, preset)) {
	case 0:
		return plan{levels: []png.CompressionLevel{png.BestSpeed}, reduce: reduceNone}
	case 1:
		return plan{levels: []png.CompressionLevel{png.DefaultCompression}, reduce: reduceNone}
	case 2:
		return plan{levels: []png.CompressionLevel{png.DefaultCompression}, reduce: reduceFirst}
	case 3:
		return plan{levels: []png.CompressionLevel{png.DefaultCompression}, reduce: reduceAll}
	case 4:
		return plan{levels: []png.CompressionLevel{png.BestCompression}, reduce: reduceAll}
	case 5:
		return plan{levels: []png.CompressionLevel{png.DefaultCompression, png.BestCompression}, reduce: reduceAll}
	default:
		return plan{levels: []png.CompressionLevel{png.BestSpeed, png.DefaultCompression, png.BestCompression}, reduce: reduceAll}
	}
}

func (p plan) candidates(img image.Image) []image.Image {
	out := []image.Image{img}
	if p.reduce == reduceNone {
		return out
	}
	gray, grayOK := reduceGray(img)
	if grayOK {
		out = append(out, gray)
		if p.reduce == reduceFirst {
			return out
		}
	}
	if pal, ok := reducePalette(img); ok {
		out = append(out, pal)
	}
	return out
}

// Recompress returns the smallest encoding of the PNG in data for preset.
func Recompress(data []byte, preset int) ([]byte, error) {
	p := planFor(preset)

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}

	best := data
	for _, c := range p.candidates(img) {
		for _, level := range p.levels {
			enc := png.Encoder{CompressionLevel: level}
			var buf bytes.Buffer
			if err := enc.Encode(&buf, c); err != nil {
				return nil, fmt.Errorf("encode png: %w", err)
			}
			if buf.Len() < len(best) {
				best = buf.Bytes()
			}
		}
	}
	return best, nil
}

// reduceGray returns an 8-bit gray copy when every pixel is opaque with
// equal channels and fits in 8 bits.
func reduceGray(img image.Image) (*image.Gray, bool) {
	b := img.Bounds()
	gray := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			if c.A != 0xffff || c.R != c.G || c.G != c.B || c.R%0x101 != 0 {
				return nil, false
			}
			gray.SetGray(x, y, color.Gray{Y: uint8(c.R >> 8)})
		}
	}
	return gray, true
}

// reducePalette returns a paletted copy when the image has at most 256
// distinct 8-bit colors.
func reducePalette(img image.Image) (*image.Paletted, bool) {
	b := img.Bounds()
	index := make(map[color.NRGBA]uint8)
	var pal color.Palette
	indices := make([]uint8, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c64 := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			if c64.R%0x101 != 0 || c64.G%0x101 != 0 || c64.B%0x101 != 0 || c64.A%0x101 != 0 {
				return nil, false
			}
			c := color.NRGBA{R: uint8(c64.R >> 8), G: uint8(c64.G >> 8), B: uint8(c64.B >> 8), A: uint8(c64.A >> 8)}
			i, ok := index[c]
			if !ok {
				if len(pal) == 256 {
					return nil, false
				}
				i = uint8(len(pal))
				index[c] = i
				pal = append(pal, c)
			}
			indices = append(indices, i)
		}
	}

	p := image.NewPaletted(b, pal)
	n := 0
	for y := 0; y < b.Dy(); y++ {
		copy(p.Pix[y*p.Stride:y*p.Stride+b.Dx()], indices[n:n+b.Dx()])
		n += b.Dx()
	}
	return p, true
}
