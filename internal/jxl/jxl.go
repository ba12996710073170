// Package jxl adapts github.com/gen2brain/jpegxl to the encoder and decoder
// contracts of the conversion engine.
package jxl

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gen2brain/jpegxl"

	"xlpress/internal/convert"
	"xlpress/internal/workpool"
)

// losslessQuality is the library's quality value that switches to modular
// lossless coding.
const losslessQuality = 100

type Codec struct{}

func New() Codec {
	return Codec{}
}

func (Codec) Encode(ctx context.Context, cfg convert.EncoderConfig, s convert.Samples, pool *workpool.Pool) ([]byte, error) {
	img, err := samplesImage(ctx, s, pool)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := jpegxl.Options{
		Quality: QualityForDistance(cfg.Quality),
		Effort:  int(cfg.Speed),
	}
	if cfg.Lossless {
		opts.Quality = losslessQuality
	}

	var buf bytes.Buffer
	if err := jpegxl.Encode(&buf, img, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// QualityForDistance converts a butteraugli distance to the library's 0..100
// quality scale by inverting libjxl's quality-to-distance curve. The result
// stays below the lossless threshold.
func QualityForDistance(d float32) int {
	dist := float64(d)
	var q float64
	switch {
	case dist <= 0.1:
		q = 100
	case dist <= 6.4:
		q = 100 - (dist-0.1)/0.09
	case dist < 25:
		const a = 53.0 / 3000.0
		disc := 1.15*1.15 - 4*a*(25-dist)
		q = (1.15 - math.Sqrt(math.Max(disc, 0))) / (2 * a)
	default:
		q = 0
	}
	return int(math.Max(0, math.Min(losslessQuality-1, math.Round(q))))
}

func samplesImage(ctx context.Context, s convert.Samples, pool *workpool.Pool) (image.Image, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return nil, fmt.Errorf("empty raster %dx%d", s.Width, s.Height)
	}
	rect := image.Rect(0, 0, s.Width, s.Height)
	n := s.Width * s.Height * 3

	switch s.Depth {
	case convert.Depth8:
		if len(s.U8) != n {
			return nil, fmt.Errorf("%w: %d samples for %dx%d", convert.ErrMalformedBuffer, len(s.U8), s.Width, s.Height)
		}
		img := image.NewNRGBA(rect)
		err := pool.Rows(ctx, s.Height, func(y0, y1 int) error {
			for p := y0 * s.Width; p < y1*s.Width; p++ {
				img.Pix[p*4] = s.U8[p*3]
				img.Pix[p*4+1] = s.U8[p*3+1]
				img.Pix[p*4+2] = s.U8[p*3+2]
				img.Pix[p*4+3] = 0xff
			}
			return nil
		})
		return img, err
	case convert.Depth16:
		if len(s.U16) != n {
			return nil, fmt.Errorf("%w: %d samples for %dx%d", convert.ErrMalformedBuffer, len(s.U16), s.Width, s.Height)
		}
		img := image.NewNRGBA64(rect)
		err := pool.Rows(ctx, s.Height, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				for x := 0; x < s.Width; x++ {
					i := (y*s.Width + x) * 3
					img.SetNRGBA64(x, y, color.NRGBA64{R: s.U16[i], G: s.U16[i+1], B: s.U16[i+2], A: 0xffff})
				}
			}
			return nil
		})
		return img, err
	default:
		return nil, fmt.Errorf("unsupported sample depth %s", s.Depth)
	}
}

func (Codec) Decode(ctx context.Context, data []byte, pool *workpool.Pool) (convert.SampleBuffer, error) {
	img, err := jpegxl.Decode(bytes.NewReader(data))
	if err != nil {
		return convert.SampleBuffer{}, err
	}
	return sampleBuffer(ctx, img, pool)
}

// DecodeConfig reads the dimensions and color model of a JPEG XL file
// without decoding pixels.
func DecodeConfig(data []byte) (image.Config, error) {
	return jpegxl.DecodeConfig(bytes.NewReader(data))
}

// sampleBuffer exposes the decoded pixels without reinterpreting them. The
// library hands back gray, straight-alpha and 16-bit variants; anything else
// is converted to straight 8-bit RGBA first.
func sampleBuffer(ctx context.Context, img image.Image, pool *workpool.Pool) (convert.SampleBuffer, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	buf := convert.SampleBuffer{Width: w, Height: h}

	switch m := img.(type) {
	case *image.Gray:
		buf.Kind, buf.Channels = convert.KindUint8, 1
		buf.U8 = make([]uint8, w*h)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				copy(buf.U8[y*w:(y+1)*w], m.Pix[m.PixOffset(b.Min.X, b.Min.Y+y):])
			}
			return nil
		})
		return buf, err
	case *image.Gray16:
		buf.Kind, buf.Channels = convert.KindUint16, 1
		buf.U16 = make([]uint16, w*h)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					buf.U16[y*w+x] = m.Gray16At(b.Min.X+x, b.Min.Y+y).Y
				}
			}
			return nil
		})
		return buf, err
	case *image.NRGBA64:
		buf.Kind, buf.Channels = convert.KindUint16, 4
		buf.U16 = make([]uint16, w*h*4)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					c := m.NRGBA64At(b.Min.X+x, b.Min.Y+y)
					i := (y*w + x) * 4
					buf.U16[i], buf.U16[i+1], buf.U16[i+2], buf.U16[i+3] = c.R, c.G, c.B, c.A
				}
			}
			return nil
		})
		return buf, err
	case *image.RGBA64:
		buf.Kind, buf.Channels = convert.KindUint16, 4
		buf.U16 = make([]uint16, w*h*4)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			for y := y0; y < y1; y++ {
				for x := 0; x < w; x++ {
					c := color.NRGBA64Model.Convert(m.RGBA64At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
					i := (y*w + x) * 4
					buf.U16[i], buf.U16[i+1], buf.U16[i+2], buf.U16[i+3] = c.R, c.G, c.B, c.A
				}
			}
			return nil
		})
		return buf, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok {
		nrgba = image.NewNRGBA(image.Rect(0, 0, w, h))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
		b = nrgba.Bounds()
	}
	buf.Kind, buf.Channels = convert.KindUint8, 4
	buf.U8 = make([]uint8, w*h*4)
	err := pool.Rows(ctx, h, func(y0, y1 int) error {
		for y := y0; y < y1; y++ {
			off := nrgba.PixOffset(b.Min.X, b.Min.Y+y)
			copy(buf.U8[y*w*4:(y+1)*w*4], nrgba.Pix[off:off+w*4])
		}
		return nil
	})
	return buf, err
}
