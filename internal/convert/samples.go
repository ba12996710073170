package convert

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/x448/float16"

	"xlpress/internal/workpool"
)

type SampleKind int

const (
	KindUint8 SampleKind = iota
	KindUint16
	KindFloat32
	KindFloat16
)

func (k SampleKind) String() string {
	switch k {
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindFloat32:
		return "float32"
	case KindFloat16:
		return "float16"
	default:
		return "unknown"
	}
}

// SampleBuffer is a decoded raster as the codec hands it back. Kind selects
// which of the slices holds the interleaved samples; F16 holds raw IEEE 754
// half-precision bit patterns.
type SampleBuffer struct {
	Kind     SampleKind
	Channels int
	Width    int
	Height   int

	U8  []uint8
	U16 []uint16
	F32 []float32
	F16 []uint16
}

func (b SampleBuffer) sampleCount() int {
	switch b.Kind {
	case KindUint8:
		return len(b.U8)
	case KindUint16:
		return len(b.U16)
	case KindFloat32:
		return len(b.F32)
	case KindFloat16:
		return len(b.F16)
	default:
		return -1
	}
}

// Validate checks the channel layout and that the buffer holds exactly
// Width*Height*Channels samples.
func (b SampleBuffer) Validate() error {
	switch b.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, b.Channels)
	}
	if b.Width <= 0 || b.Height <= 0 || b.Width > math.MaxInt/b.Height/b.Channels {
		return fmt.Errorf("%w: %dx%d", ErrMalformedBuffer, b.Width, b.Height)
	}
	want := b.Width * b.Height * b.Channels
	got := b.sampleCount()
	if got < 0 {
		return fmt.Errorf("%w: unknown sample kind %d", ErrMalformedBuffer, int(b.Kind))
	}
	if got != want {
		return fmt.Errorf("%w: %s buffer has %d samples, want %d", ErrMalformedBuffer, b.Kind, got, want)
	}
	return nil
}

// sampleToByte reads sample i of b as an 8-bit value.
type sampleToByte func(i int) uint8

func (b SampleBuffer) byteReader() sampleToByte {
	switch b.Kind {
	case KindUint16:
		return func(i int) uint8 { return uint16ToByte(b.U16[i]) }
	case KindFloat32:
		return func(i int) uint8 { return floatToByte(b.F32[i]) }
	case KindFloat16:
		return func(i int) uint8 { return halfToByte(b.F16[i]) }
	default:
		return func(i int) uint8 { return b.U8[i] }
	}
}

func uint16ToByte(v uint16) uint8 {
	return uint8(v / 256)
}

// floatToByte expects samples normalised to [0, 1]; anything outside is
// clamped, NaN included.
func floatToByte(v float32) uint8 {
	s := v * 255
	if !(s > 0) {
		return 0
	}
	if s >= 255 {
		return 255
	}
	return uint8(s)
}

func halfToByte(bits uint16) uint8 {
	return floatToByte(float16.Frombits(bits).Float32())
}

// Normalize converts b to 8-bit interleaved RGB. Gray is broadcast to three
// channels and a fourth channel is dropped without compositing.
func Normalize(ctx context.Context, b SampleBuffer, pool *workpool.Pool) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	read := b.byteReader()
	ch := b.Channels
	out := make([]byte, b.Width*b.Height*3)
	err := pool.Rows(ctx, b.Height, func(y0, y1 int) error {
		for p := y0 * b.Width; p < y1*b.Width; p++ {
			src, dst := p*ch, p*3
			if ch == 1 {
				v := read(src)
				out[dst], out[dst+1], out[dst+2] = v, v, v
				continue
			}
			out[dst] = read(src)
			out[dst+1] = read(src + 1)
			out[dst+2] = read(src + 2)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RGBRaster is an opaque 8-bit RGB image.
type RGBRaster struct {
	Width  int
	Height int
	Pix    []byte
}

func NewRGBRaster(width, height int, pix []byte) (*RGBRaster, error) {
	if width <= 0 || height <= 0 || width > math.MaxInt/height/4 || len(pix) != width*height*3 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d RGB", ErrMalformedBuffer, len(pix), width, height)
	}
	return &RGBRaster{Width: width, Height: height, Pix: pix}, nil
}

// Image expands the raster into an opaque NRGBA image for the standard encoders.
func (r *RGBRaster) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, r.Width, r.Height))
	for p, q := 0, 0; p < len(r.Pix); p, q = p+3, q+4 {
		img.Pix[q] = r.Pix[p]
		img.Pix[q+1] = r.Pix[p+1]
		img.Pix[q+2] = r.Pix[p+2]
		img.Pix[q+3] = 0xff
	}
	return img
}
