// Package convert holds the per-file conversion engine: raster to JPEG XL
// with a never-larger guarantee, and JPEG XL back to an optimized PNG.
package convert

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"

	"xlpress/internal/workpool"
)

const (
	TargetExt = ".jxl"
	RasterExt = ".png"

	DefaultOptimizePreset = 6
)

type Engine struct {
	fs        afero.Fs
	raster    RasterDecoder
	encoder   Encoder
	decoder   Decoder
	optimizer Optimizer
	pool      *workpool.Pool
	logger    *log.Logger
	preset    int
}

type Option func(*Engine)

func WithRasterDecoder(d RasterDecoder) Option { return func(e *Engine) { e.raster = d } }
func WithEncoder(enc Encoder) Option           { return func(e *Engine) { e.encoder = enc } }
func WithDecoder(dec Decoder) Option           { return func(e *Engine) { e.decoder = dec } }
func WithOptimizer(o Optimizer) Option         { return func(e *Engine) { e.optimizer = o } }
func WithPool(p *workpool.Pool) Option         { return func(e *Engine) { e.pool = p } }
func WithLogger(l *log.Logger) Option          { return func(e *Engine) { e.logger = l } }

// WithOptimizePreset sets the re-optimizer level used after decoding.
func WithOptimizePreset(preset int) Option {
	return func(e *Engine) { e.preset = preset }
}

// New builds an engine over fsys. Collaborators that are not supplied leave
// the corresponding direction unusable: Compress needs a raster decoder and
// an encoder, Decompress needs a decoder.
func New(fsys afero.Fs, opts ...Option) *Engine {
	e := &Engine{
		fs:     fsys,
		pool:   workpool.New(0),
		logger: log.New(io.Discard),
		preset: DefaultOptimizePreset,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compress converts src into outDir. Errors are reported on the outcome and
// never escape the file being converted.
func (e *Engine) Compress(ctx context.Context, src, outDir string, req Request) Outcome {
	out := Outcome{Source: src}
	logger := e.logger.With("file", filepath.Base(src))

	data, err := afero.ReadFile(e.fs, src)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrDecode, err))
	}
	out.OriginalSize = int64(len(data))

	if e.raster == nil || e.encoder == nil {
		return failed(out, fmt.Errorf("%w: engine has no encoder configured", ErrEncode))
	}

	img, format, err := e.raster.Decode(data)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrDecode, err))
	}

	depth := Classify(img.ColorModel())
	if depth == DepthUnsupported {
		logger.Debug("passing through", "format", format)
		return e.copyOriginal(out, data, outDir, ReasonUnsupported)
	}

	cfg := Resolve(req)
	samples, err := Flatten(ctx, img, depth, e.pool)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrEncode, err))
	}

	artifact, err := e.encoder.Encode(ctx, cfg, samples, e.pool)
	if err != nil {
		return failed(out, fmt.Errorf("%w: %w", ErrEncode, err))
	}
	logger.Debug("encoded", "format", format, "depth", depth, "speed", cfg.Speed,
		"lossless", cfg.Lossless, "original", out.OriginalSize, "encoded", len(artifact))

	if int64(len(artifact)) >= out.OriginalSize {
		return e.copyOriginal(out, data, outDir, ReasonNotSmaller)
	}

	dest := filepath.Join(outDir, Stem(src)+TargetExt)
	if err := e.writeFile(dest, artifact); err != nil {
		return failed(out, err)
	}
	out.Status = StatusWritten
	out.OutputPath = dest
	out.FinalSize = int64(len(artifact))
	return out
}

func (e *Engine) copyOriginal(out Outcome, data []byte, outDir string, reason Reason) Outcome {
	dest := filepath.Join(outDir, filepath.Base(out.Source))
	if err := e.writeFile(dest, data); err != nil {
		return failed(out, err)
	}
	out.Status = StatusSkippedFallback
	out.Reason = reason
	out.OutputPath = dest
	out.FinalSize = int64(len(data))
	return out
}

func (e *Engine) writeFile(path string, data []byte) error {
	if err := afero.WriteFile(e.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

func failed(out Outcome, err error) Outcome {
	out.Status = StatusFailed
	out.Err = err
	out.OutputPath = ""
	out.FinalSize = 0
	return out
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Flatten writes img as row-major, channel-interleaved RGB samples of the
// given depth. Alpha is discarded.
func Flatten(ctx context.Context, img image.Image, depth Depth, pool *workpool.Pool) (Samples, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	s := Samples{Width: w, Height: h, Depth: depth}

	switch depth {
	case Depth8:
		s.U8 = make([]uint8, w*h*3)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			flattenRows8(img, s.U8, y0, y1)
			return nil
		})
		return s, err
	case Depth16:
		s.U16 = make([]uint16, w*h*3)
		err := pool.Rows(ctx, h, func(y0, y1 int) error {
			flattenRows16(img, s.U16, y0, y1)
			return nil
		})
		return s, err
	default:
		return s, ErrUnsupportedColorModel
	}
}

func flattenRows8(img image.Image, dst []uint8, y0, y1 int) {
	b := img.Bounds()
	w := b.Dx()
	if src, ok := img.(*image.NRGBA); ok {
		for y := y0; y < y1; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			i := y * w * 3
			for x := 0; x < w; x++ {
				dst[i], dst[i+1], dst[i+2] = row[x*4], row[x*4+1], row[x*4+2]
				i += 3
			}
		}
		return
	}
	for y := y0; y < y1; y++ {
		i := y * w * 3
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst[i], dst[i+1], dst[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
}

func flattenRows16(img image.Image, dst []uint16, y0, y1 int) {
	b := img.Bounds()
	w := b.Dx()
	for y := y0; y < y1; y++ {
		i := y * w * 3
		for x := 0; x < w; x++ {
			c := color.NRGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA64)
			dst[i], dst[i+1], dst[i+2] = c.R, c.G, c.B
			i += 3
		}
	}
}
