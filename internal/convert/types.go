package convert

import (
	"context"
	"errors"
	"image"

	"github.com/spf13/afero"

	"xlpress/internal/workpool"
)

var (
	ErrDecode              = errors.New("decode failed")
	ErrEncode              = errors.New("encode failed")
	ErrWrite               = errors.New("write failed")
	ErrOptimize            = errors.New("optimize failed")
	ErrMalformedBuffer     = errors.New("malformed sample buffer")
	ErrUnsupportedChannels = errors.New("unsupported channel count")

	// ErrUnsupportedColorModel never reaches an Outcome; unsupported models
	// are passed through with ReasonUnsupported.
	ErrUnsupportedColorModel = errors.New("unsupported color model")
)

type Status int

const (
	StatusFailed Status = iota
	StatusWritten
	StatusSkippedFallback
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusSkippedFallback:
		return "skipped"
	default:
		return "failed"
	}
}

type Reason int

const (
	ReasonNone Reason = iota
	ReasonUnsupported
	ReasonNotSmaller
)

// Outcome is the result of converting one file. FinalSize and OutputPath
// describe the file that landed in the output directory and are zero when
// nothing was written.
type Outcome struct {
	Source       string
	OutputPath   string
	Status       Status
	Reason       Reason
	OriginalSize int64
	FinalSize    int64
	Optimized    bool
	Err          error
}

// Samples is a flattened row-major, channel-interleaved RGB raster. Exactly
// one of U8 and U16 is set, matching Depth.
type Samples struct {
	Width  int
	Height int
	Depth  Depth
	U8     []uint8
	U16    []uint16
}

// RasterDecoder turns source file bytes into an image, guessing the format
// from content.
type RasterDecoder interface {
	Decode(data []byte) (image.Image, string, error)
}

type Encoder interface {
	Encode(ctx context.Context, cfg EncoderConfig, samples Samples, pool *workpool.Pool) ([]byte, error)
}

type Decoder interface {
	Decode(ctx context.Context, data []byte, pool *workpool.Pool) (SampleBuffer, error)
}

// Optimizer losslessly recompresses the raster at src into dst. preset follows
// the usual 0 (fastest) to 6 (smallest) scale.
type Optimizer interface {
	Optimize(fsys afero.Fs, src, dst string, preset int) error
}
