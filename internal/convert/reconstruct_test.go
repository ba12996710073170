package convert

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"xlpress/internal/workpool"
)

type fakeDecoder struct {
	buf SampleBuffer
	err error
}

func (f fakeDecoder) Decode(context.Context, []byte, *workpool.Pool) (SampleBuffer, error) {
	return f.buf, f.err
}

type copyOptimizer struct {
	err    error
	preset int
}

func (o *copyOptimizer) Optimize(fsys afero.Fs, src, dst string, preset int) error {
	o.preset = preset
	if o.err != nil {
		return o.err
	}
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, dst, data, 0o644)
}

func decodeEngine(t *testing.T, dec Decoder, opt Optimizer) (*Engine, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	writeSource(t, fsys, "/in/pic.jxl", []byte("jxl bytes"))
	e := New(fsys, WithDecoder(dec), WithOptimizer(opt), WithPool(workpool.New(2)), WithOptimizePreset(4))
	return e, fsys
}

func assertNoTemps(t *testing.T, fsys afero.Fs) {
	t.Helper()
	entries, err := afero.ReadDir(fsys, "/out")
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "xlpress-") {
			t.Fatalf("intermediate left behind: %s", entry.Name())
		}
	}
}

func readPNGPixels(t *testing.T, fsys afero.Fs, path string) (int, int, []byte) {
	t.Helper()
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	b := img.Bounds()
	var rgb []byte
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			if a != 0xffff {
				t.Fatalf("output must be opaque, pixel (%d,%d) alpha %d", x, y, a)
			}
			rgb = append(rgb, byte(r>>8), byte(g>>8), byte(bl>>8))
		}
	}
	return b.Dx(), b.Dy(), rgb
}

func TestDecompressRGBADropsAlpha(t *testing.T) {
	buf := SampleBuffer{
		Kind: KindUint8, Channels: 4, Width: 2, Height: 1,
		U8: []uint8{200, 100, 50, 0, 1, 2, 3, 77},
	}
	opt := &copyOptimizer{}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, opt)

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusWritten || !out.Optimized || out.OutputPath != "/out/pic.png" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if opt.preset != 4 {
		t.Fatalf("optimizer got preset %d", opt.preset)
	}
	w, h, rgb := readPNGPixels(t, fsys, "/out/pic.png")
	if w != 2 || h != 1 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	if !bytes.Equal(rgb, []byte{200, 100, 50, 1, 2, 3}) {
		t.Fatalf("unexpected pixels %v", rgb)
	}
	info, _ := fsys.Stat("/out/pic.png")
	if out.FinalSize != info.Size() || out.OriginalSize != int64(len("jxl bytes")) {
		t.Fatalf("unexpected sizes %+v", out)
	}
	assertNoTemps(t, fsys)
}

func TestDecompressGrayBroadcasts(t *testing.T) {
	buf := SampleBuffer{Kind: KindUint16, Channels: 1, Width: 2, Height: 2, U16: []uint16{0, 0x1000, 0x8000, 0xffff}}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, &copyOptimizer{})

	if out := e.Decompress(context.Background(), "/in/pic.jxl", "/out"); out.Status != StatusWritten {
		t.Fatalf("unexpected outcome %+v", out)
	}
	_, _, rgb := readPNGPixels(t, fsys, "/out/pic.png")
	want := []byte{0, 0, 0, 0x10, 0x10, 0x10, 0x80, 0x80, 0x80, 0xff, 0xff, 0xff}
	if !bytes.Equal(rgb, want) {
		t.Fatalf("got %v, want %v", rgb, want)
	}
}

func TestDecompressOptimizerFailureKeepsIntermediate(t *testing.T) {
	buf := SampleBuffer{Kind: KindFloat32, Channels: 3, Width: 1, Height: 1, F32: []float32{1, 0.5, 0}}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, &copyOptimizer{err: errors.New("optimizer crashed")})

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusWritten || out.Optimized || out.Err != nil {
		t.Fatalf("expected unoptimized output, got %+v", out)
	}
	_, _, rgb := readPNGPixels(t, fsys, "/out/pic.png")
	if !bytes.Equal(rgb, []byte{255, 127, 0}) {
		t.Fatalf("unexpected pixels %v", rgb)
	}
	assertNoTemps(t, fsys)
}

func TestDecompressWithoutOptimizerStillWrites(t *testing.T) {
	buf := SampleBuffer{Kind: KindUint8, Channels: 3, Width: 1, Height: 1, U8: []uint8{9, 8, 7}}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, nil)

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusWritten || out.Optimized {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if exists, _ := afero.Exists(fsys, "/out/pic.png"); !exists {
		t.Fatal("expected output file")
	}
}

func TestDecompressMalformedBuffer(t *testing.T) {
	buf := SampleBuffer{Kind: KindUint8, Channels: 3, Width: 4, Height: 4, U8: make([]uint8, 47)}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, &copyOptimizer{})

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusFailed || !errors.Is(out.Err, ErrMalformedBuffer) {
		t.Fatalf("expected malformed buffer failure, got %+v", out)
	}
	if exists, _ := afero.Exists(fsys, "/out/pic.png"); exists {
		t.Fatal("no output expected for a malformed buffer")
	}
	assertNoTemps(t, fsys)
}

func TestDecompressRejectsWrappingDimensions(t *testing.T) {
	buf := SampleBuffer{Kind: KindUint8, Channels: 1, Width: wrapDim, Height: wrapDim}
	e, fsys := decodeEngine(t, fakeDecoder{buf: buf}, &copyOptimizer{})

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusFailed || !errors.Is(out.Err, ErrMalformedBuffer) {
		t.Fatalf("expected malformed buffer failure, got %+v", out)
	}
	assertNoTemps(t, fsys)
}

func TestDecompressUnsupportedChannels(t *testing.T) {
	buf := SampleBuffer{Kind: KindUint8, Channels: 2, Width: 1, Height: 1, U8: []uint8{1, 2}}
	e, _ := decodeEngine(t, fakeDecoder{buf: buf}, &copyOptimizer{})

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusFailed || !errors.Is(out.Err, ErrUnsupportedChannels) {
		t.Fatalf("expected unsupported channels, got %+v", out)
	}
}

func TestDecompressDecodeFailure(t *testing.T) {
	e, _ := decodeEngine(t, fakeDecoder{err: errors.New("bad codestream")}, &copyOptimizer{})

	out := e.Decompress(context.Background(), "/in/pic.jxl", "/out")
	if out.Status != StatusFailed || !errors.Is(out.Err, ErrDecode) {
		t.Fatalf("expected decode failure, got %+v", out)
	}
}
