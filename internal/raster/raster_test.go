package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"image/png"
	"testing"

	"golang.org/x/image/bmp"
)

func TestDecodeGuessesFormatFromContent(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 255})

	var pngBuf, bmpBuf bytes.Buffer
	if err := png.Encode(&pngBuf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	if err := bmp.Encode(&bmpBuf, img); err != nil {
		t.Fatalf("bmp encode: %v", err)
	}

	for want, data := range map[string][]byte{"png": pngBuf.Bytes(), "bmp": bmpBuf.Bytes()} {
		got, format, err := New().Decode(data)
		if err != nil {
			t.Fatalf("%s: decode: %v", want, err)
		}
		if format != want {
			t.Fatalf("expected format %s, got %s", want, format)
		}
		if got.Bounds().Dx() != 4 || got.Bounds().Dy() != 3 {
			t.Fatalf("%s: unexpected bounds %v", want, got.Bounds())
		}
	}
}

func TestDecodeConfigReportsPalette(t *testing.T) {
	img := image.NewPaletted(image.Rect(0, 0, 2, 2), palette.Plan9)
	var buf bytes.Buffer
	if err := gif.Encode(&buf, img, nil); err != nil {
		t.Fatalf("gif encode: %v", err)
	}

	cfg, format, err := DecodeConfig(buf.Bytes())
	if err != nil {
		t.Fatalf("decode config: %v", err)
	}
	if format != "gif" {
		t.Fatalf("expected gif, got %s", format)
	}
	if _, ok := cfg.ColorModel.(color.Palette); !ok {
		t.Fatalf("expected palette model, got %T", cfg.ColorModel)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, _, err := New().Decode([]byte("not an image at all")); err == nil {
		t.Fatal("expected error")
	}
}
