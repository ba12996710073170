package convert

import (
	"image"
	"image/color"
	"image/color/palette"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		img  image.Image
		want Depth
	}{
		{"rgba", image.NewRGBA(image.Rect(0, 0, 1, 1)), Depth8},
		{"nrgba", image.NewNRGBA(image.Rect(0, 0, 1, 1)), Depth8},
		{"gray", image.NewGray(image.Rect(0, 0, 1, 1)), Depth8},
		{"ycbcr", image.NewYCbCr(image.Rect(0, 0, 1, 1), image.YCbCrSubsampleRatio420), Depth8},
		{"rgba64", image.NewRGBA64(image.Rect(0, 0, 1, 1)), Depth16},
		{"nrgba64", image.NewNRGBA64(image.Rect(0, 0, 1, 1)), Depth16},
		{"gray16", image.NewGray16(image.Rect(0, 0, 1, 1)), Depth16},
		{"paletted", image.NewPaletted(image.Rect(0, 0, 1, 1), palette.WebSafe), DepthUnsupported},
		{"cmyk", image.NewCMYK(image.Rect(0, 0, 1, 1)), DepthUnsupported},
	}
	for _, tc := range cases {
		if got := Classify(tc.img.ColorModel()); got != tc.want {
			t.Fatalf("%s: got %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestClassifyCustomModel(t *testing.T) {
	custom := color.ModelFunc(func(c color.Color) color.Color { return c })
	if got := Classify(custom); got != DepthUnsupported {
		t.Fatalf("expected unsupported, got %s", got)
	}
}
