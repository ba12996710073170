package convert

import (
	"math"
	"testing"
)

func TestTierForEffortFallsBackToDefault(t *testing.T) {
	for effort := 1; effort <= 10; effort++ {
		if got := TierForEffort(effort); int(got) != effort {
			t.Fatalf("effort %d resolved to %s", effort, got)
		}
	}
	for _, effort := range []int{-1, 0, 11, 99} {
		if got := TierForEffort(effort); got != DefaultTier {
			t.Fatalf("effort %d: expected %s, got %s", effort, DefaultTier, got)
		}
	}
}

func TestParseEffort(t *testing.T) {
	cases := map[string]Tier{
		"":         DefaultTier,
		"   ":      DefaultTier,
		"abc":      DefaultTier,
		"0":        DefaultTier,
		"42":       DefaultTier,
		"1.5":      DefaultTier,
		"1":        TierLightning,
		" 6 ":      TierWombat,
		"10":       TierGlacier,
		"kitten":   TierKitten,
		"Tortoise": TierTortoise,
	}
	for in, want := range cases {
		if got := ParseEffort(in); got != want {
			t.Fatalf("ParseEffort(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestResolveLosslessIgnoresQuality(t *testing.T) {
	cfg := Resolve(Request{Effort: 9, Quality: 0, Lossy: false})
	if !cfg.Lossless || !cfg.UseOriginalProfile {
		t.Fatalf("expected lossless with original profile, got %+v", cfg)
	}
	if cfg.Quality != 0 {
		t.Fatalf("lossless must not carry a quality, got %v", cfg.Quality)
	}
	if cfg.Speed != TierTortoise {
		t.Fatalf("expected tortoise, got %s", cfg.Speed)
	}

	other := Resolve(Request{Effort: 9, Quality: 7.5, Lossy: false})
	if other != cfg {
		t.Fatalf("quality leaked into lossless config: %+v vs %+v", other, cfg)
	}
}

func TestResolveLossy(t *testing.T) {
	cfg := Resolve(Request{Effort: 6, Quality: 1.5, Lossy: true})
	want := EncoderConfig{Quality: 1.5, Speed: TierWombat}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}

	if got := Resolve(Request{Quality: 40, Lossy: true}); got.Quality != MaxQuality || got.Speed != DefaultTier {
		t.Fatalf("expected clamp to max quality and default tier, got %+v", got)
	}
	if got := Resolve(Request{Quality: -3, Lossy: true}); got.Quality != 0 {
		t.Fatalf("expected clamp to 0, got %v", got.Quality)
	}
	if got := Resolve(Request{Quality: float32(math.NaN()), Lossy: true}); got.Quality != 0 {
		t.Fatalf("expected NaN to clamp to 0, got %v", got.Quality)
	}
}

func TestRequestValidate(t *testing.T) {
	if err := DefaultRequest().Validate(); err != nil {
		t.Fatalf("default request invalid: %v", err)
	}
	if err := (Request{Quality: 15.5, Lossy: true}).Validate(); err == nil {
		t.Fatal("expected out of range error")
	}
	if err := (Request{Quality: 15.5, Lossy: false}).Validate(); err != nil {
		t.Fatalf("lossless ignores quality: %v", err)
	}
	if err := (Request{Effort: 400, Quality: 0, Lossy: true}).Validate(); err != nil {
		t.Fatalf("effort never invalid: %v", err)
	}
}
