package convert

import (
	"fmt"
	"strconv"
	"strings"
)

// Tier is an encoder speed preset. Lower tiers encode faster, higher tiers
// compress harder. The numeric value is the encoder effort.
type Tier int

const (
	TierLightning Tier = iota + 1
	TierThunder
	TierFalcon
	TierCheetah
	TierHare
	TierWombat
	TierSquirrel
	TierKitten
	TierTortoise
	TierGlacier
)

// DefaultTier is used for missing or unknown effort values.
const DefaultTier = TierSquirrel

const (
	DefaultEffort  = int(DefaultTier)
	DefaultQuality = float32(2.0)
	MaxQuality     = float32(15.0)
)

var tierNames = [...]string{
	TierLightning: "lightning",
	TierThunder:   "thunder",
	TierFalcon:    "falcon",
	TierCheetah:   "cheetah",
	TierHare:      "hare",
	TierWombat:    "wombat",
	TierSquirrel:  "squirrel",
	TierKitten:    "kitten",
	TierTortoise:  "tortoise",
	TierGlacier:   "glacier",
}

func (t Tier) String() string {
	if t < TierLightning || t > TierGlacier {
		return "unknown"
	}
	return tierNames[t]
}

// TierForEffort maps an effort level in 1..10 to its tier; anything else
// resolves to DefaultTier.
func TierForEffort(effort int) Tier {
	t := Tier(effort)
	if t < TierLightning || t > TierGlacier {
		return DefaultTier
	}
	return t
}

// ParseEffort accepts a number or a tier name. Empty and unrecognised input
// resolves to DefaultTier.
func ParseEffort(s string) Tier {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultTier
	}
	if n, err := strconv.Atoi(s); err == nil {
		return TierForEffort(n)
	}
	for t := TierLightning; t <= TierGlacier; t++ {
		if tierNames[t] == s {
			return t
		}
	}
	return DefaultTier
}

// Request carries the user-facing knobs for a batch.
//
// Quality is a distance, not a score: 0.0 is visually lossless and larger
// values trade fidelity for size, up to MaxQuality. It is ignored when Lossy
// is false.
type Request struct {
	Effort  int
	Quality float32
	Lossy   bool
}

func DefaultRequest() Request {
	return Request{Effort: DefaultEffort, Quality: DefaultQuality, Lossy: true}
}

// Validate reports quality values outside [0, MaxQuality]. Effort is never
// invalid; it falls back to DefaultTier.
func (r Request) Validate() error {
	if !r.Lossy {
		return nil
	}
	if !(r.Quality >= 0 && r.Quality <= MaxQuality) {
		return fmt.Errorf("quality %.2f out of range [0, %.1f]", r.Quality, MaxQuality)
	}
	return nil
}

// EncoderConfig is the resolved encoder configuration. Quality keeps the
// distance scale of Request.
type EncoderConfig struct {
	Quality            float32
	Speed              Tier
	Lossless           bool
	UseOriginalProfile bool
}

// Resolve builds the encoder configuration for r. It performs no I/O.
func Resolve(r Request) EncoderConfig {
	cfg := EncoderConfig{Speed: TierForEffort(r.Effort)}
	if !r.Lossy {
		cfg.Lossless = true
		cfg.UseOriginalProfile = true
		return cfg
	}
	q := r.Quality
	if !(q >= 0) {
		q = 0
	}
	if q > MaxQuality {
		q = MaxQuality
	}
	cfg.Quality = q
	return cfg
}
