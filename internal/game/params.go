package game

import (
	"errors"
	"math"
	"time"
)

const (
	DefaultTotalDuration  = 3 * time.Second
	DefaultPeakHeight     = 6.0
	DefaultAscendFraction = 0.4
	DefaultSpinMin        = 8.0
	DefaultSpinMax        = 14.0
)

// SnapMode picks how the resting angle is derived from the spin.
type SnapMode string

const (
	SnapFloor   SnapMode = "floor"
	SnapNearest SnapMode = "nearest"
)

var (
	ErrInvalidDuration = errors.New("flip duration must be positive")
	ErrInvalidAscend   = errors.New("ascend fraction must be in (0, 1)")
	ErrInvalidSpin     = errors.New("spin range must satisfy 0 <= min < max")
	ErrInvalidSnapMode = errors.New("snap mode must be floor or nearest")
)

// Settings bound the per-flip parameters.
type Settings struct {
	TotalDuration  time.Duration
	PeakHeight     float64
	AscendFraction float64
	SpinMin        float64
	SpinMax        float64
	SnapMode       SnapMode
}

func DefaultSettings() Settings {
	return Settings{
		TotalDuration:  DefaultTotalDuration,
		PeakHeight:     DefaultPeakHeight,
		AscendFraction: DefaultAscendFraction,
		SpinMin:        DefaultSpinMin,
		SpinMax:        DefaultSpinMax,
		SnapMode:       SnapFloor,
	}
}

func (s Settings) Validate() error {
	if s.TotalDuration <= 0 {
		return ErrInvalidDuration
	}
	if s.AscendFraction <= 0 || s.AscendFraction >= 1 {
		return ErrInvalidAscend
	}
	if s.SpinMin < 0 || s.SpinMin >= s.SpinMax {
		return ErrInvalidSpin
	}
	if s.SnapMode != SnapFloor && s.SnapMode != SnapNearest {
		return ErrInvalidSnapMode
	}
	return nil
}

// FlipParameters are generated fresh for every flip. Durations are seconds.
type FlipParameters struct {
	TotalDuration  float64  `json:"total_duration"`
	PeakHeight     float64  `json:"peak_height"`
	SpinCount      float64  `json:"spin_count"`
	AscendFraction float64  `json:"ascend_fraction"`
	SnapMode       SnapMode `json:"snap_mode"`
}

// ComputeSpinCount draws uniformly from [DefaultSpinMin, DefaultSpinMax).
func ComputeSpinCount(src Source) float64 {
	return spinBetween(src, DefaultSpinMin, DefaultSpinMax)
}

func spinBetween(src Source, lo, hi float64) float64 {
	v := lo + src.Float64()*(hi-lo)
	// Float64 is in [0,1) but lo+x*(hi-lo) can round up to hi
	if v >= hi {
		v = math.Nextafter(hi, lo)
	}
	return v
}

// NewFlipParameters draws the randomised parts of a flip within s.
func (s Settings) NewFlipParameters(src Source) FlipParameters {
	return FlipParameters{
		TotalDuration:  s.TotalDuration.Seconds(),
		PeakHeight:     s.PeakHeight,
		SpinCount:      spinBetween(src, s.SpinMin, s.SpinMax),
		AscendFraction: s.AscendFraction,
		SnapMode:       s.SnapMode,
	}
}

// SpinRadians is the angle reached by the constant-velocity spin.
func (p FlipParameters) SpinRadians() float64 {
	return p.SpinCount * 2 * math.Pi
}

// FinalRotation resolves the resting angle for outcome under p.SnapMode.
func (p FlipParameters) FinalRotation(outcome Outcome) float64 {
	if p.SnapMode == SnapNearest {
		return NearestFinalRotation(outcome, p.SpinRadians())
	}
	return ComputeFinalRotation(outcome, p.SpinCount)
}
