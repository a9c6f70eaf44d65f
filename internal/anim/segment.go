package anim

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Property names an animatable 3-component field on the target.
type Property string

// Axes selects which components of a property a segment writes.
type Axes uint8

const (
	X Axes = 1 << iota
	Y
	Z
	XYZ = X | Y | Z
)

func (a Axes) Has(axis int) bool {
	return a&(1<<axis) != 0
}

func (a Axes) String() string {
	var b strings.Builder
	for i, n := range "xyz" {
		if a.Has(i) {
			b.WriteRune(n)
		}
	}
	return b.String()
}

func (a Axes) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Axes) UnmarshalText(b []byte) error {
	var v Axes
	for _, r := range string(b) {
		switch r {
		case 'x':
			v |= X
		case 'y':
			v |= Y
		case 'z':
			v |= Z
		default:
			return fmt.Errorf("anim: bad axis %q", r)
		}
	}
	*a = v
	return nil
}

var (
	ErrNegativeStart    = errors.New("anim: segment start must not be negative")
	ErrNegativeDuration = errors.New("anim: segment duration must not be negative")
	ErrNoAxes           = errors.New("anim: segment writes no axes")
	ErrUnknownEase      = errors.New("anim: unknown ease")
	ErrNoProperty       = errors.New("anim: segment has no property")
)

// Segment is one timed property transition. Times are seconds from the
// timeline origin. The starting value is taken from the target the first
// time the segment becomes active.
type Segment struct {
	Property   Property   `json:"property"`
	Axes       Axes       `json:"axes"`
	Start      float64    `json:"start"`
	Duration   float64    `json:"duration"`
	Ease       Ease       `json:"ease"`
	End        mgl64.Vec3 `json:"end"`
	OnComplete string     `json:"on_complete,omitempty"`
}

func (s Segment) EndTime() float64 {
	return s.Start + s.Duration
}

func (s Segment) Validate() error {
	switch {
	case s.Property == "":
		return ErrNoProperty
	case s.Start < 0:
		return ErrNegativeStart
	case s.Duration < 0:
		return ErrNegativeDuration
	case s.Axes&XYZ == 0:
		return ErrNoAxes
	case !s.Ease.Valid():
		return fmt.Errorf("%w %q", ErrUnknownEase, string(s.Ease))
	}
	return nil
}

// progress is the raw (un-eased) completion fraction at t.
func (s Segment) progress(t float64) float64 {
	if s.Duration <= 0 {
		return 1
	}
	p := (t - s.Start) / s.Duration
	return mgl64.Clamp(p, 0, 1)
}

// value interpolates from towards End on the selected axes.
func (s Segment) value(from mgl64.Vec3, t float64) mgl64.Vec3 {
	eased := s.Ease.At(s.progress(t))
	out := from
	for i := 0; i < 3; i++ {
		if s.Axes.Has(i) {
			out[i] = lerp(from[i], s.End[i], eased)
		}
	}
	return out
}

// Cue is a scheduled callback, identified by name rather than a closure.
type Cue struct {
	Name string  `json:"name"`
	At   float64 `json:"at"`
}

// Event is a fired cue or segment completion.
type Event struct {
	Name string
	At   float64
}
