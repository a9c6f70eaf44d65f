package anim

import (
	"fmt"
	"math"
)

// Ease names an easing curve using the tweening vocabulary browser clients
// already speak, so a serialised timeline can be replayed there unchanged.
type Ease string

const (
	Linear      Ease = "none"
	Power2In    Ease = "power2.in"
	Power2Out   Ease = "power2.out"
	Power2InOut Ease = "power2.inOut"
	BounceOut   Ease = "bounce.out"
)

var easeFuncs = map[Ease]func(float64) float64{
	Linear:      func(p float64) float64 { return p },
	Power2In:    func(p float64) float64 { return p * p * p },
	Power2Out:   func(p float64) float64 { q := 1 - p; return 1 - q*q*q },
	Power2InOut: power2InOut,
	BounceOut:   bounceOut,
}

func power2InOut(p float64) float64 {
	if p < 0.5 {
		return 4 * p * p * p
	}
	q := 2 * (1 - p)
	return 1 - q*q*q/2
}

func bounceOut(p float64) float64 {
	const n1, d1 = 7.5625, 2.75
	switch {
	case p < 1/d1:
		return n1 * p * p
	case p < 2/d1:
		p -= 1.5 / d1
		return n1*p*p + 0.75
	case p < 2.5/d1:
		p -= 2.25 / d1
		return n1*p*p + 0.9375
	default:
		p -= 2.625 / d1
		return n1*p*p + 0.984375
	}
}

func (e Ease) Valid() bool {
	_, ok := easeFuncs[e]
	return ok
}

// At evaluates the curve at progress p, clamped to [0, 1]. The end points
// are exact so a finished tween lands on its target value.
func (e Ease) At(p float64) float64 {
	if p <= 0 {
		return 0
	}
	if p >= 1 {
		return 1
	}
	f, ok := easeFuncs[e]
	if !ok {
		panic(fmt.Sprintf("anim: unknown ease %q", string(e)))
	}
	return f(p)
}

// lerp interpolates one component; at eased progress 1 it returns to exactly.
func lerp(from, to, eased float64) float64 {
	if eased == 1 {
		return to
	}
	if math.IsNaN(eased) {
		return from
	}
	return from + (to-from)*eased
}
