package game

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
)

// Outcome is the committed face of a single flip.
type Outcome int

const (
	Heads Outcome = iota
	Tails
)

var ErrUnknownOutcome = errors.New("unknown outcome")

func (o Outcome) String() string {
	switch o {
	case Heads:
		return "heads"
	case Tails:
		return "tails"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Label returns the glyph shown on the result banner.
func (o Outcome) Label() string {
	if o == Tails {
		return "裏"
	}
	return "表"
}

func (o Outcome) MarshalText() ([]byte, error) {
	if o != Heads && o != Tails {
		return nil, ErrUnknownOutcome
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// ParseOutcome accepts "heads"/"tails" as stored in the history tables.
func ParseOutcome(s string) (Outcome, error) {
	switch s {
	case "heads":
		return Heads, nil
	case "tails":
		return Tails, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
	}
}

// Source is the randomness used for a flip. *math/rand.Rand satisfies it,
// which is what tests and replays use.
type Source interface {
	Intn(n int) int
	Float64() float64
}

// CryptoSource draws from crypto/rand.
type CryptoSource struct{}

var float53 = big.NewInt(1 << 53)

func (CryptoSource) Intn(n int) int {
	// crypto/rand does not fail on supported platforms
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}
	return int(v.Int64())
}

func (CryptoSource) Float64() float64 {
	v, err := rand.Int(rand.Reader, float53)
	if err != nil {
		panic(err)
	}
	return float64(v.Int64()) / (1 << 53)
}

// SelectOutcome performs the fair 50/50 toss. It must run before the
// trajectory is parameterised so the trajectory follows the outcome.
func SelectOutcome(src Source) Outcome {
	if src.Intn(2) == 0 {
		return Heads
	}
	return Tails
}

// ComputeFinalRotation returns the resting spin angle for outcome: whole
// turns of the spin, plus a half turn for tails.
// floor(spinCount) equals floor(spinCount*2π / 2π) without the rounding of
// the intermediate product.
func ComputeFinalRotation(outcome Outcome, spinCount float64) float64 {
	final := math.Floor(spinCount) * 2 * math.Pi
	if outcome == Tails {
		final += math.Pi
	}
	return final
}

// NearestFinalRotation returns the angle congruent to the outcome's face
// that lies closest to reached, so the landing snap never exceeds a half turn.
func NearestFinalRotation(outcome Outcome, reached float64) float64 {
	offset := 0.0
	if outcome == Tails {
		offset = math.Pi
	}
	turns := math.Round((reached - offset) / (2 * math.Pi))
	return turns*2*math.Pi + offset
}

// MaxSnap is the absolute rotation the correction segment has to cover.
func MaxSnap(reached, final float64) float64 {
	return math.Abs(final - reached)
}

// FaceUp reports which face an X rotation shows when the coin lies flat.
func FaceUp(rotation float64) Outcome {
	r := math.Mod(rotation, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	if r > math.Pi/2 && r < 3*math.Pi/2 {
		return Tails
	}
	return Heads
}
