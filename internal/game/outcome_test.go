package game

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func faceResidue(rotation float64) float64 {
	r := math.Mod(rotation, 2*math.Pi)
	if r < 0 {
		r += 2 * math.Pi
	}
	return r
}

func TestComputeFinalRotationInvariant(t *testing.T) {
	src := rand.New(rand.NewSource(7))
	spins := []float64{0, 0.5, 1, 8, 8.5, 9.999999, 10, 13.75, 14}
	for i := 0; i < 500; i++ {
		spins = append(spins, src.Float64()*20)
	}

	for _, spin := range spins {
		heads := faceResidue(ComputeFinalRotation(Heads, spin))
		if heads > 1e-9 && 2*math.Pi-heads > 1e-9 {
			t.Fatalf("heads spin=%v: residue %v, want 0", spin, heads)
		}
		tails := faceResidue(ComputeFinalRotation(Tails, spin))
		if math.Abs(tails-math.Pi) > 1e-9 {
			t.Fatalf("tails spin=%v: residue %v, want π", spin, tails)
		}
	}
}

func TestComputeFinalRotationScenarios(t *testing.T) {
	cases := []struct {
		name    string
		outcome Outcome
		spin    float64
		want    float64
	}{
		{"heads ten turns", Heads, 10, 20 * math.Pi},
		{"tails eight and a half", Tails, 8.5, 17 * math.Pi},
		{"heads fractional", Heads, 12.9, 24 * math.Pi},
		{"tails fractional", Tails, 11.2, 23 * math.Pi},
	}

	for _, tc := range cases {
		got := ComputeFinalRotation(tc.outcome, tc.spin)
		if !mgl64.FloatEqualThreshold(got, tc.want, 1e-9) {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
		if face := FaceUp(got); face != tc.outcome {
			t.Errorf("%s: face up %v, want %v", tc.name, face, tc.outcome)
		}
	}
}

func TestSelectOutcomeIsFair(t *testing.T) {
	src := rand.New(rand.NewSource(42))
	const n = 20000
	heads := 0
	for i := 0; i < n; i++ {
		if SelectOutcome(src) == Heads {
			heads++
		}
	}
	frac := float64(heads) / n
	// 4 standard deviations of a fair binomial at n=20000
	if math.Abs(frac-0.5) > 4*math.Sqrt(0.25/n) {
		t.Fatalf("heads fraction %v too far from 0.5", frac)
	}
}

func TestSelectOutcomeCryptoSource(t *testing.T) {
	const n = 10000
	heads := 0
	for i := 0; i < n; i++ {
		if SelectOutcome(CryptoSource{}) == Heads {
			heads++
		}
	}
	frac := float64(heads) / n
	if math.Abs(frac-0.5) > 0.05 {
		t.Fatalf("heads fraction %v too far from 0.5", frac)
	}
}

type fixedSource struct{ f float64 }

func (s fixedSource) Intn(int) int     { return 0 }
func (s fixedSource) Float64() float64 { return s.f }

func TestComputeSpinCountRange(t *testing.T) {
	src := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		v := ComputeSpinCount(src)
		if v < 8 || v >= 14 {
			t.Fatalf("spin count %v outside [8, 14)", v)
		}
	}

	for _, f := range []float64{0, 0.5, math.Nextafter(1, 0)} {
		v := ComputeSpinCount(fixedSource{f})
		if v < 8 || v >= 14 {
			t.Fatalf("spin count %v outside [8, 14) for draw %v", v, f)
		}
	}
	for i := 0; i < 1000; i++ {
		v := ComputeSpinCount(CryptoSource{})
		if v < 8 || v >= 14 {
			t.Fatalf("crypto spin count %v outside [8, 14)", v)
		}
	}
}

func TestNearestFinalRotationBoundsSnap(t *testing.T) {
	src := rand.New(rand.NewSource(3))
	for i := 0; i < 2000; i++ {
		spin := ComputeSpinCount(src)
		reached := spin * 2 * math.Pi
		for _, o := range []Outcome{Heads, Tails} {
			final := NearestFinalRotation(o, reached)
			if FaceUp(final) != o {
				t.Fatalf("nearest final for %v shows %v", o, FaceUp(final))
			}
			if snap := MaxSnap(reached, final); snap > math.Pi+1e-9 {
				t.Fatalf("nearest snap %v exceeds a half turn (spin=%v)", snap, spin)
			}
		}
	}
}

// The floor rule can ask the correction to unwind most of a turn.
func TestFloorSnapCanExceedHalfTurn(t *testing.T) {
	spin := 9.9
	reached := spin * 2 * math.Pi
	snap := MaxSnap(reached, ComputeFinalRotation(Heads, spin))
	if snap <= math.Pi {
		t.Fatalf("expected floor snap above π for spin %v, got %v", spin, snap)
	}
}

func TestParseOutcome(t *testing.T) {
	for _, o := range []Outcome{Heads, Tails} {
		b, err := o.MarshalText()
		if err != nil {
			t.Fatalf("marshal %v: %v", o, err)
		}
		var got Outcome
		if err := got.UnmarshalText(b); err != nil || got != o {
			t.Fatalf("unmarshal %q: got %v err %v", b, got, err)
		}
	}
	if _, err := ParseOutcome("edge"); err == nil {
		t.Fatalf("expected error for unknown outcome")
	}
	if Heads.Label() != "表" || Tails.Label() != "裏" {
		t.Fatalf("unexpected labels %q %q", Heads.Label(), Tails.Label())
	}
}
