package anim

import (
	"errors"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// Target resolves a property to the vector the player writes. A nil return
// means the target does not carry that property.
type Target interface {
	Vec(p Property) *mgl64.Vec3
}

var ErrUnknownProperty = errors.New("anim: target has no such property")

type segmentState struct {
	Segment
	from    mgl64.Vec3
	started bool
	done    bool
}

// Player advances one timeline by elapsed time. Time only moves forward;
// evaluating a later time applies every segment up to it in start order,
// so the result does not depend on how the interval was split into frames.
type Player struct {
	segments []segmentState
	cues     []Cue
	fired    int
	elapsed  float64
	duration float64
}

func NewPlayer(tl *Timeline) (*Player, error) {
	if tl == nil {
		return nil, errors.New("anim: nil timeline")
	}
	if err := tl.Err(); err != nil {
		return nil, err
	}
	p := &Player{
		cues:     tl.Cues(),
		duration: tl.Duration(),
	}
	for _, s := range tl.Segments() {
		p.segments = append(p.segments, segmentState{Segment: s})
	}
	return p, nil
}

func (p *Player) Elapsed() float64 {
	return p.elapsed
}

func (p *Player) Duration() float64 {
	return p.duration
}

// Done reports whether every segment finished and every cue fired.
func (p *Player) Done() bool {
	if p.fired < len(p.cues) {
		return false
	}
	for i := range p.segments {
		if !p.segments[i].done {
			return false
		}
	}
	return true
}

// Advance moves the playhead by dt seconds.
func (p *Player) Advance(target Target, dt float64) ([]Event, error) {
	if dt < 0 {
		dt = 0
	}
	return p.Seek(target, p.elapsed+dt)
}

// Seek moves the playhead to t and writes the target. Seeking backwards is a
// no-op. Returned events are ordered by their scheduled time.
func (p *Player) Seek(target Target, t float64) ([]Event, error) {
	if t < p.elapsed {
		return nil, nil
	}
	p.elapsed = t

	var events []Event
	for i := range p.segments {
		s := &p.segments[i]
		if s.done || t < s.Start {
			continue
		}
		v := target.Vec(s.Property)
		if v == nil {
			return events, ErrUnknownProperty
		}
		if !s.started {
			s.from = *v
			s.started = true
		}
		*v = s.value(s.from, t)
		if s.progress(t) >= 1 {
			s.done = true
			if s.OnComplete != "" {
				events = append(events, Event{Name: s.OnComplete, At: s.EndTime()})
			}
		}
	}

	for p.fired < len(p.cues) && p.cues[p.fired].At <= t {
		c := p.cues[p.fired]
		events = append(events, Event{Name: c.Name, At: c.At})
		p.fired++
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].At < events[j].At
	})
	return events, nil
}
