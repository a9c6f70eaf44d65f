package anim

import (
	"encoding/json"
	"sort"
)

// Timeline is an ordered set of segments and cues sharing one zero origin.
// It is built once per flip and played by a single Player.
type Timeline struct {
	segments []Segment
	cues     []Cue
	err      error
}

func NewTimeline() *Timeline {
	return &Timeline{}
}

// To schedules a segment. The first invalid segment is kept as the
// timeline's error and later calls are ignored.
func (tl *Timeline) To(s Segment) *Timeline {
	if tl.err != nil {
		return tl
	}
	if err := s.Validate(); err != nil {
		tl.err = err
		return tl
	}
	tl.segments = append(tl.segments, s)
	return tl
}

// Call schedules a named cue at offset at.
func (tl *Timeline) Call(name string, at float64) *Timeline {
	if tl.err != nil {
		return tl
	}
	if at < 0 {
		tl.err = ErrNegativeStart
		return tl
	}
	tl.cues = append(tl.cues, Cue{Name: name, At: at})
	return tl
}

func (tl *Timeline) Err() error {
	return tl.err
}

// Segments returns the segments ordered by start offset. Segments sharing a
// start keep their insertion order.
func (tl *Timeline) Segments() []Segment {
	out := make([]Segment, len(tl.segments))
	copy(out, tl.segments)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

func (tl *Timeline) Cues() []Cue {
	out := make([]Cue, len(tl.cues))
	copy(out, tl.cues)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].At < out[j].At
	})
	return out
}

// Duration is the offset of the last segment end or cue.
func (tl *Timeline) Duration() float64 {
	var d float64
	for _, s := range tl.segments {
		d = max(d, s.EndTime())
	}
	for _, c := range tl.cues {
		d = max(d, c.At)
	}
	return d
}

// Of returns the segments that write property p, in start order.
func (tl *Timeline) Of(p Property) []Segment {
	var out []Segment
	for _, s := range tl.Segments() {
		if s.Property == p {
			out = append(out, s)
		}
	}
	return out
}

type timelineJSON struct {
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
	Cues     []Cue     `json:"cues"`
}

func (tl *Timeline) MarshalJSON() ([]byte, error) {
	return json.Marshal(timelineJSON{
		Duration: tl.Duration(),
		Segments: tl.Segments(),
		Cues:     tl.Cues(),
	})
}

func (tl *Timeline) UnmarshalJSON(b []byte) error {
	var raw timelineJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := NewTimeline()
	for _, s := range raw.Segments {
		out.To(s)
	}
	for _, c := range raw.Cues {
		out.Call(c.Name, c.At)
	}
	if out.err != nil {
		return out.err
	}
	*tl = *out
	return nil
}
