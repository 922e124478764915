package audio

import "sort"

// Breakpoint is one scheduled gain event. Ramp marks a linear ramp that ends
// at Time, starting from the previous breakpoint.
type Breakpoint struct {
	Time  float64
	Value float64
	Ramp  bool
}

// Envelope is a piecewise gain curve in linear amplitude over render time.
type Envelope struct {
	initial float64
	points  []Breakpoint
}

// NewEnvelope returns an envelope that reads initial until the first event.
func NewEnvelope(initial float64) *Envelope {
	return &Envelope{initial: initial}
}

// SetValueAt holds v from time t onward.
func (e *Envelope) SetValueAt(v, t float64) *Envelope {
	e.insert(Breakpoint{Time: clampTime(t), Value: v})
	return e
}

// LinearRampTo ramps linearly from the previous event to v, arriving at t.
func (e *Envelope) LinearRampTo(v, t float64) *Envelope {
	e.insert(Breakpoint{Time: clampTime(t), Value: v, Ramp: true})
	return e
}

// insert keeps points ordered by time; equal times keep insertion order.
func (e *Envelope) insert(bp Breakpoint) {
	i := sort.Search(len(e.points), func(i int) bool { return e.points[i].Time > bp.Time })
	e.points = append(e.points, Breakpoint{})
	copy(e.points[i+1:], e.points[i:])
	e.points[i] = bp
}

// Breakpoints returns a copy of the scheduled events.
func (e *Envelope) Breakpoints() []Breakpoint {
	return append([]Breakpoint(nil), e.points...)
}

// ValueAt evaluates the envelope at time t.
func (e *Envelope) ValueAt(t float64) float64 {
	next := sort.Search(len(e.points), func(i int) bool { return e.points[i].Time > t })

	if next < len(e.points) && e.points[next].Ramp {
		t0, v0 := 0.0, e.initial
		if next > 0 {
			t0, v0 = e.points[next-1].Time, e.points[next-1].Value
		}
		end := e.points[next]
		if end.Time <= t0 {
			return end.Value
		}
		return v0 + (end.Value-v0)*(t-t0)/(end.Time-t0)
	}
	if next > 0 {
		return e.points[next-1].Value
	}
	return e.initial
}

func clampTime(t float64) float64 {
	if t < 0 || t != t {
		return 0
	}
	return t
}
