// Package metrics summarizes iteration traces. A metric observes the
// step delta of every iteration in order and reduces it to one number.
package metrics

import "math"

type Metric interface {
	Name() string
	Observe(iter int, delta float64)
	Value() float64
	Reset()
}

func Default() []Metric {
	return []Metric{
		NewIterations(),
		NewFinalDelta(),
		NewContraction(),
		NewMonotonicity(),
		NewOrder(),
	}
}

// Collect resets ms, feeds them deltas and returns the values by name.
// Non-finite values are dropped so the map always encodes as JSON.
func Collect(ms []Metric, deltas []float64) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
		for i, d := range deltas {
			m.Observe(i+1, d)
		}
		v := m.Value()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out[m.Name()] = v
	}
	return out
}

type Iterations struct {
	name  string
	count int
}

func NewIterations() *Iterations {
	return &Iterations{name: "iterations"}
}

func (it *Iterations) Name() string { return it.name }

func (it *Iterations) Observe(iter int, delta float64) {
	it.count = iter
}

func (it *Iterations) Value() float64 { return float64(it.count) }

func (it *Iterations) Reset() { it.count = 0 }

type FinalDelta struct {
	name  string
	last  float64
	valid bool
}

func NewFinalDelta() *FinalDelta {
	return &FinalDelta{name: "final_delta"}
}

func (f *FinalDelta) Name() string { return f.name }

func (f *FinalDelta) Observe(iter int, delta float64) {
	f.last = delta
	f.valid = true
}

func (f *FinalDelta) Value() float64 {
	if !f.valid {
		return math.NaN()
	}
	return f.last
}

func (f *FinalDelta) Reset() {
	f.last = 0
	f.valid = false
}
