package models_test

import "fmt"

// recorder logs every event it receives as a string.
type recorder struct {
	events []string
}

func (r *recorder) ModelChanged()              { r.events = append(r.events, "changed") }
func (r *recorder) ValidationError(msg string) { r.events = append(r.events, fmt.Sprintf("invalid: %s", msg)) }
func (r *recorder) Calculated()                { r.events = append(r.events, "calculated") }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, e := range r.events {
		if len(e) >= len(prefix) && e[:len(prefix)] == prefix {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.events = nil }
