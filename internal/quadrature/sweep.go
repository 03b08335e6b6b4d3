package quadrature

import (
	"context"
	"sync"
)

type SweepPoint struct {
	N        int     `json:"intervals"`
	Value    float64 `json:"result"`
	AbsDelta float64 `json:"abs_delta"`
	RelDelta float64 `json:"relative_delta"`
}

// Sweep runs rule once per subdivision count, concurrently, against a
// single reference value. Points come back in the order of ns.
func Sweep(ctx context.Context, rule Rule, f func(float64) float64, a, b float64, ns []int) ([]SweepPoint, error) {
	for _, n := range ns {
		if err := validate(a, b, n); err != nil {
			return nil, err
		}
	}

	ref := Reference(f, a, b)
	points := make([]SweepPoint, len(ns))
	errs := make([]error, len(ns))

	var wg sync.WaitGroup
	for i, n := range ns {
		wg.Add(1)
		go func(idx, n int) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				errs[idx] = err
				return
			}

			res, err := integrate(rule, f, a, b, n, ref, Options{NoFrames: true})
			if err != nil {
				errs[idx] = err
				return
			}
			points[idx] = SweepPoint{N: n, Value: res.Value, AbsDelta: res.AbsDelta, RelDelta: res.RelDelta}
		}(i, n)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return points, nil
}

// Doubling returns n, 2n, 4n, ... with count entries.
func Doubling(n, count int) []int {
	ns := make([]int, count)
	for i := range ns {
		ns[i] = n
		n *= 2
	}
	return ns
}
