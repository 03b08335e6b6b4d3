package metrics

import "math"

// Contraction is the geometric mean of successive delta ratios
// d[k+1]/d[k]. Values below 1 mean the iteration contracts.
type Contraction struct {
	name    string
	prev    float64
	logSum  float64
	samples int
}

func NewContraction() *Contraction {
	return &Contraction{name: "contraction"}
}

func (c *Contraction) Name() string { return c.name }

func (c *Contraction) Observe(iter int, delta float64) {
	if iter > 1 && c.prev > 0 && delta > 0 {
		c.logSum += math.Log(delta / c.prev)
		c.samples++
	}
	c.prev = delta
}

func (c *Contraction) Value() float64 {
	if c.samples == 0 {
		return math.NaN()
	}
	return math.Exp(c.logSum / float64(c.samples))
}

func (c *Contraction) Reset() {
	c.prev = 0
	c.logSum = 0
	c.samples = 0
}

// Monotonicity is the fraction of steps whose delta did not grow.
type Monotonicity struct {
	name       string
	prev       float64
	violations int
	samples    int
}

func NewMonotonicity() *Monotonicity {
	return &Monotonicity{name: "monotonicity"}
}

func (m *Monotonicity) Name() string { return m.name }

func (m *Monotonicity) Observe(iter int, delta float64) {
	if iter > 1 {
		m.samples++
		if delta > m.prev {
			m.violations++
		}
	}
	m.prev = delta
}

func (m *Monotonicity) Value() float64 {
	if m.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(m.violations)/float64(m.samples)
}

func (m *Monotonicity) Reset() {
	m.prev = 0
	m.violations = 0
	m.samples = 0
}

// Order estimates the convergence order p from the last three deltas:
// p ≈ log(d[k+1]/d[k]) / log(d[k]/d[k-1]).
type Order struct {
	name string
	last [3]float64
	seen int
}

func NewOrder() *Order {
	return &Order{name: "convergence_order"}
}

func (o *Order) Name() string { return o.name }

func (o *Order) Observe(iter int, delta float64) {
	if delta <= 0 {
		return
	}
	o.last[0], o.last[1], o.last[2] = o.last[1], o.last[2], delta
	o.seen++
}

func (o *Order) Value() float64 {
	if o.seen < 3 {
		return math.NaN()
	}
	den := math.Log(o.last[1] / o.last[0])
	if den == 0 {
		return math.NaN()
	}
	return math.Log(o.last[2]/o.last[1]) / den
}

func (o *Order) Reset() {
	o.last = [3]float64{}
	o.seen = 0
}

// ObservedOrder estimates the order of a quadrature rule from errors at
// subdivision counts that grow by ratio: p ≈ log(e[i]/e[i+1]) / log(ratio).
// The last pair with non-zero errors is used.
func ObservedOrder(errs []float64, ratio float64) float64 {
	for i := len(errs) - 1; i > 0; i-- {
		if errs[i] > 0 && errs[i-1] > 0 {
			return math.Log(errs[i-1]/errs[i]) / math.Log(ratio)
		}
	}
	return math.NaN()
}
