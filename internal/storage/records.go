package storage

import (
	"fmt"

	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/plot"
)

func lastGraphic(gs []*plot.Graphic) *plot.Graphic {
	if len(gs) == 0 {
		return nil
	}
	return gs[len(gs)-1]
}

func SecantRecord(req *compute.SecantRequest, resp *compute.SecantResponse) *Record {
	rows := make([][]float64, len(resp.Table))
	for i, r := range resp.Table {
		rows[i] = []float64{float64(r.Iter), r.X, r.FX, r.A, r.FA, r.B, r.FB, r.Distance}
	}
	return &Record{
		Kind:      "root",
		Method:    "mcs",
		Params:    req,
		Result:    map[string]float64{"root": resp.Result},
		Iters:     resp.Iters,
		Converged: resp.Converged,
		Metrics:   resp.Metrics,
		Header:    []string{"iter_num", "x", "fx", "a", "fa", "b", "fb", "distance"},
		Rows:      rows,
		Graphic:   lastGraphic(resp.Graphics),
	}
}

func NewtonRecord(req *compute.NewtonRequest, resp *compute.NewtonResponse) *Record {
	rows := make([][]float64, len(resp.Table))
	for i, r := range resp.Table {
		rows[i] = []float64{float64(r.Iter), r.Vector[0], r.Vector[1], r.Delta}
	}
	return &Record{
		Kind:      "system",
		Method:    "ntm",
		Params:    req,
		Result:    map[string]any{"solution": resp.Result, "log": resp.Log},
		Iters:     resp.Iters,
		Converged: resp.Converged,
		Metrics:   resp.Metrics,
		Header:    []string{"iter_num", "x", "y", "delta"},
		Rows:      rows,
		Graphic:   lastGraphic(resp.Graphics),
	}
}

func IntegralRecord(req *compute.IntegralRequest, resp *compute.IntegralResponse) *Record {
	rows := make([][]float64, len(resp.Table))
	for i, r := range resp.Table {
		rows[i] = []float64{float64(r.Index), r.X0, r.X1, r.Value}
	}
	return &Record{
		Kind:   "integral",
		Method: req.Method,
		Params: req,
		Result: map[string]float64{
			"result":           resp.Result,
			"reference_result": resp.Reference,
			"abs_delta":        resp.AbsDelta,
			"relative_delta":   resp.RelativeDelta,
		},
		Iters:     req.Intervals,
		Converged: true,
		Header:    []string{"index", "x0", "x1", "value"},
		Rows:      rows,
		Graphic:   resp.Graphic(),
	}
}

func LinearRecord(req *compute.LinearRequest, resp *compute.LinearResponse) *Record {
	header := []string{"iter_num"}
	for i := range resp.Result {
		header = append(header, fmt.Sprintf("x%d", i+1))
	}
	header = append(header, "delta")

	rows := make([][]float64, len(resp.Table))
	for i, r := range resp.Table {
		row := []float64{float64(r.Iter)}
		row = append(row, r.X...)
		rows[i] = append(row, r.Delta)
	}
	return &Record{
		Kind:   "linear",
		Method: req.Method,
		Params: req,
		Result: map[string]any{
			"solution": resp.Result,
			"status":   resp.Status,
			"residual": resp.Residual,
		},
		Iters:     resp.Iters,
		Converged: resp.Converged,
		Metrics:   resp.Metrics,
		Header:    header,
		Rows:      rows,
	}
}
