package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/compmath/internal/api"
	"github.com/san-kum/compmath/internal/compute"
	"github.com/san-kum/compmath/internal/numeric"
	"github.com/san-kum/compmath/internal/quadrature"
)

type panicBackend struct{ compute.Backend }

func (panicBackend) Secant(context.Context, *compute.SecantRequest) (*compute.SecantResponse, error) {
	panic("boom")
}

var _ = Describe("Server and client", func() {
	var (
		ts     *httptest.Server
		client *api.Client
		local  *compute.Local
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		local = compute.NewLocal(nil)
		ts = httptest.NewServer(api.NewServer(local, nil).Handler())
		client = api.NewClient(ts.URL, 5*time.Second, nil)
	})

	AfterEach(func() {
		ts.Close()
	})

	It("answers health checks", func() {
		Expect(client.Health(ctx)).To(Succeed())
	})

	It("returns the same secant result as the local backend", func() {
		req := &compute.SecantRequest{Fx: "x**3 - 2*x - 5", A: 2, B: 3, Eps: 0.001, ItersLimit: 100}

		want, err := local.Secant(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		got, err := client.Secant(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Result).To(Equal(want.Result))
		Expect(got.Iters).To(Equal(want.Iters))
		Expect(got.Converged).To(BeTrue())
		Expect(got.Table).To(Equal(want.Table))
		Expect(got.Graphics).To(HaveLen(len(want.Graphics)))
	})

	It("solves the example nonlinear system remotely", func() {
		got, err := client.Newton(ctx, &compute.NewtonRequest{
			Equations:    []string{"x + cos(y) - 3", "cos(x - 1) - y - 1.2"},
			InitialGuess: numeric.Vector{0, 1},
			Eps:          1e-5,
			ItersLimit:   100,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Converged).To(BeTrue())
		Expect(got.Result[0]).To(BeNumerically("~", 3.26787, 1e-4))
		Expect(got.Log).NotTo(BeEmpty())
	})

	It("routes every quadrature rule", func() {
		for _, name := range quadrature.Names() {
			got, err := client.Integrate(ctx, &compute.IntegralRequest{
				Method: name, A: 0, B: 1, Intervals: 8, Fx: "x**2",
			})
			Expect(err).NotTo(HaveOccurred(), name)
			Expect(got.Reference).To(BeNumerically("~", 1.0/3, 1e-12))
			Expect(got.Table).To(HaveLen(8))
			Expect(got.Graphic().Items).To(HaveLen(9))
		}
	})

	It("serves curve properties", func() {
		got, err := client.Properties(ctx, &compute.PropertiesRequest{A: 0, B: 1, Fx: "x"})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Reference).To(BeNumerically("~", 0.5, 1e-12))
		Expect(got.ArcLength).To(BeNumerically("~", 1.41421356, 1e-6))
	})

	It("reports non-convergence as a result", func() {
		got, err := client.Linear(ctx, &compute.LinearRequest{
			Method: "sim", A: [][]float64{{1, 2}, {3, 1}}, B: []float64{3, 4}, Eps: 1e-6, ItersLimit: 10,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Converged).To(BeFalse())
		Expect(got.Status).To(Equal("iteration limit reached"))
		Expect(got.Iters).To(Equal(10))
	})

	Describe("errors", func() {
		It("preserves validation sentinels", func() {
			_, err := client.Secant(ctx, &compute.SecantRequest{Fx: "x**2 + 1", A: -1, B: 1, Eps: 1e-3, ItersLimit: 10})
			Expect(errors.Is(err, numeric.ErrNoRootInInterval)).To(BeTrue())
			Expect(numeric.IsValidation(err)).To(BeTrue())

			var ve *numeric.ValidationError
			Expect(errors.As(err, &ve)).To(BeTrue())
			Expect(ve.Field).To(Equal("interval"))
		})

		It("preserves numeric faults", func() {
			_, err := client.Linear(ctx, &compute.LinearRequest{
				Method: "gm", A: [][]float64{{1, 2}, {2, 4}}, B: []float64{1, 2},
			})
			Expect(errors.Is(err, numeric.ErrSingularMatrix)).To(BeTrue())
			Expect(numeric.IsFault(err)).To(BeTrue())
		})

		It("answers 404 for unknown methods", func() {
			resp, err := http.Post(ts.URL+"/api/ni/xyz/calculate", "application/json",
				strings.NewReader(`{"a":0,"b":1,"intervals":1,"fx":"x"}`))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))

			_, err = client.Integrate(ctx, &compute.IntegralRequest{Method: "xyz", A: 0, B: 1, Intervals: 1, Fx: "x"})
			Expect(errors.Is(err, numeric.ErrUnknownMethod)).To(BeTrue())
		})

		It("rejects malformed and unknown JSON", func() {
			for _, body := range []string{`{"fx":`, `{"fx":"x","bogus":1}`, `{"fx":"x"} {}`} {
				resp, err := http.Post(ts.URL+"/api/nonlinear/mcs/calculate", "application/json", strings.NewReader(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest), body)

				var eb api.ErrorBody
				Expect(json.NewDecoder(resp.Body).Decode(&eb)).To(Succeed())
				Expect(eb.Error).NotTo(BeEmpty())
				resp.Body.Close()
			}
		})

		It("answers 422 with kind and code", func() {
			resp, err := http.Post(ts.URL+"/api/nonlinear/mcs/calculate", "application/json",
				strings.NewReader(`{"fx":"x","a":-1,"b":1,"eps":0,"iters_limit":10}`))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity))

			var eb api.ErrorBody
			Expect(json.NewDecoder(resp.Body).Decode(&eb)).To(Succeed())
			Expect(eb.Kind).To(Equal("validation"))
			Expect(eb.Code).To(Equal("invalid_tolerance"))
		})

		It("answers 422 for work above the configured bounds", func() {
			cases := map[string]string{
				"/api/ni/mrm/calculate":        `{"a":0,"b":1,"intervals":100000000,"fx":"x"}`,
				"/api/nonlinear/mcs/calculate": `{"fx":"x","a":-1,"b":1,"eps":0.001,"iters_limit":100000000}`,
				"/api/sne/ntm/calculate":       `{"equations":["x + cos(y) - 3","cos(x - 1) - y - 1.2"],"initial_guess":[0,1],"eps":0.001,"iters_limit":100000000}`,
			}
			codes := map[string]string{
				"/api/ni/mrm/calculate":        "invalid_intervals",
				"/api/nonlinear/mcs/calculate": "invalid_iters_limit",
				"/api/sne/ntm/calculate":       "invalid_iters_limit",
			}
			for path, body := range cases {
				resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
				Expect(err).NotTo(HaveOccurred())
				Expect(resp.StatusCode).To(Equal(http.StatusUnprocessableEntity), path)

				var eb api.ErrorBody
				Expect(json.NewDecoder(resp.Body).Decode(&eb)).To(Succeed())
				Expect(eb.Code).To(Equal(codes[path]), path)
				resp.Body.Close()
			}

			_, err := client.Integrate(ctx, &compute.IntegralRequest{
				Method: "tm", A: 0, B: 1, Intervals: numeric.MaxIntervals + 1, Fx: "x",
			})
			Expect(errors.Is(err, numeric.ErrInvalidIntervals)).To(BeTrue())
		})

		It("recovers from panics", func() {
			srv := httptest.NewServer(api.NewServer(panicBackend{local}, nil).Handler())
			defer srv.Close()

			resp, err := http.Post(srv.URL+"/api/nonlinear/mcs/calculate", "application/json", strings.NewReader(`{}`))
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusInternalServerError))
		})
	})
})
