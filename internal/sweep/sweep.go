// Package sweep runs one scheme over a list of step ratios in parallel,
// compares each run with the analytical profile and persists the grids.
package sweep

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/tissueheat/internal/analysis"
	"github.com/san-kum/tissueheat/internal/analytic"
	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/integrators"
	"github.com/san-kum/tissueheat/internal/metrics"
	"github.com/san-kum/tissueheat/internal/storage"
)

// divergenceBound is the °C magnitude above which a profile counts as blown up.
const divergenceBound = 1000.0

// Result is one finished run, in physical units.
type Result struct {
	Scheme  string
	Name    string
	Params  heat.StepParams
	X       []float64
	Grid    *mat.Dense
	Final   float64 // dimensionless time of the last row
	Errors  []float64
	Summary analysis.Summary
	Metrics map[string]float64
	Elapsed time.Duration
	// Diverged marks a run that left the divergence bound. It is a result,
	// not a failure.
	Diverged bool
}

type Runner struct {
	Constants heat.PhysicalConstants
	Registry  *integrators.Registry
	Store     *storage.Store // nil disables persistence
	Logger    logrus.FieldLogger
	Workers   int
	Terms     int

	// FilePrefix maps a scheme to the base name of its files.
	FilePrefix func(scheme string) string
}

func NewRunner(c heat.PhysicalConstants, store *storage.Store, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Runner{
		Constants:  c,
		Registry:   integrators.NewRegistry(),
		Store:      store,
		Logger:     logger,
		Workers:    4,
		Terms:      analytic.DefaultTerms,
		FilePrefix: func(s string) string { return s },
	}
}

// Run integrates scheme once per ratio. Runs execute concurrently, at most
// Workers at a time; the first failure cancels the rest. Results keep the
// order of ratios.
func (r *Runner) Run(ctx context.Context, scheme string, ratios []float64) ([]Result, error) {
	name, err := r.Registry.Resolve(scheme)
	if err != nil {
		return nil, err
	}
	if err := r.Constants.Validate(); err != nil {
		return nil, err
	}

	params := make([]heat.StepParams, len(ratios))
	for i, q := range ratios {
		p, err := heat.NewStepParams(r.Constants, q)
		if err != nil {
			return nil, fmt.Errorf("%s q=%g: %w", name, q, err)
		}
		params[i] = p
	}

	results := make([]Result, len(ratios))
	g, gctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}

	for i, p := range params {
		i, p := i, p
		g.Go(func() error {
			res, err := r.runOne(gctx, name, p)
			if err != nil {
				return fmt.Errorf("%s q=%g: %w", name, p.Q, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RunAll sweeps every registered scheme over its configured ratios.
func (r *Runner) RunAll(ctx context.Context) (map[string][]Result, error) {
	out := make(map[string][]Result)
	for _, name := range r.Registry.Names() {
		ratios, err := integrators.Ratios(r.Constants, name)
		if err != nil {
			return nil, err
		}
		res, err := r.Run(ctx, name, ratios)
		if err != nil {
			return nil, err
		}
		out[name] = res
	}
	return out, nil
}

func (r *Runner) runOne(ctx context.Context, scheme string, p heat.StepParams) (Result, error) {
	c := r.Constants
	q := p.Q
	s, err := r.Registry.Get(scheme)
	if err != nil {
		return Result{}, err
	}

	log := r.Logger.WithFields(logrus.Fields{"scheme": scheme, "q": q, "dx": p.Dx, "dt": p.Dt})
	log.Debug("starting run")

	start := time.Now()
	norm, err := s.Integrate(ctx, c, p)
	if err != nil {
		return Result{}, err
	}
	elapsed := time.Since(start)

	grid := heat.DenormalizeGrid(c, norm)
	rows, _ := grid.Dims()
	final := float64(rows-1) * p.Dt

	x, ref := analytic.Profile(c, final, r.Terms)
	last := analysis.LastRow(grid)
	rel, err := analysis.RelativeError(last, ref)
	if err != nil {
		return Result{}, err
	}
	summary, err := analysis.Compare(last, ref)
	if err != nil {
		return Result{}, err
	}

	stab := metrics.NewStability(divergenceBound)
	m := metrics.Collect(grid, p.Dt,
		stab,
		metrics.NewPeak(),
		metrics.NewPeakTime(),
		metrics.NewHeatContent(c),
	)
	if at, ok := stab.Onset(); ok {
		m["divergence_onset"] = at
		log.WithField("onset", at).Warn("profile left the divergence bound")
	}
	diverged := m["stability"] < 1
	m["max_rel_error"] = summary.Max
	m["mid_rel_error"] = summary.Midpoint

	res := Result{
		Scheme:  scheme,
		Name:    storage.RunName(r.prefix(scheme), q),
		Params:  p,
		X:       x,
		Grid:    grid,
		Final:   final,
		Errors:  rel,
		Summary: summary,
		Metrics: m,
		Elapsed: elapsed,

		Diverged: diverged,
	}

	if r.Store != nil {
		if err := r.save(res); err != nil {
			return Result{}, err
		}
		log = log.WithField("file", res.Name)
	}

	log.WithFields(logrus.Fields{
		"rows":    rows,
		"elapsed": elapsed,
		"max_err": summary.Max,
	}).Info("run finished")
	return res, nil
}

func (r *Runner) prefix(scheme string) string {
	if r.FilePrefix == nil {
		return scheme
	}
	return r.FilePrefix(scheme)
}

func (r *Runner) save(res Result) error {
	if err := r.Store.SaveGrid(res.Name, res.X, res.Grid); err != nil {
		return err
	}
	rows, cols := res.Grid.Dims()
	err := r.Store.SaveMetadata(storage.RunMetadata{
		ID:        res.Name,
		Scheme:    res.Scheme,
		Q:         res.Params.Q,
		Dx:        res.Params.Dx,
		Dt:        res.Params.Dt,
		Rows:      rows,
		Points:    cols,
		Duration:  res.Final,
		Timestamp: time.Now(),
		Metrics:   res.Metrics,
		Diverged:  res.Diverged,
	})
	if err != nil {
		r.Store.Delete(res.Name)
		return err
	}
	return nil
}
