package safety

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/tissueheat/internal/analytic"
	"github.com/san-kum/tissueheat/internal/heat"
	"github.com/san-kum/tissueheat/internal/integrators"
	"github.com/san-kum/tissueheat/internal/rootfind"
)

// ErrNoViolation is returned when no tested time ever exceeds a threshold.
var ErrNoViolation = errors.New("safety: thresholds never exceeded")

const (
	maxDoublings = 32
	bisectTol    = 1e-12
)

// SafeTime is the outcome of one maximum-safe-time search.
type SafeTime struct {
	Method     string
	Q          float64
	Row        int // last safe row, -1 if the first row already fails
	Column     int // failing column
	Normalized float64
	Seconds    float64
	Violated   bool
}

// Finder runs the schemes starting from LimitBodyTemp and reports how long
// the treatment can last before a threshold is crossed.
type Finder struct {
	Constants     heat.PhysicalConstants
	Registry      *integrators.Registry
	LimitBodyTemp float64
	Terms         int
	Logger        logrus.FieldLogger
}

func NewFinder(c heat.PhysicalConstants, reg *integrators.Registry, limitBodyTemp float64, terms int, logger logrus.FieldLogger) *Finder {
	if reg == nil {
		reg = integrators.NewRegistry()
	}
	if logger == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		logger = l
	}
	return &Finder{
		Constants:     c,
		Registry:      reg,
		LimitBodyTemp: limitBodyTemp,
		Terms:         terms,
		Logger:        logger,
	}
}

func (f *Finder) constants() heat.PhysicalConstants {
	return f.Constants.WithBodyTemp(f.LimitBodyTemp)
}

// MaxSafeTime integrates one scheme with ratio q and converts the last safe
// row to a duration: row·dt, denormalized to seconds. When the grid never
// violates, the whole run is safe and Violated is false.
func (f *Finder) MaxSafeTime(ctx context.Context, scheme string, q float64) (SafeTime, error) {
	c := f.constants()
	s, err := f.Registry.Get(scheme)
	if err != nil {
		return SafeTime{}, err
	}
	p, err := heat.NewStepParams(c, q)
	if err != nil {
		return SafeTime{}, err
	}

	start := time.Now()
	g, err := s.Integrate(ctx, c, p)
	if err != nil {
		return SafeTime{}, fmt.Errorf("max safe time: %w", err)
	}

	rows, _ := g.Dims()
	row, col := ScanGrid(c, heat.DenormalizeGrid(c, g))
	res := SafeTime{Method: s.Name(), Q: q, Row: row, Column: col, Violated: row < rows}
	if !res.Violated {
		res.Row = rows - 1
		res.Column = -1
	}
	if res.Row > 0 {
		res.Normalized = float64(res.Row) * p.Dt
	}
	res.Seconds = c.DenormalizeTime(res.Normalized)

	f.Logger.WithFields(logrus.Fields{
		"scheme":  res.Method,
		"q":       q,
		"row":     res.Row,
		"seconds": res.Seconds,
		"elapsed": time.Since(start),
	}).Debug("safe time found")
	return res, nil
}

// MaxSafeTimes runs MaxSafeTime for every scheme with its smallest
// configured ratio.
func (f *Finder) MaxSafeTimes(ctx context.Context) ([]SafeTime, error) {
	var out []SafeTime
	for _, name := range f.Registry.Names() {
		ratios, err := integrators.Ratios(f.Constants, name)
		if err != nil {
			return nil, err
		}
		if len(ratios) == 0 {
			f.Logger.WithField("scheme", name).Warn("no ratios configured, skipping")
			continue
		}
		res, err := f.MaxSafeTime(ctx, name, floats.Min(ratios))
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// AnalyticSafeTime bisects the time at which the analytical profile first
// touches a threshold. The bracket starts at [0, t_a] and its upper end is
// doubled until a violation is reached.
func (f *Finder) AnalyticSafeTime(ctx context.Context) (SafeTime, error) {
	c := f.constants()
	margin := func(t float64) float64 { return f.margin(c, t) }

	if _, m := Worst(c, steadyProfile(c)); m <= 0 {
		return SafeTime{}, fmt.Errorf("%w: steady state peaks %.3g °C below a threshold", ErrNoViolation, -m)
	}

	hi := c.Duration
	for k := 0; margin(hi) <= 0; k++ {
		if k == maxDoublings {
			return SafeTime{}, fmt.Errorf("%w up to t=%g", ErrNoViolation, hi)
		}
		if err := ctx.Err(); err != nil {
			return SafeTime{}, err
		}
		hi *= 2
	}

	iter := max(rootfind.Iterations(0, hi, bisectTol), 0) + 1
	res, err := rootfind.Bisect(margin, 0, hi, bisectTol, iter)
	if err != nil {
		return SafeTime{}, fmt.Errorf("analytic safe time: %w", err)
	}

	// The upper end of the last bracket is past the crossing; the column
	// that crosses first is the one furthest over its threshold there.
	_, T := analytic.Profile(c, res.Root+res.Error, f.Terms)
	col, _ := Worst(c, T)

	f.Logger.WithFields(logrus.Fields{
		"t":          res.Root,
		"iterations": res.Iterations,
	}).Debug("analytic safe time found")

	return SafeTime{
		Method:     "analytic",
		Row:        -1,
		Column:     col,
		Normalized: res.Root,
		Seconds:    c.DenormalizeTime(res.Root),
		Violated:   true,
	}, nil
}

func (f *Finder) margin(c heat.PhysicalConstants, t float64) float64 {
	_, T := analytic.Profile(c, t, f.Terms)
	return Margin(c, T)
}

// steadyProfile is the t → ∞ profile in °C. Temperatures rise monotonically
// towards it, so a steady state within the thresholds is never violated.
func steadyProfile(c heat.PhysicalConstants) []float64 {
	x := heat.Axis(c)
	T := make([]float64, len(x))
	for j, v := range x {
		T[j] = c.BodyTemp + c.DenormalizeTemperature(analytic.Steady(v))
	}
	return T
}
