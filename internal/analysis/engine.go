package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/waterlens-cli/internal/logging"
	"github.com/KaramelBytes/waterlens-cli/internal/normalize"
	"github.com/KaramelBytes/waterlens-cli/internal/standards"
)

// Options controls batch analysis.
type Options struct {
	// Workers bounds concurrent per-sample analysis; <= 0 means GOMAXPROCS.
	Workers int
	// KeyParameters are the parameters trended across the batch.
	KeyParameters []string
	// Now stamps GeneratedAt. Defaults to time.Now.
	Now func() time.Time
}

// DefaultKeyParameters are trended when Options.KeyParameters is empty.
var DefaultKeyParameters = []string{
	standards.PH,
	standards.DissolvedOxygen,
	standards.Turbidity,
	standards.Arsenic,
	standards.Lead,
}

// DefaultOptions returns options with one worker per CPU and the default key parameters.
func DefaultOptions() Options {
	return Options{
		Workers:       runtime.GOMAXPROCS(0),
		KeyParameters: append([]string(nil), DefaultKeyParameters...),
		Now:           time.Now,
	}
}

// Engine scores samples against an immutable registry. It holds no mutable
// state and is safe for concurrent use.
type Engine struct {
	reg    *standards.Registry
	opt    Options
	logger *slog.Logger

	analyze func(int, normalize.Sample) (SampleAnalysis, error)
}

// NewEngine builds an engine. A nil logger discards output.
func NewEngine(reg *standards.Registry, opt Options, logger *slog.Logger) *Engine {
	if opt.Workers <= 0 {
		opt.Workers = runtime.GOMAXPROCS(0)
	}
	if len(opt.KeyParameters) == 0 {
		opt.KeyParameters = append([]string(nil), DefaultKeyParameters...)
	}
	if opt.Now == nil {
		opt.Now = time.Now
	}
	if logger == nil {
		logger = logging.Discard()
	}
	e := &Engine{reg: reg, opt: opt, logger: logger.With(slog.String("component", "analysis"))}
	e.analyze = e.analyzeSample
	return e
}

// Registry returns the standards the engine scores against.
func (e *Engine) Registry() *standards.Registry { return e.reg }

// AnalyzeBatch scores every sample and reduces the results into one report.
// Any sample failure aborts the batch; no partial result is returned.
func (e *Engine) AnalyzeBatch(ctx context.Context, samples []normalize.Sample) (*BatchAnalysis, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyBatch
	}
	start := time.Now()

	results := make([]SampleAnalysis, len(samples))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opt.Workers)
	for i := range samples {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &SampleError{Index: i, Row: samples[i].Row, Err: fmt.Errorf("panic: %v", r)}
				}
			}()
			if err := gctx.Err(); err != nil {
				return err
			}
			a, err := e.analyze(i, samples[i])
			if err != nil {
				return &SampleError{Index: i, Row: samples[i].Row, Err: err}
			}
			results[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.ErrorContext(ctx, "batch aborted", slog.Int("samples", len(samples)), slog.String("error", err.Error()))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &BatchAnalysis{
		PerSample:   results,
		GeneratedAt: e.opt.Now(),
	}
	b.Summary = summarize(results)
	b.Trends = e.trends(results)
	b.DataQuality = assessDataQuality(e.reg, results)
	b.KeyFindings, b.Recommendations = batchNarrative(b)

	e.logger.InfoContext(ctx, "batch analyzed",
		slog.Int("samples", b.Summary.TotalSamples),
		slog.Int("critical", b.Summary.CriticalSamples),
		slog.Float64("completeness", b.DataQuality.Completeness),
		slog.Duration("elapsed", time.Since(start)),
	)
	return b, nil
}

func summarize(results []SampleAnalysis) Summary {
	s := Summary{TotalSamples: len(results)}
	var hmpi, wqi float64
	for _, a := range results {
		switch a.OverallStatus {
		case StatusSafe:
			s.SafeSamples++
		case StatusUnsafe:
			s.UnsafeSamples++
		case StatusCritical:
			s.CriticalSamples++
		}
		hmpi += a.HMPI.Value
		wqi += a.WQI.Value
	}
	if s.TotalSamples == 0 {
		return s
	}
	n := float64(s.TotalSamples)
	s.SafePercentage = float64(s.SafeSamples) / n * 100
	s.UnsafePercentage = float64(s.UnsafeSamples) / n * 100
	s.CriticalPercentage = float64(s.CriticalSamples) / n * 100
	s.AvgHMPI = hmpi / n
	s.AvgWQI = wqi / n
	return s
}

func (e *Engine) trends(results []SampleAnalysis) map[string]TrendResult {
	out := make(map[string]TrendResult, len(e.opt.KeyParameters))
	for _, name := range e.opt.KeyParameters {
		var pts []TrendPoint
		for _, a := range results {
			c, ok := a.Parameters[name]
			if !ok || math.IsNaN(c.Reading.Value) {
				continue
			}
			pts = append(pts, TrendPoint{Date: a.SampleDate, Value: c.Reading.Value})
		}
		t := AnalyzeTrend(pts)
		t.Parameter = name
		out[name] = t
		e.logger.Debug("trend fitted", slog.String("parameter", name), slog.String("direction", string(t.Direction)), slog.Int("points", t.Points))
	}
	return out
}
