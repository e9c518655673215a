// Package render drives progressive rendering: repeated full-image passes of
// one jittered sample per pixel, traced in parallel and accumulated into a
// shared film.
package render

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/tag"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"row-major.net/harpoon/film"
	"row-major.net/harpoon/integrator"
	"row-major.net/harpoon/sampling"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/spectrum"
	"row-major.net/harpoon/vmath/vec2"
)

const tracerName = "row-major.net/harpoon/render"

type Options struct {
	// Parallelism is the number of rows traced at once.  1 renders serially.
	Parallelism int

	// Rendering stops once the film holds at least this many samples.
	MaxTotalSamples int64

	// MaxPasses stops rendering after this many passes in one Render call.
	// Zero means no limit.
	MaxPasses int

	Filter     film.Filter
	Seed       int64
	Integrator integrator.Options
}

func DefaultOptions() Options {
	return Options{
		Parallelism:     1,
		MaxTotalSamples: 10_000_000,
		Filter:          film.Box,
		Seed:            12,
		Integrator:      integrator.DefaultOptions(),
	}
}

// Outcome says why Render returned.
type Outcome int

const (
	Completed Outcome = iota
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	}
	return "unknown"
}

type Result struct {
	Outcome      Outcome
	Passes       int
	TotalSamples int64
	Elapsed      time.Duration
}

// Progress is reported after every finished pass.
type Progress struct {
	Pass            int
	TotalSamples    int64
	SamplesPerPixel int64
	Elapsed         time.Duration
}

type Option func(*Renderer) error

// WithFilm resumes accumulation into f, which must match the render size.
func WithFilm(f *film.Film) Option {
	return func(r *Renderer) error {
		if f.Cols != r.cols || f.Rows != r.rows {
			return fmt.Errorf("film is %dx%d, renderer is %dx%d", f.Cols, f.Rows, r.cols, r.rows)
		}
		r.film = f
		return nil
	}
}

// WithProgress registers fn to be called after each pass.  It runs on the
// rendering goroutine.
func WithProgress(fn func(Progress)) Option {
	return func(r *Renderer) error {
		r.progress = fn
		return nil
	}
}

type Renderer struct {
	scene  *scene.Scene
	tracer *integrator.PathTracer
	opts   Options

	cols, rows int
	seeds      *sampling.SeedSource
	idle       chan *worker
	progress   func(Progress)
	started    atomic.Bool
	filterTag  tag.Mutator

	// mu guards film.
	mu   sync.Mutex
	film *film.Film
}

// New prepares a renderer for s at cols pixels wide.  The row count follows
// from the camera's aspect ratio.
func New(s *scene.Scene, cols int, opts Options, extra ...Option) (*Renderer, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("while validating scene: %w", err)
	}
	if opts.Parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", opts.Parallelism)
	}
	if opts.Integrator.MaxBounces < 1 {
		return nil, fmt.Errorf("max bounces must be at least 1, got %d", opts.Integrator.MaxBounces)
	}

	r := &Renderer{
		scene:     s,
		tracer:    integrator.New(s, opts.Integrator),
		opts:      opts,
		cols:      cols,
		rows:      s.Camera.PixelRows(cols),
		seeds:     sampling.NewSeedSource(opts.Seed),
		idle:      make(chan *worker, opts.Parallelism),
		filterTag: tag.Upsert(filterKey, opts.Filter.String()),
	}

	f, err := film.New(r.cols, r.rows)
	if err != nil {
		return nil, fmt.Errorf("while allocating film: %w", err)
	}
	r.film = f

	for _, o := range extra {
		if err := o(r); err != nil {
			return nil, err
		}
	}

	for i := 0; i < opts.Parallelism; i++ {
		r.idle <- &worker{seeds: r.seeds}
	}
	return r, nil
}

func (r *Renderer) Size() (cols, rows int) {
	return r.cols, r.rows
}

// Started reports whether Render has been called.
func (r *Renderer) Started() bool {
	return r.started.Load()
}

func (r *Renderer) TotalSamples() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.film.TotalSamples
}

func (r *Renderer) SamplesPerPixel() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.film.SamplesPerPixel()
}

// Snapshot copies the current per-pixel estimates, row-major from the
// bottom row up.
func (r *Renderer) Snapshot() []spectrum.T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spectrum.T(nil), r.film.Means...)
}

// Checkpoint returns a consistent deep copy of the film.
func (r *Renderer) Checkpoint() *film.Film {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.film.Clone()
}

// CopyImage tone-maps the current estimate into a width x height image.
func (r *Renderer) CopyImage(width, height int) *image.RGBA {
	return r.Checkpoint().ToRGBA(width, height)
}

// Render runs passes until the sample cap, the pass limit, or cancellation of
// ctx.  Cancellation is reported in the Result, not as an error; the film
// keeps every sample accumulated before it.
func (r *Renderer) Render(ctx context.Context) (Result, error) {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Renderer.Render")
	defer span.End()

	r.started.Store(true)
	start := time.Now()
	result := Result{Outcome: Completed}

	for {
		total := r.TotalSamples()
		if total >= r.opts.MaxTotalSamples {
			break
		}
		if r.opts.MaxPasses > 0 && result.Passes >= r.opts.MaxPasses {
			break
		}
		if ctx.Err() != nil {
			result.Outcome = Cancelled
			break
		}

		if err := r.renderPass(ctx, result.Passes); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return result, fmt.Errorf("while rendering pass %d: %w", result.Passes, err)
		}
		if ctx.Err() != nil {
			result.Outcome = Cancelled
			break
		}
		result.Passes++

		if r.progress != nil {
			r.progress(Progress{
				Pass:            result.Passes,
				TotalSamples:    r.TotalSamples(),
				SamplesPerPixel: r.SamplesPerPixel(),
				Elapsed:         time.Since(start),
			})
		}
	}

	result.TotalSamples = r.TotalSamples()
	result.Elapsed = time.Since(start)
	span.SetAttributes(
		attribute.Int("passes", result.Passes),
		attribute.Int64("total_samples", result.TotalSamples),
		attribute.String("outcome", result.Outcome.String()),
	)
	glog.Infof("Render %v after %d passes, %d samples (%d spp) in %v",
		result.Outcome, result.Passes, result.TotalSamples, result.TotalSamples/int64(r.cols*r.rows), result.Elapsed)
	return result, nil
}

// renderPass traces one jittered sample for every pixel, one row per task.
// Rows started before cancellation commit whatever samples they finished.
func (r *Renderer) renderPass(ctx context.Context, pass int) error {
	tracer := otel.Tracer(tracerName)
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Renderer.renderPass")
	defer span.End()
	span.SetAttributes(attribute.Int("pass", pass))

	start := time.Now()

	// Use errgroup and semaphore to limit concurrency.
	eg, egCtx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(int64(r.opts.Parallelism))

	for row := 0; row < r.rows; row++ {
		row := row

		if err := sem.Acquire(egCtx, 1); err != nil {
			// Only cancellation makes Acquire fail.
			break
		}

		eg.Go(func() error {
			defer sem.Release(1)
			w := <-r.idle
			defer func() { r.idle <- w }()

			r.commit(w.traceRow(egCtx, r, row))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return fmt.Errorf("while waiting for completion of errgroup: %w", err)
	}

	elapsed := time.Since(start)
	stats.RecordWithOptions(
		ctx,
		stats.WithTags(r.filterTag),
		stats.WithMeasurements(passLatencyMeasure.M(float64(elapsed)/float64(time.Millisecond))))
	glog.V(1).Infof("Pass %d finished in %v", pass, elapsed)
	return nil
}

// commit accumulates a batch of samples under the film lock.
func (r *Renderer) commit(batch []sample) {
	if len(batch) == 0 {
		return
	}
	r.mu.Lock()
	for _, s := range batch {
		r.film.AddSample(s.col, s.row, s.offset, s.l, r.opts.Filter)
	}
	r.mu.Unlock()

	stats.RecordWithOptions(
		context.Background(),
		stats.WithTags(r.filterTag),
		stats.WithMeasurements(samplesMeasure.M(int64(len(batch)))))
}

// sample is one traced radiance estimate waiting to be accumulated.
type sample struct {
	col, row int
	offset   vec2.T
	l        spectrum.T
}
