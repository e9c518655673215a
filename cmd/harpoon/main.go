// harpoon renders a scene with an unbiased path tracer, progressively
// refining the image until the sample budget is spent or it is interrupted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"net/http"
	httppprof "net/http/pprof"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/golang/glog"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"row-major.net/harpoon/film"
	"row-major.net/harpoon/healthz"
	"row-major.net/harpoon/httpmetrics"
	"row-major.net/harpoon/preview"
	"row-major.net/harpoon/render"
	"row-major.net/harpoon/scene"
	"row-major.net/harpoon/scenepack"
)

var (
	sceneName       = flag.String("scene", "cornell", "Scene to render: \"cornell\" or the path of a JSON scene description.")
	width           = flag.Int("width", 512, "Output width in pixels.  The height follows from the camera aspect ratio.")
	parallelism     = flag.Int("parallelism", 1, "Number of rows traced at once.")
	maxTotalSamples = flag.Int64("max-total-samples", 10_000_000, "Stop once the image holds this many samples.")
	filterName      = flag.String("filter", "box", "Reconstruction filter: box or triangle.")
	maxBounces      = flag.Int("max-bounces", 20, "Maximum path length.")
	seed            = flag.Int64("seed", 12, "Seed for the per-worker random streams.")
	outputPNG       = flag.String("output-png", "harpoon.png", "Where to write the final image.  Empty disables.")
	outputWidth     = flag.Int("output-png-width", 0, "Width of the written PNG.  Zero uses the render width.")
	checkpointFile  = flag.String("checkpoint", "", "Where to write the accumulated samples at exit.  Empty disables.")
	resume          = flag.Bool("resume", false, "Continue accumulating into the samples stored at -checkpoint.")
	debugListen     = flag.String("debug-listen", "127.0.0.1:8001", "Server address:port for debug endpoint.  Empty disables.")
	traceRatio      = flag.Float64("trace-ratio", 0.0001, "What ratio of traces should be sampled?")
	cpuProfile      = flag.String("cpu-profile", "", "Write a CPU profile to this file.")
	memProfile      = flag.String("mem-profile", "", "Write a heap profile to this file.")
)

func main() {
	flag.Parse()

	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	glog.Infof("flags:")
	glog.Infof("scene: %q", *sceneName)
	glog.Infof("width: %d", *width)
	glog.Infof("parallelism: %d", *parallelism)
	glog.Infof("max-total-samples: %d", *maxTotalSamples)
	glog.Infof("checkpoint: %q resume: %v", *checkpointFile, *resume)

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			glog.Exitf("Error: while creating CPU profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			glog.Exitf("Error: while starting CPU profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := do(); err != nil {
		// Exitf skips deferred calls.
		pprof.StopCPUProfile()
		glog.Exitf("Error: %v", err)
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			glog.Exitf("Error: while creating memory profile: %v", err)
		}
		defer f.Close()
		if err := pprof.WriteHeapProfile(f); err != nil {
			glog.Exitf("Error: while writing memory profile: %v", err)
		}
	}
}

func loadScene(name string) (*scene.Scene, error) {
	if name == "cornell" {
		return scenepack.CornellBox()
	}
	return scenepack.LoadFile(name)
}

func renderOptions() (render.Options, error) {
	opts := render.DefaultOptions()
	filter, err := film.ParseFilter(*filterName)
	if err != nil {
		return render.Options{}, err
	}
	opts.Filter = filter
	opts.Parallelism = *parallelism
	opts.MaxTotalSamples = *maxTotalSamples
	opts.Seed = *seed
	opts.Integrator.MaxBounces = *maxBounces
	return opts, nil
}

// progressReporter throttles progress lines.  On a terminal the line is
// rewritten in place; otherwise it goes to the log.
type progressReporter struct {
	limiter     *rate.Limiter
	interactive bool
	target      int64
}

func newProgressReporter(target int64) *progressReporter {
	return &progressReporter{
		limiter:     rate.NewLimiter(rate.Every(time.Second), 1),
		interactive: term.IsTerminal(int(os.Stderr.Fd())),
		target:      target,
	}
}

func (p *progressReporter) report(pr render.Progress) {
	if !p.limiter.Allow() {
		return
	}
	var pct int64
	if p.target > 0 {
		pct = 100 * pr.TotalSamples / p.target
	}
	if p.interactive {
		fmt.Fprintf(os.Stderr, "\rpass %d: %d spp, %d/%d samples %d%% (%v)", pr.Pass, pr.SamplesPerPixel, pr.TotalSamples, p.target, pct, pr.Elapsed.Round(time.Second))
		return
	}
	glog.Infof("Progress pass=%d spp=%d samples=%d/%d elapsed=%v", pr.Pass, pr.SamplesPerPixel, pr.TotalSamples, p.target, pr.Elapsed)
}

func (p *progressReporter) finish() {
	if p.interactive {
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func do() error {
	if *resume && *checkpointFile == "" {
		return errors.New("-resume requires -checkpoint")
	}

	opts, err := renderOptions()
	if err != nil {
		return fmt.Errorf("while parsing flags: %w", err)
	}

	s, err := loadScene(*sceneName)
	if err != nil {
		return fmt.Errorf("while loading scene %q: %w", *sceneName, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.TraceIDRatioBased(*traceRatio)))
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			glog.Errorf("Failed to shut down tracer provider: %v", err)
		}
	}()

	if err := render.RegisterViews(); err != nil {
		return fmt.Errorf("while registering render views: %w", err)
	}

	progress := newProgressReporter(opts.MaxTotalSamples)
	extra := []render.Option{render.WithProgress(progress.report)}

	if *resume {
		f, err := film.ReadFile(*checkpointFile)
		if err != nil {
			return fmt.Errorf("resumption requested, but encountered error loading checkpoint: %w", err)
		}
		glog.Infof("Resuming from %q with %d samples", *checkpointFile, f.TotalSamples)
		extra = append(extra, render.WithFilm(f))
	} else if *checkpointFile != "" {
		// Refuse to blow away hours of render time.
		if _, err := os.Stat(*checkpointFile); err == nil {
			return fmt.Errorf("resumption not requested, but checkpoint %q exists", *checkpointFile)
		}
	}

	r, err := render.New(s, *width, opts, extra...)
	if err != nil {
		return fmt.Errorf("while creating renderer: %w", err)
	}
	cols, rows := r.Size()
	glog.Infof("Rendering %dx%d", cols, rows)

	if *debugListen != "" {
		debugServeMux := http.NewServeMux()
		debugServeMux.Handle("/healthz", healthz.New())
		debugServeMux.Handle("/readyz", healthz.NewReadiness(r.Started))
		debugServeMux.HandleFunc("/debug/pprof/", httppprof.Index)
		debugServeMux.HandleFunc("/debug/pprof/profile", httppprof.Profile)
		debugServeMux.HandleFunc("/debug/pprof/trace", httppprof.Trace)
		preview.New(r, *sceneName).Register(debugServeMux)

		instrumented := httpmetrics.New(debugServeMux)
		if err := instrumented.RegisterMetrics(); err != nil {
			return fmt.Errorf("while registering HTTP metrics: %w", err)
		}
		defer instrumented.UnregisterMetrics()

		debugServer := &http.Server{
			Addr:    *debugListen,
			Handler: instrumented,

			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			MaxHeaderBytes: 1 << 20,
		}
		go func() {
			if err := debugServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				glog.Errorf("Debug server died: %v", err)
			}
		}()
		defer debugServer.Close()
	}

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalCh)
	go func() {
		select {
		case sig := <-signalCh:
			glog.Infof("Got %v, stopping after in-flight samples", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := r.Render(ctx)
	progress.finish()
	if err != nil {
		return fmt.Errorf("while rendering: %w", err)
	}
	glog.Infof("Render %v: passes=%d samples=%d spp=%d elapsed=%v", result.Outcome, result.Passes, result.TotalSamples, r.SamplesPerPixel(), result.Elapsed)

	if *outputPNG != "" {
		if err := writePNG(r, *outputPNG); err != nil {
			return err
		}
		glog.Infof("Wrote %q", *outputPNG)
	}

	if *checkpointFile != "" {
		if err := film.WriteFile(r.Checkpoint(), *checkpointFile); err != nil {
			return fmt.Errorf("while writing checkpoint: %w", err)
		}
		glog.Infof("Wrote checkpoint %q", *checkpointFile)
	}

	return nil
}

func writePNG(r *render.Renderer, name string) error {
	cols, rows := r.Size()
	w, h := cols, rows
	if *outputWidth > 0 {
		w = *outputWidth
		h = (rows*w + cols/2) / cols
		if h < 1 {
			h = 1
		}
	}

	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while opening output file: %w", err)
	}
	if err := png.Encode(out, r.CopyImage(w, h)); err != nil {
		out.Close()
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing output file: %w", err)
	}
	return nil
}
