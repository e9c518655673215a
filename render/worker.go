package render

import (
	"context"

	"row-major.net/harpoon/sampling"
)

// worker owns a random stream that lives as long as the renderer.  Only one
// goroutine holds a worker at a time.
type worker struct {
	seeds *sampling.SeedSource
	rng   *sampling.RNG
	batch []sample
}

func (w *worker) random() *sampling.RNG {
	if w.rng == nil {
		w.rng = sampling.NewRNG(w.seeds)
	}
	return w.rng
}

// traceRow traces one sample for each pixel in row, stopping early if ctx
// is cancelled.  The returned slice is reused by the next call.
func (w *worker) traceRow(ctx context.Context, r *Renderer, row int) []sample {
	rng := w.random()
	cam := &r.scene.Camera
	w.batch = w.batch[:0]

	for col := 0; col < r.cols; col++ {
		if ctx.Err() != nil {
			break
		}
		offset := sampling.Uniform2(rng)
		p := cam.PixelToPlane(col, row, r.cols, r.rows, offset)
		l := r.tracer.Li(cam.ImageToRay(p), rng)
		w.batch = append(w.batch, sample{col: col, row: row, offset: offset, l: l})
	}
	return w.batch
}
