// Package httpmetrics counts requests served by the debug and preview
// endpoints.
package httpmetrics

import (
	"net/http"

	"github.com/golang/glog"
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var pathKey = tag.MustNewKey("path")

type Wrapper struct {
	requestCount     *stats.Int64Measure
	requestCountView *view.View

	inner http.Handler
}

func New(inner http.Handler) *Wrapper {
	r := &Wrapper{}

	r.requestCount = stats.Int64("harpoon/http_requests", "", stats.UnitDimensionless)
	r.requestCountView = &view.View{
		Name:        "harpoon/http_requests",
		Description: "Counter of requests that have been handled",

		TagKeys: []tag.Key{pathKey},

		Measure:     r.requestCount,
		Aggregation: view.Count(),
	}

	r.inner = inner

	return r
}

func (h *Wrapper) RegisterMetrics() error {
	return view.Register(h.requestCountView)
}

func (h *Wrapper) UnregisterMetrics() {
	view.Unregister(h.requestCountView)
}

func (h *Wrapper) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.inner.ServeHTTP(w, r)

	glog.V(2).Infof("Served path=%q remoteaddr=%q", r.URL.Path, r.RemoteAddr)

	stats.RecordWithOptions(
		r.Context(),
		stats.WithTags(tag.Insert(pathKey, r.URL.Path)),
		stats.WithMeasurements(h.requestCount.M(1)))
}
