package render

import (
	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	filterKey = tag.MustNewKey("filter")

	samplesMeasure     = stats.Int64("harpoon/samples", "Radiance samples accumulated into the film", stats.UnitDimensionless)
	passLatencyMeasure = stats.Float64("harpoon/pass_latency", "Wall time taken by one full-image pass", stats.UnitMilliseconds)

	samplesView = &view.View{
		Name:        "harpoon/samples",
		Description: "Total radiance samples accumulated",
		TagKeys:     []tag.Key{filterKey},
		Measure:     samplesMeasure,
		Aggregation: view.Sum(),
	}

	passLatencyView = &view.View{
		Name:        "harpoon/pass_latency",
		Description: "Distribution of pass wall times",
		TagKeys:     []tag.Key{filterKey},
		Measure:     passLatencyMeasure,
		Aggregation: view.Distribution(10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000),
	}
)

// RegisterViews registers the renderer's metric views with opencensus.
func RegisterViews() error {
	return view.Register(samplesView, passLatencyView)
}
