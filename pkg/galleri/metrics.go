package galleri

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transcodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "galleri_transcodes_total",
			Help: "Photos converted into a thumbnail and main rendition",
		},
		[]string{"result"},
	)

	assetsCopiedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "galleri_assets_copied_total",
			Help: "Theme asset files copied into the output tree",
		},
	)

	albumsRenderedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "galleri_albums_rendered_total",
			Help: "Album index pages written",
		},
	)

	buildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "galleri_build_duration_seconds",
			Help:    "Wall time of a full gallery build",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900},
		},
	)
)
