package wmf

import "github.com/hashicorp/go-metrics"

var (
	packageKey = []string{"koimport", "wmf"}

	mKeyPlayTotal        = append(packageKey, "play", "total")
	mKeyPlayErrorsTotal  = append(packageKey, "play", "errors", "total")
	mKeyPlayDurations    = append(packageKey, "play", "durations", "seconds")
	mKeyRecordsTotal     = append(packageKey, "records", "total")
	mKeyShapesTotal      = append(packageKey, "shapes", "total")
	mKeyImagesTotal      = append(packageKey, "images", "total")
	mKeyUnsupportedTotal = append(packageKey, "records", "unsupported", "total")
)

func labelsFor(h *Header) []metrics.Label {
	kind := "placeable"
	if h.Standard {
		kind = "standard"
	}
	return []metrics.Label{{Name: "kind", Value: kind}}
}
