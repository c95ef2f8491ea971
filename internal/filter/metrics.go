package filter

import (
	"github.com/hashicorp/go-metrics"

	"github.com/roboco-io/koimport/internal/parser"
)

var (
	packageKey = []string{"koimport", "filter"}

	mKeyConvertTotal       = append(packageKey, "convert", "total")
	mKeyConvertErrorsTotal = append(packageKey, "convert", "errors", "total")
	mKeyConvertDurations   = append(packageKey, "convert", "durations", "seconds")
	mKeyAttemptsTotal      = append(packageKey, "crypt", "attempts", "total")
	mKeyCancelledTotal     = append(packageKey, "crypt", "cancelled", "total")
	mKeyOutputBytes        = append(packageKey, "output", "bytes", "total")
)

func filterLabels(name string) []metrics.Label {
	return []metrics.Label{{Name: "filter", Value: name}}
}

func errorLabels(name string, err error) []metrics.Label {
	return append(filterLabels(name), metrics.Label{Name: "kind", Value: parser.KindOf(err).String()})
}
