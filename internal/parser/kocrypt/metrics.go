package kocrypt

import "github.com/hashicorp/go-metrics"

var (
	packageKey = []string{"koimport", "kocrypt"}

	mKeyDecodeTotal       = append(packageKey, "decode", "total")
	mKeyDecodeErrorsTotal = append(packageKey, "decode", "errors", "total")
	mKeyDecodeDurations   = append(packageKey, "decode", "durations", "seconds")
	mKeyBytesDecrypted    = append(packageKey, "decode", "bytes", "total")
	mKeyEncodeTotal       = append(packageKey, "encode", "total")
)

func appLabels(app App) []metrics.Label {
	return []metrics.Label{{Name: "app", Value: app.String()}}
}
