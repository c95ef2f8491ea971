// Package telemetry collects the process metrics in memory and prints them
// when a command finishes.
package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/hashicorp/go-metrics"
)

// Stats is an in-memory metrics sink installed as the global sink.
type Stats struct {
	sink *metrics.InmemSink
}

// Enable installs an in-memory sink for the package level metrics calls.
func Enable() (*Stats, error) {
	inm := metrics.NewInmemSink(time.Minute, 10*time.Minute)
	// 키에 이미 koimport 접두사가 있다
	cfg := metrics.DefaultConfig("")
	cfg.EnableHostname = false
	cfg.EnableRuntimeMetrics = false
	if _, err := metrics.NewGlobal(cfg, inm); err != nil {
		return nil, fmt.Errorf("failed to install metrics sink: %w", err)
	}
	return &Stats{sink: inm}, nil
}

type line struct {
	kind  string
	name  string
	value string
}

// Dump writes every collected metric, including the interval that is still
// being aggregated, sorted by name.
func (s *Stats) Dump(w io.Writer) error {
	var lines []line

	for _, intv := range s.sink.Data() {
		intv.RLock()
		for _, val := range intv.Gauges {
			lines = append(lines, line{"G", flattenLabels(val.Name, val.Labels), fmt.Sprintf("%0.3f", val.Value)})
		}
		for _, agg := range intv.Counters {
			lines = append(lines, line{"C", flattenLabels(agg.Name, agg.Labels),
				fmt.Sprintf("%g (n=%d)", agg.Sum, agg.Count)})
		}
		for _, agg := range intv.Samples {
			lines = append(lines, line{"S", flattenLabels(agg.Name, agg.Labels),
				fmt.Sprintf("mean %0.3fms max %0.3fms (n=%d)", agg.AggregateSample.Mean(), agg.Max, agg.Count)})
		}
		intv.RUnlock()
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].name != lines[j].name {
			return lines[i].name < lines[j].name
		}
		return lines[i].kind < lines[j].kind
	})

	buf := new(bytes.Buffer)
	tw := tabwriter.NewWriter(buf, 0, 0, 2, ' ', 0)
	for _, l := range lines {
		fmt.Fprintf(tw, "[%s]\t%s\t%s\n", l.kind, l.name, l.value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// flattenLabels formats the key along with its label values.
func flattenLabels(name string, labels []metrics.Label) string {
	buf := bytes.NewBufferString(name)
	replacer := strings.NewReplacer(" ", "_", ":", "_")

	for _, label := range labels {
		replacer.WriteString(buf, ".")
		replacer.WriteString(buf, label.Value)
	}

	return buf.String()
}
