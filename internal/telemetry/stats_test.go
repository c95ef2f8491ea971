package telemetry

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-metrics"
)

func TestStats_Dump(t *testing.T) {
	stats, err := Enable()
	if err != nil {
		t.Fatalf("Enable failed: %v", err)
	}

	labels := []metrics.Label{{Name: "kind", Value: "read shortfall"}}
	metrics.IncrCounterWithLabels([]string{"koimport", "test", "total"}, 2, labels)
	metrics.IncrCounterWithLabels([]string{"koimport", "test", "total"}, 3, labels)
	metrics.MeasureSince([]string{"koimport", "test", "durations"}, time.Now().Add(-5*time.Millisecond))

	var buf bytes.Buffer
	if err := stats.Dump(&buf); err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "koimport.test.total.read_shortfall") {
		t.Errorf("Expected flattened counter name, got:\n%s", out)
	}
	if !strings.Contains(out, "5 (n=2)") {
		t.Errorf("Expected counter sum 5 over 2 samples, got:\n%s", out)
	}
	if !strings.Contains(out, "[S]") || !strings.Contains(out, "koimport.test.durations") {
		t.Errorf("Expected timer sample, got:\n%s", out)
	}	// 평균은 집계된 샘플에서 계산한다
	if strings.Contains(out, "mean 0.000ms") || !strings.Contains(out, "(n=1)") {
		t.Errorf("Expected a non-zero mean over one sample, got:\n%s", out)
	}
}

func TestFlattenLabels(t *testing.T) {
	got := flattenLabels("a.b", []metrics.Label{{Name: "x", Value: "c d"}, {Name: "y", Value: "e:f"}})
	if got != "a.b.c_d.e_f" {
		t.Errorf("Expected a.b.c_d.e_f, got %s", got)
	}
}
