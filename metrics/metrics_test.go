package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNewRegistersAllMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.QueriesTotal.WithLabelValues("av").Inc()
	m.DiffsTotal.WithLabelValues("nonempty").Inc()
	m.AnalysisRunsTotal.WithLabelValues("find_domains", "ok").Inc()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}

	var sawQueries bool
	for _, f := range families {
		if f.GetName() == "avpolicy_queries_total" {
			sawQueries = true
		}
	}
	if !sawQueries {
		t.Fatal("expected avpolicy_queries_total to be registered")
	}
}
