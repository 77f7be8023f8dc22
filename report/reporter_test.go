package report

import "testing"

func TestCollectingReporterAccumulates(t *testing.T) {
	r := NewCollectingReporter()
	r.Report(SeverityHigh, "find_domains", "t_a flagged")
	r.Report(SeverityLow, "find_domains", "skipping optional check")

	if len(r.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(r.Messages))
	}
	if r.Messages[0].Severity != SeverityHigh || r.Messages[0].Module != "find_domains" {
		t.Fatalf("unexpected first message: %+v", r.Messages[0])
	}
}

func TestMultiReporterFansOut(t *testing.T) {
	a := NewCollectingReporter()
	b := NewCollectingReporter()
	m := NewMultiReporter(a, b)
	m.Report(SeverityMid, "find_file_types", "hit")

	if len(a.Messages) != 1 || len(b.Messages) != 1 {
		t.Fatalf("expected both collectors to receive the message, got %d and %d", len(a.Messages), len(b.Messages))
	}
}

func TestSlogReporterDefaultsWithNilLogger(t *testing.T) {
	r := NewSlogReporter(nil)
	r.Report(SeverityNone, "find_net_types", "no issues found")
}
