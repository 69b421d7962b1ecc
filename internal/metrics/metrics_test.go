package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/emurenMRz/bounceview/bounce"
	"github.com/emurenMRz/bounceview/status"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.Observe([]bounce.Result{
		{EmailType: bounce.Bounce, Action: status.Failed, Reason: status.UserUnknown},
		{EmailType: bounce.Bounce, Action: status.Failed, Reason: status.UserUnknown},
		{EmailType: bounce.Bounce, Action: status.Transient, Reason: status.NotAccept},
	}, time.Millisecond)
	r.Observe(nil, time.Millisecond)
	r.Observe([]bounce.Result{{EmailType: bounce.Fbl, Action: status.Failed, Reason: status.Filtered}}, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues("bounce")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues(Unclassified)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues("fbl")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.results.WithLabelValues("bounce", "failed", "userunknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("bounce", "transient", "notaccept")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("fbl", "failed", "filtered")))

	families, err := reg.Gather()
	assert.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "bounceview_parse_seconds" {
			assert.Equal(t, uint64(3), f.GetMetric()[0].GetHistogram().GetSampleCount())
		}
	}
}

func TestRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) }, "second registration on the same registry")
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() { r.Observe(nil, time.Second) })
}

func TestParse(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	results := r.Parse(bounce.New(), "Subject: hello\r\n\r\nnothing to see\r\n")
	assert.Empty(t, results)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues(Unclassified)))

	families, err := reg.Gather()
	assert.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "bounceview_messages_total")
	assert.Contains(t, names, "bounceview_parse_seconds")
}
