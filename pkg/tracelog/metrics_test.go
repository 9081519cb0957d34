package tracelog

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"gotest.tools/assert"
)

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.MessagesCommitted.Inc()
	m.PayloadBytes.Add(100)

	mfs, err := reg.Gather()
	assert.Assert(t, err == nil, err)
	assert.Assert(t, len(mfs) == 8)
}
