package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RegistersWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New("portal", reg)

	m.BackendRequests.WithLabelValues("get_doctors", "success").Inc()
	m.SessionOperations.WithLabelValues("memory", "get", "ok").Add(2)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.BackendRequests.WithLabelValues("get_doctors", "success")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionOperations.WithLabelValues("memory", "get", "ok")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "portal_backend_requests_total")
	assert.Contains(t, names, "portal_session_operations_total")
}

func TestNew_NilRegistererDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		New("portal", nil)
		New("portal", nil)
	})
}
