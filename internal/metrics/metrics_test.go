package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGathersCollectors(t *testing.T) {
	reg := NewRegistry()

	before := testutil.ToFloat64(EmailsSent.WithLabelValues(ResultOK))
	EmailsSent.WithLabelValues(ResultOK).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(EmailsSent.WithLabelValues(ResultOK)))

	families, err := reg.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["backoffice_emails_total"])
	assert.True(t, names["backoffice_orders_created_total"])
	assert.True(t, names["go_goroutines"])
}
