package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	// Register should be safe to call multiple times
	Register()
	Register()

	assert.NotPanics(t, func() {
		IncHTTP("/health", "200")
		IncRateLimited("contact_sharing")
		IncDuplicateCallback()
		IncBroadcast("sent")
		IncPostback("registration", "ok")
	})

	before := testutil.ToFloat64(broadcastMessages.WithLabelValues("blocked"))
	IncBroadcast("blocked")
	IncBroadcast("blocked")
	assert.Equal(t, before+2, testutil.ToFloat64(broadcastMessages.WithLabelValues("blocked")))

	dup := testutil.ToFloat64(duplicateCallbacks)
	IncDuplicateCallback()
	assert.Equal(t, dup+1, testutil.ToFloat64(duplicateCallbacks))
}
