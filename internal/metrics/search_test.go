package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveProvider(t *testing.T) {
	ObserveProvider("test_ok", 120*time.Millisecond, 7, "")
	ObserveProvider("test_slow", 2*time.Second, 0, ReasonTimeout)

	assert.Equal(t, 7.0, testutil.ToFloat64(ProviderResultsTotal.WithLabelValues("test_ok")))
	assert.Equal(t, 0.0, testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("test_ok", ReasonError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(ProviderFailuresTotal.WithLabelValues("test_slow", ReasonTimeout)))
}

func TestObserveSearch(t *testing.T) {
	before := testutil.ToFloat64(SearchesTotal.WithLabelValues("quick", "fast"))
	ObserveSearch("quick", "fast")
	assert.Equal(t, before+1, testutil.ToFloat64(SearchesTotal.WithLabelValues("quick", "fast")))
}

func TestSetProviderUp(t *testing.T) {
	SetProviderUp("test_probe", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(ProviderUp.WithLabelValues("test_probe")))

	SetProviderUp("test_probe", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(ProviderUp.WithLabelValues("test_probe")))
}
