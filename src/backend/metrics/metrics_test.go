package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPredictionsTotal_PerLabel(t *testing.T) {
	before := testutil.ToFloat64(PredictionsTotal.WithLabelValues("Positivo"))
	PredictionsTotal.WithLabelValues("Positivo").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(PredictionsTotal.WithLabelValues("Positivo")))
}

func TestModelHealthy_Gauge(t *testing.T) {
	ModelHealthy.Set(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(ModelHealthy))
	ModelHealthy.Set(0)
	assert.Equal(t, 0.0, testutil.ToFloat64(ModelHealthy))
}
