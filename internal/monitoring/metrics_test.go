package monitoring

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.IncPagesFetched("static")
	m.IncPagesFetched("static")
	m.IncPageErrors("browser", "timeout")
	m.IncEscalations()
	m.IncJobs("success")
	m.ObserveJobDuration("static", 1.5)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PagesFetched.WithLabelValues("static")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PageErrors.WithLabelValues("browser", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Escalations))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsTotal.WithLabelValues("success")))

	count, err := testutil.GatherAndCount(reg, "scraper_job_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNewMetricsSeparateRegistries(t *testing.T) {
	t.Parallel()

	// Each registry gets its own collectors, so two instances never collide.
	assert.NotPanics(t, func() {
		NewMetrics(prometheus.NewRegistry())
		NewMetrics(prometheus.NewRegistry())
	})
}

func TestJobStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, JobSuccess, JobStatus(true))
	assert.Equal(t, JobEmpty, JobStatus(false))
}
