package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mesosphere/marathon-go/pkg/metrics"
)

type MetricsSuite struct {
	suite.Suite
	*require.Assertions
}

func TestMetricsSuite(t *testing.T) {
	suite.Run(t, new(MetricsSuite))
}

func (s *MetricsSuite) SetupTest() {
	s.Assertions = require.New(s.T())
}

// Register is safe to call repeatedly, from the same or concurrent callers
// (pkg/launch's init calls it unconditionally on package load).
func (s *MetricsSuite) TestRegister_Idempotent() {
	s.NotPanics(func() {
		metrics.Register()
		metrics.Register()
	})
}

func (s *MetricsSuite) TestMatchCounters_IncrementByLabel() {
	metrics.Register()
	before := testutil.ToFloat64(metrics.MatchAttempts.WithLabelValues("app"))
	metrics.MatchAttempts.WithLabelValues("app").Inc()
	after := testutil.ToFloat64(metrics.MatchAttempts.WithLabelValues("app"))
	s.Equal(before+1, after)
}

func (s *MetricsSuite) TestReservationsCreated_Increments() {
	metrics.Register()
	before := testutil.ToFloat64(metrics.ReservationsCreated)
	metrics.ReservationsCreated.Inc()
	after := testutil.ToFloat64(metrics.ReservationsCreated)
	s.Equal(before+1, after)
}
