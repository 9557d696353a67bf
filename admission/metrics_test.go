/*
Copyright © 2026 Acronis International GmbH.

Released under MIT license.
*/

package admission

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/acronis/go-admission/testutil"
)

func TestPrometheusMetrics(t *testing.T) {
	pm := NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{Namespace: "test"})
	attempt := Attempt{ID: "id", ActorID: "Jan", StartedAt: time.Now()}

	pm.AdmissionStarted(attempt)
	pm.AdmissionStarted(attempt)
	pm.AdmissionStarted(attempt)
	pm.AdmissionDenied(attempt, Denial{Reason: DenialReasonNoActorCapacity})
	pm.AdmissionDenied(attempt, Denial{Reason: DenialReasonNoActorCapacity, Cancelled: true})
	pm.AdmissionCompleted(attempt, 100*time.Millisecond)
	pm.InternalError(attempt, errors.New("boom"))

	testutil.RequireSamplesCountInCounter(t, pm.StartedTotal.WithLabelValues(), 3)
	testutil.RequireSamplesCountInCounter(t,
		pm.DeniedTotal.WithLabelValues(string(DenialReasonNoActorCapacity), "false"), 1)
	testutil.RequireSamplesCountInCounter(t,
		pm.DeniedTotal.WithLabelValues(string(DenialReasonNoActorCapacity), "true"), 1)
	testutil.RequireSamplesCountInCounter(t,
		pm.DeniedTotal.WithLabelValues(string(DenialReasonNoRequestCapacity), "false"), 0)
	testutil.RequireSamplesCountInCounter(t, pm.CompletedTotal.WithLabelValues(), 1)
	testutil.RequireSamplesCountInCounter(t, pm.InternalErrorsTotal.WithLabelValues(), 1)
	testutil.RequireSamplesCountInHistogram(t, pm.WorkDuration.WithLabelValues().(prometheus.Histogram), 1)
}

func TestPrometheusMetrics_MustCurryWith(t *testing.T) {
	pm := NewPrometheusMetricsWithOpts(PrometheusMetricsOpts{CurriedLabelNames: []string{"pool"}})
	curried := pm.MustCurryWith(prometheus.Labels{"pool": "main"})
	attempt := Attempt{ID: "id", ActorID: "Kot", StartedAt: time.Now()}

	curried.AdmissionStarted(attempt)
	curried.AdmissionDenied(attempt, Denial{Reason: DenialReasonNoPerActorCapacity})

	testutil.RequireSamplesCountInCounter(t, pm.StartedTotal.WithLabelValues("main"), 1)
	testutil.RequireSamplesCountInCounter(t,
		pm.DeniedTotal.WithLabelValues("main", string(DenialReasonNoPerActorCapacity), "false"), 1)
}

func TestPrometheusMetrics_WithController(t *testing.T) {
	pm := NewPrometheusMetrics()
	cfg := makeConfig(1, 5, 1, 10*time.Millisecond)
	work := newGatedWork()
	c, err := NewWithOpts(cfg, Opts{Observer: pm, Work: work.Work})
	require.NoError(t, err)

	done := make(chan bool)
	go func() {
		done <- c.AttemptAdmission(context.Background(), "Jan")
	}()
	work.WaitEntered(t, 1)
	require.False(t, c.AttemptAdmission(context.Background(), "Roman"))
	work.Open()
	require.True(t, <-done)

	testutil.RequireSamplesCountInCounter(t, pm.StartedTotal.WithLabelValues(), 2)
	testutil.RequireSamplesCountInCounter(t, pm.CompletedTotal.WithLabelValues(), 1)
	testutil.RequireSamplesCountInCounter(t,
		pm.DeniedTotal.WithLabelValues(string(DenialReasonNoRequestCapacity), "false"), 1)
}

func TestStatsCollector(t *testing.T) {
	cfg := makeConfig(8, 5, 2, 10*time.Millisecond)
	work := newGatedWork()
	c, err := NewWithOpts(cfg, Opts{Work: work.Work})
	require.NoError(t, err)
	sc := NewStatsCollector(c, "test")

	done := make(chan bool, 3)
	for _, actorID := range []string{"Jan", "Jan", "Dionizy"} {
		actorID := actorID
		go func() {
			done <- c.AttemptAdmission(context.Background(), actorID)
		}()
	}
	work.WaitEntered(t, 3)

	require.Equal(t, float64(3), promtestutil.ToFloat64(sc.InFlightRequests))
	require.Equal(t, float64(3), promtestutil.ToFloat64(sc.Working))
	require.Equal(t, float64(2), promtestutil.ToFloat64(sc.ActiveActors))

	work.Open()
	for i := 0; i < 3; i++ {
		require.True(t, <-done)
	}
	require.Equal(t, float64(0), promtestutil.ToFloat64(sc.InFlightRequests))
	require.Equal(t, float64(0), promtestutil.ToFloat64(sc.ActiveActors))
}
