package metric_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"schedly/src-server/exception"
	"schedly/src-server/metric"
	"schedly/src-server/model"
	"schedly/src-server/nlp"
	"schedly/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func TestScheduleCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := metric.NewSchedule(reg)

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	s.ObserveParse(nlp.Parse("Dentist tomorrow at 3pm", "UTC", now), time.Millisecond)
	s.ObserveParse(nlp.Parse("Call mom", "Mars/Olympus_Mons", now), time.Millisecond)
	s.EventsCreated(6)
	s.ConflictRejected(2)
	s.ExceptionApplied(exception.KindSkip)
	s.ExceptionApplied(exception.KindSkip)

	values := counters(t, reg)
	assert.Equal(t, 1.0, values["schedly_parse_total{result=complete}"])
	assert.Equal(t, 1.0, values["schedly_parse_total{result=title_only}"])
	assert.Equal(t, 6.0, values["schedly_events_created_total"])
	assert.Equal(t, 1.0, values["schedly_conflict_rejections_total"])
	assert.Equal(t, 2.0, values["schedly_conflicts_found_total"])
	assert.Equal(t, 2.0, values["schedly_exceptions_total{kind=skip}"])
	assert.Equal(t, 1.0, values["schedly_timezone_fallback_total"])

	count, err := testutil.GatherAndCount(reg, "schedly_parse_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

// counters flattens every counter in reg, keyed by name and labels.
func counters(t *testing.T, reg prometheus.Gatherer) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]float64)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			c := m.GetCounter()
			if c == nil {
				continue
			}
			key := mf.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetName() + "=" + l.GetValue() + "}"
			}
			out[key] = c.GetValue()
		}
	}
	return out
}

func TestQueryHookSplitsReadsAndWrites(t *testing.T) {
	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	db := bun.NewDB(rawDB, sqlitedialect.New())
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	require.NoError(t, model.CreateSchema(ctx, db))

	chans := utils.NewMetric()
	db.AddQueryHook(metric.NewQueryHook(chans))

	store := model.NewStore(db, model.DefaultLimits)
	_, err = store.CreateEvent(ctx, model.EventInput{
		Title: "Dentist",
		Start: time.Date(2026, 10, 16, 15, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 10, 16, 15, 45, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, chans.DatabaseRead)
	assert.NotEmpty(t, chans.DatabaseWrite)
	assert.Empty(t, chans.DiscordSendMessage)
}

func TestInitRegistersLatencyGauges(t *testing.T) {
	t.Setenv("METRIC_COLLECTION_INTERVAL", "1s")
	t.Setenv("DISCORD_APP_TOKEN", "")
	cfg, err := utils.NewConfig()
	require.NoError(t, err)

	rawDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	rawDB.SetMaxOpenConns(1)
	db := bun.NewDB(rawDB, sqlitedialect.New())
	require.NoError(t, model.CreateSchema(context.Background(), db))

	as := utils.WrapDB(cfg, model.DefaultLimits, rawDB, db)
	t.Cleanup(as.GracefulShutdown)

	reg := prometheus.NewRegistry()
	metric.Init(as, reg)

	utils.Send(as.MetricChans.DatabaseWrite, 42)
	assert.Eventually(t, func() bool {
		families, err := reg.Gather()
		if err != nil {
			return false
		}
		for _, mf := range families {
			if mf.GetName() == "schedly_database_write_microsec" {
				return mf.GetMetric()[0].GetGauge().GetValue() == 42
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	// no discord session, so no discord gauges
	assert.Equal(t, 3, count)
}
