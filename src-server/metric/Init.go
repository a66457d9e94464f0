package metric

import (
	"log/slog"
	"time"

	"schedly/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
)

// gauge registers a latency gauge, tolerating one that is already there.
func gauge(reg prometheus.Registerer, name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help})
	if err := reg.Register(g); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			slog.Error("can't register metric", "metric", name, "error", err)
			return g
		}
		if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
			g = existing
		}
	}
	slog.Debug("metric registered", "metric", name)
	g.Set(0)
	return g
}

// sampled keeps g at the latest sample from ch and drops back to 0 when no
// sample arrives for a whole clearInterval.
func sampled(as *utils.AppState, g prometheus.Gauge, ch chan float64, clearInterval time.Duration) {
	go func() {
		clearTicker := time.NewTicker(clearInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-as.Done():
				return
			case latency := <-ch:
				g.Set(latency)
				clearTicker.Reset(clearInterval)
			case <-clearTicker.C:
				g.Set(0)
			}
		}
	}()
}

// polled sets g from probe every interval.
func polled(as *utils.AppState, g prometheus.Gauge, interval time.Duration, probe func() (time.Duration, error)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-as.Done():
				return
			case <-ticker.C:
				latency, err := probe()
				if err != nil {
					slog.Error("can't probe latency", "error", err)
					continue
				}
				g.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// Init starts the latency gauges. They stop with the app.
func Init(as *utils.AppState, reg prometheus.Registerer) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := tickerInterval * 2

	polled(as,
		gauge(reg, "schedly_database_empty_read_microsec", "The latency of an empty database read in microseconds"),
		tickerInterval,
		func() (time.Duration, error) { return database(as.Context(), as.BunDB) },
	)
	sampled(as,
		gauge(reg, "schedly_database_read_microsec", "The latency of a database read in microseconds"),
		as.MetricChans.DatabaseRead, clearTickerInterval,
	)
	sampled(as,
		gauge(reg, "schedly_database_write_microsec", "The latency of a database write in microseconds"),
		as.MetricChans.DatabaseWrite, clearTickerInterval,
	)

	if as.DgSession == nil {
		return
	}
	sampled(as,
		gauge(reg, "schedly_discord_send_message_microsec", "The latency of a discord message send in microseconds"),
		as.MetricChans.DiscordSendMessage, clearTickerInterval,
	)
	polled(as,
		gauge(reg, "schedly_discord_heartbeat_latency_microsec", "The latency of a discord heartbeat in microseconds"),
		tickerInterval,
		func() (time.Duration, error) { return as.DgSession.HeartbeatLatency(), nil },
	)
}
