package utils

// Metric carries latency samples, in microseconds, from wherever they are
// measured to the gauges in the metric package.
type Metric struct {
	DatabaseRead       chan float64
	DatabaseWrite      chan float64
	DiscordSendMessage chan float64
}

func NewMetric() *Metric {
	return &Metric{
		DatabaseRead:       make(chan float64, 16),
		DatabaseWrite:      make(chan float64, 16),
		DiscordSendMessage: make(chan float64, 16),
	}
}

// Send drops the sample when nobody is collecting.
func Send(ch chan float64, value float64) {
	select {
	case ch <- value:
	default:
	}
}
