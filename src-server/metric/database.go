package metric

import (
	"context"
	"time"

	"schedly/src-server/model"
	"schedly/src-server/utils"

	"github.com/uptrace/bun"
)

func database(ctx context.Context, db bun.IDB) (time.Duration, error) {
	start := time.Now()
	if _, err := db.NewSelect().
		Model((*model.Event)(nil)).
		Where("id = ?", "").
		Exists(ctx); err != nil {
		return 0, err
	}
	return time.Since(start), nil
}

// QueryHook feeds the duration of every query into the read or write
// latency channel.
type QueryHook struct {
	chans *utils.Metric
}

var _ bun.QueryHook = (*QueryHook)(nil)

func NewQueryHook(chans *utils.Metric) *QueryHook {
	return &QueryHook{chans: chans}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	latency := float64(time.Since(event.StartTime).Microseconds())
	switch event.Operation() {
	case "SELECT":
		utils.Send(h.chans.DatabaseRead, latency)
	case "INSERT", "UPDATE", "DELETE":
		utils.Send(h.chans.DatabaseWrite, latency)
	}
}
