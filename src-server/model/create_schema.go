package model

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
)

func CreateSchema(ctx context.Context, db *bun.DB) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*Series)(nil),
			(*Event)(nil),
			(*SeriesException)(nil),
		} {
			if _, err := tx.
				NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		for _, idx := range []struct {
			name    string
			columns []string
		}{
			{"events_start_date_idx", []string{"start_date"}},
			{"events_series_idx", []string{"series_id", "original_start"}},
		} {
			if _, err := tx.
				NewCreateIndex().
				Model((*Event)(nil)).
				Index(idx.name).
				Column(idx.columns...).
				IfNotExists().
				Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("CreateSchema: %w", err)
	}

	return nil
}
