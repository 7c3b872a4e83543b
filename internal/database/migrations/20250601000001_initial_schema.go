package migrations

import (
	"context"
	"fmt"

	"github.com/craftlist/craftlist/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.User)(nil),
			(*types.Server)(nil),
			(*types.StatusSample)(nil),
			(*types.ServerIcon)(nil),
			(*types.DailyRank)(nil),
			(*types.HourlyRank)(nil),
			(*types.Vote)(nil),
			(*types.Review)(nil),
			(*types.AnalyticsEvent)(nil),
			(*types.DailyAnalytics)(nil),
			(*types.Promotion)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table for %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Promotion)(nil),
			(*types.DailyAnalytics)(nil),
			(*types.AnalyticsEvent)(nil),
			(*types.Review)(nil),
			(*types.Vote)(nil),
			(*types.HourlyRank)(nil),
			(*types.DailyRank)(nil),
			(*types.ServerIcon)(nil),
			(*types.StatusSample)(nil),
			(*types.Server)(nil),
			(*types.User)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table for %T: %w", model, err)
			}
		}

		return nil
	})
}
