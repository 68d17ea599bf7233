package app

import (
	"context"
	"time"

	log "github.com/carousell/ct-go/pkg/logger/log_context"
	"go.uber.org/fx"

	"github.com/KikeGitHub/lealtix-main/internal/config"
	"github.com/KikeGitHub/lealtix-main/internal/repo/mongodb"
	"github.com/KikeGitHub/lealtix-main/internal/usecase"
)

func newMongoDB(lc fx.Lifecycle, cfg *config.Config) (*mongodb.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := mongodb.NewConnection(ctx, cfg.Database.URI, cfg.Database.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})

	return db, nil
}

// StartSessionSweeper closes carts left idle past the configured
// timeout so abandonment events fire even when the widget never says
// goodbye.
func StartSessionSweeper(
	lc fx.Lifecycle,
	conf *config.Config,
	dialog usecase.DialogUsecase,
) {
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ticker := time.NewTicker(conf.Session.SweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-done:
						return
					case <-ticker.C:
						ctx := context.Background()
						if err := dialog.SweepAbandoned(ctx, conf.Session.IdleTimeout); err != nil {
							log.Errorw(ctx, "Session sweep failed", "error", err)
						}
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
}
