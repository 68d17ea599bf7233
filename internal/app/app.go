package app

import (
	"github.com/carousell/ct-go/pkg/logger"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap/zapcore"

	"github.com/KikeGitHub/lealtix-main/internal/config"
	"github.com/KikeGitHub/lealtix-main/internal/kafka"
	"github.com/KikeGitHub/lealtix-main/internal/repo/loyalty"
	"github.com/KikeGitHub/lealtix-main/internal/repo/mongodb"
	"github.com/KikeGitHub/lealtix-main/internal/server"
	"github.com/KikeGitHub/lealtix-main/internal/usecase"
)

func Invoke(funcs ...any) *fx.App {
	log := logger.MustNamed("app")
	conf := config.MustLoad()
	log.Debugw("config loaded", log.Reflect("config", conf))
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			l := &fxevent.ZapLogger{
				Logger: log.Unwrap().Desugar(),
			}
			l.UseLogLevel(zapcore.DebugLevel)
			return l
		}),
		fx.Provide(
			newMongoDB,

			server.NewHandler,

			usecase.NewDialogUsecase,

			mongodb.NewSessionRepository,

			loyalty.NewClient,

			kafka.NewProducer,
		),
		fx.Supply(conf),
		fx.Invoke(funcs...),
	)
}
