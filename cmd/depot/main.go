package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger"
	"github.com/smallbiznis/rythudepot/internal/observability"
	"github.com/smallbiznis/rythudepot/internal/scheduler"
	"github.com/smallbiznis/rythudepot/internal/seed"
	"github.com/smallbiznis/rythudepot/internal/server"
	"github.com/smallbiznis/rythudepot/internal/storage/backends"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		backends.Module,

		ledger.Module,
		seed.Module,
		scheduler.Module,
		server.Module,

		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Named("fx")}
		}),
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
