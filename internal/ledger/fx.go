package ledger

import (
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/ledger/repository"
	"github.com/smallbiznis/rythudepot/internal/ledger/service"
	"github.com/smallbiznis/rythudepot/internal/undo"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("ledger.service",
	fx.Provide(
		repository.Provide,
		provideOptions,
		provideUndoStack,
		service.NewService,
	),
)

func provideOptions(cfg config.Config, log *zap.Logger) service.Options {
	loc, err := cfg.Location()
	if err != nil {
		log.Warn("invalid depot timezone, using UTC",
			zap.String("timezone", cfg.DepotTimezone),
			zap.Error(err),
		)
	}
	return service.Options{
		Location:     loc,
		DeletePolicy: domain.DeletePolicy(cfg.BillDeletePolicy),
	}
}

func provideUndoStack(cfg config.Config, c clock.Clock) *service.UndoStack {
	return undo.NewStack[domain.UnitOfWork](c, cfg.UndoWindow, cfg.UndoDepth)
}
