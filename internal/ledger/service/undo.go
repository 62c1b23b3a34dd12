package service

import (
	"context"
	"errors"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"github.com/smallbiznis/rythudepot/internal/undo"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Undo reverts the most recent mutation if it is still inside the undo
// window. The revert runs as its own unit of work; if it cannot be
// committed the action stays available.
func (s *Service) Undo(ctx context.Context) (domain.UndoResult, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.undo")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	action, err := s.undo.Pop()
	if err != nil {
		result := "empty"
		if errors.Is(err, undo.ErrUndoExpired) {
			result = "expired"
		}
		s.obsMetrics.RecordUndo(ctx, result)
		return domain.UndoResult{}, err
	}

	uow := s.repo.Begin(ctx)
	err = action.Revert(ctx, uow)
	if err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		s.undo.Restore(action)
		s.obsMetrics.RecordUndo(ctx, "failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, "undo")
		s.log.Warn("undo failed", zap.String("kind", action.Kind), zap.Error(err))
		return domain.UndoResult{}, err
	}

	s.obsMetrics.RecordUndo(ctx, "applied")
	s.log.Info("action undone", zap.String("kind", action.Kind))
	return domain.UndoResult{Kind: action.Kind, At: action.At}, nil
}
