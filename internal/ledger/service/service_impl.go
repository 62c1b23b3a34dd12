package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rythudepot/internal/clock"
	"github.com/smallbiznis/rythudepot/internal/config"
	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	obsmetrics "github.com/smallbiznis/rythudepot/internal/observability/metrics"
	"github.com/smallbiznis/rythudepot/internal/undo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// UndoStack is the command stack holding inverses of ledger mutations.
type UndoStack = undo.Stack[domain.UnitOfWork]

type revertFunc = undo.RevertFunc[domain.UnitOfWork]

// Options carries the depot-level behavior switches.
type Options struct {
	Location     *time.Location
	DeletePolicy domain.DeletePolicy
}

type Params struct {
	fx.In

	Repo       domain.Repository
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Undo       *UndoStack
	Options    Options
	Depot      *config.DepotConfigHolder `optional:"true"`
	ObsMetrics *obsmetrics.Metrics       `optional:"true"`
}

type Service struct {
	mu sync.Mutex

	repo         domain.Repository
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	undo         *UndoStack
	loc          *time.Location
	deletePolicy domain.DeletePolicy
	depot        *config.DepotConfigHolder
	obsMetrics   *obsmetrics.Metrics
	tracer       trace.Tracer
}

func NewService(p Params) domain.Service {
	loc := p.Options.Location
	if loc == nil {
		loc = time.UTC
	}
	policy := p.Options.DeletePolicy
	if policy != domain.DeleteReverse {
		policy = domain.DeleteRetain
	}
	c := p.Clock
	if c == nil {
		c = clock.SystemClock{}
	}
	stack := p.Undo
	if stack == nil {
		stack = undo.NewStack[domain.UnitOfWork](c, undo.DefaultWindow, undo.DefaultCapacity)
	}
	return &Service{
		repo:         p.Repo,
		log:          p.Log.Named("ledger.service"),
		genID:        p.GenID,
		clock:        c,
		undo:         stack,
		loc:          loc,
		deletePolicy: policy,
		depot:        p.Depot,
		obsMetrics:   p.ObsMetrics,
		tracer:       otel.Tracer("rythudepot/ledger"),
	}
}

// mutation changes collections through uow and returns the inverse to
// record for undo. A nil inverse marks the operation as not undoable.
type mutation func(ctx context.Context, uow domain.UnitOfWork) (revertFunc, error)

// mutate runs fn as one unit of work: either every collection it touched is
// written or none is.
func (s *Service) mutate(ctx context.Context, op string, fn mutation) error {
	ctx, span := s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("ledger.operation", op)))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	uow := s.repo.Begin(ctx)
	revert, err := fn(ctx, uow)
	if err == nil {
		err = uow.Commit(ctx)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientStock) {
			s.obsMetrics.RecordStockRejection(ctx, op)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		return err
	}

	if revert != nil {
		s.undo.Push(op, revert)
	} else {
		s.undo.Clear()
	}
	s.obsMetrics.RecordMutation(ctx, op)
	return nil
}

// view runs a read-only function against a fresh unit of work.
func (s *Service) view(ctx context.Context, op string, fn func(ctx context.Context, uow domain.UnitOfWork) error) error {
	ctx, span := s.tracer.Start(ctx, "ledger."+op)
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(ctx, s.repo.Begin(ctx)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op)
		return err
	}
	return nil
}

func (s *Service) now() time.Time {
	return s.clock.Now().UTC()
}

func (s *Service) today() string {
	return s.clock.Now().In(s.loc).Format(domain.DateLayout)
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func removeAt[T any](items []T, i int) []T {
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...)
}

func insertAt[T any](items []T, i int, item T) []T {
	if i < 0 || i > len(items) {
		i = len(items)
	}
	out := make([]T, 0, len(items)+1)
	out = append(out, items[:i]...)
	out = append(out, item)
	return append(out, items[i:]...)
}

func validDate(value string) bool {
	if value == "" {
		return true
	}
	_, err := time.Parse(domain.DateLayout, value)
	return err == nil
}
