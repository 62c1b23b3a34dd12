package scheduler

import (
	"context"
	"strings"
	"time"

	"github.com/smallbiznis/rythudepot/internal/ledger/domain"
	"go.uber.org/zap"
)

// DuesDigestJob logs every farmer whose next visit date is today or earlier
// together with the amount payable on that visit.
func (s *Scheduler) DuesDigestJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, jobDuesDigest)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}

	dues, err := s.ledger.FarmerDues(ctx, 0)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.dues.load_failed", jobDuesDigest, err)
		return err
	}

	today := s.clock.Now().In(s.cfg.Location)
	count := 0
	for _, due := range dues {
		if !visitDue(due.Farmer.NextVisitDate, today) {
			continue
		}
		count++
		s.logger(ctx).Info("dues.digest.farmer",
			zap.String("farmer_id", due.Farmer.ID.String()),
			zap.String("farmer", due.Farmer.Name),
			zap.String("village", due.Farmer.Village),
			zap.String("mobile", due.Farmer.Mobile),
			zap.String("next_visit_date", due.Farmer.NextVisitDate),
			zap.String("outstanding", due.Outstanding.StringFixed(2)),
			zap.String("interest", due.Interest.StringFixed(2)),
			zap.String("total_payable", due.TotalPayable.StringFixed(2)),
		)
	}
	run.AddProcessed(len(dues))
	s.metrics.SetFarmersDue(jobDuesDigest, count)
	s.logger(ctx).Info("dues.digest.summary",
		zap.Int("farmers", len(dues)),
		zap.Int("due", count),
	)
	return nil
}

// visitDue compares calendar days in the depot zone. Unparseable dates are
// never due.
func visitDue(nextVisitDate string, today time.Time) bool {
	nextVisitDate = strings.TrimSpace(nextVisitDate)
	if nextVisitDate == "" {
		return false
	}
	visit, err := time.ParseInLocation(domain.DateLayout, nextVisitDate, today.Location())
	if err != nil {
		return false
	}
	y, m, d := today.Date()
	return !visit.After(time.Date(y, m, d, 0, 0, 0, 0, today.Location()))
}
