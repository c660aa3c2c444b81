package scheduling

import (
	"context"
	"sync"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Materializer persists and removes session occurrences. Writes fan out concurrently and
// are independent: one failed create never cancels the others.
type Materializer struct {
	sessions    database.Collection[models.Session]
	concurrency int
	log         *zap.Logger
}

func NewMaterializer(sessions database.Collection[models.Session], concurrency int, log *zap.Logger) *Materializer {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Materializer{sessions: sessions, concurrency: concurrency, log: log}
}

// Outcome reports what a fan-out write did. Err aggregates every individual failure.
type Outcome struct {
	Created     int
	Skipped     int
	FailedDates []string
	Err         error
}

func (o Outcome) Complete() bool {
	return o.Err == nil
}

// Persist creates every session whose (repetitionId, date) is not already stored, so calling
// it again after a partial failure only fills the gaps.
func (m *Materializer) Persist(ctx context.Context, sessions []models.Session) Outcome {
	var out Outcome
	if len(sessions) == 0 {
		return out
	}

	existing, err := m.existingDates(ctx, sessions)
	if err != nil {
		out.Err = errors.Wrap(err, "load existing sessions")
		for _, s := range sessions {
			out.FailedDates = append(out.FailedDates, s.Date)
		}
		return out
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(m.concurrency)

	for i := range sessions {
		s := sessions[i]
		if existing[s.RepetitionID][s.Date] {
			out.Skipped++
			continue
		}
		g.Go(func() error {
			err := m.sessions.Create(ctx, &s)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				metrics.SessionWrites.WithLabelValues("failed").Inc()
				m.log.Warn("session write failed",
					zap.String("repetition_id", s.RepetitionID),
					zap.String("date", s.Date),
					zap.Error(err))
				out.FailedDates = append(out.FailedDates, s.Date)
				out.Err = multierr.Append(out.Err, errors.Wrapf(err, "create session %s", s.Date))
				return nil
			}
			metrics.SessionWrites.WithLabelValues("created").Inc()
			out.Created++
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (m *Materializer) existingDates(ctx context.Context, sessions []models.Session) (map[string]map[string]bool, error) {
	existing := make(map[string]map[string]bool)
	for _, s := range sessions {
		if _, seen := existing[s.RepetitionID]; seen {
			continue
		}
		stored, err := m.sessions.QueryByField(ctx, "repetition_id", s.RepetitionID)
		if err != nil {
			return nil, err
		}
		dates := make(map[string]bool, len(stored))
		for _, st := range stored {
			dates[st.Date] = true
		}
		existing[s.RepetitionID] = dates
	}
	return existing, nil
}

// RemoveRepetition deletes every session tagged with repetitionID.
func (m *Materializer) RemoveRepetition(ctx context.Context, repetitionID string) (int, error) {
	stored, err := m.sessions.QueryByField(ctx, "repetition_id", repetitionID)
	if err != nil {
		return 0, errors.Wrap(err, "query sessions by repetition")
	}
	return m.deleteAll(ctx, stored)
}

// RemoveCourse deletes every session derived from courseID, whoever it belongs to.
func (m *Materializer) RemoveCourse(ctx context.Context, courseID uuid.UUID) (int, error) {
	stored, err := m.sessions.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return 0, errors.Wrap(err, "query sessions by course")
	}
	return m.deleteAll(ctx, stored)
}

func (m *Materializer) deleteAll(ctx context.Context, sessions []models.Session) (int, error) {
	var (
		mu      sync.Mutex
		deleted int
		errs    error
		g       errgroup.Group
	)
	g.SetLimit(m.concurrency)

	for i := range sessions {
		id := sessions[i].ID
		g.Go(func() error {
			err := m.sessions.Delete(ctx, id)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = multierr.Append(errs, errors.Wrapf(err, "delete session %s", id))
				return nil
			}
			deleted++
			return nil
		})
	}
	_ = g.Wait()
	return deleted, errs
}
