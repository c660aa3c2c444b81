package enrollment

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RepairSchedule writes any occurrence missing from an enrolled student's schedule. The window
// is anchored on the day the student was enrolled, so a repair never extends the schedule.
func (c *Coordinator) RepairSchedule(ctx context.Context, actor Actor, courseID, studentID uuid.UUID) (scheduling.Outcome, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return scheduling.Outcome{}, err
	}
	if actor.ID != studentID && !actor.manages(course) {
		return scheduling.Outcome{}, courses.ErrNotOwner
	}
	if !course.IsEnrolled(studentID) {
		return scheduling.Outcome{}, ErrNotEnrolled
	}
	if !course.HasRecurrence() {
		return scheduling.Outcome{}, scheduling.ErrNotRecurring
	}

	anchor, err := c.enrolledAt(ctx, courseID, studentID)
	if err != nil {
		return scheduling.Outcome{}, err
	}
	out := c.materialize(ctx, course, studentID, anchor)
	c.log.Info("schedule repaired",
		zap.String("course_id", courseID.String()),
		zap.String("student_id", studentID.String()),
		zap.Int("created", out.Created),
		zap.Int("skipped", out.Skipped))
	return out, nil
}

// RepairAll repairs the schedule of every enrolled student of every recurring course and
// returns how many sessions it created.
func (c *Coordinator) RepairAll(ctx context.Context) (int, error) {
	list, err := c.courses.QueryByField(ctx, "is_repetitive", true)
	if err != nil {
		return 0, errors.Wrap(err, "load recurring courses")
	}

	var created int
	var errs error
	for i := range list {
		course := &list[i]
		if !course.HasRecurrence() {
			continue
		}
		for _, studentID := range course.EnrolledStudents {
			anchor, err := c.enrolledAt(ctx, course.ID, studentID)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			// the snapshot may be stale by now; only materialize for a student still enrolled
			current, err := c.loadCourse(ctx, course.ID)
			if errors.Is(err, courses.ErrCourseNotFound) {
				break
			}
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}
			if !current.IsEnrolled(studentID) || !current.HasRecurrence() {
				continue
			}
			out := c.materialize(ctx, current, studentID, anchor)
			created += out.Created
			errs = multierr.Append(errs, out.Err)
		}
	}
	return created, errs
}

// enrolledAt finds when the student joined the course: the latest accepted request or
// payment. Students with neither fall back to now.
func (c *Coordinator) enrolledAt(ctx context.Context, courseID, studentID uuid.UUID) (time.Time, error) {
	var at time.Time

	requests, err := c.requests.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return at, errors.Wrap(err, "load enrollment requests")
	}
	for _, r := range requests {
		if r.StudentID == studentID && r.Status == models.RequestAccepted && r.ResolvedAt != nil && r.ResolvedAt.After(at) {
			at = *r.ResolvedAt
		}
	}

	paid, err := c.payments.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return at, errors.Wrap(err, "load payments")
	}
	for _, p := range paid {
		if p.StudentID == studentID && p.CreatedAt.After(at) {
			at = p.CreatedAt
		}
	}

	if at.IsZero() {
		at = c.now()
	}
	return at, nil
}

// ListStudentSessions returns the student's sessions in calendar order.
func (c *Coordinator) ListStudentSessions(ctx context.Context, studentID uuid.UUID) ([]models.Session, error) {
	list, err := c.sessions.QueryByField(ctx, "owner_id", studentID)
	if err != nil {
		return nil, errors.Wrap(err, "load sessions")
	}
	slices.SortFunc(list, func(a, b models.Session) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), cmp.Compare(a.StartTime, b.StartTime))
	})
	return list, nil
}
