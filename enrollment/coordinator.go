package enrollment

import (
	"context"
	"slices"
	"time"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/payments"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const (
	WarnScheduleIncomplete = "You are enrolled, but your schedule may be incomplete. It will be repaired automatically; contact support if sessions are still missing."
	WarnPayoutPending      = "The instructor payout is pending and will be retried."
)

// Notifier delivers an in-app notification. Implementations log their own failures.
type Notifier interface {
	Notify(ctx context.Context, fromID, toID uuid.UUID, kind models.NotificationKind, payload map[string]any)
}

// ThumbnailRemover deletes a course thumbnail from object storage.
type ThumbnailRemover interface {
	Remove(ctx context.Context, publicID string) error
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) manages(course *models.Course) bool {
	return a.ID == course.InstructorID || a.Role == models.RoleModerator
}

type Options struct {
	FingerprintKey        []byte
	Currency              string
	DefaultScheduleMonths int
	SessionConcurrency    int
	Thumbnails            ThumbnailRemover
	Now                   func() time.Time
}

// Result describes a completed enrollment. Warnings carry best-effort side effects that did
// not finish; the enrollment itself stands.
type Result struct {
	Course   *models.Course
	Request  *models.EnrollmentRequest
	Payment  *models.Payment
	Sessions scheduling.Outcome
	Warnings []string
}

// Coordinator owns every transition that adds a student to or removes one from a course.
type Coordinator struct {
	users    database.Collection[models.User]
	courses  database.Collection[models.Course]
	requests database.Collection[models.EnrollmentRequest]
	payments database.Collection[models.Payment]
	progress database.Collection[models.CourseProgress]
	sessions database.Collection[models.Session]

	materializer *scheduling.Materializer
	provider     payments.Provider
	notifier     Notifier
	thumbnails   ThumbnailRemover
	validate     *validator.Validate

	fingerprintKey []byte
	currency       string
	defaultMonths  int
	now            func() time.Time
	log            *zap.Logger
}

func NewCoordinator(stores *database.Stores, provider payments.Provider, notifier Notifier, opts Options, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.DefaultScheduleMonths <= 0 {
		opts.DefaultScheduleMonths = 3
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Coordinator{
		users:          stores.Users,
		courses:        stores.Courses,
		requests:       stores.Requests,
		payments:       stores.Payments,
		progress:       stores.Progress,
		sessions:       stores.Sessions,
		materializer:   scheduling.NewMaterializer(stores.Sessions, opts.SessionConcurrency, log),
		provider:       provider,
		notifier:       notifier,
		thumbnails:     opts.Thumbnails,
		validate:       newCardValidator(),
		fingerprintKey: opts.FingerprintKey,
		currency:       opts.Currency,
		defaultMonths:  opts.DefaultScheduleMonths,
		now:            opts.Now,
		log:            log,
	}
}

func (c *Coordinator) loadCourse(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	course, err := c.courses.Get(ctx, courseID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, courses.ErrCourseNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	return course, nil
}

func (c *Coordinator) loadUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := c.users.Get(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrStudentNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load user")
	}
	return user, nil
}

// enroll re-reads the course and appends studentID unless it is already there. The bool
// reports whether this call added the student. Concurrent writers are last-writer-wins.
func (c *Coordinator) enroll(ctx context.Context, courseID, studentID uuid.UUID) (*models.Course, bool, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	if course.IsEnrolled(studentID) {
		return course, false, nil
	}

	enrolled := append(slices.Clone(course.EnrolledStudents), studentID)
	if err := c.courses.Update(ctx, courseID, map[string]any{"enrolled_students": enrolled}); err != nil {
		return nil, false, errors.Wrap(err, "add student to course")
	}
	course.EnrolledStudents = enrolled
	return course, true, nil
}

func (c *Coordinator) unenroll(ctx context.Context, courseID, studentID uuid.UUID) (*models.Course, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	enrolled := slices.DeleteFunc(slices.Clone(course.EnrolledStudents), func(id uuid.UUID) bool { return id == studentID })
	if enrolled == nil {
		enrolled = datatypes.JSONSlice[uuid.UUID]{}
	}
	if err := c.courses.Update(ctx, courseID, map[string]any{"enrolled_students": enrolled}); err != nil {
		return nil, errors.Wrap(err, "remove student from course")
	}
	course.EnrolledStudents = enrolled
	return course, nil
}

// materialize expands the course recurrence for the student from anchor and persists every
// missing occurrence.
func (c *Coordinator) materialize(ctx context.Context, course *models.Course, studentID uuid.UUID, anchor time.Time) scheduling.Outcome {
	window := scheduling.CourseWindow(course, anchor, c.defaultMonths)
	records, err := scheduling.BuildSessionRecords(course, studentID, course.InstructorID, window)
	if err != nil {
		return scheduling.Outcome{Err: errors.Wrap(err, "build sessions")}
	}
	return c.materializer.Persist(ctx, records)
}

// enrollSessions materializes sessions for a freshly enrolled student and turns an incomplete
// result into a warning plus a notification.
func (c *Coordinator) enrollSessions(ctx context.Context, course *models.Course, studentID uuid.UUID, anchor time.Time, res *Result) {
	if !course.HasRecurrence() {
		return
	}
	res.Sessions = c.materialize(ctx, course, studentID, anchor)
	if res.Sessions.Complete() {
		return
	}

	c.log.Warn("schedule incomplete after enrollment",
		zap.String("course_id", course.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.Strings("failed_dates", res.Sessions.FailedDates),
		zap.Error(res.Sessions.Err))
	res.Warnings = append(res.Warnings, WarnScheduleIncomplete)
	c.notifier.Notify(ctx, course.InstructorID, studentID, models.KindScheduleIncomplete, map[string]any{
		"course_id":    course.ID.String(),
		"course_title": course.Title,
		"failed_dates": res.Sessions.FailedDates,
	})
}

func coursePayload(course *models.Course) map[string]any {
	return map[string]any{
		"course_id":    course.ID.String(),
		"course_title": course.Title,
	}
}
