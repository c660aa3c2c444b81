package enrollment

import (
	"testing"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestRequestEnrollment(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)

	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, f.student.FullName, req.StudentName)
	assert.Equal(t, f.student.Email, req.StudentEmail)
	assert.Equal(t, []models.NotificationKind{models.KindEnrollmentRequest}, f.notifier.kinds(f.instructor.ID))

	_, err = f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrDuplicatePendingRequest)

	list, err := f.coord.ListRequests(f.ctx, f.instructorActor(), course.ID, models.RequestPending)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestRequestEnrollmentPreconditions(t *testing.T) {
	f := newFixture(t)
	paid := f.newCourse(t, true)
	free := f.newCourse(t, false)

	_, err := f.coord.RequestEnrollment(f.ctx, paid.ID, f.student.ID)
	assert.ErrorIs(t, err, ErrPaidCourse)

	_, err = f.coord.RequestEnrollment(f.ctx, free.ID, f.instructor.ID)
	assert.ErrorIs(t, err, ErrOwnCourse)

	_, err = f.coord.RequestEnrollment(f.ctx, uuid.New(), f.student.ID)
	assert.ErrorIs(t, err, courses.ErrCourseNotFound)

	_, err = f.coord.RequestEnrollment(f.ctx, free.ID, uuid.New())
	assert.ErrorIs(t, err, ErrStudentNotFound)
}

func TestAcceptRequestEnrollsAndSchedules(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	res, err := f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 4, res.Sessions.Created)

	stored := f.reload(t, course.ID)
	assert.Equal(t, []uuid.UUID{f.student.ID}, []uuid.UUID(stored.EnrolledStudents))

	sessions := f.sessionsOf(t, "repetition_id", scheduling.RepetitionID(course.ID, f.student.ID))
	var dates []string
	for _, s := range sessions {
		dates = append(dates, s.Date)
	}
	assert.ElementsMatch(t, []string{"2024-01-01", "2024-01-03", "2024-01-08", "2024-01-10"}, dates)

	got, err := f.stores.Requests.Get(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)
	assert.NotNil(t, got.ResolvedAt)
	assert.Contains(t, f.notifier.kinds(f.student.ID), models.KindRequestAccepted)
}

func TestAcceptRequestTwiceIsNoOp(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	_, err = f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	res, err := f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sessions.Created)

	stored := f.reload(t, course.ID)
	assert.Len(t, stored.EnrolledStudents, 1)
	assert.Len(t, f.sessionsOf(t, "course_id", course.ID), 4)

	accepted := 0
	for _, k := range f.notifier.kinds(f.student.ID) {
		if k == models.KindRequestAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
}

func TestAcceptRequestDoesNotDuplicateAlreadyEnrolledStudent(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	// enrolled through another path while the request was pending
	require.NoError(t, f.stores.Courses.Update(f.ctx, course.ID, map[string]any{
		"enrolled_students": datatypes.JSONSlice[uuid.UUID]{f.student.ID},
	}))

	res, err := f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Sessions.Created)
	assert.Len(t, f.reload(t, course.ID).EnrolledStudents, 1)
}

func TestAcceptRequestToleratesPartialSchedule(t *testing.T) {
	f := newFixture(t, func(s *database.Stores) {
		s.Sessions = &flakySessions{Collection: s.Sessions, failDates: map[string]bool{"2024-01-08": true}}
	})
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	res, err := f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{WarnScheduleIncomplete}, res.Warnings)
	assert.Equal(t, 3, res.Sessions.Created)
	assert.Equal(t, []string{"2024-01-08"}, res.Sessions.FailedDates)
	assert.ErrorIs(t, res.Sessions.Err, errTransient)

	assert.True(t, f.reload(t, course.ID).IsEnrolled(f.student.ID))
	got, err := f.stores.Requests.Get(f.ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestAccepted, got.Status)
	assert.Contains(t, f.notifier.kinds(f.student.ID), models.KindScheduleIncomplete)

	// a repair against a healthy store fills only the gap
	out, err := f.newCoordinator().RepairSchedule(f.ctx, f.instructorActor(), course.ID, f.student.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Created)
	assert.Equal(t, 3, out.Skipped)
	assert.Len(t, f.sessionsOf(t, "course_id", course.ID), 4)
}

func TestRejectRequest(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	rejected, err := f.coord.RejectRequest(f.ctx, f.instructorActor(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Contains(t, f.notifier.kinds(f.student.ID), models.KindRequestRejected)
	assert.False(t, f.reload(t, course.ID).IsEnrolled(f.student.ID))
	assert.Empty(t, f.sessionsOf(t, "course_id", course.ID))

	_, err = f.coord.RejectRequest(f.ctx, f.instructorActor(), req.ID)
	assert.ErrorIs(t, err, ErrRequestNotPending)
	_, err = f.coord.AcceptRequest(f.ctx, f.instructorActor(), req.ID)
	assert.ErrorIs(t, err, ErrRequestNotPending)

	// a rejected student may ask again
	_, err = f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	assert.NoError(t, err)
}

func TestOnlyCourseManagersResolveRequests(t *testing.T) {
	f := newFixture(t)
	course := f.newCourse(t, false)
	req, err := f.coord.RequestEnrollment(f.ctx, course.ID, f.student.ID)
	require.NoError(t, err)

	stranger := Actor{ID: uuid.New(), Role: models.RoleInstructor}
	_, err = f.coord.AcceptRequest(f.ctx, stranger, req.ID)
	assert.ErrorIs(t, err, courses.ErrNotOwner)
	_, err = f.coord.ListRequests(f.ctx, stranger, course.ID, "")
	assert.ErrorIs(t, err, courses.ErrNotOwner)

	moderator := Actor{ID: uuid.New(), Role: models.RoleModerator}
	_, err = f.coord.RejectRequest(f.ctx, moderator, req.ID)
	assert.NoError(t, err)

	_, err = f.coord.AcceptRequest(f.ctx, f.instructorActor(), uuid.New())
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
