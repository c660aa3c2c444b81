package enrollment

import (
	"context"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/metrics"
	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RequestEnrollment records a student's pending request to join a free course and tells the
// instructor. At most one pending request exists per student and course.
func (c *Coordinator) RequestEnrollment(ctx context.Context, courseID, studentID uuid.UUID) (*models.EnrollmentRequest, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	switch {
	case course.IsPaid:
		return nil, ErrPaidCourse
	case course.InstructorID == studentID:
		return nil, ErrOwnCourse
	case course.IsEnrolled(studentID):
		return nil, ErrAlreadyEnrolled
	}

	student, err := c.loadUser(ctx, studentID)
	if err != nil {
		return nil, err
	}

	existing, err := c.requests.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "load enrollment requests")
	}
	for _, r := range existing {
		if r.StudentID == studentID && r.Status == models.RequestPending {
			return nil, ErrDuplicatePendingRequest
		}
	}

	req := &models.EnrollmentRequest{
		CourseID:      courseID,
		StudentID:     studentID,
		StudentName:   student.FullName,
		StudentEmail:  student.Email,
		StudentAvatar: student.ProfilePictureURL,
		Status:        models.RequestPending,
	}
	if err := c.requests.Create(ctx, req); err != nil {
		return nil, errors.Wrap(err, "create enrollment request")
	}

	payload := coursePayload(course)
	payload["request_id"] = req.ID.String()
	payload["student_name"] = student.FullName
	c.notifier.Notify(ctx, studentID, course.InstructorID, models.KindEnrollmentRequest, payload)

	c.log.Info("enrollment requested",
		zap.String("course_id", courseID.String()),
		zap.String("student_id", studentID.String()))
	return req, nil
}

func (c *Coordinator) loadRequest(ctx context.Context, requestID uuid.UUID) (*models.EnrollmentRequest, error) {
	req, err := c.requests.Get(ctx, requestID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load enrollment request")
	}
	return req, nil
}

// AcceptRequest enrolls the requesting student. Accepting a request that is already accepted
// changes nothing. A partially written schedule does not undo the acceptance; it is reported
// in Result.Warnings.
func (c *Coordinator) AcceptRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*Result, error) {
	req, err := c.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	course, err := c.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.manages(course) {
		return nil, courses.ErrNotOwner
	}

	switch req.Status {
	case models.RequestAccepted:
		return &Result{Course: course, Request: req}, nil
	case models.RequestPending:
	default:
		return nil, ErrRequestNotPending
	}

	now := c.now()
	course, added, err := c.enroll(ctx, req.CourseID, req.StudentID)
	if err != nil {
		return nil, err
	}

	res := &Result{Course: course, Request: req}
	if added {
		c.enrollSessions(ctx, course, req.StudentID, now, res)
	}

	err = c.requests.Update(ctx, req.ID, map[string]any{
		"status":      models.RequestAccepted,
		"resolved_at": now,
	})
	if err != nil {
		mutated := []string{"student enrolled"}
		if res.Sessions.Created > 0 {
			mutated = append(mutated, "sessions scheduled")
		}
		return nil, &PartialFailure{Op: "accept request", Mutated: mutated, Err: errors.Wrap(err, "mark request accepted")}
	}
	req.Status = models.RequestAccepted
	req.ResolvedAt = &now

	metrics.Enrollments.WithLabelValues("request").Inc()
	c.notifier.Notify(ctx, course.InstructorID, req.StudentID, models.KindRequestAccepted, coursePayload(course))
	c.log.Info("enrollment request accepted",
		zap.String("course_id", course.ID.String()),
		zap.String("student_id", req.StudentID.String()),
		zap.Int("sessions_created", res.Sessions.Created))
	return res, nil
}

// RejectRequest closes a pending request. The student may ask again later.
func (c *Coordinator) RejectRequest(ctx context.Context, actor Actor, requestID uuid.UUID) (*models.EnrollmentRequest, error) {
	req, err := c.loadRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	course, err := c.loadCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if !actor.manages(course) {
		return nil, courses.ErrNotOwner
	}
	if req.Status != models.RequestPending {
		return nil, ErrRequestNotPending
	}

	now := c.now()
	err = c.requests.Update(ctx, req.ID, map[string]any{
		"status":      models.RequestRejected,
		"resolved_at": now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "mark request rejected")
	}
	req.Status = models.RequestRejected
	req.ResolvedAt = &now

	c.notifier.Notify(ctx, course.InstructorID, req.StudentID, models.KindRequestRejected, coursePayload(course))
	return req, nil
}

// ListRequests returns a course's requests, optionally only those with status.
func (c *Coordinator) ListRequests(ctx context.Context, actor Actor, courseID uuid.UUID, status models.RequestStatus) ([]models.EnrollmentRequest, error) {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !actor.manages(course) {
		return nil, courses.ErrNotOwner
	}

	list, err := c.requests.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return nil, errors.Wrap(err, "load enrollment requests")
	}
	if status == "" {
		return list, nil
	}
	filtered := list[:0]
	for _, r := range list {
		if r.Status == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}
