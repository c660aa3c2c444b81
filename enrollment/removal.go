package enrollment

import (
	"context"

	"github.com/anjiri1684/educonnect/courses"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// RemoveStudent takes a student out of a course along with every session of theirs derived
// from it. Sessions of other students are untouched.
func (c *Coordinator) RemoveStudent(ctx context.Context, actor Actor, courseID, studentID uuid.UUID) error {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if !actor.manages(course) {
		return courses.ErrNotOwner
	}
	if !course.IsEnrolled(studentID) {
		return ErrNotEnrolled
	}

	if _, err := c.unenroll(ctx, courseID, studentID); err != nil {
		return err
	}

	removed, err := c.materializer.RemoveRepetition(ctx, scheduling.RepetitionID(courseID, studentID))
	if err != nil {
		c.log.Error("🔥 failed to delete sessions of removed student",
			zap.String("course_id", courseID.String()),
			zap.String("student_id", studentID.String()),
			zap.Error(err))
		return &PartialFailure{
			Op:      "remove student",
			Mutated: []string{"student removed from course"},
			Err:     multierr.Append(ErrRemovalIncomplete, err),
		}
	}

	c.notifier.Notify(ctx, actor.ID, studentID, models.KindStudentRemoved, coursePayload(course))
	c.log.Info("student removed from course",
		zap.String("course_id", courseID.String()),
		zap.String("student_id", studentID.String()),
		zap.Int("sessions_removed", removed))
	return nil
}

// DeleteCourse removes a course and everything derived from it. The course record is deleted
// last and only when every cascade step succeeded, so a failed call can simply be retried.
func (c *Coordinator) DeleteCourse(ctx context.Context, actor Actor, courseID uuid.UUID) error {
	course, err := c.loadCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if !actor.manages(course) {
		return courses.ErrNotOwner
	}

	var done []string
	fail := func(step string, err error) error {
		c.log.Error("🔥 course deletion cascade failed",
			zap.String("course_id", courseID.String()),
			zap.String("step", step),
			zap.Error(err))
		return &PartialFailure{Op: "delete course", Mutated: done, Err: multierr.Append(ErrCascadeIncomplete, err)}
	}

	// by course id, so sessions of students who left the course in the meantime go too
	if _, err := c.materializer.RemoveCourse(ctx, courseID); err != nil {
		return fail("sessions", err)
	}
	done = append(done, "sessions deleted")

	requests, err := c.requests.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return fail("enrollment requests", errors.Wrap(err, "load enrollment requests"))
	}
	for _, r := range requests {
		if err := c.requests.Delete(ctx, r.ID); err != nil {
			return fail("enrollment requests", errors.Wrapf(err, "delete enrollment request %s", r.ID))
		}
	}
	done = append(done, "enrollment requests deleted")

	progress, err := c.progress.QueryByField(ctx, "course_id", courseID)
	if err != nil {
		return fail("progress", errors.Wrap(err, "load course progress"))
	}
	for _, p := range progress {
		if err := c.progress.Delete(ctx, p.ID); err != nil {
			return fail("progress", errors.Wrapf(err, "delete course progress %s", p.ID))
		}
	}
	done = append(done, "progress deleted")

	for _, studentID := range course.EnrolledStudents {
		c.notifier.Notify(ctx, actor.ID, studentID, models.KindCourseCancelled, coursePayload(course))
	}
	if len(course.EnrolledStudents) > 0 {
		done = append(done, "students notified")
	}

	if err := c.courses.Delete(ctx, courseID); err != nil {
		return fail("course", errors.Wrap(err, "delete course"))
	}

	if c.thumbnails != nil && course.ThumbnailPublicID != nil && *course.ThumbnailPublicID != "" {
		if err := c.thumbnails.Remove(ctx, *course.ThumbnailPublicID); err != nil {
			c.log.Warn("failed to remove course thumbnail",
				zap.String("course_id", courseID.String()),
				zap.String("public_id", *course.ThumbnailPublicID),
				zap.Error(err))
		}
	}

	c.log.Info("course deleted",
		zap.String("course_id", courseID.String()),
		zap.Int("students_notified", len(course.EnrolledStudents)))
	return nil
}
