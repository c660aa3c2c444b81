package scheduling

import (
	"time"

	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotRecurring = errors.New("course is not a repetitive time-based course")

// Window is the inclusive calendar range a course's recurrence is expanded over.
type Window struct {
	Start time.Time
	End   time.Time
}

// CourseWindow returns the course's date bounds, falling back to today and today plus
// defaultMonths for whichever bound the course leaves unset.
func CourseWindow(course *models.Course, today time.Time, defaultMonths int) Window {
	w := Window{Start: today, End: today.AddDate(0, defaultMonths, 0)}
	if course.StartDate != nil && !course.StartDate.IsZero() {
		w.Start = *course.StartDate
	}
	if course.EndDate != nil && !course.EndDate.IsZero() {
		w.End = *course.EndDate
	}
	return w
}

func RepetitionID(courseID, studentID uuid.UUID) string {
	return "course_" + courseID.String() + "_student_" + studentID.String()
}

// SessionTimes returns the course's structured start/end times, or parses them from the
// free-text schedule when the structured fields are empty.
func SessionTimes(course *models.Course) (string, string, error) {
	if course.StartTime != "" && course.EndTime != "" {
		return course.StartTime, course.EndTime, nil
	}
	return ParseSchedule(course.Schedule)
}

// BuildSessionRecords materializes one Session per occurrence of the course's recurrence in w
// for the (student, instructor) pair. Output is deterministic for identical inputs; ids and
// timestamps are assigned when the records are persisted.
func BuildSessionRecords(course *models.Course, studentID, instructorID uuid.UUID, w Window) ([]models.Session, error) {
	if !course.HasRecurrence() {
		return nil, ErrNotRecurring
	}

	startTime, endTime, err := SessionTimes(course)
	if err != nil {
		return nil, err
	}
	dates, err := ExpandOccurrences(w.Start, w.End, course.WeekDays)
	if err != nil {
		return nil, err
	}

	repetitionID := RepetitionID(course.ID, studentID)
	courseID := course.ID

	var sessions []models.Session
	for date := range dates {
		s := models.Session{
			Title:               course.Title,
			Description:         course.Description,
			Date:                date,
			StartTime:           startTime,
			EndTime:             endTime,
			IsOnline:            course.IsOnline,
			Participants:        []uuid.UUID{studentID, instructorID},
			Attendees:           2,
			OwnerID:             studentID,
			CreatedBy:           instructorID,
			IsRepetitive:        true,
			RepetitionID:        repetitionID,
			RepetitionFrequency: models.RepetitionWeekly,
			CourseID:            &courseID,
			IsCourseSession:     true,
		}
		if course.IsOnline {
			s.OnlineLink = course.OnlineLink
		} else {
			s.Location = course.Location
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}
