package courses

import (
	"context"
	"strings"
	"time"

	"github.com/anjiri1684/educonnect/database"
	"github.com/anjiri1684/educonnect/models"
	"github.com/anjiri1684/educonnect/scheduling"
	"github.com/anjiri1684/educonnect/utils"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const maxSessionMinutes = 5 * 60

var (
	ErrInvalidDuration  = errors.New("session duration must be greater than 0 and at most 5 hours")
	ErrInvalidDateRange = errors.New("start date must not be after end date")
	ErrMissingPrice     = errors.New("paid courses need a base price greater than 0")
	ErrImmutableField   = errors.New("field cannot be changed after creation")
	ErrNotOwner         = errors.New("only the course instructor can do this")
	ErrCourseNotFound   = errors.New("course not found")
)

type CourseInput struct {
	Title       string            `json:"title" validate:"required,min=3,max=255"`
	Description string            `json:"description" validate:"max=5000"`
	Category    string            `json:"category" validate:"required,max=100"`
	CourseType  models.CourseType `json:"course_type" validate:"required,oneof=time-based video-based"`

	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	StartDate    *string `json:"start_date"`
	EndDate      *string `json:"end_date"`
	WeekDays     []int   `json:"week_days" validate:"dive,min=0,max=6"`
	IsRepetitive bool    `json:"is_repetitive"`

	IsOnline   bool   `json:"is_online"`
	OnlineLink string `json:"online_link" validate:"required_if=IsOnline true,omitempty,url"`
	Location   string `json:"location" validate:"max=255"`

	IsPaid    bool    `json:"is_paid"`
	BasePrice float64 `json:"base_price" validate:"gte=0"`

	ThumbnailURL      string `json:"thumbnail_url" validate:"omitempty,url"`
	ThumbnailPublicID string `json:"thumbnail_public_id"`
}

// editableFields are the only course fields an instructor may change after creation.
var editableFields = map[string]bool{
	"title":               true,
	"description":         true,
	"category":            true,
	"thumbnail_url":       true,
	"thumbnail_public_id": true,
}

type Service struct {
	courses  database.Collection[models.Course]
	feeRate  float64
	validate *validator.Validate
	log      *zap.Logger
}

func NewService(courses database.Collection[models.Course], feeRate float64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{courses: courses, feeRate: feeRate, validate: utils.NewValidator(), log: log}
}

func (s *Service) Create(ctx context.Context, instructorID uuid.UUID, in CourseInput) (*models.Course, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, utils.FromValidator(err)
	}

	course := &models.Course{
		InstructorID: instructorID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Category:     in.Category,
		CourseType:   in.CourseType,
		IsOnline:     in.IsOnline,
		IsPaid:       in.IsPaid,
	}
	if in.ThumbnailURL != "" {
		course.ThumbnailURL = &in.ThumbnailURL
		course.ThumbnailPublicID = &in.ThumbnailPublicID
	}
	if in.IsOnline {
		course.OnlineLink = &in.OnlineLink
	} else if in.Location != "" {
		course.Location = &in.Location
	}

	if in.IsPaid && in.BasePrice <= 0 {
		return nil, utils.NewValidationError(ErrMissingPrice, utils.FieldError{Field: "base_price", Error: ErrMissingPrice.Error()})
	}
	pricing := Price(in.IsPaid, in.BasePrice, s.feeRate)
	course.BasePrice = pricing.BasePrice
	course.FinalPrice = pricing.FinalPrice

	if in.CourseType == models.CourseTypeTimeBased {
		if err := applySchedule(course, in); err != nil {
			return nil, err
		}
	}

	if err := s.courses.Create(ctx, course); err != nil {
		return nil, errors.Wrap(err, "create course")
	}
	s.log.Info("course created",
		zap.String("course_id", course.ID.String()),
		zap.String("instructor_id", instructorID.String()),
		zap.String("course_type", string(course.CourseType)))
	return course, nil
}

func applySchedule(course *models.Course, in CourseInput) error {
	if len(in.WeekDays) == 0 {
		return utils.NewValidationError(scheduling.ErrNoWeekdaysSelected,
			utils.FieldError{Field: "week_days", Error: scheduling.ErrNoWeekdaysSelected.Error()})
	}
	start, err := scheduling.ClockMinutes(in.StartTime)
	if err != nil {
		return utils.NewValidationError(err, utils.FieldError{Field: "start_time", Error: err.Error()})
	}
	end, err := scheduling.ClockMinutes(in.EndTime)
	if err != nil {
		return utils.NewValidationError(err, utils.FieldError{Field: "end_time", Error: err.Error()})
	}
	if duration := end - start; duration <= 0 || duration > maxSessionMinutes {
		return utils.NewValidationError(ErrInvalidDuration, utils.FieldError{Field: "end_time", Error: ErrInvalidDuration.Error()})
	}

	startDate, err := optionalDate(in.StartDate, "start_date")
	if err != nil {
		return err
	}
	endDate, err := optionalDate(in.EndDate, "end_date")
	if err != nil {
		return err
	}
	if startDate != nil && endDate != nil && startDate.After(*endDate) {
		return utils.NewValidationError(ErrInvalidDateRange, utils.FieldError{Field: "end_date", Error: ErrInvalidDateRange.Error()})
	}

	schedule, err := scheduling.FormatSchedule(in.WeekDays, in.StartTime, in.EndTime)
	if err != nil {
		return utils.NewValidationError(err, utils.FieldError{Field: "week_days", Error: err.Error()})
	}

	course.Schedule = schedule
	course.StartTime = in.StartTime
	course.EndTime = in.EndTime
	course.StartDate = startDate
	course.EndDate = endDate
	course.WeekDays = in.WeekDays
	course.IsRepetitive = in.IsRepetitive
	return nil
}

func optionalDate(raw *string, field string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := scheduling.NormalizeDate(*raw)
	if err != nil {
		return nil, utils.NewValidationError(err, utils.FieldError{Field: field, Error: "must be a date (YYYY-MM-DD)"})
	}
	return &d, nil
}

// Update applies an instructor's edit. Recurrence and pricing fields are fixed at creation.
func (s *Service) Update(ctx context.Context, actorID, courseID uuid.UUID, changes map[string]any) (*models.Course, error) {
	course, err := s.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.InstructorID != actorID {
		return nil, ErrNotOwner
	}

	fields := make(map[string]any, len(changes))
	var rejected []utils.FieldError
	for key, value := range changes {
		if !editableFields[key] {
			rejected = append(rejected, utils.FieldError{Field: key, Error: ErrImmutableField.Error()})
			continue
		}
		str, ok := value.(string)
		if !ok {
			rejected = append(rejected, utils.FieldError{Field: key, Error: "must be a string"})
			continue
		}
		if key == "title" && len(strings.TrimSpace(str)) < 3 {
			rejected = append(rejected, utils.FieldError{Field: key, Error: "must be at least 3"})
			continue
		}
		fields[key] = str
	}
	if len(rejected) > 0 {
		return nil, utils.NewValidationError(ErrImmutableField, rejected...)
	}
	if len(fields) == 0 {
		return course, nil
	}

	if err := s.courses.Update(ctx, courseID, fields); err != nil {
		return nil, errors.Wrap(err, "update course")
	}
	return s.Get(ctx, courseID)
}

func (s *Service) Get(ctx context.Context, courseID uuid.UUID) (*models.Course, error) {
	course, err := s.courses.Get(ctx, courseID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load course")
	}
	return course, nil
}

func (s *Service) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]models.Course, error) {
	list, err := s.courses.QueryByField(ctx, "instructor_id", instructorID)
	return list, errors.Wrap(err, "list courses")
}
