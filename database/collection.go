package database

import (
	"context"

	"github.com/anjiri1684/educonnect/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Collection is the document-store contract the core depends on: single-record CRUD plus
// equality queries on one field. No joins, no multi-record transactions.
type Collection[T any] interface {
	Create(ctx context.Context, record *T) error
	Get(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	QueryByField(ctx context.Context, field string, value any) ([]T, error)
}

type GormCollection[T any] struct {
	db *gorm.DB
}

func NewCollection[T any](db *gorm.DB) *GormCollection[T] {
	return &GormCollection[T]{db: db}
}

func (c *GormCollection[T]) Create(ctx context.Context, record *T) error {
	return c.db.WithContext(ctx).Create(record).Error
}

func (c *GormCollection[T]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	err := c.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *GormCollection[T]) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete is a no-op for an id that does not exist.
func (c *GormCollection[T]) Delete(ctx context.Context, id uuid.UUID) error {
	return c.db.WithContext(ctx).Delete(new(T), "id = ?", id).Error
}

func (c *GormCollection[T]) QueryByField(ctx context.Context, field string, value any) ([]T, error) {
	var records []T
	err := c.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: field}, Value: value}).
		Order("created_at asc").
		Find(&records).Error
	return records, err
}

// Stores groups one collection per persisted record type.
type Stores struct {
	Users         Collection[models.User]
	Courses       Collection[models.Course]
	Requests      Collection[models.EnrollmentRequest]
	Sessions      Collection[models.Session]
	Payments      Collection[models.Payment]
	Progress      Collection[models.CourseProgress]
	Notifications Collection[models.Notification]
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{
		Users:         NewCollection[models.User](db),
		Courses:       NewCollection[models.Course](db),
		Requests:      NewCollection[models.EnrollmentRequest](db),
		Sessions:      NewCollection[models.Session](db),
		Payments:      NewCollection[models.Payment](db),
		Progress:      NewCollection[models.CourseProgress](db),
		Notifications: NewCollection[models.Notification](db),
	}
}
