package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/domain"
)

// ErrDuplicateMatch is returned when a booking already exists for the match.
var ErrDuplicateMatch = errors.New("booking already exists for match")

type BookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{})
}

// Create inserts the booking, enforcing one booking per match inside a
// transaction. The caller serializes creates so two simultaneous calls for
// the same match cannot both pass the check.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	b.ID = uuid.NewString()
	b.CreatedAt = time.Now().UTC()
	b.UpdatedAt = b.CreatedAt
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Booking{}).
			Where("match_id = ?", b.MatchID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrDuplicateMatch
		}
		return tx.Create(b).Error
	})
}

func (r *BookingRepo) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) ForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepo) Save(ctx context.Context, b *domain.Booking) error {
	b.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(b).Error
}

// CodeTaken reports whether any booking already carries the code.
func (r *BookingRepo) CodeTaken(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("confirmation_code = ?", code).Count(&n).Error
	return n > 0, err
}
