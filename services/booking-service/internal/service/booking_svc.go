package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/pkg/kmutex"
	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/booking-service/internal/repository"
)

var (
	ErrNotFound         = errors.New("booking not found")
	ErrForbidden        = errors.New("user not part of this booking")
	ErrAlreadyExists    = errors.New("booking already exists for this match")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
	ErrInvalidState     = errors.New("operation not valid in current booking state")
	ErrNothingToApprove = errors.New("counterpart has no outstanding proposal")
)

// Publisher is the slice of pkg/mq used here; nil disables events.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingSvc drives a booking from created through venue and time
// negotiation to confirmation. Each party proposes into its own slot;
// proposing also endorses the proposal, and approving endorses the
// counterpart's. When both endorsements are in and the proposals do not
// contradict each other, the resolved value is stored and the status
// advances.
type BookingSvc struct {
	repo *repository.BookingRepo
	pub  Publisher

	// createMu serializes the exists-then-insert section of Create so two
	// users cannot both book the same match. locks serializes per-booking
	// updates.
	createMu sync.Mutex
	locks    *kmutex.KMutex

	// code generation is swappable so collision handling is testable
	genCode func() string
}

func NewBookingSvc(r *repository.BookingRepo, pub Publisher) *BookingSvc {
	return &BookingSvc{repo: r, pub: pub, locks: kmutex.New(), genCode: newCode}
}

func newCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (s *BookingSvc) Create(ctx context.Context, matchID, user1ID, user2ID string) (*domain.Booking, error) {
	s.createMu.Lock()
	defer s.createMu.Unlock()

	b := &domain.Booking{
		MatchID: matchID,
		User1ID: user1ID,
		User2ID: user2ID,
		Status:  domain.BookingPendingVenue,
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateMatch) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	return b, nil
}

func (s *BookingSvc) Booking(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.repo.ByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func (s *BookingSvc) ForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.repo.ForUser(ctx, userID)
}

// mutate applies fn to the booking under the record lock and persists the
// result. Any error from fn leaves the stored record untouched. An empty
// userID skips the party check.
func (s *BookingSvc) mutate(ctx context.Context, id, userID string, fn func(b *domain.Booking) error) (*domain.Booking, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	b, err := s.repo.ByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if userID != "" && !b.Party(userID) {
		return nil, ErrForbidden
	}
	if err := fn(b); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingSvc) ProposeVenue(ctx context.Context, id, userID, venueID string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingVenue {
			return ErrInvalidState
		}
		if b.IsUser1(userID) {
			b.User1ProposedVenue = venueID
			b.User1VenueApproved = true
		} else {
			b.User2ProposedVenue = venueID
			b.User2VenueApproved = true
		}
		resolveVenue(b)
		return nil
	})
}

func (s *BookingSvc) ApproveVenue(ctx context.Context, id, userID string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingVenue {
			return ErrInvalidState
		}
		counterpart := b.User2ProposedVenue
		if !b.IsUser1(userID) {
			counterpart = b.User1ProposedVenue
		}
		if counterpart == "" {
			return ErrNothingToApprove
		}
		if b.IsUser1(userID) {
			b.User1VenueApproved = true
		} else {
			b.User2VenueApproved = true
		}
		resolveVenue(b)
		return nil
	})
}

// RejectVenue reopens venue negotiation: both endorsements drop, both
// proposals stay so either party can re-propose without losing the other's
// input.
func (s *BookingSvc) RejectVenue(ctx context.Context, id, userID string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingVenue {
			return ErrInvalidState
		}
		b.User1VenueApproved = false
		b.User2VenueApproved = false
		return nil
	})
}

func (s *BookingSvc) ProposeTime(ctx context.Context, id, userID, date, timeOfDay string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingTime {
			return ErrInvalidState
		}
		if b.IsUser1(userID) {
			b.User1ProposedDate = date
			b.User1ProposedTime = timeOfDay
			b.User1TimeApproved = true
		} else {
			b.User2ProposedDate = date
			b.User2ProposedTime = timeOfDay
			b.User2TimeApproved = true
		}
		resolveTime(b)
		return nil
	})
}

func (s *BookingSvc) ApproveTime(ctx context.Context, id, userID string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingTime {
			return ErrInvalidState
		}
		counterpartDate := b.User2ProposedDate
		if !b.IsUser1(userID) {
			counterpartDate = b.User1ProposedDate
		}
		if counterpartDate == "" {
			return ErrNothingToApprove
		}
		if b.IsUser1(userID) {
			b.User1TimeApproved = true
		} else {
			b.User2TimeApproved = true
		}
		resolveTime(b)
		return nil
	})
}

func (s *BookingSvc) RejectTime(ctx context.Context, id, userID string) (*domain.Booking, error) {
	return s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingPendingTime {
			return ErrInvalidState
		}
		b.User1TimeApproved = false
		b.User2TimeApproved = false
		return nil
	})
}

// Confirm assigns the confirmation code and locks the booking in. Codes are
// short, so a collision is detected and regenerated rather than reused.
func (s *BookingSvc) Confirm(ctx context.Context, id, userID string) (*domain.Booking, error) {
	b, err := s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status != domain.BookingBothApproved {
			return ErrInvalidState
		}
		for {
			code := s.genCode()
			taken, err := s.repo.CodeTaken(ctx, code)
			if err != nil {
				return err
			}
			if !taken {
				b.ConfirmationCode = code
				break
			}
		}
		b.Status = domain.BookingConfirmed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking.confirmed", b)
	return b, nil
}

func (s *BookingSvc) Cancel(ctx context.Context, id, userID, reason string) (*domain.Booking, error) {
	b, err := s.mutate(ctx, id, userID, func(b *domain.Booking) error {
		if b.Status == domain.BookingCancelled {
			return ErrAlreadyCancelled
		}
		b.Status = domain.BookingCancelled
		b.CancelReason = reason
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking.cancelled", b)
	return b, nil
}

// Complete marks the date as having happened. Only confirmed bookings can
// complete.
func (s *BookingSvc) Complete(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.mutate(ctx, id, "", func(b *domain.Booking) error {
		if b.Status != domain.BookingConfirmed {
			return ErrInvalidState
		}
		b.Status = domain.BookingCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, "booking.completed", b)
	return b, nil
}

func (s *BookingSvc) publish(ctx context.Context, key string, b *domain.Booking) {
	if s.pub == nil {
		return
	}
	_ = s.pub.PublishJSON(ctx, key, map[string]any{
		"booking_id": b.ID,
		"match_id":   b.MatchID,
		"user_1_id":  b.User1ID,
		"user_2_id":  b.User2ID,
		"status":     b.Status,
	})
}

// resolveVenue advances to time negotiation once both sides endorsed and
// the proposals agree. A single-sided proposal counts as agreement.
func resolveVenue(b *domain.Booking) {
	if !b.User1VenueApproved || !b.User2VenueApproved {
		return
	}
	v, ok := agreed(b.User1ProposedVenue, b.User2ProposedVenue)
	if !ok {
		return
	}
	b.VenueID = v
	b.Status = domain.BookingPendingTime
}

func resolveTime(b *domain.Booking) {
	if !b.User1TimeApproved || !b.User2TimeApproved {
		return
	}
	d, okD := agreed(b.User1ProposedDate, b.User2ProposedDate)
	t, okT := agreed(b.User1ProposedTime, b.User2ProposedTime)
	if !okD || !okT {
		return
	}
	b.BookingDate = d
	b.BookingTime = t
	b.Status = domain.BookingBothApproved
}

func agreed(a, b string) (string, bool) {
	switch {
	case a == "" && b == "":
		return "", false
	case a == "":
		return b, true
	case b == "":
		return a, true
	case a == b:
		return a, true
	default:
		return "", false
	}
}
