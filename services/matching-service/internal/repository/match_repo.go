package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/domain"
)

type MatchRepo struct{ db *gorm.DB }

func NewMatchRepo(db *gorm.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

func (r *MatchRepo) Migrate() error {
	return r.db.AutoMigrate(
		&domain.UserPreference{},
		&domain.Match{},
		&domain.QueueEntry{},
		&domain.RejectedPair{},
	)
}

func (r *MatchRepo) UpsertPreference(ctx context.Context, p *domain.UserPreference) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(p).Error
}

func (r *MatchRepo) PreferenceByUser(ctx context.Context, userID string) (*domain.UserPreference, error) {
	var p domain.UserPreference
	if err := r.db.WithContext(ctx).First(&p, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveMatchForUser returns the user's pending or matched match, nil when
// there is none.
func (r *MatchRepo) ActiveMatchForUser(ctx context.Context, userID string) (*domain.Match, error) {
	var m domain.Match
	err := r.db.WithContext(ctx).
		Where("(user1_id = ? OR user2_id = ?) AND status IN ?",
			userID, userID, []domain.MatchStatus{domain.MatchPending, domain.MatchMatched}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// RejectedPartnerIDs lists every user the given user may never be paired
// with again, regardless of which side rejected.
func (r *MatchRepo) RejectedPartnerIDs(ctx context.Context, userID string) ([]string, error) {
	var pairs []domain.RejectedPair
	if err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Find(&pairs).Error; err != nil {
		return nil, err
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p.User1ID == userID {
			out = append(out, p.User2ID)
		} else {
			out = append(out, p.User1ID)
		}
	}
	return out, nil
}

// CompatibleCandidates returns every other user whose preference is
// mutually compatible with pref, excluding the given ids. Ordered by
// preference creation so selection is deterministic when nobody queues.
func (r *MatchRepo) CompatibleCandidates(ctx context.Context, pref *domain.UserPreference, exclude []string) ([]domain.UserPreference, error) {
	q := r.db.WithContext(ctx).
		Where("user_id <> ?", pref.UserID).
		Where("seeking_gender = ? AND gender = ?", pref.Gender, pref.SeekingGender)
	if len(exclude) > 0 {
		q = q.Where("user_id NOT IN ?", exclude)
	}
	var out []domain.UserPreference
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MatchRepo) QueueEntryByUser(ctx context.Context, userID string) (*domain.QueueEntry, error) {
	var e domain.QueueEntry
	if err := r.db.WithContext(ctx).First(&e, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// QueueTimes maps each queued user among ids to their waiting_since.
func (r *MatchRepo) QueueTimes(ctx context.Context, ids []string) (map[string]time.Time, error) {
	if len(ids) == 0 {
		return map[string]time.Time{}, nil
	}
	var entries []domain.QueueEntry
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make(map[string]time.Time, len(entries))
	for _, e := range entries {
		out[e.UserID] = e.WaitingSince
	}
	return out, nil
}

func (r *MatchRepo) CountQueueBySeeking(ctx context.Context, seekingGender string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.QueueEntry{}).
		Where("seeking_gender = ?", seekingGender).Count(&n).Error
	return n, err
}

func (r *MatchRepo) CountQueueAhead(ctx context.Context, e *domain.QueueEntry) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.QueueEntry{}).
		Where("seeking_gender = ? AND waiting_since < ?", e.SeekingGender, e.WaitingSince).
		Count(&n).Error
	return n, err
}

// CountOffering counts users of the given gender seeking someone else;
// CountWanting counts users of other genders seeking this one.
func (r *MatchRepo) CountOffering(ctx context.Context, gender string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserPreference{}).
		Where("gender = ? AND seeking_gender <> ?", gender, gender).Count(&n).Error
	return n, err
}

func (r *MatchRepo) CountWanting(ctx context.Context, gender string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.UserPreference{}).
		Where("gender <> ? AND seeking_gender = ?", gender, gender).Count(&n).Error
	return n, err
}

func (r *MatchRepo) Enqueue(ctx context.Context, e *domain.QueueEntry) error {
	if e.WaitingSince.IsZero() {
		e.WaitingSince = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(e).Error
}

// DeleteQueueEntry removes the user's queue entry if present and reports
// whether one existed.
func (r *MatchRepo) DeleteQueueEntry(ctx context.Context, userID string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.QueueEntry{}, "user_id = ?", userID)
	return res.RowsAffected > 0, res.Error
}

func (r *MatchRepo) CreateMatch(ctx context.Context, m *domain.Match) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MatchRepo) MatchByID(ctx context.Context, id string) (*domain.Match, error) {
	var m domain.Match
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) MatchesForUser(ctx context.Context, userID string) ([]domain.Match, error) {
	var out []domain.Match
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *MatchRepo) SaveMatch(ctx context.Context, m *domain.Match) error {
	return r.db.WithContext(ctx).Save(m).Error
}

// RejectMatch stores the pair exclusion and the terminal status together so
// a failure leaves neither half applied.
func (r *MatchRepo) RejectMatch(ctx context.Context, m *domain.Match, pair *domain.RejectedPair) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if pair.ID == "" {
			pair.ID = uuid.NewString()
		}
		if err := tx.Create(pair).Error; err != nil {
			return err
		}
		return tx.Save(m).Error
	})
}
