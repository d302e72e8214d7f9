package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/satyampathakk/BOOKADATE/pkg/kmutex"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/repository"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrForbidden      = errors.New("user not part of this match")
	ErrAlreadyMatched = errors.New("user already has a pending or active match")
	ErrInvalidState   = errors.New("match is not pending")
	ErrNotInQueue     = errors.New("user not in queue")
)

// Publisher is the slice of pkg/mq used here; nil disables events.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// MatchSvc owns the match lifecycle: find with waiting-queue fallback,
// mutual approval, rejection with permanent pair exclusion.
type MatchSvc struct {
	repo *repository.MatchRepo
	pub  Publisher

	// findMu serializes the scan-then-create section of Find so two users
	// cannot claim the same partner at once. locks serializes per-match
	// approval updates.
	findMu sync.Mutex
	locks  *kmutex.KMutex
}

func NewMatchSvc(r *repository.MatchRepo, pub Publisher) *MatchSvc {
	return &MatchSvc{repo: r, pub: pub, locks: kmutex.New()}
}

func (s *MatchSvc) UpsertPreference(ctx context.Context, p *domain.UserPreference) (*domain.UserPreference, error) {
	if err := s.repo.UpsertPreference(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.PreferenceByUser(ctx, p.UserID)
}

func (s *MatchSvc) Preference(ctx context.Context, userID string) (*domain.UserPreference, error) {
	p, err := s.repo.PreferenceByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// Find pairs the user with the longest-waiting compatible candidate, or
// enqueues them when nobody fits. A Waiting result is synthetic: no row is
// written for it, only the queue entry.
func (s *MatchSvc) Find(ctx context.Context, userID string) (*domain.Match, error) {
	pref, err := s.repo.PreferenceByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.findMu.Lock()
	defer s.findMu.Unlock()

	if active, err := s.repo.ActiveMatchForUser(ctx, userID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, ErrAlreadyMatched
	}

	// a fresh find supersedes any stale queue entry
	if _, err := s.repo.DeleteQueueEntry(ctx, userID); err != nil {
		return nil, err
	}

	rejected, err := s.repo.RejectedPartnerIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.repo.CompatibleCandidates(ctx, pref, rejected)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		cohort, err := s.repo.CountQueueBySeeking(ctx, pref.SeekingGender)
		if err != nil {
			return nil, err
		}
		entry := &domain.QueueEntry{
			UserID:        userID,
			Gender:        pref.Gender,
			SeekingGender: pref.SeekingGender,
			Position:      int(cohort) + 1,
		}
		if err := s.repo.Enqueue(ctx, entry); err != nil {
			return nil, err
		}
		return &domain.Match{
			User1ID:   userID,
			Status:    domain.MatchWaiting,
			CreatedAt: time.Now().UTC(),
		}, nil
	}

	partner := pickLongestWaiting(candidates, mustQueueTimes(ctx, s.repo, candidates))

	// the partner leaves the queue; everyone else keeps their place
	if _, err := s.repo.DeleteQueueEntry(ctx, partner.UserID); err != nil {
		return nil, err
	}

	m := &domain.Match{
		User1ID: userID,
		User2ID: partner.UserID,
		Status:  domain.MatchPending,
	}
	if err := s.repo.CreateMatch(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func mustQueueTimes(ctx context.Context, repo *repository.MatchRepo, cands []domain.UserPreference) map[string]time.Time {
	ids := make([]string, len(cands))
	for i, c := range cands {
		ids[i] = c.UserID
	}
	times, err := repo.QueueTimes(ctx, ids)
	if err != nil {
		return map[string]time.Time{}
	}
	return times
}

// pickLongestWaiting prefers the queued candidate with the earliest
// waiting_since. Candidates who never queued rank below any queued one.
func pickLongestWaiting(cands []domain.UserPreference, waits map[string]time.Time) *domain.UserPreference {
	best := &cands[0]
	bestAt, bestQueued := waits[best.UserID]
	for i := 1; i < len(cands); i++ {
		c := &cands[i]
		at, queued := waits[c.UserID]
		switch {
		case queued && !bestQueued:
			best, bestAt, bestQueued = c, at, true
		case queued && bestQueued && at.Before(bestAt):
			best, bestAt = c, at
		}
	}
	return best
}

// Approve records one party's verdict. Mutual approval flips the match to
// Matched; a rejection is terminal and excludes the pair forever. Failed
// preconditions leave the match untouched.
func (s *MatchSvc) Approve(ctx context.Context, matchID, userID string, approved bool) (*domain.Match, error) {
	unlock := s.locks.Lock(matchID)
	defer unlock()

	m, err := s.repo.MatchByID(ctx, matchID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !m.Party(userID) {
		return nil, ErrForbidden
	}
	if m.Status != domain.MatchPending {
		return nil, ErrInvalidState
	}

	if !approved {
		partner := m.User2ID
		if userID == m.User2ID {
			partner = m.User1ID
		}
		m.Status = domain.MatchRejected
		pair := &domain.RejectedPair{User1ID: userID, User2ID: partner, Reason: "User rejected"}
		if err := s.repo.RejectMatch(ctx, m, pair); err != nil {
			return nil, err
		}
		return m, nil
	}

	if userID == m.User1ID {
		m.User1Approved = true
	} else {
		m.User2Approved = true
	}
	if m.User1Approved && m.User2Approved {
		now := time.Now().UTC()
		m.Status = domain.MatchMatched
		m.MatchedAt = &now
	}
	if err := s.repo.SaveMatch(ctx, m); err != nil {
		return nil, err
	}
	if m.Status == domain.MatchMatched && s.pub != nil {
		_ = s.pub.PublishJSON(ctx, "match.matched", map[string]any{
			"match_id": m.ID, "user_1_id": m.User1ID, "user_2_id": m.User2ID,
			"matched_at": m.MatchedAt.Unix(),
		})
	}
	return m, nil
}

func (s *MatchSvc) Match(ctx context.Context, id string) (*domain.Match, error) {
	m, err := s.repo.MatchByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *MatchSvc) MatchesForUser(ctx context.Context, userID string) ([]domain.Match, error) {
	return s.repo.MatchesForUser(ctx, userID)
}

func (s *MatchSvc) LeaveQueue(ctx context.Context, userID string) error {
	removed, err := s.repo.DeleteQueueEntry(ctx, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotInQueue
	}
	return nil
}

type QueueStatus struct {
	Status        string     `json:"status"`
	Position      int        `json:"position,omitempty"`
	UsersAhead    int64      `json:"users_ahead,omitempty"`
	WaitingSince  *time.Time `json:"waiting_since,omitempty"`
	SeekingGender string     `json:"seeking_gender,omitempty"`
}

func (s *MatchSvc) QueueStatus(ctx context.Context, userID string) (*QueueStatus, error) {
	e, err := s.repo.QueueEntryByUser(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &QueueStatus{Status: "not_in_queue"}, nil
	}
	if err != nil {
		return nil, err
	}
	ahead, err := s.repo.CountQueueAhead(ctx, e)
	if err != nil {
		return nil, err
	}
	return &QueueStatus{
		Status:        "waiting",
		Position:      e.Position,
		UsersAhead:    ahead,
		WaitingSince:  &e.WaitingSince,
		SeekingGender: e.SeekingGender,
	}, nil
}

type Availability struct {
	Gender           string  `json:"gender"`
	AvailableMatches int64   `json:"available_matches"`
	WaitingInQueue   int64   `json:"waiting_in_queue"`
	ImbalanceRatio   float64 `json:"imbalance_ratio"`
}

// Availability reports the supply/demand balance for one gender, an
// informational endpoint used by the frontend queue screen.
func (s *MatchSvc) Availability(ctx context.Context, gender string) (*Availability, error) {
	offering, err := s.repo.CountOffering(ctx, gender)
	if err != nil {
		return nil, err
	}
	wanting, err := s.repo.CountWanting(ctx, gender)
	if err != nil {
		return nil, err
	}
	queued, err := s.repo.CountQueueBySeeking(ctx, gender)
	if err != nil {
		return nil, err
	}
	max := offering
	if wanting > max {
		max = wanting
	}
	if max == 0 {
		max = 1
	}
	diff := offering - wanting
	if diff < 0 {
		diff = -diff
	}
	available := offering
	if wanting > available {
		available = wanting
	}
	return &Availability{
		Gender:           gender,
		AvailableMatches: available,
		WaitingInQueue:   queued,
		ImbalanceRatio:   float64(diff) / float64(max),
	}, nil
}
