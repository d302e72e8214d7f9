package domain

import "time"

type MatchStatus string

// Wire values are shared with the other services; do not rename.
const (
	MatchPending  MatchStatus = "pending"
	MatchMatched  MatchStatus = "matched"
	MatchRejected MatchStatus = "rejected"
	MatchWaiting  MatchStatus = "waiting"
	MatchExpired  MatchStatus = "expired"
)

// Active reports whether the status still blocks the user from finding a
// new match. A user holds at most one active match at a time.
func (s MatchStatus) Active() bool {
	return s == MatchPending || s == MatchMatched
}

type UserPreference struct {
	UserID        string `gorm:"primaryKey" json:"user_id"`
	Gender        string `gorm:"index" json:"gender"`
	SeekingGender string `gorm:"index" json:"seeking_gender"`
	AgeMin        int    `json:"age_min"`
	AgeMax        int    `json:"age_max"`
	Interests     string `json:"interests"`
	Bio           string `json:"bio"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Match struct {
	ID            string      `gorm:"primaryKey" json:"id"`
	User1ID       string      `gorm:"index" json:"user_1_id"`
	User2ID       string      `gorm:"index" json:"user_2_id"`
	Status        MatchStatus `gorm:"index" json:"status"`
	User1Approved bool        `json:"user_1_approved"`
	User2Approved bool        `json:"user_2_approved"`
	MatchedAt     *time.Time  `json:"matched_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Party reports whether the user is one of the two sides of this match.
func (m *Match) Party(userID string) bool {
	return userID == m.User1ID || userID == m.User2ID
}

// QueueEntry is a user waiting for a compatible partner to show up.
// Oldest entries are served first.
type QueueEntry struct {
	UserID        string    `gorm:"primaryKey" json:"user_id"`
	Gender        string    `gorm:"index" json:"gender"`
	SeekingGender string    `gorm:"index" json:"seeking_gender"`
	Position      int       `json:"position_in_queue"`
	WaitingSince  time.Time `gorm:"index" json:"waiting_since"`
}

// RejectedPair permanently excludes an unordered user pair from future
// compatibility searches.
type RejectedPair struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	User1ID   string    `gorm:"index" json:"user_1_id"`
	User2ID   string    `gorm:"index" json:"user_2_id"`
	Reason    string    `json:"rejection_reason"`
	CreatedAt time.Time `json:"created_at"`
}
