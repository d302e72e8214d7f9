package domain

import "time"

type BookingStatus string

// Wire values are shared with the other services; do not rename.
const (
	BookingPendingVenue BookingStatus = "pending_venue_approval"
	BookingPendingTime  BookingStatus = "pending_time_approval"
	BookingBothApproved BookingStatus = "both_approved"
	BookingConfirmed    BookingStatus = "confirmed"
	BookingCompleted    BookingStatus = "completed"
	BookingCancelled    BookingStatus = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled
}

// Booking tracks one date between two matched users. Each party keeps its
// own proposal slot; the resolved venue and slot are only filled in once
// both sides approved and the proposals do not contradict each other.
type Booking struct {
	ID      string `gorm:"primaryKey" json:"id"`
	MatchID string `gorm:"index" json:"match_id"`
	User1ID string `gorm:"index" json:"user_1_id"`
	User2ID string `gorm:"index" json:"user_2_id"`

	User1ProposedVenue string `json:"user_1_proposed_venue"`
	User2ProposedVenue string `json:"user_2_proposed_venue"`
	User1ProposedDate  string `json:"user_1_proposed_date"`
	User2ProposedDate  string `json:"user_2_proposed_date"`
	User1ProposedTime  string `json:"user_1_proposed_time"`
	User2ProposedTime  string `json:"user_2_proposed_time"`

	VenueID     string `json:"venue_id"`
	BookingDate string `json:"booking_date"`
	BookingTime string `json:"booking_time"`

	User1VenueApproved bool `json:"user_1_venue_approved"`
	User2VenueApproved bool `json:"user_2_venue_approved"`
	User1TimeApproved  bool `json:"user_1_time_approved"`
	User2TimeApproved  bool `json:"user_2_time_approved"`

	// unique among confirmed bookings; enforced at assignment, not by the
	// schema (unconfirmed rows all carry the empty string)
	ConfirmationCode string        `gorm:"index" json:"confirmation_code,omitempty"`
	CancelReason     string        `json:"cancellation_reason,omitempty"`
	Status           BookingStatus `gorm:"index" json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// Party reports whether the user is one of the two sides of this booking.
func (b *Booking) Party(userID string) bool {
	return userID == b.User1ID || userID == b.User2ID
}

// IsUser1 distinguishes the two proposal/approval slots.
func (b *Booking) IsUser1(userID string) bool {
	return userID == b.User1ID
}
