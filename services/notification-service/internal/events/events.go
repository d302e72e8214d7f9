package events

import "encoding/json"

// Routing keys published by the matching and booking services.
const (
	RKMatchMatched     = "match.matched"
	RKBookingConfirmed = "booking.confirmed"
	RKBookingCancelled = "booking.cancelled"
	RKBookingCompleted = "booking.completed"
)

type MatchMatched struct {
	MatchID   string `json:"match_id"`
	User1ID   string `json:"user_1_id"`
	User2ID   string `json:"user_2_id"`
	MatchedAt int64  `json:"matched_at"`
}

type BookingEvent struct {
	BookingID string `json:"booking_id"`
	MatchID   string `json:"match_id"`
	User1ID   string `json:"user_1_id"`
	User2ID   string `json:"user_2_id"`
	Status    string `json:"status"`
}

func Unmarshal[T any](body []byte) (T, error) {
	var v T
	err := json.Unmarshal(body, &v)
	return v, err
}
