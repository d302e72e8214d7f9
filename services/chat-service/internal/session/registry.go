package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrForbidden = errors.New("user not part of this session")
	ErrNotActive = errors.New("chat session not active")
)

// openBefore/openAfter pad the chat window around the meeting slot.
const (
	openBefore = 30 * time.Minute
	openAfter  = 30 * time.Minute
)

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type Session struct {
	ID        string    `json:"session_id"`
	User1ID   string    `json:"user1_id"`
	User2ID   string    `json:"user2_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Status    Status    `json:"status"`
	Messages  []Message `json:"-"`
}

// Party reports whether the user is one of the two sides of this session.
func (s *Session) Party(userID string) bool {
	return userID == s.User1ID || userID == s.User2ID
}

// Registry owns all chat session state. Statuses only ever move forward
// (pending, active, expired); both the sweeper and lazy reads go through
// the same transition function so no path can move a session backwards.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// now is swappable so window math is testable
	now func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create opens a session around the meeting slot. The chat window runs from
// half an hour before the meeting to half an hour after it ends.
func (r *Registry) Create(user1ID, user2ID string, meetingTime time.Time, durationMin int) *Session {
	start := meetingTime.UTC().Add(-openBefore)
	end := meetingTime.UTC().Add(time.Duration(durationMin)*time.Minute + openAfter)

	s := &Session{
		ID:        uuid.NewString(),
		User1ID:   user1ID,
		User2ID:   user2ID,
		StartTime: start,
		EndTime:   end,
		Status:    StatusPending,
	}
	advance(s, r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns a snapshot of the session with its status brought up to date.
func (r *Registry) Get(id string) (Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Session{}, ErrNotFound
	}
	advance(s, r.now())
	return snapshot(s), nil
}

// MessageCount avoids copying the full history for session summaries.
func (r *Registry) MessageCount(id string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[id]; ok {
		return len(s.Messages)
	}
	return 0
}

// Append records a message if the sender is a party and the session window
// is open right now.
func (r *Registry) Append(id, senderID, content, msgType string) (Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return Message{}, ErrNotFound
	}
	if !s.Party(senderID) {
		return Message{}, ErrForbidden
	}
	advance(s, r.now())
	if s.Status != StatusActive {
		return Message{}, ErrNotActive
	}
	if msgType == "" {
		msgType = "text"
	}
	m := Message{
		ID:        uuid.NewString(),
		SenderID:  senderID,
		Content:   content,
		Type:      msgType,
		Timestamp: r.now(),
	}
	s.Messages = append(s.Messages, m)
	return m, nil
}

// Transition is a status change observed by the sweeper.
type Transition struct {
	SessionID string
	Status    Status
}

// Sweep advances every session whose window boundary has passed and
// reports the transitions that happened.
func (r *Registry) Sweep() []Transition {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	var out []Transition
	for _, s := range r.sessions {
		before := s.Status
		advance(s, now)
		if s.Status != before {
			out = append(out, Transition{SessionID: s.ID, Status: s.Status})
		}
	}
	return out
}

// Run sweeps on a ticker until the context ends, reporting each transition.
func (r *Registry) Run(ctx context.Context, interval time.Duration, onTransition func(Transition)) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			for _, tr := range r.Sweep() {
				if onTransition != nil {
					onTransition(tr)
				}
			}
		}
	}
}

// advance moves the status forward in time, never backwards.
func advance(s *Session, now time.Time) {
	switch s.Status {
	case StatusPending:
		if !now.Before(s.EndTime) {
			s.Status = StatusExpired
		} else if !now.Before(s.StartTime) {
			s.Status = StatusActive
		}
	case StatusActive:
		if !now.Before(s.EndTime) {
			s.Status = StatusExpired
		}
	}
}

func snapshot(s *Session) Session {
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	return cp
}
