package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/domain"
	"github.com/satyampathakk/BOOKADATE/services/matching-service/internal/repository"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func newTestSvc(t *testing.T) (*MatchSvc, *repository.MatchRepo, *recordingPublisher) {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	repo := repository.NewMatchRepo(gdb)
	if err := repo.Migrate(); err != nil {
		t.Fatal(err)
	}
	pub := &recordingPublisher{}
	return NewMatchSvc(repo, pub), repo, pub
}

func pref(userID, gender, seeking string) *domain.UserPreference {
	return &domain.UserPreference{UserID: userID, Gender: gender, SeekingGender: seeking, AgeMin: 20, AgeMax: 40}
}

func TestFindWithoutPreferences(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	if _, err := svc.Find(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFindEnqueuesThenPairs(t *testing.T) {
	svc, repo, _ := newTestSvc(t)
	ctx := context.Background()

	if _, err := svc.UpsertPreference(ctx, pref("alice", "female", "male")); err != nil {
		t.Fatal(err)
	}

	// nobody compatible yet: Alice waits
	m, err := svc.Find(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if m.Status != domain.MatchWaiting || m.ID != "" {
		t.Fatalf("want synthetic waiting result, got %+v", m)
	}
	if n, _ := repo.CountQueueBySeeking(ctx, "male"); n != 1 {
		t.Fatalf("queue length = %d, want 1", n)
	}

	// Bob shows up and gets paired with the waiting Alice
	if _, err := svc.UpsertPreference(ctx, pref("bob", "male", "female")); err != nil {
		t.Fatal(err)
	}
	m2, err := svc.Find(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if m2.Status != domain.MatchPending {
		t.Fatalf("status = %s, want pending", m2.Status)
	}
	if m2.User1ID != "bob" || m2.User2ID != "alice" {
		t.Fatalf("parties = %s/%s", m2.User1ID, m2.User2ID)
	}
	if n, _ := repo.CountQueueBySeeking(ctx, "male"); n != 0 {
		t.Fatal("matched user must leave the queue")
	}
}

func TestFindRefusedWhileMatchActive(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	if _, err := svc.Find(ctx, "bob"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Find(ctx, "bob"); err != ErrAlreadyMatched {
		t.Fatalf("err = %v, want ErrAlreadyMatched", err)
	}
	if _, err := svc.Find(ctx, "alice"); err != ErrAlreadyMatched {
		t.Fatalf("err = %v, want ErrAlreadyMatched", err)
	}
}

func TestFindPrefersLongestWaiting(t *testing.T) {
	svc, repo, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("old", "male", "female"))
	svc.UpsertPreference(ctx, pref("new", "male", "female"))
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))

	base := time.Now().UTC().Add(-time.Hour)
	repo.Enqueue(ctx, &domain.QueueEntry{UserID: "new", Gender: "male", SeekingGender: "female", Position: 2, WaitingSince: base.Add(time.Minute)})
	repo.Enqueue(ctx, &domain.QueueEntry{UserID: "old", Gender: "male", SeekingGender: "female", Position: 1, WaitingSince: base})

	m, err := svc.Find(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if m.User2ID != "old" {
		t.Fatalf("partner = %s, want the longest-waiting candidate", m.User2ID)
	}
	// the other candidate keeps his queue slot
	if _, err := repo.QueueEntryByUser(ctx, "new"); err != nil {
		t.Fatal("non-selected candidate lost his queue entry")
	}
}

func TestQueuedCandidateBeatsNeverQueued(t *testing.T) {
	svc, repo, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("walkin", "male", "female"))
	svc.UpsertPreference(ctx, pref("queued", "male", "female"))
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	repo.Enqueue(ctx, &domain.QueueEntry{UserID: "queued", Gender: "male", SeekingGender: "female", Position: 1, WaitingSince: time.Now().UTC()})

	m, err := svc.Find(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if m.User2ID != "queued" {
		t.Fatalf("partner = %s, queued candidates outrank walk-ins", m.User2ID)
	}
}

func TestMutualApproval(t *testing.T) {
	svc, _, pub := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	m, _ := svc.Find(ctx, "bob")

	m1, err := svc.Approve(ctx, m.ID, "bob", true)
	if err != nil {
		t.Fatal(err)
	}
	if m1.Status != domain.MatchPending {
		t.Fatalf("one-sided approval must not match, got %s", m1.Status)
	}

	m2, err := svc.Approve(ctx, m.ID, "alice", true)
	if err != nil {
		t.Fatal(err)
	}
	if m2.Status != domain.MatchMatched {
		t.Fatalf("status = %s, want matched", m2.Status)
	}
	if !m2.User1Approved || !m2.User2Approved || m2.MatchedAt == nil {
		t.Fatalf("matched without both flags and timestamp: %+v", m2)
	}
	if len(pub.keys) != 1 || pub.keys[0] != "match.matched" {
		t.Fatalf("events = %v", pub.keys)
	}
}

func TestApproveGuards(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	m, _ := svc.Find(ctx, "bob")

	if _, err := svc.Approve(ctx, "nope", "alice", true); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Approve(ctx, m.ID, "stranger", true); err != ErrForbidden {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestRejectionExcludesPair(t *testing.T) {
	svc, repo, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	m, _ := svc.Find(ctx, "bob")

	r, err := svc.Approve(ctx, m.ID, "alice", false)
	if err != nil {
		t.Fatal(err)
	}
	if r.Status != domain.MatchRejected {
		t.Fatalf("status = %s, want rejected", r.Status)
	}

	// Alice searches again; Bob is permanently excluded
	m2, err := svc.Find(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if m2.Status != domain.MatchWaiting {
		t.Fatalf("rejected pair was re-matched: %+v", m2)
	}
	ids, _ := repo.RejectedPartnerIDs(ctx, "bob")
	if len(ids) != 1 || ids[0] != "alice" {
		t.Fatalf("exclusion must be unordered, got %v", ids)
	}
}

func TestApproveAfterTerminalState(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	m, _ := svc.Find(ctx, "bob")
	svc.Approve(ctx, m.ID, "alice", false)

	if _, err := svc.Approve(ctx, m.ID, "bob", true); err != ErrInvalidState {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
}

func TestConcurrentApprovalInvariant(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.UpsertPreference(ctx, pref("bob", "male", "female"))
	svc.Find(ctx, "alice")
	m, _ := svc.Find(ctx, "bob")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		user := "alice"
		if i%2 == 0 {
			user = "bob"
		}
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			// late calls may hit the terminal guard; only the invariant matters
			svc.Approve(ctx, m.ID, u, true)
		}(user)
	}
	wg.Wait()

	final, err := svc.Match(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if final.Status != domain.MatchMatched {
		t.Fatalf("status = %s, want matched", final.Status)
	}
	if !final.User1Approved || !final.User2Approved {
		t.Fatalf("matched implies both approvals: %+v", final)
	}
}

func TestLeaveQueue(t *testing.T) {
	svc, _, _ := newTestSvc(t)
	ctx := context.Background()
	svc.UpsertPreference(ctx, pref("alice", "female", "male"))
	svc.Find(ctx, "alice") // enqueues

	if err := svc.LeaveQueue(ctx, "alice"); err != nil {
		t.Fatal(err)
	}
	if err := svc.LeaveQueue(ctx, "alice"); err != ErrNotInQueue {
		t.Fatalf("err = %v, want ErrNotInQueue", err)
	}

	st, err := svc.QueueStatus(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if st.Status != "not_in_queue" {
		t.Fatalf("status = %s", st.Status)
	}
}
