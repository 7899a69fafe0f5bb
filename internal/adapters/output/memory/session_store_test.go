package memory

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"directline-bridge/internal/domain"
)

// Default test configuration values
const testRetention = 10 * time.Minute

func newTestSession(id, token string, expiresAt time.Time) domain.ConversationSession {
	return domain.ConversationSession{
		ConversationID: id,
		Token:          token,
		ExpiresAt:      expiresAt,
		StreamURL:      "wss://example.test/stream/" + id,
	}
}

// TestNewMemorySessionStoreAcceptsRetention tests that the retention parameter is stored
func TestNewMemorySessionStoreAcceptsRetention(t *testing.T) {
	store := NewMemorySessionStore(45 * time.Minute)

	if store == nil {
		t.Fatal("expected NewMemorySessionStore to return non-nil store")
	}

	if store.GetRetention() != 45*time.Minute {
		t.Errorf("expected retention %v, got %v", 45*time.Minute, store.GetRetention())
	}

	if NewMemorySessionStore(-time.Second).GetRetention() != 0 {
		t.Error("expected negative retention to be floored at zero")
	}
}

// TestGetReturnsFalseForUnknownConversation tests lookup of a missing id
func TestGetReturnsFalseForUnknownConversation(t *testing.T) {
	store := NewMemorySessionStore(testRetention)

	_, ok := store.Get("non-existent")
	if ok {
		t.Error("expected no session for unknown conversation")
	}
}

// TestPutThenGetReturnsCopy tests that callers only ever hold copies
func TestPutThenGetReturnsCopy(t *testing.T) {
	store := NewMemorySessionStore(testRetention)
	store.Put(newTestSession("abc123", "token-1", time.Now().Add(time.Hour)))

	got, ok := store.Get("abc123")
	if !ok {
		t.Fatal("expected session to be stored")
	}
	got.Token = "mutated"

	again, _ := store.Get("abc123")
	if again.Token != "token-1" {
		t.Errorf("expected stored token to be unaffected by caller mutation, got %s", again.Token)
	}
}

// TestPutReplacesWholeSession tests wholesale replacement at the same key
func TestPutReplacesWholeSession(t *testing.T) {
	store := NewMemorySessionStore(testRetention)
	store.Put(newTestSession("abc123", "old-token", time.Now().Add(-time.Minute)))

	replacement := domain.ConversationSession{
		ConversationID: "abc123",
		Token:          "new-token",
		ExpiresAt:      time.Now().Add(time.Hour),
	}
	store.Put(replacement)

	got, _ := store.Get("abc123")
	if got.Token != "new-token" {
		t.Errorf("expected new-token, got %s", got.Token)
	}
	if got.StreamURL != "" {
		t.Errorf("expected stream url to be replaced along with the token, got %s", got.StreamURL)
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 session, got %d", store.Len())
	}
}

// TestLastCompletedPutWins tests last-completion-wins under racing writers
func TestLastCompletedPutWins(t *testing.T) {
	store := NewMemorySessionStore(testRetention)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			store.Put(newTestSession("abc123", fmt.Sprintf("token-%d", i), time.Now().Add(time.Hour)))
		}(i)
	}
	wg.Wait()

	store.Put(newTestSession("abc123", "final", time.Now().Add(time.Hour)))

	got, _ := store.Get("abc123")
	if got.Token != "final" {
		t.Errorf("expected the last completed write to win, got %s", got.Token)
	}
}

// TestConcurrentWritesToDifferentKeys tests that independent keys all land
func TestConcurrentWritesToDifferentKeys(t *testing.T) {
	store := NewMemorySessionStore(testRetention)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conv-%d", i)
			store.Put(newTestSession(id, "token-"+id, time.Now().Add(time.Hour)))
			if got, ok := store.Get(id); !ok || got.Token != "token-"+id {
				t.Errorf("expected consistent session for %s, got %+v", id, got)
			}
		}(i)
	}
	wg.Wait()

	if store.Len() != 100 {
		t.Errorf("expected 100 sessions, got %d", store.Len())
	}
}

// TestDeleteIsIdempotent tests that deleting twice does not panic or fail
func TestDeleteIsIdempotent(t *testing.T) {
	store := NewMemorySessionStore(testRetention)
	store.Put(newTestSession("abc123", "token", time.Now().Add(time.Hour)))

	store.Delete("abc123")
	store.Delete("abc123")

	if _, ok := store.Get("abc123"); ok {
		t.Error("expected session to be deleted")
	}
}

// TestSweepRemovesOnlyStaleSessions tests expiry plus retention
func TestSweepRemovesOnlyStaleSessions(t *testing.T) {
	store := NewMemorySessionStore(testRetention)
	now := time.Now()

	store.Put(newTestSession("live", "t1", now.Add(time.Hour)))
	store.Put(newTestSession("expired-recently", "t2", now.Add(-5*time.Minute)))
	store.Put(newTestSession("stale", "t3", now.Add(-11*time.Minute)))

	removed := store.Sweep(now)
	if removed != 1 {
		t.Errorf("expected 1 session swept, got %d", removed)
	}

	if _, ok := store.Get("stale"); ok {
		t.Error("expected stale session to be swept")
	}
	if _, ok := store.Get("expired-recently"); !ok {
		t.Error("expected recently expired session to stay reconnectable")
	}
	if _, ok := store.Get("live"); !ok {
		t.Error("expected live session to remain")
	}
}

// TestCleanupRoutineSweeps tests the background sweep
func TestCleanupRoutineSweeps(t *testing.T) {
	store := NewMemorySessionStore(0)
	store.Put(newTestSession("stale", "token", time.Now().Add(-time.Minute)))

	store.StartCleanupRoutine(10 * time.Millisecond)
	defer store.Close()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if store.Len() == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("expected cleanup routine to sweep the stale session")
}

// TestCloseWithoutStartIsSafe tests Close on a store with no routine
func TestCloseWithoutStartIsSafe(t *testing.T) {
	store := NewMemorySessionStore(testRetention)
	store.Close()
	store.StartCleanupRoutine(0)
	store.Close()
}
