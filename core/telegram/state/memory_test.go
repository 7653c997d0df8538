package state

import (
	"testing"
	"time"
)

func newTestManager(ttl time.Duration) *memoryManager {
	return &memoryManager{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

func TestStateLifecycle(t *testing.T) {
	m := newTestManager(time.Minute)

	if m.GetState(1) != StateIdle {
		t.Error("fresh user must be idle")
	}
	if m.HasState(1) || m.InProgress(1) {
		t.Error("fresh user must have no active state")
	}

	m.SetState(1, State("wizard:step1"))
	if m.GetState(1) != State("wizard:step1") {
		t.Errorf("state = %q", m.GetState(1))
	}
	if !m.HasState(1) || !m.InProgress(1) {
		t.Error("active state not reported")
	}

	m.ClearState(1)
	if m.GetState(1) != StateIdle {
		t.Error("ClearState did not reset to idle")
	}
}

func TestClearStateKeepsTempData(t *testing.T) {
	m := newTestManager(time.Minute)
	m.SetState(1, State("wizard:step1"))
	m.SetTemp(1, "k", "v")

	m.ClearState(1)

	if v, ok := m.GetTempString(1, "k"); !ok || v != "v" {
		t.Errorf("temp data lost on ClearState: %q, %v", v, ok)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	m := newTestManager(time.Minute)
	m.SetState(1, State("wizard:step1"))
	m.SetTemp(1, "k", "v")

	m.Clear(1)

	if m.GetState(1) != StateIdle {
		t.Error("state survived Clear")
	}
	if _, ok := m.GetTemp(1, "k"); ok {
		t.Error("temp data survived Clear")
	}
}

func TestTypedTempAccessors(t *testing.T) {
	m := newTestManager(time.Minute)
	m.SetTemp(1, "str", "hello")
	m.SetTemp(1, "num", int64(42))

	if v, ok := m.GetTempString(1, "str"); !ok || v != "hello" {
		t.Errorf("GetTempString = %q, %v", v, ok)
	}
	if v, ok := m.GetTempInt64(1, "num"); !ok || v != 42 {
		t.Errorf("GetTempInt64 = %d, %v", v, ok)
	}

	// Wrong-type assertions must fail, not panic.
	if _, ok := m.GetTempInt64(1, "str"); ok {
		t.Error("string read back as int64")
	}
	if _, ok := m.GetTempString(1, "num"); ok {
		t.Error("int64 read back as string")
	}
	if _, ok := m.GetTemp(1, "missing"); ok {
		t.Error("missing key reported present")
	}
}

func TestClearTemp(t *testing.T) {
	m := newTestManager(time.Minute)
	m.SetTemp(1, "k", "v")
	m.ClearTemp(1, "k")

	if _, ok := m.GetTemp(1, "k"); ok {
		t.Error("ClearTemp left the key behind")
	}
}

func TestEvictionExpiresAbandonedSessions(t *testing.T) {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := newTestManager(30 * time.Minute)
	m.now = func() time.Time { return base }

	m.SetState(1, State("wizard:step1"))
	m.SetState(2, State("wizard:step1"))

	// User 2 stays active; user 1 goes quiet.
	m.now = func() time.Time { return base.Add(20 * time.Minute) }
	m.SetTemp(2, "k", "v")

	evicted := m.evictExpired(base.Add(40 * time.Minute))
	if evicted != 1 {
		t.Fatalf("evicted = %d, want 1", evicted)
	}
	if m.GetState(1) != StateIdle {
		t.Error("abandoned session survived eviction")
	}
	if m.GetState(2) != State("wizard:step1") {
		t.Error("active session was evicted")
	}
}

func TestEvictionDisabledWithZeroTTL(t *testing.T) {
	m := newTestManager(0)
	m.SetState(1, State("wizard:step1"))

	if evicted := m.evictExpired(time.Now().Add(24 * time.Hour)); evicted != 0 {
		t.Errorf("evicted = %d with eviction disabled", evicted)
	}
	if m.GetState(1) != State("wizard:step1") {
		t.Error("session evicted despite ttl <= 0")
	}
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	m := newTestManager(time.Minute)
	m.SetTemp(1, "k", "a")
	m.SetTemp(2, "k", "b")

	if v, _ := m.GetTempString(1, "k"); v != "a" {
		t.Errorf("user 1 temp = %q", v)
	}
	if v, _ := m.GetTempString(2, "k"); v != "b" {
		t.Errorf("user 2 temp = %q", v)
	}
}
