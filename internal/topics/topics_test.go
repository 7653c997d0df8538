package topics

import (
	"context"
	"errors"
	"strconv"
	"testing"

	tele "gopkg.in/telebot.v4"
)

type fakeProber struct {
	existing map[int]bool
	sent     []int
	deleted  int
}

func (f *fakeProber) Send(to tele.Recipient, _ interface{}, opts ...interface{}) (*tele.Message, error) {
	threadID := 0
	for _, opt := range opts {
		if so, ok := opt.(*tele.SendOptions); ok {
			threadID = so.ThreadID
		}
	}
	f.sent = append(f.sent, threadID)
	if !f.existing[threadID] {
		return nil, errors.New("telegram: Bad Request: message thread not found")
	}
	chatID, _ := strconv.ParseInt(to.Recipient(), 10, 64)
	return &tele.Message{ID: 1, Chat: &tele.Chat{ID: chatID}, ThreadID: threadID}, nil
}

func (f *fakeProber) Delete(_ tele.Editable) error {
	f.deleted++
	return nil
}

func TestDiscoverFindsExistingThreads(t *testing.T) {
	prober := &fakeProber{existing: map[int]bool{2: true, 5: true, 9: true}}
	d := NewDiscoverer(prober, NewRegistry(), 10)

	result := d.Discover(context.Background(), -100123)

	if len(result.Topics) != 3 {
		t.Fatalf("found %d topics, want 3", len(result.Topics))
	}
	want := []int{2, 5, 9}
	for i, topic := range result.Topics {
		if topic.ThreadID != want[i] {
			t.Errorf("topic %d = thread %d, want %d", i, topic.ThreadID, want[i])
		}
	}
	if !result.PossiblyIncomplete {
		t.Error("discovery results must always be flagged possibly incomplete")
	}
	if prober.deleted != 3 {
		t.Errorf("deleted %d markers, want 3", prober.deleted)
	}
}

func TestDiscoverSkipsGeneralTopic(t *testing.T) {
	prober := &fakeProber{existing: map[int]bool{1: true}}
	d := NewDiscoverer(prober, nil, 5)

	result := d.Discover(context.Background(), -100123)
	if len(result.Topics) != 0 {
		t.Errorf("thread 1 (general) must not be probed, got %+v", result.Topics)
	}
	for _, threadID := range prober.sent {
		if threadID < 2 {
			t.Errorf("probed thread %d", threadID)
		}
	}
}

func TestDiscoverUsesRegistryNames(t *testing.T) {
	registry := NewRegistry()
	registry.SetNames(-100123, map[int]string{2: "Sales", 3: "Support"})

	prober := &fakeProber{existing: map[int]bool{2: true, 4: true}}
	d := NewDiscoverer(prober, registry, 5)

	result := d.Discover(context.Background(), -100123)
	if len(result.Topics) != 2 {
		t.Fatalf("found %d topics", len(result.Topics))
	}
	if result.Topics[0].Name != "Sales" {
		t.Errorf("thread 2 name = %q, want Sales", result.Topics[0].Name)
	}
	if result.Topics[1].Name != "Topic 4" {
		t.Errorf("unregistered thread name = %q, want placeholder", result.Topics[1].Name)
	}
}

func TestDiscoverHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	prober := &fakeProber{existing: map[int]bool{2: true}}
	d := NewDiscoverer(prober, nil, 100)

	result := d.Discover(ctx, -100123)
	if len(prober.sent) != 0 {
		t.Errorf("probe ran %d sends after cancellation", len(prober.sent))
	}
	if !result.PossiblyIncomplete {
		t.Error("cancelled discovery must still be flagged incomplete")
	}
}

func TestRegistryIsolatesGroups(t *testing.T) {
	registry := NewRegistry()
	registry.SetNames(1, map[int]string{2: "A"})
	registry.SetNames(2, map[int]string{2: "B"})

	if name, _ := registry.Name(1, 2); name != "A" {
		t.Errorf("group 1 thread 2 = %q", name)
	}
	if name, _ := registry.Name(2, 2); name != "B" {
		t.Errorf("group 2 thread 2 = %q", name)
	}
	if _, ok := registry.Name(3, 2); ok {
		t.Error("unknown group returned a name")
	}
}

func TestExists(t *testing.T) {
	prober := &fakeProber{existing: map[int]bool{7: true}}
	d := NewDiscoverer(prober, nil, 100)

	if !d.Exists(-100123, 7) {
		t.Error("Exists(7) = false")
	}
	if d.Exists(-100123, 8) {
		t.Error("Exists(8) = true")
	}
}
