package notify

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

type fakeAPI struct {
	mu    sync.Mutex
	sent  []int64
	fail  map[int64]error
	delay map[int64]time.Duration
	next  int
}

func (f *fakeAPI) Send(to tele.Recipient, _ interface{}, _ ...interface{}) (*tele.Message, error) {
	chatID, _ := strconv.ParseInt(to.Recipient(), 10, 64)

	f.mu.Lock()
	delay := f.delay[chatID]
	failErr := f.fail[chatID]
	f.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if failErr != nil {
		return nil, failErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, chatID)
	f.next++
	return &tele.Message{ID: f.next, Chat: &tele.Chat{ID: chatID}}, nil
}

func (f *fakeAPI) Delete(_ tele.Editable) error { return nil }

func (f *fakeAPI) ChatByID(id int64) (*tele.Chat, error) {
	return &tele.Chat{ID: id, Title: "group", Type: tele.ChatSuperGroup}, nil
}

func TestSendSuccess(t *testing.T) {
	api := &fakeAPI{}
	n := New(api, time.Second)

	res := n.Send(context.Background(), 42, "hello", "HTML", nil)
	if !res.Success || res.ChatID != 42 || res.MessageID == 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestSendFailureReportedNotRaised(t *testing.T) {
	api := &fakeAPI{fail: map[int64]error{42: errors.New("telegram: Forbidden: bot was blocked by the user")}}
	n := New(api, time.Second)

	res := n.Send(context.Background(), 42, "hello", "", nil)
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Error != "bot is blocked by user or chat not found" {
		t.Errorf("error = %q", res.Error)
	}
}

func TestBulkPartialFailures(t *testing.T) {
	api := &fakeAPI{fail: map[int64]error{
		2: errors.New("telegram: Bad Request: chat not found"),
		4: errors.New("telegram: Forbidden"),
	}}
	n := New(api, time.Second)

	chatIDs := []int64{1, 2, 3, 4, 5}
	results := n.Bulk(context.Background(), chatIDs, "hello", "")

	if len(results) != len(chatIDs) {
		t.Fatalf("got %d results, want %d", len(results), len(chatIDs))
	}
	failed := 0
	for i, res := range results {
		if res.ChatID != chatIDs[i] {
			t.Errorf("result %d out of order: %+v", i, res)
		}
		if !res.Success {
			failed++
			if res.Error == "" {
				t.Errorf("failed result %d has no error text", i)
			}
		}
	}
	if failed != 2 {
		t.Errorf("failed = %d, want 2", failed)
	}
}

func TestSlowRecipientDoesNotBlockOthers(t *testing.T) {
	api := &fakeAPI{delay: map[int64]time.Duration{2: 2 * time.Second}}
	n := New(api, 100*time.Millisecond)

	start := time.Now()
	results := n.Bulk(context.Background(), []int64{1, 2, 3}, "hello", "")
	elapsed := time.Since(start)

	if elapsed > time.Second {
		t.Errorf("bulk took %v, slow recipient blocked the batch", elapsed)
	}
	if !results[0].Success || !results[2].Success {
		t.Error("fast recipients should succeed")
	}
	if results[1].Success {
		t.Error("slow recipient should time out")
	}
	if results[1].Error != "send timed out" {
		t.Errorf("timeout error = %q", results[1].Error)
	}
}

func TestParseModeNormalization(t *testing.T) {
	cases := map[string]tele.ParseMode{
		"HTML":       tele.ModeHTML,
		"html":       tele.ModeHTML,
		"Markdown":   tele.ModeMarkdown,
		"MarkdownV2": tele.ModeMarkdownV2,
		"":           tele.ModeHTML,
		"weird":      "",
	}
	for in, want := range cases {
		if got := normalizeParseMode(in); got != want {
			t.Errorf("normalizeParseMode(%q) = %q, want %q", in, got, want)
		}
	}
}
