// Package notify wraps the bot's outbound send capability for the webhook
// ingress: single notifications, bulk fan-out with per-recipient results,
// and a hard per-send watchdog so a slow recipient never blocks others.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/leadana/crmbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// API is the subset of *tele.Bot the notifier needs. Narrow on purpose so
// tests can substitute a fake.
type API interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
	ChatByID(id int64) (*tele.Chat, error)
}

// Result reports the outcome of one delivery attempt.
type Result struct {
	ChatID    int64  `json:"chat_id"`
	Success   bool   `json:"success"`
	MessageID int    `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Notifier delivers backend-pushed messages into Telegram chats.
type Notifier struct {
	api         API
	sendTimeout time.Duration
}

// New builds a Notifier. sendTimeout bounds every individual delivery.
func New(api API, sendTimeout time.Duration) *Notifier {
	if sendTimeout <= 0 {
		sendTimeout = 8 * time.Second
	}
	return &Notifier{api: api, sendTimeout: sendTimeout}
}

var errSendTimeout = errors.New("notify: send timed out")

// send runs one bot call under the watchdog timeout. tele.Bot calls are
// synchronous and carry no context, so the watchdog abandons the goroutine
// rather than cancelling the call.
func (n *Notifier) send(chatID int64, what interface{}, opts *tele.SendOptions) (*tele.Message, error) {
	type outcome struct {
		msg *tele.Message
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		var (
			msg *tele.Message
			err error
		)
		if opts != nil {
			msg, err = n.api.Send(tele.ChatID(chatID), what, opts)
		} else {
			msg, err = n.api.Send(tele.ChatID(chatID), what)
		}
		done <- outcome{msg, err}
	}()

	timer := time.NewTimer(n.sendTimeout)
	defer timer.Stop()
	select {
	case out := <-done:
		return out.msg, out.err
	case <-timer.C:
		return nil, errSendTimeout
	}
}

// Send delivers one text message to one chat and never returns an error:
// failures are reported inside the Result.
func (n *Notifier) Send(ctx context.Context, chatID int64, message, parseMode string, markup *tele.ReplyMarkup) Result {
	opts := &tele.SendOptions{ReplyMarkup: markup}
	if pm := normalizeParseMode(parseMode); pm != "" {
		opts.ParseMode = pm
	}

	msg, err := n.send(chatID, message, opts)
	if err != nil {
		logger.Warn(ctx, "web", "notify.fail",
			slog.String("status", "fail"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return Result{ChatID: chatID, Success: false, Error: classify(err)}
	}
	return Result{ChatID: chatID, Success: true, MessageID: msg.ID}
}

// Bulk fans out one message to many chats, one goroutine per recipient.
// The returned slice preserves the input order; failed recipients are
// reported individually and never abort the call.
func (n *Notifier) Bulk(ctx context.Context, chatIDs []int64, message, parseMode string) []Result {
	results := make([]Result, len(chatIDs))
	var wg sync.WaitGroup
	for i, chatID := range chatIDs {
		wg.Add(1)
		go func(i int, chatID int64) {
			defer wg.Done()
			results[i] = n.Send(ctx, chatID, message, parseMode, nil)
		}(i, chatID)
	}
	wg.Wait()

	sent := 0
	for _, r := range results {
		if r.Success {
			sent++
		}
	}
	logger.Info(ctx, "web", "notify.bulk",
		slog.Int("recipients", len(chatIDs)),
		slog.Int("sent", sent),
		slog.Int("failed", len(chatIDs)-sent),
	)
	return results
}

// SendPhoto delivers a photo with caption; the caller handles fallback.
func (n *Notifier) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string, opts *tele.SendOptions) (Result, error) {
	photo := &tele.Photo{File: tele.FromURL(photoURL), Caption: caption}
	msg, err := n.send(chatID, photo, opts)
	if err != nil {
		return Result{ChatID: chatID, Success: false, Error: classify(err)}, err
	}
	return Result{ChatID: chatID, Success: true, MessageID: msg.ID}, nil
}

// SendText delivers plain text with explicit send options.
func (n *Notifier) SendText(ctx context.Context, chatID int64, text string, opts *tele.SendOptions) (Result, error) {
	msg, err := n.send(chatID, text, opts)
	if err != nil {
		return Result{ChatID: chatID, Success: false, Error: classify(err)}, err
	}
	return Result{ChatID: chatID, Success: true, MessageID: msg.ID}, nil
}

// Delete removes a previously sent message.
func (n *Notifier) Delete(msg tele.Editable) error {
	return n.api.Delete(msg)
}

// Chat fetches chat metadata by ID.
func (n *Notifier) Chat(chatID int64) (*tele.Chat, error) {
	return n.api.ChatByID(chatID)
}

func normalizeParseMode(pm string) tele.ParseMode {
	switch strings.ToLower(strings.TrimSpace(pm)) {
	case "html":
		return tele.ModeHTML
	case "markdown":
		return tele.ModeMarkdown
	case "markdownv2":
		return tele.ModeMarkdownV2
	case "":
		return tele.ModeHTML
	}
	return ""
}

// classify maps delivery errors to the stable strings reported to the
// backend. Raw Telegram errors are logged, not surfaced.
func classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, errSendTimeout) {
		return "send timed out"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "forbidden"), strings.Contains(msg, "blocked"):
		return "bot is blocked by user or chat not found"
	case strings.Contains(msg, "bad request"), strings.Contains(msg, "chat not found"):
		return "invalid chat_id or message format"
	default:
		return fmt.Sprintf("delivery failed: %s", trimErr(msg))
	}
}

func trimErr(s string) string {
	const max = 120
	if len(s) > max {
		return s[:max]
	}
	return s
}
