// Package topics implements best-effort forum topic discovery. There is no
// Bot API call that lists a supergroup's topics, so existence is inferred
// by sending and immediately deleting a marker message per candidate thread
// ID. Results are imprecise by nature and always labelled possibly
// incomplete; callers must not treat them as authoritative.
package topics

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/leadana/crmbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Prober is the subset of *tele.Bot needed for marker probing.
type Prober interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Delete(msg tele.Editable) error
}

// Topic is one discovered forum sub-topic.
type Topic struct {
	ThreadID int    `json:"thread_id"`
	Name     string `json:"name"`
}

// DiscoveryResult carries discovered topics plus the incompleteness flag,
// which is always true: the probe cannot prove it found everything.
type DiscoveryResult struct {
	GroupID            int64   `json:"group_id"`
	Topics             []Topic `json:"topics"`
	PossiblyIncomplete bool    `json:"possibly_incomplete"`
}

// Registry holds backend-supplied topic names per group. It exists because
// probing can prove a thread exists but cannot learn its title.
type Registry struct {
	mu    sync.RWMutex
	names map[int64]map[int]string
}

// NewRegistry builds an empty topic-name registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[int64]map[int]string)}
}

// SetNames replaces the known names for a group.
func (r *Registry) SetNames(groupID int64, names map[int]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[int]string, len(names))
	for id, name := range names {
		copied[id] = name
	}
	r.names[groupID] = copied
}

// Name returns the registered name for a thread, if any.
func (r *Registry) Name(groupID int64, threadID int) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.names[groupID][threadID]
	return name, ok
}

// Known returns all registered names for a group.
func (r *Registry) Known(groupID int64) map[int]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int]string, len(r.names[groupID]))
	for id, name := range r.names[groupID] {
		out[id] = name
	}
	return out
}

// Discoverer probes groups for forum sub-topics.
type Discoverer struct {
	prober   Prober
	registry *Registry
	// probeLimit is the highest candidate thread ID tried.
	probeLimit int
}

const markerText = "."

// NewDiscoverer builds a Discoverer probing thread IDs 2..probeLimit.
// Thread ID 1 is the group's general topic and is skipped.
func NewDiscoverer(prober Prober, registry *Registry, probeLimit int) *Discoverer {
	if probeLimit <= 0 {
		probeLimit = 100
	}
	return &Discoverer{prober: prober, registry: registry, probeLimit: probeLimit}
}

// Discover probes candidate thread IDs in a group. A successful marker send
// means the thread exists; the marker is deleted immediately. Send failures
// are the normal case for absent threads and are not reported as errors.
func (d *Discoverer) Discover(ctx context.Context, groupID int64) DiscoveryResult {
	result := DiscoveryResult{GroupID: groupID, PossiblyIncomplete: true}

	for threadID := 2; threadID <= d.probeLimit; threadID++ {
		select {
		case <-ctx.Done():
			logger.Warn(ctx, "topics", "discover.cancelled",
				slog.Int64("group_id", groupID),
				slog.Int("topics_found", len(result.Topics)),
			)
			return result
		default:
		}

		msg, err := d.prober.Send(tele.ChatID(groupID), markerText, &tele.SendOptions{ThreadID: threadID})
		if err != nil {
			continue
		}
		if err := d.prober.Delete(msg); err != nil {
			logger.Debug(ctx, "topics", "marker.delete_fail",
				slog.Int64("group_id", groupID),
				slog.Int("thread_id", threadID),
				slog.String("err", err.Error()),
			)
		}
		result.Topics = append(result.Topics, Topic{
			ThreadID: threadID,
			Name:     d.topicName(groupID, threadID),
		})
	}

	logger.Info(ctx, "topics", "discover.done",
		slog.Int64("group_id", groupID),
		slog.Int("topics_found", len(result.Topics)),
	)
	return result
}

// Exists probes a single thread ID.
func (d *Discoverer) Exists(groupID int64, threadID int) bool {
	msg, err := d.prober.Send(tele.ChatID(groupID), markerText, &tele.SendOptions{ThreadID: threadID})
	if err != nil {
		return false
	}
	_ = d.prober.Delete(msg)
	return true
}

func (d *Discoverer) topicName(groupID int64, threadID int) string {
	if d.registry != nil {
		if name, ok := d.registry.Name(groupID, threadID); ok {
			return name
		}
	}
	return fmt.Sprintf("Topic %d", threadID)
}
