// Package broadcast fans ordered per-job progress events out to any number
// of subscribers. It keeps no history: a subscriber that connects late sees
// only events published after it subscribed, which is why the HTTP façade
// also serves a pull-based status snapshot.
package broadcast

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event statuses emitted by the pipeline.
const (
	StatusProcessing       = "processing"
	StatusBriefingStart    = "briefing_start"
	StatusBriefingComplete = "briefing_complete"
	StatusReportChunk      = "report_chunk"
	StatusCompleted        = "completed"
	StatusFailed           = "failed"
)

// Event is one progress update for a job.
type Event struct {
	JobID     string         `json:"job_id"`
	Status    string         `json:"status"`
	Message   string         `json:"message,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Publisher is the pipeline-facing side of the broadcaster.
type Publisher interface {
	Publish(ev Event)
}

// subscriberBuffer bounds how far a slow consumer may lag before events are
// dropped for it. Dropping beats stalling the pipeline; the consumer can
// always re-pull the job snapshot.
const subscriberBuffer = 256

type subscriber struct {
	ch chan Event
}

// Broadcaster delivers each job's events, in publish order, to all current
// subscribers of that job.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[string][]*subscriber
}

// New creates an empty Broadcaster.
func New() *Broadcaster {
	return &Broadcaster{subs: make(map[string][]*subscriber)}
}

// Subscribe registers an observer for a job. The returned cancel function
// must be called when the observer disconnects; it closes the channel.
func (b *Broadcaster) Subscribe(jobID string) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}

	b.mu.Lock()
	b.subs[jobID] = append(b.subs[jobID], sub)
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			list := b.subs[jobID]
			for i, s := range list {
				if s == sub {
					b.subs[jobID] = append(list[:i], list[i+1:]...)
					break
				}
			}
			if len(b.subs[jobID]) == 0 {
				delete(b.subs, jobID)
			}
			b.mu.Unlock()
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}

// Publish delivers an event to every current subscriber of its job. Events
// for one job are delivered in call order; a subscriber whose buffer is full
// loses the event.
func (b *Broadcaster) Publish(ev Event) {
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs[ev.JobID] {
		select {
		case sub.ch <- ev:
		default:
			zap.L().Warn("broadcast: dropping event for slow subscriber",
				zap.String("job_id", ev.JobID),
				zap.String("status", ev.Status),
			)
		}
	}
}

// SubscriberCount reports how many observers a job currently has.
func (b *Broadcaster) SubscriberCount(jobID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[jobID])
}
