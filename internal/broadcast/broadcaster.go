// Package broadcast fans render progress out to per-job subscribers.
package broadcast

import (
	"sync"

	"clipforge/internal/types"
)

const subscriberBuffer = 16

// Broadcaster is a per-job-id pubsub registry. Publishing never blocks:
// a subscriber that stops draining its channel misses events instead of
// stalling the render pipeline.
type Broadcaster struct {
	mu          sync.Mutex
	subscribers map[string][]chan types.ProgressEvent
}

func New() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string][]chan types.ProgressEvent),
	}
}

// Subscribe registers interest in one job's progress. The returned
// channel is closed by Unsubscribe.
func (b *Broadcaster) Subscribe(jobId string) chan types.ProgressEvent {
	ch := make(chan types.ProgressEvent, subscriberBuffer)

	b.mu.Lock()
	b.subscribers[jobId] = append(b.subscribers[jobId], ch)
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a channel and closes it. The job's subscriber
// list is deleted once the last subscriber leaves.
func (b *Broadcaster) Unsubscribe(jobId string, ch chan types.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[jobId]
	for i, sub := range subs {
		if sub == ch {
			subs = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}

	if len(subs) == 0 {
		delete(b.subscribers, jobId)
	} else {
		b.subscribers[jobId] = subs
	}
}

// Publish delivers an event to every subscriber of the job. Slow
// subscribers with a full buffer are skipped. Sends happen under the
// mutex: they never block, and Unsubscribe closes channels under the
// same mutex, so a send can never hit a closed channel.
func (b *Broadcaster) Publish(event types.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subscribers[event.JobId] {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount reports how many channels are registered for a job.
func (b *Broadcaster) SubscriberCount(jobId string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[jobId])
}

// HasSubscribers reports whether any job has live subscribers.
func (b *Broadcaster) HasSubscribers() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers) > 0
}
