package jobs

import (
	"context"
	"log"
	"time"

	"github.com/kortex-labs/kortex/internal/domain"
	"github.com/kortex-labs/kortex/internal/service"
)

// ActivityStore persists activity log entries.
type ActivityStore interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
}

// ActivityRecorder writes activity log entries from a background goroutine so
// request handlers never block on, or fail because of, activity persistence.
// When the buffer is full, entries are dropped with a log line.
type ActivityRecorder struct {
	store    ActivityStore
	uuidGen  service.UUIDGenerator
	entries  chan *domain.ActivityLog
	stopChan chan struct{}
	doneChan chan struct{}
}

const defaultActivityBuffer = 256

// NewActivityRecorder creates a new ActivityRecorder instance
func NewActivityRecorder(store ActivityStore) *ActivityRecorder {
	return NewActivityRecorderWithConfig(store, &service.DefaultUUIDGenerator{}, defaultActivityBuffer)
}

// NewActivityRecorderWithConfig creates an ActivityRecorder with a custom
// UUID generator and buffer size.
func NewActivityRecorderWithConfig(store ActivityStore, uuidGen service.UUIDGenerator, buffer int) *ActivityRecorder {
	if buffer <= 0 {
		buffer = defaultActivityBuffer
	}
	return &ActivityRecorder{
		store:    store,
		uuidGen:  uuidGen,
		entries:  make(chan *domain.ActivityLog, buffer),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
}

// Record enqueues an activity entry. It never blocks and never returns an
// error; activity logging is best effort.
func (r *ActivityRecorder) Record(userID string, action domain.ActionType, entityID string, metadata map[string]any) {
	entry := &domain.ActivityLog{
		ID:         r.uuidGen.NewString(),
		UserID:     userID,
		ActionType: action,
		EntityID:   entityID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}

	select {
	case r.entries <- entry:
	default:
		log.Printf("activity buffer full, dropping %s entry for user %s", action, userID)
	}
}

// Start begins draining the queue. It blocks until Stop is called or the
// context is cancelled, so run it in its own goroutine.
func (r *ActivityRecorder) Start(ctx context.Context) {
	defer close(r.doneChan)

	log.Println("Activity recorder started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Activity recorder stopped: context cancelled")
			return
		case <-r.stopChan:
			r.drain(ctx)
			log.Println("Activity recorder stopped: stop signal received")
			return
		case entry := <-r.entries:
			r.persist(ctx, entry)
		}
	}
}

// Stop gracefully stops the recorder after flushing queued entries.
func (r *ActivityRecorder) Stop() {
	close(r.stopChan)
	<-r.doneChan
	log.Println("Activity recorder shutdown complete")
}

func (r *ActivityRecorder) drain(ctx context.Context) {
	for {
		select {
		case entry := <-r.entries:
			r.persist(ctx, entry)
		default:
			return
		}
	}
}

func (r *ActivityRecorder) persist(ctx context.Context, entry *domain.ActivityLog) {
	if err := r.store.Create(ctx, entry); err != nil {
		log.Printf("Error recording %s activity for user %s: %v", entry.ActionType, entry.UserID, err)
	}
}

// NoOpActivityRecorder discards all activity. Used when no database-backed
// recorder is wired, e.g. in tests or degraded startup.
type NoOpActivityRecorder struct{}

func (NoOpActivityRecorder) Record(string, domain.ActionType, string, map[string]any) {}
