package services

import (
	"github.com/asaskevich/EventBus"
	"github.com/maxaizer/realjobs/internal/events"
	log "github.com/sirupsen/logrus"
	"sync"
)

type CommentListener func(event events.CommentCreated)

// CommentFeed fans CommentCreated events out to listeners of a single job.
type CommentFeed struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[string]map[int]CommentListener
}

func NewCommentFeed(bus EventBus.Bus) (*CommentFeed, error) {
	feed := &CommentFeed{listeners: map[string]map[int]CommentListener{}}
	if err := bus.Subscribe(events.CommentCreatedTopic, feed.dispatch); err != nil {
		return nil, err
	}
	return feed, nil
}

// Subscribe registers fn for comments on jobID. The returned func removes it
// and is safe to call more than once.
func (f *CommentFeed) Subscribe(jobID string, fn CommentListener) (unsubscribe func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	id := f.nextID
	if f.listeners[jobID] == nil {
		f.listeners[jobID] = map[int]CommentListener{}
	}
	f.listeners[jobID][id] = fn

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()

		delete(f.listeners[jobID], id)
		if len(f.listeners[jobID]) == 0 {
			delete(f.listeners, jobID)
		}
	}
}

func (f *CommentFeed) Listeners(jobID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.listeners[jobID])
}

func (f *CommentFeed) dispatch(event events.CommentCreated) {
	f.mu.RLock()
	targets := make([]CommentListener, 0, len(f.listeners[event.Comment.JobPostingID]))
	for _, fn := range f.listeners[event.Comment.JobPostingID] {
		targets = append(targets, fn)
	}
	f.mu.RUnlock()

	for _, fn := range targets {
		notify(fn, event)
	}
}

func notify(fn CommentListener, event events.CommentCreated) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("comment listener panicked: %v", r)
		}
	}()
	fn(event)
}
