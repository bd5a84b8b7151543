package bot

import "sync"

// watches holds live comment subscriptions per chat and job.
type watches struct {
	mu     sync.Mutex
	byChat map[int64]map[string]func()
}

func newWatches() *watches {
	return &watches{byChat: make(map[int64]map[string]func())}
}

// Add registers a subscription created by subscribe unless the chat already
// watches the job. It reports whether a subscription was added.
func (w *watches) Add(chatID int64, jobID string, subscribe func() (unsubscribe func())) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	jobs := w.byChat[chatID]
	if jobs == nil {
		jobs = make(map[string]func())
		w.byChat[chatID] = jobs
	}
	if _, ok := jobs[jobID]; ok {
		return false
	}
	jobs[jobID] = subscribe()
	return true
}

func (w *watches) Remove(chatID int64, jobID string) bool {
	w.mu.Lock()
	unsubscribe, ok := w.byChat[chatID][jobID]
	if ok {
		delete(w.byChat[chatID], jobID)
	}
	w.mu.Unlock()

	if ok {
		unsubscribe()
	}
	return ok
}

func (w *watches) Has(chatID int64, jobID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.byChat[chatID][jobID]
	return ok
}

func (w *watches) Clear() {
	w.mu.Lock()
	all := w.byChat
	w.byChat = make(map[int64]map[string]func())
	w.mu.Unlock()

	for _, jobs := range all {
		for _, unsubscribe := range jobs {
			unsubscribe()
		}
	}
}
