package queue

import (
	"errors"
	"fmt"
	"sync"

	"ytdlq/internal/model"
)

var (
	ErrNotFound    = errors.New("job not found")
	ErrNotTerminal = errors.New("job is not finished, failed or cancelled")
)

// Registry is the ordered job queue. Ids are assigned sequentially from 0
// and are never reused, even after a job is removed.
type Registry struct {
	mu     sync.RWMutex
	order  []*Job
	byID   map[int]*Job
	nextID int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byID: make(map[int]*Job)}
}

// Append creates a Queued job and adds it at the end of the queue.
func (r *Registry) Append(url string, format model.Format, dir string) *Job {
	r.mu.Lock()
	defer r.mu.Unlock()
	j := newJob(r.nextID, url, format, dir)
	r.nextID++
	r.order = append(r.order, j)
	r.byID[j.id] = j
	return j
}

// Get returns the live job for id.
func (r *Registry) Get(id int) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.byID[id]
	return j, ok
}

// Jobs returns the live jobs in queue order. The slice is a copy.
func (r *Registry) Jobs() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Job, len(r.order))
	copy(out, r.order)
	return out
}

// All returns snapshots of every job in queue order.
func (r *Registry) All() []model.JobSnapshot {
	jobs := r.Jobs()
	out := make([]model.JobSnapshot, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, j.Snapshot())
	}
	return out
}

// Len returns the number of jobs currently in the queue.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Remove deletes a terminal job.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if st := j.Status(); !st.IsTerminal() {
		return fmt.Errorf("%w: job %d is %s", ErrNotTerminal, id, st)
	}
	delete(r.byID, id)
	for i, o := range r.order {
		if o.id == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// RemoveTerminal deletes every Finished, Error or Cancelled job and returns
// their ids. Survivors keep their relative order.
func (r *Registry) RemoveTerminal() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []int
	kept := r.order[:0]
	for _, j := range r.order {
		if j.Status().IsTerminal() {
			removed = append(removed, j.id)
			delete(r.byID, j.id)
			continue
		}
		kept = append(kept, j)
	}
	for i := len(kept); i < len(r.order); i++ {
		r.order[i] = nil
	}
	r.order = kept
	return removed
}
