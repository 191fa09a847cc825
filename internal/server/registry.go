package server

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/widget"
)

// DefaultMaxWidgets bounds the number of live widgets.
const DefaultMaxWidgets = 256

// Registry holds live widgets keyed by id.
//
// Each widget has its own mutex, so requests for one widget run one at a
// time while different widgets proceed in parallel.
type Registry struct {
	mu      sync.RWMutex
	widgets map[string]*entry
	limit   int
}

type entry struct {
	mu      sync.Mutex
	ctrl    *widget.Controller
	created time.Time
}

// NewRegistry returns an empty registry holding at most limit widgets.
// When full, creating a widget evicts the oldest one.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultMaxWidgets
	}
	return &Registry{widgets: make(map[string]*entry), limit: limit}
}

// Create builds a widget and returns its id.
func (r *Registry) Create(opts widget.Options) (string, error) {
	ctrl, err := widget.New(opts)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	for len(r.widgets) >= r.limit {
		r.evictOldest()
	}
	r.widgets[id] = &entry{ctrl: ctrl, created: time.Now()}
	return id, nil
}

func (r *Registry) evictOldest() {
	var (
		oldest string
		at     time.Time
	)
	for id, e := range r.widgets {
		if oldest == "" || e.created.Before(at) {
			oldest, at = id, e.created
		}
	}
	delete(r.widgets, oldest)
}

// Do runs fn with exclusive access to the widget with the given id. The
// widget's hooks see ctx for the duration of the call.
func (r *Registry) Do(ctx context.Context, id string, fn func(*widget.Controller) error) error {
	r.mu.RLock()
	e, ok := r.widgets[id]
	r.mu.RUnlock()
	if !ok {
		return errors.New(errors.ErrCodeWidgetNotFound, "widget %q not found", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl.SetContext(ctx)
	defer e.ctrl.SetContext(context.Background())
	return fn(e.ctrl)
}

// Has reports whether a widget exists.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.widgets[id]
	return ok
}

// Delete removes a widget.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.widgets[id]; !ok {
		return errors.New(errors.ErrCodeWidgetNotFound, "widget %q not found", id)
	}
	delete(r.widgets, id)
	return nil
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.widgets)
}

// IDs returns the live widget ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.widgets))
	for id := range r.widgets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
