package confirm

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrUnknownRequest = errors.New("unknown or already resolved confirmation")

// Request is a prompt waiting for a decision from a remote client.
type Request struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type pending struct {
	req       Request
	onConfirm func()
	onCancel  func()
}

// Registry is a Confirmer whose decisions arrive later, through Resolve.
// It backs the two-step delete over HTTP: the first call opens a request,
// the second one confirms or cancels it.
type Registry struct {
	mu      sync.Mutex
	pending map[string]pending
	ttl     time.Duration
	now     func() time.Time
}

// NewRegistry returns a registry whose open requests are cancelled by Sweep
// once they are older than ttl. A ttl <= 0 disables expiry.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		pending: make(map[string]pending),
		ttl:     ttl,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (r *Registry) Confirm(p Prompt, onConfirm, onCancel func()) {
	r.Open(p, onConfirm, onCancel)
}

// Open registers a prompt and returns the request a client must resolve.
func (r *Registry) Open(p Prompt, onConfirm, onCancel func()) Request {
	req := Request{
		ID:        uuid.NewString(),
		Title:     p.Title,
		Message:   p.Message,
		CreatedAt: r.now(),
	}

	r.mu.Lock()
	r.pending[req.ID] = pending{req: req, onConfirm: onConfirm, onCancel: onCancel}
	r.mu.Unlock()
	return req
}

// Resolve runs the confirm or cancel continuation of an open request.
func (r *Registry) Resolve(id string, accept bool) error {
	r.mu.Lock()
	p, ok := r.pending[id]
	delete(r.pending, id)
	r.mu.Unlock()

	if !ok {
		return ErrUnknownRequest
	}
	if accept {
		call(p.onConfirm)
	} else {
		call(p.onCancel)
	}
	return nil
}

// Pending lists open requests, oldest first.
func (r *Registry) Pending() []Request {
	r.mu.Lock()
	out := make([]Request, 0, len(r.pending))
	for _, p := range r.pending {
		out = append(out, p.req)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Sweep cancels every request older than the ttl and returns how many.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	var expired []pending
	r.mu.Lock()
	for id, p := range r.pending {
		if now.Sub(p.req.CreatedAt) >= r.ttl {
			expired = append(expired, p)
			delete(r.pending, id)
		}
	}
	r.mu.Unlock()

	for _, p := range expired {
		call(p.onCancel)
	}
	return len(expired)
}
