// package session tracks live upload sessions and their event queues.
//
// A session is created when an upload is submitted, read by the streaming
// endpoints, and evicted after its terminal event is delivered (or by the
// reaper when no consumer ever shows up).
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/desertthunder/driverelay/internal/events"
	"github.com/desertthunder/driverelay/internal/shared"
)

// Session is the server-side record tracking one upload's transfer.
//
// TotalBytes is written exactly once by the transfer supervisor, before the
// first event referencing it is pushed; atomic access gives readers
// publish-after-write visibility.
type Session struct {
	ID         string
	SourcePath string
	Filename   string
	DestFolder string
	DestObject string
	CreatedAt  time.Time

	totalBytes atomic.Int64
	queue      *events.Queue
}

// Queue returns the session's event queue.
func (s *Session) Queue() *events.Queue {
	return s.queue
}

// TotalBytes returns the source file size, or 0 if not yet determined.
func (s *Session) TotalBytes() int64 {
	return s.totalBytes.Load()
}

// SetTotalBytes records the source file size. Called once by the supervisor
// before it pushes the start event.
func (s *Session) SetTotalBytes(n int64) {
	s.totalBytes.Store(n)
}

// Registry is a thread-safe in-memory store of active sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create registers a new session with a collision-resistant id and a fresh
// event queue, and returns it.
func (r *Registry) Create(sourcePath, filename, destFolder, destObject string) *Session {
	sess := &Session{
		ID:         shared.GenerateID(),
		SourcePath: sourcePath,
		Filename:   filename,
		DestFolder: destFolder,
		DestObject: destObject,
		CreatedAt:  time.Now(),
		queue:      events.NewQueue(),
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	return sess
}

// Get retrieves a session by id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[id]
	return sess, ok
}

// Remove evicts a session. Called by the streaming endpoints after the
// terminal event has been delivered.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Reap removes sessions created before the cutoff and returns how many were
// evicted. Bounds the registry when a client never opens the stream.
func (r *Registry) Reap(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int
	for id, sess := range r.sessions {
		if sess.CreatedAt.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}

	return removed
}
