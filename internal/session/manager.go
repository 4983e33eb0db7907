// Package session keeps one import pipeline per API session.
package session

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"sheetimport/app"
	"sheetimport/domain/core"
	"sheetimport/domain/task"
	"sheetimport/internal/errors"
	"sheetimport/ports"
)

// PipelineFactory builds a fresh pipeline for a collaborator directory
type PipelineFactory func(directory task.Directory) *app.ImportPipeline

// Session is one import in progress. Access to its pipeline is serialized.
type Session struct {
	ID        core.SessionID
	ProjectID string
	CreatedAt time.Time

	mu       sync.Mutex
	pipeline *app.ImportPipeline
	lastUsed atomic.Int64
}

// Do runs fn with exclusive access to the pipeline
func (s *Session) Do(fn func(p *app.ImportPipeline) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.pipeline)
}

// Manager tracks live sessions and expires idle ones
type Manager struct {
	mu          sync.RWMutex
	sessions    map[core.SessionID]*Session
	factory     PipelineFactory
	directories ports.DirectoryProvider
	ttl         time.Duration
	now         func() time.Time
}

// NewManager creates a session manager. A zero ttl keeps sessions forever.
func NewManager(factory PipelineFactory, directories ports.DirectoryProvider, ttl time.Duration) *Manager {
	return &Manager{
		sessions:    make(map[core.SessionID]*Session),
		factory:     factory,
		directories: directories,
		ttl:         ttl,
		now:         time.Now,
	}
}

// Create starts a session importing into projectID
func (m *Manager) Create(ctx context.Context, projectID string) (*Session, error) {
	var directory task.Directory
	if m.directories != nil {
		dir, err := m.directories.Directory(ctx, projectID)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to load directory for project %q", projectID)
		}
		directory = dir
	}

	now := m.now()
	s := &Session{
		ID:        core.NewSessionID(),
		ProjectID: projectID,
		CreatedAt: now,
		pipeline:  m.factory(directory),
	}
	s.lastUsed.Store(now.UnixNano())

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	log.Printf("[Sessions] created %s for project %q (%d collaborators)", s.ID, projectID, len(directory))
	return s, nil
}

// Get returns a live session and marks it used
func (m *Manager) Get(id string) (*Session, error) {
	sid, err := core.ParseSessionID(id)
	if err != nil {
		return nil, errors.SessionNotFound(id)
	}

	m.mu.RLock()
	s, ok := m.sessions[sid]
	m.mu.RUnlock()
	if !ok {
		return nil, errors.SessionNotFound(id)
	}

	s.lastUsed.Store(m.now().UnixNano())
	return s, nil
}

// Delete drops a session
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sid := core.SessionID(id)
	if _, ok := m.sessions[sid]; !ok {
		return false
	}
	delete(m.sessions, sid)
	return true
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep removes sessions idle for longer than the ttl. Sessions busy in a
// pipeline call are left alone.
func (m *Manager) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if !s.mu.TryLock() {
			continue
		}
		idle := s.lastUsed.Load() < cutoff.UnixNano()
		s.mu.Unlock()
		if idle {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[Sessions] expired %d idle sessions", removed)
	}
	return removed
}

// StartJanitor sweeps expired sessions every interval until ctx is done
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if m.ttl <= 0 || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Sweep()
			}
		}
	}()
}
