package session

import (
	"sync"
	"time"

	"github.com/joeycumines/collabmd/internal/transport"
)

// State is a Session's position in the Handshaking -> Authenticating ->
// Active -> Closing lifecycle.
type State int

const (
	Handshaking State = iota
	Authenticating
	Active
	Closing
)

func (s State) String() string {
	switch s {
	case Handshaking:
		return "Handshaking"
	case Authenticating:
		return "Authenticating"
	case Active:
		return "Active"
	case Closing:
		return "Closing"
	default:
		return "Unknown"
	}
}

// Session is one connected client. ID is stable for the connection's
// lifetime; Username and Role are set once Authenticating succeeds.
type Session struct {
	ID         uint64
	Stream     transport.Stream
	RemoteAddr string
	ConnectedAt time.Time

	mu       sync.Mutex
	state    State
	username string
	role     Role
}

func newSession(id uint64, stream transport.Stream) *Session {
	return &Session{
		ID:          id,
		Stream:      stream,
		RemoteAddr:  stream.RemoteAddr(),
		ConnectedAt: time.Now(),
		state:       Handshaking,
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetState transitions the session to a new state.
func (s *Session) SetState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Authenticate records the authenticated identity and moves to Active.
func (s *Session) Authenticate(username string, role Role) {
	s.mu.Lock()
	s.username = username
	s.role = role
	s.state = Active
	s.mu.Unlock()
}

// Identity returns the authenticated username and role, valid once
// Authenticate has been called.
func (s *Session) Identity() (username string, role Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.username, s.role
}

// Send writes one line to the session's outbound stream. Safe to call
// from the broadcaster concurrently with the session's own reader
// goroutine, since transport.Stream.WriteLine is internally
// synchronized.
func (s *Session) Send(line string) error {
	return s.Stream.WriteLine(line)
}

// Manager is the server's session table: the "sessions lock" described
// in the concurrency model, held in write mode only for allocation and
// teardown, and in read mode while broadcasting.
type Manager struct {
	mu      sync.RWMutex
	next    uint64
	byID    map[uint64]*Session
	maxSize int
}

// NewManager builds a Manager that admits at most maxSize concurrent
// sessions.
func NewManager(maxSize int) *Manager {
	return &Manager{byID: make(map[uint64]*Session), maxSize: maxSize}
}

// Admit allocates a new Session for stream, or reports ok == false if
// every slot is in use.
func (m *Manager) Admit(stream transport.Stream) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.byID) >= m.maxSize {
		return nil, false
	}
	m.next++
	s := newSession(m.next, stream)
	m.byID[s.ID] = s
	return s, true
}

// Remove drops a session from the table, e.g. on disconnect.
func (m *Manager) Remove(s *Session) {
	m.mu.Lock()
	delete(m.byID, s.ID)
	m.mu.Unlock()
}

// Len reports the number of currently admitted sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

// Broadcast sends line to every active session under a read lock. A
// write failure tears down that one session (via onError, called after
// the read lock is released so it may Remove the session) without
// affecting delivery to the rest.
func (m *Manager) Broadcast(line string, onError func(*Session, error)) {
	type failure struct {
		s   *Session
		err error
	}
	var failed []failure
	m.mu.RLock()
	for _, s := range m.byID {
		if err := s.Send(line); err != nil {
			failed = append(failed, failure{s, err})
		}
	}
	m.mu.RUnlock()
	if onError == nil {
		return
	}
	for _, f := range failed {
		onError(f.s, f.err)
	}
}

// Each calls fn for every active session, under a read lock, for reads
// that don't mutate the table.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.byID {
		fn(s)
	}
}
