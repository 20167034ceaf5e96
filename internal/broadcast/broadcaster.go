// Package broadcast renders a scheduler tick's outcome into the wire
// format and fans it out to every active session, while retaining an
// append-only log for the LOG? query.
package broadcast

import (
	"strconv"
	"strings"
	"sync"

	"github.com/joeycumines/collabmd/internal/result"
	"github.com/joeycumines/collabmd/internal/scheduler"
	"github.com/joeycumines/collabmd/internal/session"
)

// Broadcaster owns the session table and the append-only broadcast log.
type Broadcaster struct {
	sessions *session.Manager
	onError  func(*session.Session, error)

	mu  sync.Mutex
	log strings.Builder
}

// New builds a Broadcaster. onError is invoked (outside any lock) for
// every session a write failed on, so the caller can tear it down; it
// may be nil.
func New(sessions *session.Manager, onError func(*session.Session, error)) *Broadcaster {
	return &Broadcaster{sessions: sessions, onError: onError}
}

// Deliver formats tr as "VERSION ...\nEDIT ...\n...\nEND\n", appends it
// to the log, and sends it to every active session.
func (b *Broadcaster) Deliver(tr scheduler.TickResult) {
	msg := Format(tr)

	b.mu.Lock()
	b.log.WriteString(msg)
	b.mu.Unlock()

	b.sessions.Broadcast(strings.TrimSuffix(msg, "\n"), b.onError)
}

// Log returns the full concatenation of every broadcast message so far,
// for the LOG? query.
func (b *Broadcaster) Log() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.log.String()
}

// Format renders one tick's outcome in the wire format, without
// touching any shared state.
func Format(tr scheduler.TickResult) string {
	var sb strings.Builder
	sb.WriteString("VERSION ")
	sb.WriteString(strconv.FormatUint(tr.Version, 10))
	sb.WriteByte('\n')
	for _, r := range tr.Results {
		sb.WriteString("EDIT ")
		sb.WriteString(r.Cmd.Username)
		sb.WriteByte(' ')
		sb.WriteString(r.Cmd.Edit.String())
		sb.WriteByte(' ')
		sb.WriteString(result.Wire(r.Err))
		sb.WriteByte('\n')
	}
	sb.WriteString("END\n")
	return sb.String()
}
