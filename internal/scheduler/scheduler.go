// Package scheduler batches queued edit commands and applies them to
// the document on a fixed tick, mirroring the original C server's
// broadcast_thread: sleep one tick, drain whatever is queued, apply it
// all under one document lock, broadcast the result.
//
// This is deliberately a simpler cousin of joeycumines/go-microbatch's
// Batcher: microbatch flushes a batch FlushInterval after its *first*
// job arrives (or at MaxSize), which would make a client's commit time
// depend on when it happened to submit relative to its neighbours.
// collabmd's protocol instead promises every connected client a
// consistent wall-clock tick, so ticks fire on a plain time.Ticker
// regardless of queue contents, and an empty tick produces no commit
// and no broadcast at all.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/joeycumines/collabmd/internal/command"
	"github.com/joeycumines/collabmd/internal/docmodel"
	"github.com/joeycumines/collabmd/internal/result"
	"github.com/joeycumines/collabmd/internal/session"
)

// Command is one queued edit submission, carrying enough context to
// report its outcome back to the caller once its tick commits. Role is
// captured at enqueue time: the roles table never changes while the
// server runs, so this is equivalent to a fresh lookup at apply time.
type Command struct {
	Edit     command.Edit
	Username string
	Role     session.Role
	// ParseErr is set when the raw line failed to parse; Edit still
	// carries its raw text (for the broadcast line) but no valid Kind.
	ParseErr error
}

// Result pairs a submitted Command with the error its Apply produced,
// nil meaning SUCCESS.
type Result struct {
	Cmd Command
	Err error
}

// TickResult is everything the broadcaster needs to build one
// "VERSION ...\nEDIT ...\n...\nEND\n" message.
type TickResult struct {
	Version uint64
	Results []Result
}

// Broadcast is called once per non-empty tick, after the document has
// committed the batch.
type Broadcast func(TickResult)

// Scheduler owns the pending command queue and the document write lock
// discipline described in the package doc.
type Scheduler struct {
	doc       *docmodel.Document
	interval  time.Duration
	broadcast Broadcast

	mu    sync.Mutex
	queue []Command
}

// New builds a Scheduler. interval must be positive.
func New(doc *docmodel.Document, interval time.Duration, broadcast Broadcast) *Scheduler {
	if interval <= 0 {
		panic("scheduler: interval must be positive")
	}
	if broadcast == nil {
		panic("scheduler: nil broadcast")
	}
	return &Scheduler{doc: doc, interval: interval, broadcast: broadcast}
}

// Enqueue appends cmd to the pending batch. Safe for concurrent use by
// any number of session goroutines.
func (s *Scheduler) Enqueue(cmd Command) {
	s.mu.Lock()
	s.queue = append(s.queue, cmd)
	s.mu.Unlock()
}

// QueueLen reports the number of commands waiting for the next tick.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Run drives the tick loop until ctx is canceled. It is meant to be
// called from its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// tick drains the queue and, if it wasn't empty, applies every command
// in FIFO order under a single document transaction, then broadcasts
// the outcome.
func (s *Scheduler) tick() {
	s.mu.Lock()
	batch := s.queue
	s.queue = nil
	s.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	tx := s.doc.Begin()
	results := make([]Result, len(batch))
	for i, cmd := range batch {
		// Permission is checked before parsing, matching §4.4's ordering:
		// an unauthorised submission never reaches dispatch, even if it
		// also happens to be malformed.
		switch {
		case !cmd.Role.CanWrite():
			results[i] = Result{Cmd: cmd, Err: result.ErrUnauthorised}
		case cmd.ParseErr != nil:
			results[i] = Result{Cmd: cmd, Err: cmd.ParseErr}
		default:
			results[i] = Result{Cmd: cmd, Err: cmd.Edit.Apply(tx)}
		}
	}
	version := tx.Commit()

	s.broadcast(TickResult{Version: version, Results: results})
}
