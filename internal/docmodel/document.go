// Package docmodel implements the versioned, lockable markdown document:
// a committed segment.List plus a lazily-materialised working list for
// the batch currently being applied. Callers never see a document mid
// batch; Begin/Commit bracket each tick the way *sql.Tx brackets a
// transaction, and the document's own RWMutex enforces the reader/writer
// ordering the scheduler depends on.
package docmodel

import (
	"sync"

	"github.com/joeycumines/collabmd/internal/result"
	"github.com/joeycumines/collabmd/internal/segment"
)

// Document is the server's shared markdown buffer.
type Document struct {
	mu        sync.RWMutex
	committed *segment.List
	working   *segment.List
	version   uint64
}

// New returns an empty document at version 0.
func New() *Document {
	return &Document{committed: segment.New(nil)}
}

// NewFromContent seeds the document with initial content, still at
// version 0. Used when the server is started against an existing
// doc.md.
func NewFromContent(content []byte) *Document {
	return &Document{committed: segment.New(content)}
}

// Version returns the document's current committed version.
func (d *Document) Version() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Snapshot returns the committed content and version together, the pair
// every DOC? response and client handshake needs.
func (d *Document) Snapshot() (content []byte, version uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.committed.Flatten(), d.version
}

// Tx is one batch application in progress. The document is held under
// an exclusive write lock for the Tx's entire lifetime: every command in
// a scheduler tick runs against the same Tx, and no query can observe a
// partial batch.
type Tx struct {
	doc     *Document
	working *segment.List
}

// Begin acquires the document's write lock and starts a batch. The
// caller must call Commit exactly once to release the lock.
func (d *Document) Begin() *Tx {
	d.mu.Lock()
	return &Tx{doc: d}
}

// Version returns the version this batch is being applied against, i.e.
// the version every command in the batch must match.
func (tx *Tx) Version() uint64 {
	return tx.doc.version
}

// Commit relabels the batch's working list as the new committed list
// (if the batch touched anything) and bumps the version unconditionally,
// then releases the write lock. Commit must be called even if every
// command in the batch was rejected: the version still advances, acting
// as a monotonic tick counter.
func (tx *Tx) Commit() (newVersion uint64) {
	tx.doc.version++
	if tx.working != nil {
		tx.doc.committed = tx.working.Commit()
		tx.working = nil
	}
	newVersion = tx.doc.version
	tx.doc.mu.Unlock()
	return newVersion
}

func (tx *Tx) list() *segment.List {
	if tx.working == nil {
		tx.working = tx.doc.committed.Clone()
	}
	return tx.working
}

// CheckVersion reports ErrOutdatedVersion if v does not match the
// version this batch targets. The op methods do not check the version
// themselves; command.Edit.Apply calls CheckVersion once per command,
// with the Tx's own version.
func (tx *Tx) CheckVersion(v uint64) error {
	if v != tx.doc.version {
		return result.ErrOutdatedVersion
	}
	return nil
}
