// Package segment implements the arena of text segments backing a
// document's content: a flat slice of byte runs, each tagged with a
// state (committed, pending insert, pending delete). It is the
// lowest-level building block of the editor; internal/docmodel builds
// the versioned, lockable document on top of it.
//
// The slice-of-structs layout mirrors the ring buffer in
// joeycumines/go-catrate: no pointer chains, growth via append, split
// and splice by re-slicing. Positions are always expressed in the
// "flatten view": PendingDel segments contribute zero width, every
// other state counts, so Insert and Delete share one coordinate space.
package segment

import (
	"bytes"

	"github.com/joeycumines/collabmd/internal/result"
)

// State tags a Segment's place in the commit lifecycle.
type State int

const (
	// Original segments are part of the last committed document.
	Original State = iota
	// PendingIns segments were inserted during the current batch and
	// have not yet been committed.
	PendingIns
	// PendingDel segments are invisible in the flatten view but remain
	// in the arena until the batch commits.
	PendingDel
)

func (s State) String() string {
	switch s {
	case Original:
		return "Original"
	case PendingIns:
		return "PendingIns"
	case PendingDel:
		return "PendingDel"
	default:
		return "Unknown"
	}
}

// Segment is one contiguous run of bytes and its state.
type Segment struct {
	Content []byte
	State   State
}

// List is the segment arena for one document view (committed or
// working). The zero value is an empty, ready-to-use list.
type List struct {
	segs []Segment
}

// New builds a List containing a single Original segment, or an empty
// list if content is empty.
func New(content []byte) *List {
	l := &List{}
	if len(content) > 0 {
		l.segs = append(l.segs, Segment{Content: append([]byte(nil), content...), State: Original})
	}
	return l
}

// Clone returns an independent copy of l, suitable for use as a working
// list derived from a committed one. Segment content slices are shared
// (never mutated in place); only the slice of segments is copied.
func (l *List) Clone() *List {
	out := &List{segs: make([]Segment, len(l.segs))}
	copy(out.segs, l.segs)
	return out
}

// Flatten renders the visible document: every segment except those
// marked PendingDel, in order.
func (l *List) Flatten() []byte {
	var buf bytes.Buffer
	for _, s := range l.segs {
		if s.State == PendingDel {
			continue
		}
		buf.Write(s.Content)
	}
	return buf.Bytes()
}

// Len returns the visible byte length, equivalent to len(l.Flatten())
// without the intermediate allocation.
func (l *List) Len() int {
	n := 0
	for _, s := range l.segs {
		if s.State != PendingDel {
			n += len(s.Content)
		}
	}
	return n
}

// locate walks the flatten-view coordinate space and finds the segment
// containing pos. offset is the byte offset within segs[idx] (0 means
// pos lands exactly on the boundary before segs[idx]). idx == len(segs)
// means pos is at the very end of the document.
func (l *List) locate(pos int) (idx, offset int, ok bool) {
	if pos < 0 {
		return 0, 0, false
	}
	cum := 0
	for i, s := range l.segs {
		if s.State == PendingDel {
			continue
		}
		n := len(s.Content)
		if pos < cum+n {
			return i, pos - cum, true
		}
		cum += n
	}
	if pos == cum {
		return len(l.segs), 0, true
	}
	return 0, 0, false
}

// EffectiveInsertPos resolves where Insert(pos, ...) would actually
// place new content, accounting for the boundary rule below. Ordered
// list autonumbering uses this to scan the document as it will read
// once the insert lands, rather than at the raw pos argument.
func (l *List) EffectiveInsertPos(pos int) (flatOffset int, ok bool) {
	idx, offset, ok := l.locate(pos)
	if !ok {
		return 0, false
	}
	if offset != 0 {
		return pos, true
	}
	skipped := 0
	for idx < len(l.segs) && l.segs[idx].State == PendingIns {
		skipped += len(l.segs[idx].Content)
		idx++
	}
	return pos + skipped, true
}

// Insert places content at pos, measured in the flatten view. An empty
// content is a validated no-op: pos must still be in range.
//
// When pos lands exactly on a boundary that a run of PendingIns
// segments already occupies, the new segment is appended after that
// run rather than before it, so that repeated inserts at the same
// position within one batch stack in submission order.
func (l *List) Insert(pos int, content []byte) error {
	idx, offset, ok := l.locate(pos)
	if !ok {
		return result.ErrInvalidPosition
	}
	if len(content) == 0 {
		return nil
	}
	newSeg := Segment{Content: append([]byte(nil), content...), State: PendingIns}
	if offset == 0 {
		for idx < len(l.segs) && l.segs[idx].State == PendingIns {
			idx++
		}
		l.segs = append(l.segs, Segment{})
		copy(l.segs[idx+1:], l.segs[idx:])
		l.segs[idx] = newSeg
		return nil
	}
	orig := l.segs[idx]
	left := Segment{Content: orig.Content[:offset:offset], State: orig.State}
	right := Segment{Content: orig.Content[offset:], State: orig.State}
	l.segs = append(l.segs, Segment{}, Segment{})
	copy(l.segs[idx+3:], l.segs[idx+1:])
	l.segs[idx] = left
	l.segs[idx+1] = newSeg
	l.segs[idx+2] = right
	return nil
}

// splitAt ensures a segment boundary exists at pos (splitting a segment
// in place if pos falls inside one) and returns the index of the
// segment that starts exactly at pos, or len(segs) if pos is the end of
// the document. Unlike Insert, splitAt never skips over PendingIns runs:
// it is used by Delete, which must be able to target a position inside
// a pending insertion from earlier in the same batch.
func (l *List) splitAt(pos int) int {
	idx, offset, ok := l.locate(pos)
	if !ok {
		panic("segment: splitAt called with unvalidated position")
	}
	if offset == 0 {
		return idx
	}
	orig := l.segs[idx]
	left := Segment{Content: orig.Content[:offset:offset], State: orig.State}
	right := Segment{Content: orig.Content[offset:], State: orig.State}
	l.segs = append(l.segs, Segment{})
	copy(l.segs[idx+2:], l.segs[idx+1:])
	l.segs[idx] = left
	l.segs[idx+1] = right
	return idx + 1
}

// Delete marks the byte range [pos, pos+n) of the flatten view as
// PendingDel, splitting boundary segments as needed. A zero-length
// range is a validated no-op. Deleting a range already covered by
// PendingDel segments is impossible by construction: those segments
// contribute no width, so the range simply skips over them.
func (l *List) Delete(pos, n int) error {
	if n < 0 {
		return result.ErrInvalidPosition
	}
	if _, _, ok := l.locate(pos); !ok {
		return result.ErrInvalidPosition
	}
	if _, _, ok := l.locate(pos + n); !ok {
		return result.ErrInvalidPosition
	}
	if n == 0 {
		return nil
	}
	start := l.splitAt(pos)
	end := l.splitAt(pos + n)
	for i := start; i < end; i++ {
		l.segs[i].State = PendingDel
	}
	return nil
}

// Commit returns a new List containing only the visible content of l,
// with every segment relabelled Original and every PendingDel segment
// dropped. l itself is left unmodified.
func (l *List) Commit() *List {
	out := &List{}
	for _, s := range l.segs {
		if s.State == PendingDel {
			continue
		}
		out.segs = append(out.segs, Segment{Content: s.Content, State: Original})
	}
	return out
}
