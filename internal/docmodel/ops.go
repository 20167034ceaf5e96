package docmodel

import (
	"fmt"
	"strings"

	"github.com/joeycumines/collabmd/internal/result"
)

// Insert places text at pos. An empty text is a no-op, still bounded by
// pos <= visible length.
func (tx *Tx) Insert(pos int, text string) error {
	return tx.list().Insert(pos, []byte(text))
}

// Delete removes n bytes starting at pos. n == 0 is a no-op.
func (tx *Tx) Delete(pos, n int) error {
	return tx.list().Delete(pos, n)
}

// Newline inserts a single "\n" at pos.
func (tx *Tx) Newline(pos int) error {
	return tx.Insert(pos, "\n")
}

// Heading inserts a markdown ATX heading marker ("#", "##" or "###",
// followed by a space) at pos, preceded by a newline unless pos already
// sits at the start of a line.
func (tx *Tx) Heading(level, pos int) error {
	if level < 1 || level > 3 {
		return result.ErrInvalidPosition
	}
	return tx.blockInsert(pos, strings.Repeat("#", level)+" ")
}

// Bold wraps [start, end) in "**". end must be strictly after start.
func (tx *Tx) Bold(start, end int) error {
	return tx.wrap(start, end, "**")
}

// Italic wraps [start, end) in "*".
func (tx *Tx) Italic(start, end int) error {
	return tx.wrap(start, end, "*")
}

// Code wraps [start, end) in "`".
func (tx *Tx) Code(start, end int) error {
	return tx.wrap(start, end, "`")
}

func (tx *Tx) wrap(start, end int, marker string) error {
	if end <= start {
		return result.ErrInvalidPosition
	}
	list := tx.list()
	// insert the closing marker first: it sits strictly after start, so
	// it never shifts the coordinate the opening marker targets.
	if err := list.Insert(end, []byte(marker)); err != nil {
		return err
	}
	return list.Insert(start, []byte(marker))
}

// Link wraps [start, end) as a markdown link: "[" at start, "](url)" at
// end.
func (tx *Tx) Link(start, end int, url string) error {
	if end <= start {
		return result.ErrInvalidPosition
	}
	list := tx.list()
	if err := list.Insert(end, []byte("]("+url+")")); err != nil {
		return err
	}
	return list.Insert(start, []byte("["))
}

// Blockquote prefixes the line at pos with "> ".
func (tx *Tx) Blockquote(pos int) error {
	return tx.blockInsert(pos, "> ")
}

// UnorderedList prefixes the line at pos with "- ".
func (tx *Tx) UnorderedList(pos int) error {
	return tx.blockInsert(pos, "- ")
}

// HorizontalRule inserts a "---" rule, on its own line, at pos.
func (tx *Tx) HorizontalRule(pos int) error {
	return tx.blockInsert(pos, "---\n")
}

// blockInsert inserts marker at pos, prefixed with "\n" unless pos is
// already at the start of a line (pos == 0 or the preceding byte is a
// newline).
func (tx *Tx) blockInsert(pos int, marker string) error {
	list := tx.list()
	flat := list.Flatten()
	if pos < 0 || pos > len(flat) {
		return result.ErrInvalidPosition
	}
	prefix := ""
	if !atLineStart(flat, pos) {
		prefix = "\n"
	}
	return list.Insert(pos, []byte(prefix+marker))
}

func atLineStart(flat []byte, pos int) bool {
	return pos == 0 || flat[pos-1] == '\n'
}

// OrderedList inserts the next "N. " marker at pos, where N continues
// the numbering of the ordered list item immediately before the
// insertion point (0 if there isn't one), and renumbers every
// contiguous ordered-list line that follows to keep the sequence
// consecutive.
//
// The scan for "the line before" and the renumbering walk both operate
// on the position Insert will actually use once boundary stacking (see
// segment.List.Insert) is accounted for, not the raw pos argument: this
// is what lets several OrderedList calls at the same pos, within one
// batch, build a consecutively numbered list rather than colliding.
func (tx *Tx) OrderedList(pos int) error {
	list := tx.list()
	effPos, ok := list.EffectiveInsertPos(pos)
	if !ok {
		return result.ErrInvalidPosition
	}
	flat := list.Flatten()
	if effPos < 0 || effPos > len(flat) {
		return result.ErrInvalidPosition
	}
	prevNum := prevOrderedNum(flat, effPos)
	prefix := ""
	if !atLineStart(flat, effPos) {
		prefix = "\n"
	}
	marker := fmt.Sprintf("%d. ", prevNum+1)
	if err := list.Insert(pos, []byte(prefix+marker)); err != nil {
		return err
	}
	return renumberForward(list, effPos+len(prefix+marker), prevNum+1)
}

// prevOrderedNum returns the numeric prefix of the ordered-list line
// immediately before at: if at sits at a line start, that's the line
// above (ending at at-1); otherwise it's the partial line from its own
// start up to at.
func prevOrderedNum(flat []byte, at int) int {
	if atLineStart(flat, at) {
		if at == 0 {
			return 0
		}
		lineEnd := at - 1 // index of the newline
		lineStart := lineEnd
		for lineStart > 0 && flat[lineStart-1] != '\n' {
			lineStart--
		}
		return orderedPrefixNum(flat[lineStart:lineEnd])
	}
	lineStart := at
	for lineStart > 0 && flat[lineStart-1] != '\n' {
		lineStart--
	}
	return orderedPrefixNum(flat[lineStart:at])
}

// renumberForward walks forward from pos, renumbering every consecutive
// ordered-list line starting num+1, num+2, ... Stops at the first line
// that is not an ordered-list item.
func renumberForward(list interface {
	Flatten() []byte
	Insert(pos int, content []byte) error
	Delete(pos, n int) error
}, pos, num int) error {
	for {
		flat := list.Flatten()
		if pos >= len(flat) {
			return nil
		}
		_, prefixLen, ok := leadingOrderedPrefix(flat[pos:])
		if !ok {
			return nil
		}
		num++
		newPrefix := fmt.Sprintf("%d. ", num)
		if err := list.Delete(pos, prefixLen); err != nil {
			return err
		}
		if err := list.Insert(pos, []byte(newPrefix)); err != nil {
			return err
		}
		flat = list.Flatten()
		rest := flat[pos+len(newPrefix):]
		nl := indexByte(rest, '\n')
		if nl < 0 {
			return nil
		}
		pos = pos + len(newPrefix) + nl + 1
	}
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

// orderedPrefixNum parses a line's leading "N. " marker, returning 0 if
// the line doesn't start with one. The line may have further content
// after the marker.
func orderedPrefixNum(line []byte) int {
	n, _, ok := leadingOrderedPrefix(line)
	if !ok {
		return 0
	}
	return n
}

// leadingOrderedPrefix parses a leading "N. " marker from the start of
// b, returning the number, the prefix's byte length, and whether one was
// found.
func leadingOrderedPrefix(b []byte) (num, prefixLen int, ok bool) {
	i := 0
	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		num = num*10 + int(b[i]-'0')
		i++
	}
	if i == 0 || i+1 >= len(b) || b[i] != '.' || b[i+1] != ' ' {
		return 0, 0, false
	}
	return num, i + 2, true
}
