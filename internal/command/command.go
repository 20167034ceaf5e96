// Package command parses the line-oriented wire protocol's edit
// commands and dispatches them against a document transaction. Parsing
// is deliberately permissive about whitespace (strings.Fields-style
// splitting) and strict about arity: anything malformed maps to
// result.ErrInvalidPosition, the same as an out-of-range position,
// matching the server's flat error taxonomy.
package command

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/joeycumines/collabmd/internal/docmodel"
	"github.com/joeycumines/collabmd/internal/result"
)

// Kind identifies which edit operation a Command performs.
type Kind int

const (
	Insert Kind = iota
	Del
	Newline
	Heading
	Bold
	Italic
	Code
	Blockquote
	OrderedList
	UnorderedList
	HorizontalRule
	Link
)

var kindNames = map[Kind]string{
	Insert:         "INSERT",
	Del:            "DEL",
	Newline:        "NEWLINE",
	Heading:        "HEADING",
	Bold:           "BOLD",
	Italic:         "ITALIC",
	Code:           "CODE",
	Blockquote:     "BLOCKQUOTE",
	OrderedList:    "ORDERED_LIST",
	UnorderedList:  "UNORDERED_LIST",
	HorizontalRule: "HORIZONTAL_RULE",
	Link:           "LINK",
}

// Edit is one parsed edit command.
type Edit struct {
	Kind  Kind
	Pos   int
	End   int    // Bold/Italic/Code/Link
	Level int    // Heading
	Text  string // Insert
	Len   int    // Del
	URL   string // Link
	raw   string
}

// String renders the command the way it appeared on the wire, for
// logging.
func (e Edit) String() string {
	if e.raw != "" {
		return e.raw
	}
	return kindNames[e.Kind]
}

// ParseEdit parses one EDIT command body: "<NAME> <args…>". Command
// names are matched case-sensitively, per the original protocol. There
// is no client-supplied version token: every command in a batch is
// dispatched against the document's live version, never one the client
// last saw (§4.4).
func ParseEdit(line string) (Edit, error) {
	malformed := Edit{raw: line}
	fields := strings.Fields(line)
	if len(fields) < 1 {
		return malformed, result.ErrInvalidPosition
	}
	e := Edit{raw: line}
	args := fields[1:]

	switch fields[0] {
	case "INSERT":
		if len(args) < 2 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		// the text runs to the end of the line, inner whitespace included,
		// so it is cut from the raw line rather than rejoined from fields.
		rest := strings.TrimLeftFunc(line, unicode.IsSpace)
		rest = strings.TrimLeftFunc(rest[len(fields[0]):], unicode.IsSpace)
		rest = strings.TrimLeftFunc(rest[len(args[0]):], unicode.IsSpace)
		e.Kind, e.Pos, e.Text = Insert, pos, rest
	case "DEL":
		if len(args) != 2 {
			return malformed, result.ErrInvalidPosition
		}
		pos, err1 := strconv.Atoi(args[0])
		n, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos, e.Len = Del, pos, n
	case "NEWLINE":
		if len(args) != 1 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos = Newline, pos
	case "HEADING":
		if len(args) != 2 {
			return malformed, result.ErrInvalidPosition
		}
		level, err1 := strconv.Atoi(args[0])
		pos, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Level, e.Pos = Heading, level, pos
	case "BOLD":
		e.Kind = Bold
		if err := setRange(&e, args); err != nil {
			return malformed, err
		}
	case "ITALIC":
		e.Kind = Italic
		if err := setRange(&e, args); err != nil {
			return malformed, err
		}
	case "CODE":
		e.Kind = Code
		if err := setRange(&e, args); err != nil {
			return malformed, err
		}
	case "BLOCKQUOTE":
		if len(args) != 1 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos = Blockquote, pos
	case "ORDERED_LIST":
		if len(args) != 1 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos = OrderedList, pos
	case "UNORDERED_LIST":
		if len(args) != 1 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos = UnorderedList, pos
	case "HORIZONTAL_RULE":
		if len(args) != 1 {
			return malformed, result.ErrInvalidPosition
		}
		pos, perr := strconv.Atoi(args[0])
		if perr != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos = HorizontalRule, pos
	case "LINK":
		if len(args) != 3 {
			return malformed, result.ErrInvalidPosition
		}
		start, err1 := strconv.Atoi(args[0])
		end, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil {
			return malformed, result.ErrInvalidPosition
		}
		e.Kind, e.Pos, e.End, e.URL = Link, start, end, args[2]
	default:
		return malformed, result.ErrInvalidPosition
	}
	return e, nil
}

func setRange(e *Edit, args []string) error {
	if len(args) != 2 {
		return result.ErrInvalidPosition
	}
	start, err1 := strconv.Atoi(args[0])
	end, err2 := strconv.Atoi(args[1])
	if err1 != nil || err2 != nil {
		return result.ErrInvalidPosition
	}
	e.Pos, e.End = start, end
	return nil
}

// Apply dispatches to the matching docmodel.Tx operation, always
// against tx's own live version (§4.4): there is no client-supplied
// version to check against, so the CheckVersion gate below can never
// actually fail from this path. It stays so the gate is exercised
// consistently with any future caller that does supply one.
func (e Edit) Apply(tx *docmodel.Tx) error {
	if err := tx.CheckVersion(tx.Version()); err != nil {
		return err
	}
	switch e.Kind {
	case Insert:
		return tx.Insert(e.Pos, e.Text)
	case Del:
		return tx.Delete(e.Pos, e.Len)
	case Newline:
		return tx.Newline(e.Pos)
	case Heading:
		return tx.Heading(e.Level, e.Pos)
	case Bold:
		return tx.Bold(e.Pos, e.End)
	case Italic:
		return tx.Italic(e.Pos, e.End)
	case Code:
		return tx.Code(e.Pos, e.End)
	case Blockquote:
		return tx.Blockquote(e.Pos)
	case OrderedList:
		return tx.OrderedList(e.Pos)
	case UnorderedList:
		return tx.UnorderedList(e.Pos)
	case HorizontalRule:
		return tx.HorizontalRule(e.Pos)
	case Link:
		return tx.Link(e.Pos, e.End, e.URL)
	default:
		return fmt.Errorf("command: unhandled kind %v", e.Kind)
	}
}
