package session

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Role is a user's permission level, loaded from the roles file.
type Role int

const (
	// NoAccess means the username does not appear in the roles table.
	NoAccess Role = iota
	Read
	Write
)

func (r Role) String() string {
	switch r {
	case Read:
		return "read"
	case Write:
		return "write"
	default:
		return "none"
	}
}

// CanRead reports whether the role allows query commands and receiving
// broadcasts.
func (r Role) CanRead() bool { return r == Read || r == Write }

// CanWrite reports whether the role allows submitting edit commands.
func (r Role) CanWrite() bool { return r == Write }

// Table is the username -> Role permission table, loaded from a roles
// file formatted as one "<username> <read|write>" pair per line, the
// same format the original C server's fscanf loop consumed. Usernames
// are case-sensitive.
type Table struct {
	roles map[string]Role
}

// LoadTable reads a roles file from path.
func LoadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("session: open roles file: %w", err)
	}
	defer f.Close()
	return ParseTable(f)
}

// ParseTable reads a roles file from r.
func ParseTable(r io.Reader) (*Table, error) {
	t := &Table{roles: make(map[string]Role)}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return nil, fmt.Errorf("session: roles file line %d: expected \"<user> <role>\"", line)
		}
		var role Role
		switch strings.ToLower(fields[1]) {
		case "read":
			role = Read
		case "write":
			role = Write
		default:
			return nil, fmt.Errorf("session: roles file line %d: unknown role %q", line, fields[1])
		}
		// First match wins, matching the original server's sequential
		// scan-then-return-on-first-hit lookup.
		if _, exists := t.roles[fields[0]]; !exists {
			t.roles[fields[0]] = role
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("session: reading roles file: %w", err)
	}
	return t, nil
}

// Lookup returns the role for username, or NoAccess if it isn't in the
// table.
func (t *Table) Lookup(username string) Role {
	if t == nil {
		return NoAccess
	}
	return t.roles[username]
}
