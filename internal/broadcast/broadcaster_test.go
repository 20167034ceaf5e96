package broadcast_test

import (
	"errors"
	"testing"

	"github.com/joeycumines/collabmd/internal/broadcast"
	"github.com/joeycumines/collabmd/internal/command"
	"github.com/joeycumines/collabmd/internal/result"
	"github.com/joeycumines/collabmd/internal/scheduler"
	"github.com/stretchr/testify/assert"
)

func TestFormatSuccessAndReject(t *testing.T) {
	tr := scheduler.TickResult{
		Version: 3,
		Results: []scheduler.Result{
			{Cmd: scheduler.Command{Edit: mustParse(t, "INSERT 0 hi"), Username: "alice"}, Err: nil},
			{Cmd: scheduler.Command{Edit: mustParse(t, "BOLD 0 5"), Username: "bob"}, Err: result.ErrUnauthorised},
		},
	}
	got := broadcast.Format(tr)
	want := "VERSION 3\n" +
		"EDIT alice INSERT 0 hi SUCCESS\n" +
		"EDIT bob BOLD 0 5 Reject UNAUTHORISED\n" +
		"END\n"
	assert.Equal(t, want, got)
}

func mustParse(t *testing.T, line string) command.Edit {
	t.Helper()
	e, err := command.ParseEdit(line)
	if err != nil {
		t.Fatalf("ParseEdit(%q): %v", line, err)
	}
	return e
}

func TestFormatUnknownErrorMapsToInvalidPosition(t *testing.T) {
	tr := scheduler.TickResult{
		Version: 1,
		Results: []scheduler.Result{
			{Cmd: scheduler.Command{Edit: mustParse(t, "NEWLINE 0"), Username: "x"}, Err: errors.New("boom")},
		},
	}
	got := broadcast.Format(tr)
	assert.Contains(t, got, "Reject INVALID_POSITION")
}
