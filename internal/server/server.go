// Package server wires the document, scheduler, session table and
// broadcaster into one running service: the explicit ServerCtx value
// that replaces the original's global mutable state (§9).
package server

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joeycumines/collabmd/internal/broadcast"
	"github.com/joeycumines/collabmd/internal/command"
	"github.com/joeycumines/collabmd/internal/docmodel"
	"github.com/joeycumines/collabmd/internal/logging"
	"github.com/joeycumines/collabmd/internal/ratelimit"
	"github.com/joeycumines/collabmd/internal/render"
	"github.com/joeycumines/collabmd/internal/result"
	"github.com/joeycumines/collabmd/internal/scheduler"
	"github.com/joeycumines/collabmd/internal/session"
	"github.com/joeycumines/collabmd/internal/transport"
)

// authFailureDelay is the fixed post-failure delay mandated by §4.6,
// applied in addition to (not instead of) AuthLimit's sliding window.
const authFailureDelay = 250 * time.Millisecond

// handshakeDeadline bounds the single read each connection gets during
// Authenticating.
const handshakeDeadline = 30 * time.Second

// ServerCtx is the server's explicit, constructed-once shared state.
type ServerCtx struct {
	Doc         *docmodel.Document
	Sessions    *session.Manager
	Scheduler   *scheduler.Scheduler
	Broadcaster *broadcast.Broadcaster
	Roles       *session.Table
	AuthLimit   *ratelimit.Limiter
	CmdLimit    *ratelimit.Limiter
	Log         *logging.Logger
	SavePath    string
}

// New constructs a ServerCtx from cfg and an already-loaded roles table,
// seeding the document from an existing save file if one is present.
func New(cfg Config, roles *session.Table, log *logging.Logger) *ServerCtx {
	doc := loadDocument(cfg.SavePath, log)
	sessions := session.NewManager(cfg.MaxSessions)

	ctx := &ServerCtx{
		Doc:       doc,
		Sessions:  sessions,
		Roles:     roles,
		AuthLimit: ratelimit.New(),
		CmdLimit:  ratelimit.New(),
		Log:       log,
		SavePath:  cfg.SavePath,
	}

	ctx.Broadcaster = broadcast.New(sessions, ctx.onSessionWriteError)
	ctx.Scheduler = scheduler.New(doc, time.Duration(cfg.TickMillis)*time.Millisecond, ctx.onTick)
	return ctx
}

func loadDocument(path string, log *logging.Logger) *docmodel.Document {
	content, err := os.ReadFile(path)
	if err != nil {
		return docmodel.New()
	}
	log.Info().Str("path", path).Log("loaded existing document")
	return docmodel.NewFromContent(content)
}

func (c *ServerCtx) onTick(tr scheduler.TickResult) {
	rejects := 0
	for _, r := range tr.Results {
		if r.Err != nil {
			rejects++
		}
	}
	if rejects > 0 {
		c.Log.Info().Int("version", int(tr.Version)).Int("rejects", rejects).Log("tick committed with rejects")
	} else {
		c.Log.Debug().Int("version", int(tr.Version)).Log("tick committed")
	}
	c.Broadcaster.Deliver(tr)
}

func (c *ServerCtx) onSessionWriteError(s *session.Session, err error) {
	username, _ := s.Identity()
	c.Log.Debug().Str("username", username).Err(err).Log("broadcast write failed, tearing down session")
	c.Sessions.Remove(s)
	_ = s.Stream.Close()
}

// Run drives the scheduler's tick loop and the connection-accept loop
// until ctx is canceled or the listener errors.
func (c *ServerCtx) Run(ctx context.Context, ln *transport.Listener) error {
	go c.Scheduler.Run(ctx)
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		stream, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go c.handleConnection(ctx, stream)
	}
}

// handleConnection drives one session through Handshaking -> Active ->
// Closing.
func (c *ServerCtx) handleConnection(ctx context.Context, stream transport.Stream) {
	s, ok := c.Sessions.Admit(stream)
	if !ok {
		_ = stream.WriteLine("Reject SERVER_FULL")
		_ = stream.Close()
		return
	}
	c.Log.Info().Str("remote", stream.RemoteAddr()).Log("connected")

	defer func() {
		s.SetState(session.Closing)
		c.Sessions.Remove(s)
		c.saveSnapshot()
		_ = stream.Close()
		username, _ := s.Identity()
		c.Log.Info().Str("remote", stream.RemoteAddr()).Str("username", username).Log("disconnected")
	}()

	s.SetState(session.Authenticating)
	if !c.authenticate(s, stream) {
		return
	}

	c.serve(ctx, s, stream)
}

func (c *ServerCtx) authenticate(s *session.Session, stream transport.Stream) bool {
	remote := stream.RemoteAddr()
	if !c.AuthLimit.Allow(remote) {
		_ = stream.WriteLine("Reject UNAUTHORISED")
		time.Sleep(authFailureDelay)
		return false
	}

	_ = stream.SetReadDeadline(time.Now().Add(handshakeDeadline))
	username, err := stream.ReadLine()
	_ = stream.SetReadDeadline(time.Time{})
	if err != nil {
		return false
	}
	username = strings.TrimSpace(username)

	role := c.Roles.Lookup(username)
	if role == session.NoAccess {
		_ = stream.WriteLine("Reject UNAUTHORISED")
		time.Sleep(authFailureDelay)
		return false
	}

	s.Authenticate(username, role)
	content, version := c.Doc.Snapshot()
	_ = stream.WriteLine(role.String())
	_ = stream.WriteLine(strconv.FormatUint(version, 10))
	_ = stream.WriteLine(strconv.Itoa(len(content)))
	_ = stream.WriteLine(string(content))
	c.Log.Info().Str("username", username).Str("role", role.String()).Log("authenticated")
	return true
}

// serve runs the Active-state read loop: queries answered inline under
// the document read lock, edits enqueued to the scheduler, DISCONNECT
// ends the loop.
func (c *ServerCtx) serve(ctx context.Context, s *session.Session, stream transport.Stream) {
	username, role := s.Identity()
	for {
		line, err := stream.ReadLine()
		if err != nil {
			return
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "DOC?":
			content, _ := c.Doc.Snapshot()
			_ = stream.WriteLine("DOC?")
			_ = stream.WriteLine(string(content))
			continue
		case "PERM?":
			_ = stream.WriteLine("PERM?")
			_ = stream.WriteLine(role.String())
			continue
		case "LOG?":
			_ = stream.WriteLine("LOG?")
			_ = stream.WriteLine(c.Broadcaster.Log())
			continue
		case "RENDER?":
			content, _ := c.Doc.Snapshot()
			html, err := render.HTML(content)
			if err != nil {
				c.Log.Warning().Err(err).Log("render failed")
				html = ""
			}
			_ = stream.WriteLine("RENDER?")
			_ = stream.WriteLine(html)
			continue
		case "DISCONNECT":
			return
		}

		edit, perr := command.ParseEdit(line)
		if perr != nil && !c.CmdLimit.Allow(username) {
			c.Log.Debug().Str("username", username).Log("too many malformed commands, closing")
			return
		}
		c.Scheduler.Enqueue(scheduler.Command{
			Edit:     edit,
			Username: username,
			Role:     role,
			ParseErr: perr,
		})
	}
}

func (c *ServerCtx) saveSnapshot() {
	content, _ := c.Doc.Snapshot()
	if err := os.WriteFile(c.SavePath, content, 0o644); err != nil {
		c.Log.Warning().Err(err).Log("saving document snapshot failed")
	}
}

// Shutdown refuses to proceed while sessions remain active, per §5's
// cancellation rule, then performs a final save.
func (c *ServerCtx) Shutdown() error {
	if n := c.Sessions.Len(); n > 0 {
		return fmt.Errorf("server: refusing shutdown with %d active session(s)", n)
	}
	c.saveSnapshot()
	return nil
}

// HandleStdinCommand answers one of the server's own stdin commands
// (QUIT/DOC?/LOG?/RENDER?), returning its reply. quit reports whether
// QUIT should actually terminate the process.
func (c *ServerCtx) HandleStdinCommand(line string) (response string, quit bool) {
	switch strings.TrimSpace(line) {
	case "QUIT":
		if err := c.Shutdown(); err != nil {
			return err.Error(), false
		}
		return "shutting down", true
	case "DOC?":
		content, _ := c.Doc.Snapshot()
		return string(content), false
	case "LOG?":
		return c.Broadcaster.Log(), false
	case "RENDER?":
		content, _ := c.Doc.Snapshot()
		html, err := render.HTML(content)
		if err != nil {
			c.Log.Warning().Err(err).Log("render failed")
			return "", false
		}
		return html, false
	default:
		return result.Wire(result.ErrInvalidPosition), false
	}
}
