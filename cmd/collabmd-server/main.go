// Command collabmd-server runs the collaborative markdown editor
// server: one shared document, many TCP clients, edits batched on a
// fixed tick.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joeycumines/collabmd/internal/logging"
	"github.com/joeycumines/collabmd/internal/server"
	"github.com/joeycumines/collabmd/internal/session"
	"github.com/joeycumines/collabmd/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := server.ParseArgs(os.Args[1:])
	if err != nil {
		server.Usage(os.Stderr, os.Args[0])
		return err
	}

	log := logging.New(os.Stderr, logging.ParseLevel(cfg.LogLevel))

	roles, err := session.LoadTable(cfg.RolesPath)
	if err != nil {
		return fmt.Errorf("collabmd-server: loading roles file: %w", err)
	}

	ctx := server.New(cfg, roles, log)

	ln, err := transport.Listen(cfg.Listen)
	if err != nil {
		return fmt.Errorf("collabmd-server: %w", err)
	}
	defer ln.Close()
	log.Info().Str("addr", ln.Addr().String()).Log("listening")

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() { serveErr <- ctx.Run(runCtx, ln) }()

	go runStdin(ctx, cancel)

	select {
	case <-sig:
		log.Info().Log("signal received, shutting down")
		cancel()
		_ = ln.Close()
	case err := <-serveErr:
		if err != nil {
			return err
		}
	}
	return nil
}

// runStdin implements the server's own stdin command surface (QUIT,
// DOC?, LOG?, RENDER?), per §5/§6.
func runStdin(ctx *server.ServerCtx, cancel context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		response, quit := ctx.HandleStdinCommand(scanner.Text())
		fmt.Println(response)
		if quit {
			cancel()
			return
		}
	}
}
