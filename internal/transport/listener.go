package transport

import (
	"fmt"
	"net"
)

// Listener accepts TCP connections and wraps each as a Stream.
type Listener struct {
	ln net.Listener
}

// Listen binds addr (host:port) and returns a Listener.
func Listen(addr string) (*Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &Listener{ln: ln}, nil
}

// Addr returns the bound address, useful when addr was "host:0".
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Accept blocks for the next client connection.
func (l *Listener) Accept() (Stream, error) {
	conn, err := l.ln.Accept()
	if err != nil {
		return nil, fmt.Errorf("transport: accept: %w", err)
	}
	return NewTCPStream(conn), nil
}

// Close stops accepting new connections.
func (l *Listener) Close() error {
	return l.ln.Close()
}
