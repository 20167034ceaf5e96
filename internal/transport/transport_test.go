package transport_test

import (
	"net"
	"testing"
	"time"

	"github.com/joeycumines/collabmd/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerAcceptRoundTripsLines(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan transport.Stream, 1)
	go func() {
		s, err := ln.Accept()
		require.NoError(t, err)
		accepted <- s
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	server := <-accepted
	defer server.Close()

	_, err = conn.Write([]byte("hello world\n"))
	require.NoError(t, err)

	line, err := server.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello world", line)

	require.NoError(t, server.WriteLine("reply"))
	buf := make([]byte, len("reply\n"))
	_, err = conn.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "reply\n", string(buf))
}

func TestReadLineReportsErrorOnClose(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan transport.Stream, 1)
	go func() {
		s, _ := ln.Accept()
		accepted <- s
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)

	server := <-accepted
	defer server.Close()

	require.NoError(t, conn.Close())

	_, err = server.ReadLine()
	assert.Error(t, err)
}

func TestSetReadDeadlineBoundsReadLine(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan transport.Stream, 1)
	go func() {
		s, _ := ln.Accept()
		accepted <- s
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	server := <-accepted
	defer server.Close()

	require.NoError(t, server.SetReadDeadline(time.Now().Add(20*time.Millisecond)))
	_, err = server.ReadLine()
	assert.Error(t, err)
}

func TestRemoteAddrIdentifiesPeer(t *testing.T) {
	ln, err := transport.Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan transport.Stream, 1)
	go func() {
		s, _ := ln.Accept()
		accepted <- s
	}()

	conn, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	server := <-accepted
	defer server.Close()

	assert.NotEmpty(t, server.RemoteAddr())
}
