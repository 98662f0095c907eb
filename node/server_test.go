package node

import (
	"bufio"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/setwise/setkv/db"
	"github.com/setwise/setkv/resp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	srv := NewServer(0, db.New(0))
	go srv.Run()
	t.Cleanup(srv.Stop)

	for i := 0; i < 100; i++ {
		if srv.Addr() != nil {
			return srv
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("server did not bind")
	return nil
}

func sendCommand(t *testing.T, conn net.Conn, r *bufio.Reader, argv ...string) resp.Node {
	t.Helper()
	out := fmt.Sprintf("%c%d%s", resp.TypeArray, len(argv), resp.CRLF)
	for _, arg := range argv {
		out += fmt.Sprintf("%c%d%s%s%s", resp.TypeBlob, len(arg), resp.CRLF, arg, resp.CRLF)
	}
	_, err := conn.Write([]byte(out))
	require.NoError(t, err)
	node, err := resp.ReadReply(r)
	require.NoError(t, err)
	return node
}

func TestServerRoundTrip(t *testing.T) {
	srv := startServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	assert.Equal(t, resp.SimpleString{Value: "PONG"}, sendCommand(t, conn, r, "PING"))
	assert.Equal(t, resp.Integer{Value: 3}, sendCommand(t, conn, r, "SADD", "s", "a", "b", "c"))
	assert.Equal(t, resp.Integer{Value: 3}, sendCommand(t, conn, r, "SCARD", "s"))
	assert.Equal(t, resp.Integer{Value: 1}, sendCommand(t, conn, r, "SISMEMBER", "s", "b"))

	node := sendCommand(t, conn, r, "SMEMBERS", "s")
	arr, ok := node.(resp.Array)
	require.True(t, ok)
	assert.Len(t, arr.Elements, 3)
}

func TestServerInlineProtocol(t *testing.T) {
	srv := startServer(t)

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)

	_, err = conn.Write([]byte("SADD inline one two\r\n"))
	require.NoError(t, err)
	node, err := resp.ReadReply(r)
	require.NoError(t, err)
	assert.Equal(t, resp.Integer{Value: 2}, node)
}

func TestServerConcurrentClients(t *testing.T) {
	srv := startServer(t)

	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(g int) {
			defer func() { done <- struct{}{} }()
			conn, err := net.Dial("tcp", srv.Addr().String())
			require.NoError(t, err)
			defer conn.Close()
			r := bufio.NewReader(conn)
			for i := 0; i < 50; i++ {
				sendCommand(t, conn, r, "SADD", "shared", fmt.Sprintf("m%d-%d", g, i))
			}
		}(g)
	}
	for g := 0; g < 4; g++ {
		<-done
	}

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	r := bufio.NewReader(conn)
	assert.Equal(t, resp.Integer{Value: 200}, sendCommand(t, conn, r, "SCARD", "shared"))
}
