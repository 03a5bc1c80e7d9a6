package stunagent

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove-labs/stun"
)

// serve runs a minimal Binding responder on one end of a net.Pipe,
// stopping when the pipe closes.
func serve(t *testing.T, conn net.Conn) {
	t.Helper()
	go func() {
		buf := make([]byte, 1500)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			in, err := stun.Decode(buf[:n])
			if err != nil {
				continue
			}
			resp := stun.OutgoingMessage{
				Class:         stun.ClassSuccessResponse,
				Method:        stun.MethodBinding,
				TransactionID: in.TransactionID,
				Attributes:    []stun.Setter{stun.XORMappedAddress{IP: net.ParseIP("203.0.113.9").To4(), Port: 4242}},
			}
			raw, err := resp.Encode()
			if err != nil {
				return
			}
			if _, err := conn.Write(raw); err != nil {
				return
			}
		}
	}()
}

func TestClientDoReceivesMatchingResponse(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	serve(t, serverConn)
	defer serverConn.Close()

	c, err := NewClient(ClientOptions{Conn: clientConn, CollectInterval: 10 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	req := stun.OutgoingMessage{Class: stun.ClassRequest, Method: stun.MethodBinding}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	in, err := c.Do(ctx, req)
	require.NoError(t, err)

	var addr stun.XORMappedAddress
	require.NoError(t, addr.GetFrom(in.Message()))
	assert.Equal(t, 4242, addr.Port)
}

func TestClientDoTimesOutWithoutResponse(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()

	c, err := NewClient(ClientOptions{Conn: clientConn, CollectInterval: 5 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	go discardReads(serverConn)

	req := stun.OutgoingMessage{Class: stun.ClassRequest, Method: stun.MethodBinding}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Do(ctx, req)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func discardReads(conn net.Conn) {
	buf := make([]byte, 1500)
	for {
		if _, err := conn.Read(buf); err != nil {
			return
		}
	}
}

func TestClientCloseFailsOutstandingDo(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer serverConn.Close()
	go discardReads(serverConn)

	c, err := NewClient(ClientOptions{Conn: clientConn, CollectInterval: 5 * time.Millisecond})
	require.NoError(t, err)

	req := stun.OutgoingMessage{Class: stun.ClassRequest, Method: stun.MethodBinding}
	errCh := make(chan error, 1)
	go func() {
		_, doErr := c.Do(context.Background(), req)
		errCh <- doErr
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, c.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrAgentClosed)
	case <-time.After(time.Second):
		t.Fatal("Do did not return after Close")
	}
}
