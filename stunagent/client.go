package stunagent

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/ashgrove-labs/stun"
)

// ErrClientClosed indicates the client's connection or agent is
// already shut down.
var ErrClientClosed = errors.New("stunagent: client is closed")

// DefaultTimeout is used when a Do call's context carries no deadline.
// Retransmission/backoff policy is the caller's concern; the client
// sends a request exactly once and waits for either a response or this
// deadline.
const DefaultTimeout = 3 * time.Second

// DefaultCollectInterval is how often the agent's transaction table is
// swept for expired transactions.
const DefaultCollectInterval = 100 * time.Millisecond

// ClientOptions configures a new Client.
type ClientOptions struct {
	Conn             net.Conn
	LoggerFactory    logging.LoggerFactory
	CollectInterval  time.Duration
	MaxMessageLength int // read buffer size in bytes; defaults to 1500.
}

// Client correlates Binding (or any other) requests sent over Conn
// with their responses, using an Agent. It performs no retransmission:
// a request is written once. If no response arrives, Do returns ctx's
// error once ctx is done, or ErrTransactionTimedOut once the agent's
// collector finds the transaction's deadline has passed.
type Client struct {
	conn   net.Conn
	agent  *Agent
	log    logging.LeveledLogger
	bufLen int

	closeOnce sync.Once
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// NewClient wraps conn, starting background read and garbage-collection
// goroutines. Call Close to release them.
func NewClient(o ClientOptions) (*Client, error) {
	if o.Conn == nil {
		return nil, errors.New("stunagent: nil connection")
	}
	factory := o.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}
	collectInterval := o.CollectInterval
	if collectInterval == 0 {
		collectInterval = DefaultCollectInterval
	}
	bufLen := o.MaxMessageLength
	if bufLen == 0 {
		bufLen = 1500
	}

	c := &Client{
		conn:    o.Conn,
		agent:   New(Options{LoggerFactory: factory}),
		log:     factory.NewLogger("stunagent"),
		bufLen:  bufLen,
		closeCh: make(chan struct{}),
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.collectLoop(collectInterval)

	return c, nil
}

func (c *Client) readLoop() {
	defer c.wg.Done()
	buf := make([]byte, c.bufLen)
	for {
		select {
		case <-c.closeCh:
			return
		default:
		}
		n, err := c.conn.Read(buf)
		if err != nil {
			return
		}
		in, err := stun.Decode(buf[:n])
		if err != nil {
			c.log.Debugf("dropping malformed datagram: %v", err)

			continue
		}
		if pErr := c.agent.Process(in); pErr == ErrAgentClosed {
			return
		}
	}
}

func (c *Client) collectLoop(interval time.Duration) {
	defer c.wg.Done()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-c.closeCh:
			return
		case now := <-t.C:
			c.agent.Collect(now)
		}
	}
}

// Close shuts down the read/collect goroutines, the underlying Agent
// (failing any outstanding Do calls with ErrAgentClosed), and the
// connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closeCh)
		_ = c.agent.Close()
		err = c.conn.Close()
		c.wg.Wait()
	})

	return err
}

// Do encodes out, registers its transaction id, writes it, and blocks
// until a matching response is processed, ctx is done, or the
// transaction's deadline passes. The deadline is ctx's own when it has
// one; DefaultTimeout from now otherwise.
func (c *Client) Do(ctx context.Context, out stun.OutgoingMessage) (*stun.IncomingMessage, error) {
	raw, err := out.Encode()
	if err != nil {
		return nil, err
	}
	tid := out.TransactionID
	if tid == ([stun.TransactionIDSize]byte{}) {
		// Encode generated a fresh id; recover it from the wire image
		// rather than duplicating random-id generation here.
		in, decErr := stun.Decode(raw)
		if decErr != nil {
			return nil, decErr
		}
		tid = in.TransactionID
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(DefaultTimeout)
	}

	resultCh := make(chan Event, 1)
	if err := c.agent.Start(tid, deadline, func(e Event) { resultCh <- e }); err != nil {
		return nil, err
	}

	if _, err := c.conn.Write(raw); err != nil {
		_ = c.agent.Stop(tid)

		return nil, err
	}

	select {
	case e := <-resultCh:
		if e.Error != nil {
			return nil, e.Error
		}

		return e.Message, nil
	case <-ctx.Done():
		_ = c.agent.Stop(tid)
		<-resultCh

		return nil, ctx.Err()
	}
}
