// Package stunagent correlates outgoing STUN requests with their
// responses over a connected transport and times out transactions that
// get no response. It does not retransmit: each request is sent once.
package stunagent

import (
	"errors"
	"sync"
	"time"

	"github.com/pion/logging"

	"github.com/ashgrove-labs/stun"
)

// Fn is called on transaction state change: completion, timeout, or
// agent close. e is valid only during the call; copy any fields needed
// afterward.
type Fn func(e Event)

// Event describes a transaction state change.
type Event struct {
	Message *stun.IncomingMessage
	Error   error
}

// ErrAgentClosed indicates the agent is closed and cannot start or
// process further transactions.
var ErrAgentClosed = errors.New("stunagent: agent is closed")

// ErrTransactionStopped indicates a transaction was stopped manually.
var ErrTransactionStopped = errors.New("stunagent: transaction stopped")

// ErrTransactionExists indicates Start was called twice for the same id.
var ErrTransactionExists = errors.New("stunagent: transaction exists with same id")

// ErrTransactionNotExists indicates Stop found no matching transaction.
var ErrTransactionNotExists = errors.New("stunagent: transaction does not exist")

// ErrTransactionTimedOut indicates a transaction reached its deadline
// before a response arrived.
var ErrTransactionTimedOut = errors.New("stunagent: transaction timed out")

type transaction struct {
	deadline time.Time
	f        Fn
}

// Options configures a new Agent.
type Options struct {
	// LoggerFactory builds the agent's logger. Defaults to a no-op
	// factory if nil.
	LoggerFactory logging.LoggerFactory
}

// Agent is a low-level, transport-agnostic transaction tracker: it
// knows nothing about sockets, only transaction ids, deadlines, and
// callbacks.
type Agent struct {
	mu           sync.Mutex
	transactions map[[stun.TransactionIDSize]byte]transaction
	closed       bool
	log          logging.LeveledLogger
}

// New returns a ready-to-use Agent.
func New(o Options) *Agent {
	factory := o.LoggerFactory
	if factory == nil {
		factory = logging.NewDefaultLoggerFactory()
	}

	return &Agent{
		transactions: make(map[[stun.TransactionIDSize]byte]transaction),
		log:          factory.NewLogger("stunagent"),
	}
}

// Start registers a transaction, calling f once a matching response is
// processed, the deadline passes, or the agent is stopped/closed.
func (a *Agent) Start(id [stun.TransactionIDSize]byte, deadline time.Time, f Fn) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrAgentClosed
	}
	if _, exists := a.transactions[id]; exists {
		return ErrTransactionExists
	}
	a.transactions[id] = transaction{deadline: deadline, f: f}

	return nil
}

// Stop cancels a registered transaction, invoking its callback with
// ErrTransactionStopped.
func (a *Agent) Stop(id [stun.TransactionIDSize]byte) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()

		return ErrAgentClosed
	}
	t, exists := a.transactions[id]
	delete(a.transactions, id)
	a.mu.Unlock()
	if !exists {
		return ErrTransactionNotExists
	}
	t.f(Event{Error: ErrTransactionStopped})

	return nil
}

// Process delivers a decoded response to its transaction's callback.
// A response whose transaction id matches nothing registered is
// logged and dropped - the common case of a duplicate or very late
// retransmission.
func (a *Agent) Process(in *stun.IncomingMessage) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()

		return ErrAgentClosed
	}
	t, ok := a.transactions[in.TransactionID]
	delete(a.transactions, in.TransactionID)
	a.mu.Unlock()

	if !ok {
		a.log.Debugf("dropping response for unknown transaction %x", in.TransactionID)

		return nil
	}
	t.f(Event{Message: in})

	return nil
}

// Collect terminates every transaction whose deadline is before now,
// calling each callback with ErrTransactionTimedOut. Callers run it on
// a ticker; see stunagent.Client for a ready-made one.
func (a *Agent) Collect(now time.Time) {
	var expired []Fn
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()

		return
	}
	for id, t := range a.transactions {
		if t.deadline.Before(now) {
			expired = append(expired, t.f)
			delete(a.transactions, id)
		}
	}
	a.mu.Unlock()

	for _, f := range expired {
		f(Event{Error: ErrTransactionTimedOut})
	}
}

// Close terminates every outstanding transaction with ErrAgentClosed
// and renders the agent permanently closed.
func (a *Agent) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, t := range a.transactions {
		t.f(Event{Error: ErrAgentClosed})
	}
	a.transactions = nil
	a.closed = true

	return nil
}
