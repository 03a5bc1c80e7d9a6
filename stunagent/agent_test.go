package stunagent

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashgrove-labs/stun"
)

func newTestAgent() *Agent {
	return New(Options{})
}

func TestAgentProcessDeliversMatchingTransaction(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	require.NoError(t, a.Start(id, time.Now().Add(time.Second), func(e Event) { events <- e }))

	in := &stun.IncomingMessage{TransactionID: id}
	require.NoError(t, a.Process(in))

	select {
	case e := <-events:
		assert.NoError(t, e.Error)
		assert.Same(t, in, e.Message)
	default:
		t.Fatal("callback was not invoked")
	}
}

func TestAgentProcessDropsUnknownTransaction(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	require.NoError(t, a.Start(id, time.Now().Add(time.Second), func(e Event) { events <- e }))

	other := stun.NewTransactionID()
	require.NoError(t, a.Process(&stun.IncomingMessage{TransactionID: other}))

	select {
	case <-events:
		t.Fatal("callback fired for a non-matching transaction id")
	default:
	}
}

func TestAgentStartRejectsDuplicateID(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	require.NoError(t, a.Start(id, time.Now().Add(time.Second), func(Event) {}))
	err := a.Start(id, time.Now().Add(time.Second), func(Event) {})
	assert.ErrorIs(t, err, ErrTransactionExists)
}

func TestAgentStopUnknownTransaction(t *testing.T) {
	a := newTestAgent()
	err := a.Stop(stun.NewTransactionID())
	assert.ErrorIs(t, err, ErrTransactionNotExists)
}

func TestAgentStopInvokesCallbackWithStopped(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	require.NoError(t, a.Start(id, time.Now().Add(time.Second), func(e Event) { events <- e }))
	require.NoError(t, a.Stop(id))

	e := <-events
	assert.ErrorIs(t, e.Error, ErrTransactionStopped)
}

func TestAgentCollectExpiresPastDeadline(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	past := time.Now().Add(-time.Millisecond)
	require.NoError(t, a.Start(id, past, func(e Event) { events <- e }))

	a.Collect(time.Now())

	e := <-events
	assert.ErrorIs(t, e.Error, ErrTransactionTimedOut)

	// The transaction is gone: a second Collect must not invoke it again.
	a.Collect(time.Now())
	select {
	case <-events:
		t.Fatal("expired transaction fired twice")
	default:
	}
}

func TestAgentCollectIgnoresFutureDeadline(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	require.NoError(t, a.Start(id, time.Now().Add(time.Hour), func(e Event) { events <- e }))

	a.Collect(time.Now())

	select {
	case <-events:
		t.Fatal("callback fired for a transaction whose deadline hasn't passed")
	default:
	}
}

func TestAgentCloseFailsOutstandingAndFutureCalls(t *testing.T) {
	a := newTestAgent()
	id := stun.NewTransactionID()
	events := make(chan Event, 1)
	require.NoError(t, a.Start(id, time.Now().Add(time.Hour), func(e Event) { events <- e }))

	require.NoError(t, a.Close())

	e := <-events
	assert.ErrorIs(t, e.Error, ErrAgentClosed)

	assert.ErrorIs(t, a.Start(stun.NewTransactionID(), time.Now().Add(time.Second), func(Event) {}), ErrAgentClosed)
	assert.ErrorIs(t, a.Process(&stun.IncomingMessage{TransactionID: id}), ErrAgentClosed)
	assert.ErrorIs(t, a.Stop(id), ErrAgentClosed)
}
