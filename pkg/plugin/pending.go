package plugin

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Reply is the host-side result of a plugin call.
type Reply struct {
	Result   json.RawMessage
	Duration time.Duration
}

type callOutcome struct {
	reply *Reply
	err   error
}

// pendingCall is one dispatched request awaiting its correlated reply. The
// done channel is buffered so the resolver never blocks on an abandoned
// waiter.
type pendingCall struct {
	id   uuid.UUID
	kind Kind
	done chan callOutcome
}

// pendingTable tracks in-flight calls per worker. A call reaches exactly
// one terminal outcome because resolution requires removing the entry under
// the lock first; whoever removes it owns the resolve.
type pendingTable struct {
	mu    sync.Mutex
	calls map[uuid.UUID]*pendingCall
}

func newPendingTable() *pendingTable {
	return &pendingTable{calls: make(map[uuid.UUID]*pendingCall)}
}

func (t *pendingTable) add(id uuid.UUID, kind Kind) *pendingCall {
	pc := &pendingCall{
		id:   id,
		kind: kind,
		done: make(chan callOutcome, 1),
	}
	t.mu.Lock()
	t.calls[id] = pc
	t.mu.Unlock()
	return pc
}

// take removes and returns the call for id. Returns false if the call was
// already resolved or abandoned by another path.
func (t *pendingTable) take(id uuid.UUID) (*pendingCall, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pc, ok := t.calls[id]
	if ok {
		delete(t.calls, id)
	}
	return pc, ok
}

// drain removes every in-flight call, for resolution with a single
// worker-level outcome.
func (t *pendingTable) drain() []*pendingCall {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*pendingCall, 0, len(t.calls))
	for id, pc := range t.calls {
		out = append(out, pc)
		delete(t.calls, id)
	}
	return out
}

func (pc *pendingCall) resolve(reply *Reply, err error) {
	pc.done <- callOutcome{reply: reply, err: err}
}
