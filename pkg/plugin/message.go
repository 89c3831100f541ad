package plugin

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Kind discriminates protocol messages. The set is closed: receivers switch
// over every kind and treat anything else as a protocol violation.
type Kind string

const (
	// KindRegister asks a fresh worker to finish module registration.
	KindRegister Kind = "register"

	// KindRegisterHook announces a hook the module handles. Streamed from
	// the worker before its register reply.
	KindRegisterHook Kind = "register_hook"

	// KindRegisterRoute announces an HTTP route the module handles.
	KindRegisterRoute Kind = "register_route"

	// KindCallHook invokes a registered hook handler.
	KindCallHook Kind = "call_hook"

	// KindCallRoute invokes a registered route handler.
	KindCallRoute Kind = "call_route"

	// KindPing probes worker liveness; the worker answers with KindPong.
	KindPing Kind = "ping"

	// KindPong answers a ping, correlated to it.
	KindPong Kind = "pong"

	// KindResult carries a successful reply for a correlated call.
	KindResult Kind = "result"

	// KindError carries a failed reply for a correlated call.
	KindError Kind = "error"

	// KindLog carries a log record emitted by the module.
	KindLog Kind = "log"

	// KindExit announces that the worker is shutting down.
	KindExit Kind = "exit"
)

// Valid reports whether k is a member of the protocol.
func (k Kind) Valid() bool {
	switch k {
	case KindRegister, KindRegisterHook, KindRegisterRoute,
		KindCallHook, KindCallRoute,
		KindPing, KindPong,
		KindResult, KindError, KindLog, KindExit:
		return true
	}
	return false
}

// Message is the single envelope exchanged with workers in both directions.
// Which fields are meaningful depends on Kind; unused fields stay zero.
type Message struct {
	Kind Kind `json:"kind"`

	// CorrelationID ties a reply to its request. Zero for fire-and-forget
	// kinds (registrations, log, exit).
	CorrelationID uuid.UUID `json:"correlation_id,omitzero"`

	// Hook names the hook for KindRegisterHook and KindCallHook.
	Hook string `json:"hook,omitempty"`

	// Method and Route name the endpoint for KindRegisterRoute and
	// KindCallRoute.
	Method string `json:"method,omitempty"`
	Route  string `json:"route,omitempty"`

	// Payload carries call arguments and results as raw JSON.
	Payload json.RawMessage `json:"payload,omitempty"`

	// Err carries the failure description for KindError.
	Err string `json:"error,omitempty"`

	// DurationMS is the handler execution time reported with replies.
	DurationMS int64 `json:"duration_ms,omitempty"`

	// Level, Text, and Fields describe a KindLog record. Text is plain
	// prose, kept out of Payload so the envelope stays valid JSON on the
	// wire.
	Level  string         `json:"level,omitempty"`
	Text   string         `json:"text,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

// ExitStatus describes how a worker stopped. Code 0 means a clean exit.
type ExitStatus struct {
	Code int
	Err  error
}

// Worker is one isolated plugin instance. Implementations must not share
// mutable state with the host; all interaction flows through messages.
type Worker interface {
	// Send delivers a message to the worker. Per-worker ordering is
	// preserved. Returns ErrWorkerTerminated once the worker stopped.
	Send(msg Message) error

	// Messages streams the worker's outbound messages. Closed when the
	// worker stops emitting.
	Messages() <-chan Message

	// Terminate force-stops the worker, interrupting any running handler.
	// Safe to call more than once.
	Terminate()

	// Done delivers the worker's exit status once.
	Done() <-chan ExitStatus
}
