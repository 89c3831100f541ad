package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dop251/goja"
)

// GojaWorker runs one plugin module inside a sandboxed JavaScript runtime.
// The VM lives on a single goroutine that evaluates the module and then
// processes inbox messages sequentially; the host side only ever touches
// the channels and the interrupt handle, so no VM state is shared.
type GojaWorker struct {
	pluginID string
	vm       *goja.Runtime

	inbox  chan Message
	outbox chan Message
	done   chan ExitStatus
	stop   chan struct{}

	// hooks, routes, and settings are tables touched only by the run
	// goroutine after construction.
	hooks    map[string]goja.Callable
	routes   map[string]goja.Callable
	settings map[string]string

	mu         sync.Mutex
	terminated bool
}

// WorkerOption configures a GojaWorker before its runtime starts.
type WorkerOption func(*GojaWorker)

// WithWorkerSettings provides the plugin-scoped settings the module can read
// through pagedeck.settings. The map is copied.
func WithWorkerSettings(values map[string]string) WorkerOption {
	return func(w *GojaWorker) {
		for k, v := range values {
			w.settings[k] = v
		}
	}
}

// NewGojaWorker reads the module at modulePath and starts its runtime. The
// returned worker streams hook and route registrations as the module
// evaluates, before answering the register message.
func NewGojaWorker(pluginID, modulePath string, opts ...WorkerOption) (Worker, error) {
	source, err := os.ReadFile(modulePath)
	if err != nil {
		return nil, fmt.Errorf("plugin %s: read module: %w", pluginID, err)
	}

	w := &GojaWorker{
		pluginID: pluginID,
		vm:       goja.New(),
		inbox:    make(chan Message, 16),
		outbox:   make(chan Message, 64),
		done:     make(chan ExitStatus, 1),
		stop:     make(chan struct{}),
		hooks:    make(map[string]goja.Callable),
		routes:   make(map[string]goja.Callable),
		settings: make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}

	go w.run(string(source))
	return w, nil
}

func (w *GojaWorker) Send(msg Message) error {
	w.mu.Lock()
	terminated := w.terminated
	w.mu.Unlock()
	if terminated {
		return ErrWorkerTerminated
	}

	select {
	case w.inbox <- msg:
		return nil
	case <-w.stop:
		return ErrWorkerTerminated
	}
}

func (w *GojaWorker) Messages() <-chan Message { return w.outbox }

func (w *GojaWorker) Done() <-chan ExitStatus { return w.done }

// Terminate interrupts any running script and stops the inbox loop. Safe
// to call more than once and from any goroutine.
func (w *GojaWorker) Terminate() {
	w.mu.Lock()
	if w.terminated {
		w.mu.Unlock()
		return
	}
	w.terminated = true
	close(w.stop)
	w.mu.Unlock()

	w.vm.Interrupt("terminated")
}

// run owns the VM: sandbox setup, module evaluation, then the inbox loop.
func (w *GojaWorker) run(source string) {
	exit := ExitStatus{}
	defer func() {
		if r := recover(); r != nil {
			exit = ExitStatus{Code: 1, Err: fmt.Errorf("worker panic: %v", r)}
		}
		close(w.outbox)
		w.done <- exit
	}()

	if err := w.setup(); err != nil {
		exit = ExitStatus{Code: 1, Err: err}
		return
	}

	if _, err := w.vm.RunString(source); err != nil {
		w.emit(Message{Kind: KindError, Err: err.Error()})
		exit = ExitStatus{Code: 1, Err: fmt.Errorf("module evaluation: %w", err)}
		return
	}

	for {
		select {
		case <-w.stop:
			w.emit(Message{Kind: KindExit})
			return
		case msg := <-w.inbox:
			if interrupted := w.handle(msg); interrupted {
				exit = ExitStatus{Code: 1, Err: ErrWorkerTerminated}
				return
			}
		}
	}
}

// setup strips the runtime of anything resembling host or Node access and
// installs the pagedeck bridge.
func (w *GojaWorker) setup() error {
	blocked := []string{
		"require", "module", "exports", "process", "global",
		"__dirname", "__filename", "Buffer",
		"setTimeout", "setInterval", "setImmediate",
		"clearTimeout", "clearInterval", "clearImmediate",
	}
	for _, name := range blocked {
		if err := w.vm.Set(name, goja.Undefined()); err != nil {
			return fmt.Errorf("sandbox: remove %s: %w", name, err)
		}
	}

	bridge := w.vm.NewObject()
	if err := bridge.Set("id", w.pluginID); err != nil {
		return err
	}
	if err := bridge.Set("registerHook", w.bridgeRegisterHook); err != nil {
		return err
	}
	if err := bridge.Set("registerRoute", w.bridgeRegisterRoute); err != nil {
		return err
	}
	if err := bridge.Set("log", w.bridgeLog); err != nil {
		return err
	}
	if err := bridge.Set("settings", w.bridgeSettings); err != nil {
		return err
	}
	return w.vm.Set("pagedeck", bridge)
}

func (w *GojaWorker) bridgeRegisterHook(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	fn, ok := goja.AssertFunction(call.Argument(1))
	if name == "" || !ok {
		panic(w.vm.NewTypeError("registerHook requires a name and a handler function"))
	}
	w.hooks[name] = fn
	w.emit(Message{Kind: KindRegisterHook, Hook: name})
	return goja.Undefined()
}

func (w *GojaWorker) bridgeRegisterRoute(call goja.FunctionCall) goja.Value {
	method := call.Argument(0).String()
	path := call.Argument(1).String()
	fn, ok := goja.AssertFunction(call.Argument(2))
	if method == "" || path == "" || !ok {
		panic(w.vm.NewTypeError("registerRoute requires a method, a path, and a handler function"))
	}
	w.routes[method+" "+path] = fn
	w.emit(Message{Kind: KindRegisterRoute, Method: method, Route: path})
	return goja.Undefined()
}

func (w *GojaWorker) bridgeLog(call goja.FunctionCall) goja.Value {
	level := call.Argument(0).String()
	text := call.Argument(1).String()

	var fields map[string]any
	if arg := call.Argument(2); !goja.IsUndefined(arg) && !goja.IsNull(arg) {
		fields, _ = arg.Export().(map[string]any)
	}

	w.emit(Message{
		Kind:   KindLog,
		Level:  level,
		Text:   text,
		Fields: fields,
	})
	return goja.Undefined()
}

// bridgeSettings is a read-only getter over the host-populated settings.
// Unknown keys come back undefined.
func (w *GojaWorker) bridgeSettings(call goja.FunctionCall) goja.Value {
	key := call.Argument(0).String()
	if v, ok := w.settings[key]; ok {
		return w.vm.ToValue(v)
	}
	return goja.Undefined()
}

// handle processes one host message. Reports true when the handler was
// interrupted by Terminate, which ends the worker.
func (w *GojaWorker) handle(msg Message) bool {
	switch msg.Kind {
	case KindRegister:
		w.emit(Message{Kind: KindResult, CorrelationID: msg.CorrelationID})

	case KindPing:
		w.emit(Message{Kind: KindPong, CorrelationID: msg.CorrelationID})

	case KindCallHook:
		fn, ok := w.hooks[msg.Hook]
		if !ok {
			w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: fmt.Sprintf("hook %q not registered", msg.Hook)})
			return false
		}
		return w.invoke(msg, fn)

	case KindCallRoute:
		fn, ok := w.routes[msg.Method+" "+msg.Route]
		if !ok {
			w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: fmt.Sprintf("route %s %s not registered", msg.Method, msg.Route)})
			return false
		}
		return w.invoke(msg, fn)

	default:
		w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: fmt.Sprintf("unsupported message kind %q", msg.Kind)})
	}
	return false
}

// invoke runs a handler with the decoded payload and replies with the
// JSON-encoded result and execution time.
func (w *GojaWorker) invoke(msg Message, fn goja.Callable) bool {
	var arg any
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &arg); err != nil {
			w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: fmt.Sprintf("invalid payload: %v", err)})
			return false
		}
	}

	start := time.Now()
	value, err := fn(goja.Undefined(), w.vm.ToValue(arg))
	elapsed := time.Since(start).Milliseconds()

	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return true
		}
		w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: err.Error(), DurationMS: elapsed})
		return false
	}

	result, err := json.Marshal(value.Export())
	if err != nil {
		w.emit(Message{Kind: KindError, CorrelationID: msg.CorrelationID, Err: fmt.Sprintf("unserializable result: %v", err), DurationMS: elapsed})
		return false
	}

	w.emit(Message{Kind: KindResult, CorrelationID: msg.CorrelationID, Payload: result, DurationMS: elapsed})
	return false
}

// emit delivers an outbound message unless the worker is stopping.
func (w *GojaWorker) emit(msg Message) {
	select {
	case w.outbox <- msg:
	case <-w.stop:
	}
}
