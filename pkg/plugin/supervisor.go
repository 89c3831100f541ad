package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// WorkerFactory spawns a worker for a resolved module. The default factory
// starts a sandboxed JavaScript runtime.
type WorkerFactory func(pluginID, modulePath string) (Worker, error)

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithLogger sets the logger for worker log forwarding and protocol
// diagnostics. Defaults to a discarding logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWorkerFactory overrides how workers are spawned.
func WithWorkerFactory(factory WorkerFactory) Option {
	return func(s *Supervisor) {
		if factory != nil {
			s.spawn = factory
		}
	}
}

// WithLoadTimeout bounds how long Load waits for a module to finish
// registration. Defaults to 10 seconds.
func WithLoadTimeout(d time.Duration) Option {
	return func(s *Supervisor) {
		if d > 0 {
			s.loadTimeout = d
		}
	}
}

// Supervisor owns all plugin workers: it loads modules, dispatches calls,
// correlates replies, enforces per-call timeouts, and force-terminates
// workers that misbehave. It never restarts a crashed worker on its own.
type Supervisor struct {
	loader      ModuleLoader
	spawn       WorkerFactory
	logger      *slog.Logger
	loadTimeout time.Duration

	mu      sync.Mutex
	plugins map[string]*instance
	closed  bool
}

// instance pairs a live worker with its bookkeeping. registrations and
// descriptor are guarded by the supervisor mutex.
type instance struct {
	descriptor    Descriptor
	worker        Worker
	pending       *pendingTable
	registrations Registrations

	// terminating is set before an intentional Terminate so the exit
	// handler can tell a kill from a crash.
	terminating bool
}

// NewSupervisor creates a supervisor resolving modules through loader.
func NewSupervisor(loader ModuleLoader, opts ...Option) (*Supervisor, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}

	s := &Supervisor{
		loader: loader,
		spawn: func(pluginID, modulePath string) (Worker, error) {
			return NewGojaWorker(pluginID, modulePath)
		},
		logger:      slog.New(slog.DiscardHandler),
		loadTimeout: 10 * time.Second,
		plugins:     make(map[string]*instance),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load resolves the plugin's module, spawns a worker, and completes the
// registration handshake. Loading an already-ready plugin is a no-op; a
// crashed plugin is replaced with a fresh worker.
func (s *Supervisor) Load(ctx context.Context, pluginID string) error {
	modulePath, err := s.loader.Resolve(pluginID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSupervisorClosed
	}
	if inst, ok := s.plugins[pluginID]; ok {
		if inst.descriptor.State == StateReady || inst.descriptor.State == StateLoading {
			s.mu.Unlock()
			return nil
		}
		delete(s.plugins, pluginID)
	}

	worker, err := s.spawn(pluginID, modulePath)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("plugin %s: spawn worker: %w", pluginID, err)
	}

	inst := &instance{
		descriptor: Descriptor{PluginID: pluginID, ModulePath: modulePath, State: StateLoading},
		worker:     worker,
		pending:    newPendingTable(),
	}
	s.plugins[pluginID] = inst
	s.mu.Unlock()

	go s.readLoop(inst)

	registerCtx, cancel := context.WithTimeout(ctx, s.loadTimeout)
	defer cancel()

	if _, err := s.dispatch(registerCtx, inst, Message{Kind: KindRegister, CorrelationID: uuid.New()}); err != nil {
		s.abortLoad(inst)
		return fmt.Errorf("plugin %s: register: %w", pluginID, err)
	}

	s.mu.Lock()
	if inst.descriptor.State == StateLoading {
		inst.descriptor.State = StateReady
	}
	s.mu.Unlock()
	return nil
}

// abortLoad tears down a worker whose register handshake did not complete.
// The timeout and worker-exit paths demote the instance themselves; this
// covers caller cancellation, where dispatch returns without touching the
// worker and the instance would otherwise sit in StateLoading forever.
func (s *Supervisor) abortLoad(inst *instance) {
	s.mu.Lock()
	if inst.descriptor.State != StateLoading {
		s.mu.Unlock()
		return
	}
	inst.terminating = true
	inst.descriptor.State = StateCrashed
	s.mu.Unlock()
	inst.worker.Terminate()
}

// CallHook invokes a registered hook handler and waits up to timeout for
// its reply.
func (s *Supervisor) CallHook(ctx context.Context, pluginID, hook string, payload json.RawMessage, timeout time.Duration) (*Reply, error) {
	inst, err := s.ready(pluginID)
	if err != nil {
		return nil, err
	}
	if !s.registrationsOf(inst).HasHook(hook) {
		return nil, fmt.Errorf("%w: hook %q", ErrNotRegistered, hook)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.dispatch(ctx, inst, Message{
		Kind:          KindCallHook,
		CorrelationID: uuid.New(),
		Hook:          hook,
		Payload:       payload,
	})
}

// CallRoute invokes a registered route handler and waits up to timeout for
// its reply.
func (s *Supervisor) CallRoute(ctx context.Context, pluginID, method, path string, payload json.RawMessage, timeout time.Duration) (*Reply, error) {
	inst, err := s.ready(pluginID)
	if err != nil {
		return nil, err
	}
	if !s.registrationsOf(inst).HasRoute(method, path) {
		return nil, fmt.Errorf("%w: route %s %s", ErrNotRegistered, method, path)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.dispatch(ctx, inst, Message{
		Kind:          KindCallRoute,
		CorrelationID: uuid.New(),
		Method:        method,
		Route:         path,
		Payload:       payload,
	})
}

// Ping probes the plugin's worker. A worker that misses the deadline is
// terminated like any other timed-out call.
func (s *Supervisor) Ping(ctx context.Context, pluginID string, timeout time.Duration) error {
	inst, err := s.ready(pluginID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err = s.dispatch(ctx, inst, Message{Kind: KindPing, CorrelationID: uuid.New()})
	return err
}

// ListRegistrations returns what the plugin's module registered at load.
func (s *Supervisor) ListRegistrations(pluginID string) (Registrations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Registrations{}, ErrSupervisorClosed
	}
	inst, ok := s.plugins[pluginID]
	if !ok {
		return Registrations{}, fmt.Errorf("%w: %s", ErrPluginNotLoaded, pluginID)
	}
	return copyRegistrations(inst.registrations), nil
}

// Describe returns the plugin's descriptor.
func (s *Supervisor) Describe(pluginID string) (Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.plugins[pluginID]
	if !ok {
		return Descriptor{PluginID: pluginID, State: StateUnloaded}, fmt.Errorf("%w: %s", ErrPluginNotLoaded, pluginID)
	}
	return inst.descriptor, nil
}

// Close rejects all pending calls with ErrSupervisorClosed and terminates
// every worker. Safe to call more than once.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	instances := make([]*instance, 0, len(s.plugins))
	for _, inst := range s.plugins {
		inst.terminating = true
		instances = append(instances, inst)
	}
	s.mu.Unlock()

	for _, inst := range instances {
		for _, pc := range inst.pending.drain() {
			pc.resolve(nil, ErrSupervisorClosed)
		}
		inst.worker.Terminate()
	}
	return nil
}

// ready returns the live instance for pluginID.
func (s *Supervisor) ready(pluginID string) (*instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSupervisorClosed
	}
	inst, ok := s.plugins[pluginID]
	if !ok || inst.descriptor.State != StateReady {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotLoaded, pluginID)
	}
	return inst, nil
}

func (s *Supervisor) registrationsOf(inst *instance) Registrations {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRegistrations(inst.registrations)
}

// dispatch sends msg and blocks until its correlated reply, the context
// deadline, or worker death. On deadline the worker is force-terminated and
// the call resolves ErrWorkerTimeout; every other in-flight call on that
// worker resolves ErrWorkerCrashed through the exit path.
func (s *Supervisor) dispatch(ctx context.Context, inst *instance, msg Message) (*Reply, error) {
	pc := inst.pending.add(msg.CorrelationID, msg.Kind)

	if err := inst.worker.Send(msg); err != nil {
		if _, ok := inst.pending.take(pc.id); !ok {
			out := <-pc.done
			return out.reply, out.err
		}
		return nil, fmt.Errorf("%w: %s", ErrWorkerCrashed, err)
	}

	select {
	case out := <-pc.done:
		return out.reply, out.err

	case <-ctx.Done():
		if _, ok := inst.pending.take(pc.id); !ok {
			// The reply raced the deadline and won.
			out := <-pc.done
			return out.reply, out.err
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			s.kill(inst)
			return nil, fmt.Errorf("%w: no reply to %s within budget", ErrWorkerTimeout, msg.Kind)
		}
		return nil, ctx.Err()
	}
}

// kill force-terminates a worker after a timed-out call and marks the
// plugin crashed. Remaining in-flight calls fail via the exit handler.
func (s *Supervisor) kill(inst *instance) {
	s.mu.Lock()
	inst.terminating = true
	inst.descriptor.State = StateCrashed
	s.mu.Unlock()
	inst.worker.Terminate()
}

// readLoop consumes one worker's outbound messages until it exits.
func (s *Supervisor) readLoop(inst *instance) {
	messages := inst.worker.Messages()
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			s.handleMessage(inst, msg)
		case status := <-inst.worker.Done():
			s.handleExit(inst, status)
			return
		}
	}
}

func (s *Supervisor) handleMessage(inst *instance, msg Message) {
	pluginID := inst.descriptor.PluginID

	switch msg.Kind {
	case KindResult:
		pc, ok := inst.pending.take(msg.CorrelationID)
		if !ok {
			s.discard(pluginID, msg, "uncorrelated result")
			return
		}
		pc.resolve(&Reply{
			Result:   msg.Payload,
			Duration: time.Duration(msg.DurationMS) * time.Millisecond,
		}, nil)

	case KindError:
		pc, ok := inst.pending.take(msg.CorrelationID)
		if !ok {
			s.discard(pluginID, msg, "uncorrelated error")
			return
		}
		pc.resolve(nil, fmt.Errorf("%w: %s", ErrCallFailed, msg.Err))

	case KindPong:
		pc, ok := inst.pending.take(msg.CorrelationID)
		if !ok {
			s.discard(pluginID, msg, "uncorrelated pong")
			return
		}
		pc.resolve(&Reply{}, nil)

	case KindRegisterHook:
		if msg.Hook == "" {
			s.discard(pluginID, msg, "hook registration without name")
			return
		}
		s.mu.Lock()
		inst.registrations.Hooks = append(inst.registrations.Hooks, msg.Hook)
		s.mu.Unlock()

	case KindRegisterRoute:
		if msg.Method == "" || msg.Route == "" {
			s.discard(pluginID, msg, "route registration without method or path")
			return
		}
		s.mu.Lock()
		inst.registrations.Routes = append(inst.registrations.Routes, Route{Method: msg.Method, Path: msg.Route})
		s.mu.Unlock()

	case KindLog:
		s.forwardLog(pluginID, msg)

	case KindExit:
		s.logger.Debug("worker announced exit", "plugin_id", pluginID)

	default:
		s.discard(pluginID, msg, "unknown message kind")
	}
}

// handleExit marks the plugin crashed (unless intentionally terminated) and
// resolves every remaining in-flight call. A clean exit resolves them with
// a nil result; anything else resolves them with ErrWorkerCrashed.
func (s *Supervisor) handleExit(inst *instance, status ExitStatus) {
	s.mu.Lock()
	terminating := inst.terminating
	if inst.descriptor.State != StateCrashed {
		inst.descriptor.State = StateCrashed
	}
	s.mu.Unlock()

	var outcome error
	switch {
	case terminating:
		outcome = ErrWorkerCrashed
	case status.Code != 0 || status.Err != nil:
		outcome = fmt.Errorf("%w: exit code %d: %v", ErrWorkerCrashed, status.Code, status.Err)
	}

	for _, pc := range inst.pending.drain() {
		if outcome != nil {
			pc.resolve(nil, outcome)
			continue
		}
		pc.resolve(&Reply{}, nil)
	}

	if !terminating {
		s.logger.Warn("worker exited",
			"plugin_id", inst.descriptor.PluginID,
			"exit_code", status.Code,
			"error", status.Err)
	}
}

func (s *Supervisor) discard(pluginID string, msg Message, reason string) {
	s.logger.Warn("discarding worker message",
		"plugin_id", pluginID,
		"kind", string(msg.Kind),
		"correlation_id", msg.CorrelationID.String(),
		"error", fmt.Errorf("%w: %s", ErrProtocol, reason))
}

// forwardLog relays a module log record through the host logger with the
// plugin id attached.
func (s *Supervisor) forwardLog(pluginID string, msg Message) {
	level := slog.LevelInfo
	switch msg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := make([]any, 0, 2+2*len(msg.Fields))
	attrs = append(attrs, "plugin_id", pluginID)
	for k, v := range msg.Fields {
		attrs = append(attrs, k, v)
	}
	s.logger.Log(context.Background(), level, msg.Text, attrs...)
}

func copyRegistrations(r Registrations) Registrations {
	out := Registrations{
		Hooks:  make([]string, len(r.Hooks)),
		Routes: make([]Route, len(r.Routes)),
	}
	copy(out.Hooks, r.Hooks)
	copy(out.Routes, r.Routes)
	return out
}
