package plugin

import "errors"

var (
	// ErrWorkerTimeout is returned when a worker fails to reply within the
	// call budget. The worker is force-terminated; the call is not retried.
	ErrWorkerTimeout = errors.New("plugin: worker timed out")

	// ErrWorkerCrashed is returned for calls that were in flight when their
	// worker terminated or was force-killed.
	ErrWorkerCrashed = errors.New("plugin: worker crashed")

	// ErrCallFailed is returned when the worker reports an error for a call,
	// typically a script exception inside the handler.
	ErrCallFailed = errors.New("plugin: call failed")

	// ErrPluginNotLoaded is returned when the target plugin has no live
	// worker, either because it was never loaded or because it crashed.
	ErrPluginNotLoaded = errors.New("plugin: not loaded")

	// ErrNotRegistered is returned when a call names a hook or route the
	// plugin did not register.
	ErrNotRegistered = errors.New("plugin: hook or route not registered")

	// ErrProtocol indicates a malformed or uncorrelated worker message. It
	// is logged and never surfaced to callers as a call failure.
	ErrProtocol = errors.New("plugin: protocol violation")

	// ErrSupervisorClosed is returned for operations after Close.
	ErrSupervisorClosed = errors.New("plugin: supervisor closed")

	// ErrModuleNotFound is returned by loaders when no module exists for
	// the plugin id.
	ErrModuleNotFound = errors.New("plugin: module not found")

	// ErrInvalidPluginID is returned for plugin ids that could escape the
	// module root or are otherwise malformed.
	ErrInvalidPluginID = errors.New("plugin: invalid plugin id")

	// ErrLoaderRequired is returned when a supervisor is created without a
	// module loader.
	ErrLoaderRequired = errors.New("plugin: module loader is required")

	// ErrWorkerTerminated is returned by Send on a worker that already
	// stopped.
	ErrWorkerTerminated = errors.New("plugin: worker terminated")
)
