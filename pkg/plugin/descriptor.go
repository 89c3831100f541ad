package plugin

// State tracks a plugin's lifecycle. Transitions move forward only:
// unloaded → loading → ready → crashed. A crashed plugin stays crashed
// until an explicit Load replaces it.
type State string

const (
	StateUnloaded State = "unloaded"
	StateLoading  State = "loading"
	StateReady    State = "ready"
	StateCrashed  State = "crashed"
)

// Descriptor is the supervisor's view of one plugin.
type Descriptor struct {
	PluginID   string `json:"plugin_id"`
	ModulePath string `json:"module_path"`
	State      State  `json:"state"`
}

// Route identifies one registered route handler.
type Route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
}

// Registrations lists what a plugin module registered during load.
type Registrations struct {
	Hooks  []string `json:"hooks"`
	Routes []Route  `json:"routes"`
}

// HasHook reports whether the module registered the named hook.
func (r Registrations) HasHook(hook string) bool {
	for _, h := range r.Hooks {
		if h == hook {
			return true
		}
	}
	return false
}

// HasRoute reports whether the module registered the method/path pair.
func (r Registrations) HasRoute(method, path string) bool {
	for _, rt := range r.Routes {
		if rt.Method == method && rt.Path == path {
			return true
		}
	}
	return false
}
