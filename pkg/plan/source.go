package plan

import (
	"fmt"
	"maps"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source loads a limits table keyed by tier.
type Source interface {
	// Load returns the full limits table. The returned map is owned by the caller.
	Load() (map[Tier]Limits, error)
}

// inMemSource serves a deep copy of a limits map supplied at construction.
type inMemSource struct {
	mu     sync.RWMutex
	limits map[Tier]Limits
}

// NewInMemSource returns a Source backed by a copy of the given table.
func NewInMemSource(limits map[Tier]Limits) Source {
	return &inMemSource{limits: maps.Clone(limits)}
}

func (s *inMemSource) Load() (map[Tier]Limits, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.limits), nil
}

// yamlSource loads the limits table from a YAML file on every Load call.
type yamlSource struct {
	path string
}

// NewYAMLSource returns a Source that reads a limits table from the YAML file
// at path. The file maps tier names to limits entries:
//
//	free:
//	  max_requests_per_window: 60
//	  window_duration: 60s
//	  query_timeout: 5s
//	  api_timeout: 15s
//	  worker_task_timeout: 2s
func NewYAMLSource(path string) Source {
	return &yamlSource{path: path}
}

func (s *yamlSource) Load() (map[Tier]Limits, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("plan: read limits file: %w", err)
	}

	var raw map[string]Limits
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("plan: parse limits file: %w", err)
	}

	limits := make(map[Tier]Limits, len(raw))
	for name, l := range raw {
		limits[Tier(name)] = l
	}
	return limits, nil
}
