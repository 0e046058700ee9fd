package stats

import (
	"io"
	"sort"
	"sync"

	json "github.com/json-iterator/go"
)

// Registry collects named statistics sources and renders a report over all of them.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]Source
}

func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds the source under the name. Registering the same name twice replaces the
// previous source.
func (r *Registry) Register(name string, source Source) *Registry {
	r.mu.Lock()
	r.sources[name] = source
	r.mu.Unlock()

	return r
}

// Names returns all the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Report takes snapshots of all the displayed sources.
func (r *Registry) Report() map[string]Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := make(map[string]Snapshot, len(r.sources))
	for name, source := range r.sources {
		if source.Displayed() {
			report[name] = source.Snapshot()
		}
	}

	return report
}

// WriteJSON encodes the report into w.
func (r *Registry) WriteJSON(w io.Writer) error {
	stream := json.ConfigCompatibleWithStandardLibrary.BorrowStream(w)
	defer json.ConfigCompatibleWithStandardLibrary.ReturnStream(stream)

	stream.WriteVal(r.Report())
	if stream.Error != nil {
		return stream.Error
	}

	return stream.Flush()
}
