package flow

import "strings"

// Registry holds the registered flows. It is populated at startup and
// read-only afterwards.
type Registry struct {
	flows  []*Flow
	byName map[string]*Flow
}

// NewRegistry creates an empty flow registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Flow)}
}

// Register adds a flow. Registration order is the tie-break for keyword
// matching.
func (r *Registry) Register(f *Flow) {
	r.flows = append(r.flows, f)
	r.byName[f.Name] = f
}

// Lookup returns a flow by name, or nil.
func (r *Registry) Lookup(name string) *Flow {
	return r.byName[name]
}

// Match resolves the flow that should handle an inbound event. Keyword flows
// are checked first in registration order with case-sensitive substring
// matching; if none matches and the session has no prior history, the welcome
// flow fires. Otherwise the event has no handler and is dropped.
func (r *Registry) Match(text string, hasHistory bool) *Flow {
	for _, f := range r.flows {
		for _, kw := range f.Keywords {
			if strings.Contains(text, kw) {
				return f
			}
		}
	}

	if !hasHistory {
		for _, f := range r.flows {
			if f.Welcome {
				return f
			}
		}
	}

	return nil
}
