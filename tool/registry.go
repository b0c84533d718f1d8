package tool

// Registry is the static catalog of tools an agent exposes to its backend
// model. It is constructed once at agent initialization from a declarative
// list and never changes mid-conversation; an orchestrator's delegate tools
// are concatenated at construction time.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a registry preserving declaration order. A duplicate
// name overwrites the earlier entry while keeping its position.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Specs returns the declarative tool catalog in declaration order. The
// result is rebuilt per call so callers may not mutate registry state
// through it.
func (r *Registry) Specs() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, Spec{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return specs
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }
