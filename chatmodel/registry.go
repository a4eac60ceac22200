package chatmodel

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/modelkit/geminichat/geminiapi"
)

// Callback is a user-supplied function the model may request. Arguments
// arrive as raw JSON under model control; validating them against the
// declared schema is the callback's responsibility.
type Callback func(ctx context.Context, args json.RawMessage) (string, error)

// Function pairs a declaration with its executable callback.
type Function struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON Schema
	Execute     Callback
}

// FunctionRegistry manages function registration and lookup. Registration
// is expected to happen before runs start; lookups during a run are
// read-only.
type FunctionRegistry struct {
	functions map[string]*Function
	mu        sync.RWMutex
}

// NewFunctionRegistry creates an empty FunctionRegistry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]*Function),
	}
}

// Register adds or replaces a function in the registry.
func (r *FunctionRegistry) Register(fn Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[fn.Name] = &fn
}

// Unregister removes a function from the registry.
func (r *FunctionRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.functions, name)
}

// Lookup returns a registered function by name, or nil if not found.
func (r *FunctionRegistry) Lookup(name string) *Function {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.functions[name]
}

// Names returns the names of all registered functions.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	return names
}

// Describe returns the wire declaration for one registered function, or
// nil if the name is unknown.
func (r *FunctionRegistry) Describe(name string) *geminiapi.FunctionDeclaration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[name]
	if !ok {
		return nil
	}
	return &geminiapi.FunctionDeclaration{
		Name:        fn.Name,
		Description: fn.Description,
		Parameters:  fn.Parameters,
	}
}

// Count returns the number of registered functions.
func (r *FunctionRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.functions)
}

// Declarations returns the wire declarations for the named functions.
// Names without a registered function are reported via UnknownFunctionError
// so a bad enabled set fails before any network I/O.
func (r *FunctionRegistry) Declarations(names []string) ([]geminiapi.FunctionDeclaration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	decls := make([]geminiapi.FunctionDeclaration, 0, len(names))
	for _, name := range names {
		fn, ok := r.functions[name]
		if !ok {
			return nil, &UnknownFunctionError{Name: name}
		}
		decls = append(decls, geminiapi.FunctionDeclaration{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		})
	}
	return decls, nil
}
