package calc

import (
	"errors"
	"fmt"
	"sort"
)

// Variadic is the distinguished arity value for operations that accept
// any number of parents.
const Variadic = -1

// Sentinel errors for registry mutators and queries. Wrapped with
// %w so callers can use errors.Is, matching kdag's
// (github.com/birdayz/kstreams/kdag) sentinel-error convention.
var (
	ErrDuplicateOperationRegistration = errors.New("calc: operation already registered")
	ErrNegativeArity                  = errors.New("calc: arity must be non-negative")
	ErrUnknownOperation               = errors.New("calc: unknown operation")
)

// operation holds everything the registry knows about one named
// operation.
type operation struct {
	name        string
	factory     Factory
	arity       int // Variadic, or a fixed arity >= 0
	stateful    bool
	description string
}

// Registry maps operation names to kernel factories, their arity, and
// whether they are stateful. A Registry is built up once and then
// handed to a Compiler read-only; it is not safe for concurrent
// registration and evaluation, mirroring kdag.Builder's single-writer
// contract.
type Registry struct {
	ops map[string]*operation
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{ops: make(map[string]*operation)}
}

// RegisterFixed registers an operation that requires exactly arity
// parents.
func (r *Registry) RegisterFixed(name string, arity int, factory Factory, stateful bool, description string) error {
	if arity < 0 {
		return fmt.Errorf("%w: operation %q got arity %d", ErrNegativeArity, name, arity)
	}
	return r.register(name, arity, factory, stateful, description)
}

// RegisterVariadic registers an operation that accepts any number of
// parents (including zero).
func (r *Registry) RegisterVariadic(name string, factory Factory, stateful bool, description string) error {
	return r.register(name, Variadic, factory, stateful, description)
}

func (r *Registry) register(name string, arity int, factory Factory, stateful bool, description string) error {
	if _, exists := r.ops[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateOperationRegistration, name)
	}
	r.ops[name] = &operation{
		name:        name,
		factory:     factory,
		arity:       arity,
		stateful:    stateful,
		description: description,
	}
	return nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Arity returns the operation's declared arity, or Variadic. The
// second return value is false if the operation is not registered.
func (r *Registry) Arity(name string) (int, bool) {
	op, ok := r.ops[name]
	if !ok {
		return 0, false
	}
	return op.arity, true
}

// IsStateful reports whether name's factory produces stateful
// kernels.
func (r *Registry) IsStateful(name string) (bool, error) {
	op, ok := r.ops[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op.stateful, nil
}

// CreateKernel invokes name's factory. For stateless operations this
// may return a shared instance; for stateful operations it always
// returns a fresh instance.
func (r *Registry) CreateKernel(name string) (Kernel, error) {
	op, ok := r.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, name)
	}
	return op.factory(), nil
}

// Describe returns the human-readable description registered for
// name, or the empty string if name is unknown.
func (r *Registry) Describe(name string) string {
	op, ok := r.ops[name]
	if !ok {
		return ""
	}
	return op.description
}

// OperationInfo is a snapshot of one registered operation, returned by
// Operations for introspection and CLI/help output.
type OperationInfo struct {
	Name        string
	Arity       int // Variadic, or a fixed arity >= 0
	Stateful    bool
	Description string
}

// Operations returns all registered operations sorted by name,
// mirroring CalculatorRegistry.printOperations's sorted iteration in
// the original hybrid graph engine.
func (r *Registry) Operations() []OperationInfo {
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	sort.Strings(names)

	infos := make([]OperationInfo, 0, len(names))
	for _, name := range names {
		op := r.ops[name]
		infos = append(infos, OperationInfo{
			Name:        op.name,
			Arity:       op.arity,
			Stateful:    op.stateful,
			Description: op.description,
		})
	}
	return infos
}
