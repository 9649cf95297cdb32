package calc

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestRegistryRegisterAndQuery(t *testing.T) {
	r := NewRegistry()
	k := KernelFunc(func(nodeID int, g GraphView) float64 { return 0 })

	err := r.RegisterFixed("ADD2", 2, func() Kernel { return k }, false, "adds two things")
	assert.NoError(t, err)

	assert.True(t, r.Has("ADD2"))
	arity, ok := r.Arity("ADD2")
	assert.True(t, ok)
	assert.Equal(t, 2, arity)

	stateful, err := r.IsStateful("ADD2")
	assert.NoError(t, err)
	assert.False(t, stateful)

	assert.Equal(t, "adds two things", r.Describe("ADD2"))
}

func TestRegistryDuplicateName(t *testing.T) {
	r := NewRegistry()
	fn := func() Kernel { return nil }
	assert.NoError(t, r.RegisterVariadic("SUM", fn, false, ""))

	err := r.RegisterVariadic("SUM", fn, false, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateOperationRegistration))
}

func TestRegistryNegativeArity(t *testing.T) {
	r := NewRegistry()
	err := r.RegisterFixed("BAD", -1, func() Kernel { return nil }, false, "")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrNegativeArity))
}

func TestRegistryUnknownOperation(t *testing.T) {
	r := NewRegistry()
	_, err := r.CreateKernel("NOPE")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownOperation))

	_, ok := r.Arity("NOPE")
	assert.False(t, ok)
}

func TestRegistryOperationsSortedByName(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.RegisterVariadic("ZETA", func() Kernel { return nil }, false, "z"))
	assert.NoError(t, r.RegisterVariadic("ALPHA", func() Kernel { return nil }, false, "a"))

	infos := r.Operations()
	assert.Equal(t, 2, len(infos))
	assert.Equal(t, "ALPHA", infos[0].Name)
	assert.Equal(t, "ZETA", infos[1].Name)
}

func TestRegistryStatefulFactoryProducesFreshInstances(t *testing.T) {
	r := NewRegistry()
	factory, err := NewSMAFactory(3)
	assert.NoError(t, err)
	assert.NoError(t, r.RegisterFixed("SMA3", 1, factory, true, "SMA(3)"))

	k1, err := r.CreateKernel("SMA3")
	assert.NoError(t, err)
	k2, err := r.CreateKernel("SMA3")
	assert.NoError(t, err)

	s1, ok := k1.(Stateful)
	assert.True(t, ok)
	s2, ok := k2.(Stateful)
	assert.True(t, ok)
	assert.True(t, s1 != s2)
}
