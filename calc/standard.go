package calc

import "math"

// NewStandard returns a Registry pre-populated with the standard
// arithmetic operation set, grounded on CalculatorRegistry.createStandard
// in the original hybrid graph engine: variadic reductions, fixed
// binary/unary/ternary math, and IEEE-754 float semantics throughout
// (division by zero yields ±Inf or NaN rather than an error).
func NewStandard() *Registry {
	r := NewRegistry()

	mustRegisterVariadic(r, "SUM", sumKernel, "sums all parent values, empty input yields 0")
	mustRegisterVariadic(r, "PRODUCT", productKernel, "multiplies all parent values, empty input yields 1")
	mustRegisterVariadic(r, "MIN", minKernel, "minimum of all parent values, empty input yields NaN")
	mustRegisterVariadic(r, "MAX", maxKernel, "maximum of all parent values, empty input yields NaN")
	mustRegisterVariadic(r, "AVG", avgKernel, "average of all parent values, empty input yields NaN")

	mustRegisterFixed(r, "ADD", 2, binary(func(a, b float64) float64 { return a + b }), "a + b")
	mustRegisterFixed(r, "SUB", 2, binary(func(a, b float64) float64 { return a - b }), "a - b")
	mustRegisterFixed(r, "MUL", 2, binary(func(a, b float64) float64 { return a * b }), "a * b")
	mustRegisterFixed(r, "DIV", 2, binary(func(a, b float64) float64 { return a / b }), "a / b")
	mustRegisterFixed(r, "POW", 2, binary(math.Pow), "a raised to the power b")
	mustRegisterFixed(r, "MOD", 2, binary(math.Mod), "a modulo b")

	mustRegisterFixed(r, "SQRT", 1, unary(math.Sqrt), "square root")
	mustRegisterFixed(r, "ABS", 1, unary(math.Abs), "absolute value")
	mustRegisterFixed(r, "NEG", 1, unary(func(a float64) float64 { return -a }), "negation")
	mustRegisterFixed(r, "SIN", 1, unary(math.Sin), "sine")
	mustRegisterFixed(r, "COS", 1, unary(math.Cos), "cosine")
	mustRegisterFixed(r, "LOG", 1, unary(math.Log), "natural logarithm")
	mustRegisterFixed(r, "EXP", 1, unary(math.Exp), "e raised to the power a")

	mustRegisterFixed(r, "CLAMP", 3, clampKernel, "clamps x between lo and hi")
	mustRegisterFixed(r, "LERP", 3, lerpKernel, "linear interpolation a + (b - a) * t")

	return r
}

func mustRegisterVariadic(r *Registry, name string, fn func(nodeID int, g GraphView) float64, description string) {
	if err := r.RegisterVariadic(name, stateless(fn), false, description); err != nil {
		panic(err)
	}
}

func mustRegisterFixed(r *Registry, name string, arity int, fn func(nodeID int, g GraphView) float64, description string) {
	if err := r.RegisterFixed(name, arity, stateless(fn), false, description); err != nil {
		panic(err)
	}
}

// stateless wraps a pure function into a Factory that always returns
// the same shared Kernel instance, since stateless kernels carry no
// per-node data.
func stateless(fn func(nodeID int, g GraphView) float64) Factory {
	k := KernelFunc(fn)
	return func() Kernel { return k }
}

func sumKernel(nodeID int, g GraphView) float64 {
	start, end := g.ParentRange(nodeID)
	sum := 0.0
	for i := start; i < end; i++ {
		sum += g.Value(g.ParentID(i))
	}
	return sum
}

func productKernel(nodeID int, g GraphView) float64 {
	start, end := g.ParentRange(nodeID)
	product := 1.0
	for i := start; i < end; i++ {
		product *= g.Value(g.ParentID(i))
	}
	return product
}

func minKernel(nodeID int, g GraphView) float64 {
	start, end := g.ParentRange(nodeID)
	if start == end {
		return math.NaN()
	}
	min := math.Inf(1)
	for i := start; i < end; i++ {
		min = math.Min(min, g.Value(g.ParentID(i)))
	}
	return min
}

func maxKernel(nodeID int, g GraphView) float64 {
	start, end := g.ParentRange(nodeID)
	if start == end {
		return math.NaN()
	}
	max := math.Inf(-1)
	for i := start; i < end; i++ {
		max = math.Max(max, g.Value(g.ParentID(i)))
	}
	return max
}

func avgKernel(nodeID int, g GraphView) float64 {
	start, end := g.ParentRange(nodeID)
	count := end - start
	if count == 0 {
		return math.NaN()
	}
	sum := 0.0
	for i := start; i < end; i++ {
		sum += g.Value(g.ParentID(i))
	}
	return sum / float64(count)
}

func binary(fn func(a, b float64) float64) func(nodeID int, g GraphView) float64 {
	return func(nodeID int, g GraphView) float64 {
		start, _ := g.ParentRange(nodeID)
		a := g.Value(g.ParentID(start))
		b := g.Value(g.ParentID(start + 1))
		return fn(a, b)
	}
}

func unary(fn func(a float64) float64) func(nodeID int, g GraphView) float64 {
	return func(nodeID int, g GraphView) float64 {
		start, _ := g.ParentRange(nodeID)
		return fn(g.Value(g.ParentID(start)))
	}
}

func clampKernel(nodeID int, g GraphView) float64 {
	start, _ := g.ParentRange(nodeID)
	x := g.Value(g.ParentID(start))
	lo := g.Value(g.ParentID(start + 1))
	hi := g.Value(g.ParentID(start + 2))
	return math.Max(lo, math.Min(hi, x))
}

func lerpKernel(nodeID int, g GraphView) float64 {
	start, _ := g.ParentRange(nodeID)
	a := g.Value(g.ParentID(start))
	b := g.Value(g.ParentID(start + 1))
	t := g.Value(g.ParentID(start + 2))
	return a + (b-a)*t
}
