package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kessler-tait/reactorgraph/calc"
	"github.com/kessler-tait/reactorgraph/graph"
)

// topologyFile is the YAML shape accepted by the compile/run/bench
// subcommands, grounded on the config.yaml-driven cobra wiring in
// jinterlante1206-AleutianLocal's cmd/aleutian/main.go: a single
// declarative file loaded once at startup via gopkg.in/yaml.v3.
type topologyFile struct {
	Nodes []nodeSpec `yaml:"nodes"`
	SMA   []smaSpec  `yaml:"sma"`
}

type nodeSpec struct {
	Name    string   `yaml:"name"`
	Kind    string   `yaml:"kind"` // "input" or "compute"
	Value   float64  `yaml:"value"`
	Op      string   `yaml:"op"`
	Parents []string `yaml:"parents"`
}

// smaSpec registers an additional SMA(lookback) operation under a
// caller-chosen name before compiling, since SMA's window length is a
// per-registration parameter rather than a fixed builtin arity.
type smaSpec struct {
	Operation string `yaml:"operation"`
	Lookback  int    `yaml:"lookback"`
}

func loadTopology(path string) ([]graph.NodeDefinition, *calc.Registry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading topology file: %w", err)
	}

	var tf topologyFile
	if err := yaml.Unmarshal(raw, &tf); err != nil {
		return nil, nil, fmt.Errorf("parsing topology file: %w", err)
	}

	registry := calc.NewStandard()
	for _, sma := range tf.SMA {
		factory, err := calc.NewSMAFactory(sma.Lookback)
		if err != nil {
			return nil, nil, fmt.Errorf("sma operation %q: %w", sma.Operation, err)
		}
		if err := registry.RegisterFixed(sma.Operation, 1, factory, true, fmt.Sprintf("SMA(%d)", sma.Lookback)); err != nil {
			return nil, nil, fmt.Errorf("sma operation %q: %w", sma.Operation, err)
		}
	}

	defs := make([]graph.NodeDefinition, 0, len(tf.Nodes))
	for _, n := range tf.Nodes {
		switch n.Kind {
		case "input":
			defs = append(defs, graph.Input(n.Name, n.Value))
		case "compute":
			defs = append(defs, graph.Compute(n.Name, n.Op, n.Parents...))
		default:
			return nil, nil, fmt.Errorf("node %q: unknown kind %q, want \"input\" or \"compute\"", n.Name, n.Kind)
		}
	}
	return defs, registry, nil
}
