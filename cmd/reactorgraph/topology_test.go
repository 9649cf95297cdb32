package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/kessler-tait/reactorgraph/graph"
)

const sampleTopology = `
nodes:
  - name: x
    kind: input
    value: 2
  - name: y
    kind: input
    value: 3
  - name: sum
    kind: compute
    op: SUM
    parents: [x, y]
  - name: avg3
    kind: compute
    op: MYAVG
    parents: [x]

sma:
  - operation: MYAVG
    lookback: 3
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "topology.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTopology(t *testing.T) {
	path := writeTemp(t, sampleTopology)
	defs, registry, err := loadTopology(path)
	assert.NoError(t, err)
	assert.Equal(t, 4, len(defs))
	assert.True(t, registry.Has("MYAVG"))

	g, err := graph.Compile(defs, registry)
	assert.NoError(t, err)
	v, err := g.GetValue("x")
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)
}

func TestLoadTopologyUnknownKind(t *testing.T) {
	path := writeTemp(t, "nodes:\n  - name: x\n    kind: bogus\n")
	_, _, err := loadTopology(path)
	assert.Error(t, err)
}

func TestParseSetFlag(t *testing.T) {
	name, value, err := parseSetFlag("x=5.5")
	assert.NoError(t, err)
	assert.Equal(t, "x", name)
	assert.Equal(t, 5.5, value)

	_, _, err = parseSetFlag("bad")
	assert.Error(t, err)
}
