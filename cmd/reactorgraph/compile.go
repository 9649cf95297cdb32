package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kessler-tait/reactorgraph/graph"
	"github.com/kessler-tait/reactorgraph/internal/metrics"
)

var compileListenAddr string

var compileCmd = &cobra.Command{
	Use:   "compile <topology.yaml>",
	Short: "Validate a topology file and print its compiled shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		defs, registry, err := loadTopology(args[0])
		if err != nil {
			return err
		}

		reg := metrics.NewRegistry()
		if compileListenAddr != "" {
			go serveMetrics(compileListenAddr, reg)
		}

		start := time.Now()
		g, err := graph.Compile(defs, registry)
		seconds := time.Since(start).Seconds()
		if err != nil {
			reg.RecordCompile("failure", seconds)
			return fmt.Errorf("compile failed: %w", err)
		}
		reg.RecordCompile("success", seconds)

		fmt.Println(g.MemoryFootprint())
		fmt.Println("compute order:")
		for _, id := range g.ComputeOrder() {
			fmt.Printf("  %s = %s\n", g.NodeName(id), g.Operation(id))
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&compileListenAddr, "listen", "", "serve Prometheus metrics on this address (e.g. :9090) while compiling")
}
