package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kessler-tait/reactorgraph/calc"
)

// opsCmd lists the standard operation registry, mirroring
// CalculatorRegistry.printOperations's sorted listing in the original
// hybrid graph engine.
var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the standard operation registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, op := range calc.NewStandard().Operations() {
			arity := "variadic"
			if op.Arity != calc.Variadic {
				arity = fmt.Sprintf("%d", op.Arity)
			}
			stateful := ""
			if op.Stateful {
				stateful = " [stateful]"
			}
			fmt.Printf("%-10s arity=%-9s %s%s\n", op.Name, arity, op.Description, stateful)
		}
		return nil
	},
}
