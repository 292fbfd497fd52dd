// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"math"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/lair/chip"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/trace"
	"github.com/consensys/go-lair/pkg/util/termio"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] program.lair function [args...]",
	Short: "Print the traces generated by executing a function of a lair program.",
	Long: `Execute a function of a lair program on a given set of arguments, and print
	the traces generated for every chip of the machine.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			program = CompileSourceFile(cmd, args[0])
			rec     = record.New(program.Toplevel)
			machine = chip.NewMachine(program.Toplevel, GetMachineConfig(cmd))
		)
		//
		Run(rec, args[1], ParseArguments(args[2:]), GetExecConfig(cmd))
		//
		shards, err := machine.Generate(rec)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(4)
		}
		//
		printer := trace.NewPrinter().
			Start(GetUint(cmd, "start")).
			End(GetUint(cmd, "end")).
			MaxCellWidth(GetUint(cmd, "max-width")).
			AnsiEscapes(termio.IsTerminal(os.Stdout) && !GetFlag(cmd, "no-color"))
		//
		printTraces(shards, GetString(cmd, "chip"), printer)
	},
}

func printTraces(shards []chip.Shard, name string, printer *trace.Printer) {
	for _, s := range shards {
		for _, t := range s.Traces {
			if name != "" && t.Chip.Name() != name {
				continue
			}
			//
			fmt.Printf("shard %d: %s (%d rows)\n", s.Index, t.Chip.Name(), t.Matrix.Height())
			printer.Names(t.Chip.Columns()).Print(os.Stdout, t.Matrix)
			fmt.Println()
		}
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(traceCmd)
	addExecFlags(traceCmd)
	addMachineFlags(traceCmd)
	traceCmd.Flags().String("chip", "", "only print the trace of a given chip")
	traceCmd.Flags().Uint("start", 0, "first row to print")
	traceCmd.Flags().Uint("end", math.MaxUint, "last row to print")
	traceCmd.Flags().Uint("max-width", 32, "maximum width of a printed cell")
	traceCmd.Flags().Bool("no-color", false, "disable colored output")
}
