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
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/lair/air"
	"github.com/consensys/go-lair/pkg/lair/chip"
	"github.com/consensys/go-lair/pkg/lair/record"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] program.lair function [args...]",
	Short: "Check the traces generated by executing a function of a lair program.",
	Long: `Execute a function of a lair program on a given set of arguments, generate
	the traces of every chip and check them against the machine's constraints,
	including the balance of all lookups.`,
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
		if GetFlag(cmd, "constraints") {
			printConstraints(machine)
		}
		//
		Run(rec, args[1], ParseArguments(args[2:]), GetExecConfig(cmd))
		checkRecord(machine, rec)
	},
}

// Check a record against a machine, reporting any failures and exiting.
func checkRecord(machine *chip.Machine, rec *record.QueryRecord) {
	var failure *chip.DebugError
	//
	err := machine.Check(rec)
	//
	if errors.As(err, &failure) {
		fmt.Println(failure.Error())
		os.Exit(1)
	} else if err != nil {
		fmt.Println(err)
		os.Exit(4)
	}
	//
	fmt.Println("ok")
}

// Print the constraints and interactions of every chip symbolically.
func printConstraints(machine *chip.Machine) {
	for _, c := range machine.Chips() {
		var builder air.SymbolicBuilder
		//
		c.Eval(&builder)
		fmt.Printf("%s (degree %d):\n", c.Name(), builder.Degree())
		//
		if err := builder.Write(os.Stdout, c.Columns()); err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
		//
		fmt.Println()
	}
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkCmd)
	addExecFlags(checkCmd)
	addMachineFlags(checkCmd)
	checkCmd.Flags().Bool("constraints", false, "print the constraints of every chip")
}
