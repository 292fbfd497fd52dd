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
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/lair/layout"
	"github.com/consensys/go-lair/pkg/util/termio"
)

var widthCmd = &cobra.Command{
	Use:   "width [flags] program.lair",
	Short: "Print the column layout of every function in a lair program.",
	Long: `Print the number of input, output, auxiliary and selector columns required
	by every function of a lair program.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			program = CompileSourceFile(cmd, args[0])
			top     = program.Toplevel
			widths  = layout.NewCache(top, 0)
			table   = termio.NewTablePrinter(6, 1+top.Len())
		)
		//
		for i, h := range []string{"function", "input", "output", "aux", "sel", "total"} {
			table.Set(uint(i), 0, h)
		}
		//
		for i, fn := range top.Functions() {
			w := widths.Width(fn)
			row := uint(i) + 1
			//
			table.Set(0, row, fn.Name)
			//
			for j, n := range []uint{w.Input, w.Output, w.Aux, w.Sel, w.Total()} {
				table.Set(uint(j)+1, row, fmt.Sprintf("%d", n))
			}
		}
		//
		table.AnsiEscapes(false)
		table.Print(os.Stdout)
		//
		if GetFlag(cmd, "bytecode") {
			for _, fn := range top.Functions() {
				fmt.Println()
				fmt.Print(fn.String())
			}
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(widthCmd)
	widthCmd.Flags().Bool("bytecode", false, "also print the linked bytecode of every function")
}
