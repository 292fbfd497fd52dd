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
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/binfile"
	"github.com/consensys/go-lair/pkg/lair/chip"
	"github.com/consensys/go-lair/pkg/util/termio"
)

var checkpointCmd = &cobra.Command{
	Use:   "checkpoint",
	Short: "Manage stored checkpoints of query records.",
	Long: `Manage the checkpoints held in a checkpoint store (a sqlite database).  A
	checkpoint holds the record of one or more executions of a program.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cmd.UsageString())
	},
}

var checkpointListCmd = &cobra.Command{
	Use:   "list [flags] store.db",
	Short: "List the checkpoints held in a store.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			db      = OpenStore(args[0])
			program *[32]byte
		)
		//
		defer db.Close()
		//
		if filename := GetString(cmd, "program"); filename != "" {
			id := binfile.ProgramID(CompileSourceFile(cmd, filename).Source)
			program = &id
		}
		//
		infos, err := db.List(context.Background(), program)
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
		//
		table := termio.NewTablePrinter(5, 1+uint(len(infos)))
		//
		for i, h := range []string{"id", "program", "label", "bytes", "created"} {
			table.Set(uint(i), 0, h)
		}
		//
		for i, info := range infos {
			row := uint(i) + 1
			table.Set(0, row, info.ID.String())
			table.Set(1, row, hex.EncodeToString(info.Program[:8]))
			table.Set(2, row, info.Label)
			table.Set(3, row, fmt.Sprintf("%d", info.Size))
			table.Set(4, row, info.Created.Format("2006-01-02 15:04:05"))
		}
		//
		table.AnsiEscapes(false)
		table.Print(os.Stdout)
	},
}

var checkpointShowCmd = &cobra.Command{
	Use:   "show [flags] store.db id",
	Short: "Summarise a stored checkpoint.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		db := OpenStore(args[0])
		defer db.Close()
		//
		ckpt, err := db.Get(context.Background(), ParseID(args[1]))
		//
		if err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
		//
		snap := &ckpt.Record
		fmt.Printf("version: %d.%d\n", ckpt.Header.MajorVersion, ckpt.Header.MinorVersion)
		fmt.Printf("program: %s\n", hex.EncodeToString(ckpt.Header.MetaData))
		fmt.Printf("hasher: %s\n", snap.Hasher)
		fmt.Printf("entries: %d\n", len(snap.Entries))
		//
		for i, name := range snap.Functions {
			fmt.Printf("%s: %d entries\n", name, len(snap.Funcs[i]))
		}
		//
		for i, mem := range snap.Memory {
			fmt.Printf("memory table %d: %d entries\n", i, len(mem))
		}
		//
		for i, hashes := range snap.Hashes {
			fmt.Printf("hash table %d: %d entries\n", i, len(hashes))
		}
	},
}

var checkpointCheckCmd = &cobra.Command{
	Use:   "check [flags] store.db id program.lair",
	Short: "Check the traces generated from a stored checkpoint.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 3 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			program = CompileSourceFile(cmd, args[2])
			rec     = loadRecord(program, args[0], args[1])
		)
		//
		checkRecord(chip.NewMachine(program.Toplevel, GetMachineConfig(cmd)), rec)
	},
}

var checkpointDeleteCmd = &cobra.Command{
	Use:   "delete [flags] store.db id",
	Short: "Delete a stored checkpoint.",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		db := OpenStore(args[0])
		defer db.Close()
		//
		if err := db.Delete(context.Background(), ParseID(args[1])); err != nil {
			fmt.Println(err)
			os.Exit(3)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(checkpointCmd)
	checkpointCmd.AddCommand(checkpointListCmd, checkpointShowCmd, checkpointCheckCmd, checkpointDeleteCmd)
	checkpointListCmd.Flags().String("program", "", "only list checkpoints of a given program")
	addMachineFlags(checkpointCheckCmd)
}
