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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/binfile"
	"github.com/consensys/go-lair/pkg/lair/record"
)

var executeCmd = &cobra.Command{
	Use:     "execute [flags] program.lair function [args...]",
	Short:   "Execute a function of a lair program.",
	Long:    `Execute a function of a lair program on a given set of arguments, printing its outputs.`,
	Aliases: []string{"exec"},
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) < 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		var (
			program = CompileSourceFile(cmd, args[0])
			dbpath  = GetString(cmd, "store")
			rec     = loadRecord(program, dbpath, GetString(cmd, "from"))
			input   = ParseArguments(args[2:])
			output  = Run(rec, args[1], input, GetExecConfig(cmd))
		)
		//
		fmt.Printf("%s%s = %s\n", args[1], input, output)
		//
		if GetFlag(cmd, "stats") {
			fmt.Print(rec.Stats().String())
		}
		//
		if dbpath != "" {
			saveRecord(program, dbpath, GetString(cmd, "label"), rec)
		}
	},
}

// Load the record to extend, which is either empty or restored from a
// checkpoint.
func loadRecord(program *Program, dbpath string, from string) *record.QueryRecord {
	if from == "" {
		return record.New(program.Toplevel)
	} else if dbpath == "" {
		fmt.Println("--from requires --store")
		os.Exit(2)
	}
	//
	db := OpenStore(dbpath)
	defer db.Close()
	//
	ckpt, err := db.Get(context.Background(), ParseID(from))
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	} else if !ckpt.Matches(program.Source) {
		fmt.Printf("checkpoint %s was not taken for %s\n", from, program.Filename)
		os.Exit(3)
	}
	//
	rec, err := ckpt.Restore(program.Toplevel)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return rec
}

func saveRecord(program *Program, dbpath string, label string, rec *record.QueryRecord) {
	db := OpenStore(dbpath)
	defer db.Close()
	//
	if label == "" {
		label = program.Filename
	}
	//
	id, err := db.Put(context.Background(), label, binfile.NewCheckpoint(program.Source, rec))
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	fmt.Printf("checkpoint %s\n", id)
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(executeCmd)
	addExecFlags(executeCmd)
	executeCmd.Flags().Bool("stats", false, "print statistics of the resulting record")
	executeCmd.Flags().String("store", "", "checkpoint store (sqlite database) in which to save the record")
	executeCmd.Flags().String("label", "", "label of the saved checkpoint (defaults to the program file)")
	executeCmd.Flags().String("from", "", "identifier of a stored checkpoint to extend")
}
