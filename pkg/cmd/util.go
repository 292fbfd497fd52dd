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
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/chip"
	"github.com/consensys/go-lair/pkg/lair/exec"
	"github.com/consensys/go-lair/pkg/lair/hasher"
	"github.com/consensys/go-lair/pkg/lair/record"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
	"github.com/consensys/go-lair/pkg/store"
	"github.com/consensys/go-lair/pkg/util/source"
)

// GetFlag gets an expected flag, or panic if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetUint gets an expected unsigned integer, or panic if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// GetString gets an expected string, or panic if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// Program is a compiled lair source file, along with its source.
type Program struct {
	Filename string
	Source   []byte
	Toplevel *toplevel.Toplevel
}

// CompileSourceFile reads and links a given lair source file, using the hasher
// selected on the command line.  Any errors are reported, and cause the
// process to exit.
func CompileSourceFile(cmd *cobra.Command, filename string) *Program {
	hash, err := hasher.ByName(GetString(cmd, "hasher"))
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	log.Debug(fmt.Sprintf("compiling source file %s", filename))
	// Read source file
	bytes, err := os.ReadFile(filename)
	// Sanity check for errors
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	top, errors := toplevel.Compile(source.NewSourceFile(filename, bytes), hash)
	// Check for errors
	if len(errors) != 0 {
		// Report errors
		for _, err := range errors {
			if e, ok := err.(*source.SyntaxError); ok {
				printSyntaxError(e)
			} else {
				fmt.Printf("%s: %s\n", filename, err)
			}
		}
		// Fail
		os.Exit(4)
	}
	// Done
	return &Program{filename, bytes, top}
}

// ParseArguments parses the arguments for a call, given as (signed) decimal
// integers.
func ParseArguments(args []string) field.Tuple {
	tuple := make(field.Tuple, len(args))
	//
	for i, arg := range args {
		val, err := strconv.ParseInt(arg, 10, 64)
		//
		if err != nil {
			fmt.Printf("invalid argument \"%s\"\n", arg)
			os.Exit(2)
		}
		//
		tuple[i] = field.Int64(val)
	}
	//
	return tuple
}

// GetExecConfig constructs the execution configuration from the command line.
func GetExecConfig(cmd *cobra.Command) exec.Config {
	mode, err := exec.ParseMode(GetString(cmd, "mode"))
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	config := exec.Config{Mode: mode, MaxSteps: GetUint(cmd, "max-steps")}
	//
	if GetFlag(cmd, "debug") {
		config.Debug = os.Stderr
	}
	//
	return config
}

// GetMachineConfig constructs the machine configuration from the command line.
func GetMachineConfig(cmd *cobra.Command) chip.Config {
	return chip.Config{ShardSize: GetUint(cmd, "shard-size"), Parallel: !GetFlag(cmd, "sequential")}
}

// Run a call to a given function of a program, reporting any failure and
// exiting.  On success, the output of the call is returned.
func Run(rec *record.QueryRecord, name string, args field.Tuple, config exec.Config) field.Tuple {
	var (
		output field.Tuple
		err    error
	)
	//
	func() {
		// Faults are reported as errors
		defer func() {
			if r := recover(); r != nil {
				if f, ok := r.(exec.Fault); ok {
					err = f
				} else {
					panic(r)
				}
			}
		}()
		//
		output, err = exec.Execute(rec, name, args, config)
	}()
	//
	if err != nil {
		fmt.Printf("%s%s: %s\n", name, args, err)
		os.Exit(4)
	}
	//
	return output
}

// OpenStore opens the checkpoint store at a given path, exiting on failure.
func OpenStore(path string) *store.Store {
	db, err := store.Open(context.Background(), path)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}
	//
	return db
}

// ParseID parses a checkpoint identifier, exiting on failure.
func ParseID(str string) store.ID {
	id, err := store.ParseID(str)
	//
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return id
}

// Print a syntax error with appropriate highlighting.
func printSyntaxError(err *source.SyntaxError) {
	var (
		span = err.Span()
		line = err.FirstEnclosingLine()
	)
	// Print error + line number
	fmt.Printf("%s:%d:%d %s\n", err.SourceFile().Filename(), line.Number(), 1+max(0, span.Start()-line.Start()),
		err.Message())
	// Print separator line
	fmt.Println()
	// Print line and highlight
	fmt.Println(err.Highlight())
}

// Register flags determining how programs are executed.
//
//nolint:errcheck
func addExecFlags(cmd *cobra.Command) {
	cmd.Flags().String("mode", "recursive", "evaluation mode (recursive or iterative)")
	cmd.Flags().Uint("max-steps", 0, "maximum number of steps per call (0 is unlimited)")
	cmd.Flags().Bool("debug", false, "print debug messages to stderr")
}

// Register flags determining how the machine is configured.
//
//nolint:errcheck
func addMachineFlags(cmd *cobra.Command) {
	cmd.Flags().Uint("shard-size", chip.DefaultConfig().ShardSize, "maximum rows per table in a shard (0 disables sharding)")
	cmd.Flags().Bool("sequential", false, "disable parallel trace generation and checking")
}
