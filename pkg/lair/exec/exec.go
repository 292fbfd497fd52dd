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
package exec

import (
	"errors"
	"fmt"
	"io"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/consensys/go-lair/pkg/lair/record"
)

// Mode determines which evaluator is used.  Both produce identical outputs and
// identical records.
type Mode uint8

const (
	// RECURSIVE evaluates calls using the native call stack.
	RECURSIVE Mode = iota
	// ITERATIVE evaluates calls using an explicit stack of frames, and is not
	// limited by the depth of the native call stack.
	ITERATIVE
)

// ParseMode converts the name of a mode into the mode itself.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "recursive":
		return RECURSIVE, nil
	case "iterative":
		return ITERATIVE, nil
	}
	//
	return 0, fmt.Errorf("unknown evaluation mode %q", name)
}

func (m Mode) String() string {
	if m == ITERATIVE {
		return "iterative"
	}
	//
	return "recursive"
}

// Config determines how an execution proceeds.
type Config struct {
	Mode Mode
	// Maximum number of operations and controls evaluated, or zero for no
	// limit.
	MaxSteps uint
	// Destination of debug messages, or nil to discard them.
	Debug io.Writer
}

// DefaultConfig returns the configuration used in the absence of anything
// else.
func DefaultConfig() Config {
	return Config{Mode: RECURSIVE}
}

// ErrStepLimit is returned when an execution exceeds its step limit.  In such
// case, the record is rolled back to its state before the execution began.
var ErrStepLimit = errors.New("step limit exceeded")

// Fault is raised (as a panic) when execution reaches a state which linked
// bytecode should never reach, or when an assertion fails.  There is no
// sensible way to continue from such a state since the record is no longer
// consistent.
type Fault struct {
	// Function in which the fault arose
	Func string
	// Description of the fault
	Msg string
}

func (p Fault) Error() string {
	return fmt.Sprintf("fault in %s: %s", p.Func, p.Msg)
}

// Execute calls a named function on a given set of arguments, recording every
// call made into the given record.  The call itself is recorded as an entry
// point of the record.
func Execute(rec *record.QueryRecord, name string, args field.Tuple, cfg Config) (output field.Tuple, err error) {
	var top = rec.Toplevel()
	//
	fn, ok := top.Get(name)
	//
	if !ok {
		return nil, fmt.Errorf("unknown function %s", name)
	} else if uint(len(args)) != fn.InputSize {
		return nil, fmt.Errorf("%s expects %d arguments, found %d", name, fn.InputSize, len(args))
	}
	//
	var (
		eval = &evaluator{top: top, rec: rec, config: cfg}
		save *record.Savepoint
	)
	// Only a step limit can abort an execution without faulting
	if cfg.MaxSteps != 0 {
		save = rec.Savepoint()
	}
	// Catch step limit
	defer func() {
		if r := recover(); r != nil {
			if r != errStepLimit {
				panic(r)
			}
			//
			rec.Rollback(save)
			output, err = nil, ErrStepLimit
		}
	}()
	//
	if cfg.Mode == ITERATIVE {
		output = eval.iterative(fn.Index, args.Clone())
	} else {
		output = eval.recursive(fn.Index, args.Clone())
	}
	//
	rec.AddEntry(fn.Index, args, output)
	//
	return output, nil
}

// ExecuteAll executes a sequence of calls against the same record, stopping at
// the first error.
func ExecuteAll(rec *record.QueryRecord, name string, args []field.Tuple, cfg Config) ([]field.Tuple, error) {
	outputs := make([]field.Tuple, len(args))
	//
	for i, arg := range args {
		out, err := Execute(rec, name, arg, cfg)
		//
		if err != nil {
			return nil, err
		}
		//
		outputs[i] = out
	}
	//
	return outputs, nil
}
