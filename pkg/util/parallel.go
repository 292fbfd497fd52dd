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
package util

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelRange invokes a function on every index in [0,n), dividing the range
// into contiguous chunks which are processed concurrently by at most one
// goroutine per CPU.  The function must be safe to call concurrently for
// distinct indices.  The first error encountered (if any) is returned.
func ParallelRange(n uint, fn func(uint) error) error {
	var (
		group   errgroup.Group
		workers = min(n, uint(runtime.NumCPU()))
	)
	//
	if n == 0 {
		return nil
	}
	//
	chunk := (n + workers - 1) / workers
	//
	for lo := uint(0); lo < n; lo += chunk {
		hi := min(n, lo+chunk)
		//
		group.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := fn(i); err != nil {
					return err
				}
			}
			//
			return nil
		})
	}
	//
	return group.Wait()
}

// ParallelMap applies a function to every item of a slice concurrently,
// returning the results in order.
func ParallelMap[S any, T any](items []S, fn func(S) (T, error)) ([]T, error) {
	var (
		group   errgroup.Group
		results = make([]T, len(items))
	)
	//
	group.SetLimit(runtime.NumCPU())
	//
	for i, item := range items {
		group.Go(func() (err error) {
			results[i], err = fn(item)
			return err
		})
	}
	//
	if err := group.Wait(); err != nil {
		return nil, err
	}
	//
	return results, nil
}
