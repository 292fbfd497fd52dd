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
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ParallelRange_01(t *testing.T) {
	for _, n := range []uint{0, 1, 7, 100, 1023} {
		var (
			hits  = make([]uint32, n)
			total atomic.Uint64
		)
		//
		err := ParallelRange(n, func(i uint) error {
			atomic.AddUint32(&hits[i], 1)
			total.Add(uint64(i))
			//
			return nil
		})
		//
		require.NoError(t, err)
		//
		for i := range hits {
			require.Equal(t, uint32(1), hits[i])
		}
		//
		if n > 0 {
			require.Equal(t, uint64(n*(n-1)/2), total.Load())
		}
	}
}

func Test_ParallelRange_02(t *testing.T) {
	err := ParallelRange(50, func(i uint) error {
		if i == 17 {
			return errors.New("failed")
		}
		//
		return nil
	})
	//
	require.EqualError(t, err, "failed")
}

func Test_ParallelMap_01(t *testing.T) {
	squares, err := ParallelMap([]uint{1, 2, 3, 4}, func(i uint) (uint, error) { return i * i, nil })
	//
	require.NoError(t, err)
	require.Equal(t, []uint{1, 4, 9, 16}, squares)
}
