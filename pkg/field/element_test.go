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
package field

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Element_01(t *testing.T) {
	// Inverse of zero is zero
	require.True(t, Zero().Inverse().IsZero())
	require.True(t, One().Inverse().IsOne())
}

func Test_Element_02(t *testing.T) {
	for range 1000 {
		x := Uint64(rand.Uint64())
		//
		if x.IsZero() {
			continue
		}
		//
		require.True(t, x.Mul(x.Inverse()).IsOne(), "%s * %s⁻¹", x, x)
		require.True(t, x.Add(x.Neg()).IsZero())
		require.Equal(t, x, x.Sub(One()).Add(One()))
	}
}

func Test_Element_03(t *testing.T) {
	require.Equal(t, Modulus().Uint64()-1, Int64(-1).Uint64())
	require.Equal(t, uint64(5), Int64(5).Uint64())
}

func Test_Element_04(t *testing.T) {
	for range 100 {
		x := Uint64(rand.Uint64())
		require.Equal(t, x, FromBytes(x.Bytes()))
	}
}

func Test_BatchInvert_01(t *testing.T) {
	s := make([]Element, 4000)
	expected := make([]Element, len(s))
	//
	for i := range s {
		// Sprinkle zeros in
		if i%7 != 0 {
			s[i] = Uint64(rand.Uint64())
		}
		//
		expected[i] = s[i].Inverse()
	}
	//
	BatchInvert(s)
	require.Equal(t, expected, s)
}

func Test_Tuple_01(t *testing.T) {
	a := Uints(1, 2, 3)
	b := Uints(1, 2, 3)
	c := Uints(1, 2)
	//
	require.True(t, a.Equals(b))
	require.Equal(t, a.Hash(), b.Hash())
	require.False(t, a.Equals(c))
	require.Equal(t, "(1 2 3)", a.String())
}
