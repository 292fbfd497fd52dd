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
package hasher

import (
	"encoding/binary"
	"testing"

	"github.com/consensys/go-lair/pkg/field"
	"github.com/stretchr/testify/require"
	"lukechampine.com/blake3"
)

func Test_Hasher_01(t *testing.T) {
	check_Hasher(t, "poseidon2")
}

func Test_Hasher_02(t *testing.T) {
	check_Hasher(t, "blake3")
}

func Test_Blake3_01(t *testing.T) {
	var (
		h      = NewBlake3()
		digest = blake3.Sum256([]byte{0, 0, 0, 1, 0, 0, 0, 7})
		image  = h.Hash(field.Uints(7))
	)
	// Eight limbs covering the whole digest
	require.Equal(t, uint(len(digest)/4), h.ImageSize())
	require.Equal(t, field.Uint64(uint64(binary.BigEndian.Uint32(digest[28:]))), image[7])
}

func Test_Hasher_03(t *testing.T) {
	_, err := ByName("sha1")
	require.Error(t, err)
}

// ===================================================================
// Test Helpers
// ===================================================================

func check_Hasher(t *testing.T, name string) {
	h, err := ByName(name)
	require.NoError(t, err)
	require.Equal(t, name, h.Name())
	//
	preimages := []field.Tuple{
		{},
		field.Uints(1),
		field.Uints(0),
		field.Uints(1, 2, 3),
		field.Uints(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11),
	}
	//
	images := make([]field.Tuple, len(preimages))
	for i, p := range preimages {
		images[i] = h.Hash(p)
		// Deterministic
		require.Equal(t, images[i], h.Hash(p))
		require.Len(t, images[i], int(h.ImageSize()))
	}
	// Distinct preimages give distinct images
	for i := range images {
		for j := i + 1; j < len(images); j++ {
			require.False(t, images[i].Equals(images[j]), "%s and %s collide", preimages[i], preimages[j])
		}
	}
}
