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
	"github.com/consensys/gnark-crypto/field/koalabear"
	"github.com/consensys/gnark-crypto/field/koalabear/poseidon2"
	"github.com/consensys/go-lair/pkg/field"
)

const (
	// Width of the Poseidon2 permutation state.
	poseidon2Width = 16
	// Number of state elements absorbed per permutation.
	poseidon2Rate = 8
	// Full and partial rounds for width 16 over KoalaBear.
	poseidon2FullRounds    = 6
	poseidon2PartialRounds = 21
)

// Poseidon2 is a sponge over the width-16 Poseidon2 permutation.  Images are
// the first eight elements of the final state.
type Poseidon2 struct {
	perm *poseidon2.Permutation
}

// NewPoseidon2 constructs a new Poseidon2 hasher.
func NewPoseidon2() *Poseidon2 {
	return &Poseidon2{poseidon2.NewPermutation(poseidon2Width, poseidon2FullRounds, poseidon2PartialRounds)}
}

// Name implementation for the Hasher interface.
func (p *Poseidon2) Name() string {
	return "poseidon2"
}

// ImageSize implementation for the Hasher interface.
func (p *Poseidon2) ImageSize() uint {
	return poseidon2Rate
}

// Hash implementation for the Hasher interface.
func (p *Poseidon2) Hash(preimage []field.Element) field.Tuple {
	var (
		state = make([]koalabear.Element, poseidon2Width)
		image = make(field.Tuple, poseidon2Rate)
	)
	// Length goes into the capacity, so preimages of different sizes never
	// collide through padding.
	state[poseidon2Width-1].SetUint64(uint64(len(preimage)))
	//
	for i := 0; i == 0 || i < len(preimage); i += poseidon2Rate {
		for j := 0; j < poseidon2Rate && i+j < len(preimage); j++ {
			state[j].Add(&state[j], &preimage[i+j].Element)
		}
		//
		if err := p.perm.Permutation(state); err != nil {
			// Only possible if the state has the wrong width
			panic(err)
		}
	}
	//
	for i := range image {
		image[i] = field.Element{Element: state[i]}
	}
	//
	return image
}
