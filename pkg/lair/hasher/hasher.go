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
	"fmt"

	"github.com/consensys/go-lair/pkg/field"
)

// Hasher is the content-addressing capability available to programs through
// the hash operation.  It compresses a tuple of any (fixed) size into an image
// of constant size.  Implementations must be deterministic and safe for
// concurrent use.
type Hasher interface {
	// Name returns a short identifier for this hasher.
	Name() string
	// ImageSize returns the number of elements in every image.
	ImageSize() uint
	// Hash computes the image of a given preimage.
	Hash(preimage []field.Element) field.Tuple
}

// ByName constructs one of the builtin hashers from its name.
func ByName(name string) (Hasher, error) {
	switch name {
	case "poseidon2":
		return NewPoseidon2(), nil
	case "blake3":
		return NewBlake3(), nil
	default:
		return nil, fmt.Errorf("unknown hasher \"%s\"", name)
	}
}
