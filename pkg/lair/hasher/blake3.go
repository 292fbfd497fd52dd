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

	"github.com/consensys/go-lair/pkg/field"
	"lukechampine.com/blake3"
)

// Size of a Blake3 digest in bytes.
const blake3DigestSize = 32

// Blake3 hashes the big-endian encoding of a preimage, splitting the 256-bit
// digest into eight 32-bit limbs reduced into the field.
type Blake3 struct{}

// NewBlake3 constructs a new Blake3 hasher.
func NewBlake3() *Blake3 {
	return &Blake3{}
}

// Name implementation for the Hasher interface.
func (p *Blake3) Name() string {
	return "blake3"
}

// ImageSize implementation for the Hasher interface.
func (p *Blake3) ImageSize() uint {
	return blake3DigestSize / 4
}

// Hash implementation for the Hasher interface.
func (p *Blake3) Hash(preimage []field.Element) field.Tuple {
	var (
		bytes = make([]byte, 0, 4+len(preimage)*field.Bytes)
		image = make(field.Tuple, p.ImageSize())
	)
	//
	bytes = binary.BigEndian.AppendUint32(bytes, uint32(len(preimage)))
	//
	for _, e := range preimage {
		bytes = append(bytes, e.Bytes()...)
	}
	//
	digest := blake3.Sum256(bytes)
	//
	for i := range image {
		image[i] = field.Uint64(uint64(binary.BigEndian.Uint32(digest[i*4:])))
	}
	//
	return image
}
