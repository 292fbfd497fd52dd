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
	"encoding/binary"
	"hash/fnv"
	"math/big"
	"strconv"

	"github.com/consensys/gnark-crypto/field/koalabear"
)

// Bytes is the number of bytes used to encode a single element.
const Bytes = koalabear.Bytes

// Element of the KoalaBear prime field (p = 2^31 - 2^24 + 1).  Elements have
// value semantics, so they can be compared with == and used as map keys.
type Element struct {
	koalabear.Element
}

// Zero constructs a field element representing 0
func Zero() Element {
	return Element{}
}

// One constructs a field element representing 1
func One() Element {
	return Uint64(1)
}

// Uint64 constructs a field element from a given uint64, reducing it modulo p.
func Uint64(val uint64) Element {
	return Element{koalabear.NewElement(val)}
}

// Int64 constructs a field element from a signed value, such that negative
// values map to their additive inverse.
func Int64(val int64) Element {
	if val < 0 {
		return Uint64(uint64(-val)).Neg()
	}
	//
	return Uint64(uint64(val))
}

// Modulus returns the modulus for this field.
func Modulus() *big.Int {
	return koalabear.Modulus()
}

// Add x + y
func (x Element) Add(y Element) Element {
	var res koalabear.Element
	//
	res.Add(&x.Element, &y.Element)
	//
	return Element{res}
}

// Sub x - y
func (x Element) Sub(y Element) Element {
	var res koalabear.Element
	//
	res.Sub(&x.Element, &y.Element)
	//
	return Element{res}
}

// Mul x * y
func (x Element) Mul(y Element) Element {
	var res koalabear.Element
	//
	res.Mul(&x.Element, &y.Element)
	//
	return Element{res}
}

// Neg -x
func (x Element) Neg() Element {
	var res koalabear.Element
	//
	res.Neg(&x.Element)
	//
	return Element{res}
}

// Inverse x⁻¹, or 0 if x = 0.
func (x Element) Inverse() Element {
	var res koalabear.Element
	//
	res.Inverse(&x.Element)
	//
	return Element{res}
}

// Cmp returns 1 if x > y, 0 if x = y, and -1 if x < y.
func (x Element) Cmp(y Element) int {
	return x.Element.Cmp(&y.Element)
}

// IsZero checks whether this value is zero (or not).
func (x Element) IsZero() bool {
	return x.Element.IsZero()
}

// IsOne checks whether this value is one (or not).
func (x Element) IsOne() bool {
	return x.Element.IsOne()
}

// Uint64 returns the canonical (reduced) value of x.
func (x Element) Uint64() uint64 {
	return x.Element.Uint64()
}

// Bytes returns the big-endian encoding of the canonical value of x.
func (x Element) Bytes() []byte {
	var bytes [Bytes]byte
	//
	binary.BigEndian.PutUint32(bytes[:], uint32(x.Uint64()))
	//
	return bytes[:]
}

// FromBytes constructs an element from its big-endian encoding.
func FromBytes(bytes []byte) Element {
	return Uint64(uint64(binary.BigEndian.Uint32(bytes)))
}

// Equals implementation for the Hasher interface.
func (x Element) Equals(other Element) bool {
	return x == other
}

// Hash implementation for the Hasher interface.
func (x Element) Hash() uint64 {
	hash := fnv.New64a()
	hash.Write(x.Bytes())
	// Done
	return hash.Sum64()
}

// String returns the canonical value of x in decimal.
func (x Element) String() string {
	return strconv.FormatUint(x.Uint64(), 10)
}
