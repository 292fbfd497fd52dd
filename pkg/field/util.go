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

// BatchInvert inverts the elements of s in place using a single field
// inversion.  Zero entries are left as zero.
func BatchInvert(s []Element) {
	if len(s) == 0 {
		return
	}
	//
	var (
		n = len(s)
		// m[i] = s[i] * s[i+1] * ... (treating zeros as one)
		m = make([]Element, n)
		// identifies entries which are zero
		isZero = make([]bool, n)
	)
	//
	for i := n - 1; i >= 0; i-- {
		isZero[i] = s[i].IsZero()
		//
		if isZero[i] {
			s[i] = One()
		}
		//
		if i == n-1 {
			m[i] = s[i]
		} else {
			m[i] = m[i+1].Mul(s[i])
		}
	}
	// inv = s[0]⁻¹ * s[1]⁻¹ * ...
	inv := m[0].Inverse()
	//
	for i := range n - 1 {
		next := inv.Mul(s[i])
		s[i] = inv.Mul(m[i+1])
		inv = next
	}
	//
	s[n-1] = inv
	//
	for i := range n {
		if isZero[i] {
			s[i] = Zero()
		}
	}
}
