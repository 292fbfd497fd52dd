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
package layout

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/consensys/go-lair/pkg/lair/bytecode"
	"github.com/consensys/go-lair/pkg/lair/toplevel"
)

// Cache memoizes the widths of the functions in a toplevel.  It is safe for
// concurrent use, such that trace generators running in parallel can share a
// single cache.
type Cache struct {
	top    *toplevel.Toplevel
	widths *lru.Cache[uint, Width]
}

// NewCache constructs a width cache for a given toplevel, holding at most size
// widths.  A size of zero holds every function.
func NewCache(top *toplevel.Toplevel, size uint) *Cache {
	if size == 0 {
		size = max(1, top.Len())
	}
	//
	widths, err := lru.New[uint, Width](int(size))
	// Only possible for a non-positive size
	if err != nil {
		panic(err)
	}
	//
	return &Cache{top, widths}
}

// Toplevel returns the toplevel whose widths are cached.
func (p *Cache) Toplevel() *toplevel.Toplevel {
	return p.top
}

// Width returns the width of a given function, computing it if necessary.
func (p *Cache) Width(fn *bytecode.Func) Width {
	if w, ok := p.widths.Get(fn.Index); ok {
		return w
	}
	//
	w := Of(p.top, fn)
	p.widths.Add(fn.Index, w)
	//
	return w
}
