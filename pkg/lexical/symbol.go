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
package lexical

import (
	"hash/fnv"
)

// Symbol is an interned identifier.  Symbols are produced by a SymbolTable
// and compared by pointer identity; two symbols interned in the same table
// are equal exactly when their names are equal.  The engine only ever borrows
// symbols, it never owns them.
type Symbol struct {
	// Name of this symbol.
	name string
	// Precomputed hashcode, so lookups never rehash the name.
	hash uint64
}

// Name returns the name this symbol was interned under.
func (p *Symbol) Name() string {
	return p.name
}

// Hash returns the precomputed hashcode for this symbol.
func (p *Symbol) Hash() uint64 {
	return p.hash
}

// Equals checks whether two symbols are the same interned symbol.
func (p *Symbol) Equals(other *Symbol) bool {
	return p == other
}

func (p *Symbol) String() string {
	return p.name
}

// SymbolTable interns identifier names, handing out pointer-identity symbols.
// Tables are owned by the host; environments keyed on symbols from one table
// must not be queried with symbols from another.
type SymbolTable struct {
	index map[string]*Symbol
}

// NewSymbolTable constructs an empty symbol table.
func NewSymbolTable() *SymbolTable {
	return &SymbolTable{index: make(map[string]*Symbol)}
}

// Intern returns the unique symbol for a given name, creating it on first
// use.
func (p *SymbolTable) Intern(name string) *Symbol {
	if sym, ok := p.index[name]; ok {
		return sym
	}
	//
	hasher := fnv.New64a()
	hasher.Write([]byte(name))
	//
	sym := &Symbol{name, hasher.Sum64()}
	p.index[name] = sym
	//
	return sym
}

// Find returns the symbol for a given name, if one has been interned.
func (p *SymbolTable) Find(name string) (*Symbol, bool) {
	sym, ok := p.index[name]
	return sym, ok
}

// Size returns the number of symbols interned so far.
func (p *SymbolTable) Size() uint {
	return uint(len(p.index))
}
