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
package sexp

import (
	"strings"
)

// SExp is an S-Expression: either a List of zero or more S-Expressions, or a
// Symbol.
type SExp interface {
	// AsList checks whether this S-Expression is a list and, if so, returns
	// it.  Otherwise, it returns nil.
	AsList() *List
	// AsSymbol checks whether this S-Expression is a symbol and, if so,
	// returns it.  Otherwise, it returns nil.
	AsSymbol() *Symbol
	// String generates a string representation.
	String() string
}

// ===================================================================
// List
// ===================================================================

// List represents a list of zero or more S-Expressions.
type List struct {
	Elements []SExp
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*List)(nil)

// NewList creates a new list from a given array of S-Expressions.
func NewList(elements []SExp) *List {
	return &List{elements}
}

// AsList returns the given list.
func (l *List) AsList() *List { return l }

// AsSymbol returns nil for a list.
func (l *List) AsSymbol() *Symbol { return nil }

// Len gets the number of elements in this list.
func (l *List) Len() int { return len(l.Elements) }

// Get the ith element of this list
func (l *List) Get(i int) SExp { return l.Elements[i] }

// MatchSymbols matches a list which starts with at least n symbols, of which
// the first m match the given strings.
func (l *List) MatchSymbols(n int, symbols ...string) bool {
	if len(l.Elements) < n || len(symbols) > n {
		return false
	}

	for i := 0; i < n; i++ {
		switch ith := l.Elements[i].(type) {
		case *Symbol:
			if i < len(symbols) && ith.Value != symbols[i] {
				return false
			}
		default:
			return false
		}
	}

	return true
}

func (l *List) String() string {
	var s strings.Builder
	//
	s.WriteString("(")
	//
	for i, e := range l.Elements {
		if i != 0 {
			s.WriteString(" ")
		}
		//
		s.WriteString(e.String())
	}
	//
	s.WriteString(")")
	//
	return s.String()
}

// ===================================================================
// Symbol
// ===================================================================

// Symbol represents a terminal symbol, such as a name or a number.
type Symbol struct {
	Value string
}

// NOTE: This is used for compile time type checking if the given type
// satisfies the given interface.
var _ SExp = (*Symbol)(nil)

// NewSymbol creates a new symbol from a given string.
func NewSymbol(value string) *Symbol {
	return &Symbol{value}
}

// AsList returns nil for a symbol.
func (s *Symbol) AsList() *List { return nil }

// AsSymbol returns the given symbol.
func (s *Symbol) AsSymbol() *Symbol { return s }

func (s *Symbol) String() string {
	return s.Value
}
