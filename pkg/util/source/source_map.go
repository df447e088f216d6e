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
package source

// Span represents a contiguous slice of the original string.  Instead of
// representing this as a string slice, however, it is useful to retain the
// physical indices.  This allows us to do certain things, such as determine
// the enclosing line, etc.
type Span struct {
	// The first character of this span in the original string.
	start int
	// One past the final character of this span in the original string.
	end int
}

// NewSpan constructs a new span whilst checking the internal invariants are
// maintained.
func NewSpan(start int, end int) Span {
	if start > end {
		panic("invalid span")
	}

	return Span{start, end}
}

// Start returns the starting index of this span in the original string.
func (p *Span) Start() int {
	return p.start
}

// End returns one past the last index of this span in the original string.
func (p *Span) End() int {
	return p.end
}

// Length returns the number of characters covered by this span in the
// original string.
func (p *Span) Length() int {
	return p.end - p.start
}

// Map maps terms constructed by a parser to their spans in the original
// source file, so that errors arising in later phases can still be reported
// against the text they came from.
type Map[T comparable] struct {
	srcfile *File
	mapping map[T]Span
}

// NewSourceMap constructs an initially empty source map for a given file.
func NewSourceMap[T comparable](srcfile *File) *Map[T] {
	return &Map[T]{srcfile, make(map[T]Span)}
}

// Put registers the span for a new term.
func (p *Map[T]) Put(term T, span Span) {
	p.mapping[term] = span
}

// Has checks whether a given term is mapped.
func (p *Map[T]) Has(term T) bool {
	_, ok := p.mapping[term]
	return ok
}

// Get returns the span for a given term, defaulting to the empty span at the
// file start for unmapped terms.
func (p *Map[T]) Get(term T) Span {
	return p.mapping[term]
}

// SyntaxError constructs a syntax error for a given term, reported against
// the span it originated from.
func (p *Map[T]) SyntaxError(term T, msg string) *SyntaxError {
	return p.srcfile.SyntaxError(p.Get(term), msg)
}
