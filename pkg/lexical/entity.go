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
	"fmt"
)

// Element is an opaque handle to a client AST node.  Elements are owned by
// the host; the engine never frees them.  A nil Element is the "no element"
// sentinel, both as an entry payload and as the origin of a lookup.
type Element interface {
	// CanReach determines whether a declaration attached to this element is
	// visible from a given origin.  The engine treats the relation as opaque,
	// except that a nil origin always behaves as reachable (callers disable
	// filtering by passing a nil origin).
	CanReach(from Element) bool
}

// Metadata is a small value-typed decoration attached to map entries and to
// environments.  A nil Metadata is the empty decoration; Combine must be
// associative with nil as its identity, though the engine never passes nil
// operands itself.
type Metadata interface {
	// Combine this metadata with another, producing their composition.
	Combine(other Metadata) Metadata
	// Equal checks whether two metadata values are the same.
	Equal(other Metadata) bool
}

// combineMetadata composes two metadata values, short-circuiting the empty
// cases so client Combine implementations never see nil.
func combineMetadata(a, b Metadata) Metadata {
	if a == nil {
		return b
	} else if b == nil {
		return a
	}
	//
	return a.Combine(b)
}

// metadataEqual compares two metadata values, treating nil as only equal to
// itself.
func metadataEqual(a, b Metadata) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	//
	return a.Equal(b)
}

// EntityInfo decorates an element resolved by a lookup: the combined metadata
// of the hit, along with the rebindings under which it was found.  The zero
// value is the identity decoration.
type EntityInfo struct {
	// Combined metadata for this entity.
	Metadata Metadata
	// Rebindings under which the entity was resolved.  The info holds one
	// share of the chain.
	Rebindings *Rebindings
}

// IsNull determines whether this is the identity decoration.
func (p EntityInfo) IsNull() bool {
	return p.Metadata == nil && p.Rebindings == nil
}

// Equal checks whether two entity infos agree on both metadata and
// rebindings.
func (p EntityInfo) Equal(other EntityInfo) bool {
	return metadataEqual(p.Metadata, other.Metadata) &&
		EquivalentRebindings(p.Rebindings, other.Rebindings)
}

// Entity is the observable result of a lookup: an element together with its
// decoration.  Entities returned by Get are owned by the caller, who must
// Release them once done.
type Entity struct {
	// Element this entity denotes.
	Element Element
	// Decoration attached during lookup.
	Info EntityInfo
}

// Release gives up the rebindings share held by this entity.
func (p *Entity) Release() {
	p.Info.Rebindings.DecRef()
	p.Info.Rebindings = nil
}

func (p *Entity) String() string {
	return fmt.Sprintf("<%v %s>", p.Element, p.Info.Rebindings.String())
}

// ReleaseEntities releases every entity of a lookup result.
func ReleaseEntities(entities []Entity) {
	for i := range entities {
		entities[i].Release()
	}
}

// EntityResolver is an optional per-entry hook: given the preliminary entity
// constructed for an entry, it produces the entity actually returned.  The
// resolver consumes the preliminary entity's shares and is responsible for
// any rebinding bookkeeping on its return value.  It may itself invoke the
// engine.
type EntityResolver func(Entity) (Entity, error)

// EnvResolver resolves an entity to a lexical environment, returning a fresh
// owned reference.
type EnvResolver func(Entity) (*Env, error)

// canReach evaluates the host reachability predicate, applying the engine's
// nil conventions: a nil origin disables filtering, and a nil element is
// always considered reachable.
func canReach(element, from Element) bool {
	if element == nil || from == nil {
		return true
	}
	//
	return element.CanReach(from)
}
