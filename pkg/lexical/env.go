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

	"github.com/lexgen/go-lexgen/pkg/util/collection/hash"
)

// NoRefcount marks a primary environment: one owned by an analysis unit
// rather than by reference counting.  Primary environments own their map and
// are destroyed with their unit; refcounted (derived) environments never own
// a map and die when their last share is given up.  The two regimes share one
// field, distinguished by this sentinel.
const NoRefcount = -1

// mapElement is a raw entry stored in an environment's internal map.
type mapElement struct {
	// Element this entry binds.
	element Element
	// Metadata attached at insertion.
	metadata Metadata
	// Optional resolver invoked on lookup hits.
	resolver EntityResolver
}

// ReferencedEnv is a filtered reference to another environment.  The resolver
// is invoked lazily during lookup, and the reference is only consulted when
// the lookup origin can reach fromNode.  The referenced environment is not
// refcount-owned by the holder.
type ReferencedEnv struct {
	// Node gating visibility of this reference.
	fromNode Element
	// Resolver producing the referenced environment on demand.
	resolver EnvResolver
}

// Env is a lexical environment: a map from symbols to entries, a parent
// getter, referenced environments (filtered and transitive), a default
// metadata and an attached rebindings chain.
type Env struct {
	// Getter for the enclosing environment.
	parent Getter
	// Node this environment is attached to, if any.
	node Element
	// Internal map from symbols to entry lists.  Owned by primary
	// environments; derived environments either alias a primary's map or
	// have none at all.
	ownMap *hash.Map[*Symbol, []mapElement]
	// Filtered references, in insertion order.
	referenced []ReferencedEnv
	// Transitive references, in insertion order.  Each entry is
	// refcount-owned by this environment.
	transitive []*Env
	// Metadata combined into every entity resolved here.
	defaultMD Metadata
	// Rebindings attached to this environment.
	rebindings *Rebindings
	// Reference count, or NoRefcount for primary environments.
	refCount int
	// Set once the environment has been torn down.  Mutation or release of a
	// dead environment is a programming error.
	destroyed bool
}

// EmptyEnv is the distinguished empty environment.  It is a process-wide
// singleton with a trivial lifecycle: Add, Remove, Reference and destruction
// are no-ops, and lookups on it return nothing.  Being non-refcounted, it
// rejects TransitiveReference like any primary environment.
var EmptyEnv = &Env{refCount: NoRefcount}

// NewEnv allocates an environment.  A real parent getter has its refcount
// bumped.  Environments created refcounted start with one share, owned by
// the caller; otherwise the environment is primary and lives until
// explicitly destroyed.
func NewEnv(parent Getter, node Element, refcounted bool, defaultMD Metadata) *Env {
	parent.IncRef()
	//
	refCount := NoRefcount
	if refcounted {
		refCount = 1
	}
	//
	return &Env{
		parent:    parent,
		node:      node,
		ownMap:    hash.NewMap[*Symbol, []mapElement](8),
		defaultMD: defaultMD,
		refCount:  refCount,
	}
}

// Node returns the node this environment is attached to, if any.
func (p *Env) Node() Element {
	return p.node
}

// Parent returns the getter for the enclosing environment.
func (p *Env) Parent() Getter {
	return p.parent
}

// Rebindings returns the rebindings chain attached to this environment.
func (p *Env) Rebindings() *Rebindings {
	return p.rebindings
}

// IsRefcounted determines whether this environment is derived (refcounted) as
// opposed to primary.
func (p *Env) IsRefcounted() bool {
	return p != nil && p.refCount != NoRefcount
}

// IsPrimary determines whether this environment is owned by an analysis unit.
func (p *Env) IsPrimary() bool {
	return p != nil && p.refCount == NoRefcount
}

// IsAlive reports whether this environment has not yet been destroyed.
func (p *Env) IsAlive() bool {
	return p != nil && !p.destroyed
}

// Add inserts an entry for a given key.  Entries accumulate in insertion
// order within the key's bucket; lookup returns the newest first.  Adding to
// EmptyEnv is a no-op.
func (p *Env) Add(key *Symbol, element Element, md Metadata, resolver EntityResolver) {
	if p == EmptyEnv {
		return
	} else if p.ownMap == nil {
		invalidOperation("add on an environment without an internal map")
	}
	//
	bucket, _ := p.ownMap.Get(key)
	p.ownMap.Insert(key, append(bucket, mapElement{element, md, resolver}))
}

// Remove deletes the first entry for a given key whose element equals the one
// given; a no-op if absent.  Remaining entries keep their order.  Removal is
// by identity and costs a linear scan of the key's bucket.
func (p *Env) Remove(key *Symbol, element Element) {
	if p == EmptyEnv || p.ownMap == nil {
		return
	}
	//
	bucket, ok := p.ownMap.Get(key)
	if !ok {
		return
	}
	//
	for i, e := range bucket {
		if e.element == element {
			p.ownMap.Insert(key, append(bucket[:i:i], bucket[i+1:]...))
			return
		}
	}
}

// Reference appends a filtered reference.  The resolver runs lazily during
// lookup, and the reference is only consulted when the lookup origin can
// reach referencedFrom.  The referenced environment is not refcount-owned.
func (p *Env) Reference(referencedFrom Element, resolver EnvResolver) {
	if p == EmptyEnv {
		return
	}
	//
	p.referenced = append(p.referenced, ReferencedEnv{referencedFrom, resolver})
}

// TransitiveReference appends an unconditional reference, taking a share of
// the target.  Only refcounted environments can hold transitive references,
// since only they are guaranteed to release them.
func (p *Env) TransitiveReference(target *Env) {
	if !p.IsRefcounted() {
		invalidOperation("transitive reference on a primary environment")
	}
	//
	target.IncRef()
	p.transitive = append(p.transitive, target)
}

// IncRef acquires a share of this environment.  No-op for primary
// environments, which are owned by their unit.
func (p *Env) IncRef() {
	if p == nil || p.refCount == NoRefcount {
		return
	} else if p.destroyed {
		invalidOperation("share acquired on a destroyed environment")
	}
	//
	p.refCount++
}

// DecRef gives up a share of this environment, destroying it at the
// refcount-to-zero transition.  No-op for primary environments.  Releasing
// more shares than were acquired is a programming error.
func (p *Env) DecRef() {
	if p == nil || p.refCount == NoRefcount {
		return
	} else if p.refCount <= 0 || p.destroyed {
		invalidOperation("environment refcount underflow")
	}
	//
	p.refCount--
	//
	if p.refCount == 0 {
		p.destroy()
	}
}

// Destroy tears down a primary environment.  Destroying EmptyEnv is a no-op;
// refcounted environments are destroyed through DecRef instead.
func (p *Env) Destroy() {
	if p == nil || p == EmptyEnv {
		return
	} else if p.destroyed {
		invalidOperation("environment destroyed twice")
	}
	//
	p.destroy()
}

// destroy releases everything this environment holds.  Primary environments
// own their map and clear it; derived environments leave the (aliased) map
// alone.  Both release their transitive shares, rebindings and parent.
func (p *Env) destroy() {
	if p.refCount == NoRefcount && p.ownMap != nil {
		p.ownMap.Clear()
	}
	//
	p.ownMap = nil
	p.referenced = nil
	//
	for _, t := range p.transitive {
		t.DecRef()
	}
	//
	p.transitive = nil
	//
	p.rebindings.DecRef()
	p.rebindings = nil
	//
	p.parent.DecRef()
	p.parent = NoGetter
	//
	p.destroyed = true
}

func (p *Env) String() string {
	switch {
	case p == nil:
		return "<null env>"
	case p == EmptyEnv:
		return "<empty env>"
	case p.refCount == NoRefcount:
		return fmt.Sprintf("<env %v>", p.node)
	}
	//
	return fmt.Sprintf("<env %v rc=%d>", p.node, p.refCount)
}
