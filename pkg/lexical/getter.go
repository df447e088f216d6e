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

// DynamicResolver computes an environment from opaque caller-supplied state,
// returning a fresh owned reference.
type DynamicResolver func(state any) (*Env, error)

// Getter is a handle which resolves, on demand, to an environment.  It is a
// two-variant tagged value: either static (wrapping a fixed environment,
// possibly nil) or dynamic (wrapping opaque state plus a resolve function).
// The zero value is the null getter, which resolves to no environment.
type Getter struct {
	// Static variant: the wrapped environment.
	env *Env
	// Static variant: whether env holds a real reference count.  Captured at
	// construction so the getter can manage its share without touching env.
	refcounted bool
	// Dynamic variant: opaque resolver state.
	state any
	// Dynamic variant: resolve function.  Non-nil exactly for dynamic
	// getters.
	resolve DynamicResolver
}

// NoGetter is the null getter.
var NoGetter = Getter{}

// StaticGetter wraps a fixed environment.  The getter does not itself take a
// share; holders bump the refcount when they store the getter (see IncRef).
func StaticGetter(env *Env) Getter {
	return Getter{env: env, refcounted: env.IsRefcounted()}
}

// DynamicGetter wraps opaque state and a resolve function invoked on demand.
func DynamicGetter(state any, resolve DynamicResolver) Getter {
	return Getter{state: state, resolve: resolve}
}

// IsNull determines whether this is the null getter.
func (p Getter) IsNull() bool {
	return p.env == nil && p.resolve == nil
}

// IsDynamic determines whether this getter resolves through a callback.
func (p Getter) IsDynamic() bool {
	return p.resolve != nil
}

// Get resolves this getter, returning a fresh owned reference.  For static
// getters the wrapped environment's refcount is bumped (when refcounted); for
// dynamic getters the callback is invoked, and itself returns an owned
// reference.
func (p Getter) Get() (*Env, error) {
	if p.resolve != nil {
		return p.resolve(p.state)
	}
	//
	p.env.IncRef()
	//
	return p.env, nil
}

// IsEquivalent compares the resolved environment identity of two getters.
// Dynamic getters cannot be compared without side-effecting their state, so
// any dynamic operand is a programming error.
func (p Getter) IsEquivalent(other Getter) bool {
	if p.resolve != nil || other.resolve != nil {
		invalidOperation("equivalence on a dynamic env getter")
	}
	//
	return p.env == other.env
}

// IncRef acquires a share of the underlying environment.  This is a no-op for
// dynamic getters and for static getters over primary environments.
func (p Getter) IncRef() {
	if p.resolve == nil && p.refcounted {
		p.env.IncRef()
	}
}

// DecRef gives up a share of the underlying environment.  No-op conditions
// mirror IncRef.
func (p Getter) DecRef() {
	if p.resolve == nil && p.refcounted {
		p.env.DecRef()
	}
}

func (p Getter) String() string {
	if p.resolve != nil {
		return "<dynamic getter>"
	} else if p.env == nil {
		return "<null getter>"
	}
	//
	return fmt.Sprintf("<getter %s>", p.env.String())
}
