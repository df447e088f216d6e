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
	"errors"
	"testing"

	"github.com/lexgen/go-lexgen/pkg/util/assert"
)

// Reachability gate on filtered references.
func Test_Lookup_Reachability_01(t *testing.T) {
	var (
		table  = NewSymbolTable()
		z      = table.Intern("z")
		a, b   = newNode("A"), newNode("B")
		n5, n6 = newNode("N5"), newNode("N6")
		env    = NewEnv(NoGetter, nil, false, nil)
		refd   = NewEnv(NoGetter, nil, false, nil)
	)
	//
	env.Add(z, n5, nil, nil)
	refd.Add(z, n6, nil, nil)
	env.Reference(a, staticResolver(refd))
	// Reachable origin sees both
	check_Elements(t, check_Get(t, env, z, b, true, nil), n5, n6)
	// Unreachable origin sees own entries only
	a.markUnreachable(b)
	check_Elements(t, check_Get(t, env, z, b, true, nil), n5)
	//
	env.Destroy()
	refd.Destroy()
}

// Filtered results are always a subset of unfiltered ones.
func Test_Lookup_Reachability_02(t *testing.T) {
	var (
		table = NewSymbolTable()
		k     = table.Intern("k")
		from  = newNode("F")
		env   = NewEnv(NoGetter, nil, false, nil)
		nodes []*testNode
	)
	//
	for i := 0; i < 6; i++ {
		n := newNode("N")
		nodes = append(nodes, n)
		env.Add(k, n, nil, nil)
	}
	// Constant-true reachability: filtering changes nothing
	unfiltered := check_Get(t, env, k, nil, true, nil)
	filtered := check_Get(t, env, k, from, true, nil)
	//
	assert.Equal(t, len(unfiltered), len(filtered))
	ReleaseEntities(unfiltered)
	ReleaseEntities(filtered)
	// Knock out half the nodes and re-check containment
	for i, n := range nodes {
		if i%2 == 0 {
			n.markUnreachable(from)
		}
	}
	//
	check_Elements(t, check_Get(t, env, k, from, true, nil), nodes[5], nodes[3], nodes[1])
	//
	env.Destroy()
}

// Rebinding pop: a chain entry targeting the looked-up env redirects its own
// entries.
func Test_Lookup_Rebind_01(t *testing.T) {
	var (
		table   = NewSymbolTable()
		y       = table.Intern("y")
		n1, n2  = newNode("N1"), newNode("N2")
		env     = NewEnv(NoGetter, nil, false, nil)
		rebound = NewEnv(NoGetter, nil, false, nil)
	)
	//
	env.Add(y, n1, nil, nil)
	rebound.Add(y, n2, nil, nil)
	//
	chain := NewRebindings([]Rebinding{{StaticGetter(env), StaticGetter(rebound)}})
	//
	entities := check_Get(t, env, y, nil, true, chain)
	// Own entries come from the substituted env, decorated with the chain
	// minus the popped slot.
	assert.Equal(t, 1, len(entities))
	assert.True(t, entities[0].Element == Element(n2))
	assert.Equal(t, 0, entities[0].Info.Rebindings.Size())
	//
	ReleaseEntities(entities)
	chain.DecRef()
	//
	env.Destroy()
	rebound.Destroy()
}

// When two rebindings target the same env, the later one wins.
func Test_Lookup_Rebind_02(t *testing.T) {
	var (
		table  = NewSymbolTable()
		y      = table.Intern("y")
		n1, n2 = newNode("N1"), newNode("N2")
		env    = NewEnv(NoGetter, nil, false, nil)
		first  = NewEnv(NoGetter, nil, false, nil)
		second = NewEnv(NoGetter, nil, false, nil)
	)
	//
	first.Add(y, n1, nil, nil)
	second.Add(y, n2, nil, nil)
	//
	chain := NewRebindings([]Rebinding{
		{StaticGetter(env), StaticGetter(first)},
		{StaticGetter(env), StaticGetter(second)},
	})
	//
	check_Elements(t, check_Get(t, env, y, nil, true, chain), n2)
	//
	chain.DecRef()
	env.Destroy()
	first.Destroy()
	second.Destroy()
}

// An environment's own rebindings apply to lookups descending through its
// transitive references.
func Test_Lookup_Rebind_03(t *testing.T) {
	var (
		table  = NewSymbolTable()
		y      = table.Intern("y")
		n1, n2 = newNode("N1"), newNode("N2")
		base   = NewEnv(NoGetter, nil, false, nil)
		old    = NewEnv(NoGetter, nil, false, nil)
		repl   = NewEnv(NoGetter, nil, false, nil)
	)
	//
	old.Add(y, n1, nil, nil)
	repl.Add(y, n2, nil, nil)
	// Rebind old->repl, then look through the rebound env into old via a
	// transitive reference.
	rebound := Rebind(base, StaticGetter(old), StaticGetter(repl))
	rebound.TransitiveReference(old)
	//
	check_Elements(t, check_Get(t, rebound, y, nil, true, nil), n2)
	//
	rebound.DecRef()
	base.Destroy()
	old.Destroy()
	repl.Destroy()
}

// Entry resolvers replace the preliminary entity.
func Test_Lookup_Resolver_01(t *testing.T) {
	var (
		table    = NewSymbolTable()
		k        = table.Intern("k")
		n1, n2   = newNode("N1"), newNode("N2")
		env      = NewEnv(NoGetter, nil, false, nil)
		resolver = func(e Entity) (Entity, error) {
			// Redirect to n2, dropping the preliminary decoration.
			e.Release()
			return Entity{Element: n2}, nil
		}
	)
	//
	env.Add(k, n1, nil, resolver)
	//
	check_Elements(t, check_Get(t, env, k, nil, true, nil), n2)
	//
	env.Destroy()
}

// Entry resolver failures propagate, with no partial results.
func Test_Lookup_Resolver_02(t *testing.T) {
	var (
		table  = NewSymbolTable()
		k      = table.Intern("k")
		fail   = errors.New("resolution failure")
		env    = NewEnv(NoGetter, nil, false, nil)
		broken = func(e Entity) (Entity, error) {
			return Entity{}, fail
		}
	)
	// The failing entry sits behind a healthy one.
	env.Add(k, newNode("N1"), nil, broken)
	env.Add(k, newNode("N2"), nil, nil)
	//
	entities, err := Get(env, k, nil, true, nil)
	assert.True(t, errors.Is(err, fail))
	assert.Equal(t, 0, len(entities))
	//
	env.Destroy()
}

// Filtered-reference resolver failures propagate too.
func Test_Lookup_Resolver_03(t *testing.T) {
	var (
		table  = NewSymbolTable()
		k      = table.Intern("k")
		fail   = errors.New("no such env")
		env    = NewEnv(NoGetter, nil, false, nil)
		broken = func(Entity) (*Env, error) {
			return nil, fail
		}
	)
	//
	env.Add(k, newNode("N1"), nil, nil)
	env.Reference(newNode("A"), broken)
	//
	entities, err := Get(env, k, nil, true, nil)
	assert.True(t, errors.Is(err, fail))
	assert.Equal(t, 0, len(entities))
	//
	env.Destroy()
}

// Concatenation order: own, filtered, transitive, parent.
func Test_Lookup_Order_01(t *testing.T) {
	var (
		table          = NewSymbolTable()
		k              = table.Intern("k")
		own, refd      = newNode("OWN"), newNode("REF")
		trans, above   = newNode("TRANS"), newNode("PARENT")
		parent         = NewEnv(NoGetter, nil, false, nil)
		refdEnv        = NewEnv(NoGetter, nil, false, nil)
		transitiveEnv  = NewEnv(NoGetter, nil, false, nil)
		env            = NewEnv(StaticGetter(parent), nil, true, nil)
	)
	//
	parent.Add(k, above, nil, nil)
	refdEnv.Add(k, refd, nil, nil)
	transitiveEnv.Add(k, trans, nil, nil)
	env.Add(k, own, nil, nil)
	//
	env.Reference(newNode("A"), staticResolver(refdEnv))
	env.TransitiveReference(transitiveEnv)
	//
	check_Elements(t, check_Get(t, env, k, nil, true, nil), own, refd, trans, above)
	// Non-recursive lookups skip filtered refs and the parent
	check_Elements(t, check_Get(t, env, k, nil, false, nil), own, trans)
	//
	env.DecRef()
	parent.Destroy()
	refdEnv.Destroy()
	transitiveEnv.Destroy()
}

// Cyclic references terminate: two envs referencing each other.
func Test_Lookup_Cycle_01(t *testing.T) {
	var (
		table = NewSymbolTable()
		k     = table.Intern("k")
		n1    = newNode("N1")
		left  = NewEnv(NoGetter, nil, false, nil)
		right = NewEnv(NoGetter, nil, false, nil)
	)
	//
	left.Add(k, n1, nil, nil)
	left.Reference(newNode("A"), staticResolver(right))
	right.Reference(newNode("B"), staticResolver(left))
	//
	check_Elements(t, check_Get(t, left, k, nil, true, nil), n1)
	check_Elements(t, check_Get(t, right, k, nil, true, nil), n1)
	//
	left.Destroy()
	right.Destroy()
}

// Dynamic getters resolve through their callback during parent walks.
func Test_Lookup_Dynamic_01(t *testing.T) {
	var (
		table  = NewSymbolTable()
		k      = table.Intern("k")
		n1, n2 = newNode("N1"), newNode("N2")
		parent = NewEnv(NoGetter, nil, false, nil)
		getter = DynamicGetter(parent, func(state any) (*Env, error) {
			env := state.(*Env)
			env.IncRef()
			//
			return env, nil
		})
		child = NewEnv(getter, nil, false, nil)
	)
	//
	parent.Add(k, n1, nil, nil)
	child.Add(k, n2, nil, nil)
	//
	check_Elements(t, check_Get(t, child, k, nil, true, nil), n2, n1)
	//
	child.Destroy()
	parent.Destroy()
}
