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
	"testing"

	"github.com/lexgen/go-lexgen/pkg/util/assert"
)

// Orphans lose their parent but keep everything else.
func Test_Orphan_01(t *testing.T) {
	var (
		table  = NewSymbolTable()
		y      = table.Intern("y")
		n3, n4 = newNode("N3"), newNode("N4")
		parent = NewEnv(NoGetter, nil, false, nil)
		child  = NewEnv(StaticGetter(parent), nil, false, nil)
	)
	//
	parent.Add(y, n3, nil, nil)
	child.Add(y, n4, nil, nil)
	//
	orphan := Orphan(child)
	// No parent, so N3 is out of reach
	check_Elements(t, check_Get(t, orphan, y, nil, true, nil), n4)
	// The internal map is aliased, not copied
	child.Add(y, newNode("N5"), nil, nil)
	entities := check_Get(t, orphan, y, nil, true, nil)
	assert.Equal(t, 2, len(entities))
	ReleaseEntities(entities)
	//
	orphan.DecRef()
	child.Destroy()
	parent.Destroy()
}

// Orphans preserve referenced and transitive environments.
func Test_Orphan_02(t *testing.T) {
	var (
		table = NewSymbolTable()
		k     = table.Intern("k")
		n1    = newNode("N1")
		refd  = NewEnv(NoGetter, nil, false, nil)
		env   = NewEnv(NoGetter, nil, false, nil)
	)
	//
	refd.Add(k, n1, nil, nil)
	env.Reference(newNode("A"), staticResolver(refd))
	//
	orphan := Orphan(env)
	check_Elements(t, check_Get(t, orphan, k, nil, true, nil), n1)
	//
	orphan.DecRef()
	env.Destroy()
	refd.Destroy()
}

// Group composition: empty, singleton and general cases.
func Test_Group_01(t *testing.T) {
	assert.True(t, Group(nil) == EmptyEnv)
}

func Test_Group_02(t *testing.T) {
	var (
		table = NewSymbolTable()
		k     = table.Intern("k")
		n1    = newNode("N1")
		env   = NewEnv(NoGetter, nil, true, nil)
	)
	//
	env.Add(k, n1, nil, nil)
	// A singleton group is the env itself, freshly shared
	group := Group([]*Env{env})
	assert.True(t, group == env)
	//
	check_Elements(t, check_Get(t, group, k, nil, true, nil), n1)
	//
	group.DecRef()
	env.DecRef()
}

func Test_Group_03(t *testing.T) {
	var (
		table  = NewSymbolTable()
		k      = table.Intern("k")
		n7, n8 = newNode("N7"), newNode("N8")
		a      = NewEnv(NoGetter, nil, false, nil)
		b      = NewEnv(NoGetter, nil, false, nil)
	)
	//
	a.Add(k, n7, nil, nil)
	b.Add(k, n8, nil, nil)
	//
	group := Group([]*Env{a, b})
	// Both entries visible, in A-before-B (transitive section) order
	check_Elements(t, check_Get(t, group, k, nil, true, nil), n7, n8)
	//
	group.DecRef()
	a.Destroy()
	b.Destroy()
}

// A group behaves observably as its single member.
func Test_Group_04(t *testing.T) {
	var (
		table  = NewSymbolTable()
		k      = table.Intern("k")
		n1, n2 = newNode("N1"), newNode("N2")
		parent = NewEnv(NoGetter, nil, false, nil)
		env    = NewEnv(StaticGetter(parent), nil, false, nil)
	)
	//
	parent.Add(k, n1, nil, nil)
	env.Add(k, n2, nil, nil)
	//
	group := Group([]*Env{env})
	//
	direct := check_Get(t, env, k, nil, true, nil)
	grouped := check_Get(t, group, k, nil, true, nil)
	//
	assert.Equal(t, len(direct), len(grouped))
	//
	for i := range direct {
		assert.True(t, direct[i].Element == grouped[i].Element)
	}
	//
	ReleaseEntities(direct)
	ReleaseEntities(grouped)
	//
	group.DecRef()
	env.Destroy()
	parent.Destroy()
}

// Rebound environments redirect lookups that descend through the rebound
// target.
func Test_Rebind_01(t *testing.T) {
	var (
		table    = NewSymbolTable()
		k        = table.Intern("k")
		n1, n2   = newNode("N1"), newNode("N2")
		generic  = NewEnv(NoGetter, nil, false, nil)
		instance = NewEnv(NoGetter, nil, false, nil)
		base     = NewEnv(NoGetter, nil, true, nil)
	)
	//
	generic.Add(k, n1, nil, nil)
	instance.Add(k, n2, nil, nil)
	base.TransitiveReference(generic)
	//
	rebound := Rebind(base, StaticGetter(generic), StaticGetter(instance))
	// Descending through base's transitive ref to generic gets redirected
	check_Elements(t, check_Get(t, rebound, k, nil, true, nil), n2)
	// The base itself is unaffected
	check_Elements(t, check_Get(t, base, k, nil, true, nil), n1)
	//
	rebound.DecRef()
	base.DecRef()
	generic.Destroy()
	instance.Destroy()
}

// Rebinding with the identity info short-circuits to the base itself.
func Test_Rebind_02(t *testing.T) {
	env := NewEnv(NoGetter, nil, true, nil)
	//
	rebound := RebindWithInfo(env, EntityInfo{})
	assert.True(t, rebound == env)
	//
	rebound.DecRef()
	env.DecRef()
}

func Test_Rebind_03(t *testing.T) {
	var (
		table    = NewSymbolTable()
		k        = table.Intern("k")
		n1, n2   = newNode("N1"), newNode("N2")
		generic  = NewEnv(NoGetter, nil, false, nil)
		instance = NewEnv(NoGetter, nil, false, nil)
		base     = NewEnv(NoGetter, nil, true, nil)
	)
	//
	generic.Add(k, n1, nil, nil)
	instance.Add(k, n2, nil, nil)
	base.TransitiveReference(generic)
	//
	chain := NewRebindings([]Rebinding{{StaticGetter(generic), StaticGetter(instance)}})
	rebound := RebindWithInfo(base, EntityInfo{Rebindings: chain})
	//
	check_Elements(t, check_Get(t, rebound, k, nil, true, nil), n2)
	//
	rebound.DecRef()
	chain.DecRef()
	base.DecRef()
	generic.Destroy()
	instance.Destroy()
}
