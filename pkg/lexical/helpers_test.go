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
)

// testNode is a host element for testing.  Reachability defaults to true,
// with specific origins knocked out via unreachableFrom.
type testNode struct {
	name            string
	unreachableFrom map[Element]bool
}

func newNode(name string) *testNode {
	return &testNode{name, nil}
}

// markUnreachable records that declarations on this node are not visible from
// a given origin.
func (p *testNode) markUnreachable(from Element) {
	if p.unreachableFrom == nil {
		p.unreachableFrom = make(map[Element]bool)
	}
	//
	p.unreachableFrom[from] = true
}

func (p *testNode) CanReach(from Element) bool {
	return !p.unreachableFrom[from]
}

func (p *testNode) String() string {
	return p.name
}

// testMD is a host metadata for testing: a bitset combined by union.
type testMD uint

func (p testMD) Combine(other Metadata) Metadata {
	return p | other.(testMD)
}

func (p testMD) Equal(other Metadata) bool {
	o, ok := other.(testMD)
	return ok && p == o
}

// ===================================================================
// Test Helpers
// ===================================================================

// check_Elements verifies a lookup result contains exactly the given
// elements, in order, then releases it.
func check_Elements(t *testing.T, entities []Entity, expected ...Element) {
	t.Helper()
	//
	defer ReleaseEntities(entities)
	//
	if len(entities) != len(expected) {
		t.Fatalf("expected %d entities, got %d (%v)", len(expected), len(entities), entities)
	}
	//
	for i := range expected {
		if entities[i].Element != expected[i] {
			t.Fatalf("entity %d: expected %v, got %v", i, expected[i], entities[i].Element)
		}
	}
}

// check_Get runs a full lookup, failing the test on error.
func check_Get(t *testing.T, env *Env, key *Symbol, from Element, recursive bool, rebindings *Rebindings) []Entity {
	t.Helper()
	//
	entities, err := Get(env, key, from, recursive, rebindings)
	if err != nil {
		t.Fatalf("unexpected lookup error: %v", err)
	}
	//
	return entities
}

// staticResolver returns an EnvResolver which always yields a fresh share of
// a fixed environment.
func staticResolver(env *Env) EnvResolver {
	return func(Entity) (*Env, error) {
		env.IncRef()
		return env, nil
	}
}
