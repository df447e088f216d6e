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
	"slices"
)

// Orphan returns a refcounted copy of an environment with its parent link
// severed.  The internal map is aliased, not copied; referenced and
// transitive vectors are copied (taking a share of every transitive entry);
// the rebindings chain is shared.
func Orphan(env *Env) *Env {
	for _, t := range env.transitive {
		t.IncRef()
	}
	//
	return &Env{
		parent:     NoGetter,
		node:       env.node,
		ownMap:     env.ownMap,
		referenced: slices.Clone(env.referenced),
		transitive: slices.Clone(env.transitive),
		defaultMD:  env.defaultMD,
		rebindings: env.rebindings.IncRef(),
		refCount:   1,
	}
}

// Group combines several environments into one.  No environments yield
// EmptyEnv; a single environment is returned directly with a fresh share;
// otherwise the result is a refcounted environment with no parent and no map
// of its own, holding each input as a transitive reference in order.
func Group(envs []*Env) *Env {
	switch len(envs) {
	case 0:
		return EmptyEnv
	case 1:
		envs[0].IncRef()
		return envs[0]
	}
	//
	group := &Env{refCount: 1}
	//
	for _, env := range envs {
		group.TransitiveReference(env)
	}
	//
	return group
}

// Rebind constructs an environment which behaves as base, except that
// lookups descending through toRebind are redirected to rebindTo.  The
// result has no content of its own: base is attached transitively and the
// new rebinding is appended to base's chain.
func Rebind(base *Env, toRebind, rebindTo Getter) *Env {
	rebound := &Env{
		rebindings: AppendRebinding(base.rebindings, Rebinding{toRebind, rebindTo}),
		refCount:   1,
	}
	//
	rebound.TransitiveReference(base)
	//
	return rebound
}

// RebindWithInfo rebinds base under the rebindings carried by an entity
// info.  The identity info short-circuits to base itself, with a fresh
// share.
func RebindWithInfo(base *Env, info EntityInfo) *Env {
	if info.IsNull() || info.Rebindings == nil {
		base.IncRef()
		return base
	}
	//
	rebound := &Env{
		rebindings: CombineRebindings(base.rebindings, info.Rebindings),
		refCount:   1,
	}
	//
	rebound.TransitiveReference(base)
	//
	return rebound
}
