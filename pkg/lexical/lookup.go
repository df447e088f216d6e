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
	log "github.com/sirupsen/logrus"
)

// Lookup resolves a key in an environment with no origin filtering and no
// caller rebindings.  See Get.
func Lookup(env *Env, key *Symbol) ([]Entity, error) {
	return Get(env, key, nil, true, nil)
}

// Get resolves a key in an environment.  The result concatenates, in this
// exact order: the environment's own entries (newest first per key),
// entities from filtered references (gated on the origin), entities from
// transitive references, then entities from the parent chain.  When from is
// non-nil, entities whose element cannot reach it are filtered out.  The
// caller's rebindings are combined in front of the environment's own, and
// the most recent rebinding targeting env redirects the own-entry lookup.
//
// Cycles through referenced environments cannot hang the walk: every inward
// recursion descends with recursive=false, so only the (acyclic) parent
// chain recurses fully.
//
// Entities in the result are owned by the caller, who must release them.
// Resolver failures are returned after all transient shares have been given
// up; partial results are never returned.
func Get(env *Env, key *Symbol, from Element, recursive bool, rebindings *Rebindings) (results []Entity, err error) {
	if env == nil {
		return nil, nil
	}
	//
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Tracef("lookup %s in %s (from=%v, recursive=%v)", key, env, from, recursive)
	}
	// Caller rebindings first, then the environment's own.
	current := CombineRebindings(rebindings, env.rebindings)
	// Pop the most recent rebinding targeting env, if any.
	popped, lookupEnv, ownedLookup, err := extractRebinding(current, env)
	if err != nil {
		current.DecRef()
		return nil, err
	}
	// Give up every transient share on the way out, and never return partial
	// results.
	defer func() {
		if ownedLookup {
			lookupEnv.DecRef()
		}
		//
		popped.DecRef()
		current.DecRef()
		//
		if err != nil {
			ReleaseEntities(results)
			results = nil
		}
	}()
	// Own entries, newest first.
	if lookupEnv != nil && lookupEnv.ownMap != nil {
		bucket, _ := lookupEnv.ownMap.Get(key)
		//
		for i := len(bucket) - 1; i >= 0; i-- {
			entry := bucket[i]
			entity := Entity{
				Element: entry.element,
				Info: EntityInfo{
					Metadata:   combineMetadata(entry.metadata, lookupEnv.defaultMD),
					Rebindings: popped.IncRef(),
				},
			}
			// Entry resolvers replace the preliminary entity entirely.
			if entry.resolver != nil {
				var resolved Entity
				//
				if resolved, err = entry.resolver(entity); err != nil {
					entity.Release()
					return results, err
				}
				//
				entity = resolved
			}
			//
			results = append(results, entity)
		}
	}
	// Filtered references, gated on the origin.
	if recursive {
		for _, ref := range env.referenced {
			if from != nil && !canReach(ref.fromNode, from) {
				continue
			}
			//
			var sub []Entity
			//
			if sub, err = getReferenced(ref, key, from, popped); err != nil {
				return results, err
			}
			//
			results = append(results, sub...)
		}
	}
	// Transitive references, unconditionally.
	for _, t := range env.transitive {
		var sub []Entity
		//
		if sub, err = Get(t, key, from, false, popped); err != nil {
			return results, err
		}
		//
		results = append(results, sub...)
	}
	// Parent chain.
	if recursive {
		var (
			parentEnv *Env
			sub       []Entity
		)
		//
		if parentEnv, err = env.parent.Get(); err != nil {
			return results, err
		}
		//
		sub, err = Get(parentEnv, key, from, true, popped)
		parentEnv.DecRef()
		//
		if err != nil {
			return results, err
		}
		//
		results = append(results, sub...)
	}
	// Final reachability filter.
	if from != nil {
		kept := results[:0]
		//
		for _, entity := range results {
			if canReach(entity.Element, from) {
				kept = append(kept, entity)
			} else {
				entity.Release()
			}
		}
		//
		results = kept
	}
	//
	return results, nil
}

// extractRebinding scans a chain from most recent to oldest for a rebinding
// whose old environment resolves to env.  On a match it returns the chain
// with that one slot removed together with the substituted environment (an
// owned reference); otherwise the chain itself (freshly shared) and env.
// Only the latest match is popped, so the most recent rebinding wins.
func extractRebinding(chain *Rebindings, env *Env) (*Rebindings, *Env, bool, error) {
	if chain != nil {
		for i := len(chain.bindings) - 1; i >= 0; i-- {
			binding := chain.bindings[i]
			//
			old, err := binding.OldEnv.Get()
			if err != nil {
				return nil, nil, false, err
			}
			//
			matched := old == env
			old.DecRef()
			//
			if !matched {
				continue
			}
			//
			substituted, err := binding.NewEnv.Get()
			if err != nil {
				return nil, nil, false, err
			}
			//
			remaining := make([]Rebinding, 0, len(chain.bindings)-1)
			remaining = append(remaining, chain.bindings[:i]...)
			remaining = append(remaining, chain.bindings[i+1:]...)
			//
			return NewRebindings(remaining), substituted, true, nil
		}
	}
	//
	return chain.IncRef(), env, false, nil
}

// getReferenced resolves a filtered reference and looks the key up in the
// referenced environment.  The resolved environment is released on both
// normal and error exit.
func getReferenced(ref ReferencedEnv, key *Symbol, from Element, rebindings *Rebindings) ([]Entity, error) {
	child, err := ref.resolver(Entity{Element: ref.fromNode})
	if err != nil {
		return nil, err
	}
	//
	defer child.DecRef()
	//
	return Get(child, key, from, false, rebindings)
}
