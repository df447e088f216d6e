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
package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lexgen/go-lexgen/pkg/lexical"
	"github.com/lexgen/go-lexgen/pkg/util"
)

// Node is a named stand-in for a client AST node.  Reachability between
// nodes defaults to true, and is knocked out by the scenario's unreachable
// declarations.
type Node struct {
	name     string
	scenario *Scenario
}

// Name returns the name this node was declared under.
func (p *Node) Name() string {
	return p.name
}

// CanReach determines whether declarations on this node are visible from a
// given origin.
func (p *Node) CanReach(from lexical.Element) bool {
	origin, ok := from.(*Node)
	if !ok {
		return true
	}
	//
	return !p.scenario.unreachable[[2]string{p.name, origin.name}]
}

func (p *Node) String() string {
	return p.name
}

// Tags is the metadata carried by graph entries: a sorted set of names,
// combined by union.
type Tags []string

// NewTags constructs a tag set from the given names.
func NewTags(names ...string) Tags {
	tags := slices.Clone(names)
	slices.Sort(tags)
	//
	return slices.Compact(tags)
}

// Combine unions two tag sets.
func (p Tags) Combine(other lexical.Metadata) lexical.Metadata {
	return NewTags(append(slices.Clone(p), other.(Tags)...)...)
}

// Equal checks whether two tag sets contain the same names.
func (p Tags) Equal(other lexical.Metadata) bool {
	tags, ok := other.(Tags)
	return ok && slices.Equal(p, tags)
}

func (p Tags) String() string {
	return fmt.Sprintf("{%s}", strings.Join(p, " "))
}

// Query is a lookup request read from a scenario file.
type Query struct {
	// Name of the environment looked in.
	Env string
	// Key looked up.
	Key string
	// Origin element, if the lookup is filtered.
	From util.Option[string]
	// Whether the lookup is recursive.
	Recursive bool
	// Caller rebindings, as (old, new) environment name pairs.
	Rebinds [][2]string
}

func (p Query) String() string {
	var s strings.Builder
	//
	s.WriteString(fmt.Sprintf("(get %s %s", p.Env, p.Key))
	//
	if p.From.HasValue() {
		s.WriteString(fmt.Sprintf(" (from %s)", p.From.Unwrap()))
	}
	//
	if !p.Recursive {
		s.WriteString(" (norecurse)")
	}
	//
	for _, r := range p.Rebinds {
		s.WriteString(fmt.Sprintf(" (rebind %s %s)", r[0], r[1]))
	}
	//
	s.WriteString(")")
	//
	return s.String()
}

// Scenario is a lexical environment graph built from a textual description,
// along with the queries the description asks to run against it.
type Scenario struct {
	// Symbols interned for this scenario.
	symbols *lexical.SymbolTable
	// Analysis unit owning the scenario's primary environments.
	unit *lexical.Unit
	// Environments by name, primary and derived alike.
	envs map[string]*lexical.Env
	// Environment names in declaration order.
	order []string
	// Derived environments, owned by the scenario.
	derived []*lexical.Env
	// Nodes by name, created on first mention.
	nodes map[string]*Node
	// Knocked-out reachability pairs (node, origin).
	unreachable map[[2]string]bool
	// Queries in declaration order.
	queries []Query
}

// NewScenario constructs an empty scenario.
func NewScenario(name string) *Scenario {
	return &Scenario{
		symbols:     lexical.NewSymbolTable(),
		unit:        lexical.NewUnit(name),
		envs:        make(map[string]*lexical.Env),
		nodes:       make(map[string]*Node),
		unreachable: make(map[[2]string]bool),
	}
}

// Env returns the environment declared under a given name.
func (p *Scenario) Env(name string) (*lexical.Env, bool) {
	env, ok := p.envs[name]
	return env, ok
}

// Envs returns the names of all declared environments, in declaration order.
func (p *Scenario) Envs() []string {
	return p.order
}

// Node returns the node with a given name, creating it on first mention.
func (p *Scenario) Node(name string) *Node {
	if node, ok := p.nodes[name]; ok {
		return node
	}
	//
	node := &Node{name, p}
	p.nodes[name] = node
	//
	return node
}

// Queries returns the scenario's queries, in declaration order.
func (p *Scenario) Queries() []Query {
	return p.queries
}

// Run executes a query against the graph.  Returned entities are owned by
// the caller.
func (p *Scenario) Run(query Query) ([]lexical.Entity, error) {
	env, ok := p.envs[query.Env]
	if !ok {
		return nil, fmt.Errorf("unknown environment %s", query.Env)
	}
	//
	key, ok := p.symbols.Find(query.Key)
	if !ok {
		// Key never bound anywhere, hence nothing to find.
		return nil, nil
	}
	//
	var from lexical.Element
	if query.From.HasValue() {
		from = p.Node(query.From.Unwrap())
	}
	//
	chain, err := p.buildRebindings(query.Rebinds)
	if err != nil {
		return nil, err
	}
	//
	defer chain.DecRef()
	//
	return lexical.Get(env, key, from, query.Recursive, chain)
}

// Destroy tears down the scenario: derived environments first, then the
// unit's primaries.
func (p *Scenario) Destroy() {
	for i := len(p.derived) - 1; i >= 0; i-- {
		p.derived[i].DecRef()
	}
	//
	p.derived = nil
	p.unit.Destroy()
}

// buildRebindings constructs a caller rebindings chain from (old, new)
// environment name pairs.
func (p *Scenario) buildRebindings(rebinds [][2]string) (*lexical.Rebindings, error) {
	if len(rebinds) == 0 {
		return nil, nil
	}
	//
	bindings := make([]lexical.Rebinding, len(rebinds))
	//
	for i, r := range rebinds {
		old, ok := p.envs[r[0]]
		if !ok {
			return nil, fmt.Errorf("unknown environment %s", r[0])
		}
		//
		repl, ok := p.envs[r[1]]
		if !ok {
			return nil, fmt.Errorf("unknown environment %s", r[1])
		}
		//
		bindings[i] = lexical.Rebinding{
			OldEnv: lexical.StaticGetter(old),
			NewEnv: lexical.StaticGetter(repl),
		}
	}
	//
	return lexical.NewRebindings(bindings), nil
}

// getter constructs a getter for an environment name: static when the
// environment is already built, otherwise dynamic so later declarations can
// still be reached.
func (p *Scenario) getter(name string) lexical.Getter {
	if env, ok := p.envs[name]; ok {
		return lexical.StaticGetter(env)
	}
	//
	return lexical.DynamicGetter(name, func(state any) (*lexical.Env, error) {
		env, ok := p.envs[state.(string)]
		if !ok {
			return nil, fmt.Errorf("unknown environment %s", state)
		}
		//
		env.IncRef()
		//
		return env, nil
	})
}

// resolver constructs an environment resolver for a named environment,
// looked up lazily so references can be declared ahead of their target.
func (p *Scenario) resolver(name string) lexical.EnvResolver {
	return func(lexical.Entity) (*lexical.Env, error) {
		env, ok := p.envs[name]
		if !ok {
			return nil, fmt.Errorf("unknown environment %s", name)
		}
		//
		env.IncRef()
		//
		return env, nil
	}
}

// declare registers a freshly built environment under a given name.
func (p *Scenario) declare(name string, env *lexical.Env, isDerived bool) {
	p.envs[name] = env
	p.order = append(p.order, name)
	//
	if isDerived {
		p.derived = append(p.derived, env)
	}
}
