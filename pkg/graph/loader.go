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
	"github.com/lexgen/go-lexgen/pkg/lexical"
	"github.com/lexgen/go-lexgen/pkg/util"
	"github.com/lexgen/go-lexgen/pkg/util/source"
	"github.com/lexgen/go-lexgen/pkg/util/source/sexp"
)

// Load builds a scenario from a textual environment-graph description.  The
// description is a sequence of top-level forms:
//
//	(env NAME (parent P) (default TAG...) (bind KEY NODE TAG...) (ref NODE ENV))
//	(group NAME ENV...)
//	(orphan NAME ENV)
//	(rebind NAME BASE OLD NEW)
//	(unreachable NODE ORIGIN)
//	(get ENV KEY (from NODE) (norecurse) (rebind OLD NEW))
//
// Environments may be referenced (as parents or reference targets) ahead of
// their declaration; such links resolve dynamically at lookup time.
func Load(srcfile *source.File) (*Scenario, *source.SyntaxError) {
	terms, srcmap, err := sexp.ParseAll(srcfile)
	if err != nil {
		return nil, err
	}
	//
	l := &loader{NewScenario(srcfile.Filename()), srcmap}
	//
	for _, term := range terms {
		if err := l.translate(term); err != nil {
			l.scenario.Destroy()
			return nil, err
		}
	}
	//
	return l.scenario, nil
}

type loader struct {
	scenario *Scenario
	srcmap   *source.Map[sexp.SExp]
}

func (l *loader) translate(term sexp.SExp) *source.SyntaxError {
	list := term.AsList()
	if list == nil || list.Len() == 0 || list.Get(0).AsSymbol() == nil {
		return l.srcmap.SyntaxError(term, "expected a top-level form")
	}
	//
	switch list.Get(0).AsSymbol().Value {
	case "env":
		return l.translateEnv(list)
	case "group":
		return l.translateGroup(list)
	case "orphan":
		return l.translateOrphan(list)
	case "rebind":
		return l.translateRebind(list)
	case "unreachable":
		return l.translateUnreachable(list)
	case "get":
		return l.translateGet(list)
	}
	//
	return l.srcmap.SyntaxError(list.Get(0), "unknown form")
}

func (l *loader) translateEnv(list *sexp.List) *source.SyntaxError {
	name, err := l.name(list, "env")
	if err != nil {
		return err
	}
	//
	var (
		parent    = lexical.NoGetter
		defaultMD lexical.Metadata
	)
	// First pass: construction parameters.
	for _, clause := range list.Elements[2:] {
		sub := clause.AsList()
		//
		switch {
		case sub == nil:
			return l.srcmap.SyntaxError(clause, "expected an env clause")
		case sub.MatchSymbols(2, "parent"):
			parent = l.scenario.getter(sub.Get(1).AsSymbol().Value)
		case sub.MatchSymbols(1, "default"):
			tags, err := l.tags(sub, 1)
			if err != nil {
				return err
			}
			//
			defaultMD = tags
		}
	}
	//
	env := l.scenario.unit.NewEnv(parent, l.scenario.Node(name), defaultMD)
	l.scenario.declare(name, env, false)
	// Second pass: content.
	for _, clause := range list.Elements[2:] {
		sub := clause.AsList()
		//
		switch {
		case sub.MatchSymbols(1, "parent"), sub.MatchSymbols(1, "default"):
			// Handled above
		case sub.MatchSymbols(3, "bind"):
			if err := l.translateBind(env, sub); err != nil {
				return err
			}
		case sub.MatchSymbols(3, "ref"):
			from := l.scenario.Node(sub.Get(1).AsSymbol().Value)
			env.Reference(from, l.scenario.resolver(sub.Get(2).AsSymbol().Value))
		default:
			return l.srcmap.SyntaxError(clause, "unknown env clause")
		}
	}
	//
	return nil
}

func (l *loader) translateBind(env *lexical.Env, list *sexp.List) *source.SyntaxError {
	var (
		key  = l.scenario.symbols.Intern(list.Get(1).AsSymbol().Value)
		node = l.scenario.Node(list.Get(2).AsSymbol().Value)
	)
	//
	var md lexical.Metadata
	//
	if list.Len() > 3 {
		tags, err := l.tags(list, 3)
		if err != nil {
			return err
		}
		//
		md = tags
	}
	//
	env.Add(key, node, md, nil)
	//
	return nil
}

func (l *loader) translateGroup(list *sexp.List) *source.SyntaxError {
	name, err := l.name(list, "group")
	if err != nil {
		return err
	}
	//
	members := make([]*lexical.Env, 0, list.Len()-2)
	//
	for _, m := range list.Elements[2:] {
		env, err := l.lookupEnv(m)
		if err != nil {
			return err
		}
		//
		members = append(members, env)
	}
	//
	l.scenario.declare(name, lexical.Group(members), true)
	//
	return nil
}

func (l *loader) translateOrphan(list *sexp.List) *source.SyntaxError {
	name, err := l.name(list, "orphan")
	if err != nil {
		return err
	} else if list.Len() != 3 {
		return l.srcmap.SyntaxError(list, "malformed orphan form")
	}
	//
	base, err := l.lookupEnv(list.Get(2))
	if err != nil {
		return err
	}
	//
	l.scenario.declare(name, lexical.Orphan(base), true)
	//
	return nil
}

func (l *loader) translateRebind(list *sexp.List) *source.SyntaxError {
	name, err := l.name(list, "rebind")
	if err != nil {
		return err
	} else if list.Len() != 5 {
		return l.srcmap.SyntaxError(list, "malformed rebind form")
	}
	//
	base, err := l.lookupEnv(list.Get(2))
	if err != nil {
		return err
	}
	//
	old, err := l.lookupEnv(list.Get(3))
	if err != nil {
		return err
	}
	//
	repl, err := l.lookupEnv(list.Get(4))
	if err != nil {
		return err
	}
	//
	rebound := lexical.Rebind(base, lexical.StaticGetter(old), lexical.StaticGetter(repl))
	l.scenario.declare(name, rebound, true)
	//
	return nil
}

func (l *loader) translateUnreachable(list *sexp.List) *source.SyntaxError {
	if !list.MatchSymbols(3, "unreachable") {
		return l.srcmap.SyntaxError(list, "malformed unreachable form")
	}
	//
	var (
		node   = list.Get(1).AsSymbol().Value
		origin = list.Get(2).AsSymbol().Value
	)
	//
	l.scenario.unreachable[[2]string{node, origin}] = true
	//
	return nil
}

func (l *loader) translateGet(list *sexp.List) *source.SyntaxError {
	if !list.MatchSymbols(3, "get") {
		return l.srcmap.SyntaxError(list, "malformed get form")
	}
	//
	query := Query{
		Env:       list.Get(1).AsSymbol().Value,
		Key:       list.Get(2).AsSymbol().Value,
		From:      util.None[string](),
		Recursive: true,
	}
	//
	for _, opt := range list.Elements[3:] {
		sub := opt.AsList()
		//
		switch {
		case sub == nil:
			return l.srcmap.SyntaxError(opt, "expected a get option")
		case sub.MatchSymbols(2, "from"):
			query.From = util.Some(sub.Get(1).AsSymbol().Value)
		case sub.MatchSymbols(1, "norecurse"):
			query.Recursive = false
		case sub.MatchSymbols(3, "rebind"):
			query.Rebinds = append(query.Rebinds, [2]string{
				sub.Get(1).AsSymbol().Value,
				sub.Get(2).AsSymbol().Value,
			})
		default:
			return l.srcmap.SyntaxError(opt, "unknown get option")
		}
	}
	//
	l.scenario.queries = append(l.scenario.queries, query)
	//
	return nil
}

// name extracts the NAME of a (form NAME ...) declaration, checking it is
// not already taken.
func (l *loader) name(list *sexp.List, form string) (string, *source.SyntaxError) {
	if list.Len() < 2 || list.Get(1).AsSymbol() == nil {
		return "", l.srcmap.SyntaxError(list, "malformed "+form+" form")
	}
	//
	name := list.Get(1).AsSymbol().Value
	//
	if _, ok := l.scenario.envs[name]; ok {
		return "", l.srcmap.SyntaxError(list.Get(1), "environment already declared")
	}
	//
	return name, nil
}

// lookupEnv resolves a symbol naming an already-declared environment.
func (l *loader) lookupEnv(term sexp.SExp) (*lexical.Env, *source.SyntaxError) {
	sym := term.AsSymbol()
	if sym == nil {
		return nil, l.srcmap.SyntaxError(term, "expected an environment name")
	}
	//
	env, ok := l.scenario.envs[sym.Value]
	if !ok {
		return nil, l.srcmap.SyntaxError(term, "unknown environment")
	}
	//
	return env, nil
}

// tags reads the trailing symbols of a clause as a tag set.
func (l *loader) tags(list *sexp.List, start int) (Tags, *source.SyntaxError) {
	names := make([]string, 0, list.Len()-start)
	//
	for _, t := range list.Elements[start:] {
		sym := t.AsSymbol()
		if sym == nil {
			return nil, l.srcmap.SyntaxError(t, "expected a tag")
		}
		//
		names = append(names, sym.Value)
	}
	//
	return NewTags(names...), nil
}
