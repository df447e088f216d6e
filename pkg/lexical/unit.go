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
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Unit represents an analysis unit: the owner of the primary environments
// produced for one source unit.  Reparsing a unit is modeled as resetting it
// (destroying every primary) and populating it afresh.  Derived environments
// held elsewhere never own a primary's map, so they do not dangle across a
// reset, though lookups through them will no longer see the destroyed
// content.
type Unit struct {
	// Stable identity for this unit, used in logging.
	id uuid.UUID
	// Name of the source unit, typically a filename.
	name string
	// Primary environments owned by this unit, in creation order.
	envs []*Env
}

// NewUnit constructs a fresh analysis unit with a given name.
func NewUnit(name string) *Unit {
	return &Unit{id: uuid.New(), name: name}
}

// Name returns the name of this unit.
func (p *Unit) Name() string {
	return p.name
}

// Id returns the stable identity of this unit.
func (p *Unit) Id() uuid.UUID {
	return p.id
}

// NewEnv creates a primary environment owned by this unit.  It is destroyed
// when the unit is reset or destroyed.
func (p *Unit) NewEnv(parent Getter, node Element, defaultMD Metadata) *Env {
	env := NewEnv(parent, node, false, defaultMD)
	p.envs = append(p.envs, env)
	//
	return env
}

// Size returns the number of primary environments owned by this unit.
func (p *Unit) Size() uint {
	return uint(len(p.envs))
}

// Reset destroys every primary environment owned by this unit, leaving the
// unit ready to be repopulated (e.g. after a reparse).
func (p *Unit) Reset() {
	log.Debugf("resetting unit %s (%s): destroying %d primary envs", p.name, p.id, len(p.envs))
	//
	for _, env := range p.envs {
		env.Destroy()
	}
	//
	p.envs = nil
}

// Destroy tears the unit down entirely.
func (p *Unit) Destroy() {
	p.Reset()
}
