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

// InvalidOperation signals a programming error: an operation applied to a
// value which can never support it (e.g. equivalence on a dynamic getter, a
// transitive reference on a primary environment, a refcount underflow).
// These are raised via panic and are not meant to be recovered from; they
// are distinct from resolver failures, which are returned as plain errors
// from Get.
type InvalidOperation struct {
	// Description of the offending operation.
	Msg string
}

func (p *InvalidOperation) Error() string {
	return p.Msg
}

// invalidOperation panics with a suitably formatted InvalidOperation.
func invalidOperation(format string, args ...any) {
	panic(&InvalidOperation{fmt.Sprintf(format, args...)})
}
