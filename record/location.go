// Copyright 2019-2020 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package record

import (
	"strconv"
	"strings"
)

// Location pinpoints where a record came from: the file it was read from,
// its line number within that file, and the stack of files whose include
// directives are currently expanded at that point (outermost first, not
// including Path itself).
type Location struct {
	Path         string
	Line         int
	IncludeStack []string
}

// String renders the location the way diagnostics and generated log lines
// reference it: "path:line", with the include stack shown as an a -> b -> c
// chain when non-empty.
func (l Location) String() string {
	if len(l.IncludeStack) == 0 {
		return l.Path + ":" + strconv.Itoa(l.Line)
	}
	chain := append(append([]string{}, l.IncludeStack...), l.Path)
	return strings.Join(chain, " -> ") + ":" + strconv.Itoa(l.Line)
}
