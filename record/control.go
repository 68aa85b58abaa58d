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

// ControlKind enumerates the directives a `control` record can carry.
type ControlKind int

const (
	ControlSubstitution ControlKind = iota
	ControlSortMode
	ControlResultMode
)

// Control is the payload of a `control` record: `substitution on|off`,
// `sortmode MODE`, or `resultmode MODE`.
type Control struct {
	Kind             ControlKind
	SubstitutionOn   bool       // valid when Kind == ControlSubstitution
	SortMode         SortMode   // valid when Kind == ControlSortMode
	ResultMode       ResultMode // valid when Kind == ControlResultMode
}

// InjectedKind enumerates the pseudo-records produced by include
// expansion; they are never written back out by the unparser on their own
// (BeginInclude/EndInclude bracket an expanded include's records so
// Location.IncludeStack can be reconstructed, but the textual form of an
// include is just the original `include GLOB` line).
type InjectedKind int

const (
	BeginInclude InjectedKind = iota
	EndInclude
	InjectedNewline
)
