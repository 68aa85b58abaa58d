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

package parser

import (
	"fmt"

	"github.com/sqllogictest-go/slt/record"
)

// ErrorKind identifies the category of a ParseError. The set is
// deliberately open-ended per spec.md §4.1/§9: future additions are
// non-breaking, callers should not exhaustively switch on it without a
// default case.
type ErrorKind int

const (
	UnexpectedToken ErrorKind = iota
	InvalidSortMode
	InvalidResultMode
	InvalidNumber
	InvalidDuration
	EmptyInclude
	IncludeCycle
	InvalidRegex
	UnterminatedErrorBlock
	MisplacedCondition
	MisplacedConnection
	UnknownControlDirective
)

func (k ErrorKind) String() string {
	switch k {
	case UnexpectedToken:
		return "UnexpectedToken"
	case InvalidSortMode:
		return "InvalidSortMode"
	case InvalidResultMode:
		return "InvalidResultMode"
	case InvalidNumber:
		return "InvalidNumber"
	case InvalidDuration:
		return "InvalidDuration"
	case EmptyInclude:
		return "EmptyInclude"
	case IncludeCycle:
		return "IncludeCycle"
	case InvalidRegex:
		return "InvalidRegex"
	case UnterminatedErrorBlock:
		return "UnterminatedErrorBlock"
	case MisplacedCondition:
		return "MisplacedCondition"
	case MisplacedConnection:
		return "MisplacedConnection"
	case UnknownControlDirective:
		return "UnknownControlDirective"
	default:
		return "Unknown"
	}
}

// ParseError is a fatal parse-time failure. It always carries the
// location at which parsing failed, including the include stack, per
// spec.md §4.1.
type ParseError struct {
	Kind    ErrorKind
	Loc     record.Location
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Kind, e.Message)
}

func newParseError(kind ErrorKind, loc record.Location, format string, args ...interface{}) *ParseError {
	return &ParseError{Kind: kind, Loc: loc, Message: fmt.Sprintf(format, args...)}
}
