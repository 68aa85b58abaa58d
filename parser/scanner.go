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
	"bufio"
	"io"
	"regexp"
	"strings"
)

// LineScanner wraps bufio.Scanner to additionally track the current line
// number, generalizing the teacher's parser.LineScanner. bufio's default
// ScanLines split function already strips a trailing '\r', so CRLF and LF
// files scan identically (spec.md §4.1).
type LineScanner struct {
	*bufio.Scanner
	LineNum int

	pushedBack bool
	pushedLine string
}

// NewLineScanner constructs a LineScanner over r.
func NewLineScanner(r io.Reader) *LineScanner {
	return &LineScanner{Scanner: bufio.NewScanner(r), LineNum: 0}
}

// Scan advances to the next line, honoring a single line of pushback.
func (s *LineScanner) Scan() bool {
	if s.pushedBack {
		s.pushedBack = false
		return true
	}
	ok := s.Scanner.Scan()
	if ok {
		s.LineNum++
	}
	return ok
}

// Text returns the current line's text, respecting pushback.
func (s *LineScanner) Text() string {
	if s.pushedBack {
		return s.pushedLine
	}
	return s.Scanner.Text()
}

// PushBack rewinds the scanner by exactly one line, so the next Scan/Text
// call returns the current line again, giving one line of lookahead. The
// record-level parser in this package does not call it.
func (s *LineScanner) PushBack() {
	s.pushedLine = s.Text()
	s.pushedBack = true
}

var commentRegex = regexp.MustCompile(`([^#]*)#?.*`)

// StripComment removes a trailing "# ..." comment from line, returning the
// text before it.
func StripComment(line string) string {
	return commentRegex.ReplaceAllString(line, "$1")
}

// IsBlankLine reports whether line contains only whitespace.
func IsBlankLine(line string) bool {
	return len(strings.TrimSpace(line)) == 0
}

// IsCommentOnly reports whether line, once comments are stripped, is
// blank but the original line was not itself blank (i.e. it was an actual
// "# ..." comment line).
func IsCommentOnly(line string) bool {
	return !IsBlankLine(line) && IsBlankLine(StripComment(line))
}

// Fields splits a header line into whitespace-separated tokens after
// stripping a trailing comment.
func Fields(line string) []string {
	return strings.Fields(StripComment(line))
}
