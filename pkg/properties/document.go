// Copyright 2025 UMH Systems GmbH
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

// Package properties writes Java style property documents made of fixed,
// ordered sections.
package properties

import (
	"strings"
)

// Section is one "# Header" block of a document.
type Section struct {
	Header string
	// Body writes the section's lines. It may be nil for a header-only section.
	Body func(b *Block)
	// Gap appends an empty line after the body.
	Gap bool
}

// Document is a preamble followed by sections in declaration order.
type Document struct {
	Preamble []string
	Sections []Section
}

// Preamble returns the standard header of a generated file.
func Preamble(tool string) []string {
	return []string{
		"# This file is managed by " + tool,
		"# MODIFICATION WILL BE OVERWRITTEN",
		"",
	}
}

// Render writes the document. Output depends only on the sections and the
// values their bodies emit.
func (d Document) Render() string {
	var sb strings.Builder
	for _, line := range d.Preamble {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	for _, s := range d.Sections {
		sb.WriteString("# ")
		sb.WriteString(s.Header)
		sb.WriteByte('\n')
		if s.Body != nil {
			b := &Block{}
			s.Body(b)
			for _, line := range b.lines {
				sb.WriteString(line)
				sb.WriteByte('\n')
			}
		}
		if s.Gap {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Block collects the lines of one section.
type Block struct {
	lines []string
}

// Set writes key=value.
func (b *Block) Set(key, value string) {
	b.lines = append(b.lines, key+"="+value)
}

// Comment writes a raw comment line. The text is written after a single '#'.
func (b *Block) Comment(text string) {
	b.lines = append(b.lines, "#"+text)
}

// Blank writes an empty line.
func (b *Block) Blank() {
	b.lines = append(b.lines, "")
}

// OptString writes key=value when value is set.
func (b *Block) OptString(key string, value *string) {
	if value != nil {
		b.Set(key, *value)
	}
}

// OptInt writes key=value when value is set.
func (b *Block) OptInt(key string, value *int64) {
	if value != nil {
		b.Set(key, Int(*value))
	}
}

// OptBool writes key=value when value is set.
func (b *Block) OptBool(key string, value *bool) {
	if value != nil {
		b.Set(key, Bool(*value))
	}
}

// Lines returns the lines written so far.
func (b *Block) Lines() []string {
	return append([]string(nil), b.lines...)
}
