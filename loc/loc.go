// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package loc has routines for tracking file locations.
//
// A Loc is an opaque token: the semantic passes only carry it from
// input nodes to the nodes they create and to reported diagnostics.
package loc

import (
	"fmt"

	"modernc.org/token"
)

// A Loc is a source location: a position within a token.File.
// The zero Loc is valid and refers to no location.
type Loc struct {
	file *token.File
	pos  token.Pos
}

// IsValid returns whether the Loc refers to a file position.
func (l Loc) IsValid() bool { return l.file != nil && l.pos.IsValid() }

// Position returns the expanded file:line:column position.
func (l Loc) Position() token.Position {
	if !l.IsValid() {
		return token.Position{}
	}
	return l.file.Position(l.pos)
}

// Path returns the file path of the location or "".
func (l Loc) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Less orders locations by path, then by position within the file.
func (l Loc) Less(m Loc) bool {
	if lp, mp := l.Path(), m.Path(); lp != mp {
		return lp < mp
	}
	return l.pos < m.pos
}

func (l Loc) String() string {
	if !l.IsValid() {
		if l.file != nil {
			return l.file.Name()
		}
		return "-"
	}
	return l.Position().String()
}

// Width is the number of columns reserved per line
// in files added with AddLines.
const Width = 1 << 12

// Files tracks the files of one compilation.
type Files []*token.File

// AddLines adds a file for which only line and column numbers are known,
// as is the case for trees produced by an external parser.
// Each line is assigned Width columns.
func (fs *Files) AddLines(path string, nlines int) *File {
	if nlines < 1 {
		nlines = 1
	}
	f := token.NewFile(path, nlines*Width)
	lines := make([]int, nlines)
	for i := range lines {
		lines[i] = i * Width
	}
	if !f.SetLines(lines) {
		panic("impossible")
	}
	*fs = append(*fs, f)
	return &File{f: f}
}

// Find returns the file with the given path or nil.
func (fs Files) Find(path string) *File {
	for _, f := range fs {
		if f.Name() == path {
			return &File{f: f}
		}
	}
	return nil
}

// A File makes Locs within one file.
type File struct {
	f *token.File
}

// Path returns the file path.
func (f *File) Path() string { return f.f.Name() }

// At returns the Loc of a 1-based line and column.
// Out-of-range values are clamped to the file.
func (f *File) At(line, col int) Loc {
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if col > Width {
		col = Width
	}
	offs := (line-1)*Width + col - 1
	if offs > f.f.Size() {
		offs = f.f.Size()
	}
	return Loc{file: f.f, pos: f.f.Pos(offs)}
}

// Start returns the Loc of the first byte in the file.
func (f *File) Start() Loc { return f.At(1, 1) }

// Parse parses a "line:col" or "line" string into a Loc within f.
func (f *File) Parse(s string) (Loc, error) {
	var line, col int
	if n, _ := fmt.Sscanf(s, "%d:%d", &line, &col); n == 0 {
		return Loc{}, fmt.Errorf("bad location %q", s)
	}
	return f.At(line, col), nil
}
