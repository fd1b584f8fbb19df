// Copyright © 2020 The Pea Authors under an MIT-style license.

package loc

import "testing"

func TestLocString(t *testing.T) {
	t.Parallel()
	var fs Files
	a := fs.AddLines("a.ss", 10)
	b := fs.AddLines("b.ss", 3)
	tests := []struct {
		loc  Loc
		want string
	}{
		{Loc{}, "-"},
		{a.At(1, 1), "a.ss:1:1"},
		{a.At(3, 14), "a.ss:3:14"},
		{b.At(2, 7), "b.ss:2:7"},
		{b.At(0, 0), "b.ss:1:1"},
	}
	for _, test := range tests {
		if got := test.loc.String(); got != test.want {
			t.Errorf("got %q, want %q", got, test.want)
		}
	}
}

func TestLocLess(t *testing.T) {
	t.Parallel()
	var fs Files
	a := fs.AddLines("a.ss", 10)
	b := fs.AddLines("b.ss", 10)
	if !a.At(2, 1).Less(a.At(2, 5)) {
		t.Errorf("column order")
	}
	if !a.At(1, 100).Less(a.At(2, 1)) {
		t.Errorf("line order")
	}
	if !a.At(9, 9).Less(b.At(1, 1)) {
		t.Errorf("path order")
	}
}

func TestParse(t *testing.T) {
	t.Parallel()
	var fs Files
	f := fs.AddLines("x.ss", 5)
	l, err := f.Parse("4:2")
	if err != nil {
		t.Fatalf("Parse failed: %s", err)
	}
	if got := l.String(); got != "x.ss:4:2" {
		t.Errorf("got %s", got)
	}
	if _, err := f.Parse("abc"); err == nil {
		t.Errorf("expected an error")
	}
	if fs.Find("x.ss") == nil || fs.Find("y.ss") != nil {
		t.Errorf("Find failed")
	}
}
