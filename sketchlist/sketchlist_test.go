// Copyright © 2020 The Pea Authors under an MIT-style license.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestList(t *testing.T) {
	root := t.TempDir()
	write(t, root, "z/base.yaml", "assembly: Base\n")
	write(t, root, "a/app.yaml", "assembly: App\nreferences: [Mid, Base]\n")
	write(t, root, "m/mid.yaml", "assembly: Mid\nreferences: [Base, corlib]\n")
	write(t, root, "m/other.yaml", "assembly: Other\n")
	write(t, root, "unit.yaml", "module: Unit\nreferences: [App]\n")
	write(t, root, "notes.txt", "ignored")

	var s strings.Builder
	if err := list(&s, root); err != nil {
		t.Fatalf("list failed: %s", err)
	}
	want := []string{"z/base.yaml", "m/mid.yaml", "a/app.yaml", "m/other.yaml"}
	if diff := cmp.Diff(want, strings.Fields(s.String())); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestListErrors(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
		err   string
	}{
		{
			name: "duplicate",
			files: map[string]string{
				"a.yaml": "assembly: A\n",
				"b.yaml": "assembly: A\n",
			},
			err: "assembly A also in",
		},
		{
			name: "cycle",
			files: map[string]string{
				"a.yaml": "assembly: A\nreferences: [B]\n",
				"b.yaml": "assembly: B\nreferences: [A]\n",
			},
			err: "references itself",
		},
		{
			name: "missing",
			files: map[string]string{
				"a.yaml": "assembly: A\nreferences: [Gone]\n",
			},
			err: "assembly A references Gone, which is not loaded",
		},
	}
	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			root := t.TempDir()
			for p, body := range test.files {
				write(t, root, p, body)
			}
			var s strings.Builder
			if err := list(&s, root); err == nil || !strings.Contains(err.Error(), test.err) {
				t.Errorf("list()=%v, want error containing %q", err, test.err)
			}
		})
	}
}

func write(t *testing.T, root, p, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(p))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir failed: %s", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write failed: %s", err)
	}
}
