// Copyright © 2020 The Pea Authors under an MIT-style license.

// The sketchlist command lists the assembly files in the given directory
// in topological order, references first.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hesam/SketchSharp-sub002/corlib"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/irtext"
	"github.com/hesam/SketchSharp-sub002/loc"
	"github.com/hesam/SketchSharp-sub002/mod"
	"golang.org/x/exp/slices"
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		die(errors.New("Usage: sketchlist <assembly dir>"))
	}
	if err := list(os.Stdout, flag.Arg(0)); err != nil {
		die(err)
	}
}

// list writes the paths of the assembly files under root,
// each after the assemblies it references.
// Files that are not assemblies are skipped.
func list(w io.Writer, root string) error {
	var files loc.Files
	byName := map[string]*ir.Module{corlib.Name: corlib.Load(&files)}
	paths := make(map[*ir.Module]string)
	var mods []*ir.Module
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".yaml" {
			return err
		}
		m, err := irtext.ReadFile(&files, p)
		if err != nil {
			return err
		}
		if !m.Assembly {
			return nil
		}
		if prev := byName[m.Name]; prev != nil {
			return fmt.Errorf("%s: assembly %s also in %s", p, m.Name, paths[prev])
		}
		byName[m.Name] = m
		paths[m] = p
		mods = append(mods, m)
		return nil
	})
	if err != nil {
		return err
	}
	// Pre-sort to make tie-breaking alphabetical.
	slices.SortFunc(mods, func(a, b *ir.Module) bool { return paths[a] < paths[b] })
	sorted, err := mod.TopologicalRefs(mods, byName)
	if err != nil {
		return err
	}
	for _, m := range sorted {
		rel, err := filepath.Rel(root, paths[m])
		if err != nil {
			return err
		}
		fmt.Fprintln(w, filepath.ToSlash(rel))
	}
	return nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
	fmt.Fprintf(out, "%s [flags] <directory>\n", os.Args[0])
	flag.PrintDefaults()
}

func die(err error) {
	fmt.Fprintln(flag.CommandLine.Output(), err)
	os.Exit(1)
}
