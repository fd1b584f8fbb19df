// Copyright © 2020 The Pea Authors under an MIT-style license.

// Package mod loads a compilation project:
// the unit's source files along with its referenced assemblies.
//
// A project is a directory holding a project.yaml file,
// the path of a project.yaml file itself,
// or a txtar archive whose members are the directory's files.
package mod

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hesam/SketchSharp-sub002/corlib"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/irtext"
	"github.com/hesam/SketchSharp-sub002/loc"
	"github.com/hesam/SketchSharp-sub002/sem"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/txtar"
	"gopkg.in/yaml.v3"
)

// ProjectFile is the name of the project configuration file.
const ProjectFile = "project.yaml"

// A Config is the contents of a project file.
type Config struct {
	// Name is the name of the module being compiled.
	Name string `yaml:"name"`
	// Units are glob patterns of the unit's source files.
	// The default is every .yaml file that declares a module.
	Units []string `yaml:"units"`
	// References are the referenced assembly files.
	References []string `yaml:"references"`
	// Unchecked disables overflow checking of constant arithmetic.
	Unchecked bool `yaml:"unchecked"`
	// Trace enables tracing of the semantic passes.
	Trace bool `yaml:"trace"`
	// Composers are the composers enabled for the project,
	// each of the form assembly:type.
	Composers []string `yaml:"composers"`
}

// A Project is a loaded project.
type Project struct {
	Config
	// Path is the path the project was loaded from.
	Path string
	// Files are the source files of the compilation.
	Files loc.Files
	// Core is the core library assembly.
	Core *ir.Module
	// Unit is the unit being compiled.
	// Its module merges the types of all unit files.
	Unit *ir.Unit
	// Refs are the referenced assemblies,
	// each after the assemblies it references.
	Refs []*ir.Module
}

// A source is the set of files of a project.
type source interface {
	read(name string) ([]byte, error)
	glob(pattern string) ([]string, error)
}

type dirSource string

func (d dirSource) read(name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(string(d), filepath.FromSlash(name)))
}

func (d dirSource) glob(pattern string) ([]string, error) {
	ms, err := filepath.Glob(filepath.Join(string(d), filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}
	for i, m := range ms {
		rel, err := filepath.Rel(string(d), m)
		if err != nil {
			return nil, err
		}
		ms[i] = filepath.ToSlash(rel)
	}
	return ms, nil
}

type archiveSource map[string][]byte

func (a archiveSource) read(name string) ([]byte, error) {
	data, ok := a[path.Clean(name)]
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}

func (a archiveSource) glob(pattern string) ([]string, error) {
	var ms []string
	for name := range a {
		ok, err := path.Match(pattern, name)
		if err != nil {
			return nil, err
		}
		if ok {
			ms = append(ms, name)
		}
	}
	return ms, nil
}

// Load loads the project at a path.
func Load(p string) (*Project, error) {
	var src source
	switch fi, err := os.Stat(p); {
	case err != nil:
		return nil, fmt.Errorf("load project: %w", err)
	case fi.IsDir():
		src = dirSource(p)
	case strings.HasSuffix(p, ".txtar"):
		ar, err := txtar.ParseFile(p)
		if err != nil {
			return nil, fmt.Errorf("load project: %w", err)
		}
		src = archive(ar)
	case filepath.Base(p) == ProjectFile:
		src = dirSource(filepath.Dir(p))
	default:
		return nil, fmt.Errorf("load project: %s is not a directory, %s, or .txtar archive", p, ProjectFile)
	}
	return load(p, src)
}

// LoadArchive loads a project from a txtar archive.
// The path names the archive in locations and errors.
func LoadArchive(p string, ar *txtar.Archive) (*Project, error) {
	return load(p, archive(ar))
}

func archive(ar *txtar.Archive) archiveSource {
	a := make(archiveSource)
	for _, f := range ar.Files {
		a[path.Clean(f.Name)] = f.Data
	}
	return a
}

func load(p string, src source) (*Project, error) {
	proj := &Project{Path: p}
	if err := proj.readConfig(src); err != nil {
		return nil, err
	}
	proj.Core = corlib.Load(&proj.Files)
	if err := proj.loadUnit(src); err != nil {
		return nil, err
	}
	if err := proj.loadRefs(src); err != nil {
		return nil, err
	}
	return proj, nil
}

func (proj *Project) readConfig(src source) error {
	data, err := src.read(ProjectFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", ProjectFile, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&proj.Config); err != nil {
		return fmt.Errorf("%s: %w", ProjectFile, err)
	}
	for _, c := range proj.Composers {
		if i := strings.IndexByte(c, ':'); i <= 0 || i == len(c)-1 {
			return fmt.Errorf("%s: bad composer %q, want assembly:type", ProjectFile, c)
		}
	}
	return nil
}

func (proj *Project) loadUnit(src source) error {
	files, err := proj.unitFiles(src)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%s: no unit files", proj.Path)
	}
	unit := &ir.Unit{Files: files}
	for _, name := range files {
		m, err := proj.readModule(src, name)
		if err != nil {
			return err
		}
		if m.Assembly {
			return fmt.Errorf("%s: unit file declares assembly %s", name, m.Name)
		}
		if unit.Module == nil {
			unit.Module = m
			if proj.Name != "" {
				m.Name = proj.Name
			}
			continue
		}
		if m.Name != unit.Module.Name && proj.Name == "" {
			return fmt.Errorf("%s: module %s, want %s", name, m.Name, unit.Module.Name)
		}
		merge(unit.Module, m)
	}
	if proj.Name == "" {
		proj.Name = unit.Module.Name
	}
	proj.Unit = unit
	return nil
}

// unitFiles returns the sorted, de-duplicated unit file names.
// Without patterns, every module file is a unit file.
func (proj *Project) unitFiles(src source) ([]string, error) {
	pats := proj.Units
	if len(pats) == 0 {
		pats = []string{"*.yaml"}
	}
	seen := make(map[string]bool)
	for _, pat := range pats {
		ms, err := src.glob(pat)
		if err != nil {
			return nil, fmt.Errorf("%s: bad unit pattern %q: %w", ProjectFile, pat, err)
		}
		for _, m := range ms {
			if path.Base(m) == ProjectFile || slices.Contains(proj.References, m) {
				continue
			}
			if len(proj.Units) == 0 && !isModuleFile(src, m) {
				continue
			}
			seen[m] = true
		}
	}
	files := maps.Keys(seen)
	slices.Sort(files)
	return files, nil
}

func isModuleFile(src source, name string) bool {
	data, err := src.read(name)
	if err != nil {
		return false
	}
	var hdr struct {
		Module string `yaml:"module"`
	}
	return yaml.Unmarshal(data, &hdr) == nil && hdr.Module != ""
}

func (proj *Project) readModule(src source, name string) (*ir.Module, error) {
	data, err := src.read(name)
	if err != nil {
		return nil, fmt.Errorf("read module: %w", err)
	}
	return irtext.Read(&proj.Files, name, data)
}

// merge adds the declarations of one unit file to the unit's module.
func merge(dst, src *ir.Module) {
	var move func(*ir.TypeDecl)
	move = func(t *ir.TypeDecl) {
		t.Module = dst
		for _, m := range t.Members {
			if n, ok := m.(*ir.TypeDecl); ok {
				move(n)
			}
		}
	}
	for _, t := range src.Types {
		move(t)
	}
	dst.Namespaces = append(dst.Namespaces, src.Namespaces...)
	dst.Types = append(dst.Types, src.Types...)
	for _, r := range src.Refs {
		if !slices.Contains(dst.Refs, r) {
			dst.Refs = append(dst.Refs, r)
		}
	}
}

// loadRefs reads the referenced assemblies and orders them
// so each follows the assemblies it references.
func (proj *Project) loadRefs(src source) error {
	byName := map[string]*ir.Module{corlib.Name: proj.Core}
	var mods []*ir.Module
	for _, name := range proj.References {
		m, err := proj.readModule(src, name)
		if err != nil {
			return err
		}
		if !m.Assembly {
			return fmt.Errorf("%s: reference declares module %s, not an assembly", name, m.Name)
		}
		if byName[m.Name] != nil {
			return fmt.Errorf("%s: assembly %s loaded twice", name, m.Name)
		}
		byName[m.Name] = m
		mods = append(mods, m)
	}
	for _, r := range proj.Unit.Module.Refs {
		if byName[r] == nil {
			return fmt.Errorf("%s references assembly %s, which is not loaded", proj.Name, r)
		}
	}
	sorted, err := TopologicalRefs(mods, byName)
	if err != nil {
		return err
	}
	proj.Refs = sorted
	return nil
}

// TopologicalRefs returns the modules and the modules they reference,
// in topologically sorted order with references before their referrers.
// Modules in byName but not reachable from mods are not included,
// nor is the core library.
func TopologicalRefs(mods []*ir.Module, byName map[string]*ir.Module) ([]*ir.Module, error) {
	var sorted []*ir.Module
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[*ir.Module]int)
	var add func(*ir.Module) error
	add = func(m *ir.Module) error {
		switch state[m] {
		case visiting:
			return fmt.Errorf("assembly %s references itself", m.Name)
		case done:
			return nil
		}
		state[m] = visiting
		for _, r := range m.Refs {
			d := byName[r]
			if d == nil {
				return fmt.Errorf("assembly %s references %s, which is not loaded", m.Name, r)
			}
			if err := add(d); err != nil {
				return err
			}
		}
		state[m] = done
		if m.Name != corlib.Name {
			sorted = append(sorted, m)
		}
		return nil
	}
	for _, m := range mods {
		if err := add(m); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// SemConfig returns the configuration of the semantic passes for the project.
// The composers are registered from reg;
// an enabled composer missing from reg is an error.
func (proj *Project) SemConfig(reg *sem.Registry) (sem.Config, error) {
	enabled := sem.NewRegistry()
	for _, c := range proj.Composers {
		i := strings.IndexByte(c, ':')
		asm, typ := c[:i], c[i+1:]
		comp, ok := reg.Lookup(asm, typ)
		if !ok {
			return sem.Config{}, fmt.Errorf("%s: unknown composer %s", proj.Path, c)
		}
		enabled.Register(asm, typ, comp)
	}
	return sem.Config{
		Core:       proj.Core,
		References: proj.Refs,
		Trace:      proj.Trace,
		Unchecked:  proj.Unchecked,
		Composers:  enabled,
	}, nil
}
