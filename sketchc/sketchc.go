// Copyright © 2020 The Pea Authors under an MIT-style license.

// The sketchc command checks a project:
// it binds and resolves the unit against its referenced assemblies
// and prints the diagnostics.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/eaburns/pretty"
	"github.com/hesam/SketchSharp-sub002/diag"
	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/mod"
	"github.com/hesam/SketchSharp-sub002/sem"
	"github.com/mattn/go-isatty"
)

var (
	verbose = flag.Bool("v", false, "enable verbose output")
	dump    = flag.Bool("dump", false, "print the checked declarations")
	trace   = flag.Bool("trace", false, "trace the semantic passes")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	proj, err := mod.Load(flag.Arg(0))
	if err != nil {
		die("failed to load project", err)
	}
	opts := options{
		verbose: *verbose,
		dump:    *dump,
		trace:   *trace,
		color:   isTerminal(os.Stderr),
	}
	nerrs, err := compile(proj, os.Stdout, os.Stderr, opts)
	if err != nil {
		die("failed to configure project", err)
	}
	if nerrs > 0 {
		os.Exit(1)
	}
}

type options struct {
	verbose bool
	dump    bool
	trace   bool
	color   bool
}

// compile checks the project, writing diagnostics to diags
// and everything else to out.
// It returns the number of errors, not counting warnings.
func compile(proj *mod.Project, out, diags io.Writer, opts options) (int, error) {
	cfg, err := proj.SemConfig(builtinComposers())
	if err != nil {
		return 0, err
	}
	cfg.Trace = cfg.Trace || opts.trace
	cfg.TraceOut = out
	start := time.Now()
	info, errs := sem.Check(proj.Unit, cfg)
	elapsed := time.Since(start)

	var nerrs, nwarns int
	for _, err := range errs {
		sev := diag.Error
		var d *diag.Diagnostic
		if errors.As(err, &d) {
			sev = d.Severity()
		}
		if sev == diag.Warning {
			nwarns++
		} else {
			nerrs++
		}
		writeDiag(diags, err, sev, opts.color)
	}
	if opts.verbose {
		fmt.Fprintf(out, "%s: %s nodes, %s instances, %s closures, %s constants folded\n",
			proj.Name,
			humanize.Comma(int64(info.Nodes)),
			humanize.Comma(int64(info.Instances)),
			humanize.Comma(int64(info.Closures)),
			humanize.Comma(int64(info.Folded)))
		fmt.Fprintf(out, "%s: %s errors, %s warnings, %s suppressed, %s references, checked in %s\n",
			proj.Name,
			humanize.Comma(int64(nerrs)),
			humanize.Comma(int64(nwarns)),
			humanize.Comma(int64(info.Suppressed)),
			humanize.Comma(int64(len(proj.Refs))),
			elapsed.Round(time.Microsecond))
	}
	if opts.dump {
		pretty.Indent = "    "
		fmt.Fprintln(out, pretty.String(dumpModule(proj.Unit.Module)))
	}
	return nerrs, nil
}

const (
	red    = "\x1b[31m"
	yellow = "\x1b[33m"
	reset  = "\x1b[0m"
)

func writeDiag(w io.Writer, err error, sev diag.Severity, color bool) {
	if !color {
		fmt.Fprintln(w, err)
		return
	}
	c := red
	if sev == diag.Warning {
		c = yellow
	}
	fmt.Fprintf(w, "%s%s%s\n", c, err, reset)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// builtinComposers returns the composers available to every project.
// A project enables them by name in its project file.
func builtinComposers() *sem.Registry {
	reg := sem.NewRegistry()
	reg.Register("Sketch", "Encapsulated", sem.ComposerFunc(encapsulated))
	return reg
}

// encapsulated reports the public instance fields of a type.
func encapsulated(d ir.Decl, sink diag.Sink) {
	t, ok := d.(*ir.TypeDecl)
	if !ok {
		return
	}
	for _, m := range t.Members {
		f, ok := m.(*ir.Field)
		if ok && f.Access == ir.Public && !f.Static && !f.Const {
			sink.Report(diag.BadModifier, f.Loc(), "public", "field "+f.Name)
		}
	}
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: %s [flags] project-dir|project.yaml|project.txtar\n", os.Args[0])
	flag.PrintDefaults()
}

func die(msg string, err error) {
	fmt.Fprintf(flag.CommandLine.Output(), "%s: %s\n", msg, err)
	os.Exit(1)
}
