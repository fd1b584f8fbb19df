// Copyright © 2020 The Pea Authors under an MIT-style license.

package irtext

import (
	"fmt"
	"strings"
	"text/scanner"

	"github.com/hesam/SketchSharp-sub002/ir"
	"github.com/hesam/SketchSharp-sub002/loc"
)

// ParseType parses a type expression.
// All nodes of the result are located at at.
//
// The syntax is:
//
//	type    = inter { "|" inter } .
//	inter   = postfix { "&" postfix } .
//	postfix = primary { "[" { "," } "]" | "*" | "!" | "?" | "~" | "^" } .
//	primary = "ref" postfix
//	        | name [ "<" type { "," type } ">" ]
//	        | "(" type [ ident ] { "," type [ ident ] } ")" .
//	name    = ident { "." ident } .
func ParseType(s string, at loc.Loc) (ir.TypeExpr, error) {
	p := &typeParser{at: at}
	p.s.Init(strings.NewReader(s))
	p.s.Mode = scanner.ScanIdents
	p.s.Error = func(_ *scanner.Scanner, msg string) {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %s", s, msg)
		}
	}
	p.next()
	t := p.union()
	if p.err == nil && p.tok != scanner.EOF {
		p.fail("unexpected %s", p.s.TokenText())
	}
	if p.err != nil {
		return nil, fmt.Errorf("bad type %q: %w", s, p.err)
	}
	return t, nil
}

type typeParser struct {
	s   scanner.Scanner
	tok rune
	at  loc.Loc
	err error
}

func (p *typeParser) next() { p.tok = p.s.Scan() }

func (p *typeParser) fail(f string, vs ...interface{}) {
	if p.err == nil {
		p.err = fmt.Errorf(f, vs...)
	}
	p.tok = scanner.EOF
}

func (p *typeParser) expect(r rune) {
	if p.tok != r {
		p.fail("expected %q", r)
		return
	}
	p.next()
}

func (p *typeParser) base() ir.Base { return ir.Base{At: p.at} }

func (p *typeParser) union() ir.TypeExpr {
	t := p.inter()
	if p.tok != '|' {
		return t
	}
	u := &ir.UnionTypeExpr{Base: p.base(), Elems: []ir.TypeExpr{t}}
	for p.tok == '|' {
		p.next()
		u.Elems = append(u.Elems, p.inter())
	}
	return u
}

func (p *typeParser) inter() ir.TypeExpr {
	t := p.postfix()
	if p.tok != '&' {
		return t
	}
	n := &ir.IntersectionTypeExpr{Base: p.base(), Elems: []ir.TypeExpr{t}}
	for p.tok == '&' {
		p.next()
		n.Elems = append(n.Elems, p.postfix())
	}
	return n
}

func (p *typeParser) postfix() ir.TypeExpr {
	t := p.primary()
	for p.err == nil {
		switch p.tok {
		case '[':
			p.next()
			rank := 1
			for p.tok == ',' {
				rank++
				p.next()
			}
			p.expect(']')
			t = &ir.ArrayTypeExpr{Base: p.base(), Elem: t, Rank: rank}
		case '*':
			p.next()
			t = &ir.PointerTypeExpr{Base: p.base(), Elem: t}
		case '!', '?', '~', '^':
			mod := map[rune]ir.Modifier{'!': ir.NonNull, '?': ir.Nullable, '~': ir.Boxed, '^': ir.Invariant}[p.tok]
			p.next()
			t = &ir.ModTypeExpr{Base: p.base(), Mod: mod, Elem: t}
		default:
			return t
		}
	}
	return t
}

func (p *typeParser) primary() ir.TypeExpr {
	switch p.tok {
	case scanner.Ident:
		if p.s.TokenText() == "ref" {
			p.next()
			return &ir.RefTypeExpr{Base: p.base(), Elem: p.postfix()}
		}
		return p.name()
	case '(':
		return p.tuple()
	case scanner.EOF:
		p.fail("unexpected end of type")
	default:
		p.fail("unexpected %s", p.s.TokenText())
	}
	return nil
}

func (p *typeParser) name() ir.TypeExpr {
	n := &ir.NamedTypeExpr{Base: p.base(), Path: []string{p.s.TokenText()}}
	p.next()
	for p.tok == '.' {
		p.next()
		if p.tok != scanner.Ident {
			p.fail("expected identifier")
			return n
		}
		n.Path = append(n.Path, p.s.TokenText())
		p.next()
	}
	if p.tok == '<' {
		p.next()
		n.Args = append(n.Args, p.union())
		for p.tok == ',' {
			p.next()
			n.Args = append(n.Args, p.union())
		}
		p.expect('>')
	}
	return n
}

func (p *typeParser) tuple() ir.TypeExpr {
	t := &ir.TupleTypeExpr{Base: p.base()}
	p.next()
	var named bool
	for p.err == nil {
		t.Elems = append(t.Elems, p.union())
		name := ""
		if p.tok == scanner.Ident {
			name = p.s.TokenText()
			named = true
			p.next()
		}
		t.Names = append(t.Names, name)
		if p.tok != ',' {
			break
		}
		p.next()
	}
	p.expect(')')
	if len(t.Elems) == 1 && !named {
		return t.Elems[0]
	}
	if !named {
		t.Names = nil
	}
	return t
}
