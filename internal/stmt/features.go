package stmt

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// FeatureOp is the operator of a FeatureExpr node.
type FeatureOp int

const (
	FeatureRef FeatureOp = iota
	FeatureNot
	FeatureAnd
	FeatureOr
)

// FeatureExpr is a parsed if-feature expression. Feature is set on
// FeatureRef nodes, Operands on the others.
type FeatureExpr struct {
	Op       FeatureOp
	Feature  Ref
	Operands []*FeatureExpr
}

func (e *FeatureExpr) String() string {
	switch e.Op {
	case FeatureNot:
		return "not " + e.Operands[0].operand(FeatureNot)
	case FeatureAnd, FeatureOr:
		sep := " and "
		if e.Op == FeatureOr {
			sep = " or "
		}
		parts := make([]string, len(e.Operands))
		for i, o := range e.Operands {
			parts[i] = o.operand(e.Op)
		}
		return strings.Join(parts, sep)
	default:
		return e.Feature.String()
	}
}

// operand renders e as an operand of op, parenthesized when it binds looser.
func (e *FeatureExpr) operand(op FeatureOp) string {
	if (e.Op == FeatureAnd || e.Op == FeatureOr) && e.Op > op {
		return "(" + e.String() + ")"
	}
	return e.String()
}

// Refs lists the distinct feature references in order of appearance.
func (e *FeatureExpr) Refs() []Ref {
	var out []Ref
	seen := make(map[Ref]bool)
	var walk func(*FeatureExpr)
	walk = func(n *FeatureExpr) {
		if n.Op == FeatureRef {
			if !seen[n.Feature] {
				seen[n.Feature] = true
				out = append(out, n.Feature)
			}
			return
		}
		for _, o := range n.Operands {
			walk(o)
		}
	}
	walk(e)
	return out
}

func (e *FeatureExpr) eval(has func(Ref) bool) bool {
	switch e.Op {
	case FeatureNot:
		return !e.Operands[0].eval(has)
	case FeatureAnd:
		for _, o := range e.Operands {
			if !o.eval(has) {
				return false
			}
		}
		return true
	case FeatureOr:
		for _, o := range e.Operands {
			if o.eval(has) {
				return true
			}
		}
		return false
	default:
		return has(e.Feature)
	}
}

// FeatureCondition is the effective value of an if-feature statement: the
// expression with every feature reference resolved.
type FeatureCondition struct {
	Expr     *FeatureExpr
	Features map[Ref]stmtid.QName
}

var _ spi.FeatureGate = (*FeatureCondition)(nil)

// Satisfied evaluates the expression against the supported features.
func (c *FeatureCondition) Satisfied(supported func(stmtid.QName) bool) bool {
	return c.Expr.eval(func(r Ref) bool { return supported(c.Features[r]) })
}

func (c *FeatureCondition) String() string { return c.Expr.String() }

// parseFeatureExpr parses the 1.1 grammar: feature references combined with
// not, and, or and parentheses, "and" binding tighter than "or".
func parseFeatureExpr(_ spi.Context, raw string) (any, error) {
	p := &featureParser{toks: tokenizeFeatureExpr(raw)}
	if len(p.toks) == 0 {
		return nil, errors.New("if-feature expression cannot be empty")
	}
	e, err := p.or()
	if err == nil && p.pos < len(p.toks) {
		err = fmt.Errorf("unexpected %q", p.toks[p.pos])
	}
	if err != nil {
		return nil, fmt.Errorf("invalid if-feature expression %q: %w", raw, err)
	}
	return e, nil
}

// parseFeatureRef is the version 1 form: a single feature reference.
func parseFeatureRef(_ spi.Context, raw string) (any, error) {
	prefix, name, err := stmtid.ParseIdentifierRef(raw)
	if err != nil {
		return nil, fmt.Errorf("if-feature %q must name a single feature in language version 1: %w", raw, err)
	}
	return &FeatureExpr{Op: FeatureRef, Feature: Ref{Prefix: prefix, Name: name}}, nil
}

func tokenizeFeatureExpr(raw string) []string {
	var toks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range raw {
		switch {
		case r == '(' || r == ')':
			flush()
			toks = append(toks, string(r))
		case unicode.IsSpace(r):
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

type featureParser struct {
	toks []string
	pos  int
}

func (p *featureParser) peek() string {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return ""
}

func (p *featureParser) or() (*FeatureExpr, error) {
	return p.chain("or", FeatureOr, p.and)
}

func (p *featureParser) and() (*FeatureExpr, error) {
	return p.chain("and", FeatureAnd, p.factor)
}

func (p *featureParser) chain(keyword string, op FeatureOp, next func() (*FeatureExpr, error)) (*FeatureExpr, error) {
	first, err := next()
	if err != nil {
		return nil, err
	}
	if p.peek() != keyword {
		return first, nil
	}
	e := &FeatureExpr{Op: op, Operands: []*FeatureExpr{first}}
	for p.peek() == keyword {
		p.pos++
		o, err := next()
		if err != nil {
			return nil, err
		}
		e.Operands = append(e.Operands, o)
	}
	return e, nil
}

func (p *featureParser) factor() (*FeatureExpr, error) {
	switch tok := p.peek(); tok {
	case "":
		return nil, errors.New("unexpected end of expression")
	case "not":
		p.pos++
		o, err := p.factor()
		if err != nil {
			return nil, err
		}
		return &FeatureExpr{Op: FeatureNot, Operands: []*FeatureExpr{o}}, nil
	case "(":
		p.pos++
		e, err := p.or()
		if err != nil {
			return nil, err
		}
		if p.peek() != ")" {
			return nil, errors.New("missing closing parenthesis")
		}
		p.pos++
		return e, nil
	case ")", "and", "or":
		return nil, fmt.Errorf("unexpected %q", tok)
	default:
		p.pos++
		prefix, name, err := stmtid.ParseIdentifierRef(tok)
		if err != nil {
			return nil, err
		}
		return &FeatureExpr{Op: FeatureRef, Feature: Ref{Prefix: prefix, Name: name}}, nil
	}
}

type featureSupport struct {
	spi.BaseSupport
}

func newFeature(r rules) *featureSupport {
	return &featureSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwFeature),
		Rules:   r.meta().With(kwIfFeature, spi.Any),
		Policy:  spi.ContextIndependent,
		Parse:   parseIdentifier,
	}}
}

func (s *featureSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	return Feature.Bind(ctx, stmtid.NewQName(ctx.Module(), ctx.RawArgument()), ctx)
}

func (s *featureSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = stmtid.NewQName(ctx.Module(), ctx.RawArgument())
	return e, nil
}

// ifFeatureSupport resolves every feature its expression names, in the
// statement's own module or through an import prefix. The resolved
// condition becomes the statement's state; the reactor evaluates it against
// the supported features when assembling the effective model.
type ifFeatureSupport struct {
	spi.BaseSupport
}

func newIfFeature(r rules) *ifFeatureSupport {
	parse := parseFeatureRef
	if r.is11() {
		parse = parseFeatureExpr
	}
	return &ifFeatureSupport{spi.BaseSupport{
		Keyword: stmtid.Builtin(kwIfFeature),
		Policy:  spi.ContextIndependent,
		Parse:   parse,
	}}
}

func (s *ifFeatureSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	expr := ctx.Argument().(*FeatureExpr)
	refs := expr.Refs()
	a := ctx.NewAction(phase.FullDeclaration, fmt.Sprintf("resolve if-feature %q", ctx.RawArgument()))
	features := make([]*spi.Prereq[spi.Context], len(refs))
	for i, ref := range refs {
		features[i] = spi.Require(a, fmt.Sprintf("feature %q", ref), func() (spi.Context, bool) {
			mod, ok := targetModule(ctx, ref)
			if !ok {
				return nil, false
			}
			return Feature.Lookup(ctx, stmtid.NewQName(mod, ref.Name))
		})
	}
	a.Apply(func() error {
		resolved := make(map[Ref]stmtid.QName, len(refs))
		for i, ref := range refs {
			f := features[i].Get()
			resolved[ref] = stmtid.NewQName(f.Module(), f.RawArgument())
		}
		ctx.SetState(&FeatureCondition{Expr: expr, Features: resolved})
		return nil
	})
	return nil
}

func (s *ifFeatureSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.State()
	return e, nil
}
