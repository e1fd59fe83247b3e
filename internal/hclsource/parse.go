package hclsource

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/specialistvlad/stmtreactor/internal/source"
)

// Extension is the file extension of HCL documents.
const Extension = ".hcl"

// genericBlock is the block type of statements whose keyword is given as a
// label.
const genericBlock = "stmt"

var _ source.Parser = Parse

// Parse turns one HCL document into a parsed statement tree.
func Parse(filename string, src []byte) (*source.Tree, error) {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	body, ok := file.Body.(*hclsyntax.Body)
	if !ok {
		return nil, fmt.Errorf("%s: unexpected body type %T", filename, file.Body)
	}

	if attrs := sortedAttributes(body); len(attrs) > 0 {
		return nil, fmt.Errorf("%s: attribute %q outside the root statement", ref(attrs[0].SrcRange), attrs[0].Name)
	}
	if len(body.Blocks) != 1 {
		return nil, fmt.Errorf("%s: expected exactly one root statement, found %d", filename, len(body.Blocks))
	}

	root, err := blockStatement(body.Blocks[0])
	if err != nil {
		return nil, err
	}
	return source.NewTree(root)
}

func ref(r hcl.Range) source.Ref {
	return source.Ref{File: r.Filename, Line: r.Start.Line, Column: r.Start.Column}
}

func blockStatement(b *hclsyntax.Block) (*source.Statement, error) {
	keyword, labels := b.Type, b.Labels
	if keyword == genericBlock {
		if len(labels) == 0 {
			return nil, fmt.Errorf("%s: %s block needs a keyword label", ref(b.DefRange()), genericBlock)
		}
		keyword, labels = labels[0], labels[1:]
	}
	if len(labels) > 1 {
		return nil, fmt.Errorf("%s: statement %q takes at most one argument label, found %d", ref(b.DefRange()), keyword, len(labels))
	}

	s := &source.Statement{Keyword: keyword, Ref: ref(b.DefRange())}
	if len(labels) == 1 {
		s.Argument = labels[0]
	}
	children, err := bodyStatements(b.Body)
	if err != nil {
		return nil, err
	}
	s.Children = children
	return s, nil
}

// bodyStatements returns the attributes and blocks of body as statements, in
// file order.
func bodyStatements(body *hclsyntax.Body) ([]*source.Statement, error) {
	type item struct {
		offset int
		stmts  []*source.Statement
	}
	var items []item

	for _, attr := range body.Attributes {
		stmts, err := attributeStatements(attr)
		if err != nil {
			return nil, err
		}
		items = append(items, item{offset: attr.SrcRange.Start.Byte, stmts: stmts})
	}
	for _, b := range body.Blocks {
		s, err := blockStatement(b)
		if err != nil {
			return nil, err
		}
		items = append(items, item{offset: b.TypeRange.Start.Byte, stmts: []*source.Statement{s}})
	}

	sort.Slice(items, func(i, j int) bool { return items[i].offset < items[j].offset })
	var out []*source.Statement
	for _, it := range items {
		out = append(out, it.stmts...)
	}
	return out, nil
}

func attributeStatements(attr *hclsyntax.Attribute) ([]*source.Statement, error) {
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to evaluate %s: %w", attr.Name, diags)
	}
	at := ref(attr.SrcRange)

	if val.Type().IsTupleType() || val.Type().IsListType() {
		var out []*source.Statement
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			arg, err := argument(elem)
			if err != nil {
				return nil, fmt.Errorf("%s: %s: %w", at, attr.Name, err)
			}
			out = append(out, &source.Statement{Keyword: attr.Name, Argument: arg, Ref: at})
		}
		return out, nil
	}

	arg, err := argument(val)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", at, attr.Name, err)
	}
	return []*source.Statement{{Keyword: attr.Name, Argument: arg, Ref: at}}, nil
}

// argument renders a primitive value as argument text.
func argument(v cty.Value) (string, error) {
	if v.IsNull() {
		return "", fmt.Errorf("argument cannot be null")
	}
	if !v.Type().IsPrimitiveType() {
		return "", fmt.Errorf("argument must be a string, number or bool, got %s", v.Type().FriendlyName())
	}
	s, err := convert.Convert(v, cty.String)
	if err != nil {
		return "", err
	}
	return s.AsString(), nil
}

func sortedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, a := range body.Attributes {
		attrs = append(attrs, a)
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte })
	return attrs
}
