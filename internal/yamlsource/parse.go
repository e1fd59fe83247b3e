// Package yamlsource reads modeling-language documents written in YAML.
//
// A document is a mapping with one key, the root statement. Each key of a
// mapping is a statement: the keyword, optionally followed by a space and the
// argument. The value is one of
//
//	scalar               the argument; the key must not carry one as well
//	null                 no argument and no children
//	mapping              children, in key order
//	sequence of mappings children, for bodies that repeat a keyword
//	sequence of scalars  one statement per element, each with that argument
//
// For example:
//
//	module a:
//	  namespace: urn:test:a
//	  prefix: a
//	  feature: [x, y]
//	  leaf name:
//	    type: string
package yamlsource

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/specialistvlad/stmtreactor/internal/source"
)

// Extensions are the file extensions of YAML documents.
var Extensions = []string{".yaml", ".yml"}

var _ source.Parser = Parse

// Parse turns one YAML document into a parsed statement tree. Files holding
// more than one YAML document are rejected.
func Parse(filename string, src []byte) (*source.Tree, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: expected exactly one root statement, found 0", filename)
		}
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", filename, err)
	}
	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: expected a single YAML document", filename)
	}

	p := parser{file: filename}
	top := &doc
	if top.Kind == yaml.DocumentNode && len(top.Content) == 1 {
		top = top.Content[0]
	}
	if top.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%s: document must be a mapping", p.ref(top))
	}
	if n := len(top.Content) / 2; n != 1 {
		return nil, fmt.Errorf("%s: expected exactly one root statement, found %d", filename, n)
	}

	stmts, err := p.statements(top.Content[0], top.Content[1])
	if err != nil {
		return nil, err
	}
	return source.NewTree(stmts[0])
}

type parser struct {
	file string
}

func (p parser) ref(n *yaml.Node) source.Ref {
	return source.Ref{File: p.file, Line: n.Line, Column: n.Column}
}

// statements returns the statements of one mapping entry. Only a sequence of
// scalars yields more than one.
func (p parser) statements(key, value *yaml.Node) ([]*source.Statement, error) {
	if key.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%s: statement keys must be scalars", p.ref(key))
	}
	keyword, arg, hasArg := strings.Cut(strings.TrimSpace(key.Value), " ")
	if keyword == "" {
		return nil, fmt.Errorf("%s: empty statement keyword", p.ref(key))
	}
	arg = strings.TrimSpace(arg)
	s := &source.Statement{Keyword: keyword, Argument: arg, Ref: p.ref(key)}

	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return []*source.Statement{s}, nil
		}
		if hasArg {
			return nil, fmt.Errorf("%s: %s has an argument in both key and value", p.ref(key), keyword)
		}
		s.Argument = value.Value
		return []*source.Statement{s}, nil

	case yaml.MappingNode:
		children, err := p.mapping(value)
		if err != nil {
			return nil, err
		}
		s.Children = children
		return []*source.Statement{s}, nil

	case yaml.SequenceNode:
		if isScalarList(value) {
			if hasArg {
				return nil, fmt.Errorf("%s: %s has an argument in both key and value", p.ref(key), keyword)
			}
			out := make([]*source.Statement, 0, len(value.Content))
			for _, item := range value.Content {
				out = append(out, &source.Statement{Keyword: keyword, Argument: item.Value, Ref: p.ref(item)})
			}
			return out, nil
		}
		for _, item := range value.Content {
			if item.Kind != yaml.MappingNode {
				return nil, fmt.Errorf("%s: body items of %s must all be mappings", p.ref(item), keyword)
			}
			children, err := p.mapping(item)
			if err != nil {
				return nil, err
			}
			s.Children = append(s.Children, children...)
		}
		return []*source.Statement{s}, nil

	case yaml.AliasNode:
		return nil, fmt.Errorf("%s: aliases are not supported", p.ref(value))
	}
	return nil, fmt.Errorf("%s: unsupported value for %s", p.ref(value), keyword)
}

func (p parser) mapping(n *yaml.Node) ([]*source.Statement, error) {
	var out []*source.Statement
	for i := 0; i+1 < len(n.Content); i += 2 {
		stmts, err := p.statements(n.Content[i], n.Content[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, stmts...)
	}
	return out, nil
}

func isScalarList(n *yaml.Node) bool {
	if len(n.Content) == 0 {
		return false
	}
	for _, item := range n.Content {
		if item.Kind != yaml.ScalarNode {
			return false
		}
	}
	return true
}
