package stmt

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/specialistvlad/stmtreactor/internal/source"
	"github.com/specialistvlad/stmtreactor/internal/spi"
	"github.com/specialistvlad/stmtreactor/internal/stmtid"
)

// Ref is a parsed, possibly prefixed reference to a named definition.
type Ref struct {
	Prefix string
	Name   string
}

func (r Ref) String() string {
	if r.Prefix == "" {
		return r.Name
	}
	return r.Prefix + ":" + r.Name
}

func parseIdentifier(_ spi.Context, raw string) (any, error) {
	if !stmtid.IsIdentifier(raw) {
		return nil, fmt.Errorf("%q is not a valid identifier", raw)
	}
	return raw, nil
}

func parseRef(_ spi.Context, raw string) (any, error) {
	prefix, name, err := stmtid.ParseIdentifierRef(raw)
	if err != nil {
		return nil, err
	}
	return Ref{Prefix: prefix, Name: name}, nil
}

func parseRevision(_ spi.Context, raw string) (any, error) {
	if err := source.ValidateRevision(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func parseVersion(_ spi.Context, raw string) (any, error) {
	v, err := source.ParseVersion(raw)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func parseNonEmpty(_ spi.Context, raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("argument cannot be empty")
	}
	return raw, nil
}

// parseBool accepts exactly "true" and "false" and yields a cty.Bool.
func parseBool(_ spi.Context, raw string) (any, error) {
	if raw != "true" && raw != "false" {
		return nil, fmt.Errorf("%q is not a boolean: expected true or false", raw)
	}
	v, err := convert.Convert(cty.StringVal(raw), cty.Bool)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// parseUint yields a non-negative cty.Number.
func parseUint(_ spi.Context, raw string) (any, error) {
	v, err := convert.Convert(cty.StringVal(raw), cty.Number)
	if err != nil {
		return nil, fmt.Errorf("%q is not a non-negative integer", raw)
	}
	var n uint64
	if err := gocty.FromCtyValue(v, &n); err != nil {
		return nil, fmt.Errorf("%q is not a non-negative integer: %w", raw, err)
	}
	return v, nil
}

// parseInt yields a signed integral cty.Number.
func parseInt(_ spi.Context, raw string) (any, error) {
	v, err := convert.Convert(cty.StringVal(raw), cty.Number)
	if err != nil {
		return nil, fmt.Errorf("%q is not an integer", raw)
	}
	var n int64
	if err := gocty.FromCtyValue(v, &n); err != nil {
		return nil, fmt.Errorf("%q is not an integer: %w", raw, err)
	}
	return v, nil
}

// parseMaxElements accepts "unbounded" or a positive integer.
func parseMaxElements(ctx spi.Context, raw string) (any, error) {
	if raw == "unbounded" {
		return cty.PositiveInfinity, nil
	}
	v, err := parseUint(ctx, raw)
	if err != nil {
		return nil, err
	}
	if v.(cty.Value).AsBigFloat().Cmp(big.NewFloat(0)) == 0 {
		return nil, errors.New("max-elements must be positive")
	}
	return v, nil
}

func parseOneOf(values ...string) func(spi.Context, string) (any, error) {
	return func(_ spi.Context, raw string) (any, error) {
		for _, v := range values {
			if raw == v {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("%q is not one of %s", raw, strings.Join(values, ", "))
	}
}

// parseKey splits a list key into its leaf identifiers.
func parseKey(_ spi.Context, raw string) (any, error) {
	names := strings.Fields(raw)
	if len(names) == 0 {
		return nil, errors.New("key cannot be empty")
	}
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		_, local, err := stmtid.ParseIdentifierRef(n)
		if err != nil {
			return nil, err
		}
		if seen[local] {
			return nil, fmt.Errorf("key leaf %q listed twice", local)
		}
		seen[local] = true
	}
	return names, nil
}

// BoolArgument returns the value of a boolean statement.
func BoolArgument(arg any) (bool, bool) {
	v, ok := arg.(cty.Value)
	if !ok || v.Type() != cty.Bool || v.IsNull() {
		return false, false
	}
	return v.True(), true
}
