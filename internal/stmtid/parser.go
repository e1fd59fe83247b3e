package stmtid

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.-]*$`)

// IsIdentifier reports whether s is a valid identifier of the modeling language.
func IsIdentifier(s string) bool {
	return identifierRegex.MatchString(s)
}

// Keyword is a keyword exactly as written in source text, before any prefix
// has been resolved.
type Keyword struct {
	Prefix string // empty for built-in keywords
	Local  string
}

// IsQualified reports whether the keyword carries a prefix, which marks it as
// an extension statement.
func (k Keyword) IsQualified() bool {
	return k.Prefix != ""
}

func (k Keyword) String() string {
	if k.Prefix == "" {
		return k.Local
	}
	return k.Prefix + ":" + k.Local
}

// ParseKeyword parses `name` or `prefix:name`.
func ParseKeyword(raw string) (Keyword, error) {
	prefix, local, err := ParseIdentifierRef(raw)
	if err != nil {
		return Keyword{}, fmt.Errorf("invalid keyword %q: %w", raw, err)
	}
	return Keyword{Prefix: prefix, Local: local}, nil
}

// ParseIdentifierRef splits an optionally prefixed reference
// (`name` or `prefix:name`) and validates both parts.
func ParseIdentifierRef(raw string) (prefix, local string, err error) {
	if raw == "" {
		return "", "", fmt.Errorf("identifier cannot be empty")
	}

	before, after, found := strings.Cut(raw, ":")
	if !found {
		if !IsIdentifier(raw) {
			return "", "", fmt.Errorf("%q is not a valid identifier", raw)
		}
		return "", raw, nil
	}

	if !IsIdentifier(before) {
		return "", "", fmt.Errorf("%q is not a valid prefix", before)
	}
	if !IsIdentifier(after) {
		return "", "", fmt.Errorf("%q is not a valid identifier", after)
	}
	return before, after, nil
}
