package openconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/stmtreactor/internal/model"
	"github.com/specialistvlad/stmtreactor/internal/phase"
	"github.com/specialistvlad/stmtreactor/internal/spi"
)

// SemVer is the argument of openconfig-version.
type SemVer struct {
	Major, Minor, Patch uint64
}

func (v SemVer) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Less orders versions by precedence.
func (v SemVer) Less(o SemVer) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	if v.Minor != o.Minor {
		return v.Minor < o.Minor
	}
	return v.Patch < o.Patch
}

// ParseSemVer parses MAJOR.MINOR.PATCH.
func ParseSemVer(s string) (SemVer, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return SemVer{}, fmt.Errorf("%q is not a semantic version: expected MAJOR.MINOR.PATCH", s)
	}
	var nums [3]uint64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return SemVer{}, fmt.Errorf("%q is not a semantic version: %w", s, err)
		}
		nums[i] = n
	}
	return SemVer{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// versionSupport handles openconfig-version, the semantic version of a
// module. It is only meaningful at the top of a document.
type versionSupport struct {
	spi.BaseSupport
}

func newVersion() *versionSupport {
	return &versionSupport{spi.BaseSupport{
		Keyword: keyword("openconfig-version"),
		Policy:  spi.ContextIndependent,
		Parse: func(_ spi.Context, raw string) (any, error) {
			return ParseSemVer(raw)
		},
	}}
}

func (s *versionSupport) OnPhase(ctx spi.Mutable, p phase.Phase) error {
	if p != phase.StatementDefinition {
		return nil
	}
	if parent := ctx.Parent(); parent == nil || parent.Parent() != nil {
		return fmt.Errorf("%s is only allowed in a module or submodule", ctx.RawKeyword())
	}
	return nil
}

func (s *versionSupport) BuildEffective(ctx spi.Context, decl *model.Declared, subs []*model.Effective) (*model.Effective, error) {
	e := spi.NewEffective(ctx, decl, subs)
	e.Value = ctx.Argument()
	return e, nil
}

// ModuleVersion returns the openconfig-version of a published module.
func ModuleVersion(mod *model.Module) (SemVer, bool) {
	if mod.Effective == nil {
		return SemVer{}, false
	}
	for _, s := range mod.Effective.Substatements {
		// Keywords are qualified by the revision of openconfig-extensions.
		if s.Keyword.Module.Namespace == Namespace && s.Keyword.Local == "openconfig-version" {
			v, ok := s.Value.(SemVer)
			return v, ok
		}
	}
	return SemVer{}, false
}
